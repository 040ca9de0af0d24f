package router

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVisible(t *testing.T) {
	require.Equal(t, []Tab{TabExplore, TabRegister, TabReviewsFeed, TabProfile}, Visible(false))
	require.Equal(t,
		[]Tab{TabExplore, TabRegister, TabReviewsFeed, TabProfile, TabDashboard, TabAdmin, TabUsers},
		Visible(true),
	)
}

func TestLanding(t *testing.T) {
	require.Equal(t, TabDashboard, Landing(true))
	require.Equal(t, TabExplore, Landing(false))
}

func TestSwitch(t *testing.T) {
	r := New()
	require.Equal(t, TabExplore, r.Active())

	_, err := r.Switch(TabAdmin, false)
	require.ErrorIs(t, err, ErrForbiddenTab)
	require.Equal(t, TabExplore, r.Active())

	_, err = r.Switch(Tab("settings"), true)
	require.ErrorIs(t, err, ErrUnknownTab)

	changed, err := r.Switch(TabUsers, true)
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = r.Switch(TabUsers, true)
	require.NoError(t, err)
	require.False(t, changed)
}

func TestDemote(t *testing.T) {
	r := New()
	r.Reset(TabDashboard)

	require.False(t, r.Demote(true))
	require.True(t, r.Demote(false))
	require.Equal(t, TabExplore, r.Active())
	require.False(t, r.Demote(false))
}

func TestParse(t *testing.T) {
	tab, err := Parse("reviews_feed")
	require.NoError(t, err)
	require.Equal(t, TabReviewsFeed, tab)

	_, err = Parse("")
	require.ErrorIs(t, err, ErrUnknownTab)
}
