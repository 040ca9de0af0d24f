package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSession_AdminAuthorized(t *testing.T) {
	s := Session{IsRealAdmin: true}
	require.True(t, s.AdminAuthorized())

	s.ViewForcedAsUser = true
	require.False(t, s.AdminAuthorized())

	s = Session{ViewForcedAsUser: false}
	require.False(t, s.AdminAuthorized())
}

func TestUnmarshalSession(t *testing.T) {
	t.Run("kind from id prefix", func(t *testing.T) {
		s, err := UnmarshalSession([]byte(`{"profile":{"id":"admin-harold_anguiano","username":"harold_anguiano"}}`))
		require.NoError(t, err)
		require.Equal(t, SessionEphemeral, s.Kind)

		s, err = UnmarshalSession([]byte(`{"profile":{"id":"5c1d","username":"alice"}}`))
		require.NoError(t, err)
		require.Equal(t, SessionPersisted, s.Kind)
	})

	t.Run("round trip", func(t *testing.T) {
		in := Session{
			Kind:        SessionPersisted,
			Profile:     Profile{ID: "p1", Username: "alice", Points: 42, Status: ProfileActive},
			IsRealAdmin: false,
		}

		data, err := MarshalSession(in)
		require.NoError(t, err)

		out, err := UnmarshalSession(data)
		require.NoError(t, err)
		require.Equal(t, in.Profile.Points, out.Profile.Points)
		require.Equal(t, in.Kind, out.Kind)
	})

	t.Run("garbage", func(t *testing.T) {
		for _, in := range []string{"", "{", `{"profile":{}}`, `{"kind":"x","profile":{"id":"1","username":"a"}}`} {
			_, err := UnmarshalSession([]byte(in))
			require.ErrorIs(t, err, ErrInvalidSession, "input %q", in)
		}
	})
}

func TestProfile_DisplayName(t *testing.T) {
	require.Equal(t, "Alice A", Profile{Username: "alice", FullName: "Alice A"}.DisplayName())
	require.Equal(t, "alice", Profile{Username: "alice"}.DisplayName())
}

func TestProfileStatus_Toggle(t *testing.T) {
	require.Equal(t, ProfileInactive, ProfileActive.Toggle())
	require.Equal(t, ProfileActive, ProfileInactive.Toggle())
}
