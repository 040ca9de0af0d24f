package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Refresh("places", nil)
	m.Refresh("places", errors.New("boom"))
	m.Mutation("create_place", nil)
	m.MapCommand("fly_to")
	m.MapCommand("fly_to")
	m.Request("GET", "/api/state", 200, 10*time.Millisecond)
	m.Panic("/api/places/{id}")
	m.StreamSubscribers(1)
	m.StreamSubscribers(1)
	m.StreamSubscribers(-1)

	require.Equal(t, 1.0, testutil.ToFloat64(m.Refreshes.WithLabelValues("places", ResultOK)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Refreshes.WithLabelValues("places", ResultError)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Mutations.WithLabelValues("create_place", ResultOK)))
	require.Equal(t, 2.0, testutil.ToFloat64(m.MapCommands.WithLabelValues("fly_to")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/api/state", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Panics.WithLabelValues("/api/places/{id}")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Subscribers))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	require.NotPanics(t, func() {
		m.Refresh("places", nil)
		m.Mutation("x", nil)
		m.MapCommand("x")
		m.Request("GET", "/", 200, 0)
		m.Panic("/")
		m.StreamSubscribers(1)
	})
}
