package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_RegistersInstruments(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()

	m.CounterReps.Inc()
	m.CounterFrames.WithLabelValues("standing").Add(3)
	m.CounterRequests.WithLabelValues("GET", "200").Inc()
	m.GaugeActiveSessions.Set(2)
	m.HistFrameDuration.Observe(0.0002)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"flexit_test_reps",
		"flexit_test_frames",
		"flexit_test_request",
		"flexit_test_active_sessions",
		"flexit_test_frame_duration_seconds",
	} {
		assert.True(t, names[want], "missing %s", want)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.CounterFrames.WithLabelValues("standing")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.GaugeActiveSessions))
}

func TestNewManager_SeparateRegistries(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewManager("flexit", "a", reg)

	assert.Panics(t, func() { NewManager("flexit", "a", reg) }, "same names on one registry collide")
	assert.NotPanics(t, func() { NewManager("flexit", "a", prometheus.NewRegistry()) })
}
