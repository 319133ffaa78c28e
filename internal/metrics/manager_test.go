package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gathered returns the value of every sample keyed by family name and the
// first label value, or the bare family name for unlabelled metrics.
func gathered(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	out := map[string]float64{}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			key := f.GetName()
			if len(m.GetLabel()) > 0 {
				key += "/" + m.GetLabel()[0].GetValue()
			}
			switch {
			case m.GetCounter() != nil:
				out[key] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[key] = m.GetGauge().GetValue()
			}
		}
	}
	return out
}

func TestNewManagerRegisters(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()

	m.CounterCheckpoints.WithLabelValues("saved").Inc()
	m.CounterCheckpoints.WithLabelValues("saved").Inc()
	m.CounterCheckpoints.WithLabelValues("failed").Inc()
	m.CounterRestTimersExpired.Inc()
	m.GaugeActiveSessions.Set(3)

	got := gathered(t, reg)
	assert.Equal(t, 2.0, got["fittrack_test_checkpoints_total/saved"])
	assert.Equal(t, 1.0, got["fittrack_test_checkpoints_total/failed"])
	assert.Equal(t, 1.0, got["fittrack_test_rest_timers_expired_total"])
	assert.Equal(t, 3.0, got["fittrack_test_active_sessions"])
}

func TestManagersUseSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewTestManager()
		NewTestManager()
	})
}
