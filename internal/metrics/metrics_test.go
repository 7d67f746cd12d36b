package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gather returns counter values keyed by "name{label}" and histogram sample
// counts keyed the same way.
func gather(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]float64)
	for _, f := range families {
		for _, m := range f.GetMetric() {
			key := f.GetName()
			for _, l := range m.GetLabel() {
				key += "{" + l.GetValue() + "}"
			}
			switch {
			case m.GetCounter() != nil:
				out[key] = m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				out[key] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return out
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Rendered(true)
	m.Rendered(true)
	m.Rendered(false)
	m.Error("unresolved_reference")
	m.ObserveStage(StageParse, 3*time.Millisecond)
	m.ObserveStage(StageParse, time.Millisecond)

	assert.Equal(t, map[string]float64{
		"apirender_renders_total{success}":             2,
		"apirender_renders_total{failure}":             1,
		"apirender_errors_total{unresolved_reference}": 1,
		"apirender_stage_duration_seconds{parse}":      2,
	}, gather(t, reg))
}

func TestMetrics_RegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
	assert.NotPanics(t, func() { New(nil) })
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Rendered(true)
		m.Error("x")
		m.ObserveStage(StageRender, time.Second)
	})
}
