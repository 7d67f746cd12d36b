package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Stage names used for the duration histogram.
const (
	StageParse    = "parse"
	StageValidate = "validate"
	StageResolve  = "resolve"
	StageRender   = "render"
	StagePDF      = "pdf"
)

// Metrics holds the renderer's Prometheus collectors. A nil *Metrics
// records nothing.
type Metrics struct {
	RendersTotal  *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	ErrorsTotal   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg when reg is not nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RendersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "apirender_renders_total",
			Help: "Total number of documents rendered, by outcome",
		}, []string{"outcome"}),

		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "apirender_stage_duration_seconds",
			Help:    "Time spent in each rendering stage",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"stage"}),

		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "apirender_errors_total",
			Help: "Total number of reported errors, by error type",
		}, []string{"type"}),
	}
	if reg != nil {
		reg.MustRegister(m.RendersTotal, m.StageDuration, m.ErrorsTotal)
	}
	return m
}

// ObserveStage records how long stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// Rendered counts one finished document.
func (m *Metrics) Rendered(success bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.RendersTotal.WithLabelValues(outcome).Inc()
}

// Error counts one reported error of the given type.
func (m *Metrics) Error(errType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errType).Inc()
}
