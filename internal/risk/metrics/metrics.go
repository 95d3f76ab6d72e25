package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the risk module.
type Metrics struct {
	// Line outcomes by line and result ("ineligible" or a category)
	LineOutcome *prometheus.CounterVec

	// Evaluations by result: "ok", "invalid_profile", "error"
	Evaluations *prometheus.CounterVec

	// Duration of one pipeline run
	EvaluateLatency prometheus.Histogram

	// Audit events that could not be emitted
	AuditFailures prometheus.Counter
}

// New creates a Metrics instance registered with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the risk metrics with reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LineOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "riskprofile_line_outcomes_total",
			Help: "Risk profile outcomes by product line and result",
		}, []string{"line", "result"}),

		Evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "riskprofile_evaluations_total",
			Help: "Risk profile evaluations by result",
		}, []string{"result"}),

		EvaluateLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "riskprofile_evaluate_duration_seconds",
			Help:    "Duration of a full risk profile evaluation",
			Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01},
		}),

		AuditFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "riskprofile_audit_failures_total",
			Help: "Audit events dropped because the emitter failed",
		}),
	}
}

// IncrementLineOutcome records the result of one line. Collection lines
// record one result per item.
func (m *Metrics) IncrementLineOutcome(line, result string) {
	if m != nil {
		m.LineOutcome.WithLabelValues(line, result).Inc()
	}
}

// IncrementEvaluation records an evaluation result.
func (m *Metrics) IncrementEvaluation(result string) {
	if m != nil {
		m.Evaluations.WithLabelValues(result).Inc()
	}
}

// ObserveEvaluateLatency records the total evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

// IncrementAuditFailure records a failed audit emission.
func (m *Metrics) IncrementAuditFailure() {
	if m != nil {
		m.AuditFailures.Inc()
	}
}
