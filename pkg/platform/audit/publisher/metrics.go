package publisher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for audit publishing.
type Metrics struct {
	Emitted         prometheus.Counter
	Sampled         prometheus.Counter
	Dropped         prometheus.Counter
	PersistFailures prometheus.Counter
}

// NewMetrics registers the audit metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Emitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "riskprofile_audit_emitted_total",
			Help: "Total number of audit events accepted for persistence",
		}),
		Sampled: factory.NewCounter(prometheus.CounterOpts{
			Name: "riskprofile_audit_sampled_total",
			Help: "Total number of operations audit events dropped by sampling",
		}),
		Dropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "riskprofile_audit_dropped_total",
			Help: "Total number of audit events dropped because the buffer was full",
		}),
		PersistFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "riskprofile_audit_persist_failures_total",
			Help: "Total number of audit event persistence failures",
		}),
	}
}

func (m *Metrics) incEmitted() {
	if m != nil {
		m.Emitted.Inc()
	}
}

func (m *Metrics) incSampled() {
	if m != nil {
		m.Sampled.Inc()
	}
}

func (m *Metrics) incDropped() {
	if m != nil {
		m.Dropped.Inc()
	}
}

func (m *Metrics) incPersistFailures() {
	if m != nil {
		m.PersistFailures.Inc()
	}
}
