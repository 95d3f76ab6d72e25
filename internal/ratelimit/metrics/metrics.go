package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Decisions       *prometheus.CounterVec
	PrimaryFailures prometheus.Counter
	Degraded        prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "riskprofile_ratelimit_decisions_total",
			Help: "Rate limit decisions by route and result",
		}, []string{"route", "result"}), // result: "allowed", "denied", "error"
		PrimaryFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "riskprofile_ratelimit_primary_failures_total",
			Help: "Total number of failed checks against the primary bucket store",
		}),
		Degraded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "riskprofile_ratelimit_degraded",
			Help: "1 while the circuit breaker routes checks to the in-memory fallback",
		}),
	}
}

func (m *Metrics) IncrementDecision(route, result string) {
	if m != nil {
		m.Decisions.WithLabelValues(route, result).Inc()
	}
}

func (m *Metrics) IncrementPrimaryFailures() {
	if m != nil {
		m.PrimaryFailures.Inc()
	}
}

func (m *Metrics) SetDegraded(degraded bool) {
	if m == nil {
		return
	}
	if degraded {
		m.Degraded.Set(1)
		return
	}
	m.Degraded.Set(0)
}
