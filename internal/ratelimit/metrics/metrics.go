package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultAllowed = "allowed"
	ResultDenied  = "denied"
	ResultError   = "error"
)

type Metrics struct {
	Decisions   *prometheus.CounterVec
	CircuitOpen prometheus.Gauge
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "podium_ratelimit_decisions_total",
			Help: "Rate limit decisions by endpoint class and result",
		}, []string{"class", "result"}),
		CircuitOpen: factory.NewGauge(prometheus.GaugeOpts{
			Name: "podium_ratelimit_circuit_open",
			Help: "1 while the shared limiter store is bypassed for the in-memory fallback",
		}),
	}
}

func (m *Metrics) ObserveDecision(class, result string) {
	if m != nil {
		m.Decisions.WithLabelValues(class, result).Inc()
	}
}

func (m *Metrics) SetCircuitOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.CircuitOpen.Set(1)
		return
	}
	m.CircuitOpen.Set(0)
}
