package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the HTTP-level Prometheus metrics shared by every route.
type Metrics struct {
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
}

// New registers the metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the metrics on reg; tests pass a fresh registry.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "podium_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route pattern, method and status",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "method", "status"}),
		RequestsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "podium_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		}),
	}
}

// ObserveRequest records one finished request.
func (m *Metrics) ObserveRequest(route, method, status string, d time.Duration) {
	if m != nil {
		m.RequestDuration.WithLabelValues(route, method, status).Observe(d.Seconds())
	}
}
