package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the analysis module.
type Metrics struct {
	// Computation latency by operation, cache hits included
	OperationLatency *prometheus.HistogramVec

	// Cache lookups by operation
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// Cache backend failures by action ("get", "set")
	CacheErrors *prometheus.CounterVec
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "podium_analysis_operation_duration_seconds",
			Help:    "Duration of analysis operations by operation name",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		CacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "podium_analysis_cache_hits_total",
			Help: "Analysis results served from cache",
		}, []string{"operation"}),
		CacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "podium_analysis_cache_misses_total",
			Help: "Analysis results computed because the cache had no entry",
		}, []string{"operation"}),
		CacheErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "podium_analysis_cache_errors_total",
			Help: "Cache backend failures by action",
		}, []string{"action"}),
	}
}

// ObserveOperation records the time since start for operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	if m != nil {
		m.OperationLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) IncrementCacheHit(operation string) {
	if m != nil {
		m.CacheHits.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) IncrementCacheMiss(operation string) {
	if m != nil {
		m.CacheMisses.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) IncrementCacheError(action string) {
	if m != nil {
		m.CacheErrors.WithLabelValues(action).Inc()
	}
}
