package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reload results.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics provides observability for dataset reloads.
type Metrics struct {
	Reloads        *prometheus.CounterVec
	ReloadDuration prometheus.Histogram

	// Size of the current snapshot
	Entries      prometheus.Gauge
	DecodeIssues prometheus.Gauge
	DroppedRows  prometheus.Gauge
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Reloads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "podium_dataset_reloads_total",
			Help: "Dataset reloads by result",
		}, []string{"result"}),
		ReloadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "podium_dataset_reload_duration_seconds",
			Help:    "Time to load, profile, clean and store the dataset",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		Entries: factory.NewGauge(prometheus.GaugeOpts{
			Name: "podium_dataset_entries",
			Help: "Cleaned entries in the current snapshot",
		}),
		DecodeIssues: factory.NewGauge(prometheus.GaugeOpts{
			Name: "podium_dataset_decode_issues",
			Help: "Cells or rows the current snapshot could not decode",
		}),
		DroppedRows: factory.NewGauge(prometheus.GaugeOpts{
			Name: "podium_dataset_cleaning_dropped_rows",
			Help: "Rows removed by cleaning in the current snapshot",
		}),
	}
}

// ObserveReload records one reload attempt started at start.
func (m *Metrics) ObserveReload(result string, start time.Time) {
	if m == nil {
		return
	}
	m.Reloads.WithLabelValues(result).Inc()
	m.ReloadDuration.Observe(time.Since(start).Seconds())
}

// SetSnapshot publishes the size of the snapshot now being served.
func (m *Metrics) SetSnapshot(entries, issues, dropped int) {
	if m == nil {
		return
	}
	m.Entries.Set(float64(entries))
	m.DecodeIssues.Set(float64(issues))
	m.DroppedRows.Set(float64(dropped))
}
