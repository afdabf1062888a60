package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics of the record store
type Metrics struct {
	Operations      *prometheus.CounterVec
	PersistDuration prometheus.Histogram
	Records         *prometheus.GaugeVec
	CascadeDeleted  prometheus.Counter
	LoadSkipped     prometheus.Counter
	MirrorSyncs     *prometheus.CounterVec
}

// NewMetrics creates the store metrics and registers them on reg.
// Pass prometheus.DefaultRegisterer to expose them on promhttp.Handler().
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_operations_total",
			Help:      "The total number of store operations by result",
		}, []string{"operation", "result"}),
		PersistDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "record_persist_duration_seconds",
			Help:      "Time taken to write the record file",
			Buckets:   prometheus.DefBuckets,
		}),
		Records: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "The number of records held in memory per kind",
		}, []string{"kind"}),
		CascadeDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cascade_deleted_total",
			Help:      "Flights removed because their client or airline was deleted",
		}),
		LoadSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_skipped_total",
			Help:      "Invalid entries skipped while loading record files",
		}),
		MirrorSyncs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mirror_sync_total",
			Help:      "Snapshot pushes to the mirror by result",
		}, []string{"result"}),
	}
}
