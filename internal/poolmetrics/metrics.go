// Package poolmetrics registers the small set of Prometheus collectors a
// pool.Pool reports against, when a caller supplies a registerer.
package poolmetrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics is a bundle of per-pool counters and a shutdown histogram.
// pool.New only builds one when the caller passes a non-nil
// prometheus.Registerer; otherwise the pool holds a nil *Metrics and checks
// for nil before each update.
type Metrics struct {
	ItemsAdded      prometheus.Counter
	ItemsRemoved    prometheus.Counter
	Dispatched      prometheus.Counter
	WorkerPanics    prometheus.Counter
	ShutdownSeconds prometheus.Histogram
}

// New builds and, if reg is non-nil, registers a Metrics bundle labeled
// with poolName.
func New(reg prometheus.Registerer, poolName string) *Metrics {
	labels := prometheus.Labels{"pool": poolName}
	m := &Metrics{
		ItemsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "messagingpool_items_added_total",
			Help:        "Total number of pool items successfully added.",
			ConstLabels: labels,
		}),
		ItemsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "messagingpool_items_removed_total",
			Help:        "Total number of pool items removed.",
			ConstLabels: labels,
		}),
		Dispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "messagingpool_messages_dispatched_total",
			Help:        "Total number of item messages dispatched to workers.",
			ConstLabels: labels,
		}),
		WorkerPanics: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "messagingpool_worker_panics_total",
			Help:        "Total number of worker goroutines that exited via panic.",
			ConstLabels: labels,
		}),
		ShutdownSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "messagingpool_shutdown_duration_seconds",
			Help:        "Wall-clock time taken by a graceful Shutdown call.",
			ConstLabels: labels,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.ItemsAdded, m.ItemsRemoved, m.Dispatched, m.WorkerPanics, m.ShutdownSeconds)
	}
	return m
}
