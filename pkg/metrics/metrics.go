package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EntriesCreated counts persisted entries by the backend that stored them (database|memory).
	EntriesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formstore_entries_created_total",
			Help: "Total number of entries persisted",
		},
		[]string{"storage"},
	)

	// StorageFallbacks counts operations served by the in-memory store after a database failure.
	StorageFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formstore_storage_fallbacks_total",
			Help: "Total number of storage operations that degraded to memory",
		},
		[]string{"operation"},
	)

	// EntriesStored reports the entry count of the active store, refreshed by the stats job.
	EntriesStored = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "formstore_entries_stored",
			Help: "Number of entries held by the active store",
		},
		[]string{"storage"},
	)

	// MaintenanceRuns counts background job executions by outcome.
	MaintenanceRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formstore_maintenance_runs_total",
			Help: "Total number of maintenance job runs",
		},
		[]string{"job", "result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "formstore_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
