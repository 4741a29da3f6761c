package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/charlesng35/formstore/pkg/metrics"
)

// Options control monitoring module configuration.
type Options struct {
	// Gatherer serves /metrics. Defaults to the process-wide Prometheus registry
	// where pkg/metrics collectors are registered.
	Gatherer prometheus.Gatherer
}

// Module groups the readiness probes, background job history and the
// Prometheus exposition handler.
type Module struct {
	gatherer prometheus.Gatherer
	health   *HealthManager
	jobs     *jobStore
}

// NewModule constructs a monitoring module.
func NewModule(opts Options) *Module {
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Module{
		gatherer: gatherer,
		health:   NewHealthManager(),
		jobs:     newJobStore(),
	}
}

// Handler returns an http.Handler serving Prometheus metrics.
func (m *Module) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Health exposes the readiness probe manager.
func (m *Module) Health() *HealthManager {
	if m == nil {
		return nil
	}
	return m.health
}

// RecordJobRun stores the outcome of a background job run.
func (m *Module) RecordJobRun(job string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.MaintenanceRuns.WithLabelValues(job, result).Inc()
	m.jobs.record(job, err, duration)
}

// Jobs returns the recorded job history sorted by job name.
func (m *Module) Jobs() []JobSummary {
	if m == nil {
		return nil
	}
	return m.jobs.snapshot()
}
