package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/charlesng35/formstore/internal/storage"
	"github.com/charlesng35/formstore/pkg/logger"
	"github.com/charlesng35/formstore/pkg/metrics"
)

const (
	// StatsJobName labels runs of the storage statistics job.
	StatsJobName = "storage_stats"

	defaultStatsSpec    = "@every 1m"
	defaultStatsTimeout = 10 * time.Second
)

// RunRecorder receives the outcome of every job run.
type RunRecorder interface {
	RecordJobRun(job string, err error, duration time.Duration)
}

// StatsJob periodically refreshes the formstore_entries_stored gauge from the
// active store and, when write fallback is enabled, from its in-memory spill store.
type StatsJob struct {
	store    storage.Store
	recorder RunRecorder
	cron     *cron.Cron
	schedule string
	timeout  time.Duration
	log      *zap.Logger
}

// Option customises the StatsJob.
type Option func(*StatsJob)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(job *StatsJob) {
		if c != nil {
			job.cron = c
		}
	}
}

// WithSchedule overrides the cron specification of the job.
func WithSchedule(spec string) Option {
	return func(job *StatsJob) {
		if spec != "" {
			job.schedule = spec
		}
	}
}

// WithRecorder reports run outcomes to recorder.
func WithRecorder(recorder RunRecorder) Option {
	return func(job *StatsJob) {
		job.recorder = recorder
	}
}

// NewStatsJob constructs a StatsJob for store. A nil store disables the job.
func NewStatsJob(store storage.Store, opts ...Option) *StatsJob {
	job := &StatsJob{
		store:    store,
		schedule: defaultStatsSpec,
		timeout:  defaultStatsTimeout,
		log:      logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(job)
	}

	if job.cron == nil {
		job.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return job
}

// Start registers the job with the cron scheduler and launches it.
func (j *StatsJob) Start() error {
	if j.store == nil {
		return nil
	}

	if _, err := j.cron.AddFunc(j.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()
		if err := j.RunOnce(ctx); err != nil {
			j.log.Warn("storage stats failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("maintenance: schedule %q: %w", j.schedule, err)
	}

	j.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (j *StatsJob) Stop() context.Context {
	if j.cron == nil {
		return context.Background()
	}
	return j.cron.Stop()
}

// RunOnce refreshes the gauges immediately. Failures of the individual stores
// are aggregated.
func (j *StatsJob) RunOnce(ctx context.Context) error {
	if j.store == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	var errs error

	if err := observeCount(ctx, j.store); err != nil {
		errs = multierr.Append(errs, err)
	}

	if fallback, ok := j.store.(*storage.FallbackStore); ok {
		if err := observeCount(ctx, fallback.Secondary()); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if j.recorder != nil {
		j.recorder.RecordJobRun(StatsJobName, errs, time.Since(start))
	}
	return errs
}

func observeCount(ctx context.Context, store storage.Store) error {
	count, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count %s entries: %w", store.Mode(), err)
	}
	metrics.EntriesStored.WithLabelValues(string(store.Mode())).Set(float64(count))
	return nil
}
