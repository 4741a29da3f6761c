package monitoring

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// JobSummary describes the recent history of a background job.
type JobSummary struct {
	Job                 string        `json:"job"`
	LastStatus          string        `json:"last_status"`
	LastRunAt           time.Time     `json:"last_run_at"`
	LastDuration        time.Duration `json:"last_duration"`
	LastError           string        `json:"last_error,omitempty"`
	ConsecutiveFailures uint64        `json:"consecutive_failures"`
	LastSuccessAt       time.Time     `json:"last_success_at"`
	TotalRuns           uint64        `json:"total_runs"`
}

type jobStore struct {
	mu   sync.Mutex
	jobs map[string]*JobSummary
	now  func() time.Time
}

func newJobStore() *jobStore {
	return &jobStore{
		jobs: make(map[string]*JobSummary),
		now:  time.Now,
	}
}

func (s *jobStore) record(job string, err error, duration time.Duration) {
	job = strings.TrimSpace(job)
	if job == "" {
		job = "unknown"
	}
	if duration < 0 {
		duration = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.jobs[job]
	if !ok {
		entry = &JobSummary{Job: job}
		s.jobs[job] = entry
	}

	now := s.now()
	entry.LastRunAt = now
	entry.LastDuration = duration
	entry.TotalRuns++

	if err != nil {
		entry.LastStatus = "failure"
		entry.LastError = err.Error()
		entry.ConsecutiveFailures++
		return
	}
	entry.LastStatus = "success"
	entry.LastError = ""
	entry.ConsecutiveFailures = 0
	entry.LastSuccessAt = now
}

func (s *jobStore) snapshot() []JobSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobSummary, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, *job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Job < out[j].Job })
	return out
}
