package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/charlesng35/formstore/internal/models"
)

// MemoryStore keeps entries in process memory. Contents are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []models.Entry
	nextID  int64
	now     func() time.Time
}

// MemoryOption customises a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the clock used to stamp entries.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore returns an empty store whose IDs start at 1.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		nextID: 1,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Mode() Mode {
	return ModeMemory
}

func (s *MemoryStore) Create(ctx context.Context, value string) (models.Entry, Mode, error) {
	if err := ctx.Err(); err != nil {
		return models.Entry{}, ModeMemory, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().UTC()
	entry := models.Entry{
		ID:        s.nextID,
		Value:     value,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	s.nextID++
	s.entries = append(s.entries, entry)

	return entry, ModeMemory, nil
}

func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]models.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]models.Entry, len(s.entries))
	copy(out, s.entries)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.entries)), nil
}
