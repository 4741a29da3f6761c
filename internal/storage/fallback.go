package storage

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/charlesng35/formstore/internal/models"
	"github.com/charlesng35/formstore/pkg/logger"
	"github.com/charlesng35/formstore/pkg/metrics"
)

// FallbackStore serves requests from a primary store and degrades individual
// operations to a secondary in-memory store when the primary fails. Degraded
// writes are reported as successful with ModeMemory, which hides the
// persistence failure from the caller.
type FallbackStore struct {
	primary   Store
	secondary *MemoryStore
	log       *zap.Logger
}

// NewFallbackStore wraps primary with an in-memory secondary.
func NewFallbackStore(primary Store, secondary *MemoryStore) (*FallbackStore, error) {
	if primary == nil {
		return nil, errors.New("fallback store: primary is required")
	}
	if secondary == nil {
		secondary = NewMemoryStore()
	}
	return &FallbackStore{
		primary:   primary,
		secondary: secondary,
		log:       logger.WithModule("storage"),
	}, nil
}

func (s *FallbackStore) Mode() Mode {
	return s.primary.Mode()
}

func (s *FallbackStore) Create(ctx context.Context, value string) (models.Entry, Mode, error) {
	entry, mode, err := s.primary.Create(ctx, value)
	if err == nil {
		return entry, mode, nil
	}
	if ctx.Err() != nil {
		return models.Entry{}, mode, err
	}

	s.degraded("create", err)
	return s.secondary.Create(ctx, value)
}

func (s *FallbackStore) Recent(ctx context.Context, limit int) ([]models.Entry, error) {
	entries, err := s.primary.Recent(ctx, limit)
	if err == nil {
		return entries, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	s.degraded("list", err)
	return s.secondary.Recent(ctx, limit)
}

func (s *FallbackStore) Count(ctx context.Context) (int64, error) {
	return s.primary.Count(ctx)
}

// Primary returns the wrapped primary store.
func (s *FallbackStore) Primary() Store {
	return s.primary
}

// Secondary returns the in-memory store holding degraded writes.
func (s *FallbackStore) Secondary() *MemoryStore {
	return s.secondary
}

func (s *FallbackStore) degraded(operation string, err error) {
	metrics.StorageFallbacks.WithLabelValues(operation).Inc()
	s.log.Warn("database operation failed, using memory store",
		zap.String("operation", operation),
		zap.Bool("connection_error", isConnectionError(err)),
		zap.Error(err),
	)
}
