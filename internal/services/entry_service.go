package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/charlesng35/formstore/internal/models"
	"github.com/charlesng35/formstore/internal/storage"
	appErrors "github.com/charlesng35/formstore/pkg/errors"
	"github.com/charlesng35/formstore/pkg/logger"
	"github.com/charlesng35/formstore/pkg/metrics"
)

// DefaultListLimit caps the number of entries returned by List.
const DefaultListLimit = 100

// Confirmation messages returned after a value is stored.
const (
	MessageSavedDatabase = "Dato guardado exitosamente en base de datos"
	MessageSavedMemory   = "Dato guardado exitosamente (en memoria)"
)

// CreateResult describes a stored entry and where it ended up.
type CreateResult struct {
	Entry   models.Entry
	Storage storage.Mode
}

// Message returns the confirmation text for the backend that stored the entry.
func (r CreateResult) Message() string {
	if r.Storage == storage.ModeMemory {
		return MessageSavedMemory
	}
	return MessageSavedDatabase
}

// EntryServiceOption customises an EntryService.
type EntryServiceOption func(*EntryService)

// WithListLimit overrides DefaultListLimit. Non-positive values are ignored.
func WithListLimit(limit int) EntryServiceOption {
	return func(s *EntryService) {
		if limit > 0 {
			s.listLimit = limit
		}
	}
}

// EntryService validates submitted values and delegates persistence to the active store.
type EntryService struct {
	store     storage.Store
	listLimit int
	log       *zap.Logger
}

// NewEntryService constructs an EntryService over store.
func NewEntryService(store storage.Store, opts ...EntryServiceOption) (*EntryService, error) {
	if store == nil {
		return nil, errors.New("entry service: store is required")
	}

	svc := &EntryService{
		store:     store,
		listLimit: DefaultListLimit,
		log:       logger.WithModule("entries"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Mode reports the storage backend selected at startup.
func (s *EntryService) Mode() storage.Mode {
	return s.store.Mode()
}

// Create stores value unchanged once it is known to be non-blank.
func (s *EntryService) Create(ctx context.Context, value string) (CreateResult, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(value) == "" {
		return CreateResult{}, appErrors.ErrValueRequired
	}

	entry, mode, err := s.store.Create(ctx, value)
	if err != nil {
		s.log.Error("save entry", zap.String("storage", string(s.store.Mode())), zap.Error(err))
		return CreateResult{}, appErrors.ErrSaveFailed.WithInternal(fmt.Errorf("entry service: create: %w", err))
	}

	metrics.EntriesCreated.WithLabelValues(string(mode)).Inc()
	s.log.Debug("entry saved", zap.Int64("id", entry.ID), zap.String("storage", string(mode)))

	return CreateResult{Entry: entry, Storage: mode}, nil
}

// List returns the most recent entries, newest first.
func (s *EntryService) List(ctx context.Context) ([]models.Entry, error) {
	ctx = ensureContext(ctx)

	entries, err := s.store.Recent(ctx, s.listLimit)
	if err != nil {
		s.log.Error("list entries", zap.String("storage", string(s.store.Mode())), zap.Error(err))
		return nil, appErrors.ErrFetchFailed.WithInternal(fmt.Errorf("entry service: list: %w", err))
	}
	if entries == nil {
		entries = []models.Entry{}
	}
	return entries, nil
}

// Count returns the number of entries held by the active store.
func (s *EntryService) Count(ctx context.Context) (int64, error) {
	return s.store.Count(ensureContext(ctx))
}
