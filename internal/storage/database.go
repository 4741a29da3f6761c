package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/charlesng35/formstore/internal/database"
	"github.com/charlesng35/formstore/internal/models"
)

// DatabaseStore persists entries in the data_entries table.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore constructs a DatabaseStore on an opened and migrated handle.
func NewDatabaseStore(db *gorm.DB) (*DatabaseStore, error) {
	if db == nil {
		return nil, errors.New("database store: db is required")
	}
	return &DatabaseStore{db: db}, nil
}

func (s *DatabaseStore) Mode() Mode {
	return ModeDatabase
}

func (s *DatabaseStore) Create(ctx context.Context, value string) (models.Entry, Mode, error) {
	entry := models.Entry{Value: value}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return models.Entry{}, ModeDatabase, fmt.Errorf("database store: insert entry: %w", err)
	}
	return entry, ModeDatabase, nil
}

func (s *DatabaseStore) Recent(ctx context.Context, limit int) ([]models.Entry, error) {
	query := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var entries []models.Entry
	if err := query.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("database store: list entries: %w", err)
	}
	for i := range entries {
		entries[i].CreatedAt = entries[i].CreatedAt.UTC()
		entries[i].UpdatedAt = entries[i].UpdatedAt.UTC()
	}
	return entries, nil
}

func (s *DatabaseStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Entry{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("database store: count entries: %w", err)
	}
	return count, nil
}

// Ping verifies the underlying pool is reachable.
func (s *DatabaseStore) Ping(ctx context.Context) error {
	return database.Ping(ctx, s.db)
}

// DB exposes the underlying handle for health checks and probes.
func (s *DatabaseStore) DB() *gorm.DB {
	return s.db
}
