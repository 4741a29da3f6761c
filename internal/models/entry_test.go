package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestEntryTableName(t *testing.T) {
	require.Equal(t, "data_entries", Entry{}.TableName())
}

func TestEntryBeforeCreateNormalisesTimestamps(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:models_entry_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&Entry{}))

	loc := time.FixedZone("UTC-3", -3*60*60)
	created := time.Date(2024, 5, 1, 9, 30, 0, 0, loc)
	entry := Entry{Value: "hola", CreatedAt: created}
	require.NoError(t, db.Create(&entry).Error)

	require.NotZero(t, entry.ID)
	require.Equal(t, time.UTC, entry.CreatedAt.Location())
	require.True(t, entry.CreatedAt.Equal(created))
	require.True(t, entry.UpdatedAt.Equal(entry.CreatedAt))

	require.True(t, db.Migrator().HasIndex(&Entry{}, "idx_created_at"))
}

func TestEntryJSONShape(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	payload, err := json.Marshal(Entry{ID: 3, Value: "x", CreatedAt: ts, UpdatedAt: ts})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	require.Equal(t, float64(3), decoded["id"])
	require.Equal(t, "x", decoded["value"])
	require.Equal(t, "2024-05-01T12:00:00Z", decoded["created_at"])
	require.Equal(t, "2024-05-01T12:00:00Z", decoded["updated_at"])
}
