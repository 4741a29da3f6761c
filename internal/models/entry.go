package models

import (
	"time"

	"gorm.io/gorm"
)

// EntryTableName is the table backing Entry in every supported database.
const EntryTableName = "data_entries"

// Entry is the single value submitted through the form. The same representation is
// used by the database and the in-memory store.
type Entry struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Value     string    `gorm:"size:255;not null" json:"value"`
	CreatedAt time.Time `gorm:"index:idx_created_at" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the table name stable across gorm naming strategies.
func (Entry) TableName() string {
	return EntryTableName
}

// BeforeCreate normalises timestamps to UTC so both stores encode them identically.
func (e *Entry) BeforeCreate(tx *gorm.DB) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = tx.NowFunc()
	}
	e.CreatedAt = e.CreatedAt.UTC()
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = e.CreatedAt
	}
	e.UpdatedAt = e.UpdatedAt.UTC()
	return nil
}
