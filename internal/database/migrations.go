package database

import "github.com/charlesng35/formstore/internal/models"

// migratedModels lists every model managed by AutoMigrate.
func migratedModels() []any {
	return []any{
		&models.Entry{},
	}
}
