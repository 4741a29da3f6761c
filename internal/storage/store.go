package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/charlesng35/formstore/internal/models"
)

// Mode names the backend that holds entries.
type Mode string

const (
	ModeDatabase Mode = "database"
	ModeMemory   Mode = "memory"
)

// Store persists form entries. Implementations must be safe for concurrent use.
type Store interface {
	// Mode reports the backend serving requests.
	Mode() Mode
	// Create stores value and returns the entry together with the backend that
	// actually stored it.
	Create(ctx context.Context, value string) (models.Entry, Mode, error)
	// Recent returns at most limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]models.Entry, error)
	// Count returns the number of stored entries.
	Count(ctx context.Context) (int64, error)
}

// Selection is the startup strategy used to pick a Store.
type Selection string

const (
	SelectAuto     Selection = "auto"
	SelectDatabase Selection = "database"
	SelectMemory   Selection = "memory"
)

// ParseSelection validates a configured storage mode.
func ParseSelection(raw string) (Selection, error) {
	switch s := Selection(strings.ToLower(strings.TrimSpace(raw))); s {
	case "":
		return SelectAuto, nil
	case SelectAuto, SelectDatabase, SelectMemory:
		return s, nil
	default:
		return "", fmt.Errorf("storage: unknown mode %q", raw)
	}
}
