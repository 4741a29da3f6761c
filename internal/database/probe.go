package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ProbeResult is the row returned by the connectivity probe query.
type ProbeResult struct {
	Test int `json:"test"`
}

// ConnectionInfo lists the non-secret connection parameters reported to clients.
type ConnectionInfo struct {
	Driver   string `json:"driver,omitempty"`
	Host     string `json:"host"`
	User     string `json:"user"`
	Database string `json:"database"`
}

// Info returns the connection parameters of cfg without credentials.
func (cfg Config) Info() ConnectionInfo {
	info := ConnectionInfo{
		Driver:   normaliseDriver(cfg.Driver),
		Host:     cfg.Host,
		User:     cfg.User,
		Database: cfg.Name,
	}
	if info.Driver == "sqlite" {
		info.Database = cfg.Path
		if info.Database == "" {
			info.Database = ":memory:"
		}
	}
	return info
}

// TestConnection runs a lightweight SELECT against an open handle.
func TestConnection(ctx context.Context, db *gorm.DB) (ProbeResult, error) {
	if db == nil {
		return ProbeResult{}, errors.New("nil database handle")
	}

	var result ProbeResult
	if err := db.WithContext(ctx).Raw("SELECT 1 AS test").Scan(&result).Error; err != nil {
		return ProbeResult{}, err
	}
	return result, nil
}

// Prober tests connectivity either through a live handle or, when the service
// started without one, by dialing a short-lived connection per call.
type Prober struct {
	cfg Config
	db  *gorm.DB
}

// NewProber returns a Prober backed by db. A nil db makes every probe open a
// fresh connection using cfg.
func NewProber(cfg Config, db *gorm.DB) *Prober {
	return &Prober{cfg: cfg, db: db}
}

// Info exposes the non-secret connection parameters of the prober.
func (p *Prober) Info() ConnectionInfo {
	return p.cfg.Info()
}

// Probe executes the connectivity query.
func (p *Prober) Probe(ctx context.Context) (ProbeResult, error) {
	if p.db != nil {
		return TestConnection(ctx, p.db)
	}

	db, err := Open(p.cfg)
	if err != nil {
		return ProbeResult{}, err
	}
	defer closeQuietly(db)

	result, err := TestConnection(ctx, db)
	if err != nil {
		return ProbeResult{}, fmt.Errorf("probe query: %w", err)
	}
	return result, nil
}
