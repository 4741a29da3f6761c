package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/formstore/internal/database"
	"github.com/charlesng35/formstore/internal/monitoring"
	"github.com/charlesng35/formstore/internal/services"
	"github.com/charlesng35/formstore/internal/storage"
)

const (
	databaseConnected     = "Connected"
	databaseNotConfigured = "Not configured"

	messagePoolNotInitialised = "Pool de conexiones no inicializado"
	messageConnectionOK       = "Conexión exitosa a la base de datos"
)

// ConnectionProber runs the db-test query against the configured database.
type ConnectionProber interface {
	Probe(ctx context.Context) (database.ProbeResult, error)
	Info() database.ConnectionInfo
}

// HealthDeps wires the health handler.
type HealthDeps struct {
	Entries *services.EntryService
	// Prober is nil when no database is configured.
	Prober ConnectionProber
	// Connection is reported by db-test when Prober is nil.
	Connection database.ConnectionInfo
	// StartupErr is the database error that forced the in-memory store at startup.
	StartupErr error
	Readiness  *monitoring.HealthManager
}

// HealthHandler serves the health, readiness and db-test endpoints.
type HealthHandler struct {
	entries    *services.EntryService
	prober     ConnectionProber
	connection database.ConnectionInfo
	startupErr error
	readiness  *monitoring.HealthManager
	now        func() time.Time
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(deps HealthDeps) (*HealthHandler, error) {
	if deps.Entries == nil {
		return nil, errors.New("health handler: entry service is required")
	}
	readiness := deps.Readiness
	if readiness == nil {
		readiness = monitoring.NewHealthManager()
	}
	return &HealthHandler{
		entries:    deps.Entries,
		prober:     deps.Prober,
		connection: deps.Connection,
		startupErr: deps.StartupErr,
		readiness:  readiness,
		now:        time.Now,
	}, nil
}

type healthPayload struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Storage   string `json:"storage"`
	Database  string `json:"database"`
	Entries   int64  `json:"entries"`
}

// GET /api/health. Always answers 200; database problems are reported in the body.
func (h *HealthHandler) Health(c *gin.Context) {
	mode := h.entries.Mode()
	payload := healthPayload{
		Status:    "OK",
		Timestamp: h.now().UTC().Format(time.RFC3339Nano),
		Storage:   string(mode),
		Database:  databaseNotConfigured,
	}

	count, err := h.entries.Count(requestContext(c))
	switch {
	case mode != storage.ModeDatabase:
		payload.Entries = count
		if h.startupErr != nil {
			payload.Database = "Error: " + h.startupErr.Error()
		}
	case err != nil:
		payload.Database = "Error: " + err.Error()
	default:
		payload.Database = databaseConnected
		payload.Entries = count
	}

	c.JSON(http.StatusOK, payload)
}

// GET /api/health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	report := h.readiness.Evaluate(requestContext(c))
	status := http.StatusOK
	if !report.Success {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"success":    report.Success,
		"status":     report.Status,
		"checks":     report.Checks,
		"checked_at": h.now().UTC(),
	})
}

type dbTestPayload struct {
	Connected bool                     `json:"connected"`
	Message   string                   `json:"message"`
	Result    *database.ProbeResult    `json:"result,omitempty"`
	Config    *database.ConnectionInfo `json:"config,omitempty"`
}

// GET /api/db-test. Always answers 200 and never includes the password.
func (h *HealthHandler) DBTest(c *gin.Context) {
	if h.prober == nil {
		info := h.connection
		c.JSON(http.StatusOK, dbTestPayload{
			Message: messagePoolNotInitialised,
			Config:  &info,
		})
		return
	}

	result, err := h.prober.Probe(requestContext(c))
	if err != nil {
		info := h.prober.Info()
		c.JSON(http.StatusOK, dbTestPayload{
			Message: err.Error(),
			Config:  &info,
		})
		return
	}

	c.JSON(http.StatusOK, dbTestPayload{
		Connected: true,
		Message:   messageConnectionOK,
		Result:    &result,
	})
}
