package api

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/formstore/internal/app"
	"github.com/charlesng35/formstore/internal/database"
	"github.com/charlesng35/formstore/internal/handlers"
	"github.com/charlesng35/formstore/internal/middleware"
	"github.com/charlesng35/formstore/internal/monitoring"
	"github.com/charlesng35/formstore/internal/services"
)

// Deps lists everything the router needs to serve requests.
type Deps struct {
	Config  *app.Config
	Entries *services.EntryService
	// Prober answers /api/db-test. Nil in memory mode.
	Prober handlers.ConnectionProber
	// Connection is reported by /api/db-test when Prober is nil.
	Connection database.ConnectionInfo
	// StartupErr is set when an auto start fell back to memory.
	StartupErr error
	Monitoring *monitoring.Module
}

// NewRouter builds the Gin engine, wires middleware and registers routes.
func NewRouter(deps Deps) (*gin.Engine, error) {
	if deps.Config == nil {
		return nil, errors.New("config must be provided")
	}
	if deps.Entries == nil {
		return nil, errors.New("entry service must be provided")
	}
	cfg := deps.Config
	mon := deps.Monitoring
	if mon == nil {
		mon = monitoring.NewModule(monitoring.Options{})
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders(cfg.Server.IsProduction()))
	r.Use(middleware.CORS(cfg.Server.CORSOrigins...))

	r.NoRoute(middleware.NotFoundHandler)

	entryHandler, err := handlers.NewEntryHandler(deps.Entries)
	if err != nil {
		return nil, err
	}

	healthHandler, err := handlers.NewHealthHandler(handlers.HealthDeps{
		Entries:    deps.Entries,
		Prober:     deps.Prober,
		Connection: deps.Connection,
		StartupErr: deps.StartupErr,
		Readiness:  mon.Health(),
	})
	if err != nil {
		return nil, err
	}

	registerHealthRoutes(r, healthHandler)

	api := r.Group("/api")
	registerEntryRoutes(api, entryHandler)

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint)
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(mon.Handler()))
	}

	return r, nil
}

func registerEntryRoutes(router gin.IRouter, h *handlers.EntryHandler) {
	router.POST("/data", h.Create)
	router.GET("/data", h.List)
}
