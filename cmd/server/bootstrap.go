package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/formstore/internal/api"
	"github.com/charlesng35/formstore/internal/app"
	"github.com/charlesng35/formstore/internal/app/maintenance"
	"github.com/charlesng35/formstore/internal/database"
	"github.com/charlesng35/formstore/internal/handlers"
	"github.com/charlesng35/formstore/internal/monitoring"
	"github.com/charlesng35/formstore/internal/monitoring/checks"
	"github.com/charlesng35/formstore/internal/services"
	"github.com/charlesng35/formstore/internal/storage"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB         *gorm.DB
	Store      storage.Store
	StartupErr error
	Entries    *services.EntryService
	Monitoring *monitoring.Module
	Stats      *maintenance.StatsJob
	Router     *gin.Engine
}

// bootstrapRuntime selects the entry store, wires services and builds the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			_ = stack.Shutdown(context.Background(), log)
		}
	}()

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	selection, err := storage.ParseSelection(cfg.Storage.Mode)
	if err != nil {
		return nil, err
	}

	dbCfg := convertDatabaseConfig(cfg)
	if err := stack.openStorage(ctx, selection, dbCfg, cfg.Storage.FallbackOnError, log); err != nil {
		return nil, err
	}

	stack.Entries, err = services.NewEntryService(stack.Store, services.WithListLimit(cfg.Storage.ListLimit))
	if err != nil {
		return nil, fmt.Errorf("initialise entry service: %w", err)
	}

	stack.Monitoring = monitoring.NewModule(monitoring.Options{})
	health := stack.Monitoring.Health()
	health.Register(checks.Storage(checks.StorageState{Mode: string(stack.Store.Mode()), StartupErr: stack.StartupErr}))
	if pinger := databasePinger(stack.Store); pinger != nil {
		health.Register(checks.Database(pinger, 0))
	}
	health.Register(checks.Maintenance(stack.Monitoring, 0))

	stack.Stats = maintenance.NewStatsJob(stack.Store,
		maintenance.WithSchedule(cfg.Monitoring.StatsSchedule),
		maintenance.WithRecorder(stack.Monitoring),
	)
	if err := stack.Stats.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	stack.Router, err = api.NewRouter(api.Deps{
		Config:     cfg,
		Entries:    stack.Entries,
		Prober:     stack.prober(selection, dbCfg),
		Connection: dbCfg.Info(),
		StartupErr: stack.StartupErr,
		Monitoring: stack.Monitoring,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// openStorage applies the configured selection. Only the database selection
// turns a connection failure into a startup error.
func (s *runtimeStack) openStorage(ctx context.Context, selection storage.Selection, dbCfg database.Config, fallbackOnError bool, log *zap.Logger) error {
	if selection == storage.SelectMemory {
		s.Store = storage.NewMemoryStore()
		log.Info("storage selected",
			zap.String("storage", string(storage.ModeMemory)),
			zap.String("hint", "set DB_HOST, DB_USER, DB_PASSWORD and DB_NAME with STORAGE_MODE=auto to persist entries"),
		)
		return nil
	}

	db, err := initialiseDatabase(ctx, dbCfg)
	if err != nil {
		if selection == storage.SelectDatabase {
			return err
		}
		log.Warn("database unavailable, entries will be kept in memory and lost on restart",
			zap.String("driver", dbCfg.Driver),
			zap.String("host", dbCfg.Host),
			zap.Error(err),
		)
		s.Store = storage.NewMemoryStore()
		s.StartupErr = err
		return nil
	}
	s.DB = db

	dbStore, err := storage.NewDatabaseStore(db)
	if err != nil {
		return err
	}
	s.Store = dbStore

	if fallbackOnError {
		s.Store, err = storage.NewFallbackStore(dbStore, storage.NewMemoryStore())
		if err != nil {
			return err
		}
		log.Warn("storage fallback enabled, failed database operations are served from memory")
	}

	log.Info("storage selected", zap.String("storage", string(storage.ModeDatabase)), zap.String("driver", dbCfg.Driver))
	return nil
}

// prober returns the db-test prober. After a degraded auto start every probe
// dials a fresh connection so recovery of the database becomes visible.
func (s *runtimeStack) prober(selection storage.Selection, dbCfg database.Config) handlers.ConnectionProber {
	switch {
	case s.DB != nil:
		return database.NewProber(dbCfg, s.DB)
	case selection == storage.SelectAuto:
		return database.NewProber(dbCfg, nil)
	default:
		return nil
	}
}

func databasePinger(store storage.Store) checks.Pinger {
	switch st := store.(type) {
	case *storage.DatabaseStore:
		return st
	case *storage.FallbackStore:
		if dbStore, ok := st.Primary().(*storage.DatabaseStore); ok {
			return dbStore
		}
	}
	return nil
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) error {
	if s == nil {
		return nil
	}

	var errs error
	if s.Stats != nil {
		stopCtx := s.Stats.Stop()
		select {
		case <-stopCtx.Done():
		case <-ctx.Done():
			errs = multierr.Append(errs, fmt.Errorf("stop maintenance jobs: %w", ctx.Err()))
		}
	}

	if s.DB != nil {
		if err := database.Close(s.DB); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("close database: %w", err))
		}
		s.DB = nil
	}

	if errs != nil {
		log.Warn("runtime shutdown", zap.Error(errs))
	}
	return errs
}

func initialiseDatabase(ctx context.Context, dbCfg database.Config) (*gorm.DB, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	db, err := database.OpenAndMigrate(dbCfg)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func convertDatabaseConfig(cfg *app.Config) database.Config {
	src := cfg.Database
	return database.Config{
		Driver:          strings.ToLower(strings.TrimSpace(src.Driver)),
		Path:            strings.TrimSpace(src.Path),
		DSN:             strings.TrimSpace(src.DSN),
		Host:            strings.TrimSpace(src.Host),
		Port:            src.Port,
		Name:            strings.TrimSpace(src.Name),
		User:            strings.TrimSpace(src.User),
		Password:        src.Password,
		Options:         src.Options,
		MaxOpenConns:    src.MaxOpenConns,
		MaxIdleConns:    src.MaxIdleConns,
		ConnMaxLifetime: src.ConnMaxLifetime,
		ConnectTimeout:  src.ConnectTimeout,
	}
}
