package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/formstore/internal/api"
	"github.com/charlesng35/formstore/internal/app"
	"github.com/charlesng35/formstore/internal/database"
	dbtestutil "github.com/charlesng35/formstore/internal/database/testutil"
	"github.com/charlesng35/formstore/internal/handlers"
	"github.com/charlesng35/formstore/internal/monitoring"
	"github.com/charlesng35/formstore/internal/services"
	"github.com/charlesng35/formstore/internal/storage"
	"github.com/charlesng35/formstore/pkg/response"
)

// Env encapsulates a fully-wired API instance for handler tests.
type Env struct {
	T          *testing.T
	DB         *gorm.DB
	Store      storage.Store
	Entries    *services.EntryService
	Monitoring *monitoring.Module
	Router     *gin.Engine
}

// EnvOption customises NewEnv.
type EnvOption func(*envConfig)

type envConfig struct {
	database   bool
	fallback   bool
	prober     handlers.ConnectionProber
	store      storage.Store
	startupErr error
}

// WithDatabase backs the API with an isolated in-memory SQLite database.
func WithDatabase() EnvOption {
	return func(cfg *envConfig) { cfg.database = true }
}

// WithFallback wraps the database store so failures degrade to memory.
func WithFallback() EnvOption {
	return func(cfg *envConfig) {
		cfg.database = true
		cfg.fallback = true
	}
}

// WithProber overrides the db-test prober.
func WithProber(p handlers.ConnectionProber) EnvOption {
	return func(cfg *envConfig) { cfg.prober = p }
}

// WithStartupError simulates an auto start that fell back to memory after err.
func WithStartupError(err error) EnvOption {
	return func(cfg *envConfig) { cfg.startupErr = err }
}

// WithStore serves requests from store.
func WithStore(store storage.Store) EnvOption {
	return func(cfg *envConfig) { cfg.store = store }
}

// TestConfig returns the configuration used by NewEnv.
func TestConfig() *app.Config {
	return &app.Config{
		Server: app.ServerConfig{
			Port:        3001,
			Environment: "test",
			CORSOrigins: []string{"*"},
		},
		Database: app.DatabaseConfig{
			Driver: "mysql",
			Host:   "localhost",
			User:   "root",
			Name:   "webapp_db",
		},
		Storage: app.StorageConfig{
			Mode:      "auto",
			ListLimit: services.DefaultListLimit,
		},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
		},
	}
}

// NewEnv provisions a fresh handler test environment. Without options the API
// runs on the in-memory store.
func NewEnv(t *testing.T, opts ...EnvOption) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	var cfg envConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	appCfg := TestConfig()
	env := &Env{T: t}

	var prober handlers.ConnectionProber
	switch {
	case cfg.store != nil:
		env.Store = cfg.store
	case cfg.database:
		env.DB = dbtestutil.MustOpenTestDB(t, dbtestutil.WithAutoMigrate())
		dbStore, err := storage.NewDatabaseStore(env.DB)
		require.NoError(t, err)
		env.Store = dbStore
		if cfg.fallback {
			env.Store, err = storage.NewFallbackStore(dbStore, storage.NewMemoryStore())
			require.NoError(t, err)
		}
		prober = database.NewProber(database.Config{Driver: "sqlite"}, env.DB)
	default:
		env.Store = storage.NewMemoryStore()
	}
	if cfg.prober != nil {
		prober = cfg.prober
	}

	entries, err := services.NewEntryService(env.Store, services.WithListLimit(appCfg.Storage.ListLimit))
	require.NoError(t, err)
	env.Entries = entries

	env.Monitoring = monitoring.NewModule(monitoring.Options{Gatherer: prometheus.DefaultGatherer})

	router, err := api.NewRouter(api.Deps{
		Config:     appCfg,
		Entries:    entries,
		Prober:     prober,
		Connection: database.ConnectionInfo{Host: "localhost", User: "root", Database: "webapp_db"},
		StartupErr: cfg.startupErr,
		Monitoring: env.Monitoring,
	})
	require.NoError(t, err)
	env.Router = router

	return env
}

// Request executes an HTTP request against the test router, JSON encoding body when present.
func (e *Env) Request(method, path string, body any) *httptest.ResponseRecorder {
	e.T.Helper()

	if body == nil {
		return e.RawRequest(method, path, "")
	}
	data, err := json.Marshal(body)
	require.NoError(e.T, err)
	return e.RawRequest(method, path, string(data))
}

// RawRequest sends body verbatim as application/json.
func (e *Env) RawRequest(method, path, body string) *httptest.ResponseRecorder {
	e.T.Helper()

	req, err := http.NewRequest(method, path, bytes.NewBufferString(body))
	require.NoError(e.T, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// DecodeError parses the error payload written by failed requests.
func DecodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorBody {
	t.Helper()
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

// DecodeInto unmarshals the response body into dest.
func DecodeInto[T any](t *testing.T, w *httptest.ResponseRecorder, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}
