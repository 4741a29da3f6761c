package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/formstore/internal/app"
	"github.com/charlesng35/formstore/internal/middleware"
	"github.com/charlesng35/formstore/internal/monitoring"
	"github.com/charlesng35/formstore/internal/services"
	"github.com/charlesng35/formstore/internal/storage"
)

func testConfig() *app.Config {
	return &app.Config{
		Server:  app.ServerConfig{Port: 3001, CORSOrigins: []string{"*"}},
		Storage: app.StorageConfig{Mode: "memory", ListLimit: 100},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
		},
	}
}

func newTestRouter(t *testing.T, cfg *app.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	entries, err := services.NewEntryService(storage.NewMemoryStore())
	require.NoError(t, err)

	router, err := NewRouter(Deps{
		Config:     cfg,
		Entries:    entries,
		Monitoring: monitoring.NewModule(monitoring.Options{}),
	})
	require.NoError(t, err)
	return router
}

func TestNewRouterRequiresDependencies(t *testing.T) {
	_, err := NewRouter(Deps{})
	require.Error(t, err)

	_, err = NewRouter(Deps{Config: testConfig()})
	require.Error(t, err)
}

func TestRouter_PublicRoutes(t *testing.T) {
	router := newTestRouter(t, testConfig())

	for _, path := range []string{"/health", "/api/health", "/api/health/ready", "/api/db-test", "/api/data"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, path)
		require.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader), path)
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, testConfig())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/data", strings.NewReader(`{"value":"metric"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	require.Contains(t, body, "formstore_entries_created_total")
	require.Contains(t, body, "formstore_api_latency_seconds")
}

func TestRouter_MetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Monitoring.Prometheus.Enabled = false
	router := newTestRouter(t, cfg)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_PreflightAllowed(t *testing.T) {
	router := newTestRouter(t, testConfig())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodOptions, "/api/data", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
