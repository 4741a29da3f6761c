package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable LoadConfig reads so the host environment
// cannot leak into assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, aliases := range envAliases {
		for _, name := range aliases {
			t.Setenv(name, "")
		}
	}
	for _, name := range []string{
		"FORMSTORE_SERVER_PORT",
		"FORMSTORE_STORAGE_MODE",
		"FORMSTORE_STORAGE_LIST_LIMIT",
		"FORMSTORE_DATABASE_HOST",
	} {
		t.Setenv(name, "")
	}
}

func emptyDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	dir := emptyDir(t)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 3001, cfg.Server.Port)
	require.Equal(t, "development", cfg.Server.Environment)
	require.False(t, cfg.Server.IsProduction())
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	require.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)

	require.Equal(t, "mysql", cfg.Database.Driver)
	require.Equal(t, "localhost", cfg.Database.Host)
	require.Equal(t, "root", cfg.Database.User)
	require.Empty(t, cfg.Database.Password)
	require.Equal(t, "webapp_db", cfg.Database.Name)
	require.Equal(t, 10, cfg.Database.MaxOpenConns)
	require.Equal(t, 5, cfg.Database.MaxIdleConns)
	require.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	require.Equal(t, 5*time.Second, cfg.Database.ConnectTimeout)

	require.Equal(t, "auto", cfg.Storage.Mode)
	require.False(t, cfg.Storage.FallbackOnError)
	require.Equal(t, 100, cfg.Storage.ListLimit)

	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/metrics", cfg.Monitoring.Prometheus.Endpoint)
	require.Equal(t, "@every 1m", cfg.Monitoring.StatsSchedule)
}

func TestLoadConfigFromFile(t *testing.T) {
	clearEnv(t)
	path, err := filepath.Abs("testdata")
	require.NoError(t, err)
	emptyDir(t)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.True(t, cfg.Server.IsProduction())
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSOrigins)
	require.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.example.com", cfg.Database.Host)
	require.Equal(t, 5433, cfg.Database.Port)
	require.Equal(t, "formstore", cfg.Database.User)
	require.Equal(t, "s3cret", cfg.Database.Password)
	require.Equal(t, "entries", cfg.Database.Name)
	require.Equal(t, map[string]string{"sslmode": "require"}, cfg.Database.Options)
	require.Equal(t, 20, cfg.Database.MaxOpenConns)
	require.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)

	require.Equal(t, "database", cfg.Storage.Mode)
	require.True(t, cfg.Storage.FallbackOnError)
	require.Equal(t, 50, cfg.Storage.ListLimit)

	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/internal/metrics", cfg.Monitoring.Prometheus.Endpoint)
	require.Equal(t, "@every 5m", cfg.Monitoring.StatsSchedule)
}

func TestLoadConfigPlainEnvironmentVariables(t *testing.T) {
	clearEnv(t)
	dir := emptyDir(t)

	t.Setenv("PORT", "4000")
	t.Setenv("NODE_ENV", "production")
	t.Setenv("DB_HOST", "mariadb")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "forms")
	t.Setenv("STORAGE_MODE", "memory")
	t.Setenv("STORAGE_FALLBACK_ON_ERROR", "true")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 4000, cfg.Server.Port)
	require.True(t, cfg.Server.IsProduction())
	require.Equal(t, "mariadb", cfg.Database.Host)
	require.Equal(t, "app", cfg.Database.User)
	require.Equal(t, "pw", cfg.Database.Password)
	require.Equal(t, "forms", cfg.Database.Name)
	require.Equal(t, "memory", cfg.Storage.Mode)
	require.True(t, cfg.Storage.FallbackOnError)
}

func TestLoadConfigPrefixedVariablesWin(t *testing.T) {
	clearEnv(t)
	dir := emptyDir(t)

	t.Setenv("PORT", "4000")
	t.Setenv("FORMSTORE_SERVER_PORT", "5000")
	t.Setenv("FORMSTORE_STORAGE_LIST_LIMIT", "25")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	require.Equal(t, 5000, cfg.Server.Port)
	require.Equal(t, 25, cfg.Storage.ListLimit)
}

func TestLoadConfigRejectsInvalidSettings(t *testing.T) {
	clearEnv(t)
	dir := emptyDir(t)

	t.Setenv("STORAGE_MODE", "redis")
	_, err := LoadConfig(dir)
	require.ErrorContains(t, err, "unknown mode")

	t.Setenv("STORAGE_MODE", "")
	t.Setenv("PORT", "70000")
	_, err = LoadConfig(dir)
	require.ErrorContains(t, err, "server.port")
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{
		Server:  ServerConfig{Port: 3001},
		Storage: StorageConfig{Mode: "auto", ListLimit: 100},
	}
	require.NoError(t, cfg.Validate())

	cfg.Storage.ListLimit = 0
	require.Error(t, cfg.Validate())

	cfg.Storage.ListLimit = 100
	cfg.Database.Port = -1
	require.Error(t, cfg.Validate())
}
