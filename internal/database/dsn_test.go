package database

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
)

func TestBuildMySQLDSNDefaults(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{User: "root", Name: "webapp_db"})
	require.NoError(t, err)

	parsed, err := mysqldriver.ParseDSN(dsn)
	require.NoError(t, err)
	require.Equal(t, "root", parsed.User)
	require.Equal(t, "tcp", parsed.Net)
	require.Equal(t, "127.0.0.1:3306", parsed.Addr)
	require.Equal(t, "webapp_db", parsed.DBName)
	require.True(t, parsed.ParseTime)
	require.Equal(t, time.UTC, parsed.Loc)
	require.Contains(t, dsn, "charset=utf8mb4")
}

func TestBuildMySQLDSNKeepsSpecialCharactersInPassword(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{
		User:     "app",
		Password: "p@ss:w/rd",
		Name:     "db",
		Host:     "db.example.com",
		Port:     3307,
		Options:  map[string]string{"tls": "skip-verify"},
	})
	require.NoError(t, err)

	parsed, err := mysqldriver.ParseDSN(dsn)
	require.NoError(t, err)
	require.Equal(t, "p@ss:w/rd", parsed.Passwd)
	require.Equal(t, "db.example.com:3307", parsed.Addr)
	require.Equal(t, "skip-verify", parsed.TLSConfig)
}

func TestBuildMySQLDSNRequiresUserAndName(t *testing.T) {
	_, err := buildMySQLDSN(Config{Host: "localhost"})
	require.Error(t, err)
}

func TestBuildPostgresDSNDefaults(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{User: "root", Name: "webapp_db"})
	require.NoError(t, err)
	require.Equal(t, "host=localhost port=5432 user=root dbname=webapp_db sslmode=disable", dsn)
}

func TestBuildPostgresDSNWithOptions(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{
		User:     "user",
		Name:     "db",
		Host:     "db.example.com",
		Port:     6543,
		Password: "it's secret",
		Options: map[string]string{
			"sslmode":     "require",
			"search_path": "public",
		},
	})
	require.NoError(t, err)

	for _, part := range []string{
		"host=db.example.com",
		"port=6543",
		"user=user",
		"dbname=db",
		`password='it\'s secret'`,
		"search_path=public",
		"sslmode=require",
	} {
		require.Contains(t, dsn, part)
	}
	require.NotContains(t, dsn, "sslmode=disable")
}

func TestBuildPostgresDSNRequiresUserAndName(t *testing.T) {
	_, err := buildPostgresDSN(Config{})
	require.Error(t, err)
}

func TestBuildDSNAddsConnectTimeout(t *testing.T) {
	mysqlDSN, err := buildMySQLDSN(Config{User: "root", Name: "webapp_db", ConnectTimeout: 3 * time.Second})
	require.NoError(t, err)
	parsed, err := mysqldriver.ParseDSN(mysqlDSN)
	require.NoError(t, err)
	require.Equal(t, 3*time.Second, parsed.Timeout)

	pgDSN, err := buildPostgresDSN(Config{User: "root", Name: "webapp_db", ConnectTimeout: 3 * time.Second})
	require.NoError(t, err)
	require.Contains(t, pgDSN, "connect_timeout=3")
}

func TestBuildDSNPrefersExplicitDSN(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{DSN: "user:pw@tcp(db:3306)/app"})
	require.NoError(t, err)
	require.Equal(t, "user:pw@tcp(db:3306)/app", dsn)
}

func TestBuildSQLiteDSN(t *testing.T) {
	first, err := buildSQLiteDSN(Config{})
	require.NoError(t, err)
	second, err := buildSQLiteDSN(Config{Path: ":memory:"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(first, "file:"))
	require.Contains(t, first, "mode=memory")
	require.NotEqual(t, first, second)

	path := filepath.Join(t.TempDir(), "nested", "formstore.db")
	dsn, err := buildSQLiteDSN(Config{Path: path})
	require.NoError(t, err)
	require.Contains(t, dsn, filepath.ToSlash(path))
	require.DirExists(t, filepath.Dir(path))
}

func TestDialectorForRejectsUnknownDriver(t *testing.T) {
	_, err := dialectorFor("oracle", Config{Driver: "oracle"})
	require.ErrorContains(t, err, "unsupported database driver")
}
