// Package integration runs the repositories and services against a real
// PostgreSQL started with testcontainers. The suites are skipped with -short.
package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/config"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/migration"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	testDBName     = "pimpos_test"
	testDBUser     = "postgres"
	testDBPassword = "pimpos123"
)

var (
	// one container per test binary, truncated between tests
	sharedMu        sync.Mutex
	sharedContainer *tcpostgres.PostgresContainer
	sharedConfig    config.DatabaseConfig
)

// TestDB is a migrated database connection for one test
type TestDB struct {
	DB  *gorm.DB
	t   *testing.T
	db  *persistence.Database
	cfg config.DatabaseConfig
}

// NewTestDB returns a clean, migrated database backed by the shared container.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}

	cfg := sharedDatabase(t)

	db, err := persistence.NewDatabase(&cfg, zapLogger(), 0)
	require.NoError(t, err, "Failed to connect to database")

	tdb := &TestDB{DB: db.DB, t: t, db: db, cfg: cfg}
	tdb.CleanTables()

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close database: %v", err)
		}
	})
	return tdb
}

// Config returns the connection settings of the test database
func (tdb *TestDB) Config() config.DatabaseConfig {
	return tdb.cfg
}

// CleanTables truncates every application table
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	var tables []string
	err := tdb.DB.Raw(`
		SELECT tablename FROM pg_tables
		WHERE schemaname = 'public'
		AND tablename != 'schema_migrations'
	`).Scan(&tables).Error
	require.NoError(tdb.t, err, "Failed to list tables")

	for _, table := range tables {
		err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %q CASCADE", table)).Error
		require.NoError(tdb.t, err, "Failed to truncate %s", table)
	}
}

// CleanupSharedContainer terminates the shared container. Call it from TestMain.
func CleanupSharedContainer() {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedContainer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = sharedContainer.Terminate(ctx)
	sharedContainer = nil
}

func sharedDatabase(t *testing.T) config.DatabaseConfig {
	t.Helper()

	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedContainer != nil {
		return sharedConfig
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase(testDBName),
		tcpostgres.WithUsername(testDBUser),
		tcpostgres.WithPassword(testDBPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")
	runMigrations(t, dsn)

	sharedContainer = container
	sharedConfig = config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            testDBUser,
		Password:        testDBPassword,
		DBName:          testDBName,
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5,
		ConnMaxIdleTime: 1,
		LogLevel:        dbLogLevel(),
	}
	return sharedConfig
}

// runMigrations applies migrations/ through the same migrator the CLI uses
func runMigrations(t *testing.T, dsn string) {
	t.Helper()

	path := findMigrationsPath()
	require.NotEmpty(t, path, "Could not find migrations directory")

	m, err := migration.NewFromURL(dsn, path, zapLogger())
	require.NoError(t, err, "Failed to create migrator")
	defer func() { _ = m.Close() }()

	require.NoError(t, m.Up(), "Failed to run migrations")
}

func findMigrationsPath() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}

	dir := filepath.Dir(filename)
	for i := 0; i < 4; i++ {
		candidate := filepath.Join(dir, "migrations")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		dir = filepath.Dir(dir)
	}
	return ""
}

// TEST_DB_DEBUG=1 prints every statement
func dbLogLevel() string {
	if os.Getenv("TEST_DB_DEBUG") != "" {
		return "info"
	}
	return "silent"
}

func zapLogger() *zap.Logger {
	if os.Getenv("TEST_DB_DEBUG") != "" {
		return zap.NewExample()
	}
	return zap.NewNop()
}
