// Package database handles the connection to the SQLite or Postgres store
// and the transaction-scoped repositories used by the services
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Driver names a supported backend
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Config selects and configures the backend
type Config struct {
	Driver       Driver
	DSN          string
	MaxOpenConns int
}

// Store owns the connection pool. All reads and writes go through
// WithTx or View so that rank changes are always transactional.
type Store struct {
	db     *sql.DB
	driver Driver
}

// Open connects to the configured backend and runs migrations
func Open(ctx context.Context, cfg Config) (*Store, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		return OpenSQLite(ctx, cfg.DSN)
	case DriverPostgres:
		return OpenPostgres(ctx, cfg.DSN, cfg.MaxOpenConns)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// DefaultSQLitePath returns ~/.quadro/quadro.db, creating the directory
func DefaultSQLitePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	dir := filepath.Join(home, ".quadro")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	return filepath.Join(dir, "quadro.db"), nil
}

// OpenSQLite opens a SQLite database at dsn (":memory:" for tests).
// An empty dsn uses DefaultSQLitePath.
func OpenSQLite(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		path, err := DefaultSQLitePath()
		if err != nil {
			return nil, err
		}
		dsn = path
	}

	db, err := sql.Open("sqlite", sqliteDSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer; one connection serializes every transaction
	// and keeps an in-memory database alive for the life of the pool.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON", // required for CASCADE deletions
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			slog.Error("failed to apply pragma", "pragma", pragma, "error", err)
			closeQuietly(db)
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	return finishOpen(ctx, db, DriverSQLite)
}

// sqliteDSN makes file databases begin every transaction IMMEDIATE, so a
// writer in another process waits on busy_timeout instead of failing its
// first write after a read. In-memory databases live in one connection and
// are left as is.
func sqliteDSN(dsn string) string {
	if isMemoryDSN(dsn) || strings.Contains(dsn, "_txlock=") {
		return dsn
	}
	params := "_txlock=immediate&_pragma=busy_timeout(5000)"
	if strings.Contains(dsn, "?") {
		return dsn + "&" + params
	}
	return dsn + "?" + params
}

func isMemoryDSN(dsn string) bool {
	return strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") || strings.HasPrefix(dsn, "file::memory:")
}

// OpenPostgres opens a Postgres database through the pgx stdlib driver
func OpenPostgres(ctx context.Context, dsn string, maxOpenConns int) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres requires a DSN")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxOpenConns)
	}

	return finishOpen(ctx, db, DriverPostgres)
}

func finishOpen(ctx context.Context, db *sql.DB, driver Driver) (*Store, error) {
	if err := db.PingContext(ctx); err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := runMigrations(ctx, db, driver); err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db, driver: driver}, nil
}

func closeQuietly(db *sql.DB) {
	if err := db.Close(); err != nil {
		slog.Error("error closing db", "error", err)
	}
}

// Driver returns the backend in use
func (s *Store) Driver() Driver {
	return s.driver
}

// Ping checks that the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool
func (s *Store) Close() error {
	return s.db.Close()
}
