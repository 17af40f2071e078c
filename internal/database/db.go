// Package database stores rendered calendar documents in SQLite so repeated
// exports of the same year, format and theme are served without re-rendering.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// =============================================================================
// Connection
// =============================================================================

// DB is the document cache.
type DB struct {
	*sql.DB
	logger *slog.Logger
}

// MemoryPath opens a private in-memory cache. Its contents live as long as
// the single pooled connection does.
const MemoryPath = ":memory:"

// Config holds database configuration options.
type Config struct {
	Path            string        // SQLite file, or MemoryPath
	MaxOpenConns    int           // 1: SQLite has a single writer
	MaxIdleConns    int           // keep at least 1 for MemoryPath
	ConnMaxLifetime time.Duration // 0 keeps connections forever
	BusyTimeout     time.Duration // wait for the write lock (default 5s)
}

// DefaultConfig returns the settings for a cache file at path.
//
// Exports are written rarely and read often. One connection serialises the
// writes, and WAL lets a rendering request read while another stores.
func DefaultConfig(path string) Config {
	return Config{
		Path:            path,
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		BusyTimeout:     5 * time.Second,
	}
}

// MemoryConfig returns the settings for a throwaway in-memory cache, used
// by tests and by servers that should not touch the disk. The connection
// is never recycled because closing it would drop every document.
func MemoryConfig() Config {
	return Config{
		Path:         MemoryPath,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		BusyTimeout:  5 * time.Second,
	}
}

// InMemory reports whether cfg points at an in-memory cache.
func (cfg Config) InMemory() bool {
	return cfg.Path == MemoryPath
}

// dsn builds the go-sqlite3 connection string.
func (cfg Config) dsn() string {
	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	if cfg.InMemory() {
		return fmt.Sprintf("%s?_busy_timeout=%d", MemoryPath, busy.Milliseconds())
	}
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=%d",
		cfg.Path, busy.Milliseconds())
}

// Open opens the document cache. The caller closes it.
func Open(cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Path == "" {
		return nil, errors.New("open document cache: empty path")
	}
	if cfg.InMemory() {
		cfg.ConnMaxLifetime = 0
		cfg.MaxIdleConns = max(cfg.MaxIdleConns, 1)
	}

	if !cfg.InMemory() {
		if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create cache directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("open document cache: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping document cache: %w", err)
	}

	logger.Debug("document cache opened",
		slog.String("path", cfg.Path),
		slog.Bool("in_memory", cfg.InMemory()),
	)

	return &DB{
		DB:     db,
		logger: logger,
	}, nil
}

// Close closes the document cache.
func (db *DB) Close() error {
	db.logger.Debug("document cache closed")
	return db.DB.Close()
}

// Health reports whether the cache answers queries.
func (db *DB) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("document cache ping failed: %w", err)
	}

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&n); err != nil {
		return fmt.Errorf("document cache not migrated: %w", err)
	}

	return nil
}

// =============================================================================
// Migrations
// =============================================================================

// Migrate applies pending schema versions in one transaction and returns
// how many ran. A failed version leaves the schema as it was.
func (db *DB) Migrate(ctx context.Context) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	// Ensure schema_migrations table exists
	_, err = tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`)
	if err != nil {
		return 0, fmt.Errorf("create schema_migrations table: %w", err)
	}

	// Get already applied versions
	applied := make(map[int]bool)
	rows, err := tx.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return 0, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return 0, fmt.Errorf("scan migration version: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate migration versions: %w", err)
	}

	// Apply migrations in order
	count := 0
	for version := 1; version <= len(migrationsSQL); version++ {
		if applied[version] {
			db.logger.Debug("migration already applied",
				slog.Int("version", version),
			)
			continue
		}

		db.logger.Info("applying cache schema version",
			slog.Int("version", version),
		)

		content, ok := migrationsSQL[version]
		if !ok {
			return count, fmt.Errorf("migration %d not found", version)
		}

		if _, err := tx.ExecContext(ctx, content); err != nil {
			return count, fmt.Errorf("execute migration %d: %w", version, err)
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version) VALUES (?)",
			version,
		)
		if err != nil {
			return count, fmt.Errorf("record migration %d: %w", version, err)
		}

		count++
	}

	if err := tx.Commit(); err != nil {
		return count, fmt.Errorf("commit migrations: %w", err)
	}

	db.logger.Debug("cache schema current",
		slog.Int("applied", count),
		slog.Int("total", len(migrationsSQL)),
	)

	return count, nil
}

// =============================================================================
// Transaction Helpers
// =============================================================================

// Tx is a transaction on the document cache.
type Tx struct {
	*sql.Tx
}

// BeginTx starts a transaction.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := db.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{tx}, nil
}

// WithTx runs fn in a transaction, committing when fn returns nil.
// GetDocument uses it to count a hit and read the row atomically.
func (db *DB) WithTx(ctx context.Context, fn func(*Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// =============================================================================
// Error Types
// =============================================================================

// ErrNotFound is returned when nothing is cached under a key.
var ErrNotFound = errors.New("document not cached")

// IsNotFound reports whether err means a cache miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, sql.ErrNoRows)
}
