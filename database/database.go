// Package database manages the SQLite connection and schema migrations.
//
// database/sql gives every SQL database one common interface. The SQLite
// driver registers itself on import, which is why modernc.org/sqlite is a
// blank import here: only its side effect is needed.
package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite" // pure-Go SQLite driver, no CGO needed
)

// migrationsFS embeds the SQL migrations so the binary needs no files next
// to it at deploy time.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

// TxQuerier is satisfied by both *sql.DB and *sql.Tx.
// Repositories depend on it so they work the same inside and outside a
// transaction.
type TxQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB wraps the connection pool. *sql.DB is safe for concurrent use.
type DB struct {
	Conn *sql.DB
}

// New opens (creating if needed) the SQLite file at dbPath and applies all
// pending migrations.
func New(dbPath string, logger *slog.Logger) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// foreign_keys is off by default in SQLite; WAL allows concurrent reads
	// while a write is in progress.
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	if err := migrateUp(dsn, logger); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connected", slog.String("path", dbPath))
	return &DB{Conn: conn}, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.Conn.Close()
}

// migrateUp applies the embedded migrations on a dedicated connection.
// The migrate sqlite driver closes the *sql.DB it was given, so it never
// shares the application pool.
func migrateUp(dsn string, logger *slog.Logger) error {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}

	driver, err := migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	if err != nil {
		conn.Close()
		return fmt.Errorf("init migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		driver.Close()
		return fmt.Errorf("init migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		driver.Close()
		return fmt.Errorf("init migrator: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("migration close failed", slog.Any("source_error", srcErr), slog.Any("db_error", dbErr))
		}
	}()

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return fmt.Errorf("schema is dirty at version %d, manual intervention required", version)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Debug("schema up to date", slog.Uint64("version", uint64(version)))
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	newVersion, _, _ := m.Version()
	logger.Info("migrations applied",
		slog.Uint64("from_version", uint64(version)),
		slog.Uint64("to_version", uint64(newVersion)),
	)
	return nil
}
