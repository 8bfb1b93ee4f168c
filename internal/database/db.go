package database

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Config holds database configuration.
type Config struct {
	DatabasePath string
}

// DB wraps the sqlite connection and owns schema migrations.
type DB struct {
	conn *sql.DB
}

// NewDB opens (creating if needed) the sqlite database at the configured
// path and runs any pending migrations.
func NewDB(cfg Config) (*DB, error) {
	if cfg.DatabasePath == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := cfg.DatabasePath + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// sqlite handles one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent upserts.
	conn.SetMaxOpenConns(1)

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &DB{conn: conn}, nil
}

func migrate(conn *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.Up(conn, "migrations")
}

// Connection returns the underlying sql.DB for repository construction.
func (db *DB) Connection() *sql.DB {
	return db.conn
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
