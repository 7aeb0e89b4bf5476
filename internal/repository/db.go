package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite" // SQLite driver
)

// Config selects and tunes the storage backend.
type Config struct {
	// Path is the SQLite database file, used when DSN is empty.
	Path string
	// DSN, when set to a postgres:// URL, selects the Postgres backend.
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// Dialect names the SQL backend so queries can be rebound.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS literature_domains (
	file_path  TEXT PRIMARY KEY,
	file_name  TEXT,
	domain     TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// Open connects to SQLite (default) or Postgres (postgres:// DSN) and ensures
// the schema exists. Closing the returned DB closes the underlying pool.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*sql.DB, Dialect, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dialect := DialectSQLite
	var db *sql.DB
	switch {
	case strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://"):
		dialect = DialectPostgres
		logger.Info("connecting to postgres")
		pc, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			return nil, "", fmt.Errorf("parse dsn: %w", err)
		}
		if cfg.MaxConns > 0 {
			pc.MaxConns = cfg.MaxConns
		}
		if cfg.MinConns > 0 {
			pc.MinConns = cfg.MinConns
		}
		if cfg.MaxConnLifetime > 0 {
			pc.MaxConnLifetime = cfg.MaxConnLifetime
		}
		pc.ConnConfig.RuntimeParams["application_name"] = "litdomain"

		dialCtx := ctx
		if cfg.DialTimeout > 0 {
			var cancel context.CancelFunc
			dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
			defer cancel()
		}
		pool, err := pgxpool.NewWithConfig(dialCtx, pc)
		if err != nil {
			return nil, "", fmt.Errorf("connect postgres: %w", err)
		}
		db = stdlib.OpenDBFromPool(pool)

	default:
		path := cfg.Path
		if path == "" {
			path = "./data/litdomain.db"
		}
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, "", fmt.Errorf("create data directory: %w", err)
			}
		}
		logger.Info("opening sqlite database", "path", path)
		var err error
		// WAL + busy_timeout so parallel workers serialize cleanly on upserts
		db, err = sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
		if err != nil {
			return nil, "", fmt.Errorf("open sqlite: %w", err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("ensure schema: %w", err)
	}

	logger.Info("database ready", "dialect", string(dialect))
	return db, dialect, nil
}
