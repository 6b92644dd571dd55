package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver
)

type dialect struct {
	name     string
	driver   string
	getQuery string
	setQuery string
}

var (
	sqliteDialect = dialect{
		name:     BackendSQLite,
		driver:   "sqlite",
		getQuery: `SELECT value FROM kv_entries WHERE key = ?`,
		setQuery: `INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
	}
	postgresDialect = dialect{
		name:     BackendPostgres,
		driver:   "postgres",
		getQuery: `SELECT value FROM kv_entries WHERE key = $1`,
		setQuery: `INSERT INTO kv_entries (key, value, updated_at) VALUES ($1, $2, $3)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
	}
)

// SQL is a Store backed by a kv_entries table.
type SQL struct {
	db      *sql.DB
	dialect dialect
}

// OpenSQLite opens (creating if needed) the SQLite database at path and
// migrates the kv schema.
func OpenSQLite(ctx context.Context, path string) (*SQL, error) {
	if path == "" {
		return nil, errors.New("sqlite store: database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	return openSQL(ctx, sqliteDialect, path)
}

// OpenPostgres connects to the database named by dsn and migrates the kv schema.
func OpenPostgres(ctx context.Context, dsn string) (*SQL, error) {
	if dsn == "" {
		return nil, errors.New("postgres store: dsn is required")
	}
	return openSQL(ctx, postgresDialect, dsn)
}

func openSQL(ctx context.Context, d dialect, source string) (*SQL, error) {
	db, err := sql.Open(d.driver, source)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", d.name, err)
	}
	if d.name == BackendSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s database: %w", d.name, err)
	}

	if err := runMigrations(d, source); err != nil {
		db.Close()
		return nil, err
	}

	slog.Debug("kv store opened", "component", "storage", "backend", d.name)
	return &SQL{db: db, dialect: d}, nil
}

// Get implements Store.
func (s *SQL) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ValidateKey(key); err != nil {
		return nil, false, err
	}
	var value []byte
	err := s.db.QueryRowContext(ctx, s.dialect.getQuery, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements Store.
func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.setQuery, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	slog.Debug("kv value written", "component", "storage", "backend", s.dialect.name, "key", key, "bytes", len(value))
	return nil
}

// Close implements Store.
func (s *SQL) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
