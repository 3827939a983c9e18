package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const (
	defaultDirMode  = 0o755
	defaultFileMode = 0o600
)

var ErrNotFound = errors.New("store: not found")

// SQLiteStore keeps the version registry and user preferences.
type SQLiteStore struct {
	path     string
	db       *sql.DB
	defaults Defaults
}

// Defaults are returned for users that never set a preference.
type Defaults struct {
	Version  string
	Language string
}

func OpenSQLite(path string, defaults Defaults) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store: db path is required")
	}
	if defaults.Version == "" {
		defaults.Version = "RSV"
	}
	if defaults.Language == "" {
		defaults.Language = "english"
	}

	if err := os.MkdirAll(filepath.Dir(path), defaultDirMode); err != nil {
		return nil, fmt.Errorf("store: create dir: %w", err)
	}
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{path: path, db: db, defaults: defaults}
	ctx := context.Background()
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.seedVersions(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := os.Chmod(path, defaultFileMode); err != nil && !errors.Is(err, os.ErrNotExist) {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS versions (
			abbv TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			provider TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_versions_name ON versions(name)`,
		`CREATE TABLE IF NOT EXISTS preferences (
			user_id TEXT PRIMARY KEY,
			version TEXT NOT NULL,
			language TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	return nil
}
