// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists recognition results in SQLite so unchanged images
// are not sent to the model again on later runs.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store manages the recognition cache database.
type Store struct {
	db   *sql.DB
	path string
}

// Stats summarizes the cache contents.
type Stats struct {
	Entries  int       `json:"entries" yaml:"entries"`
	Hits     int       `json:"hits" yaml:"hits"`
	Oldest   time.Time `json:"oldest,omitempty" yaml:"oldest,omitempty"`
	Newest   time.Time `json:"newest,omitempty" yaml:"newest,omitempty"`
	Location string    `json:"location" yaml:"location"`
}

// Open opens or creates the cache database at path and creates the schema
// if it does not exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS recognitions (
			key TEXT PRIMARY KEY,
			source_path TEXT NOT NULL,
			latex TEXT NOT NULL,
			hits INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			used_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_recognitions_source ON recognitions(source_path)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Lookup returns the cached LaTeX for key. A hit bumps the entry's usage.
func (s *Store) Lookup(ctx context.Context, key string) (string, bool, error) {
	var latex string
	err := s.db.QueryRowContext(ctx, `SELECT latex FROM recognitions WHERE key = ?`, key).Scan(&latex)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("looking up %s: %w", key, err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx,
		`UPDATE recognitions SET hits = hits + 1, used_at = ? WHERE key = ?`, now, key,
	); err != nil {
		return latex, true, fmt.Errorf("recording hit for %s: %w", key, err)
	}
	return latex, true, nil
}

// Store records latex for key, replacing a previous entry.
func (s *Store) Store(ctx context.Context, key, source, latex string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recognitions (key, source_path, latex, hits, created_at, used_at)
		VALUES (?, ?, ?, 0, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			source_path = excluded.source_path,
			latex = excluded.latex,
			used_at = excluded.used_at`,
		key, source, latex, now, now,
	)
	if err != nil {
		return fmt.Errorf("storing %s: %w", key, err)
	}
	return nil
}

// Stats reports entry counts and age range.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	st := Stats{Location: s.path}
	var oldest, newest sql.NullString
	var hits sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*), sum(hits), min(created_at), max(created_at) FROM recognitions`,
	).Scan(&st.Entries, &hits, &oldest, &newest)
	if err != nil {
		return st, fmt.Errorf("reading cache stats: %w", err)
	}
	st.Hits = int(hits.Int64)
	if oldest.Valid {
		st.Oldest, _ = time.Parse(time.RFC3339Nano, oldest.String)
	}
	if newest.Valid {
		st.Newest, _ = time.Parse(time.RFC3339Nano, newest.String)
	}
	return st, nil
}

// Clear deletes every entry and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recognitions`)
	if err != nil {
		return 0, fmt.Errorf("clearing cache: %w", err)
	}
	return res.RowsAffected()
}
