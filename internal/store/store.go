// Package store is the durable sink for aggregate results: one SQLite
// row per eval/model/run-batch. Failure to append is the caller's
// problem to log, never fatal to a run.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS eval_results (
	id          TEXT PRIMARY KEY,
	eval_name   TEXT NOT NULL,
	model_name  TEXT NOT NULL,
	mean_score  REAL NOT NULL,
	runs        INTEGER NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_eval_results_created
	ON eval_results (created_at);
`

// Row is one persisted aggregate result.
type Row struct {
	ID        string
	Eval      string
	Model     string
	Mean      float64
	Runs      int
	CreatedAt time.Time
}

// Store wraps the results database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the results database at path and runs
// the migration.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append durably records one aggregate result. A zero ID gets a fresh
// UUID; a zero timestamp gets the current time.
func (s *Store) Append(r Row) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	// store UTC so the TEXT column's lexical order matches time order
	r.CreatedAt = r.CreatedAt.UTC()
	_, err := s.db.Exec(
		`INSERT INTO eval_results (id, eval_name, model_name, mean_score, runs, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Eval, r.Model, r.Mean, r.Runs, r.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// Recent returns up to limit rows, newest first.
func (s *Store) Recent(limit int) ([]Row, error) {
	rows, err := s.db.Query(
		`SELECT id, eval_name, model_name, mean_score, runs, created_at
		 FROM eval_results ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// Since returns rows appended strictly after t, oldest first. The watch
// command polls with it.
func (s *Store) Since(t time.Time) ([]Row, error) {
	rows, err := s.db.Query(
		`SELECT id, eval_name, model_name, mean_score, runs, created_at
		 FROM eval_results WHERE created_at > ? ORDER BY created_at, id`,
		t.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

func scanRows(rows *sql.Rows) ([]Row, error) {
	var out []Row
	for rows.Next() {
		var r Row
		var created string
		if err := rows.Scan(&r.ID, &r.Eval, &r.Model, &r.Mean, &r.Runs, &created); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", created, err)
		}
		r.CreatedAt = t
		out = append(out, r)
	}
	return out, rows.Err()
}
