// Package store holds the durable single-process state: the seen-set used
// for dedup and the day/week quota counters. Both live in one local SQLite
// file so they survive restarts.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Store wraps the local SQLite database backing dedup and quota state.
type Store struct {
	db *sql.DB
}

// Open creates the database file (and parent directory) if needed and
// migrates the schema.
func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("store path is required")
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	// SQLite doesn't benefit from multiple connections, and a single
	// connection keeps the check-then-increment below serialized.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping store: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS seen (
			profile_hash TEXT PRIMARY KEY,
			first_seen_ts INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS quota (
			scope_key TEXT PRIMARY KEY,
			count INTEGER NOT NULL DEFAULT 0
		)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("migrate store: %w", err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// IsSeen reports whether the profile hash was marked on any previous run.
func (s *Store) IsSeen(ctx context.Context, hash string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM seen WHERE profile_hash = ?`, hash,
	).Scan(&one)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query seen: %w", err)
	}

	return true, nil
}

// MarkSeen records the hash with its first-seen timestamp. Marking an
// already-seen hash is a no-op, not an error.
func (s *Store) MarkSeen(ctx context.Context, hash string, ts int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO seen (profile_hash, first_seen_ts) VALUES (?, ?)`,
		hash, ts,
	)
	if err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}

	return nil
}

// CheckAndIncrement atomically consumes one unit of quota for the scope key.
// It returns true when the counter was below the limit and has been
// incremented; a denial mutates nothing.
func (s *Store) CheckAndIncrement(ctx context.Context, scopeKey string, limit int) (bool, error) {
	if limit <= 0 {
		return false, nil
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO quota (scope_key, count) VALUES (?, 0)`, scopeKey,
	)
	if err != nil {
		return false, fmt.Errorf("seed quota counter: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE quota SET count = count + 1 WHERE scope_key = ? AND count < ?`,
		scopeKey, limit,
	)
	if err != nil {
		return false, fmt.Errorf("increment quota counter: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("increment quota counter: %w", err)
	}

	return affected == 1, nil
}

// QuotaCount returns the current counter for a scope key, 0 when absent.
func (s *Store) QuotaCount(ctx context.Context, scopeKey string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT count FROM quota WHERE scope_key = ?`, scopeKey,
	).Scan(&count)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query quota counter: %w", err)
	}

	return count, nil
}
