// Package index maintains a small SQLite cache of practice pair
// metadata so browsing and stats do not have to decrypt every pair
// file. The pair files stay the source of truth; the index can be
// rebuilt from them at any time.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS pairs (
	name      TEXT PRIMARY KEY,
	source    TEXT NOT NULL,
	ts        TEXT NOT NULL,
	duration  INTEGER NOT NULL,
	memo      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS pairs_ts ON pairs (ts DESC);
`

// Entry is one indexed pair.
type Entry struct {
	Name            string
	Source          string
	Timestamp       time.Time
	DurationSeconds int
	Memo            string
}

// Index wraps the cache database.
type Index struct {
	db *sql.DB
}

// Open connects to the index at dsn, applies pragmas, and creates the
// schema.
func Open(dsn string) (*Index, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Index{db: db}, nil
}

// Close closes the database.
func (ix *Index) Close() error { return ix.db.Close() }

// Put inserts or replaces one entry.
func (ix *Index) Put(ctx context.Context, e Entry) error {
	_, err := ix.db.ExecContext(ctx, `
		INSERT INTO pairs (name, source, ts, duration, memo)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			source = excluded.source,
			ts = excluded.ts,
			duration = excluded.duration,
			memo = excluded.memo`,
		e.Name, e.Source, e.Timestamp.UTC().Format(time.RFC3339), e.DurationSeconds, e.Memo)
	if err != nil {
		return fmt.Errorf("index pair %s: %w", e.Name, err)
	}
	return nil
}

// Delete removes one entry by name.
func (ix *Index) Delete(ctx context.Context, name string) error {
	_, err := ix.db.ExecContext(ctx, `DELETE FROM pairs WHERE name = ?`, name)
	return err
}

// Recent returns up to limit entries, newest first.
func (ix *Index) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := ix.db.QueryContext(ctx, `
		SELECT name, source, ts, duration, memo
		FROM pairs ORDER BY ts DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent pairs: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// BySource returns all entries for one source filename, newest first.
func (ix *Index) BySource(ctx context.Context, source string) ([]Entry, error) {
	rows, err := ix.db.QueryContext(ctx, `
		SELECT name, source, ts, duration, memo
		FROM pairs WHERE source = ? ORDER BY ts DESC`, source)
	if err != nil {
		return nil, fmt.Errorf("query pairs by source: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Stats summarizes the indexed history.
type Stats struct {
	TotalPairs   int
	TotalSeconds int
	Sources      int
}

// Stats aggregates counts over the whole index.
func (ix *Index) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := ix.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(duration), 0), COUNT(DISTINCT source)
		FROM pairs`).Scan(&s.TotalPairs, &s.TotalSeconds, &s.Sources)
	if err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}
	return s, nil
}

// Clear empties the index ahead of a rebuild.
func (ix *Index) Clear(ctx context.Context) error {
	_, err := ix.db.ExecContext(ctx, `DELETE FROM pairs`)
	return err
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var out []Entry
	for rows.Next() {
		var e Entry
		var ts string
		if err := rows.Scan(&e.Name, &e.Source, &ts, &e.DurationSeconds, &e.Memo); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("bad timestamp %q: %w", ts, err)
		}
		e.Timestamp = parsed
		out = append(out, e)
	}
	return out, rows.Err()
}

// applyPragmas configures SQLite for single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}
