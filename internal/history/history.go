// Package history persists a local, append-only audit trail of supervisor
// events (every message logged through Logf: spawns, unexpected exits,
// exhausted retries, configuration and reload failures) to a SQLite
// database, independent of
// and in addition to the textual log sink in internal/logger. It is wired in
// only when cmd/taskmaster is given an explicit --history path; omitted, the
// supervisor runs with no persistence at all.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed audit trail. It implements the same narrow
// Logf(format, args...) contract that child.Logger/program.Logger/
// registry.Logger already require, so it can be composed alongside the
// append-only log sink via logger.Tee without changing any core signature.
type Store struct {
	db *sql.DB
}

// Event is one row of the audit trail.
type Event struct {
	ID      int64
	At      time.Time
	Message string
}

// Open opens (creating if absent) a SQLite database at path and ensures its
// schema exists. path may be ":memory:" for a transient, process-local store.
func Open(path string) (*Store, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, errors.New("history: empty database path")
	}
	db, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, err
	}
	if p == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout=3000;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	s := &Store{db: db}
	if err := s.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS events(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		at TIMESTAMP NOT NULL,
		message TEXT NOT NULL
	);`)
	return err
}

// Logf records one timestamped event row. It satisfies every Logger
// interface in this repository, so it can stand in for (or be teed
// alongside) the append-only log sink. Failures are swallowed: the audit
// trail is bookkeeping, never a reason to change supervisor behaviour.
func (s *Store) Logf(format string, args ...any) {
	_, _ = s.db.ExecContext(context.Background(),
		`INSERT INTO events(at, message) VALUES(?, ?);`,
		time.Now().UTC(), fmt.Sprintf(format, args...))
}

// Recent returns the most recent n events, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, at, message FROM events ORDER BY id DESC LIMIT ?;`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.At, &e.Message); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }
