// Package catalogstore persists discovery history across cmd/telemetryd
// restarts: first-seen/last-seen timestamps per device URI, supplementing
// spec.md's process-lifetime-only catalog per SPEC_FULL.md §4.7. It is
// grounded on the teacher's agent/storage/sqlite.go, trimmed to the single
// table telemetryd needs.
package catalogstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one catalog entry's persisted discovery history.
type Record struct {
	URI         string
	Class       string
	MakeModel   string
	DeviceID    string
	Location    string
	FirstSeen   time.Time
	LastSeen    time.Time
	TimesReSeen int
}

// Store wraps a sqlite-backed device-history table.
type Store struct {
	db *sql.DB
}

// Open creates or opens the sqlite database at path. An empty path uses an
// in-memory database, matching NewSQLiteStore's convention in the teacher.
func Open(path string) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("catalogstore: open: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	pragmas := []string{
		"PRAGMA busy_timeout = 30000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("catalogstore: pragma: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS discovery_history (
		uri TEXT PRIMARY KEY,
		class TEXT NOT NULL,
		make_model TEXT,
		device_id TEXT,
		location TEXT,
		first_seen DATETIME NOT NULL,
		last_seen DATETIME NOT NULL,
		times_re_seen INTEGER DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_discovery_history_last_seen ON discovery_history(last_seen);
	`
	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("catalogstore: schema: %w", err)
	}
	return nil
}

// Touch upserts a discovery sighting: on first sighting it records
// first_seen = last_seen = now; on a repeat sighting it advances last_seen
// and increments times_re_seen while preserving the original first_seen.
func (s *Store) Touch(ctx context.Context, class, uri, makeModel, deviceID, location string) error {
	if uri == "" {
		return fmt.Errorf("catalogstore: empty uri")
	}
	now := time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO discovery_history (uri, class, make_model, device_id, location, first_seen, last_seen, times_re_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(uri) DO UPDATE SET
			class = excluded.class,
			make_model = excluded.make_model,
			device_id = excluded.device_id,
			location = excluded.location,
			last_seen = excluded.last_seen,
			times_re_seen = times_re_seen + 1
	`, uri, class, makeModel, deviceID, location, now, now)
	if err != nil {
		return fmt.Errorf("catalogstore: touch: %w", err)
	}
	return nil
}

// Get returns the discovery history for a device URI, or nil if never seen.
func (s *Store) Get(ctx context.Context, uri string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT uri, class, make_model, device_id, location, first_seen, last_seen, times_re_seen
		FROM discovery_history WHERE uri = ?
	`, uri)
	var r Record
	err := row.Scan(&r.URI, &r.Class, &r.MakeModel, &r.DeviceID, &r.Location, &r.FirstSeen, &r.LastSeen, &r.TimesReSeen)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalogstore: get: %w", err)
	}
	return &r, nil
}

// All returns every recorded device, most recently seen first.
func (s *Store) All(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT uri, class, make_model, device_id, location, first_seen, last_seen, times_re_seen
		FROM discovery_history ORDER BY last_seen DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("catalogstore: all: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.URI, &r.Class, &r.MakeModel, &r.DeviceID, &r.Location, &r.FirstSeen, &r.LastSeen, &r.TimesReSeen); err != nil {
			return nil, fmt.Errorf("catalogstore: scan: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
