// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/foyer-foundation/foyer/dialog"
	"github.com/foyer-foundation/foyer/lib/clock"
	"github.com/foyer-foundation/foyer/lib/sqlitepool"
)

// ErrNotFound is returned when no live session exists for a client.
// Callers treat this as a normal control-flow branch (it triggers the
// reconnect path in the bridge), never as a failure.
var ErrNotFound = errors.New("session: not found")

// DefaultTTL is how long a session survives without activity.
const DefaultTTL = 15 * time.Minute

// Session is the per-client ephemeral record. Its existence is
// authoritative for "is this client ours"; at most one live session
// exists per client id.
type Session struct {
	Client       dialog.ClientID
	Language     dialog.Language
	Kind         dialog.SessionKind
	Quiet        bool
	StationID    string
	PersonID     string
	LastActivity time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	client_id     INTEGER PRIMARY KEY,
	language      TEXT    NOT NULL,
	kind          INTEGER NOT NULL,
	quiet         INTEGER NOT NULL,
	station_id    TEXT    NOT NULL DEFAULT '',
	person_id     TEXT    NOT NULL DEFAULT '',
	last_activity INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_by_activity ON sessions(last_activity);
CREATE TABLE IF NOT EXISTS counters (
	name  TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);
`

// StoreConfig holds the parameters for opening a session store.
type StoreConfig struct {
	// Pool is the SQLite connection pool. Required.
	Pool *sqlitepool.Pool

	// TTL is how long a session survives without a touch. Zero means
	// DefaultTTL.
	TTL time.Duration

	// Clock provides the current time for activity stamps and expiry
	// decisions. Required.
	Clock clock.Clock

	// FirstClientID is the lowest id the issuance counter hands out.
	// Zero means 2, leaving 1 for the hub itself.
	FirstClientID dialog.ClientID

	// Logger receives operational messages. If nil, slog.Default().
	Logger *slog.Logger
}

// Store keeps the per-client session records in SQLite: one row per
// client, an activity index for time-ordered enumeration, and the
// client-id issuance counter.
//
// SQLite has no native row expiry, so the TTL is enforced at the
// edges: Get deletes and reports absence for expired rows, Touch
// prunes everything past the cutoff, and ListActive filters by the
// activity index. Observable behavior matches a store with native
// expiry.
type Store struct {
	pool    *sqlitepool.Pool
	ttl     time.Duration
	clock   clock.Clock
	logger  *slog.Logger
	firstID dialog.ClientID
}

// OpenStore creates the session store and its schema.
func OpenStore(ctx context.Context, cfg StoreConfig) (*Store, error) {
	if cfg.Pool == nil {
		return nil, fmt.Errorf("session: Pool is required")
	}
	if cfg.Clock == nil {
		return nil, fmt.Errorf("session: Clock is required")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	firstID := cfg.FirstClientID
	if firstID <= 0 {
		firstID = 2
	}
	store := &Store{pool: cfg.Pool, ttl: ttl, clock: cfg.Clock, logger: logger, firstID: firstID}

	conn, err := cfg.Pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	defer cfg.Pool.Put(conn)
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return nil, fmt.Errorf("session: creating schema: %w", err)
	}
	return store, nil
}

// Start creates or overwrites the session for s.Client and stamps it
// with the current time. Overwriting is deliberate: a startup message
// carries fresher facts than whatever record may linger.
func (s *Store) Start(ctx context.Context, record Session) error {
	if !record.Client.IsSet() {
		return fmt.Errorf("session: start requires a client id")
	}
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn, `
		INSERT OR REPLACE INTO sessions
			(client_id, language, kind, quiet, station_id, person_id, last_activity)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{
			int64(record.Client),
			string(record.Language),
			int64(record.Kind),
			boolToInt(record.Quiet),
			record.StationID,
			record.PersonID,
			s.clock.Now().UnixMilli(),
		}})
	if err != nil {
		return fmt.Errorf("session: starting session for %s: %w", record.Client, err)
	}
	s.logger.Debug("session started", "client_id", record.Client, "kind", record.Kind.String())
	return nil
}

// Touch resets the session's TTL by stamping it with the current
// time, then prunes every session past the expiry cutoff. Concurrent
// touches for the same client are commutative last-write-wins.
// Returns ErrNotFound if no live session exists.
func (s *Store) Touch(ctx context.Context, id dialog.ClientID) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	defer s.pool.Put(conn)

	now := s.clock.Now()
	err = sqlitex.Execute(conn,
		"UPDATE sessions SET last_activity = ? WHERE client_id = ? AND last_activity >= ?",
		&sqlitex.ExecOptions{Args: []any{
			now.UnixMilli(), int64(id), s.cutoff(now),
		}})
	if err != nil {
		return fmt.Errorf("session: touching %s: %w", id, err)
	}
	touched := conn.Changes() > 0

	if err := s.pruneLocked(conn, now); err != nil {
		return err
	}
	if !touched {
		return ErrNotFound
	}
	return nil
}

// Get returns the live session for id, or ErrNotFound. An expired row
// is deleted on the way out.
func (s *Store) Get(ctx context.Context, id dialog.ClientID) (Session, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("session: %w", err)
	}
	defer s.pool.Put(conn)

	var record Session
	found := false
	err = sqlitex.Execute(conn, `
		SELECT client_id, language, kind, quiet, station_id, person_id, last_activity
		FROM sessions WHERE client_id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{int64(id)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				record = scanSession(stmt)
				found = true
				return nil
			},
		})
	if err != nil {
		return Session{}, fmt.Errorf("session: reading %s: %w", id, err)
	}
	if !found {
		return Session{}, ErrNotFound
	}

	now := s.clock.Now()
	if record.LastActivity.UnixMilli() < s.cutoff(now) {
		err = sqlitex.Execute(conn, "DELETE FROM sessions WHERE client_id = ?",
			&sqlitex.ExecOptions{Args: []any{int64(id)}})
		if err != nil {
			return Session{}, fmt.Errorf("session: expiring %s: %w", id, err)
		}
		s.logger.Debug("session expired", "client_id", id)
		return Session{}, ErrNotFound
	}
	return record, nil
}

// Remove deletes the session for id. Removing an absent session is a
// no-op: shutdown messages may race natural expiry.
func (s *Store) Remove(ctx context.Context, id dialog.ClientID) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn, "DELETE FROM sessions WHERE client_id = ?",
		&sqlitex.ExecOptions{Args: []any{int64(id)}})
	if err != nil {
		return fmt.Errorf("session: removing %s: %w", id, err)
	}
	s.logger.Debug("session removed", "client_id", id)
	return nil
}

// ListActive returns every live session, most recently active first.
// Used by broadcast fan-out.
func (s *Store) ListActive(ctx context.Context) ([]Session, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	defer s.pool.Put(conn)

	var records []Session
	err = sqlitex.Execute(conn, `
		SELECT client_id, language, kind, quiet, station_id, person_id, last_activity
		FROM sessions WHERE last_activity >= ? ORDER BY last_activity DESC`,
		&sqlitex.ExecOptions{
			Args: []any{s.cutoff(s.clock.Now())},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				records = append(records, scanSession(stmt))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("session: listing active: %w", err)
	}
	return records, nil
}

// NextClientID issues the next client id from the monotonic counter.
// The counter starts at FirstClientID and never revisits a value,
// even across restarts.
func (s *Store) NextClientID(ctx context.Context) (dialog.ClientID, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return dialog.None, fmt.Errorf("session: %w", err)
	}
	defer s.pool.Put(conn)

	var issued int64
	err = sqlitex.Execute(conn, `
		INSERT INTO counters (name, value) VALUES ('client-id', ?1)
		ON CONFLICT(name) DO UPDATE SET value = MAX(value + 1, ?1)
		RETURNING value`,
		&sqlitex.ExecOptions{
			Args: []any{int64(s.firstID)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				issued = stmt.ColumnInt64(0)
				return nil
			},
		})
	if err != nil {
		return dialog.None, fmt.Errorf("session: issuing client id: %w", err)
	}
	return dialog.ClientID(issued), nil
}

// cutoff returns the oldest last-activity stamp (in unix millis) that
// still counts as live at the given time.
func (s *Store) cutoff(now time.Time) int64 {
	return now.Add(-s.ttl).UnixMilli()
}

// pruneLocked deletes every expired session using the already-held
// connection.
func (s *Store) pruneLocked(conn *sqlite.Conn, now time.Time) error {
	err := sqlitex.Execute(conn, "DELETE FROM sessions WHERE last_activity < ?",
		&sqlitex.ExecOptions{Args: []any{s.cutoff(now)}})
	if err != nil {
		return fmt.Errorf("session: pruning expired: %w", err)
	}
	if pruned := conn.Changes(); pruned > 0 {
		s.logger.Debug("expired sessions pruned", "count", pruned)
	}
	return nil
}

func scanSession(stmt *sqlite.Stmt) Session {
	return Session{
		Client:       dialog.ClientID(stmt.ColumnInt64(0)),
		Language:     dialog.Language(stmt.ColumnText(1)),
		Kind:         dialog.SessionKind(stmt.ColumnInt64(2)),
		Quiet:        stmt.ColumnInt64(3) != 0,
		StationID:    stmt.ColumnText(4),
		PersonID:     stmt.ColumnText(5),
		LastActivity: time.UnixMilli(stmt.ColumnInt64(6)),
	}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
