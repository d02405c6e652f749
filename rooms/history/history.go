// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Package history provides the bookkeeping room: it persists one row
// per exchanged utterance when the coordinator issues its
// update-history side request. The room never proposes actions; its
// only observable output is the table.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/foyer-foundation/foyer/dialog"
	"github.com/foyer-foundation/foyer/lib/clock"
	"github.com/foyer-foundation/foyer/lib/codec"
	"github.com/foyer-foundation/foyer/lib/sqlitepool"
)

const schema = `
CREATE TABLE IF NOT EXISTS history (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	ticket_id TEXT    NOT NULL,
	client_id INTEGER NOT NULL,
	person_id TEXT    NOT NULL DEFAULT '',
	message   TEXT    NOT NULL,
	reply     TEXT    NOT NULL,
	at        INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS history_by_client ON history(client_id, at);
`

// Entry is one stored exchange.
type Entry struct {
	TicketID string
	Client   dialog.ClientID
	PersonID string
	Message  string
	Reply    string
	At       time.Time
}

// Config holds the parameters for opening the history room.
type Config struct {
	// Pool is the SQLite connection pool. Required.
	Pool *sqlitepool.Pool

	// Clock stamps stored entries. Required.
	Clock clock.Clock

	// Logger receives operational messages. If nil, slog.Default().
	Logger *slog.Logger
}

// Room persists update-history side requests.
type Room struct {
	pool   *sqlitepool.Pool
	clock  clock.Clock
	logger *slog.Logger
}

// Open creates the history room and its schema.
func Open(ctx context.Context, cfg Config) (*Room, error) {
	if cfg.Pool == nil {
		return nil, fmt.Errorf("history: Pool is required")
	}
	if cfg.Clock == nil {
		return nil, fmt.Errorf("history: Clock is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := cfg.Pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer cfg.Pool.Put(conn)
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return nil, fmt.Errorf("history: creating schema: %w", err)
	}
	return &Room{pool: cfg.Pool, clock: cfg.Clock, logger: logger}, nil
}

func (r *Room) Name() string { return "history" }

func (r *Room) Intents() []dialog.Intent {
	return []dialog.Intent{dialog.IntentUpdateHistory}
}

// Act decodes the history record from the side request's object and
// stores it. The room stays silent; bookkeeping earns no reply.
func (r *Room) Act(ctx context.Context, intent dialog.Intent, request dialog.Request) ([]dialog.ActionPackage, error) {
	var record dialog.HistoryRecord
	if err := codec.Unmarshal(request.Object, &record); err != nil {
		return nil, fmt.Errorf("history: decoding record: %w", err)
	}

	conn, err := r.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer r.pool.Put(conn)

	err = sqlitex.Execute(conn, `
		INSERT INTO history (ticket_id, client_id, person_id, message, reply, at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{
			record.TicketID,
			int64(record.Client),
			record.PersonID,
			record.Message,
			record.Reply,
			r.clock.Now().UnixMilli(),
		}})
	if err != nil {
		return nil, fmt.Errorf("history: storing record: %w", err)
	}
	r.logger.Debug("history updated", "ticket_id", record.TicketID, "client_id", record.Client)
	return nil, nil
}

// Recent returns the client's last n exchanges, newest first.
func (r *Room) Recent(ctx context.Context, id dialog.ClientID, n int) ([]Entry, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer r.pool.Put(conn)

	var entries []Entry
	err = sqlitex.Execute(conn, `
		SELECT ticket_id, client_id, person_id, message, reply, at
		FROM history WHERE client_id = ? ORDER BY at DESC, id DESC LIMIT ?`,
		&sqlitex.ExecOptions{
			Args: []any{int64(id), n},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				entries = append(entries, Entry{
					TicketID: stmt.ColumnText(0),
					Client:   dialog.ClientID(stmt.ColumnInt64(1)),
					PersonID: stmt.ColumnText(2),
					Message:  stmt.ColumnText(3),
					Reply:    stmt.ColumnText(4),
					At:       time.UnixMilli(stmt.ColumnInt64(5)),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("history: listing for %s: %w", id, err)
	}
	return entries, nil
}
