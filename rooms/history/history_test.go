// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/foyer-foundation/foyer/dialog"
	"github.com/foyer-foundation/foyer/lib/clock"
	"github.com/foyer-foundation/foyer/lib/codec"
	"github.com/foyer-foundation/foyer/lib/sqlitepool"
)

func newTestRoom(t *testing.T) (*Room, *clock.FakeClock) {
	t.Helper()
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path: filepath.Join(t.TempDir(), "history.db"),
	})
	if err != nil {
		t.Fatalf("sqlitepool.Open: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	fakeClock := clock.Fake(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	room, err := Open(context.Background(), Config{Pool: pool, Clock: fakeClock})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return room, fakeClock
}

func record(t *testing.T, room *Room, rec dialog.HistoryRecord) {
	t.Helper()
	object, err := codec.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	actions, err := room.Act(context.Background(), dialog.IntentUpdateHistory, dialog.Request{
		From: 1, To: 1, Language: "eng",
		Intents: []dialog.Intent{dialog.IntentUpdateHistory},
		Object:  object,
	})
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if actions != nil {
		t.Fatalf("bookkeeping proposed actions: %+v", actions)
	}
}

func TestStoresAndListsExchanges(t *testing.T) {
	room, fakeClock := newTestRoom(t)

	record(t, room, dialog.HistoryRecord{
		TicketID: "t-1", Client: 7, PersonID: "p-1",
		Message: "hello", Reply: "hello to you too",
	})
	fakeClock.Advance(time.Minute)
	record(t, room, dialog.HistoryRecord{
		TicketID: "t-2", Client: 7,
		Message: "play music", Reply: "starting playback",
	})
	record(t, room, dialog.HistoryRecord{
		TicketID: "t-3", Client: 8,
		Message: "other client", Reply: "ok",
	})

	entries, err := room.Recent(context.Background(), 7, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %+v, want 2 for client 7", entries)
	}
	if entries[0].TicketID != "t-2" || entries[1].TicketID != "t-1" {
		t.Errorf("order = %s, %s, want newest first", entries[0].TicketID, entries[1].TicketID)
	}
	if entries[1].PersonID != "p-1" || entries[1].Reply != "hello to you too" {
		t.Errorf("entry = %+v", entries[1])
	}
}

func TestRecentHonorsLimit(t *testing.T) {
	room, fakeClock := newTestRoom(t)

	for i := 0; i < 5; i++ {
		record(t, room, dialog.HistoryRecord{
			TicketID: "t", Client: 7, Message: "m", Reply: "r",
		})
		fakeClock.Advance(time.Second)
	}
	entries, err := room.Recent(context.Background(), 7, 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("entries = %d, want 3", len(entries))
	}
}

func TestMalformedRecordIsAnError(t *testing.T) {
	room, _ := newTestRoom(t)
	_, err := room.Act(context.Background(), dialog.IntentUpdateHistory, dialog.Request{
		Object: []byte{0xff},
	})
	if err == nil {
		t.Error("garbage record should fail")
	}
}
