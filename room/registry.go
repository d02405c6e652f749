// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package room

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/foyer-foundation/foyer/dialog"
)

// Room is one handler in the dialog pipeline. Act receives the single
// intent the coordinator matched for this dispatch plus the full
// request, and returns zero or more action proposals. Returning an
// empty slice means the room has nothing to contribute for this
// request right now.
type Room interface {
	// Name identifies the room in logs and dispatch results.
	Name() string

	// Intents returns the fixed set of intents the room acts on.
	// Called once at registration.
	Intents() []dialog.Intent

	// Act handles one dispatched request. Implementations must be
	// safe for concurrent calls with different requests.
	Act(ctx context.Context, intent dialog.Intent, request dialog.Request) ([]dialog.ActionPackage, error)
}

// ResponseObserver is implemented by rooms that want to see the full
// outcome of each dispatch round they took part in, for example to
// learn which competing proposal won alongside their own.
type ResponseObserver interface {
	ProcessResponses(request dialog.Request, responses []dialog.RoomResponse)
}

// Registry maps intents to the rooms registered for them. Register
// all rooms before the first Dispatch; the table is not mutated
// afterwards, so Dispatch needs no locking on the read path.
type Registry struct {
	logger *slog.Logger

	mu    sync.Mutex
	table map[dialog.Intent][]Room
}

// NewRegistry creates an empty registry. A nil logger means
// slog.Default().
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger: logger,
		table:  make(map[dialog.Intent][]Room),
	}
}

// Register adds the room to the routing table under every intent it
// advertises. Registering two rooms for the same intent is allowed;
// both act on each dispatch for it.
func (r *Registry) Register(rm Room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, intent := range rm.Intents() {
		r.table[intent] = append(r.table[intent], rm)
	}
}

// Rooms returns the rooms registered for the intent, in registration
// order.
func (r *Registry) Rooms(intent dialog.Intent) []Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.table[intent]
}

// Dispatch fans the request out to every room registered for the
// intent and waits for all of them. The returned slice holds one
// RoomResponse per room, in registration order; a room failure is
// recorded in its response rather than aborting the round.
//
// An intent with no registered rooms is a routing error and returns a
// non-nil error with no responses.
func (r *Registry) Dispatch(ctx context.Context, intent dialog.Intent, request dialog.Request) ([]dialog.RoomResponse, error) {
	rooms := r.Rooms(intent)
	if len(rooms) == 0 {
		return nil, fmt.Errorf("room: no room registered for intent %q", intent)
	}

	responses := make([]dialog.RoomResponse, len(rooms))
	var wg sync.WaitGroup
	for i, rm := range rooms {
		wg.Add(1)
		go func(i int, rm Room) {
			defer wg.Done()
			actions, err := rm.Act(ctx, intent, request)
			if err != nil {
				r.logger.Warn("room failed",
					"room", rm.Name(), "intent", intent, "client_id", request.From, "error", err)
			}
			responses[i] = dialog.RoomResponse{Room: rm.Name(), Actions: actions, Err: err}
		}(i, rm)
	}
	wg.Wait()

	for _, rm := range rooms {
		if observer, ok := rm.(ResponseObserver); ok {
			observer.ProcessResponses(request, responses)
		}
	}
	return responses, nil
}
