// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Package room routes pipeline requests to the handlers that can act
// on them. Each room advertises a fixed set of intents at
// registration; the registry keeps an explicit intent-to-rooms table
// and fans a dispatched request out to every room registered for that
// intent, collecting all responses before returning.
//
// Rooms run concurrently within a dispatch round and across rounds
// for different tickets, so implementations must not share mutable
// state except through their own synchronized subsystems. A room that
// has nothing to say returns an empty proposal list; that is a normal
// outcome, not an error.
package room
