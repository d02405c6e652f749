// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Package session keeps the per-client ephemeral session records.
//
// A session is created on client startup (or synthesized on
// reconnect), refreshed on every message, and removed on client
// shutdown or natural expiry. The store also owns the monotonic
// counter that issues client ids, since both live in the same backing
// database.
package session
