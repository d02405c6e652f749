// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool provides a pooled SQLite connection source with
// the hub's standard pragmas applied to every connection.
//
// The session store and the dialog history room share one pool per
// process. Schema creation belongs to the store that owns the tables,
// via Config.OnConnect.
package sqlitepool
