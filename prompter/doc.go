// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Package prompter schedules idle-nag prompts: when a client goes
// quiet mid-session, the hub pokes it with a synthetic prompt request
// a bounded number of times, then gives up until the next activity.
//
// Correctness hinges on the race between a timer firing and a
// concurrent reset. Timers are keyed by a generation counter rather
// than relying on best-effort cancellation: a stale firing observes a
// generation mismatch and is ignored, so activity can never
// resurrect a cancelled nag.
package prompter
