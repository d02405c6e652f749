// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Package ticket provides the correlation object for one client
// request's trip through the dialog pipeline. A Ticket is created when
// a request enters the hub and carries a Journal that accumulates the
// intermediate results of each stage: the original request, the
// per-sentence interpretation, the candidate intents, and the action
// proposals gathered from rooms.
//
// # Lifecycle
//
// Create a ticket with [New]. The pipeline coordinator records stage
// results in order (interpretation, then sememes, then proposals) and
// finally calls [Ticket.Close] after the client response has been
// sent. Closing is terminal: any further write returns [ErrClosed],
// and a second Close does too. A closed ticket being written to is a
// pipeline bug, so it surfaces as an error instead of being ignored.
//
// # Concurrency
//
// Ticket is not safe for concurrent use. The coordinator drives one
// request through the pipeline on a single goroutine, so the ticket
// never needs its own lock.
package ticket
