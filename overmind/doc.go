// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Package overmind drives the dialog pipeline for one request at a
// time: interpretation splits the text into sentences, intent
// resolution proposes sememes for them, and the action stage gathers
// proposals from the rooms registered for each resolved intent. The
// coordinator then selects among competing proposals, synthesizes a
// single client response, hands it to the outbound bridge, and closes
// the ticket.
//
// The pipeline never fails a request outright. Empty interpretation
// resolves to the nothing-to-do intent, an intent no room answers is
// covered by a fixed proxy proposal, and every submitted request ends
// with some response on the outbound path.
package overmind
