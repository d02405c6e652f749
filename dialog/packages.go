// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package dialog

import "github.com/foyer-foundation/foyer/lib/codec"

// SememePackage is one proposed meaning for one interpreted sentence.
// Multiple packages may reference the same sentence; selection keeps
// exactly one per sentence (highest confidence, first seen on ties).
type SememePackage struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Sentence   int     `json:"sentence"`
}

// ActionPackage is one room's proposed contribution to the reply for
// a single dispatched intent.
type ActionPackage struct {
	Intent Intent `json:"intent"`

	// Message and Explanation are the proposed reply texts.
	Message     string `json:"message,omitempty"`
	Explanation string `json:"explanation,omitempty"`

	// Object is an optional attached object for the reply.
	Object codec.RawMessage `json:"object,omitempty"`

	// Multimedia marks proposals that need binary-channel rendering.
	// Quiet or text-only sessions winnow these out when a non-
	// multimedia alternative exists.
	Multimedia bool `json:"multimedia,omitempty"`

	// OverrideTo redirects the reply to a different station (for
	// example, "announce this in the kitchen"). None means "answer
	// the requester".
	OverrideTo ClientID `json:"override_to,omitempty"`

	// Sentences carries interpretation results (intent
	// "interpretation" only).
	Sentences []Sentence `json:"sentences,omitempty"`

	// Sememes carries proposed meanings (intent "intent-analysis"
	// only).
	Sememes []SememePackage `json:"sememes,omitempty"`
}

// HistoryRecord is the payload of an update-history side request: one
// exchanged utterance and the reply it earned, keyed by the ticket
// that carried it.
type HistoryRecord struct {
	TicketID string   `json:"ticket_id"`
	Client   ClientID `json:"client"`
	PersonID string   `json:"person_id,omitempty"`
	Message  string   `json:"message"`
	Reply    string   `json:"reply"`
}

// RoomResponse is one room's answer to a dispatch round. An empty
// Actions slice means "no response": the room had nothing to do for
// this intent right now.
type RoomResponse struct {
	Room    string
	Actions []ActionPackage

	// Err records a room failure for that one request. Failures are
	// reported and converted into fallback proposals downstream; they
	// never abort the round.
	Err error
}
