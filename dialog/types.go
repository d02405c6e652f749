// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package dialog

import (
	"fmt"
	"strconv"

	"github.com/foyer-foundation/foyer/lib/codec"
)

// ClientID identifies a connected station. IDs are issued from a
// monotonic counter in the session store; equality is by value. The
// zero value means "unset" and never identifies a client.
type ClientID int64

// None is the unset ClientID.
const None ClientID = 0

// Broadcast is the reserved destination for messages addressed to
// every active session. Broadcast responses bypass translation and go
// out on both channels.
const Broadcast ClientID = -1

// IsSet reports whether the id identifies a client or the broadcast
// destination.
func (id ClientID) IsSet() bool { return id != None }

// String returns the decimal form used on the text channel and in logs.
func (id ClientID) String() string { return strconv.FormatInt(int64(id), 10) }

// ParseClientID parses the decimal form of a ClientID.
func ParseClientID(s string) (ClientID, error) {
	value, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return None, fmt.Errorf("dialog: invalid client id %q: %w", s, err)
	}
	return ClientID(value), nil
}

// Language is an ISO 639 language tag ("eng", "deu", ...). The hub has
// one working language; everything else is translated at the bridge.
type Language string

// SessionKind distinguishes full binary-channel stations from minimal
// text-only ones.
type SessionKind uint8

const (
	// KindBinary sessions exchange CBOR envelopes with audio and
	// attached objects on the byte channel.
	KindBinary SessionKind = iota
	// KindText sessions exchange "clientID::text" lines on the
	// string channel and never carry audio or objects.
	KindText
)

// String returns the kind name for logs.
func (k SessionKind) String() string {
	switch k {
	case KindBinary:
		return "binary"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Intent names a unit of meaning a room can act on.
type Intent string

// Well-known intents. Rooms advertise their own intents on top of
// these; the control intents below are handled by the bridge and the
// coordinator and never reach rooms.
const (
	// IntentClientStartup announces a station coming online. Handled
	// entirely by the bridge; never dispatched.
	IntentClientStartup Intent = "client-startup"

	// IntentClientShutdown announces a station going away. Handled
	// entirely by the bridge; never dispatched.
	IntentClientShutdown Intent = "client-shutdown"

	// IntentInterpretation asks interpretation rooms to split a
	// request's text into sentences.
	IntentInterpretation Intent = "interpretation"

	// IntentAnalysis asks analysis rooms to propose sememe packages
	// for interpreted sentences. Proposals for this intent are
	// unified rather than picked (best confidence per sentence).
	IntentAnalysis Intent = "intent-analysis"

	// IntentUpdateHistory is the fire-and-forget bookkeeping request
	// issued after every delivered response.
	IntentUpdateHistory Intent = "update-history"

	// IntentNothingToDo is resolved when a request interprets to
	// nothing actionable (empty message, no sememes).
	IntentNothingToDo Intent = "nothing-to-do"

	// IntentPrompt marks synthetic idle-nag requests from the
	// prompter.
	IntentPrompt Intent = "prompt"
)

// Sentence is one interpreted sentence of a request, referenced by
// sememe packages through its index.
type Sentence struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Request is the inbound wire envelope payload: one utterance from a
// station, plus the session facts the hub needs to route it.
type Request struct {
	From      ClientID    `json:"from"`
	To        ClientID    `json:"to"`
	Language  Language    `json:"language"`
	StationID string      `json:"station_id,omitempty"`
	Kind      SessionKind `json:"kind"`
	Quiet     bool        `json:"quiet,omitempty"`
	PersonID  string      `json:"person_id,omitempty"`

	// Message is the utterance text. May start empty when Audio is
	// set; the bridge transcribes audio and overwrites Message.
	Message string `json:"message,omitempty"`

	// Audio is an optional recorded utterance. Audio text wins over
	// Message when both are present.
	Audio *AudioClip `json:"audio,omitempty"`

	// Intents, when non-empty, bypasses interpretation and intent
	// resolution: the coordinator dispatches each intent directly.
	Intents []Intent `json:"intents,omitempty"`

	// Object is an optional attached object, decoded by whichever
	// room understands the intent.
	Object codec.RawMessage `json:"object,omitempty"`
}

// HasIntent reports whether the request carries the given intent.
func (r *Request) HasIntent(intent Intent) bool {
	for _, candidate := range r.Intents {
		if candidate == intent {
			return true
		}
	}
	return false
}

// Validate checks the request invariants: from, to, and language must
// be set, and the request must carry at least one of message text,
// audio, or explicit intents. A request with none of those is
// meaningless and must never reach the bus.
func (r *Request) Validate() error {
	if !r.From.IsSet() {
		return fmt.Errorf("dialog: request missing from id")
	}
	if !r.To.IsSet() {
		return fmt.Errorf("dialog: request missing to id")
	}
	if r.Language == "" {
		return fmt.Errorf("dialog: request missing language")
	}
	if r.Message == "" && r.Audio == nil && len(r.Intents) == 0 {
		return fmt.Errorf("dialog: request from %s carries no message, audio, or intents", r.From)
	}
	return nil
}

// Response is the outbound wire envelope payload: the hub's unified
// reply to one request.
type Response struct {
	From     ClientID `json:"from"`
	To       ClientID `json:"to"`
	Language Language `json:"language"`

	// Message is the reply text shown or spoken to the person.
	Message string `json:"message,omitempty"`

	// Explanation is optional secondary text (detail, attribution).
	Explanation string `json:"explanation,omitempty"`

	// Object is at most one attached object carried through from the
	// chosen proposals.
	Object codec.RawMessage `json:"object,omitempty"`

	// Multimedia marks replies whose object requires binary-channel
	// rendering.
	Multimedia bool `json:"multimedia,omitempty"`
}

// Validate checks the response invariants: from, to, and language must
// be set.
func (r *Response) Validate() error {
	if !r.From.IsSet() {
		return fmt.Errorf("dialog: response missing from id")
	}
	if !r.To.IsSet() {
		return fmt.Errorf("dialog: response missing to id")
	}
	if r.Language == "" {
		return fmt.Errorf("dialog: response missing language")
	}
	return nil
}
