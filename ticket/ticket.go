// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package ticket

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/foyer-foundation/foyer/dialog"
)

// ErrClosed is returned by any write to a ticket that has already been
// closed.
var ErrClosed = errors.New("ticket: closed")

// Stage identifies how far a ticket has progressed through the
// pipeline. Stages only ever move forward; a request that arrives with
// intents already attached skips straight past interpretation.
type Stage int

const (
	StageAwaitingInterpretation Stage = iota
	StageAwaitingIntentResolution
	StageAwaitingActionSelection
	StageClosed
)

func (s Stage) String() string {
	switch s {
	case StageAwaitingInterpretation:
		return "awaiting-interpretation"
	case StageAwaitingIntentResolution:
		return "awaiting-intent-resolution"
	case StageAwaitingActionSelection:
		return "awaiting-action-selection"
	case StageClosed:
		return "closed"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Journal accumulates the intermediate results of one request's
// pipeline run. Fields are filled in stage order and never mutated
// after the ticket closes.
type Journal struct {
	// Request is the client request that opened the ticket, as it
	// looked after ingest (speech recognized, translated to the
	// working language).
	Request dialog.Request

	// Sentences is the per-sentence breakdown produced by the
	// interpretation stage.
	Sentences []dialog.Sentence

	// Sememes is the set of candidate intents resolved for the
	// sentences, at most one per sentence after unification.
	Sememes []dialog.SememePackage

	// Proposals is every candidate action gathered from rooms during
	// the action stage, across all resolved intents.
	Proposals []dialog.ActionPackage
}

// Ticket correlates one client request across the pipeline's hops. The
// ID is stamped into log lines and the history record so a request can
// be traced end to end.
type Ticket struct {
	ID      string
	Journal Journal

	stage Stage
}

// New opens a ticket for the given request.
func New(request dialog.Request) *Ticket {
	return &Ticket{
		ID:      uuid.NewString(),
		Journal: Journal{Request: request},
		stage:   StageAwaitingInterpretation,
	}
}

// Stage returns the ticket's current pipeline stage.
func (t *Ticket) Stage() Stage {
	return t.stage
}

// Closed reports whether the ticket has been closed.
func (t *Ticket) Closed() bool {
	return t.stage == StageClosed
}

// RecordInterpretation stores the interpretation result and moves the
// ticket to intent resolution.
func (t *Ticket) RecordInterpretation(sentences []dialog.Sentence) error {
	if err := t.advance(StageAwaitingInterpretation, StageAwaitingIntentResolution); err != nil {
		return err
	}
	t.Journal.Sentences = sentences
	return nil
}

// RecordSememes stores the resolved candidate intents and moves the
// ticket to action selection. A request that carried explicit intents
// may record sememes without an interpretation result first.
func (t *Ticket) RecordSememes(sememes []dialog.SememePackage) error {
	if err := t.advance(StageAwaitingIntentResolution, StageAwaitingActionSelection); err != nil {
		return err
	}
	t.Journal.Sememes = sememes
	return nil
}

// RecordProposals appends action proposals gathered from rooms. The
// ticket stays in the action-selection stage so proposals for several
// intents can accumulate before the response is synthesized.
func (t *Ticket) RecordProposals(proposals []dialog.ActionPackage) error {
	if err := t.advance(StageAwaitingActionSelection, StageAwaitingActionSelection); err != nil {
		return err
	}
	t.Journal.Proposals = append(t.Journal.Proposals, proposals...)
	return nil
}

// Close marks the ticket terminal. The response has been sent and the
// journal is complete; any later write, including a second Close, is a
// bug and returns ErrClosed.
func (t *Ticket) Close() error {
	if t.stage == StageClosed {
		return fmt.Errorf("ticket %s: close: %w", t.ID, ErrClosed)
	}
	t.stage = StageClosed
	return nil
}

// advance checks that the ticket is open and has not moved past the
// stage the caller expects, then sets the next stage. Skipping forward
// is allowed (the intent-bypass path never interprets); going backward
// is not.
func (t *Ticket) advance(latest, next Stage) error {
	if t.stage == StageClosed {
		return fmt.Errorf("ticket %s: %w", t.ID, ErrClosed)
	}
	if t.stage > latest {
		return fmt.Errorf("ticket %s: stage %s already passed %s", t.ID, t.stage, latest)
	}
	t.stage = next
	return nil
}
