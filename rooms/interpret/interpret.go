// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Package interpret provides the interpretation room: it splits a
// request's message text into indexed sentences for the analysis
// stage. Splitting is deliberately dumb (terminal punctuation only);
// rooms downstream work on whole sentences, not grammar.
package interpret

import (
	"context"
	"strings"

	"github.com/foyer-foundation/foyer/dialog"
)

// Room splits request text into sentences.
type Room struct{}

// New creates the interpretation room.
func New() *Room { return &Room{} }

func (r *Room) Name() string { return "interpret" }

func (r *Room) Intents() []dialog.Intent {
	return []dialog.Intent{dialog.IntentInterpretation}
}

// Act splits the message on sentence-terminal punctuation. An empty
// or whitespace-only message yields no sentences and therefore no
// action package.
func (r *Room) Act(ctx context.Context, intent dialog.Intent, request dialog.Request) ([]dialog.ActionPackage, error) {
	sentences := Split(request.Message)
	if len(sentences) == 0 {
		return nil, nil
	}
	return []dialog.ActionPackage{{
		Intent:    dialog.IntentInterpretation,
		Sentences: sentences,
	}}, nil
}

// Split breaks text into trimmed, indexed sentences on '.', '!', and
// '?'. Text without terminal punctuation is one sentence.
func Split(text string) []dialog.Sentence {
	var sentences []dialog.Sentence
	var builder strings.Builder

	flush := func() {
		trimmed := strings.TrimSpace(builder.String())
		builder.Reset()
		if trimmed != "" {
			sentences = append(sentences, dialog.Sentence{
				Index: len(sentences),
				Text:  trimmed,
			})
		}
	}

	for _, r := range text {
		switch r {
		case '.', '!', '?':
			flush()
		default:
			builder.WriteRune(r)
		}
	}
	flush()
	return sentences
}
