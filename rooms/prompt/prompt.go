// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Package prompt provides the room that answers the prompter's
// synthetic idle-nag requests. Without it an idle nag resolves to no
// room and the station hears the proxy apology instead of a prompt.
package prompt

import (
	"context"

	"github.com/foyer-foundation/foyer/dialog"
)

// DefaultMessage is the nag text when none is configured.
const DefaultMessage = "Are you still there?"

// Room answers prompt requests with a fixed message.
type Room struct {
	message string
}

// New creates a prompt room. An empty message means DefaultMessage.
func New(message string) *Room {
	if message == "" {
		message = DefaultMessage
	}
	return &Room{message: message}
}

func (r *Room) Name() string { return "prompt" }

func (r *Room) Intents() []dialog.Intent {
	return []dialog.Intent{dialog.IntentPrompt}
}

func (r *Room) Act(ctx context.Context, intent dialog.Intent, request dialog.Request) ([]dialog.ActionPackage, error) {
	return []dialog.ActionPackage{{
		Intent:  dialog.IntentPrompt,
		Message: r.message,
	}}, nil
}
