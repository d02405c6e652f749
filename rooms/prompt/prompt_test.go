// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package prompt

import (
	"context"
	"testing"

	"github.com/foyer-foundation/foyer/dialog"
)

func TestAnswersPromptIntent(t *testing.T) {
	actions, err := New("").Act(context.Background(), dialog.IntentPrompt, dialog.Request{
		From: 7, To: 1, Language: "eng",
		Intents: []dialog.Intent{dialog.IntentPrompt},
	})
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if len(actions) != 1 || actions[0].Message != DefaultMessage {
		t.Errorf("actions = %+v", actions)
	}
	if actions[0].Intent != dialog.IntentPrompt {
		t.Errorf("Intent = %q", actions[0].Intent)
	}
}

func TestConfiguredMessage(t *testing.T) {
	room := New("Noch da?")
	actions, err := room.Act(context.Background(), dialog.IntentPrompt, dialog.Request{})
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if actions[0].Message != "Noch da?" {
		t.Errorf("Message = %q", actions[0].Message)
	}
}
