// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"context"
	"testing"

	"github.com/foyer-foundation/foyer/dialog"
	"github.com/foyer-foundation/foyer/lib/codec"
)

var testRules = []Rule{
	{Intent: "light-on", Confidence: 0.9, Triggers: []string{"light", "lamp"}},
	{Intent: "music-play", Confidence: 0.8, Triggers: []string{"music", "play"}},
	{Intent: "greeting", Confidence: 0.5, Triggers: []string{"hello", "hi"}},
}

func act(t *testing.T, sentences []dialog.Sentence) []dialog.ActionPackage {
	t.Helper()
	object, err := codec.Marshal(sentences)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	actions, err := New(testRules).Act(context.Background(), dialog.IntentAnalysis, dialog.Request{Object: object})
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	return actions
}

func TestMatchesRulePerSentence(t *testing.T) {
	actions := act(t, []dialog.Sentence{
		{Index: 0, Text: "Turn on the light"},
		{Index: 1, Text: "and play some music"},
	})
	if len(actions) != 1 {
		t.Fatalf("actions = %+v", actions)
	}

	sememes := actions[0].Sememes
	if len(sememes) != 2 {
		t.Fatalf("sememes = %+v", sememes)
	}
	if sememes[0].Intent != "light-on" || sememes[0].Sentence != 0 {
		t.Errorf("sememes[0] = %+v", sememes[0])
	}
	if sememes[1].Intent != "music-play" || sememes[1].Sentence != 1 {
		t.Errorf("sememes[1] = %+v", sememes[1])
	}
}

func TestCompetingRulesBothProposed(t *testing.T) {
	// "play" and "hello" in one sentence: both packages go out, and
	// unification downstream keeps the more confident one.
	actions := act(t, []dialog.Sentence{{Index: 0, Text: "hello, play something"}})
	if len(actions) != 1 || len(actions[0].Sememes) != 2 {
		t.Fatalf("actions = %+v", actions)
	}
}

func TestMatchIsCaseInsensitiveAndWordBounded(t *testing.T) {
	actions := act(t, []dialog.Sentence{{Index: 0, Text: "LIGHT please"}})
	if len(actions) != 1 || actions[0].Sememes[0].Intent != "light-on" {
		t.Fatalf("actions = %+v", actions)
	}

	// "delightful" contains "light" as a substring but not as a word.
	if actions := act(t, []dialog.Sentence{{Index: 0, Text: "how delightful"}}); actions != nil {
		t.Errorf("substring matched: %+v", actions)
	}
}

func TestNoMatchIsSilent(t *testing.T) {
	if actions := act(t, []dialog.Sentence{{Index: 0, Text: "what time is it"}}); actions != nil {
		t.Errorf("actions = %+v, want silence", actions)
	}
}

func TestMalformedObjectIsAnError(t *testing.T) {
	_, err := New(testRules).Act(context.Background(), dialog.IntentAnalysis, dialog.Request{
		Object: []byte{0xff},
	})
	if err == nil {
		t.Error("garbage object should fail")
	}
}
