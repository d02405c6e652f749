// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package overmind

import (
	"reflect"
	"testing"

	"github.com/foyer-foundation/foyer/dialog"
	"github.com/foyer-foundation/foyer/ticket"
)

func TestUnifyKeepsBestPerSentence(t *testing.T) {
	packages := []dialog.SememePackage{
		{Sentence: 0, Intent: "intent-x", Confidence: 0.9},
		{Sentence: 0, Intent: "intent-y", Confidence: 0.4},
		{Sentence: 1, Intent: "intent-z", Confidence: 0.5},
	}

	unified := unifySememes(packages)
	want := []dialog.SememePackage{
		{Sentence: 0, Intent: "intent-x", Confidence: 0.9},
		{Sentence: 1, Intent: "intent-z", Confidence: 0.5},
	}
	if !reflect.DeepEqual(unified, want) {
		t.Errorf("unified = %+v, want %+v", unified, want)
	}
}

func TestUnifyFirstSeenWinsTies(t *testing.T) {
	packages := []dialog.SememePackage{
		{Sentence: 0, Intent: "intent-first", Confidence: 0.5},
		{Sentence: 0, Intent: "intent-second", Confidence: 0.5},
	}

	unified := unifySememes(packages)
	if len(unified) != 1 || unified[0].Intent != "intent-first" {
		t.Errorf("unified = %+v, want first-seen package", unified)
	}
}

func TestWinnowDropsMultimediaForQuietSession(t *testing.T) {
	candidates := []dialog.ActionPackage{
		{Intent: "x", Message: "picture", Multimedia: true},
		{Intent: "x", Message: "words"},
	}
	kept := winnow(candidates, dialog.Request{Quiet: true})
	if len(kept) != 1 || kept[0].Message != "words" {
		t.Errorf("kept = %+v", kept)
	}
}

func TestWinnowDropsMultimediaForTextSession(t *testing.T) {
	candidates := []dialog.ActionPackage{
		{Intent: "x", Message: "picture", Multimedia: true},
		{Intent: "x", Message: "words"},
	}
	kept := winnow(candidates, dialog.Request{Kind: dialog.KindText})
	if len(kept) != 1 || kept[0].Message != "words" {
		t.Errorf("kept = %+v", kept)
	}
}

func TestWinnowNeverEmptiesCandidateSet(t *testing.T) {
	candidates := []dialog.ActionPackage{
		{Intent: "x", Message: "first", Multimedia: true},
		{Intent: "x", Message: "second", Multimedia: true},
	}
	kept := winnow(candidates, dialog.Request{Quiet: true, Kind: dialog.KindText})
	if !reflect.DeepEqual(kept, candidates) {
		t.Errorf("kept = %+v, want original set unchanged", kept)
	}
}

func TestWinnowKeepsEverythingForBinaryLoudSession(t *testing.T) {
	candidates := []dialog.ActionPackage{
		{Intent: "x", Message: "picture", Multimedia: true},
		{Intent: "x", Message: "words"},
	}
	kept := winnow(candidates, dialog.Request{Kind: dialog.KindBinary})
	if len(kept) != 2 {
		t.Errorf("kept = %+v", kept)
	}
}

func TestChooseActionSingleSurvivorWins(t *testing.T) {
	c := &Coordinator{}
	tk := ticket.New(dialog.Request{From: 7, To: 1, Quiet: true})

	chosen := c.chooseAction("x", []dialog.ActionPackage{
		{Intent: "x", Message: "picture", Multimedia: true},
		{Intent: "x", Message: "words"},
	}, tk)
	if chosen.Message != "words" {
		t.Errorf("chosen = %+v", chosen)
	}
}

func TestChooseActionUnifiesAnalysis(t *testing.T) {
	c := &Coordinator{}
	tk := ticket.New(dialog.Request{From: 7, To: 1})

	chosen := c.chooseAction(dialog.IntentAnalysis, []dialog.ActionPackage{
		{Intent: dialog.IntentAnalysis, Sememes: []dialog.SememePackage{
			{Sentence: 0, Intent: "intent-x", Confidence: 0.9},
		}},
		{Intent: dialog.IntentAnalysis, Sememes: []dialog.SememePackage{
			{Sentence: 0, Intent: "intent-y", Confidence: 0.4},
			{Sentence: 1, Intent: "intent-z", Confidence: 0.5},
		}},
	}, tk)

	want := []dialog.SememePackage{
		{Sentence: 0, Intent: "intent-x", Confidence: 0.9},
		{Sentence: 1, Intent: "intent-z", Confidence: 0.5},
	}
	if !reflect.DeepEqual(chosen.Sememes, want) {
		t.Errorf("Sememes = %+v, want %+v", chosen.Sememes, want)
	}
}

// pickLast selects the last candidate, deterministically.
type pickLast struct{}

func (pickLast) Select(intent dialog.Intent, candidates []dialog.ActionPackage, journal *ticket.Journal) dialog.ActionPackage {
	return candidates[len(candidates)-1]
}

func TestChooseActionUsesPluggableSelector(t *testing.T) {
	c := &Coordinator{Selector: pickLast{}}
	tk := ticket.New(dialog.Request{From: 7, To: 1})

	chosen := c.chooseAction("x", []dialog.ActionPackage{
		{Intent: "x", Message: "first"},
		{Intent: "x", Message: "second"},
	}, tk)
	if chosen.Message != "second" {
		t.Errorf("chosen = %+v", chosen)
	}
}

func TestRandomSelectorReturnsAMember(t *testing.T) {
	candidates := []dialog.ActionPackage{
		{Intent: "x", Message: "first"},
		{Intent: "x", Message: "second"},
		{Intent: "x", Message: "third"},
	}
	for i := 0; i < 20; i++ {
		chosen := randomSelector{}.Select("x", candidates, nil)
		if chosen.Message == "" {
			t.Fatalf("chosen = %+v, not a candidate", chosen)
		}
	}
}
