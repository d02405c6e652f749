// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Package analysis provides the keyword-driven intent resolution
// room. Each rule maps trigger words to an intent with a confidence;
// the room proposes one sememe package per matching rule per
// sentence, and the coordinator's unification picks the best package
// per sentence afterwards.
package analysis

import (
	"context"
	"strings"
	"unicode"

	"github.com/foyer-foundation/foyer/dialog"
	"github.com/foyer-foundation/foyer/lib/codec"
)

// Rule maps trigger words to an intent. A sentence matches when it
// contains any trigger as a word, case-insensitively.
type Rule struct {
	Intent     dialog.Intent `yaml:"intent" json:"intent"`
	Confidence float64       `yaml:"confidence" json:"confidence"`
	Triggers   []string      `yaml:"triggers" json:"triggers"`
}

// Room resolves sentence meanings from a fixed rule set.
type Room struct {
	rules []Rule
}

// New creates an analysis room over the given rules.
func New(rules []Rule) *Room {
	return &Room{rules: rules}
}

func (r *Room) Name() string { return "analysis" }

func (r *Room) Intents() []dialog.Intent {
	return []dialog.Intent{dialog.IntentAnalysis}
}

// Act reads the interpreted sentences from the request's object and
// proposes a sememe package for every rule match.
func (r *Room) Act(ctx context.Context, intent dialog.Intent, request dialog.Request) ([]dialog.ActionPackage, error) {
	var sentences []dialog.Sentence
	if err := codec.Unmarshal(request.Object, &sentences); err != nil {
		return nil, err
	}

	var sememes []dialog.SememePackage
	for _, sentence := range sentences {
		words := tokenize(sentence.Text)
		for _, rule := range r.rules {
			if rule.matches(words) {
				sememes = append(sememes, dialog.SememePackage{
					Intent:     rule.Intent,
					Confidence: rule.Confidence,
					Sentence:   sentence.Index,
				})
			}
		}
	}
	if sememes == nil {
		return nil, nil
	}
	return []dialog.ActionPackage{{
		Intent:  dialog.IntentAnalysis,
		Sememes: sememes,
	}}, nil
}

func (r Rule) matches(words map[string]bool) bool {
	for _, trigger := range r.Triggers {
		if words[strings.ToLower(trigger)] {
			return true
		}
	}
	return false
}

// tokenize lowercases and splits on everything that is not a letter
// or digit.
func tokenize(text string) map[string]bool {
	words := make(map[string]bool)
	for _, field := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[field] = true
	}
	return words
}
