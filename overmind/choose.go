// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package overmind

import (
	"math/rand/v2"

	"github.com/foyer-foundation/foyer/dialog"
	"github.com/foyer-foundation/foyer/ticket"
)

// Selector picks the winning proposal when several survive the
// winnow. The interface exists so a ranking model can replace the
// uniform random default without touching the pipeline.
type Selector interface {
	Select(intent dialog.Intent, candidates []dialog.ActionPackage, journal *ticket.Journal) dialog.ActionPackage
}

// randomSelector is the current selection policy: uniform random
// among the remaining candidates.
type randomSelector struct{}

func (randomSelector) Select(intent dialog.Intent, candidates []dialog.ActionPackage, journal *ticket.Journal) dialog.ActionPackage {
	return candidates[rand.IntN(len(candidates))]
}

// chooseAction selects one proposal for the intent. The candidate set
// is first winnowed by session context, a single survivor wins
// outright, the analysis intent unifies instead of picking, and
// everything else goes to the selector.
func (c *Coordinator) chooseAction(intent dialog.Intent, candidates []dialog.ActionPackage, tk *ticket.Ticket) dialog.ActionPackage {
	candidates = winnow(candidates, tk.Journal.Request)
	if len(candidates) == 1 {
		return candidates[0]
	}
	if intent == dialog.IntentAnalysis {
		return dialog.ActionPackage{
			Intent:  intent,
			Sememes: unifySememes(collectSememes(candidates)),
		}
	}
	return c.selector().Select(intent, candidates, &tk.Journal)
}

// winnow discards multimedia proposals for quiet or text-only
// sessions. If that would empty the set, the original set is returned
// unchanged; an awkward answer beats none.
func winnow(candidates []dialog.ActionPackage, request dialog.Request) []dialog.ActionPackage {
	if !request.Quiet && request.Kind != dialog.KindText {
		return candidates
	}
	var kept []dialog.ActionPackage
	for _, candidate := range candidates {
		if !candidate.Multimedia {
			kept = append(kept, candidate)
		}
	}
	if len(kept) == 0 {
		return candidates
	}
	return kept
}

// collectSememes flattens the sememe packages of all proposals in
// order.
func collectSememes(proposals []dialog.ActionPackage) []dialog.SememePackage {
	var packages []dialog.SememePackage
	for _, proposal := range proposals {
		packages = append(packages, proposal.Sememes...)
	}
	return packages
}

// unifySememes keeps the single highest-confidence package per
// sentence, first seen winning ties. The result is ordered by each
// sentence's first appearance.
func unifySememes(packages []dialog.SememePackage) []dialog.SememePackage {
	best := make(map[int]dialog.SememePackage)
	var order []int
	for _, pkg := range packages {
		current, ok := best[pkg.Sentence]
		if !ok {
			best[pkg.Sentence] = pkg
			order = append(order, pkg.Sentence)
			continue
		}
		if pkg.Confidence > current.Confidence {
			best[pkg.Sentence] = pkg
		}
	}

	unified := make([]dialog.SememePackage, 0, len(order))
	for _, sentence := range order {
		unified = append(unified, best[sentence])
	}
	return unified
}
