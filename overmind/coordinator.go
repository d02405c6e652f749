// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package overmind

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/foyer-foundation/foyer/dialog"
	"github.com/foyer-foundation/foyer/lib/codec"
	"github.com/foyer-foundation/foyer/room"
	"github.com/foyer-foundation/foyer/ticket"
)

// Outbound is the delivery side of the bridge. The coordinator hands
// every synthesized response here.
type Outbound interface {
	ReceiveResponse(ctx context.Context, response dialog.Response) error
}

// proxyMessage is the fixed fallback reply used when no room produced
// a proposal for a required intent.
const proxyMessage = "Sorry, I have no answer for that."

// historyTimeout bounds the fire-and-forget update-history dispatch.
const historyTimeout = 10 * time.Second

// Coordinator runs the three-stage pipeline. Configure the exported
// fields before the first Submit; Hub, WorkingLanguage, Registry, and
// Outbound are required.
type Coordinator struct {
	// Hub is stamped as the From id on every synthesized response.
	Hub dialog.ClientID

	// WorkingLanguage is the language responses are composed in.
	WorkingLanguage dialog.Language

	// Registry routes dispatched intents to rooms.
	Registry *room.Registry

	// Outbound receives every synthesized response.
	Outbound Outbound

	// Selector breaks ties among competing action proposals. Nil means
	// uniform random choice.
	Selector Selector

	// Logger receives structured log output. Nil means slog.Default().
	Logger *slog.Logger
}

func (c *Coordinator) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *Coordinator) selector() Selector {
	if c.Selector != nil {
		return c.Selector
	}
	return randomSelector{}
}

// Submit runs the whole pipeline for one request, delivers the
// response, issues the update-history side request, and closes the
// ticket. It blocks until the response has been handed to Outbound.
func (c *Coordinator) Submit(ctx context.Context, request dialog.Request) {
	tk := ticket.New(request)
	logger := c.logger().With("ticket_id", tk.ID, "client_id", request.From)

	response := c.run(ctx, tk, request, logger)
	if err := c.Outbound.ReceiveResponse(ctx, response); err != nil {
		logger.Error("response delivery failed", "error", err)
	}
	c.issueHistoryUpdate(tk.ID, request, response, logger)

	if err := tk.Close(); err != nil {
		logger.Error("ticket close failed", "error", err)
	}
}

// run advances the ticket through its stages and returns the
// synthesized response. It always returns something deliverable.
func (c *Coordinator) run(ctx context.Context, tk *ticket.Ticket, request dialog.Request, logger *slog.Logger) dialog.Response {
	intents := request.Intents
	if len(intents) > 0 {
		// Bypass: explicit intents skip interpretation and resolution.
		packages := make([]dialog.SememePackage, len(intents))
		for i, intent := range intents {
			packages[i] = dialog.SememePackage{Intent: intent, Confidence: 1}
		}
		if err := tk.RecordSememes(packages); err != nil {
			logger.Error("journal write failed", "error", err)
		}
	} else {
		sentences := c.interpret(ctx, tk, request, logger)
		sememes := c.resolveIntents(ctx, tk, request, sentences, logger)
		intents = distinctIntents(sememes)
		if len(intents) == 0 {
			intents = []dialog.Intent{dialog.IntentNothingToDo}
		}
	}

	chosen := c.gatherActions(ctx, tk, request, intents, logger)
	return c.synthesize(request, chosen)
}

// interpret dispatches the interpretation stage and records the
// sentence breakdown. An empty result is normal for an empty message.
func (c *Coordinator) interpret(ctx context.Context, tk *ticket.Ticket, request dialog.Request, logger *slog.Logger) []dialog.Sentence {
	var sentences []dialog.Sentence
	responses, err := c.dispatch(ctx, dialog.IntentInterpretation, request, nil)
	if err != nil {
		logger.Warn("no interpretation room registered", "error", err)
	} else {
		for _, response := range responses {
			for _, action := range response.Actions {
				sentences = append(sentences, action.Sentences...)
			}
		}
	}
	if err := tk.RecordInterpretation(sentences); err != nil {
		logger.Error("journal write failed", "error", err)
	}
	return sentences
}

// resolveIntents dispatches the analysis stage over the interpreted
// sentences, unifies the competing sememe packages down to the best
// one per sentence, and records the result.
func (c *Coordinator) resolveIntents(ctx context.Context, tk *ticket.Ticket, request dialog.Request, sentences []dialog.Sentence, logger *slog.Logger) []dialog.SememePackage {
	var unified []dialog.SememePackage
	if len(sentences) > 0 {
		object, err := codec.Marshal(sentences)
		if err != nil {
			logger.Error("encoding sentences for analysis", "error", err)
			object = nil
		}
		responses, err := c.dispatch(ctx, dialog.IntentAnalysis, request, object)
		if err != nil {
			logger.Warn("no analysis room registered", "error", err)
		} else {
			var proposals []dialog.ActionPackage
			for _, response := range responses {
				proposals = append(proposals, response.Actions...)
			}
			unified = unifySememes(collectSememes(proposals))
		}
	}
	if err := tk.RecordSememes(unified); err != nil {
		logger.Error("journal write failed", "error", err)
	}
	return unified
}

// gatherActions dispatches the action stage for each resolved intent
// and selects one proposal per intent. Gaps are covered by the proxy
// proposal so the client always hears something.
func (c *Coordinator) gatherActions(ctx context.Context, tk *ticket.Ticket, request dialog.Request, intents []dialog.Intent, logger *slog.Logger) []dialog.ActionPackage {
	chosen := make([]dialog.ActionPackage, 0, len(intents))
	for _, intent := range intents {
		responses, err := c.dispatch(ctx, intent, request, nil)
		if err != nil {
			logger.Warn("intent has no room, using proxy proposal", "intent", intent)
			chosen = append(chosen, proxyProposal(intent))
			continue
		}

		var candidates []dialog.ActionPackage
		for _, response := range responses {
			candidates = append(candidates, response.Actions...)
		}
		if err := tk.RecordProposals(candidates); err != nil {
			logger.Error("journal write failed", "error", err)
		}
		if len(candidates) == 0 {
			logger.Warn("no room proposed an action, using proxy proposal", "intent", intent)
			chosen = append(chosen, proxyProposal(intent))
			continue
		}
		chosen = append(chosen, c.chooseAction(intent, candidates, tk))
	}
	return chosen
}

// dispatch tags a copy of the request with the single routed intent,
// optionally replacing the attached object, and fans it out.
func (c *Coordinator) dispatch(ctx context.Context, intent dialog.Intent, request dialog.Request, object codec.RawMessage) ([]dialog.RoomResponse, error) {
	routed := request
	routed.Intents = []dialog.Intent{intent}
	if object != nil {
		routed.Object = object
	}
	return c.Registry.Dispatch(ctx, intent, routed)
}

// synthesize builds the single client response from the chosen
// proposals: texts concatenated per distinct intent, at most one
// attached object, and any explicit destination override honored.
func (c *Coordinator) synthesize(request dialog.Request, chosen []dialog.ActionPackage) dialog.Response {
	response := dialog.Response{
		From:     c.Hub,
		To:       request.From,
		Language: c.WorkingLanguage,
	}

	var messages, explanations []string
	for _, action := range chosen {
		if action.Message != "" {
			messages = append(messages, action.Message)
		}
		if action.Explanation != "" {
			explanations = append(explanations, action.Explanation)
		}
		if len(response.Object) == 0 && len(action.Object) > 0 {
			response.Object = action.Object
		}
		if action.Multimedia {
			response.Multimedia = true
		}
		if action.OverrideTo.IsSet() {
			response.To = action.OverrideTo
		}
	}
	response.Message = strings.Join(messages, " ")
	response.Explanation = strings.Join(explanations, "\n")
	if response.Message == "" && response.Explanation == "" && len(response.Object) == 0 {
		response.Message = proxyMessage
	}
	return response
}

// issueHistoryUpdate fires the bookkeeping side request. It runs
// detached with its own deadline; its outcome never affects the
// ticket that triggered it.
func (c *Coordinator) issueHistoryUpdate(ticketID string, request dialog.Request, response dialog.Response, logger *slog.Logger) {
	record := dialog.HistoryRecord{
		TicketID: ticketID,
		Client:   request.From,
		PersonID: request.PersonID,
		Message:  request.Message,
		Reply:    response.Message,
	}
	object, err := codec.Marshal(record)
	if err != nil {
		logger.Error("encoding history record", "error", err)
		return
	}
	side := dialog.Request{
		From:     c.Hub,
		To:       c.Hub,
		Language: c.WorkingLanguage,
		PersonID: request.PersonID,
		Message:  request.Message,
		Intents:  []dialog.Intent{dialog.IntentUpdateHistory},
		Object:   object,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
		defer cancel()
		if _, err := c.Registry.Dispatch(ctx, dialog.IntentUpdateHistory, side); err != nil {
			logger.Debug("history update not handled", "error", err)
		}
	}()
}

// distinctIntents returns the intents of the packages in first-seen
// order, deduplicated.
func distinctIntents(packages []dialog.SememePackage) []dialog.Intent {
	var intents []dialog.Intent
	seen := make(map[dialog.Intent]bool)
	for _, pkg := range packages {
		if !seen[pkg.Intent] {
			seen[pkg.Intent] = true
			intents = append(intents, pkg.Intent)
		}
	}
	return intents
}

// proxyProposal is the fallback when an intent produced no usable
// candidate.
func proxyProposal(intent dialog.Intent) dialog.ActionPackage {
	return dialog.ActionPackage{Intent: intent, Message: proxyMessage}
}
