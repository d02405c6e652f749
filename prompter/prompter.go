// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package prompter

import (
	"log/slog"
	"sync"
	"time"

	"github.com/foyer-foundation/foyer/dialog"
	"github.com/foyer-foundation/foyer/lib/clock"
)

// DefaultMaxNags is how many prompts an untouched client receives
// before its timer self-cancels.
const DefaultMaxNags = 2

// Config holds the prompter settings.
type Config struct {
	// Enabled gates the whole subsystem. When false, Reset and Remove
	// are no-ops and session handling proceeds unaffected.
	Enabled bool

	// InitialDelay is the idle time before the first prompt.
	InitialDelay time.Duration

	// RepeatDelay is the idle time between subsequent prompts.
	RepeatDelay time.Duration

	// MaxNags caps prompts per idle stretch. Zero means
	// DefaultMaxNags.
	MaxNags int
}

// Prompter schedules idle-nag prompts per client. Any activity for a
// client replaces its entry outright (never merges), restarting the
// nag count; after MaxNags firings the entry cancels itself.
//
// Stale firings are defeated by a per-entry generation: a firing that
// lost the race against a concurrent Reset or Remove sees a
// generation mismatch and does nothing, so a cancelled timer can
// never resurrect itself.
type Prompter struct {
	cfg     Config
	clock   clock.Clock
	hub     dialog.ClientID
	publish func(dialog.Request)
	logger  *slog.Logger

	mu         sync.Mutex
	stopped    bool
	generation uint64
	entries    map[dialog.ClientID]*entry
}

// entry is one client's scheduled nag state, replaced wholesale on
// every Reset.
type entry struct {
	generation uint64
	timer      *clock.Timer
	nags       int
	language   dialog.Language
	kind       dialog.SessionKind
	quiet      bool
}

// New creates a prompter. publish receives each synthetic prompt
// request; the bridge wires it to the same pipeline entry a real
// client request takes. hub is the destination id stamped on prompts.
// A nil logger means slog.Default().
func New(cfg Config, clk clock.Clock, hub dialog.ClientID, publish func(dialog.Request), logger *slog.Logger) *Prompter {
	if cfg.MaxNags <= 0 {
		cfg.MaxNags = DefaultMaxNags
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Prompter{
		cfg:     cfg,
		clock:   clk,
		hub:     hub,
		publish: publish,
		logger:  logger,
		entries: make(map[dialog.ClientID]*entry),
	}
}

// Reset cancels any pending nag for the client and schedules a fresh
// one with the initial delay and a zeroed nag count. Called on every
// inbound activity. No-op when the subsystem is disabled or stopped.
func (p *Prompter) Reset(id dialog.ClientID, language dialog.Language, kind dialog.SessionKind, quiet bool) {
	if !p.cfg.Enabled {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}

	if existing, ok := p.entries[id]; ok {
		existing.timer.Stop()
	}

	p.generation++
	generation := p.generation
	e := &entry{
		generation: generation,
		language:   language,
		kind:       kind,
		quiet:      quiet,
	}
	e.timer = p.clock.AfterFunc(p.cfg.InitialDelay, func() { p.fire(id, generation) })
	p.entries[id] = e
}

// Remove cancels the client's pending nag, if any. Called when the
// session ends.
func (p *Prompter) Remove(id dialog.ClientID) {
	if !p.cfg.Enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.entries[id]; ok {
		e.timer.Stop()
		delete(p.entries, id)
	}
}

// Active reports whether the client currently has a scheduled or
// partially-fired nag entry.
func (p *Prompter) Active(id dialog.ClientID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.entries[id]
	return ok
}

// Stop cancels every pending nag. Part of hub shutdown, after the
// listeners and workers are gone.
func (p *Prompter) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	for id, e := range p.entries {
		e.timer.Stop()
		delete(p.entries, id)
	}
}

// fire runs when a nag timer elapses. A generation mismatch means a
// Reset or Remove won the race; the firing is stale and ignored.
func (p *Prompter) fire(id dialog.ClientID, generation uint64) {
	p.mu.Lock()
	e, ok := p.entries[id]
	if !ok || e.generation != generation || p.stopped {
		p.mu.Unlock()
		return
	}

	e.nags++
	nags := e.nags
	if nags >= p.cfg.MaxNags {
		// Self-cancel: the client has been nagged enough.
		delete(p.entries, id)
	} else {
		e.timer = p.clock.AfterFunc(p.cfg.RepeatDelay, func() { p.fire(id, generation) })
	}

	request := dialog.Request{
		From:     id,
		To:       p.hub,
		Language: e.language,
		Kind:     e.kind,
		Quiet:    e.quiet,
		Intents:  []dialog.Intent{dialog.IntentPrompt},
	}
	p.mu.Unlock()

	p.logger.Debug("prompt fired", "client_id", id, "nag", nags)
	p.publish(request)
}
