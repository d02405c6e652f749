// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package house

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/foyer-foundation/foyer/dialog"
	"github.com/foyer-foundation/foyer/lib/clock"
	"github.com/foyer-foundation/foyer/prompter"
	"github.com/foyer-foundation/foyer/session"
	"github.com/foyer-foundation/foyer/speech"
	"github.com/foyer-foundation/foyer/station"
	"github.com/foyer-foundation/foyer/transport"
)

// Pipeline accepts validated requests for processing. Submit runs the
// whole pipeline for one request and guarantees some response reaches
// the outbound path; it is called from the house's worker pool, so it
// may block on room dispatch.
type Pipeline interface {
	Submit(ctx context.Context, request dialog.Request)
}

const (
	// DefaultWorkers is the worker pool size when Workers is zero.
	DefaultWorkers = 4

	// DefaultMaxPayloadBytes caps an outbound binary frame.
	DefaultMaxPayloadBytes = 1 << 20

	// DefaultStopGrace bounds how long Stop waits for in-flight
	// requests to drain.
	DefaultStopGrace = 5 * time.Second

	// reconnectNotice is sent to a station whose session the hub had
	// lost, right after the session is recreated from its request.
	reconnectNotice = "session restored"
)

// House bridges the wire transport and the dialog pipeline. Configure
// the exported fields, then call Start. Hub, WorkingLanguage, Inbound,
// Outbound, Sessions, Prompter, and Pipeline are required.
type House struct {
	// Hub is this hub's own client id; inbound envelopes addressed
	// elsewhere are dropped without decoding.
	Hub dialog.ClientID

	// WorkingLanguage is the language the pipeline operates in.
	// Inbound text in other languages is translated on the way in,
	// responses on the way out.
	WorkingLanguage dialog.Language

	// Inbound is the fabric stations publish requests on.
	Inbound transport.Channel

	// Outbound is the fabric the hub publishes responses on.
	Outbound transport.Channel

	// Sessions is the per-client session store.
	Sessions *session.Store

	// Prompter is the idle-nag subsystem, re-armed on every inbound
	// request.
	Prompter *prompter.Prompter

	// Pipeline receives every validated, non-lifecycle request.
	Pipeline Pipeline

	// Recognizer transcribes attached audio. Optional; without it,
	// audio clips are dropped and the message text is used as-is.
	Recognizer speech.Recognizer

	// Translator converts between session languages and the working
	// language. Optional; without it, text passes through untranslated.
	Translator speech.Translator

	// Stations is the deployed-station catalog. Optional; when a
	// request names a cataloged station, the descriptor fills a missing
	// language and its quiet hours set the session's quiet flag.
	Stations *station.Catalog

	// Workers bounds the processing pool. Zero means DefaultWorkers.
	Workers int

	// MaxPayloadBytes caps an outbound binary frame. An oversized
	// response is retried without its attached object before being
	// dropped. Zero means DefaultMaxPayloadBytes.
	MaxPayloadBytes int

	// StopGrace bounds the drain wait during Stop. Zero means
	// DefaultStopGrace.
	StopGrace time.Duration

	// Clock provides timing for the drain grace period. Nil means the
	// real clock.
	Clock clock.Clock

	// Logger receives structured log output. Nil means slog.Default().
	Logger *slog.Logger

	logger    *slog.Logger
	clk       clock.Clock
	baseCtx   context.Context
	cancel    context.CancelFunc
	binarySub *transport.Subscription[[]byte]
	textSub   *transport.Subscription[string]
	jobs      chan func(context.Context)
	listeners sync.WaitGroup
	workers   sync.WaitGroup
	stopOnce  sync.Once
}

// Start subscribes to the inbound streams and launches the listener
// and worker goroutines. Returns once the house is accepting traffic.
func (h *House) Start(ctx context.Context) error {
	switch {
	case !h.Hub.IsSet():
		return fmt.Errorf("house: Hub is required")
	case h.WorkingLanguage == "":
		return fmt.Errorf("house: WorkingLanguage is required")
	case h.Inbound == nil || h.Outbound == nil:
		return fmt.Errorf("house: Inbound and Outbound channels are required")
	case h.Sessions == nil:
		return fmt.Errorf("house: Sessions is required")
	case h.Prompter == nil:
		return fmt.Errorf("house: Prompter is required")
	case h.Pipeline == nil:
		return fmt.Errorf("house: Pipeline is required")
	}

	if h.Workers <= 0 {
		h.Workers = DefaultWorkers
	}
	if h.MaxPayloadBytes <= 0 {
		h.MaxPayloadBytes = DefaultMaxPayloadBytes
	}
	if h.StopGrace <= 0 {
		h.StopGrace = DefaultStopGrace
	}
	h.clk = h.Clock
	if h.clk == nil {
		h.clk = clock.Real()
	}
	h.logger = h.Logger
	if h.logger == nil {
		h.logger = slog.Default()
	}

	// Workers outlive the Start context; Stop cancels them after the
	// drain grace period.
	h.baseCtx, h.cancel = context.WithCancel(context.WithoutCancel(ctx))
	h.jobs = make(chan func(context.Context), h.Workers*16)

	h.workers.Add(h.Workers)
	for i := 0; i < h.Workers; i++ {
		go h.worker()
	}

	h.binarySub = h.Inbound.SubscribeBinary()
	h.textSub = h.Inbound.SubscribeText()
	h.listeners.Add(2)
	go h.listenBinary()
	go h.listenText()

	h.logger.Info("house started",
		"hub_id", h.Hub, "working_language", h.WorkingLanguage, "workers", h.Workers)
	return nil
}

// Stop shuts the house down in dependency order: listeners first so
// no new work arrives, then the worker pool with a bounded drain,
// then the prompter's timers.
func (h *House) Stop() {
	h.stopOnce.Do(func() {
		h.binarySub.Cancel()
		h.textSub.Cancel()
		h.listeners.Wait()

		close(h.jobs)
		drained := make(chan struct{})
		go func() {
			h.workers.Wait()
			close(drained)
		}()
		select {
		case <-drained:
		case <-h.clk.After(h.StopGrace):
			h.logger.Warn("worker drain exceeded grace period", "grace", h.StopGrace)
		}
		h.cancel()

		h.Prompter.Stop()
		h.logger.Info("house stopped")
	})
}

func (h *House) worker() {
	defer h.workers.Done()
	for job := range h.jobs {
		job(h.baseCtx)
	}
}

// enqueue hands a frame handler to the pool without ever blocking the
// listener. Overload sheds the frame; the station's next heartbeat
// retries implicitly.
func (h *House) enqueue(job func(context.Context)) {
	select {
	case h.jobs <- job:
	default:
		h.logger.Warn("worker queue full, dropping frame")
	}
}

func (h *House) listenBinary() {
	defer h.listeners.Done()
	for frame := range h.binarySub.C {
		h.enqueue(func(ctx context.Context) { h.handleBinaryFrame(ctx, frame) })
	}
}

func (h *House) listenText() {
	defer h.listeners.Done()
	for line := range h.textSub.C {
		h.enqueue(func(ctx context.Context) { h.handleTextLine(ctx, line) })
	}
}

// handleBinaryFrame runs the full inbound path for one byte-channel
// frame. Malformed and mis-addressed frames are dropped without
// error; other subscribers may share the fabric.
func (h *House) handleBinaryFrame(ctx context.Context, frame []byte) {
	envelope, err := dialog.DecodeEnvelope(frame)
	if err != nil {
		h.logger.Debug("dropping undecodable frame", "error", err)
		return
	}
	if envelope.To != h.Hub {
		return
	}
	request, err := envelope.DecodeRequest()
	if err != nil {
		h.logger.Debug("dropping malformed request", "error", err)
		return
	}
	h.processRequest(ctx, request)
}

// handleTextLine runs the inbound path for one simplified text-channel
// line. The id prefix names the sending station; lifecycle intents
// arrive as bare command words since the format carries no intent set.
func (h *House) handleTextLine(ctx context.Context, line string) {
	id, text, err := dialog.ParseText(line)
	if err != nil {
		h.logger.Debug("dropping undecodable line", "error", err)
		return
	}
	if !id.IsSet() || id == h.Hub {
		h.logger.Debug("dropping text line with bad sender id", "client_id", id)
		return
	}

	request := dialog.Request{
		From:     id,
		To:       h.Hub,
		Language: h.WorkingLanguage,
		Kind:     dialog.KindText,
		Message:  text,
	}
	switch dialog.Intent(text) {
	case dialog.IntentClientStartup:
		request.Intents = []dialog.Intent{dialog.IntentClientStartup}
		request.Message = ""
	case dialog.IntentClientShutdown:
		request.Intents = []dialog.Intent{dialog.IntentClientShutdown}
		request.Message = ""
	}
	h.processRequest(ctx, request)
}

// processRequest applies the session lifecycle rules to one inbound
// request and, unless the request was pure lifecycle, forwards it to
// the pipeline.
func (h *House) processRequest(ctx context.Context, request dialog.Request) {
	id := request.From

	if request.HasIntent(dialog.IntentClientStartup) {
		record := h.sessionFromRequest(request)
		if err := h.Sessions.Start(ctx, record); err != nil {
			h.logger.Error("session start failed", "client_id", id, "error", err)
			return
		}
		h.logger.Info("session started",
			"client_id", id, "language", record.Language, "kind", record.Kind)
		return
	}

	record, err := h.Sessions.Get(ctx, id)
	switch {
	case err == nil:
		if request.HasIntent(dialog.IntentClientShutdown) {
			if err := h.Sessions.Remove(ctx, id); err != nil {
				h.logger.Error("session remove failed", "client_id", id, "error", err)
			}
			h.Prompter.Remove(id)
			h.logger.Info("session ended", "client_id", id)
			return
		}
		if err := h.Sessions.Touch(ctx, id); err != nil && !errors.Is(err, session.ErrNotFound) {
			h.logger.Error("session touch failed", "client_id", id, "error", err)
		}
	case errors.Is(err, session.ErrNotFound):
		if request.HasIntent(dialog.IntentClientShutdown) {
			return
		}
		// A station we have no session for is one that outlived a hub
		// restart. Recreate the session from its request and tell it.
		record = h.sessionFromRequest(request)
		if err := h.Sessions.Start(ctx, record); err != nil {
			h.logger.Error("session recreate failed", "client_id", id, "error", err)
			return
		}
		h.logger.Info("session recreated for reconnecting station", "client_id", id)
		if err := h.ReceiveResponse(ctx, dialog.Response{
			From:     h.Hub,
			To:       id,
			Language: record.Language,
			Message:  reconnectNotice,
		}); err != nil {
			h.logger.Warn("reconnect notice failed", "client_id", id, "error", err)
		}
	default:
		h.logger.Error("session lookup failed", "client_id", id, "error", err)
		return
	}

	// The session record is authoritative for the client's context.
	// Quiet hours, channel kind, and language are established at
	// startup; a later message that omits them must not reset them.
	request.Language = record.Language
	request.Kind = record.Kind
	request.Quiet = record.Quiet

	h.Prompter.Reset(id, record.Language, record.Kind, record.Quiet)

	if request.Audio != nil {
		if h.Recognizer != nil {
			text, err := h.Recognizer.Recognize(ctx, *request.Audio)
			if err != nil {
				h.logger.Warn("speech recognition failed, keeping message text",
					"client_id", id, "error", err)
			} else if text != "" {
				// Audio text wins over whatever the station put in the
				// message field.
				request.Message = text
			}
		}
		request.Audio = nil
	}

	if request.Language != h.WorkingLanguage && h.Translator != nil && request.Message != "" {
		translated, err := h.Translator.Translate(ctx, request.Language, h.WorkingLanguage, request.Message)
		if err != nil {
			h.logger.Warn("inbound translation failed, keeping original text",
				"client_id", id, "error", err)
		} else {
			request.Message = translated
		}
	}

	if err := request.Validate(); err != nil {
		h.logger.Error("assembled request failed validation", "client_id", id, "error", err)
		return
	}
	h.Pipeline.Submit(ctx, request)
}

// InjectRequest feeds a synthetic request straight into the pipeline
// through the worker pool, bypassing session lifecycle and prompter
// re-arming. The prompter publishes its idle nags here; re-arming on a
// nag would make it self-sustaining.
func (h *House) InjectRequest(request dialog.Request) {
	h.enqueue(func(ctx context.Context) {
		if err := request.Validate(); err != nil {
			h.logger.Error("synthetic request failed validation", "error", err)
			return
		}
		h.Pipeline.Submit(ctx, request)
	})
}

// sessionFromRequest builds a session record from a request's declared
// fields, consulting the station catalog for a named station and
// defaulting the language to the hub's working language.
func (h *House) sessionFromRequest(request dialog.Request) session.Session {
	record := session.Session{
		Client:    request.From,
		Language:  request.Language,
		Kind:      request.Kind,
		Quiet:     request.Quiet,
		StationID: request.StationID,
		PersonID:  request.PersonID,
	}
	if h.Stations != nil && record.StationID != "" {
		if descriptor, ok := h.Stations.Lookup(record.StationID); ok {
			if record.Language == "" {
				record.Language = descriptor.Language
			}
			if descriptor.QuietAt(h.clk.Now()) {
				record.Quiet = true
			}
		}
	}
	if record.Language == "" {
		record.Language = h.WorkingLanguage
	}
	return record
}
