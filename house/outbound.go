// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package house

import (
	"context"
	"errors"
	"fmt"

	"github.com/foyer-foundation/foyer/dialog"
	"github.com/foyer-foundation/foyer/session"
)

// ReceiveResponse delivers one response to its station: translated
// into the session's language when that differs, then published on
// the byte or text channel according to the session's kind. Broadcast
// responses skip translation and go out on both channels.
//
// A response addressed to a client with no live session is dropped
// with a log line; the session may have expired while the pipeline
// ran. A response that fails validation is an error and is never
// published.
func (h *House) ReceiveResponse(ctx context.Context, response dialog.Response) error {
	if err := response.Validate(); err != nil {
		return fmt.Errorf("house: refusing invalid response: %w", err)
	}

	if response.To == dialog.Broadcast {
		return h.broadcast(ctx, response)
	}

	record, err := h.Sessions.Get(ctx, response.To)
	if errors.Is(err, session.ErrNotFound) {
		h.logger.Warn("dropping response for client with no session", "client_id", response.To)
		return nil
	}
	if err != nil {
		return fmt.Errorf("house: session lookup for response: %w", err)
	}

	if record.Language != response.Language && h.Translator != nil {
		h.translateResponse(ctx, &response, record.Language)
	}

	switch record.Kind {
	case dialog.KindText:
		if err := h.Outbound.PublishText(ctx, dialog.FormatText(response.To, response.Message)); err != nil {
			return fmt.Errorf("house: publishing text response: %w", err)
		}
	default:
		if err := h.publishBinaryResponse(ctx, response); err != nil {
			return err
		}
	}
	return nil
}

// broadcast publishes the response under the reserved broadcast id,
// on each channel that has at least one live session of the matching
// kind. No translation: recipients speak different languages, so
// broadcasts are composed in the working language.
func (h *House) broadcast(ctx context.Context, response dialog.Response) error {
	records, err := h.Sessions.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("house: listing sessions for broadcast: %w", err)
	}
	var binaryCount, textCount int
	for _, record := range records {
		if record.Kind == dialog.KindText {
			textCount++
		} else {
			binaryCount++
		}
	}

	if binaryCount > 0 {
		frame, err := dialog.EncodeResponse(&response)
		if err != nil {
			return fmt.Errorf("house: encoding broadcast: %w", err)
		}
		if err := h.Outbound.PublishBinary(ctx, frame); err != nil {
			return fmt.Errorf("house: publishing broadcast frame: %w", err)
		}
	}
	if textCount > 0 {
		if err := h.Outbound.PublishText(ctx, dialog.FormatText(dialog.Broadcast, response.Message)); err != nil {
			return fmt.Errorf("house: publishing broadcast line: %w", err)
		}
	}
	h.logger.Info("broadcast delivered",
		"binary_sessions", binaryCount, "text_sessions", textCount)
	return nil
}

// translateResponse rewrites the response texts into the session's
// language. A translation failure leaves the original text in place;
// a reply in the working language beats no reply.
func (h *House) translateResponse(ctx context.Context, response *dialog.Response, target dialog.Language) {
	message, err := h.Translator.Translate(ctx, response.Language, target, response.Message)
	if err != nil {
		h.logger.Warn("outbound translation failed, sending original text",
			"client_id", response.To, "error", err)
		return
	}
	response.Message = message
	if response.Explanation != "" {
		explanation, err := h.Translator.Translate(ctx, response.Language, target, response.Explanation)
		if err == nil {
			response.Explanation = explanation
		}
	}
	response.Language = target
}

// publishBinaryResponse encodes and publishes one byte-channel
// response, enforcing the payload ceiling. An oversized frame is
// retried without its attached object; if the text alone still
// exceeds the ceiling the response is dropped.
func (h *House) publishBinaryResponse(ctx context.Context, response dialog.Response) error {
	frame, err := dialog.EncodeResponse(&response)
	if err != nil {
		return fmt.Errorf("house: encoding response: %w", err)
	}

	if len(frame) > h.MaxPayloadBytes && (len(response.Object) > 0 || response.Multimedia) {
		h.logger.Warn("response exceeds payload ceiling, stripping object",
			"client_id", response.To, "frame_bytes", len(frame), "ceiling", h.MaxPayloadBytes)
		response.Object = nil
		response.Multimedia = false
		frame, err = dialog.EncodeResponse(&response)
		if err != nil {
			return fmt.Errorf("house: re-encoding stripped response: %w", err)
		}
	}
	if len(frame) > h.MaxPayloadBytes {
		h.logger.Error("dropping response larger than payload ceiling even without object",
			"client_id", response.To, "frame_bytes", len(frame))
		return nil
	}

	if err := h.Outbound.PublishBinary(ctx, frame); err != nil {
		return fmt.Errorf("house: publishing response: %w", err)
	}
	return nil
}
