// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package dialog

import (
	"fmt"
	"strings"

	"github.com/foyer-foundation/foyer/lib/codec"
)

// EnvelopeKind tags what an envelope body decodes to.
type EnvelopeKind uint8

const (
	// EnvelopeRequest bodies decode to Request.
	EnvelopeRequest EnvelopeKind = 1
	// EnvelopeResponse bodies decode to Response.
	EnvelopeResponse EnvelopeKind = 2
)

// Envelope is the binary-channel wire frame: a routing header plus an
// opaque CBOR body. Subscribers read only the header to decide whether
// a frame is theirs; mis-addressed frames are dropped without decoding
// the body.
type Envelope struct {
	// To is the destination client id (the hub's own id for inbound
	// requests, a station id or Broadcast for outbound responses).
	To   ClientID         `json:"to"`
	Kind EnvelopeKind     `json:"kind"`
	Body codec.RawMessage `json:"body"`
}

// EncodeRequest wraps a request in an envelope addressed to r.To and
// serializes it for the byte channel.
func EncodeRequest(r *Request) ([]byte, error) {
	body, err := codec.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("dialog: encoding request body: %w", err)
	}
	data, err := codec.Marshal(Envelope{To: r.To, Kind: EnvelopeRequest, Body: body})
	if err != nil {
		return nil, fmt.Errorf("dialog: encoding request envelope: %w", err)
	}
	return data, nil
}

// EncodeResponse wraps a response in an envelope addressed to r.To and
// serializes it for the byte channel.
func EncodeResponse(r *Response) ([]byte, error) {
	body, err := codec.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("dialog: encoding response body: %w", err)
	}
	data, err := codec.Marshal(Envelope{To: r.To, Kind: EnvelopeResponse, Body: body})
	if err != nil {
		return nil, fmt.Errorf("dialog: encoding response envelope: %w", err)
	}
	return data, nil
}

// DecodeEnvelope parses a byte-channel frame's routing header without
// decoding the body.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var envelope Envelope
	if err := codec.Unmarshal(data, &envelope); err != nil {
		return Envelope{}, fmt.Errorf("dialog: decoding envelope: %w", err)
	}
	return envelope, nil
}

// DecodeRequest decodes an envelope body as a Request. The envelope
// must be of kind EnvelopeRequest.
func (e Envelope) DecodeRequest() (Request, error) {
	if e.Kind != EnvelopeRequest {
		return Request{}, fmt.Errorf("dialog: envelope kind %d is not a request", e.Kind)
	}
	var request Request
	if err := codec.Unmarshal(e.Body, &request); err != nil {
		return Request{}, fmt.Errorf("dialog: decoding request body: %w", err)
	}
	return request, nil
}

// DecodeResponse decodes an envelope body as a Response. The envelope
// must be of kind EnvelopeResponse.
func (e Envelope) DecodeResponse() (Response, error) {
	if e.Kind != EnvelopeResponse {
		return Response{}, fmt.Errorf("dialog: envelope kind %d is not a response", e.Kind)
	}
	var response Response
	if err := codec.Unmarshal(e.Body, &response); err != nil {
		return Response{}, fmt.Errorf("dialog: decoding response body: %w", err)
	}
	return response, nil
}

// textSeparator splits the id from the text on the string channel.
const textSeparator = "::"

// FormatText renders the simplified text-channel frame: "clientID::text".
func FormatText(id ClientID, text string) string {
	return id.String() + textSeparator + text
}

// ParseText splits a text-channel frame into its client id and text.
// The text may itself contain the separator; only the first occurrence
// splits.
func ParseText(line string) (ClientID, string, error) {
	idPart, text, found := strings.Cut(line, textSeparator)
	if !found {
		return None, "", fmt.Errorf("dialog: text frame %q missing separator", line)
	}
	id, err := ParseClientID(idPart)
	if err != nil {
		return None, "", err
	}
	return id, text, nil
}
