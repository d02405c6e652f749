// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer
// encoding, no indefinite-length items. The same envelope always
// produces identical bytes, which keeps wire-level tests and payload
// digests stable.
var encMode cbor.EncMode

// decMode is the CBOR decoder configured to accept standard CBOR.
// Unknown fields are ignored so newer stations can talk to older hubs.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Dialog envelopes never use non-string map keys. When the
		// decode target is any (attached objects travel as
		// map[string]any), the decoder must pick a concrete map type;
		// the CBOR default map[interface{}]interface{} is unusable by
		// encoding/json and most Go code downstream.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// RawMessage is a raw encoded CBOR value, used to delay decoding of
// attached objects until a room knows their concrete type.
type RawMessage = cbor.RawMessage

// NewEncoder returns a CBOR stream encoder writing to w with the
// standard deterministic configuration.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder returns a CBOR stream decoder reading from r with the
// standard decoding configuration.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return decMode.NewDecoder(r)
}
