// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the hub's standard CBOR encoding configuration.
//
// The binary dialog channel carries CBOR envelopes; the text channel
// carries the plain "clientID::text" string format and never touches
// this package. Sharing one encoder/decoder configuration means every
// package that serializes an envelope encodes identically without
// duplicating options.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2), so the
// same logical envelope always produces identical bytes. The decoder
// ignores unknown fields for forward compatibility.
package codec
