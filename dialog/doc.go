// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Package dialog defines the data model shared by every hub component:
// client ids, languages, session kinds, the request and response wire
// envelopes, interpreted sentences, sememe packages, and room action
// packages.
//
// Two wire formats exist side by side. The byte channel carries CBOR
// [Envelope] frames (routing header plus opaque body) for full-featured
// stations: audio clips, attached objects, explicit intent sets. The
// string channel carries the minimal "clientID::text" format for
// text-only stations; see [FormatText] and [ParseText].
//
// Audio clips travel compressed (lz4 or zstd, see [Compression]) with
// a BLAKE3 digest of the raw recording so journals and logs can refer
// to a clip without replaying it.
package dialog
