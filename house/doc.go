// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Package house is the bridge between the station-facing wire
// transport and the internal dialog pipeline. It owns the session
// lifecycle: startup and shutdown intents create and remove sessions,
// any other traffic touches them, and a request from a client with no
// session is treated as a station reconnecting after a hub restart.
//
// The house runs one listener per subscribed stream (byte channel,
// text channel). Listeners never process a frame themselves; each
// frame is handed to a bounded worker pool so a slow handler, a
// speech-service call in particular, cannot stall delivery of the
// next frame.
//
// The inbound and outbound fabrics are separate channels. A hub
// publishes responses only on the outbound channel and subscribes
// only to the inbound one, so neither side ever re-ingests its own
// frames.
package house
