// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport provides the pub/sub fabric between stations and
// the hub.
//
// The Channel interface carries two independent streams: a byte
// channel of CBOR envelope frames and a string channel of
// "clientID::text" lines. Frames are addressed inside their payloads;
// the fabric itself delivers every frame to every subscriber of the
// stream, and subscribers drop what is not theirs.
//
// Deployments run one Channel per direction. Stations publish on the
// inbound channel the hub subscribes to, and the hub publishes on the
// outbound channel the gateway fans out from, so neither end ever
// hears its own frames back.
//
// MemoryChannel is the in-process implementation used by tests and by
// single-binary deployments. WSGateway bridges websocket-connected
// stations onto a channel pair, routing outbound frames by their
// envelope headers.
package transport
