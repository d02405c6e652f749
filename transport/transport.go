// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import "context"

// Subscription is a live feed of published frames. Read from C until
// Cancel is called; after Cancel no further frames are delivered and C
// is closed.
type Subscription[T any] struct {
	// C delivers frames in publish order.
	C <-chan T

	cancel func()
}

// Cancel detaches the subscription and closes C. Safe to call more
// than once.
func (s *Subscription[T]) Cancel() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Channel is the pub/sub fabric between stations and the hub. It
// carries two independent streams: a byte channel of CBOR envelope
// frames and a string channel of "clientID::text" lines. Every
// published frame reaches every subscriber of its stream; addressing
// happens in the frame itself, not in the fabric, so mis-addressed
// frames are the subscriber's problem to drop.
type Channel interface {
	// PublishBinary publishes one envelope frame on the byte channel.
	PublishBinary(ctx context.Context, frame []byte) error

	// PublishText publishes one line on the string channel.
	PublishText(ctx context.Context, line string) error

	// SubscribeBinary attaches a new byte-channel subscriber.
	SubscribeBinary() *Subscription[[]byte]

	// SubscribeText attaches a new string-channel subscriber.
	SubscribeText() *Subscription[string]

	// Close detaches all subscribers and rejects further publishes.
	Close() error
}
