// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Compile-time interface check.
var _ Channel = (*MemoryChannel)(nil)

// subscriberBuffer is the per-subscriber frame queue depth. A
// subscriber that falls further behind than this loses frames (the
// fabric never blocks a publisher on a slow consumer).
const subscriberBuffer = 64

// MemoryChannel is an in-process Channel. It backs single-process
// deployments (hub and websocket gateway in one binary) and every
// transport-level test. Frames are fanned out to each subscriber's
// buffered queue; publish order is preserved per subscriber.
type MemoryChannel struct {
	logger *slog.Logger

	mu       sync.Mutex
	closed   bool
	binary   map[int]chan []byte
	text     map[int]chan string
	nextSubs int
}

// NewMemoryChannel creates an in-process channel. A nil logger means
// slog.Default().
func NewMemoryChannel(logger *slog.Logger) *MemoryChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryChannel{
		logger: logger,
		binary: make(map[int]chan []byte),
		text:   make(map[int]chan string),
	}
}

// PublishBinary delivers the frame to every byte-channel subscriber.
// Subscribers with full queues drop the frame; a dropped frame is
// logged but not an error, matching pub/sub fabric semantics.
func (c *MemoryChannel) PublishBinary(ctx context.Context, frame []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("transport: channel closed")
	}
	for id, queue := range c.binary {
		select {
		case queue <- frame:
		default:
			c.logger.Warn("binary subscriber queue full, frame dropped", "subscriber", id)
		}
	}
	return nil
}

// PublishText delivers the line to every string-channel subscriber.
func (c *MemoryChannel) PublishText(ctx context.Context, line string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("transport: channel closed")
	}
	for id, queue := range c.text {
		select {
		case queue <- line:
		default:
			c.logger.Warn("text subscriber queue full, line dropped", "subscriber", id)
		}
	}
	return nil
}

// SubscribeBinary attaches a byte-channel subscriber.
func (c *MemoryChannel) SubscribeBinary() *Subscription[[]byte] {
	c.mu.Lock()
	defer c.mu.Unlock()

	queue := make(chan []byte, subscriberBuffer)
	id := c.nextSubs
	c.nextSubs++
	if c.closed {
		close(queue)
		return &Subscription[[]byte]{C: queue}
	}
	c.binary[id] = queue

	var once sync.Once
	return &Subscription[[]byte]{
		C: queue,
		cancel: func() {
			once.Do(func() {
				c.mu.Lock()
				defer c.mu.Unlock()
				if _, ok := c.binary[id]; ok {
					delete(c.binary, id)
					close(queue)
				}
			})
		},
	}
}

// SubscribeText attaches a string-channel subscriber.
func (c *MemoryChannel) SubscribeText() *Subscription[string] {
	c.mu.Lock()
	defer c.mu.Unlock()

	queue := make(chan string, subscriberBuffer)
	id := c.nextSubs
	c.nextSubs++
	if c.closed {
		close(queue)
		return &Subscription[string]{C: queue}
	}
	c.text[id] = queue

	var once sync.Once
	return &Subscription[string]{
		C: queue,
		cancel: func() {
			once.Do(func() {
				c.mu.Lock()
				defer c.mu.Unlock()
				if _, ok := c.text[id]; ok {
					delete(c.text, id)
					close(queue)
				}
			})
		},
	}
}

// Close detaches every subscriber and rejects further publishes.
func (c *MemoryChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	for id, queue := range c.binary {
		delete(c.binary, id)
		close(queue)
	}
	for id, queue := range c.text {
		delete(c.text, id)
		close(queue)
	}
	return nil
}
