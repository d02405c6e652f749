// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock abstracts the time operations the hub schedules against.
// Production code injects Real(); tests inject Fake() and advance
// time deterministically.
//
// Anything that calls time.Now, time.After, or time.AfterFunc should
// take a Clock instead (usually as a struct field), so that prompter
// timers and session expiry can be driven from tests without real
// waiting.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time once
	// duration d has elapsed. If d <= 0, the channel receives
	// immediately.
	After(d time.Duration) <-chan time.Time

	// AfterFunc waits for duration d, then calls f in its own
	// goroutine. The returned Timer cancels the pending call via
	// Stop. If d <= 0, f runs immediately.
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer is a handle to a scheduled AfterFunc call.
type Timer struct {
	stopFunc func() bool
}

// Stop prevents the timer from firing. Returns true if the call
// stopped the timer, false if it already fired or was stopped.
func (t *Timer) Stop() bool { return t.stopFunc() }
