// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction.
//
// The prompter's nag timers and the session store's expiry decisions
// are the only time-sensitive parts of the hub, and both must be
// testable without real waiting. Components hold a Clock field wired
// to Real() in production and Fake() in tests; FakeClock.Advance fires
// pending timers deterministically, and WaitForTimers removes the race
// between a goroutine registering a timer and the test advancing time.
package clock
