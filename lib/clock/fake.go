// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake returns a FakeClock initialized to the given time. Time stands
// still until Advance is called; timers registered through After and
// AfterFunc fire when the clock advances past their deadline.
//
// FakeClock is safe for concurrent use by multiple goroutines.
func Fake(initial time.Time) *FakeClock {
	c := &FakeClock{current: initial}
	c.registered = sync.NewCond(&c.mu)
	return c
}

// FakeClock is a deterministic Clock for tests. AfterFunc callbacks
// run synchronously inside Advance, in deadline order. Do not call
// Advance from within a callback — that deadlocks.
type FakeClock struct {
	mu         sync.Mutex
	current    time.Time
	waiters    []*fakeWaiter
	registered *sync.Cond
}

// fakeWaiter is one pending After channel or AfterFunc callback.
type fakeWaiter struct {
	deadline time.Time
	channel  chan time.Time // nil for AfterFunc waiters
	callback func()         // nil for After waiters
	stopped  bool
	fired    bool
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// After returns a channel that receives once the clock advances past
// the deadline. If d <= 0 the channel receives immediately.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- c.current
		return channel
	}
	c.waiters = append(c.waiters, &fakeWaiter{
		deadline: c.current.Add(d),
		channel:  channel,
	})
	c.registered.Broadcast()
	return channel
}

// AfterFunc schedules f to run when the clock advances past the
// deadline. If d <= 0, f runs synchronously before AfterFunc returns.
func (c *FakeClock) AfterFunc(d time.Duration, f func()) *Timer {
	c.mu.Lock()

	if d <= 0 {
		c.mu.Unlock()
		f()
		return &Timer{stopFunc: func() bool { return false }}
	}

	waiter := &fakeWaiter{
		deadline: c.current.Add(d),
		callback: f,
	}
	c.waiters = append(c.waiters, waiter)
	c.registered.Broadcast()
	c.mu.Unlock()

	return &Timer{
		stopFunc: func() bool {
			c.mu.Lock()
			defer c.mu.Unlock()
			if waiter.stopped || waiter.fired {
				return false
			}
			waiter.stopped = true
			return true
		},
	}
}

// Advance moves the clock forward by d and fires every waiter whose
// deadline falls within the new time, in deadline order. AfterFunc
// callbacks are invoked synchronously in the calling goroutine;
// channel sends are non-blocking. Timers that a callback registers
// inside the advance window fire in the same Advance call, so chained
// reschedules (nag after nag) play out fully.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	target := c.current
	c.mu.Unlock()

	for {
		toFire := c.collectExpired(target)
		if len(toFire) == 0 {
			return
		}
		sort.Slice(toFire, func(i, j int) bool {
			return toFire[i].deadline.Before(toFire[j].deadline)
		})
		for _, waiter := range toFire {
			if waiter.callback != nil {
				waiter.callback()
			} else {
				select {
				case waiter.channel <- target:
				default:
				}
			}
		}
	}
}

// collectExpired removes and returns the waiters due at or before
// target.
func (c *FakeClock) collectExpired(target time.Time) []*fakeWaiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	var toFire []*fakeWaiter
	var remaining []*fakeWaiter
	for _, waiter := range c.waiters {
		switch {
		case waiter.stopped:
		case !waiter.deadline.After(target):
			waiter.fired = true
			toFire = append(toFire, waiter)
		default:
			remaining = append(remaining, waiter)
		}
	}
	c.waiters = remaining
	return toFire
}

// WaitForTimers blocks until at least n timers are pending. Use this
// to synchronize with a goroutine that registers a timer before
// calling Advance:
//
//	go component.Run()
//	fakeClock.WaitForTimers(1)
//	fakeClock.Advance(time.Minute)
func (c *FakeClock) WaitForTimers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.pendingLocked() < n {
		c.registered.Wait()
	}
}

// PendingCount returns the number of active pending timers.
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingLocked()
}

func (c *FakeClock) pendingLocked() int {
	count := 0
	for _, waiter := range c.waiters {
		if !waiter.stopped {
			count++
		}
	}
	return count
}
