// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"time"
)

// failer is the subset of *testing.T the helpers need.
type failer interface {
	Helper()
	Fatalf(format string, args ...any)
}

// RequireReceive reads one value from ch within timeout, or fails the
// test. This encapsulates the timeout safety valve pattern so that
// individual tests do not need direct time.After calls.
//
//	response := testutil.RequireReceive(t, responses, 5*time.Second, "waiting for response")
func RequireReceive[T any](t failer, ch <-chan T, timeout time.Duration, msgAndArgs ...any) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed without sending a value: %s", formatMessage(msgAndArgs))
		}
		return v
	case <-time.After(timeout):
		t.Fatalf("timed out after %v: %s", timeout, formatMessage(msgAndArgs))
	}
	panic("unreachable")
}

// RequireSend sends v on ch within timeout, or fails the test.
func RequireSend[T any](t failer, ch chan<- T, v T, timeout time.Duration, msgAndArgs ...any) {
	t.Helper()
	select {
	case ch <- v:
	case <-time.After(timeout):
		t.Fatalf("timed out after %v: %s", timeout, formatMessage(msgAndArgs))
	}
}

// RequireClosed waits for ch to be closed (or receive a value) within
// timeout, or fails the test. Use this for done channels that signal
// by closing.
func RequireClosed(t failer, ch <-chan struct{}, timeout time.Duration, msgAndArgs ...any) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(timeout):
		t.Fatalf("timed out after %v waiting for channel close: %s", timeout, formatMessage(msgAndArgs))
	}
}

// RequireNoReceive asserts that ch stays silent for the full window.
// Use sparingly: it costs the window's wall-clock time on every run.
func RequireNoReceive[T any](t failer, ch <-chan T, window time.Duration, msgAndArgs ...any) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected receive %v: %s", v, formatMessage(msgAndArgs))
	case <-time.After(window):
	}
}

// formatMessage formats optional message arguments into a string.
// Accepts either a single string or a format string followed by args.
func formatMessage(msgAndArgs []any) string {
	if len(msgAndArgs) == 0 {
		return "(no message)"
	}
	if len(msgAndArgs) == 1 {
		if s, ok := msgAndArgs[0].(string); ok {
			return s
		}
		return fmt.Sprintf("%v", msgAndArgs[0])
	}
	if format, ok := msgAndArgs[0].(string); ok {
		return fmt.Sprintf(format, msgAndArgs[1:]...)
	}
	return fmt.Sprintf("%v", msgAndArgs)
}
