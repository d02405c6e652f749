// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Package speech wraps the external speech services the hub leans on:
// speech-to-text for stations that send raw audio, and text
// translation between a session's language and the hub's working
// language. Both are best-effort collaborators; callers degrade to
// the original text when a call fails rather than dropping the
// request.
package speech
