// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package speech

import (
	"context"

	"github.com/foyer-foundation/foyer/dialog"
)

// Recognizer converts a station's audio clip into text.
type Recognizer interface {
	Recognize(ctx context.Context, clip dialog.AudioClip) (string, error)
}

// Translator converts text between languages. Implementations return
// the input unchanged when from and to are the same language.
type Translator interface {
	Translate(ctx context.Context, from, to dialog.Language, text string) (string, error)
}
