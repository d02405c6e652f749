// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package speech

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/foyer-foundation/foyer/dialog"
)

// newTestService points the OpenAI client at a local stand-in server.
func newTestService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewService(Config{
		APIKey:  "test-key",
		BaseURL: server.URL + "/v1",
	}, nil)
}

func TestRecognize(t *testing.T) {
	service := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": " turn on the light "}`))
	}))

	clip, err := dialog.NewAudioClip([]byte("pcm bytes"), dialog.CompressionLZ4)
	if err != nil {
		t.Fatalf("NewAudioClip: %v", err)
	}
	text, err := service.Recognize(context.Background(), *clip)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if text != "turn on the light" {
		t.Errorf("text = %q", text)
	}
}

func TestTranslate(t *testing.T) {
	service := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "hallo"}}]}`))
	}))

	text, err := service.Translate(context.Background(), "eng", "deu", "hello")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if text != "hallo" {
		t.Errorf("text = %q", text)
	}
}

func TestTranslateSameLanguageSkipsNetwork(t *testing.T) {
	service := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request for same-language translation")
	}))

	text, err := service.Translate(context.Background(), "eng", "eng", "hello")
	if err != nil || text != "hello" {
		t.Errorf("Translate = %q, %v", text, err)
	}
}

func TestRecognizeServiceFailure(t *testing.T) {
	service := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "overloaded"}}`, http.StatusServiceUnavailable)
	}))

	clip, err := dialog.NewAudioClip([]byte("pcm"), dialog.CompressionNone)
	if err != nil {
		t.Fatalf("NewAudioClip: %v", err)
	}
	if _, err := service.Recognize(context.Background(), *clip); err == nil {
		t.Error("Recognize should surface the service failure")
	}
}
