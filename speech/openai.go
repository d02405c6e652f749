// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package speech

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/foyer-foundation/foyer/dialog"
)

// Default models for the OpenAI-compatible service.
const (
	DefaultTranscriptionModel = "whisper-1"
	DefaultTranslationModel   = "gpt-4o-mini"
)

// Config holds the OpenAI service settings.
type Config struct {
	// APIKey authenticates against the service.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the API endpoint. Empty means the public
	// OpenAI endpoint; point it at any server that speaks the same
	// wire format.
	BaseURL string `yaml:"base_url"`

	// TranscriptionModel and TranslationModel select the models.
	// Empty means the defaults.
	TranscriptionModel string `yaml:"transcription_model"`
	TranslationModel   string `yaml:"translation_model"`
}

// Service implements Recognizer and Translator against an
// OpenAI-compatible API.
type Service struct {
	cfg    Config
	client *openai.Client
	logger *slog.Logger
}

// NewService creates a speech service. A nil logger means
// slog.Default().
func NewService(cfg Config, logger *slog.Logger) *Service {
	if cfg.TranscriptionModel == "" {
		cfg.TranscriptionModel = DefaultTranscriptionModel
	}
	if cfg.TranslationModel == "" {
		cfg.TranslationModel = DefaultTranslationModel
	}
	if logger == nil {
		logger = slog.Default()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &Service{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientConfig),
		logger: logger,
	}
}

// Recognize transcribes the clip's audio. The clip is decompressed
// and integrity-checked before upload.
func (s *Service) Recognize(ctx context.Context, clip dialog.AudioClip) (string, error) {
	audio, err := clip.Bytes()
	if err != nil {
		return "", fmt.Errorf("speech: decode clip: %w", err)
	}

	response, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    s.cfg.TranscriptionModel,
		FilePath: "clip.wav",
		Reader:   bytes.NewReader(audio),
	})
	if err != nil {
		return "", fmt.Errorf("speech: transcription: %w", err)
	}
	return strings.TrimSpace(response.Text), nil
}

// Translate converts text from one language to another. Same-language
// and empty inputs pass through without a network call.
func (s *Service) Translate(ctx context.Context, from, to dialog.Language, text string) (string, error) {
	if from == to || text == "" {
		return text, nil
	}

	response, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.cfg.TranslationModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(
					"Translate the user's message from %s to %s (ISO 639 codes). Reply with the translation only.",
					from, to),
			},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("speech: translation: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("speech: translation: empty response")
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}
