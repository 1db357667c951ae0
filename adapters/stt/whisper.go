package stt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/gabonpeche/iasted-server/domain/repositories"
)

// WhisperSTT implements SpeechToText using the OpenAI Whisper transcription
// endpoint. Audio is submitted as multipart form data with a fixed model and
// JSON response format.
type WhisperSTT struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

var _ repositories.SpeechToText = (*WhisperSTT)(nil)

// NewWhisperSTT creates a Whisper transcriber. If apiKey is empty,
// OPENAI_API_KEY is used. baseURL overrides the API endpoint when non-empty
// (hosted gateways expose an OpenAI-compatible surface).
func NewWhisperSTT(apiKey, baseURL string, logger *zap.Logger) (*WhisperSTT, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required for Whisper transcription")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &WhisperSTT{
		client: openai.NewClientWithConfig(config),
		model:  openai.Whisper1,
		logger: logger,
	}, nil
}

// Transcribe converts audio data to text. Any non-success response from the
// service is a hard failure carrying the HTTP status; there is no retry.
func (w *WhisperSTT) Transcribe(ctx context.Context, audio []byte, langHint string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("audio data is empty")
	}

	w.logger.Info("Transcribing audio",
		zap.Int("audioBytes", len(audio)),
		zap.String("langHint", langHint))

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		Reader:   bytes.NewReader(audio),
		FilePath: "voice.webm",
		Language: langHint,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", sttError(err)
	}

	w.logger.Info("Transcription completed", zap.Int("textLength", len(resp.Text)))
	return resp.Text, nil
}

// sttError surfaces the upstream HTTP status as the turn's terminal error.
func sttError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("STT failed: %d", apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("STT failed: %d", reqErr.HTTPStatusCode)
	}
	return fmt.Errorf("STT failed: %w", err)
}
