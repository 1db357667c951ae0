package repositories

import "context"

// SpeechToText abstracts speech recognition services.
type SpeechToText interface {
	// Transcribe converts an audio payload (webm/opus) to text. langHint is an
	// optional ISO language code forwarded to the provider.
	Transcribe(ctx context.Context, audio []byte, langHint string) (string, error)
}
