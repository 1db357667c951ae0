package repositories

import "context"

// Voice is one entry of a TTS provider's voice catalog.
type Voice struct {
	ID   string `json:"voice_id"`
	Name string `json:"name"`
}

// TextToSpeech abstracts speech synthesis services.
type TextToSpeech interface {
	// Synthesize converts text to audio using the given voice.
	Synthesize(ctx context.Context, text string, voiceID string) ([]byte, error)
	// Voices returns the provider's voice catalog.
	Voices(ctx context.Context) ([]Voice, error)
	// ResolveVoice returns the voice to synthesize with: the pinned id when
	// non-empty, otherwise a catalog entry matched by persona name, otherwise
	// the first catalog entry. Synthesis is never blocked purely on voice
	// misconfiguration.
	ResolveVoice(ctx context.Context, pinned string) (string, error)
}
