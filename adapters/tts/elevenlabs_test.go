package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestNewElevenLabsTTS(t *testing.T) {
	logger := zaptest.NewLogger(t)

	// Test without API key
	os.Unsetenv("ELEVEN_LABS_API_KEY")
	config := NewElevenLabsConfigFromEnv()
	_, err := NewElevenLabsTTS(config, logger)
	if err == nil {
		t.Error("Expected error when API key is not set")
	}

	// Test with API key
	os.Setenv("ELEVEN_LABS_API_KEY", "test-api-key")
	defer os.Unsetenv("ELEVEN_LABS_API_KEY")

	config = NewElevenLabsConfigFromEnv()
	tts, err := NewElevenLabsTTS(config, logger)
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	if tts.apiKey != "test-api-key" {
		t.Errorf("Expected API key 'test-api-key', got '%s'", tts.apiKey)
	}
	if tts.modelID != defaultModelID {
		t.Errorf("Expected default model ID '%s', got '%s'", defaultModelID, tts.modelID)
	}
	if tts.personaName != defaultPersonaName {
		t.Errorf("Expected default persona '%s', got '%s'", defaultPersonaName, tts.personaName)
	}
}

func TestValidateElevenLabsConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  ElevenLabsConfig
		wantErr bool
	}{
		{"valid", ElevenLabsConfig{APIKey: "key"}, false},
		{"missing key", ElevenLabsConfig{}, true},
		{"stability out of range", ElevenLabsConfig{APIKey: "key", Stability: 1.5}, true},
		{"clarity out of range", ElevenLabsConfig{APIKey: "key", Clarity: -0.5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateElevenLabsConfig(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateElevenLabsConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func newTestTTS(t *testing.T, baseURL, persona string) *ElevenLabsTTS {
	t.Helper()
	tts, err := NewElevenLabsTTS(ElevenLabsConfig{
		APIKey:      "test-api-key",
		APIBaseURL:  baseURL,
		PersonaName: persona,
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}
	return tts
}

func TestSynthesize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/text-to-speech/voice-1" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("xi-api-key") != "test-api-key" {
			t.Errorf("missing api key header")
		}

		var req ElevenLabsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.VoiceSettings.Stability != defaultStability {
			t.Errorf("expected stability %f, got %f", defaultStability, req.VoiceSettings.Stability)
		}

		w.Write([]byte("mp3-audio-bytes"))
	}))
	defer server.Close()

	tts := newTestTTS(t, server.URL, "")
	audio, err := tts.Synthesize(context.Background(), "Bonjour", "voice-1")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if string(audio) != "mp3-audio-bytes" {
		t.Errorf("unexpected audio payload: %q", audio)
	}
}

func TestSynthesize_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	tts := newTestTTS(t, server.URL, "")
	_, err := tts.Synthesize(context.Background(), "Bonjour", "voice-1")
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
	if err.Error() != "TTS failed: 502" {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestSynthesize_EmptyText(t *testing.T) {
	tts := newTestTTS(t, "http://unused", "")
	if _, err := tts.Synthesize(context.Background(), "   ", "voice-1"); err == nil {
		t.Error("expected error for empty text")
	}
}

func voiceCatalogServer(t *testing.T, names ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/voices" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		type voice struct {
			ID   string `json:"voice_id"`
			Name string `json:"name"`
		}
		var voices []voice
		for _, name := range names {
			voices = append(voices, voice{ID: "id-" + name, Name: name})
		}
		json.NewEncoder(w).Encode(map[string]any{"voices": voices})
	}))
}

func TestResolveVoice_PinnedWins(t *testing.T) {
	tts := newTestTTS(t, "http://unreachable.invalid", "Asted")
	voiceID, err := tts.ResolveVoice(context.Background(), "pinned-voice")
	if err != nil {
		t.Fatalf("ResolveVoice failed: %v", err)
	}
	if voiceID != "pinned-voice" {
		t.Errorf("pinned voice must win, got %q", voiceID)
	}
}

func TestResolveVoice_PersonaMatch(t *testing.T) {
	server := voiceCatalogServer(t, "Rachel", "Asted FR", "Antoine")
	defer server.Close()

	tts := newTestTTS(t, server.URL, "Asted")
	voiceID, err := tts.ResolveVoice(context.Background(), "")
	if err != nil {
		t.Fatalf("ResolveVoice failed: %v", err)
	}
	if voiceID != "id-Asted FR" {
		t.Errorf("expected persona match, got %q", voiceID)
	}
}

func TestResolveVoice_FallbackToFirstEntry(t *testing.T) {
	server := voiceCatalogServer(t, "Rachel", "Antoine")
	defer server.Close()

	tts := newTestTTS(t, server.URL, "Asted")
	voiceID, err := tts.ResolveVoice(context.Background(), "")
	if err != nil {
		t.Fatalf("ResolveVoice must not fail when no name matches: %v", err)
	}
	if voiceID != "id-Rachel" {
		t.Errorf("expected first catalog entry, got %q", voiceID)
	}
}

func TestResolveVoice_EmptyCatalog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"voices": []any{}})
	}))
	defer server.Close()

	tts := newTestTTS(t, server.URL, "Asted")
	if _, err := tts.ResolveVoice(context.Background(), ""); err == nil {
		t.Error("expected error for empty voice catalog")
	}
}
