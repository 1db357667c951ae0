package stt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestNewWhisperSTT_RequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewWhisperSTT("", "", zaptest.NewLogger(t)); err == nil {
		t.Error("Expected error when API key is not set")
	}
}

func TestTranscribe_EmptyAudio(t *testing.T) {
	stt, err := NewWhisperSTT("test-key", "", zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create WhisperSTT: %v", err)
	}
	if _, err := stt.Transcribe(context.Background(), nil, "fr"); err == nil {
		t.Error("expected error for empty audio")
	}
}

func TestTranscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("expected multipart form: %v", err)
		}
		if model := r.FormValue("model"); model != "whisper-1" {
			t.Errorf("unexpected model: %q", model)
		}
		if lang := r.FormValue("language"); lang != "fr" {
			t.Errorf("unexpected language hint: %q", lang)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"Quelles sont les captures totales ce mois?"}`))
	}))
	defer server.Close()

	stt, err := NewWhisperSTT("test-key", server.URL, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create WhisperSTT: %v", err)
	}

	text, err := stt.Transcribe(context.Background(), []byte("webm-bytes"), "fr")
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if text != "Quelles sont les captures totales ce mois?" {
		t.Errorf("unexpected transcript: %q", text)
	}
}

func TestTranscribe_UpstreamStatusInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer server.Close()

	stt, err := NewWhisperSTT("test-key", server.URL, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create WhisperSTT: %v", err)
	}

	_, err = stt.Transcribe(context.Background(), []byte("webm-bytes"), "fr")
	if err == nil {
		t.Fatal("expected error for 503 response")
	}
	if err.Error() != "STT failed: 503" {
		t.Errorf("unexpected error message: %v", err)
	}
}
