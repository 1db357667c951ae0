package knowledge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestNewHTTPSource_RequiresEndpoint(t *testing.T) {
	if _, err := NewHTTPSource("", "", zaptest.NewLogger(t)); err == nil {
		t.Error("expected error for empty endpoint")
	}
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
			t.Errorf("unexpected authorization header: %q", auth)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"captures_totales_tonnes": 8500, "mois": "mars"}`))
	}))
	defer server.Close()

	source, err := NewHTTPSource(server.URL, "secret", zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create HTTPSource: %v", err)
	}

	data, err := source.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if data["mois"] != "mars" {
		t.Errorf("unexpected snapshot data: %v", data)
	}
}

func TestFetch_NoAuthHeaderWithoutKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "" {
			t.Errorf("no authorization header expected, got %q", auth)
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	source, err := NewHTTPSource(server.URL, "", zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create HTTPSource: %v", err)
	}
	if _, err := source.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
}

func TestFetch_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	source, err := NewHTTPSource(server.URL, "", zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create HTTPSource: %v", err)
	}
	if _, err := source.Fetch(context.Background()); err == nil {
		t.Error("expected error for non-200 response")
	}
}
