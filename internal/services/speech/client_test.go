package speech

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"clipline/internal/services"
	"clipline/internal/services/provider"
)

func TestTranscribeDecodesPerLanguageResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/transcripts" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test" {
			t.Fatalf("unexpected auth header %q", got)
		}
		var req struct {
			MediaURL  string   `json:"media_url"`
			Languages []string `json:"languages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.MediaURL != "https://cdn.example.com/v.mp4" {
			t.Fatalf("unexpected media url %q", req.MediaURL)
		}
		if len(req.Languages) != 2 {
			t.Fatalf("unexpected languages %v", req.Languages)
		}
		payload := map[string]any{
			"results": map[string]any{
				"en": map[string]any{
					"text": "hello world",
					"segments": []map[string]any{
						{"start": 0.0, "end": 1.5, "text": "hello world"},
					},
				},
				"es": map[string]any{"text": "hola mundo"},
			},
		}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(provider.Config{BaseURL: server.URL, APIKey: "test"})
	results, err := client.Transcribe(context.Background(), "https://cdn.example.com/v.mp4", []string{"en", "es"})
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected two results, got %d", len(results))
	}
	en := results["en"]
	if en.Text != "hello world" {
		t.Fatalf("unexpected english text %q", en.Text)
	}
	if len(en.Segments) != 1 || en.Segments[0].End != 1.5 {
		t.Fatalf("unexpected segments %+v", en.Segments)
	}
}

func TestTranscribeRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		payload := map[string]any{
			"results": map[string]any{"en": map[string]any{"text": "recovered"}},
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	client := NewClient(
		provider.Config{BaseURL: server.URL},
		provider.WithRetryMaxAttempts(3),
		provider.WithRetryBackoff(time.Millisecond, time.Millisecond),
		provider.WithSleeper(func(time.Duration) {}),
	)
	results, err := client.Transcribe(context.Background(), "https://cdn.example.com/v.mp4", []string{"en"})
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if results["en"].Text != "recovered" {
		t.Fatalf("unexpected result %+v", results)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestTranscribeDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewClient(
		provider.Config{BaseURL: server.URL},
		provider.WithRetryMaxAttempts(4),
		provider.WithSleeper(func(time.Duration) {}),
	)
	_, err := client.Transcribe(context.Background(), "https://cdn.example.com/v.mp4", []string{"en"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrProviderFailure) {
		t.Fatalf("expected provider failure marker, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single call, got %d", calls.Load())
	}
}

func TestTranscribeValidatesInput(t *testing.T) {
	client := NewClient(provider.Config{BaseURL: "http://127.0.0.1:0"})
	if _, err := client.Transcribe(context.Background(), "", []string{"en"}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty url, got %v", err)
	}
	if _, err := client.Transcribe(context.Background(), "https://cdn.example.com/v.mp4", nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty languages, got %v", err)
	}
}

func TestSupportedLanguages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/languages" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"languages": []string{"en", "es", "fr"}})
	}))
	defer server.Close()

	client := NewClient(provider.Config{BaseURL: server.URL})
	languages, err := client.SupportedLanguages(context.Background())
	if err != nil {
		t.Fatalf("SupportedLanguages returned error: %v", err)
	}
	if len(languages) != 3 || languages[0] != "en" {
		t.Fatalf("unexpected languages %v", languages)
	}
}
