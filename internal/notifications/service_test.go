package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"clipline/internal/config"
	"clipline/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyTranscriptionCompleted(context.Background(), "Example", []string{"en"}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	type captured struct {
		title    string
		message  string
		tags     string
		priority string
	}

	var got captured
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		got = captured{
			title:    r.Header.Get("Title"),
			message:  string(body),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Transcription = true
	cfg.Notifications.Vision = true
	cfg.Notifications.Errors = true
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyTranscriptionCompleted(context.Background(), "Beach Day", []string{"en", "es"}); err != nil {
		t.Fatalf("NotifyTranscriptionCompleted: %v", err)
	}
	if got.title != "Clipline - Transcribed" {
		t.Fatalf("unexpected title %q", got.title)
	}
	if got.message != "Transcription complete: Beach Day (en, es)" {
		t.Fatalf("unexpected message %q", got.message)
	}
	if got.tags != "clipline,transcription,completed" {
		t.Fatalf("unexpected tags %q", got.tags)
	}

	if err := svc.NotifyVisionCompleted(context.Background(), "Beach Day", 7); err != nil {
		t.Fatalf("NotifyVisionCompleted: %v", err)
	}
	if got.message != "Visual analysis complete: Beach Day (7 tags)" {
		t.Fatalf("unexpected message %q", got.message)
	}

	if err := svc.NotifyStageFailed(context.Background(), "transcription", "Beach Day", errors.New("boom")); err != nil {
		t.Fatalf("NotifyStageFailed: %v", err)
	}
	if got.priority != "high" {
		t.Fatalf("expected high priority for failures, got %q", got.priority)
	}
	if got.message != "Stage failed: transcription for Beach Day: boom" {
		t.Fatalf("unexpected message %q", got.message)
	}
}

func TestNtfyServiceHonorsEventToggles(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Transcription = false
	cfg.Notifications.Vision = false
	cfg.Notifications.Errors = false
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyTranscriptionCompleted(context.Background(), "Beach Day", nil); err != nil {
		t.Fatalf("NotifyTranscriptionCompleted: %v", err)
	}
	if err := svc.NotifyVisionCompleted(context.Background(), "Beach Day", 0); err != nil {
		t.Fatalf("NotifyVisionCompleted: %v", err)
	}
	if err := svc.NotifyStageFailed(context.Background(), "vision", "Beach Day", errors.New("boom")); err != nil {
		t.Fatalf("NotifyStageFailed: %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no ntfy calls when toggles are off, got %d", calls)
	}
}

func TestNtfyServiceReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error from ntfy failure")
	}
}
