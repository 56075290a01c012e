package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clipline/internal/config"
)

const userAgent = "Clipline-Go/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifyTranscriptionCompleted(ctx context.Context, title string, languages []string) error
	NotifyVisionCompleted(ctx context.Context, title string, tagCount int) error
	NotifyStageFailed(ctx context.Context, stage, title string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:      topic,
		client:        &http.Client{Timeout: timeout},
		transcription: cfg.Notifications.Transcription,
		vision:        cfg.Notifications.Vision,
		errors:        cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client

	transcription bool
	vision        bool
	errors        bool
}

func (n *ntfyService) NotifyTranscriptionCompleted(ctx context.Context, title string, languages []string) error {
	if !n.transcription {
		return nil
	}
	title = strings.TrimSpace(title)
	message := fmt.Sprintf("Transcription complete: %s", title)
	if len(languages) > 0 {
		message = fmt.Sprintf("%s (%s)", message, strings.Join(languages, ", "))
	}
	data := payload{
		title:   "Clipline - Transcribed",
		message: message,
		tags:    []string{"clipline", "transcription", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyVisionCompleted(ctx context.Context, title string, tagCount int) error {
	if !n.vision {
		return nil
	}
	title = strings.TrimSpace(title)
	data := payload{
		title:   "Clipline - Analyzed",
		message: fmt.Sprintf("Visual analysis complete: %s (%d tags)", title, tagCount),
		tags:    []string{"clipline", "vision", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyStageFailed(ctx context.Context, stage, title string, err error) error {
	if !n.errors {
		return nil
	}
	stage = strings.TrimSpace(stage)
	title = strings.TrimSpace(title)

	var builder strings.Builder
	builder.WriteString("Stage failed")
	if stage != "" {
		builder.WriteString(": ")
		builder.WriteString(stage)
	}
	if title != "" {
		builder.WriteString(" for ")
		builder.WriteString(title)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Clipline - Error",
		message:  builder.String(),
		tags:     []string{"clipline", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Clipline - Test",
		message:  "Notification system test",
		tags:     []string{"clipline", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyTranscriptionCompleted(context.Context, string, []string) error { return nil }
func (noopService) NotifyVisionCompleted(context.Context, string, int) error             { return nil }
func (noopService) NotifyStageFailed(context.Context, string, string, error) error       { return nil }
func (noopService) TestNotification(context.Context) error                               { return nil }

// NewNoop returns a notification service that discards everything.
func NewNoop() Service { return noopService{} }
