package testsupport

import (
	"path/filepath"
	"testing"

	"clipline/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Speech.BaseURL = "http://speech.test"
	cfg.Vision.BaseURL = "http://vision.test"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithSpeechBaseURL overrides the speech provider endpoint on the test config.
func WithSpeechBaseURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Speech.BaseURL = url
	}
}

// WithVisionBaseURL overrides the vision provider endpoint on the test config.
func WithVisionBaseURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Vision.BaseURL = url
	}
}

// WithNtfyTopic enables push notifications against the given topic URL.
func WithNtfyTopic(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Notifications.NtfyTopic = url
	}
}
