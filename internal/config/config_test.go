package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"clipline/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadExpandsPathsAndAppliesDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := writeConfig(t, `
[speech]
base_url = "https://speech.example.com/"

[vision]
base_url = "https://vision.example.com"
`)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, path)
	}

	wantData := filepath.Join(tempHome, ".local", "share", "clipline")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7519" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Speech.BaseURL != "https://speech.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Speech.BaseURL)
	}
	if cfg.Speech.TimeoutSeconds != config.Default().Speech.TimeoutSeconds {
		t.Fatalf("unexpected speech timeout: %d", cfg.Speech.TimeoutSeconds)
	}
	if cfg.Notifications.NtfyTopic != "" {
		t.Fatalf("expected notifications disabled by default, got topic %q", cfg.Notifications.NtfyTopic)
	}
	if !cfg.Notifications.Transcription || !cfg.Notifications.Vision || !cfg.Notifications.Errors {
		t.Fatal("expected all notification event toggles enabled by default")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Fatalf("unexpected logging defaults: %q/%q", cfg.Logging.Level, cfg.Logging.Format)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be a directory", dir)
		}
	}
}

func TestLoadCustomValues(t *testing.T) {
	path := writeConfig(t, `
[paths]
api_bind = "0.0.0.0:9000"

[speech]
base_url = "https://speech.example.com"
api_key = "speech-key"
timeout_seconds = 45

[vision]
base_url = "https://vision.example.com"

[notifications]
ntfy_topic = "https://ntfy.sh/clipline-test"
vision = false
`)

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.APIBind != "0.0.0.0:9000" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Speech.APIKey != "speech-key" {
		t.Fatalf("unexpected speech key: %q", cfg.Speech.APIKey)
	}
	if cfg.Speech.TimeoutSeconds != 45 {
		t.Fatalf("unexpected speech timeout: %d", cfg.Speech.TimeoutSeconds)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.sh/clipline-test" {
		t.Fatalf("unexpected ntfy topic: %q", cfg.Notifications.NtfyTopic)
	}
	if cfg.Notifications.Vision {
		t.Fatal("expected vision notifications disabled via file")
	}
	if !cfg.Notifications.Transcription {
		t.Fatal("expected transcription notifications to keep their default")
	}
}

func TestLoadWithoutFileRequiresProviderURLs(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	_, _, _, err := config.Load("")
	if err == nil {
		t.Fatal("expected error: defaults lack provider base URLs")
	}
	if !strings.Contains(err.Error(), "speech.base_url") {
		t.Fatalf("expected speech.base_url error, got %v", err)
	}
}

func TestWriteSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "speech.example.com") {
		t.Fatalf("sample config missing speech placeholder: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Paths.APIBind == "" {
		t.Fatal("expected sample to set api_bind")
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	valid := func() config.Config {
		cfg := config.Default()
		cfg.Speech.BaseURL = "https://speech.example.com"
		cfg.Vision.BaseURL = "https://vision.example.com"
		return cfg
	}

	cfg := valid()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cfg = valid()
	cfg.Speech.BaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing speech base URL")
	}

	cfg = valid()
	cfg.Vision.BaseURL = "not a url"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for relative vision base URL")
	}

	cfg = valid()
	cfg.Speech.TimeoutSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive timeout")
	}

	cfg = valid()
	cfg.Paths.APIBind = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty api bind")
	}

	cfg = valid()
	cfg.Notifications.NtfyTopic = "clipline-no-scheme"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for ntfy topic without scheme")
	}

	cfg = valid()
	cfg.Notifications.NtfyTopic = "https://ntfy.sh/clipline"
	cfg.Notifications.RequestTimeout = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative notification timeout")
	}
}
