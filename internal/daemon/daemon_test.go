package daemon_test

import (
	"context"
	"testing"

	"clipline/internal/catalog"
	"clipline/internal/daemon"
	"clipline/internal/logging"
	"clipline/internal/services/speech"
	"clipline/internal/services/vision"
	"clipline/internal/tagging"
	"clipline/internal/testsupport"
	"clipline/internal/transcription"
	"clipline/internal/workflow"
)

type fakeSpeech struct{}

func (fakeSpeech) Transcribe(context.Context, string, []string) (map[string]speech.Result, error) {
	return map[string]speech.Result{"en": {Text: "hello"}}, nil
}

func (fakeSpeech) SupportedLanguages(context.Context) ([]string, error) {
	return []string{"en"}, nil
}

type fakeVision struct{}

func (fakeVision) Analyze(context.Context, string) ([]vision.Tag, error) {
	return nil, nil
}

func newDaemon(t *testing.T) (*daemon.Daemon, *catalog.Store) {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIBind = ""
	store := testsupport.MustOpenStore(t, cfg)
	processor := workflow.NewProcessor(
		store,
		transcription.NewCoordinator(store, fakeSpeech{}, nil),
		tagging.NewCoordinator(store, fakeVision{}, nil),
		nil,
		nil,
	)
	d, err := daemon.New(cfg, store, processor, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	return d, store
}

func TestStartRecoversStuckProcessing(t *testing.T) {
	d, store := newDaemon(t)
	ctx := context.Background()
	video := testsupport.NewVideo(t, store, "owner-1", "Beach Day")
	if _, err := store.BeginStage(ctx, video.ID, catalog.StageTranscription); err != nil {
		t.Fatalf("BeginStage: %v", err)
	}

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	current, err := store.GetVideo(ctx, video.ID)
	if err != nil {
		t.Fatalf("GetVideo: %v", err)
	}
	if current.TranscriptionStatus != catalog.StatusPending {
		t.Fatalf("expected stuck stage reset to pending, got %s", current.TranscriptionStatus)
	}
}

func TestStartIsExclusivePerDataDir(t *testing.T) {
	d, _ := newDaemon(t)
	ctx := context.Background()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second Start to fail while running")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	d, _ := newDaemon(t)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	d.Stop()
	d.Stop()
	if d.Running() {
		t.Fatal("expected stopped daemon")
	}
}
