package catalog_test

import (
	"context"
	"testing"

	"clipline/internal/catalog"
	"clipline/internal/testsupport"
)

func TestBeginStageFlipsEligibleStatuses(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	cases := []struct {
		name     string
		initial  catalog.StageStatus
		from     []catalog.StageStatus
		expected bool
	}{
		{"pending default", catalog.StatusPending, nil, true},
		{"failed default", catalog.StatusFailed, nil, true},
		{"processing rejected", catalog.StatusProcessing, nil, false},
		{"completed rejected by default", catalog.StatusCompleted, nil, false},
		{"completed allowed explicitly", catalog.StatusCompleted, []catalog.StageStatus{catalog.StatusCompleted}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			video := testsupport.NewVideo(t, store, "owner-1", "Video-"+tc.name)
			if tc.initial != catalog.StatusPending {
				if err := store.FinishStage(ctx, video.ID, catalog.StageTranscription, tc.initial, "seed"); err != nil {
					t.Fatalf("FinishStage seed failed: %v", err)
				}
			}

			flipped, err := store.BeginStage(ctx, video.ID, catalog.StageTranscription, tc.from...)
			if err != nil {
				t.Fatalf("BeginStage failed: %v", err)
			}
			if flipped != tc.expected {
				t.Fatalf("expected flipped=%v, got %v", tc.expected, flipped)
			}

			fetched, err := store.GetVideo(ctx, video.ID)
			if err != nil {
				t.Fatalf("GetVideo failed: %v", err)
			}
			if tc.expected && fetched.TranscriptionStatus != catalog.StatusProcessing {
				t.Fatalf("expected processing after flip, got %s", fetched.TranscriptionStatus)
			}
			if !tc.expected && fetched.TranscriptionStatus != tc.initial {
				t.Fatalf("expected status unchanged (%s), got %s", tc.initial, fetched.TranscriptionStatus)
			}
		})
	}
}

func TestBeginStageDoesNotTouchOtherStage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	video := testsupport.NewVideo(t, store, "owner-1", "Independent")
	if _, err := store.BeginStage(ctx, video.ID, catalog.StageVision); err != nil {
		t.Fatalf("BeginStage failed: %v", err)
	}

	fetched, err := store.GetVideo(ctx, video.ID)
	if err != nil {
		t.Fatalf("GetVideo failed: %v", err)
	}
	if fetched.VisionStatus != catalog.StatusProcessing {
		t.Fatalf("expected vision processing, got %s", fetched.VisionStatus)
	}
	if fetched.TranscriptionStatus != catalog.StatusPending {
		t.Fatalf("expected transcription untouched, got %s", fetched.TranscriptionStatus)
	}
}

func TestBeginStageOnlyOneWinnerAmongRacers(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	video := testsupport.NewVideo(t, store, "owner-1", "Contested")

	wins := 0
	for i := 0; i < 5; i++ {
		flipped, err := store.BeginStage(ctx, video.ID, catalog.StageTranscription)
		if err != nil {
			t.Fatalf("BeginStage failed: %v", err)
		}
		if flipped {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winning flip, got %d", wins)
	}
}

func TestFinishStageStoresFailureMessage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	video := testsupport.NewVideo(t, store, "owner-1", "Failing")
	if _, err := store.BeginStage(ctx, video.ID, catalog.StageTranscription); err != nil {
		t.Fatalf("BeginStage failed: %v", err)
	}
	if err := store.FinishStage(ctx, video.ID, catalog.StageTranscription, catalog.StatusFailed, "provider unreachable"); err != nil {
		t.Fatalf("FinishStage failed: %v", err)
	}

	fetched, err := store.GetVideo(ctx, video.ID)
	if err != nil {
		t.Fatalf("GetVideo failed: %v", err)
	}
	if fetched.TranscriptionStatus != catalog.StatusFailed {
		t.Fatalf("expected failed status, got %s", fetched.TranscriptionStatus)
	}
	if fetched.TranscriptionError != "provider unreachable" {
		t.Fatalf("unexpected error message: %q", fetched.TranscriptionError)
	}

	if err := store.FinishStage(ctx, video.ID, catalog.StageTranscription, catalog.StatusCompleted, "stale"); err != nil {
		t.Fatalf("FinishStage failed: %v", err)
	}
	fetched, err = store.GetVideo(ctx, video.ID)
	if err != nil {
		t.Fatalf("GetVideo failed: %v", err)
	}
	if fetched.TranscriptionError != "" {
		t.Fatalf("expected error cleared on success, got %q", fetched.TranscriptionError)
	}
}

func TestResetStuckProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	stuck := testsupport.NewVideo(t, store, "owner-1", "Stuck")
	done := testsupport.NewVideo(t, store, "owner-1", "Done")

	if _, err := store.BeginStage(ctx, stuck.ID, catalog.StageTranscription); err != nil {
		t.Fatalf("BeginStage failed: %v", err)
	}
	if _, err := store.BeginStage(ctx, stuck.ID, catalog.StageVision); err != nil {
		t.Fatalf("BeginStage failed: %v", err)
	}
	if err := store.FinishStage(ctx, done.ID, catalog.StageVision, catalog.StatusCompleted, ""); err != nil {
		t.Fatalf("FinishStage failed: %v", err)
	}

	affected, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 affected row, got %d", affected)
	}

	fetched, err := store.GetVideo(ctx, stuck.ID)
	if err != nil {
		t.Fatalf("GetVideo failed: %v", err)
	}
	if fetched.TranscriptionStatus != catalog.StatusPending || fetched.VisionStatus != catalog.StatusPending {
		t.Fatalf("expected both stages reset, got %s/%s", fetched.TranscriptionStatus, fetched.VisionStatus)
	}

	fetchedDone, err := store.GetVideo(ctx, done.ID)
	if err != nil {
		t.Fatalf("GetVideo failed: %v", err)
	}
	if fetchedDone.VisionStatus != catalog.StatusCompleted {
		t.Fatalf("expected completed stage untouched, got %s", fetchedDone.VisionStatus)
	}
}
