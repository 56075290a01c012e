package query_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"clipline/internal/catalog"
	"clipline/internal/query"
	"clipline/internal/services"
	"clipline/internal/testsupport"
)

func newService(t *testing.T) (*query.Service, *catalog.Store) {
	t.Helper()
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	return query.NewService(store, nil), store
}

func TestGetStatusComposesDerivedFields(t *testing.T) {
	service, store := newService(t)
	ctx := context.Background()
	video := testsupport.NewVideo(t, store, "owner-1", "Beach Day")

	status, err := service.GetStatus(ctx, video.ID)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.IsProcessing || status.IsCompleted || status.HasTranscript || status.TagCount != 0 {
		t.Fatalf("unexpected initial status %+v", status)
	}

	if _, err := store.BeginStage(ctx, video.ID, catalog.StageTranscription); err != nil {
		t.Fatalf("BeginStage: %v", err)
	}
	status, err = service.GetStatus(ctx, video.ID)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !status.IsProcessing || status.IsCompleted {
		t.Fatalf("expected processing, got %+v", status)
	}

	if err := store.FinishStage(ctx, video.ID, catalog.StageTranscription, catalog.StatusCompleted, ""); err != nil {
		t.Fatalf("FinishStage: %v", err)
	}
	if err := store.SaveSingleTranscript(ctx, video.ID, "en", "hello", nil); err != nil {
		t.Fatalf("SaveSingleTranscript: %v", err)
	}
	if err := store.FinishStage(ctx, video.ID, catalog.StageVision, catalog.StatusCompleted, ""); err != nil {
		t.Fatalf("FinishStage: %v", err)
	}
	if err := store.ReplaceTags(ctx, video.ID, []catalog.Tag{{VideoID: video.ID, Label: "beach", Type: "scene"}}); err != nil {
		t.Fatalf("ReplaceTags: %v", err)
	}

	status, err = service.GetStatus(ctx, video.ID)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !status.IsCompleted || status.IsProcessing {
		t.Fatalf("expected completed, got %+v", status)
	}
	if !status.HasTranscript || status.TagCount != 1 {
		t.Fatalf("expected transcript and one tag, got %+v", status)
	}
}

func TestGetStatusUnknownVideo(t *testing.T) {
	service, _ := newService(t)
	if _, err := service.GetStatus(context.Background(), 9999); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchScoresAndOrders(t *testing.T) {
	service, store := newService(t)
	ctx := context.Background()

	titled, err := store.NewVideo(ctx, "owner-1", "Sunset Beach", "", "https://media.test/titled.mp4")
	if err != nil {
		t.Fatalf("NewVideo: %v", err)
	}
	tagged, err := store.NewVideo(ctx, "owner-1", "Holiday", "", "https://media.test/tagged.mp4")
	if err != nil {
		t.Fatalf("NewVideo: %v", err)
	}
	if err := store.ReplaceTags(ctx, tagged.ID, []catalog.Tag{
		{VideoID: tagged.ID, Label: "beach", Type: "scene", Confidence: testsupport.FloatPtr(0.8)},
	}); err != nil {
		t.Fatalf("ReplaceTags: %v", err)
	}

	results, err := service.Search(ctx, "owner-1", "beach", "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected two results, got %d", len(results))
	}
	if results[0].Video.ID != titled.ID {
		t.Fatal("title match must rank above tag-only match")
	}
	if results[0].Score < 10 {
		t.Fatalf("title match must score at least 10, got %v", results[0].Score)
	}
	if math.Abs(results[1].Score-1.6) > 1e-9 {
		t.Fatalf("tag match at confidence 0.8 must score 1.6, got %v", results[1].Score)
	}
}

func TestSearchDefaultsMissingConfidence(t *testing.T) {
	service, store := newService(t)
	ctx := context.Background()

	video := testsupport.NewVideo(t, store, "owner-1", "Holiday")
	if err := store.ReplaceTags(ctx, video.ID, []catalog.Tag{
		{VideoID: video.ID, Label: "beach", Type: "scene"},
	}); err != nil {
		t.Fatalf("ReplaceTags: %v", err)
	}

	results, err := service.Search(ctx, "owner-1", "beach", "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	if math.Abs(results[0].Score-1.0) > 1e-9 {
		t.Fatalf("absent confidence must score as 0.5 (x2), got %v", results[0].Score)
	}
}

func TestSearchKeepsZeroConfidenceMatches(t *testing.T) {
	service, store := newService(t)
	ctx := context.Background()

	video := testsupport.NewVideo(t, store, "owner-1", "Holiday")
	if err := store.ReplaceTags(ctx, video.ID, []catalog.Tag{
		{VideoID: video.ID, Label: "beach", Type: "scene", Confidence: testsupport.FloatPtr(0)},
	}); err != nil {
		t.Fatalf("ReplaceTags: %v", err)
	}

	results, err := service.Search(ctx, "owner-1", "beach", "scene")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected the zero-confidence match to be kept, got %d results", len(results))
	}
	if results[0].Score != 0 {
		t.Fatalf("expected score 0, got %v", results[0].Score)
	}
}

func TestSearchTypeFilterIsTagOnly(t *testing.T) {
	service, store := newService(t)
	ctx := context.Background()

	titled, err := store.NewVideo(ctx, "owner-1", "Beach Trip", "", "https://media.test/titled.mp4")
	if err != nil {
		t.Fatalf("NewVideo: %v", err)
	}
	tagged := testsupport.NewVideo(t, store, "owner-1", "Holiday")
	if err := store.ReplaceTags(ctx, tagged.ID, []catalog.Tag{
		{VideoID: tagged.ID, Label: "beach ball", Type: "object"},
		{VideoID: tagged.ID, Label: "beach", Type: "scene"},
	}); err != nil {
		t.Fatalf("ReplaceTags: %v", err)
	}

	results, err := service.Search(ctx, "owner-1", "beach", "object")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Video.ID != tagged.ID {
		t.Fatalf("expected only the tagged video, got %+v", results)
	}
	for _, result := range results {
		if result.Video.ID == titled.ID {
			t.Fatal("title-only match must be excluded under a type filter")
		}
	}
	// Only the object tag may contribute under the filter.
	if math.Abs(results[0].Score-1.0) > 1e-9 {
		t.Fatalf("expected score 1.0 from the single object tag, got %v", results[0].Score)
	}
}

func TestSearchScopedToOwner(t *testing.T) {
	service, store := newService(t)
	ctx := context.Background()

	mine := testsupport.NewVideo(t, store, "owner-1", "Beach Day")
	testsupport.NewVideo(t, store, "owner-2", "Beach Night")

	results, err := service.Search(ctx, "owner-1", "beach", "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Video.ID != mine.ID {
		t.Fatalf("expected only owner-1's video, got %+v", results)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	service, _ := newService(t)
	if _, err := service.Search(context.Background(), "owner-1", "   ", ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSearchTiesBrokenByNewestUpload(t *testing.T) {
	service, store := newService(t)
	ctx := context.Background()

	older := testsupport.NewVideo(t, store, "owner-1", "Beach One")
	newer := testsupport.NewVideo(t, store, "owner-1", "Beach Two")

	results, err := service.Search(ctx, "owner-1", "beach", "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected two results, got %d", len(results))
	}
	if results[0].Video.ID != newer.ID || results[1].Video.ID != older.ID {
		t.Fatalf("expected newest first on equal scores, got %d then %d", results[0].Video.ID, results[1].Video.ID)
	}
}
