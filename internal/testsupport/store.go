package testsupport

import (
	"context"
	"testing"

	"clipline/internal/catalog"
	"clipline/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewVideo creates a video row for tests using the provided store.
func NewVideo(t testing.TB, store *catalog.Store, ownerID, title string) *catalog.Video {
	t.Helper()

	video, err := store.NewVideo(context.Background(), ownerID, title, "", "https://media.test/"+title+".mp4")
	if err != nil {
		t.Fatalf("store.NewVideo: %v", err)
	}
	return video
}

// FloatPtr returns a pointer to the given float, for optional tag fields.
func FloatPtr(v float64) *float64 {
	return &v
}
