package tagging

import (
	"context"
	"fmt"
	"log/slog"

	"clipline/internal/catalog"
	"clipline/internal/logging"
	"clipline/internal/services"
	"clipline/internal/services/vision"
)

// Provider is the vision-service surface the coordinator depends on.
type Provider interface {
	Analyze(ctx context.Context, mediaURL string) ([]vision.Tag, error)
}

// Coordinator drives videos through the visual-analysis lifecycle and owns
// the vision status column. Mirrors the transcription coordinator: Begin does
// the guarded flip, Execute runs detached and writes the terminal status.
type Coordinator struct {
	store    *catalog.Store
	provider Provider
	logger   *slog.Logger
}

// NewCoordinator wires the coordinator to its store and vision provider.
func NewCoordinator(store *catalog.Store, provider Provider, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Coordinator{
		store:    store,
		provider: provider,
		logger:   logging.NewComponentLogger(logger, "tagging"),
	}
}

// Run is an accepted vision start; the flip to processing is already durable.
type Run struct {
	coordinator *Coordinator
	video       *catalog.Video
}

// Video returns the video the run operates on.
func (r *Run) Video() *catalog.Video { return r.video }

// Begin validates a start request and atomically flips the vision status to
// processing. Unlike transcription there is no language nuance: a completed
// stage is refused outright and failed is always retryable.
func (c *Coordinator) Begin(ctx context.Context, videoID int64) (*Run, error) {
	video, err := c.store.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, services.Wrap(services.ErrNotFound, "vision", "begin", "video not found", nil)
	}
	switch video.VisionStatus {
	case catalog.StatusProcessing:
		return nil, services.Wrap(services.ErrAlreadyInProgress, "vision", "begin", "vision analysis already running", nil)
	case catalog.StatusCompleted:
		return nil, services.Wrap(services.ErrAlreadyCompleted, "vision", "begin", "vision analysis already completed", nil)
	}

	flipped, err := c.store.BeginStage(ctx, videoID, catalog.StageVision)
	if err != nil {
		return nil, err
	}
	if !flipped {
		return nil, services.Wrap(services.ErrAlreadyInProgress, "vision", "begin", "vision analysis already running", nil)
	}

	c.logger.Info("vision analysis accepted", logging.Int64(logging.FieldVideoID, videoID))
	return &Run{coordinator: c, video: video}, nil
}

// Execute calls the vision provider, replaces the video's full tag set, and
// writes the terminal status. Replacement is delete-then-insert, never a
// partial merge.
func (r *Run) Execute(ctx context.Context) error {
	c := r.coordinator
	videoID := r.video.ID

	detected, err := c.provider.Analyze(ctx, r.video.MediaURL)
	if err != nil {
		return c.fail(ctx, videoID, err)
	}

	tags := make([]catalog.Tag, len(detected))
	for i, tag := range detected {
		tags[i] = catalog.Tag{
			VideoID:    videoID,
			Label:      tag.Label,
			Type:       tag.Type,
			Confidence: tag.Confidence,
			Timestamp:  tag.Timestamp,
		}
	}
	if err := c.store.ReplaceTags(ctx, videoID, tags); err != nil {
		return c.fail(ctx, videoID, fmt.Errorf("replace tags: %w", err))
	}

	if err := c.store.FinishStage(ctx, videoID, catalog.StageVision, catalog.StatusCompleted, ""); err != nil {
		return err
	}
	c.logger.Info("vision analysis completed",
		logging.Int64(logging.FieldVideoID, videoID),
		logging.Int("tags", len(tags)))
	return nil
}

func (c *Coordinator) fail(ctx context.Context, videoID int64, cause error) error {
	if err := c.store.FinishStage(ctx, videoID, catalog.StageVision, catalog.StatusFailed, cause.Error()); err != nil {
		c.logger.Error("failed to record vision failure",
			logging.Int64(logging.FieldVideoID, videoID),
			logging.Error(err))
	}
	return cause
}

// Status reports the current vision status and tag count without triggering
// any work.
func (c *Coordinator) Status(ctx context.Context, videoID int64) (catalog.StageStatus, int, error) {
	video, err := c.store.GetVideo(ctx, videoID)
	if err != nil {
		return "", 0, err
	}
	if video == nil {
		return "", 0, services.Wrap(services.ErrNotFound, "vision", "status", "video not found", nil)
	}
	count, err := c.store.TagCount(ctx, videoID)
	if err != nil {
		return "", 0, err
	}
	return video.VisionStatus, count, nil
}

// Tags returns a video's stored tags, highest confidence first.
func (c *Coordinator) Tags(ctx context.Context, videoID int64) ([]catalog.Tag, error) {
	return c.store.TagsForVideo(ctx, videoID)
}
