package workflow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"clipline/internal/catalog"
	"clipline/internal/logging"
	"clipline/internal/notifications"
	"clipline/internal/services"
	"clipline/internal/tagging"
	"clipline/internal/transcription"
)

// Dispatched reports which stages a ProcessBoth call actually started.
type Dispatched struct {
	Transcription bool `json:"transcription"`
	Vision        bool `json:"vision"`
}

// Processor is the fan-out entry point for stage work. All stage starts go
// through it: the guarded status flip happens synchronously, the provider
// call and persistence run as a supervised background task. Task failures are
// written to the stage's status column and logged; they are never returned to
// the caller that accepted the start.
type Processor struct {
	store         *catalog.Store
	transcription *transcription.Coordinator
	tagging       *tagging.Coordinator
	notifier      notifications.Service
	logger        *slog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewProcessor wires the orchestrator to its coordinators and notifier.
func NewProcessor(
	store *catalog.Store,
	transcriptionCoord *transcription.Coordinator,
	taggingCoord *tagging.Coordinator,
	notifier notifications.Service,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewNoop()
	}
	return &Processor{
		store:         store,
		transcription: transcriptionCoord,
		tagging:       taggingCoord,
		notifier:      notifier,
		logger:        logging.NewComponentLogger(logger, "workflow"),
	}
}

// StartTranscription accepts a transcription start and detaches its
// execution. When it returns nil the status flip to processing is already
// visible to concurrent readers.
func (p *Processor) StartTranscription(ctx context.Context, videoID int64, languages []string) error {
	run, err := p.transcription.Begin(ctx, videoID, languages)
	if err != nil {
		return err
	}
	p.spawnTranscription(run)
	return nil
}

// StartVision accepts a vision start and detaches its execution.
func (p *Processor) StartVision(ctx context.Context, videoID int64) error {
	run, err := p.tagging.Begin(ctx, videoID)
	if err != nil {
		return err
	}
	p.spawnVision(run)
	return nil
}

// ProcessBoth dispatches whichever stages are neither completed nor
// processing and returns immediately with what was started. The two stages
// run independently; one failing never blocks or rolls back the other.
// ErrNothingToProcess when neither stage needs work.
func (p *Processor) ProcessBoth(ctx context.Context, videoID int64) (Dispatched, error) {
	video, err := p.store.GetVideo(ctx, videoID)
	if err != nil {
		return Dispatched{}, err
	}
	if video == nil {
		return Dispatched{}, services.Wrap(services.ErrNotFound, "workflow", "process", "video not found", nil)
	}

	wantTranscription := stageNeedsWork(video.TranscriptionStatus)
	wantVision := stageNeedsWork(video.VisionStatus)
	if !wantTranscription && !wantVision {
		return Dispatched{}, services.Wrap(services.ErrNothingToProcess, "workflow", "process", "both stages already completed or running", nil)
	}

	var dispatched Dispatched
	var firstErr error

	if wantTranscription {
		run, err := p.transcription.Begin(ctx, videoID, nil)
		switch {
		case err == nil:
			p.spawnTranscription(run)
			dispatched.Transcription = true
		case services.IsConflict(err):
			// Lost the race to another start; that run owns the stage now.
		default:
			firstErr = err
			p.logger.Warn("transcription dispatch failed",
				logging.Int64(logging.FieldVideoID, videoID),
				logging.Error(err))
		}
	}
	if wantVision {
		run, err := p.tagging.Begin(ctx, videoID)
		switch {
		case err == nil:
			p.spawnVision(run)
			dispatched.Vision = true
		case services.IsConflict(err):
		default:
			if firstErr == nil {
				firstErr = err
			}
			p.logger.Warn("vision dispatch failed",
				logging.Int64(logging.FieldVideoID, videoID),
				logging.Error(err))
		}
	}

	if !dispatched.Transcription && !dispatched.Vision && firstErr != nil {
		return Dispatched{}, firstErr
	}
	return dispatched, nil
}

func stageNeedsWork(status catalog.StageStatus) bool {
	return status != catalog.StatusCompleted && status != catalog.StatusProcessing
}

func (p *Processor) spawnTranscription(run *transcription.Run) {
	video := run.Video()
	languages := run.Languages()
	p.spawn("transcription", video.ID, func(ctx context.Context, logger *slog.Logger) {
		if err := run.Execute(ctx); err != nil {
			logger.Error("transcription stage failed", logging.Error(err))
			if nerr := p.notifier.NotifyStageFailed(ctx, "transcription", video.Title, err); nerr != nil {
				logger.Warn("stage-failure notification failed", logging.Error(nerr))
			}
			return
		}
		if nerr := p.notifier.NotifyTranscriptionCompleted(ctx, video.Title, languages); nerr != nil {
			logger.Warn("completion notification failed", logging.Error(nerr))
		}
	})
}

func (p *Processor) spawnVision(run *tagging.Run) {
	video := run.Video()
	p.spawn("vision", video.ID, func(ctx context.Context, logger *slog.Logger) {
		if err := run.Execute(ctx); err != nil {
			logger.Error("vision stage failed", logging.Error(err))
			if nerr := p.notifier.NotifyStageFailed(ctx, "vision", video.Title, err); nerr != nil {
				logger.Warn("stage-failure notification failed", logging.Error(nerr))
			}
			return
		}
		count, err := p.store.TagCount(ctx, video.ID)
		if err != nil {
			logger.Warn("tag count after completion failed", logging.Error(err))
		}
		if nerr := p.notifier.NotifyVisionCompleted(ctx, video.Title, count); nerr != nil {
			logger.Warn("completion notification failed", logging.Error(nerr))
		}
	})
}

// spawn runs task in a tracked goroutine with its own detached context. The
// accepting request's context must not cancel provider work that is already
// committed as processing, so tasks never inherit it.
func (p *Processor) spawn(stage string, videoID int64, task func(context.Context, *slog.Logger)) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		// The stage stays in processing; the startup reset returns it to
		// pending on the next run.
		p.logger.Warn("task rejected after close",
			logging.String(logging.FieldStage, stage),
			logging.Int64(logging.FieldVideoID, videoID))
		return
	}
	p.wg.Add(1)
	p.mu.Unlock()

	taskID := uuid.NewString()
	logger := p.logger.With(
		logging.String(logging.FieldStage, stage),
		logging.Int64(logging.FieldVideoID, videoID),
		logging.String(logging.FieldRequestID, taskID),
	)
	go func() {
		defer p.wg.Done()
		logger.Debug("stage task started")
		task(context.Background(), logger)
		logger.Debug("stage task finished")
	}()
}

// Close waits for all in-flight stage tasks to reach a terminal status.
func (p *Processor) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.wg.Wait()
}
