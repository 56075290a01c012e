package transcription

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"clipline/internal/catalog"
	"clipline/internal/language"
	"clipline/internal/logging"
	"clipline/internal/services"
	"clipline/internal/services/speech"
)

// DefaultLanguage is used when a start request names no languages.
const DefaultLanguage = "en"

// Provider is the speech-service surface the coordinator depends on.
type Provider interface {
	Transcribe(ctx context.Context, mediaURL string, languages []string) (map[string]speech.Result, error)
	SupportedLanguages(ctx context.Context) ([]string, error)
}

// Coordinator drives videos through the transcription lifecycle. It guards
// against duplicate concurrent runs, persists provider results, and owns the
// transcription status column. Background execution is supplied by the
// caller: Begin performs the guarded flip to processing and hands back a Run
// whose Execute does the provider call and terminal status write.
type Coordinator struct {
	store    *catalog.Store
	provider Provider
	logger   *slog.Logger
}

// NewCoordinator wires the coordinator to its store and speech provider.
func NewCoordinator(store *catalog.Store, provider Provider, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Coordinator{
		store:    store,
		provider: provider,
		logger:   logging.NewComponentLogger(logger, "transcription"),
	}
}

// Run is an accepted transcription start. The status flip to processing has
// already been persisted when Begin returns one.
type Run struct {
	coordinator *Coordinator
	video       *catalog.Video
	languages   []string
}

// Video returns the video the run operates on.
func (r *Run) Video() *catalog.Video { return r.video }

// Languages returns the canonical language set the run will transcribe.
func (r *Run) Languages() []string { return r.languages }

// Begin validates a start request and atomically flips the transcription
// status to processing. It returns ErrAlreadyInProgress when another run
// holds the stage, ErrAlreadyCompleted when the stored transcript already
// covers the requested languages, and ErrNoValidLanguages when nothing
// requested survives the provider's supported set. A completed video asked
// for a different language set is re-claimed; its prior transcript is
// discarded before the flip only when the representation switches, so a
// multilingual re-run extends the stored row instead of replacing it. The
// provider call itself happens later, in Run.Execute.
func (c *Coordinator) Begin(ctx context.Context, videoID int64, requested []string) (*Run, error) {
	video, err := c.store.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, services.Wrap(services.ErrNotFound, "transcription", "begin", "video not found", nil)
	}
	if video.TranscriptionStatus == catalog.StatusProcessing {
		return nil, services.Wrap(services.ErrAlreadyInProgress, "transcription", "begin", "transcription already running", nil)
	}

	languages, err := c.resolveLanguages(ctx, requested)
	if err != nil {
		return nil, err
	}

	if video.TranscriptionStatus == catalog.StatusCompleted {
		transcript, err := c.store.TranscriptForVideo(ctx, videoID)
		if err != nil {
			return nil, err
		}
		if transcript != nil && language.Equal(languages, transcript.Languages()) {
			return nil, services.Wrap(services.ErrAlreadyCompleted, "transcription", "begin", "transcription already completed for the requested languages", nil)
		}
		// Multilingual-to-multilingual re-runs keep the stored row so the
		// merge extends it. Only a representation switch discards it.
		if transcript != nil && (transcript.Kind == catalog.TranscriptSingle || len(languages) == 1) {
			if err := c.store.RemoveTranscript(ctx, videoID); err != nil {
				return nil, err
			}
		}
	}

	flipped, err := c.store.BeginStage(ctx, videoID, catalog.StageTranscription,
		catalog.StatusPending, catalog.StatusFailed, catalog.StatusCompleted)
	if err != nil {
		return nil, err
	}
	if !flipped {
		return nil, services.Wrap(services.ErrAlreadyInProgress, "transcription", "begin", "transcription already running", nil)
	}

	c.logger.Info("transcription accepted",
		logging.Int64(logging.FieldVideoID, videoID),
		logging.String("languages", strings.Join(languages, ",")))
	return &Run{coordinator: c, video: video, languages: languages}, nil
}

// Execute calls the speech provider and writes the terminal status. It is
// intended to run detached from the request that accepted the start; its
// error is for logging only, the durable outcome lives in the status column.
func (r *Run) Execute(ctx context.Context) error {
	c := r.coordinator
	videoID := r.video.ID

	results, err := c.provider.Transcribe(ctx, r.video.MediaURL, r.languages)
	if err != nil {
		return c.fail(ctx, videoID, err)
	}

	if len(r.languages) == 1 {
		lang := r.languages[0]
		result, ok := results[lang]
		if !ok {
			for _, fallback := range results {
				result = fallback
				break
			}
		}
		err = c.store.SaveSingleTranscript(ctx, videoID, lang, result.Text, convertSegments(result.Segments))
	} else {
		err = c.store.MergeMultilingualTranscript(ctx, videoID, convertResults(results), catalog.StatusCompleted)
	}
	if err != nil {
		return c.fail(ctx, videoID, fmt.Errorf("save transcript: %w", err))
	}

	if err := c.store.FinishStage(ctx, videoID, catalog.StageTranscription, catalog.StatusCompleted, ""); err != nil {
		return err
	}
	c.logger.Info("transcription completed",
		logging.Int64(logging.FieldVideoID, videoID),
		logging.Int("languages", len(r.languages)))
	return nil
}

func (c *Coordinator) fail(ctx context.Context, videoID int64, cause error) error {
	if err := c.store.FinishStage(ctx, videoID, catalog.StageTranscription, catalog.StatusFailed, cause.Error()); err != nil {
		c.logger.Error("failed to record transcription failure",
			logging.Int64(logging.FieldVideoID, videoID),
			logging.Error(err))
	}
	return cause
}

func (c *Coordinator) resolveLanguages(ctx context.Context, requested []string) ([]string, error) {
	if len(requested) == 0 {
		requested = []string{DefaultLanguage}
	}
	supported, err := c.provider.SupportedLanguages(ctx)
	if err != nil {
		return nil, err
	}
	languages := language.Filter(requested, supported)
	if len(languages) == 0 {
		return nil, services.Wrap(services.ErrNoValidLanguages, "transcription", "begin", "no requested language is supported", nil)
	}
	return languages, nil
}

// Status reports the current transcription status and transcript presence
// without triggering any work.
func (c *Coordinator) Status(ctx context.Context, videoID int64) (catalog.StageStatus, bool, error) {
	video, err := c.store.GetVideo(ctx, videoID)
	if err != nil {
		return "", false, err
	}
	if video == nil {
		return "", false, services.Wrap(services.ErrNotFound, "transcription", "status", "video not found", nil)
	}
	present, err := c.store.HasTranscript(ctx, videoID)
	if err != nil {
		return "", false, err
	}
	return video.TranscriptionStatus, present, nil
}

// SearchText performs substring matching across stored transcripts and joins
// each match with its owning video. Ownership filtering is the caller's job.
func (c *Coordinator) SearchText(ctx context.Context, query string) ([]catalog.TranscriptMatch, error) {
	return c.store.SearchTranscripts(ctx, query)
}

// SupportedLanguages reports the provider's language set, canonicalized.
func (c *Coordinator) SupportedLanguages(ctx context.Context) ([]string, error) {
	supported, err := c.provider.SupportedLanguages(ctx)
	if err != nil {
		return nil, err
	}
	return language.Filter(supported, supported), nil
}

func convertSegments(in []speech.Segment) []catalog.Segment {
	if len(in) == 0 {
		return nil
	}
	out := make([]catalog.Segment, len(in))
	for i, seg := range in {
		out[i] = catalog.Segment{Start: seg.Start, End: seg.End, Text: seg.Text}
	}
	return out
}

func convertResults(in map[string]speech.Result) map[string]catalog.LanguageResult {
	out := make(map[string]catalog.LanguageResult, len(in))
	for lang, result := range in {
		out[lang] = catalog.LanguageResult{Text: result.Text, Segments: convertSegments(result.Segments)}
	}
	return out
}
