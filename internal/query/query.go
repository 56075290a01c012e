package query

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"clipline/internal/catalog"
	"clipline/internal/logging"
	"clipline/internal/services"
)

// Status is the client-facing composite of a video's pipeline state.
// IsProcessing and IsCompleted are computed, never stored.
type Status struct {
	VideoID             int64               `json:"videoId"`
	TranscriptionStatus catalog.StageStatus `json:"transcriptionStatus"`
	VisionStatus        catalog.StageStatus `json:"visionStatus"`
	TagCount            int                 `json:"tagCount"`
	HasTranscript       bool                `json:"hasTranscript"`
	IsProcessing        bool                `json:"isProcessing"`
	IsCompleted         bool                `json:"isCompleted"`
}

// Result is one scored search hit.
type Result struct {
	Video *catalog.Video `json:"video"`
	Score float64        `json:"relevanceScore"`
}

// Service is the read side of the pipeline: composed status and
// relevance-scored search. It never mutates anything.
type Service struct {
	store  *catalog.Store
	logger *slog.Logger
}

// NewService wires the read surface to the catalog store.
func NewService(store *catalog.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{store: store, logger: logging.NewComponentLogger(logger, "query")}
}

// GetStatus composes both stage statuses, tag count, and transcript presence
// into a single status object.
func (s *Service) GetStatus(ctx context.Context, videoID int64) (Status, error) {
	video, err := s.store.GetVideo(ctx, videoID)
	if err != nil {
		return Status{}, err
	}
	if video == nil {
		return Status{}, services.Wrap(services.ErrNotFound, "query", "status", "video not found", nil)
	}
	tagCount, err := s.store.TagCount(ctx, videoID)
	if err != nil {
		return Status{}, err
	}
	hasTranscript, err := s.store.HasTranscript(ctx, videoID)
	if err != nil {
		return Status{}, err
	}
	return Status{
		VideoID:             video.ID,
		TranscriptionStatus: video.TranscriptionStatus,
		VisionStatus:        video.VisionStatus,
		TagCount:            tagCount,
		HasTranscript:       hasTranscript,
		IsProcessing:        video.IsProcessing(),
		IsCompleted:         video.IsCompleted(),
	}, nil
}

// Search matches the query case-insensitively against title, description,
// transcript text, and tag labels for the owner's videos, scores each hit,
// and returns results ordered by descending score with ties broken by most
// recent upload. Supplying typeFilter turns the search into a tag-only
// search restricted to that tag type; title, description, and transcript
// matches no longer count, by choice, so that a filtered search means "find
// videos tagged with this".
func (s *Service) Search(ctx context.Context, ownerID, query, typeFilter string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrValidation, "query", "search", "search query is required", nil)
	}

	candidates, err := s.store.SearchCandidates(ctx, ownerID, query, typeFilter)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	results := make([]Result, 0, len(candidates))
	for _, candidate := range candidates {
		score, matched := scoreCandidate(candidate, needle, typeFilter)
		if !matched {
			continue
		}
		// A zero-confidence tag match still counts as a hit; it just sorts last.
		results = append(results, Result{Video: candidate.Video, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Video.CreatedAt.After(results[j].Video.CreatedAt)
	})
	return results, nil
}

func scoreCandidate(candidate catalog.SearchCandidate, needle, typeFilter string) (float64, bool) {
	var score float64
	var matched bool
	filtered := typeFilter != ""
	if !filtered {
		if strings.Contains(strings.ToLower(candidate.Video.Title), needle) {
			score += 10
			matched = true
		}
		if strings.Contains(strings.ToLower(candidate.Video.Description), needle) {
			score += 5
			matched = true
		}
		if strings.Contains(strings.ToLower(candidate.TranscriptText), needle) {
			score += 3
			matched = true
		}
	}
	for _, tag := range candidate.Tags {
		if filtered && !strings.EqualFold(tag.Type, typeFilter) {
			continue
		}
		if strings.Contains(strings.ToLower(tag.Label), needle) {
			score += tag.Score() * 2
			matched = true
		}
	}
	return score, matched
}
