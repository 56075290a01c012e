package api

import (
	"time"

	"clipline/internal/catalog"
	"clipline/internal/workflow"
)

// Video is the wire representation of a catalog video.
type Video struct {
	ID                  int64               `json:"id"`
	OwnerID             string              `json:"ownerId"`
	Title               string              `json:"title"`
	Description         string              `json:"description,omitempty"`
	MediaURL            string              `json:"mediaUrl"`
	TranscriptionStatus catalog.StageStatus `json:"transcriptionStatus"`
	VisionStatus        catalog.StageStatus `json:"visionStatus"`
	TranscriptionError  string              `json:"transcriptionError,omitempty"`
	VisionError         string              `json:"visionError,omitempty"`
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
}

func videoPayload(video *catalog.Video) Video {
	return Video{
		ID:                  video.ID,
		OwnerID:             video.OwnerID,
		Title:               video.Title,
		Description:         video.Description,
		MediaURL:            video.MediaURL,
		TranscriptionStatus: video.TranscriptionStatus,
		VisionStatus:        video.VisionStatus,
		TranscriptionError:  video.TranscriptionError,
		VisionError:         video.VisionError,
		CreatedAt:           video.CreatedAt,
		UpdatedAt:           video.UpdatedAt,
	}
}

// CreateVideoRequest registers an uploaded video with the pipeline.
type CreateVideoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	MediaURL    string `json:"mediaUrl"`
}

// StartTranscriptionRequest optionally names the languages to transcribe.
type StartTranscriptionRequest struct {
	Languages []string `json:"languages"`
}

// StartResponse acknowledges an accepted stage start.
type StartResponse struct {
	VideoID int64               `json:"videoId"`
	Status  catalog.StageStatus `json:"status"`
}

// ProcessResponse reports which stages a process call dispatched.
type ProcessResponse struct {
	VideoID    int64               `json:"videoId"`
	Dispatched workflow.Dispatched `json:"dispatched"`
}

// VideoListResponse wraps an owner's videos.
type VideoListResponse struct {
	Videos []Video `json:"videos"`
}

// SearchResult is one scored search hit on the wire.
type SearchResult struct {
	Video Video   `json:"video"`
	Score float64 `json:"relevanceScore"`
}

// SearchResponse wraps ordered search results.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// LanguagesResponse lists the transcription provider's supported languages.
type LanguagesResponse struct {
	Languages []string `json:"languages"`
}

// HealthResponse summarizes daemon and store health.
type HealthResponse struct {
	Running bool                  `json:"running"`
	Videos  catalog.HealthSummary `json:"videos"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
