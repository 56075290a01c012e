package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"clipline/internal/catalog"
	"clipline/internal/logging"
	"clipline/internal/services"
)

// ownerHeader carries the authenticated owner id. Authentication itself is
// the surrounding application's concern; handlers only thread the id through.
const ownerHeader = "X-Owner-ID"

func (s *Server) handleCreateVideo(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.requireOwner(w, r)
	if !ok {
		return
	}
	var req CreateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	video, err := s.store.NewVideo(r.Context(), owner, req.Title, req.Description, req.MediaURL)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, videoPayload(video))
}

func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.requireOwner(w, r)
	if !ok {
		return
	}
	videos, err := s.store.VideosByOwner(r.Context(), owner)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	payload := VideoListResponse{Videos: make([]Video, len(videos))}
	for i, video := range videos {
		payload.Videos[i] = videoPayload(video)
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleGetVideo(w http.ResponseWriter, r *http.Request) {
	video, ok := s.ownedVideo(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, videoPayload(video))
}

func (s *Server) handleDeleteVideo(w http.ResponseWriter, r *http.Request) {
	video, ok := s.ownedVideo(w, r)
	if !ok {
		return
	}
	removed, err := s.store.RemoveVideo(r.Context(), video.ID)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if !removed {
		s.writeError(w, http.StatusNotFound, "video not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStartTranscription(w http.ResponseWriter, r *http.Request) {
	video, ok := s.ownedVideo(w, r)
	if !ok {
		return
	}
	var req StartTranscriptionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if err := s.processor.StartTranscription(r.Context(), video.ID, req.Languages); err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, StartResponse{VideoID: video.ID, Status: catalog.StatusProcessing})
}

func (s *Server) handleStartVision(w http.ResponseWriter, r *http.Request) {
	video, ok := s.ownedVideo(w, r)
	if !ok {
		return
	}
	if err := s.processor.StartVision(r.Context(), video.ID); err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, StartResponse{VideoID: video.ID, Status: catalog.StatusProcessing})
}

func (s *Server) handleProcessBoth(w http.ResponseWriter, r *http.Request) {
	video, ok := s.ownedVideo(w, r)
	if !ok {
		return
	}
	dispatched, err := s.processor.ProcessBoth(r.Context(), video.ID)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, ProcessResponse{VideoID: video.ID, Dispatched: dispatched})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	video, ok := s.ownedVideo(w, r)
	if !ok {
		return
	}
	status, err := s.query.GetStatus(r.Context(), video.ID)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.requireOwner(w, r)
	if !ok {
		return
	}
	queryText := r.URL.Query().Get("q")
	typeFilter := strings.TrimSpace(r.URL.Query().Get("type"))
	results, err := s.query.Search(r.Context(), owner, queryText, typeFilter)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	payload := SearchResponse{Results: make([]SearchResult, len(results))}
	for i, result := range results {
		payload.Results[i] = SearchResult{Video: videoPayload(result.Video), Score: result.Score}
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	languages, err := s.transcription.SupportedLanguages(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, LanguagesResponse{Languages: languages})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	summary, err := s.store.Health(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, HealthResponse{Running: true, Videos: summary})
}

// ownedVideo resolves the {id} path segment to a video owned by the caller.
// Other owners' videos read as absent, never as forbidden.
func (s *Server) ownedVideo(w http.ResponseWriter, r *http.Request) (*catalog.Video, bool) {
	owner, ok := s.requireOwner(w, r)
	if !ok {
		return nil, false
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid video id")
		return nil, false
	}
	video, err := s.store.GetVideo(r.Context(), id)
	if err != nil {
		s.writeFailure(w, err)
		return nil, false
	}
	if video == nil || video.OwnerID != owner {
		s.writeError(w, http.StatusNotFound, "video not found")
		return nil, false
	}
	return video, true
}

func (s *Server) requireOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner := strings.TrimSpace(r.Header.Get(ownerHeader))
	if owner == "" {
		s.writeError(w, http.StatusBadRequest, "missing "+ownerHeader+" header")
		return "", false
	}
	return owner, true
}

func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", logging.Error(err))
	}
	s.writeError(w, status, err.Error())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrAlreadyInProgress),
		errors.Is(err, services.ErrAlreadyCompleted),
		errors.Is(err, services.ErrNothingToProcess):
		return http.StatusConflict
	case errors.Is(err, services.ErrNoValidLanguages),
		errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("encode response failed", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}
