package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"clipline/internal/catalog"
	"clipline/internal/config"
	"clipline/internal/logging"
	"clipline/internal/query"
	"clipline/internal/transcription"
	"clipline/internal/workflow"
)

// Server is the daemon's HTTP surface. Writes are accepted here and executed
// by the workflow processor; reads go straight to the query service.
type Server struct {
	bind          string
	logger        *slog.Logger
	store         *catalog.Store
	processor     *workflow.Processor
	query         *query.Service
	transcription *transcription.Coordinator

	listener net.Listener
	server   *http.Server
}

// NewServer builds the HTTP server. Returns nil when no bind address is
// configured, which disables the API entirely.
func NewServer(
	cfg *config.Config,
	store *catalog.Store,
	processor *workflow.Processor,
	querySvc *query.Service,
	transcriptionCoord *transcription.Coordinator,
	logger *slog.Logger,
) *Server {
	if cfg == nil {
		return nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	srv := &Server{
		bind:          bind,
		logger:        logging.NewComponentLogger(logger, "api"),
		store:         store,
		processor:     processor,
		query:         querySvc,
		transcription: transcriptionCoord,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/videos", srv.handleCreateVideo)
	mux.HandleFunc("GET /api/videos", srv.handleListVideos)
	mux.HandleFunc("GET /api/videos/{id}", srv.handleGetVideo)
	mux.HandleFunc("DELETE /api/videos/{id}", srv.handleDeleteVideo)
	mux.HandleFunc("POST /api/videos/{id}/transcription", srv.handleStartTranscription)
	mux.HandleFunc("POST /api/videos/{id}/vision", srv.handleStartVision)
	mux.HandleFunc("POST /api/videos/{id}/process", srv.handleProcessBoth)
	mux.HandleFunc("GET /api/videos/{id}/status", srv.handleStatus)
	mux.HandleFunc("GET /api/search", srv.handleSearch)
	mux.HandleFunc("GET /api/languages", srv.handleLanguages)
	mux.HandleFunc("GET /api/health", srv.handleHealth)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// Start begins serving on the configured bind address. Shutdown is driven by
// ctx cancellation.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr reports the bound address, useful when the bind port is 0.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down outside of context cancellation.
func (s *Server) Stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}
