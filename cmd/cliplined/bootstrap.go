package main

import (
	"log/slog"

	"clipline/internal/api"
	"clipline/internal/catalog"
	"clipline/internal/config"
	"clipline/internal/daemon"
	"clipline/internal/notifications"
	"clipline/internal/query"
	"clipline/internal/services/provider"
	"clipline/internal/services/speech"
	"clipline/internal/services/vision"
	"clipline/internal/tagging"
	"clipline/internal/transcription"
	"clipline/internal/workflow"
)

func bootstrap(cfg *config.Config, logger *slog.Logger) (*daemon.Daemon, error) {
	store, err := catalog.Open(cfg)
	if err != nil {
		return nil, err
	}

	speechClient := speech.NewClient(provider.Config{
		BaseURL:        cfg.Speech.BaseURL,
		APIKey:         cfg.Speech.APIKey,
		TimeoutSeconds: cfg.Speech.TimeoutSeconds,
	})
	visionClient := vision.NewClient(provider.Config{
		BaseURL:        cfg.Vision.BaseURL,
		APIKey:         cfg.Vision.APIKey,
		TimeoutSeconds: cfg.Vision.TimeoutSeconds,
	})

	transcriptionCoord := transcription.NewCoordinator(store, speechClient, logger)
	taggingCoord := tagging.NewCoordinator(store, visionClient, logger)
	notifier := notifications.NewService(cfg)
	processor := workflow.NewProcessor(store, transcriptionCoord, taggingCoord, notifier, logger)

	querySvc := query.NewService(store, logger)
	server := api.NewServer(cfg, store, processor, querySvc, transcriptionCoord, logger)

	return daemon.New(cfg, store, processor, server, logger)
}
