package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"clipline/internal/api"
	"clipline/internal/catalog"
	"clipline/internal/config"
	"clipline/internal/logging"
	"clipline/internal/workflow"
)

// Daemon ties the store, processor, and API server into a single lifecycle
// and enforces single-instance execution with a file lock.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *catalog.Store
	processor *workflow.Processor
	server    *api.Server

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies. The API server may
// be nil when no bind address is configured.
func New(cfg *config.Config, store *catalog.Store, processor *workflow.Processor, server *api.Server, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || processor == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, processor, and logger")
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "cliplined.lock")
	return &Daemon{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		processor: processor,
		server:    server,
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock, recovers stages left in processing by an
// unclean shutdown, and brings up the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another clipline daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	reset, err := d.store.ResetStuckProcessing(d.ctx)
	if err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx, d.cancel = nil, nil
		return fmt.Errorf("recover stuck stages: %w", err)
	}
	if reset > 0 {
		d.logger.Warn("reset stages stuck in processing", logging.Int64("videos", reset))
	}

	if d.server != nil {
		if err := d.server.Start(d.ctx); err != nil {
			_ = d.lock.Unlock()
			d.cancel()
			d.ctx, d.cancel = nil, nil
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("clipline daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop drains in-flight stage tasks and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.server != nil {
		d.server.Stop()
	}
	d.processor.Close()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("clipline daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Running reports whether the daemon lifecycle is active.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Health returns aggregate pipeline diagnostics.
func (d *Daemon) Health(ctx context.Context) (catalog.HealthSummary, error) {
	return d.store.Health(ctx)
}
