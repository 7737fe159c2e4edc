package watcher

import (
	"context"
	"log/slog"

	"github.com/mvp-joe/project-examer/internal/indexer"
)

// WatchCoordinator reruns the full analysis whenever the file watcher
// delivers a batch of changes. The graph is rebuilt from scratch each time.
type WatchCoordinator struct {
	files    FileWatcher
	analyzer Analyzer
	onResult func(*indexer.Result)
	logger   *slog.Logger
	ctx      context.Context
}

// CoordinatorOption configures a WatchCoordinator.
type CoordinatorOption func(*WatchCoordinator)

// WithResultHandler sets the function receiving every successful run.
func WithResultHandler(fn func(*indexer.Result)) CoordinatorOption {
	return func(c *WatchCoordinator) {
		c.onResult = fn
	}
}

// WithCoordinatorLogger sets the logger for run outcomes.
func WithCoordinatorLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *WatchCoordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewWatchCoordinator creates a new watch coordinator.
func NewWatchCoordinator(files FileWatcher, analyzer Analyzer, opts ...CoordinatorOption) *WatchCoordinator {
	c := &WatchCoordinator{
		files:    files,
		analyzer: analyzer,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins routing change batches to the analyzer.
// Blocks until context is cancelled.
func (c *WatchCoordinator) Start(ctx context.Context) error {
	c.ctx = ctx
	if err := c.files.Start(ctx, c.handleFileChange); err != nil {
		c.cleanup()
		return err
	}

	<-ctx.Done()
	c.cleanup()
	return ctx.Err()
}

func (c *WatchCoordinator) cleanup() {
	if err := c.files.Stop(); err != nil {
		c.logger.Warn("file watcher stop failed", "error", err)
	}
}

// handleFileChange runs one analysis. Events arriving meanwhile are held by
// the paused watcher and delivered as the next batch.
func (c *WatchCoordinator) handleFileChange(files []string) {
	if len(files) == 0 {
		return
	}

	c.files.Pause()
	defer c.files.Resume()

	ctx := c.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	c.logger.Info("changes detected, re-analyzing", "files", len(files))
	res, err := c.analyzer.Analyze(ctx)
	if err != nil {
		c.logger.Error("analysis failed", "error", err)
		return
	}

	if c.onResult != nil {
		c.onResult(res)
	}
}
