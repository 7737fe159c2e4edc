package watcher

import (
	"context"

	"github.com/mvp-joe/project-examer/internal/indexer"
)

// FileWatcher monitors source files for changes with debouncing and pause/resume support.
type FileWatcher interface {
	// Start begins watching the project tree, calling callback with debounced file changes.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error

	// Pause stops firing callbacks but continues accumulating events.
	Pause()

	// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
	Resume()
}

// Analyzer runs a complete analysis of the project. indexer.Indexer satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context) (*indexer.Result, error)
}
