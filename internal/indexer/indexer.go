package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/mvp-joe/project-examer/internal/graph"
	"github.com/mvp-joe/project-examer/internal/insight"
)

// Indexer runs the full analysis pipeline over a project directory.
type Indexer interface {
	// Analyze discovers, parses and links every matching file. Each call is a
	// complete run; nothing is carried over from previous calls.
	Analyze(ctx context.Context) (*Result, error)
}

type indexer struct {
	config   *Config
	progress ProgressReporter
	logger   *slog.Logger
}

// Option configures an Indexer.
type Option func(*indexer)

// WithProgress sets the reporter for phase progress.
func WithProgress(p ProgressReporter) Option {
	return func(ix *indexer) {
		if p != nil {
			ix.progress = p
		}
	}
}

// WithLogger sets the logger passed down to every phase.
func WithLogger(logger *slog.Logger) Option {
	return func(ix *indexer) {
		if logger != nil {
			ix.logger = logger
		}
	}
}

// New creates an indexer for the given config.
func New(config *Config, opts ...Option) Indexer {
	ix := &indexer{
		config:   config,
		progress: &NoOpProgressReporter{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

func (ix *indexer) Analyze(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{}

	// Phase 1: discovery
	ix.progress.OnDiscoveryStart()
	phase := time.Now()
	discovery, err := NewFileDiscovery(ix.config.RootDir, ix.config.IncludePatterns, ix.config.IgnorePatterns,
		WithMaxFileSize(ix.config.MaxFileSize),
		WithGitignore(ix.config.RespectGitignore),
		WithDiscoveryLogger(ix.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create file discovery: %w", err)
	}
	res.Files, err = discovery.Discover()
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}
	res.Stats.DiscoveryTime = time.Since(phase)
	res.Stats.FilesDiscovered = len(res.Files)
	ix.progress.OnDiscoveryComplete(len(res.Files))
	ix.logger.Debug("discovery complete", "root", ix.config.RootDir, "files", len(res.Files))

	// Phase 2: parallel parse
	coord := NewCoordinator(
		WithWorkers(ix.config.Workers),
		WithParseProgress(ix.progress),
		WithParseLogger(ix.logger),
	)
	ix.progress.OnParsingStart(len(res.Files))
	phase = time.Now()
	parsed, err := coord.ParseAll(ctx, res.Files)
	if err != nil {
		return nil, fmt.Errorf("failed to parse files: %w", err)
	}
	res.Stats.ParseTime = time.Since(phase)

	// Worker completion order is not stable; sort so the graph is.
	res.Parsed = parsed.Files
	sort.Slice(res.Parsed, func(i, j int) bool {
		return res.Parsed[i].File.Path < res.Parsed[j].File.Path
	})
	res.Failures = parsed.Failures
	res.Stats.FilesParsed = len(res.Parsed)
	res.Stats.FilesFailed = len(res.Failures)
	ix.progress.OnParsingComplete(len(res.Parsed), len(res.Failures), res.Stats.ParseTime)

	// Phase 3: graph
	phase = time.Now()
	res.Graph = graph.NewBuilder(
		graph.WithProgress(ix.progress),
		graph.WithLogger(ix.logger),
	).Build(res.Parsed)
	res.Analysis = res.Graph.AnalyzeDependencies()
	res.Stats.GraphTime = time.Since(phase)
	res.Stats.Nodes = res.Graph.NodeCount()
	res.Stats.Edges = res.Graph.EdgeCount()

	// Phase 4: insight context
	res.Context = insight.NewBuilder(insight.WithLogger(ix.logger)).
		Build(ctx, ix.config.RootDir, res.Files, res.Parsed)

	res.Stats.TotalTime = time.Since(start)
	ix.progress.OnComplete(&res.Stats)

	ix.logger.Info("analysis complete",
		"files", res.Stats.FilesDiscovered,
		"parsed", res.Stats.FilesParsed,
		"failed", res.Stats.FilesFailed,
		"nodes", res.Stats.Nodes,
		"edges", res.Stats.Edges,
		"duration", res.Stats.TotalTime)

	return res, nil
}
