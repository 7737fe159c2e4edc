package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/project-examer/internal/indexer/extraction"
	"github.com/mvp-joe/project-examer/internal/indexer/parsers"
	"github.com/mvp-joe/project-examer/internal/indexer/patterns"
)

// Failure records a file that could not be read. The file is absent from
// ParseResult.Files.
type Failure struct {
	Path string
	Err  error
}

// ParseResult is the merged output of all parse workers. Files are in shard
// completion order, which varies between runs; compare as sets.
type ParseResult struct {
	Files    []*extraction.ParsedFile
	Failures []Failure
}

// Coordinator parses a file list in parallel. The list is split into
// contiguous shards and each shard is parsed sequentially by its own worker
// holding a private registry and parser.
type Coordinator struct {
	workers     int
	newRegistry func() (*patterns.Registry, error)
	parserOpts  []parsers.Option
	progress    ProgressReporter
	logger      *slog.Logger
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithWorkers sets the worker count. Values below 1 mean one per CPU.
func WithWorkers(n int) CoordinatorOption {
	return func(c *Coordinator) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithRegistryFactory replaces the per-worker registry constructor.
func WithRegistryFactory(fn func() (*patterns.Registry, error)) CoordinatorOption {
	return func(c *Coordinator) {
		c.newRegistry = fn
	}
}

// WithParserOptions passes options to every worker's parser.
func WithParserOptions(opts ...parsers.Option) CoordinatorOption {
	return func(c *Coordinator) {
		c.parserOpts = append(c.parserOpts, opts...)
	}
}

// WithParseProgress sets the reporter notified after every file.
func WithParseProgress(p ProgressReporter) CoordinatorOption {
	return func(c *Coordinator) {
		c.progress = p
	}
}

// WithParseLogger sets the logger used for per-file failures.
func WithParseLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// NewCoordinator creates a coordinator with one worker per CPU by default.
func NewCoordinator(opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		workers:     runtime.NumCPU(),
		newRegistry: patterns.New,
		progress:    &NoOpProgressReporter{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Workers returns the configured worker count.
func (c *Coordinator) Workers() int {
	return c.workers
}

// ShardSize is ceil(n/workers), never less than 1.
func ShardSize(n, workers int) int {
	if workers < 1 {
		workers = 1
	}
	size := (n + workers - 1) / workers
	if size < 1 {
		size = 1
	}
	return size
}

// Shards splits files into contiguous runs of ShardSize(len(files), workers).
func Shards(files []extraction.FileRecord, workers int) [][]extraction.FileRecord {
	size := ShardSize(len(files), workers)
	var shards [][]extraction.FileRecord
	for start := 0; start < len(files); start += size {
		end := min(start+size, len(files))
		shards = append(shards, files[start:end])
	}
	return shards
}

type shardResult struct {
	files    []*extraction.ParsedFile
	failures []Failure
}

// ParseAll parses every file and waits for all workers. Unreadable files
// become Failures and never stop sibling work. The only errors are a
// registry construction failure and context cancellation.
func (c *Coordinator) ParseAll(ctx context.Context, files []extraction.FileRecord) (*ParseResult, error) {
	result := &ParseResult{
		Files:    []*extraction.ParsedFile{},
		Failures: []Failure{},
	}
	if len(files) == 0 {
		return result, nil
	}

	shards := Shards(files, c.workers)
	results := make(chan shardResult, len(shards))

	g, gctx := errgroup.WithContext(ctx)
	for _, shard := range shards {
		g.Go(func() error {
			registry, err := c.newRegistry()
			if err != nil {
				return fmt.Errorf("failed to build pattern registry: %w", err)
			}
			parser := parsers.NewParser(registry, c.parserOpts...)

			var out shardResult
			for _, rec := range shard {
				if err := gctx.Err(); err != nil {
					return err
				}
				pf, err := parser.ParseFile(gctx, rec)
				if err != nil {
					c.logger.Warn("failed to parse file", "path", rec.Path, "error", err)
					out.failures = append(out.failures, Failure{Path: rec.Path, Err: err})
				} else {
					out.files = append(out.files, pf)
				}
				c.progress.OnFileParsed(rec.Path)
			}

			results <- out
			return nil
		})
	}

	err := g.Wait()
	close(results)
	if err != nil {
		return nil, err
	}

	for r := range results {
		result.Files = append(result.Files, r.files...)
		result.Failures = append(result.Failures, r.failures...)
	}

	return result, nil
}
