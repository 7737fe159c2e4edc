package indexer

import (
	"time"

	"github.com/mvp-joe/project-examer/internal/graph"
	"github.com/mvp-joe/project-examer/internal/indexer/extraction"
	"github.com/mvp-joe/project-examer/internal/insight"
)

// Config contains configuration for one analysis run.
type Config struct {
	// Root directory of the project to analyze
	RootDir string

	// Discovery configuration
	IncludePatterns  []string
	IgnorePatterns   []string
	MaxFileSize      int64 // bytes, 0 disables the limit
	RespectGitignore bool

	// Parse workers, 0 means one per CPU
	Workers int
}

// Stats tracks counts and phase timings of an analysis run.
type Stats struct {
	FilesDiscovered int           `json:"files_discovered"`
	FilesParsed     int           `json:"files_parsed"`
	FilesFailed     int           `json:"files_failed"`
	Nodes           int           `json:"nodes"`
	Edges           int           `json:"edges"`
	DiscoveryTime   time.Duration `json:"discovery_time"`
	ParseTime       time.Duration `json:"parse_time"`
	GraphTime       time.Duration `json:"graph_time"`
	TotalTime       time.Duration `json:"total_time"`
}

// Result is everything one analysis run produced. Parsed is sorted by path.
type Result struct {
	Files    []extraction.FileRecord
	Parsed   []*extraction.ParsedFile
	Failures []Failure
	Graph    *graph.Graph
	Analysis graph.Analysis
	Context  *insight.Context
	Stats    Stats
}
