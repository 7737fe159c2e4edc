package storage

import (
	"time"

	"github.com/mvp-joe/project-examer/internal/git"
	"github.com/mvp-joe/project-examer/internal/graph"
)

// DatabaseFileName is the snapshot database inside the output directory.
const DatabaseFileName = "examer.db"

// timestampLayout is fixed-width so created_at sorts lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one stored analysis run.
type Run struct {
	ID        string
	RootDir   string
	Revision  git.Revision
	CreatedAt time.Time
	NodeCount int
	EdgeCount int
	Analysis  graph.Analysis
}

// DependencyRow is one resolved file dependency of a run.
type DependencyRow struct {
	FromFile string
	ToFile   string
	Module   string
	Line     int
}
