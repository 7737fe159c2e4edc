package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-examer/internal/git"
	"github.com/mvp-joe/project-examer/internal/graph"
	"github.com/mvp-joe/project-examer/internal/indexer/extraction"
	"github.com/mvp-joe/project-examer/internal/indexer/parsers"
	"github.com/mvp-joe/project-examer/internal/indexer/patterns"
)

// Test Plan for Snapshot Storage:
// - CreateSchema is idempotent and records the schema version
// - Write stores one run with its analysis and git revision and returns a UUID
// - Nodes and edges read back equal to the written graph
// - Dependencies lists resolved imports with their owning file
// - Runs are listed newest first; each Write appends a new run
// - Unknown run ids read back as nil
// - Empty graphs are stored without error

func buildGraph(t *testing.T) *graph.Graph {
	t.Helper()
	registry, err := patterns.New()
	require.NoError(t, err)
	p := parsers.NewParser(registry)

	sources := []struct{ path, lang, text string }{
		{"src/main.ts", "typescript", "import { helper } from 'util';\nimport React from 'react';\nexport async function run(a, b) {}\n"},
		{"src/util.ts", "typescript", "export function helper(x: number): number {}\nclass Box extends Base {\n  open() {}\n}\n"},
	}
	files := make([]*extraction.ParsedFile, 0, len(sources))
	for _, s := range sources {
		files = append(files, p.Parse(extraction.FileRecord{Path: s.path, Language: s.lang, Size: int64(len(s.text))}, []byte(s.text)))
	}
	return graph.Build(files)
}

func openWriter(t *testing.T, opts ...WriterOption) (*SnapshotWriter, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), DatabaseFileName)
	w, err := OpenSnapshotWriter(dbPath, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w, dbPath
}

func openReader(t *testing.T, dbPath string) *SnapshotReader {
	t.Helper()
	r, err := OpenSnapshotReader(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestCreateSchema_Idempotent(t *testing.T) {
	t.Parallel()

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "schema.db"))
	require.NoError(t, err)
	defer db.Close()

	version, err := GetSchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, "0", version)

	require.NoError(t, CreateSchema(db))
	require.NoError(t, CreateSchema(db))

	version, err = GetSchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)
}

func TestSnapshotWriter_WriteAndRead(t *testing.T) {
	t.Parallel()

	g := buildGraph(t)
	analysis := g.AnalyzeDependencies()

	rev := git.Revision{Branch: "main", Commit: "0123456789abcdef0123456789abcdef01234567", Dirty: true}
	w, dbPath := openWriter(t, WithRootDir("/work/project"), WithRevision(rev))
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return created }

	runID, err := w.Write(context.Background(), g, analysis)
	require.NoError(t, err)
	_, err = uuid.Parse(runID)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r := openReader(t, dbPath)
	ctx := context.Background()

	run, err := r.Run(ctx, runID)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, runID, run.ID)
	assert.Equal(t, "/work/project", run.RootDir)
	assert.Equal(t, rev, run.Revision)
	assert.True(t, created.Equal(run.CreatedAt))
	assert.Equal(t, g.NodeCount(), run.NodeCount)
	assert.Equal(t, g.EdgeCount(), run.EdgeCount)
	assert.Equal(t, analysis, run.Analysis)

	nodes, err := r.Nodes(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, g.Nodes(), nodes)

	edges, err := r.Edges(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, g.Data().Edges, edges)

	deps, err := r.Dependencies(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, []DependencyRow{
		{FromFile: "src/main.ts", ToFile: "src/util.ts", Module: "util", Line: 1},
	}, deps)
}

func TestSnapshotWriter_AppendsRuns(t *testing.T) {
	t.Parallel()

	g := buildGraph(t)
	w, dbPath := openWriter(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		w.now = func() time.Time { return at }
		id, err := w.Write(context.Background(), g, g.AnalyzeDependencies())
		require.NoError(t, err)
		ids = append(ids, id)
	}

	r := openReader(t, dbPath)
	runs, err := r.Runs(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, git.Revision{}, runs[0].Revision)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{runs[0].ID, runs[1].ID, runs[2].ID})

	latest, err := r.LatestRun(context.Background())
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, ids[2], latest.ID)

	limited, err := r.Runs(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSnapshotReader_EmptyAndUnknown(t *testing.T) {
	t.Parallel()

	w, dbPath := openWriter(t)

	r := openReader(t, dbPath)
	latest, err := r.LatestRun(context.Background())
	require.NoError(t, err)
	assert.Nil(t, latest)

	run, err := r.Run(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, run)

	empty := graph.Build(nil)
	runID, err := w.Write(context.Background(), empty, empty.AnalyzeDependencies())
	require.NoError(t, err)

	nodes, err := r.Nodes(context.Background(), runID)
	require.NoError(t, err)
	assert.Empty(t, nodes)

	_, err = w.Write(context.Background(), nil, graph.Analysis{})
	assert.Error(t, err)
}
