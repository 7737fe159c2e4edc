package indexer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-examer/internal/indexer/extraction"
	"github.com/mvp-joe/project-examer/internal/indexer/parsers"
	"github.com/mvp-joe/project-examer/internal/indexer/patterns"
)

// Test Plan for Coordinator:
// - ShardSize is ceil(n/workers) with a floor of 1
// - Shards are contiguous and cover the list exactly once
// - ParseAll returns the same set of files for any worker count
// - Unreadable files become Failures without stopping other files
// - A registry construction error aborts the run
// - A cancelled context aborts the run
// - Every file is reported to the progress reporter once

func TestShardSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n, workers, want int
	}{
		{10, 4, 3},
		{8, 4, 2},
		{3, 8, 1},
		{0, 4, 1},
		{8, 0, 8},
		{1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.n, tt.workers), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ShardSize(tt.n, tt.workers))
		})
	}
}

func TestShards(t *testing.T) {
	t.Parallel()

	files := make([]extraction.FileRecord, 10)
	for i := range files {
		files[i] = extraction.FileRecord{Path: fmt.Sprintf("f%02d.py", i)}
	}

	shards := Shards(files, 4)
	require.Len(t, shards, 4)

	var sizes []int
	var flat []extraction.FileRecord
	for _, s := range shards {
		sizes = append(sizes, len(s))
		flat = append(flat, s...)
	}
	assert.Equal(t, []int{3, 3, 3, 1}, sizes)
	assert.Equal(t, files, flat)

	assert.Empty(t, Shards(nil, 4))
}

type recordingReporter struct {
	NoOpProgressReporter
	mu     sync.Mutex
	parsed []string
}

func (r *recordingReporter) OnFileParsed(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsed = append(r.parsed, path)
}

func pythonFiles(t *testing.T, n int) []extraction.FileRecord {
	t.Helper()
	root := t.TempDir()
	contents := make(map[string]string, n)
	files := make([]extraction.FileRecord, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("mod%02d.py", i)
		contents[name] = fmt.Sprintf("import mod%02d\ndef fn%d(a, b):\n    pass\n", (i+1)%n, i)
		files = append(files, extraction.FileRecord{
			Path:      filepath.Join(root, name),
			Extension: "py",
			Language:  "python",
		})
	}
	writeTree(t, root, contents)
	return files
}

func parsedPaths(files []*extraction.ParsedFile) []string {
	out := make([]string, 0, len(files))
	for _, pf := range files {
		out = append(out, pf.File.Path)
	}
	return out
}

func TestCoordinator_ParseAllIndependentOfWorkers(t *testing.T) {
	t.Parallel()

	files := pythonFiles(t, 9)
	want := make([]string, 0, len(files))
	for _, f := range files {
		want = append(want, f.Path)
	}

	for _, workers := range []int{1, 2, 4, 16} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			t.Parallel()

			reporter := &recordingReporter{}
			c := NewCoordinator(WithWorkers(workers), WithParseProgress(reporter))
			assert.Equal(t, workers, c.Workers())

			res, err := c.ParseAll(context.Background(), files)
			require.NoError(t, err)

			assert.ElementsMatch(t, want, parsedPaths(res.Files))
			assert.Empty(t, res.Failures)
			assert.ElementsMatch(t, want, reporter.parsed)

			for _, pf := range res.Files {
				require.Len(t, pf.Functions, 1)
				assert.Equal(t, []string{"a", "b"}, pf.Functions[0].Parameters)
				require.Len(t, pf.Imports, 1)
			}
		})
	}
}

func TestCoordinator_Failures(t *testing.T) {
	t.Parallel()

	files := pythonFiles(t, 3)
	missing := extraction.FileRecord{Path: filepath.Join(t.TempDir(), "gone.py"), Extension: "py", Language: "python"}
	files = append(files[:1], append([]extraction.FileRecord{missing}, files[1:]...)...)

	res, err := NewCoordinator(WithWorkers(2)).ParseAll(context.Background(), files)
	require.NoError(t, err)

	assert.Len(t, res.Files, 3)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, missing.Path, res.Failures[0].Path)

	var readErr *parsers.ReadError
	assert.ErrorAs(t, res.Failures[0].Err, &readErr)
}

func TestCoordinator_RegistryError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	c := NewCoordinator(WithRegistryFactory(func() (*patterns.Registry, error) {
		return nil, boom
	}))

	res, err := c.ParseAll(context.Background(), pythonFiles(t, 2))
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, res)
}

func TestCoordinator_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewCoordinator(WithWorkers(2)).ParseAll(ctx, pythonFiles(t, 4))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

func TestCoordinator_Empty(t *testing.T) {
	t.Parallel()

	res, err := NewCoordinator().ParseAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Files)
	assert.Empty(t, res.Failures)
}
