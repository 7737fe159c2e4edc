package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-examer/internal/config"
	"github.com/mvp-joe/project-examer/internal/git"
	"github.com/mvp-joe/project-examer/internal/graph"
	"github.com/mvp-joe/project-examer/internal/storage"
)

// Test Plan for CLI commands:
// - analyze writes code-graph.json, insight-context.json and one SQLite run
// - analyze --no-sqlite skips the database; a second analyze appends a run
// - analyze rejects missing paths and regular files
// - deps lists dependencies and, with reverse, dependents
// - deps reports unknown files
// - targets resolve against the root and display relative to it
// - runs handles a project with no history and lists stored runs
// - config init writes once and needs force to overwrite
// - formatCounts renders per-language file counts
// - formatRevision abbreviates commits and marks dirty trees
// - formatNumber inserts thousands separators

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"app/main.py":   "import util\nimport models\n\ndef main():\n    pass\n",
		"app/util.py":   "def helper(x):\n    return x\n",
		"app/models.py": "class User:\n    def save(self):\n        pass\n",
		"README.md":     "# Demo\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func TestExecuteAnalyze(t *testing.T) {
	t.Parallel()

	root := writeProject(t)
	var out bytes.Buffer
	err := executeAnalyze(context.Background(), analyzeOptions{root: root, quiet: true}, &out)
	require.NoError(t, err)

	outDir := filepath.Join(root, config.DefaultOutputDir)
	assert.Contains(t, out.String(), "Languages:  markdown (1), python (3)")
	assert.Contains(t, out.String(), "Run: ")

	store, err := graph.NewStorage(outDir)
	require.NoError(t, err)
	data, err := store.LoadGraph()
	require.NoError(t, err)
	require.NotNil(t, data)
	require.NotNil(t, data.Analysis)
	assert.Equal(t, len(data.Nodes), data.Analysis.TotalNodes)
	assert.Equal(t, 2, data.Analysis.EdgeTypes[graph.EdgeDependsOn])

	ictx, err := store.LoadContext()
	require.NoError(t, err)
	require.NotNil(t, ictx)
	assert.Equal(t, 4, ictx.Project.TotalFiles)
	assert.Equal(t, map[string]int{"markdown": 1, "python": 3}, ictx.Project.LanguageCounts)
	assert.Equal(t, map[string]int{"md": 1, "py": 3}, ictx.Project.ExtensionCounts)
	assert.Len(t, ictx.Documentation, 1)

	r, err := storage.OpenSnapshotReader(filepath.Join(outDir, storage.DatabaseFileName))
	require.NoError(t, err)
	defer r.Close()
	runs, err := r.Runs(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, root, runs[0].RootDir)
	assert.Equal(t, len(data.Nodes), runs[0].NodeCount)
}

func TestExecuteAnalyze_SQLiteToggle(t *testing.T) {
	t.Parallel()

	root := writeProject(t)
	outDir := filepath.Join(t.TempDir(), "out")
	dbPath := filepath.Join(outDir, storage.DatabaseFileName)

	var out bytes.Buffer
	require.NoError(t, executeAnalyze(context.Background(), analyzeOptions{root: root, output: outDir, quiet: true, noSQLite: true}, &out))
	assert.FileExists(t, filepath.Join(outDir, graph.GraphFileName))
	assert.NoFileExists(t, dbPath)
	assert.NotContains(t, out.String(), "Run: ")

	for i := 0; i < 2; i++ {
		require.NoError(t, executeAnalyze(context.Background(), analyzeOptions{root: root, output: outDir, quiet: true, workers: 2}, &out))
	}
	r, err := storage.OpenSnapshotReader(dbPath)
	require.NoError(t, err)
	defer r.Close()
	runs, err := r.Runs(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestExecuteAnalyze_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	tests := []struct {
		name string
		root string
	}{
		{"missing", filepath.Join(dir, "missing")},
		{"regular file", file},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			assert.Error(t, executeAnalyze(context.Background(), analyzeOptions{root: tt.root, quiet: true}, &out))
		})
	}
}

func TestExecuteDeps(t *testing.T) {
	t.Parallel()

	root := writeProject(t)

	var out bytes.Buffer
	require.NoError(t, executeDeps(context.Background(), depsOptions{root: root, target: "app/main.py", depth: 1}, &out))
	assert.Contains(t, out.String(), "Dependencies of app/main.py:")
	assert.Contains(t, out.String(), "app/util.py")
	assert.Contains(t, out.String(), "app/models.py")

	out.Reset()
	require.NoError(t, executeDeps(context.Background(), depsOptions{root: root, target: "app/util.py", reverse: true, jsonOut: true}, &out))
	var resp graph.QueryResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "dependents", resp.Operation)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, filepath.Join(root, "app", "main.py"), resp.Results[0].Node.FilePath)

	out.Reset()
	err := executeDeps(context.Background(), depsOptions{root: root, target: "app/nope.py"}, &out)
	assert.ErrorIs(t, err, graph.ErrUnknownFile)
}

func TestExecuteRuns(t *testing.T) {
	t.Parallel()

	root := writeProject(t)

	var out bytes.Buffer
	require.NoError(t, executeRuns(context.Background(), runsOptions{root: root, limit: 10}, &out))
	assert.Contains(t, out.String(), "No runs recorded")

	require.NoError(t, executeAnalyze(context.Background(), analyzeOptions{root: root, quiet: true}, &bytes.Buffer{}))

	out.Reset()
	require.NoError(t, executeRuns(context.Background(), runsOptions{root: root, limit: 10, deps: true}, &out))
	assert.Contains(t, out.String(), "RUN")
	assert.Contains(t, out.String(), "app/main.py -> app/util.py (util, line 1)")
	assert.Contains(t, out.String(), "app/main.py -> app/models.py (models, line 2)")
}

func TestExecuteConfigInit(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	var out bytes.Buffer

	require.NoError(t, executeConfigInit(root, false, &out))
	assert.FileExists(t, config.ConfigPath(root))

	err := executeConfigInit(root, false, &out)
	assert.ErrorIs(t, err, config.ErrConfigExists)

	require.NoError(t, executeConfigInit(root, true, &out))

	cfg, err := config.LoadConfigFromDir(root)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Paths, cfg.Paths)
}

func TestTargetPath(t *testing.T) {
	t.Parallel()

	root := filepath.FromSlash("/work/project")
	want := filepath.Join(root, "src", "main.go")
	tests := []struct {
		name   string
		target string
	}{
		{"relative", "src/main.go"},
		{"dot prefix", "./src/main.go"},
		{"absolute", filepath.Join(root, "src", "..", "src", "main.go")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, want, targetPath(root, filepath.FromSlash(tt.target)))
		})
	}

	assert.Equal(t, "src/main.go", displayPath(root, want))
	outside := filepath.FromSlash("/elsewhere/x.go")
	assert.Equal(t, outside, displayPath(root, outside))
}

func TestFormatCounts(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "none", formatCounts(nil, nil))
	assert.Equal(t, "go (1,200), python (3)",
		formatCounts([]string{"go", "python"}, map[string]int{"python": 3, "go": 1200}))
}

func TestFormatRevision(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "-", formatRevision(git.Revision{}))
	assert.Equal(t, "main@0123456", formatRevision(git.Revision{Branch: "main", Commit: "0123456789abcdef"}))
	assert.Equal(t, "dev@abc*", formatRevision(git.Revision{Branch: "dev", Commit: "abc", Dirty: true}))
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{123456, "123,456"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatNumber(tt.n))
	}
}
