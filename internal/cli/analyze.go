package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-examer/internal/config"
	"github.com/mvp-joe/project-examer/internal/git"
	"github.com/mvp-joe/project-examer/internal/graph"
	"github.com/mvp-joe/project-examer/internal/indexer"
	"github.com/mvp-joe/project-examer/internal/storage"
	"github.com/mvp-joe/project-examer/internal/watcher"
)

// analyzeOptions holds the flags of the analyze command.
type analyzeOptions struct {
	root     string
	output   string
	workers  int
	quiet    bool
	watch    bool
	noSQLite bool
}

var analyzeOpts analyzeOptions

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Analyze a project and write its dependency graph",
	Long: `Analyze discovers source files under path (default: current directory),
extracts their structure, builds the dependency graph and writes the results
to the output directory.

With --watch, the project is re-analyzed whenever a source file changes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := analyzeOpts
		opts.root = "."
		if len(args) == 1 {
			opts.root = args[0]
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return executeAnalyze(ctx, opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeOpts.output, "output", "o", "", "output directory (default: .examer under the project)")
	analyzeCmd.Flags().IntVarP(&analyzeOpts.workers, "workers", "w", 0, "parse workers (default: from config, 0 = one per CPU)")
	analyzeCmd.Flags().BoolVarP(&analyzeOpts.quiet, "quiet", "q", false, "suppress progress output")
	analyzeCmd.Flags().BoolVar(&analyzeOpts.watch, "watch", false, "re-analyze when files change")
	analyzeCmd.Flags().BoolVar(&analyzeOpts.noSQLite, "no-sqlite", false, "skip writing the SQLite run history")
}

// analysisSession is a loaded configuration bound to one project root.
type analysisSession struct {
	root   string
	outDir string
	cfg    *config.Config
	gitOps git.Operations
	logger *slog.Logger
}

func newAnalysisSession(opts analyzeOptions) (*analysisSession, error) {
	root, err := filepath.Abs(opts.root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to access %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	cfg, err := config.LoadConfigFromDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.workers > 0 {
		cfg.Parsing.Workers = opts.workers
	}
	if opts.noSQLite {
		cfg.Output.SQLite = false
	}

	outDir := cfg.OutputDir(root)
	if opts.output != "" {
		if outDir, err = filepath.Abs(opts.output); err != nil {
			return nil, fmt.Errorf("failed to resolve output directory: %w", err)
		}
	}

	return &analysisSession{
		root:   root,
		outDir: outDir,
		cfg:    cfg,
		gitOps: git.NewOperations(),
		logger: slog.Default(),
	}, nil
}

func (s *analysisSession) newIndexer(progress indexer.ProgressReporter) indexer.Indexer {
	return indexer.New(s.cfg.ToIndexerConfig(s.root),
		indexer.WithProgress(progress),
		indexer.WithLogger(s.logger),
	)
}

// persist writes every enabled output for res and returns the SQLite run id,
// empty when SQLite output is disabled.
func (s *analysisSession) persist(ctx context.Context, res *indexer.Result) (string, error) {
	if err := os.MkdirAll(s.outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	if s.cfg.Output.JSON {
		store, err := graph.NewStorage(s.outDir)
		if err != nil {
			return "", err
		}
		if err := store.SaveGraph(res.Graph, res.Analysis); err != nil {
			return "", err
		}
		if err := store.SaveContext(res.Context); err != nil {
			return "", err
		}
	}

	if !s.cfg.Output.SQLite {
		return "", nil
	}

	w, err := storage.OpenSnapshotWriter(
		filepath.Join(s.outDir, storage.DatabaseFileName),
		storage.WithRootDir(s.root),
		storage.WithRevision(git.Describe(s.gitOps, s.root)),
		storage.WithWriterLogger(s.logger),
	)
	if err != nil {
		return "", err
	}
	defer w.Close()

	return w.Write(ctx, res.Graph, res.Analysis)
}

func executeAnalyze(ctx context.Context, opts analyzeOptions, out io.Writer) error {
	session, err := newAnalysisSession(opts)
	if err != nil {
		return err
	}

	var progress indexer.ProgressReporter = &indexer.NoOpProgressReporter{}
	if !opts.quiet {
		progress = NewCLIProgressReporter(out, false)
	}
	idx := session.newIndexer(progress)

	res, err := idx.Analyze(ctx)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	runID, err := session.persist(ctx, res)
	if err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}
	printSummary(out, session, res, runID)

	if !opts.watch {
		return nil
	}

	fw, err := watcher.NewFileWatcher(session.root, watcher.WithLogger(session.logger))
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	coord := watcher.NewWatchCoordinator(fw, idx,
		watcher.WithResultHandler(func(res *indexer.Result) {
			runID, err := session.persist(ctx, res)
			if err != nil {
				session.logger.Error("failed to save results", "error", err)
				return
			}
			printSummary(out, session, res, runID)
		}),
		watcher.WithCoordinatorLogger(session.logger),
	)

	fmt.Fprintf(out, "\nWatching %s for changes (Ctrl+C to stop)...\n", session.root)
	if err := coord.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Fprintln(out, "Stopped watching")
	return nil
}

func printSummary(out io.Writer, s *analysisSession, res *indexer.Result, runID string) {
	a := res.Analysis
	fmt.Fprintf(out, "\nProject: %s\n", res.Context.Project.Name)
	fmt.Fprintf(out, "  Files:      %s parsed, %s failed\n",
		formatNumber(res.Stats.FilesParsed), formatNumber(res.Stats.FilesFailed))
	fmt.Fprintf(out, "  Languages:  %s\n", formatCounts(res.Context.Project.Languages, res.Context.Project.LanguageCounts))
	fmt.Fprintf(out, "  Nodes:      %s\n", formatNumber(a.TotalNodes))
	for _, t := range sortedKeys(a.NodeTypes) {
		fmt.Fprintf(out, "    %-10s %s\n", t, formatNumber(a.NodeTypes[graph.NodeType(t)]))
	}
	fmt.Fprintf(out, "  Edges:      %s\n", formatNumber(a.TotalEdges))
	for _, t := range sortedKeys(a.EdgeTypes) {
		fmt.Fprintf(out, "    %-10s %s\n", t, formatNumber(a.EdgeTypes[graph.EdgeType(t)]))
	}
	fmt.Fprintf(out, "  Avg degree: %.2f (max %d, median %.1f)\n", a.AvgDegree, a.MaxDegree, a.MedianDegree)
	fmt.Fprintf(out, "  Unresolved imports: %s\n", formatNumber(a.DanglingImports))
	fmt.Fprintf(out, "Output: %s\n", s.outDir)
	if runID != "" {
		fmt.Fprintf(out, "Run: %s\n", runID)
	}
}

func sortedKeys[K ~string](m map[K]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	return keys
}

// formatCounts renders "a (2), b (1)" in the order of keys.
func formatCounts(keys []string, counts map[string]int) string {
	if len(keys) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s (%s)", k, formatNumber(counts[k])))
	}
	return strings.Join(parts, ", ")
}
