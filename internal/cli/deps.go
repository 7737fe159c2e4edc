package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-examer/internal/graph"
	"github.com/mvp-joe/project-examer/internal/indexer"
)

type depsOptions struct {
	root       string
	target     string
	reverse    bool
	depth      int
	maxResults int
	jsonOut    bool
}

var depsOpts depsOptions

// depsCmd represents the deps command
var depsCmd = &cobra.Command{
	Use:   "deps <file>",
	Short: "Show the files a file depends on",
	Long: `Deps analyzes the project and lists the files that <file> imports,
following resolved imports up to --depth levels. With --reverse, it lists the
files that import <file> instead.

<file> is relative to the project root (--root, default: current directory).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := depsOpts
		opts.target = args[0]
		return executeDeps(cmd.Context(), opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(depsCmd)

	depsCmd.Flags().StringVar(&depsOpts.root, "root", ".", "project root")
	depsCmd.Flags().BoolVarP(&depsOpts.reverse, "reverse", "r", false, "list dependents instead of dependencies")
	depsCmd.Flags().IntVarP(&depsOpts.depth, "depth", "d", graph.DefaultDepth, "traversal depth")
	depsCmd.Flags().IntVar(&depsOpts.maxResults, "max-results", graph.DefaultMaxResults, "maximum files to list")
	depsCmd.Flags().BoolVar(&depsOpts.jsonOut, "json", false, "print the query response as JSON")
}

func executeDeps(ctx context.Context, opts depsOptions, out io.Writer) error {
	session, err := newAnalysisSession(analyzeOptions{root: opts.root})
	if err != nil {
		return err
	}

	res, err := session.newIndexer(&indexer.NoOpProgressReporter{}).Analyze(ctx)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	searcher, err := graph.NewSearcher(res.Graph)
	if err != nil {
		return err
	}

	op := graph.OperationDependencies
	if opts.reverse {
		op = graph.OperationDependents
	}
	resp, err := searcher.Query(ctx, &graph.QueryRequest{
		Operation:  op,
		Target:     targetPath(session.root, opts.target),
		Depth:      opts.depth,
		MaxResults: opts.maxResults,
	})
	if err != nil {
		return err
	}

	if opts.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	label := "Dependencies"
	if opts.reverse {
		label = "Dependents"
	}
	fmt.Fprintf(out, "%s of %s:\n", label, displayPath(session.root, resp.Target))
	if len(resp.Results) == 0 {
		fmt.Fprintln(out, "  (none)")
	}
	for _, r := range resp.Results {
		fmt.Fprintf(out, "  %s%s\n", strings.Repeat("  ", r.Depth-1), displayPath(session.root, r.Node.FilePath))
	}
	if resp.Truncated {
		fmt.Fprintf(out, "  ... %d more\n", resp.TotalFound-resp.TotalReturned)
	}
	return nil
}

// targetPath resolves target against root into the absolute form carried by
// file records.
func targetPath(root, target string) string {
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(root, target)
}

// displayPath shortens paths under root to slash-separated relative form.
func displayPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
