package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-examer/internal/git"
	"github.com/mvp-joe/project-examer/internal/storage"
)

type runsOptions struct {
	root  string
	limit int
	deps  bool
}

var runsOpts runsOptions

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs [path]",
	Short: "List stored analysis runs",
	Long: `Runs lists the analysis runs recorded in the project's SQLite history,
newest first. With --deps, the resolved file dependencies of the latest run
are printed as well.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runsOpts
		opts.root = "."
		if len(args) == 1 {
			opts.root = args[0]
		}
		return executeRuns(cmd.Context(), opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().IntVarP(&runsOpts.limit, "limit", "n", 10, "maximum runs to list (0 = all)")
	runsCmd.Flags().BoolVar(&runsOpts.deps, "deps", false, "print the dependencies of the latest run")
}

func executeRuns(ctx context.Context, opts runsOptions, out io.Writer) error {
	session, err := newAnalysisSession(analyzeOptions{root: opts.root})
	if err != nil {
		return err
	}

	dbPath := filepath.Join(session.outDir, storage.DatabaseFileName)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintf(out, "No runs recorded in %s\n", session.outDir)
		fmt.Fprintln(out, "Run 'examer analyze' first")
		return nil
	}

	r, err := storage.OpenSnapshotReader(dbPath)
	if err != nil {
		return err
	}
	defer r.Close()

	runs, err := r.Runs(ctx, opts.limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tCREATED\tREVISION\tNODES\tEDGES\tUNRESOLVED")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			run.ID,
			run.CreatedAt.Local().Format(time.DateTime),
			formatRevision(run.Revision),
			formatNumber(run.NodeCount),
			formatNumber(run.EdgeCount),
			formatNumber(run.Analysis.DanglingImports),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if !opts.deps || len(runs) == 0 {
		return nil
	}

	deps, err := r.Dependencies(ctx, runs[0].ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nDependencies of run %s:\n", runs[0].ID)
	for _, d := range deps {
		fmt.Fprintf(out, "  %s -> %s (%s, line %d)\n",
			displayPath(session.root, d.FromFile), displayPath(session.root, d.ToFile), d.Module, d.Line)
	}
	return nil
}

// formatRevision renders "branch@short" with a "*" suffix for dirty trees.
func formatRevision(rev git.Revision) string {
	if rev.Commit == "" {
		return "-"
	}
	commit := rev.Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	out := rev.Branch + "@" + commit
	if rev.Dirty {
		out += "*"
	}
	return out
}
