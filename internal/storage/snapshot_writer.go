package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mvp-joe/project-examer/internal/git"
	"github.com/mvp-joe/project-examer/internal/graph"
)

// insertBatchSize bounds the rows per INSERT so the statement stays well
// under SQLite's bound-variable limit.
const insertBatchSize = 200

// SnapshotWriter appends analysis runs to a SQLite database. Every run is
// stored whole; earlier runs are never modified.
type SnapshotWriter struct {
	db       *sql.DB
	ownsDB   bool // true if we opened the connection, false if shared
	rootDir  string
	revision git.Revision
	logger   *slog.Logger
	now      func() time.Time
}

// WriterOption configures a SnapshotWriter.
type WriterOption func(*SnapshotWriter)

// WithRootDir records the analyzed root on every run.
func WithRootDir(root string) WriterOption {
	return func(w *SnapshotWriter) {
		w.rootDir = root
	}
}

// WithRevision records the git revision on every run.
func WithRevision(rev git.Revision) WriterOption {
	return func(w *SnapshotWriter) {
		w.revision = rev
	}
}

// WithWriterLogger sets the logger for write summaries.
func WithWriterLogger(logger *slog.Logger) WriterOption {
	return func(w *SnapshotWriter) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// OpenSnapshotWriter opens (creating if needed) the database at dbPath and
// ensures the schema exists.
func OpenSnapshotWriter(dbPath string, opts ...WriterOption) (*SnapshotWriter, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Foreign keys are per connection; a single connection keeps them on.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	w := NewSnapshotWriterWithDB(db, opts...)
	w.ownsDB = true
	return w, nil
}

// NewSnapshotWriterWithDB creates a SnapshotWriter using an existing database
// connection. The caller manages schema, foreign keys and Close.
func NewSnapshotWriterWithDB(db *sql.DB, opts ...WriterOption) *SnapshotWriter {
	w := &SnapshotWriter{
		db:     db,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Close closes the database connection if owned by this writer.
func (w *SnapshotWriter) Close() error {
	if !w.ownsDB {
		return nil
	}
	if w.db != nil {
		return w.db.Close()
	}
	return nil
}

// Write stores g and its analysis as a new run in one transaction and
// returns the run id.
func (w *SnapshotWriter) Write(ctx context.Context, g *graph.Graph, analysis graph.Analysis) (string, error) {
	if g == nil {
		return "", fmt.Errorf("graph cannot be nil")
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	runID := uuid.New().String()
	if err := w.writeRun(ctx, tx, runID, g, analysis); err != nil {
		return "", fmt.Errorf("failed to write run: %w", err)
	}
	if err := writeNodes(ctx, tx, runID, g.Nodes()); err != nil {
		return "", fmt.Errorf("failed to write nodes: %w", err)
	}
	if err := writeEdges(ctx, tx, runID, g.Edges()); err != nil {
		return "", fmt.Errorf("failed to write edges: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.logger.Debug("snapshot written", "run", runID, "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return runID, nil
}

func (w *SnapshotWriter) writeRun(ctx context.Context, tx *sql.Tx, runID string, g *graph.Graph, a graph.Analysis) error {
	nodeTypes, err := json.Marshal(a.NodeTypes)
	if err != nil {
		return err
	}
	edgeTypes, err := json.Marshal(a.EdgeTypes)
	if err != nil {
		return err
	}

	_, err = sq.Insert("runs").
		Columns("id", "root_dir", "git_branch", "git_commit", "git_dirty", "created_at", "node_count", "edge_count", "node_types", "edge_types",
			"avg_degree", "max_degree", "median_degree", "degree_std_dev", "dangling_imports").
		Values(runID, w.rootDir, nullString(w.revision.Branch), nullString(w.revision.Commit), w.revision.Dirty,
			w.now().UTC().Format(timestampLayout), g.NodeCount(), g.EdgeCount(),
			string(nodeTypes), string(edgeTypes),
			a.AvgDegree, a.MaxDegree, a.MedianDegree, a.DegreeStdDev, a.DanglingImports).
		RunWith(tx).
		ExecContext(ctx)
	return err
}

func writeNodes(ctx context.Context, tx *sql.Tx, runID string, nodes []graph.Node) error {
	for start := 0; start < len(nodes); start += insertBatchSize {
		end := min(start+insertBatchSize, len(nodes))

		insert := sq.Insert("nodes").
			Columns("run_id", "handle", "node_id", "node_type", "file_path", "line", "name", "language",
				"size", "complexity", "parameters", "return_type", "is_async", "is_exported")
		for handle := start; handle < end; handle++ {
			n := nodes[handle]
			params, err := jsonOrNull(n.Metadata.Parameters)
			if err != nil {
				return err
			}
			insert = insert.Values(runID, handle, n.ID, string(n.Type), n.FilePath, n.Line, n.Metadata.Name,
				nullString(n.Metadata.Language), nullInt64(n.Metadata.Size), n.Metadata.Complexity,
				params, nullString(n.Metadata.ReturnType), n.Metadata.IsAsync, n.Metadata.IsExported)
		}

		if _, err := insert.RunWith(tx).ExecContext(ctx); err != nil {
			return err
		}
	}
	return nil
}

func writeEdges(ctx context.Context, tx *sql.Tx, runID string, edges []graph.Edge) error {
	for start := 0; start < len(edges); start += insertBatchSize {
		end := min(start+insertBatchSize, len(edges))

		insert := sq.Insert("edges").
			Columns("run_id", "seq", "from_handle", "to_handle", "edge_type", "weight", "call_count", "is_direct",
				"line_numbers")
		for seq := start; seq < end; seq++ {
			e := edges[seq]
			lines, err := jsonOrNull(e.Metadata.LineNumbers)
			if err != nil {
				return err
			}
			insert = insert.Values(runID, seq, int(e.From), int(e.To), string(e.Type), e.Weight,
				e.Metadata.CallCount, e.Metadata.IsDirect, lines)
		}

		if _, err := insert.RunWith(tx).ExecContext(ctx); err != nil {
			return err
		}
	}
	return nil
}

func jsonOrNull[T any](values []T) (sql.NullString, error) {
	if len(values) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(n int64) sql.NullInt64 {
	return sql.NullInt64{Int64: n, Valid: n != 0}
}
