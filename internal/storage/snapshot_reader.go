package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/mvp-joe/project-examer/internal/graph"
)

// SnapshotReader reads stored runs back.
type SnapshotReader struct {
	db     *sql.DB
	ownsDB bool
}

// OpenSnapshotReader opens the database at dbPath in read-only mode.
func OpenSnapshotReader(dbPath string) (*SnapshotReader, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &SnapshotReader{db: db, ownsDB: true}, nil
}

// NewSnapshotReaderWithDB creates a reader over an existing connection.
func NewSnapshotReaderWithDB(db *sql.DB) *SnapshotReader {
	return &SnapshotReader{db: db}
}

// Close closes the database connection if owned by this reader.
func (r *SnapshotReader) Close() error {
	if !r.ownsDB || r.db == nil {
		return nil
	}
	return r.db.Close()
}

var runColumns = []string{
	"id", "root_dir", "git_branch", "git_commit", "git_dirty", "created_at",
	"node_count", "edge_count", "node_types", "edge_types",
	"avg_degree", "max_degree", "median_degree", "degree_std_dev", "dangling_imports",
}

// Runs lists stored runs, newest first. limit <= 0 returns all of them.
func (r *SnapshotReader) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := sq.Select(runColumns...).From("runs").OrderBy("created_at DESC", "id")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	rows, err := query.RunWith(r.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// LatestRun returns the newest run, or nil if none is stored.
func (r *SnapshotReader) LatestRun(ctx context.Context) (*Run, error) {
	runs, err := r.Runs(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// Run returns the run with the given id, or nil if it does not exist.
func (r *SnapshotReader) Run(ctx context.Context, runID string) (*Run, error) {
	row := sq.Select(runColumns...).From("runs").Where(sq.Eq{"id": runID}).
		RunWith(r.db).QueryRowContext(ctx)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var (
		run                  Run
		createdAt            string
		nodeTypes, edgeTypes string
		branch, commit       sql.NullString
	)
	err := s.Scan(&run.ID, &run.RootDir, &branch, &commit, &run.Revision.Dirty, &createdAt,
		&run.NodeCount, &run.EdgeCount, &nodeTypes, &edgeTypes,
		&run.Analysis.AvgDegree, &run.Analysis.MaxDegree, &run.Analysis.MedianDegree,
		&run.Analysis.DegreeStdDev, &run.Analysis.DanglingImports)
	if err != nil {
		return nil, err
	}

	run.Revision.Branch = branch.String
	run.Revision.Commit = commit.String

	if run.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at for run %s: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(nodeTypes), &run.Analysis.NodeTypes); err != nil {
		return nil, fmt.Errorf("invalid node_types for run %s: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(edgeTypes), &run.Analysis.EdgeTypes); err != nil {
		return nil, fmt.Errorf("invalid edge_types for run %s: %w", run.ID, err)
	}
	run.Analysis.TotalNodes = run.NodeCount
	run.Analysis.TotalEdges = run.EdgeCount
	return &run, nil
}

// Nodes returns the nodes of a run in handle order.
func (r *SnapshotReader) Nodes(ctx context.Context, runID string) ([]graph.Node, error) {
	rows, err := sq.Select("node_id", "node_type", "file_path", "line", "name", "language", "size",
		"complexity", "parameters", "return_type", "is_async", "is_exported").
		From("nodes").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("handle").
		RunWith(r.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	nodes := []graph.Node{}
	for rows.Next() {
		var (
			n          graph.Node
			nodeType   string
			language   sql.NullString
			size       sql.NullInt64
			params     sql.NullString
			returnType sql.NullString
		)
		if err := rows.Scan(&n.ID, &nodeType, &n.FilePath, &n.Line, &n.Metadata.Name, &language, &size,
			&n.Metadata.Complexity, &params, &returnType, &n.Metadata.IsAsync, &n.Metadata.IsExported); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		n.Type = graph.NodeType(nodeType)
		n.Metadata.Language = language.String
		n.Metadata.Size = size.Int64
		n.Metadata.ReturnType = returnType.String
		if params.Valid {
			if err := json.Unmarshal([]byte(params.String), &n.Metadata.Parameters); err != nil {
				return nil, fmt.Errorf("invalid parameters for node %s: %w", n.ID, err)
			}
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// Edges returns the edges of a run in insertion order, endpoints as node ids.
func (r *SnapshotReader) Edges(ctx context.Context, runID string) ([]graph.EdgeData, error) {
	rows, err := sq.Select("f.node_id", "t.node_id", "e.edge_type", "e.weight", "e.call_count", "e.is_direct",
		"e.line_numbers").
		From("edges e").
		Join("nodes f ON f.run_id = e.run_id AND f.handle = e.from_handle").
		Join("nodes t ON t.run_id = e.run_id AND t.handle = e.to_handle").
		Where(sq.Eq{"e.run_id": runID}).
		OrderBy("e.seq").
		RunWith(r.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	edges := []graph.EdgeData{}
	for rows.Next() {
		var (
			e        graph.EdgeData
			edgeType string
			lines    sql.NullString
		)
		if err := rows.Scan(&e.From, &e.To, &edgeType, &e.Weight, &e.Metadata.CallCount, &e.Metadata.IsDirect,
			&lines); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		e.Type = graph.EdgeType(edgeType)
		if lines.Valid {
			if err := json.Unmarshal([]byte(lines.String), &e.Metadata.LineNumbers); err != nil {
				return nil, fmt.Errorf("invalid line_numbers for edge %s -> %s: %w", e.From, e.To, err)
			}
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// Dependencies returns the resolved file dependencies of a run, ordered by
// importing file and line.
func (r *SnapshotReader) Dependencies(ctx context.Context, runID string) ([]DependencyRow, error) {
	rows, err := sq.Select("i.file_path", "t.file_path", "i.name", "i.line").
		From("edges e").
		Join("nodes i ON i.run_id = e.run_id AND i.handle = e.from_handle").
		Join("nodes t ON t.run_id = e.run_id AND t.handle = e.to_handle").
		Where(sq.Eq{"e.run_id": runID, "e.edge_type": string(graph.EdgeDependsOn)}).
		OrderBy("i.file_path", "i.line", "e.seq").
		RunWith(r.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query dependencies: %w", err)
	}
	defer rows.Close()

	deps := []DependencyRow{}
	for rows.Next() {
		var d DependencyRow
		if err := rows.Scan(&d.FromFile, &d.ToFile, &d.Module, &d.Line); err != nil {
			return nil, fmt.Errorf("failed to scan dependency: %w", err)
		}
		deps = append(deps, d)
	}
	return deps, rows.Err()
}
