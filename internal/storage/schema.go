package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is the version of the snapshot schema written by CreateSchema.
const SchemaVersion = "1.0"

// CreateSchema creates the snapshot tables and indexes if they do not exist.
// It is safe to call on every open.
//
// Schema:
//   - runs: one row per analysis run with its summary metrics
//   - nodes: every graph node of a run, keyed by (run_id, handle)
//   - edges: every graph edge of a run, in insertion order
//   - snapshot_metadata: key/value bookkeeping (schema_version)
//
// Must be called with SQLite PRAGMA foreign_keys = ON for cascading deletes.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	tables := []struct {
		name string
		ddl  string
	}{
		{"runs", createRunsTable},
		{"nodes", createNodesTable},
		{"edges", createEdgesTable},
		{"snapshot_metadata", createMetadataTable},
	}
	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range getAllIndexes() {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(
		`INSERT OR IGNORE INTO snapshot_metadata (key, value, updated_at) VALUES ('schema_version', ?, ?)`,
		SchemaVersion, now,
	); err != nil {
		return fmt.Errorf("failed to bootstrap snapshot_metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

// GetSchemaVersion retrieves the schema version from snapshot_metadata.
// Returns "0" if the table doesn't exist (new database).
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='snapshot_metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check snapshot_metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM snapshot_metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in snapshot_metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

// Table DDL constants

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,                         -- UUID
    root_dir TEXT NOT NULL,
    git_branch TEXT,                             -- NULL outside a git repository
    git_commit TEXT,
    git_dirty INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,                    -- ISO 8601
    node_count INTEGER NOT NULL,
    edge_count INTEGER NOT NULL,
    node_types TEXT NOT NULL,                    -- JSON object type -> count
    edge_types TEXT NOT NULL,                    -- JSON object type -> count
    avg_degree REAL NOT NULL,
    max_degree INTEGER NOT NULL,
    median_degree REAL NOT NULL,
    degree_std_dev REAL NOT NULL,
    dangling_imports INTEGER NOT NULL
)
`

const createNodesTable = `
CREATE TABLE IF NOT EXISTS nodes (
    run_id TEXT NOT NULL,
    handle INTEGER NOT NULL,                     -- Arena index within the run
    node_id TEXT NOT NULL,
    node_type TEXT NOT NULL,
    file_path TEXT NOT NULL,
    line INTEGER NOT NULL,
    name TEXT NOT NULL,
    language TEXT,
    size INTEGER,                                -- File nodes only
    complexity INTEGER NOT NULL,
    parameters TEXT,                             -- JSON array
    return_type TEXT,
    is_async INTEGER NOT NULL,
    is_exported INTEGER NOT NULL,
    PRIMARY KEY (run_id, handle),
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
)
`

const createEdgesTable = `
CREATE TABLE IF NOT EXISTS edges (
    run_id TEXT NOT NULL,
    seq INTEGER NOT NULL,                        -- Insertion order within the run
    from_handle INTEGER NOT NULL,
    to_handle INTEGER NOT NULL,
    edge_type TEXT NOT NULL,
    weight REAL NOT NULL,
    call_count INTEGER NOT NULL,
    is_direct INTEGER NOT NULL,
    line_numbers TEXT,                           -- JSON array
    PRIMARY KEY (run_id, seq),
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE,
    FOREIGN KEY (run_id, from_handle) REFERENCES nodes(run_id, handle),
    FOREIGN KEY (run_id, to_handle) REFERENCES nodes(run_id, handle)
)
`

const createMetadataTable = `
CREATE TABLE IF NOT EXISTS snapshot_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

// getAllIndexes returns all index creation statements.
func getAllIndexes() []string {
	return []string{
		"CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_nodes_type ON nodes(run_id, node_type)",
		"CREATE INDEX IF NOT EXISTS idx_nodes_file_path ON nodes(run_id, file_path)",
		"CREATE INDEX IF NOT EXISTS idx_edges_type ON edges(run_id, edge_type)",
		"CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(run_id, from_handle)",
		"CREATE INDEX IF NOT EXISTS idx_edges_to ON edges(run_id, to_handle)",
	}
}
