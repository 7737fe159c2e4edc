package graph

import "time"

// NodeType represents the kind of a code entity.
type NodeType string

const (
	NodeFile     NodeType = "file"
	NodeModule   NodeType = "module"
	NodeFunction NodeType = "function"
	NodeClass    NodeType = "class"
	NodeVariable NodeType = "variable"
	NodeImport   NodeType = "import"
	NodeExport   NodeType = "export"
)

// EdgeType represents the type of relationship between nodes.
type EdgeType string

const (
	EdgeImports    EdgeType = "imports"
	EdgeCalls      EdgeType = "calls"
	EdgeExtends    EdgeType = "extends"
	EdgeImplements EdgeType = "implements"
	EdgeContains   EdgeType = "contains"    // File owns declaration, class owns method
	EdgeReferences EdgeType = "references"
	EdgeDependsOn  EdgeType = "depends_on" // Import resolved to a local file
)

// NodeHandle addresses a node inside one Graph. Handles are dense indices
// starting at 0 and are meaningless across graphs.
type NodeHandle int

// Node represents a code entity with its source location.
type Node struct {
	ID       string       `json:"id"`        // e.g. "function:src/a.py:foo"
	Type     NodeType     `json:"type"`      // Kind of entity
	FilePath string       `json:"file_path"` // Originating file
	Line     int          `json:"line"`      // 1-indexed; file nodes use 1
	Metadata NodeMetadata `json:"metadata"`
}

// NodeMetadata holds the descriptive attributes of a node.
type NodeMetadata struct {
	Name       string   `json:"name"`
	Language   string   `json:"language,omitempty"`
	Size       int64    `json:"size,omitempty"` // file nodes only
	Complexity int      `json:"complexity"`
	Parameters []string `json:"parameters,omitempty"`
	ReturnType string   `json:"return_type,omitempty"`
	IsAsync    bool     `json:"is_async"`
	IsExported bool     `json:"is_exported"`
	Docstring  string   `json:"docstring,omitempty"`
}

// Edge is a directed relationship between two nodes of the same graph.
type Edge struct {
	From     NodeHandle
	To       NodeHandle
	Type     EdgeType
	Weight   float64
	Metadata EdgeMetadata
}

// EdgeMetadata records where and how often a relationship occurs.
type EdgeMetadata struct {
	CallCount   int   `json:"call_count"`
	IsDirect    bool  `json:"is_direct"`
	LineNumbers []int `json:"line_numbers"`
}

// EdgeData is the serialized form of an Edge, with endpoints as node ids.
type EdgeData struct {
	From     string       `json:"from"`
	To       string       `json:"to"`
	Type     EdgeType     `json:"type"`
	Weight   float64      `json:"weight"`
	Metadata EdgeMetadata `json:"metadata"`
}

// GraphData represents the complete code graph structure stored in JSON.
type GraphData struct {
	Metadata GraphMetadata `json:"_metadata"`
	Nodes    []Node        `json:"nodes"`
	Edges    []EdgeData    `json:"edges"`
	Analysis *Analysis     `json:"analysis,omitempty"`
}

// GraphMetadata contains metadata about the graph.
type GraphMetadata struct {
	Version     string    `json:"version"`
	GeneratedAt time.Time `json:"generated_at"`
	NodeCount   int       `json:"node_count"`
	EdgeCount   int       `json:"edge_count"`
}
