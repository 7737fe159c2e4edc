package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dominikbraun/graph"
)

// QueryOperation represents the type of graph query to perform.
type QueryOperation string

const (
	OperationDependencies QueryOperation = "dependencies"
	OperationDependents   QueryOperation = "dependents"
)

// Query defaults and limits
const (
	DefaultDepth      = 1
	DefaultMaxResults = 100
	MaxDepth          = 10
)

// QueryRequest represents a file dependency query.
type QueryRequest struct {
	Operation  QueryOperation // Type of query
	Target     string         // File path to query
	Depth      int            // Traversal depth (default: 1)
	MaxResults int            // Maximum number of results (default: 100)
}

// QueryResponse represents the response to a graph query.
type QueryResponse struct {
	Operation     string        `json:"operation"`
	Target        string        `json:"target"`
	Results       []QueryResult `json:"results"`
	TotalFound    int           `json:"total_found"`
	TotalReturned int           `json:"total_returned"`
	Truncated     bool          `json:"truncated"`
	TookMs        int           `json:"took_ms"`
}

// QueryResult represents a single file reached by a query.
type QueryResult struct {
	Node  *Node `json:"node"`
	Depth int   `json:"depth"`
}

// ErrUnknownFile is returned when a query targets a path with no File node.
var ErrUnknownFile = errors.New("unknown file")

// Searcher answers file-level dependency queries over a built graph.
type Searcher interface {
	// Query executes a graph query and returns results.
	Query(ctx context.Context, req *QueryRequest) (*QueryResponse, error)

	// Dependencies returns the paths of files that path imports, sorted.
	Dependencies(path string) []string

	// Dependents returns the paths of files that import path, sorted.
	Dependents(path string) []string
}

// searcher projects the File nodes and resolved DependsOn edges of a Graph
// into a file-to-file dominikbraun graph.
type searcher struct {
	files        graph.Graph[string, *Node]
	dependencies map[string]map[string]graph.Edge[string]
	dependents   map[string]map[string]graph.Edge[string]
	pathToID     map[string]string
}

// NewSearcher builds the file dependency projection of g.
func NewSearcher(g *Graph) (Searcher, error) {
	s := &searcher{
		files:    graph.New(func(n *Node) string { return n.ID }, graph.Directed()),
		pathToID: make(map[string]string),
	}

	for h := range g.nodes {
		node := &g.nodes[h]
		if node.Type != NodeFile {
			continue
		}
		if err := s.files.AddVertex(node); err != nil {
			return nil, fmt.Errorf("failed to add node %s: %w", node.ID, err)
		}
		if _, ok := s.pathToID[node.FilePath]; !ok {
			s.pathToID[node.FilePath] = node.ID
		}
	}

	for _, e := range g.edges {
		if e.Type != EdgeDependsOn {
			continue
		}
		owner, ok := g.owningFile(e.From)
		if !ok || owner == e.To {
			continue
		}
		err := s.files.AddEdge(g.nodes[owner].ID, g.nodes[e.To].ID)
		if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
			return nil, fmt.Errorf("failed to add dependency edge: %w", err)
		}
	}

	var err error
	if s.dependencies, err = s.files.AdjacencyMap(); err != nil {
		return nil, fmt.Errorf("failed to build adjacency map: %w", err)
	}
	if s.dependents, err = s.files.PredecessorMap(); err != nil {
		return nil, fmt.Errorf("failed to build predecessor map: %w", err)
	}

	return s, nil
}

// owningFile follows the incoming Contains edge of an Import node.
func (g *Graph) owningFile(h NodeHandle) (NodeHandle, bool) {
	for _, idx := range g.incoming[h] {
		e := g.edges[idx]
		if e.Type == EdgeContains && g.nodes[e.From].Type == NodeFile {
			return e.From, true
		}
	}
	return 0, false
}

// Query executes a depth-limited breadth-first query.
func (s *searcher) Query(ctx context.Context, req *QueryRequest) (*QueryResponse, error) {
	startTime := time.Now()

	if req.Depth <= 0 {
		req.Depth = DefaultDepth
	}
	if req.Depth > MaxDepth {
		req.Depth = MaxDepth
	}
	if req.MaxResults <= 0 {
		req.MaxResults = DefaultMaxResults
	}

	var index map[string]map[string]graph.Edge[string]
	switch req.Operation {
	case OperationDependencies:
		index = s.dependencies
	case OperationDependents:
		index = s.dependents
	default:
		return nil, fmt.Errorf("unsupported operation: %s", req.Operation)
	}

	startID, ok := s.pathToID[req.Target]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFile, req.Target)
	}

	found := s.traverse(index, startID, req.Depth)

	results := []QueryResult{}
	for _, r := range found {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(results) >= req.MaxResults {
			break
		}
		node, err := s.files.Vertex(r.id)
		if err != nil {
			continue
		}
		results = append(results, QueryResult{Node: node, Depth: r.depth})
	}

	return &QueryResponse{
		Operation:     string(req.Operation),
		Target:        req.Target,
		Results:       results,
		TotalFound:    len(found),
		TotalReturned: len(results),
		Truncated:     len(results) < len(found),
		TookMs:        int(time.Since(startTime).Milliseconds()),
	}, nil
}

// resultWithDepth is an internal type for tracking depth in traversal.
type resultWithDepth struct {
	id    string
	depth int
}

func (s *searcher) traverse(index map[string]map[string]graph.Edge[string], start string, depth int) []resultWithDepth {
	visited := map[string]bool{start: true}
	frontier := []string{start}
	var results []resultWithDepth

	for d := 1; d <= depth && len(frontier) > 0; d++ {
		var next []string
		for _, id := range frontier {
			for _, neighbor := range sortedKeys(index[id]) {
				if visited[neighbor] {
					continue
				}
				visited[neighbor] = true
				results = append(results, resultWithDepth{id: neighbor, depth: d})
				next = append(next, neighbor)
			}
		}
		frontier = next
	}

	return results
}

func (s *searcher) Dependencies(path string) []string {
	return s.neighborPaths(s.dependencies, path)
}

func (s *searcher) Dependents(path string) []string {
	return s.neighborPaths(s.dependents, path)
}

func (s *searcher) neighborPaths(index map[string]map[string]graph.Edge[string], path string) []string {
	id, ok := s.pathToID[path]
	if !ok {
		return nil
	}
	paths := []string{}
	for _, neighbor := range sortedKeys(index[id]) {
		if node, err := s.files.Vertex(neighbor); err == nil {
			paths = append(paths, node.FilePath)
		}
	}
	sort.Strings(paths)
	return paths
}

func sortedKeys(m map[string]graph.Edge[string]) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
