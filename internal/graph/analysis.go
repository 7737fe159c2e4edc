package graph

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Analysis summarizes a built graph.
type Analysis struct {
	TotalNodes int              `json:"total_nodes"`
	TotalEdges int              `json:"total_edges"`
	NodeTypes  map[NodeType]int `json:"node_types"`
	EdgeTypes  map[EdgeType]int `json:"edge_types"`

	// StronglyConnectedComponents is reserved for cycle detection and is
	// not computed; it is always 0.
	StronglyConnectedComponents int `json:"strongly_connected_components"`

	// AvgDegree is edges/nodes, 0 for an empty graph.
	AvgDegree float64 `json:"avg_degree"`

	// Per-node total degree (in + out) statistics.
	MaxDegree    int     `json:"max_degree"`
	MedianDegree float64 `json:"median_degree"`
	DegreeStdDev float64 `json:"degree_std_dev"`

	DanglingImports int `json:"dangling_imports"`
}

// AnalyzeDependencies computes summary metrics. It is total: an empty graph
// yields zero counts and a zero average degree, never NaN.
func (g *Graph) AnalyzeDependencies() Analysis {
	a := Analysis{
		TotalNodes:      len(g.nodes),
		TotalEdges:      len(g.edges),
		NodeTypes:       make(map[NodeType]int),
		EdgeTypes:       make(map[EdgeType]int),
		DanglingImports: len(g.Dangling()),
	}

	for _, n := range g.nodes {
		a.NodeTypes[n.Type]++
	}
	for _, e := range g.edges {
		a.EdgeTypes[e.Type]++
	}

	if a.TotalNodes == 0 {
		return a
	}
	a.AvgDegree = float64(a.TotalEdges) / float64(a.TotalNodes)

	degrees := make([]float64, len(g.nodes))
	for h := range g.nodes {
		d := len(g.outgoing[h]) + len(g.incoming[h])
		degrees[h] = float64(d)
		a.MaxDegree = max(a.MaxDegree, d)
	}
	sort.Float64s(degrees)
	a.MedianDegree = stat.Quantile(0.5, stat.Empirical, degrees, nil)
	if len(degrees) > 1 {
		a.DegreeStdDev = stat.StdDev(degrees, nil)
	}

	return a
}
