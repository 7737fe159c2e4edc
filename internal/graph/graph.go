package graph

// Graph is the write-once result of Build. Nodes and edges live in arenas
// addressed by NodeHandle; string ids and file paths are secondary indices.
// A Graph is safe for concurrent reads.
type Graph struct {
	nodes []Node
	edges []Edge

	outgoing [][]int // node handle -> edge indices
	incoming [][]int

	byID     map[string]NodeHandle
	byFile   map[string]NodeHandle
	imports  []NodeHandle
	resolved map[NodeHandle]bool
}

func newGraph() *Graph {
	return &Graph{
		nodes:    []Node{},
		edges:    []Edge{},
		byID:     make(map[string]NodeHandle),
		byFile:   make(map[string]NodeHandle),
		resolved: make(map[NodeHandle]bool),
	}
}

func (g *Graph) addNode(n Node) NodeHandle {
	h := NodeHandle(len(g.nodes))
	g.nodes = append(g.nodes, n)
	g.outgoing = append(g.outgoing, nil)
	g.incoming = append(g.incoming, nil)
	g.byID[n.ID] = h
	return h
}

func (g *Graph) addEdge(e Edge) {
	idx := len(g.edges)
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], idx)
	g.incoming[e.To] = append(g.incoming[e.To], idx)
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Nodes returns a copy of all nodes in handle order.
func (g *Graph) Nodes() []Node {
	return append([]Node(nil), g.nodes...)
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// Node returns the node for h.
func (g *Graph) Node(h NodeHandle) (Node, bool) {
	if h < 0 || int(h) >= len(g.nodes) {
		return Node{}, false
	}
	return g.nodes[h], true
}

// NodeByID looks up a node handle by its id.
func (g *Graph) NodeByID(id string) (NodeHandle, bool) {
	h, ok := g.byID[id]
	return h, ok
}

// FileNode returns the File node for path. When the same path was built
// twice, the first File node wins.
func (g *Graph) FileNode(path string) (NodeHandle, bool) {
	h, ok := g.byFile[path]
	return h, ok
}

// Outgoing returns the edges leaving h.
func (g *Graph) Outgoing(h NodeHandle) []Edge {
	return g.collect(g.outgoing, h)
}

// Incoming returns the edges entering h.
func (g *Graph) Incoming(h NodeHandle) []Edge {
	return g.collect(g.incoming, h)
}

func (g *Graph) collect(index [][]int, h NodeHandle) []Edge {
	if h < 0 || int(h) >= len(index) {
		return nil
	}
	out := make([]Edge, 0, len(index[h]))
	for _, idx := range index[h] {
		out = append(out, g.edges[idx])
	}
	return out
}

// Dangling returns the Import nodes that resolved to no local file, in
// creation order.
func (g *Graph) Dangling() []NodeHandle {
	var out []NodeHandle
	for _, h := range g.imports {
		if !g.resolved[h] {
			out = append(out, h)
		}
	}
	return out
}

// Data converts the graph to its serialized form, with edge endpoints
// expressed as node ids.
func (g *Graph) Data() *GraphData {
	data := &GraphData{
		Nodes: g.Nodes(),
		Edges: make([]EdgeData, 0, len(g.edges)),
	}
	for _, e := range g.edges {
		data.Edges = append(data.Edges, EdgeData{
			From:     g.nodes[e.From].ID,
			To:       g.nodes[e.To].ID,
			Type:     e.Type,
			Weight:   e.Weight,
			Metadata: e.Metadata,
		})
	}
	data.Metadata.NodeCount = len(data.Nodes)
	data.Metadata.EdgeCount = len(data.Edges)
	return data
}
