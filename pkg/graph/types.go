package graph

// NodeID identifies a node within a graph document.
type NodeID string

// EdgeID identifies an edge within a graph document.
type EdgeID string

// Position is the node's location on the editor canvas. It is opaque to
// the compiler and carried only so round-tripping a document is lossless.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one typed operation instance in a graph. Its shape (ports,
// parameters) is resolved through Type via the node registry; the node
// itself stores only values.
type Node struct {
	ID       NodeID         `json:"id"`
	Type     string         `json:"type"`
	Position Position       `json:"position"`
	Params   map[string]any `json:"parameters,omitempty"`
}

// Edge connects one source port to one target port.
type Edge struct {
	ID         EdgeID `json:"id"`
	Source     NodeID `json:"source"`
	SourcePort string `json:"source_port"`
	Target     NodeID `json:"target"`
	TargetPort string `json:"target_port"`
}

// Graph is the complete node graph document. Nodes and edges are kept in
// document order so that duplicate IDs survive decoding and can be
// reported by the validator; the ID indexes are built lazily and keep the
// first occurrence, matching the lookup semantics of the editor.
//
// A Graph is owned by the caller. The compiler never mutates it; every
// pipeline stage takes a read-only view and returns a new artifact.
type Graph struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`

	nodeIndex map[NodeID]*Node
	edgeIndex map[EdgeID]*Edge
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{}
}

// AddNode appends a node. It does not check for duplicates; that is the
// validator's job.
func (g *Graph) AddNode(n *Node) {
	g.Nodes = append(g.Nodes, n)
	g.nodeIndex = nil
}

// AddEdge appends an edge.
func (g *Graph) AddEdge(e *Edge) {
	g.Edges = append(g.Edges, e)
	g.edgeIndex = nil
}

// Node returns the first node with the given ID, or nil.
func (g *Graph) Node(id NodeID) *Node {
	if g.nodeIndex == nil {
		g.nodeIndex = make(map[NodeID]*Node, len(g.Nodes))
		for _, n := range g.Nodes {
			if _, ok := g.nodeIndex[n.ID]; !ok {
				g.nodeIndex[n.ID] = n
			}
		}
	}
	return g.nodeIndex[id]
}

// Edge returns the first edge with the given ID, or nil.
func (g *Graph) Edge(id EdgeID) *Edge {
	if g.edgeIndex == nil {
		g.edgeIndex = make(map[EdgeID]*Edge, len(g.Edges))
		for _, e := range g.Edges {
			if _, ok := g.edgeIndex[e.ID]; !ok {
				g.edgeIndex[e.ID] = e
			}
		}
	}
	return g.edgeIndex[id]
}

// Outgoing returns all edges whose source is the given node, in document
// order.
func (g *Graph) Outgoing(id NodeID) []*Edge {
	var out []*Edge
	for _, e := range g.Edges {
		if e.Source == id {
			out = append(out, e)
		}
	}
	return out
}

// Incoming returns all edges whose target is the given node, in document
// order.
func (g *Graph) Incoming(id NodeID) []*Edge {
	var in []*Edge
	for _, e := range g.Edges {
		if e.Target == id {
			in = append(in, e)
		}
	}
	return in
}

// Successors returns the IDs of nodes this node connects to.
func (g *Graph) Successors(id NodeID) []NodeID {
	var succ []NodeID
	for _, e := range g.Edges {
		if e.Source == id {
			succ = append(succ, e.Target)
		}
	}
	return succ
}

// NodeCount returns the total number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}
