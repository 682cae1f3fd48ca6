package depgraph

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the same
	// ID already exists. The existing node is left untouched.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrDuplicateEdge is returned by [Graph.AddEdge] when an edge between the
	// same two nodes already exists. Use [Graph.SetEdgeMeta] to update it.
	ErrDuplicateEdge = errors.New("duplicate edge")
)

// Metadata stores arbitrary key-value pairs attached to nodes or edges.
// Metadata maps are never nil once stored in a graph.
type Metadata map[string]any

// String returns the value stored under key if it is a string.
func (m Metadata) String(key string) string {
	s, _ := m[key].(string)
	return s
}

// Node is a vertex in the graph. Value holds the caller's payload (for the tree
// builder, the installed distribution).
type Node struct {
	ID    string
	Value any
	Meta  Metadata
}

// Edge is a directed connection From → To.
type Edge struct {
	From string
	To   string
	Meta Metadata
}

// Graph is a directed graph that preserves insertion order of nodes and edges.
//
// The zero value is not usable; use New. Graph is not safe for concurrent
// mutation, but concurrent reads of a fully built graph are fine.
type Graph struct {
	nodes    map[string]*Node
	order    []string
	outgoing map[string][]*Edge // nodeID -> edges in insertion order
	incoming map[string][]string
	edges    int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]*Edge),
		incoming: make(map[string][]string),
	}
}

// AddNode adds a node. Returns ErrInvalidNodeID for an empty ID or
// ErrDuplicateNodeID if the ID is already present.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	g.nodes[n.ID] = &n
	g.order = append(g.order, n.ID)
	return nil
}

// AddEdge adds a directed edge between two existing nodes. At most one edge may
// exist per ordered pair of nodes.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if g.HasEdge(e.From, e.To) {
		return ErrDuplicateEdge
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	g.outgoing[e.From] = append(g.outgoing[e.From], &e)
	g.incoming[e.To] = append(g.incoming[e.To], e.From)
	g.edges++
	return nil
}

// SetEdgeMeta replaces the metadata of the edge from → to.
// Reports whether the edge exists.
func (g *Graph) SetEdgeMeta(from, to string, meta Metadata) bool {
	for _, e := range g.outgoing[from] {
		if e.To == to {
			if meta == nil {
				meta = Metadata{}
			}
			e.Meta = meta
			return true
		}
	}
	return false
}

// HasEdge reports whether the edge from → to exists.
func (g *Graph) HasEdge(from, to string) bool {
	return slices.ContainsFunc(g.outgoing[from], func(e *Edge) bool { return e.To == to })
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.order))
	for i, id := range g.order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return g.edges }

// OutEdges returns copies of the edges leaving id, in insertion order.
func (g *Graph) OutEdges(id string) []Edge {
	out := make([]Edge, len(g.outgoing[id]))
	for i, e := range g.outgoing[id] {
		out[i] = *e
	}
	return out
}

// Children returns the IDs of the nodes id has edges to, in insertion order.
func (g *Graph) Children(id string) []string {
	var ids []string
	for _, e := range g.outgoing[id] {
		ids = append(ids, e.To)
	}
	return ids
}

// InDegree returns the number of incoming edges of id.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// Sources returns the nodes with no incoming edges, in insertion order.
func (g *Graph) Sources() []*Node {
	var sources []*Node
	for _, id := range g.order {
		if g.InDegree(id) == 0 {
			sources = append(sources, g.nodes[id])
		}
	}
	return sources
}

// Invert returns a new graph with every edge reversed. Nodes keep their order
// and share their Value with g. Reversed edges are added by walking the
// requirers in node order, so a node's children in the inverted graph are its
// parents in g ordered by node insertion.
func (g *Graph) Invert() *Graph {
	inv := New()
	for _, id := range g.order {
		n := g.nodes[id]
		_ = inv.AddNode(Node{ID: n.ID, Value: n.Value, Meta: n.Meta})
	}
	for _, id := range g.order {
		for _, e := range g.outgoing[id] {
			_ = inv.AddEdge(Edge{From: e.To, To: e.From, Meta: e.Meta})
		}
	}
	return inv
}

// Reachable returns the set of node IDs reachable from start (including start)
// following outgoing edges.
func (g *Graph) Reachable(start string) map[string]bool {
	seen := map[string]bool{}
	stack := []string{start}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		for _, child := range g.Children(id) {
			if !seen[child] {
				stack = append(stack, child)
			}
		}
	}
	return seen
}
