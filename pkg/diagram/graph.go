package diagram

import (
	"github.com/tidwall/btree"
)

// Graph is an immutable, versioned view over the nodes and edges of a diagram.
//
// Nodes and edges are kept in copy-on-write B-tree arenas keyed by insertion
// sequence, so iteration order is insertion order. Every With* method returns
// a new Graph that shares unchanged structure with the receiver; the receiver
// itself is never modified. This is what lets history hold full snapshots
// without re-copying the collections on every commit.
//
// The zero value is an empty graph and is ready to use. Graph values may be
// read from several goroutines; deriving new graphs from the same snapshot
// must be serialized by the caller.
type Graph struct {
	nodes *btree.Map[uint64, Node]   // sequence -> node
	index *btree.Map[NodeID, uint64] // node id -> sequence
	edges *btree.Map[uint64, Edge]   // sequence -> edge
	pairs *btree.Map[EdgeID, uint64] // edge id -> sequence

	nextNode uint64
	nextEdge uint64
}

// NodeCount returns the number of nodes in the graph.
func (g Graph) NodeCount() int {
	if g.nodes == nil {
		return 0
	}
	return g.nodes.Len()
}

// EdgeCount returns the number of edges in the graph.
func (g Graph) EdgeCount() int {
	if g.edges == nil {
		return 0
	}
	return g.edges.Len()
}

// Nodes returns all nodes in insertion order.
// The returned slice is a fresh copy; modifying it does not affect the graph.
func (g Graph) Nodes() []Node {
	if g.nodes == nil {
		return nil
	}
	return g.nodes.Values()
}

// Edges returns all edges in insertion order.
// The returned slice is a fresh copy; modifying it does not affect the graph.
func (g Graph) Edges() []Edge {
	if g.edges == nil {
		return nil
	}
	return g.edges.Values()
}

// Node returns the node with the given id and true, or the zero Node and false.
func (g Graph) Node(id NodeID) (Node, bool) {
	if g.index == nil {
		return Node{}, false
	}
	seq, ok := g.index.Get(id)
	if !ok {
		return Node{}, false
	}
	return g.nodes.Get(seq)
}

// HasNode reports whether a node with the given id exists.
func (g Graph) HasNode(id NodeID) bool {
	_, ok := g.Node(id)
	return ok
}

// Edge returns the edge source -> target and true, or the zero Edge and false.
func (g Graph) Edge(source, target NodeID) (Edge, bool) {
	if g.pairs == nil {
		return Edge{}, false
	}
	seq, ok := g.pairs.Get(EdgeIDFor(source, target))
	if !ok {
		return Edge{}, false
	}
	return g.edges.Get(seq)
}

// HasEdge reports whether the directed edge source -> target exists.
func (g Graph) HasEdge(source, target NodeID) bool {
	_, ok := g.Edge(source, target)
	return ok
}

// WithNode returns a graph containing n. If a node with the same id exists it
// is replaced in place and keeps its position in the node order; otherwise n
// is appended. Returns ErrInvalidNodeID if n.ID is empty.
func (g Graph) WithNode(n Node) (Graph, error) {
	if n.ID == "" {
		return g, ErrInvalidNodeID
	}
	out := g.mutableNodes()
	if seq, ok := out.index.Get(n.ID); ok {
		out.nodes.Set(seq, n)
		return out, nil
	}
	seq := out.nextNode
	out.nextNode++
	out.nodes.Set(seq, n)
	out.index.Set(n.ID, seq)
	return out, nil
}

// WithNodes applies WithNode for each node in order.
func (g Graph) WithNodes(nodes ...Node) (Graph, error) {
	var err error
	for _, n := range nodes {
		if g, err = g.WithNode(n); err != nil {
			return g, err
		}
	}
	return g, nil
}

// WithEdge returns a graph with e appended. Both endpoints must exist.
// Returns ErrUnknownSourceNode, ErrUnknownTargetNode, or ErrDuplicateEdge;
// on error the receiver is returned unchanged. The edge id is always
// re-derived from its endpoints.
func (g Graph) WithEdge(e Edge) (Graph, error) {
	if !g.HasNode(e.Source) {
		return g, ErrUnknownSourceNode
	}
	if !g.HasNode(e.Target) {
		return g, ErrUnknownTargetNode
	}
	if g.HasEdge(e.Source, e.Target) {
		return g, ErrDuplicateEdge
	}
	e.ID = EdgeIDFor(e.Source, e.Target)

	out := g.mutableEdges()
	seq := out.nextEdge
	out.nextEdge++
	out.edges.Set(seq, e)
	out.pairs.Set(e.ID, seq)
	return out, nil
}

// WithPositions returns a graph where every node listed in positions has been
// moved. Ids not present in the graph are ignored.
func (g Graph) WithPositions(positions map[NodeID]Position) Graph {
	if len(positions) == 0 || g.NodeCount() == 0 {
		return g
	}
	out := g.mutableNodes()
	for id, pos := range positions {
		seq, ok := out.index.Get(id)
		if !ok {
			continue
		}
		n, _ := out.nodes.Get(seq)
		n.Position = pos
		out.nodes.Set(seq, n)
	}
	return out
}

// Equal reports whether both graphs hold the same nodes and edges in the same order.
func (g Graph) Equal(o Graph) bool {
	if g.NodeCount() != o.NodeCount() || g.EdgeCount() != o.EdgeCount() {
		return false
	}
	an, bn := g.Nodes(), o.Nodes()
	for i := range an {
		if an[i] != bn[i] {
			return false
		}
	}
	ae, be := g.Edges(), o.Edges()
	for i := range ae {
		if ae[i] != be[i] {
			return false
		}
	}
	return true
}

// mutableNodes returns a copy of g whose node arena may be written without
// affecting g. Edge arenas stay shared.
func (g Graph) mutableNodes() Graph {
	out := g
	if g.nodes == nil {
		out.nodes = btree.NewMap[uint64, Node](0)
		out.index = btree.NewMap[NodeID, uint64](0)
		out.nextNode = 1
		return out
	}
	out.nodes = g.nodes.Copy()
	out.index = g.index.Copy()
	return out
}

// mutableEdges returns a copy of g whose edge arena may be written without
// affecting g. Node arenas stay shared.
func (g Graph) mutableEdges() Graph {
	out := g
	if g.edges == nil {
		out.edges = btree.NewMap[uint64, Edge](0)
		out.pairs = btree.NewMap[EdgeID, uint64](0)
		out.nextEdge = 1
		return out
	}
	out.edges = g.edges.Copy()
	out.pairs = g.pairs.Copy()
	return out
}
