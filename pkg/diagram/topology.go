package diagram

// Topology is a read-only adjacency index over a [Graph] snapshot.
//
// Children and parents are listed in edge insertion order, which is the order
// layout uses to place siblings left to right. Build one with [Graph.Topology];
// it does not follow later graph versions.
type Topology struct {
	order    []NodeID
	outgoing map[NodeID][]NodeID // nodeID -> children IDs
	incoming map[NodeID][]NodeID // nodeID -> parent IDs
}

// Topology indexes the graph's edges by source and target.
func (g Graph) Topology() *Topology {
	nodes := g.Nodes()
	t := &Topology{
		order:    make([]NodeID, len(nodes)),
		outgoing: make(map[NodeID][]NodeID, len(nodes)),
		incoming: make(map[NodeID][]NodeID, len(nodes)),
	}
	for i, n := range nodes {
		t.order[i] = n.ID
	}
	for _, e := range g.Edges() {
		t.outgoing[e.Source] = append(t.outgoing[e.Source], e.Target)
		t.incoming[e.Target] = append(t.incoming[e.Target], e.Source)
	}
	return t
}

// Children returns the targets of the node's outgoing edges.
// The returned slice should not be modified.
func (t *Topology) Children(id NodeID) []NodeID { return t.outgoing[id] }

// Parents returns the sources of the node's incoming edges.
// The returned slice should not be modified.
func (t *Topology) Parents(id NodeID) []NodeID { return t.incoming[id] }

// OutDegree returns the number of outgoing edges from the node.
func (t *Topology) OutDegree(id NodeID) int { return len(t.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
func (t *Topology) InDegree(id NodeID) int { return len(t.incoming[id]) }

// Sources returns the nodes with no incoming edge, in node insertion order.
func (t *Topology) Sources() []NodeID {
	var sources []NodeID
	for _, id := range t.order {
		if len(t.incoming[id]) == 0 {
			sources = append(sources, id)
		}
	}
	return sources
}

// Sinks returns the nodes with no outgoing edge, in node insertion order.
func (t *Topology) Sinks() []NodeID {
	var sinks []NodeID
	for _, id := range t.order {
		if len(t.outgoing[id]) == 0 {
			sinks = append(sinks, id)
		}
	}
	return sinks
}

// Root returns the first node, in insertion order, that has no incoming edge.
func (t *Topology) Root() (NodeID, bool) {
	for _, id := range t.order {
		if len(t.incoming[id]) == 0 {
			return id, true
		}
	}
	return "", false
}

// Reachable returns the nodes reachable from root, root included, in
// depth-first discovery order.
func (t *Topology) Reachable(root NodeID) []NodeID {
	seen := map[NodeID]bool{root: true}
	out := []NodeID{root}
	var visit func(id NodeID)
	visit = func(id NodeID) {
		for _, c := range t.outgoing[id] {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
				visit(c)
			}
		}
	}
	visit(root)
	return out
}

// DetectCycle returns ErrGraphHasCycle if any directed cycle exists.
// Runs in O(N+E) using depth-first search with white/gray/black coloring.
func (t *Topology) DetectCycle() error {
	color := make(map[NodeID]int, len(t.order))
	for _, id := range t.order {
		if color[id] == white {
			if t.dfs(id, color) {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

// DetectCycleFrom returns ErrGraphHasCycle if a cycle is reachable from root.
// Cycles in parts of the graph that root cannot reach are ignored.
func (t *Topology) DetectCycleFrom(root NodeID) error {
	if t.dfs(root, make(map[NodeID]int)) {
		return ErrGraphHasCycle
	}
	return nil
}

const (
	white = iota
	gray
	black
)

// dfs reports whether a back edge (to a gray node) is reachable from id.
func (t *Topology) dfs(id NodeID, color map[NodeID]int) bool {
	color[id] = gray
	for _, child := range t.outgoing[id] {
		switch color[child] {
		case white:
			if t.dfs(child, color) {
				return true
			}
		case gray:
			return true
		}
	}
	color[id] = black
	return false
}
