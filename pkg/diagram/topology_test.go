package diagram

import (
	"errors"
	"slices"
	"testing"
)

func chain(t *testing.T, ids []NodeID, edges [][2]NodeID) Graph {
	t.Helper()
	g := mustGraph(t, ids...)
	for _, e := range edges {
		var err error
		if g, err = g.WithEdge(NewEdge(e[0], e[1])); err != nil {
			t.Fatalf("WithEdge(%s, %s) error: %v", e[0], e[1], err)
		}
	}
	return g
}

func TestTopologyQueries(t *testing.T) {
	g := chain(t,
		[]NodeID{"node_1", "node_2", "node_3", "node_4"},
		[][2]NodeID{{"node_1", "node_3"}, {"node_1", "node_2"}, {"node_2", "node_4"}, {"node_3", "node_4"}},
	)
	topo := g.Topology()

	if got := topo.Children("node_1"); !slices.Equal(got, []NodeID{"node_3", "node_2"}) {
		t.Errorf("Children(node_1) = %v, want edge insertion order", got)
	}
	if got := topo.Parents("node_4"); !slices.Equal(got, []NodeID{"node_2", "node_3"}) {
		t.Errorf("Parents(node_4) = %v", got)
	}
	if topo.InDegree("node_4") != 2 || topo.OutDegree("node_1") != 2 {
		t.Errorf("degrees = %d/%d, want 2/2", topo.InDegree("node_4"), topo.OutDegree("node_1"))
	}
	if got := topo.Sources(); !slices.Equal(got, []NodeID{"node_1"}) {
		t.Errorf("Sources() = %v", got)
	}
	if got := topo.Sinks(); !slices.Equal(got, []NodeID{"node_4"}) {
		t.Errorf("Sinks() = %v", got)
	}
	if root, ok := topo.Root(); !ok || root != "node_1" {
		t.Errorf("Root() = %s, %v", root, ok)
	}
	if got := topo.Reachable("node_2"); !slices.Equal(got, []NodeID{"node_2", "node_4"}) {
		t.Errorf("Reachable(node_2) = %v", got)
	}
}

func TestTopologyRootFirstInInsertionOrder(t *testing.T) {
	g := chain(t, []NodeID{"node_1", "node_2", "node_3"}, [][2]NodeID{{"node_2", "node_1"}})
	root, ok := g.Topology().Root()
	if !ok || root != "node_2" {
		t.Errorf("Root() = %s, %v, want node_2", root, ok)
	}
}

func TestTopologyNoRoot(t *testing.T) {
	g := chain(t, []NodeID{"node_1", "node_2"}, [][2]NodeID{{"node_1", "node_2"}, {"node_2", "node_1"}})
	if _, ok := g.Topology().Root(); ok {
		t.Error("Root() found a root in a graph where every node has a parent")
	}
	var empty Graph
	if _, ok := empty.Topology().Root(); ok {
		t.Error("Root() found a root in an empty graph")
	}
}

func TestDetectCycle(t *testing.T) {
	tests := []struct {
		name  string
		edges [][2]NodeID
		want  error
	}{
		{"acyclic", [][2]NodeID{{"node_1", "node_2"}, {"node_2", "node_3"}}, nil},
		{"diamond", [][2]NodeID{{"node_1", "node_2"}, {"node_1", "node_3"}, {"node_2", "node_4"}, {"node_3", "node_4"}}, nil},
		{"cycle", [][2]NodeID{{"node_1", "node_2"}, {"node_2", "node_3"}, {"node_3", "node_2"}}, ErrGraphHasCycle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := chain(t, []NodeID{"node_1", "node_2", "node_3", "node_4"}, tt.edges)
			if err := g.Topology().DetectCycle(); !errors.Is(err, tt.want) {
				t.Errorf("DetectCycle() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDetectCycleFromIgnoresUnreachable(t *testing.T) {
	g := chain(t,
		[]NodeID{"node_1", "node_2", "node_3", "node_4"},
		[][2]NodeID{{"node_1", "node_2"}, {"node_3", "node_4"}, {"node_4", "node_3"}},
	)
	topo := g.Topology()
	if err := topo.DetectCycleFrom("node_1"); err != nil {
		t.Errorf("DetectCycleFrom(node_1) = %v, want nil", err)
	}
	if err := topo.DetectCycleFrom("node_3"); !errors.Is(err, ErrGraphHasCycle) {
		t.Errorf("DetectCycleFrom(node_3) = %v, want ErrGraphHasCycle", err)
	}
}
