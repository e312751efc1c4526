package diagram

import (
	"errors"
	"testing"
)

func newTestStore() *Store {
	return NewStore(StoreOptions{Viewport: Viewport{Width: 1000, Height: 800}, Seed: 42})
}

func TestStoreAddNode(t *testing.T) {
	s := newTestStore()
	var g Graph

	g, id, err := s.AddNode(g, KindCircular)
	if err != nil {
		t.Fatalf("AddNode() error: %v", err)
	}
	if id != "node_1" {
		t.Errorf("first id = %q, want node_1", id)
	}
	n, ok := g.Node(id)
	if !ok {
		t.Fatal("added node not found")
	}
	if n.Label != "Circular Node 1" {
		t.Errorf("label = %q, want %q", n.Label, "Circular Node 1")
	}
	if n.HasBranch() {
		t.Errorf("new node branch = %q, want empty", n.Branch)
	}
	if n.Position.X < 0 || n.Position.X >= 500 || n.Position.Y < 0 || n.Position.Y >= 400 {
		t.Errorf("position = %v, want within [0,500)x[0,400)", n.Position)
	}
}

func TestStoreAddNodeImageURL(t *testing.T) {
	s := newTestStore()
	g, id, _ := s.AddNode(Graph{}, KindImage)
	n, _ := g.Node(id)
	if n.ImageURL != DefaultImageURL {
		t.Errorf("ImageURL = %q, want %q", n.ImageURL, DefaultImageURL)
	}
	g, id, _ = s.AddNode(g, KindIcon)
	n, _ = g.Node(id)
	if n.ImageURL != "" {
		t.Errorf("icon node ImageURL = %q, want empty", n.ImageURL)
	}
}

func TestStoreInvalidKindKeepsCounter(t *testing.T) {
	s := newTestStore()
	g, _, err := s.AddNode(Graph{}, "diamond")
	if !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("AddNode(diamond) error = %v, want ErrInvalidKind", err)
	}
	if g.NodeCount() != 0 {
		t.Errorf("NodeCount() = %d, want 0", g.NodeCount())
	}
	if _, id, _ := s.AddNode(g, KindDefault); id != "node_1" {
		t.Errorf("id after failed add = %q, want node_1", id)
	}
}

func TestStoreIDsNeverReused(t *testing.T) {
	s := newTestStore()
	base := Graph{}
	g, _, _ := s.AddNode(base, KindDefault)
	g, _, _ = s.AddNode(g, KindDefault)
	_ = g

	// Adding on top of an older snapshot (as after undo) still issues a fresh id.
	_, id, _ := s.AddNode(base, KindDefault)
	if id != "node_3" {
		t.Errorf("id after rewind = %q, want node_3", id)
	}
	if s.Issued() != 3 {
		t.Errorf("Issued() = %d, want 3", s.Issued())
	}
}

func TestStoreDeterministicPlacement(t *testing.T) {
	a, b := newTestStore(), newTestStore()
	ga, ida, _ := a.AddNode(Graph{}, KindDefault)
	gb, idb, _ := b.AddNode(Graph{}, KindDefault)
	na, _ := ga.Node(ida)
	nb, _ := gb.Node(idb)
	if na.Position != nb.Position {
		t.Errorf("positions differ with same seed: %v vs %v", na.Position, nb.Position)
	}
}

func TestStoreMoveNode(t *testing.T) {
	s := newTestStore()
	g, id, _ := s.AddNode(Graph{}, KindDefault)
	g, _, _ = s.AddNode(g, KindOutput)
	other := g.Nodes()[1]

	moved, ok := s.MoveNode(g, id, Position{X: 7, Y: 9})
	if !ok {
		t.Fatal("MoveNode() = false for existing node")
	}
	n, _ := moved.Node(id)
	if n.Position != (Position{X: 7, Y: 9}) {
		t.Errorf("position = %v, want {7 9}", n.Position)
	}
	if got, _ := moved.Node(other.ID); got != other {
		t.Errorf("other node changed: %+v, want %+v", got, other)
	}

	same, ok := s.MoveNode(g, "node_99", Position{})
	if ok {
		t.Error("MoveNode(unknown) = true")
	}
	if !same.Equal(g) {
		t.Error("MoveNode(unknown) changed the graph")
	}
}

func TestStoreViewport(t *testing.T) {
	s := newTestStore()
	s.SetViewport(Viewport{Width: 2, Height: 2})
	if got := s.Viewport(); got != (Viewport{Width: 2, Height: 2}) {
		t.Errorf("Viewport() = %v, want {2 2}", got)
	}
	g, id, _ := s.AddNode(Graph{}, KindDefault)
	n, _ := g.Node(id)
	if n.Position.X >= 1 || n.Position.Y >= 1 {
		t.Errorf("position = %v, want within [0,1)x[0,1)", n.Position)
	}
}
