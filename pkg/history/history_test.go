package history

import (
	"testing"

	"github.com/matzehuels/flowedit/pkg/diagram"
)

func graphWith(t *testing.T, ids ...diagram.NodeID) diagram.Graph {
	t.Helper()
	var g diagram.Graph
	for _, id := range ids {
		var err error
		if g, err = g.WithNode(diagram.Node{ID: id, Kind: diagram.KindDefault}); err != nil {
			t.Fatalf("WithNode() error: %v", err)
		}
	}
	return g
}

func checkInvariant(t *testing.T, m *Manager) {
	t.Helper()
	if m.Index() < 0 || m.Index() >= m.Len() {
		t.Fatalf("Index() = %d outside [0, %d)", m.Index(), m.Len())
	}
}

func TestNew(t *testing.T) {
	m := New(diagram.Graph{})
	if m.Len() != 1 || m.Index() != 0 {
		t.Errorf("Len/Index = %d/%d, want 1/0", m.Len(), m.Index())
	}
	if m.CanUndo() || m.CanRedo() {
		t.Error("fresh history can undo or redo")
	}
	if m.Current().Action != ActionInit {
		t.Errorf("seed action = %s, want %s", m.Current().Action, ActionInit)
	}
}

func TestUndoRedoAtEnds(t *testing.T) {
	m := New(diagram.Graph{})
	if _, ok := m.Undo(); ok {
		t.Error("Undo() at index 0 = true")
	}
	if _, ok := m.Redo(); ok {
		t.Error("Redo() at last index = true")
	}
	checkInvariant(t, m)
}

func TestUndoRestoresSnapshots(t *testing.T) {
	states := []diagram.Graph{
		{},
		graphWith(t, "node_1"),
		graphWith(t, "node_1", "node_2"),
		graphWith(t, "node_1", "node_2", "node_3"),
	}
	m := New(states[0])
	for _, g := range states[1:] {
		m.Commit(g, ActionAddNode)
		checkInvariant(t, m)
	}

	for k := len(states) - 2; k >= 0; k-- {
		e, ok := m.Undo()
		if !ok {
			t.Fatalf("Undo() = false at index %d", m.Index())
		}
		if !e.Graph.Equal(states[k]) {
			t.Errorf("Undo() to %d: graph mismatch", k)
		}
		checkInvariant(t, m)
	}

	for k := 1; k < len(states); k++ {
		e, ok := m.Redo()
		if !ok {
			t.Fatalf("Redo() = false at index %d", m.Index())
		}
		if !e.Graph.Equal(states[k]) {
			t.Errorf("Redo() to %d: graph mismatch", k)
		}
	}
}

func TestCommitTruncatesRedo(t *testing.T) {
	m := New(diagram.Graph{})
	m.Commit(graphWith(t, "node_1"), ActionAddNode)
	m.Commit(graphWith(t, "node_1", "node_2"), ActionAddNode)
	m.Undo()
	m.Undo()

	branch := graphWith(t, "node_3")
	m.Commit(branch, ActionAddNode)

	if m.Len() != 2 || m.Index() != 1 {
		t.Errorf("Len/Index = %d/%d, want 2/1", m.Len(), m.Index())
	}
	if m.CanRedo() {
		t.Error("CanRedo() = true after commit")
	}
	if !m.Current().Graph.Equal(branch) {
		t.Error("Current() is not the committed graph")
	}
}

func TestEntriesIsCopy(t *testing.T) {
	m := New(diagram.Graph{})
	m.Commit(graphWith(t, "node_1"), ActionAddNode)
	entries := m.Entries()
	entries[0].Action = "tampered"
	if m.Entries()[0].Action != ActionInit {
		t.Error("Entries() exposes internal slice")
	}
}

func TestActions(t *testing.T) {
	m := New(diagram.Graph{})
	m.Commit(graphWith(t, "node_1"), ActionAddNode)
	m.Commit(graphWith(t, "node_1"), ActionLayout)

	if a, ok := m.UndoAction(); !ok || a != ActionLayout {
		t.Errorf("UndoAction() = %s, %v, want layout", a, ok)
	}
	if _, ok := m.RedoAction(); ok {
		t.Error("RedoAction() = true at end")
	}
	m.Undo()
	if a, ok := m.RedoAction(); !ok || a != ActionLayout {
		t.Errorf("RedoAction() = %s, %v, want layout", a, ok)
	}
	m.Undo()
	if _, ok := m.UndoAction(); ok {
		t.Error("UndoAction() = true at seed")
	}
}
