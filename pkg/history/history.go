// Package history keeps a linear undo/redo timeline of diagram snapshots.
//
// Every entry is a full [diagram.Graph]. Because graphs share structure, a
// snapshot costs only the nodes that changed since the previous one.
//
// Committing after an undo discards the redo tail; there is no branching
// timeline. Index 0 always holds the seed state and is never removed, so
// 0 <= Index() < Len() holds at all times.
package history

import "github.com/matzehuels/flowedit/pkg/diagram"

// Action names the user action that produced a snapshot.
type Action string

const (
	ActionInit     Action = "init"
	ActionAddNode  Action = "add_node"
	ActionConnect  Action = "connect"
	ActionMoveNode Action = "move_node"
	ActionLayout   Action = "layout"
)

// Entry is one committed snapshot.
type Entry struct {
	Graph  diagram.Graph
	Action Action
}

// Manager holds the timeline. It is not safe for concurrent use.
type Manager struct {
	entries []Entry
	index   int
}

// New creates a timeline whose only entry is initial.
func New(initial diagram.Graph) *Manager {
	return &Manager{entries: []Entry{{Graph: initial, Action: ActionInit}}}
}

// Commit truncates any redo tail, appends g, and makes it current.
func (m *Manager) Commit(g diagram.Graph, action Action) {
	m.entries = append(m.entries[:m.index+1], Entry{Graph: g, Action: action})
	m.index = len(m.entries) - 1
}

// Undo steps back one entry and returns it. At index 0 it returns the
// current entry and false.
func (m *Manager) Undo() (Entry, bool) {
	if !m.CanUndo() {
		return m.Current(), false
	}
	m.index--
	return m.Current(), true
}

// Redo steps forward one entry and returns it. At the last entry it returns
// the current entry and false.
func (m *Manager) Redo() (Entry, bool) {
	if !m.CanRedo() {
		return m.Current(), false
	}
	m.index++
	return m.Current(), true
}

// Current returns the entry at the current index.
func (m *Manager) Current() Entry { return m.entries[m.index] }

// Index returns the current position in the timeline.
func (m *Manager) Index() int { return m.index }

// Len returns the number of entries, including the seed.
func (m *Manager) Len() int { return len(m.entries) }

// CanUndo reports whether Undo would move.
func (m *Manager) CanUndo() bool { return m.index > 0 }

// CanRedo reports whether Redo would move.
func (m *Manager) CanRedo() bool { return m.index < len(m.entries)-1 }

// Entries returns a copy of the timeline.
func (m *Manager) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// UndoAction returns the action Undo would revert, if any.
func (m *Manager) UndoAction() (Action, bool) {
	if !m.CanUndo() {
		return "", false
	}
	return m.entries[m.index].Action, true
}

// RedoAction returns the action Redo would reapply, if any.
func (m *Manager) RedoAction() (Action, bool) {
	if !m.CanRedo() {
		return "", false
	}
	return m.entries[m.index+1].Action, true
}
