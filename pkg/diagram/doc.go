// Package diagram holds the node and edge model of a flow diagram.
//
// # Overview
//
// A [Graph] is an immutable snapshot: every mutation returns a new Graph that
// shares unchanged structure with its predecessor. History can therefore keep
// one Graph per commit without copying, and readers never observe a graph
// changing underneath them.
//
// A [Store] wraps the session-scoped state that snapshots cannot carry: the
// monotonically increasing node counter, the viewport used for initial
// placement, and the random source.
//
// # Identifiers
//
// Node ids are issued as node_1, node_2, ... by [Store.AddNode] and are never
// reused, even after an undo removes the node. Edge ids are derived from the
// ordered endpoint pair ([EdgeIDFor]), so at most one edge exists per
// (source, target).
//
// # Topology
//
// [Graph.Topology] builds an adjacency index used by the connection guard and
// the layout engine. It answers parent/child queries in edge insertion order
// and detects cycles with a three-color depth-first search.
package diagram
