// Package pkg provides the core libraries for flowedit, the graph-state core
// of an interactive flow-diagram editor.
//
// # Overview
//
// A flow diagram is a set of typed nodes joined by directed edges. Circular
// nodes act as split and join points for parallel branches. The pkg directory
// is organized around the four things an editor needs:
//
//  1. [diagram] - Nodes, edges, the immutable graph and the node store
//  2. [connect] - Connection rules and branch propagation
//  3. [layout] - Top-down tree layout
//  4. [history] - Linear undo/redo over graph snapshots
//
// [editor] composes them into a session that shells (CLI, TUI, HTTP) drive.
//
// # Architecture
//
// Every edit flows through the same steps:
//
//	shell (cli, tui, server)
//	         ↓
//	    [editor] Session (lock, log, hooks)
//	         ↓
//	    [diagram] / [connect] / [layout] (pure: graph in, graph out)
//	         ↓
//	    [history] Commit
//
// Graphs are persistent values, so a committed snapshot never changes and
// undo restores it exactly.
//
// # Quick Start
//
//	s := editor.NewSession(editor.Options{Viewport: diagram.Viewport{Width: 1280, Height: 800}})
//
//	split, _ := s.AddNode(ctx, diagram.KindCircular)
//	step, _ := s.AddNode(ctx, diagram.KindDefault)
//	if _, err := s.Connect(ctx, split, step); err != nil {
//	    fmt.Println(errors.UserMessage(err))
//	}
//	_ = s.AutoLayout(ctx)
//	s.Undo(ctx)
//
// # Supporting Packages
//
// [errors] - Coded errors shared by every package. Shells map codes to
// messages, notices, or HTTP statuses.
//
// [config] - TOML configuration (viewport, layout geometry, labels, server).
//
// [observability] - Hook interfaces for metrics without coupling the core to
// a metrics library.
//
// [buildinfo] - Version information injected at build time.
//
// [diagram]: https://pkg.go.dev/github.com/matzehuels/flowedit/pkg/diagram
// [connect]: https://pkg.go.dev/github.com/matzehuels/flowedit/pkg/connect
// [layout]: https://pkg.go.dev/github.com/matzehuels/flowedit/pkg/layout
// [history]: https://pkg.go.dev/github.com/matzehuels/flowedit/pkg/history
// [editor]: https://pkg.go.dev/github.com/matzehuels/flowedit/pkg/editor
// [errors]: https://pkg.go.dev/github.com/matzehuels/flowedit/pkg/errors
// [config]: https://pkg.go.dev/github.com/matzehuels/flowedit/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/flowedit/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/flowedit/pkg/buildinfo
package pkg
