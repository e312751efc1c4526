// Package editor is the boundary between UI shells and the diagram core.
//
// A [Session] owns one diagram: its node store, connection validator, layout
// engine and undo history. Every accepted edit produces exactly one history
// commit; rejected or no-op edits produce none. All operations return
// explicit errors coded with [github.com/matzehuels/flowedit/pkg/errors], so
// a shell can decide between a warning (VALIDATION_REJECTED), a quiet notice
// (PRECONDITION_UNMET) and a hard error.
//
// A [Registry] keeps many sessions for multi-client shells such as the HTTP
// adapter.
//
// # Usage
//
//	s := editor.NewSession(editor.Options{Viewport: diagram.Viewport{Width: 1280, Height: 800}})
//	root, _ := s.AddNode(ctx, diagram.KindDefault)
//	split, _ := s.AddNode(ctx, diagram.KindCircular)
//	if _, err := s.Connect(ctx, root, split); err != nil {
//	    fmt.Println(errors.UserMessage(err))
//	}
//	_ = s.AutoLayout(ctx)
package editor
