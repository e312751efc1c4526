// Package connect decides whether a proposed edge may be added to a diagram
// and computes the branch tagging that accompanies an accepted edge.
//
// # Protocol
//
// A connection attempt runs in two phases. First the pure guard [Check]
// evaluates the connection rules against the graph as it is:
//
//   - two circular nodes are never connected directly
//   - nodes carrying different branch tags are never connected
//   - an edge is refused when its reverse already exists
//
// Only when the guard passes does the [Validator] apply the branch state
// machine ([BranchState]) and the end-of-branch label rewrite, and append the
// edge. A rejection therefore never leaves partial state behind.
//
// Only the direct reverse edge is checked. Longer cycles are accepted here
// and caught later by the layout engine.
//
// # Branches
//
// A circular source starts a new branch named after its target. Any other
// source hands its own branch to the target. A target receives a tag only
// while it is still unbranched and not circular; once assigned, a tag never
// changes.
package connect
