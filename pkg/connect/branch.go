package connect

import "github.com/matzehuels/flowedit/pkg/diagram"

// BranchState is the branch membership of a single node.
// The zero value is Unbranched. Branched is terminal.
type BranchState struct {
	tag diagram.Branch
}

// Unbranched is the state of every node at creation.
var Unbranched = BranchState{}

// Branched returns the state of a node tagged with tag.
func Branched(tag diagram.Branch) BranchState {
	return BranchState{tag: tag}
}

// StateOf reads the branch state of n.
func StateOf(n diagram.Node) BranchState {
	return BranchState{tag: n.Branch}
}

// IsBranched reports whether a tag has been assigned.
func (s BranchState) IsBranched() bool { return s.tag != "" }

// Tag returns the assigned tag, or "" when unbranched.
func (s BranchState) Tag() diagram.Branch { return s.tag }

func (s BranchState) String() string {
	if !s.IsBranched() {
		return "unbranched"
	}
	return "branched(" + string(s.tag) + ")"
}

// candidate returns the tag an edge from source to target would propagate.
// A circular source starts a new branch named after the target; any other
// source passes on its own tag, if it has one.
func candidate(source diagram.Node, target diagram.NodeID) (diagram.Branch, bool) {
	if source.IsCircular() {
		return diagram.BranchFor(target), true
	}
	if source.HasBranch() {
		return source.Branch, true
	}
	return "", false
}

// transition applies an edge-connect event to the target node. It returns the
// updated node and true when the target moved from Unbranched to Branched.
// Circular targets never take a tag.
func transition(source, target diagram.Node) (diagram.Node, bool) {
	if StateOf(target).IsBranched() || target.IsCircular() {
		return target, false
	}
	tag, ok := candidate(source, target.ID)
	if !ok {
		return target, false
	}
	target.Branch = tag
	return target, true
}
