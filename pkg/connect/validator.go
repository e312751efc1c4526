package connect

import (
	"fmt"
	"strings"

	"github.com/matzehuels/flowedit/pkg/diagram"
	ferrors "github.com/matzehuels/flowedit/pkg/errors"
)

// DefaultEndOfBranchSuffix is appended to the label of a node that connects
// into a circular join point.
const DefaultEndOfBranchSuffix = " - End of Parallel Branch"

// Rule names the connection rule a rejected edge violated.
type Rule string

const (
	RuleSelfLoop           Rule = "self_loop"
	RuleCircularToCircular Rule = "circular_to_circular"
	RuleCrossBranch        Rule = "cross_branch"
	RuleReverseEdge        Rule = "reverse_edge"
)

// Rejection describes why a connection was refused.
type Rejection struct {
	Rule   Rule
	Source diagram.NodeID
	Target diagram.NodeID
	Reason string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("connection %s -> %s rejected (%s): %s", r.Source, r.Target, r.Rule, r.Reason)
}

// Check is the connection guard. It evaluates the rules against the current
// node values, before any branch propagation, and returns nil when the edge
// source -> target may be added. Rules are checked in a fixed order and the
// first violation wins.
func Check(g diagram.Graph, source, target diagram.Node) *Rejection {
	reject := func(rule Rule, reason string) *Rejection {
		return &Rejection{Rule: rule, Source: source.ID, Target: target.ID, Reason: reason}
	}

	switch {
	case source.ID == target.ID:
		return reject(RuleSelfLoop, "a node cannot connect to itself")
	case source.IsCircular() && target.IsCircular():
		return reject(RuleCircularToCircular, "circular nodes cannot be connected to each other")
	case source.HasBranch() && target.HasBranch() && source.Branch != target.Branch:
		return reject(RuleCrossBranch,
			fmt.Sprintf("nodes belong to different branches (%s, %s)", source.Branch, target.Branch))
	case g.HasEdge(target.ID, source.ID):
		return reject(RuleReverseEdge, "an edge already exists in the opposite direction")
	}
	return nil
}

// Options configures a [Validator].
type Options struct {
	// EndOfBranchSuffix is appended to a source label when it connects into a
	// circular node. Defaults to DefaultEndOfBranchSuffix.
	EndOfBranchSuffix string
}

// Outcome is the result of an accepted (or deduplicated) connection.
type Outcome struct {
	// Graph is the graph after the connection. For a duplicate it is the input.
	Graph diagram.Graph

	// Edge is the edge that was added, or the existing one for a duplicate.
	Edge diagram.Edge

	// Assigned is the branch tag given to the target, if any.
	Assigned diagram.Branch

	// EndOfBranch reports whether the source label was marked as the end of its branch.
	EndOfBranch bool

	// Duplicate reports that the edge already existed and nothing changed.
	Duplicate bool
}

// Changed reports whether the outcome carries a new graph to commit.
func (o Outcome) Changed() bool { return !o.Duplicate }

// Validator applies the connection protocol. It holds no per-graph state and
// is safe for concurrent use.
type Validator struct {
	suffix string
}

// New creates a validator.
func New(opts Options) *Validator {
	if opts.EndOfBranchSuffix == "" {
		opts.EndOfBranchSuffix = DefaultEndOfBranchSuffix
	}
	return &Validator{suffix: opts.EndOfBranchSuffix}
}

// TryConnect attempts to add the edge source -> target to g.
//
// Unknown endpoints return a PRECONDITION_UNMET error. A guard violation
// returns a VALIDATION_REJECTED error wrapping a *Rejection. An existing
// identical edge is not an error: the outcome is marked Duplicate and carries
// g unchanged. In every error case g is left untouched.
func (v *Validator) TryConnect(g diagram.Graph, source, target diagram.NodeID) (Outcome, error) {
	src, ok := g.Node(source)
	if !ok {
		return Outcome{Graph: g}, ferrors.Wrap(ferrors.ErrCodePreconditionUnmet, diagram.ErrUnknownNode,
			"connect %s -> %s: source %s not found", source, target, source)
	}
	dst, ok := g.Node(target)
	if !ok {
		return Outcome{Graph: g}, ferrors.Wrap(ferrors.ErrCodePreconditionUnmet, diagram.ErrUnknownNode,
			"connect %s -> %s: target %s not found", source, target, target)
	}

	if e, ok := g.Edge(source, target); ok {
		return Outcome{Graph: g, Edge: e, Duplicate: true}, nil
	}

	if rej := Check(g, src, dst); rej != nil {
		return Outcome{Graph: g}, ferrors.Wrap(ferrors.ErrCodeValidationRejected, rej, "%s", rej.Reason)
	}

	out := Outcome{Edge: diagram.NewEdge(source, target)}
	var updates []diagram.Node

	if next, ok := transition(src, dst); ok {
		out.Assigned = next.Branch
		updates = append(updates, next)
	}
	if dst.IsCircular() {
		out.EndOfBranch = true
		if !strings.HasSuffix(src.Label, v.suffix) {
			src.Label += v.suffix
			updates = append(updates, src)
		}
	}

	next, err := g.WithNodes(updates...)
	if err != nil {
		return Outcome{Graph: g}, ferrors.Wrap(ferrors.ErrCodeInternal, err, "connect %s -> %s", source, target)
	}
	next, err = next.WithEdge(out.Edge)
	if err != nil {
		return Outcome{Graph: g}, ferrors.Wrap(ferrors.ErrCodeInternal, err, "connect %s -> %s", source, target)
	}
	out.Graph = next
	return out, nil
}
