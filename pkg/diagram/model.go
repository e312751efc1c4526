package diagram

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrInvalidNodeID is returned by [Graph.WithNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrUnknownNode is returned when an operation references a node id that
	// is not part of the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownSourceNode is returned by [Graph.WithEdge] when the source
	// node does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.WithEdge] when the target
	// node does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrDuplicateEdge is returned by [Graph.WithEdge] when an edge with the
	// same ordered (source, target) pair is already stored.
	ErrDuplicateEdge = errors.New("duplicate edge")

	// ErrInvalidKind is returned by [ParseKind] for names outside the fixed set.
	ErrInvalidKind = errors.New("invalid node kind")

	// ErrGraphHasCycle is returned by [Topology.DetectCycle] and
	// [Topology.DetectCycleFrom] when a directed cycle is found.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Kind is the variant of a node. It selects the renderer in the UI shell and
// has no graph semantics, except for [KindCircular], which marks a parallel
// split or join point in the connection protocol.
type Kind string

const (
	KindCircular Kind = "circular"
	KindIcon     Kind = "iconNode"
	KindImage    Kind = "imageNode"
	KindDefault  Kind = "default"
	KindInput    Kind = "input"
	KindOutput   Kind = "output"
	KindCustom   Kind = "custom"
)

// Kinds lists every valid node kind in display order.
var Kinds = []Kind{KindCircular, KindIcon, KindImage, KindDefault, KindInput, KindOutput, KindCustom}

// ParseKind converts a kind name into a Kind.
// Names are case-sensitive and must match one of [Kinds].
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// IsCircular reports whether k is the structurally special circular kind.
func (k Kind) IsCircular() bool { return k == KindCircular }

// Title returns the kind with its first letter upper-cased, as used in labels.
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// NodeID identifies a node. IDs are issued by [Store] as node_1, node_2, ...
// and are never reused within a session.
type NodeID string

// NodeIDFor returns the identifier for the n-th issued node.
func NodeIDFor(n uint64) NodeID {
	return NodeID(fmt.Sprintf("node_%d", n))
}

// Branch tags the nodes reachable from a common circular split point.
// The empty Branch means the node is unbranched.
type Branch string

// BranchFor returns the branch tag started by a circular node connecting to target.
func BranchFor(target NodeID) Branch {
	return Branch("branch_" + string(target))
}

// Position is a 2D coordinate in viewport space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Finite reports whether both coordinates are finite.
func (p Position) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Node is an immutable vertex record. Graph operations replace nodes rather
// than modifying them, so a Node read from a snapshot never changes.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     Kind     `json:"type"`
	Position Position `json:"position"`
	Label    string   `json:"label"`
	Branch   Branch   `json:"branch,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
}

// IsCircular reports whether the node is of kind circular.
func (n Node) IsCircular() bool { return n.Kind.IsCircular() }

// HasBranch reports whether a branch tag has been assigned to the node.
func (n Node) HasBranch() bool { return n.Branch != "" }

// EdgeID identifies an edge. It is derived from the ordered endpoint pair.
type EdgeID string

// EdgeIDFor derives the edge id for source -> target.
// Node ids never contain '-', so the encoding is unambiguous.
func EdgeIDFor(source, target NodeID) EdgeID {
	return EdgeID("e" + string(source) + "-" + string(target))
}

// Edge is a directed connection between two existing nodes.
type Edge struct {
	ID     EdgeID `json:"id"`
	Source NodeID `json:"source"`
	Target NodeID `json:"target"`
}

// NewEdge returns the edge source -> target with its derived id.
func NewEdge(source, target NodeID) Edge {
	return Edge{ID: EdgeIDFor(source, target), Source: source, Target: target}
}
