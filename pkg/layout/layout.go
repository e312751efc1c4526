// Package layout computes tree positions for a flow diagram.
//
// The engine places the root at the horizontal center of the viewport and
// lays each node's children out left to right beneath it, splitting the
// parent's horizontal budget evenly between them. A node reached along
// several paths receives one proposal per path; its final position takes the
// mean of the proposed x values and the deepest proposed y, so merge points
// sit below every branch that feeds them.
//
// Proposals are never materialized. A child's proposed x and budget are
// linear in its parent's, so per-node sums over all paths carry forward in
// one pass over the reachable nodes in topological order: O(N+E) regardless
// of how many paths the graph has.
//
// Layout is deterministic: the same graph and width always produce the same
// positions. Nodes the root cannot reach keep their current position.
package layout

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/matzehuels/flowedit/pkg/diagram"
)

var (
	// ErrNoRoot is returned when every node has an incoming edge (or the
	// graph is empty), so there is nothing to anchor the tree on.
	ErrNoRoot = errors.New("no node without incoming edges")

	// ErrCycleDetected is returned when a directed cycle is reachable from
	// the root. Layout would otherwise never terminate.
	ErrCycleDetected = errors.New("cycle reachable from layout root")
)

// Default option values.
const (
	DefaultRootY     = 100.0
	DefaultRowHeight = 200.0
	DefaultSpread    = 0.75
)

// Options tunes the geometry of the tree.
type Options struct {
	// RootY is the vertical position of the root.
	RootY float64

	// RowHeight is the vertical distance between a parent and its children.
	RowHeight float64

	// Spread is the fraction of the viewport width given to the root's subtree.
	Spread float64
}

// DefaultOptions returns the standard tree geometry.
func DefaultOptions() Options {
	return Options{RootY: DefaultRootY, RowHeight: DefaultRowHeight, Spread: DefaultSpread}
}

func (o Options) withDefaults() Options {
	if o.RootY == 0 {
		o.RootY = DefaultRootY
	}
	if o.RowHeight == 0 {
		o.RowHeight = DefaultRowHeight
	}
	if o.Spread == 0 {
		o.Spread = DefaultSpread
	}
	return o
}

// Plan is the outcome of a layout pass before it is applied to a graph.
type Plan struct {
	// Root is the node the tree was anchored on.
	Root diagram.NodeID

	// Positions holds the final position of every node reached from Root.
	Positions map[diagram.NodeID]diagram.Position

	// Proposals counts how many positions were proposed in total, one per
	// root-to-node path. It exceeds len(Positions) when the graph has merge
	// points and saturates at math.MaxInt.
	Proposals int
}

// Engine computes layouts. It is stateless and safe for concurrent use.
type Engine struct {
	opts Options
}

// New creates an engine. Zero fields fall back to the defaults.
func New(opts Options) *Engine {
	return &Engine{opts: opts.withDefaults()}
}

// Options returns the engine's effective options.
func (e *Engine) Options() Options { return e.opts }

// Compute returns g with every node reachable from the root repositioned.
// On ErrNoRoot or ErrCycleDetected, g is returned unchanged.
func (e *Engine) Compute(g diagram.Graph, width float64) (diagram.Graph, error) {
	plan, err := e.Plan(g, width)
	if err != nil {
		return g, err
	}
	return g.WithPositions(plan.Positions), nil
}

// Plan computes positions without applying them.
func (e *Engine) Plan(g diagram.Graph, width float64) (Plan, error) {
	topo := g.Topology()
	root, ok := topo.Root()
	if !ok {
		return Plan{}, ErrNoRoot
	}
	if err := topo.DetectCycleFrom(root); err != nil {
		return Plan{}, fmt.Errorf("%w: starting at %s", ErrCycleDetected, root)
	}

	order := topoOrder(topo, root)
	acc := make(map[diagram.NodeID]*paths, len(order))
	acc[root] = &paths{
		sums: []float64{1, width / 2, e.opts.Spread * width},
		maxY: e.opts.RootY,
	}

	plan := Plan{Root: root, Positions: make(map[diagram.NodeID]diagram.Position, len(order))}
	var proposals float64
	for _, id := range order {
		a := acc[id]
		plan.Positions[id] = a.position()
		proposals += a.count()

		children := topo.Children(id)
		k := float64(len(children))
		for i, child := range children {
			// Per path: x' = x + b*(i-(k-1)/2)/k and b' = b/k.
			offset := (float64(i) - (k-1)/2) / k
			contrib := []float64{a.count(), a.sumX() + offset*a.sumBudget(), a.sumBudget() / k}
			c, ok := acc[child]
			if !ok {
				acc[child] = &paths{sums: contrib, maxY: a.maxY + e.opts.RowHeight}
				continue
			}
			floats.Add(c.sums, contrib)
			c.maxY = math.Max(c.maxY, a.maxY+e.opts.RowHeight)
		}
	}
	plan.Proposals = saturate(proposals)
	return plan, nil
}

// paths aggregates every root-to-node path reaching one node: the path
// count, the sum of proposed x, and the sum of per-path budgets, plus the
// deepest proposed y.
type paths struct {
	sums []float64 // count, sum x, sum budget
	maxY float64
}

func (p *paths) count() float64     { return p.sums[0] }
func (p *paths) sumX() float64      { return p.sums[1] }
func (p *paths) sumBudget() float64 { return p.sums[2] }

func (p *paths) position() diagram.Position {
	return diagram.Position{X: p.sumX() / p.count(), Y: p.maxY}
}

// topoOrder lists the nodes reachable from root so that every node comes
// after all of its reachable parents. The subgraph must be acyclic.
func topoOrder(topo *diagram.Topology, root diagram.NodeID) []diagram.NodeID {
	reach := topo.Reachable(root)
	indeg := make(map[diagram.NodeID]int, len(reach))
	for _, id := range reach {
		for _, child := range topo.Children(id) {
			indeg[child]++
		}
	}

	order := make([]diagram.NodeID, 0, len(reach))
	queue := []diagram.NodeID{root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, child := range topo.Children(id) {
			indeg[child]--
			if indeg[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	return order
}

func saturate(f float64) int {
	if f >= math.MaxInt {
		return math.MaxInt
	}
	return int(f)
}
