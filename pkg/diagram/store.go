package diagram

import (
	"math/rand/v2"
	"strconv"
)

// DefaultImageURL is the image attached to new image nodes when none is configured.
const DefaultImageURL = "logo_1.png"

// placementRatio bounds random initial placement to the top-left part of the viewport.
const placementRatio = 0.5

// Viewport is the drawing area reported by the UI shell.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// StoreOptions configures a [Store].
type StoreOptions struct {
	// Viewport bounds the random initial placement of new nodes.
	Viewport Viewport

	// Seed makes initial placement reproducible.
	Seed uint64

	// ImageURL is attached to every new image node. Defaults to DefaultImageURL.
	ImageURL string
}

// Store creates and moves nodes on top of immutable [Graph] values.
//
// It owns the session-scoped node counter: ids are issued as node_1, node_2, ...
// and the counter only ever moves forward, so ids of nodes removed by an undo
// are never handed out again. A Store is not safe for concurrent use; the
// editing session serializes access.
type Store struct {
	next     uint64
	viewport Viewport
	rng      *rand.Rand
	imageURL string
}

// NewStore creates a store whose counter starts at 1.
func NewStore(opts StoreOptions) *Store {
	if opts.ImageURL == "" {
		opts.ImageURL = DefaultImageURL
	}
	seed := opts.Seed
	return &Store{
		next:     1,
		viewport: opts.Viewport,
		rng:      rand.New(rand.NewPCG(seed, seed^0xdeadbeef)),
		imageURL: opts.ImageURL,
	}
}

// Viewport returns the current viewport.
func (s *Store) Viewport() Viewport { return s.viewport }

// SetViewport updates the viewport used for subsequent placements.
func (s *Store) SetViewport(v Viewport) { s.viewport = v }

// Issued returns how many node ids have been handed out so far.
func (s *Store) Issued() uint64 { return s.next - 1 }

// AddNode returns g augmented with a new node of the given kind, and the new
// node's id. The label is derived from the kind and the counter value, and the
// node is placed at a random point of the upper-left quarter of the viewport.
//
// An invalid kind returns an error wrapping ErrInvalidKind and does not
// advance the counter.
func (s *Store) AddNode(g Graph, kind Kind) (Graph, NodeID, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return g, "", err
	}

	n := s.next
	node := Node{
		ID:       NodeIDFor(n),
		Kind:     kind,
		Label:    kind.Title() + " Node " + strconv.FormatUint(n, 10),
		Position: s.randomPosition(),
	}
	if kind == KindImage {
		node.ImageURL = s.imageURL
	}

	out, err := g.WithNode(node)
	if err != nil {
		return g, "", err
	}
	s.next++
	return out, node.ID, nil
}

// MoveNode returns g with the position of node id replaced. No other node is
// touched. If id is absent, g is returned unchanged together with false.
func (s *Store) MoveNode(g Graph, id NodeID, pos Position) (Graph, bool) {
	if !g.HasNode(id) {
		return g, false
	}
	return g.WithPositions(map[NodeID]Position{id: pos}), true
}

func (s *Store) randomPosition() Position {
	return Position{
		X: s.rng.Float64() * s.viewport.Width * placementRatio,
		Y: s.rng.Float64() * s.viewport.Height * placementRatio,
	}
}
