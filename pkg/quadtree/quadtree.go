// Package quadtree is a region quadtree over segment endpoints. Leaves hold
// at most two items until a minimum region size is reached, after which a
// leaf keeps every item it is given. It answers one query: the nearest item
// to a point that is neither excluded nor already visited.
//
// A Tree is built once and then only queried. It is not safe to insert and
// query concurrently.
package quadtree

import (
	"fmt"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

const (
	// LeafCapacity is the number of items a leaf holds before it splits.
	LeafCapacity = 2
	// DefaultMinDiagonal2 is the squared diagonal below which a leaf no
	// longer splits.
	DefaultMinDiagonal2 = 0.01
)

// Item is a point reference stored in the tree. ID is the caller's index for
// the point (a registry id); Coords is its position.
type Item struct {
	ID     int
	Coords v2.Vec
}

// OutOfBoundsError is returned by Insert for a point outside the root region.
// The root region must cover every point, so this indicates a caller bug.
type OutOfBoundsError struct {
	Item   Item
	Region Box
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("quadtree: point %d at (%g,%g) is outside region %s",
		e.Item.ID, e.Item.Coords.X, e.Item.Coords.Y, e.Region)
}

// NoEligibleNeighborError is returned by NearestUnvisited when the leaf
// containing the query holds no usable candidate.
type NoEligibleNeighborError struct {
	Query     v2.Vec
	ExcludeID int
	LeafSize  int
}

func (e *NoEligibleNeighborError) Error() string {
	return fmt.Sprintf("quadtree: no unvisited neighbor near (%g,%g) excluding point %d (leaf holds %d)",
		e.Query.X, e.Query.Y, e.ExcludeID, e.LeafSize)
}

type node struct {
	region   Box
	items    []Item
	children *[4]node // nil for a leaf
}

// Tree is a point quadtree rooted at a fixed region.
type Tree struct {
	root     node
	minDiag2 float64
	n        int
}

// Option configures a Tree.
type Option func(*Tree)

// WithMinDiagonal2 sets the squared diagonal below which leaves stop
// splitting. Non-positive values are ignored, since they would let
// coincident points split forever.
func WithMinDiagonal2(d2 float64) Option {
	return func(t *Tree) {
		if d2 > 0 {
			t.minDiag2 = d2
		}
	}
}

// New returns an empty tree covering region.
func New(region Box, opts ...Option) *Tree {
	t := &Tree{
		root:     node{region: region, items: make([]Item, 0, LeafCapacity)},
		minDiag2: DefaultMinDiagonal2,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Region returns the root region.
func (t *Tree) Region() Box {
	return t.root.region
}

// MinDiagonal2 returns the leaf split threshold.
func (t *Tree) MinDiagonal2() float64 {
	return t.minDiag2
}

// Len returns the number of inserted items.
func (t *Tree) Len() int {
	return t.n
}

// Insert adds an item. Items outside the root region are rejected with an
// *OutOfBoundsError and the tree is left unchanged.
func (t *Tree) Insert(it Item) error {
	if !t.root.region.Contains(it.Coords) {
		return &OutOfBoundsError{Item: it, Region: t.root.region}
	}
	t.root.insert(it, t.minDiag2)
	t.n++
	return nil
}

func (n *node) insert(it Item, minDiag2 float64) {
	if (n.children == nil && len(n.items) < LeafCapacity) || n.region.Diagonal2() < minDiag2 {
		n.items = append(n.items, it)
		return
	}
	if n.children == nil {
		n.split(minDiag2)
	}
	n.children[n.region.Quadrant(it.Coords)].insert(it, minDiag2)
}

// split turns a full leaf into an internal node and moves its items down.
func (n *node) split(minDiag2 float64) {
	n.children = new([4]node)
	for q := range n.children {
		n.children[q] = node{region: n.region.Child(q), items: make([]Item, 0, LeafCapacity)}
	}
	for _, it := range n.items {
		n.children[n.region.Quadrant(it.Coords)].insert(it, minDiag2)
	}
	n.items = nil
}

// leafFor descends to the leaf whose region holds p. Points outside the
// root follow the same quadrant rule and end in an edge leaf.
func (t *Tree) leafFor(p v2.Vec) *node {
	n := &t.root
	for n.children != nil {
		n = &n.children[n.region.Quadrant(p)]
	}
	return n
}

// NearestUnvisited returns the id of the best neighbor of query in the leaf
// containing it.
//
// A leaf holding exactly two items, one of which is excludeID, yields the
// other one. That is the clean case: the query point and the matching
// endpoint of the adjacent segment. Any other leaf is scanned for the
// item closest to query whose id is not excludeID and not marked in visited;
// equal distances resolve to the smaller id. visited is indexed by id and
// ids beyond its length count as unvisited.
//
// A *NoEligibleNeighborError is returned if no candidate qualifies,
// including when the clean-case partner has already been visited.
func (t *Tree) NearestUnvisited(query v2.Vec, excludeID int, visited []bool) (int, error) {
	leaf := t.leafFor(query)
	seen := func(id int) bool {
		return id >= 0 && id < len(visited) && visited[id]
	}

	if len(leaf.items) == LeafCapacity {
		a, b := leaf.items[0], leaf.items[1]
		var other *Item
		switch {
		case a.ID == excludeID && b.ID != excludeID:
			other = &leaf.items[1]
		case b.ID == excludeID && a.ID != excludeID:
			other = &leaf.items[0]
		}
		if other != nil {
			if seen(other.ID) {
				return -1, &NoEligibleNeighborError{Query: query, ExcludeID: excludeID, LeafSize: len(leaf.items)}
			}
			return other.ID, nil
		}
	}

	best, bestD2 := -1, 0.0
	for _, it := range leaf.items {
		if it.ID == excludeID || seen(it.ID) {
			continue
		}
		dx, dy := it.Coords.X-query.X, it.Coords.Y-query.Y
		d2 := dx*dx + dy*dy
		if best < 0 || d2 < bestD2 || (d2 == bestD2 && it.ID < best) {
			best, bestD2 = it.ID, d2
		}
	}
	if best < 0 {
		return -1, &NoEligibleNeighborError{Query: query, ExcludeID: excludeID, LeafSize: len(leaf.items)}
	}
	return best, nil
}

// Leaf describes one leaf for inspection.
type Leaf struct {
	Region Box
	Items  []Item
	Depth  int
}

// Walk calls fn for every leaf in depth-first quadrant order. fn must not
// modify Items.
func (t *Tree) Walk(fn func(Leaf)) {
	t.root.walk(0, fn)
}

func (n *node) walk(depth int, fn func(Leaf)) {
	if n.children == nil {
		fn(Leaf{Region: n.region, Items: n.items, Depth: depth})
		return
	}
	for q := range n.children {
		n.children[q].walk(depth+1, fn)
	}
}

// Stats summarizes the shape of a tree.
type Stats struct {
	Items      int
	Leaves     int
	MaxDepth   int
	MaxLeaf    int // most items in a single leaf
	Overfilled int // leaves holding more than LeafCapacity items
}

// Stats walks the tree and reports its shape.
func (t *Tree) Stats() Stats {
	s := Stats{Items: t.n}
	t.Walk(func(l Leaf) {
		s.Leaves++
		if l.Depth > s.MaxDepth {
			s.MaxDepth = l.Depth
		}
		if len(l.Items) > s.MaxLeaf {
			s.MaxLeaf = len(l.Items)
		}
		if len(l.Items) > LeafCapacity {
			s.Overfilled++
		}
	})
	return s
}
