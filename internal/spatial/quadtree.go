// Package spatial provides a quadtree index over bounding boxes for region
// queries and point hit-testing.
package spatial

import "github.com/venkeey/viscanvas-sub000/internal/geom"

const (
	DefaultCapacity = 4
	DefaultMaxDepth = 8
)

// Item is anything the tree can index.
type Item interface {
	ID() string
	Bounds() geom.Rect
	HitTest(p geom.Point) bool
}

// Tree is a region quadtree. An item whose box straddles a subdivision
// boundary is stored in every child it overlaps. Removal and update never
// rebalance; leaves may end up unevenly split over time.
type Tree[T Item] struct {
	root     *node[T]
	capacity int
	maxDepth int
}

type node[T Item] struct {
	bounds   geom.Rect
	depth    int
	items    []T
	children *[4]*node[T] // NW, NE, SW, SE
}

// Option configures a Tree.
type Option func(*options)

type options struct {
	capacity int
	maxDepth int
}

// WithCapacity sets the number of items a leaf holds before subdividing.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithMaxDepth sets the depth below which leaves no longer subdivide.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxDepth = n
		}
	}
}

// New creates an empty tree covering bounds.
func New[T Item](bounds geom.Rect, opts ...Option) *Tree[T] {
	o := options{capacity: DefaultCapacity, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}
	return &Tree[T]{
		root:     &node[T]{bounds: bounds},
		capacity: o.capacity,
		maxDepth: o.maxDepth,
	}
}

// Bounds returns the root bounds.
func (t *Tree[T]) Bounds() geom.Rect {
	return t.root.bounds
}

// Insert adds item to every node its box overlaps. It returns false, and
// stores nothing, when the box lies outside the root bounds.
func (t *Tree[T]) Insert(item T) bool {
	if !t.root.bounds.Overlaps(item.Bounds()) {
		return false
	}
	t.insert(t.root, item)
	return true
}

func (t *Tree[T]) insert(n *node[T], item T) {
	if n.children != nil {
		box := item.Bounds()
		for _, child := range n.children {
			if child.bounds.Overlaps(box) {
				t.insert(child, item)
			}
		}
		return
	}

	n.items = append(n.items, item)
	if len(n.items) > t.capacity && n.depth < t.maxDepth {
		t.subdivide(n)
	}
}

// subdivide splits a leaf and pushes its items down to the children they overlap.
func (t *Tree[T]) subdivide(n *node[T]) {
	quads := n.bounds.Quadrants()
	n.children = &[4]*node[T]{}
	for i, q := range quads {
		n.children[i] = &node[T]{bounds: q, depth: n.depth + 1}
	}

	items := n.items
	n.items = nil
	for _, item := range items {
		box := item.Bounds()
		for _, child := range n.children {
			if child.bounds.Overlaps(box) {
				t.insert(child, item)
			}
		}
	}
}

// Remove deletes every reference to id. All branches are visited since an id
// may be stored under more than one child.
func (t *Tree[T]) Remove(id string) bool {
	return remove(t.root, id)
}

func remove[T Item](n *node[T], id string) bool {
	removed := false
	kept := n.items[:0]
	for _, item := range n.items {
		if item.ID() == id {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	clear(n.items[len(kept):])
	n.items = kept

	if n.children != nil {
		for _, child := range n.children {
			if remove(child, id) {
				removed = true
			}
		}
	}
	return removed
}

// Update re-indexes item: Remove followed by Insert.
func (t *Tree[T]) Update(item T) bool {
	t.Remove(item.ID())
	return t.Insert(item)
}

// Query returns every item whose box overlaps r. Results are de-duplicated by
// id, in first-visited order.
func (t *Tree[T]) Query(r geom.Rect) []T {
	var out []T
	seen := make(map[string]struct{})
	query(t.root, r, seen, &out)
	return out
}

func query[T Item](n *node[T], r geom.Rect, seen map[string]struct{}, out *[]T) {
	for _, item := range n.items {
		if _, dup := seen[item.ID()]; dup {
			continue
		}
		if item.Bounds().Overlaps(r) {
			seen[item.ID()] = struct{}{}
			*out = append(*out, item)
		}
	}
	if n.children == nil {
		return
	}
	for _, child := range n.children {
		if child.bounds.Overlaps(r) {
			query(child, r, seen, out)
		}
	}
}

// HitTest returns the topmost item whose shape contains p. Children are
// searched in reverse order and items within a node from last inserted to
// first, so later insertions win.
func (t *Tree[T]) HitTest(p geom.Point) (T, bool) {
	return hitTest(t.root, p)
}

func hitTest[T Item](n *node[T], p geom.Point) (T, bool) {
	if n.children != nil {
		for i := len(n.children) - 1; i >= 0; i-- {
			child := n.children[i]
			if !child.bounds.Contains(p) {
				continue
			}
			if hit, ok := hitTest(child, p); ok {
				return hit, true
			}
		}
	}
	for i := len(n.items) - 1; i >= 0; i-- {
		item := n.items[i]
		if item.Bounds().Contains(p) && item.HitTest(p) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Clear resets the tree to a single empty leaf.
func (t *Tree[T]) Clear() {
	t.root = &node[T]{bounds: t.root.bounds}
}

// Len returns the number of distinct ids stored.
func (t *Tree[T]) Len() int {
	seen := make(map[string]struct{})
	walk(t.root, func(n *node[T]) {
		for _, item := range n.items {
			seen[item.ID()] = struct{}{}
		}
	})
	return len(seen)
}

// Depth returns the depth of the deepest node.
func (t *Tree[T]) Depth() int {
	depth := 0
	walk(t.root, func(n *node[T]) {
		depth = max(depth, n.depth)
	})
	return depth
}

func walk[T Item](n *node[T], fn func(*node[T])) {
	fn(n)
	if n.children == nil {
		return
	}
	for _, child := range n.children {
		walk(child, fn)
	}
}
