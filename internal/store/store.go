// Package store keeps the canvas objects in insertion order with an id map
// and a mirrored quadtree. All three views are mutated together.
package store

import (
	"slices"

	"github.com/venkeey/viscanvas-sub000/internal/geom"
	"github.com/venkeey/viscanvas-sub000/internal/object"
	"github.com/venkeey/viscanvas-sub000/internal/spatial"
)

// DefaultExtent is the half-width of the indexed world square.
const DefaultExtent = 1e6

// Store is the object repository. It is not safe for concurrent use; the
// engine serializes access.
type Store struct {
	objects []object.Object
	byID    map[string]object.Object
	index   *spatial.Tree[object.Object]

	// overflow holds objects whose bounds fall outside the index root.
	overflow map[string]struct{}
}

// Options configures the mirrored index.
type Options struct {
	Extent   float64
	Capacity int
	MaxDepth int
}

// New creates an empty store.
func New(opts Options) *Store {
	if opts.Extent <= 0 {
		opts.Extent = DefaultExtent
	}
	var treeOpts []spatial.Option
	if opts.Capacity > 0 {
		treeOpts = append(treeOpts, spatial.WithCapacity(opts.Capacity))
	}
	if opts.MaxDepth > 0 {
		treeOpts = append(treeOpts, spatial.WithMaxDepth(opts.MaxDepth))
	}
	bounds := geom.RectAround(geom.Point{}, opts.Extent)
	return &Store{
		byID:     make(map[string]object.Object),
		index:    spatial.New[object.Object](bounds, treeOpts...),
		overflow: make(map[string]struct{}),
	}
}

// Add appends a clone of obj. It reports false if the id is already present.
func (s *Store) Add(obj object.Object) bool {
	return s.InsertAt(obj, len(s.objects))
}

// InsertAt inserts a clone of obj at index, clamped to the valid range.
func (s *Store) InsertAt(obj object.Object, index int) bool {
	if _, ok := s.byID[obj.ID()]; ok {
		return false
	}
	obj = obj.Clone()
	index = min(max(index, 0), len(s.objects))
	s.objects = slices.Insert(s.objects, index, obj)
	s.byID[obj.ID()] = obj
	s.indexInsert(obj)
	return true
}

// Remove deletes the object and returns it with its former position.
func (s *Store) Remove(id string) (object.Object, int, bool) {
	obj, ok := s.byID[id]
	if !ok {
		return nil, -1, false
	}
	idx := s.IndexOf(id)
	s.objects = slices.Delete(s.objects, idx, idx+1)
	delete(s.byID, id)
	s.indexRemove(id)
	return obj.Clone(), idx, true
}

// Update replaces the stored object with a clone of obj, keeping its order.
func (s *Store) Update(obj object.Object) bool {
	id := obj.ID()
	if _, ok := s.byID[id]; !ok {
		return false
	}
	obj = obj.Clone()
	s.objects[s.IndexOf(id)] = obj
	s.byID[id] = obj
	s.indexUpdate(obj)
	return true
}

// Get returns a clone of the object with the given id.
func (s *Store) Get(id string) (object.Object, bool) {
	obj, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return obj.Clone(), true
}

// Has reports whether id is stored.
func (s *Store) Has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// All returns clones of every object in insertion order.
func (s *Store) All() []object.Object {
	return object.CloneAll(s.objects)
}

func (s *Store) Len() int { return len(s.objects) }

// IndexOf returns the z-order position of id, or -1.
func (s *Store) IndexOf(id string) int {
	if _, ok := s.byID[id]; !ok {
		return -1
	}
	return slices.IndexFunc(s.objects, func(o object.Object) bool { return o.ID() == id })
}

// Selected returns clones of the selected objects in store order.
func (s *Store) Selected() []object.Object {
	var out []object.Object
	for _, o := range s.objects {
		if o.Selected() {
			out = append(out, o.Clone())
		}
	}
	return out
}

// Query returns clones of the objects whose bounds overlap r, in store order.
func (s *Store) Query(r geom.Rect) []object.Object {
	hits := make(map[string]struct{})
	for _, o := range s.index.Query(r) {
		hits[o.ID()] = struct{}{}
	}
	for id := range s.overflow {
		if s.byID[id].Bounds().Overlaps(r) {
			hits[id] = struct{}{}
		}
	}

	out := make([]object.Object, 0, len(hits))
	for _, o := range s.objects {
		if _, ok := hits[o.ID()]; ok {
			out = append(out, o.Clone())
		}
	}
	return out
}

// HitTest returns the topmost object under p. The quadtree narrows the
// candidates and store order decides which one is on top.
func (s *Store) HitTest(p geom.Point) (object.Object, bool) {
	candidates := s.Query(geom.Rect{X: p.X, Y: p.Y})
	for i := len(candidates) - 1; i >= 0; i-- {
		if candidates[i].HitTest(p) {
			return candidates[i], true
		}
	}
	return nil, false
}

// ConnectorsFor returns the connectors attached to id, in store order.
func (s *Store) ConnectorsFor(id string) []*object.Connector {
	var out []*object.Connector
	for _, o := range s.objects {
		if c, ok := o.(*object.Connector); ok && c.References(id) {
			out = append(out, c.Clone().(*object.Connector))
		}
	}
	return out
}

// Connectors returns every connector in store order.
func (s *Store) Connectors() []*object.Connector {
	var out []*object.Connector
	for _, o := range s.objects {
		if c, ok := o.(*object.Connector); ok {
			out = append(out, c.Clone().(*object.Connector))
		}
	}
	return out
}

// Clear removes every object.
func (s *Store) Clear() {
	s.objects = nil
	s.byID = make(map[string]object.Object)
	s.overflow = make(map[string]struct{})
	s.index.Clear()
}

// Objects reaching past the root stay indexed where they overlap it and
// are also kept in overflow so queries beyond the root find them.
func (s *Store) trackOverflow(obj object.Object) {
	if s.index.Bounds().ContainsRect(obj.Bounds()) {
		delete(s.overflow, obj.ID())
		return
	}
	s.overflow[obj.ID()] = struct{}{}
}

func (s *Store) indexInsert(obj object.Object) {
	s.trackOverflow(obj)
	s.index.Insert(obj)
}

func (s *Store) indexUpdate(obj object.Object) {
	s.trackOverflow(obj)
	s.index.Update(obj)
}

func (s *Store) indexRemove(id string) {
	s.index.Remove(id)
	delete(s.overflow, id)
}
