package spatial

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/venkeey/viscanvas-sub000/internal/geom"
)

type box struct {
	id string
	r  geom.Rect
}

func (b box) ID() string                { return b.id }
func (b box) Bounds() geom.Rect         { return b.r }
func (b box) HitTest(p geom.Point) bool { return b.r.Contains(p) }

// ring only hits on its border, to check shape-level testing beyond the box.
type ring struct{ box }

func (r ring) HitTest(p geom.Point) bool {
	inner := r.r.Inflate(-2)
	return r.r.Contains(p) && !inner.Contains(p)
}

func world() geom.Rect {
	return geom.Rect{X: 0, Y: 0, Width: 1000, Height: 1000}
}

func ids[T Item](items []T) map[string]int {
	out := make(map[string]int)
	for _, it := range items {
		out[it.ID()]++
	}
	return out
}

func TestInsertOutsideRootIgnored(t *testing.T) {
	tree := New[box](world())
	if tree.Insert(box{"far", geom.Rect{X: 5000, Y: 5000, Width: 10, Height: 10}}) {
		t.Fatal("Insert outside root returned true")
	}
	if got := tree.Query(geom.Rect{X: -1e6, Y: -1e6, Width: 2e6, Height: 2e6}); len(got) != 0 {
		t.Errorf("query returned %d items, want 0", len(got))
	}
}

func TestQueryContainment(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tree := New[box](world())

	var all []box
	for i := 0; i < 300; i++ {
		b := box{
			id: fmt.Sprintf("b%d", i),
			r: geom.Rect{
				X:      rng.Float64() * 950,
				Y:      rng.Float64() * 950,
				Width:  rng.Float64() * 50,
				Height: rng.Float64() * 50,
			},
		}
		all = append(all, b)
		tree.Insert(b)
	}

	if tree.Depth() == 0 {
		t.Fatal("expected tree to subdivide")
	}

	for _, b := range all {
		r := b.r.Inflate(rng.Float64() * 20)
		got := ids(tree.Query(r))
		if got[b.id] != 1 {
			t.Errorf("query %v: %s returned %d times, want exactly once", r, b.id, got[b.id])
		}
	}
}

func TestQueryDeduplicatesStraddlingItems(t *testing.T) {
	tree := New[box](world(), WithCapacity(1))
	// straddles the center of the root so it lands in all four quadrants
	center := box{"center", geom.Rect{X: 450, Y: 450, Width: 100, Height: 100}}
	tree.Insert(center)
	tree.Insert(box{"a", geom.Rect{X: 10, Y: 10, Width: 5, Height: 5}})
	tree.Insert(box{"b", geom.Rect{X: 900, Y: 900, Width: 5, Height: 5}})

	got := tree.Query(world())
	if len(got) != 3 {
		t.Fatalf("query returned %d items, want 3: %v", len(got), ids(got))
	}
	if tree.Len() != 3 {
		t.Errorf("Len = %d, want 3", tree.Len())
	}
}

func TestRemove(t *testing.T) {
	tree := New[box](world(), WithCapacity(2))
	for i := 0; i < 20; i++ {
		tree.Insert(box{fmt.Sprintf("b%d", i), geom.Rect{X: float64(i * 45), Y: float64(i * 45), Width: 60, Height: 60}})
	}

	if !tree.Remove("b7") {
		t.Fatal("Remove(b7) = false")
	}
	if tree.Remove("b7") {
		t.Error("second Remove(b7) = true")
	}
	for _, r := range []geom.Rect{world(), {X: 300, Y: 300, Width: 100, Height: 100}} {
		if got := ids(tree.Query(r)); got["b7"] != 0 {
			t.Errorf("b7 still returned by query %v", r)
		}
	}
	if tree.Len() != 19 {
		t.Errorf("Len = %d, want 19", tree.Len())
	}
}

func TestUpdateMovesItem(t *testing.T) {
	tree := New[box](world())
	tree.Insert(box{"m", geom.Rect{X: 10, Y: 10, Width: 10, Height: 10}})
	tree.Update(box{"m", geom.Rect{X: 800, Y: 800, Width: 10, Height: 10}})

	if got := tree.Query(geom.Rect{X: 0, Y: 0, Width: 100, Height: 100}); len(got) != 0 {
		t.Errorf("old location still returns %v", ids(got))
	}
	if got := tree.Query(geom.Rect{X: 790, Y: 790, Width: 30, Height: 30}); len(got) != 1 {
		t.Errorf("new location returned %d items, want 1", len(got))
	}
}

func TestHitTestTopmostAndShapeLevel(t *testing.T) {
	tree := New[Item](world())
	tree.Insert(box{"bottom", geom.Rect{X: 0, Y: 0, Width: 100, Height: 100}})
	tree.Insert(ring{box{"ring", geom.Rect{X: 0, Y: 0, Width: 100, Height: 100}}})

	hit, ok := tree.HitTest(geom.Pt(1, 50))
	if !ok || hit.ID() != "ring" {
		t.Errorf("HitTest on ring border = %v, %v; want ring", hit, ok)
	}

	// inside the ring's box but not on its border: falls through to the box below
	hit, ok = tree.HitTest(geom.Pt(50, 50))
	if !ok || hit.ID() != "bottom" {
		t.Errorf("HitTest at center = %v, %v; want bottom", hit, ok)
	}

	if _, ok := tree.HitTest(geom.Pt(500, 500)); ok {
		t.Error("HitTest on empty area returned a hit")
	}
}

func TestEmptyTree(t *testing.T) {
	tree := New[box](world())
	if got := tree.Query(geom.Rect{}); len(got) != 0 {
		t.Errorf("empty query returned %d", len(got))
	}
	if _, ok := tree.HitTest(geom.Pt(1, 1)); ok {
		t.Error("empty tree hit")
	}
	tree.Remove("nothing")
}

func TestMaxDepthStopsSubdivision(t *testing.T) {
	tree := New[box](world(), WithCapacity(1), WithMaxDepth(3))
	for i := 0; i < 10; i++ {
		tree.Insert(box{fmt.Sprintf("same%d", i), geom.Rect{X: 1, Y: 1, Width: 1, Height: 1}})
	}
	if d := tree.Depth(); d != 3 {
		t.Errorf("Depth = %d, want 3", d)
	}
	if got := tree.Query(geom.Rect{X: 0, Y: 0, Width: 5, Height: 5}); len(got) != 10 {
		t.Errorf("query returned %d, want 10", len(got))
	}
}

func TestClear(t *testing.T) {
	tree := New[box](world(), WithCapacity(1))
	for i := 0; i < 8; i++ {
		tree.Insert(box{fmt.Sprintf("b%d", i), geom.Rect{X: float64(i * 100), Y: 5, Width: 10, Height: 10}})
	}
	tree.Clear()
	if tree.Len() != 0 || tree.Depth() != 0 {
		t.Errorf("after Clear: Len=%d Depth=%d", tree.Len(), tree.Depth())
	}
}
