package store

import (
	"testing"

	"github.com/venkeey/viscanvas-sub000/internal/geom"
	"github.com/venkeey/viscanvas-sub000/internal/object"
)

func ids(objs []object.Object) []string {
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = o.ID()
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAddRemoveKeepsOrder(t *testing.T) {
	s := New(Options{})
	s.Add(object.NewRectangle("a", geom.Pt(0, 0), 10, 10))
	s.Add(object.NewRectangle("b", geom.Pt(20, 0), 10, 10))
	s.Add(object.NewRectangle("c", geom.Pt(40, 0), 10, 10))

	if s.Add(object.NewRectangle("a", geom.Pt(0, 0), 1, 1)) {
		t.Error("Add with duplicate id succeeded")
	}

	obj, idx, ok := s.Remove("b")
	if !ok || idx != 1 || obj.ID() != "b" {
		t.Fatalf("Remove(b) = %v, %d, %v", obj, idx, ok)
	}
	if got := ids(s.All()); !equalIDs(got, []string{"a", "c"}) {
		t.Errorf("All() = %v, want [a c]", got)
	}

	s.InsertAt(obj, idx)
	if got := ids(s.All()); !equalIDs(got, []string{"a", "b", "c"}) {
		t.Errorf("All() after InsertAt = %v, want [a b c]", got)
	}

	if _, _, ok := s.Remove("missing"); ok {
		t.Error("Remove(missing) reported ok")
	}
}

func TestStoredObjectsAreCopies(t *testing.T) {
	s := New(Options{})
	r := object.NewRectangle("a", geom.Pt(0, 0), 10, 10)
	s.Add(r)
	r.Translate(100, 100)

	got, _ := s.Get("a")
	if got.Position() != geom.Pt(0, 0) {
		t.Errorf("stored object moved with caller copy: %v", got.Position())
	}

	got.Translate(5, 5)
	again, _ := s.Get("a")
	if again.Position() != geom.Pt(0, 0) {
		t.Errorf("Get result aliases store: %v", again.Position())
	}
}

func TestUpdateMovesIndexEntry(t *testing.T) {
	s := New(Options{})
	r := object.NewRectangle("a", geom.Pt(0, 0), 10, 10)
	s.Add(r)

	r.Translate(500, 500)
	if !s.Update(r) {
		t.Fatal("Update returned false")
	}

	if got := s.Query(geom.Rect{X: 0, Y: 0, Width: 20, Height: 20}); len(got) != 0 {
		t.Errorf("old location still indexed: %v", ids(got))
	}
	if got := s.Query(geom.Rect{X: 490, Y: 490, Width: 30, Height: 30}); len(got) != 1 {
		t.Errorf("new location not indexed: %v", ids(got))
	}

	if s.Update(object.NewCircle("missing", geom.Pt(0, 0), 1)) {
		t.Error("Update of unknown id succeeded")
	}
}

func TestUpdateAcrossIndexEdge(t *testing.T) {
	s := New(Options{Extent: 100})
	r := object.NewRectangle("a", geom.Pt(10, 10), 10, 10)
	s.Add(r)

	// Out past the root, then back inside.
	r.Translate(1000, 0)
	s.Update(r)
	if got, ok := s.HitTest(geom.Pt(1015, 15)); !ok || got.ID() != "a" {
		t.Errorf("HitTest after moving out = %v, %v", got, ok)
	}

	r.Translate(-1000, 0)
	s.Update(r)
	if got := s.Query(geom.Rect{X: 995, Y: 0, Width: 50, Height: 50}); len(got) != 0 {
		t.Errorf("stale overflow entry: %v", ids(got))
	}
	if got := s.Query(geom.Rect{X: 0, Y: 0, Width: 30, Height: 30}); !equalIDs(ids(got), []string{"a"}) {
		t.Errorf("Query back inside = %v, want [a]", ids(got))
	}
}

func TestHitTestInStrokeSlop(t *testing.T) {
	s := New(Options{})
	s.Add(object.NewFreehand("s", []geom.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}, 2))

	// Past the painted half-width but within the hit slop.
	p := geom.Pt(50, 2.5)
	got, ok := s.HitTest(p)
	if !ok || got.ID() != "s" {
		t.Errorf("HitTest(%v) = %v, %v, want the stroke", p, got, ok)
	}
	if _, ok := s.HitTest(geom.Pt(50, 10)); ok {
		t.Error("HitTest well away from the stroke reported a hit")
	}
}

func TestHitTestTopmostByStoreOrder(t *testing.T) {
	s := New(Options{})
	s.Add(object.NewRectangle("bottom", geom.Pt(0, 0), 100, 100))
	s.Add(object.NewCircle("top", geom.Pt(50, 50), 20))

	got, ok := s.HitTest(geom.Pt(50, 50))
	if !ok || got.ID() != "top" {
		t.Errorf("HitTest(50,50) = %v, %v, want top", got, ok)
	}

	// Inside the circle's box but outside the circle itself.
	got, ok = s.HitTest(geom.Pt(32, 32))
	if !ok || got.ID() != "bottom" {
		t.Errorf("HitTest(32,32) = %v, %v, want bottom", got, ok)
	}

	if _, ok := s.HitTest(geom.Pt(500, 500)); ok {
		t.Error("HitTest on empty space reported a hit")
	}
}

func TestObjectsBeyondIndexBounds(t *testing.T) {
	s := New(Options{Extent: 100})
	s.Add(object.NewRectangle("far", geom.Pt(1000, 1000), 10, 10))
	s.Add(object.NewRectangle("edge", geom.Pt(90, 90), 50, 50))

	if got := s.Query(geom.Rect{X: 995, Y: 995, Width: 20, Height: 20}); !equalIDs(ids(got), []string{"far"}) {
		t.Errorf("Query far = %v, want [far]", ids(got))
	}
	if got := s.Query(geom.Rect{X: 120, Y: 120, Width: 5, Height: 5}); !equalIDs(ids(got), []string{"edge"}) {
		t.Errorf("Query past root = %v, want [edge]", ids(got))
	}
	if got, ok := s.HitTest(geom.Pt(1005, 1005)); !ok || got.ID() != "far" {
		t.Errorf("HitTest far = %v, %v", got, ok)
	}

	s.Remove("far")
	if got := s.Query(geom.Rect{X: 995, Y: 995, Width: 20, Height: 20}); len(got) != 0 {
		t.Errorf("removed object still returned: %v", ids(got))
	}
}

func TestConnectorsForAndSelected(t *testing.T) {
	s := New(Options{})
	s.Add(object.NewRectangle("a", geom.Pt(0, 0), 10, 10))
	s.Add(object.NewRectangle("b", geom.Pt(100, 0), 10, 10))
	s.Add(object.NewConnector("ab", "a", "b"))
	s.Add(object.NewFreeConnector("af", "a", geom.Pt(50, 50)))

	if got := s.ConnectorsFor("a"); len(got) != 2 {
		t.Errorf("ConnectorsFor(a) = %d connectors, want 2", len(got))
	}
	if got := s.ConnectorsFor("b"); len(got) != 1 || got[0].ID() != "ab" {
		t.Errorf("ConnectorsFor(b) = %v, want [ab]", got)
	}
	if got := s.ConnectorsFor(""); len(got) != 0 {
		t.Errorf("free endpoints matched empty id: %v", got)
	}

	b, _ := s.Get("b")
	b.SetSelected(true)
	s.Update(b)
	if got := ids(s.Selected()); !equalIDs(got, []string{"b"}) {
		t.Errorf("Selected() = %v, want [b]", got)
	}

	s.Clear()
	if s.Len() != 0 || len(s.Query(geom.Rect{X: -10, Y: -10, Width: 200, Height: 200})) != 0 {
		t.Error("Clear left objects behind")
	}
}
