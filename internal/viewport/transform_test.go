package viewport

import (
	"testing"

	"github.com/venkeey/viscanvas-sub000/internal/geom"
)

func TestRoundTrip(t *testing.T) {
	transforms := []Transform{
		Identity(),
		New(geom.Pt(120, -40), 2.5),
		New(geom.Pt(-3.3, 9.1), 0.1),
		New(geom.Pt(1e4, 1e4), 10),
	}
	points := []geom.Point{
		geom.Pt(0, 0),
		geom.Pt(1.5, -2.25),
		geom.Pt(-8000, 12345.678),
		geom.Pt(1e-3, 1e6),
	}

	for _, tr := range transforms {
		for _, p := range points {
			got := tr.ScreenToWorld(tr.WorldToScreen(p))
			if !got.ApproxEqual(p, 1e-6) {
				t.Errorf("transform %+v: round trip of %v = %v", tr, p, got)
			}
		}
	}
}

func TestWorldToScreenFormula(t *testing.T) {
	tr := New(geom.Pt(10, 20), 2)
	got := tr.WorldToScreen(geom.Pt(5, 5))
	if got != geom.Pt(20, 30) {
		t.Errorf("WorldToScreen = %v, want (20,30)", got)
	}
	if m := tr.Matrix().Apply(geom.Pt(5, 5)); m != got {
		t.Errorf("Matrix().Apply = %v, want %v", m, got)
	}
}

func TestCopyWithLeavesOriginal(t *testing.T) {
	orig := Identity()
	scale := 3.0
	next := orig.CopyWith(nil, &scale)
	if orig.Scale != 1 {
		t.Errorf("original mutated: %+v", orig)
	}
	if next.Scale != 3 || next.Translation != orig.Translation {
		t.Errorf("CopyWith = %+v", next)
	}
}

func TestZoomAtKeepsAnchor(t *testing.T) {
	tr := New(geom.Pt(30, 40), 1.5)
	anchor := geom.Pt(200, 150)
	before := tr.ScreenToWorld(anchor)

	zoomed := tr.ZoomAt(anchor, 2)
	after := zoomed.ScreenToWorld(anchor)
	if !after.ApproxEqual(before, 1e-9) {
		t.Errorf("world under anchor moved: %v -> %v", before, after)
	}
	if zoomed.Scale != 3 {
		t.Errorf("scale = %v, want 3", zoomed.Scale)
	}

	if s := tr.ZoomAt(anchor, 100).Scale; s != MaxScale {
		t.Errorf("zoom not clamped: %v", s)
	}
}

func TestVisibleWorld(t *testing.T) {
	tr := New(geom.Pt(-100, -50), 2)
	r := tr.VisibleWorld(800, 600)
	want := geom.Rect{X: 50, Y: 25, Width: 400, Height: 300}
	if r != want {
		t.Errorf("VisibleWorld = %+v, want %+v", r, want)
	}
}
