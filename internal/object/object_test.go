package object

import (
	"math"
	"testing"

	"github.com/venkeey/viscanvas-sub000/internal/geom"
)

func TestBoundsAndHitTest(t *testing.T) {
	tests := []struct {
		name   string
		obj    Object
		bounds geom.Rect
		hit    geom.Point
		miss   geom.Point
	}{
		{
			name:   "rectangle",
			obj:    NewRectangle("r", geom.Pt(10, 20), 100, 50),
			bounds: geom.Rect{X: 10, Y: 20, Width: 100, Height: 50},
			hit:    geom.Pt(50, 40),
			miss:   geom.Pt(5, 40),
		},
		{
			name:   "negative size rectangle normalizes",
			obj:    NewRectangle("r", geom.Pt(100, 100), -50, -20),
			bounds: geom.Rect{X: 50, Y: 80, Width: 50, Height: 20},
			hit:    geom.Pt(60, 90),
			miss:   geom.Pt(110, 90),
		},
		{
			name:   "circle",
			obj:    NewCircle("c", geom.Pt(0, 0), 10),
			bounds: geom.Rect{X: -10, Y: -10, Width: 20, Height: 20},
			hit:    geom.Pt(5, 5),
			miss:   geom.Pt(9, 9),
		},
		{
			name:   "document block",
			obj:    NewDocumentBlock("b", geom.Pt(0, 0), 200, 120, "Notes"),
			bounds: geom.Rect{X: 0, Y: 0, Width: 200, Height: 120},
			hit:    geom.Pt(199, 119),
			miss:   geom.Pt(201, 10),
		},
		{
			name:   "text",
			obj:    NewText("t", geom.Pt(0, 0), "abcd\nab", 10),
			bounds: geom.Rect{X: 0, Y: 0, Width: 24, Height: 24},
			hit:    geom.Pt(20, 20),
			miss:   geom.Pt(30, 5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.obj.Bounds(); !rectApprox(got, tt.bounds) {
				t.Errorf("Bounds() = %+v, want %+v", got, tt.bounds)
			}
			if !tt.obj.HitTest(tt.hit) {
				t.Errorf("HitTest(%v) = false, want true", tt.hit)
			}
			if tt.obj.HitTest(tt.miss) {
				t.Errorf("HitTest(%v) = true, want false", tt.miss)
			}
		})
	}
}

func TestFreehandHitTestFollowsStroke(t *testing.T) {
	f := NewFreehand("s", []geom.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}}, 4)

	if !f.HitTest(geom.Pt(50, 1)) {
		t.Error("expected hit near first segment")
	}
	if !f.HitTest(geom.Pt(102, 50)) {
		t.Error("expected hit near second segment")
	}
	// Inside the bounding box but far from the stroke.
	if f.HitTest(geom.Pt(30, 70)) {
		t.Error("expected miss in the empty corner")
	}

	// Bounds include the hit slop so spatial lookups reach every hit.
	want := geom.Rect{X: -5, Y: -5, Width: 110, Height: 110}
	if got := f.Bounds(); !rectApprox(got, want) {
		t.Errorf("Bounds() = %+v, want %+v", got, want)
	}
	edge := geom.Pt(50, -(2 + HitSlop))
	if !f.HitTest(edge) || !f.Bounds().Contains(edge) {
		t.Errorf("slop-band point %v: hit=%v, in bounds=%v", edge, f.HitTest(edge), f.Bounds().Contains(edge))
	}

	// Anchors stay on the painted stroke.
	if a := f.AnchorToward(geom.Pt(500, 50)); a.Point != geom.Pt(102, 50) {
		t.Errorf("AnchorToward = %v, want (102,50)", a.Point)
	}
}

func TestEmptyFreehand(t *testing.T) {
	f := NewFreehand("s", nil, 2)
	if f.HitTest(geom.Pt(0, 0)) {
		t.Error("empty stroke should never hit")
	}
	if got := f.Bounds(); got != (geom.Rect{}) {
		t.Errorf("Bounds() = %+v, want zero rect", got)
	}
}

func TestConnectorHitTestUsesCurve(t *testing.T) {
	c := NewConnector("c", "a", "b")
	c.SourcePoint = geom.Pt(0, 0)
	c.TargetPoint = geom.Pt(100, 0)
	c.Path = []geom.Point{{X: 0, Y: 0}, {X: 0, Y: 100}, {X: 100, Y: 100}, {X: 100, Y: 0}}

	// The curve peaks at y=75 for t=0.5.
	if !c.HitTest(geom.Pt(50, 75)) {
		t.Error("expected hit at curve apex")
	}
	if c.HitTest(geom.Pt(50, 0)) {
		t.Error("chord between endpoints is not on the curve")
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	f := NewFreehand("s", []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}, 1)
	c := f.Clone().(*Freehand)
	c.Points[0] = geom.Pt(9, 9)
	c.SetSelected(true)

	if f.Points[0] != (geom.Point{}) {
		t.Errorf("original points mutated: %v", f.Points)
	}
	if f.Selected() {
		t.Error("selection leaked into original")
	}

	conn := NewConnector("c", "a", "b")
	conn.Path = []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}}
	cc := conn.Clone().(*Connector)
	cc.Path[1] = geom.Pt(5, 5)
	if conn.Path[1] != geom.Pt(1, 0) {
		t.Errorf("connector path aliased: %v", conn.Path)
	}
}

func TestTranslate(t *testing.T) {
	objs := []Object{
		NewRectangle("r", geom.Pt(0, 0), 10, 10),
		NewCircle("c", geom.Pt(0, 0), 5),
		NewFreehand("s", []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}, 1),
		NewText("t", geom.Pt(0, 0), "hi", 12),
		NewDocumentBlock("b", geom.Pt(0, 0), 10, 10, ""),
	}
	for _, o := range objs {
		t.Run(string(o.Kind()), func(t *testing.T) {
			before := o.Bounds()
			o.Translate(7, -3)
			want := before.Translate(7, -3)
			if got := o.Bounds(); !rectApprox(got, want) {
				t.Errorf("Bounds() after Translate = %+v, want %+v", got, want)
			}
		})
	}
}

func TestBoxAnchorEdges(t *testing.T) {
	r := geom.Rect{X: 0, Y: 0, Width: 100, Height: 50}

	tests := []struct {
		name   string
		toward geom.Point
		edge   Edge
		point  geom.Point
	}{
		{"right centered", geom.Pt(300, 25), EdgeRight, geom.Pt(100, 25)},
		{"left centered", geom.Pt(-300, 25), EdgeLeft, geom.Pt(0, 25)},
		{"bottom centered", geom.Pt(50, 300), EdgeBottom, geom.Pt(50, 50)},
		{"top centered", geom.Pt(50, -300), EdgeTop, geom.Pt(50, 0)},
		{"right biased down", geom.Pt(300, 100), EdgeRight, geom.Pt(100, 28.75)},
		{"bias stays in middle half", geom.Pt(250, 220), EdgeRight, geom.Pt(100, 37.1875)},
		{"tie goes vertical", geom.Pt(150, 125), EdgeBottom, geom.Pt(75, 50)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := BoxAnchor(r, tt.toward)
			if a.Edge != tt.edge {
				t.Errorf("edge = %v, want %v", a.Edge, tt.edge)
			}
			if !a.Point.ApproxEqual(tt.point, 1e-9) {
				t.Errorf("point = %v, want %v", a.Point, tt.point)
			}
			if a.Normal != tt.edge.Normal() {
				t.Errorf("normal = %v, want %v", a.Normal, tt.edge.Normal())
			}
		})
	}
}

func TestRadialAnchor(t *testing.T) {
	a := RadialAnchor(geom.Pt(300, 100), 40, geom.Pt(50, 100))
	if !a.Point.ApproxEqual(geom.Pt(260, 100), 1e-9) {
		t.Errorf("point = %v, want (260,100)", a.Point)
	}
	if a.Edge != EdgeLeft {
		t.Errorf("edge = %v, want left", a.Edge)
	}

	zero := RadialAnchor(geom.Pt(0, 0), 0, geom.Pt(0, 0))
	if math.IsNaN(zero.Point.X) || math.IsNaN(zero.Point.Y) {
		t.Errorf("degenerate circle produced NaN: %v", zero.Point)
	}
}

func TestEdgeOpposite(t *testing.T) {
	for _, e := range []Edge{EdgeLeft, EdgeRight, EdgeTop, EdgeBottom} {
		if e.Opposite().Opposite() != e {
			t.Errorf("%v: Opposite is not an involution", e)
		}
		if e.Opposite() == e {
			t.Errorf("%v: Opposite returned itself", e)
		}
		if sum := e.Normal().Add(e.Opposite().Normal()); !sum.IsZero() {
			t.Errorf("%v: normals not opposite, sum %v", e, sum)
		}
	}
}

func rectApprox(a, b geom.Rect) bool {
	const tol = 1e-9
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol &&
		math.Abs(a.Width-b.Width) < tol && math.Abs(a.Height-b.Height) < tol
}
