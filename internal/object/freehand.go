package object

import "github.com/venkeey/viscanvas-sub000/internal/geom"

// Freehand is a pen stroke through world-space points.
type Freehand struct {
	Base
	Points []geom.Point `json:"points"`
}

// NewFreehand creates a stroke. The points slice is copied.
func NewFreehand(id string, points []geom.Point, width float64) *Freehand {
	f := &Freehand{Base: Base{ObjectID: id}, Points: append([]geom.Point(nil), points...)}
	f.Paint.StrokeWidth = width
	return f
}

func (f *Freehand) Kind() Kind { return KindFreehand }

func (f *Freehand) Position() geom.Point {
	if len(f.Points) == 0 {
		return geom.Point{}
	}
	return f.Points[0]
}

func (f *Freehand) halfWidth() float64 {
	return max(f.Paint.StrokeWidth, 0) / 2
}

// strokeBox is the painted extent of the stroke.
func (f *Freehand) strokeBox() geom.Rect {
	if len(f.Points) == 0 {
		return geom.Rect{}
	}
	return geom.BoundingBox(f.Points).Inflate(f.halfWidth())
}

// Bounds covers everything HitTest accepts, slop included.
func (f *Freehand) Bounds() geom.Rect {
	if len(f.Points) == 0 {
		return geom.Rect{}
	}
	return f.strokeBox().Inflate(HitSlop)
}

func (f *Freehand) HitTest(p geom.Point) bool {
	if len(f.Points) == 0 {
		return false
	}
	return geom.DistanceToPolyline(p, f.Points) <= f.halfWidth()+HitSlop
}

func (f *Freehand) AnchorToward(p geom.Point) Anchor { return BoxAnchor(f.strokeBox(), p) }

func (f *Freehand) Translate(dx, dy float64) {
	d := geom.Pt(dx, dy)
	for i := range f.Points {
		f.Points[i] = f.Points[i].Add(d)
	}
}

func (f *Freehand) Clone() Object {
	c := *f
	c.Points = append([]geom.Point(nil), f.Points...)
	return &c
}
