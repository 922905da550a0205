package object

import (
	"math"

	"github.com/venkeey/viscanvas-sub000/internal/geom"
)

// Edge names the side of a shape a connector leaves or enters through.
type Edge int

const (
	EdgeNone Edge = iota
	EdgeLeft
	EdgeRight
	EdgeTop
	EdgeBottom
)

func (e Edge) String() string {
	switch e {
	case EdgeLeft:
		return "left"
	case EdgeRight:
		return "right"
	case EdgeTop:
		return "top"
	case EdgeBottom:
		return "bottom"
	default:
		return "none"
	}
}

// Opposite returns the mirror edge.
func (e Edge) Opposite() Edge {
	switch e {
	case EdgeLeft:
		return EdgeRight
	case EdgeRight:
		return EdgeLeft
	case EdgeTop:
		return EdgeBottom
	case EdgeBottom:
		return EdgeTop
	default:
		return EdgeNone
	}
}

// Normal returns the outward unit normal of the edge.
func (e Edge) Normal() geom.Point {
	switch e {
	case EdgeLeft:
		return geom.Pt(-1, 0)
	case EdgeRight:
		return geom.Pt(1, 0)
	case EdgeTop:
		return geom.Pt(0, -1)
	case EdgeBottom:
		return geom.Pt(0, 1)
	default:
		return geom.Point{}
	}
}

// Anchor is a connector attachment point.
type Anchor struct {
	Point  geom.Point `json:"point"`
	Normal geom.Point `json:"normal"`
	Edge   Edge       `json:"edge"`
}

// EdgeFor picks the exit edge for a center-to-center delta: the horizontal
// edges win when |dx| > |dy|, otherwise the vertical ones.
func EdgeFor(d geom.Point) Edge {
	if math.Abs(d.X) > math.Abs(d.Y) {
		if d.X > 0 {
			return EdgeRight
		}
		return EdgeLeft
	}
	if d.Y > 0 {
		return EdgeBottom
	}
	return EdgeTop
}

// Magnetic bias keeps anchors within the middle half of an edge.
const (
	biasScale = 0.25
	biasMin   = 0.25
	biasMax   = 0.75
)

// edgeFraction positions the anchor along the edge, drifting from the
// midpoint toward the other shape by the secondary-axis share of the delta.
func edgeFraction(secondary, primary float64) float64 {
	if math.Abs(primary) < geom.Epsilon {
		return 0.5
	}
	return geom.Clamp(0.5+biasScale*secondary/math.Abs(primary), biasMin, biasMax)
}

// BoxAnchor attaches to the edge of r that faces toward.
func BoxAnchor(r geom.Rect, toward geom.Point) Anchor {
	d := toward.Sub(r.Center())
	edge := EdgeFor(d)

	var p geom.Point
	switch edge {
	case EdgeRight, EdgeLeft:
		p.Y = r.Y + r.Height*edgeFraction(d.Y, d.X)
		p.X = r.X
		if edge == EdgeRight {
			p.X = r.MaxX()
		}
	default:
		p.X = r.X + r.Width*edgeFraction(d.X, d.Y)
		p.Y = r.Y
		if edge == EdgeBottom {
			p.Y = r.MaxY()
		}
	}
	return Anchor{Point: p, Normal: edge.Normal(), Edge: edge}
}

// RadialAnchor attaches to a circle at the angle facing toward. The edge tag
// is the dominant axis of the delta so circle anchors mirror like box anchors.
func RadialAnchor(center geom.Point, radius float64, toward geom.Point) Anchor {
	d := toward.Sub(center)
	theta := math.Atan2(d.Y, d.X)
	normal := geom.Pt(math.Cos(theta), math.Sin(theta))
	return Anchor{
		Point:  center.Add(normal.Scale(radius)),
		Normal: normal,
		Edge:   EdgeFor(d),
	}
}
