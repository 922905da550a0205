package routing

import (
	"github.com/venkeey/viscanvas-sub000/internal/geom"
	"github.com/venkeey/viscanvas-sub000/internal/object"
)

const (
	// SCurveDistance is the center-to-center distance beyond which a
	// connector is drawn as two joined cubic segments.
	SCurveDistance = 300.0

	cCurveHandle = 0.35
	sCurveHandle = 0.25
	sCurveMid    = 0.15
)

// Endpoint is one resolved end of a connector.
type Endpoint struct {
	object.Anchor

	// Center is the center of the attached shape, or the anchor point for a
	// free endpoint.
	Center geom.Point
	Free   bool
}

// CurvePath returns the control points of the curve from src to dst: two
// points for a straight line, four for a C-curve and seven for an S-curve.
// The first and last points are always the anchors themselves.
func CurvePath(src, dst Endpoint) []geom.Point {
	p0, p1 := src.Point, dst.Point
	if (src.Free && dst.Free) || p0.ApproxEqual(p1, geom.Epsilon) {
		return []geom.Point{p0, p1}
	}

	d := p0.Distance(p1)
	if src.Center.Distance(dst.Center) > SCurveDistance {
		// Midpoint handles lie across the chord, mirrored through m.
		m := p0.Midpoint(p1)
		h := p1.Sub(p0).Normalize().Perp().Scale(sCurveMid * d)
		return []geom.Point{
			p0,
			p0.Add(src.Normal.Scale(sCurveHandle * d)),
			m.Sub(h),
			m,
			m.Add(h),
			p1.Add(dst.Normal.Scale(sCurveHandle * d)),
			p1,
		}
	}

	return []geom.Point{
		p0,
		p0.Add(src.Normal.Scale(cCurveHandle * d)),
		p1.Add(dst.Normal.Scale(cCurveHandle * d)),
		p1,
	}
}

// Sample flattens a routed path into a polyline with steps points per cubic
// segment.
func Sample(path []geom.Point, steps int) []geom.Point {
	return geom.Flatten(path, steps)
}
