package object

import "github.com/venkeey/viscanvas-sub000/internal/geom"

// Connector links two endpoints. An endpoint with an empty id is free and
// stays at its stored point; otherwise the router recomputes the point from
// the referenced shape.
type Connector struct {
	Base
	SourceID    string       `json:"sourceId,omitempty"`
	TargetID    string       `json:"targetId,omitempty"`
	SourcePoint geom.Point   `json:"sourcePoint"`
	TargetPoint geom.Point   `json:"targetPoint"`
	SourceEdge  Edge         `json:"sourceEdge"`
	TargetEdge  Edge         `json:"targetEdge"`
	Path        []geom.Point `json:"path,omitempty"`
	Style       string       `json:"style,omitempty"`
}

// StyleCurve is the only routing style: C or S shaped cubic curves.
const StyleCurve = "curve"

// flattenSteps is the number of samples per cubic segment for hit tests.
const flattenSteps = 16

// NewConnector creates a connector between two shapes. The path is left empty
// until it is routed.
func NewConnector(id, sourceID, targetID string) *Connector {
	return &Connector{Base: Base{ObjectID: id}, SourceID: sourceID, TargetID: targetID, Style: StyleCurve}
}

// NewFreeConnector creates a connector from a shape to a fixed world point.
func NewFreeConnector(id, sourceID string, target geom.Point) *Connector {
	return &Connector{Base: Base{ObjectID: id}, SourceID: sourceID, TargetPoint: target, Style: StyleCurve}
}

func (c *Connector) Kind() Kind { return KindConnector }

// References reports whether either endpoint is attached to id.
func (c *Connector) References(id string) bool {
	return id != "" && (c.SourceID == id || c.TargetID == id)
}

func (c *Connector) Position() geom.Point {
	return c.SourcePoint.Midpoint(c.TargetPoint)
}

func (c *Connector) controlPoints() []geom.Point {
	if len(c.Path) > 0 {
		return c.Path
	}
	return []geom.Point{c.SourcePoint, c.TargetPoint}
}

// Bounds encloses every control point; a cubic curve never leaves the hull of
// its control points.
func (c *Connector) Bounds() geom.Rect {
	return geom.BoundingBox(c.controlPoints()).Inflate(c.tolerance())
}

func (c *Connector) tolerance() float64 {
	return max(c.Paint.StrokeWidth, 0)/2 + HitSlop
}

func (c *Connector) HitTest(p geom.Point) bool {
	line := geom.Flatten(c.controlPoints(), flattenSteps)
	return geom.DistanceToPolyline(p, line) <= c.tolerance()
}

// AnchorToward is the connector midpoint; connectors are not routed to.
func (c *Connector) AnchorToward(geom.Point) Anchor {
	return Anchor{Point: c.Position()}
}

// Translate moves the stored points. Attached endpoints are recomputed by
// the router on the next reconcile.
func (c *Connector) Translate(dx, dy float64) {
	d := geom.Pt(dx, dy)
	c.SourcePoint = c.SourcePoint.Add(d)
	c.TargetPoint = c.TargetPoint.Add(d)
	for i := range c.Path {
		c.Path[i] = c.Path[i].Add(d)
	}
}

func (c *Connector) Clone() Object {
	cp := *c
	cp.Path = append([]geom.Point(nil), c.Path...)
	return &cp
}
