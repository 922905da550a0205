// Package object defines the canvas object variants: rectangles, circles,
// freehand strokes, text, document blocks and connectors.
//
// Objects are mutable pointers owned by the store. Anything handed out for
// undo snapshots or to other components is a Clone, so states never alias.
package object

import "github.com/venkeey/viscanvas-sub000/internal/geom"

// Kind tags the object variant.
type Kind string

const (
	KindRectangle     Kind = "rectangle"
	KindCircle        Kind = "circle"
	KindFreehand      Kind = "freehand"
	KindText          Kind = "text"
	KindConnector     Kind = "connector"
	KindDocumentBlock Kind = "document_block"
)

// Object is the capability set every canvas variant implements.
type Object interface {
	ID() string
	Kind() Kind

	// Position is the world anchor of the object.
	Position() geom.Point

	// Bounds encloses the visible and interactive extent in world space.
	Bounds() geom.Rect

	// HitTest is the shape-level test, tighter than Bounds().Contains.
	HitTest(p geom.Point) bool

	// AnchorToward returns the boundary point a connector attaches to when
	// heading toward p, with the outward normal at that point.
	AnchorToward(p geom.Point) Anchor

	Translate(dx, dy float64)
	Clone() Object

	Selected() bool
	SetSelected(bool)

	Common() *Base
}

// Paint holds the visual style carried with an object.
type Paint struct {
	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
}

// Base carries the fields shared by all variants.
type Base struct {
	ObjectID   string `json:"id"`
	Paint      Paint  `json:"paint"`
	IsSelected bool   `json:"-"`
}

func (b *Base) ID() string           { return b.ObjectID }
func (b *Base) Selected() bool       { return b.IsSelected }
func (b *Base) SetSelected(sel bool) { b.IsSelected = sel }
func (b *Base) Common() *Base        { return b }

// HitSlop is the extra distance, in world units, that still counts as a hit
// on thin geometry such as strokes and connectors.
const HitSlop = 3.0

// CloneAll deep-copies a slice of objects.
func CloneAll(objs []Object) []Object {
	out := make([]Object, len(objs))
	for i, o := range objs {
		out[i] = o.Clone()
	}
	return out
}

// Center returns the center of the object's bounds.
func Center(o Object) geom.Point {
	return o.Bounds().Center()
}
