// Package viewport maps between world coordinates and view (screen) coordinates.
//
// A Transform is an immutable value: pan and zoom handlers build a new one with
// CopyWith and swap it in. Scale is never validated here; callers clamp it with
// ClampScale before building a transform.
package viewport

import "github.com/venkeey/viscanvas-sub000/internal/geom"

const (
	MinScale = 0.1
	MaxScale = 10.0
)

// Transform is a pan + uniform scale view transform.
type Transform struct {
	Translation geom.Point `json:"translation"`
	Scale       float64    `json:"scale"`
}

// Identity returns the transform with no pan and scale 1.
func Identity() Transform {
	return Transform{Scale: 1}
}

// New returns a transform with the given translation and scale.
func New(translation geom.Point, scale float64) Transform {
	return Transform{Translation: translation, Scale: scale}
}

// WorldToScreen maps a world point to view space: p*scale + translation.
func (t Transform) WorldToScreen(p geom.Point) geom.Point {
	return p.Scale(t.Scale).Add(t.Translation)
}

// ScreenToWorld maps a view point to world space: (p - translation) / scale.
func (t Transform) ScreenToWorld(p geom.Point) geom.Point {
	return p.Sub(t.Translation).Scale(1 / t.Scale)
}

// WorldRectToScreen maps a world rect to view space.
func (t Transform) WorldRectToScreen(r geom.Rect) geom.Rect {
	return geom.RectFromPoints(t.WorldToScreen(geom.Pt(r.X, r.Y)), t.WorldToScreen(geom.Pt(r.MaxX(), r.MaxY())))
}

// ScreenRectToWorld maps a view rect to world space.
func (t Transform) ScreenRectToWorld(r geom.Rect) geom.Rect {
	return geom.RectFromPoints(t.ScreenToWorld(geom.Pt(r.X, r.Y)), t.ScreenToWorld(geom.Pt(r.MaxX(), r.MaxY())))
}

// CopyWith returns a new transform, replacing the fields that are non-nil.
func (t Transform) CopyWith(translation *geom.Point, scale *float64) Transform {
	out := t
	if translation != nil {
		out.Translation = *translation
	}
	if scale != nil {
		out.Scale = *scale
	}
	return out
}

// Matrix returns the equivalent affine matrix for renderers.
func (t Transform) Matrix() geom.Matrix2D {
	return geom.Translate(t.Translation.X, t.Translation.Y).Multiply(geom.Scale(t.Scale, t.Scale))
}

// Pan returns the transform shifted by a screen-space delta.
func (t Transform) Pan(delta geom.Point) Transform {
	tr := t.Translation.Add(delta)
	return t.CopyWith(&tr, nil)
}

// ZoomAt multiplies the scale by factor while keeping the world point under
// the screen point anchor fixed. The resulting scale is clamped.
func (t Transform) ZoomAt(anchor geom.Point, factor float64) Transform {
	world := t.ScreenToWorld(anchor)
	scale := ClampScale(t.Scale * factor)
	tr := anchor.Sub(world.Scale(scale))
	return t.CopyWith(&tr, &scale)
}

// VisibleWorld returns the world-space rect covered by a view of the given size.
func (t Transform) VisibleWorld(width, height float64) geom.Rect {
	return t.ScreenRectToWorld(geom.Rect{Width: width, Height: height})
}

// ClampScale limits a scale factor to [MinScale, MaxScale].
func ClampScale(s float64) float64 {
	return geom.Clamp(s, MinScale, MaxScale)
}
