// Package geom provides the world-space primitives shared by the canvas engine.
package geom

import "math"

// Epsilon is the tolerance used for floating point comparisons.
const Epsilon = 1e-9

// Point is a 2D point or vector in world or screen space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p + o.
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub returns p - o.
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

// Scale returns p * f.
func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Len returns the Euclidean length of p treated as a vector.
func (p Point) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// Distance returns the Euclidean distance to another point.
func (p Point) Distance(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// Normalize returns the unit vector in the direction of p.
// A zero-length vector normalizes to the zero vector.
func (p Point) Normalize() Point {
	l := p.Len()
	if l < Epsilon {
		return Point{}
	}
	return Point{X: p.X / l, Y: p.Y / l}
}

// Perp returns p rotated by 90 degrees counter-clockwise.
func (p Point) Perp() Point {
	return Point{X: -p.Y, Y: p.X}
}

// Lerp interpolates between p and o.
func (p Point) Lerp(o Point, t float64) Point {
	return Point{X: p.X + (o.X-p.X)*t, Y: p.Y + (o.Y-p.Y)*t}
}

// Midpoint returns the point halfway between p and o.
func (p Point) Midpoint(o Point) Point {
	return p.Lerp(o, 0.5)
}

// IsZero reports whether both coordinates are within Epsilon of zero.
func (p Point) IsZero() bool {
	return math.Abs(p.X) < Epsilon && math.Abs(p.Y) < Epsilon
}

// ApproxEqual compares two points within tol.
func (p Point) ApproxEqual(o Point, tol float64) bool {
	return math.Abs(p.X-o.X) <= tol && math.Abs(p.Y-o.Y) <= tol
}

// DistanceToSegment returns the distance from p to the segment a-b.
func DistanceToSegment(p, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 < Epsilon {
		return p.Distance(a)
	}
	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / l2
	t = Clamp(t, 0, 1)
	return p.Distance(a.Add(ab.Scale(t)))
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
