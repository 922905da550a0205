package geom

// CubicPoint evaluates a cubic Bezier curve at t.
func CubicPoint(p0, p1, p2, p3 Point, t float64) Point {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return Point{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}

// IsCubicChain reports whether path is a chain of cubic segments:
// [p0, c1, c2, p1, c3, c4, p2, ...].
func IsCubicChain(path []Point) bool {
	return len(path) >= 4 && (len(path)-1)%3 == 0
}

// Flatten converts a control point list into a polyline. Cubic chains are
// sampled with steps points per segment; anything else is returned as a
// polyline through its points. The endpoints are always preserved exactly.
func Flatten(path []Point, steps int) []Point {
	if !IsCubicChain(path) {
		out := make([]Point, len(path))
		copy(out, path)
		return out
	}
	if steps < 1 {
		steps = 1
	}

	out := []Point{path[0]}
	for i := 0; i+3 < len(path); i += 3 {
		p0, p1, p2, p3 := path[i], path[i+1], path[i+2], path[i+3]
		for s := 1; s < steps; s++ {
			out = append(out, CubicPoint(p0, p1, p2, p3, float64(s)/float64(steps)))
		}
		out = append(out, p3)
	}
	return out
}

// DistanceToPolyline returns the smallest distance from p to the polyline.
func DistanceToPolyline(p Point, line []Point) float64 {
	switch len(line) {
	case 0:
		return inf
	case 1:
		return p.Distance(line[0])
	}
	best := inf
	for i := 0; i+1 < len(line); i++ {
		best = min(best, DistanceToSegment(p, line[i], line[i+1]))
	}
	return best
}

const inf = 1e308
