package geom

// Matrix2D is an affine transform in Canvas2D setTransform order
// [a, b, c, d, e, f]:
//
//	| a  c  e |
//	| b  d  f |
//	| 0  0  1 |
type Matrix2D [6]float64

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix2D {
	return Matrix2D{1, 0, 0, 1, tx, ty}
}

// Scale returns a scale matrix.
func Scale(sx, sy float64) Matrix2D {
	return Matrix2D{sx, 0, 0, sy, 0, 0}
}

// Multiply returns m * o: o is applied first, then m.
func (m Matrix2D) Multiply(o Matrix2D) Matrix2D {
	return Matrix2D{
		m[0]*o[0] + m[2]*o[1],
		m[1]*o[0] + m[3]*o[1],
		m[0]*o[2] + m[2]*o[3],
		m[1]*o[2] + m[3]*o[3],
		m[0]*o[4] + m[2]*o[5] + m[4],
		m[1]*o[4] + m[3]*o[5] + m[5],
	}
}

// Apply maps p through the matrix.
func (m Matrix2D) Apply(p Point) Point {
	return Point{X: m[0]*p.X + m[2]*p.Y + m[4], Y: m[1]*p.X + m[3]*p.Y + m[5]}
}

// Invert returns the inverse. ok is false for a singular matrix, in which
// case the zero matrix is returned.
func (m Matrix2D) Invert() (inv Matrix2D, ok bool) {
	det := m[0]*m[3] - m[1]*m[2]
	if det == 0 {
		return Matrix2D{}, false
	}
	k := 1 / det
	return Matrix2D{
		m[3] * k,
		-m[1] * k,
		-m[2] * k,
		m[0] * k,
		(m[2]*m[5] - m[3]*m[4]) * k,
		(m[1]*m[4] - m[0]*m[5]) * k,
	}, true
}

// ToSlice returns the six coefficients for JSON and JS hosts.
func (m Matrix2D) ToSlice() []float64 {
	return m[:]
}
