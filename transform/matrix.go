// Package transform implements the 3x3 perspective transform collaborator
// used to warp a source image into an arbitrary destination quadrilateral
// (spec.md §4.7). It generalizes the teacher's internal/image.Affine (a
// 2x3 matrix limited to translate/rotate/scale/shear) to a full homogeneous
// 3x3 matrix with a perspective divide, since region_move's destination
// quad need not be a parallelogram.
package transform

import "math"

// Matrix3 is a row-major homogeneous 3x3 matrix:
//
//	| a  b  c |
//	| d  e  f |
//	| g  h  i |
type Matrix3 struct {
	a, b, c float64
	d, e, f float64
	g, h, i float64
}

// Identity returns the identity transformation.
func Identity() Matrix3 {
	return Matrix3{
		a: 1, b: 0, c: 0,
		d: 0, e: 1, f: 0,
		g: 0, h: 0, i: 1,
	}
}

// Multiply returns m * other (other is applied first).
func (m Matrix3) Multiply(o Matrix3) Matrix3 {
	return Matrix3{
		a: m.a*o.a + m.b*o.d + m.c*o.g,
		b: m.a*o.b + m.b*o.e + m.c*o.h,
		c: m.a*o.c + m.b*o.f + m.c*o.i,
		d: m.d*o.a + m.e*o.d + m.f*o.g,
		e: m.d*o.b + m.e*o.e + m.f*o.h,
		f: m.d*o.c + m.e*o.f + m.f*o.i,
		g: m.g*o.a + m.h*o.d + m.i*o.g,
		h: m.g*o.b + m.h*o.e + m.i*o.h,
		i: m.g*o.c + m.h*o.f + m.i*o.i,
	}
}

// Invert returns the inverse of m. Reports false if m is singular
// (spec.md §4.7 failure case "non-invertible matrix").
func (m Matrix3) Invert() (Matrix3, bool) {
	det := m.a*(m.e*m.i-m.f*m.h) -
		m.b*(m.d*m.i-m.f*m.g) +
		m.c*(m.d*m.h-m.e*m.g)
	if math.Abs(det) < 1e-12 {
		return Matrix3{}, false
	}
	invDet := 1.0 / det

	return Matrix3{
		a: (m.e*m.i - m.f*m.h) * invDet,
		b: (m.c*m.h - m.b*m.i) * invDet,
		c: (m.b*m.f - m.c*m.e) * invDet,
		d: (m.f*m.g - m.d*m.i) * invDet,
		e: (m.a*m.i - m.c*m.g) * invDet,
		f: (m.c*m.d - m.a*m.f) * invDet,
		g: (m.d*m.h - m.e*m.g) * invDet,
		h: (m.b*m.g - m.a*m.h) * invDet,
		i: (m.a*m.e - m.b*m.d) * invDet,
	}, true
}

// TransformPoint applies m to (x, y), carrying out the perspective
// divide by the homogeneous w component.
func (m Matrix3) TransformPoint(x, y float64) (float64, float64) {
	w := m.g*x + m.h*y + m.i
	if w == 0 {
		return 0, 0
	}
	return (m.a*x + m.b*y + m.c) / w, (m.d*x + m.e*y + m.f) / w
}

// Translate returns a pure translation matrix.
func Translate(tx, ty float64) Matrix3 {
	return Matrix3{
		a: 1, b: 0, c: tx,
		d: 0, e: 1, f: ty,
		g: 0, h: 0, i: 1,
	}
}

// Quad is four corners in (top-left, top-right, bottom-right,
// bottom-left) winding order.
type Quad [4][2]float64

// Bounds returns the axis-aligned bounding rectangle of q, as integer
// pixel extents (floor of min, ceil of max).
func (q Quad) Bounds() (minX, minY, maxX, maxY int) {
	fMinX, fMinY := q[0][0], q[0][1]
	fMaxX, fMaxY := q[0][0], q[0][1]
	for _, p := range q[1:] {
		fMinX = math.Min(fMinX, p[0])
		fMinY = math.Min(fMinY, p[1])
		fMaxX = math.Max(fMaxX, p[0])
		fMaxY = math.Max(fMaxY, p[1])
	}
	return int(math.Floor(fMinX)), int(math.Floor(fMinY)), int(math.Ceil(fMaxX)), int(math.Ceil(fMaxY))
}

// Translated returns q shifted by (-dx, -dy).
func (q Quad) Translated(dx, dy float64) Quad {
	var out Quad
	for i, p := range q {
		out[i] = [2]float64{p[0] - dx, p[1] - dy}
	}
	return out
}

// FromRect builds the quad for an axis-aligned w×h rectangle at the
// origin, matching the corner order Quad expects.
func FromRect(w, h float64) Quad {
	return Quad{{0, 0}, {w, 0}, {w, h}, {0, h}}
}

// quadToQuad derives the 3x3 homogeneous transform mapping the unit
// square's corresponding source rectangle (0,0)-(w,h) onto dst. This is
// the general planar homography solve (8 unknowns, since i is fixed to
// 1), following the classic "map square to quadrilateral" decomposition.
func quadToQuad(w, h float64, dst Quad) (Matrix3, bool) {
	if w == 0 || h == 0 {
		return Matrix3{}, false
	}
	// Map source rect to the unit square, then unit square to dst.
	unitToDst, ok := squareToQuad(dst)
	if !ok {
		return Matrix3{}, false
	}
	rectToUnit := Matrix3{
		a: 1 / w, b: 0, c: 0,
		d: 0, e: 1 / h, f: 0,
		g: 0, h: 0, i: 1,
	}
	return unitToDst.Multiply(rectToUnit), true
}

// squareToQuad solves for the homography mapping the unit square
// (0,0),(1,0),(1,1),(0,1) onto q.
func squareToQuad(q Quad) (Matrix3, bool) {
	x0, y0 := q[0][0], q[0][1]
	x1, y1 := q[1][0], q[1][1]
	x2, y2 := q[2][0], q[2][1]
	x3, y3 := q[3][0], q[3][1]

	dx1 := x1 - x2
	dy1 := y1 - y2
	dx2 := x3 - x2
	dy2 := y3 - y2
	sx := x0 - x1 + x2 - x3
	sy := y0 - y1 + y2 - y3

	det := dx1*dy2 - dx2*dy1
	if math.Abs(det) < 1e-12 {
		// Degenerate case: the edges meeting at q[2] are collinear, so the
		// perspective terms cannot be solved; fall back to the affine map
		// through q[0], q[1] and q[2]. (A parallelogram takes the general
		// path below, where g and h come out zero.)
		return Matrix3{
			a: x1 - x0, b: x2 - x1, c: x0,
			d: y1 - y0, e: y2 - y1, f: y0,
			g: 0, h: 0, i: 1,
		}, true
	}

	g := (sx*dy2 - dx2*sy) / det
	hh := (dx1*sy - sx*dy1) / det

	return Matrix3{
		a: x1 - x0 + g*x1, b: x3 - x0 + hh*x3, c: x0,
		d: y1 - y0 + g*y1, e: y3 - y0 + hh*y3, f: y0,
		g: g, h: hh, i: 1,
	}, true
}
