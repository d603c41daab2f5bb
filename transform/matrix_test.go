package transform

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestIdentityTransformPoint(t *testing.T) {
	m := Identity()
	x, y := m.TransformPoint(3, 4)
	if !almostEqual(x, 3) || !almostEqual(y, 4) {
		t.Fatalf("identity must be a no-op, got (%v, %v)", x, y)
	}
}

func TestTranslateAndInvert(t *testing.T) {
	m := Translate(10, -5)
	x, y := m.TransformPoint(1, 1)
	if !almostEqual(x, 11) || !almostEqual(y, -4) {
		t.Fatalf("unexpected translated point (%v, %v)", x, y)
	}

	inv, ok := m.Invert()
	if !ok {
		t.Fatal("translation must be invertible")
	}
	bx, by := inv.TransformPoint(x, y)
	if !almostEqual(bx, 1) || !almostEqual(by, 1) {
		t.Fatalf("inverse did not round-trip: (%v, %v)", bx, by)
	}
}

func TestSingularMatrixNotInvertible(t *testing.T) {
	m := Matrix3{} // all-zero: determinant is zero
	if _, ok := m.Invert(); ok {
		t.Fatal("zero matrix must not be invertible")
	}
}

func TestQuadBounds(t *testing.T) {
	q := Quad{{1.2, 1.8}, {9.1, 2.0}, {9.9, 8.4}, {0.5, 8.0}}
	minX, minY, maxX, maxY := q.Bounds()
	if minX != 0 || minY != 1 || maxX != 10 || maxY != 9 {
		t.Fatalf("unexpected bounds: %d %d %d %d", minX, minY, maxX, maxY)
	}
}

func TestSquareToQuadIdentityRect(t *testing.T) {
	// A destination quad that is exactly the unit square's corners scaled
	// by (w, h) should reduce to a pure scale — transforming the source
	// rectangle's own corners must land on the quad's corners exactly.
	w, h := 10.0, 20.0
	dst := Quad{{0, 0}, {w, 0}, {w, h}, {0, h}}
	tf, ok := quadToQuad(w, h, dst)
	if !ok {
		t.Fatal("expected an invertible transform for an axis-aligned quad")
	}
	for _, c := range []struct{ sx, sy, ex, ey float64 }{
		{0, 0, 0, 0},
		{w, 0, w, 0},
		{w, h, w, h},
		{0, h, 0, h},
	} {
		x, y := tf.TransformPoint(c.sx, c.sy)
		if !almostEqual(x, c.ex) || !almostEqual(y, c.ey) {
			t.Fatalf("corner (%v,%v) mapped to (%v,%v), want (%v,%v)", c.sx, c.sy, x, y, c.ex, c.ey)
		}
	}
}

func TestQuadToQuadPerspective(t *testing.T) {
	// A genuinely non-parallelogram destination quad exercises the
	// perspective (g, h != 0) branch.
	w, h := 10.0, 10.0
	dst := Quad{{0, 0}, {20, 0}, {15, 20}, {5, 20}}
	tf, ok := quadToQuad(w, h, dst)
	if !ok {
		t.Fatal("expected a valid transform")
	}
	for i, c := range [][2]float64{{0, 0}, {w, 0}, {w, h}, {0, h}} {
		x, y := tf.TransformPoint(c[0], c[1])
		if !almostEqual(x, dst[i][0]) || !almostEqual(y, dst[i][1]) {
			t.Fatalf("corner %d mapped to (%v,%v), want %v", i, x, y, dst[i])
		}
	}
}
