package transform

import (
	"errors"
	"image"
	"image/color"

	"golang.org/x/image/math/f32"
	"golang.org/x/image/vector"

	"github.com/gogpu/canvas/cimage"
)

// ErrNotInvertible is returned when the destination quad degenerates
// (zero area, or otherwise yields a singular transform) and therefore
// has no inverse to sample the source through (spec.md §4.7).
var ErrNotInvertible = errors.New("transform: destination quad is not invertible")

// Apply fills dst so that pixels inside quad (expressed in dst's own
// pixel coordinate space) are bilinearly sampled from src via tf's
// inverse, with antialiased edge coverage supplied by a polygon
// rasterizer. Pixels outside quad are left untouched (spec.md §4.7).
func Apply(src *cimage.Image, dst *cimage.Image, quad Quad, tf Matrix3) error {
	z := vector.NewRasterizer(1, 1)
	return ApplyWithRasterizer(z, src, dst, quad, tf)
}

// ApplyWithRasterizer works like Apply but reuses z instead of
// allocating a fresh rasterizer, so a caller holding a pooled rasterizer
// (DrawContext's rasterizer pool, spec.md §5 "Shared resources") can
// avoid a per-call allocation.
func ApplyWithRasterizer(z *vector.Rasterizer, src *cimage.Image, dst *cimage.Image, quad Quad, tf Matrix3) error {
	inv, ok := tf.Invert()
	if !ok {
		return ErrNotInvertible
	}

	w, h := dst.Width(), dst.Height()
	if w <= 0 || h <= 0 {
		return nil
	}

	mask := rasterizeQuadMaskWith(z, quad, w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cov := mask.AlphaAt(x, y).A
			if cov == 0 {
				continue
			}
			sx, sy := inv.TransformPoint(float64(x)+0.5, float64(y)+0.5)
			sampled := sampleBilinear(src, sx, sy)
			if cov < 255 {
				sampled = scaleAlpha(sampled, cov)
			}
			dst.Set(x, y, sampled)
		}
	}
	return nil
}

// rasterizeQuadMask renders quad's antialiased coverage into a w×h
// alpha mask using golang.org/x/image/vector's scanline rasterizer —
// the polygon rasterizer spec.md §4.7 calls for sweeping output spans
// from the inverted matrix.
func rasterizeQuadMask(quad Quad, w, h int) *image.Alpha {
	z := vector.NewRasterizer(w, h)
	return rasterizeQuadMaskWith(z, quad, w, h)
}

// rasterizeQuadMaskWith is rasterizeQuadMask's pooled-rasterizer form:
// z is reset to w×h rather than allocated fresh.
func rasterizeQuadMaskWith(z *vector.Rasterizer, quad Quad, w, h int) *image.Alpha {
	z.Reset(w, h)
	z.MoveTo(f32.Vec2{float32(quad[0][0]), float32(quad[0][1])})
	z.LineTo(f32.Vec2{float32(quad[1][0]), float32(quad[1][1])})
	z.LineTo(f32.Vec2{float32(quad[2][0]), float32(quad[2][1])})
	z.LineTo(f32.Vec2{float32(quad[3][0]), float32(quad[3][1])})
	z.ClosePath()

	dst := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(dst, dst.Bounds(), image.NewUniform(color.Alpha{A: 255}), image.Point{})
	return dst
}

// ImageTransform computes dstQuad's bounding rectangle, allocates a
// destination image of that size, and warps src into it through the
// homography mapping src's full extent onto dstQuad translated into
// rectangle-local coordinates. It returns the destination image and the
// bounding rectangle's top-left corner in the caller's coordinate space
// (spec.md §4.7).
func ImageTransform(src *cimage.Image, dstQuad Quad) (*cimage.Image, int, int, error) {
	return ImageTransformWithRasterizer(vector.NewRasterizer(1, 1), src, dstQuad)
}

// ImageTransformWithRasterizer works like ImageTransform but reuses z
// instead of allocating — the form a caller holding a pooled rasterizer
// (DrawContext's rasterizer pool) should call.
func ImageTransformWithRasterizer(z *vector.Rasterizer, src *cimage.Image, dstQuad Quad) (*cimage.Image, int, int, error) {
	minX, minY, maxX, maxY := dstQuad.Bounds()
	w, h := maxX-minX, maxY-minY
	if w <= 0 || h <= 0 {
		return cimage.New(0, 0), minX, minY, nil
	}

	localQuad := dstQuad.Translated(float64(minX), float64(minY))
	tf, ok := quadToQuad(float64(src.Width()), float64(src.Height()), localQuad)
	if !ok {
		return nil, 0, 0, ErrNotInvertible
	}

	dst := cimage.New(w, h)
	if err := ApplyWithRasterizer(z, src, dst, localQuad, tf); err != nil {
		return nil, 0, 0, err
	}
	return dst, minX, minY, nil
}
