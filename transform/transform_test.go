package transform

import (
	"testing"

	"github.com/gogpu/canvas/cimage"
	"github.com/gogpu/canvas/pixel"
)

func solidImage(w, h int, c pixel.Pixel) *cimage.Image {
	img := cimage.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestImageTransformIdentityQuadPreservesColor(t *testing.T) {
	red := pixel.Opaque(255, 0, 0)
	src := solidImage(8, 8, red)

	dst, offX, offY, err := ImageTransform(src, FromRect(8, 8))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if offX != 0 || offY != 0 {
		t.Fatalf("expected zero offset, got (%d, %d)", offX, offY)
	}
	if dst.Width() != 8 || dst.Height() != 8 {
		t.Fatalf("unexpected dst dims %dx%d", dst.Width(), dst.Height())
	}
	// Interior pixels must come back exactly the fill color; a solid
	// source under a fully-covered identity quad has no antialiasing
	// to soften.
	if got := dst.At(4, 4); got != red {
		t.Fatalf("interior pixel = %+v, want %+v", got, red)
	}
}

func TestImageTransformOffsetMatchesBounds(t *testing.T) {
	src := solidImage(4, 4, pixel.Opaque(0, 255, 0))
	quad := Quad{{10, 10}, {14, 10}, {14, 14}, {10, 14}}

	dst, offX, offY, err := ImageTransform(src, quad)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if offX != 10 || offY != 10 {
		t.Fatalf("offset = (%d, %d), want (10, 10)", offX, offY)
	}
	if dst.Width() != 4 || dst.Height() != 4 {
		t.Fatalf("unexpected dst dims %dx%d", dst.Width(), dst.Height())
	}
}

func TestImageTransformDegenerateQuadIsEmpty(t *testing.T) {
	src := solidImage(4, 4, pixel.Opaque(1, 1, 1))
	quad := Quad{{0, 0}, {0, 0}, {0, 0}, {0, 0}}

	dst, _, _, err := ImageTransform(src, quad)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dst.Width() != 0 || dst.Height() != 0 {
		t.Fatal("a zero-area quad must produce an empty image, not an error")
	}
}

func TestApplyLeavesOutsideQuadUntouched(t *testing.T) {
	src := solidImage(4, 4, pixel.Opaque(255, 255, 255))
	dst := solidImage(8, 8, pixel.Opaque(1, 2, 3))
	// A quad covering only the left half of dst.
	quad := Quad{{0, 0}, {4, 0}, {4, 8}, {0, 8}}
	tf, ok := quadToQuad(4, 4, quad)
	if !ok {
		t.Fatal("expected invertible transform")
	}
	if err := Apply(src, dst, quad, tf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := dst.At(7, 7); got != pixel.Opaque(1, 2, 3) {
		t.Fatalf("pixel outside quad was touched: %+v", got)
	}
}
