package transform

import (
	"math"

	"github.com/gogpu/canvas/cimage"
	"github.com/gogpu/canvas/pixel"
)

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func lerp(a, b, t float64) float64 { return a*(1-t) + b*t }

// sampleBilinear samples src at continuous pixel coordinates (x, y),
// clamping to the edge outside [0, w)x[0, h) — adapted from the
// teacher's internal/image.SampleBilinear, ported from normalized (u,v)
// coordinates to direct pixel coordinates and from separate r/g/b/a
// bytes to a premultiplied pixel.Pixel.
func sampleBilinear(src *cimage.Image, x, y float64) pixel.Pixel {
	w, h := src.Width(), src.Height()
	if w == 0 || h == 0 {
		return pixel.Zero
	}

	fx := x - 0.5
	fy := y - 0.5
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)
	x1 := x0 + 1
	y1 := y0 + 1

	x0 = clampInt(x0, 0, w-1)
	y0 = clampInt(y0, 0, h-1)
	x1 = clampInt(x1, 0, w-1)
	y1 = clampInt(y1, 0, h-1)

	p00 := src.At(x0, y0)
	p10 := src.At(x1, y0)
	p01 := src.At(x0, y1)
	p11 := src.At(x1, y1)

	r := lerp(lerp(float64(p00.R), float64(p10.R), tx), lerp(float64(p01.R), float64(p11.R), tx), ty)
	g := lerp(lerp(float64(p00.G), float64(p10.G), tx), lerp(float64(p01.G), float64(p11.G), tx), ty)
	b := lerp(lerp(float64(p00.B), float64(p10.B), tx), lerp(float64(p01.B), float64(p11.B), tx), ty)
	a := lerp(lerp(float64(p00.A), float64(p10.A), tx), lerp(float64(p01.A), float64(p11.A), tx), ty)

	return pixel.Pixel{R: uint8(r + 0.5), G: uint8(g + 0.5), B: uint8(b + 0.5), A: uint8(a + 0.5)}
}

// scaleAlpha scales every channel of a premultiplied pixel by cov/255,
// applying rasterizer edge coverage to an otherwise fully-sampled pixel.
func scaleAlpha(p pixel.Pixel, cov uint8) pixel.Pixel {
	if cov == 255 {
		return p
	}
	return pixel.Pixel{
		R: uint8((uint16(p.R)*uint16(cov) + 127) / 255),
		G: uint8((uint16(p.G)*uint16(cov) + 127) / 255),
		B: uint8((uint16(p.B)*uint16(cov) + 127) / 255),
		A: uint8((uint16(p.A)*uint16(cov) + 127) / 255),
	}
}
