package blend

import "github.com/gogpu/canvas/pixel"

// Non-separable blend modes (Hue, Saturation, Color, Luminosity) operate
// on the whole RGB triplet via the W3C Compositing and Blending Level 1
// SetLum/SetSat/ClipColor algorithms, adapted here from the teacher's
// internal/blend/hsl.go (normalized-to-[0,1] math, carried out in float64;
// only the premultiplied-pixel plumbing around it is new).

func lum(r, g, b float64) float64 { return 0.30*r + 0.59*g + 0.11*b }

func sat(r, g, b float64) float64 { return max3(r, g, b) - min3(r, g, b) }

func clipColor(r, g, b float64) (float64, float64, float64) {
	l := lum(r, g, b)
	n := min3(r, g, b)
	x := max3(r, g, b)
	if n < 0 {
		r = l + (r-l)*l/(l-n)
		g = l + (g-l)*l/(l-n)
		b = l + (b-l)*l/(l-n)
	}
	if x > 1 {
		r = l + (r-l)*(1-l)/(x-l)
		g = l + (g-l)*(1-l)/(x-l)
		b = l + (b-l)*(1-l)/(x-l)
	}
	return r, g, b
}

func setLum(r, g, b, l float64) (float64, float64, float64) {
	d := l - lum(r, g, b)
	return clipColor(r+d, g+d, b+d)
}

func setSat(r, g, b, s float64) (float64, float64, float64) {
	minPtr, midPtr, maxPtr := sortRGB(&r, &g, &b)
	minVal, midVal, maxVal := *minPtr, *midPtr, *maxPtr
	if maxVal > minVal {
		*midPtr = ((midVal - minVal) * s) / (maxVal - minVal)
		*maxPtr = s
		*minPtr = 0
	} else {
		*minPtr, *midPtr, *maxPtr = 0, 0, 0
	}
	return r, g, b
}

func sortRGB(r, g, b *float64) (minPtr, midPtr, maxPtr *float64) {
	switch {
	case *r <= *g && *g <= *b:
		return r, g, b
	case *r <= *b && *b <= *g:
		return r, b, g
	case *b <= *r && *r <= *g:
		return b, r, g
	case *g <= *r && *r <= *b:
		return g, r, b
	case *g <= *b && *b <= *r:
		return g, b, r
	default:
		return b, g, r
	}
}

func min3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func max3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func hslHue(sr, sg, sb, dr, dg, db float64) (float64, float64, float64) {
	r, g, b := setSat(sr, sg, sb, sat(dr, dg, db))
	return setLum(r, g, b, lum(dr, dg, db))
}

func hslSaturation(sr, sg, sb, dr, dg, db float64) (float64, float64, float64) {
	r, g, b := setSat(dr, dg, db, sat(sr, sg, sb))
	return setLum(r, g, b, lum(dr, dg, db))
}

func hslColor(sr, sg, sb, dr, dg, db float64) (float64, float64, float64) {
	return setLum(sr, sg, sb, lum(dr, dg, db))
}

func hslLuminosity(sr, sg, sb, dr, dg, db float64) (float64, float64, float64) {
	return setLum(dr, dg, db, lum(sr, sg, sb))
}

// applyNonSeparable unpremultiplies both operands, runs the RGB-triplet
// blend function, then recomposites with the usual source-over alpha
// algebra (the W3C spec's B(Cb,Cs) plugged into the same formula used
// by applySeparable).
func applyNonSeparable(mode Mode, src, dst pixel.Pixel) pixel.Pixel {
	if src.A == 0 {
		return dst
	}
	if dst.A == 0 {
		return src
	}

	sr := float64(unpremul(src.R, src.A)) / 255
	sg := float64(unpremul(src.G, src.A)) / 255
	sb := float64(unpremul(src.B, src.A)) / 255
	dr := float64(unpremul(dst.R, dst.A)) / 255
	dg := float64(unpremul(dst.G, dst.A)) / 255
	db := float64(unpremul(dst.B, dst.A)) / 255

	var br, bg, bb float64
	switch mode {
	case Hue:
		br, bg, bb = hslHue(sr, sg, sb, dr, dg, db)
	case Saturation:
		br, bg, bb = hslSaturation(sr, sg, sb, dr, dg, db)
	case Color:
		br, bg, bb = hslColor(sr, sg, sb, dr, dg, db)
	default: // Luminosity
		br, bg, bb = hslLuminosity(sr, sg, sb, dr, dg, db)
	}

	invSa := 255 - src.A
	invDa := 255 - dst.A
	saDa := mulDiv255(src.A, dst.A)

	outA := addClamp(src.A, mulDiv255(dst.A, invSa))
	outR := addClamp(addClamp(mulDiv255(dst.R, invSa), mulDiv255(src.R, invDa)), mulDiv255(saDa, to255(br)))
	outG := addClamp(addClamp(mulDiv255(dst.G, invSa), mulDiv255(src.G, invDa)), mulDiv255(saDa, to255(bg)))
	outB := addClamp(addClamp(mulDiv255(dst.B, invSa), mulDiv255(src.B, invDa)), mulDiv255(saDa, to255(bb)))

	return pixel.Pixel{R: outR, G: outG, B: outB, A: outA}
}

func to255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 255
	}
	return uint8(v * 255)
}
