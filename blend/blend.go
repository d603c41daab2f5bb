package blend

import (
	"math"

	"github.com/gogpu/canvas/pixel"
)

// Mode names a compositing operator usable as a layer's or brush
// stroke's blend_mode (spec.md §3 "Invariants"). Normal is the zero
// value so an unset field defaults to ordinary alpha compositing.
type Mode uint8

const (
	// Normal composites source over destination: S + D*(1-Sa).
	Normal Mode = iota
	Multiply
	Screen
	Overlay
	Darken
	Lighten
	ColorDodge
	ColorBurn
	HardLight
	SoftLight
	Difference
	Exclusion
	Hue
	Saturation
	Color
	Luminosity
	// Erase clears the destination in proportion to the source's alpha:
	// D*(1-Sa). Layer-only; not brush-compatible.
	Erase
	// Replace discards the destination entirely: result is S. Layer-only;
	// not brush-compatible.
	Replace

	modeCount
)

// String returns the enum's name, matching the spelling used in
// spec.md's scenarios (e.g. "MULTIPLY").
func (m Mode) String() string {
	switch m {
	case Normal:
		return "NORMAL"
	case Multiply:
		return "MULTIPLY"
	case Screen:
		return "SCREEN"
	case Overlay:
		return "OVERLAY"
	case Darken:
		return "DARKEN"
	case Lighten:
		return "LIGHTEN"
	case ColorDodge:
		return "COLOR_DODGE"
	case ColorBurn:
		return "COLOR_BURN"
	case HardLight:
		return "HARD_LIGHT"
	case SoftLight:
		return "SOFT_LIGHT"
	case Difference:
		return "DIFFERENCE"
	case Exclusion:
		return "EXCLUSION"
	case Hue:
		return "HUE"
	case Saturation:
		return "SATURATION"
	case Color:
		return "COLOR"
	case Luminosity:
		return "LUMINOSITY"
	case Erase:
		return "ERASE"
	case Replace:
		return "REPLACE"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether m is a known enum value (spec.md §3: "blend_mode
// is a known enum value").
func (m Mode) Valid() bool { return m < modeCount }

// BrushCompatible reports whether m may be used for a brush/dab
// operation (spec.md §4.5: "blend mode for brush operations is drawn
// from the brush-compatible subset"). Erase and Replace only make sense
// as whole-layer compositing operators, not per-dab brush blending.
func (m Mode) BrushCompatible() bool {
	return m.Valid() && m != Erase && m != Replace
}

// Apply composites src over dst using mode and returns the resulting
// premultiplied pixel.
func Apply(mode Mode, src, dst pixel.Pixel) pixel.Pixel {
	switch mode {
	case Replace:
		return src
	case Erase:
		invSa := 255 - src.A
		return pixel.Pixel{
			R: mulDiv255(dst.R, invSa),
			G: mulDiv255(dst.G, invSa),
			B: mulDiv255(dst.B, invSa),
			A: mulDiv255(dst.A, invSa),
		}
	case Hue, Saturation, Color, Luminosity:
		return applyNonSeparable(mode, src, dst)
	default:
		return applySeparable(separableFunc(mode), src, dst)
	}
}

// channelFunc blends two unpremultiplied 8-bit channel values.
type channelFunc func(s, d uint8) uint8

func separableFunc(mode Mode) channelFunc {
	switch mode {
	case Multiply:
		return mulDiv255
	case Screen:
		return func(s, d uint8) uint8 {
			return 255 - mulDiv255(255-s, 255-d)
		}
	case Overlay:
		return func(s, d uint8) uint8 {
			if d < 128 {
				return mulDiv255(2*d, s)
			}
			return 255 - mulDiv255(2*(255-d), 255-s)
		}
	case Darken:
		return minByte
	case Lighten:
		return maxByte
	case ColorDodge:
		return func(s, d uint8) uint8 {
			if s == 255 {
				return 255
			}
			v := (uint16(d) * 255) / uint16(255-s)
			if v > 255 {
				return 255
			}
			return uint8(v)
		}
	case ColorBurn:
		return func(s, d uint8) uint8 {
			if s == 0 {
				return 0
			}
			v := (uint16(255-d) * 255) / uint16(s)
			if v > 255 {
				return 0
			}
			return 255 - uint8(v)
		}
	case HardLight:
		return func(s, d uint8) uint8 {
			if s < 128 {
				return mulDiv255(2*s, d)
			}
			return 255 - mulDiv255(2*(255-s), 255-d)
		}
	case SoftLight:
		return softLight
	case Difference:
		return func(s, d uint8) uint8 {
			if s > d {
				return s - d
			}
			return d - s
		}
	case Exclusion:
		return func(s, d uint8) uint8 {
			sum := uint16(s) + uint16(d)
			prod := uint16(mulDiv255(s, d))
			if prod*2 > sum {
				return 0
			}
			return uint8(sum - 2*prod)
		}
	default: // Normal and anything unrecognized falls back to source-over.
		return nil
	}
}

// applySeparable blends each color channel independently with fn, then
// composites the result using the standard Porter-Duff source-over
// alpha algebra. fn == nil means plain source-over (Normal).
func applySeparable(fn channelFunc, src, dst pixel.Pixel) pixel.Pixel {
	if fn == nil {
		return sourceOver(src, dst)
	}
	if src.A == 0 {
		return dst
	}
	if dst.A == 0 {
		return src
	}

	sur, sug, sub := unpremul(src.R, src.A), unpremul(src.G, src.A), unpremul(src.B, src.A)
	dur, dug, dub := unpremul(dst.R, dst.A), unpremul(dst.G, dst.A), unpremul(dst.B, dst.A)

	br := fn(sur, dur)
	bg := fn(sug, dug)
	bb := fn(sub, dub)

	invSa := 255 - src.A
	invDa := 255 - dst.A
	saDa := mulDiv255(src.A, dst.A)

	outA := addClamp(src.A, mulDiv255(dst.A, invSa))
	outR := addClamp(addClamp(mulDiv255(dst.R, invSa), mulDiv255(src.R, invDa)), mulDiv255(saDa, br))
	outG := addClamp(addClamp(mulDiv255(dst.G, invSa), mulDiv255(src.G, invDa)), mulDiv255(saDa, bg))
	outB := addClamp(addClamp(mulDiv255(dst.B, invSa), mulDiv255(src.B, invDa)), mulDiv255(saDa, bb))

	return pixel.Pixel{R: outR, G: outG, B: outB, A: outA}
}

func sourceOver(src, dst pixel.Pixel) pixel.Pixel {
	invSa := 255 - src.A
	return pixel.Pixel{
		R: addClamp(src.R, mulDiv255(dst.R, invSa)),
		G: addClamp(src.G, mulDiv255(dst.G, invSa)),
		B: addClamp(src.B, mulDiv255(dst.B, invSa)),
		A: addClamp(src.A, mulDiv255(dst.A, invSa)),
	}
}

func unpremul(c, a uint8) uint8 {
	if a == 0 {
		return 0
	}
	v := (uint16(c) * 255) / uint16(a)
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func softLight(s, d uint8) uint8 {
	sf := float64(s) / 255
	df := float64(d) / 255

	var result float64
	if sf <= 0.5 {
		result = df - (1-2*sf)*df*(1-df)
	} else {
		var dx float64
		if df <= 0.25 {
			dx = ((16*df-12)*df + 4) * df
		} else {
			dx = math.Sqrt(df)
		}
		result = df + (2*sf-1)*(dx-df)
	}
	if result < 0 {
		return 0
	}
	if result > 1 {
		return 255
	}
	return uint8(result * 255)
}
