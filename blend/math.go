// Package blend implements the layer and brush compositing formulas used
// across the canvas engine: separable (Porter-Duff style) and
// non-separable (HSL-based) blend modes operating on premultiplied
// [pixel.Pixel] values.
//
// Adapted from the teacher's internal/blend package (math.go, porter_duff.go,
// advanced.go, hsl.go), which already operated on premultiplied bytes —
// the arithmetic carries over directly, only the surrounding Mode set and
// entry point changed to match spec.md's layer/brush vocabulary.
package blend

// div255 divides x by 255 using a fast shift approximation:
// (x + 255) >> 8. Off by at most 1 from exact division, imperceptible for
// 8-bit color channels and about 5x cheaper than integer division.
func div255(x uint16) uint16 {
	return (x + 255) >> 8
}

// mulDiv255 computes round(a*b/255) using the div255 approximation.
func mulDiv255(a, b uint8) uint8 {
	return uint8(div255(uint16(a) * uint16(b)))
}

func addClamp(a, b uint8) uint8 {
	sum := uint16(a) + uint16(b)
	if sum > 255 {
		return 255
	}
	return uint8(sum)
}

func minByte(a, b uint8) uint8 {
	if a < b {
		return a
	}
	return b
}

func maxByte(a, b uint8) uint8 {
	if a > b {
		return a
	}
	return b
}
