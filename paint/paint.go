// Package paint defines the Paint collaborator: brush-parameter
// interpretation is explicitly out of the core engine's scope (spec.md
// "Non-goals"), so the engine only depends on this narrow interface to
// turn one dab's parameters into a coverage stamp it can composite.
// DefaultPaint below is a minimal, self-contained implementation good
// enough to exercise DrawDabsClassic end-to-end; real deployments are
// expected to supply their own.
package paint

import (
	"math"

	"github.com/gogpu/canvas/pixel"
)

// ClassicDab is one parameterized brush dab for DrawDabsClassic — a
// soft circular stamp with independent radius and hardness, as opposed
// to DrawDabsPixel/DrawDabsPixelSquare's fixed-shape pixel dabs.
type ClassicDab struct {
	X, Y    float64 // center, in layer-local pixel coordinates
	Radius  float64 // outer radius in pixels
	Hardness float64 // 0 = soft falloff from center, 1 = hard disk edge
	Opacity uint8   // per-dab opacity, combined with the stroke color's alpha
	Color   pixel.Pixel
}

// Paint turns brush parameters into a pixel-coverage stamp. Bounds
// gives the pixel box a dab can touch, so callers can skip untouched
// tiles; Sample gives the premultiplied color to composite at a pixel
// in the same coordinates as the dab's center.
type Paint interface {
	// Bounds returns the integer pixel bounding box (inclusive of
	// antialiasing falloff) that a dab can affect.
	Bounds(dab ClassicDab) (minX, minY, maxX, maxY int)
	// Sample returns the coverage-weighted color to composite at (x, y).
	// Returns the zero pixel outside the dab's footprint.
	Sample(dab ClassicDab, x, y int) pixel.Pixel
}

// DefaultPaint renders a radially-antialiased soft circular dab: fully
// opaque within hardness*radius of the center, falling off linearly to
// zero at radius.
type DefaultPaint struct{}

// Bounds implements Paint.
func (DefaultPaint) Bounds(dab ClassicDab) (minX, minY, maxX, maxY int) {
	r := dab.Radius
	return int(math.Floor(dab.X - r)), int(math.Floor(dab.Y - r)),
		int(math.Ceil(dab.X + r)), int(math.Ceil(dab.Y + r))
}

// Sample implements Paint.
func (DefaultPaint) Sample(dab ClassicDab, x, y int) pixel.Pixel {
	if dab.Radius <= 0 {
		return pixel.Zero
	}
	dx := float64(x) + 0.5 - dab.X
	dy := float64(y) + 0.5 - dab.Y
	dist := math.Sqrt(dx*dx + dy*dy)
	if dist > dab.Radius {
		return pixel.Zero
	}

	hardRadius := dab.Hardness * dab.Radius
	var coverage float64
	switch {
	case dist <= hardRadius:
		coverage = 1
	case dab.Radius > hardRadius:
		coverage = 1 - (dist-hardRadius)/(dab.Radius-hardRadius)
	default:
		coverage = 0
	}
	if coverage <= 0 {
		return pixel.Zero
	}

	a := float64(dab.Opacity) * coverage
	scale := a / 255
	r, g, b, srcA := dab.Color.Straight()
	outA := uint8(math.Min(255, float64(srcA)*scale))
	return pixel.FromStraight(r, g, b, outA)
}
