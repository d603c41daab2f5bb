// Package pixel defines the canonical pixel representation shared by
// every tile, image, and layer in the canvas engine: 32-bit BGRA,
// premultiplied alpha, byte order fixed regardless of host endianness.
//
// Grounded on the teacher's color.go (RGBA value type, Hex/clamp helpers)
// and internal/image/format.go (FormatBGRAPremul), adapted from float
// unpremultiplied RGBA to byte premultiplied BGRA per spec.md §3.
package pixel

import "image/color"

// Pixel is one premultiplied BGRA pixel. Byte order (B, G, R, A) is the
// in-memory canonical order described by spec.md §3 and is independent
// of host endianness — callers never cast a Pixel slice to []uint32 and
// expect portable results; use Encode/Decode at I/O boundaries instead.
type Pixel struct {
	B, G, R, A uint8
}

var _ color.Color = Pixel{}

// Size is the number of bytes one Pixel occupies in a wire or tile buffer.
const Size = 4

// Zero is the fully transparent pixel (all channels zero). It is the
// content of the blank tile singleton.
var Zero Pixel

// Opaque builds a fully opaque premultiplied pixel from 8-bit components.
func Opaque(r, g, b uint8) Pixel {
	return Pixel{B: b, G: g, R: r, A: 0xff}
}

// FromStraight premultiplies straight-alpha 8-bit components into a Pixel.
func FromStraight(r, g, b, a uint8) Pixel {
	return Pixel{
		B: straightToPremul(b, a),
		G: straightToPremul(g, a),
		R: straightToPremul(r, a),
		A: a,
	}
}

func straightToPremul(c, a uint8) uint8 {
	return uint8((uint32(c)*uint32(a) + 127) / 255)
}

// Straight returns the unpremultiplied (straight-alpha) components.
// If A is zero, the color channels are returned as zero.
func (p Pixel) Straight() (r, g, b, a uint8) {
	if p.A == 0 {
		return 0, 0, 0, 0
	}
	return premulToStraight(p.R, p.A), premulToStraight(p.G, p.A), premulToStraight(p.B, p.A), p.A
}

func premulToStraight(c, a uint8) uint8 {
	v := uint32(c) * 255 / uint32(a)
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

// Decode reads one BGRA pixel from the canonical 4-byte wire layout.
func Decode(b []byte) Pixel {
	return Pixel{B: b[0], G: b[1], R: b[2], A: b[3]}
}

// Encode writes p into the canonical 4-byte wire layout.
func (p Pixel) Encode(b []byte) {
	b[0], b[1], b[2], b[3] = p.B, p.G, p.R, p.A
}

// FromUint32BGRA builds a Pixel from a wire color packed as 0xBBGGRRAA
// (big end first): the convention used by PutTile/CanvasBackground solid
// tile-fill payloads, where the 4 bytes of the uint32 are the same B,G,R,A
// sequence as the tile wire format.
func FromUint32BGRA(v uint32) Pixel {
	return Pixel{
		B: uint8(v >> 24),
		G: uint8(v >> 16),
		R: uint8(v >> 8),
		A: uint8(v),
	}
}

// FromUint32ARGB builds a premultiplied Pixel from a brush color packed
// as 0xAARRGGBB — the convention used by DrawDabs* message color fields.
// The input components are straight (unpremultiplied) alpha.
func FromUint32ARGB(v uint32) Pixel {
	a := uint8(v >> 24)
	r := uint8(v >> 16)
	g := uint8(v >> 8)
	b := uint8(v)
	return FromStraight(r, g, b, a)
}

// DabOpacity extracts the opacity byte ((color>>24)&0xff) from a brush
// color packed as 0xAARRGGBB, per spec.md §4.5's indirect-mode sublayer
// opacity rule.
func DabOpacity(colorARGB uint32) uint8 {
	return uint8(colorARGB >> 24)
}

// RGBA implements color.Color: since Pixel is already alpha-premultiplied,
// this is a straight 8-to-16-bit channel widening (each component
// repeated into the high and low byte), letting a Pixel stand in for
// image/color.Color anywhere the standard library or golang.org/x/image
// expects one (cimage's draw.Image adapter, the transform rasterizer).
func (p Pixel) RGBA() (r, g, b, a uint32) {
	r = uint32(p.R) * 0x101
	g = uint32(p.G) * 0x101
	b = uint32(p.B) * 0x101
	a = uint32(p.A) * 0x101
	return
}

// Equal reports whether p and o have identical channel values.
func (p Pixel) Equal(o Pixel) bool { return p == o }

// IsTransparent reports whether p is fully transparent (the blank-tile fill value).
func (p Pixel) IsTransparent() bool { return p == Zero }
