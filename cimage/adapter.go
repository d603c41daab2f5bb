package cimage

import (
	"image"
	"image/color"

	"github.com/gogpu/canvas/pixel"
)

// asImage adapts an Image to the standard image.Image/draw.Image
// interfaces so stdlib and golang.org/x/image code (png encode/decode,
// draw.Draw) can operate on it directly, without copying through an
// intermediate image.RGBA.
type asImage struct{ img *Image }

func (a asImage) ColorModel() color.Model { return color.ModelFunc(pixelModel) }
func (a asImage) Bounds() image.Rectangle { return image.Rect(0, 0, a.img.width, a.img.height) }
func (a asImage) At(x, y int) color.Color { return a.img.At(x, y) }
func (a asImage) Set(x, y int, c color.Color) {
	if p, ok := c.(pixel.Pixel); ok {
		a.img.Set(x, y, p)
		return
	}
	r, g, b, al := c.RGBA()
	a.img.Set(x, y, pixel.Pixel{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(al >> 8)})
}

func pixelModel(c color.Color) color.Color {
	if _, ok := c.(pixel.Pixel); ok {
		return c
	}
	r, g, b, a := c.RGBA()
	return pixel.Pixel{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

// AsImage exposes img through the standard image.Image/draw.Image
// interfaces for callers that want to hand it to stdlib or
// golang.org/x/image code directly.
func (img *Image) AsImage() interface {
	image.Image
	Set(x, y int, c color.Color)
} {
	return asImage{img: img}
}
