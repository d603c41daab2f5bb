package codec

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/gogpu/canvas/cimage"
	"github.com/gogpu/canvas/pixel"
)

// maxPNGDimension bounds width and height per spec.md §6 ("width and
// height bounded by 32767").
const maxPNGDimension = 32767

// ReadPNG decodes r into an Image. Any bit depth is scaled to 8 by the
// standard library's color-model conversion; paletted and grayscale
// sources are expanded to RGBA. The result is always premultiplied,
// since color.Color.RGBA() returns premultiplied 16-bit channels
// regardless of the source model — the conversion the spec calls for
// falls out of using the stdlib decoder rather than hand-rolling it.
func ReadPNG(r io.Reader) (*cimage.Image, error) {
	src, err := png.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("codec: png decode: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 || w > maxPNGDimension || h > maxPNGDimension {
		return nil, fmt.Errorf("codec: png dimensions %dx%d out of range", w, h)
	}

	out := cimage.New(w, h)

	if rgba, ok := src.(*image.RGBA); ok {
		for y := 0; y < h; y++ {
			row := rgba.Pix[(y)*rgba.Stride : (y)*rgba.Stride+w*4]
			for x := 0; x < w; x++ {
				o := x * 4
				out.Set(x, y, pixel.Pixel{R: row[o], G: row[o+1], B: row[o+2], A: row[o+3]})
			}
		}
		return out, nil
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			out.Set(x, y, pixel.Pixel{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)})
		}
	}
	return out, nil
}

// WritePNG encodes img as an 8-bit RGBA PNG with no interlacing and the
// standard library's default compression and filter heuristics
// (spec.md §6 "Writer: emits 8-bit RGBA PNG ... default compression,
// default filter").
func WritePNG(w io.Writer, img *cimage.Image) error {
	width, height := img.Width(), img.Height()
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := img.At(x, y)
			r, g, b, a := p.Straight()
			dst.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: a})
		}
	}

	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(w, dst); err != nil {
		return fmt.Errorf("codec: png encode: %w", err)
	}
	return nil
}
