// Package cimage implements the rectangular pixel buffer used for
// compressed-payload decode targets, layer selections, and the source/
// destination of a perspective transform (spec.md §4.2). It plays the
// role the teacher's internal/image package plays for gg, but trades that
// package's multi-format ImageBuf for a single canonical representation:
// premultiplied BGRA (pixel.Pixel), which is all the canvas engine ever
// needs on either side of a codec or transform boundary.
package cimage

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/canvas/pixel"
)

// Image is a width×height grid of premultiplied pixels stored row-major,
// with no padding between rows — unlike the teacher's ImageBuf, Image
// never needs a stride distinct from width, because it is never a view
// into a larger buffer (SubImage there shares storage; Image's Subimage
// below always copies, per spec.md §4.2: "copy a rectangle").
type Image struct {
	width  int
	height int
	pix    []pixel.Pixel
}

// New returns a zero-filled (fully transparent) image of the given
// dimensions.
func New(width, height int) *Image {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	return &Image{width: width, height: height, pix: make([]pixel.Pixel, width*height)}
}

// Width returns the image width in pixels.
func (img *Image) Width() int { return img.width }

// Height returns the image height in pixels.
func (img *Image) Height() int { return img.height }

// At returns the pixel at (x, y). Out-of-range coordinates return the
// zero (transparent) pixel.
func (img *Image) At(x, y int) pixel.Pixel {
	if x < 0 || x >= img.width || y < 0 || y >= img.height {
		return pixel.Zero
	}
	return img.pix[y*img.width+x]
}

// Set writes the pixel at (x, y). Out-of-range coordinates are ignored.
func (img *Image) Set(x, y int, p pixel.Pixel) {
	if x < 0 || x >= img.width || y < 0 || y >= img.height {
		return
	}
	img.pix[y*img.width+x] = p
}

// Pix exposes the backing row-major pixel slice for bulk readers
// (codec encoders, the transform rasterizer's sampler).
func (img *Image) Pix() []pixel.Pixel { return img.pix }

// Decompressor decodes a deflated pixel payload into exactly
// width*height pixels in canonical BGRA order (the same collaborator
// shape as tile.Decompressor, spec.md §6 "Tile/image wire formats").
type Decompressor interface {
	DecompressImage(width, height int, payload []byte) ([]pixel.Pixel, error)
}

// FromCompressed decompresses payload via d into a new width×height
// image (spec.md §4.2 "from_compressed").
func FromCompressed(width, height int, payload []byte, d Decompressor) (*Image, error) {
	pixels, err := d.DecompressImage(width, height, payload)
	if err != nil {
		return nil, err
	}
	img := New(width, height)
	copy(img.pix, pixels)
	return img, nil
}

// FromCompressedMonochrome decodes a 1-bit-per-pixel, MSB-first mask
// with rows padded to a 32-bit boundary: a set bit becomes opaque white,
// a clear bit becomes fully transparent (spec.md §4.2
// "from_compressed_monochrome", §6 "Monochrome mask format").
func FromCompressedMonochrome(width, height int, payload []byte) (*Image, error) {
	rowBytes := (width + 7) / 8
	paddedRowBytes := (rowBytes + 3) &^ 3
	need := paddedRowBytes * height
	if len(payload) < need {
		return nil, errShortMonochromePayload
	}

	img := New(width, height)
	for y := 0; y < height; y++ {
		row := payload[y*paddedRowBytes : y*paddedRowBytes+rowBytes]
		for x := 0; x < width; x++ {
			byteIdx := x / 8
			bitIdx := 7 - uint(x%8)
			if row[byteIdx]&(1<<bitIdx) != 0 {
				img.Set(x, y, pixel.Opaque(255, 255, 255))
			}
		}
	}
	return img, nil
}

// Subimage copies the w×h rectangle at (x, y) out of img into a new
// image. The rectangle may extend outside img; pixels landing outside
// the source are zero (spec.md §4.2 "subimage").
func (img *Image) Subimage(x, y, w, h int) *Image {
	out := New(w, h)

	if x >= 0 && y >= 0 && x+w <= img.width && y+h <= img.height {
		draw.Draw(out.AsImage(), image.Rect(0, 0, w, h), img.AsImage(), image.Pt(x, y), draw.Src)
		return out
	}

	for row := 0; row < h; row++ {
		srcY := y + row
		if srcY < 0 || srcY >= img.height {
			continue
		}
		for col := 0; col < w; col++ {
			srcX := x + col
			if srcX < 0 || srcX >= img.width {
				continue
			}
			out.pix[row*w+col] = img.pix[srcY*img.width+srcX]
		}
	}
	return out
}

// errShortMonochromePayload is returned when a monochrome payload is
// smaller than its declared dimensions require.
var errShortMonochromePayload = monochromeErr("cimage: monochrome payload shorter than width/height imply")

type monochromeErr string

func (e monochromeErr) Error() string { return string(e) }
