package codec

import (
	"fmt"

	"github.com/gogpu/canvas/cimage"
)

// MaskDecompressor inflates a deflated monochrome mask payload and
// unpacks it into an Image via cimage.FromCompressedMonochrome
// (spec.md §6 "Monochrome mask format").
type MaskDecompressor struct {
	Codec Codec
}

// DecompressMask inflates payload and unpacks it as a width×height
// monochrome mask.
func (d MaskDecompressor) DecompressMask(width, height int, payload []byte) (*cimage.Image, error) {
	rowBytes := (width + 7) / 8
	paddedRowBytes := (rowBytes + 3) &^ 3
	raw, err := d.Codec.Inflate(payload, paddedRowBytes*height)
	if err != nil {
		return nil, fmt.Errorf("codec: mask: %w", err)
	}
	return cimage.FromCompressedMonochrome(width, height, raw)
}
