package codec

import "github.com/gogpu/canvas/pixel"

// ImageDecompressor adapts a Codec to cimage.Decompressor: it inflates
// a payload to exactly width*height pixels in canonical BGRA wire
// order (spec.md §4.2 "from_compressed").
type ImageDecompressor struct {
	Codec Codec
}

// DecompressImage implements cimage.Decompressor.
func (d ImageDecompressor) DecompressImage(width, height int, payload []byte) ([]pixel.Pixel, error) {
	want := width * height * pixel.Size
	raw, err := d.Codec.Inflate(payload, want)
	if err != nil {
		return nil, err
	}
	pixels := make([]pixel.Pixel, width*height)
	for i := range pixels {
		pixels[i] = pixel.Decode(raw[i*pixel.Size : i*pixel.Size+pixel.Size])
	}
	return pixels, nil
}

// CompressImage deflates a width*height pixel grid back to a wire
// payload.
func (d ImageDecompressor) CompressImage(pixels []pixel.Pixel) []byte {
	raw := make([]byte, len(pixels)*pixel.Size)
	for i, p := range pixels {
		p.Encode(raw[i*pixel.Size : i*pixel.Size+pixel.Size])
	}
	return d.Codec.Deflate(raw)
}
