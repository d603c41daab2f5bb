package codec

import (
	"github.com/gogpu/canvas/pixel"
	"github.com/gogpu/canvas/tile"
)

// TileDecompressor adapts a Codec to tile.Decompressor: it inflates a
// payload to exactly tile.PixelCount pixels (tile.Size × tile.Size × 4
// bytes) and decodes each one from canonical BGRA wire order.
type TileDecompressor struct {
	Codec Codec
}

// DecompressTile implements tile.Decompressor.
func (d TileDecompressor) DecompressTile(payload []byte) ([]pixel.Pixel, error) {
	raw, err := d.Codec.Inflate(payload, tile.PixelCount*pixel.Size)
	if err != nil {
		return nil, err
	}
	pixels := make([]pixel.Pixel, tile.PixelCount)
	for i := range pixels {
		pixels[i] = pixel.Decode(raw[i*pixel.Size : i*pixel.Size+pixel.Size])
	}
	return pixels, nil
}

// CompressTile deflates a full tile.PixelCount pixel grid back to a
// wire payload (the PutTile / CanvasBackground message encoder's
// counterpart, and round-trip test fixture support).
func (d TileDecompressor) CompressTile(pixels []pixel.Pixel) []byte {
	raw := make([]byte, len(pixels)*pixel.Size)
	for i, p := range pixels {
		p.Encode(raw[i*pixel.Size : i*pixel.Size+pixel.Size])
	}
	return d.Codec.Deflate(raw)
}
