package codec

import (
	"bytes"
	"testing"

	"github.com/gogpu/canvas/cimage"
	"github.com/gogpu/canvas/pixel"
	"github.com/gogpu/canvas/tile"
)

func TestZlibRoundTrip(t *testing.T) {
	var z Zlib
	raw := bytes.Repeat([]byte{1, 2, 3, 4}, 100)
	compressed := z.Deflate(raw)
	got, err := z.Inflate(compressed, len(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Fatal("inflate(deflate(x)) != x")
	}
}

func TestZlibInflateSizeMismatch(t *testing.T) {
	var z Zlib
	raw := bytes.Repeat([]byte{9}, 40)
	compressed := z.Deflate(raw)
	if _, err := z.Inflate(compressed, 10); err == nil {
		t.Fatal("expected a size-mismatch error for too-small wantSize")
	}
}

func TestTileDecompressorRoundTrip(t *testing.T) {
	d := TileDecompressor{Codec: Zlib{}}
	pixels := make([]pixel.Pixel, tile.PixelCount)
	pixels[10] = pixel.Opaque(11, 22, 33)

	payload := d.CompressTile(pixels)
	got, err := d.DecompressTile(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[10] != pixels[10] {
		t.Fatal("round-tripped tile pixel mismatch")
	}
}

func TestImageDecompressorRoundTrip(t *testing.T) {
	d := ImageDecompressor{Codec: Zlib{}}
	pixels := []pixel.Pixel{
		pixel.Opaque(1, 2, 3), pixel.Opaque(4, 5, 6),
		pixel.Zero, pixel.Opaque(7, 8, 9),
	}
	payload := d.CompressImage(pixels)
	got, err := d.DecompressImage(2, 2, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range pixels {
		if got[i] != pixels[i] {
			t.Fatalf("pixel %d mismatch: got %+v want %+v", i, got[i], pixels[i])
		}
	}
}

func TestPNGRoundTrip(t *testing.T) {
	img := cimage.New(3, 2)
	img.Set(0, 0, pixel.Opaque(255, 0, 0))
	img.Set(2, 1, pixel.FromStraight(0, 255, 0, 128))

	var buf bytes.Buffer
	if err := WritePNG(&buf, img); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ReadPNG(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Width() != 3 || got.Height() != 2 {
		t.Fatalf("unexpected dims %dx%d", got.Width(), got.Height())
	}
	if got.At(0, 0) != pixel.Opaque(255, 0, 0) {
		t.Fatalf("opaque pixel round-trip mismatch: %+v", got.At(0, 0))
	}
}

func TestMaskDecompressorRoundTrip(t *testing.T) {
	// width=8 -> rowBytes=1, padded to 4.
	raw := []byte{0b11110000, 0, 0, 0}
	z := Zlib{}
	payload := z.Deflate(raw)

	d := MaskDecompressor{Codec: z}
	img, err := d.DecompressMask(8, 1, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.At(0, 0) != pixel.Opaque(255, 255, 255) {
		t.Fatal("bit 0 must decode opaque")
	}
	if img.At(7, 0) != pixel.Zero {
		t.Fatal("bit 7 must decode transparent")
	}
}
