package tile

import (
	"errors"
	"testing"

	"github.com/gogpu/canvas/pixel"
)

func TestBlankSingleton(t *testing.T) {
	a := Blank()
	b := Blank()
	if !a.IsBlank() || !b.IsBlank() {
		t.Fatal("Blank() must report IsBlank")
	}
	if !a.Equal(b) {
		t.Fatal("two Blank() calls must compare equal")
	}
	// Retain/Release on blank must not panic.
	a.Retain()
	a.Release()
}

func TestFromSolidColorTransparentIsBlank(t *testing.T) {
	got := FromSolidColor(1, pixel.Zero)
	if !got.IsBlank() {
		t.Fatal("a fully transparent solid color must collapse to blank")
	}
}

func TestFromSolidColorOpaque(t *testing.T) {
	c := pixel.Opaque(255, 0, 0)
	tl := FromSolidColor(1, c)
	if tl.IsBlank() {
		t.Fatal("opaque solid color must not be blank")
	}
	if tl.At(0, 0) != c || tl.At(Size-1, Size-1) != c {
		t.Fatal("every pixel must equal the fill color")
	}
	if tl.At(-1, 0) != pixel.Zero || tl.At(Size, 0) != pixel.Zero {
		t.Fatal("out-of-range At must return the zero pixel")
	}
}

type stubDecompressor struct {
	pix []pixel.Pixel
	err error
}

func (s stubDecompressor) DecompressTile(_ []byte) ([]pixel.Pixel, error) {
	return s.pix, s.err
}

func TestFromCompressed(t *testing.T) {
	pixels := make([]pixel.Pixel, PixelCount)
	pixels[0] = pixel.Opaque(10, 20, 30)
	tl, err := FromCompressed(1, nil, stubDecompressor{pix: pixels})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tl.At(0, 0) != pixels[0] {
		t.Fatal("decompressed pixel 0 mismatch")
	}

	wantErr := errors.New("boom")
	_, err = FromCompressed(1, nil, stubDecompressor{err: wantErr})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped decode error, got %v", err)
	}
}

func TestFromCompressedAllZeroIsBlank(t *testing.T) {
	pixels := make([]pixel.Pixel, PixelCount)
	tl, err := FromCompressed(1, nil, stubDecompressor{pix: pixels})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tl.IsBlank() {
		t.Fatal("all-zero decompressed tile must collapse to blank")
	}
}

func TestTransientRoundTrip(t *testing.T) {
	src := FromSolidColor(1, pixel.Opaque(1, 2, 3))
	tr := TransientFrom(src)
	tr.Set(5, 5, pixel.Opaque(9, 9, 9))

	frozen := Persist(tr)
	if frozen.Equal(src) {
		t.Fatal("mutated transient must not persist back to the same identity")
	}
	if frozen.At(5, 5) != pixel.Opaque(9, 9, 9) {
		t.Fatal("mutated pixel did not survive persist")
	}
	if frozen.At(0, 0) != pixel.Opaque(1, 2, 3) {
		t.Fatal("untouched pixels must survive the clone")
	}
	// Original tile must be unaffected — COW, not in-place mutation.
	if src.At(5, 5) != pixel.Opaque(1, 2, 3) {
		t.Fatal("source tile must not be mutated by its transient clone")
	}
}

func TestTransientBlankPersistsToBlankSingleton(t *testing.T) {
	tr := TransientBlank()
	got := Persist(tr)
	if !got.IsBlank() {
		t.Fatal("an untouched transient must persist to the blank singleton")
	}
}

func TestRetainReleaseCycle(t *testing.T) {
	tl := FromSolidColor(1, pixel.Opaque(1, 1, 1))
	tl2 := tl.Retain()
	if tl2.refs.Count() != 2 {
		t.Fatalf("expected count 2 after retain, got %d", tl2.refs.Count())
	}
	tl2.Release()
	if tl.refs.Count() != 1 {
		t.Fatalf("expected count 1 after release, got %d", tl.refs.Count())
	}
}
