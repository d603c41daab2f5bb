package pixel

import "testing"

func TestFromStraightRoundTrip(t *testing.T) {
	p := FromStraight(200, 100, 50, 128)
	r, g, b, a := p.Straight()
	if a != 128 {
		t.Fatalf("alpha round trip: got %d, want 128", a)
	}
	// Premultiplication is lossy; allow the rounding slack inherent in
	// 8-bit premultiply/unpremultiply.
	if absDiff(r, 200) > 1 || absDiff(g, 100) > 1 || absDiff(b, 50) > 1 {
		t.Fatalf("straight round trip out of tolerance: got (%d,%d,%d), want ~(200,100,50)", r, g, b)
	}
}

func TestStraightOfTransparentIsZero(t *testing.T) {
	p := FromStraight(255, 255, 255, 0)
	r, g, b, a := p.Straight()
	if r != 0 || g != 0 || b != 0 || a != 0 {
		t.Fatalf("transparent pixel must report zero straight channels, got (%d,%d,%d,%d)", r, g, b, a)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := Pixel{B: 1, G: 2, R: 3, A: 4}
	buf := make([]byte, Size)
	p.Encode(buf)
	if got := Decode(buf); got != p {
		t.Fatalf("decode(encode(p)) = %+v, want %+v", got, p)
	}
	if buf[0] != 1 || buf[1] != 2 || buf[2] != 3 || buf[3] != 4 {
		t.Fatalf("wire order must be B,G,R,A, got %v", buf)
	}
}

func TestFromUint32BGRA(t *testing.T) {
	p := FromUint32BGRA(0x0A141E28)
	want := Pixel{B: 0x0A, G: 0x14, R: 0x1E, A: 0x28}
	if p != want {
		t.Fatalf("FromUint32BGRA = %+v, want %+v", p, want)
	}
}

func TestFromUint32ARGBPremultiplies(t *testing.T) {
	p := FromUint32ARGB(0x80FF0000)
	if p.A != 0x80 {
		t.Fatalf("alpha = %#x, want 0x80", p.A)
	}
	if p.R == 0xFF {
		t.Fatal("red channel must be premultiplied down, not left at full intensity")
	}
	if p.G != 0 || p.B != 0 {
		t.Fatalf("green/blue must stay zero, got G=%#x B=%#x", p.G, p.B)
	}
}

func TestDabOpacity(t *testing.T) {
	if got := DabOpacity(0x80FF0000); got != 0x80 {
		t.Fatalf("DabOpacity = %#x, want 0x80", got)
	}
}

func TestRGBAImplementsColorColor(t *testing.T) {
	p := Opaque(0x10, 0x20, 0x30)
	r, g, b, a := p.RGBA()
	if a != 0xFFFF {
		t.Fatalf("opaque alpha = %#x, want 0xFFFF", a)
	}
	if r != 0x1010 || g != 0x2020 || b != 0x3030 {
		t.Fatalf("RGBA channel widening wrong: got (%#x,%#x,%#x)", r, g, b)
	}
}

func TestIsTransparent(t *testing.T) {
	if !Zero.IsTransparent() {
		t.Fatal("Zero must be transparent")
	}
	if Opaque(1, 2, 3).IsTransparent() {
		t.Fatal("an opaque pixel must not report transparent")
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
