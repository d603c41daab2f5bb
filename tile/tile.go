// Package tile implements the fixed-size, reference-counted pixel block
// that is the unit of storage, diffing, and rendering for a canvas layer
// (spec.md §3, §4.1).
//
// Grounded on the teacher's internal/image buffer-pool pattern
// (internal/image/pool.go, which is not part of this module) for
// the allocate/clear/reuse shape, and on internal/refcount for the
// shared-ownership bookkeeping.
package tile

import (
	"github.com/gogpu/canvas/internal/refcount"
	"github.com/gogpu/canvas/pixel"
)

// Size is the side length of a tile in pixels (spec.md §3: TILE_SIZE = 64).
const Size = 64

// PixelCount is the number of pixels in one tile.
const PixelCount = Size * Size

// block is the mutable pixel storage shared (by pointer) between a
// persisted Tile and the Transient that was frozen into it by Persist.
// TransientFrom copies a tile's block rather than sharing it.
type block [PixelCount]pixel.Pixel

// Tile is an immutable, reference-counted pixel block. The zero value is
// not meaningful on its own — use Blank() or one of the constructors.
// A Tile whose pix is nil is the blank tile: pure value, no allocation,
// no refcount (spec.md §4.1: "a tile is either the singleton blank tile
// ... or a heap pixel block").
type Tile struct {
	refs *refcount.Counter
	pix  *block
}

// blank is the process-wide blank tile singleton.
var blank = Tile{}

// Blank returns the shared blank tile. It carries no refcount: retaining
// or releasing it is a no-op, matching spec.md's "prefer a process-wide
// immutable constant" guidance (§9 "Global state").
func Blank() Tile { return blank }

// IsBlank reports whether t is the blank tile.
func (t Tile) IsBlank() bool { return t.pix == nil }

// ContextID tags the authorship of a tile for downstream bookkeeping; it
// never affects pixel content (spec.md §4.1).
type ContextID uint32

// FromSolidColor returns a new tile filled entirely with c. If c is
// transparent, the blank tile is returned instead of allocating.
func FromSolidColor(_ ContextID, c pixel.Pixel) Tile {
	if c.IsTransparent() {
		return blank
	}
	b := &block{}
	for i := range b {
		b[i] = c
	}
	return Tile{refs: refcount.New(), pix: b}
}

// Decompressor decodes a compressed tile payload into exactly
// tile.PixelCount pixels in canonical BGRA wire order. This is the
// ImageCodec collaborator's tile-shaped entry point (spec.md §4.1,
// "delegates to the codec collaborator, which yields TILE_SIZE² pixels").
type Decompressor interface {
	DecompressTile(payload []byte) ([]pixel.Pixel, error)
}

// FromCompressed decompresses payload via d into a new tile.
func FromCompressed(_ ContextID, payload []byte, d Decompressor) (Tile, error) {
	pixels, err := d.DecompressTile(payload)
	if err != nil {
		return Tile{}, err
	}
	b := &block{}
	copy(b[:], pixels)
	if *b == (block{}) {
		return blank, nil
	}
	return Tile{refs: refcount.New(), pix: b}, nil
}

// Retain increments the tile's reference count. A no-op on the blank
// tile.
func (t Tile) Retain() Tile {
	if t.refs != nil {
		t.refs.Retain()
	}
	return t
}

// Release decrements the tile's reference count. A no-op on the blank
// tile. The underlying pixel block is left for the garbage collector
// once the last reference is released — Go does not need manual freeing,
// but the count itself is load-bearing for transient-uniqueness checks
// elsewhere in the engine.
func (t Tile) Release() {
	if t.refs != nil {
		t.refs.Release()
	}
}

// At returns the pixel at (x, y) within the tile. Out-of-range
// coordinates return the zero (transparent) pixel.
func (t Tile) At(x, y int) pixel.Pixel {
	if x < 0 || x >= Size || y < 0 || y >= Size || t.pix == nil {
		return pixel.Zero
	}
	return t.pix[y*Size+x]
}

// Equal reports whether t and o reference the same underlying pixel
// block (pointer identity) or are both blank. This is the "pointer-
// equality comparison" spec.md §4.3's diff operation relies on to avoid
// a full pixel compare on unchanged tiles.
func (t Tile) Equal(o Tile) bool {
	if t.pix == nil || o.pix == nil {
		return t.pix == o.pix
	}
	return t.pix == o.pix
}

// Transient is a uniquely-owned, mutable staging copy of a tile
// (spec.md §3 "Transient variants"). It is never shared: callers obtain
// one from TransientFrom/TransientBlank, mutate it, and either Persist it
// back into an immutable Tile or discard it.
type Transient struct {
	pix *block
}

// TransientFrom shallow-clones t into a uniquely-owned mutable copy.
func TransientFrom(t Tile) *Transient {
	b := &block{}
	if t.pix != nil {
		*b = *t.pix
	}
	return &Transient{pix: b}
}

// TransientBlank returns a fresh all-zero mutable tile.
func TransientBlank() *Transient {
	return &Transient{pix: &block{}}
}

// At returns the pixel at (x, y).
func (tr *Transient) At(x, y int) pixel.Pixel {
	if x < 0 || x >= Size || y < 0 || y >= Size {
		return pixel.Zero
	}
	return tr.pix[y*Size+x]
}

// Set writes the pixel at (x, y). Out-of-range coordinates are ignored.
func (tr *Transient) Set(x, y int, p pixel.Pixel) {
	if x < 0 || x >= Size || y < 0 || y >= Size {
		return
	}
	tr.pix[y*Size+x] = p
}

// Fill overwrites every pixel with p.
func (tr *Transient) Fill(p pixel.Pixel) {
	for i := range tr.pix {
		tr.pix[i] = p
	}
}

// Persist freezes tr into an immutable Tile. If the result is entirely
// transparent, the shared blank singleton is returned instead of
// allocating a new block (spec.md §4.1).
func Persist(tr *Transient) Tile {
	if *tr.pix == (block{}) {
		return blank
	}
	return Tile{refs: refcount.New(), pix: tr.pix}
}
