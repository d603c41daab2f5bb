package layer

import (
	"github.com/gogpu/canvas/blend"
	"github.com/gogpu/canvas/cimage"
	"github.com/gogpu/canvas/internal/refcount"
	"github.com/gogpu/canvas/pixel"
	"github.com/gogpu/canvas/tile"
)

// gridDim is the number of 64-pixel tiles needed to cover n pixels.
func gridDim(n int) int {
	return (n + tile.Size - 1) / tile.Size
}

// body is the shared, persistent payload of a LayerContent. It is
// never mutated once referenced by more than one Content — see
// Builder for the uniquely-owned staging counterpart.
type body struct {
	width, height int
	gridW, gridH  int
	tiles         []tile.Tile
	subs          []Sublayer
}

// Content is an immutable, reference-counted tile grid plus its
// (possibly empty) ordered sublayers (spec.md §4.3).
type Content struct {
	refs *refcount.Counter
	b    *body
}

// New builds a width×height content grid with every cell initialized
// to fill (tile.Blank() for an empty layer).
func New(width, height int, fill tile.Tile) Content {
	gw, gh := gridDim(width), gridDim(height)
	tiles := make([]tile.Tile, gw*gh)
	for i := range tiles {
		tiles[i] = fill.Retain()
	}
	return Content{refs: refcount.New(), b: &body{width: width, height: height, gridW: gw, gridH: gh, tiles: tiles}}
}

// Width returns the content's pixel width.
func (c Content) Width() int { return c.b.width }

// Height returns the content's pixel height.
func (c Content) Height() int { return c.b.height }

// GridWidth returns the number of tile columns.
func (c Content) GridWidth() int { return c.b.gridW }

// GridHeight returns the number of tile rows.
func (c Content) GridHeight() int { return c.b.gridH }

// TileAt returns the tile at grid cell (gx, gy). Cells outside the
// sub-grid return the blank tile (spec.md §4.3 "tile_at... returns the
// blank tile when outside the sub-grid").
func (c Content) TileAt(gx, gy int) tile.Tile {
	if gx < 0 || gx >= c.b.gridW || gy < 0 || gy >= c.b.gridH {
		return tile.Blank()
	}
	return c.b.tiles[gy*c.b.gridW+gx]
}

// SubContents returns the ordered sublayers, each an (indirect stroke
// content, props) pair keyed by context ID.
func (c Content) SubContents() []Sublayer { return c.b.subs }

// SublayerByID finds the sublayer keyed by id, if any.
func (c Content) SublayerByID(id tile.ContextID) (Sublayer, bool) {
	for _, s := range c.b.subs {
		if s.ID == id {
			return s, true
		}
	}
	return Sublayer{}, false
}

// Retain increments the content's reference count.
func (c Content) Retain() Content {
	c.refs.Retain()
	return c
}

// Release decrements the content's reference count, recursively
// releasing every tile and sublayer once the count reaches zero
// (spec.md §5 "Decrement to zero triggers recursive release").
func (c Content) Release() {
	if !c.refs.Release() {
		return
	}
	for _, t := range c.b.tiles {
		t.Release()
	}
	for _, s := range c.b.subs {
		s.Content.Release()
	}
}

// ToImage flattens every tile, composited back-to-front through any
// sublayers, into one RGBA image the size of the content (spec.md §4.3
// "to_image").
func (c Content) ToImage() *cimage.Image {
	img := cimage.New(c.b.width, c.b.height)
	for gy := 0; gy < c.b.gridH; gy++ {
		for gx := 0; gx < c.b.gridW; gx++ {
			base := c.TileAt(gx, gy)
			tr := tile.TransientFrom(base)
			for _, s := range c.b.subs {
				if !s.Props.Visible {
					continue
				}
				st := s.Content.TileAt(gx, gy)
				if st.IsBlank() {
					continue
				}
				flattenInto(tr, st, s.Props.Opacity, s.Props.Blend)
			}
			blitTileToImage(img, tr, gx*tile.Size, gy*tile.Size)
		}
	}
	return img
}

// flattenInto composites src over dst at the given opacity and blend
// mode, pixel by pixel, scaling src's alpha by opacity first (spec.md
// §4.3 "flatten_tile_to... composite one tile of this layer onto a
// mutable target tile").
func flattenInto(dst *tile.Transient, src tile.Tile, opacity uint8, mode blend.Mode) {
	for y := 0; y < tile.Size; y++ {
		for x := 0; x < tile.Size; x++ {
			sp := src.At(x, y)
			if opacity != 255 {
				sp = scaleOpacity(sp, opacity)
			}
			dst.Set(x, y, blend.Apply(mode, sp, dst.At(x, y)))
		}
	}
}

// scaleOpacity scales a premultiplied pixel's channels by opacity/255.
func scaleOpacity(p pixel.Pixel, opacity uint8) pixel.Pixel {
	if opacity == 255 {
		return p
	}
	return pixel.Pixel{
		R: uint8((uint16(p.R)*uint16(opacity) + 127) / 255),
		G: uint8((uint16(p.G)*uint16(opacity) + 127) / 255),
		B: uint8((uint16(p.B)*uint16(opacity) + 127) / 255),
		A: uint8((uint16(p.A)*uint16(opacity) + 127) / 255),
	}
}

// blitTileToImage copies t's pixels into img at pixel offset (ox, oy),
// clipping against img's bounds.
func blitTileToImage(img *cimage.Image, t *tile.Transient, ox, oy int) {
	for y := 0; y < tile.Size; y++ {
		py := oy + y
		if py < 0 || py >= img.Height() {
			continue
		}
		for x := 0; x < tile.Size; x++ {
			px := ox + x
			if px < 0 || px >= img.Width() {
				continue
			}
			img.Set(px, py, t.At(x, y))
		}
	}
}

// FlattenTileTo composites the tile at grid index tileIndex (row-major
// over GridWidth) onto target at opacity/mode (spec.md §4.3
// "flatten_tile_to").
func (c Content) FlattenTileTo(tileIndex int, target *tile.Transient, opacity uint8, mode blend.Mode) {
	if c.b.gridW == 0 {
		return
	}
	gx, gy := tileIndex%c.b.gridW, tileIndex/c.b.gridW
	src := c.TileAt(gx, gy)
	if src.IsBlank() {
		return
	}
	flattenInto(target, src, opacity, mode)
}

// Rect is an axis-aligned pixel rectangle used by Select and the
// rectangle-oriented write operations.
type Rect struct{ X, Y, W, H int }

// Select returns the rect region of the content as a new image. If
// mask is non-nil, pixels where the mask is transparent are zeroed
// (spec.md §4.3 "select(rect, mask?)").
func (c Content) Select(r Rect, mask *cimage.Image) *cimage.Image {
	img := c.ToImage()
	sub := img.Subimage(r.X, r.Y, r.W, r.H)
	if mask == nil {
		return sub
	}
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			if mask.At(x, y).A == 0 {
				sub.Set(x, y, pixel.Zero)
			}
		}
	}
	return sub
}

// DirtyMarker receives tile-changed notifications from Diff without
// layer importing the diff package back (diff.CanvasDiff implements
// this interface; see diff.CanvasDiff.MarkTile/MarkAll).
type DirtyMarker interface {
	MarkTile(index int)
	MarkAll()
}

// Diff compares c (with ownProps) against prev (with prevProps),
// reporting changed tiles to marker. If any rendering-affecting
// property changed, every tile is marked; otherwise each grid cell is
// compared by tile pointer identity (spec.md §4.3 "diff").
func (c Content) Diff(ownProps Props, prev Content, prevProps Props, marker DirtyMarker) {
	if ownProps.affectsRendering(prevProps) || c.b.width != prev.b.width || c.b.height != prev.b.height {
		marker.MarkAll()
		return
	}
	for gy := 0; gy < c.b.gridH; gy++ {
		for gx := 0; gx < c.b.gridW; gx++ {
			if !c.TileAt(gx, gy).Equal(prev.TileAt(gx, gy)) {
				marker.MarkTile(gy*c.b.gridW + gx)
			}
		}
	}
}
