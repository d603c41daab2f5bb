package layer

import (
	"github.com/gogpu/canvas/blend"
	"github.com/gogpu/canvas/cimage"
	"github.com/gogpu/canvas/internal/refcount"
	"github.com/gogpu/canvas/pixel"
	"github.com/gogpu/canvas/tile"
)

// Builder is a uniquely-owned, mutable staging copy of a LayerContent
// (spec.md §3 "Transient variants"). Every write operation below first
// ensures it holds a transient (tile.Transient) copy of each grid cell
// it touches, then persists that cell back into the tile slot —
// matching spec.md §4.3's "each ensures it holds a transient tile for
// every touched grid cell before writing".
type Builder struct {
	width, height int
	gridW, gridH  int
	tiles         []tile.Tile
	subs          []Sublayer
}

// FromContent clones c into a uniquely-owned Builder. Tiles themselves
// are not deep-copied — they are immutable and shared by reference —
// only the grid slice and sublayer list are.
func FromContent(c Content) *Builder {
	tiles := make([]tile.Tile, len(c.b.tiles))
	for i, t := range c.b.tiles {
		tiles[i] = t.Retain()
	}
	subs := make([]Sublayer, len(c.b.subs))
	for i, s := range c.b.subs {
		subs[i] = Sublayer{ID: s.ID, Content: s.Content.Retain(), Props: s.Props}
	}
	return &Builder{width: c.b.width, height: c.b.height, gridW: c.b.gridW, gridH: c.b.gridH, tiles: tiles, subs: subs}
}

// NewBuilder starts a fresh width×height builder with every cell set
// to fill.
func NewBuilder(width, height int, fill tile.Tile) *Builder {
	gw, gh := gridDim(width), gridDim(height)
	tiles := make([]tile.Tile, gw*gh)
	for i := range tiles {
		tiles[i] = fill.Retain()
	}
	return &Builder{width: width, height: height, gridW: gw, gridH: gh, tiles: tiles}
}

// Persist freezes the builder into an immutable Content.
func (b *Builder) Persist() Content {
	return Content{refs: refcount.New(), b: &body{width: b.width, height: b.height, gridW: b.gridW, gridH: b.gridH, tiles: b.tiles, subs: b.subs}}
}

// Discard releases every tile and sublayer the builder holds without
// publishing them, for the failure path of a handler that built partway
// through a transient before hitting an error (spec.md §4.5 "State
// machine of a transient snapshot... Drop while Building → Discarded").
func (b *Builder) Discard() {
	for _, t := range b.tiles {
		t.Release()
	}
	for _, s := range b.subs {
		s.Content.Release()
	}
}

func (b *Builder) cellIndex(gx, gy int) (int, bool) {
	if gx < 0 || gx >= b.gridW || gy < 0 || gy >= b.gridH {
		return 0, false
	}
	return gy*b.gridW + gx, true
}

// mutateTile replaces the tile at grid cell (gx, gy) with the result of
// fn applied to a transient clone of the current tile, then persists
// and swaps it back in — releasing the old tile's reference. If fn left
// every pixel as it was, the old tile is kept, so Diff's pointer
// comparison reports the cell unchanged.
func (b *Builder) mutateTile(gx, gy int, fn func(tr *tile.Transient)) {
	idx, ok := b.cellIndex(gx, gy)
	if !ok {
		return
	}
	old := b.tiles[idx]
	tr := tile.TransientFrom(old)
	fn(tr)
	unchanged := true
	for i := 0; i < tile.PixelCount && unchanged; i++ {
		x, y := i%tile.Size, i/tile.Size
		unchanged = tr.At(x, y) == old.At(x, y)
	}
	if unchanged {
		return
	}
	b.tiles[idx] = tile.Persist(tr)
	old.Release()
}

// PutImage composites img onto the content at pixel offset (left, top)
// using mode, touching only the tiles img's footprint overlaps
// (spec.md §4.3 "put_image").
func (b *Builder) PutImage(mode blend.Mode, left, top int, img *cimage.Image) {
	minGX, minGY := floorDiv(left, tile.Size), floorDiv(top, tile.Size)
	maxGX, maxGY := floorDiv(left+img.Width()-1, tile.Size), floorDiv(top+img.Height()-1, tile.Size)
	for gy := max0(minGY); gy <= maxGY && gy < b.gridH; gy++ {
		for gx := max0(minGX); gx <= maxGX && gx < b.gridW; gx++ {
			b.mutateTile(gx, gy, func(tr *tile.Transient) {
				tileOX, tileOY := gx*tile.Size, gy*tile.Size
				for y := 0; y < tile.Size; y++ {
					srcY := tileOY + y - top
					if srcY < 0 || srcY >= img.Height() {
						continue
					}
					for x := 0; x < tile.Size; x++ {
						srcX := tileOX + x - left
						if srcX < 0 || srcX >= img.Width() {
							continue
						}
						src := img.At(srcX, srcY)
						if src.A == 0 && mode == blend.Normal {
							continue
						}
						tr.Set(x, y, blend.Apply(mode, src, tr.At(x, y)))
					}
				}
			})
		}
	}
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// floorDiv computes floor(a/b) for a positive b, unlike Go's native
// integer division which truncates toward zero — needed so negative
// pixel offsets (a layer translated off the top-left during Resize)
// land in the correct, not off-by-one, tile column/row.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// FillRect composites color over the l,t,r,b rectangle using mode
// (spec.md §4.3 "fill_rect"). The rectangle is expected to already be
// clamped to the content's own bounds by the caller.
func (b *Builder) FillRect(mode blend.Mode, l, t, r, bot int, color pixel.Pixel) {
	minGX, minGY := floorDiv(l, tile.Size), floorDiv(t, tile.Size)
	maxGX, maxGY := floorDiv(r-1, tile.Size), floorDiv(bot-1, tile.Size)
	for gy := max0(minGY); gy <= maxGY && gy < b.gridH; gy++ {
		for gx := max0(minGX); gx <= maxGX && gx < b.gridW; gx++ {
			b.mutateTile(gx, gy, func(tr *tile.Transient) {
				tileOX, tileOY := gx*tile.Size, gy*tile.Size
				for y := 0; y < tile.Size; y++ {
					py := tileOY + y
					if py < t || py >= bot {
						continue
					}
					for x := 0; x < tile.Size; x++ {
						px := tileOX + x
						if px < l || px >= r {
							continue
						}
						tr.Set(x, y, blend.Apply(mode, color, tr.At(x, y)))
					}
				}
			})
		}
	}
}

// PutTile overwrites whole grid cells with t: if repeat is true, every
// cell in the grid is set to t; otherwise only the single cell
// containing pixel (x, y) is (spec.md §4.3 "put_tile").
func (b *Builder) PutTile(t tile.Tile, x, y int, repeat bool) {
	if repeat {
		for i, old := range b.tiles {
			b.tiles[i] = t.Retain()
			old.Release()
		}
		return
	}
	idx, ok := b.cellIndex(floorDiv(x, tile.Size), floorDiv(y, tile.Size))
	if !ok {
		return
	}
	old := b.tiles[idx]
	b.tiles[idx] = t.Retain()
	old.Release()
}

// Stamp is a brush dab's footprint and coverage sampler, independent of
// any concrete Paint implementation (the paint package's DefaultPaint
// is one producer of a Stamp; others may be swapped in without this
// package depending on paint directly).
type Stamp struct {
	MinX, MinY, MaxX, MaxY int
	Sample                 func(x, y int) pixel.Pixel
}

// BrushStampApply composites one dab's stamp over the content using
// mode (spec.md §4.3 "brush_stamp_apply").
func (b *Builder) BrushStampApply(mode blend.Mode, stamp Stamp) {
	minGX, minGY := floorDiv(stamp.MinX, tile.Size), floorDiv(stamp.MinY, tile.Size)
	maxGX, maxGY := floorDiv(stamp.MaxX, tile.Size), floorDiv(stamp.MaxY, tile.Size)
	for gy := max0(minGY); gy <= maxGY && gy < b.gridH; gy++ {
		for gx := max0(minGX); gx <= maxGX && gx < b.gridW; gx++ {
			b.mutateTile(gx, gy, func(tr *tile.Transient) {
				tileOX, tileOY := gx*tile.Size, gy*tile.Size
				for y := 0; y < tile.Size; y++ {
					py := tileOY + y
					if py < stamp.MinY || py > stamp.MaxY {
						continue
					}
					for x := 0; x < tile.Size; x++ {
						px := tileOX + x
						if px < stamp.MinX || px > stamp.MaxX {
							continue
						}
						src := stamp.Sample(px, py)
						if src.A == 0 {
							continue
						}
						tr.Set(x, y, blend.Apply(mode, src, tr.At(x, y)))
					}
				}
			})
		}
	}
}

// Merge composites other's flattened image over the whole content at
// opacity/mode (spec.md §4.3 "merge"). Used both by PenUp (merging an
// indirect stroke's sublayer into its parent) and LayerDelete(merge=true)
// (merging a deleted layer into the one below).
func (b *Builder) Merge(other Content, opacity uint8, mode blend.Mode) {
	img := other.ToImage()
	for gy := 0; gy < b.gridH; gy++ {
		for gx := 0; gx < b.gridW; gx++ {
			b.mutateTile(gx, gy, func(tr *tile.Transient) {
				tileOX, tileOY := gx*tile.Size, gy*tile.Size
				for y := 0; y < tile.Size; y++ {
					for x := 0; x < tile.Size; x++ {
						sp := img.At(tileOX+x, tileOY+y)
						if sp.A == 0 {
							continue
						}
						if opacity != 255 {
							sp = scaleOpacity(sp, opacity)
						}
						tr.Set(x, y, blend.Apply(mode, sp, tr.At(x, y)))
					}
				}
			})
		}
	}
}

// Sublayers returns the builder's current sublayer list for in-place
// editing by callers that add, replace, or remove entries.
func (b *Builder) Sublayers() []Sublayer { return b.subs }

// SetSublayers replaces the builder's sublayer list wholesale.
func (b *Builder) SetSublayers(subs []Sublayer) { b.subs = subs }

// ResizeTo materializes a width×height grid, carrying over existing
// tiles at matching grid positions and leaving newly exposed cells
// blank — no pixel translation (spec.md §4.3 "resize_to").
func (c Content) ResizeTo(width, height int) Content {
	gw, gh := gridDim(width), gridDim(height)
	tiles := make([]tile.Tile, gw*gh)
	for gy := 0; gy < gh; gy++ {
		for gx := 0; gx < gw; gx++ {
			if gx < c.b.gridW && gy < c.b.gridH {
				tiles[gy*gw+gx] = c.b.tiles[gy*c.b.gridW+gx].Retain()
			} else {
				tiles[gy*gw+gx] = tile.Blank()
			}
		}
	}
	subs := make([]Sublayer, len(c.b.subs))
	for i, s := range c.b.subs {
		subs[i] = Sublayer{ID: s.ID, Content: s.Content.ResizeTo(width, height), Props: s.Props}
	}
	return Content{refs: refcount.New(), b: &body{width: width, height: height, gridW: gw, gridH: gh, tiles: tiles, subs: subs}}
}

// Resize produces a new content of the dimensions expanded/contracted
// by (top, right, bottom, left), with existing pixels translated by
// (left, top) and newly exposed area left blank (spec.md §4.3
// "resize"). Pixel translation is implemented by flattening the
// existing grid to an image and compositing it into a fresh grid at the
// new offset — simpler than shifting tile storage directly and
// equivalent for any border amount, not just multiples of tile.Size.
//
// When top and left are both zero there is no translation to apply —
// every existing pixel keeps its (x, y) — so the grid-level ResizeTo
// already does exactly this, tile by tile, without the flatten/
// recomposite round trip.
func (c Content) Resize(top, right, bottom, left int) Content {
	newW := c.b.width + left + right
	newH := c.b.height + top + bottom
	if top == 0 && left == 0 {
		return c.ResizeTo(newW, newH)
	}
	img := Content{b: &body{width: c.b.width, height: c.b.height, gridW: c.b.gridW, gridH: c.b.gridH, tiles: c.b.tiles}}.ToImage()

	builder := NewBuilder(newW, newH, tile.Blank())
	builder.PutImage(blend.Replace, left, top, img)
	out := builder.Persist()

	subs := make([]Sublayer, len(c.b.subs))
	for i, s := range c.b.subs {
		subs[i] = Sublayer{ID: s.ID, Content: s.Content.Resize(top, right, bottom, left), Props: s.Props}
	}
	out.b.subs = subs
	return out
}
