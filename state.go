package canvas

import (
	"github.com/gogpu/canvas/cimage"
	"github.com/gogpu/canvas/internal/refcount"
	"github.com/gogpu/canvas/layer"
	"github.com/gogpu/canvas/tile"
)

// stateBody is the shared, persistent payload of a CanvasState — the
// same refs+body split used by tile.Tile, layer.Content, and layer.List.
type stateBody struct {
	width, height int
	background    tile.Tile
	layers        layer.List
}

// CanvasState is the atomic unit of snapshot publication: a canvas's
// dimensions, its optional background tile, and its layer list (spec.md
// §3 "CanvasState. (width, height, optional background_tile,
// LayerList). Refcounted").
type CanvasState struct {
	refs *refcount.Counter
	b    *stateBody
}

// NewCanvasState returns an empty width×height canvas: no background, no
// layers.
func NewCanvasState(width, height int) CanvasState {
	return CanvasState{refs: refcount.New(), b: &stateBody{width: width, height: height, background: tile.Blank(), layers: layer.Empty()}}
}

// Width returns the canvas's pixel width.
func (s CanvasState) Width() int { return s.b.width }

// Height returns the canvas's pixel height.
func (s CanvasState) Height() int { return s.b.height }

// Background returns the canvas's background tile (tile.Blank() if none
// has been set).
func (s CanvasState) Background() tile.Tile { return s.b.background }

// Layers returns the canvas's layer list.
func (s CanvasState) Layers() layer.List { return s.b.layers }

// Retain increments the snapshot's reference count.
func (s CanvasState) Retain() CanvasState {
	s.refs.Retain()
	return s
}

// Release decrements the snapshot's reference count, recursively
// releasing the background tile and layer list once the count reaches
// zero.
func (s CanvasState) Release() {
	if !s.refs.Release() {
		return
	}
	s.b.background.Release()
	s.b.layers.Release()
}

// withLayers returns a freshly published snapshot sharing s's dimensions
// and background but with newList in place of the current layer list.
// Used by every handler that mutates the layer list without touching the
// background or canvas size.
func (s CanvasState) withLayers(newList layer.List) CanvasState {
	return CanvasState{refs: refcount.New(), b: &stateBody{
		width:      s.b.width,
		height:     s.b.height,
		background: s.b.background.Retain(),
		layers:     newList,
	}}
}

// ToImage flattens the canvas to one image: the background tile tiled
// across the whole canvas, then every visible layer composited over it
// in order (spec.md §8 scenario 2: "to_image(include_background=true) —
// every pixel equals" the background color).
func (s CanvasState) ToImage() *cimage.Image {
	return layer.RenderAll(s.b.layers, s.b.width, s.b.height, func() *cimage.Image {
		img := cimage.New(s.b.width, s.b.height)
		if s.b.background.IsBlank() {
			return img
		}
		for y := 0; y < s.b.height; y++ {
			ty := y % tile.Size
			for x := 0; x < s.b.width; x++ {
				img.Set(x, y, s.b.background.At(x%tile.Size, ty))
			}
		}
		return img
	})
}
