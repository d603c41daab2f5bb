// Package diff implements the tile-level change bitmap that drives
// incremental rendering: comparing two canvas snapshots down to the
// individual 64x64 tile, so a renderer only has to re-flatten the tiles
// that actually changed (spec.md §4.6).
package diff

// CanvasDiff holds a per-tile changed bitmap over a grid of
// xtiles*ytiles tiles, plus a flag for layer-set changes (add, remove,
// reorder, retitle, visibility) that don't correspond to any single
// tile (spec.md §4.6 "CanvasDiff holds (xtiles, ytiles, per-tile
// changed bit, layer_props_changed bit)").
type CanvasDiff struct {
	xtiles, ytiles    int
	changed           []bool
	layerPropsChanged bool
}

// Begin resizes d to cover a newW x newH canvas (in tile units,
// ceil(newW/tileSize) x ceil(newH/tileSize)) and records whether any
// layer's props changed independently of its tile content. If the
// canvas dimensions changed, every tile is marked changed — the spec's
// source notes this could be narrowed to only the newly exposed tiles,
// but leaves that as a TODO rather than doing it.
func Begin(oldW, oldH, newW, newH, tileSize int, layerPropsChanged bool) *CanvasDiff {
	xt, yt := ceilDiv(newW, tileSize), ceilDiv(newH, tileSize)
	d := &CanvasDiff{xtiles: xt, ytiles: yt, changed: make([]bool, xt*yt), layerPropsChanged: layerPropsChanged}
	if oldW != newW || oldH != newH {
		d.CheckAll()
	}
	return d
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// MarkTile marks the tile at index as changed — the collaborator
// interface layer.Content.Diff and layer.List.Diff use to report what
// they found (layer.DirtyMarker).
func (d *CanvasDiff) MarkTile(index int) {
	if index >= 0 && index < len(d.changed) {
		d.changed[index] = true
	}
}

// MarkAll marks every tile changed, the other half of layer.DirtyMarker.
func (d *CanvasDiff) MarkAll() { d.CheckAll() }

// Check invokes fn(index) for every currently-unchanged tile and marks
// the tile changed if fn returns true (spec.md §4.6 "check(fn, data)").
func (d *CanvasDiff) Check(fn func(index int) bool) {
	for i, c := range d.changed {
		if c {
			continue
		}
		if fn(i) {
			d.changed[i] = true
		}
	}
}

// CheckAll marks every tile changed (spec.md §4.6 "check_all()").
func (d *CanvasDiff) CheckAll() {
	for i := range d.changed {
		d.changed[i] = true
	}
}

// EachIndex invokes fn once per changed tile's flat index, ascending.
func (d *CanvasDiff) EachIndex(fn func(index int)) {
	for i, c := range d.changed {
		if c {
			fn(i)
		}
	}
}

// EachPos invokes fn once per changed tile's grid coordinates.
func (d *CanvasDiff) EachPos(fn func(gx, gy int)) {
	d.EachIndex(func(i int) {
		fn(i%d.xtiles, i/d.xtiles)
	})
}

// TilesChanged reports whether any tile is marked changed.
func (d *CanvasDiff) TilesChanged() bool {
	for _, c := range d.changed {
		if c {
			return true
		}
	}
	return false
}

// SetLayerPropsChanged sets the layer_props_changed flag directly —
// used by a caller (CanvasState's diff driver) that only learns whether
// layer props changed as a side effect of walking the layer list with d
// already in hand as the tile marker.
func (d *CanvasDiff) SetLayerPropsChanged(v bool) { d.layerPropsChanged = v }

// LayerPropsChangedReset reads and clears the layer_props_changed flag
// (spec.md §4.6 "layer_props_changed_reset()").
func (d *CanvasDiff) LayerPropsChangedReset() bool {
	v := d.layerPropsChanged
	d.layerPropsChanged = false
	return v
}

// XTiles and YTiles expose the grid dimensions for callers that need to
// translate a tile index into pixel bounds.
func (d *CanvasDiff) XTiles() int { return d.xtiles }
func (d *CanvasDiff) YTiles() int { return d.ytiles }
