package canvas

import (
	"github.com/gogpu/canvas/diff"
	"github.com/gogpu/canvas/internal/logging"
	"github.com/gogpu/canvas/tile"
)

// DiffStates computes the tile-level change bitmap between old (nil if
// there is no prior snapshot) and next (spec.md §4.6 "canvas_state_diff
// (new, old?)"). When old is nil, or its background tile or dimensions
// differ from next's, every tile is marked changed outright rather than
// walked layer by layer — a background swap recolors every pixel, so
// there is nothing to gain from a layer-level walk.
func DiffStates(old *CanvasState, next CanvasState) *diff.CanvasDiff {
	if old == nil {
		d := diff.Begin(0, 0, next.Width(), next.Height(), tile.Size, false)
		logTileDiff(d)
		return d
	}

	if !old.Background().Equal(next.Background()) || old.Width() != next.Width() || old.Height() != next.Height() {
		d := diff.Begin(old.Width(), old.Height(), next.Width(), next.Height(), tile.Size, false)
		d.CheckAll()
		logTileDiff(d)
		return d
	}

	d := diff.Begin(old.Width(), old.Height(), next.Width(), next.Height(), tile.Size, false)
	layerPropsChanged := next.Layers().Diff(old.Layers(), d)
	d.SetLayerPropsChanged(layerPropsChanged)
	logTileDiff(d)
	return d
}

func logTileDiff(d *diff.CanvasDiff) {
	n := 0
	d.EachIndex(func(int) { n++ })
	logging.Get().Debug("canvas diff computed", "dirty_tiles", n, "grid_w", d.XTiles(), "grid_h", d.YTiles())
}
