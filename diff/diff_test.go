package diff

import "testing"

func TestBeginSameDimensionsStartsClean(t *testing.T) {
	d := Begin(128, 128, 128, 128, 64, false)
	if d.TilesChanged() {
		t.Fatal("same-size begin must not mark anything changed")
	}
	if d.XTiles() != 2 || d.YTiles() != 2 {
		t.Fatalf("expected a 2x2 tile grid, got %dx%d", d.XTiles(), d.YTiles())
	}
}

func TestBeginDimensionChangeMarksAll(t *testing.T) {
	d := Begin(64, 64, 128, 128, 64, false)
	if !d.TilesChanged() {
		t.Fatal("a resize must mark every tile changed")
	}
	count := 0
	d.EachIndex(func(int) { count++ })
	if count != 4 {
		t.Fatalf("expected all 4 tiles marked, got %d", count)
	}
}

func TestMarkTileAndEachPos(t *testing.T) {
	d := Begin(128, 128, 128, 128, 64, false)
	d.MarkTile(3)
	var positions [][2]int
	d.EachPos(func(gx, gy int) { positions = append(positions, [2]int{gx, gy}) })
	if len(positions) != 1 || positions[0] != [2]int{1, 1} {
		t.Fatalf("expected tile 3 at grid (1,1), got %v", positions)
	}
}

func TestCheckOnlyVisitsUnchangedTiles(t *testing.T) {
	d := Begin(128, 128, 128, 128, 64, false)
	d.MarkTile(0)
	var visited []int
	d.Check(func(index int) bool {
		visited = append(visited, index)
		return index == 2
	})
	if len(visited) != 3 {
		t.Fatalf("expected the 3 unmarked tiles visited, got %v", visited)
	}
	if !d.changed[2] || d.changed[1] || d.changed[3] {
		t.Fatalf("only tile 2 should now be changed: %v", d.changed)
	}
}

func TestLayerPropsChangedResetClears(t *testing.T) {
	d := Begin(128, 128, 128, 128, 64, true)
	if !d.LayerPropsChangedReset() {
		t.Fatal("expected the flag to read true once")
	}
	if d.LayerPropsChangedReset() {
		t.Fatal("expected the flag to be cleared after the first read")
	}
}

func TestMarkAllViaDirtyMarkerInterface(t *testing.T) {
	var marker interface {
		MarkTile(int)
		MarkAll()
	} = Begin(128, 128, 128, 128, 64, false)
	marker.MarkAll()
}
