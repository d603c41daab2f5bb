package canvas

import "testing"

func TestDiffStatesNilOldMarksEverythingChanged(t *testing.T) {
	next := NewCanvasState(128, 128)
	d := DiffStates(nil, next)
	if !d.TilesChanged() {
		t.Fatal("a diff against no prior snapshot must mark every tile changed")
	}
}

func TestDiffStatesSelfMarksNothingChanged(t *testing.T) {
	state := NewCanvasState(128, 128)
	d := DiffStates(&state, state)
	if d.TilesChanged() {
		t.Fatal("diffing a snapshot against itself must mark no tiles changed")
	}
	if d.LayerPropsChangedReset() {
		t.Fatal("diffing a snapshot against itself must not report layer props changed")
	}
}

func TestDiffStatesDimensionChangeMarksAll(t *testing.T) {
	old := NewCanvasState(64, 64)
	interp := NewCommandInterpreter(nil, nil)
	next, err := interp.Handle(old, nil, CanvasResize{Right: 64})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := DiffStates(&old, next)
	if !d.TilesChanged() {
		t.Fatal("a resize must mark every tile changed")
	}
}

func TestDiffStatesLayerAddMarksAllAndReportsPropsChanged(t *testing.T) {
	old := NewCanvasState(64, 64)
	interp := NewCommandInterpreter(nil, nil)
	next, err := interp.Handle(old, nil, LayerCreate{LayerID: 1, Title: "Layer 1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := DiffStates(&old, next)
	if !d.TilesChanged() {
		t.Fatal("adding a layer must mark every tile changed")
	}
	if !d.LayerPropsChangedReset() {
		t.Fatal("adding a layer must report layer props changed")
	}
}
