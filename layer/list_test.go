package layer

import (
	"errors"
	"testing"

	"github.com/gogpu/canvas/blend"
	"github.com/gogpu/canvas/pixel"
	"github.com/gogpu/canvas/tile"
)

func TestLayerCreateAndFind(t *testing.T) {
	lb := FromList(Empty())
	if err := lb.LayerCreate(1, 0, tile.Tile{}, false, false, false, 8, 8, "base"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l := lb.Persist()
	defer l.Release()

	e, ok := l.Find(1)
	if !ok {
		t.Fatal("layer 1 must exist")
	}
	if e.Props.Title != "base" || e.Props.Opacity != 255 {
		t.Fatalf("unexpected default props: %+v", e.Props)
	}
}

func TestLayerCreateDuplicateFails(t *testing.T) {
	lb := FromList(Empty())
	_ = lb.LayerCreate(1, 0, tile.Tile{}, false, false, false, 8, 8, "base")
	err := lb.LayerCreate(1, 0, tile.Tile{}, false, false, false, 8, 8, "dup")
	if !errors.Is(err, ErrLayerExists) {
		t.Fatalf("expected ErrLayerExists, got %v", err)
	}
	lb.Persist().Release()
}

func TestLayerCreateInsertAbove(t *testing.T) {
	lb := FromList(Empty())
	_ = lb.LayerCreate(1, 0, tile.Tile{}, false, false, false, 8, 8, "bottom")
	_ = lb.LayerCreate(2, 0, tile.Tile{}, false, false, false, 8, 8, "top")
	_ = lb.LayerCreate(3, 1, tile.Tile{}, false, true, false, 8, 8, "middle")
	l := lb.Persist()
	defer l.Release()

	if l.Len() != 3 {
		t.Fatalf("expected 3 layers, got %d", l.Len())
	}
	if l.At(0).ID != 1 || l.At(1).ID != 3 || l.At(2).ID != 2 {
		t.Fatalf("expected order [1,3,2], got [%d,%d,%d]", l.At(0).ID, l.At(1).ID, l.At(2).ID)
	}
}

func TestLayerReorder(t *testing.T) {
	lb := FromList(Empty())
	_ = lb.LayerCreate(1, 0, tile.Tile{}, false, false, false, 8, 8, "a")
	_ = lb.LayerCreate(2, 0, tile.Tile{}, false, false, false, 8, 8, "b")
	if err := lb.LayerReorder([]ID{2, 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l := lb.Persist()
	defer l.Release()
	if l.At(0).ID != 2 || l.At(1).ID != 1 {
		t.Fatalf("expected order [2,1], got [%d,%d]", l.At(0).ID, l.At(1).ID)
	}
}

func TestLayerReorderUnknownIDFails(t *testing.T) {
	lb := FromList(Empty())
	_ = lb.LayerCreate(1, 0, tile.Tile{}, false, false, false, 8, 8, "a")
	if err := lb.LayerReorder([]ID{99}); !errors.Is(err, ErrReorderMismatch) {
		t.Fatalf("expected ErrReorderMismatch, got %v", err)
	}
	lb.Persist().Release()
}

func TestLayerReorderDuplicateIDFails(t *testing.T) {
	lb := FromList(Empty())
	_ = lb.LayerCreate(1, 0, tile.Tile{}, false, false, false, 8, 8, "a")
	_ = lb.LayerCreate(2, 0, tile.Tile{}, false, false, false, 8, 8, "b")
	if err := lb.LayerReorder([]ID{1, 1}); !errors.Is(err, ErrReorderMismatch) {
		t.Fatalf("expected ErrReorderMismatch for a repeated id, got %v", err)
	}
	l := lb.Persist()
	defer l.Release()
	if l.Len() != 2 {
		t.Fatalf("a rejected reorder must leave the layer set untouched, got %d layers", l.Len())
	}
	if _, ok := l.Find(2); !ok {
		t.Fatal("layer 2 must still be present — a rejected reorder must not drop any entry")
	}
}

func TestLayerCreateCopySharesContentUntilEdited(t *testing.T) {
	lb := FromList(Empty())
	_ = lb.LayerCreate(1, 0, tile.Tile{}, false, false, false, 8, 8, "src")
	_ = lb.MutateLayerContent(1, 0, Props{}, func(b *Builder) {
		b.FillRect(blend.Normal, 0, 0, 4, 4, pixel.Opaque(9, 9, 9))
	})
	_ = lb.LayerCreate(2, 1, tile.Tile{}, false, false, true, 8, 8, "copy")
	l := lb.Persist()
	defer l.Release()

	src, _ := l.Find(1)
	cpy, _ := l.Find(2)
	if src.Content.ToImage().At(0, 0) != cpy.Content.ToImage().At(0, 0) {
		t.Fatal("a fresh copy must start pixel-identical to its source")
	}
}

func TestLayerDeleteWithoutMerge(t *testing.T) {
	lb := FromList(Empty())
	_ = lb.LayerCreate(1, 0, tile.Tile{}, false, false, false, 8, 8, "a")
	_ = lb.LayerCreate(2, 0, tile.Tile{}, false, false, false, 8, 8, "b")
	if err := lb.LayerDelete(1, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l := lb.Persist()
	defer l.Release()
	if l.Len() != 1 || l.At(0).ID != 2 {
		t.Fatalf("expected only layer 2 to remain, got len=%d", l.Len())
	}
}

func TestLayerDeleteNotFound(t *testing.T) {
	lb := FromList(Empty())
	if err := lb.LayerDelete(42, false); !errors.Is(err, ErrLayerNotFound) {
		t.Fatalf("expected ErrLayerNotFound, got %v", err)
	}
	lb.Persist().Release()
}

func TestLayerDeleteMergesIntoBelow(t *testing.T) {
	lb := FromList(Empty())
	_ = lb.LayerCreate(1, 0, tile.Tile{}, false, false, false, 8, 8, "below")
	_ = lb.LayerCreate(2, 0, tile.Tile{}, false, false, false, 8, 8, "above")
	_ = lb.MutateLayerContent(2, 0, Props{}, func(b *Builder) {
		b.FillRect(blend.Normal, 0, 0, 4, 4, pixel.Opaque(5, 6, 7))
	})
	if err := lb.LayerDelete(2, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l := lb.Persist()
	defer l.Release()

	if l.Len() != 1 {
		t.Fatalf("expected 1 remaining layer, got %d", l.Len())
	}
	if got := l.At(0).Content.ToImage().At(0, 0); got != pixel.Opaque(5, 6, 7) {
		t.Fatalf("merged pixel mismatch: %+v", got)
	}
}

func TestIndirectDrawAccumulatesIntoSublayerThenPenUpMerges(t *testing.T) {
	lb := FromList(Empty())
	_ = lb.LayerCreate(1, 0, tile.Tile{}, false, false, false, 8, 8, "layer")

	contextID := tile.ContextID(7)
	sublayerProps := Props{Opacity: 0x80, Blend: blend.Multiply, Visible: true}
	_ = lb.MutateLayerContent(1, contextID, sublayerProps, func(b *Builder) {
		b.FillRect(blend.Normal, 0, 0, 2, 2, pixel.Opaque(255, 0, 0))
	})

	l := lb.Persist()
	e, _ := l.Find(1)
	if _, ok := e.Content.SublayerByID(contextID); !ok {
		t.Fatal("expected an accumulated sublayer")
	}

	lb2 := FromList(l)
	removed, ok, err := lb2.RemoveSublayer(1, contextID)
	if err != nil || !ok {
		t.Fatalf("expected to find and remove the sublayer: ok=%v err=%v", ok, err)
	}
	_ = lb2.MutateLayerContent(1, 0, Props{}, func(b *Builder) {
		b.Merge(removed.Content, removed.Props.Opacity, removed.Props.Blend)
	})
	removed.Content.Release()
	final := lb2.Persist()
	defer final.Release()
	defer l.Release()

	fe, _ := final.Find(1)
	if _, ok := fe.Content.SublayerByID(contextID); ok {
		t.Fatal("sublayer must be gone after PenUp merges it away")
	}
}
