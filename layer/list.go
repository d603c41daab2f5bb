package layer

import (
	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/canvas/blend"
	"github.com/gogpu/canvas/cimage"
	"github.com/gogpu/canvas/internal/refcount"
	"github.com/gogpu/canvas/tile"
)

// Entry pairs a layer's identity with its content and props — the
// LayerList/LayerPropsList pairing spec.md §4.4 describes as two
// parallel ordered sequences is represented here as one, since they are
// always read and written together.
type Entry struct {
	ID      ID
	Content Content
	Props   Props
}

// List is the immutable, ordered, ID-addressed sequence of layers that
// make up a canvas, back-to-front from index 0 (bottom) to the last
// index (top) (spec.md §4.4).
type List struct {
	refs    *refcount.Counter
	entries []Entry
}

// Empty returns a List with no layers.
func Empty() List {
	return List{refs: refcount.New(), entries: nil}
}

// Len returns the number of layers.
func (l List) Len() int { return len(l.entries) }

// At returns the entry at position i.
func (l List) At(i int) Entry { return l.entries[i] }

// IndexOf returns the position of id, or -1 if not present.
func (l List) IndexOf(id ID) int {
	for i, e := range l.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Find returns the entry for id.
func (l List) Find(id ID) (Entry, bool) {
	if i := l.IndexOf(id); i >= 0 {
		return l.entries[i], true
	}
	return Entry{}, false
}

// Retain increments the list's reference count.
func (l List) Retain() List {
	l.refs.Retain()
	return l
}

// Release decrements the list's reference count, recursively releasing
// every layer's content once the count reaches zero.
func (l List) Release() {
	if !l.refs.Release() {
		return
	}
	for _, e := range l.entries {
		e.Content.Release()
	}
}

// ListBuilder is a uniquely-owned, mutable staging copy of a List
// (spec.md §4.4 "Writes produce transient list nodes using reserve(n)
// to pre-size for insertions").
type ListBuilder struct {
	entries []Entry
}

// FromList clones l into a ListBuilder, retaining each entry's content.
func FromList(l List) *ListBuilder {
	entries := make([]Entry, len(l.entries), len(l.entries)+4)
	for i, e := range l.entries {
		entries[i] = Entry{ID: e.ID, Content: e.Content.Retain(), Props: e.Props}
	}
	return &ListBuilder{entries: entries}
}

// Persist freezes the builder into an immutable List.
func (lb *ListBuilder) Persist() List {
	return List{refs: refcount.New(), entries: lb.entries}
}

// Discard releases every entry the builder holds without publishing it.
func (lb *ListBuilder) Discard() {
	for _, e := range lb.entries {
		e.Content.Release()
	}
}

func (lb *ListBuilder) indexOf(id ID) int {
	for i, e := range lb.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// LayerCreate inserts a new layer (spec.md §4.4 "layer_create"). When
// copy is true, the new layer shares sourceID's content — safe under
// the persistent model, since any future divergent edit copy-on-writes
// its own content rather than mutating the shared one. When insert is
// true, the new layer is placed immediately above sourceID; otherwise
// it is placed at the top. fillTile, if present, initializes every grid
// cell; absent, the layer starts blank.
func (lb *ListBuilder) LayerCreate(id, sourceID ID, fillTile tile.Tile, hasFill, insert, doCopy bool, canvasW, canvasH int, title string) error {
	if lb.indexOf(id) >= 0 {
		return ErrLayerExists
	}

	var content Content
	if doCopy {
		src, ok := lb.find(sourceID)
		if !ok {
			return ErrLayerNotFound
		}
		content = src.Content.Retain()
	} else if hasFill {
		content = New(canvasW, canvasH, fillTile)
	} else {
		content = New(canvasW, canvasH, tile.Blank())
	}

	entry := Entry{ID: id, Content: content, Props: DefaultProps(norm.NFC.String(title))}

	if insert {
		srcIdx := lb.indexOf(sourceID)
		if srcIdx < 0 {
			content.Release()
			return ErrLayerNotFound
		}
		lb.entries = append(lb.entries, Entry{})
		copy(lb.entries[srcIdx+2:], lb.entries[srcIdx+1:])
		lb.entries[srcIdx+1] = entry
		return nil
	}

	lb.entries = append(lb.entries, entry)
	return nil
}

func (lb *ListBuilder) find(id ID) (Entry, bool) {
	if i := lb.indexOf(id); i >= 0 {
		return lb.entries[i], true
	}
	return Entry{}, false
}

// LayerAttr mutates a layer's (or, if sublayerID is non-zero, one of
// its sublayers') opacity, blend mode, censored, and fixed attributes
// (spec.md §4.4 "layer_attr").
func (lb *ListBuilder) LayerAttr(id ID, sublayerID tile.ContextID, opacity uint8, mode blend.Mode, censored, fixed bool) error {
	idx := lb.indexOf(id)
	if idx < 0 {
		return ErrLayerNotFound
	}

	if sublayerID == 0 {
		p := lb.entries[idx].Props
		p.Opacity, p.Blend, p.Censored, p.Fixed = opacity, mode, censored, fixed
		lb.entries[idx].Props = p
		return nil
	}

	c := lb.entries[idx].Content
	if _, ok := c.SublayerByID(sublayerID); !ok {
		return ErrSublayerNotFound
	}
	cb := FromContent(c)
	for i := range cb.subs {
		if cb.subs[i].ID == sublayerID {
			cb.subs[i].Props.Opacity = opacity
			cb.subs[i].Props.Blend = mode
			cb.subs[i].Props.Censored = censored
			cb.subs[i].Props.Fixed = fixed
		}
	}
	newContent := cb.Persist()
	c.Release()
	lb.entries[idx].Content = newContent
	return nil
}

// LayerReorder reassigns layer positions to match ids exactly
// (spec.md §4.4 "layer_reorder"). Fails if ids does not name precisely
// the builder's current layer set.
func (lb *ListBuilder) LayerReorder(ids []ID) error {
	if len(ids) != len(lb.entries) {
		return ErrReorderMismatch
	}
	seen := make(map[ID]bool, len(ids))
	next := make([]Entry, len(ids))
	for i, id := range ids {
		if seen[id] {
			return ErrReorderMismatch
		}
		seen[id] = true
		idx := lb.indexOf(id)
		if idx < 0 {
			return ErrReorderMismatch
		}
		next[i] = lb.entries[idx]
	}
	lb.entries = next
	return nil
}

// ResizeAll resize-copies every layer's content to the new canvas
// dimensions, translating existing pixels by (left, top) — CanvasResize's
// per-layer fan-out (spec.md §4.5 "CanvasResize... Each layer is
// resize-copied into the new dimensions").
func (lb *ListBuilder) ResizeAll(top, right, bottom, left int) {
	for i, e := range lb.entries {
		resized := e.Content.Resize(top, right, bottom, left)
		e.Content.Release()
		lb.entries[i].Content = resized
	}
}

// LayerRetitle renames a layer (spec.md §4.4 "layer_retitle").
func (lb *ListBuilder) LayerRetitle(id ID, title string) error {
	idx := lb.indexOf(id)
	if idx < 0 {
		return ErrLayerNotFound
	}
	lb.entries[idx].Props.Title = norm.NFC.String(title)
	return nil
}

// LayerVisibility sets a layer's visible flag (spec.md §4.4
// "layer_visibility").
func (lb *ListBuilder) LayerVisibility(id ID, visible bool) error {
	idx := lb.indexOf(id)
	if idx < 0 {
		return ErrLayerNotFound
	}
	lb.entries[idx].Props.Visible = visible
	return nil
}

// LayerDelete removes a layer. If merge is true, the layer's flattened
// contribution is first merged into the layer immediately below it
// (spec.md §4.4 "layer_delete"); a layer with no layer below it simply
// has nothing to merge into and is just dropped.
func (lb *ListBuilder) LayerDelete(id ID, merge bool) error {
	idx := lb.indexOf(id)
	if idx < 0 {
		return ErrLayerNotFound
	}
	removed := lb.entries[idx]

	if merge && idx > 0 {
		below := lb.entries[idx-1]
		belowBuilder := FromContent(below.Content)
		belowBuilder.Merge(removed.Content, removed.Props.Opacity, removed.Props.Blend)
		newBelow := belowBuilder.Persist()
		below.Content.Release()
		lb.entries[idx-1].Content = newBelow
	}

	lb.entries = append(lb.entries[:idx], lb.entries[idx+1:]...)
	removed.Content.Release()
	return nil
}

// MutateLayerContent finds id's layer and lets fn mutate a Builder for
// its content, persisting the result back in place. If sublayerID is
// non-zero, a sublayer keyed by it is created (blank, full canvas size)
// on first use and fn mutates that sublayer's content instead — the
// mechanism behind indirect-mode draw_dabs accumulation (spec.md §4.5).
func (lb *ListBuilder) MutateLayerContent(id ID, sublayerID tile.ContextID, sublayerProps Props, fn func(b *Builder)) error {
	idx := lb.indexOf(id)
	if idx < 0 {
		return ErrLayerNotFound
	}

	if sublayerID == 0 {
		c := lb.entries[idx].Content
		cb := FromContent(c)
		fn(cb)
		newContent := cb.Persist()
		c.Release()
		lb.entries[idx].Content = newContent
		return nil
	}

	parent := lb.entries[idx].Content
	parentBuilder := FromContent(parent)

	subIdx := -1
	for i, s := range parentBuilder.subs {
		if s.ID == sublayerID {
			subIdx = i
			break
		}
	}
	var subContent Content
	if subIdx < 0 {
		subContent = New(parent.Width(), parent.Height(), tile.Blank())
		parentBuilder.subs = append(parentBuilder.subs, Sublayer{ID: sublayerID, Content: subContent, Props: sublayerProps})
		subIdx = len(parentBuilder.subs) - 1
	}

	subBuilder := FromContent(parentBuilder.subs[subIdx].Content)
	fn(subBuilder)
	newSub := subBuilder.Persist()
	parentBuilder.subs[subIdx].Content.Release()
	parentBuilder.subs[subIdx].Content = newSub

	newContent := parentBuilder.Persist()
	parent.Release()
	lb.entries[idx].Content = newContent
	return nil
}

// RemoveSublayer removes the sublayer keyed by id from layerID's
// content, if present — PenUp's post-merge cleanup. The removed
// sublayer is returned still holding its content reference; the caller
// releases it.
func (lb *ListBuilder) RemoveSublayer(layerID ID, sublayerID tile.ContextID) (removed Sublayer, ok bool, err error) {
	idx := lb.indexOf(layerID)
	if idx < 0 {
		return Sublayer{}, false, ErrLayerNotFound
	}
	c := lb.entries[idx].Content
	cb := FromContent(c)

	for i, s := range cb.subs {
		if s.ID == sublayerID {
			removed = s
			cb.subs = append(cb.subs[:i], cb.subs[i+1:]...)
			newContent := cb.Persist()
			c.Release()
			lb.entries[idx].Content = newContent
			return removed, true, nil
		}
	}
	cb.Discard()
	return Sublayer{}, false, nil
}

// Diff compares l against prev, reporting changed tiles to marker and
// returning whether the layer set or any layer's props changed in a
// way that isn't captured by the tile bitmap (a reordering, addition,
// removal, retitle, or visibility flip) — spec.md §4.6 "delegate to
// LayerList.diff, which walks layers and calls LayerContent.diff for
// matched layer IDs".
func (l List) Diff(prev List, marker DirtyMarker) (layerPropsChanged bool) {
	if l.Len() != prev.Len() {
		marker.MarkAll()
		return true
	}
	for i := 0; i < l.Len(); i++ {
		cur, old := l.At(i), prev.At(i)
		if cur.ID != old.ID {
			marker.MarkAll()
			layerPropsChanged = true
			continue
		}
		if cur.Props.Title != old.Props.Title || cur.Props.Visible != old.Props.Visible {
			layerPropsChanged = true
		}
		cur.Content.Diff(cur.Props, old.Content, old.Props, marker)
	}
	return layerPropsChanged
}

// RenderAll flattens the whole layer stack — every visible layer in
// order at its opacity and blend mode, with its own visible sublayers
// merged in for preview purposes — onto one image. Used by
// CanvasState.ToImage.
func RenderAll(l List, width, height int, background func() *cimage.Image) *cimage.Image {
	out := background()
	if out == nil {
		out = cimage.New(width, height)
	}
	for i := 0; i < l.Len(); i++ {
		e := l.At(i)
		if !e.Props.Visible {
			continue
		}
		img := e.Content.ToImage()
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				sp := img.At(x, y)
				if sp.A == 0 {
					continue
				}
				sp = scaleOpacity(sp, e.Props.Opacity)
				out.Set(x, y, blend.Apply(e.Props.Blend, sp, out.At(x, y)))
			}
		}
	}
	return out
}
