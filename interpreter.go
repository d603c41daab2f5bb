package canvas

import (
	"github.com/gogpu/canvas/blend"
	"github.com/gogpu/canvas/cimage"
	"github.com/gogpu/canvas/codec"
	"github.com/gogpu/canvas/internal/logging"
	"github.com/gogpu/canvas/internal/refcount"
	"github.com/gogpu/canvas/layer"
	"github.com/gogpu/canvas/paint"
	"github.com/gogpu/canvas/pixel"
	"github.com/gogpu/canvas/tile"
	"github.com/gogpu/canvas/transform"
)

// CommandInterpreter applies one Message at a time to a CanvasState,
// producing a new immutable snapshot or a failure (spec.md §4.5 "Top-level
// operation: handle(state, draw_context, message) → new_state |
// failure"). Codec and Paint are the out-of-scope collaborators named in
// spec.md §1 — wire decoding, the byte-exact codec, and brush-parameter
// interpretation are all supplied by the caller.
type CommandInterpreter struct {
	Codec codec.Codec
	Paint paint.Paint
}

// NewCommandInterpreter builds an interpreter, defaulting Codec to
// codec.Zlib{} and Paint to paint.DefaultPaint{} when either is nil.
func NewCommandInterpreter(c codec.Codec, p paint.Paint) *CommandInterpreter {
	if c == nil {
		c = codec.Zlib{}
	}
	if p == nil {
		p = paint.DefaultPaint{}
	}
	return &CommandInterpreter{Codec: c, Paint: p}
}

// Handle dispatches msg to the handler for its concrete type. Every
// successful path returns a freshly persisted snapshot; every failure
// path leaves state untouched and returns a non-nil *Error (spec.md
// §4.5 "every failed handler frees its half-built transient and returns
// a failure indication without touching the input snapshot").
func (ci *CommandInterpreter) Handle(state CanvasState, dc *DrawContext, msg Message) (CanvasState, *Error) {
	switch m := msg.(type) {
	case CanvasResize:
		return ci.handleCanvasResize(state, m)
	case LayerCreate:
		return ci.handleLayerCreate(state, m)
	case LayerAttr:
		return ci.handleLayerAttr(state, m)
	case LayerOrder:
		return ci.handleLayerOrder(state, m)
	case LayerRetitle:
		return ci.handleLayerRetitle(state, m)
	case LayerVisibility:
		return ci.handleLayerVisibility(state, m)
	case LayerDelete:
		return ci.handleLayerDelete(state, m)
	case PutImage:
		return ci.handlePutImage(state, m)
	case FillRect:
		return ci.handleFillRect(state, m)
	case RegionMove:
		return ci.handleRegionMove(state, dc, m)
	case PutTile:
		return ci.handlePutTile(state, m)
	case CanvasBackground:
		return ci.handleCanvasBackground(state, m)
	case PenUp:
		return ci.handlePenUp(state, m)
	case DrawDabsClassic:
		return ci.handleDrawDabsClassic(state, m)
	case DrawDabsPixel:
		return ci.handleDrawDabsPixel(state, m)
	case DrawDabsPixelSquare:
		return ci.handleDrawDabsPixelSquare(state, m)
	default:
		return CanvasState{}, newErr("Handle", UnknownMessage, nil)
	}
}

// mapLayerErr wraps a layer-package sentinel error in this package's
// *Error, classifying it by Kind (spec.md §7's error kinds), so callers
// never need to know about the layer package's own sentinels.
func mapLayerErr(op string, err error) *Error {
	switch err {
	case layer.ErrLayerNotFound, layer.ErrSublayerNotFound:
		return newErr(op, NotFound, err)
	case layer.ErrLayerExists:
		return newErr(op, AlreadyExists, err)
	case layer.ErrInvalidBlendMode, layer.ErrEmptyRect, layer.ErrReorderMismatch:
		return newErr(op, InvalidArgument, err)
	default:
		return newErr(op, InvalidArgument, err)
	}
}

func (ci *CommandInterpreter) handleCanvasResize(state CanvasState, m CanvasResize) (CanvasState, *Error) {
	newW := state.Width() + m.Left + m.Right
	newH := state.Height() + m.Top + m.Bottom
	if newW < 1 || newW > 32767 || newH < 1 || newH > 32767 {
		return CanvasState{}, newErr("CanvasResize", InvalidArgument, nil)
	}

	lb := layer.FromList(state.Layers())
	lb.ResizeAll(m.Top, m.Right, m.Bottom, m.Left)
	newList := lb.Persist()

	logging.Get().Info("canvas resized", "width", newW, "height", newH)
	return CanvasState{refs: refcount.New(), b: &stateBody{
		width:      newW,
		height:     newH,
		background: state.b.background.Retain(),
		layers:     newList,
	}}, nil
}

func (ci *CommandInterpreter) handleLayerCreate(state CanvasState, m LayerCreate) (CanvasState, *Error) {
	var fill tile.Tile
	if m.HasFill {
		fill = tile.FromSolidColor(0, m.FillColor)
	} else {
		fill = tile.Blank()
	}

	lb := layer.FromList(state.Layers())
	if err := lb.LayerCreate(m.LayerID, m.SourceID, fill, m.HasFill, m.Insert, m.Copy, state.Width(), state.Height(), m.Title); err != nil {
		lb.Discard()
		return CanvasState{}, mapLayerErr("LayerCreate", err)
	}
	logging.Get().Info("layer created", "layer_id", m.LayerID, "title", m.Title)
	return state.withLayers(lb.Persist()), nil
}

func (ci *CommandInterpreter) handleLayerAttr(state CanvasState, m LayerAttr) (CanvasState, *Error) {
	if !m.Blend.Valid() {
		return CanvasState{}, newErr("LayerAttr", InvalidArgument, nil)
	}
	lb := layer.FromList(state.Layers())
	if err := lb.LayerAttr(m.LayerID, m.SublayerID, m.Opacity, m.Blend, m.Censored, m.Fixed); err != nil {
		lb.Discard()
		return CanvasState{}, mapLayerErr("LayerAttr", err)
	}
	return state.withLayers(lb.Persist()), nil
}

func (ci *CommandInterpreter) handleLayerOrder(state CanvasState, m LayerOrder) (CanvasState, *Error) {
	lb := layer.FromList(state.Layers())
	if err := lb.LayerReorder(m.LayerIDs); err != nil {
		lb.Discard()
		return CanvasState{}, mapLayerErr("LayerOrder", err)
	}
	return state.withLayers(lb.Persist()), nil
}

func (ci *CommandInterpreter) handleLayerRetitle(state CanvasState, m LayerRetitle) (CanvasState, *Error) {
	lb := layer.FromList(state.Layers())
	if err := lb.LayerRetitle(m.LayerID, m.Title); err != nil {
		lb.Discard()
		return CanvasState{}, mapLayerErr("LayerRetitle", err)
	}
	return state.withLayers(lb.Persist()), nil
}

func (ci *CommandInterpreter) handleLayerVisibility(state CanvasState, m LayerVisibility) (CanvasState, *Error) {
	lb := layer.FromList(state.Layers())
	if err := lb.LayerVisibility(m.LayerID, m.Visible); err != nil {
		lb.Discard()
		return CanvasState{}, mapLayerErr("LayerVisibility", err)
	}
	return state.withLayers(lb.Persist()), nil
}

func (ci *CommandInterpreter) handleLayerDelete(state CanvasState, m LayerDelete) (CanvasState, *Error) {
	lb := layer.FromList(state.Layers())
	if err := lb.LayerDelete(m.LayerID, m.Merge); err != nil {
		lb.Discard()
		return CanvasState{}, mapLayerErr("LayerDelete", err)
	}
	return state.withLayers(lb.Persist()), nil
}

func (ci *CommandInterpreter) handlePutImage(state CanvasState, m PutImage) (CanvasState, *Error) {
	if !m.Blend.Valid() {
		return CanvasState{}, newErr("PutImage", InvalidArgument, nil)
	}
	img, err := cimage.FromCompressed(m.W, m.H, m.Compressed, codec.ImageDecompressor{Codec: ci.Codec})
	if err != nil {
		logging.Get().Warn("PutImage payload rejected", "layer_id", m.LayerID, "error", err)
		return CanvasState{}, newErr("PutImage", DecodeError, err)
	}

	lb := layer.FromList(state.Layers())
	lerr := lb.MutateLayerContent(m.LayerID, 0, layer.Props{}, func(b *layer.Builder) {
		b.PutImage(m.Blend, m.X, m.Y, img)
	})
	if lerr != nil {
		lb.Discard()
		return CanvasState{}, mapLayerErr("PutImage", lerr)
	}
	return state.withLayers(lb.Persist()), nil
}

func (ci *CommandInterpreter) handleFillRect(state CanvasState, m FillRect) (CanvasState, *Error) {
	if !m.Blend.BrushCompatible() {
		return CanvasState{}, newErr("FillRect", InvalidArgument, nil)
	}
	l, t, r, b := clampRect(m.X, m.Y, m.W, m.H, state.Width(), state.Height())
	if r <= l || b <= t {
		return CanvasState{}, newErr("FillRect", InvalidArgument, layer.ErrEmptyRect)
	}

	lb := layer.FromList(state.Layers())
	lerr := lb.MutateLayerContent(m.LayerID, 0, layer.Props{}, func(bld *layer.Builder) {
		bld.FillRect(m.Blend, l, t, r, b, m.Color)
	})
	if lerr != nil {
		lb.Discard()
		return CanvasState{}, mapLayerErr("FillRect", lerr)
	}
	return state.withLayers(lb.Persist()), nil
}

// clampRect intersects the rectangle (x, y, x+w, y+h) with [0,
// canvasW)x[0, canvasH), returning the effective (left, top, right,
// bottom) bounds. The result may be empty (right <= left or bottom <=
// top) if the rectangle lies wholly outside the canvas.
func clampRect(x, y, w, h, canvasW, canvasH int) (l, t, r, b int) {
	l, t, r, b = x, y, x+w, y+h
	if l < 0 {
		l = 0
	}
	if t < 0 {
		t = 0
	}
	if r > canvasW {
		r = canvasW
	}
	if b > canvasH {
		b = canvasH
	}
	return
}

func (ci *CommandInterpreter) handleRegionMove(state CanvasState, dc *DrawContext, m RegionMove) (CanvasState, *Error) {
	if m.SrcRect.W <= 0 || m.SrcRect.H <= 0 {
		return CanvasState{}, newErr("RegionMove", InvalidArgument, nil)
	}
	minX, minY, maxX, maxY := m.DstQuad.Bounds()
	area := int64(maxX-minX) * int64(maxY-minY)
	limit := int64(state.Width()+1) * int64(state.Height()+1)
	if area > limit {
		return CanvasState{}, newErr("RegionMove", InvalidArgument, nil)
	}

	entry, ok := state.Layers().Find(m.LayerID)
	if !ok {
		return CanvasState{}, newErr("RegionMove", NotFound, layer.ErrLayerNotFound)
	}

	var mask *cimage.Image
	if m.MaskPayload != nil {
		decoded, err := (codec.MaskDecompressor{Codec: ci.Codec}).DecompressMask(m.SrcRect.W, m.SrcRect.H, m.MaskPayload)
		if err != nil {
			logging.Get().Warn("RegionMove mask payload rejected", "layer_id", m.LayerID, "error", err)
			return CanvasState{}, newErr("RegionMove", DecodeError, err)
		}
		mask = decoded
	}
	selected := entry.Content.Select(m.SrcRect, mask)

	if dc == nil {
		dc = NewDrawContext(DefaultContextConfig())
	}
	z, zerr := dc.rasterizers.acquire()
	if zerr != nil {
		return CanvasState{}, newErr("RegionMove", ResourceExhausted, zerr)
	}
	defer dc.rasterizers.release(z)

	warped, ox, oy, terr := transform.ImageTransformWithRasterizer(z, selected, m.DstQuad)
	if terr != nil {
		return CanvasState{}, newErr("RegionMove", InvalidArgument, terr)
	}

	lb := layer.FromList(state.Layers())
	lerr := lb.MutateLayerContent(m.LayerID, 0, layer.Props{}, func(b *layer.Builder) {
		b.FillRect(blend.Replace, m.SrcRect.X, m.SrcRect.Y, m.SrcRect.X+m.SrcRect.W, m.SrcRect.Y+m.SrcRect.H, pixel.Zero)
		b.PutImage(blend.Normal, ox, oy, warped)
	})
	if lerr != nil {
		lb.Discard()
		return CanvasState{}, mapLayerErr("RegionMove", lerr)
	}
	return state.withLayers(lb.Persist()), nil
}

func (ci *CommandInterpreter) handlePutTile(state CanvasState, m PutTile) (CanvasState, *Error) {
	t, err := decodeTilePayload(m.ContextID, m.Payload, ci.Codec)
	if err != nil {
		return CanvasState{}, newErr("PutTile", DecodeError, err)
	}

	lb := layer.FromList(state.Layers())
	lerr := lb.MutateLayerContent(m.LayerID, m.SublayerID, layer.DefaultProps(""), func(b *layer.Builder) {
		b.PutTile(t, m.X, m.Y, m.Repeat)
	})
	if lerr != nil {
		lb.Discard()
		return CanvasState{}, mapLayerErr("PutTile", lerr)
	}
	return state.withLayers(lb.Persist()), nil
}

func (ci *CommandInterpreter) handleCanvasBackground(state CanvasState, m CanvasBackground) (CanvasState, *Error) {
	t, err := decodeTilePayload(m.ContextID, m.Payload, ci.Codec)
	if err != nil {
		return CanvasState{}, newErr("CanvasBackground", DecodeError, err)
	}
	return CanvasState{refs: refcount.New(), b: &stateBody{
		width:      state.b.width,
		height:     state.b.height,
		background: t,
		layers:     state.b.layers.Retain(),
	}}, nil
}

func decodeTilePayload(contextID tile.ContextID, p TilePayload, c codec.Codec) (tile.Tile, error) {
	if p.IsSolid {
		return tile.FromSolidColor(contextID, p.SolidColor), nil
	}
	t, err := tile.FromCompressed(contextID, p.Compressed, codec.TileDecompressor{Codec: c})
	if err != nil {
		logging.Get().Warn("tile payload rejected", "context_id", contextID, "error", err)
	}
	return t, err
}

func (ci *CommandInterpreter) handlePenUp(state CanvasState, m PenUp) (CanvasState, *Error) {
	list := state.Layers()
	anyMatch := false
	for i := 0; i < list.Len(); i++ {
		if _, ok := list.At(i).Content.SublayerByID(m.ContextID); ok {
			anyMatch = true
			break
		}
	}
	if !anyMatch {
		return state.Retain(), nil
	}

	lb := layer.FromList(list)
	for i := 0; i < list.Len(); i++ {
		layerID := list.At(i).ID
		removed, ok, err := lb.RemoveSublayer(layerID, m.ContextID)
		if err != nil {
			lb.Discard()
			return CanvasState{}, mapLayerErr("PenUp", err)
		}
		if !ok {
			continue
		}
		mergeErr := lb.MutateLayerContent(layerID, 0, layer.Props{}, func(b *layer.Builder) {
			b.Merge(removed.Content, removed.Props.Opacity, removed.Props.Blend)
		})
		removed.Content.Release()
		if mergeErr != nil {
			lb.Discard()
			return CanvasState{}, mapLayerErr("PenUp", mergeErr)
		}
	}
	return state.withLayers(lb.Persist()), nil
}

func (ci *CommandInterpreter) handleDrawDabsClassic(state CanvasState, m DrawDabsClassic) (CanvasState, *Error) {
	if len(m.Dabs) == 0 {
		return state.Retain(), nil
	}
	stamps := make([]layer.Stamp, len(m.Dabs))
	for i, d := range m.Dabs {
		dab := d
		minX, minY, maxX, maxY := ci.Paint.Bounds(dab)
		stamps[i] = layer.Stamp{
			MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY,
			Sample: func(x, y int) pixel.Pixel { return ci.Paint.Sample(dab, x, y) },
		}
	}
	return ci.applyDabs(state, m.LayerID, m.ContextID, m.Blend, m.Indirect, m.ColorARGB, stamps)
}

func (ci *CommandInterpreter) handleDrawDabsPixel(state CanvasState, m DrawDabsPixel) (CanvasState, *Error) {
	if len(m.Dabs) == 0 {
		return state.Retain(), nil
	}
	color := dabFillColor(m.ColorARGB, m.Indirect)
	stamps := make([]layer.Stamp, len(m.Dabs))
	for i, d := range m.Dabs {
		stamps[i] = layer.Stamp{
			MinX: d.X, MinY: d.Y, MaxX: d.X, MaxY: d.Y,
			Sample: func(x, y int) pixel.Pixel { return color },
		}
	}
	return ci.applyDabs(state, m.LayerID, m.ContextID, m.Blend, m.Indirect, m.ColorARGB, stamps)
}

func (ci *CommandInterpreter) handleDrawDabsPixelSquare(state CanvasState, m DrawDabsPixelSquare) (CanvasState, *Error) {
	if len(m.Dabs) == 0 {
		return state.Retain(), nil
	}
	size := m.Size
	if size < 1 {
		size = 1
	}
	color := dabFillColor(m.ColorARGB, m.Indirect)
	stamps := make([]layer.Stamp, len(m.Dabs))
	for i, d := range m.Dabs {
		stamps[i] = layer.Stamp{
			MinX: d.X, MinY: d.Y, MaxX: d.X + size - 1, MaxY: d.Y + size - 1,
			Sample: func(x, y int) pixel.Pixel { return color },
		}
	}
	return ci.applyDabs(state, m.LayerID, m.ContextID, m.Blend, m.Indirect, m.ColorARGB, stamps)
}

// dabFillColor decodes a DrawDabsPixel/DrawDabsPixelSquare color field
// into the pixel actually stamped. In direct mode the wire alpha is
// embedded in the stamped pixel, same as any other composite. In
// indirect mode that same alpha instead becomes the sublayer's opacity
// (applied once at PenUp-time merge), so the dabs themselves go into the
// sublayer fully opaque — otherwise the alpha would be applied twice and
// the merged result would come out dimmer than the direct-mode
// equivalent (spec.md §8 scenario 5).
func dabFillColor(colorARGB uint32, indirect bool) pixel.Pixel {
	r := uint8(colorARGB >> 16)
	g := uint8(colorARGB >> 8)
	b := uint8(colorARGB)
	if indirect {
		return pixel.FromStraight(r, g, b, 0xff)
	}
	return pixel.FromStraight(r, g, b, uint8(colorARGB>>24))
}

// applyDabs is the shared tail of the three DrawDabs* handlers (spec.md
// §4.5): validates the blend mode, resolves the target layer, and either
// composites directly or accumulates into an indirect-mode sublayer
// keyed by contextID.
func (ci *CommandInterpreter) applyDabs(state CanvasState, layerID layer.ID, contextID tile.ContextID, mode blend.Mode, indirect bool, colorARGB uint32, stamps []layer.Stamp) (CanvasState, *Error) {
	if !mode.BrushCompatible() {
		return CanvasState{}, newErr("DrawDabs", InvalidArgument, nil)
	}
	if _, ok := state.Layers().Find(layerID); !ok {
		return CanvasState{}, newErr("DrawDabs", NotFound, layer.ErrLayerNotFound)
	}

	lb := layer.FromList(state.Layers())
	var lerr error
	if indirect {
		sublayerProps := layer.Props{Opacity: pixel.DabOpacity(colorARGB), Blend: mode, Visible: true}
		lerr = lb.MutateLayerContent(layerID, contextID, sublayerProps, func(b *layer.Builder) {
			for _, st := range stamps {
				b.BrushStampApply(blend.Normal, st)
			}
		})
	} else {
		lerr = lb.MutateLayerContent(layerID, 0, layer.Props{}, func(b *layer.Builder) {
			for _, st := range stamps {
				b.BrushStampApply(mode, st)
			}
		})
	}
	if lerr != nil {
		lb.Discard()
		return CanvasState{}, mapLayerErr("DrawDabs", lerr)
	}
	return state.withLayers(lb.Persist()), nil
}
