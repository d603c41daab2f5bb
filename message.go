package canvas

import (
	"github.com/gogpu/canvas/blend"
	"github.com/gogpu/canvas/layer"
	"github.com/gogpu/canvas/paint"
	"github.com/gogpu/canvas/pixel"
	"github.com/gogpu/canvas/tile"
	"github.com/gogpu/canvas/transform"
)

// MessageKind tags a Message's concrete type (spec.md §6 "Command input.
// A typed Message with fields the interpreter reads by name").
// CommandInterpreter.Handle dispatches on the concrete Go type with a
// type switch; it does not read Kind().
type MessageKind uint8

const (
	MsgCanvasResize MessageKind = iota + 1
	MsgLayerCreate
	MsgLayerAttr
	MsgLayerOrder
	MsgLayerRetitle
	MsgLayerVisibility
	MsgLayerDelete
	MsgPutImage
	MsgFillRect
	MsgRegionMove
	MsgPutTile
	MsgCanvasBackground
	MsgPenUp
	MsgDrawDabsClassic
	MsgDrawDabsPixel
	MsgDrawDabsPixelSquare
)

// Message is implemented by every concrete command record the wire
// decoding collaborator (explicitly out of this package's scope, spec.md
// §1) produces.
type Message interface {
	Kind() MessageKind
}

// TilePayload is the common shape a wire tile or image slot arrives in:
// either a 4-byte solid BGRA color or a zlib-deflated raw pixel payload
// (spec.md §6 "Tile payloads may instead be a 4-byte BGRA solid color").
// Exactly one of SolidColor/Compressed is meaningful, selected by
// IsSolid.
type TilePayload struct {
	IsSolid    bool
	SolidColor pixel.Pixel
	Compressed []byte
}

// CanvasResize expands or contracts the canvas by the given border
// amounts (spec.md §4.5 "CanvasResize(top, right, bottom, left)").
type CanvasResize struct {
	Top, Right, Bottom, Left int
}

func (CanvasResize) Kind() MessageKind { return MsgCanvasResize }

// LayerCreate adds a new layer (spec.md §4.4 "layer_create").
type LayerCreate struct {
	LayerID   layer.ID
	SourceID  layer.ID
	HasFill   bool
	FillColor pixel.Pixel
	Insert    bool
	Copy      bool
	Title     string
}

func (LayerCreate) Kind() MessageKind { return MsgLayerCreate }

// LayerAttr mutates a layer's (or, if SublayerID is non-zero, a
// sublayer's) rendering attributes (spec.md §4.4 "layer_attr").
type LayerAttr struct {
	LayerID    layer.ID
	SublayerID tile.ContextID
	Opacity    uint8
	Blend      blend.Mode
	Censored   bool
	Fixed      bool
}

func (LayerAttr) Kind() MessageKind { return MsgLayerAttr }

// LayerOrder reorders the whole layer list (spec.md §4.4
// "layer_reorder").
type LayerOrder struct {
	LayerIDs []layer.ID
}

func (LayerOrder) Kind() MessageKind { return MsgLayerOrder }

// LayerRetitle renames a layer (spec.md §4.4 "layer_retitle").
type LayerRetitle struct {
	LayerID layer.ID
	Title   string
}

func (LayerRetitle) Kind() MessageKind { return MsgLayerRetitle }

// LayerVisibility sets a layer's visible flag (spec.md §4.4
// "layer_visibility").
type LayerVisibility struct {
	LayerID layer.ID
	Visible bool
}

func (LayerVisibility) Kind() MessageKind { return MsgLayerVisibility }

// LayerDelete removes a layer, optionally merging its contribution into
// the layer below first (spec.md §4.4 "layer_delete").
type LayerDelete struct {
	ContextID tile.ContextID
	LayerID   layer.ID
	Merge     bool
}

func (LayerDelete) Kind() MessageKind { return MsgLayerDelete }

// PutImage decompresses Compressed into a W×H image and stamps it into
// LayerID at (X, Y) (spec.md §4.5 "PutImage(context_id, layer_id,
// blend_mode, x, y, w, h, compressed_bytes)").
type PutImage struct {
	ContextID  tile.ContextID
	LayerID    layer.ID
	Blend      blend.Mode
	X, Y, W, H int
	Compressed []byte
}

func (PutImage) Kind() MessageKind { return MsgPutImage }

// FillRect composites Color over a rectangle of LayerID, clipped to
// canvas bounds (spec.md §4.5 "FillRect(context_id, layer_id,
// blend_mode, x, y, w, h, color)").
type FillRect struct {
	ContextID  tile.ContextID
	LayerID    layer.ID
	Blend      blend.Mode
	X, Y, W, H int
	Color      pixel.Pixel
}

func (FillRect) Kind() MessageKind { return MsgFillRect }

// RegionMove selects SrcRect out of LayerID, optionally gated by a
// monochrome mask decoded from MaskPayload, and warps it through
// DstQuad back into the same layer (spec.md §4.5 "RegionMove(context_id,
// layer_id, src_rect, dst_quad, mask_bytes?)").
type RegionMove struct {
	ContextID   tile.ContextID
	LayerID     layer.ID
	SrcRect     layer.Rect
	DstQuad     transform.Quad
	MaskPayload []byte // nil if no mask
}

func (RegionMove) Kind() MessageKind { return MsgRegionMove }

// PutTile overwrites one or every grid cell of LayerID (or, if
// SublayerID is non-zero, one of its sublayers) with Payload (spec.md
// §4.5 "PutTile(context_id, layer_id, sublayer_id, x, y, repeat,
// tile_payload)").
type PutTile struct {
	ContextID  tile.ContextID
	LayerID    layer.ID
	SublayerID tile.ContextID
	X, Y       int
	Repeat     bool
	Payload    TilePayload
}

func (PutTile) Kind() MessageKind { return MsgPutTile }

// CanvasBackground replaces the canvas-wide background tile (spec.md
// §4.5 "CanvasBackground(context_id, payload)").
type CanvasBackground struct {
	ContextID tile.ContextID
	Payload   TilePayload
}

func (CanvasBackground) Kind() MessageKind { return MsgCanvasBackground }

// PenUp merges every sublayer keyed by ContextID into its parent layer
// (spec.md §4.5 "PenUp(context_id)").
type PenUp struct {
	ContextID tile.ContextID
}

func (PenUp) Kind() MessageKind { return MsgPenUp }

// DrawDabsClassic composites a soft circular brush stroke (spec.md §4.5
// "DrawDabsClassic / DrawDabsPixel / DrawDabsPixelSquare"). ColorARGB is
// packed 0xAARRGGBB; Indirect selects accumulation into an ephemeral
// sublayer over direct composition.
type DrawDabsClassic struct {
	ContextID tile.ContextID
	LayerID   layer.ID
	Blend     blend.Mode
	Indirect  bool
	ColorARGB uint32
	Dabs      []paint.ClassicDab
}

func (DrawDabsClassic) Kind() MessageKind { return MsgDrawDabsClassic }

// PixelDab is one fixed-shape dab for DrawDabsPixel and
// DrawDabsPixelSquare (a single pixel or a square, per message).
type PixelDab struct {
	X, Y int
}

// DrawDabsPixel composites single-pixel dabs (spec.md §4.5).
type DrawDabsPixel struct {
	ContextID tile.ContextID
	LayerID   layer.ID
	Blend     blend.Mode
	Indirect  bool
	ColorARGB uint32
	Dabs      []PixelDab
}

func (DrawDabsPixel) Kind() MessageKind { return MsgDrawDabsPixel }

// DrawDabsPixelSquare composites Size×Size square dabs, Size shared by
// every dab in the message (spec.md §4.5).
type DrawDabsPixelSquare struct {
	ContextID tile.ContextID
	LayerID   layer.ID
	Blend     blend.Mode
	Indirect  bool
	ColorARGB uint32
	Size      int
	Dabs      []PixelDab
}

func (DrawDabsPixelSquare) Kind() MessageKind { return MsgDrawDabsPixelSquare }
