// Package layer implements the persistent layer tree: LayerContent (a
// tile grid plus indirect-stroke sublayers), LayerProps (the per-layer
// rendering attributes), and LayerList (the ordered, ID-addressed
// sequence of layers that make up a canvas), per spec.md §4.3-§4.4.
//
// It follows the teacher's render/layers.go shape — an ordered sequence
// of named, blended layers composited back-to-front — generalized from
// that file's eagerly-rasterized CPU compositor into a persistent,
// tile-granular, refcounted tree that can be diffed and partially
// rerendered.
package layer

import (
	"github.com/gogpu/canvas/blend"
	"github.com/gogpu/canvas/tile"
)

// ID identifies a layer within a LayerList. Layer IDs are caller-chosen,
// unique, and strictly positive (spec.md §8 "For all snapshots S and
// all layer IDs L in S, L is unique and > 0").
type ID uint32

// Props holds the rendering attributes that affect compositing but not
// pixel content: opacity, blend mode, and the visible/censored/fixed
// flags (spec.md §4.3 invariants).
type Props struct {
	Opacity  uint8
	Blend    blend.Mode
	Visible  bool
	Censored bool
	Fixed    bool
	Title    string
}

// DefaultProps returns the attributes a freshly created, fully visible,
// normally-blended layer starts with.
func DefaultProps(title string) Props {
	return Props{Opacity: 255, Blend: blend.Normal, Visible: true, Title: title}
}

// affectsRendering reports whether any property that changes how a
// layer is composited differs between p and o — the fast path
// Content.Diff uses to mark every tile changed without a pixel compare
// (spec.md §4.3 "diff... if any property that affects rendering
// changed... mark all tiles changed").
func (p Props) affectsRendering(o Props) bool {
	return p.Opacity != o.Opacity || p.Blend != o.Blend || p.Visible != o.Visible || p.Censored != o.Censored
}

// Sublayer pairs a per-stroke scratch layer's content and props with
// the context ID that keys it (spec.md glossary "Sublayer").
type Sublayer struct {
	ID      tile.ContextID
	Content Content
	Props   Props
}
