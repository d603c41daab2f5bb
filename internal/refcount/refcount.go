// Package refcount provides the atomic reference counter shared by every
// persistent node type (Tile, LayerContent, LayerList, CanvasState; layer
// props are a plain value and are not counted) per spec.md §5 ("All refcounted node types use atomic
// increment/decrement"). Go's garbage collector reclaims memory on its
// own, but the engine still tracks counts explicitly: the count is the
// mechanism the rest of the package uses to tell "this node is held by
// more than one snapshot" (must copy-on-write) from "this node is
// uniquely owned" (safe to mutate in place), which is the whole point of
// the transient/persistent split in spec.md §3.
//
// There is no teacher analogue for this file — gg is an immediate-mode
// renderer with no persistent, shared-ownership tree — so it is grounded
// instead on the atomic-pointer idioms the teacher does use for
// concurrency-safe shared state (logger.go's atomic.Pointer[slog.Logger],
// accelerator.go's atomic-guarded global accelerator).
package refcount

import "sync/atomic"

// Counter is an atomic reference count. The zero value is not usable;
// construct with New, which starts the count at 1 (the caller's own
// reference).
type Counter struct {
	n atomic.Int32
}

// New returns a Counter initialized to 1.
func New() *Counter {
	c := &Counter{}
	c.n.Store(1)
	return c
}

// Retain increments the count. Per spec.md §5, this requires the count
// to already be ≥ 1 — incrementing a counter that has reached zero is a
// use-after-free and indicates a bug in the caller, so Retain panics
// rather than silently resurrecting the node.
func (c *Counter) Retain() {
	if c.n.Add(1) <= 1 {
		panic("refcount: retain observed a count that had already reached zero")
	}
}

// Release decrements the count and reports whether this was the last
// reference (count reached zero), in which case the caller is
// responsible for recursively releasing any children.
func (c *Counter) Release() bool {
	return c.n.Add(-1) == 0
}

// Count returns the current count. Exposed for tests and diagnostics;
// production code should not branch on the exact value beyond
// ==1 (unique) checks.
func (c *Counter) Count() int32 {
	return c.n.Load()
}

// Unique reports whether this is the only reference. A transient node's
// Counter is always unique for as long as it remains transient
// (spec.md §3: "a transient node is never observed from more than one
// parent").
func (c *Counter) Unique() bool {
	return c.n.Load() == 1
}
