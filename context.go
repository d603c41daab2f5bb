package canvas

import (
	"sync"

	"github.com/BurntSushi/toml"
	"golang.org/x/image/vector"

	"github.com/gogpu/canvas/tile"
)

// ContextConfig parameterizes a DrawContext (spec.md §6 "Configuration.
// A draw context parameterized by: scratch transform buffer size (tile
// count), rasterizer pool initial size, rasterizer pool maximum size").
// DefaultContextID additionally names the context_id a headless replay
// (one with no originating wire connection to supply one) stamps onto
// tiles it creates.
type ContextConfig struct {
	ScratchTileCount      int
	RasterizerPoolInitial int
	RasterizerPoolMax     int
	DefaultContextID      tile.ContextID
}

// DefaultContextConfig returns reasonable defaults: enough scratch for
// a handful of in-flight region_move operations and a rasterizer pool
// that starts small and can grow to a generous cap.
func DefaultContextConfig() ContextConfig {
	return ContextConfig{
		ScratchTileCount:      64,
		RasterizerPoolInitial: 4,
		RasterizerPoolMax:     64,
	}
}

// tomlContextConfig mirrors ContextConfig for github.com/BurntSushi/toml
// decoding — a separate type so the decoded values can be merged onto
// the defaults. A field absent from the file decodes as zero, and
// LoadContextConfig treats a zero (or negative) count the same as an
// absent one.
type tomlContextConfig struct {
	ScratchTileCount      int    `toml:"scratch_tile_count"`
	RasterizerPoolInitial int    `toml:"rasterizer_pool_initial"`
	RasterizerPoolMax     int    `toml:"rasterizer_pool_max"`
	DefaultContextID      uint32 `toml:"default_context_id"`
}

// LoadContextConfig reads a TOML file of the form:
//
//	scratch_tile_count = 64
//	rasterizer_pool_initial = 4
//	rasterizer_pool_max = 64
//	default_context_id = 0
//
// the same way the pack's NoiseTorch loads its settings file, and
// returns a ContextConfig with any count the file omits, or sets to zero
// or less, left at its DefaultContextConfig value.
func LoadContextConfig(path string) (ContextConfig, error) {
	var raw tomlContextConfig
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return ContextConfig{}, newErr("LoadContextConfig", IOError, err)
	}

	cfg := DefaultContextConfig()
	if raw.ScratchTileCount > 0 {
		cfg.ScratchTileCount = raw.ScratchTileCount
	}
	if raw.RasterizerPoolInitial > 0 {
		cfg.RasterizerPoolInitial = raw.RasterizerPoolInitial
	}
	if raw.RasterizerPoolMax > 0 {
		cfg.RasterizerPoolMax = raw.RasterizerPoolMax
	}
	cfg.DefaultContextID = tile.ContextID(raw.DefaultContextID)
	return cfg, nil
}

// rasterizerPool hands out *vector.Rasterizer scratch buffers for
// RegionMove's quad warp. It grows by doubling when exhausted, capping
// the new size at its configured maximum, and fails only once it has
// already reached that maximum with nothing free (spec.md §5 "Shared
// resources... rasterizer pool doubles on out-of-memory, capped at a
// configured maximum; exceeding the cap is a failure").
type rasterizerPool struct {
	mu   sync.Mutex
	free []*vector.Rasterizer
	size int
	max  int
}

func newRasterizerPool(initial, max int) *rasterizerPool {
	if max < initial {
		max = initial
	}
	p := &rasterizerPool{max: max}
	for i := 0; i < initial; i++ {
		p.free = append(p.free, &vector.Rasterizer{})
	}
	p.size = initial
	return p
}

// acquire returns a rasterizer for exclusive use by the caller, who must
// call release when done.
func (p *rasterizerPool) acquire() (*vector.Rasterizer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.free); n > 0 {
		z := p.free[n-1]
		p.free = p.free[:n-1]
		return z, nil
	}

	grown := p.size * 2
	if grown == 0 {
		grown = 1
	}
	if grown > p.max {
		grown = p.max
	}
	if grown <= p.size {
		return nil, newErr("rasterizerPool.acquire", ResourceExhausted, nil)
	}
	for i := 0; i < grown-p.size-1; i++ {
		p.free = append(p.free, &vector.Rasterizer{})
	}
	p.size = grown
	return &vector.Rasterizer{}, nil
}

func (p *rasterizerPool) release(z *vector.Rasterizer) {
	p.mu.Lock()
	p.free = append(p.free, z)
	p.mu.Unlock()
}

// DrawContext is the scratch-resource collaborator a CommandInterpreter
// is handed alongside each message: the region_move rasterizer pool and
// the tuning from ContextConfig (spec.md §5 "The draw context (scratch
// pixel buffer + rasterizer pool) is exclusive to one interpreter thread;
// it must not be shared concurrently").
type DrawContext struct {
	cfg         ContextConfig
	rasterizers *rasterizerPool
}

// NewDrawContext builds a DrawContext from cfg.
func NewDrawContext(cfg ContextConfig) *DrawContext {
	return &DrawContext{cfg: cfg, rasterizers: newRasterizerPool(cfg.RasterizerPoolInitial, cfg.RasterizerPoolMax)}
}

// Config returns the context's configuration.
func (dc *DrawContext) Config() ContextConfig { return dc.cfg }
