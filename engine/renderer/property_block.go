package renderer

import "github.com/Carmen-Shannon/oxy-fractal/engine/gpu"

// PropertyBlock carries per-draw resource bindings, set immediately before each draw.
// A single block is reused for every draw of a frame, so it is not safe for concurrent use.
type PropertyBlock interface {
	// SetBuffer binds b to the named slot, replacing any previous binding.
	SetBuffer(name string, b gpu.Buffer)

	// Buffer returns the buffer bound to the named slot, or nil.
	Buffer(name string) gpu.Buffer

	// Clear removes every binding.
	Clear()
}

type propertyBlock struct {
	buffers map[string]gpu.Buffer
}

var _ PropertyBlock = &propertyBlock{}

// NewPropertyBlock creates an empty PropertyBlock.
func NewPropertyBlock() PropertyBlock {
	return &propertyBlock{buffers: make(map[string]gpu.Buffer, 1)}
}

func (p *propertyBlock) SetBuffer(name string, b gpu.Buffer) {
	p.buffers[name] = b
}

func (p *propertyBlock) Buffer(name string) gpu.Buffer {
	return p.buffers[name]
}

func (p *propertyBlock) Clear() {
	clear(p.buffers)
}
