package fractal

import (
	"fmt"
	"log"

	"github.com/Carmen-Shannon/oxy-fractal/common"
	"github.com/Carmen-Shannon/oxy-fractal/engine/gpu"
	"github.com/Carmen-Shannon/oxy-fractal/engine/model"
	"github.com/Carmen-Shannon/oxy-fractal/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fractal/engine/renderer/material"
)

// Hierarchy owns the per-level part arrays, the per-level matrix arrays and one GPU
// buffer per level. It is not safe for concurrent use; the Updater is the only writer
// while a step is in flight.
type Hierarchy struct {
	alloc        gpu.Allocator
	label        string
	rootPosition common.Vec3
	partRadius   float32

	parts    [][]Part
	matrices [][]common.Mat4
	buffers  []gpu.Buffer
}

// NewHierarchy creates an inactive Hierarchy. Call Construct to allocate it.
//
// Parameters:
//   - alloc: the allocator used for the per-level GPU buffers (must not be nil)
//   - options: functional options to configure the hierarchy
//
// Returns:
//   - *Hierarchy: the inactive hierarchy
func NewHierarchy(alloc gpu.Allocator, options ...HierarchyOption) *Hierarchy {
	if alloc == nil {
		panic("fractal: NewHierarchy requires a non-nil Allocator")
	}
	h := &Hierarchy{
		alloc:      alloc,
		label:      "fractal",
		partRadius: model.CubeBoundingRadius,
	}
	for _, opt := range options {
		opt(h)
	}
	return h
}

// Construct allocates depth levels and their GPU buffers and initializes every part from
// the slot tables. The root gets the identity rotation and the anchored root position;
// the world pose of every other part is left unset until the first Step.
// On allocation failure everything allocated so far is released and the hierarchy stays inactive.
//
// Parameters:
//   - depth: the number of levels (>= 1)
//
// Returns:
//   - error: ErrActive, ErrInvalidDepth, or a wrapped gpu.ErrAllocation
func (h *Hierarchy) Construct(depth int) error {
	if h.Active() {
		return ErrActive
	}
	if depth < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidDepth, depth)
	}

	parts := make([][]Part, depth)
	matrices := make([][]common.Mat4, depth)
	buffers := make([]gpu.Buffer, 0, depth)

	for l := 0; l < depth; l++ {
		size := LevelSize(l)
		buf, err := h.alloc.Allocate(fmt.Sprintf("%s level %d", h.label, l), size, common.Mat4Size)
		if err != nil {
			h.release(buffers)
			return fmt.Errorf("failed to allocate level %d of %q: %w", l, h.label, err)
		}
		buffers = append(buffers, buf)
		parts[l] = make([]Part, size)
		matrices[l] = make([]common.Mat4, size)
	}

	root := newPart(0)
	root.WorldPosition = h.rootPosition
	root.WorldRotation = common.QuatIdentity()
	parts[0][0] = root

	for l := 1; l < depth; l++ {
		level := parts[l]
		for i := 0; i < len(level); i += ChildCount {
			for slot := 0; slot < ChildCount; slot++ {
				level[i+slot] = newPart(slot)
			}
		}
	}

	h.parts, h.matrices, h.buffers = parts, matrices, buffers
	return nil
}

// Teardown releases every part array, matrix array and GPU buffer. It is a no-op on an
// inactive hierarchy.
func (h *Hierarchy) Teardown() {
	if !h.Active() {
		return
	}
	h.release(h.buffers)
	h.parts, h.matrices, h.buffers = nil, nil, nil
}

// Reconfigure tears the hierarchy down and constructs it again with depth levels.
//
// Parameters:
//   - depth: the new number of levels (>= 1)
//
// Returns:
//   - error: the Construct error, in which case the hierarchy is left inactive
func (h *Hierarchy) Reconfigure(depth int) error {
	h.Teardown()
	return h.Construct(depth)
}

func (h *Hierarchy) release(buffers []gpu.Buffer) {
	for _, b := range buffers {
		if err := h.alloc.Release(b); err != nil {
			log.Printf("[Fractal] failed to release %q: %v", b.Label(), err)
		}
	}
}

// Active reports whether the hierarchy is constructed.
func (h *Hierarchy) Active() bool {
	return h.parts != nil
}

// Depth returns the number of levels, or 0 when inactive.
func (h *Hierarchy) Depth() int {
	return len(h.parts)
}

// Level returns the parts of level l. The slice is owned by the hierarchy.
func (h *Hierarchy) Level(l int) []Part {
	return h.parts[l]
}

// Matrices returns the transform matrices of level l. The slice is owned by the hierarchy.
func (h *Hierarchy) Matrices(l int) []common.Mat4 {
	return h.matrices[l]
}

// Buffer returns the GPU buffer of level l.
func (h *Hierarchy) Buffer(l int) gpu.Buffer {
	return h.buffers[l]
}

// Root returns the root part. The hierarchy must be active.
func (h *Hierarchy) Root() *Part {
	return &h.parts[0][0]
}

// InstanceCount returns the total number of parts across all levels.
func (h *Hierarchy) InstanceCount() int {
	n := 0
	for _, level := range h.parts {
		n += len(level)
	}
	return n
}

// Bounds returns a volume containing the whole structure, centered on the root.
// The half-extent is BoundsExtent unless the tree's Reach is larger.
func (h *Hierarchy) Bounds() common.Bounds {
	e := max(BoundsExtent, Reach(h.Depth(), h.partRadius))
	return common.Bounds{
		Center: h.Root().WorldPosition,
		Extent: common.Vec3{e, e, e},
	}
}

// Upload copies every level's matrix array into that level's GPU buffer.
// Must not run while a step is in flight.
//
// Returns:
//   - error: ErrInactive, or the first upload error
func (h *Hierarchy) Upload() error {
	if !h.Active() {
		return ErrInactive
	}
	for l, m := range h.matrices {
		if err := h.alloc.Upload(h.buffers[l], common.SliceToBytes(m)); err != nil {
			return fmt.Errorf("failed to upload level %d of %q: %w", l, h.label, err)
		}
	}
	return nil
}

// Draw issues one instanced draw per level, binding each level's buffer into props first.
// The mesh and every level buffer are checked before the first draw, so a failed check
// draws nothing for this hierarchy.
//
// Parameters:
//   - r: the render backend
//   - mesh: the mesh drawn for every part
//   - mat: the material to draw with
//   - props: the property block reused for every draw
//
// Returns:
//   - error: ErrInactive, renderer.ErrEmptyMesh, gpu.ErrReleased, or the first draw error
func (h *Hierarchy) Draw(r renderer.Renderer, mesh model.Model, mat material.Material, props renderer.PropertyBlock) error {
	if !h.Active() {
		return ErrInactive
	}
	if err := renderer.ValidateMesh(mesh); err != nil {
		return fmt.Errorf("failed to draw %q: %w", h.label, err)
	}
	for l, buf := range h.buffers {
		if buf.Released() {
			return fmt.Errorf("failed to draw level %d of %q: %w", l, h.label, gpu.ErrReleased)
		}
	}

	bounds := h.Bounds()
	for l, buf := range h.buffers {
		props.SetBuffer(renderer.MatricesProperty, buf)
		if err := r.DrawInstanced(mesh, mat, bounds, props, len(h.parts[l])); err != nil {
			return fmt.Errorf("failed to draw level %d of %q: %w", l, h.label, err)
		}
	}
	return nil
}

// SetRootPosition changes the root anchor position. It takes effect on the next Construct.
func (h *Hierarchy) SetRootPosition(pos common.Vec3) {
	h.rootPosition = pos
}

// SetPartRadius changes the part bounding radius used by Bounds.
func (h *Hierarchy) SetPartRadius(radius float32) {
	WithPartRadius(radius)(h)
}
