package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-fractal/common"
	"github.com/Carmen-Shannon/oxy-fractal/engine/model"
	"github.com/Carmen-Shannon/oxy-fractal/engine/renderer/material"
)

// DrawRecord is one instanced draw captured by a Recorder.
type DrawRecord struct {
	Mesh          string
	IndexCount    int
	Material      string
	PipelineKey   string
	Bounds        common.Bounds
	Buffer        string
	InstanceCount int
}

// FrameStats summarizes the draws of a completed frame.
type FrameStats struct {
	DrawCalls int
	Instances int
	Triangles int
}

// Recorder is a headless Renderer that validates and records draw calls instead of
// submitting them to a GPU.
type Recorder struct {
	mu *sync.Mutex

	inFrame bool
	current []DrawRecord
	last    []DrawRecord
	frames  int
}

var _ Renderer = &Recorder{}

// NewRecorder creates a Recorder.
//
// Returns:
//   - *Recorder: the newly created recorder
func NewRecorder() *Recorder {
	return &Recorder{mu: &sync.Mutex{}}
}

func (r *Recorder) BeginFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.inFrame = true
	r.current = r.current[:0]
	return nil
}

func (r *Recorder) DrawInstanced(mesh model.Model, mat material.Material, bounds common.Bounds, props PropertyBlock, instanceCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inFrame {
		return ErrNoFrame
	}
	if err := ValidateMesh(mesh); err != nil {
		return err
	}
	if props == nil {
		return ErrMissingBuffer
	}
	buf := props.Buffer(MatricesProperty)
	if buf == nil || buf.Released() {
		return ErrMissingBuffer
	}
	if instanceCount > buf.Count() {
		return fmt.Errorf("%w: %d > %d (%s)", ErrInstanceOverflow, instanceCount, buf.Count(), buf.Label())
	}

	rec := DrawRecord{
		Mesh:          mesh.Name(),
		IndexCount:    mesh.IndexCount(),
		Bounds:        bounds,
		Buffer:        buf.Label(),
		InstanceCount: instanceCount,
	}
	if mat != nil {
		rec.Material = mat.Name()
		rec.PipelineKey = mat.PipelineKey()
	}
	r.current = append(r.current, rec)
	return nil
}

func (r *Recorder) EndFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inFrame {
		return ErrNoFrame
	}
	r.inFrame = false
	r.last = append(r.last[:0], r.current...)
	r.frames++
	return nil
}

// LastFrame returns a copy of the draws recorded in the most recently ended frame.
func (r *Recorder) LastFrame() []DrawRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]DrawRecord(nil), r.last...)
}

// LastStats summarizes the most recently ended frame.
func (r *Recorder) LastStats() FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := FrameStats{DrawCalls: len(r.last)}
	for _, d := range r.last {
		stats.Instances += d.InstanceCount
		stats.Triangles += d.IndexCount / 3 * d.InstanceCount
	}
	return stats
}

// Frames returns the number of frames ended so far.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}
