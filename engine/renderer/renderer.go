// Package renderer defines the render backend the fractal draws through and a
// recording implementation used by headless runs and tests.
package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-fractal/common"
	"github.com/Carmen-Shannon/oxy-fractal/engine/model"
	"github.com/Carmen-Shannon/oxy-fractal/engine/renderer/material"
)

// MatricesProperty is the PropertyBlock slot holding the per-instance transform buffer.
const MatricesProperty = "matrices"

var (
	// ErrNoFrame is returned when a draw is issued outside BeginFrame/EndFrame.
	ErrNoFrame = errors.New("renderer: draw issued outside of a frame")
	// ErrMissingBuffer is returned when the property block has no live instance buffer.
	ErrMissingBuffer = errors.New("renderer: property block has no instance buffer")
	// ErrInstanceOverflow is returned when more instances are requested than the buffer holds.
	ErrInstanceOverflow = errors.New("renderer: instance count exceeds buffer capacity")
	// ErrEmptyMesh is returned when a draw names no mesh or a mesh without indices.
	ErrEmptyMesh = errors.New("renderer: mesh has no indices")
)

// ValidateMesh reports whether mesh can be drawn.
//
// Parameters:
//   - mesh: the mesh to check
//
// Returns:
//   - error: ErrEmptyMesh if mesh is nil or has no indices
func ValidateMesh(mesh model.Model) error {
	if mesh == nil {
		return ErrEmptyMesh
	}
	if mesh.IndexCount() <= 0 {
		return fmt.Errorf("%w: %q", ErrEmptyMesh, mesh.Name())
	}
	return nil
}

// Renderer is the render backend. Every DrawInstanced call issues one instanced draw
// of mesh, reading per-instance transforms from the buffer bound in props.
type Renderer interface {
	// BeginFrame starts a new frame. Must be paired with EndFrame.
	//
	// Returns:
	//   - error: an error if the frame could not be started
	BeginFrame() error

	// DrawInstanced encodes a single instanced draw command within the current frame.
	//
	// Parameters:
	//   - mesh: the mesh drawn for every instance
	//   - mat: the material to render with
	//   - bounds: a world-space volume containing every instance
	//   - props: the property block carrying the instance buffer under MatricesProperty
	//   - instanceCount: the number of instances to draw
	//
	// Returns:
	//   - error: an error if the draw could not be encoded
	DrawInstanced(mesh model.Model, mat material.Material, bounds common.Bounds, props PropertyBlock, instanceCount int) error

	// EndFrame ends the current frame and submits the recorded draws.
	//
	// Returns:
	//   - error: an error if no frame is in progress
	EndFrame() error
}
