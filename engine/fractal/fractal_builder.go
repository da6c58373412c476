package fractal

import (
	"github.com/Carmen-Shannon/oxy-fractal/common"
	"github.com/Carmen-Shannon/oxy-fractal/engine/model"
	"github.com/Carmen-Shannon/oxy-fractal/engine/renderer/material"
)

// FractalBuilderOption is a functional option for configuring a Fractal, both at
// construction and through OnConfigChanged.
type FractalBuilderOption func(*fractal)

// WithName sets the label used for buffers and log messages.
// Only meaningful at construction.
//
// Parameters:
//   - name: the fractal label
//
// Returns:
//   - FractalBuilderOption: option function to apply
func WithName(name string) FractalBuilderOption {
	return func(f *fractal) {
		f.name = common.Coalesce(name, f.name)
	}
}

// WithDepth sets the number of levels, clamped to [MinDepth, MaxDepth].
//
// Parameters:
//   - depth: the tree depth
//
// Returns:
//   - FractalBuilderOption: option function to apply
func WithDepth(depth int) FractalBuilderOption {
	return func(f *fractal) {
		f.depth = common.Clamp(depth, MinDepth, MaxDepth)
	}
}

// WithRotationSpeed sets the spin speed in degrees per second, clamped to [0, MaxRotationSpeed].
//
// Parameters:
//   - degPerSec: the spin speed
//
// Returns:
//   - FractalBuilderOption: option function to apply
func WithRotationSpeed(degPerSec int) FractalBuilderOption {
	return func(f *fractal) {
		f.rotationSpeed = common.Clamp(degPerSec, 0, MaxRotationSpeed)
	}
}

// WithPosition sets the world position the root is anchored at.
//
// Parameters:
//   - x, y, z: the anchor position
//
// Returns:
//   - FractalBuilderOption: option function to apply
func WithPosition(x, y, z float32) FractalBuilderOption {
	return func(f *fractal) {
		f.rootPosition = common.Vec3{x, y, z}
	}
}

// WithMesh sets the mesh drawn for every part. Defaults to a unit cube.
//
// Parameters:
//   - m: the part mesh
//
// Returns:
//   - FractalBuilderOption: option function to apply
func WithMesh(m model.Model) FractalBuilderOption {
	return func(f *fractal) {
		if m != nil {
			f.mesh = m
		}
	}
}

// WithMaterial sets the material used for every draw.
//
// Parameters:
//   - m: the material
//
// Returns:
//   - FractalBuilderOption: option function to apply
func WithMaterial(m material.Material) FractalBuilderOption {
	return func(f *fractal) {
		if m != nil {
			f.mat = m
		}
	}
}

// WithBatchSize sets the minimum number of parts handled by one worker task.
// Only meaningful at construction. Values < 1 are raised to 1.
//
// Parameters:
//   - n: parts per task
//
// Returns:
//   - FractalBuilderOption: option function to apply
func WithBatchSize(n int) FractalBuilderOption {
	return func(f *fractal) {
		f.batchSize = max(n, 1)
	}
}
