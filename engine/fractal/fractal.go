package fractal

import (
	"fmt"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-fractal/common"
	"github.com/Carmen-Shannon/oxy-fractal/engine/gpu"
	"github.com/Carmen-Shannon/oxy-fractal/engine/model"
	"github.com/Carmen-Shannon/oxy-fractal/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fractal/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-fractal/engine/scheduler"
)

const (
	// DefaultDepth is the depth used when WithDepth is not given.
	DefaultDepth = 4
	// DefaultRotationSpeed is the spin speed in degrees per second used when WithRotationSpeed is not given.
	DefaultRotationSpeed = 22
	// MaxRotationSpeed bounds the configurable spin speed.
	MaxRotationSpeed = 360
)

// fractal implements the Fractal interface.
type fractal struct {
	mu *sync.Mutex

	name          string
	depth         int
	rotationSpeed int
	rootPosition  common.Vec3
	batchSize     int
	mesh          model.Model
	mat           material.Material

	r         renderer.Renderer
	hierarchy *Hierarchy
	updater   *Updater
}

// Fractal is the host-facing component. It maps the host lifecycle onto the hierarchy:
// activation constructs it, deactivation tears it down, configuration changes rebuild it
// when the depth changes, and every frame steps, uploads and draws it.
type Fractal interface {
	// OnActivate constructs the hierarchy with the configured depth.
	//
	// Returns:
	//   - error: the construction error; the fractal stays inactive
	OnActivate() error

	// OnDeactivate tears the hierarchy down. It is a no-op when inactive.
	OnDeactivate()

	// OnConfigChanged applies options to the configuration. When active and the depth or
	// root position changed, the hierarchy is reconstructed; a new rotation speed applies
	// from the next frame.
	//
	// Parameters:
	//   - options: the changed settings
	//
	// Returns:
	//   - error: the reconstruction error; the fractal is left inactive
	OnConfigChanged(options ...FractalBuilderOption) error

	// OnFrame steps the hierarchy by deltaTime, uploads every level's matrices and issues
	// one instanced draw per level through props. Must be called between the renderer's
	// BeginFrame and EndFrame.
	//
	// Parameters:
	//   - deltaTime: the time step in seconds
	//   - props: the shared property block for this frame's draws
	//
	// Returns:
	//   - error: ErrInactive after teardown, or the step/upload/draw failure that aborted the frame
	OnFrame(deltaTime float32, props renderer.PropertyBlock) error

	// Active reports whether the hierarchy is constructed.
	Active() bool

	// Name returns the fractal's label.
	Name() string

	// Depth returns the configured depth.
	Depth() int

	// RotationSpeed returns the configured spin speed in degrees per second.
	RotationSpeed() int

	// InstanceCount returns the number of parts drawn per frame, or 0 when inactive.
	InstanceCount() int

	// Hierarchy returns the underlying hierarchy store.
	Hierarchy() *Hierarchy
}

var _ Fractal = &fractal{}

// NewFractal creates an inactive Fractal. The renderer, allocator and scheduler are
// required and NewFractal panics if any of them is nil.
//
// Parameters:
//   - r: the render backend
//   - alloc: the GPU buffer allocator
//   - sched: the executor for level jobs
//   - options: functional options to configure the fractal
//
// Returns:
//   - Fractal: the newly created fractal
func NewFractal(r renderer.Renderer, alloc gpu.Allocator, sched scheduler.Scheduler, options ...FractalBuilderOption) Fractal {
	if r == nil {
		panic("fractal: NewFractal requires a non-nil Renderer")
	}
	if alloc == nil {
		panic("fractal: NewFractal requires a non-nil Allocator")
	}
	if sched == nil {
		panic("fractal: NewFractal requires a non-nil Scheduler")
	}

	f := &fractal{
		mu:            &sync.Mutex{},
		name:          "fractal",
		depth:         DefaultDepth,
		rotationSpeed: DefaultRotationSpeed,
		batchSize:     ChildCount,
		r:             r,
	}
	for _, opt := range options {
		opt(f)
	}

	if f.mesh == nil {
		f.mesh = model.NewCube(f.name + " part")
	}
	if f.mat == nil {
		f.mat = material.NewMaterial(material.WithName(f.name))
	}

	f.hierarchy = NewHierarchy(alloc,
		WithLabel(f.name),
		WithRootPosition(f.rootPosition),
		WithPartRadius(f.mesh.BoundingRadius()),
	)
	f.updater = NewUpdater(sched, WithUpdaterBatchSize(f.batchSize))
	return f
}

func (f *fractal) OnActivate() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.hierarchy.Active() {
		return nil
	}
	if err := f.hierarchy.Construct(f.depth); err != nil {
		return fmt.Errorf("failed to activate %q: %w", f.name, err)
	}
	log.Printf("[Fractal] %q activated: depth %d, %d instances", f.name, f.depth, f.hierarchy.InstanceCount())
	return nil
}

func (f *fractal) OnDeactivate() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.hierarchy.Active() {
		return
	}
	f.hierarchy.Teardown()
	log.Printf("[Fractal] %q deactivated", f.name)
}

func (f *fractal) OnConfigChanged(options ...FractalBuilderOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	oldDepth, oldPosition := f.depth, f.rootPosition
	for _, opt := range options {
		opt(f)
	}

	if f.rootPosition != oldPosition {
		f.hierarchy.SetRootPosition(f.rootPosition)
	}
	f.hierarchy.SetPartRadius(f.mesh.BoundingRadius())
	WithUpdaterBatchSize(f.batchSize)(f.updater)
	if !f.hierarchy.Active() || (f.depth == oldDepth && f.rootPosition == oldPosition) {
		return nil
	}

	if err := f.hierarchy.Reconfigure(f.depth); err != nil {
		return fmt.Errorf("failed to reconfigure %q: %w", f.name, err)
	}
	log.Printf("[Fractal] %q reconfigured: depth %d -> %d, %d instances", f.name, oldDepth, f.depth, f.hierarchy.InstanceCount())
	return nil
}

func (f *fractal) OnFrame(deltaTime float32, props renderer.PropertyBlock) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.hierarchy.Active() {
		return fmt.Errorf("%q: %w", f.name, ErrInactive)
	}
	if err := f.updater.Step(f.hierarchy, deltaTime, float32(f.rotationSpeed)); err != nil {
		return fmt.Errorf("%q: %w", f.name, err)
	}
	if err := f.hierarchy.Upload(); err != nil {
		return err
	}
	return f.hierarchy.Draw(f.r, f.mesh, f.mat, props)
}

func (f *fractal) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hierarchy.Active()
}

func (f *fractal) Name() string {
	return f.name
}

func (f *fractal) Depth() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.depth
}

func (f *fractal) RotationSpeed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rotationSpeed
}

func (f *fractal) InstanceCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hierarchy.InstanceCount()
}

func (f *fractal) Hierarchy() *Hierarchy {
	return f.hierarchy
}
