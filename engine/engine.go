package engine

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-fractal/engine/profiler"
	"github.com/Carmen-Shannon/oxy-fractal/engine/renderer"
)

// Component is anything the engine steps and draws once per frame.
type Component interface {
	// Name returns the component's label for log messages.
	Name() string

	// Active reports whether the component should be run this frame.
	Active() bool

	// OnFrame advances the component by deltaTime and issues its draws.
	OnFrame(deltaTime float32, props renderer.PropertyBlock) error

	// InstanceCount returns the number of instances the component draws per frame.
	InstanceCount() int
}

// engine implements the Engine interface.
type engine struct {
	mu *sync.Mutex

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	r renderer.Renderer
	// props is the single property block reused by every draw of every frame.
	// Only the frame loop touches it.
	props renderer.PropertyBlock

	profiler         *profiler.Profiler
	profilingEnabled bool

	frameRate     time.Duration // 0 = uncapped
	frameCallback func(deltaTime float32)

	components map[int]Component
}

// Engine drives the frame loop: each frame it begins a render frame, runs every active
// component in ascending key order, and ends the frame once all of them have returned.
type Engine interface {
	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetFrameRate sets the target frames per second. Pass 0 to uncap the loop.
	//
	// Parameters:
	//   - fps: target frames per second (0 = uncapped)
	SetFrameRate(fps float64)

	// SetFrameCallback registers a function called after every frame.
	//
	// Parameters:
	//   - callback: function receiving the frame's delta time in seconds
	SetFrameCallback(callback func(deltaTime float32))

	// AddComponent registers a component at the given key. Components run in ascending key order.
	//
	// Parameters:
	//   - key: the ordering key
	//   - c: the Component to register
	AddComponent(key int, c Component)

	// RemoveComponent removes the component at the given key.
	//
	// Parameters:
	//   - key: the key of the component to remove
	RemoveComponent(key int)

	// Component retrieves the component registered at the given key, or nil.
	//
	// Parameters:
	//   - key: the key of the component
	//
	// Returns:
	//   - Component: the component at the key, or nil if not found
	Component(key int) Component

	// Frame runs a single frame synchronously. A component that fails is logged and skipped
	// for this frame; the other components still draw.
	//
	// Parameters:
	//   - deltaTime: the frame's delta time in seconds
	//
	// Returns:
	//   - error: an error if the render frame could not be started or ended
	Frame(deltaTime float32) error

	// Run runs frames until ctx is done or Quit is called. It blocks.
	//
	// Parameters:
	//   - ctx: the context bounding the run
	Run(ctx context.Context)

	// Quit signals the frame loop to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine drawing through r.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - r: the render backend (must not be nil)
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(r renderer.Renderer, options ...EngineBuilderOption) Engine {
	if r == nil {
		panic("engine: NewEngine requires a non-nil Renderer")
	}
	e := &engine{
		mu:          &sync.Mutex{},
		quitChannel: make(chan struct{}),
		r:           r,
		props:       renderer.NewPropertyBlock(),
		profiler:    profiler.NewProfiler(time.Second),
		frameRate:   time.Second / 60,
		components:  make(map[int]Component),
	}

	for _, opt := range options {
		opt(e)
	}

	return e
}

func (e *engine) Run(ctx context.Context) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.mu.Unlock()

	e.wg.Add(1)
	go e.handleFrames(ctx)
	e.wg.Wait()

	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// handleFrames runs the frame loop in its own goroutine until ctx is done or Quit is called.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleFrames(ctx context.Context) {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Engine] frame goroutine recovered from panic: %v", r)
			e.Quit()
		}
	}()

	lastFrame := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.quitChannel:
			return
		default:
		}

		now := time.Now()
		dt := float32(now.Sub(lastFrame).Seconds())
		lastFrame = now

		if err := e.Frame(dt); err != nil {
			log.Printf("[Engine] frame failed: %v", err)
		}

		e.mu.Lock()
		frameRate := e.frameRate
		e.mu.Unlock()
		if frameRate > 0 {
			if remaining := frameRate - time.Since(now); remaining > 0 {
				select {
				case <-time.After(remaining):
				case <-ctx.Done():
					return
				case <-e.quitChannel:
					return
				}
			}
		}
	}
}

func (e *engine) Frame(deltaTime float32) error {
	e.mu.Lock()
	keys := make([]int, 0, len(e.components))
	for k := range e.components {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	active := make([]Component, 0, len(keys))
	for _, k := range keys {
		if c := e.components[k]; c.Active() {
			active = append(active, c)
		}
	}
	callback := e.frameCallback
	profiling := e.profilingEnabled
	e.mu.Unlock()

	start := time.Now()
	if err := e.r.BeginFrame(); err != nil {
		return fmt.Errorf("failed to begin frame: %w", err)
	}

	instances := 0
	for _, c := range active {
		if err := c.OnFrame(deltaTime, e.props); err != nil {
			log.Printf("[Engine] skipping %q this frame: %v", c.Name(), err)
			continue
		}
		instances += c.InstanceCount()
	}
	e.props.Clear()

	if err := e.r.EndFrame(); err != nil {
		return fmt.Errorf("failed to end frame: %w", err)
	}

	if profiling {
		e.profiler.Frame(time.Since(start), instances)
	}
	if callback != nil {
		callback(deltaTime)
	}
	return nil
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

func (e *engine) SetFrameRate(fps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frameRate = frameDuration(fps)
}

func (e *engine) SetFrameCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frameCallback = callback
}

func (e *engine) AddComponent(key int, c Component) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.components[key] = c
}

func (e *engine) RemoveComponent(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.components, key)
}

func (e *engine) Component(key int) Component {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.components[key]
}

func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
