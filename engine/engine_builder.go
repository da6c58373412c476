package engine

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithFrameRate sets the target frames per second. Values <= 0 uncap the loop.
//
// Parameters:
//   - fps: target frames per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.frameRate = frameDuration(fps)
	}
}

// WithComponent registers a component at the given key during engine construction.
//
// Parameters:
//   - key: the ordering key (lower runs first)
//   - c: the Component to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithComponent(key int, c Component) EngineBuilderOption {
	return func(e *engine) {
		e.components[key] = c
	}
}
