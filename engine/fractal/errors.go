package fractal

import "errors"

var (
	// ErrInactive is returned when a torn-down hierarchy is stepped, uploaded or drawn.
	ErrInactive = errors.New("fractal: hierarchy is inactive")
	// ErrActive is returned when Construct is called on a hierarchy that is already constructed.
	ErrActive = errors.New("fractal: hierarchy is already active")
	// ErrInvalidDepth is returned when Construct is called with depth < 1.
	ErrInvalidDepth = errors.New("fractal: depth must be at least 1")
)
