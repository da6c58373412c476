package fractal

import "github.com/Carmen-Shannon/oxy-fractal/common"

// HierarchyOption is a functional option for configuring a Hierarchy.
type HierarchyOption func(*Hierarchy)

// WithLabel sets the label used for GPU buffer names and log messages.
//
// Parameters:
//   - label: the hierarchy label
//
// Returns:
//   - HierarchyOption: option function to apply
func WithLabel(label string) HierarchyOption {
	return func(h *Hierarchy) {
		h.label = common.Coalesce(label, h.label)
	}
}

// WithRootPosition sets the world position the root is anchored at on Construct.
//
// Parameters:
//   - pos: the root anchor position
//
// Returns:
//   - HierarchyOption: option function to apply
func WithRootPosition(pos common.Vec3) HierarchyOption {
	return func(h *Hierarchy) {
		h.rootPosition = pos
	}
}

// WithPartRadius sets the bounding radius of one unscaled part, used to size the
// draw bounds. Negative values are ignored.
//
// Parameters:
//   - radius: the part mesh bounding radius
//
// Returns:
//   - HierarchyOption: option function to apply
func WithPartRadius(radius float32) HierarchyOption {
	return func(h *Hierarchy) {
		if radius >= 0 {
			h.partRadius = radius
		}
	}
}
