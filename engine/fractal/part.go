// Package fractal maintains and animates a self-similar tree of parts.
//
// Parts are stored level by level: level L is a flat slice of 5^L parts, and
// the parent of part i at level L is part i/5 at level L-1. Each frame the
// Updater recomputes world poses root first and then one parallel job per
// level, each job gated on the completion of the previous one. The resulting
// per-level matrix arrays are uploaded to one GPU buffer per level and drawn
// with one instanced draw call per level.
package fractal

import (
	"math"

	"github.com/Carmen-Shannon/oxy-fractal/common"
)

const (
	// ChildCount is the branching factor of the tree.
	ChildCount = 5
	// MinDepth and MaxDepth bound the number of levels a host may configure.
	MinDepth = 1
	MaxDepth = 8
	// ScaleBias is the per-level scale multiplier.
	ScaleBias float32 = 0.5
	// PositionOffset is the distance from a parent to its child, in units of the child's scale.
	PositionOffset float32 = 1.5
	// BoundsExtent is the minimum half-extent of the draw bounds around the root.
	BoundsExtent float32 = 3
)

// Part is one node of the tree.
type Part struct {
	// Direction is the unit offset from the parent, fixed by the child slot.
	Direction common.Vec3
	// Rotation is the orientation relative to the parent, fixed by the child slot.
	Rotation common.Quat
	// WorldPosition and WorldRotation are the pose recomputed every step.
	WorldPosition common.Vec3
	WorldRotation common.Quat
	// SpinAngle is the accumulated rotation about the local up axis, in degrees.
	SpinAngle float32
}

var (
	slotDirections = [ChildCount]common.Vec3{
		common.Up,
		common.Left,
		common.Right,
		common.Forward,
		common.Back,
	}

	// Each slot rotation turns the local up axis onto the slot direction.
	slotRotations = [ChildCount]common.Quat{
		common.QuatIdentity(),
		common.QuatRotateZ(90),
		common.QuatRotateZ(-90),
		common.QuatRotateX(90),
		common.QuatRotateX(-90),
	}
)

// SlotDirection returns the fixed local direction of child slot (0..ChildCount-1).
func SlotDirection(slot int) common.Vec3 {
	return slotDirections[slot]
}

// SlotRotation returns the fixed local rotation of child slot (0..ChildCount-1).
func SlotRotation(slot int) common.Quat {
	return slotRotations[slot]
}

// newPart creates a part for the given child slot with an unset world pose.
func newPart(slot int) Part {
	return Part{
		Direction: slotDirections[slot],
		Rotation:  slotRotations[slot],
	}
}

// LevelSize returns the number of parts at level, ChildCount^level.
func LevelSize(level int) int {
	n := 1
	for range level {
		n *= ChildCount
	}
	return n
}

// LevelScale returns the uniform scale of parts at level, ScaleBias^level.
func LevelScale(level int) float32 {
	return float32(math.Pow(float64(ScaleBias), float64(level)))
}

// ParentIndex returns the index in the previous level of the parent of part i.
func ParentIndex(i int) int {
	return i / ChildCount
}

// Slot returns the child slot of part i within its sibling block.
func Slot(i int) int {
	return i % ChildCount
}

// Reach returns the largest distance from the root position that any point of a
// depth-level tree can occupy, given the bounding radius of one unscaled part.
// Each level adds at most its parent offset plus its scaled part radius.
func Reach(depth int, partRadius float32) float32 {
	var offset, reach float32
	for l := 0; l < depth; l++ {
		scale := LevelScale(l)
		if l > 0 {
			offset += PositionOffset * scale
		}
		reach = max(reach, offset+partRadius*scale)
	}
	return reach
}
