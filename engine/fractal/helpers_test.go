package fractal

import (
	"math"
	"sync/atomic"
	"testing"

	"github.com/Carmen-Shannon/oxy-fractal/common"
	"github.com/Carmen-Shannon/oxy-fractal/engine/gpu"
	"github.com/Carmen-Shannon/oxy-fractal/engine/scheduler"
)

const tolerance = 1e-4

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) <= tolerance
}

func approxVec(a, b common.Vec3) bool {
	return approx(a[0], b[0]) && approx(a[1], b[1]) && approx(a[2], b[2])
}

// sameRotation compares rotations by their action on the basis, so q and -q are equal.
func sameRotation(a, b common.Quat) bool {
	for _, axis := range []common.Vec3{common.Right, common.Up, common.Forward} {
		if !approxVec(a.Rotate(axis), b.Rotate(axis)) {
			return false
		}
	}
	return true
}

func newTestHierarchy(t *testing.T, depth int, options ...HierarchyOption) (*Hierarchy, *gpu.MemoryAllocator) {
	t.Helper()
	alloc := gpu.NewMemoryAllocator()
	h := NewHierarchy(alloc, options...)
	if err := h.Construct(depth); err != nil {
		t.Fatalf("Construct(%d) error = %v", depth, err)
	}
	t.Cleanup(h.Teardown)
	return h, alloc
}

// countingScheduler records how jobs are chained.
type countingScheduler struct {
	scheduler.Scheduler
	scheduled     atomic.Int32
	missingDepend atomic.Int32
}

func (c *countingScheduler) Schedule(k scheduler.Kernel, n, batch int, dependsOn *scheduler.Handle) *scheduler.Handle {
	if c.scheduled.Add(1) > 1 && dependsOn == nil {
		c.missingDepend.Add(1)
	}
	return c.Scheduler.Schedule(k, n, batch, dependsOn)
}

// failingScheduler makes the kernel of its failJob-th scheduled job panic.
type failingScheduler struct {
	scheduler.Scheduler
	failJob   int32
	scheduled atomic.Int32
}

func (f *failingScheduler) Schedule(k scheduler.Kernel, n, batch int, dependsOn *scheduler.Handle) *scheduler.Handle {
	if f.scheduled.Add(1) == f.failJob {
		k = func(int) { panic("level kernel failed") }
	}
	return f.Scheduler.Schedule(k, n, batch, dependsOn)
}

// transformPoint applies m to p with w = 1.
func transformPoint(m *common.Mat4, p common.Vec3) common.Vec3 {
	return common.Vec3{
		m[0]*p[0] + m[4]*p[1] + m[8]*p[2] + m[12],
		m[1]*p[0] + m[5]*p[1] + m[9]*p[2] + m[13],
		m[2]*p[0] + m[6]*p[1] + m[10]*p[2] + m[14],
	}
}

// cubeCorners are the corners of the unit cube drawn for every part.
var cubeCorners = func() []common.Vec3 {
	var c []common.Vec3
	for _, x := range []float32{-0.5, 0.5} {
		for _, y := range []float32{-0.5, 0.5} {
			for _, z := range []float32{-0.5, 0.5} {
				c = append(c, common.Vec3{x, y, z})
			}
		}
	}
	return c
}()
