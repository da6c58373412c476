package fractal

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fractal/common"
	"github.com/Carmen-Shannon/oxy-fractal/engine/scheduler"
)

// levelJob is the per-level kernel. It reads only the parent level, which is complete
// before the job is scheduled, and writes only its own index.
type levelJob struct {
	parents  []Part
	parts    []Part
	matrices []common.Mat4

	spinDelta float32
	scale     float32
	offset    float32

	kernel scheduler.Kernel
}

func newLevelJob() *levelJob {
	j := &levelJob{}
	j.kernel = j.execute
	return j
}

func (j *levelJob) execute(i int) {
	parent := &j.parents[ParentIndex(i)]
	part := &j.parts[i]

	part.SpinAngle += j.spinDelta
	part.WorldRotation = parent.WorldRotation.Mul(part.Rotation.Mul(common.QuatRotateY(part.SpinAngle)))
	part.WorldPosition = parent.WorldPosition.Add(parent.WorldRotation.Rotate(part.Direction.Scale(j.offset)))
	j.matrices[i].SetTRS(part.WorldPosition, part.WorldRotation, j.scale)
}

// Updater is the transform update engine. It recomputes every part's world pose once per
// Step: the root synchronously, then one scheduled job per level, each depending on the
// previous level's job. An Updater must not be stepped from more than one goroutine at a time.
type Updater struct {
	sched     scheduler.Scheduler
	batchSize int
	jobs      []*levelJob
}

// NewUpdater creates an Updater that runs level jobs on sched.
//
// Parameters:
//   - sched: the executor for level jobs (must not be nil)
//   - options: functional options to configure the updater
//
// Returns:
//   - *Updater: the newly created updater
func NewUpdater(sched scheduler.Scheduler, options ...UpdaterOption) *Updater {
	if sched == nil {
		panic("fractal: NewUpdater requires a non-nil Scheduler")
	}
	u := &Updater{
		sched:     sched,
		batchSize: ChildCount,
	}
	for _, opt := range options {
		opt(u)
	}
	return u
}

// Step advances every part's spin by angularSpeed*deltaTime degrees and recomputes all
// world poses and matrices. It returns once every level has finished.
//
// Parameters:
//   - h: the hierarchy to update
//   - deltaTime: the time step in seconds
//   - angularSpeed: the spin speed in degrees per second
//
// Returns:
//   - error: ErrInactive if h is torn down, or the level job failure
func (u *Updater) Step(h *Hierarchy, deltaTime, angularSpeed float32) error {
	if !h.Active() {
		return ErrInactive
	}
	spinDelta := angularSpeed * deltaTime

	root := h.Root()
	root.SpinAngle += spinDelta
	root.WorldRotation = root.Rotation.Mul(common.QuatRotateY(root.SpinAngle))
	h.matrices[0][0].SetTRS(root.WorldPosition, root.WorldRotation, 1)

	for len(u.jobs) < h.Depth() {
		u.jobs = append(u.jobs, newLevelJob())
	}

	// The root update above is complete, so level 1 has no dependency.
	var handle *scheduler.Handle
	for l := 1; l < h.Depth(); l++ {
		j := u.jobs[l]
		j.parents = h.parts[l-1]
		j.parts = h.parts[l]
		j.matrices = h.matrices[l]
		j.spinDelta = spinDelta
		j.scale = LevelScale(l)
		j.offset = PositionOffset * j.scale

		handle = u.sched.Schedule(j.kernel, len(j.parts), u.batchFor(len(j.parts)), handle)
	}

	err := u.sched.Join(handle)
	for _, j := range u.jobs {
		j.parents, j.parts, j.matrices = nil, nil, nil
	}
	if err != nil {
		return fmt.Errorf("fractal step failed: %w", err)
	}
	return nil
}

// batchFor keeps the number of tasks per level near a few per worker.
func (u *Updater) batchFor(count int) int {
	perWorker := count / (u.sched.Workers() * 4)
	return max(u.batchSize, perWorker)
}
