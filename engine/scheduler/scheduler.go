// Package scheduler runs index-parameterized kernels across a persistent worker pool.
//
// Jobs may declare a dependency on another job's Handle; the dependent job's
// batches are not submitted until the dependency has completed, which lets a
// caller express strict read-after-write ordering between jobs without locks.
package scheduler

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// ErrKernelPanic is reported by Join when a kernel panicked while running.
var ErrKernelPanic = errors.New("scheduler: kernel panicked")

// ErrDependencyFailed is reported by Join when a job was skipped because a job it depends on failed.
var ErrDependencyFailed = errors.New("scheduler: dependency failed")

// Kernel is the body of a parallel job. It is invoked once for every index in [0, itemCount).
// A kernel must only write state owned by its own index.
type Kernel func(index int)

// Scheduler is a fork-join executor for index-parameterized kernels.
type Scheduler interface {
	// Schedule queues kernel over itemCount indices, split into batches of batchSize indices.
	// Batches run on pool workers in no particular order. When dependsOn is non-nil, no batch
	// starts before dependsOn has completed. Schedule does not wait for the kernel to finish.
	//
	// Parameters:
	//   - kernel: the work item body, called once per index
	//   - itemCount: the number of indices to process
	//   - batchSize: indices per worker task (values < 1 are treated as 1)
	//   - dependsOn: the handle of the job that must finish first, or nil
	//
	// Returns:
	//   - *Handle: the completion handle for this job
	Schedule(kernel Kernel, itemCount, batchSize int, dependsOn *Handle) *Handle

	// Join blocks until h has completed and returns the first error raised by the job
	// or one of the jobs it transitively depends on.
	//
	// Parameters:
	//   - h: the handle to wait for
	//
	// Returns:
	//   - error: ErrKernelPanic or ErrDependencyFailed wrapped with detail, nil on success
	Join(h *Handle) error

	// Workers returns the maximum number of concurrently running batches.
	Workers() int
}

type scheduler struct {
	pool    worker.DynamicWorkerPool
	workers int
	taskID  atomic.Int64
}

var _ Scheduler = &scheduler{}

// NewScheduler creates a Scheduler backed by a dynamic worker pool.
// Workers persist across frames.
//
// Parameters:
//   - workers: the worker count; values < 1 default to runtime.NumCPU()-1 (minimum 1)
//
// Returns:
//   - Scheduler: the newly created scheduler
func NewScheduler(workers int) Scheduler {
	if workers < 1 {
		workers = max(runtime.NumCPU()-1, 1)
	}
	return &scheduler{
		workers: workers,
		pool:    worker.NewDynamicWorkerPool(workers, 256, 1*time.Second),
	}
}

func (s *scheduler) Workers() int {
	return s.workers
}

func (s *scheduler) Schedule(kernel Kernel, itemCount, batchSize int, dependsOn *Handle) *Handle {
	if batchSize < 1 {
		batchSize = 1
	}
	if itemCount < 0 {
		itemCount = 0
	}
	batches := (itemCount + batchSize - 1) / batchSize
	h := newHandle(batches)

	start := func() {
		if err := dependErr(dependsOn); err != nil {
			h.cancel(err)
			return
		}
		if batches == 0 {
			h.complete()
			return
		}
		s.submit(h, kernel, itemCount, batchSize, batches)
	}

	if dependsOn == nil || dependsOn.IsDone() {
		start()
		return h
	}
	go func() {
		<-dependsOn.Done()
		start()
	}()
	return h
}

func (s *scheduler) Join(h *Handle) error {
	if h == nil {
		return nil
	}
	<-h.Done()
	return h.Err()
}

// submit hands each batch of the job to the pool as a separate task.
func (s *scheduler) submit(h *Handle, kernel Kernel, itemCount, batchSize, batches int) {
	for b := 0; b < batches; b++ {
		start := b * batchSize
		end := min(start+batchSize, itemCount)
		s.pool.SubmitTask(worker.Task{
			ID: int(s.taskID.Add(1)),
			Do: func() (any, error) {
				defer h.finishBatch()
				defer func() {
					if r := recover(); r != nil {
						h.fail(panicError(r))
					}
				}()
				for i := start; i < end; i++ {
					kernel(i)
				}
				return nil, nil
			},
		})
	}
}

func dependErr(dependsOn *Handle) error {
	if dependsOn == nil {
		return nil
	}
	if err := dependsOn.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrDependencyFailed, err)
	}
	return nil
}
