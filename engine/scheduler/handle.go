package scheduler

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Handle tracks the completion of one scheduled job. A job is complete once
// every batch of its kernel has returned. Handles are single-use.
type Handle struct {
	done    chan struct{}
	pending atomic.Int64

	mu  sync.Mutex
	err error
}

func newHandle(batches int) *Handle {
	h := &Handle{done: make(chan struct{})}
	h.pending.Store(int64(batches))
	return h
}

// Done returns a channel that is closed when the job and its dependencies have finished.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// IsDone reports whether the job has finished without blocking.
func (h *Handle) IsDone() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Err returns the first failure recorded by the job, if any. Only meaningful after Done is closed.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (h *Handle) fail(err error) {
	h.mu.Lock()
	if h.err == nil {
		h.err = err
	}
	h.mu.Unlock()
}

// finishBatch marks one batch as complete and closes the handle on the last one.
func (h *Handle) finishBatch() {
	if h.pending.Add(-1) == 0 {
		close(h.done)
	}
}

func (h *Handle) complete() {
	close(h.done)
}

// cancel completes the handle without running any of its batches, propagating err.
func (h *Handle) cancel(err error) {
	h.fail(err)
	close(h.done)
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: %w", ErrKernelPanic, err)
	}
	return fmt.Errorf("%w: %v", ErrKernelPanic, r)
}
