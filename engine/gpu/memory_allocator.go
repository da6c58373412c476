package gpu

import (
	"fmt"
	"sync"
)

// memoryBuffer is a Buffer whose storage lives in host memory.
type memoryBuffer struct {
	bufferInfo
	owner *MemoryAllocator
	data  []byte
}

// MemoryAllocator is a host-memory Allocator. It keeps the last uploaded bytes of every
// live buffer so headless runs and tests can inspect what would have reached the GPU.
type MemoryAllocator struct {
	mu sync.Mutex

	live      int
	uploads   int
	failAfter int // remaining successful allocations before failing; < 0 disables
}

var _ Allocator = &MemoryAllocator{}

// NewMemoryAllocator creates a MemoryAllocator.
//
// Returns:
//   - *MemoryAllocator: the newly created allocator
func NewMemoryAllocator() *MemoryAllocator {
	return &MemoryAllocator{failAfter: -1}
}

// FailAfter makes the allocator fail every allocation after n more successful ones.
// Pass a negative n to disable failure injection.
func (a *MemoryAllocator) FailAfter(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failAfter = n
}

// Live returns the number of allocated buffers that have not been released.
func (a *MemoryAllocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live
}

// Uploads returns the total number of successful uploads.
func (a *MemoryAllocator) Uploads() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.uploads
}

// Contents returns a copy of the bytes last uploaded to b.
//
// Parameters:
//   - b: a buffer created by this allocator
//
// Returns:
//   - []byte: a copy of the buffer contents
//   - error: ErrForeignBuffer if b was not created by this allocator
func (a *MemoryAllocator) Contents(b Buffer) ([]byte, error) {
	mb, ok := b.(*memoryBuffer)
	if !ok || mb.owner != a {
		return nil, ErrForeignBuffer
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]byte(nil), mb.data...), nil
}

func (a *MemoryAllocator) Allocate(label string, count, stride int) (Buffer, error) {
	if count <= 0 || stride <= 0 {
		return nil, fmt.Errorf("%w: %q invalid size %d x %d", ErrAllocation, label, count, stride)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.failAfter == 0 {
		return nil, fmt.Errorf("%w: %q out of memory", ErrAllocation, label)
	}
	if a.failAfter > 0 {
		a.failAfter--
	}

	a.live++
	return &memoryBuffer{
		bufferInfo: bufferInfo{label: label, count: count, stride: stride},
		owner:      a,
		data:       make([]byte, count*stride),
	}, nil
}

func (a *MemoryAllocator) Upload(b Buffer, data []byte) error {
	mb, ok := b.(*memoryBuffer)
	if !ok || mb.owner != a {
		return ErrForeignBuffer
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if mb.released {
		return fmt.Errorf("%w: %q", ErrReleased, mb.label)
	}
	if uint64(len(data)) != mb.Size() {
		return fmt.Errorf("%w: %q got %d bytes, want %d", ErrSizeMismatch, mb.label, len(data), mb.Size())
	}
	copy(mb.data, data)
	a.uploads++
	return nil
}

func (a *MemoryAllocator) Release(b Buffer) error {
	mb, ok := b.(*memoryBuffer)
	if !ok || mb.owner != a {
		return ErrForeignBuffer
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if mb.released {
		return fmt.Errorf("%w: %q", ErrReleased, mb.label)
	}
	mb.released = true
	mb.data = nil
	a.live--
	return nil
}
