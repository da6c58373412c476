package gpu

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuBuffer is a Buffer backed by a WebGPU storage buffer.
type wgpuBuffer struct {
	bufferInfo
	owner *wgpuAllocator
	buf   *wgpu.Buffer
}

// wgpuAllocator implements Allocator on a WebGPU device and queue.
type wgpuAllocator struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue
}

var _ Allocator = &wgpuAllocator{}

// NewWGPUAllocator creates an Allocator that places buffers in WebGPU storage memory.
// Buffers are created with Storage | CopyDst usage so a vertex shader can index them by instance.
//
// Parameters:
//   - device: the device used to create buffers
//   - queue: the queue used for uploads
//
// Returns:
//   - Allocator: the WebGPU allocator
func NewWGPUAllocator(device *wgpu.Device, queue *wgpu.Queue) Allocator {
	if device == nil || queue == nil {
		panic("gpu: NewWGPUAllocator requires a non-nil device and queue")
	}
	return &wgpuAllocator{
		mu:     &sync.Mutex{},
		device: device,
		queue:  queue,
	}
}

func (a *wgpuAllocator) Allocate(label string, count, stride int) (Buffer, error) {
	if count <= 0 || stride <= 0 {
		return nil, fmt.Errorf("%w: %q invalid size %d x %d", ErrAllocation, label, count, stride)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	buf, err := a.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             uint64(count) * uint64(stride),
		Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrAllocation, label, err)
	}

	return &wgpuBuffer{
		bufferInfo: bufferInfo{label: label, count: count, stride: stride},
		owner:      a,
		buf:        buf,
	}, nil
}

func (a *wgpuAllocator) Upload(b Buffer, data []byte) error {
	wb, ok := b.(*wgpuBuffer)
	if !ok || wb.owner != a {
		return ErrForeignBuffer
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if wb.released {
		return fmt.Errorf("%w: %q", ErrReleased, wb.label)
	}
	if uint64(len(data)) != wb.Size() {
		return fmt.Errorf("%w: %q got %d bytes, want %d", ErrSizeMismatch, wb.label, len(data), wb.Size())
	}
	a.queue.WriteBuffer(wb.buf, 0, data)
	return nil
}

func (a *wgpuAllocator) Release(b Buffer) error {
	wb, ok := b.(*wgpuBuffer)
	if !ok || wb.owner != a {
		return ErrForeignBuffer
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if wb.released {
		return fmt.Errorf("%w: %q", ErrReleased, wb.label)
	}
	wb.buf.Release()
	wb.buf = nil
	wb.released = true
	return nil
}
