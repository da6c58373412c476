// Package gpu provides the structured buffer abstraction used to stream per-instance
// data to the GPU: allocation with a fixed element stride, whole-buffer uploads and release.
package gpu

import "errors"

var (
	// ErrAllocation is returned when a buffer could not be created.
	ErrAllocation = errors.New("gpu: buffer allocation failed")
	// ErrReleased is returned when a released buffer is uploaded to or released again.
	ErrReleased = errors.New("gpu: buffer already released")
	// ErrSizeMismatch is returned when uploaded data does not match the buffer size.
	ErrSizeMismatch = errors.New("gpu: upload size does not match buffer size")
	// ErrForeignBuffer is returned when a buffer is passed to an allocator that did not create it.
	ErrForeignBuffer = errors.New("gpu: buffer belongs to a different allocator")
)

// Buffer is an opaque handle to a structured GPU buffer of Count elements of Stride bytes each.
type Buffer interface {
	// Label returns the debug label given at allocation.
	Label() string

	// Count returns the number of elements the buffer holds.
	Count() int

	// Stride returns the size of one element in bytes.
	Stride() int

	// Size returns the total size in bytes (Count * Stride).
	Size() uint64

	// Released reports whether the buffer has been released.
	Released() bool
}

// Allocator creates, fills and releases Buffers.
type Allocator interface {
	// Allocate creates a buffer for count elements of stride bytes.
	//
	// Parameters:
	//   - label: a debug label for the buffer
	//   - count: the number of elements (must be > 0)
	//   - stride: the size of one element in bytes (must be > 0)
	//
	// Returns:
	//   - Buffer: the new buffer
	//   - error: ErrAllocation wrapped with detail if the buffer cannot be created
	Allocate(label string, count, stride int) (Buffer, error)

	// Upload replaces the full contents of b with data. len(data) must equal b.Size().
	//
	// Parameters:
	//   - b: the destination buffer
	//   - data: the raw bytes to write
	//
	// Returns:
	//   - error: ErrReleased, ErrSizeMismatch or ErrForeignBuffer on misuse
	Upload(b Buffer, data []byte) error

	// Release frees b. Releasing the same buffer twice returns ErrReleased.
	//
	// Parameters:
	//   - b: the buffer to release
	//
	// Returns:
	//   - error: ErrReleased or ErrForeignBuffer on misuse
	Release(b Buffer) error
}

// bufferInfo holds the fields shared by every Buffer implementation.
type bufferInfo struct {
	label    string
	count    int
	stride   int
	released bool
}

func (b *bufferInfo) Label() string  { return b.label }
func (b *bufferInfo) Count() int     { return b.count }
func (b *bufferInfo) Stride() int    { return b.stride }
func (b *bufferInfo) Size() uint64   { return uint64(b.count) * uint64(b.stride) }
func (b *bufferInfo) Released() bool { return b.released }
