package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Device bundles a WebGPU instance, adapter, device and queue created without a surface.
type Device struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
}

// NewHeadlessDevice requests a WebGPU device that is not tied to any window surface.
// It is sufficient for buffer allocation and uploads.
//
// Parameters:
//   - forceFallbackAdapter: true to request a software (CPU) adapter
//
// Returns:
//   - *Device: the opened device
//   - error: error if no adapter or device is available
func NewHeadlessDevice(forceFallbackAdapter bool) (*Device, error) {
	instance := wgpu.CreateInstance(nil)

	a, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Fractal Device",
	})
	if err != nil {
		a.Release()
		instance.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}

	return &Device{
		instance: instance,
		adapter:  a,
		device:   d,
		queue:    d.GetQueue(),
	}, nil
}

// Allocator returns a WebGPU Allocator bound to this device.
func (d *Device) Allocator() Allocator {
	return NewWGPUAllocator(d.device, d.queue)
}

// Close releases the queue, device, adapter and instance. Buffers must be released first.
func (d *Device) Close() {
	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}
