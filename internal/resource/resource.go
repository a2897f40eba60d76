// Package resource provides the execution resource handle shared by buffer
// constructors and the copy dispatcher. A Resource bundles an optional
// accelerator device with a default ordering stream; a host-only Resource is
// fully functional for host-accessible placements.
package resource

import (
	"github.com/chimera-ml/chimera/internal/backend/webgpu"
)

// Resource is the handle passed to every allocating or copying operation.
// It is constructed explicitly at the call site; there is no ambient
// process-wide default.
type Resource struct {
	dev        *webgpu.Device
	stream     *webgpu.Stream
	ownsDevice bool
}

// New probes for an accelerator and returns a Resource bound to it, or a
// host-only Resource when no usable device exists.
func New() *Resource {
	if !webgpu.IsAvailable() {
		return &Resource{}
	}
	dev, err := webgpu.New()
	if err != nil {
		return &Resource{}
	}
	return &Resource{dev: dev, stream: dev.NewStream(), ownsDevice: true}
}

// NewHostOnly returns a Resource without accelerator support. Operations
// that require device access fail with ErrNoAcceleratorSupport.
func NewHostOnly() *Resource {
	return &Resource{}
}

// NewWithDevice wraps an externally managed device. The caller retains
// ownership of the device; Release does not free it.
func NewWithDevice(dev *webgpu.Device) *Resource {
	if dev == nil {
		return &Resource{}
	}
	return &Resource{dev: dev, stream: dev.NewStream()}
}

// HasAccelerator reports whether accelerator support is available through
// this handle.
func (r *Resource) HasAccelerator() bool {
	return r.dev != nil
}

// Device returns the underlying accelerator device, or nil.
func (r *Resource) Device() *webgpu.Device {
	return r.dev
}

// Stream returns the default ordering stream, or nil for host-only handles.
func (r *Resource) Stream() *webgpu.Stream {
	return r.stream
}

// Synchronize blocks until all work enqueued on the default stream has
// completed. A no-op for host-only handles.
func (r *Resource) Synchronize() error {
	if r.stream == nil {
		return nil
	}
	return r.stream.Synchronize()
}

// Release frees the default stream and, if this Resource created the
// device, the device itself.
func (r *Resource) Release() {
	if r.stream != nil {
		r.stream.Release()
		r.stream = nil
	}
	if r.ownsDevice && r.dev != nil {
		r.dev.Release()
	}
	r.dev = nil
}
