package webgpu

import (
	"fmt"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
)

// Buffer kinds distinguish how a buffer was allocated and whether it can be
// host-mapped.
type BufferKind int

const (
	// DeviceLocal buffers live in device memory only and are pooled.
	DeviceLocal BufferKind = iota
	// ManagedKind buffers are storage buffers kept persistently mapped so
	// both host and device can reach them.
	ManagedKind
	// PinnedKind buffers are persistently mapped staging buffers optimized
	// for transfer. The device cannot run kernels on them.
	PinnedKind
)

// Buffer wraps a wgpu.Buffer together with its logical size and mapping
// state. Sizes are aligned up to 4 bytes internally because WebGPU requires
// 4-byte aligned buffer sizes and copy ranges.
type Buffer struct {
	d     *Device
	buf   *wgpu.Buffer
	kind  BufferKind
	usage wgpu.BufferUsage

	size    uint64 // logical size requested by the caller
	aligned uint64 // allocation size, multiple of 4

	mapped unsafe.Pointer // non-nil while host-mapped
}

func align4(n uint64) uint64 {
	return (n + 3) &^ 3
}

// Alloc allocates a device-local buffer through the buffer pool.
func (d *Device) Alloc(size uint64) *Buffer {
	usage := wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst
	aligned := align4(size)
	buf := d.pool.Acquire(aligned, usage)
	d.trackAllocation(aligned)
	return &Buffer{
		d:       d,
		buf:     buf,
		kind:    DeviceLocal,
		usage:   usage,
		size:    size,
		aligned: aligned,
	}
}

// AllocManaged allocates a storage buffer that is created mapped and kept
// persistently mapped, so the host can address it directly. Device-side use
// unmaps it; ensureMapped restores host access afterwards.
func (d *Device) AllocManaged(size uint64) *Buffer {
	usage := wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst |
		wgpu.BufferUsageMapRead | wgpu.BufferUsageMapWrite
	return d.allocMapped(size, usage, ManagedKind)
}

// AllocPinned allocates a persistently mapped staging buffer. It cannot back
// compute kernels but transfers to and from it avoid an extra staging hop.
func (d *Device) AllocPinned(size uint64) *Buffer {
	usage := wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst |
		wgpu.BufferUsageMapRead | wgpu.BufferUsageMapWrite
	return d.allocMapped(size, usage, PinnedKind)
}

func (d *Device) allocMapped(size uint64, usage wgpu.BufferUsage, kind BufferKind) *Buffer {
	aligned := align4(size)
	buf := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            usage,
		Size:             aligned,
		MappedAtCreation: wgpu.True,
	})
	d.trackAllocation(aligned)
	return &Buffer{
		d:       d,
		buf:     buf,
		kind:    kind,
		usage:   usage,
		size:    size,
		aligned: aligned,
		mapped:  buf.GetMappedRange(0, aligned),
	}
}

// Size returns the logical byte size of the buffer.
func (b *Buffer) Size() uint64 {
	return b.size
}

// Kind returns how the buffer was allocated.
func (b *Buffer) Kind() BufferKind {
	return b.kind
}

// HostMappable reports whether the buffer can expose host-addressable bytes.
func (b *Buffer) HostMappable() bool {
	return b.kind != DeviceLocal
}

// Bytes returns the host-addressable contents of a mappable buffer,
// remapping it if a device-side operation unmapped it. The returned slice is
// valid until the next device-side use of the buffer. Calling Bytes on a
// device-local buffer is a programming error.
func (b *Buffer) Bytes() ([]byte, error) {
	if !b.HostMappable() {
		panic("webgpu: Bytes on device-local buffer")
	}
	if err := b.ensureMapped(); err != nil {
		return nil, err
	}
	//nolint:gosec // unsafe.Slice for zero-copy access to the mapped range
	return unsafe.Slice((*byte)(b.mapped), b.aligned)[:b.size], nil
}

// ensureMapped maps the buffer for host access if it is not mapped already.
// MapAsync waits for all previously submitted queue work touching the
// buffer, so the contents observed are up to date.
func (b *Buffer) ensureMapped() error {
	if b.mapped != nil {
		return nil
	}
	if err := b.buf.MapAsync(b.d.device, wgpu.MapModeRead|wgpu.MapModeWrite, 0, b.aligned); err != nil {
		return fmt.Errorf("webgpu: failed to map buffer: %w", err)
	}
	b.mapped = b.buf.GetMappedRange(0, b.aligned)
	return nil
}

// prepareDeviceAccess unmaps the buffer so it can be referenced by command
// encoders. Host pointers obtained from Bytes become invalid.
func (b *Buffer) prepareDeviceAccess() {
	if b.mapped == nil {
		return
	}
	b.buf.Unmap()
	b.mapped = nil
}

// Release returns a device-local buffer to the pool or releases a mapped
// buffer outright.
func (b *Buffer) Release() {
	if b.buf == nil {
		return
	}
	b.d.trackRelease(b.aligned)
	if b.kind == DeviceLocal {
		b.d.pool.Release(b.buf, b.aligned, b.usage)
	} else {
		b.prepareDeviceAccess()
		b.buf.Release()
	}
	b.buf = nil
}

// createInitBuffer creates a buffer and uploads initial data through the
// creation-mapped range.
func (d *Device) createInitBuffer(data []byte, usage wgpu.BufferUsage) *wgpu.Buffer {
	size := align4(uint64(len(data)))

	buffer := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            usage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	copy(mappedSlice, data)
	buffer.Unmap()

	return buffer
}

// createUniformBuffer creates a uniform buffer with proper alignment.
// Uniform buffers require 16-byte alignment for struct fields.
func (d *Device) createUniformBuffer(data []byte) *wgpu.Buffer {
	size := uint64(len(data))
	alignedSize := (size + 15) &^ 15

	buffer := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:             alignedSize,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, alignedSize)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), alignedSize)
	copy(mappedSlice, data)
	buffer.Unmap()

	return buffer
}
