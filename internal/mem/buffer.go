package mem

import (
	"fmt"

	"github.com/chimera-ml/chimera/internal/backend/webgpu"
	"github.com/chimera-ml/chimera/internal/resource"
)

// Buffer is the placement-polymorphic container. It holds exactly one of
// eight representations — {view, owning container} crossed with the four
// placements — selected at construction. The element type and rank never
// change after construction; placement and ownership may change only by
// constructing a new buffer (see Convert).
//
// A Buffer is not safe for concurrent mutation.
type Buffer struct {
	placement Placement
	owning    bool
	dtype     DataType
	layout    Layout
	shape     Shape
	strides   []int

	borrowed View      // active representation when !owning
	cont     Container // active representation when owning

	stream *webgpu.Stream // ordering stream for device-side element access
}

// New allocates a fresh owning buffer of the given shape, element type and
// contiguous layout at the requested placement. Host-accessible storage is
// zero-initialized; device-local storage may be recycled from the buffer
// pool and carry stale contents.
func New(res *resource.Resource, shape Shape, dtype DataType, layout Layout, p Placement) (*Buffer, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if !layout.Contiguous() {
		return nil, fmt.Errorf("mem: allocation requires a contiguous layout, got %s", layout)
	}

	byteSize := shape.NumElements() * dtype.Size()
	cont, err := newContainer(res, p, byteSize)
	if err != nil {
		return nil, err
	}

	b := &Buffer{
		placement: p,
		owning:    true,
		dtype:     dtype,
		layout:    layout,
		shape:     shape.Clone(),
		strides:   stridesFor(layout, shape),
		cont:      cont,
	}
	if s := cont.Stream(); s != nil {
		b.stream = s
	} else {
		b.stream = res.Stream()
	}
	return b, nil
}

// FromBytes wraps existing host memory in a non-owning buffer. The caller
// keeps ownership of data and must keep it alive for the buffer's lifetime.
func FromBytes(data []byte, shape Shape, dtype DataType, layout Layout) (*Buffer, error) {
	v, err := NewView(data, shape, dtype, layout)
	if err != nil {
		return nil, err
	}
	return FromView(v), nil
}

// FromView wraps an existing view in a non-owning buffer.
func FromView(v View) *Buffer {
	return &Buffer{
		placement: v.placement,
		owning:    false,
		dtype:     v.dtype,
		layout:    v.layout,
		shape:     v.shape,
		strides:   v.strides,
		borrowed:  v,
	}
}

// FromDeviceBuffer wraps an existing device-side allocation in a non-owning
// buffer at a device-accessible placement.
func FromDeviceBuffer(res *resource.Resource, buf *webgpu.Buffer, shape Shape, dtype DataType, layout Layout, p Placement) (*Buffer, error) {
	if !p.DeviceAccessible() {
		return nil, fmt.Errorf("mem: placement %s cannot view a device buffer", p)
	}
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if !layout.Contiguous() {
		return nil, fmt.Errorf("mem: device view requires a contiguous layout, got %s", layout)
	}
	v := View{
		dev:       buf,
		shape:     shape.Clone(),
		strides:   stridesFor(layout, shape),
		layout:    layout,
		dtype:     dtype,
		placement: p,
	}
	if p.HostAccessible() && buf.HostMappable() {
		data, err := buf.Bytes()
		if err != nil {
			return nil, err
		}
		v.data = data[:shape.NumElements()*dtype.Size()]
	}
	b := FromView(v)
	b.stream = res.Stream()
	return b, nil
}

// FromContainer adopts ownership of an existing per-placement container.
func FromContainer(res *resource.Resource, cont Container, shape Shape, dtype DataType, layout Layout, p Placement) (*Buffer, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if !layout.Contiguous() {
		return nil, fmt.Errorf("mem: container adoption requires a contiguous layout, got %s", layout)
	}
	b := &Buffer{
		placement: p,
		owning:    true,
		dtype:     dtype,
		layout:    layout,
		shape:     shape.Clone(),
		strides:   stridesFor(layout, shape),
		cont:      cont,
	}
	if s := cont.Stream(); s != nil {
		b.stream = s
	} else {
		b.stream = res.Stream()
	}
	return b, nil
}

// Convert produces a buffer with the source's contents at the target
// placement. When the target equals the source's placement the result
// aliases the source's representation without copying; otherwise a fresh
// owning buffer is allocated and populated through the copy dispatcher.
func Convert(res *resource.Resource, src *Buffer, target Placement) (*Buffer, error) {
	if target == src.placement {
		v, err := src.View()
		if err != nil {
			return nil, err
		}
		alias := FromView(v)
		alias.stream = src.stream
		return alias, nil
	}

	layout := src.layout
	if !layout.Contiguous() {
		layout = RowMajor
	}
	dst, err := New(res, src.shape, src.dtype, layout, target)
	if err != nil {
		return nil, err
	}
	if err := Copy(res, dst, src); err != nil {
		dst.Release()
		return nil, err
	}
	return dst, nil
}

// Placement returns the active memory placement.
func (b *Buffer) Placement() Placement { return b.placement }

// IsOwning reports whether the active representation owns its storage.
func (b *Buffer) IsOwning() bool { return b.owning }

// Shape returns the buffer's extents.
func (b *Buffer) Shape() Shape { return b.shape }

// DType returns the element type.
func (b *Buffer) DType() DataType { return b.dtype }

// Layout returns the index-to-offset mapping kind.
func (b *Buffer) Layout() Layout { return b.layout }

// Strides returns the per-axis element strides.
func (b *Buffer) Strides() []int { return b.strides }

// Rank returns the number of axes.
func (b *Buffer) Rank() int { return len(b.shape) }

// NumElements returns the total number of elements.
func (b *Buffer) NumElements() int { return b.shape.NumElements() }

// ByteSize returns the total element payload in bytes.
func (b *Buffer) ByteSize() int { return b.NumElements() * b.dtype.Size() }

// Bytes returns the host-addressable contents, or nil for device-only
// buffers. For managed storage this may remap the underlying buffer, which
// can fail; host access may be invalidated by subsequent device-side work.
func (b *Buffer) Bytes() ([]byte, error) {
	if !b.placement.HostAccessible() {
		return nil, nil
	}
	if b.owning {
		data, err := b.cont.Bytes()
		if err != nil {
			return nil, err
		}
		return data[:b.ByteSize()], nil
	}
	return b.borrowed.data, nil
}

// DeviceBuffer returns the device-side handle of the active representation,
// or nil for host-only buffers.
func (b *Buffer) DeviceBuffer() *webgpu.Buffer {
	if b.owning {
		return b.cont.DeviceBuffer()
	}
	return b.borrowed.dev
}

// View returns a non-owning view over the active representation with the
// same placement. For owning buffers the view's validity is bounded by the
// buffer's lifetime.
func (b *Buffer) View() (View, error) {
	if !b.owning {
		return b.borrowed, nil
	}
	v := View{
		dev:       b.cont.DeviceBuffer(),
		shape:     b.shape,
		strides:   b.strides,
		layout:    b.layout,
		dtype:     b.dtype,
		placement: b.placement,
	}
	if b.placement.HostAccessible() {
		data, err := b.Bytes()
		if err != nil {
			return View{}, err
		}
		v.data = data
	}
	return v, nil
}

// Release frees owning storage. Views release nothing. The buffer must not
// be used afterwards.
func (b *Buffer) Release() {
	if b.owning && b.cont != nil {
		b.cont.Release()
		b.cont = nil
	}
	b.borrowed = View{}
}

// String returns a human-readable description of the buffer.
func (b *Buffer) String() string {
	kind := "view"
	if b.owning {
		kind = "owning"
	}
	return fmt.Sprintf("Buffer[%s]%v %s on %s (%s)", b.dtype, b.shape, b.layout, b.placement, kind)
}
