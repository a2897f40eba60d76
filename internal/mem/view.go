package mem

import (
	"fmt"
	"unsafe"

	"github.com/chimera-ml/chimera/internal/backend/webgpu"
)

// View is a non-owning reference to buffer storage plus its shape, layout
// and placement metadata. A view borrows memory owned elsewhere; its
// validity is bounded by the owner's lifetime and the library performs no
// lifetime tracking.
type View struct {
	data   []byte         // host-accessible bytes, nil when device-only
	dev    *webgpu.Buffer // device-side handle, nil when host-only
	devOff int            // byte offset into dev

	shape     Shape
	strides   []int // element strides, one per axis
	layout    Layout
	dtype     DataType
	placement Placement
}

// NewView wraps host-accessible bytes in a contiguous view. The byte slice
// must cover the full extent product; the view aliases it without copying.
func NewView(data []byte, shape Shape, dtype DataType, layout Layout) (View, error) {
	if err := shape.Validate(); err != nil {
		return View{}, err
	}
	if !layout.Contiguous() {
		return View{}, fmt.Errorf("mem: NewView requires a contiguous layout, got %s", layout)
	}
	need := shape.NumElements() * dtype.Size()
	if len(data) < need {
		return View{}, fmt.Errorf("mem: view of shape %v needs %d bytes, got %d", shape, need, len(data))
	}
	return View{
		data:      data[:need],
		shape:     shape.Clone(),
		strides:   stridesFor(layout, shape),
		layout:    layout,
		dtype:     dtype,
		placement: Host,
	}, nil
}

// NewStridedView wraps host-accessible bytes with explicit per-axis element
// strides. The caller is responsible for the strides addressing only memory
// inside data.
func NewStridedView(data []byte, shape Shape, strides []int, dtype DataType) (View, error) {
	if err := shape.Validate(); err != nil {
		return View{}, err
	}
	if len(strides) != len(shape) {
		return View{}, fmt.Errorf("mem: %d strides for rank-%d shape", len(strides), len(shape))
	}
	return View{
		data:      data,
		shape:     shape.Clone(),
		strides:   append([]int(nil), strides...),
		layout:    Strided,
		dtype:     dtype,
		placement: Host,
	}, nil
}

// Shape returns the view's extents.
func (v View) Shape() Shape { return v.shape }

// DType returns the element type.
func (v View) DType() DataType { return v.dtype }

// Layout returns the index-to-offset mapping kind.
func (v View) Layout() Layout { return v.layout }

// Strides returns the per-axis element strides.
func (v View) Strides() []int { return v.strides }

// Placement returns the memory placement of the viewed storage.
func (v View) Placement() Placement { return v.placement }

// Rank returns the number of axes.
func (v View) Rank() int { return len(v.shape) }

// NumElements returns the total number of elements.
func (v View) NumElements() int { return v.shape.NumElements() }

// ByteSize returns the total element payload in bytes.
func (v View) ByteSize() int { return v.NumElements() * v.dtype.Size() }

// HostAccessible reports whether the viewed storage can be addressed
// directly from the host.
func (v View) HostAccessible() bool { return v.data != nil }

// DeviceAccessible reports whether the viewed storage has a device-side
// handle.
func (v View) DeviceAccessible() bool { return v.dev != nil }

// Bytes returns the host-accessible bytes, or nil for device-only views.
func (v View) Bytes() []byte { return v.data }

// DeviceBuffer returns the device-side handle, or nil for host-only views.
func (v View) DeviceBuffer() *webgpu.Buffer { return v.dev }

// DeviceOffset returns the byte offset of element zero inside the device
// buffer.
func (v View) DeviceOffset() int { return v.devOff }

// Offset maps an index tuple to a linear element offset.
// Panics if the indices are out of bounds or the rank does not match.
func (v View) Offset(indices ...int) int {
	if len(indices) != len(v.shape) {
		panic(fmt.Sprintf("mem: expected %d indices, got %d", len(v.shape), len(indices)))
	}
	offset := 0
	for i, idx := range indices {
		if idx < 0 || idx >= v.shape[i] {
			panic(fmt.Sprintf("mem: index %d out of bounds for axis %d (extent %d)", idx, i, v.shape[i]))
		}
		offset += idx * v.strides[i]
	}
	return offset
}

// elem returns the byte window of the element at the given linear offset.
// Host-accessible views only.
func (v View) elem(off int) []byte {
	es := v.dtype.Size()
	return v.data[off*es : off*es+es]
}

// AsFloat32 interprets the host-accessible contiguous payload as []float32.
// Panics if the view's dtype is not Float32 or the data is not reachable
// from the host.
func (v View) AsFloat32() []float32 {
	v.checkTyped(Float32)
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds fixed by NumElements
	return unsafe.Slice((*float32)(unsafe.Pointer(&v.data[0])), v.NumElements())
}

// AsFloat64 interprets the host-accessible contiguous payload as []float64.
func (v View) AsFloat64() []float64 {
	v.checkTyped(Float64)
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds fixed by NumElements
	return unsafe.Slice((*float64)(unsafe.Pointer(&v.data[0])), v.NumElements())
}

// AsInt32 interprets the host-accessible contiguous payload as []int32.
func (v View) AsInt32() []int32 {
	v.checkTyped(Int32)
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds fixed by NumElements
	return unsafe.Slice((*int32)(unsafe.Pointer(&v.data[0])), v.NumElements())
}

// AsInt64 interprets the host-accessible contiguous payload as []int64.
func (v View) AsInt64() []int64 {
	v.checkTyped(Int64)
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds fixed by NumElements
	return unsafe.Slice((*int64)(unsafe.Pointer(&v.data[0])), v.NumElements())
}

// AsUint8 interprets the host-accessible contiguous payload as []uint8.
func (v View) AsUint8() []uint8 {
	v.checkTyped(Uint8)
	return v.data[:v.NumElements()]
}

// AsBool interprets the host-accessible contiguous payload as []bool.
func (v View) AsBool() []bool {
	v.checkTyped(Bool)
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds fixed by NumElements
	return unsafe.Slice((*bool)(unsafe.Pointer(&v.data[0])), v.NumElements())
}

func (v View) checkTyped(want DataType) {
	if v.dtype != want {
		panic(fmt.Sprintf("mem: view dtype is %s, not %s", v.dtype, want))
	}
	if v.data == nil {
		panic("mem: typed access to device-only view")
	}
	if !v.layout.Contiguous() {
		panic("mem: typed access to non-contiguous view")
	}
}
