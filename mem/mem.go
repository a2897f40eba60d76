// Copyright 2025 Chimera ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package mem provides placement-polymorphic buffers for heterogeneous
// memory systems.
//
// A Buffer holds array data at one of four placements — host, device,
// managed or pinned — behind a single type, so code that moves data between
// contexts does not fork on where the data lives:
//   - Buffer: owning or borrowing container at any placement
//   - View: non-owning reference with shape, layout and placement metadata
//   - Ref with Load/Store: placement-transparent single-element access
//   - Copy/CopyRange: one dispatcher for every placement, layout and
//     element-type combination with a supported strategy
//
// Example:
//
//	res := resource.New()
//	defer res.Release()
//
//	host, _ := mem.FromSlice(res, []float32{1, 2, 3, 4}, mem.Shape{2, 2}, mem.Host)
//	dev, _ := mem.Convert(res, host, mem.Device)
//	defer dev.Release()
package mem

import (
	"github.com/chimera-ml/chimera/internal/mem"
	"github.com/chimera-ml/chimera/internal/resource"
)

// DType is a constraint for supported buffer element types.
// Supported types: float32, float64, int32, int64, uint8, bool.
type DType = mem.DType

// DataType represents runtime element type information for buffers.
type DataType = mem.DataType

// Data type constants.
const (
	Float32 DataType = mem.Float32
	Float64 DataType = mem.Float64
	Int32   DataType = mem.Int32
	Int64   DataType = mem.Int64
	Uint8   DataType = mem.Uint8
	Bool    DataType = mem.Bool
)

// Placement identifies the memory system holding a buffer's data.
type Placement = mem.Placement

// Placement constants.
const (
	Host    Placement = mem.Host
	Device  Placement = mem.Device
	Managed Placement = mem.Managed
	Pinned  Placement = mem.Pinned
)

// Layout describes the mapping from an index tuple to a linear element
// offset.
type Layout = mem.Layout

// Layout constants.
const (
	RowMajor Layout = mem.RowMajor
	ColMajor Layout = mem.ColMajor
	Strided  Layout = mem.Strided
)

// Shape represents the extents of a buffer, one entry per axis.
type Shape = mem.Shape

// Buffer is a placement-polymorphic data container.
type Buffer = mem.Buffer

// View is a non-owning reference to buffer storage.
type View = mem.View

// Container is an owning storage allocation for one placement.
type Container = mem.Container

// Ref is a placement-transparent reference to a single element.
type Ref = mem.Ref

// Error kinds reported by buffer construction, conversion and copying.
var (
	ErrOutOfBounds          = mem.ErrOutOfBounds
	ErrNoAcceleratorSupport = mem.ErrNoAcceleratorSupport
	ErrUnsupportedCopy      = mem.ErrUnsupportedCopy
)

// New allocates a fresh owning buffer at the requested placement.
//
// Example:
//
//	b, err := mem.New(res, mem.Shape{2, 3}, mem.Float32, mem.RowMajor, mem.Host)
func New(res *resource.Resource, shape Shape, dtype DataType, layout Layout, p Placement) (*Buffer, error) {
	return mem.New(res, shape, dtype, layout, p)
}

// FromBytes wraps existing host memory in a non-owning buffer.
func FromBytes(data []byte, shape Shape, dtype DataType, layout Layout) (*Buffer, error) {
	return mem.FromBytes(data, shape, dtype, layout)
}

// FromView wraps an existing view in a non-owning buffer.
func FromView(v View) *Buffer {
	return mem.FromView(v)
}

// NewView wraps host-accessible bytes in a contiguous view.
func NewView(data []byte, shape Shape, dtype DataType, layout Layout) (View, error) {
	return mem.NewView(data, shape, dtype, layout)
}

// NewStridedView wraps host-accessible bytes with explicit per-axis element
// strides.
func NewStridedView(data []byte, shape Shape, strides []int, dtype DataType) (View, error) {
	return mem.NewStridedView(data, shape, strides, dtype)
}

// Convert produces a buffer with the source's contents at the target
// placement, aliasing when the placement already matches.
//
// Example:
//
//	dev, err := mem.Convert(res, host, mem.Device)
func Convert(res *resource.Resource, src *Buffer, target Placement) (*Buffer, error) {
	return mem.Convert(res, src, target)
}

// FromSlice allocates an owning row-major buffer at the given placement and
// fills it with data.
func FromSlice[T DType](res *resource.Resource, data []T, shape Shape, p Placement) (*Buffer, error) {
	return mem.FromSlice(res, data, shape, p)
}

// Zeros allocates an owning row-major buffer of zeros at the given
// placement.
func Zeros[T DType](res *resource.Resource, shape Shape, p Placement) (*Buffer, error) {
	return mem.Zeros[T](res, shape, p)
}

// ToSlice copies a buffer's contents into a fresh []T in row-major order,
// converting the element type when needed.
func ToSlice[T DType](res *resource.Resource, b *Buffer) ([]T, error) {
	return mem.ToSlice[T](res, b)
}

// Copy copies all of src into dst across any supported placement, layout
// and element type combination.
func Copy(res *resource.Resource, dst, src *Buffer) error {
	return mem.Copy(res, dst, src)
}

// CopyRange copies n elements between linear element offsets of two buffers
// sharing the same contiguous layout.
func CopyRange(res *resource.Resource, dst, src *Buffer, dstOff, srcOff, n int) error {
	return mem.CopyRange(res, dst, src, dstOff, srcOff, n)
}

// Load reads the element behind a Ref as T, staging a device transfer when
// the element is not host-accessible.
func Load[T DType](r Ref) (T, error) {
	return mem.Load[T](r)
}

// Store writes v into the element behind a Ref, converting to the buffer's
// element type.
func Store[T DType](r Ref, v T) error {
	return mem.Store(r, v)
}
