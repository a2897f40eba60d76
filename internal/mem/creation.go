package mem

import (
	"fmt"
	"unsafe"

	"github.com/chimera-ml/chimera/internal/resource"
)

// FromSlice allocates an owning row-major buffer at the given placement and
// fills it with data. The element count must match the shape.
func FromSlice[T DType](res *resource.Resource, data []T, shape Shape, p Placement) (*Buffer, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	var dummy T
	dtype := inferDataType(dummy)
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("mem: %d elements for shape %v (want %d)", len(data), shape, shape.NumElements())
	}

	dst, err := New(res, shape, dtype, RowMajor, p)
	if err != nil {
		return nil, err
	}
	//nolint:gosec // unsafe.Slice for zero-copy staging of the caller's data
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*dtype.Size())
	src, err := FromBytes(raw, shape, dtype, RowMajor)
	if err != nil {
		dst.Release()
		return nil, err
	}
	if err := Copy(res, dst, src); err != nil {
		dst.Release()
		return nil, err
	}
	return dst, nil
}

// Zeros allocates an owning row-major buffer of zeros at the given
// placement. Unlike New, the contents are guaranteed zero for every
// placement, including pooled device-local storage.
func Zeros[T DType](res *resource.Resource, shape Shape, p Placement) (*Buffer, error) {
	var dummy T
	dtype := inferDataType(dummy)
	b, err := New(res, shape, dtype, RowMajor, p)
	if err != nil {
		return nil, err
	}
	if !p.HostAccessible() {
		zeros := make([]byte, b.ByteSize())
		src, err := FromBytes(zeros, shape, dtype, RowMajor)
		if err != nil {
			b.Release()
			return nil, err
		}
		if err := Copy(res, b, src); err != nil {
			b.Release()
			return nil, err
		}
	}
	return b, nil
}

// ToSlice copies the buffer's contents into a fresh []T in row-major order,
// converting the element type when it differs from T. Device-side contents
// are downloaded; the call blocks until the data is visible.
func ToSlice[T DType](res *resource.Resource, b *Buffer) ([]T, error) {
	var dummy T
	dtype := inferDataType(dummy)
	out := make([]T, b.NumElements())
	//nolint:gosec // unsafe.Slice for zero-copy receive into the result
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&out[0])), len(out)*dtype.Size())
	dst, err := FromBytes(raw, b.Shape(), dtype, RowMajor)
	if err != nil {
		return nil, err
	}
	if err := Copy(res, dst, b); err != nil {
		return nil, err
	}
	return out, nil
}
