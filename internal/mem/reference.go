package mem

import (
	"fmt"

	"github.com/chimera-ml/chimera/internal/backend/webgpu"
)

// Ref is a placement-transparent reference to a single buffer element.
// Load and Store work regardless of where the element lives: host-accessible
// storage is touched directly, device-only storage goes through a staged
// single-element transfer on the ordering stream. Staged access is orders of
// magnitude slower than direct access and is meant for debugging and tests,
// not hot loops.
type Ref struct {
	view   View
	off    int // linear element offset
	stream *webgpu.Stream
}

// Ref returns a reference to the element at the given indices.
// Panics if the indices are out of bounds, matching View.Offset.
func (b *Buffer) Ref(indices ...int) (Ref, error) {
	v, err := b.View()
	if err != nil {
		return Ref{}, err
	}
	return Ref{view: v, off: v.Offset(indices...), stream: b.stream}, nil
}

// Placement returns the placement of the referenced storage.
func (r Ref) Placement() Placement { return r.view.placement }

// DType returns the element type of the referenced storage.
func (r Ref) DType() DataType { return r.view.dtype }

// Load reads the referenced element as T. Same-type access round-trips
// exactly; cross-type access converts through float64. Device-only elements
// are staged through the stream, and the read does not return until the
// transfer has completed.
func Load[T DType](r Ref) (T, error) {
	var zero T
	if r.view.HostAccessible() {
		return decodeAs[T](r.view.dtype, r.view.elem(r.off)), nil
	}
	if r.view.dev == nil || r.stream == nil {
		return zero, fmt.Errorf("mem: loading element from %s memory: %w", r.view.placement, ErrNoAcceleratorSupport)
	}
	es := r.view.dtype.Size()
	tmp := make([]byte, es)
	if err := r.stream.Download(tmp, r.view.dev, uint64(r.view.devOff+r.off*es)); err != nil {
		return zero, err
	}
	return decodeAs[T](r.view.dtype, tmp), nil
}

// Store writes v into the referenced element, converting to the buffer's
// element type. Device-only elements are staged through the stream; the
// write is ordered with respect to other work on the same stream but Store
// does not wait for it to land.
func Store[T DType](r Ref, v T) error {
	if r.view.HostAccessible() {
		encodeAs(r.view.dtype, r.view.elem(r.off), v)
		return nil
	}
	if r.view.dev == nil || r.stream == nil {
		return fmt.Errorf("mem: storing element to %s memory: %w", r.view.placement, ErrNoAcceleratorSupport)
	}
	es := r.view.dtype.Size()
	tmp := make([]byte, es)
	encodeAs(r.view.dtype, tmp, v)
	return r.stream.Upload(r.view.dev, uint64(r.view.devOff+r.off*es), tmp)
}
