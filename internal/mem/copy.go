package mem

import (
	"fmt"

	"github.com/chimera-ml/chimera/internal/resource"
)

// Copy dispatcher. Strategy selection keys on the placement, layout and
// element type of both sides:
//
//  1. Same contiguous layout, both sides host-accessible: linear byte copy,
//     or a parallel converting scan when the element types differ.
//  2. Same contiguous layout, both sides device-accessible, same type:
//     device-to-device copy on the stream.
//  3. Same contiguous layout, opposite contexts, same type: staged upload or
//     download on the stream.
//  4. Layout mismatch or cross-type with a device side involved: strided
//     host copy when both sides are host-accessible; a transpose kernel for
//     rank-2 4-byte same-type device pairs; otherwise staged through an
//     intermediate buffer at the destination's placement.
//
// Combinations outside these strategies fail with ErrUnsupportedCopy.

type span struct {
	dstOff, srcOff, n int
	full              bool
}

// Copy copies all of src into dst. The shapes must match; placements,
// layouts and element types may differ.
func Copy(res *resource.Resource, dst, src *Buffer) error {
	if !dst.shape.Equal(src.shape) {
		return fmt.Errorf("mem: copy shape mismatch: %v vs %v", dst.shape, src.shape)
	}
	dv, err := dst.View()
	if err != nil {
		return err
	}
	sv, err := src.View()
	if err != nil {
		return err
	}
	return dispatch(res, dv, sv, span{n: src.NumElements(), full: true})
}

// CopyRange copies n elements from src starting at linear element srcOff
// into dst starting at dstOff. Both buffers must share the same contiguous
// layout; ranged copies across a layout change are not supported. Bounds are
// checked up front: on ErrOutOfBounds neither buffer has been touched.
func CopyRange(res *resource.Resource, dst, src *Buffer, dstOff, srcOff, n int) error {
	if n < 0 || dstOff < 0 || srcOff < 0 {
		return fmt.Errorf("mem: negative copy range [%d +%d -> %d]: %w", srcOff, n, dstOff, ErrOutOfBounds)
	}
	if srcOff+n > src.NumElements() {
		return fmt.Errorf("mem: source range [%d, %d) exceeds %d elements: %w",
			srcOff, srcOff+n, src.NumElements(), ErrOutOfBounds)
	}
	if dstOff+n > dst.NumElements() {
		return fmt.Errorf("mem: destination range [%d, %d) exceeds %d elements: %w",
			dstOff, dstOff+n, dst.NumElements(), ErrOutOfBounds)
	}
	dv, err := dst.View()
	if err != nil {
		return err
	}
	sv, err := src.View()
	if err != nil {
		return err
	}
	return dispatch(res, dv, sv, span{dstOff: dstOff, srcOff: srcOff, n: n})
}

func dispatch(res *resource.Resource, dv, sv View, sp span) error {
	if sp.n == 0 {
		return nil
	}

	sameLayout := sv.layout == dv.layout && sv.layout.Contiguous()
	if !sp.full && !sameLayout {
		return fmt.Errorf("mem: ranged copy across layouts %s -> %s: %w",
			sv.layout, dv.layout, ErrUnsupportedCopy)
	}

	srcHost, dstHost := sv.HostAccessible(), dv.HostAccessible()
	srcDev, dstDev := sv.DeviceAccessible(), dv.DeviceAccessible()
	if (!srcHost || !dstHost) && !res.HasAccelerator() {
		return fmt.Errorf("mem: copy %s -> %s: %w", sv.placement, dv.placement, ErrNoAcceleratorSupport)
	}

	sameType := sv.dtype == dv.dtype
	es := sv.dtype.Size()

	if sameLayout {
		switch {
		case srcHost && dstHost:
			if sameType {
				copy(dv.data[sp.dstOff*es:(sp.dstOff+sp.n)*es], sv.data[sp.srcOff*es:(sp.srcOff+sp.n)*es])
			} else {
				castCopy(dv, sp.dstOff, sv, sp.srcOff, sp.n)
			}
			return nil
		case srcDev && dstDev && sameType:
			return res.Stream().CopyBuffer(
				dv.dev, uint64(dv.devOff+sp.dstOff*es),
				sv.dev, uint64(sv.devOff+sp.srcOff*es),
				uint64(sp.n*es))
		case srcHost && dstDev && sameType:
			return res.Stream().Upload(dv.dev, uint64(dv.devOff+sp.dstOff*es),
				sv.data[sp.srcOff*es:(sp.srcOff+sp.n)*es])
		case srcDev && dstHost && sameType:
			return res.Stream().Download(dv.data[sp.dstOff*es:(sp.dstOff+sp.n)*es],
				sv.dev, uint64(sv.devOff+sp.srcOff*es))
		}
	}

	if !sp.full {
		// Ranged cross-context copies with an element type change would need
		// per-range staging; nothing requires them yet.
		return fmt.Errorf("mem: ranged copy %s %s -> %s %s: %w",
			sv.placement, sv.dtype, dv.placement, dv.dtype, ErrUnsupportedCopy)
	}

	// Layout mismatch or a type change with a device side involved.
	if srcHost && dstHost {
		stridedCopy(dv, sv)
		return nil
	}

	if srcDev && dstDev {
		if sameType && es == 4 && len(sv.shape) == 2 &&
			sv.layout.Contiguous() && dv.layout.Contiguous() && sv.layout != dv.layout &&
			sv.devOff == 0 && dv.devOff == 0 {
			rows, cols := sv.shape[0], sv.shape[1]
			if sv.layout == ColMajor {
				rows, cols = cols, rows
			}
			return res.Stream().Transpose2D(dv.dev, sv.dev, rows, cols, es)
		}
		// No device-side conversion kernels beyond the 4-byte transpose.
		return fmt.Errorf("mem: device copy %s %s -> %s %s: %w",
			sv.layout, sv.dtype, dv.layout, dv.dtype, ErrUnsupportedCopy)
	}

	// Opposite contexts: stage through an intermediate carrying the source's
	// layout and type at the destination's placement, then finish the layout
	// or type change within one context.
	if srcHost && !sv.layout.Contiguous() {
		packed, err := New(res, sv.shape, sv.dtype, RowMajor, Host)
		if err != nil {
			return err
		}
		defer packed.Release()
		pv, err := packed.View()
		if err != nil {
			return err
		}
		stridedCopy(pv, sv)
		return dispatch(res, dv, pv, sp)
	}

	tmp, err := New(res, sv.shape, sv.dtype, sv.layout, dv.placement)
	if err != nil {
		return err
	}
	defer tmp.Release()
	tv, err := tmp.View()
	if err != nil {
		return err
	}
	if err := dispatch(res, tv, sv, sp); err != nil {
		return err
	}
	return dispatch(res, dv, tv, sp)
}
