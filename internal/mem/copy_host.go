package mem

// stridedCopy copies every element of src into dst on the host, honoring
// arbitrary per-axis strides on both sides and converting the element type
// when they differ. Both views must be host-accessible and share a shape.
// This is the slow path behind layout mismatches; matching contiguous
// layouts take the linear paths in the dispatcher instead.
func stridedCopy(dst, src View) {
	n := src.NumElements()
	if n == 0 {
		return
	}

	same := dst.dtype == src.dtype
	rank := len(src.shape)
	if rank == 0 {
		copyElem(dst, 0, src, 0, same)
		return
	}

	// Odometer walk over the index space, maintaining both linear offsets
	// incrementally instead of recomputing the dot product per element.
	idx := make([]int, rank)
	srcOff, dstOff := 0, 0
	for {
		copyElem(dst, dstOff, src, srcOff, same)

		k := rank - 1
		for ; k >= 0; k-- {
			idx[k]++
			srcOff += src.strides[k]
			dstOff += dst.strides[k]
			if idx[k] < src.shape[k] {
				break
			}
			idx[k] = 0
			srcOff -= src.strides[k] * src.shape[k]
			dstOff -= dst.strides[k] * src.shape[k]
		}
		if k < 0 {
			return
		}
	}
}

func copyElem(dst View, dstOff int, src View, srcOff int, same bool) {
	if same {
		copy(dst.elem(dstOff), src.elem(srcOff))
		return
	}
	storeFloat64(dst.dtype, dst.elem(dstOff), scalarFloat64(src.dtype, src.elem(srcOff)))
}
