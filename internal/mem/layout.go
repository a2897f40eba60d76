package mem

// Layout describes the mapping from an index tuple to a linear element
// offset.
type Layout int

// Supported layouts.
const (
	// RowMajor is C-contiguous: the last axis varies fastest.
	RowMajor Layout = iota
	// ColMajor is Fortran-contiguous: the first axis varies fastest.
	ColMajor
	// Strided carries explicit per-axis strides and need not be contiguous.
	Strided
)

// String returns a human-readable layout name.
func (l Layout) String() string {
	switch l {
	case RowMajor:
		return "row-major"
	case ColMajor:
		return "col-major"
	case Strided:
		return "strided"
	default:
		return "unknown"
	}
}

// Contiguous reports whether the layout guarantees a gapless span of
// extent-product elements.
func (l Layout) Contiguous() bool {
	return l == RowMajor || l == ColMajor
}

// stridesFor computes the canonical strides for a contiguous layout.
// Strided layouts carry their own strides; asking for canonical ones is a
// programming error.
func stridesFor(l Layout, s Shape) []int {
	switch l {
	case RowMajor:
		return s.rowMajorStrides()
	case ColMajor:
		return s.colMajorStrides()
	default:
		panic("mem: no canonical strides for layout " + l.String())
	}
}
