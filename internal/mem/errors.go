package mem

import "errors"

// Error kinds reported by buffer construction, conversion and copying.
// All failures are synchronous: they surface at the call that triggered
// them, before any transfer side effect.
var (
	// ErrOutOfBounds reports a copy offset/length exceeding an extent.
	ErrOutOfBounds = errors.New("mem: copy range out of bounds")

	// ErrNoAcceleratorSupport reports an operation that requires device
	// access through a handle with no accelerator attached.
	ErrNoAcceleratorSupport = errors.New("mem: no accelerator support")

	// ErrUnsupportedCopy reports a placement/layout/type combination the
	// dispatcher has no strategy for.
	ErrUnsupportedCopy = errors.New("mem: unsupported copy")
)
