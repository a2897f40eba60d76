// Package mem implements the placement-polymorphic buffer container and the
// copy dispatcher at the heart of the chimera library. A Buffer holds or
// views an array in one of four memory placements and exposes a uniform
// interface for element access, view extraction and placement conversion.
package mem

// Placement identifies which physical memory a buffer's elements reside in.
type Placement int

// The closed set of supported memory placements.
const (
	// Host is ordinary pageable host memory.
	Host Placement = iota
	// Device is accelerator-local memory, not addressable from the host.
	Device
	// Managed is memory visible to both host and accelerator.
	Managed
	// Pinned is page-locked host memory optimized for transfer.
	Pinned
)

// numPlacements is the size of the placement enumeration.
const numPlacements = 4

// String returns a human-readable placement name.
func (p Placement) String() string {
	switch p {
	case Host:
		return "host"
	case Device:
		return "device"
	case Managed:
		return "managed"
	case Pinned:
		return "pinned"
	default:
		return "unknown"
	}
}

// HostAccessible reports whether elements at this placement can be read and
// written directly from the host.
func (p Placement) HostAccessible() bool {
	switch p {
	case Host, Managed, Pinned:
		return true
	case Device:
		return false
	default:
		panic("mem: unknown placement")
	}
}

// DeviceAccessible reports whether accelerator kernels and device-side
// copies can operate on elements at this placement.
func (p Placement) DeviceAccessible() bool {
	switch p {
	case Device, Managed:
		return true
	case Host, Pinned:
		return false
	default:
		panic("mem: unknown placement")
	}
}
