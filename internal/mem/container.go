package mem

import (
	"fmt"

	"github.com/chimera-ml/chimera/internal/backend/webgpu"
	"github.com/chimera-ml/chimera/internal/resource"
)

// Container is an owning storage allocation for one placement. A container
// owns its memory and frees it on Release; buffers adopt containers at
// construction and release them when destroyed or reassigned.
type Container interface {
	// Bytes returns host-addressable storage, or nil for placements the
	// host cannot reach. Managed storage may need remapping, which can fail.
	Bytes() ([]byte, error)
	// DeviceBuffer returns the device-side handle, or nil for host-only
	// placements.
	DeviceBuffer() *webgpu.Buffer
	// Stream returns the ordering stream naturally associated with the
	// container, or nil when the resource default should be used.
	Stream() *webgpu.Stream
	// Release frees the underlying storage.
	Release()
}

// hostContainer is a plain pageable host allocation.
type hostContainer struct {
	data []byte
}

func (c *hostContainer) Bytes() ([]byte, error)          { return c.data, nil }
func (c *hostContainer) DeviceBuffer() *webgpu.Buffer    { return nil }
func (c *hostContainer) Stream() *webgpu.Stream          { return nil }
func (c *hostContainer) Release()                        { c.data = nil }

// deviceContainer is accelerator-local storage.
type deviceContainer struct {
	buf *webgpu.Buffer
}

func (c *deviceContainer) Bytes() ([]byte, error)       { return nil, nil }
func (c *deviceContainer) DeviceBuffer() *webgpu.Buffer { return c.buf }
func (c *deviceContainer) Stream() *webgpu.Stream       { return nil }
func (c *deviceContainer) Release() {
	if c.buf != nil {
		c.buf.Release()
		c.buf = nil
	}
}

// managedContainer is storage visible to both host and device, backed by a
// persistently mapped storage buffer.
type managedContainer struct {
	buf *webgpu.Buffer
}

func (c *managedContainer) Bytes() ([]byte, error)       { return c.buf.Bytes() }
func (c *managedContainer) DeviceBuffer() *webgpu.Buffer { return c.buf }
func (c *managedContainer) Stream() *webgpu.Stream       { return nil }
func (c *managedContainer) Release() {
	if c.buf != nil {
		c.buf.Release()
		c.buf = nil
	}
}

// pinnedContainer is transfer-optimized host storage. With an accelerator it
// is a persistently mapped staging buffer; without one it degrades to a
// plain host allocation, since page-locking is an optimization rather than
// a semantic requirement.
type pinnedContainer struct {
	buf  *webgpu.Buffer // nil in the host fallback
	data []byte         // fallback storage
}

func (c *pinnedContainer) Bytes() ([]byte, error) {
	if c.buf != nil {
		return c.buf.Bytes()
	}
	return c.data, nil
}
func (c *pinnedContainer) DeviceBuffer() *webgpu.Buffer { return nil }
func (c *pinnedContainer) Stream() *webgpu.Stream       { return nil }
func (c *pinnedContainer) Release() {
	if c.buf != nil {
		c.buf.Release()
		c.buf = nil
	}
	c.data = nil
}

// newContainer allocates owning storage of byteSize bytes at the requested
// placement. Placement is a closed enumeration; an unknown value is a
// programming error, not a runtime condition.
func newContainer(res *resource.Resource, p Placement, byteSize int) (Container, error) {
	switch p {
	case Host:
		return &hostContainer{data: make([]byte, byteSize)}, nil
	case Device:
		if !res.HasAccelerator() {
			return nil, fmt.Errorf("mem: allocating %s memory: %w", p, ErrNoAcceleratorSupport)
		}
		return &deviceContainer{buf: res.Device().Alloc(uint64(byteSize))}, nil
	case Managed:
		if !res.HasAccelerator() {
			return nil, fmt.Errorf("mem: allocating %s memory: %w", p, ErrNoAcceleratorSupport)
		}
		return &managedContainer{buf: res.Device().AllocManaged(uint64(byteSize))}, nil
	case Pinned:
		if res.HasAccelerator() {
			return &pinnedContainer{buf: res.Device().AllocPinned(uint64(byteSize))}, nil
		}
		return &pinnedContainer{data: make([]byte, byteSize)}, nil
	default:
		panic(fmt.Sprintf("mem: unknown placement %d", p))
	}
}
