package webgpu

import (
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
)

// sizeClass buckets allocations so freed buffers are found quickly.
type sizeClass int

const (
	smallClass sizeClass = iota // < 4KB
	mediumClass                 // 4KB-1MB
	largeClass                  // > 1MB
)

const (
	smallThreshold  = 4 * 1024
	mediumThreshold = 1024 * 1024
	maxPoolSize     = 100 // Max buffers per class
)

// pooledBuffer wraps a GPU buffer with the metadata needed to match it to
// a later allocation request.
type pooledBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
	usage  wgpu.BufferUsage
}

// BufferPool reuses device-local buffers to reduce allocation overhead.
// Buffers are matched by size class and usage flags.
type BufferPool struct {
	device *wgpu.Device

	small  []*pooledBuffer
	medium []*pooledBuffer
	large  []*pooledBuffer

	mu sync.Mutex

	totalAllocated uint64
	totalReleased  uint64
	poolHits       uint64
	poolMisses     uint64
}

// NewBufferPool creates a new buffer pool for the given device.
func NewBufferPool(device *wgpu.Device) *BufferPool {
	return &BufferPool{
		device: device,
		small:  make([]*pooledBuffer, 0, maxPoolSize),
		medium: make([]*pooledBuffer, 0, maxPoolSize),
		large:  make([]*pooledBuffer, 0, maxPoolSize),
	}
}

// Acquire returns a pooled buffer that matches or exceeds the requested
// size and usage, or creates a new one.
func (p *BufferPool) Acquire(size uint64, usage wgpu.BufferUsage) *wgpu.Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()

	class := classify(size)
	pool := p.classPool(class)

	for i, pb := range pool {
		if pb.size >= size && pb.usage&usage == usage {
			buffer := pb.buffer
			p.removeAt(class, i)
			p.poolHits++
			return buffer
		}
	}

	p.poolMisses++
	p.totalAllocated++

	return p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: usage,
		Size:  size,
	})
}

// Release returns a buffer to the pool for reuse.
// If the pool is full, the buffer is released immediately.
func (p *BufferPool) Release(buffer *wgpu.Buffer, size uint64, usage wgpu.BufferUsage) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.totalReleased++

	class := classify(size)
	pool := p.classPool(class)

	if len(pool) >= maxPoolSize {
		buffer.Release()
		return
	}

	p.addTo(class, &pooledBuffer{buffer: buffer, size: size, usage: usage})
}

// Clear releases all pooled buffers.
// Must be called when the owning device is released.
func (p *BufferPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, pb := range p.small {
		pb.buffer.Release()
	}
	p.small = p.small[:0]

	for _, pb := range p.medium {
		pb.buffer.Release()
	}
	p.medium = p.medium[:0]

	for _, pb := range p.large {
		pb.buffer.Release()
	}
	p.large = p.large[:0]
}

// Stats returns counters describing pool behavior.
func (p *BufferPool) Stats() (allocated, released, hits, misses uint64, pooledCount int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.totalAllocated, p.totalReleased, p.poolHits, p.poolMisses,
		len(p.small) + len(p.medium) + len(p.large)
}

func classify(size uint64) sizeClass {
	if size < smallThreshold {
		return smallClass
	}
	if size < mediumThreshold {
		return mediumClass
	}
	return largeClass
}

func (p *BufferPool) classPool(class sizeClass) []*pooledBuffer {
	switch class {
	case smallClass:
		return p.small
	case mediumClass:
		return p.medium
	case largeClass:
		return p.large
	default:
		return nil
	}
}

func (p *BufferPool) addTo(class sizeClass, pb *pooledBuffer) {
	switch class {
	case smallClass:
		p.small = append(p.small, pb)
	case mediumClass:
		p.medium = append(p.medium, pb)
	case largeClass:
		p.large = append(p.large, pb)
	}
}

func (p *BufferPool) removeAt(class sizeClass, i int) {
	switch class {
	case smallClass:
		p.small = append(p.small[:i], p.small[i+1:]...)
	case mediumClass:
		p.medium = append(p.medium[:i], p.medium[i+1:]...)
	case largeClass:
		p.large = append(p.large[:i], p.large[i+1:]...)
	}
}
