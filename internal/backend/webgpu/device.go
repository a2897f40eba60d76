// Package webgpu provides the accelerator memory collaborator for the
// chimera buffer layer. It wraps a WebGPU device and exposes buffer
// allocation, host/device transfers, and the transpose kernel used by the
// copy dispatcher. Uses go-webgpu (github.com/go-webgpu/webgpu) for
// zero-CGO WebGPU bindings.
package webgpu

import (
	"fmt"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
)

// Device wraps a WebGPU adapter/device/queue and owns the shader,
// pipeline and buffer caches shared by all streams created from it.
type Device struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// Shader and pipeline cache
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	mu        sync.RWMutex

	// Device info
	adapterInfo *wgpu.AdapterInfoGo

	// Buffer pool for device-local allocations
	pool *BufferPool

	// Memory tracking
	memoryStats struct {
		totalAllocatedBytes uint64
		peakMemoryBytes     uint64
		activeBuffers       int64
		mu                  sync.RWMutex
	}
}

// New creates a new WebGPU device wrapper.
// Returns an error if WebGPU is not available or initialization fails.
func New() (dev *Device, err error) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			dev = nil
			err = fmt.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	instance, instErr := wgpu.CreateInstance(nil)
	if instErr != nil {
		return nil, fmt.Errorf("webgpu: failed to create instance: %w", instErr)
	}

	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request adapter: %w", adapterErr)
	}

	adapterInfo, _ := adapter.GetInfo()

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request device: %w", deviceErr)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to get queue")
	}

	d := &Device{
		instance:    instance,
		adapter:     adapter,
		device:      device,
		queue:       queue,
		shaders:     make(map[string]*wgpu.ShaderModule),
		pipelines:   make(map[string]*wgpu.ComputePipeline),
		adapterInfo: adapterInfo,
	}
	d.pool = NewBufferPool(device)
	return d, nil
}

// IsAvailable checks if WebGPU is available on this system.
func IsAvailable() (available bool) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance, instErr := wgpu.CreateInstance(nil)
	if instErr != nil {
		return false
	}
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()

	return true
}

// Name returns a human-readable adapter description.
func (d *Device) Name() string {
	if d.adapterInfo != nil {
		return fmt.Sprintf("WebGPU (%s %s)", d.adapterInfo.Device, d.adapterInfo.Vendor)
	}
	return "WebGPU"
}

// NewStream creates an independent ordering stream on this device.
// Work submitted on one stream has no defined order relative to other
// streams; within a stream, submission order is execution order.
func (d *Device) NewStream() *Stream {
	return &Stream{d: d}
}

// compileShader compiles WGSL shader code into a ShaderModule.
// Results are cached in the Device's shader map.
func (d *Device) compileShader(name, code string) *wgpu.ShaderModule {
	d.mu.RLock()
	if shader, exists := d.shaders[name]; exists {
		d.mu.RUnlock()
		return shader
	}
	d.mu.RUnlock()

	shader := d.device.CreateShaderModuleWGSL(code)

	d.mu.Lock()
	d.shaders[name] = shader
	d.mu.Unlock()

	return shader
}

// getOrCreatePipeline returns a cached ComputePipeline or creates a new one.
func (d *Device) getOrCreatePipeline(name string, shader *wgpu.ShaderModule) *wgpu.ComputePipeline {
	d.mu.RLock()
	if pipeline, exists := d.pipelines[name]; exists {
		d.mu.RUnlock()
		return pipeline
	}
	d.mu.RUnlock()

	pipeline := d.device.CreateComputePipelineSimple(nil, shader, "main")

	d.mu.Lock()
	d.pipelines[name] = pipeline
	d.mu.Unlock()

	return pipeline
}

// Release releases all WebGPU resources held by the device wrapper.
// Buffers allocated from this device must be released first.
func (d *Device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pool != nil {
		d.pool.Clear()
		d.pool = nil
	}

	for _, p := range d.pipelines {
		p.Release()
	}
	d.pipelines = nil

	for _, s := range d.shaders {
		s.Release()
	}
	d.shaders = nil

	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}

// MemoryStats reports device memory usage.
type MemoryStats struct {
	// Total bytes allocated since device creation
	TotalAllocatedBytes uint64
	// Peak memory usage in bytes
	PeakMemoryBytes uint64
	// Number of currently active buffers
	ActiveBuffers int64
	// Buffer pool statistics
	PoolAllocated uint64
	PoolReleased  uint64
	PoolHits      uint64
	PoolMisses    uint64
	PooledBuffers int
}

// MemoryStats returns current device memory usage statistics.
func (d *Device) MemoryStats() MemoryStats {
	d.memoryStats.mu.RLock()
	totalAllocated := d.memoryStats.totalAllocatedBytes
	peakMemory := d.memoryStats.peakMemoryBytes
	activeBuffers := d.memoryStats.activeBuffers
	d.memoryStats.mu.RUnlock()

	allocated, released, hits, misses, pooledCount := d.pool.Stats()

	return MemoryStats{
		TotalAllocatedBytes: totalAllocated,
		PeakMemoryBytes:     peakMemory,
		ActiveBuffers:       activeBuffers,
		PoolAllocated:       allocated,
		PoolReleased:        released,
		PoolHits:            hits,
		PoolMisses:          misses,
		PooledBuffers:       pooledCount,
	}
}

// trackAllocation records a buffer allocation in memory statistics.
func (d *Device) trackAllocation(size uint64) {
	d.memoryStats.mu.Lock()
	defer d.memoryStats.mu.Unlock()

	d.memoryStats.totalAllocatedBytes += size
	d.memoryStats.activeBuffers++

	if d.memoryStats.totalAllocatedBytes > d.memoryStats.peakMemoryBytes {
		d.memoryStats.peakMemoryBytes = d.memoryStats.totalAllocatedBytes
	}
}

// trackRelease records a buffer release in memory statistics.
func (d *Device) trackRelease(size uint64) {
	d.memoryStats.mu.Lock()
	defer d.memoryStats.mu.Unlock()

	if d.memoryStats.totalAllocatedBytes >= size {
		d.memoryStats.totalAllocatedBytes -= size
	}
	d.memoryStats.activeBuffers--
}
