package webgpu

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
)

// Stream is the ordering handle for asynchronous device work. All transfers
// and kernels enqueued through one stream execute in submission order; the
// caller observes completion only after Synchronize (or a blocking read).
type Stream struct {
	d  *Device
	mu sync.Mutex

	// 4-byte scratch buffer used as a completion fence.
	fence *wgpu.Buffer
}

// Device returns the device this stream submits to.
func (s *Stream) Device() *Device {
	return s.d
}

// Upload copies host bytes into a device buffer at the given byte offset.
// The copy is enqueued; it completes no later than the next Synchronize.
func (s *Stream) Upload(dst *Buffer, dstOff uint64, src []byte) error {
	if len(src) == 0 {
		return nil
	}
	if dstOff+uint64(len(src)) > dst.aligned {
		return fmt.Errorf("webgpu: upload of %d bytes at offset %d exceeds buffer size %d",
			len(src), dstOff, dst.size)
	}

	// Persistently mapped buffers take the direct store path.
	if dst.HostMappable() {
		bytes, err := dst.Bytes()
		if err != nil {
			return err
		}
		copy(bytes[dstOff:], src)
		return nil
	}

	if dstOff%4 == 0 && len(src)%4 == 0 {
		return s.uploadAligned(dst, dstOff, src)
	}

	// Unaligned writes go through a read-modify-write of the enclosing
	// 4-byte aligned window. WebGPU copy ranges must be 4-byte aligned.
	start := dstOff &^ 3
	end := align4(dstOff + uint64(len(src)))
	if end > dst.aligned {
		end = dst.aligned
	}
	window := make([]byte, end-start)
	if err := s.Download(window, dst, start); err != nil {
		return err
	}
	copy(window[dstOff-start:], src)
	return s.uploadAligned(dst, start, window)
}

func (s *Stream) uploadAligned(dst *Buffer, dstOff uint64, src []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dst.prepareDeviceAccess()

	staging := s.d.createInitBuffer(src, wgpu.BufferUsageCopySrc)
	defer staging.Release()

	encoder := s.d.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(staging, 0, dst.buf, dstOff, align4(uint64(len(src))))
	cmdBuffer := encoder.Finish(nil)
	s.d.queue.Submit(cmdBuffer)
	return nil
}

// Download copies bytes out of a device buffer at the given byte offset into
// dst. It blocks until the data is visible on the host, which also waits for
// all previously submitted work on this stream.
func (s *Stream) Download(dst []byte, src *Buffer, srcOff uint64) error {
	if len(dst) == 0 {
		return nil
	}
	if srcOff+uint64(len(dst)) > src.aligned {
		return fmt.Errorf("webgpu: download of %d bytes at offset %d exceeds buffer size %d",
			len(dst), srcOff, src.size)
	}

	if src.HostMappable() {
		bytes, err := src.Bytes()
		if err != nil {
			return err
		}
		copy(dst, bytes[srcOff:])
		return nil
	}

	start := srcOff &^ 3
	end := align4(srcOff + uint64(len(dst)))
	if end > src.aligned {
		end = src.aligned
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	src.prepareDeviceAccess()
	window, err := s.readBuffer(src.buf, start, end-start)
	if err != nil {
		return err
	}
	copy(dst, window[srcOff-start:])
	return nil
}

// CopyBuffer enqueues a device-to-device copy of n bytes. Unaligned ranges
// are staged through the host because WebGPU requires 4-byte aligned copies.
func (s *Stream) CopyBuffer(dst *Buffer, dstOff uint64, src *Buffer, srcOff, n uint64) error {
	if n == 0 {
		return nil
	}
	if srcOff+n > src.aligned || dstOff+n > dst.aligned {
		return fmt.Errorf("webgpu: buffer copy of %d bytes out of range", n)
	}

	if dstOff%4 != 0 || srcOff%4 != 0 || n%4 != 0 {
		tmp := make([]byte, n)
		if err := s.Download(tmp, src, srcOff); err != nil {
			return err
		}
		return s.Upload(dst, dstOff, tmp)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	src.prepareDeviceAccess()
	dst.prepareDeviceAccess()

	encoder := s.d.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(src.buf, srcOff, dst.buf, dstOff, n)
	cmdBuffer := encoder.Finish(nil)
	s.d.queue.Submit(cmdBuffer)
	return nil
}

// Synchronize blocks until all work previously submitted on this stream has
// completed. Implemented as a fence readback: mapping a staging buffer
// copied after the pending work forces the queue to drain first.
func (s *Stream) Synchronize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fence == nil {
		s.fence = s.d.device.CreateBuffer(&wgpu.BufferDescriptor{
			Usage: wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
			Size:  4,
		})
	}
	_, err := s.readBuffer(s.fence, 0, 4)
	return err
}

// Release frees stream-owned resources.
func (s *Stream) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fence != nil {
		s.fence.Release()
		s.fence = nil
	}
}

// readBuffer reads size bytes at off from a GPU buffer through a staging
// buffer. off and size must be 4-byte aligned.
func (s *Stream) readBuffer(srcBuffer *wgpu.Buffer, off, size uint64) ([]byte, error) {
	stagingBuffer := s.d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer stagingBuffer.Release()

	encoder := s.d.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(srcBuffer, off, stagingBuffer, 0, size)
	cmdBuffer := encoder.Finish(nil)
	s.d.queue.Submit(cmdBuffer)

	err := stagingBuffer.MapAsync(s.d.device, wgpu.MapModeRead, 0, size)
	if err != nil {
		return nil, fmt.Errorf("webgpu: failed to map staging buffer: %w", err)
	}

	mappedPtr := stagingBuffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	result := make([]byte, size)
	copy(result, mappedSlice)

	stagingBuffer.Unmap()

	return result, nil
}
