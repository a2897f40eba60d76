package webgpu

import (
	"encoding/binary"
	"fmt"

	"github.com/go-webgpu/webgpu/wgpu"
)

// Transpose2D enqueues a kernel that reads src as a row-major rows×cols
// matrix of 4-byte elements and writes its transpose (row-major cols×rows)
// into dst. Only 4-byte element types are supported; both buffers must be
// storage-capable (device-local or managed).
func (s *Stream) Transpose2D(dst, src *Buffer, rows, cols, elemSize int) error {
	if elemSize != 4 {
		return fmt.Errorf("webgpu: transpose supports 4-byte elements, got %d", elemSize)
	}
	if dst.kind == PinnedKind || src.kind == PinnedKind {
		return fmt.Errorf("webgpu: transpose requires storage-capable buffers")
	}
	n := uint64(rows) * uint64(cols) * 4
	if n > src.aligned || n > dst.aligned {
		return fmt.Errorf("webgpu: transpose of %d bytes exceeds buffer size", n)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	shader := s.d.compileShader("transpose2d_u32", transpose2DShader)
	pipeline := s.d.getOrCreatePipeline("transpose2d_u32", shader)

	// Uniform params: rows, cols (16-byte aligned).
	params := make([]byte, 16)
	//nolint:gosec // G115: rows/cols validated non-negative by the caller
	binary.LittleEndian.PutUint32(params[0:4], uint32(rows))
	//nolint:gosec // G115: rows/cols validated non-negative by the caller
	binary.LittleEndian.PutUint32(params[4:8], uint32(cols))
	bufferParams := s.d.createUniformBuffer(params)
	defer bufferParams.Release()

	src.prepareDeviceAccess()
	dst.prepareDeviceAccess()

	bindGroupLayout := pipeline.GetBindGroupLayout(0)
	bindGroup := s.d.device.CreateBindGroupSimple(bindGroupLayout, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, src.buf, 0, src.aligned),
		wgpu.BufferBindingEntry(1, dst.buf, 0, dst.aligned),
		wgpu.BufferBindingEntry(2, bufferParams, 0, 16),
	})
	defer bindGroup.Release()

	encoder := s.d.device.CreateCommandEncoder(nil)
	computePass := encoder.BeginComputePass(nil)

	computePass.SetPipeline(pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)

	//nolint:gosec // G115: workgroup counts are non-negative
	wgX := uint32((cols + transposeTileSize - 1) / transposeTileSize)
	//nolint:gosec // G115: workgroup counts are non-negative
	wgY := uint32((rows + transposeTileSize - 1) / transposeTileSize)
	computePass.DispatchWorkgroups(wgX, wgY, 1)
	computePass.End()

	cmdBuffer := encoder.Finish(nil)
	s.d.queue.Submit(cmdBuffer)
	return nil
}
