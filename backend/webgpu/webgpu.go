// Copyright 2025 Chimera ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu exposes the WebGPU accelerator backend.
//
// WebGPU is a cross-platform compute API that works on Windows (D3D12),
// macOS (Metal) and Linux (Vulkan). The backend provides device-local,
// managed and staging allocations plus the transfer stream used by the
// buffer layer.
//
// Example:
//
//	dev, err := webgpu.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Release()
//
//	res := resource.NewWithDevice(dev)
package webgpu

import (
	internalwebgpu "github.com/chimera-ml/chimera/internal/backend/webgpu"
)

// Device is an initialized WebGPU device with its transfer queue and buffer
// pool.
type Device = internalwebgpu.Device

// Buffer is a device-side allocation.
type Buffer = internalwebgpu.Buffer

// Stream is the ordering handle for asynchronous device work.
type Stream = internalwebgpu.Stream

// MemoryStats summarizes the device's allocation activity.
type MemoryStats = internalwebgpu.MemoryStats

// New initializes the WebGPU instance, adapter and device.
//
// Returns an error if no compatible GPU or native runtime is present. Call
// Release when done to free device resources.
func New() (*Device, error) {
	return internalwebgpu.New()
}

// IsAvailable checks whether a usable WebGPU device can be created on this
// system. It is cheap enough to call at startup to decide between device
// and host-only operation.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}
