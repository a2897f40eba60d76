// Copyright 2025 Chimera ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package resource provides the execution resource handle used by buffer
// constructors and the copy dispatcher.
//
// A Resource bundles an optional accelerator device with a default ordering
// stream. Handles are created explicitly and passed to every allocating or
// copying operation; a host-only handle works for all host-accessible
// placements and fails device allocations with ErrNoAcceleratorSupport.
//
// Example:
//
//	res := resource.New()
//	defer res.Release()
//	if res.HasAccelerator() {
//	    // device and managed placements are usable
//	}
package resource

import (
	"github.com/chimera-ml/chimera/internal/backend/webgpu"
	"github.com/chimera-ml/chimera/internal/resource"
)

// Resource is the handle passed to every allocating or copying operation.
type Resource = resource.Resource

// New probes for an accelerator and returns a Resource bound to it, or a
// host-only Resource when no usable device exists.
func New() *Resource {
	return resource.New()
}

// NewHostOnly returns a Resource without accelerator support.
func NewHostOnly() *Resource {
	return resource.NewHostOnly()
}

// NewWithDevice wraps an externally managed accelerator device. The caller
// retains ownership of the device.
func NewWithDevice(dev *webgpu.Device) *Resource {
	return resource.NewWithDevice(dev)
}

// Available reports whether a usable accelerator exists without creating a
// device.
func Available() bool {
	return webgpu.IsAvailable()
}
