// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// This interface is the integration point between points and GPU frameworks
// like gogpu. The host application (e.g., gogpu.App) implements DeviceHandle
// and passes it to NewGPURenderer, allowing points to render on the shared
// GPU device.
//
// Key principle: points RECEIVES the device from the host, it does NOT
// create one when a handle is given. This enables:
//   - Shared GPU resources between points and the host application
//   - Zero device creation overhead in points
//   - Consistent resource management across the stack
//
// Example implementation in a host:
//
//	type contextDeviceHandle struct {
//	    ctx *gogpu.Context
//	}
//
//	func (h *contextDeviceHandle) Device() gpucontext.Device {
//	    return h.ctx.device
//	}
//
//	func (h *contextDeviceHandle) Queue() gpucontext.Queue {
//	    return h.ctx.queue
//	}
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, providing a
// points-specific name for the interface while maintaining full
// compatibility with the gpucontext ecosystem. Providers that additionally
// expose HalDevice()/HalQueue() let the accelerator record commands on the
// host device directly.
type DeviceHandle = gpucontext.DeviceProvider

// TextureView represents a view into a texture.
// Views are used to bind render targets to the GPU pipeline.
type TextureView interface {
	// Destroy releases resources associated with this view.
	Destroy()
}

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// Used for CPU-only rendering where no GPU is available.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}
