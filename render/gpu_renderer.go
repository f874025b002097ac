// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/points"
)

// GPURenderer routes particle field frames through the registered GPU
// accelerator.
//
// The renderer forwards the host's GPU device to the accelerator so both
// share one device, then renders each frame with points.RenderField: GPU
// when the accelerator accepts the frame, CPU rasterization otherwise. The
// fallback keeps Render total, so hosts can use GPURenderer unconditionally.
//
// The accelerator itself is registered by blank-importing the gpu package:
//
//	import _ "github.com/gogpu/points/gpu"
//
// Example:
//
//	renderer, err := render.NewGPURenderer(host.DeviceHandle())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	target := render.NewPixmapTarget(800, 600)
//	renderer.Render(target, field, params)
type GPURenderer struct {
	// handle is the GPU device handle from the host application.
	handle DeviceHandle
}

// NewGPURenderer creates a new GPU-accelerated renderer.
//
// The DeviceHandle must be provided by the host application (e.g.,
// gogpu.App). Handles that also implement HalDevice()/HalQueue() are passed
// to the registered accelerator, which then records its commands on the
// host device instead of opening its own.
//
// Returns an error if the handle is nil or the accelerator rejects the
// device.
func NewGPURenderer(handle DeviceHandle) (*GPURenderer, error) {
	if handle == nil {
		return nil, errors.New("render: nil device handle")
	}
	if err := points.SetAcceleratorDeviceProvider(handle); err != nil {
		return nil, fmt.Errorf("render: share device with accelerator: %w", err)
	}
	return &GPURenderer{handle: handle}, nil
}

// Render draws one frame of the field to the target.
//
// CPU-accessible targets (Pixels != nil) receive the frame through the
// accelerator with transparent CPU fallback. GPU-only targets are not
// supported; rendering into a host surface runs through the host's own
// pipeline.
func (r *GPURenderer) Render(target RenderTarget, field *points.Field, params points.FrameParams) error {
	if target == nil {
		return errors.New("render: nil target")
	}

	pixels := target.Pixels()
	if pixels == nil {
		return errors.New("render: target does not support CPU readback")
	}

	fb := points.Framebuffer{
		Data:   pixels,
		Width:  target.Width(),
		Height: target.Height(),
		Stride: target.Stride(),
	}
	return points.RenderField(fb, field, params)
}

// Flush ensures all GPU commands are submitted and complete.
//
// Frames are fence-synchronized inside Render, so there is never pending
// GPU work between calls.
func (r *GPURenderer) Flush() error {
	return nil
}

// Capabilities returns the renderer's capabilities.
//
// IsGPU and SupportsCompute report whether an accelerator is actually
// registered; without one every frame takes the CPU path.
func (r *GPURenderer) Capabilities() RendererCapabilities {
	hasAccel := points.RegisteredAccelerator() != nil
	return RendererCapabilities{
		IsGPU:                hasAccel,
		SupportsCompute:      hasAccel,
		SupportsSizeOverride: true,
		MaxTargetSize:        8192, // Typical GPU texture limit
	}
}

// DeviceHandle returns the underlying device handle.
// This allows advanced users to access the GPU device for custom rendering.
func (r *GPURenderer) DeviceHandle() DeviceHandle {
	return r.handle
}

// Ensure GPURenderer implements Renderer and CapableRenderer.
var (
	_ Renderer        = (*GPURenderer)(nil)
	_ CapableRenderer = (*GPURenderer)(nil)
)
