// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "github.com/gogpu/points"

// Renderer draws particle field frames to a render target.
//
// The Renderer interface is the primary abstraction for rendering backends.
// Different implementations provide CPU or GPU rendering:
//
//   - SoftwareRenderer: CPU rasterization of the point sprites
//   - GPURenderer: GPU rendering through the registered accelerator
//
// Renderers are stateless between Render calls, allowing the same renderer
// to be used with different targets and fields.
//
// Thread Safety: Renderers are NOT thread-safe. Each renderer should be used
// from a single goroutine, or external synchronization must be used.
type Renderer interface {
	// Render draws one frame of the field to the target.
	//
	// When params.StepDT is positive the field is advanced by that many
	// seconds before drawing, so a frame loop is one Render call per frame.
	// The frame is cleared to opaque black and every particle is drawn as a
	// white point sprite.
	Render(target RenderTarget, field *points.Field, params points.FrameParams) error

	// Flush ensures all pending rendering operations are complete.
	//
	// For CPU renderers, this is a no-op as operations are synchronous.
	// For GPU renderers, this may submit command buffers and wait for
	// completion.
	Flush() error
}

// RendererCapabilities describes the features supported by a renderer.
type RendererCapabilities struct {
	// IsGPU indicates if frames are rendered on a GPU device.
	IsGPU bool

	// SupportsCompute indicates if the particle update can run as a
	// compute pass instead of on the CPU.
	SupportsCompute bool

	// SupportsSizeOverride indicates if the renderer honors the point-size
	// control value. Renderers without it draw single-pixel points.
	SupportsSizeOverride bool

	// MaxTargetSize is the maximum target dimension (0 = unlimited).
	MaxTargetSize int
}

// CapableRenderer is an optional interface for renderers that can
// report their capabilities.
type CapableRenderer interface {
	Renderer

	// Capabilities returns the renderer's capabilities.
	Capabilities() RendererCapabilities
}
