// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"

	"github.com/gogpu/points"
)

// SoftwareRenderer is a CPU-based renderer for particle fields.
//
// This renderer rasterizes point sprites without any GPU dependencies.
// Every particle position runs through the vertex transform and lights its
// sprite pixels with the constant white color; the output matches the GPU
// path pixel for pixel.
//
// Performance characteristics:
//   - Row-parallel across the worker pool for large targets
//   - O(n + p) where n is the pixel count and p the particle count
//   - No allocations per frame
//
// Example:
//
//	renderer := render.NewSoftwareRenderer()
//	target := render.NewPixmapTarget(800, 600)
//	field := points.NewField(10000)
//	defer field.Close()
//
//	renderer.Render(target, field, points.FrameParams{SizeOverride: true})
//	img := target.Image()
type SoftwareRenderer struct{}

// NewSoftwareRenderer creates a new CPU-based software renderer.
func NewSoftwareRenderer() *SoftwareRenderer {
	return &SoftwareRenderer{}
}

// Render draws one frame of the field to the target.
//
// When params.StepDT is positive the field is advanced first. The frame is
// cleared to opaque black and each particle rasterizes as a white sprite.
//
// Returns an error if the target is GPU-only (no Pixels() support).
func (r *SoftwareRenderer) Render(target RenderTarget, field *points.Field, params points.FrameParams) error {
	if target == nil {
		return errors.New("render: nil target")
	}
	if field == nil {
		return errors.New("render: nil field")
	}

	pixels := target.Pixels()
	if pixels == nil {
		return errors.New("render: target does not support CPU rendering")
	}

	if params.StepDT > 0 {
		field.Step(params.StepDT)
	}

	fb := points.Framebuffer{
		Data:   pixels,
		Width:  target.Width(),
		Height: target.Height(),
		Stride: target.Stride(),
	}
	return points.RasterizeField(fb, field.Particles(), params.SizeOverride)
}

// Flush ensures all rendering is complete.
// For the software renderer, this is a no-op as operations are synchronous.
func (r *SoftwareRenderer) Flush() error {
	return nil
}

// Capabilities returns the renderer's capabilities.
func (r *SoftwareRenderer) Capabilities() RendererCapabilities {
	return RendererCapabilities{
		IsGPU:                false,
		SupportsCompute:      false,
		SupportsSizeOverride: true,
		MaxTargetSize:        0, // No limit
	}
}

// Ensure SoftwareRenderer implements Renderer and CapableRenderer.
var (
	_ Renderer        = (*SoftwareRenderer)(nil)
	_ CapableRenderer = (*SoftwareRenderer)(nil)
)
