//go:build !nogpu

// Package gpu provides a Pure Go GPU-accelerated particle rendering backend.
//
// This is an internal package used by the points library for GPU rendering.
// It leverages WebGPU for hardware-accelerated point-sprite rendering via the
// gogpu/wgpu Pure Go WebGPU implementation (zero CGO), which supports Vulkan,
// Metal, and DX12 backends depending on the platform.
//
// # Architecture Overview
//
// The gpu backend runs the full simulate-then-draw frame on the device:
//
//	Particle Buffer -> Compute (integrate + bounce) -> Render (point sprites) -> Readback
//
// Key components:
//
//   - Accelerator: implements points.Accelerator; registered via the
//     top-level gpu package's blank import
//   - RenderSession: owns the device, encodes one frame (compute pass,
//     render pass, readback) and fence-synchronizes completion
//   - ParticleCompute: the integration compute pipeline (update.wgsl)
//   - SpriteRenderer: the point-sprite render pipelines (sprite.wgsl)
//   - frameTextures: offscreen color target with lazy reallocation
//
// # Frame Encoding
//
// All passes for a frame are recorded into a single command encoder so the
// particle buffer written by the compute pass is consumed by the vertex
// stage without a round trip through host memory. The color target is then
// copied into a mapped staging buffer and converted to RGBA for the caller.
//
// # Point Size
//
// WebGPU point-list primitives rasterize as a single fragment. When the host
// requests the fixed sprite size, the renderer switches to an instanced
// triangle-strip pipeline that expands each particle into a screen-aligned
// quad covering the same pixels a sized point would cover. With the override
// off, the plain point-list pipeline is used and sprites land on one pixel.
//
// # Device Sharing
//
// The accelerator prefers a device handed over by the host application
// (SetDeviceProvider). Only when none is provided does it open a standalone
// Vulkan device. A shared device is never destroyed on Close.
//
// # Thread Safety
//
// The Accelerator serializes all GPU work, including session access, with an
// internal mutex. One frame is in flight at a time.
package gpu
