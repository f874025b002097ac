// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render provides render targets and renderers for particle fields.
//
// This package defines the integration layer between points and host
// applications: where a frame goes (RenderTarget) and what draws it
// (Renderer). Host applications with their own GPU stack hand points a
// device through DeviceHandle; everything else works on plain CPU pixels.
//
// # Key Principle
//
// points RECEIVES a GPU device from the host application, it does NOT force
// one. The SoftwareRenderer needs nothing beyond a CPU-accessible target;
// the GPURenderer forwards the host device to the registered accelerator
// and falls back to the CPU path when no GPU is available.
//
// # Core Interfaces
//
//   - DeviceHandle: Provides GPU device access from the host application
//   - RenderTarget: Defines where rendering output goes (Pixmap, Surface)
//   - Renderer: Draws one frame of a particle field to a target
//
// # Renderer Implementations
//
//   - SoftwareRenderer: CPU rasterization of the point sprites
//   - GPURenderer: routes frames through the registered GPU accelerator
//
// # RenderTarget Implementations
//
//   - PixmapTarget: CPU-backed *image.RGBA target
//   - SurfaceTarget: window surface texture from the host
//
// # Usage
//
// Software rendering:
//
//	field := points.NewField(10000)
//	defer field.Close()
//
//	target := render.NewPixmapTarget(800, 600)
//	renderer := render.NewSoftwareRenderer()
//
//	params := points.FrameParams{StepDT: 1.0 / 60, SizeOverride: true}
//	if err := renderer.Render(target, field, params); err != nil {
//	    log.Fatal(err)
//	}
//	png.Encode(out, target.Image())
//
// GPU rendering with a host-provided device:
//
//	import _ "github.com/gogpu/points/gpu" // registers the accelerator
//
//	renderer, err := render.NewGPURenderer(host.DeviceHandle())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	renderer.Render(target, field, params)
//
// # Thread Safety
//
// Renderers are NOT thread-safe. Each renderer should be used from a single
// goroutine, or external synchronization must be used.
package render
