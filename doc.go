// Package points renders 2D point-sprite particle fields.
//
// # Overview
//
// points is a Pure Go particle field renderer designed to integrate with the
// GoGPU ecosystem. A Field holds particles (position + velocity), a vertex
// transform places each particle into clip space as a fixed-size white point
// sprite, and a renderer rasterizes the sprites over a black frame. Both a
// software rasterizer and a GPU pipeline (via gogpu/wgpu) produce identical
// output.
//
// # Quick Start
//
//	import "github.com/gogpu/points"
//
//	// Create a particle field
//	f := points.NewField(10000, points.WithSeed(42))
//
//	// Advance the simulation
//	f.Step(1.0 / 60.0)
//
//	// Render to an RGBA frame
//	fb := points.NewFramebuffer(512, 512)
//	if err := points.RenderField(fb, f, points.FrameParams{}); err != nil {
//	    log.Fatal(err)
//	}
//
// # Vertex transform
//
// The stage at the center of the pipeline is TransformVertex: it maps a
// 2-component position to the clip-space position (x, y, 0, 1), the constant
// point size 2.0, and the constant white color interpolant. It is a pure
// function with a single execution path, so CPU and GPU renditions agree
// bit for bit on the positions they emit.
//
// # Renderers
//
// The software rasterizer is always available. GPU rendering is opt-in via
// blank import:
//
//	import _ "github.com/gogpu/points/gpu"
//
// When the GPU path is unavailable or fails, rendering falls back to the
// software rasterizer transparently.
//
// # Coordinate System
//
// Particle positions live in clip space: [-1, 1] on both axes, Y up.
// Framebuffer pixels use standard raster coordinates: origin top-left,
// Y down.
package points

// Version information
const (
	// Version is the current version of the library
	Version = "0.2.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 2

	// VersionPatch is the patch version
	VersionPatch = 0
)
