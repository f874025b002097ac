// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render_test

import (
	"fmt"

	"github.com/gogpu/points"
	"github.com/gogpu/points/render"
)

// ExampleNewSoftwareRenderer demonstrates CPU-based rendering of a particle
// field.
func ExampleNewSoftwareRenderer() {
	// Create software renderer (no GPU required)
	renderer := render.NewSoftwareRenderer()

	// Create a CPU-backed render target
	target := render.NewPixmapTarget(200, 200)

	// Create a particle field
	field := points.NewField(1000)
	defer field.Close()

	// Render one frame: advance by one 60 Hz step, draw 2x2 sprites
	params := points.FrameParams{StepDT: 1.0 / 60, SizeOverride: true}
	if err := renderer.Render(target, field, params); err != nil {
		fmt.Println("render failed:", err)
		return
	}

	// Access the rendered image
	img := target.Image()
	fmt.Printf("rendered %dx%d image\n", img.Bounds().Dx(), img.Bounds().Dy())
	// Output: rendered 200x200 image
}

// ExampleNewGPURenderer demonstrates creating a GPU renderer with a
// DeviceHandle.
//
// In real usage, the DeviceHandle would come from the host application
// (e.g., gogpu.App). For testing without a GPU, use NullDeviceHandle; the
// frame then takes the CPU path.
func ExampleNewGPURenderer() {
	renderer, err := render.NewGPURenderer(render.NullDeviceHandle{})
	if err != nil {
		fmt.Println("failed to create renderer:", err)
		return
	}

	target := render.NewPixmapTarget(100, 100)

	field := points.NewField(100)
	defer field.Close()

	if err := renderer.Render(target, field, points.FrameParams{}); err != nil {
		fmt.Println("render failed:", err)
		return
	}

	fmt.Println("rendered successfully")
	// Output: rendered successfully
}
