//go:build !nogpu

// Package gpu registers the GPU accelerator for hardware-accelerated
// particle rendering.
//
// Import this package to route points.RenderField through the GPU: the
// particle update runs as a compute pass and the sprites draw in a single
// render pass, both submitted together each frame.
//
// The accelerator defers device creation until the first frame (or until
// SetDeviceProvider hands it a shared device), so importing this package
// is free when no GPU work ever happens. If no Vulkan device is available
// at first use, rendering falls back to the CPU path.
//
// Usage:
//
//	import _ "github.com/gogpu/points/gpu" // enable GPU rendering
package gpu

import (
	"github.com/gogpu/points"
	gpuimpl "github.com/gogpu/points/internal/gpu"
)

func init() {
	accel := &gpuimpl.Accelerator{}
	if err := points.RegisterAccelerator(accel); err != nil {
		points.Logger().Warn("GPU accelerator not available", "err", err)
	}
}

// SetDeviceProvider configures the GPU accelerator to use a shared GPU device
// from an external provider (e.g., gogpu). This avoids creating a separate
// GPU instance and enables efficient device sharing.
//
// The provider should expose HalDevice() any and HalQueue() any returning
// wgpu/hal types, the way gogpu windows do.
//
// Call this before the first frame, typically right after the host has its
// device up.
func SetDeviceProvider(provider any) error {
	return points.SetAcceleratorDeviceProvider(provider)
}
