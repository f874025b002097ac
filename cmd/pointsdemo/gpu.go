//go:build !nogpu

package main

// Registers the wgpu accelerator for -gpu. In nogpu builds the flag still
// exists and RenderField falls back to the CPU rasterizer.
import _ "github.com/gogpu/points/gpu"
