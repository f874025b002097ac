// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/points"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Accelerator renders particle fields on the GPU: a compute pass integrates
// the particles and a render pass draws them as point sprites, both encoded
// into a single submission per frame. It implements points.Accelerator and
// points.DeviceProviderAware.
//
// The accelerator either creates its own standalone Vulkan device or adopts
// a shared device from an external provider (see SetDeviceProvider). Shared
// devices are never destroyed on Close.
type Accelerator struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	session *RenderSession

	gpuReady       bool
	initTried      bool // standalone init attempted; failures are not retried
	externalDevice bool // true when using shared device (don't destroy on Close)
}

// Interface compliance checks.
var _ points.Accelerator = (*Accelerator)(nil)
var _ points.DeviceProviderAware = (*Accelerator)(nil)

// Name returns the accelerator identifier.
func (a *Accelerator) Name() string { return "sprite-wgpu" }

// Init registers the accelerator. GPU device initialization is deferred
// until the first frame or until SetDeviceProvider is called, so the
// accelerator never creates a standalone Vulkan device when the host is
// about to share its own. Destroying a standalone Vulkan device while an
// external DX12 device coexists kills both on some Intel iGPU drivers.
func (a *Accelerator) Init() error {
	return nil
}

// Close releases all GPU resources held by the accelerator.
func (a *Accelerator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session != nil {
		a.session.Destroy()
		a.session = nil
	}

	if !a.externalDevice {
		if a.device != nil {
			a.device.Destroy()
			a.device = nil
		}
		if a.instance != nil {
			a.instance.Destroy()
			a.instance = nil
		}
	} else {
		// Don't destroy shared resources -- we don't own them.
		a.device = nil
		a.instance = nil
	}
	a.queue = nil
	a.gpuReady = false
	a.initTried = false
	a.externalDevice = false
}

// SetLogger sets the logger for the GPU accelerator and its internal state.
// Called by points.SetLogger to propagate logging configuration.
func (a *Accelerator) SetLogger(l *slog.Logger) {
	setLogger(l)
}

// RenderField draws one frame of the field on the GPU. When params.StepDT
// is positive the particle state is advanced by a compute pass and read
// back into the field. Returns points.ErrFallbackToCPU when no usable GPU
// is available.
func (a *Accelerator) RenderField(target points.Framebuffer, field *points.Field, params points.FrameParams) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.gpuReady {
		if a.initTried {
			return points.ErrFallbackToCPU
		}
		a.initTried = true
		if err := a.initGPU(); err != nil {
			slogger().Warn("sprite-wgpu: GPU init failed, using CPU rendering", "error", err)
			return points.ErrFallbackToCPU
		}
	}
	if a.session == nil {
		// Device is up but the sprite pipeline could not be built.
		return points.ErrFallbackToCPU
	}

	if err := a.session.RenderFrame(target, field, params); err != nil {
		return fmt.Errorf("sprite-wgpu: %w", err)
	}
	return nil
}

// SetDeviceProvider switches the accelerator to use a shared GPU device
// from an external provider (e.g., gogpu). The provider must implement
// HalDevice() any and HalQueue() any returning hal.Device and hal.Queue.
func (a *Accelerator) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("sprite-wgpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("sprite-wgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("sprite-wgpu: provider HalQueue is not hal.Queue")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Destroy own resources if we created them.
	if a.session != nil {
		a.session.Destroy()
		a.session = nil
	}
	if !a.externalDevice && a.device != nil {
		a.device.Destroy()
	}
	if a.instance != nil {
		a.instance.Destroy()
		a.instance = nil
	}

	// Use provided resources.
	a.device = device
	a.queue = queue
	a.externalDevice = true

	// Build the session with the provided device/queue and compile the
	// always-needed point pipeline up front so a broken shader stack is
	// detected here rather than on the first frame.
	session := NewRenderSession(device, queue)
	if err := session.ensurePipelines(false, false); err != nil {
		slogger().Warn("sprite-wgpu: pipeline init failed, GPU sprites unavailable", "error", err)
		// Still mark gpuReady: device is valid, just sprites aren't available.
		a.gpuReady = true
		return nil
	}
	a.session = session

	a.gpuReady = true
	slogger().Debug("sprite-wgpu: switched to shared GPU device")
	return nil
}

// initGPU creates a standalone Vulkan device for offscreen use. This is the
// fallback path when no external device is provided via SetDeviceProvider
// (e.g., when points is used without gogpu).
func (a *Accelerator) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	a.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("no GPU adapters found")
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	a.device = openDev.Device
	a.queue = openDev.Queue

	// Build the session with the standalone device/queue.
	session := NewRenderSession(a.device, a.queue)
	if err := session.ensurePipelines(false, false); err != nil {
		slogger().Warn("sprite-wgpu: pipeline init failed, GPU sprites unavailable", "error", err)
		a.gpuReady = true
		return nil
	}
	a.session = session

	a.gpuReady = true
	slogger().Info("sprite-wgpu: GPU initialized (standalone)", "adapter", selected.Info.Name)
	return nil
}
