//go:build !nogpu

package gpu

import (
	"testing"

	"github.com/gogpu/points"
	"github.com/gogpu/wgpu/hal"
)

// fakeDeviceProvider exposes a hal device and queue the way a gogpu window
// would, for exercising the device sharing path.
type fakeDeviceProvider struct {
	device hal.Device
	queue  hal.Queue
}

func (p *fakeDeviceProvider) HalDevice() any { return p.device }
func (p *fakeDeviceProvider) HalQueue() any  { return p.queue }

// badDeviceProvider has the right method set but returns non-HAL values.
type badDeviceProvider struct{}

func (badDeviceProvider) HalDevice() any { return "not a device" }
func (badDeviceProvider) HalQueue() any  { return "not a queue" }

func TestAcceleratorName(t *testing.T) {
	a := &Accelerator{}
	if a.Name() != "sprite-wgpu" {
		t.Errorf("Name() = %q, want %q", a.Name(), "sprite-wgpu")
	}
}

func TestAcceleratorInitIsLazy(t *testing.T) {
	a := &Accelerator{}
	defer a.Close()

	if err := a.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	// No device work happens until the first frame or SetDeviceProvider.
	if a.device != nil {
		t.Error("expected nil device after Init")
	}
	if a.gpuReady {
		t.Error("expected gpuReady false after Init")
	}
}

func TestAcceleratorCloseFresh(t *testing.T) {
	a := &Accelerator{}

	// Close on a never-initialized accelerator must not panic.
	a.Close()
	a.Close()
}

func TestAcceleratorSetDeviceProvider(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	a := &Accelerator{}
	defer a.Close()

	provider := &fakeDeviceProvider{device: device, queue: queue}
	if err := a.SetDeviceProvider(provider); err != nil {
		t.Fatalf("SetDeviceProvider failed: %v", err)
	}

	if !a.externalDevice {
		t.Error("expected externalDevice after SetDeviceProvider")
	}
	if !a.gpuReady {
		t.Error("expected gpuReady after SetDeviceProvider")
	}
	if a.device != device {
		t.Error("expected provided device to be adopted")
	}
	if a.queue != queue {
		t.Error("expected provided queue to be adopted")
	}
	if a.session == nil {
		t.Error("expected session after SetDeviceProvider")
	}
	if a.session.sprites == nil || a.session.sprites.pipeline == nil {
		t.Error("expected point pipeline to be built eagerly")
	}
}

func TestAcceleratorSetDeviceProviderRejectsNonProvider(t *testing.T) {
	a := &Accelerator{}
	defer a.Close()

	if err := a.SetDeviceProvider(struct{}{}); err == nil {
		t.Error("expected error for provider without HAL accessors")
	}
	if err := a.SetDeviceProvider(badDeviceProvider{}); err == nil {
		t.Error("expected error for provider with non-HAL values")
	}
	if a.gpuReady {
		t.Error("rejected provider must not mark the GPU ready")
	}
}

func TestAcceleratorRenderFieldShared(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	a := &Accelerator{}
	defer a.Close()

	provider := &fakeDeviceProvider{device: device, queue: queue}
	if err := a.SetDeviceProvider(provider); err != nil {
		t.Fatalf("SetDeviceProvider failed: %v", err)
	}

	field := points.NewField(16, points.WithSeed(4))
	defer field.Close()
	target := points.NewFramebuffer(120, 90)

	if err := a.RenderField(target, field, points.FrameParams{}); err != nil {
		t.Fatalf("RenderField failed: %v", err)
	}
	if err := a.RenderField(target, field, points.FrameParams{SizeOverride: true}); err != nil {
		t.Fatalf("RenderField with size override failed: %v", err)
	}
	if a.session.sprites.sizedPipeline == nil {
		t.Error("expected sized pipeline after size-override frame")
	}
}

func TestAcceleratorRenderFieldSharedWithStep(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	a := &Accelerator{}
	defer a.Close()

	provider := &fakeDeviceProvider{device: device, queue: queue}
	if err := a.SetDeviceProvider(provider); err != nil {
		t.Fatalf("SetDeviceProvider failed: %v", err)
	}

	field := points.NewField(300, points.WithSeed(4))
	defer field.Close()
	target := points.NewFramebuffer(64, 64)

	err := a.RenderField(target, field, points.FrameParams{StepDT: 1.0 / 60.0})
	skipOnNagaLimit(t, err)
	if err != nil {
		t.Fatalf("RenderField with step failed: %v", err)
	}
	if a.session.compute == nil {
		t.Error("expected compute pipeline after stepping frame")
	}
}

func TestAcceleratorCloseShared(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	a := &Accelerator{}
	provider := &fakeDeviceProvider{device: device, queue: queue}
	if err := a.SetDeviceProvider(provider); err != nil {
		t.Fatalf("SetDeviceProvider failed: %v", err)
	}

	a.Close()

	// Shared device handles are dropped, never destroyed.
	if a.device != nil {
		t.Error("expected nil device after Close")
	}
	if a.queue != nil {
		t.Error("expected nil queue after Close")
	}
	if a.session != nil {
		t.Error("expected nil session after Close")
	}
	if a.gpuReady || a.externalDevice {
		t.Error("expected flags reset after Close")
	}

	// The provider's device must still work after the accelerator closed.
	enc, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "post_close"})
	if err != nil {
		t.Fatalf("shared device unusable after Close: %v", err)
	}
	if err := enc.BeginEncoding("post_close"); err != nil {
		t.Fatalf("BeginEncoding failed: %v", err)
	}
	enc.DiscardEncoding()
}
