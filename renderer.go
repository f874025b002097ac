package points

import (
	"errors"
	"sync"
)

// ErrFallbackToCPU indicates the GPU accelerator cannot handle this frame.
// The caller should transparently fall back to CPU rendering.
var ErrFallbackToCPU = errors.New("points: falling back to CPU rendering")

// Framebuffer provides pixel buffer access for renderer output.
// The Data slice must be in premultiplied RGBA format, 4 bytes per pixel,
// laid out row by row with the given Stride.
type Framebuffer struct {
	Data          []uint8
	Width, Height int
	Stride        int // bytes per row
}

// NewFramebuffer allocates a tightly packed RGBA framebuffer.
func NewFramebuffer(width, height int) Framebuffer {
	return Framebuffer{
		Data:   make([]uint8, width*height*4),
		Width:  width,
		Height: height,
		Stride: width * 4,
	}
}

// FrameParams carries the host-side state for one frame. None of it is
// visible to the vertex transform; it configures the pipeline around it.
type FrameParams struct {
	// StepDT, when positive, advances the simulation by this many seconds
	// before drawing, the way the original frame loop runs one update pass
	// per frame. Zero draws the field as-is.
	StepDT float32

	// SizeOverride enables the point-size control value. When set, sprites
	// rasterize at PointSize x PointSize pixels; when clear, the rasterizer
	// silently ignores the size and each point covers a single pixel.
	SizeOverride bool
}

// Accelerator is an optional GPU rendering provider.
//
// When registered via RegisterAccelerator, RenderField tries GPU rendering
// first. If the accelerator returns ErrFallbackToCPU or any error, rendering
// transparently falls back to the CPU rasterizer.
//
// Implementations live in GPU backend packages. Users opt in via blank
// import:
//
//	import _ "github.com/gogpu/points/gpu" // enables GPU rendering
type Accelerator interface {
	// Name returns the accelerator name (e.g., "wgpu", "vulkan").
	Name() string

	// Init initializes GPU resources. Called once during registration.
	Init() error

	// Close releases GPU resources.
	Close()

	// RenderField draws one frame of the field into the target. When
	// params.StepDT is positive the accelerator also advances the particle
	// state (a compute pass on the GPU path) and writes the updated
	// particles back into the field before returning.
	// Returns ErrFallbackToCPU if the frame cannot be GPU-rendered.
	RenderField(target Framebuffer, field *Field, params FrameParams) error
}

// DeviceProviderAware is an optional interface for accelerators that can
// share GPU resources with an external provider (e.g., a gogpu window).
// When SetAcceleratorDeviceProvider is called, the accelerator reuses the
// provided GPU device instead of creating its own.
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var (
	accelMu sync.RWMutex
	accel   Accelerator
)

// RegisterAccelerator registers a GPU accelerator for optional GPU rendering.
//
// Only one accelerator can be registered. Subsequent calls replace the
// previous one. The accelerator's Init() method is called during
// registration. If Init() fails, the accelerator is not registered and the
// error is returned.
//
// Typical usage via blank import in GPU backend packages:
//
//	func init() {
//	    points.RegisterAccelerator(newSpriteAccelerator())
//	}
func RegisterAccelerator(a Accelerator) error {
	if a == nil {
		return errors.New("points: accelerator must not be nil")
	}
	if err := a.Init(); err != nil {
		return err
	}
	propagateLogger(a, Logger())
	accelMu.Lock()
	old := accel
	accel = a
	accelMu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

// RegisteredAccelerator returns the current GPU accelerator, or nil if none.
func RegisteredAccelerator() Accelerator {
	accelMu.RLock()
	a := accel
	accelMu.RUnlock()
	return a
}

// SetAcceleratorDeviceProvider passes a device provider to the registered
// accelerator, enabling GPU device sharing. If no accelerator is registered
// or it doesn't support device sharing, this is a no-op.
//
// The provider should implement HalDevice() any and HalQueue() any methods
// that return wgpu/hal types.
func SetAcceleratorDeviceProvider(provider any) error {
	a := RegisteredAccelerator()
	if a == nil {
		return nil
	}
	if dpa, ok := a.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}

// RenderField draws one frame of the field into the target: the frame is
// cleared to opaque black and every particle is drawn as a white point
// sprite.
//
// The registered accelerator renders the frame when one is available; on
// ErrFallbackToCPU or any other accelerator error the frame is re-rendered
// by the CPU rasterizer, so the call succeeds wherever the CPU path can run.
func RenderField(target Framebuffer, field *Field, params FrameParams) error {
	if field == nil {
		return errors.New("points: nil field")
	}
	if err := validateTarget(target); err != nil {
		return err
	}

	if a := RegisteredAccelerator(); a != nil {
		err := a.RenderField(target, field, params)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrFallbackToCPU) {
			Logger().Warn("accelerator failed, falling back to CPU",
				"accelerator", a.Name(), "err", err)
		}
	}

	if params.StepDT > 0 {
		field.Step(params.StepDT)
	}
	return renderFieldCPU(target, field.Particles(), params.SizeOverride)
}

// validateTarget checks the framebuffer invariants shared by all renderers.
func validateTarget(target Framebuffer) error {
	if target.Width <= 0 || target.Height <= 0 {
		return errors.New("points: empty render target")
	}
	if target.Stride < target.Width*4 {
		return errors.New("points: target stride smaller than row")
	}
	if len(target.Data) < target.Stride*target.Height {
		return errors.New("points: target data smaller than height*stride")
	}
	return nil
}
