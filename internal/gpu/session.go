//go:build !nogpu

package gpu

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/points"
	"github.com/gogpu/wgpu/hal"
)

// fenceTimeout is the maximum time to wait for GPU work to complete.
const fenceTimeout = 5 * time.Second

// RenderSession manages a single frame of GPU particle rendering. It owns
// the offscreen color target, the sprite render pipelines, and the
// integration compute pipeline, and executes the whole frame in a single
// GPU submission.
//
// Architecture:
//
//	RenderSession
//	  +-- Manages the offscreen color target (via frameTextures)
//	  +-- Owns SpriteRenderer and ParticleCompute
//	  +-- Encodes compute pass + render pass into one command buffer
//	  +-- Single submit + fence wait
//	  +-- Reads back pixels (and stepped particles) to the CPU
//
// The particle buffer is uploaded once per frame and serves two roles:
// storage buffer for the compute pass and vertex buffer for the render
// pass. When the compute pass runs, the stepped particle data is copied
// back so the host field mirrors GPU state.
type RenderSession struct {
	device hal.Device
	queue  hal.Queue

	// Offscreen color target (1x sample, BGRA8Unorm).
	textures frameTextures

	// Pipeline owners (lazily created, owned and destroyed by the session).
	sprites *SpriteRenderer
	compute *ParticleCompute
}

// NewRenderSession creates a new render session with the given device and
// queue. Textures and pipelines are not allocated until RenderFrame is called.
func NewRenderSession(device hal.Device, queue hal.Queue) *RenderSession {
	return &RenderSession{
		device: device,
		queue:  queue,
	}
}

// EnsureTextures creates or recreates the offscreen color target if the
// requested dimensions differ from the current size. If dimensions match
// and the texture exists, this is a no-op.
func (s *RenderSession) EnsureTextures(w, h uint32) error {
	return s.textures.ensureTextures(s.device, w, h, "session")
}

// Size returns the current color target dimensions.
func (s *RenderSession) Size() (uint32, uint32) {
	return s.textures.width, s.textures.height
}

// RenderFrame steps and draws the particle field in one GPU submission.
// This is the main entry point for GPU rendering.
//
// The frame encodes:
//   - an integration compute pass when params.StepDT > 0
//   - a render pass clearing to opaque black and drawing every particle
//     as a white sprite (sized quads when params.SizeOverride is set,
//     single-pixel points otherwise)
//   - a texture-to-buffer copy for pixel readback
//   - a buffer-to-buffer copy for particle readback when the compute ran
//
// On return, target.Data holds the frame in RGBA order and field reflects
// the stepped particle state.
func (s *RenderSession) RenderFrame(target points.Framebuffer, field *points.Field, params points.FrameParams) error {
	w, h := uint32(target.Width), uint32(target.Height) //nolint:gosec // dimensions always fit uint32
	count := uint32(field.Count())                      //nolint:gosec // particle count fits uint32

	if err := s.EnsureTextures(w, h); err != nil {
		return fmt.Errorf("ensure textures: %w", err)
	}

	runCompute := params.StepDT > 0 && count > 0
	if err := s.ensurePipelines(params.SizeOverride, runCompute); err != nil {
		return fmt.Errorf("ensure pipelines: %w", err)
	}

	// Particle buffer: storage target for the compute pass, vertex source
	// for the render pass, copy source for particle readback.
	var particleBuf hal.Buffer
	particleData := field.Pack()
	if len(particleData) > 0 {
		var err error
		particleBuf, err = s.createAndUploadBuffer("session_particles", particleData,
			gputypes.BufferUsageVertex|gputypes.BufferUsageStorage|
				gputypes.BufferUsageCopyDst|gputypes.BufferUsageCopySrc)
		if err != nil {
			return fmt.Errorf("create particle buffer: %w", err)
		}
		defer s.device.DestroyBuffer(particleBuf)
	}

	var computeRes *computeFrameResources
	if runCompute {
		var err error
		computeRes, err = s.buildComputeResources(particleBuf, count, params.StepDT)
		if err != nil {
			return fmt.Errorf("build compute resources: %w", err)
		}
		defer computeRes.destroy(s.device)
	}

	spriteRes, err := s.buildSpriteResources(particleBuf, count, w, h, params.SizeOverride)
	if err != nil {
		return fmt.Errorf("build sprite resources: %w", err)
	}
	defer spriteRes.destroy(s.device)

	return s.encodeSubmitReadback(w, h, computeRes, spriteRes, params.SizeOverride, particleBuf, field, target)
}

// Destroy releases all GPU resources held by the session. Safe to call
// multiple times or on a session with no allocated resources.
func (s *RenderSession) Destroy() {
	s.textures.destroyTextures(s.device)
	if s.sprites != nil {
		s.sprites.Destroy()
		s.sprites = nil
	}
	if s.compute != nil {
		s.compute.Destroy()
		s.compute = nil
	}
}

// ensurePipelines creates the sprite and compute pipelines the frame needs
// if they don't exist yet.
func (s *RenderSession) ensurePipelines(sizeOverride, runCompute bool) error {
	if s.sprites == nil {
		s.sprites = NewSpriteRenderer(s.device, s.queue)
	}
	if sizeOverride {
		if err := s.sprites.ensureSizedPipeline(); err != nil {
			return fmt.Errorf("sprite sized pipeline: %w", err)
		}
	} else {
		if err := s.sprites.ensurePipeline(); err != nil {
			return fmt.Errorf("sprite pipeline: %w", err)
		}
	}

	if runCompute {
		if s.compute == nil {
			s.compute = NewParticleCompute(s.device, s.queue)
		}
		if err := s.compute.ensurePipeline(); err != nil {
			return fmt.Errorf("compute pipeline: %w", err)
		}
	}
	return nil
}

// buildComputeResources creates the per-frame parameter buffer and bind
// group for the integration pass. The particle buffer is bound at binding 0
// but stays owned by RenderFrame.
func (s *RenderSession) buildComputeResources(particleBuf hal.Buffer, count uint32, dt float32) (*computeFrameResources, error) {
	simParams := SimParams{DT: dt, Count: count}
	paramsBuf, err := s.createAndUploadBuffer("session_sim_params", simParams.toBytes(),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, fmt.Errorf("create sim params buffer: %w", err)
	}

	particleSize := uint64(count) * points.ParticleStride
	bindGroup, err := s.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "session_update_bind",
		Layout: s.compute.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: particleBuf.NativeHandle(), Offset: 0, Size: particleSize,
			}},
			{Binding: 1, Resource: gputypes.BufferBinding{
				Buffer: paramsBuf.NativeHandle(), Offset: 0, Size: simParams.sizeInBytes(),
			}},
		},
	})
	if err != nil {
		s.device.DestroyBuffer(paramsBuf)
		return nil, fmt.Errorf("create update bind group: %w", err)
	}

	return &computeFrameResources{
		paramsBuf: paramsBuf,
		bindGroup: bindGroup,
		count:     count,
	}, nil
}

// buildSpriteResources creates the per-frame resources for sprite drawing.
// The plain point-list variant needs no uniforms; the sized variant gets a
// viewport uniform and bind group.
func (s *RenderSession) buildSpriteResources(particleBuf hal.Buffer, count, w, h uint32, sizeOverride bool) (*spriteFrameResources, error) {
	if !sizeOverride {
		return &spriteFrameResources{vertBuf: particleBuf, vertCount: count}, nil
	}

	uniformData := viewportUniformBytes(w, h, points.PointSize)
	uniformBuf, err := s.createAndUploadBuffer("session_viewport", uniformData,
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, fmt.Errorf("create viewport buffer: %w", err)
	}

	bindGroup, err := s.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "session_viewport_bind",
		Layout: s.sprites.viewportLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: viewportUniformSize,
			}},
		},
	})
	if err != nil {
		s.device.DestroyBuffer(uniformBuf)
		return nil, fmt.Errorf("create viewport bind group: %w", err)
	}

	return &spriteFrameResources{
		vertBuf:    particleBuf,
		uniformBuf: uniformBuf,
		bindGroup:  bindGroup,
		vertCount:  count,
	}, nil
}

// encodeSubmitReadback encodes the compute and render passes, copies the
// color target (and the stepped particle buffer) to staging buffers,
// submits, waits, and reads results back.
func (s *RenderSession) encodeSubmitReadback( //nolint:funlen // frame encoding is a single cohesive unit
	w, h uint32,
	computeRes *computeFrameResources,
	spriteRes *spriteFrameResources,
	sizeOverride bool,
	particleBuf hal.Buffer,
	field *points.Field,
	target points.Framebuffer,
) error {
	encoder, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "session_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("session_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	// Integration pass first. The render pass below reads the particle
	// buffer the compute pass just wrote; pass ordering within one encoder
	// provides the visibility guarantee.
	if computeRes != nil {
		s.compute.RecordUpdate(encoder, computeRes)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "session_sprite_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       s.textures.colorView,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	if sizeOverride {
		s.sprites.RecordSizedDraws(rp, spriteRes)
	} else {
		s.sprites.RecordDraws(rp, spriteRes)
	}
	rp.End()

	// After the render pass the texture is in attachment layout.
	// CopyTextureToBuffer requires a transfer-source layout; insert an
	// explicit barrier to transition. This is a no-op on Metal, GLES,
	// software, and noop backends.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: s.textures.colorTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	// Copy the color target to a staging buffer for CPU readback.
	// WebGPU (and DX12) requires BytesPerRow aligned to 256 bytes.
	bytesPerRow := w * 4
	const copyPitchAlignment = 256
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingBufSize := uint64(alignedBytesPerRow) * uint64(h)

	stagingBuf, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "session_staging",
		Size:  stagingBufSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer s.device.DestroyBuffer(stagingBuf)

	encoder.CopyTextureToBuffer(s.textures.colorTex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: s.textures.colorTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	// Transition back to RenderAttachment so the next frame's render pass
	// starts from the layout it expects.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: s.textures.colorTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	// Stage the stepped particle data for readback into the host field.
	var particleStaging hal.Buffer
	var particleSize uint64
	if computeRes != nil {
		particleSize = uint64(computeRes.count) * points.ParticleStride
		particleStaging, err = s.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "session_particle_staging",
			Size:  particleSize,
			Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			encoder.DiscardEncoding()
			return fmt.Errorf("create particle staging buffer: %w", err)
		}
		defer s.device.DestroyBuffer(particleStaging)

		encoder.CopyBufferToBuffer(particleBuf, particleStaging, []hal.BufferCopy{{
			SrcOffset: 0, DstOffset: 0, Size: particleSize,
		}})
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer s.device.FreeCommandBuffer(cmdBuf)

	// Submit and wait.
	fence, err := s.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer s.device.DestroyFence(fence)

	if err := s.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := s.device.Wait(fence, 1, fenceTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, stagingBufSize)
	if err := s.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}

	// Strip row padding (if any) and convert BGRA -> RGBA into the target.
	// The target stride may also carry padding, so rows are converted
	// one at a time.
	for row := uint32(0); row < h; row++ {
		src := readback[int(row)*int(alignedBytesPerRow):]
		dst := target.Data[int(row)*target.Stride:]
		convertBGRAToRGBA(src, dst, int(w))
	}

	// Mirror the stepped particles into the host field.
	if computeRes != nil {
		particleData := make([]byte, particleSize)
		if err := s.queue.ReadBuffer(particleStaging, 0, particleData); err != nil {
			return fmt.Errorf("particle readback: %w", err)
		}
		if err := field.Unpack(particleData); err != nil {
			return fmt.Errorf("particle readback: %w", err)
		}
	}
	return nil
}

// createAndUploadBuffer creates a GPU buffer and uploads data.
func (s *RenderSession) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	s.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// convertBGRAToRGBA copies pixels from src to dst, swapping the blue and
// red channels. Both slices must hold at least pixels*4 bytes.
func convertBGRAToRGBA(src, dst []byte, pixels int) {
	for i := 0; i < pixels; i++ {
		o := i * 4
		dst[o+0] = src[o+2]
		dst[o+1] = src[o+1]
		dst[o+2] = src[o+0]
		dst[o+3] = src[o+3]
	}
}
