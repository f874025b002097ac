//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/points"
	"github.com/gogpu/wgpu/hal"
)

// SpriteRenderer draws every particle as a white point sprite in a single
// draw call. The particle buffer doubles as the vertex buffer: the position
// attribute reads the leading vec2<f32> of each 16-byte particle and the
// velocity half of the stride is skipped.
//
// Two pipeline variants cover the host's size-override switch:
//
//	pipeline:      point-list topology, vs_main. One fragment per particle.
//	sizedPipeline: instanced triangle strip, vs_sprite. Each particle becomes
//	               a screen-aligned quad of points.PointSize pixels.
//
// The sized variant needs a Viewport uniform (framebuffer extent and sprite
// size); the plain variant binds nothing.
type SpriteRenderer struct {
	device hal.Device
	queue  hal.Queue

	// GPU objects shared by both variants.
	shader         hal.ShaderModule
	viewportLayout hal.BindGroupLayout

	// Plain point-list pipeline (empty layout, no bind groups).
	plainLayout hal.PipelineLayout
	pipeline    hal.RenderPipeline

	// Sized quad pipeline with the viewport uniform at group 0.
	sizedLayout   hal.PipelineLayout
	sizedPipeline hal.RenderPipeline
}

// NewSpriteRenderer creates a new point sprite renderer with the given
// device and queue. Pipelines are not created until ensurePipeline or
// ensureSizedPipeline is called.
func NewSpriteRenderer(device hal.Device, queue hal.Queue) *SpriteRenderer {
	return &SpriteRenderer{
		device: device,
		queue:  queue,
	}
}

// Destroy releases all GPU resources held by the renderer. Safe to call
// multiple times or on a renderer with no allocated resources.
func (sr *SpriteRenderer) Destroy() {
	sr.destroyPipeline()
}

// ensurePipeline creates the shader and the plain point-list pipeline if
// they don't already exist.
func (sr *SpriteRenderer) ensurePipeline() error {
	if sr.pipeline != nil {
		return nil
	}
	if err := sr.ensureShader(); err != nil {
		return err
	}

	plainLayout, err := sr.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "sprite_plain_layout",
		BindGroupLayouts: []hal.BindGroupLayout{},
	})
	if err != nil {
		return fmt.Errorf("create sprite plain layout: %w", err)
	}
	sr.plainLayout = plainLayout

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := sr.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "sprite_pipeline",
		Layout: sr.plainLayout,
		Vertex: hal.VertexState{
			Module:     sr.shader,
			EntryPoint: "vs_main",
			Buffers:    spriteVertexLayout(gputypes.VertexStepModeVertex),
		},
		Fragment: &hal.FragmentState{
			Module:     sr.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    gputypes.TextureFormatBGRA8Unorm,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyPointList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: sampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create sprite pipeline: %w", err)
	}
	sr.pipeline = pipeline
	return nil
}

// ensureSizedPipeline creates the instanced quad pipeline variant used when
// the host enables the fixed sprite size. The shared shader module and the
// viewport bind group layout are created first if they don't exist.
func (sr *SpriteRenderer) ensureSizedPipeline() error { //nolint:dupl // GPU pipeline descriptors share structure but differ in labels, entry points, and vertex layouts
	if sr.sizedPipeline != nil {
		return nil
	}
	if err := sr.ensureShader(); err != nil {
		return err
	}

	if sr.viewportLayout == nil {
		viewportLayout, err := sr.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label: "sprite_viewport_layout",
			Entries: []gputypes.BindGroupLayoutEntry{
				{
					Binding:    0,
					Visibility: gputypes.ShaderStageVertex,
					Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
				},
			},
		})
		if err != nil {
			return fmt.Errorf("create sprite viewport layout: %w", err)
		}
		sr.viewportLayout = viewportLayout
	}

	sizedLayout, err := sr.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "sprite_sized_layout",
		BindGroupLayouts: []hal.BindGroupLayout{sr.viewportLayout},
	})
	if err != nil {
		return fmt.Errorf("create sprite sized layout: %w", err)
	}
	sr.sizedLayout = sizedLayout

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := sr.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "sprite_sized_pipeline",
		Layout: sr.sizedLayout,
		Vertex: hal.VertexState{
			Module:     sr.shader,
			EntryPoint: "vs_sprite",
			Buffers:    spriteVertexLayout(gputypes.VertexStepModeInstance),
		},
		Fragment: &hal.FragmentState{
			Module:     sr.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    gputypes.TextureFormatBGRA8Unorm,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleStrip,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: sampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create sprite sized pipeline: %w", err)
	}
	sr.sizedPipeline = pipeline
	return nil
}

// ensureShader compiles the sprite shader module if it doesn't exist.
func (sr *SpriteRenderer) ensureShader() error {
	if sr.shader != nil {
		return nil
	}
	if spriteShaderSource == "" {
		return fmt.Errorf("sprite shader source is empty")
	}
	shader, err := sr.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "sprite_shader",
		Source: hal.ShaderSource{WGSL: spriteShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile sprite shader: %w", err)
	}
	sr.shader = shader
	return nil
}

// RecordDraws records the plain point-list draw into an existing render
// pass. One vertex per particle. This is a no-op if resources is nil or
// holds no particles.
func (sr *SpriteRenderer) RecordDraws(rp hal.RenderPassEncoder, resources *spriteFrameResources) {
	if resources == nil || resources.vertCount == 0 {
		return
	}
	rp.SetPipeline(sr.pipeline)
	rp.SetVertexBuffer(0, resources.vertBuf, 0)
	rp.Draw(resources.vertCount, 1, 0, 0)
}

// RecordSizedDraws records the instanced quad draw into an existing render
// pass. Four strip vertices per particle instance. This is a no-op if
// resources is nil or holds no particles.
func (sr *SpriteRenderer) RecordSizedDraws(rp hal.RenderPassEncoder, resources *spriteFrameResources) {
	if resources == nil || resources.vertCount == 0 {
		return
	}
	rp.SetPipeline(sr.sizedPipeline)
	rp.SetBindGroup(0, resources.bindGroup, nil)
	rp.SetVertexBuffer(0, resources.vertBuf, 0)
	rp.Draw(4, resources.vertCount, 0, 0)
}

// destroyPipeline releases all pipeline resources in reverse creation order.
func (sr *SpriteRenderer) destroyPipeline() {
	if sr.device == nil {
		return
	}
	if sr.sizedPipeline != nil {
		sr.device.DestroyRenderPipeline(sr.sizedPipeline)
		sr.sizedPipeline = nil
	}
	if sr.pipeline != nil {
		sr.device.DestroyRenderPipeline(sr.pipeline)
		sr.pipeline = nil
	}
	if sr.sizedLayout != nil {
		sr.device.DestroyPipelineLayout(sr.sizedLayout)
		sr.sizedLayout = nil
	}
	if sr.plainLayout != nil {
		sr.device.DestroyPipelineLayout(sr.plainLayout)
		sr.plainLayout = nil
	}
	if sr.viewportLayout != nil {
		sr.device.DestroyBindGroupLayout(sr.viewportLayout)
		sr.viewportLayout = nil
	}
	if sr.shader != nil {
		sr.device.DestroyShaderModule(sr.shader)
		sr.shader = nil
	}
}

// spriteFrameResources holds per-frame GPU resources for sprite rendering.
// The vertex buffer is the session's particle buffer and is not owned here;
// uniformBuf and bindGroup exist only for the sized variant.
type spriteFrameResources struct {
	vertBuf    hal.Buffer
	uniformBuf hal.Buffer
	bindGroup  hal.BindGroup
	vertCount  uint32
}

func (r *spriteFrameResources) destroy(device hal.Device) {
	if r.bindGroup != nil {
		device.DestroyBindGroup(r.bindGroup)
	}
	if r.uniformBuf != nil {
		device.DestroyBuffer(r.uniformBuf)
	}
}

// spriteVertexLayout returns the vertex buffer layout for the sprite
// pipelines. The buffer is the raw particle buffer; only the leading
// position field feeds the shader.
func spriteVertexLayout(stepMode gputypes.VertexStepMode) []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: points.ParticleStride,
			StepMode:    stepMode,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
			},
		},
	}
}

// viewportUniformSize is the byte size of the Viewport uniform buffer.
const viewportUniformSize = 16

// viewportUniformBytes packs the Viewport uniform for vs_sprite.
// Must match the Viewport struct in sprite.wgsl:
// vec2<f32> size, f32 point_size, f32 pad.
func viewportUniformBytes(width, height uint32, pointSize float32) []byte {
	buf := make([]byte, viewportUniformSize)
	le := binary.LittleEndian
	le.PutUint32(buf[0:4], math.Float32bits(float32(width)))
	le.PutUint32(buf[4:8], math.Float32bits(float32(height)))
	le.PutUint32(buf[8:12], math.Float32bits(pointSize))
	le.PutUint32(buf[12:16], 0)
	return buf
}
