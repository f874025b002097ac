// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// updateWGSize is the workgroup size of the integration compute shader.
// This matches the @workgroup_size attribute in update.wgsl.
const updateWGSize = 256

// SimParams holds the per-frame parameters for the integration compute
// shader that map to the SimParams uniform buffer in update.wgsl.
//
// This struct must match the SimParams struct in the shader: f32 dt,
// u32 count, and two padding words. It is uploaded as a uniform buffer
// at binding(1) of group(0).
type SimParams struct {
	// DT is the integration time step in seconds.
	DT float32

	// Count is the number of live particles. Invocations past Count
	// return immediately.
	Count uint32
}

// sizeInBytes returns the byte size of the SimParams uniform.
// 2 fields + 2 padding words * 4 bytes = 16 bytes.
func (p SimParams) sizeInBytes() uint64 {
	return 16
}

// toBytes serializes SimParams to a byte slice in little-endian format.
// The layout matches the WGSL SimParams struct.
func (p SimParams) toBytes() []byte {
	buf := make([]byte, p.sizeInBytes())
	le := binary.LittleEndian
	le.PutUint32(buf[0:4], math.Float32bits(p.DT))
	le.PutUint32(buf[4:8], p.Count)
	le.PutUint32(buf[8:12], 0)
	le.PutUint32(buf[12:16], 0)
	return buf
}

// ParticleCompute advances the particle field on the GPU. One compute
// dispatch integrates every particle and reflects it off the unit box,
// writing the results back into the particle buffer in place. The render
// pass that follows reads the same buffer as its vertex buffer.
//
// The shader is compiled to SPIR-V through naga because compute modules
// are fed to the Vulkan backend directly.
type ParticleCompute struct {
	device hal.Device
	queue  hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	// Compiled SPIR-V (cached for verification).
	spirvCode []uint32
}

// NewParticleCompute creates a new particle integration dispatcher with the
// given device and queue. The pipeline is not created until ensurePipeline
// is called.
func NewParticleCompute(device hal.Device, queue hal.Queue) *ParticleCompute {
	return &ParticleCompute{
		device: device,
		queue:  queue,
	}
}

// Destroy releases all GPU resources held by the dispatcher. Safe to call
// multiple times or on a dispatcher with no allocated resources.
func (pc *ParticleCompute) Destroy() {
	if pc.device == nil {
		return
	}
	if pc.pipeline != nil {
		pc.device.DestroyComputePipeline(pc.pipeline)
		pc.pipeline = nil
	}
	if pc.pipeLayout != nil {
		pc.device.DestroyPipelineLayout(pc.pipeLayout)
		pc.pipeLayout = nil
	}
	if pc.bindLayout != nil {
		pc.device.DestroyBindGroupLayout(pc.bindLayout)
		pc.bindLayout = nil
	}
	if pc.shader != nil {
		pc.device.DestroyShaderModule(pc.shader)
		pc.shader = nil
	}
}

// ensurePipeline compiles the integration shader and creates the compute
// pipeline if they don't already exist.
func (pc *ParticleCompute) ensurePipeline() error {
	if pc.pipeline != nil {
		return nil
	}

	if updateShaderSource == "" {
		return fmt.Errorf("update shader source is empty")
	}

	spirvCode, err := compileToSPIRV(updateShaderSource)
	if err != nil {
		return fmt.Errorf("compile update shader: %w", err)
	}
	pc.spirvCode = spirvCode

	shader, err := pc.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "particle_update_shader",
		Source: hal.ShaderSource{SPIRV: pc.spirvCode},
	})
	if err != nil {
		return fmt.Errorf("create update shader module: %w", err)
	}
	pc.shader = shader

	// @binding(0) storage(read_write) particles
	// @binding(1) uniform params
	bindLayout, err := pc.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "particle_update_bgl",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageCompute,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageCompute,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create update bind group layout: %w", err)
	}
	pc.bindLayout = bindLayout

	pipeLayout, err := pc.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "particle_update_pl",
		BindGroupLayouts: []hal.BindGroupLayout{pc.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create update pipeline layout: %w", err)
	}
	pc.pipeLayout = pipeLayout

	pipeline, err := pc.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  "particle_update_pipeline",
		Layout: pc.pipeLayout,
		Compute: hal.ComputeState{
			Module:     pc.shader,
			EntryPoint: "main",
		},
	})
	if err != nil {
		return fmt.Errorf("create update pipeline: %w", err)
	}
	pc.pipeline = pipeline

	slogger().Debug("particle compute: pipeline created",
		"workgroup_size", updateWGSize,
		"spirv_words", len(pc.spirvCode))
	return nil
}

// workgroupCount returns the number of workgroups needed to cover count
// particles. This performs ceiling division:
//
//	workgroups = (count + updateWGSize - 1) / updateWGSize
func workgroupCount(count uint32) uint32 {
	return (count + updateWGSize - 1) / updateWGSize
}

// RecordUpdate records the integration compute pass into an existing
// command encoder. The particle buffer is written in place; recording this
// pass before the render pass on the same encoder makes the writes visible
// to the vertex stage. This is a no-op if resources is nil or holds no
// particles.
func (pc *ParticleCompute) RecordUpdate(encoder hal.CommandEncoder, resources *computeFrameResources) {
	if resources == nil || resources.count == 0 {
		return
	}
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{
		Label: "particle_update",
	})
	pass.SetPipeline(pc.pipeline)
	pass.SetBindGroup(0, resources.bindGroup, nil)
	pass.Dispatch(workgroupCount(resources.count), 1, 1)
	pass.End()

	slogger().Debug("particle compute: dispatched",
		"particles", resources.count,
		"workgroups", workgroupCount(resources.count))
}

// computeFrameResources holds per-frame GPU resources for the integration
// pass. The particle buffer bound at binding 0 is the session's and is not
// owned here.
type computeFrameResources struct {
	paramsBuf hal.Buffer
	bindGroup hal.BindGroup
	count     uint32
}

func (r *computeFrameResources) destroy(device hal.Device) {
	if r.bindGroup != nil {
		device.DestroyBindGroup(r.bindGroup)
	}
	if r.paramsBuf != nil {
		device.DestroyBuffer(r.paramsBuf)
	}
}
