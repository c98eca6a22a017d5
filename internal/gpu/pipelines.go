// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"

	"github.com/gogpu/dsgpu/internal/shaders"
	"github.com/gogpu/dsgpu/internal/tiling"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ShaderFormat selects how shader source reaches the HAL.
type ShaderFormat int

const (
	// ShaderWGSL passes WGSL text to the backend.
	ShaderWGSL ShaderFormat = iota
	// ShaderSPIRV compiles WGSL to SPIR-V with naga before module creation.
	ShaderSPIRV
)

// String returns the format name.
func (f ShaderFormat) String() string {
	switch f {
	case ShaderWGSL:
		return "WGSL"
	case ShaderSPIRV:
		return "SPIR-V"
	default:
		return fmt.Sprintf("ShaderFormat(%d)", int(f))
	}
}

// variantUniformStride is the distance between per-variant uniform records.
// It matches the minimum dynamic uniform offset alignment.
const variantUniformStride = 256

// variantUniformSize is the bound size of one variant record.
const variantUniformSize = 16

// group0LayoutEntries describes the bindings every kernel shares.
func group0LayoutEntries() []gputypes.BindGroupLayoutEntry {
	uniform := func(binding uint32, dynamic bool, minSize uint64) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer: &gputypes.BufferBindingLayout{
				Type:             gputypes.BufferBindingTypeUniform,
				HasDynamicOffset: dynamic,
				MinBindingSize:   minSize,
			},
		}
	}
	storageRO := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
		}
	}
	storageRW := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
		}
	}

	return []gputypes.BindGroupLayoutEntry{
		uniform(0, false, 0),
		storageRO(1), storageRO(2), storageRO(3),
		storageRW(4), storageRW(5), storageRW(6), storageRW(7), storageRW(8),
		uniform(9, true, variantUniformSize),
	}
}

// rasterLayoutEntries describes the texture array and sampler of group 1.
func rasterLayoutEntries() []gputypes.BindGroupLayoutEntry {
	return []gputypes.BindGroupLayoutEntry{
		{
			Binding:    0,
			Visibility: gputypes.ShaderStageCompute,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2DArray,
			},
		},
		{
			Binding:    1,
			Visibility: gputypes.ShaderStageCompute,
			Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
		},
	}
}

// finalLayoutEntries describes the framebuffer and capture outputs of group 1.
func finalLayoutEntries() []gputypes.BindGroupLayoutEntry {
	storageTexture := func(binding uint32, format gputypes.TextureFormat) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			StorageTexture: &gputypes.StorageTextureBindingLayout{
				Access:        gputypes.StorageTextureAccessWriteOnly,
				Format:        format,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		}
	}
	return []gputypes.BindGroupLayoutEntry{
		storageTexture(0, gputypes.TextureFormatRGBA8Unorm),
		storageTexture(1, gputypes.TextureFormatRGBA8Uint),
	}
}

// pipelineSet owns the bind group layouts and the compute pipelines of every
// permutation. Pipelines are built one per compileStep so hosts can spread
// the work over several frames.
type pipelineSet struct {
	device hal.Device
	format ShaderFormat
	layout tiling.Layout

	group0      hal.BindGroupLayout
	rasterGroup hal.BindGroupLayout
	finalGroup  hal.BindGroupLayout

	plainLayout  hal.PipelineLayout
	rasterLayout hal.PipelineLayout
	finalLayout  hal.PipelineLayout

	modules   [shaders.Count]hal.ShaderModule
	pipelines [shaders.Count]hal.ComputePipeline

	step int
	err  error
}

func newPipelineSet(device hal.Device, format ShaderFormat) (*pipelineSet, error) {
	p := &pipelineSet{device: device, format: format}

	var err error
	if p.group0, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "dsgpu_group0_bgl",
		Entries: group0LayoutEntries(),
	}); err != nil {
		p.destroy()
		return nil, fmt.Errorf("gpu: create shared bind group layout: %w", err)
	}
	if p.rasterGroup, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "dsgpu_raster_bgl",
		Entries: rasterLayoutEntries(),
	}); err != nil {
		p.destroy()
		return nil, fmt.Errorf("gpu: create texture bind group layout: %w", err)
	}
	if p.finalGroup, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "dsgpu_final_bgl",
		Entries: finalLayoutEntries(),
	}); err != nil {
		p.destroy()
		return nil, fmt.Errorf("gpu: create output bind group layout: %w", err)
	}

	layouts := []struct {
		target *hal.PipelineLayout
		label  string
		groups []hal.BindGroupLayout
	}{
		{&p.plainLayout, "dsgpu_plain_pl", []hal.BindGroupLayout{p.group0}},
		{&p.rasterLayout, "dsgpu_raster_pl", []hal.BindGroupLayout{p.group0, p.rasterGroup}},
		{&p.finalLayout, "dsgpu_final_pl", []hal.BindGroupLayout{p.group0, p.finalGroup}},
	}
	for _, l := range layouts {
		pl, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
			Label:            l.label,
			BindGroupLayouts: l.groups,
		})
		if err != nil {
			p.destroy()
			return nil, fmt.Errorf("gpu: create pipeline layout %s: %w", l.label, err)
		}
		*l.target = pl
	}
	return p, nil
}

// reset drops every compiled pipeline and restarts compilation for l.
// A compile failure survives the reset.
func (p *pipelineSet) reset(l tiling.Layout) {
	p.destroyPipelines()
	p.layout = l
	p.step = 0
}

// needsCompile reports whether permutations remain to be built.
func (p *pipelineSet) needsCompile() bool { return p.step < shaders.Count }

// ready reports whether every permutation compiled.
func (p *pipelineSet) ready() bool { return p.err == nil && p.step == shaders.Count }

// pipeline returns the compiled pipeline at permutation index i.
func (p *pipelineSet) pipeline(i int) hal.ComputePipeline { return p.pipelines[i] }

func (p *pipelineSet) pipelineLayout(k shaders.Kind) hal.PipelineLayout {
	switch k {
	case shaders.KindRasterise:
		return p.rasterLayout
	case shaders.KindFinalPass:
		return p.finalLayout
	default:
		return p.plainLayout
	}
}

// compileStep builds the next permutation and returns its index and the
// total count. Once a permutation fails every later call returns the same
// error without advancing.
func (p *pipelineSet) compileStep() (current, count int, err error) {
	count = shaders.Count
	if p.err != nil {
		return p.step, count, p.err
	}
	if p.step >= count {
		return count, count, nil
	}

	current = p.step
	perm := shaders.All()[current]
	if err := p.build(current, perm); err != nil {
		p.err = fmt.Errorf("%w: %s: %w", ErrShaderCompile, perm.Name(), err)
		return current, count, p.err
	}
	p.step++
	if p.step == count {
		slogger().Info("gpu: all pipelines compiled",
			"scale", p.layout.Scale,
			"format", p.format.String())
	}
	return current, count, nil
}

func (p *pipelineSet) build(i int, perm shaders.Permutation) error {
	src, err := shaders.Source(perm, p.layout)
	if err != nil {
		return err
	}

	source := hal.ShaderSource{WGSL: src}
	if p.format == ShaderSPIRV {
		code, err := shaders.CompileSPIRV(src)
		if err != nil {
			return err
		}
		source = hal.ShaderSource{SPIRV: code}
	}

	name := perm.Name()
	module, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  name,
		Source: source,
	})
	if err != nil {
		return fmt.Errorf("create shader module: %w", err)
	}

	pipeline, err := p.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  name,
		Layout: p.pipelineLayout(perm.Kind),
		Compute: hal.ComputeState{
			Module:     module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		p.device.DestroyShaderModule(module)
		return fmt.Errorf("create compute pipeline: %w", err)
	}

	p.modules[i] = module
	p.pipelines[i] = pipeline

	slogger().Debug("gpu: pipeline created",
		"permutation", name,
		"index", i,
		"shader_bytes", len(src))
	return nil
}

func (p *pipelineSet) destroyPipelines() {
	for i := range p.pipelines {
		if p.pipelines[i] != nil {
			p.device.DestroyComputePipeline(p.pipelines[i])
			p.pipelines[i] = nil
		}
		if p.modules[i] != nil {
			p.device.DestroyShaderModule(p.modules[i])
			p.modules[i] = nil
		}
	}
}

// destroy releases pipelines first, then pipeline layouts, then bind group
// layouts.
func (p *pipelineSet) destroy() {
	p.destroyPipelines()
	for _, pl := range []*hal.PipelineLayout{&p.plainLayout, &p.rasterLayout, &p.finalLayout} {
		if *pl != nil {
			p.device.DestroyPipelineLayout(*pl)
			*pl = nil
		}
	}
	for _, bgl := range []*hal.BindGroupLayout{&p.group0, &p.rasterGroup, &p.finalGroup} {
		if *bgl != nil {
			p.device.DestroyBindGroupLayout(*bgl)
			*bgl = nil
		}
	}
}
