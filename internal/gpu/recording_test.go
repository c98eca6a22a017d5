// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// recorder collects what the rasterizer asked the device to do.
type recorder struct {
	events    []string
	buffers   map[string]uint64
	allocs    int
	pipelines int
	modules   int
	bindGroup int
	destroyed int

	// failPipeline makes pipeline creation fail for labels with this prefix.
	failPipeline string
}

func newRecorder() *recorder {
	return &recorder{buffers: make(map[string]uint64)}
}

func (r *recorder) add(format string, args ...any) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

// dispatches returns the kernel of every dispatch in recording order.
func (r *recorder) dispatches() []string {
	var out []string
	for _, e := range r.events {
		if rest, ok := strings.CutPrefix(e, "dispatch "); ok {
			out = append(out, strings.Fields(rest)[0])
		}
	}
	return out
}

func (r *recorder) count(prefix string) int {
	n := 0
	for _, e := range r.events {
		if strings.HasPrefix(e, prefix) {
			n++
		}
	}
	return n
}

func (r *recorder) reset() { r.events = r.events[:0] }

// labeledPipeline lets the recording pass name the pipeline it binds.
type labeledPipeline struct{ label string }

func (*labeledPipeline) Destroy() {}

// recordingDevice is a noop device that records allocations and commands.
type recordingDevice struct {
	noop.Device
	rec *recorder
}

func newRecordingDevice() (*recordingDevice, *noop.Queue) {
	return &recordingDevice{rec: newRecorder()}, &noop.Queue{}
}

func (d *recordingDevice) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	d.rec.buffers[desc.Label] = desc.Size
	d.rec.allocs++
	if desc.Usage&gputypes.BufferUsageMapRead == 0 && desc.Size > 1<<20 {
		// Large kernel-only buffers need no host backing.
		return &noop.Resource{}, nil
	}
	return d.Device.CreateBuffer(desc)
}

func (d *recordingDevice) CreateShaderModule(desc *hal.ShaderModuleDescriptor) (hal.ShaderModule, error) {
	d.rec.modules++
	return d.Device.CreateShaderModule(desc)
}

func (d *recordingDevice) CreateComputePipeline(desc *hal.ComputePipelineDescriptor) (hal.ComputePipeline, error) {
	if d.rec.failPipeline != "" && strings.HasPrefix(desc.Label, d.rec.failPipeline) {
		return nil, errors.New("driver rejected pipeline")
	}
	d.rec.pipelines++
	return &labeledPipeline{label: desc.Label}, nil
}

func (d *recordingDevice) CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	d.rec.bindGroup++
	return d.Device.CreateBindGroup(desc)
}

func (d *recordingDevice) DestroyBindGroup(bg hal.BindGroup) {
	d.rec.destroyed++
	d.Device.DestroyBindGroup(bg)
}

func (d *recordingDevice) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	return &recordingEncoder{CommandEncoder: &noop.CommandEncoder{}, rec: d.rec}, nil
}

type recordingEncoder struct {
	*noop.CommandEncoder
	rec *recorder
}

func (e *recordingEncoder) TransitionBuffers(b []hal.BufferBarrier) {
	e.rec.add("barrier %d", len(b))
}

func (e *recordingEncoder) CopyBufferToBuffer(_, _ hal.Buffer, regions []hal.BufferCopy) {
	e.rec.add("copy buffer %d", regions[0].Size)
}

func (e *recordingEncoder) CopyTextureToBuffer(_ hal.Texture, _ hal.Buffer, regions []hal.BufferTextureCopy) {
	e.rec.add("copy texture %dx%d", regions[0].Size.Width, regions[0].Size.Height)
}

func (e *recordingEncoder) BeginComputePass(desc *hal.ComputePassDescriptor) hal.ComputePassEncoder {
	e.rec.add("pass %s", desc.Label)
	return &recordingPass{ComputePassEncoder: &noop.ComputePassEncoder{}, rec: e.rec}
}

type recordingPass struct {
	*noop.ComputePassEncoder
	rec      *recorder
	pipeline string
}

func (p *recordingPass) SetPipeline(pl hal.ComputePipeline) {
	p.pipeline = pl.(*labeledPipeline).label
	p.rec.add("pipeline %s", p.pipeline)
}

func (p *recordingPass) SetBindGroup(index uint32, _ hal.BindGroup, offsets []uint32) {
	p.rec.add("bind %d %v", index, offsets)
}

func (p *recordingPass) Dispatch(x, y, z uint32) {
	p.rec.add("dispatch %s (%d,%d,%d)", p.pipeline, x, y, z)
}

func (p *recordingPass) DispatchIndirect(_ hal.Buffer, offset uint64) {
	p.rec.add("dispatch %s @%d", p.pipeline, offset)
}
