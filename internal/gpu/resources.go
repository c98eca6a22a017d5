// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"

	"github.com/gogpu/dsgpu/internal/meta"
	"github.com/gogpu/dsgpu/internal/tiling"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Capture geometry. The low resolution capture is always native size.
const (
	captureWidth       = tiling.NativeWidth
	captureHeight      = tiling.NativeHeight
	captureBytesPerRow = captureWidth * 4
	captureSize        = captureBytesPerRow * captureHeight
)

// storageTexture is a texture with its single view and tracked usage, so
// transitions always name the correct previous state.
type storageTexture struct {
	tex    hal.Texture
	view   hal.TextureView
	width  uint32
	height uint32
	usage  gputypes.TextureUsage
}

func createStorageTexture(device hal.Device, label string, w, h uint32, format gputypes.TextureFormat, usage gputypes.TextureUsage) (*storageTexture, error) {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create texture %q: %w", label, err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           label + "_view",
		Format:          format,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("gpu: create texture view %q: %w", label, err)
	}
	slogger().Debug("gpu: texture created", "label", label, "width", w, "height", h)
	return &storageTexture{tex: tex, view: view, width: w, height: h}, nil
}

// transition records a barrier to usage if the texture is in another state.
func (t *storageTexture) transition(enc hal.CommandEncoder, usage gputypes.TextureUsage) {
	if t.usage == usage {
		return
	}
	enc.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Range:   hal.TextureRange{Aspect: gputypes.TextureAspectAll},
		Usage: hal.TextureUsageTransition{
			OldUsage: t.usage,
			NewUsage: usage,
		},
	}})
	t.usage = usage
}

func (t *storageTexture) destroy(device hal.Device) {
	if t == nil {
		return
	}
	device.DestroyTextureView(t.view)
	device.DestroyTexture(t.tex)
}

// resources owns every buffer and texture the kernels bind. Buffers whose
// size does not depend on the scale are created once; the rest are
// recreated together by configure.
type resources struct {
	device hal.Device
	layout tiling.Layout
	ready  bool

	metaUniform    *Buffer
	ySpanSetups    *Buffer
	polygons       *Buffer
	variantUniform *Buffer
	indirect       *Buffer
	readback       *Buffer
	lowRes         *storageTexture

	ySpanIndices *Buffer
	xSpanSetups  *Buffer
	binResult    *Buffer
	workDescs    *Buffer
	tileMemory   *Buffer
	finalTiles   *Buffer
	framebuffer  *storageTexture

	group0     hal.BindGroup
	finalGroup hal.BindGroup
}

// bufSpec describes one buffer allocation.
type bufSpec struct {
	target **Buffer
	label  string
	size   uint64
	usage  gputypes.BufferUsage
}

const storageUsage = gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst

func newResources(device hal.Device) (*resources, error) {
	r := &resources{device: device}
	specs := []bufSpec{
		{&r.metaUniform, "dsgpu_meta", meta.Size, gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst},
		{&r.ySpanSetups, "dsgpu_yspan_setups", tiling.YSpanSetupBufferSize(), storageUsage},
		{&r.polygons, "dsgpu_polygons", tiling.RenderPolygonBufferSize(), storageUsage},
		{&r.variantUniform, "dsgpu_variant_uniform", tiling.MaxVariants * variantUniformStride,
			gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst},
		{&r.indirect, "dsgpu_indirect_args", tiling.BinHeaderSize(),
			gputypes.BufferUsageIndirect | gputypes.BufferUsageCopyDst},
		{&r.readback, "dsgpu_capture_readback", captureSize,
			gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst},
	}
	if err := r.createBuffers(specs); err != nil {
		r.destroy()
		return nil, err
	}

	lowRes, err := createStorageTexture(device, "dsgpu_capture", captureWidth, captureHeight,
		gputypes.TextureFormatRGBA8Uint,
		gputypes.TextureUsageStorageBinding|gputypes.TextureUsageCopySrc)
	if err != nil {
		r.destroy()
		return nil, err
	}
	r.lowRes = lowRes
	return r, nil
}

func (r *resources) createBuffers(specs []bufSpec) error {
	for _, s := range specs {
		buf, err := createBuffer(r.device, s.label, s.size, s.usage)
		if err != nil {
			return err
		}
		*s.target = buf
	}
	return nil
}

// sameSizes reports whether a and b allocate identical resources. The
// hi-res flag only changes host-side position scaling.
func sameSizes(a, b tiling.Layout) bool {
	a.HiRes = b.HiRes
	return a == b
}

// configure reallocates the scale-dependent resources for l and rebuilds
// the bind groups that reference them. It reports whether anything was
// reallocated. The caller must ensure no frame is in flight.
func (r *resources) configure(l tiling.Layout, pipes *pipelineSet) (bool, error) {
	if r.ready && sameSizes(r.layout, l) {
		r.layout = l
		return false, nil
	}

	r.destroyScaled()
	r.ready = false
	r.layout = l

	specs := []bufSpec{
		{&r.ySpanIndices, "dsgpu_yspan_indices", l.YSpanIndexBufferSize(), storageUsage},
		{&r.xSpanSetups, "dsgpu_xspan_setups", l.XSpanSetupBufferSize(), gputypes.BufferUsageStorage},
		{&r.binResult, "dsgpu_bin_result", l.BinResultSize(),
			gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc},
		{&r.workDescs, "dsgpu_work_descs", l.WorkDescBufferSize(), gputypes.BufferUsageStorage},
		{&r.tileMemory, "dsgpu_tile_memory", l.TileMemorySize(), gputypes.BufferUsageStorage},
		{&r.finalTiles, "dsgpu_final_tiles", l.FinalTileMemorySize(), gputypes.BufferUsageStorage},
	}
	if err := r.createBuffers(specs); err != nil {
		r.destroyScaled()
		return false, err
	}

	fb, err := createStorageTexture(r.device, "dsgpu_framebuffer",
		uint32(l.ScreenWidth), uint32(l.ScreenHeight),
		gputypes.TextureFormatRGBA8Unorm,
		gputypes.TextureUsageStorageBinding|gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopySrc)
	if err != nil {
		r.destroyScaled()
		return false, err
	}
	r.framebuffer = fb

	if err := r.createBindGroups(pipes); err != nil {
		r.destroyScaled()
		return false, err
	}

	r.ready = true
	slogger().Info("gpu: scale dependent resources allocated",
		"scale", l.Scale,
		"screen", fmt.Sprintf("%dx%d", l.ScreenWidth, l.ScreenHeight),
		"tile_size", l.TileSize,
		"max_work_tiles", l.MaxWorkTiles,
		"tile_memory_bytes", l.TileMemorySize())
	return true, nil
}

func (r *resources) createBindGroups(pipes *pipelineSet) error {
	entries := []gputypes.BindGroupEntry{
		{Binding: 0, Resource: r.metaUniform.binding(0)},
		{Binding: 1, Resource: r.ySpanSetups.binding(0)},
		{Binding: 2, Resource: r.ySpanIndices.binding(0)},
		{Binding: 3, Resource: r.polygons.binding(0)},
		{Binding: 4, Resource: r.xSpanSetups.binding(0)},
		{Binding: 5, Resource: r.binResult.binding(0)},
		{Binding: 6, Resource: r.workDescs.binding(0)},
		{Binding: 7, Resource: r.tileMemory.binding(0)},
		{Binding: 8, Resource: r.finalTiles.binding(0)},
		{Binding: 9, Resource: r.variantUniform.binding(variantUniformSize)},
	}
	bg, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "dsgpu_group0",
		Layout:  pipes.group0,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("gpu: create shared bind group: %w", err)
	}
	r.group0 = bg

	fg, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "dsgpu_final_outputs",
		Layout: pipes.finalGroup,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: r.framebuffer.view.NativeHandle()}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: r.lowRes.view.NativeHandle()}},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create output bind group: %w", err)
	}
	r.finalGroup = fg
	return nil
}

func (r *resources) destroyScaled() {
	if r.finalGroup != nil {
		r.device.DestroyBindGroup(r.finalGroup)
		r.finalGroup = nil
	}
	if r.group0 != nil {
		r.device.DestroyBindGroup(r.group0)
		r.group0 = nil
	}
	for _, b := range []**Buffer{&r.ySpanIndices, &r.xSpanSetups, &r.binResult, &r.workDescs, &r.tileMemory, &r.finalTiles} {
		(*b).Destroy()
		*b = nil
	}
	r.framebuffer.destroy(r.device)
	r.framebuffer = nil
}

func (r *resources) destroy() {
	r.destroyScaled()
	r.ready = false
	for _, b := range []**Buffer{&r.metaUniform, &r.ySpanSetups, &r.polygons, &r.variantUniform, &r.indirect, &r.readback} {
		(*b).Destroy()
		*b = nil
	}
	r.lowRes.destroy(r.device)
	r.lowRes = nil
}
