// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"

	"github.com/gogpu/dsgpu/gpu3d"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Sampler bits as packed by gpu3d.TexSampler.
const (
	samplerRepeatS = 1 << 0
	samplerRepeatT = 1 << 1
	samplerFlipS   = 1 << 2
	samplerFlipT   = 1 << 3

	samplerCount = 16
)

// addressMode maps one axis of the repeat and flip bits to a sampler mode.
// Flip without repeat has no effect.
func addressMode(repeat, flip bool) gputypes.AddressMode {
	switch {
	case repeat && flip:
		return gputypes.AddressModeMirrorRepeat
	case repeat:
		return gputypes.AddressModeRepeat
	default:
		return gputypes.AddressModeClampToEdge
	}
}

// whiteTextureID is the array ID handed out by the built-in cache.
const whiteTextureID = 1

// textureBinder owns the samplers and the per texture bind groups of the
// rasterise kernels. Bind groups are cached by texture array and sampler
// until the texture cache reports a change.
type textureBinder struct {
	device   hal.Device
	layout   hal.BindGroupLayout
	samplers [samplerCount]hal.Sampler

	white *whiteTexture
	cache map[bindKey]hal.BindGroup
}

type bindKey struct {
	texture uint32
	sampler uint32
}

func newTextureBinder(device hal.Device, queue hal.Queue, layout hal.BindGroupLayout) (*textureBinder, error) {
	b := &textureBinder{
		device: device,
		layout: layout,
		cache:  make(map[bindKey]hal.BindGroup),
	}
	for i := range b.samplers {
		s, err := device.CreateSampler(&hal.SamplerDescriptor{
			Label:        fmt.Sprintf("dsgpu_sampler_%d", i),
			AddressModeU: addressMode(i&samplerRepeatS != 0, i&samplerFlipS != 0),
			AddressModeV: addressMode(i&samplerRepeatT != 0, i&samplerFlipT != 0),
			AddressModeW: gputypes.AddressModeClampToEdge,
			MagFilter:    gputypes.FilterModeNearest,
			MinFilter:    gputypes.FilterModeNearest,
			MipmapFilter: gputypes.FilterModeNearest,
			LodMaxClamp:  32,
			Anisotropy:   1,
		})
		if err != nil {
			b.destroy()
			return nil, fmt.Errorf("gpu: create sampler %d: %w", i, err)
		}
		b.samplers[i] = s
	}

	white, err := newWhiteTexture(device, queue)
	if err != nil {
		b.destroy()
		return nil, err
	}
	b.white = white
	return b, nil
}

// bindGroup returns the group 1 bind group for tex and sampler. Untextured
// variants bind the white layer.
func (b *textureBinder) bindGroup(tex gpu3d.Texture, sampler uint32) (hal.BindGroup, error) {
	key := bindKey{texture: tex.ID, sampler: sampler & (samplerCount - 1)}
	if tex.ID == 0 || tex.View == nil {
		key.texture = 0
		tex = b.white.texture()
	}
	if bg, ok := b.cache[key]; ok {
		return bg, nil
	}

	bg, err := b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  fmt.Sprintf("dsgpu_texture_%d_%d", key.texture, key.sampler),
		Layout: b.layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: tex.View.NativeHandle()}},
			{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: b.samplers[key.sampler].NativeHandle()}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create texture bind group: %w", err)
	}
	b.cache[key] = bg
	return bg, nil
}

// invalidate empties the cache and returns the dropped bind groups. The
// caller destroys them once no submission references them.
func (b *textureBinder) invalidate() []hal.BindGroup {
	if len(b.cache) == 0 {
		return nil
	}
	dropped := make([]hal.BindGroup, 0, len(b.cache))
	for k, bg := range b.cache {
		dropped = append(dropped, bg)
		delete(b.cache, k)
	}
	return dropped
}

// cached returns the number of live bind groups.
func (b *textureBinder) cached() int { return len(b.cache) }

func (b *textureBinder) destroy() {
	for _, bg := range b.invalidate() {
		b.device.DestroyBindGroup(bg)
	}
	for i, s := range b.samplers {
		if s != nil {
			b.device.DestroySampler(s)
			b.samplers[i] = nil
		}
	}
	if b.white != nil {
		b.white.destroy(b.device)
		b.white = nil
	}
}

// whiteTexture is a single opaque white texel in a one layer array.
type whiteTexture struct {
	tex  hal.Texture
	view hal.TextureView
}

func newWhiteTexture(device hal.Device, queue hal.Queue) (*whiteTexture, error) {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "dsgpu_white",
		Size:          hal.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create white texture: %w", err)
	}
	if err := queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, Aspect: gputypes.TextureAspectAll},
		[]byte{0xFF, 0xFF, 0xFF, 0xFF},
		&hal.ImageDataLayout{BytesPerRow: 4, RowsPerImage: 1},
		&hal.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
	); err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("gpu: upload white texture: %w", err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           "dsgpu_white_view",
		Format:          gputypes.TextureFormatRGBA8Unorm,
		Dimension:       gputypes.TextureViewDimension2DArray,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("gpu: create white texture view: %w", err)
	}
	return &whiteTexture{tex: tex, view: view}, nil
}

func (w *whiteTexture) texture() gpu3d.Texture {
	return gpu3d.Texture{ID: whiteTextureID, View: w.view}
}

func (w *whiteTexture) destroy(device hal.Device) {
	device.DestroyTextureView(w.view)
	device.DestroyTexture(w.tex)
}

// whiteCache is the texture cache used when the host supplies none. Every
// texture resolves to layer 0 of the white array and nothing ever changes.
type whiteCache struct {
	white *whiteTexture
	slot  uint32
}

func (c *whiteCache) Update(*gpu3d.FrameState) bool { return false }

func (c *whiteCache) GetTexture(_ *gpu3d.FrameState, _, _ uint32) (gpu3d.Texture, uint32, *uint32) {
	return c.white.texture(), 0, &c.slot
}

func (c *whiteCache) Reset() { c.slot = 0 }
