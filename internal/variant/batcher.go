// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package variant groups polygons by the GPU state they rasterize with, so
// each group can be drawn with a single pipeline, texture and sampler.
package variant

import (
	"github.com/gogpu/dsgpu/gpu3d"
	"github.com/gogpu/dsgpu/internal/arena"
	"github.com/gogpu/dsgpu/internal/tiling"
)

// BlendShadowMask is the blend mode of shadow-volume stencil polygons.
// Modes 0-3 are the polygon modes from the attribute word.
const BlendShadowMask = 4

// Variant is a unique combination of rasterization state in a frame.
type Variant struct {
	Texture   gpu3d.Texture
	Sampler   uint32
	Width     uint32
	Height    uint32
	BlendMode uint32
}

// Textured reports whether the variant samples a texture.
func (v *Variant) Textured() bool { return v.Texture.ID != 0 }

func (v *Variant) matches(texID, sampler, blend uint32) bool {
	return v.Texture.ID == texID && v.Sampler == sampler && v.BlendMode == blend
}

// Batcher assigns variants to the polygons of one frame.
type Batcher struct {
	variants *arena.Arena[Variant]
	cache    gpu3d.TextureCache

	prevValid      bool
	prevTexParam   uint32
	prevTexPalette uint32
	prevBlendAttr  uint32
	prevShadowMask bool
	prevVariant    uint32
	prevLayer      uint32
}

// NewBatcher creates a batcher resolving textures through cache.
func NewBatcher(cache gpu3d.TextureCache) *Batcher {
	return &Batcher{
		variants: arena.New[Variant]("variants", tiling.MaxVariants),
		cache:    cache,
	}
}

// SetCache replaces the texture cache.
func (b *Batcher) SetCache(cache gpu3d.TextureCache) { b.cache = cache }

// Reset starts a new frame.
func (b *Batcher) Reset() {
	b.variants.Reset()
	b.prevValid = false
}

// Variants returns the variants created this frame in creation order.
func (b *Batcher) Variants() []Variant { return b.variants.Items() }

// Len returns the number of variants created this frame.
func (b *Batcher) Len() int { return b.variants.Len() }

// Assign returns the variant and texture array layer for p.
func (b *Batcher) Assign(fs *gpu3d.FrameState, p *gpu3d.Polygon) (id, layer uint32, err error) {
	blendAttr := p.Attr & 0x30

	if b.prevValid &&
		p.TexParam == b.prevTexParam &&
		p.TexPalette == b.prevTexPalette &&
		blendAttr == b.prevBlendAttr &&
		p.IsShadowMask == b.prevShadowMask {
		return b.prevVariant, b.prevLayer, nil
	}

	blend := p.Mode()
	if p.IsShadowMask {
		blend = BlendShadowMask
	}

	var (
		tex     gpu3d.Texture
		sampler uint32
		hint    *uint32
	)
	if fs.DispCnt&gpu3d.DispCntTextures != 0 && gpu3d.TexFormat(p.TexParam) != 0 && b.cache != nil {
		tex, layer, hint = b.cache.GetTexture(fs, p.TexParam, p.TexPalette)
		sampler = gpu3d.TexSampler(p.TexParam)
	}

	id, err = b.lookup(tex, sampler, blend, hint, p.TexParam)
	if err != nil {
		return 0, 0, err
	}

	b.prevValid = true
	b.prevTexParam = p.TexParam
	b.prevTexPalette = p.TexPalette
	b.prevBlendAttr = blendAttr
	b.prevShadowMask = p.IsShadowMask
	b.prevVariant = id
	b.prevLayer = layer
	return id, layer, nil
}

func (b *Batcher) lookup(tex gpu3d.Texture, sampler, blend uint32, hint *uint32, texParam uint32) (uint32, error) {
	items := b.variants.Items()

	if hint != nil && int(*hint) < len(items) && items[*hint].matches(tex.ID, sampler, blend) {
		return *hint, nil
	}

	// Recently created variants are the likeliest match.
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].matches(tex.ID, sampler, blend) {
			if hint != nil {
				*hint = uint32(i)
			}
			return uint32(i), nil
		}
	}

	v := Variant{Texture: tex, Sampler: sampler, BlendMode: blend}
	if tex.ID != 0 {
		v.Width = gpu3d.TexWidth(texParam)
		v.Height = gpu3d.TexHeight(texParam)
	}
	i, err := b.variants.Append(v)
	if err != nil {
		return 0, err
	}
	if hint != nil {
		*hint = uint32(i)
	}
	return uint32(i), nil
}
