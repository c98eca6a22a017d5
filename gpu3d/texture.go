// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu3d

import "github.com/gogpu/wgpu/hal"

// Texture is a decoded texture array owned by the texture cache.
type Texture struct {
	// ID identifies the array. Zero means "no texture".
	ID uint32

	// View is a 2D array view over the decoded texels.
	View hal.TextureView
}

// TextureCache decodes and caches textures from VRAM.
//
// GetTexture returns the array holding the texture, the layer inside it and
// a per-texture slot the renderer uses to remember the last variant that
// referenced the texture. The slot may be nil.
type TextureCache interface {
	// Update refreshes textures whose VRAM changed and reports whether any
	// cached texture was invalidated.
	Update(fs *FrameState) bool
	GetTexture(fs *FrameState, texParam, texPalette uint32) (tex Texture, layer uint32, lastVariant *uint32)
	Reset()
}

// TexFormat returns the texture format (0 means no texture).
func TexFormat(texParam uint32) uint32 { return (texParam >> 26) & 0x7 }

// TexSampler returns the repeat and flip bits (repeat S, repeat T, flip S,
// flip T) packed into 4 bits.
func TexSampler(texParam uint32) uint32 { return (texParam >> 16) & 0xF }

// TexWidth returns the texture width in texels.
func TexWidth(texParam uint32) uint32 { return 8 << ((texParam >> 20) & 0x7) }

// TexHeight returns the texture height in texels.
func TexHeight(texParam uint32) uint32 { return 8 << ((texParam >> 23) & 0x7) }
