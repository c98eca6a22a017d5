// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shaders

import (
	"fmt"
	"strings"

	"github.com/gogpu/dsgpu/gpu3d"
)

// Kind identifies the compute stage a permutation implements.
type Kind int

// Stages in dispatch order.
const (
	KindClearCoarseBinMask Kind = iota
	KindClearIndirectWorkCount
	KindInterpXSpans
	KindBinCombined
	KindCalculateWorkListOffset
	KindSortWork
	KindRasterise
	KindDepthBlend
	KindFinalPass
)

// String returns the template name of the stage.
func (k Kind) String() string {
	switch k {
	case KindClearCoarseBinMask:
		return "clear_coarse_bin_mask"
	case KindClearIndirectWorkCount:
		return "clear_indirect_work_count"
	case KindInterpXSpans:
		return "interp_xspans"
	case KindBinCombined:
		return "bin_combined"
	case KindCalculateWorkListOffset:
		return "calc_work_list_offset"
	case KindSortWork:
		return "sort_work"
	case KindRasterise:
		return "rasterise"
	case KindDepthBlend:
		return "depth_blend"
	case KindFinalPass:
		return "final_pass"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// RasterMode selects the shading of a rasterise permutation.
type RasterMode int

// Rasterise shading modes.
const (
	NoTexture RasterMode = iota
	NoTextureToon
	NoTextureHighlight
	UseTextureDecal
	UseTextureModulate
	UseTextureToon
	UseTextureHighlight
	ShadowMask

	rasterModeCount
)

var rasterModeNames = [rasterModeCount]string{
	"NoTexture", "NoTextureToon", "NoTextureHighlight",
	"UseTextureDecal", "UseTextureModulate", "UseTextureToon", "UseTextureHighlight",
	"ShadowMask",
}

func (m RasterMode) String() string {
	if m < 0 || m >= rasterModeCount {
		return fmt.Sprintf("RasterMode(%d)", int(m))
	}
	return rasterModeNames[m]
}

// Final pass feature bits.
const (
	FinalEdgeMarking  uint32 = 0x1
	FinalFog          uint32 = 0x2
	FinalAntiAliasing uint32 = 0x4
)

// Permutation indices. Count is the total number of pipelines.
const (
	idxInterpXSpans           = 0
	idxBinCombined            = 2
	idxDepthBlend             = 3
	idxRasterise              = 5
	idxClearCoarseBinMask     = idxRasterise + 2*int(rasterModeCount)
	idxClearIndirectWorkCount = idxClearCoarseBinMask + 1
	idxCalcWorkListOffset     = idxClearCoarseBinMask + 2
	idxSortWork               = idxClearCoarseBinMask + 3
	idxFinalPass              = idxClearCoarseBinMask + 4

	Count = idxFinalPass + 8
)

// Permutation is one compiled pipeline: a stage template plus the feature
// tags baked into its header.
type Permutation struct {
	Kind Kind

	WBuffer bool
	Raster  RasterMode
	Final   uint32
}

// Name returns a unique label such as "Rasterise WBuffer UseTextureToon".
func (p Permutation) Name() string {
	var b strings.Builder
	b.WriteString(p.Kind.String())
	switch p.Kind {
	case KindInterpXSpans, KindDepthBlend, KindRasterise:
		if p.WBuffer {
			b.WriteString(" WBuffer")
		} else {
			b.WriteString(" ZBuffer")
		}
	}
	if p.Kind == KindRasterise {
		b.WriteString(" " + p.Raster.String())
	}
	if p.Kind == KindFinalPass {
		if p.Final&FinalEdgeMarking != 0 {
			b.WriteString(" EdgeMarking")
		}
		if p.Final&FinalFog != 0 {
			b.WriteString(" Fog")
		}
		if p.Final&FinalAntiAliasing != 0 {
			b.WriteString(" AntiAliasing")
		}
	}
	return b.String()
}

var permutations = buildPermutations()

func buildPermutations() [Count]Permutation {
	var ps [Count]Permutation
	for i, w := range [...]bool{false, true} {
		ps[idxInterpXSpans+i] = Permutation{Kind: KindInterpXSpans, WBuffer: w}
		ps[idxDepthBlend+i] = Permutation{Kind: KindDepthBlend, WBuffer: w}
		for m := RasterMode(0); m < rasterModeCount; m++ {
			ps[Rasterise(w, m)] = Permutation{Kind: KindRasterise, WBuffer: w, Raster: m}
		}
	}
	ps[idxBinCombined] = Permutation{Kind: KindBinCombined}
	ps[idxClearCoarseBinMask] = Permutation{Kind: KindClearCoarseBinMask}
	ps[idxClearIndirectWorkCount] = Permutation{Kind: KindClearIndirectWorkCount}
	ps[idxCalcWorkListOffset] = Permutation{Kind: KindCalculateWorkListOffset}
	ps[idxSortWork] = Permutation{Kind: KindSortWork}
	for mask := uint32(0); mask < 8; mask++ {
		ps[idxFinalPass+int(mask)] = Permutation{Kind: KindFinalPass, Final: mask}
	}
	return ps
}

// All returns every permutation in compile order.
func All() [Count]Permutation { return permutations }

// InterpXSpans returns the index of the span expansion pipeline.
func InterpXSpans(wbuffer bool) int { return idxInterpXSpans + b2i(wbuffer) }

// BinCombined returns the index of the binning pipeline.
func BinCombined() int { return idxBinCombined }

// DepthBlend returns the index of the depth test and blend pipeline.
func DepthBlend(wbuffer bool) int { return idxDepthBlend + b2i(wbuffer) }

// Rasterise returns the index of a rasterise pipeline.
func Rasterise(wbuffer bool, m RasterMode) int {
	return idxRasterise + b2i(wbuffer)*int(rasterModeCount) + int(m)
}

// ClearCoarseBinMask returns the index of the coarse mask clear pipeline.
func ClearCoarseBinMask() int { return idxClearCoarseBinMask }

// ClearIndirectWorkCount returns the index of the work counter clear pipeline.
func ClearIndirectWorkCount() int { return idxClearIndirectWorkCount }

// CalculateWorkListOffset returns the index of the work list prefix pipeline.
func CalculateWorkListOffset() int { return idxCalcWorkListOffset }

// SortWork returns the index of the work sorting pipeline.
func SortWork() int { return idxSortWork }

// FinalPass returns the index of the final pass pipeline for mask.
func FinalPass(mask uint32) int { return idxFinalPass + int(mask&0x7) }

// FinalPassMask derives the final pass features from DISP3DCNT.
func FinalPassMask(dispCnt uint32) uint32 {
	var mask uint32
	if dispCnt&gpu3d.DispCntEdgeMarking != 0 {
		mask |= FinalEdgeMarking
	}
	if dispCnt&gpu3d.DispCntFog != 0 {
		mask |= FinalFog
	}
	if dispCnt&gpu3d.DispCntAntiAlias != 0 {
		mask |= FinalAntiAliasing
	}
	return mask
}

// rasterModes maps [textured][blend mode][highlight] to a shading mode.
// Blend mode 3 (shadow) draws like modulate; 4 is the stencil pass.
var rasterModes = [2][5][2]RasterMode{
	{
		{NoTexture, NoTexture},
		{NoTexture, NoTexture},
		{NoTextureToon, NoTextureHighlight},
		{NoTexture, NoTexture},
		{ShadowMask, ShadowMask},
	},
	{
		{UseTextureModulate, UseTextureModulate},
		{UseTextureDecal, UseTextureDecal},
		{UseTextureToon, UseTextureHighlight},
		{UseTextureModulate, UseTextureModulate},
		{ShadowMask, ShadowMask},
	},
}

// RasterModeFor picks the shading of a variant. highlight comes from
// DISP3DCNT and chooses highlight over toon shading.
func RasterModeFor(textured bool, blend uint32, highlight bool) RasterMode {
	if blend > 4 {
		blend = 0
	}
	return rasterModes[b2i(textured)][blend][b2i(highlight)]
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
