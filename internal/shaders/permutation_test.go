// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shaders

import (
	"testing"

	"github.com/gogpu/dsgpu/gpu3d"
)

func TestPermutationCount(t *testing.T) {
	if Count != 33 {
		t.Fatalf("Count = %d, want 33", Count)
	}
	names := make(map[string]int)
	for i, p := range All() {
		if prev, ok := names[p.Name()]; ok {
			t.Errorf("permutation %d and %d share name %q", prev, i, p.Name())
		}
		names[p.Name()] = i
	}
}

func TestPermutationIndices(t *testing.T) {
	all := All()
	tests := []struct {
		name  string
		index int
		want  Permutation
	}{
		{"interp z", InterpXSpans(false), Permutation{Kind: KindInterpXSpans}},
		{"interp w", InterpXSpans(true), Permutation{Kind: KindInterpXSpans, WBuffer: true}},
		{"bin", BinCombined(), Permutation{Kind: KindBinCombined}},
		{"depth blend w", DepthBlend(true), Permutation{Kind: KindDepthBlend, WBuffer: true}},
		{"raster z decal", Rasterise(false, UseTextureDecal), Permutation{Kind: KindRasterise, Raster: UseTextureDecal}},
		{"raster w shadow", Rasterise(true, ShadowMask), Permutation{Kind: KindRasterise, WBuffer: true, Raster: ShadowMask}},
		{"clear coarse", ClearCoarseBinMask(), Permutation{Kind: KindClearCoarseBinMask}},
		{"clear work", ClearIndirectWorkCount(), Permutation{Kind: KindClearIndirectWorkCount}},
		{"offsets", CalculateWorkListOffset(), Permutation{Kind: KindCalculateWorkListOffset}},
		{"sort", SortWork(), Permutation{Kind: KindSortWork}},
		{"final plain", FinalPass(0), Permutation{Kind: KindFinalPass}},
		{"final all", FinalPass(7), Permutation{Kind: KindFinalPass, Final: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := all[tt.index]; got != tt.want {
				t.Errorf("All()[%d] = %+v, want %+v", tt.index, got, tt.want)
			}
		})
	}
	if FinalPass(7) != Count-1 {
		t.Errorf("last final pass at %d, want %d", FinalPass(7), Count-1)
	}
}

func TestRasterModeFor(t *testing.T) {
	tests := []struct {
		textured  bool
		blend     uint32
		highlight bool
		want      RasterMode
	}{
		{false, gpu3d.ModeModulate, false, NoTexture},
		{false, gpu3d.ModeDecal, false, NoTexture},
		{false, gpu3d.ModeToon, false, NoTextureToon},
		{false, gpu3d.ModeToon, true, NoTextureHighlight},
		{false, gpu3d.ModeShadow, false, NoTexture},
		{false, 4, false, ShadowMask},
		{true, gpu3d.ModeModulate, false, UseTextureModulate},
		{true, gpu3d.ModeDecal, true, UseTextureDecal},
		{true, gpu3d.ModeToon, false, UseTextureToon},
		{true, gpu3d.ModeToon, true, UseTextureHighlight},
		{true, gpu3d.ModeShadow, false, UseTextureModulate},
		{true, 4, true, ShadowMask},
	}
	for _, tt := range tests {
		if got := RasterModeFor(tt.textured, tt.blend, tt.highlight); got != tt.want {
			t.Errorf("RasterModeFor(%v, %d, %v) = %v, want %v", tt.textured, tt.blend, tt.highlight, got, tt.want)
		}
	}
}

func TestFinalPassMask(t *testing.T) {
	tests := []struct {
		dispCnt uint32
		want    uint32
	}{
		{0, 0},
		{gpu3d.DispCntEdgeMarking, FinalEdgeMarking},
		{gpu3d.DispCntFog, FinalFog},
		{gpu3d.DispCntAntiAlias, FinalAntiAliasing},
		{gpu3d.DispCntFog | gpu3d.DispCntFogAlphaOnly | gpu3d.DispCntTextures, FinalFog},
		{0xFF, FinalEdgeMarking | FinalFog | FinalAntiAliasing},
	}
	for _, tt := range tests {
		if got := FinalPassMask(tt.dispCnt); got != tt.want {
			t.Errorf("FinalPassMask(%#x) = %#x, want %#x", tt.dispCnt, got, tt.want)
		}
	}
}

func TestKindString(t *testing.T) {
	if got := KindSortWork.String(); got != "sort_work" {
		t.Errorf("String() = %q", got)
	}
	if got := Kind(99).String(); got != "Unknown(99)" {
		t.Errorf("String() = %q", got)
	}
	if got := RasterMode(42).String(); got != "RasterMode(42)" {
		t.Errorf("String() = %q", got)
	}
}
