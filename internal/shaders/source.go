// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shaders

import (
	"embed"
	"fmt"
	"strings"

	"github.com/gogpu/dsgpu/internal/tiling"
)

//go:embed wgsl/*.wgsl
var templates embed.FS

//go:embed wgsl/common.wgsl
var commonSource string

// Template returns the raw WGSL body of a stage.
func Template(k Kind) (string, error) {
	b, err := templates.ReadFile("wgsl/" + k.String() + ".wgsl")
	if err != nil {
		return "", fmt.Errorf("shaders: no template for %s: %w", k, err)
	}
	return string(b), nil
}

// Source assembles the full WGSL of permutation p for layout l: a generated
// constant header, the shared declarations and the stage body.
func Source(p Permutation, l tiling.Layout) (string, error) {
	body, err := Template(p.Kind)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.Grow(len(commonSource) + len(body) + 2048)
	writeHeader(&b, p, l)
	b.WriteString(commonSource)
	b.WriteByte('\n')
	b.WriteString(body)
	return b.String(), nil
}

func writeHeader(b *strings.Builder, p Permutation, l tiling.Layout) {
	u := func(name string, v int) {
		fmt.Fprintf(b, "const %s: u32 = %du;\n", name, v)
	}
	flag := func(name string, v bool) {
		fmt.Fprintf(b, "const %s: bool = %t;\n", name, v)
	}

	fmt.Fprintf(b, "// %s\n", p.Name())
	u("ScreenWidth", l.ScreenWidth)
	u("ScreenHeight", l.ScreenHeight)
	u("Scale", l.Scale)
	u("TileSize", l.TileSize)
	u("TileScale", l.TileScale)
	u("TilesPerLine", l.TilesPerLine)
	u("TileLines", l.TileLines)
	u("CoarseTileCountX", tiling.CoarseTileCountX)
	u("CoarseTileCountY", tiling.CoarseTileCountY)
	u("MaxWorkTiles", l.MaxWorkTiles)
	u("MaxVariants", tiling.MaxVariants)
	u("BinStride", tiling.BinStride)
	u("CoarseBinStride", tiling.CoarseBinStride)
	u("VariantWorkCountOffset", tiling.VariantWorkCountOffset)
	u("SortedWorkOffsetOffset", tiling.SortedWorkOffsetOffset)
	u("SortWorkWorkCountOffset", tiling.SortWorkWorkCountOffset)
	u("FineMaskOffset", l.FineMaskOffset())
	u("WorkBaseOffset", l.WorkBaseOffset())
	u("CoarseMaskOffset", l.CoarseMaskOffset())
	u("TileMemoryLayerWords", l.TileSize*l.TileSize*l.MaxWorkTiles)
	u("FinalLayerWords", l.ScreenWidth*l.ScreenHeight)

	m := p.Raster
	raster := p.Kind == KindRasterise
	flag("WBuffer", p.WBuffer)
	flag("UseTexture", raster && m >= UseTextureDecal && m <= UseTextureHighlight)
	flag("Decal", raster && m == UseTextureDecal)
	flag("Toon", raster && (m == NoTextureToon || m == UseTextureToon))
	flag("Highlight", raster && (m == NoTextureHighlight || m == UseTextureHighlight))
	flag("ShadowMask", raster && m == ShadowMask)
	flag("EdgeMarking", p.Final&FinalEdgeMarking != 0)
	flag("Fog", p.Final&FinalFog != 0)
	flag("AntiAliasing", p.Final&FinalAntiAliasing != 0)
	b.WriteByte('\n')
}
