// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package tiling derives the screen and tile geometry of the compute
// rasterizer from a resolution scale factor, together with the size of every
// buffer that depends on it.
package tiling

import (
	"errors"
	"fmt"
)

// Fixed limits shared by the host and the shaders.
const (
	NativeWidth  = 256
	NativeHeight = 192

	MaxScale = 16

	MaxPolygons = 2048
	MaxVariants = 256

	// MaxYSpanSetups bounds the edge records of one frame: every polygon
	// needs at least two and the geometry engine never produces more than
	// this many in total.
	MaxYSpanSetups = 6144 * 2

	// YSpanIndicesPerScale is the per-scale-unit budget of scanline records.
	YSpanIndicesPerScale = 64 * 2048

	// CoarseTileCountX and CoarseTileCountY give the coarse tile extent in
	// fine tiles. 8x4 fine tiles make one 32-invocation binning workgroup.
	CoarseTileCountX = 8
	CoarseTileCountY = 4

	// BinStride is the number of 32-bit polygon mask words per fine tile.
	BinStride = MaxPolygons / 32
	// CoarseBinStride is the number of words marking non-empty BinStride words.
	CoarseBinStride = BinStride / 32

	// MaxWorkTilesPerTile bounds the average overdraw the work lists hold.
	MaxWorkTilesPerTile = 16
)

// Record sizes in bytes of the GPU-side structures.
const (
	SpanSetupYSize    = 32 * 4
	XSpanSetupSize    = 16 * 4
	YSpanIndexSize    = 4 * 4
	RenderPolygonSize = 12 * 4
	WorkDescSize      = 2 * 4

	// TileLayers are color, depth and attributes.
	TileLayers = 3
	// FinalLayers are the top two surfaces kept for edge marking and
	// antialiasing.
	FinalLayers = 2
)

// Bin result header layout, in 32-bit words.
const (
	VariantWorkCountOffset  = 0
	SortedWorkOffsetOffset  = 4 * MaxVariants
	SortWorkWorkCountOffset = 6 * MaxVariants
	BinHeaderWords          = 6*MaxVariants + 4
)

// ErrInvalidScale is returned for a scale outside [1, MaxScale].
var ErrInvalidScale = errors.New("tiling: invalid scale")

// Layout is the geometry for one resolution scale. Two layouts compare
// equal exactly when every derived size is the same.
type Layout struct {
	Scale int
	HiRes bool

	ScreenWidth  int
	ScreenHeight int

	TileScale int
	TileSize  int

	TilesPerLine int
	TileLines    int

	CoarseTileWidth  int
	CoarseTileHeight int
	CoarseTilesX     int
	CoarseTilesY     int

	MaxWorkTiles    int
	MaxYSpanIndices int
}

// TileScaleFor maps a resolution scale to the fine tile scale:
// 1 up to 4x, 2 from 5x to 8x and 4 from 9x.
func TileScaleFor(scale int) int {
	switch {
	case scale <= 4:
		return 1
	case scale <= 8:
		return 2
	default:
		return 4
	}
}

// New derives the layout for scale. hiRes only selects how vertex positions
// are scaled; it does not change any size.
func New(scale int, hiRes bool) (Layout, error) {
	if scale < 1 || scale > MaxScale {
		return Layout{}, fmt.Errorf("%w: %d", ErrInvalidScale, scale)
	}
	l := Layout{
		Scale:        scale,
		HiRes:        hiRes,
		ScreenWidth:  NativeWidth * scale,
		ScreenHeight: NativeHeight * scale,
		TileScale:    TileScaleFor(scale),
	}
	l.TileSize = 8 * l.TileScale
	l.TilesPerLine = l.ScreenWidth / l.TileSize
	l.TileLines = l.ScreenHeight / l.TileSize
	l.CoarseTileWidth = CoarseTileCountX * l.TileSize
	l.CoarseTileHeight = CoarseTileCountY * l.TileSize
	l.CoarseTilesX = divCeil(l.ScreenWidth, l.CoarseTileWidth)
	l.CoarseTilesY = divCeil(l.ScreenHeight, l.CoarseTileHeight)
	l.MaxWorkTiles = l.TilesPerLine * l.TileLines * MaxWorkTilesPerTile
	l.MaxYSpanIndices = YSpanIndicesPerScale * scale
	return l, nil
}

// Tiles returns the number of fine tiles on screen.
func (l Layout) Tiles() int { return l.TilesPerLine * l.TileLines }

// TileMemoryLayerSize is the byte size of one tile memory layer: one 32-bit
// value per pixel of every work tile.
func (l Layout) TileMemoryLayerSize() uint64 {
	return 4 * uint64(l.TileSize) * uint64(l.TileSize) * uint64(l.MaxWorkTiles)
}

// TileMemorySize covers the color, depth and attribute layers.
func (l Layout) TileMemorySize() uint64 { return TileLayers * l.TileMemoryLayerSize() }

// FinalTileMemorySize holds two surfaces of color, depth and attributes
// for every screen pixel.
func (l Layout) FinalTileMemorySize() uint64 {
	return 4 * TileLayers * FinalLayers * uint64(l.ScreenWidth) * uint64(l.ScreenHeight)
}

// WorkDescBufferSize holds the unsorted and the sorted work lists.
func (l Layout) WorkDescBufferSize() uint64 {
	return uint64(l.MaxWorkTiles) * WorkDescSize * 2
}

// Bin result regions, in 32-bit words from the start of the buffer.

// FineMaskOffset is where the per-tile polygon masks start.
func (l Layout) FineMaskOffset() int { return BinHeaderWords }

// WorkBaseOffset is where the per-tile, per-mask-word work slot bases start.
func (l Layout) WorkBaseOffset() int { return l.FineMaskOffset() + l.Tiles()*BinStride }

// CoarseMaskOffset is where the per-tile non-empty word masks start.
func (l Layout) CoarseMaskOffset() int { return l.WorkBaseOffset() + l.Tiles()*BinStride }

// BinResultSize is the byte size of the bin result buffer.
func (l Layout) BinResultSize() uint64 {
	return 4 * uint64(l.CoarseMaskOffset()+l.Tiles()*CoarseBinStride)
}

// BinHeaderSize is the byte size of the indirect-arguments header.
func BinHeaderSize() uint64 { return 4 * BinHeaderWords }

// YSpanIndexBufferSize covers every scanline record of a frame.
func (l Layout) YSpanIndexBufferSize() uint64 {
	return uint64(l.MaxYSpanIndices) * YSpanIndexSize
}

// XSpanSetupBufferSize holds one expanded span per scanline record.
func (l Layout) XSpanSetupBufferSize() uint64 {
	return uint64(l.MaxYSpanIndices) * XSpanSetupSize
}

// YSpanSetupBufferSize is independent of the scale.
func YSpanSetupBufferSize() uint64 { return MaxYSpanSetups * SpanSetupYSize }

// RenderPolygonBufferSize is independent of the scale.
func RenderPolygonBufferSize() uint64 { return MaxPolygons * RenderPolygonSize }

// ClearCoarseBinMaskGroups is the workgroup count of the coarse mask clear:
// one invocation per fine tile, 32 per workgroup.
func (l Layout) ClearCoarseBinMaskGroups() uint32 { return uint32(divCeil(l.Tiles(), 32)) }

func divCeil(a, b int) int { return (a + b - 1) / b }

// DivCeil32 is ceiling division for workgroup counts.
func DivCeil32(a, b uint32) uint32 { return (a + b - 1) / b }
