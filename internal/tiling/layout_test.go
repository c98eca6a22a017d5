// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tiling

import (
	"errors"
	"testing"
)

func TestTileScaleFor(t *testing.T) {
	tests := []struct {
		scale, want int
	}{
		{1, 1}, {2, 1}, {4, 1},
		{5, 2}, {6, 2}, {8, 2},
		{9, 4}, {12, 4}, {16, 4},
	}
	for _, tt := range tests {
		if got := TileScaleFor(tt.scale); got != tt.want {
			t.Errorf("TileScaleFor(%d) = %d, want %d", tt.scale, got, tt.want)
		}
	}
}

func TestNewNativeScale(t *testing.T) {
	l, err := New(1, false)
	if err != nil {
		t.Fatal(err)
	}
	if l.ScreenWidth != 256 || l.ScreenHeight != 192 {
		t.Errorf("screen = %dx%d", l.ScreenWidth, l.ScreenHeight)
	}
	if l.TileSize != 8 || l.TilesPerLine != 32 || l.TileLines != 24 {
		t.Errorf("tiles = %d %dx%d", l.TileSize, l.TilesPerLine, l.TileLines)
	}
	if l.CoarseTilesX != 4 || l.CoarseTilesY != 6 {
		t.Errorf("coarse = %dx%d", l.CoarseTilesX, l.CoarseTilesY)
	}
	if l.MaxWorkTiles != 32*24*16 {
		t.Errorf("MaxWorkTiles = %d", l.MaxWorkTiles)
	}
	if l.ClearCoarseBinMaskGroups() != 24 {
		t.Errorf("clear groups = %d", l.ClearCoarseBinMaskGroups())
	}
}

func TestScaleChangeOneToFour(t *testing.T) {
	l1, _ := New(1, false)
	l4, err := New(4, false)
	if err != nil {
		t.Fatal(err)
	}
	if l4.ScreenWidth != 4*l1.ScreenWidth || l4.ScreenHeight != 4*l1.ScreenHeight {
		t.Errorf("screen = %dx%d", l4.ScreenWidth, l4.ScreenHeight)
	}
	if l4.ScreenWidth != 1024 || l4.ScreenHeight != 768 {
		t.Errorf("screen = %dx%d, want 1024x768", l4.ScreenWidth, l4.ScreenHeight)
	}
	want := uint64(4 * l4.TileSize * l4.TileSize * l4.MaxWorkTiles)
	if got := l4.TileMemoryLayerSize(); got != want {
		t.Errorf("tile layer = %d, want %d", got, want)
	}
	if l4.TileMemorySize() != 3*want {
		t.Errorf("tile memory = %d", l4.TileMemorySize())
	}
}

func TestCoarseGridCoversOddScales(t *testing.T) {
	for scale := 1; scale <= MaxScale; scale++ {
		l, err := New(scale, false)
		if err != nil {
			t.Fatal(err)
		}
		if l.ScreenWidth%l.TileSize != 0 || l.ScreenHeight%l.TileSize != 0 {
			t.Errorf("scale %d: screen not a multiple of the tile size", scale)
		}
		if l.CoarseTilesX*CoarseTileCountX < l.TilesPerLine || l.CoarseTilesY*CoarseTileCountY < l.TileLines {
			t.Errorf("scale %d: coarse grid %dx%d misses tiles", scale, l.CoarseTilesX, l.CoarseTilesY)
		}
	}
}

func TestIdenticalSettingsCompareEqual(t *testing.T) {
	a, _ := New(3, true)
	b, _ := New(3, true)
	if a != b {
		t.Error("identical settings produced different layouts")
	}
	c, _ := New(3, false)
	if a == c {
		t.Error("hi-res flag must be part of the layout identity")
	}
}

func TestInvalidScale(t *testing.T) {
	for _, s := range []int{0, -1, MaxScale + 1} {
		if _, err := New(s, false); !errors.Is(err, ErrInvalidScale) {
			t.Errorf("New(%d) err = %v", s, err)
		}
	}
}

func TestBinResultRegions(t *testing.T) {
	l, _ := New(2, false)
	if l.FineMaskOffset() != BinHeaderWords {
		t.Error("fine masks must follow the header")
	}
	if l.WorkBaseOffset()-l.FineMaskOffset() != l.Tiles()*BinStride {
		t.Error("work bases overlap fine masks")
	}
	end := uint64(l.CoarseMaskOffset()+l.Tiles()*CoarseBinStride) * 4
	if l.BinResultSize() != end {
		t.Errorf("BinResultSize = %d, want %d", l.BinResultSize(), end)
	}
	if BinHeaderSize()%16 != 0 {
		t.Errorf("header size %d must keep 16-byte alignment", BinHeaderSize())
	}
}
