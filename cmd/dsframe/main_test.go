// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"image"
	"image/color"
	"testing"
)

func TestScene(t *testing.T) {
	fs, err := scene()
	if err != nil {
		t.Fatal(err)
	}
	if len(fs.Polygons) != 4 {
		t.Fatalf("got %d polygons, want 4", len(fs.Polygons))
	}
	degenerate := fs.Polygons[3]
	if degenerate.YTop != degenerate.YBottom {
		t.Errorf("sliver spans %d..%d, want a single row", degenerate.YTop, degenerate.YBottom)
	}
	if !fs.Polygons[2].IsShadowMask {
		t.Error("third polygon should be a shadow mask")
	}
	if !fs.Polygons[1].Translucent {
		t.Error("quad should be translucent")
	}
}

func TestExpand(t *testing.T) {
	tests := []struct {
		in       uint32
		six, fiv uint8
	}{
		{0, 0, 0},
		{31, 0x7D, 0xFF},
		{63, 0xFF, 0xFF},
	}
	for _, tt := range tests {
		if got := expand6(tt.in); got != tt.six {
			t.Errorf("expand6(%d) = %#x, want %#x", tt.in, got, tt.six)
		}
		if tt.in <= 31 {
			if got := expand5(tt.in); got != tt.fiv {
				t.Errorf("expand5(%d) = %#x, want %#x", tt.in, got, tt.fiv)
			}
		}
	}
}

func TestUpscale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(1, 0, color.RGBA{R: 255, A: 255})

	dst := upscale(src, 3)
	if dst.Bounds().Dx() != 6 || dst.Bounds().Dy() != 3 {
		t.Fatalf("size = %v, want 6x3", dst.Bounds())
	}
	if got := dst.RGBAAt(5, 2); got.R != 255 {
		t.Errorf("pixel (5,2) = %v, want red", got)
	}
	if got := dst.RGBAAt(0, 0); got.R != 0 {
		t.Errorf("pixel (0,0) = %v, want black", got)
	}
}
