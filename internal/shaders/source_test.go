// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shaders

import (
	"strings"
	"testing"

	"github.com/gogpu/dsgpu/internal/tiling"
)

func mustLayout(t *testing.T, scale int) tiling.Layout {
	t.Helper()
	l, err := tiling.New(scale, false)
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestSourceForEveryPermutation(t *testing.T) {
	l := mustLayout(t, 1)
	for i, p := range All() {
		src, err := Source(p, l)
		if err != nil {
			t.Fatalf("permutation %d (%s): %v", i, p.Name(), err)
		}
		if !strings.Contains(src, "fn main(") {
			t.Errorf("%s: no entry point", p.Name())
		}
		if !strings.Contains(src, "struct MetaUniform") {
			t.Errorf("%s: common declarations missing", p.Name())
		}
	}
}

func TestSourceHeader(t *testing.T) {
	l := mustLayout(t, 4)
	src, err := Source(All()[Rasterise(true, UseTextureToon)], l)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"const ScreenWidth: u32 = 1024u;",
		"const ScreenHeight: u32 = 768u;",
		"const TileSize: u32 = 8u;",
		"const TilesPerLine: u32 = 128u;",
		"const WBuffer: bool = true;",
		"const UseTexture: bool = true;",
		"const Toon: bool = true;",
		"const Decal: bool = false;",
		"const Fog: bool = false;",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("source missing %q", want)
		}
	}
}

func TestSourceDependsOnScale(t *testing.T) {
	p := All()[BinCombined()]
	a, err := Source(p, mustLayout(t, 1))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Source(p, mustLayout(t, 6))
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("sources for different scales are identical")
	}
	if !strings.Contains(b, "const TileScale: u32 = 2u;") {
		t.Error("scale 6 source does not use tile scale 2")
	}
}

func TestFinalPassFlags(t *testing.T) {
	src, err := Source(All()[FinalPass(FinalFog|FinalAntiAliasing)], mustLayout(t, 1))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"const EdgeMarking: bool = false;",
		"const Fog: bool = true;",
		"const AntiAliasing: bool = true;",
		"const UseTexture: bool = false;",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("source missing %q", want)
		}
	}
}

func TestUnknownTemplate(t *testing.T) {
	if _, err := Template(Kind(99)); err == nil {
		t.Error("expected error for unknown kind")
	}
}

// TestCompileSPIRV checks every permutation's WGSL with naga.
func TestCompileSPIRV(t *testing.T) {
	l := mustLayout(t, 1)
	for _, p := range All() {
		src, err := Source(p, l)
		if err != nil {
			t.Fatal(err)
		}
		words, err := CompileSPIRV(src)
		if err != nil {
			// naga does not cover all of WGSL yet.
			t.Skipf("Skipping: naga cannot compile %s: %v", p.Name(), err)
		}
		if len(words) == 0 || words[0] != 0x07230203 {
			t.Errorf("%s: missing SPIR-V magic", p.Name())
		}
	}
}
