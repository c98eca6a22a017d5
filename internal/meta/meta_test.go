// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package meta

import (
	"encoding/binary"
	"testing"

	"github.com/gogpu/dsgpu/gpu3d"
)

func TestWidenAllChannelValues(t *testing.T) {
	for c := uint32(0); c < 32; c++ {
		want := c << 1
		if want != 0 {
			want |= 1
		}
		if got := Widen(c); got != want {
			t.Errorf("Widen(%d) = %d, want %d", c, got, want)
		}
	}
	if Widen(0) != 0 || Widen(31) != 63 {
		t.Errorf("Widen(0)=%d Widen(31)=%d", Widen(0), Widen(31))
	}
}

func TestPackClearState(t *testing.T) {
	fs := &gpu3d.FrameState{
		// r=31 g=0 b=16, fog bit, alpha 0x1F, polygon ID 0x3F
		ClearAttr1: 0x1F | 16<<10 | 1<<15 | 0x1F<<16 | 0x3F<<24,
		ClearAttr2: 0x7FFF,
	}
	u := Pack(fs, 0, 0)
	wantColor := uint32(63) | 0<<8 | 33<<16 | 0x1F<<24
	if u.ClearColor != wantColor {
		t.Errorf("ClearColor = %#x, want %#x", u.ClearColor, wantColor)
	}
	if u.ClearDepth != 0x7FFF*0x200+0x1FF {
		t.Errorf("ClearDepth = %#x", u.ClearDepth)
	}
	if u.ClearAttr != 1<<15|0x3F<<24 {
		t.Errorf("ClearAttr = %#x", u.ClearAttr)
	}
}

func TestPackTables(t *testing.T) {
	fs := &gpu3d.FrameState{
		DispCnt:  gpu3d.DispCntFog,
		AlphaRef: 7,
		FogColor: 0x7FFF | 0x10<<16,
	}
	fs.ToonTable[3] = 1 | 2<<5 | 3<<10
	fs.EdgeTable[7] = 0x7C00
	fs.FogDensityTable[33] = 0x7F
	u := Pack(fs, 5, 2)

	if u.NumPolygons != 5 || u.NumVariants != 2 || u.AlphaRef != 7 || u.DispCnt != gpu3d.DispCntFog {
		t.Errorf("header = %+v", u)
	}
	if u.ToonTable[3] != [4]uint32{3, 5, 7, 0} {
		t.Errorf("toon[3] = %v", u.ToonTable[3])
	}
	if u.ToonTable[0] != [4]uint32{} {
		t.Errorf("toon[0] = %v, zero must stay zero", u.ToonTable[0])
	}
	if u.EdgeTable[7] != [4]uint32{0, 0, 63, 0} {
		t.Errorf("edge[7] = %v", u.EdgeTable[7])
	}
	if u.FogDensities[33][0] != 0x7F {
		t.Errorf("fog density copied as %#x, want unwidened 0x7f", u.FogDensities[33][0])
	}
	if u.FogColor != 63|63<<8|63<<16|0x10<<24 {
		t.Errorf("FogColor = %#x", u.FogColor)
	}
}

func TestBytesLayout(t *testing.T) {
	fs := &gpu3d.FrameState{ClearAttr2: 1}
	fs.EdgeTable[0] = 0x1F
	u := Pack(fs, 9, 1)
	b := u.Bytes()
	if len(b) != Size {
		t.Fatalf("len = %d, want %d", len(b), Size)
	}
	le := binary.LittleEndian
	if le.Uint32(b[0:]) != 9 {
		t.Error("NumPolygons not first")
	}
	edgeOff := 16 + 32*16 + 34*16
	if le.Uint32(b[edgeOff:]) != 63 {
		t.Errorf("edge[0].r = %d", le.Uint32(b[edgeOff:]))
	}
	tail := edgeOff + 8*16
	if le.Uint32(b[tail+16:]) != 0x200+0x1FF {
		t.Errorf("ClearDepth at tail+16 = %#x", le.Uint32(b[tail+16:]))
	}
}
