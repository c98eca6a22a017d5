// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu3d

import (
	"errors"
	"testing"
)

func vtx(x, y int32) *Vertex {
	return &Vertex{FinalPosition: [2]int32{x, y}}
}

func TestNewPolygonTopBottom(t *testing.T) {
	tests := []struct {
		name            string
		verts           []*Vertex
		wantTop, wantBt int
	}{
		{"triangle", []*Vertex{vtx(10, 0), vtx(0, 20), vtx(30, 10)}, 0, 1},
		{"flat top picks left", []*Vertex{vtx(20, 5), vtx(5, 5), vtx(10, 40)}, 1, 2},
		{"flat bottom picks right", []*Vertex{vtx(0, 0), vtx(3, 9), vtx(8, 9)}, 0, 2},
		{"quad", []*Vertex{vtx(0, 0), vtx(0, 10), vtx(10, 10), vtx(10, 0)}, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := len(tt.verts)
			p, err := NewPolygon(tt.verts, make([]int32, n), make([]int32, n), true)
			if err != nil {
				t.Fatalf("NewPolygon: %v", err)
			}
			if p.VTop != tt.wantTop || p.VBottom != tt.wantBt {
				t.Errorf("VTop/VBottom = %d/%d, want %d/%d", p.VTop, p.VBottom, tt.wantTop, tt.wantBt)
			}
			if p.YTop != tt.verts[tt.wantTop].FinalPosition[1] {
				t.Errorf("YTop = %d", p.YTop)
			}
			if p.YBottom != tt.verts[tt.wantBt].FinalPosition[1] {
				t.Errorf("YBottom = %d", p.YBottom)
			}
		})
	}
}

func TestNewPolygonVertexCount(t *testing.T) {
	two := []*Vertex{vtx(0, 0), vtx(1, 1)}
	if _, err := NewPolygon(two, make([]int32, 2), make([]int32, 2), true); !errors.Is(err, ErrVertexCount) {
		t.Errorf("err = %v, want ErrVertexCount", err)
	}
	three := []*Vertex{vtx(0, 0), vtx(1, 1), vtx(2, 0)}
	if _, err := NewPolygon(three, make([]int32, 2), make([]int32, 3), true); err == nil {
		t.Error("expected error for short depth slice")
	}
}

func TestAttrAccessors(t *testing.T) {
	p := &Polygon{Attr: 0x2A1F0030}
	if got := p.Mode(); got != ModeShadow {
		t.Errorf("Mode() = %d", got)
	}
	if got := p.Alpha(); got != 0x1F {
		t.Errorf("Alpha() = %#x", got)
	}
	if got := p.ID(); got != 0x2A {
		t.Errorf("ID() = %#x", got)
	}
}

func TestTexParamDecoding(t *testing.T) {
	// format 3, 64x128, repeat S + flip T
	param := uint32(3)<<26 | uint32(4)<<23 | uint32(3)<<20 | uint32(0x9)<<16
	if got := TexFormat(param); got != 3 {
		t.Errorf("TexFormat = %d", got)
	}
	if got := TexSampler(param); got != 0x9 {
		t.Errorf("TexSampler = %#x", got)
	}
	if got := TexWidth(param); got != 64 {
		t.Errorf("TexWidth = %d", got)
	}
	if got := TexHeight(param); got != 128 {
		t.Errorf("TexHeight = %d", got)
	}
}

func TestFrameStateWBuffer(t *testing.T) {
	fs := &FrameState{}
	if fs.WBuffer() {
		t.Error("empty frame should use Z-buffering")
	}
	fs.Polygons = []*Polygon{{WBuffer: true}, {WBuffer: false}}
	if !fs.WBuffer() {
		t.Error("first polygon selects W-buffering")
	}
}
