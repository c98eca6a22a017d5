// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package span

import (
	"encoding/binary"

	"github.com/gogpu/dsgpu/internal/tiling"
)

// SpanSetupY describes one polygon edge between two vertices. The GPU
// expands it into one X span per covered scanline.
//
// Field order matches the SpanSetupY struct in common.wgsl.
type SpanSetupY struct {
	// Attributes at both endpoints.
	Z0, Z1, W0, W1            int32
	ColorR0, ColorG0, ColorB0 int32
	ColorR1, ColorG1, ColorB1 int32
	TexcoordU0, TexcoordV0    int32
	TexcoordU1, TexcoordV1    int32

	// Interpolator along the edge.
	I0, I1        int32
	Linear        bool
	IRecip        int32
	W0n, W0d, W1d int32

	// Slope in 18-bit fixed point.
	Increment  int32
	X0, X1     int32
	Y0, Y1     int32
	XMin, XMax int32
	DxInitial  int32

	// XCovIncr is the antialiasing coverage step of X-major edges.
	XCovIncr int32
	IsDummy  bool
}

// YSpanIndex links a scanline to the left and right edges active on it.
type YSpanIndex struct {
	PolyIdx  uint32
	SpanIdxL uint32
	SpanIdxR uint32
	Y        int32
}

// RenderPolygon is the per-frame GPU view of a polygon.
type RenderPolygon struct {
	// FirstXSpan is the index of the polygon's first scanline record.
	FirstXSpan uint32
	YTop, YBot int32

	// Bounding box; XMinY and XMaxY are the rows where the extremes occur.
	XMin, XMax   int32
	XMinY, XMaxY int32

	Variant      uint32
	Attr         uint32
	TextureLayer uint32
	TexParam     uint32
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// AppendSetups encodes setups in the GPU layout, padding each to
// tiling.SpanSetupYSize bytes.
func AppendSetups(dst []byte, setups []SpanSetupY) []byte {
	le := binary.LittleEndian
	for i := range setups {
		s := &setups[i]
		start := len(dst)
		for _, v := range [...]int32{
			s.Z0, s.Z1, s.W0, s.W1,
			s.ColorR0, s.ColorG0, s.ColorB0,
			s.ColorR1, s.ColorG1, s.ColorB1,
			s.TexcoordU0, s.TexcoordV0,
			s.TexcoordU1, s.TexcoordV1,
			s.I0, s.I1,
		} {
			dst = le.AppendUint32(dst, uint32(v))
		}
		dst = le.AppendUint32(dst, b2u(s.Linear))
		for _, v := range [...]int32{
			s.IRecip,
			s.W0n, s.W0d, s.W1d,
			s.Increment,
			s.X0, s.X1, s.Y0, s.Y1,
			s.XMin, s.XMax,
			s.DxInitial,
			s.XCovIncr,
		} {
			dst = le.AppendUint32(dst, uint32(v))
		}
		dst = le.AppendUint32(dst, b2u(s.IsDummy))
		for len(dst)-start < tiling.SpanSetupYSize {
			dst = append(dst, 0)
		}
	}
	return dst
}

// AppendIndices encodes scanline records in the GPU layout.
func AppendIndices(dst []byte, idx []YSpanIndex) []byte {
	le := binary.LittleEndian
	for _, r := range idx {
		dst = le.AppendUint32(dst, r.PolyIdx)
		dst = le.AppendUint32(dst, r.SpanIdxL)
		dst = le.AppendUint32(dst, r.SpanIdxR)
		dst = le.AppendUint32(dst, uint32(r.Y))
	}
	return dst
}

// AppendPolygons encodes render polygons in the GPU layout.
func AppendPolygons(dst []byte, polys []RenderPolygon) []byte {
	le := binary.LittleEndian
	for _, p := range polys {
		dst = le.AppendUint32(dst, p.FirstXSpan)
		dst = le.AppendUint32(dst, uint32(p.YTop))
		dst = le.AppendUint32(dst, uint32(p.YBot))
		dst = le.AppendUint32(dst, uint32(p.XMin))
		dst = le.AppendUint32(dst, uint32(p.XMax))
		dst = le.AppendUint32(dst, uint32(p.XMinY))
		dst = le.AppendUint32(dst, uint32(p.XMaxY))
		dst = le.AppendUint32(dst, p.Variant)
		dst = le.AppendUint32(dst, p.Attr)
		dst = le.AppendUint32(dst, p.TextureLayer)
		dst = le.AppendUint32(dst, p.TexParam)
		dst = le.AppendUint32(dst, 0)
	}
	return dst
}
