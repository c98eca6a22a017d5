// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu3d

// DISP3DCNT bits.
const (
	DispCntTextures     uint32 = 1 << 0
	DispCntHighlight    uint32 = 1 << 1
	DispCntAlphaTest    uint32 = 1 << 2
	DispCntAlphaBlend   uint32 = 1 << 3
	DispCntAntiAlias    uint32 = 1 << 4
	DispCntEdgeMarking  uint32 = 1 << 5
	DispCntFogAlphaOnly uint32 = 1 << 6
	DispCntFog          uint32 = 1 << 7
)

// FrameState is the rendering state latched at the start of a frame.
type FrameState struct {
	Polygons []*Polygon

	DispCnt  uint32
	AlphaRef uint32

	// ClearAttr1 is CLEAR_COLOR: color, fog flag, alpha and polygon ID.
	ClearAttr1 uint32
	// ClearAttr2 is CLEAR_DEPTH: 15-bit depth.
	ClearAttr2 uint32

	// ToonTable and EdgeTable hold BGR555 colors.
	ToonTable [32]uint16
	EdgeTable [8]uint16

	FogDensityTable [34]uint8
	// FogColor is BGR555 in bits 0-14 and alpha in bits 16-20.
	FogColor  uint32
	FogOffset uint32
	FogShift  uint32

	// FrameIdentical is set by the core when nothing that affects the
	// output changed since the last rendered frame.
	FrameIdentical bool
}

// WBuffer reports whether the frame depth-tests with W. The mode is taken
// from the first polygon and applies to the whole frame.
func (fs *FrameState) WBuffer() bool {
	return len(fs.Polygons) > 0 && fs.Polygons[0].WBuffer
}
