// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu3d

import (
	"errors"
	"fmt"
)

// Native screen geometry and hardware limits.
const (
	ScreenWidth  = 256
	ScreenHeight = 192

	// MaxVertices is the largest vertex count of a single polygon
	// after clipping.
	MaxVertices = 10

	// MaxPolygons is the size of the polygon RAM.
	MaxPolygons = 2048
)

// ErrVertexCount is returned by NewPolygon for an unsupported vertex count.
var ErrVertexCount = errors.New("gpu3d: polygon must have between 3 and 10 vertices")

// Vertex is a transformed, lit and clipped vertex.
type Vertex struct {
	// FinalPosition is the screen position in native pixels.
	FinalPosition [2]int32

	// HiresPosition is the screen position with 4 fractional bits.
	HiresPosition [2]int32

	// FinalColor is the shaded vertex color (R, G, B), 9 bits per channel.
	FinalColor [3]int32

	// TexCoords are the transformed texture coordinates in 12.4 fixed point.
	TexCoords [2]int16
}

// Polygon is one entry of the polygon RAM.
type Polygon struct {
	Vertices    [MaxVertices]*Vertex
	NumVertices int

	// FinalZ and FinalW hold per-vertex depth values after normalization.
	FinalZ [MaxVertices]int32
	FinalW [MaxVertices]int32

	// VTop and VBottom index the topmost and bottommost vertices.
	VTop, VBottom int

	// YTop and YBottom are the native screen rows of VTop and VBottom.
	YTop, YBottom int32

	// FacingView is set for front-facing polygons and selects the order in
	// which the vertex ring is walked.
	FacingView bool

	// WBuffer selects W-buffering for the frame when set on the first polygon.
	WBuffer bool

	// IsShadowMask marks the stencil pass of a shadow volume.
	IsShadowMask bool

	// Translucent is set when the polygon alpha or the texture make it
	// translucent.
	Translucent bool

	Attr       uint32
	TexParam   uint32
	TexPalette uint32
}

// NewPolygon builds a polygon from an ordered vertex ring. z and w must have
// one entry per vertex. VTop and VBottom are chosen the way the geometry
// engine does: smallest Y wins for the top, with ties broken by the smaller
// X; largest Y wins for the bottom, with ties broken by the larger X.
func NewPolygon(vertices []*Vertex, z, w []int32, facingView bool) (*Polygon, error) {
	n := len(vertices)
	if n < 3 || n > MaxVertices {
		return nil, fmt.Errorf("%w: got %d", ErrVertexCount, n)
	}
	if len(z) != n || len(w) != n {
		return nil, fmt.Errorf("gpu3d: depth slices have %d/%d entries for %d vertices", len(z), len(w), n)
	}

	p := &Polygon{NumVertices: n, FacingView: facingView}
	copy(p.Vertices[:], vertices)
	copy(p.FinalZ[:], z)
	copy(p.FinalW[:], w)

	top, bot := 0, 0
	for i := 1; i < n; i++ {
		pos := vertices[i].FinalPosition
		tp := vertices[top].FinalPosition
		bp := vertices[bot].FinalPosition
		if pos[1] < tp[1] || (pos[1] == tp[1] && pos[0] < tp[0]) {
			top = i
		}
		if pos[1] > bp[1] || (pos[1] == bp[1] && pos[0] > bp[0]) {
			bot = i
		}
	}
	p.VTop, p.VBottom = top, bot
	p.YTop = vertices[top].FinalPosition[1]
	p.YBottom = vertices[bot].FinalPosition[1]
	return p, nil
}

// Polygon modes stored in Attr bits 4-5.
const (
	ModeModulate = 0
	ModeDecal    = 1
	ModeToon     = 2
	ModeShadow   = 3
)

// Mode returns the polygon mode (modulate, decal, toon/highlight or shadow).
func (p *Polygon) Mode() uint32 { return (p.Attr >> 4) & 0x3 }

// Alpha returns the 5-bit polygon alpha.
func (p *Polygon) Alpha() uint32 { return (p.Attr >> 16) & 0x1F }

// ID returns the 6-bit polygon ID.
func (p *Polygon) ID() uint32 { return (p.Attr >> 24) & 0x3F }
