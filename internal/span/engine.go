// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package span walks polygon edges on the host and produces the fixed-point
// records the GPU turns into per-scanline spans.
//
// Every constant in the slope and offset computation reproduces the
// hardware's edge walker: the 18-bit slope comes from a reciprocal that is
// then multiplied, and the initial offsets bias X-major and vertical edges
// the same way the console does. Changing any of them changes which pixels
// a polygon covers.
package span

import (
	"github.com/gogpu/dsgpu/gpu3d"
	"github.com/gogpu/dsgpu/internal/arena"
	"github.com/gogpu/dsgpu/internal/tiling"
)

// Side selects the left or right edge of a polygon.
type Side int

// Left and Right edges.
const (
	Left Side = iota
	Right
)

// Engine accumulates the span records of one frame.
type Engine struct {
	scale int32
	hiRes bool

	setups  *arena.Arena[SpanSetupY]
	indices *arena.Arena[YSpanIndex]
	polys   *arena.Arena[RenderPolygon]

	positions [gpu3d.MaxVertices][2]int32
}

// NewEngine creates an engine for the given layout.
func NewEngine(l tiling.Layout) *Engine {
	e := &Engine{
		setups:  arena.New[SpanSetupY]("span setups", tiling.MaxYSpanSetups),
		indices: arena.New[YSpanIndex]("span indices", l.MaxYSpanIndices),
		polys:   arena.New[RenderPolygon]("polygons", tiling.MaxPolygons),
	}
	e.Configure(l)
	return e
}

// Configure adopts a new layout. It empties the engine.
func (e *Engine) Configure(l tiling.Layout) {
	e.scale = int32(l.Scale)
	e.hiRes = l.HiRes
	e.indices.Resize(l.MaxYSpanIndices)
	e.Reset()
}

// Reset drops the records of the previous frame.
func (e *Engine) Reset() {
	e.setups.Reset()
	e.indices.Reset()
	e.polys.Reset()
}

// Setups returns the edge records of the frame so far.
func (e *Engine) Setups() []SpanSetupY { return e.setups.Items() }

// Indices returns the scanline records of the frame so far.
func (e *Engine) Indices() []YSpanIndex { return e.indices.Items() }

// Polygons returns the render polygons of the frame so far.
func (e *Engine) Polygons() []RenderPolygon { return e.polys.Items() }

// NumSetupIndices is the number of scanline records, which is also the
// number of X spans the GPU will produce.
func (e *Engine) NumSetupIndices() int { return e.indices.Len() }

func (e *Engine) scalePositions(p *gpu3d.Polygon) {
	for i := 0; i < p.NumVertices; i++ {
		v := p.Vertices[i]
		if e.hiRes {
			e.positions[i][0] = (v.HiresPosition[0] * e.scale) >> 4
			e.positions[i][1] = (v.HiresPosition[1] * e.scale) >> 4
		} else {
			e.positions[i][0] = v.FinalPosition[0] * e.scale
			e.positions[i][1] = v.FinalPosition[1] * e.scale
		}
	}
}

// Add walks p and appends its render polygon, edge records and scanline
// records. variant and layer come from the variant batcher. On error the
// frame must be abandoned; the engine holds a partial polygon.
func (e *Engine) Add(p *gpu3d.Polygon, variant, layer uint32) error {
	polyIdx, rp, err := e.polys.Alloc()
	if err != nil {
		return err
	}
	e.scalePositions(p)

	n := p.NumVertices
	ytop := e.positions[p.VTop][1]
	ybot := e.positions[p.VBottom][1]

	*rp = RenderPolygon{
		FirstXSpan:   uint32(e.indices.Len()),
		YTop:         ytop,
		YBot:         ybot,
		XMin:         0x7FFFFFFF,
		XMax:         0,
		Variant:      variant,
		Attr:         p.Attr,
		TextureLayer: layer,
		TexParam:     p.TexParam,
	}

	if ytop == ybot {
		// A polygon flattened onto one scanline still covers that line:
		// emit zero-slope edges at its leftmost and rightmost vertices.
		rp.YBot++

		vtop, vbot := 0, 0
		for j := 1; j < n; j++ {
			if e.positions[j][0] < e.positions[vtop][0] {
				vtop = j
			}
			if e.positions[j][0] > e.positions[vbot][0] {
				vbot = j
			}
		}

		idxL, err := e.addDummy(rp, p, vtop, Left)
		if err != nil {
			return err
		}
		idxR, err := e.addDummy(rp, p, vbot, Right)
		if err != nil {
			return err
		}
		_, err = e.indices.Append(YSpanIndex{
			PolyIdx:  uint32(polyIdx),
			SpanIdxL: uint32(idxL),
			SpanIdxR: uint32(idxR),
			Y:        ytop,
		})
		return err
	}

	curVL, curVR := p.VTop, p.VTop
	nextVL, nextVR := e.step(p, curVL, Left), e.step(p, curVR, Right)

	idxL, err := e.addEdge(rp, p, curVL, nextVL, Left)
	if err != nil {
		return err
	}
	idxR, err := e.addEdge(rp, p, curVR, nextVR, Right)
	if err != nil {
		return err
	}

	for y := ytop; y < ybot; y++ {
		if y >= e.positions[nextVL][1] && curVL != p.VBottom {
			for y >= e.positions[nextVL][1] && curVL != p.VBottom {
				curVL = nextVL
				nextVL = e.step(p, curVL, Left)
			}
			if idxL, err = e.addEdge(rp, p, curVL, nextVL, Left); err != nil {
				return err
			}
		}
		if y >= e.positions[nextVR][1] && curVR != p.VBottom {
			for y >= e.positions[nextVR][1] && curVR != p.VBottom {
				curVR = nextVR
				nextVR = e.step(p, curVR, Right)
			}
			if idxR, err = e.addEdge(rp, p, curVR, nextVR, Right); err != nil {
				return err
			}
		}

		if _, err := e.indices.Append(YSpanIndex{
			PolyIdx:  uint32(polyIdx),
			SpanIdxL: uint32(idxL),
			SpanIdxR: uint32(idxR),
			Y:        y,
		}); err != nil {
			return err
		}
	}
	return nil
}

// step returns the vertex after v when walking the given side. Front-facing
// polygons walk the left side forward through the ring and the right side
// backward; back-facing polygons do the opposite.
func (e *Engine) step(p *gpu3d.Polygon, v int, s Side) int {
	forward := (s == Left) == p.FacingView
	if forward {
		v++
		if v >= p.NumVertices {
			v = 0
		}
		return v
	}
	v--
	if v < 0 {
		v = p.NumVertices - 1
	}
	return v
}

func (e *Engine) setupAttrs(sp *SpanSetupY, p *gpu3d.Polygon, from, to int) {
	vf, vt := p.Vertices[from], p.Vertices[to]
	sp.Z0, sp.Z1 = p.FinalZ[from], p.FinalZ[to]
	sp.W0, sp.W1 = p.FinalW[from], p.FinalW[to]
	sp.ColorR0, sp.ColorG0, sp.ColorB0 = vf.FinalColor[0], vf.FinalColor[1], vf.FinalColor[2]
	sp.ColorR1, sp.ColorG1, sp.ColorB1 = vt.FinalColor[0], vt.FinalColor[1], vt.FinalColor[2]
	sp.TexcoordU0, sp.TexcoordV0 = int32(vf.TexCoords[0]), int32(vf.TexCoords[1])
	sp.TexcoordU1, sp.TexcoordV1 = int32(vt.TexCoords[0]), int32(vt.TexCoords[1])
}

func (rp *RenderPolygon) extend(xmin, xminY, xmax, xmaxY int32) {
	if xmin < rp.XMin {
		rp.XMin, rp.XMinY = xmin, xminY
	}
	if xmax > rp.XMax {
		rp.XMax, rp.XMaxY = xmax, xmaxY
	}
}

func (e *Engine) addDummy(rp *RenderPolygon, p *gpu3d.Polygon, v int, s Side) (int, error) {
	idx, sp, err := e.setups.Alloc()
	if err != nil {
		return 0, err
	}
	e.setupAttrs(sp, p, v, v)

	x0 := e.positions[v][0]
	if s == Right {
		sp.DxInitial = -0x40000
		x0--
	}
	sp.X0, sp.X1 = x0, x0
	sp.XMin, sp.XMax = x0, x0
	sp.Y0 = e.positions[v][1]
	sp.Y1 = sp.Y0
	rp.extend(sp.XMin, sp.Y0, sp.XMax, sp.Y0)

	sp.Increment = 0
	sp.I0, sp.I1, sp.IRecip = 0, 0, 0
	sp.Linear = true
	sp.XCovIncr = 0
	sp.IsDummy = true
	return idx, nil
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// Slope returns the 18-bit fixed-point X step per scanline of an edge
// spanning xlen pixels horizontally and ylen scanlines.
func Slope(dx, xlen, ylen int32) int32 {
	switch {
	case ylen == 0:
		return 0
	case ylen == xlen:
		return 0x40000
	default:
		return abs32(dx * ((1 << 18) / ylen))
	}
}

// InitialDx returns the sub-pixel start offset of an edge.
func InitialDx(increment int32, negative bool, s Side) int32 {
	xMajor := increment > 0x40000
	if s == Right {
		switch {
		case xMajor && negative:
			return 0x60000
		case xMajor:
			return increment - 0x20000
		case increment != 0 && negative:
			return 0x40000
		case increment != 0:
			return 0
		default:
			return -0x40000
		}
	}
	switch {
	case xMajor && negative:
		return (increment - 0x20000) + 0x40000
	case xMajor:
		return 0x20000
	case increment != 0 && negative:
		return 0x40000
	default:
		return 0
	}
}

func (e *Engine) addEdge(rp *RenderPolygon, p *gpu3d.Polygon, from, to int, s Side) (int, error) {
	idx, sp, err := e.setups.Alloc()
	if err != nil {
		return 0, err
	}
	e.setupAttrs(sp, p, from, to)

	sp.X0, sp.X1 = e.positions[from][0], e.positions[to][0]
	sp.Y0, sp.Y1 = e.positions[from][1], e.positions[to][1]

	negative := false
	switch {
	case sp.X1 > sp.X0:
		sp.XMin, sp.XMax = sp.X0, sp.X1-1
		rp.extend(sp.XMin, sp.Y0, sp.XMax, sp.Y1)
	case sp.X1 < sp.X0:
		sp.XMin, sp.XMax = sp.X1, sp.X0-1
		negative = true
		rp.extend(sp.XMin, sp.Y1, sp.XMax, sp.Y0)
	default:
		sp.XMin = sp.X0
		if s == Right {
			sp.XMin--
		}
		sp.XMax = sp.XMin
		rp.extend(sp.XMin, sp.Y0, sp.XMax, sp.Y0)
	}

	xlen := sp.XMax + 1 - sp.XMin
	ylen := sp.Y1 - sp.Y0

	sp.Increment = Slope(sp.X1-sp.X0, xlen, ylen)
	sp.DxInitial = InitialDx(sp.Increment, negative, s)

	if sp.Increment > 0x40000 {
		sp.I0, sp.I1 = sp.X0, sp.X1
		if s == Right {
			sp.I0--
			sp.I1--
		}
		sp.XCovIncr = (ylen << 10) / xlen
	} else {
		sp.I0, sp.I1 = sp.Y0, sp.Y1
	}

	if sp.I0 != sp.I1 {
		sp.IRecip = (1 << 30) / (sp.I1 - sp.I0)
	} else {
		sp.IRecip = 0
	}

	// Bits 1-6 are tested; bit 0 is handled by the parity correction below.
	sp.Linear = sp.W0 == sp.W1 && sp.W0&0x7E == 0 && sp.W1&0x7E == 0

	if sp.W0&1 != 0 && sp.W1&1 == 0 {
		sp.W0n = (sp.W0 - 1) >> 1
		sp.W0d = (sp.W0 + 1) >> 1
		sp.W1d = sp.W1 >> 1
	} else {
		sp.W0n = sp.W0 >> 1
		sp.W0d = sp.W0 >> 1
		sp.W1d = sp.W1 >> 1
	}
	return idx, nil
}
