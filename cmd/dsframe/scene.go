// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import "github.com/gogpu/dsgpu/gpu3d"

// Polygon attribute fields.
const (
	attrAlphaShift = 16
	attrIDShift    = 24
)

type vertex struct {
	x, y    int32
	r, g, b int32
}

// scene builds a frame with an opaque gradient triangle, a translucent quad,
// a shadow mask polygon and a degenerate horizontal sliver.
func scene() (*gpu3d.FrameState, error) {
	fs := &gpu3d.FrameState{
		DispCnt:    gpu3d.DispCntAlphaBlend | gpu3d.DispCntAntiAlias,
		ClearAttr1: 6<<10 | 2<<5 | 1 | 31<<attrAlphaShift | 63<<attrIDShift,
		ClearAttr2: 0x7FFF,
	}
	for i := range fs.ToonTable {
		c := uint16(i)
		fs.ToonTable[i] = c | c<<5 | c<<10
	}

	polys := []struct {
		attr   uint32
		shadow bool
		z      int32
		verts  []vertex
	}{
		{
			attr: 31<<attrAlphaShift | 1<<attrIDShift,
			z:    0x2000,
			verts: []vertex{
				{128, 16, 511, 0, 0},
				{232, 176, 0, 511, 0},
				{24, 176, 0, 0, 511},
			},
		},
		{
			attr: 16<<attrAlphaShift | 2<<attrIDShift,
			z:    0x1000,
			verts: []vertex{
				{64, 48, 511, 511, 511},
				{192, 48, 511, 511, 511},
				{192, 144, 511, 320, 0},
				{64, 144, 511, 320, 0},
			},
		},
		{
			attr:   gpu3d.ModeShadow<<4 | 20<<attrAlphaShift | 3<<attrIDShift,
			shadow: true,
			z:      0x1800,
			verts: []vertex{
				{96, 100, 0, 0, 0},
				{160, 100, 0, 0, 0},
				{128, 160, 0, 0, 0},
			},
		},
		{
			attr: 31<<attrAlphaShift | 4<<attrIDShift,
			z:    0x0800,
			verts: []vertex{
				{16, 184, 511, 511, 0},
				{240, 184, 511, 511, 0},
				{128, 184, 511, 511, 0},
			},
		},
	}

	for _, p := range polys {
		vs := make([]*gpu3d.Vertex, len(p.verts))
		z := make([]int32, len(p.verts))
		w := make([]int32, len(p.verts))
		for i, v := range p.verts {
			vs[i] = &gpu3d.Vertex{
				FinalPosition: [2]int32{v.x, v.y},
				HiresPosition: [2]int32{v.x << 4, v.y << 4},
				FinalColor:    [3]int32{v.r, v.g, v.b},
			}
			z[i] = p.z
			w[i] = 0x1000
		}
		poly, err := gpu3d.NewPolygon(vs, z, w, true)
		if err != nil {
			return nil, err
		}
		poly.Attr = p.attr
		poly.IsShadowMask = p.shadow
		poly.Translucent = poly.Alpha() < 31
		fs.Polygons = append(fs.Polygons, poly)
	}
	return fs, nil
}
