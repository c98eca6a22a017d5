// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package meta packs the global 3D register state of a frame into the
// uniform block every compute stage reads.
package meta

import (
	"encoding/binary"

	"github.com/gogpu/dsgpu/gpu3d"
)

// ClearAttrMask keeps the polygon ID and fog-enable bits of CLEAR_COLOR.
const ClearAttrMask = 0x3F008000

// Size is the byte size of the uniform block. Arrays of uvec4 keep the
// 16-byte stride uniform buffers require.
const Size = 16 + 32*16 + 34*16 + 8*16 + 32

// Uniform mirrors the MetaUniform struct declared in common.wgsl.
type Uniform struct {
	NumPolygons uint32
	NumVariants uint32
	AlphaRef    uint32
	DispCnt     uint32

	ToonTable    [32][4]uint32
	FogDensities [34][4]uint32
	EdgeTable    [8][4]uint32

	FogOffset  uint32
	FogShift   uint32
	FogColor   uint32
	ClearColor uint32

	ClearDepth uint32
	ClearAttr  uint32
}

// Widen expands a 5-bit color channel to 6 bits: shift left by one and add
// one unless the result is zero.
func Widen(c uint32) uint32 {
	c <<= 1
	if c != 0 {
		c++
	}
	return c
}

// widenRGB splits a BGR555 color into widened 6-bit channels.
func widenRGB(c uint32) (r, g, b uint32) {
	return Widen(c & 0x1F), Widen((c >> 5) & 0x1F), Widen((c >> 10) & 0x1F)
}

// packColor widens the color channels of c and stores the 5-bit alpha at
// bits 16-20 of c unchanged in the top byte.
func packColor(c uint32) uint32 {
	r, g, b := widenRGB(c)
	a := (c >> 16) & 0x1F
	return r | g<<8 | b<<16 | a<<24
}

// Pack snapshots the register state of fs.
func Pack(fs *gpu3d.FrameState, numPolygons, numVariants int) Uniform {
	u := Uniform{
		NumPolygons: uint32(numPolygons),
		NumVariants: uint32(numVariants),
		AlphaRef:    fs.AlphaRef,
		DispCnt:     fs.DispCnt,
		FogOffset:   fs.FogOffset,
		FogShift:    fs.FogShift,
		FogColor:    packColor(fs.FogColor),
		ClearColor:  packColor(fs.ClearAttr1),
		ClearDepth:  (fs.ClearAttr2&0x7FFF)*0x200 + 0x1FF,
		ClearAttr:   fs.ClearAttr1 & ClearAttrMask,
	}
	for i, c := range fs.ToonTable {
		r, g, b := widenRGB(uint32(c))
		u.ToonTable[i] = [4]uint32{r, g, b, 0}
	}
	for i, c := range fs.EdgeTable {
		r, g, b := widenRGB(uint32(c))
		u.EdgeTable[i] = [4]uint32{r, g, b, 0}
	}
	for i, d := range fs.FogDensityTable {
		u.FogDensities[i] = [4]uint32{uint32(d), 0, 0, 0}
	}
	return u
}

// Bytes encodes u in little-endian order.
func (u *Uniform) Bytes() []byte {
	le := binary.LittleEndian
	b := make([]byte, 0, Size)
	b = le.AppendUint32(b, u.NumPolygons)
	b = le.AppendUint32(b, u.NumVariants)
	b = le.AppendUint32(b, u.AlphaRef)
	b = le.AppendUint32(b, u.DispCnt)
	b = appendVec4s(b, u.ToonTable[:])
	b = appendVec4s(b, u.FogDensities[:])
	b = appendVec4s(b, u.EdgeTable[:])
	for _, v := range [...]uint32{
		u.FogOffset, u.FogShift, u.FogColor, u.ClearColor,
		u.ClearDepth, u.ClearAttr, 0, 0,
	} {
		b = le.AppendUint32(b, v)
	}
	return b
}

func appendVec4s(b []byte, vs [][4]uint32) []byte {
	for _, v := range vs {
		for _, c := range v {
			b = binary.LittleEndian.AppendUint32(b, c)
		}
	}
	return b
}
