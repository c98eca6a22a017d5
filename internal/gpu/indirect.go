// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"github.com/gogpu/dsgpu/internal/tiling"
	"github.com/gogpu/wgpu/hal"
)

// IndirectDispatch names a workgroup count triple that the GPU writes and a
// later dispatch consumes. The counts never travel through host memory.
type IndirectDispatch struct {
	buffer *Buffer
	offset uint64
}

// sortWorkDispatch returns the dispatch sized by the total work tile count.
func sortWorkDispatch(args *Buffer) IndirectDispatch {
	return IndirectDispatch{buffer: args, offset: 4 * tiling.SortWorkWorkCountOffset}
}

// variantDispatch returns the rasterise dispatch of variant v, one
// workgroup per work tile binned for it.
func variantDispatch(args *Buffer, v uint32) IndirectDispatch {
	return IndirectDispatch{buffer: args, offset: 4 * (tiling.VariantWorkCountOffset + 4*uint64(v))}
}

// Offset returns the byte offset of the x, y, z triple.
func (d IndirectDispatch) Offset() uint64 { return d.offset }

func (d IndirectDispatch) encode(pass hal.ComputePassEncoder) {
	pass.DispatchIndirect(d.buffer.Raw(), d.offset)
}
