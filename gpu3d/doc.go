// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu3d describes the console 3D engine state consumed by the
// compute renderer.
//
// The types here are owned by the emulation core. A [FrameState] and the
// polygons it references are only read during a single RenderFrame call and
// may be reused by the caller afterwards.
//
// Register layouts follow the hardware:
//
//   - DISP3DCNT bits are exposed as the DispCnt* constants.
//   - POLYGON_ATTR is stored verbatim in [Polygon.Attr].
//   - TEXIMAGE_PARAM is stored verbatim in [Polygon.TexParam] and decoded by
//     the Tex* helpers.
//   - CLEAR_COLOR and CLEAR_DEPTH are stored in [FrameState.ClearAttr1] and
//     [FrameState.ClearAttr2].
package gpu3d
