// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu drives the compute kernels of the 3D renderer through the
// gogpu/wgpu HAL.
//
// # Architecture Overview
//
// A frame is a single command buffer holding one compute pass per stage:
//
//	ClearCoarseBinMask -> ClearIndirectWorkCount -> InterpXSpans -> BinCombined
//	    -> CalcOffsets -> SortWork -> Rasterise (per variant) -> DepthBlend -> FinalPass
//
// Every stage that reads storage written by an earlier one is preceded by a
// storage to storage buffer barrier. SortWork and the per variant Rasterise
// dispatches take their workgroup counts from the bin result header, which
// is copied into an indirect arguments buffer after CalcOffsets.
//
// Key components:
//
//   - Rasterizer: frame orchestration, in-flight tracking and readback
//   - resources: scale dependent buffers and textures plus the group 0 bind group
//   - pipelineSet: bind group layouts and the incremental pipeline builder
//   - textureBinder: samplers and cached per texture bind groups
//   - IndirectDispatch: typed handle to GPU computed dispatch arguments
//
// # Bind Groups
//
// Group 0 is shared by every kernel. Rasterise kernels use a texture array
// and sampler in group 1; the final pass writes the framebuffer and the
// capture texture through group 1. The variant uniform in group 0 is bound
// with a dynamic offset of 256 bytes per variant.
//
// # Resource Lifetime
//
// Command buffers and texture bind groups dropped by the texture cache stay
// alive until Queue.PollCompleted reports their submission finished.
// Changing the resolution scale waits for the device to go idle first.
package gpu
