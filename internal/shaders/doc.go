// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package shaders holds the WGSL compute kernels of the rasterizer and the
// table of their permutations.
//
// Each permutation is a stage template specialised by a generated header of
// constants: the screen and tile geometry of the current scale plus boolean
// feature tags (depth mode, shading mode, final pass effects). The same
// layout therefore always produces the same source, and a change of scale
// requires recompiling every permutation.
package shaders
