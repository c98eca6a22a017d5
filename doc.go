// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package dsgpu renders the 3D layer of a Nintendo DS style console GPU with
// compute shaders.
//
// A frame goes through a fixed chain of kernels: the coarse bin mask is
// cleared, edge records built on the host are expanded into per scanline
// spans, polygons are binned into tiles, the resulting work is sorted per
// shading variant, every variant is rasterised, and finally the tile layers
// are depth blended and resolved into the framebuffer. Dispatch sizes of the
// sort and rasterise stages are computed on the GPU and consumed through
// indirect dispatch, so no data returns to the host during a frame.
//
// # Quick Start
//
//	r, err := dsgpu.New(device, queue, dsgpu.WithScale(2))
//	if err != nil {
//	    // fall back to a software renderer
//	}
//	defer r.Close()
//
//	for r.NeedsShaderCompile() {
//	    if _, _, err := r.ShaderCompileStep(); err != nil {
//	        return err
//	    }
//	}
//
//	if _, err := r.RenderFrame(fs); err != nil {
//	    return err
//	}
//	line, err := r.GetLine(0)
//
// Shader compilation is incremental so a host can spread the 33 pipeline
// builds over several frames of its UI loop.
//
// # Collaborators
//
// Polygons, register state and the texture cache are described in package
// [github.com/gogpu/dsgpu/gpu3d]. The device and queue come from
// [github.com/gogpu/wgpu/hal], either directly or through a
// [gpucontext.DeviceProvider] passed to [NewFromProvider].
//
// # Logging
//
// The package is silent by default. See [SetLogger].
package dsgpu
