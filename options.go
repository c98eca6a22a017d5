// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dsgpu

import (
	"time"

	"github.com/gogpu/dsgpu/gpu3d"
	"github.com/gogpu/dsgpu/internal/gpu"
)

// ShaderFormat selects how shader source reaches the backend.
type ShaderFormat = gpu.ShaderFormat

const (
	// ShaderWGSL passes WGSL text to the backend.
	ShaderWGSL = gpu.ShaderWGSL
	// ShaderSPIRV compiles WGSL to SPIR-V with naga first.
	ShaderSPIRV = gpu.ShaderSPIRV
)

// Option configures a Renderer during creation.
//
// Example:
//
//	r, err := dsgpu.New(device, queue,
//	    dsgpu.WithScale(3),
//	    dsgpu.WithTextureCache(cache),
//	)
type Option func(*options)

// options holds optional configuration for Renderer creation.
type options struct {
	scale         int
	hiRes         bool
	format        ShaderFormat
	cache         gpu3d.TextureCache
	compositor    Compositor
	submitTimeout time.Duration
}

// defaultOptions returns the default renderer options.
func defaultOptions() options {
	return options{
		scale:         1,
		format:        ShaderWGSL,
		submitTimeout: gpu.DefaultSubmitTimeout,
	}
}

// WithScale sets the initial resolution scale. The native 256x192 output is
// multiplied by scale on both axes.
func WithScale(scale int) Option {
	return func(o *options) {
		o.scale = scale
	}
}

// WithHiResCoordinates enables sub-pixel vertex coordinates at scales
// above one.
func WithHiResCoordinates(enabled bool) Option {
	return func(o *options) {
		o.hiRes = enabled
	}
}

// WithShaderFormat selects the shader format handed to the backend.
// Backends without a WGSL front end need ShaderSPIRV.
func WithShaderFormat(f ShaderFormat) Option {
	return func(o *options) {
		o.format = f
	}
}

// WithTextureCache sets the texture cache collaborator. Without one every
// textured polygon samples a single white texel.
func WithTextureCache(c gpu3d.TextureCache) Option {
	return func(o *options) {
		o.cache = c
	}
}

// WithCompositor sets the compositor that receives the framebuffer after
// each rendered frame.
func WithCompositor(c Compositor) Option {
	return func(o *options) {
		o.compositor = c
	}
}

// WithSubmitTimeout bounds how long readback waits for the GPU.
// Non-positive values keep the default of 5 seconds.
func WithSubmitTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.submitTimeout = d
		}
	}
}
