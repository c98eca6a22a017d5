// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dsgpu

import (
	"fmt"

	"github.com/gogpu/dsgpu/gpu3d"
	"github.com/gogpu/dsgpu/internal/gpu"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
)

// FrameStats describes the work of the last RenderFrame call.
type FrameStats = gpu.FrameStats

// Framebuffer is the scaled color output of the renderer. It is replaced
// when the resolution scale changes.
type Framebuffer struct {
	view          hal.TextureView
	width, height int
}

// Width returns the framebuffer width in pixels.
func (f Framebuffer) Width() int { return f.width }

// Height returns the framebuffer height in pixels.
func (f Framebuffer) Height() int { return f.height }

// View returns the texture view of the framebuffer. The texture has
// rgba8unorm format and can be sampled by the compositor.
func (f Framebuffer) View() hal.TextureView { return f.view }

var _ gpucontext.Texture = Framebuffer{}

// IsNil reports whether the framebuffer has not been allocated yet.
func (f Framebuffer) IsNil() bool { return f.view == nil }

// Compositor receives the framebuffer after every rendered frame, typically
// to blend it with the 2D layers of the console.
type Compositor interface {
	Composite(fb Framebuffer) error
}

// CompositorFunc adapts a function to the Compositor interface.
type CompositorFunc func(fb Framebuffer) error

// Composite calls f(fb).
func (f CompositorFunc) Composite(fb Framebuffer) error { return f(fb) }

// Renderer is the compute shader renderer for one emulated console.
//
// All methods are safe for concurrent use, but render settings must not
// change while the host still samples the previous framebuffer.
type Renderer struct {
	ras        *gpu.Rasterizer
	compositor Compositor
}

// New creates a renderer on device and queue and applies the initial render
// settings. It returns nil and ErrComputeUnavailable when device or queue
// is missing.
func New(device hal.Device, queue hal.Queue, opts ...Option) (*Renderer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ras, err := gpu.NewRasterizer(device, queue, gpu.Config{
		Format:        o.format,
		Cache:         o.cache,
		SubmitTimeout: o.submitTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("dsgpu: %w", err)
	}
	if err := ras.SetRenderSettings(o.scale, o.hiRes); err != nil {
		_ = ras.Close()
		return nil, fmt.Errorf("dsgpu: initial render settings: %w", err)
	}

	Logger().Debug("dsgpu: renderer created",
		"scale", o.scale,
		"hires", o.hiRes,
		"format", o.format.String(),
	)
	return &Renderer{ras: ras, compositor: o.compositor}, nil
}

// Reset forgets every cached texture. Call it when the emulated console
// resets.
func (r *Renderer) Reset() {
	r.ras.Reset()
}

// SetRenderSettings changes the resolution scale and the hi-res coordinate
// mode. A new scale reallocates the scale dependent buffers and requires
// every shader to be compiled again. The same arguments twice do nothing.
func (r *Renderer) SetRenderSettings(scale int, hiResCoordinates bool) error {
	return r.ras.SetRenderSettings(scale, hiResCoordinates)
}

// ShaderCompileStep builds the next pipeline. count is always the total
// number of pipelines. Once a build failed the same error is returned for
// the lifetime of the renderer.
func (r *Renderer) ShaderCompileStep() (current, count int, err error) {
	return r.ras.ShaderCompileStep()
}

// NeedsShaderCompile reports whether ShaderCompileStep must be called
// before RenderFrame.
func (r *Renderer) NeedsShaderCompile() bool {
	return r.ras.NeedsShaderCompile()
}

// RenderFrame renders fs and hands the framebuffer to the compositor. It
// reports false when the frame was skipped because neither the frame state
// nor any texture changed since the previous frame.
func (r *Renderer) RenderFrame(fs *gpu3d.FrameState) (bool, error) {
	rendered, err := r.ras.RenderFrame(fs)
	if err != nil || !rendered {
		return rendered, err
	}
	if r.compositor != nil {
		if err := r.compositor.Composite(r.Framebuffer()); err != nil {
			return true, fmt.Errorf("dsgpu: composite: %w", err)
		}
	}
	return true, nil
}

// Stats returns the statistics of the last RenderFrame call.
func (r *Renderer) Stats() FrameStats {
	return r.ras.Stats()
}

// Framebuffer returns the current color output.
func (r *Renderer) Framebuffer() Framebuffer {
	view, w, h := r.ras.Framebuffer()
	return Framebuffer{view: view, width: w, height: h}
}

// PrepareCaptureFrame starts copying the native resolution capture of the
// last frame to host memory without waiting for it.
func (r *Renderer) PrepareCaptureFrame() error {
	return r.ras.PrepareCaptureFrame()
}

// GetLine returns the 256 pixels of native resolution line y of the last
// frame, packed as R | G<<8 | B<<16 | A<<24 with 6-bit color and 5-bit
// alpha. The first call after a frame blocks until the GPU finished it.
func (r *Renderer) GetLine(y int) ([]uint32, error) {
	return r.ras.GetLine(y)
}

// Close waits for the GPU and releases every resource. The device and
// queue stay owned by the caller.
func (r *Renderer) Close() error {
	return r.ras.Close()
}
