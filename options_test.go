// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dsgpu

import (
	"testing"
	"time"

	"github.com/gogpu/dsgpu/gpu3d"
	"github.com/gogpu/dsgpu/internal/gpu"
)

type stubCache struct{}

func (stubCache) Update(*gpu3d.FrameState) bool { return false }
func (stubCache) GetTexture(*gpu3d.FrameState, uint32, uint32) (gpu3d.Texture, uint32, *uint32) {
	return gpu3d.Texture{}, 0, nil
}
func (stubCache) Reset() {}

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.scale != 1 {
		t.Errorf("scale = %d, want 1", o.scale)
	}
	if o.hiRes {
		t.Error("hiRes should default to false")
	}
	if o.format != ShaderWGSL {
		t.Errorf("format = %v, want %v", o.format, ShaderWGSL)
	}
	if o.cache != nil || o.compositor != nil {
		t.Error("cache and compositor should default to nil")
	}
	if o.submitTimeout != gpu.DefaultSubmitTimeout {
		t.Errorf("submitTimeout = %v, want %v", o.submitTimeout, gpu.DefaultSubmitTimeout)
	}
}

func TestOptions(t *testing.T) {
	comp := CompositorFunc(func(Framebuffer) error { return nil })

	o := defaultOptions()
	for _, opt := range []Option{
		WithScale(4),
		WithHiResCoordinates(true),
		WithShaderFormat(ShaderSPIRV),
		WithTextureCache(stubCache{}),
		WithCompositor(comp),
		WithSubmitTimeout(time.Second),
	} {
		opt(&o)
	}

	if o.scale != 4 {
		t.Errorf("scale = %d, want 4", o.scale)
	}
	if !o.hiRes {
		t.Error("hiRes = false, want true")
	}
	if o.format != ShaderSPIRV {
		t.Errorf("format = %v, want %v", o.format, ShaderSPIRV)
	}
	if _, ok := o.cache.(stubCache); !ok {
		t.Errorf("cache = %T, want stubCache", o.cache)
	}
	if o.compositor == nil {
		t.Error("compositor not set")
	}
	if o.submitTimeout != time.Second {
		t.Errorf("submitTimeout = %v, want 1s", o.submitTimeout)
	}
}

func TestWithSubmitTimeoutIgnoresNonPositive(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second} {
		o := defaultOptions()
		WithSubmitTimeout(d)(&o)
		if o.submitTimeout != gpu.DefaultSubmitTimeout {
			t.Errorf("WithSubmitTimeout(%v) changed timeout to %v", d, o.submitTimeout)
		}
	}
}
