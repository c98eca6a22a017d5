// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gogpu/dsgpu/gpu3d"
	"github.com/gogpu/dsgpu/internal/variant"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"
)

func TestAddressMode(t *testing.T) {
	tests := []struct {
		repeat, flip bool
		want         gputypes.AddressMode
	}{
		{false, false, gputypes.AddressModeClampToEdge},
		{false, true, gputypes.AddressModeClampToEdge},
		{true, false, gputypes.AddressModeRepeat},
		{true, true, gputypes.AddressModeMirrorRepeat},
	}
	for _, tt := range tests {
		if got := addressMode(tt.repeat, tt.flip); got != tt.want {
			t.Errorf("addressMode(%v, %v) = %v, want %v", tt.repeat, tt.flip, got, tt.want)
		}
	}
}

func TestTextureBinderCache(t *testing.T) {
	dev, q := newRecordingDevice()
	b, err := newTextureBinder(dev, q, &noop.Resource{})
	if err != nil {
		t.Fatal(err)
	}
	defer b.destroy()

	tex := gpu3d.Texture{ID: 3, View: &noop.Resource{}}
	for range 3 {
		if _, err := b.bindGroup(tex, 5); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := b.bindGroup(tex, 6); err != nil {
		t.Fatal(err)
	}
	// Untextured variants share the white texture entry.
	if _, err := b.bindGroup(gpu3d.Texture{}, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := b.bindGroup(gpu3d.Texture{ID: 9}, 0); err != nil {
		t.Fatal(err)
	}
	if b.cached() != 3 {
		t.Errorf("cached = %d, want 3", b.cached())
	}
	if dropped := b.invalidate(); len(dropped) != 3 || b.cached() != 0 {
		t.Errorf("invalidate dropped %d, %d left", len(dropped), b.cached())
	}
}

func TestWhiteCache(t *testing.T) {
	dev, q := newRecordingDevice()
	white, err := newWhiteTexture(dev, q)
	if err != nil {
		t.Fatal(err)
	}
	c := &whiteCache{white: white}
	if c.Update(&gpu3d.FrameState{}) {
		t.Error("built-in cache reported a change")
	}
	tex, layer, slot := c.GetTexture(&gpu3d.FrameState{}, 0, 0)
	if tex.ID != whiteTextureID || layer != 0 || slot == nil {
		t.Errorf("GetTexture = (%+v, %d, %v)", tex, layer, slot)
	}
}

func TestVariantUniforms(t *testing.T) {
	vs := []variant.Variant{
		{},
		{Texture: gpu3d.Texture{ID: 2}, Width: 64, Height: 32},
	}
	b := appendVariantUniforms(nil, vs)
	if len(b) != 2*variantUniformStride {
		t.Fatalf("len = %d", len(b))
	}
	rec := b[variantUniformStride:]
	if got := binary.LittleEndian.Uint32(rec); got != 1 {
		t.Errorf("CurVariant = %d, want 1", got)
	}
	w := math.Float32frombits(binary.LittleEndian.Uint32(rec[8:]))
	h := math.Float32frombits(binary.LittleEndian.Uint32(rec[12:]))
	if w != 64 || h != 32 {
		t.Errorf("texture size = %vx%v, want 64x32", w, h)
	}
	if w0 := math.Float32frombits(binary.LittleEndian.Uint32(b[8:])); w0 != 1 {
		t.Errorf("untextured width = %v, want 1", w0)
	}
}
