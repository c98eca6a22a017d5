// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// captureState tracks the copy of the low resolution capture into the
// readback buffer for the most recent frame.
type captureState struct {
	// submitted is set once the copy for the current frame was submitted.
	submitted bool
	index     uint64

	// valid is set once lines holds the mapped capture.
	valid bool
	lines []uint32
}

// PrepareCaptureFrame submits the copy of the capture texture into the
// readback buffer without waiting for it. GetLine submits the copy itself
// when this was not called.
func (r *Rasterizer) PrepareCaptureFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prepareCapture()
}

func (r *Rasterizer) prepareCapture() error {
	if r.closed {
		return ErrClosed
	}
	if !r.configured {
		return ErrNotConfigured
	}
	if r.capture.submitted {
		return nil
	}

	enc, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "dsgpu_capture"})
	if err != nil {
		return fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding("dsgpu_capture"); err != nil {
		return fmt.Errorf("gpu: begin encoding: %w", err)
	}

	low := r.res.lowRes
	low.transition(enc, gputypes.TextureUsageCopySrc)
	enc.CopyTextureToBuffer(low.tex, r.res.readback.Raw(), []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  captureBytesPerRow,
			RowsPerImage: captureHeight,
		},
		TextureBase: hal.ImageCopyTexture{
			Texture:  low.tex,
			MipLevel: 0,
			Aspect:   gputypes.TextureAspectAll,
		},
		Size: hal.Extent3D{Width: captureWidth, Height: captureHeight, DepthOrArrayLayers: 1},
	}})

	cmdBuf, err := enc.EndEncoding()
	if err != nil {
		return fmt.Errorf("gpu: end encoding: %w", err)
	}
	idx, err := r.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		r.device.FreeCommandBuffer(cmdBuf)
		return fmt.Errorf("gpu: submit capture copy: %w", err)
	}
	r.inflight = append(r.inflight, submission{index: idx, cmdBuf: cmdBuf})
	r.capture.submitted = true
	r.capture.index = idx
	r.capture.valid = false

	slogger().Debug("gpu: capture copy submitted", "submission", idx)
	return nil
}

// GetLine returns the 256 pixels of capture line y, each packed as
// R | G<<8 | B<<16 | A<<24 with 6-bit color and 5-bit alpha. The first call
// after a frame waits for the copy and maps the readback buffer once;
// later calls are served from the host copy. The returned slice is only
// valid until the next frame.
func (r *Rasterizer) GetLine(y int) ([]uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	if y < 0 || y >= captureHeight {
		return nil, fmt.Errorf("%w: %d", ErrLineOutOfRange, y)
	}
	if !r.capture.valid {
		if err := r.readCapture(); err != nil {
			return nil, err
		}
	}
	start := y * captureWidth
	return r.capture.lines[start : start+captureWidth : start+captureWidth], nil
}

func (r *Rasterizer) readCapture() error {
	if err := r.prepareCapture(); err != nil {
		return err
	}
	if err := r.waitFor(r.capture.index); err != nil {
		return err
	}

	data, err := r.res.readback.Map(0, captureSize)
	if err != nil {
		return err
	}
	if len(r.capture.lines) != captureWidth*captureHeight {
		r.capture.lines = make([]uint32, captureWidth*captureHeight)
	}
	if len(data) == captureSize {
		for i := range r.capture.lines {
			r.capture.lines[i] = binary.LittleEndian.Uint32(data[i*4:])
		}
	} else {
		clear(r.capture.lines)
	}
	if err := r.res.readback.Unmap(); err != nil {
		return fmt.Errorf("gpu: unmap capture: %w", err)
	}
	r.capture.valid = true
	return nil
}
