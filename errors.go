// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dsgpu

import (
	"github.com/gogpu/dsgpu/internal/gpu"
	"github.com/gogpu/dsgpu/internal/tiling"
)

// Errors returned by the renderer. They can be matched with errors.Is.
var (
	// ErrComputeUnavailable is returned by New and NewFromProvider when no
	// compute capable device is available. Callers select another renderer.
	ErrComputeUnavailable = gpu.ErrComputeUnavailable

	// ErrCapacityExceeded reports more polygons, spans or variants in a
	// frame than the hardware can hold.
	ErrCapacityExceeded = gpu.ErrCapacityExceeded

	// ErrShaderCompile reports a pipeline that failed to build. It is
	// permanent for the renderer.
	ErrShaderCompile = gpu.ErrShaderCompile

	// ErrShadersNotReady is returned by RenderFrame while pipelines remain
	// to be compiled.
	ErrShadersNotReady = gpu.ErrShadersNotReady

	// ErrInvalidScale is returned for a resolution scale outside 1..16.
	ErrInvalidScale = tiling.ErrInvalidScale

	// ErrNotConfigured is returned before render settings were applied.
	ErrNotConfigured = gpu.ErrNotConfigured

	// ErrClosed is returned after Close.
	ErrClosed = gpu.ErrClosed

	// ErrSubmitTimeout is returned when readback waits longer than the
	// submit timeout.
	ErrSubmitTimeout = gpu.ErrSubmitTimeout

	// ErrLineOutOfRange is returned by GetLine for lines outside 0..191.
	ErrLineOutOfRange = gpu.ErrLineOutOfRange

	// ErrNilFrameState is returned by RenderFrame for a nil frame state.
	ErrNilFrameState = gpu.ErrNilFrameState
)
