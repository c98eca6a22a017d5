// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"

	"github.com/gogpu/dsgpu/internal/arena"
)

// Renderer errors.
var (
	// ErrComputeUnavailable is returned when no device or queue is given.
	ErrComputeUnavailable = errors.New("gpu: compute device unavailable")

	// ErrShaderCompile is returned once a permutation fails to build. It is
	// sticky: the pipeline set never becomes ready afterwards.
	ErrShaderCompile = errors.New("gpu: shader compilation failed")

	// ErrShadersNotReady is returned by RenderFrame before every
	// permutation has been compiled.
	ErrShadersNotReady = errors.New("gpu: shaders not compiled")

	// ErrNotConfigured is returned before SetRenderSettings succeeded.
	ErrNotConfigured = errors.New("gpu: render settings not applied")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("gpu: renderer closed")

	// ErrSubmitTimeout is returned when a blocking readback waits longer
	// than the configured timeout.
	ErrSubmitTimeout = errors.New("gpu: timed out waiting for submission")

	// ErrNilFrameState is returned by RenderFrame without a frame.
	ErrNilFrameState = errors.New("gpu: nil frame state")

	// ErrLineOutOfRange is returned by GetLine for a line outside the capture.
	ErrLineOutOfRange = errors.New("gpu: capture line out of range")

	// ErrCapacityExceeded is returned when a frame overflows a fixed limit.
	ErrCapacityExceeded = arena.ErrCapacityExceeded
)
