// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Buffer errors.
var (
	// ErrBufferDestroyed is returned when operating on a destroyed buffer.
	ErrBufferDestroyed = errors.New("gpu: buffer has been destroyed")

	// ErrInvalidBufferSize is returned when buffer size is invalid.
	ErrInvalidBufferSize = errors.New("gpu: invalid buffer size")

	// ErrBufferNotMapped is returned when unmapping a buffer that is not mapped.
	ErrBufferNotMapped = errors.New("gpu: buffer is not mapped")

	// ErrInvalidMapRange is returned when a write or map range is out of bounds.
	ErrInvalidMapRange = errors.New("gpu: map range out of bounds")

	// ErrMapUsageMismatch is returned when mapping a buffer without MapRead usage.
	ErrMapUsageMismatch = errors.New("gpu: map mode does not match buffer usage flags")
)

// minBufferSize keeps zero-length allocations valid on every backend.
const minBufferSize = 4

// Buffer wraps a HAL buffer with its size and usage so uploads and
// readbacks can be range checked before they reach the driver.
type Buffer struct {
	mu        sync.Mutex
	halBuffer hal.Buffer
	device    hal.Device
	label     string
	size      uint64
	usage     gputypes.BufferUsage
	mapped    bool
	destroyed bool
}

// createBuffer allocates a buffer of at least size bytes, rounded up to a
// multiple of four.
func createBuffer(device hal.Device, label string, size uint64, usage gputypes.BufferUsage) (*Buffer, error) {
	if device == nil {
		return nil, ErrComputeUnavailable
	}
	if size > 1<<40 {
		return nil, fmt.Errorf("%w: %s requests %d bytes", ErrInvalidBufferSize, label, size)
	}
	if size < minBufferSize {
		size = minBufferSize
	}
	size = (size + 3) &^ 3

	raw, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create buffer %q: %w", label, err)
	}
	slogger().Debug("gpu: buffer created", "label", label, "size", size)
	return &Buffer{
		halBuffer: raw,
		device:    device,
		label:     label,
		size:      size,
		usage:     usage,
	}, nil
}

// Raw returns the underlying HAL buffer.
func (b *Buffer) Raw() hal.Buffer {
	if b == nil {
		return nil
	}
	return b.halBuffer
}

// Size returns the allocated size in bytes.
func (b *Buffer) Size() uint64 { return b.size }

// Label returns the debug label.
func (b *Buffer) Label() string { return b.label }

// binding returns a bind group entry resource covering size bytes from the
// start of the buffer. A zero size binds the whole buffer.
func (b *Buffer) binding(size uint64) gputypes.BufferBinding {
	if size == 0 || size > b.size {
		size = b.size
	}
	return gputypes.BufferBinding{
		Buffer: b.halBuffer.NativeHandle(),
		Offset: 0,
		Size:   size,
	}
}

// Write uploads data at offset through the queue.
func (b *Buffer) Write(queue hal.Queue, offset uint64, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.destroyed {
		return ErrBufferDestroyed
	}
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("%w: %s write [%d, %d) exceeds %d", ErrInvalidMapRange,
			b.label, offset, offset+uint64(len(data)), b.size)
	}
	if err := queue.WriteBuffer(b.halBuffer, offset, data); err != nil {
		return fmt.Errorf("gpu: write %s: %w", b.label, err)
	}
	return nil
}

// Map maps size bytes at offset for reading. The returned slice is valid
// until Unmap.
func (b *Buffer) Map(offset, size uint64) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.destroyed {
		return nil, ErrBufferDestroyed
	}
	if b.usage&gputypes.BufferUsageMapRead == 0 {
		return nil, ErrMapUsageMismatch
	}
	if offset+size > b.size {
		return nil, ErrInvalidMapRange
	}
	m, err := b.device.MapBuffer(b.halBuffer, offset, size)
	if err != nil {
		return nil, fmt.Errorf("gpu: map %s: %w", b.label, err)
	}
	b.mapped = true
	if m.Ptr == nil || size == 0 {
		return nil, nil
	}
	return unsafe.Slice((*byte)(m.Ptr), size), nil
}

// Unmap releases a mapping created by Map.
func (b *Buffer) Unmap() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.destroyed {
		return ErrBufferDestroyed
	}
	if !b.mapped {
		return ErrBufferNotMapped
	}
	b.mapped = false
	return b.device.UnmapBuffer(b.halBuffer)
}

// Destroy releases the HAL buffer. Safe to call more than once.
func (b *Buffer) Destroy() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.destroyed {
		return
	}
	b.destroyed = true
	if b.mapped {
		_ = b.device.UnmapBuffer(b.halBuffer)
		b.mapped = false
	}
	b.device.DestroyBuffer(b.halBuffer)
}
