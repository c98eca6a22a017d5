// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dsgpu

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// halProvider is implemented by device providers that expose their HAL
// device and queue.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// NewFromProvider creates a renderer on the device of an external provider
// such as a gogpu window. The provider must implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
//
// Software adapters are rejected with ErrComputeUnavailable: a CPU
// interpreter of the kernels is slower than a dedicated software renderer.
func NewFromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Renderer, error) {
	if provider == nil {
		return nil, ErrComputeUnavailable
	}
	info := provider.AdapterInfo()
	if info.Type == gpucontext.AdapterTypeSoftware {
		Logger().Warn("dsgpu: software adapter rejected", "adapter", info.Name)
		return nil, fmt.Errorf("%w: software adapter %q", ErrComputeUnavailable, info.Name)
	}

	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("%w: provider does not expose HAL types", ErrComputeUnavailable)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: provider HalDevice is not hal.Device", ErrComputeUnavailable)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: provider HalQueue is not hal.Queue", ErrComputeUnavailable)
	}

	Logger().Info("dsgpu: using provider device", "adapter", info.Name)
	return New(device, queue, opts...)
}

// AdapterSupportsCompute reports whether the adapter can run the renderer.
// Adapters advertising compute shaders qualify, as do every Vulkan, Metal
// and DX12 adapter.
func AdapterSupportsCompute(a hal.ExposedAdapter) bool {
	if a.Capabilities.DownlevelCapabilities.Flags&hal.DownlevelFlagsComputeShaders != 0 {
		return true
	}
	switch a.Info.Backend {
	case gputypes.BackendVulkan, gputypes.BackendMetal, gputypes.BackendDX12:
		return true
	default:
		return false
	}
}
