// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package gpu registers a GPU accelerator for the color matrix stages of
// the adjustment chain.
//
// The accelerator runs a WGSL compute kernel through wgpu/hal. If no GPU is
// available (no Vulkan device), it declines every operation and the chain
// runs on the CPU.
//
// Usage:
//
//	import _ "github.com/gogpu/adjust/gpu" // enable GPU color matrices
package gpu

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/adjust"
)

func init() {
	if err := adjust.RegisterAccelerator(NewColorMatrixAccelerator()); err != nil {
		adjust.Logger().Warn("GPU accelerator not available", "err", err)
	}
}

// SetDeviceProvider makes the registered accelerator use the host's GPU
// device instead of its own. The provider must also expose HalDevice() and
// HalQueue() for direct HAL access.
func SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	return adjust.SetAcceleratorDeviceProvider(provider)
}
