// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"
	"unsafe"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/adjust"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// paramsSize is the byte size of the Params uniform: five vec4<f32> rows
// followed by four u32.
const paramsSize = 5*16 + 4*4

// fenceTimeout bounds the wait for one dispatch.
const fenceTimeout = 5 * time.Second

// ColorMatrixAccelerator runs color matrix stages as a wgpu/hal compute
// pass. It implements adjust.StageAccelerator. Blend and pixelate stages
// are declined and run on the CPU.
type ColorMatrixAccelerator struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	surfaceFormat  gputypes.TextureFormat
	gpuReady       bool
	externalDevice bool // shared device, not destroyed on Close

	log *slog.Logger
}

var _ adjust.StageAccelerator = (*ColorMatrixAccelerator)(nil)

// NewColorMatrixAccelerator returns an accelerator with no device. Init
// opens one, SetDeviceProvider borrows one from the host.
func NewColorMatrixAccelerator() *ColorMatrixAccelerator {
	return &ColorMatrixAccelerator{log: adjust.Logger()}
}

// Name implements adjust.StageAccelerator.
func (a *ColorMatrixAccelerator) Name() string { return "wgpu-color-matrix" }

// SetLogger receives the package logger from adjust.SetLogger.
func (a *ColorMatrixAccelerator) SetLogger(l *slog.Logger) {
	a.mu.Lock()
	a.log = l
	a.mu.Unlock()
}

// CanAccelerate implements adjust.StageAccelerator.
func (a *ColorMatrixAccelerator) CanAccelerate(op adjust.AcceleratedOp) bool {
	if op&adjust.AccelColorMatrix == 0 {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gpuReady
}

// Init opens a Vulkan device. A failure is logged and leaves the
// accelerator declining every operation.
func (a *ColorMatrixAccelerator) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.gpuReady {
		return nil
	}
	if err := a.initGPU(); err != nil {
		a.log.Warn("gpu: device init failed, using CPU kernels", "err", err)
	}
	return nil
}

// Ready reports whether a device and pipeline are available.
func (a *ColorMatrixAccelerator) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gpuReady
}

// Close implements adjust.StageAccelerator.
func (a *ColorMatrixAccelerator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.destroyPipeline()
	if !a.externalDevice {
		if a.device != nil {
			a.device.Destroy()
		}
		if a.instance != nil {
			a.instance.Destroy()
		}
	}
	a.device, a.queue, a.instance = nil, nil, nil
	a.gpuReady = false
	a.externalDevice = false
}

// SetDeviceProvider switches to a GPU device owned by the host. provider
// must expose HalDevice() and HalQueue() returning hal.Device and
// hal.Queue; a gpucontext.DeviceProvider also reports its surface format.
func (a *ColorMatrixAccelerator) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("gpu: provider HalQueue is not hal.Queue")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.destroyPipeline()
	if !a.externalDevice && a.device != nil {
		a.device.Destroy()
	}
	if a.instance != nil {
		a.instance.Destroy()
		a.instance = nil
	}
	a.device, a.queue = device, queue
	a.externalDevice = true
	if dp, ok := provider.(gpucontext.DeviceProvider); ok {
		a.surfaceFormat = dp.SurfaceFormat()
	}

	if err := a.createPipeline(); err != nil {
		a.gpuReady = false
		return fmt.Errorf("gpu: create pipeline with shared device: %w", err)
	}
	a.gpuReady = true
	a.log.Info("gpu: using shared device", "surface_format", a.surfaceFormat)
	return nil
}

// ColorMatrix implements adjust.StageAccelerator.
func (a *ColorMatrixAccelerator) ColorMatrix(ctx context.Context, target adjust.StageTarget, m [20]float32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	count := target.Width * target.Height
	if count <= 0 || len(target.Pix) < count*4 {
		return adjust.ErrFallbackToCPU
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.gpuReady {
		return adjust.ErrFallbackToCPU
	}
	return a.dispatch(target.Pix[:count*4], m)
}

// Blend implements adjust.StageAccelerator.
func (a *ColorMatrixAccelerator) Blend(_ context.Context, _, _, _ adjust.StageTarget, _ adjust.BlendMode) error {
	return adjust.ErrFallbackToCPU
}

// Pixelate implements adjust.StageAccelerator.
func (a *ColorMatrixAccelerator) Pixelate(_ context.Context, _ adjust.StageTarget, _ int) error {
	return adjust.ErrFallbackToCPU
}

// workgroups splits count invocations into an x*y grid that respects the
// per-dimension limit. stride is the number of invocations per grid row.
func workgroups(count int) (x, y, stride uint32) {
	groups := (count + workgroupSize - 1) / workgroupSize
	x = uint32(min(groups, maxWorkgroupsPerDim)) //nolint:gosec // bounded above
	y = uint32((groups + int(x) - 1) / int(x))   //nolint:gosec // pixel counts fit uint32
	return x, y, x * workgroupSize
}

// packParams lays out the Params uniform: the 4x4 matrix rows, the bias
// column, then count and stride.
func packParams(m [20]float32, count, stride uint32) []byte {
	out := make([]byte, paramsSize)
	put := func(off int, v float32) {
		binary.LittleEndian.PutUint32(out[off:], math.Float32bits(v))
	}
	for row := range 4 {
		for col := range 4 {
			put(row*16+col*4, m[row*5+col])
		}
		put(64+row*4, m[row*5+4])
	}
	binary.LittleEndian.PutUint32(out[80:], count)
	binary.LittleEndian.PutUint32(out[84:], stride)
	return out
}

// float32Bytes views pix as raw bytes without copying.
func float32Bytes(pix []float32) []byte {
	if len(pix) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&pix[0])), len(pix)*4) //nolint:gosec // float32 slice viewed as bytes
}

func (a *ColorMatrixAccelerator) dispatch(pix []float32, m [20]float32) error {
	count := len(pix) / 4
	size := uint64(len(pix) * 4)
	gx, gy, stride := workgroups(count)

	uniform, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "color_matrix_params", Size: paramsSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create uniform buffer: %w", err)
	}
	defer a.device.DestroyBuffer(uniform)

	storage, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "color_matrix_pixels", Size: size,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create storage buffer: %w", err)
	}
	defer a.device.DestroyBuffer(storage)

	staging, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "color_matrix_staging", Size: size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer a.device.DestroyBuffer(staging)

	raw := float32Bytes(pix)
	a.queue.WriteBuffer(uniform, 0, packParams(m, uint32(count), stride)) //nolint:gosec // pixel count fits uint32
	a.queue.WriteBuffer(storage, 0, raw)

	bg, err := a.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "color_matrix_bind", Layout: a.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: uniform.NativeHandle(), Offset: 0, Size: paramsSize}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: storage.NativeHandle(), Offset: 0, Size: size}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	defer a.device.DestroyBindGroup(bg)

	encoder, err := a.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "color_matrix_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("color_matrix"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "color_matrix_pass"})
	pass.SetPipeline(a.pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Dispatch(gx, gy, 1)
	pass.End()
	encoder.CopyBufferToBuffer(storage, staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: size},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer a.device.FreeCommandBuffer(cmdBuf)

	fence, err := a.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer a.device.DestroyFence(fence)
	if err := a.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	ok, err := a.device.Wait(fence, 1, fenceTimeout)
	if err != nil || !ok {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", ok, err)
	}

	if err := a.queue.ReadBuffer(staging, 0, raw); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	return nil
}

// compileShader compiles WGSL to SPIR-V words.
func compileShader(src string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return words, nil
}

func (a *ColorMatrixAccelerator) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	a.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("no GPU adapters found")
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	a.device = openDev.Device
	a.queue = openDev.Queue
	if err := a.createPipeline(); err != nil {
		a.device.Destroy()
		a.device, a.queue = nil, nil
		return fmt.Errorf("create pipeline: %w", err)
	}
	a.gpuReady = true
	a.log.Info("gpu: accelerator initialized", "adapter", selected.Info.Name)
	return nil
}

func (a *ColorMatrixAccelerator) createPipeline() error {
	spirv, err := compileShader(colorMatrixShaderSource)
	if err != nil {
		return err
	}
	a.shader, err = a.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "color_matrix",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("create shader module: %w", err)
	}

	a.bindLayout, err = a.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "color_matrix_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}

	a.pipeLayout, err = a.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "color_matrix_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{a.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}

	a.pipeline, err = a.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "color_matrix_pipeline", Layout: a.pipeLayout,
		Compute: hal.ComputeState{Module: a.shader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("create compute pipeline: %w", err)
	}
	return nil
}

func (a *ColorMatrixAccelerator) destroyPipeline() {
	if a.device == nil {
		return
	}
	if a.pipeline != nil {
		a.device.DestroyComputePipeline(a.pipeline)
	}
	if a.pipeLayout != nil {
		a.device.DestroyPipelineLayout(a.pipeLayout)
	}
	if a.bindLayout != nil {
		a.device.DestroyBindGroupLayout(a.bindLayout)
	}
	if a.shader != nil {
		a.device.DestroyShaderModule(a.shader)
	}
	a.pipeline, a.pipeLayout, a.bindLayout, a.shader = nil, nil, nil, nil
}
