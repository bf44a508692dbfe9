package adjust

import (
	"context"
	"errors"
	"sync"

	"github.com/gogpu/adjust/internal/blend"
)

// ErrFallbackToCPU indicates the accelerator cannot run this operation.
// The executor runs the CPU kernel instead.
var ErrFallbackToCPU = errors.New("adjust: falling back to CPU")

// AcceleratedOp describes stage kernels for capability checking.
type AcceleratedOp uint32

const (
	// AccelColorMatrix represents 4x5 color matrix stages.
	AccelColorMatrix AcceleratedOp = 1 << iota

	// AccelBlend represents layer-over-layer blend stages.
	AccelBlend

	// AccelPixelate represents block averaging.
	AccelPixelate
)

// BlendMode names a separable blend function.
type BlendMode uint8

// Blend modes used by the chain.
const (
	BlendNormal    = BlendMode(blend.ModeNormal)
	BlendMultiply  = BlendMode(blend.ModeMultiply)
	BlendScreen    = BlendMode(blend.ModeScreen)
	BlendOverlay   = BlendMode(blend.ModeOverlay)
	BlendColorBurn = BlendMode(blend.ModeColorBurn)
)

func (m BlendMode) String() string { return blend.Mode(m).String() }

// StageTarget is a premultiplied RGBA float32 buffer, 4 values per pixel,
// rows tightly packed.
type StageTarget struct {
	Pix           []float32
	Width, Height int
}

// StageAccelerator is an optional provider of stage kernels.
//
// When one is registered, the executor offers it every operation it reports
// in CanAccelerate. ErrFallbackToCPU runs the CPU kernel; any other error
// fails the stage and aborts the render.
//
// Implementations live in backend packages. Opt in with a blank import:
//
//	import _ "github.com/gogpu/adjust/gpu"
type StageAccelerator interface {
	// Name returns the accelerator name.
	Name() string

	// Init acquires resources. Called once during registration.
	Init() error

	// Close releases resources.
	Close()

	// CanAccelerate reports whether op is supported.
	CanAccelerate(op AcceleratedOp) bool

	// ColorMatrix transforms target in place with a 4x5 straight-alpha
	// matrix, row-major.
	ColorMatrix(ctx context.Context, target StageTarget, m [20]float32) error

	// Blend composites source over backdrop into dst. dst may alias backdrop.
	Blend(ctx context.Context, dst, backdrop, source StageTarget, mode BlendMode) error

	// Pixelate replaces each block×block cell of target with its mean.
	Pixelate(ctx context.Context, target StageTarget, block int) error
}

// DeviceProviderAware is implemented by accelerators that can run on a GPU
// device owned by the host application.
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var (
	accelMu sync.RWMutex
	accel   StageAccelerator
)

// RegisterAccelerator installs a as the process-wide accelerator, replacing
// and closing the previous one. a.Init is called first; if it fails nothing
// changes and the error is returned.
func RegisterAccelerator(a StageAccelerator) error {
	if a == nil {
		return errors.New("adjust: accelerator must not be nil")
	}
	if err := a.Init(); err != nil {
		return err
	}
	propagateLogger(a, Logger())

	accelMu.Lock()
	old := accel
	accel = a
	accelMu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

// UnregisterAccelerator removes and closes the registered accelerator.
func UnregisterAccelerator() {
	accelMu.Lock()
	old := accel
	accel = nil
	accelMu.Unlock()
	if old != nil {
		old.Close()
	}
}

// Accelerator returns the registered accelerator, or nil.
func Accelerator() StageAccelerator {
	accelMu.RLock()
	a := accel
	accelMu.RUnlock()
	return a
}

// SetAcceleratorDeviceProvider hands a host GPU device to the registered
// accelerator. It is a no-op without an accelerator or when the accelerator
// cannot share devices.
func SetAcceleratorDeviceProvider(provider any) error {
	a := Accelerator()
	if a == nil {
		return nil
	}
	if dpa, ok := a.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}
