package adjust

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gogpu/adjust/internal/blend"
	"github.com/gogpu/adjust/internal/filter"
	intImage "github.com/gogpu/adjust/internal/image"
)

// duotoneContrast is the fixed contrast applied to the luminance layer.
const duotoneContrast = 1.2

// stage is one step of the chain. Every stage reads and writes the run's
// working buffer in place.
type stage struct {
	name string
	run  func(r *chainRun) error
}

// buildChain returns the stages that are not identity for s, in the fixed
// order: saturation, vibrance, tone (exposure, brightness, contrast,
// opacity), pixelate, tint, duotone, invert.
func buildChain(s EditState, scale float64) []stage {
	var stages []stage

	sat := filter.Saturation(float32(s.Saturation))
	tone := filter.Exposure(float32(s.Exposure)).
		Then(filter.Brightness(float32(s.Brightness))).
		Then(filter.Contrast(float32(s.Contrast))).
		Then(filter.Opacity(float32(s.Opacity)))

	if s.Vibrance == 0 {
		// Nothing runs between saturation and tone, so one matrix covers both.
		tone = sat.Then(tone)
	} else {
		if !sat.IsIdentity() {
			stages = append(stages, matrixStage("saturation", sat))
		}
		amount := float32(s.Vibrance)
		stages = append(stages, stage{"vibrance", func(r *chainRun) error {
			filter.Vibrance(r.buf, amount, r.rc.workers)
			return nil
		}})
	}
	if !tone.IsIdentity() {
		stages = append(stages, matrixStage("tone", tone))
	}

	if block := pixelBlock(s.PixelateAmount, scale); block > 1 {
		stages = append(stages, stage{"pixelate", func(r *chainRun) error {
			return r.pixelate(r.buf, block)
		}})
	}

	tint := s.ColorTint.HasTint()
	invert := s.ColorInvert > 0
	if tint || s.DuotoneEnabled || invert {
		stages = append(stages, stage{"clamp", func(r *chainRun) error {
			r.clamp(r.buf)
			return nil
		}})
	}
	if tint {
		color, weight := s.ColorTint.premultiplied(), float32(s.tintWeight())
		stages = append(stages, stage{"tint", func(r *chainRun) error {
			return r.tint(color, weight)
		}})
	}
	if s.DuotoneEnabled {
		stages = append(stages, stage{"duotone", func(r *chainRun) error {
			return r.duotone(s)
		}})
	}
	if invert {
		amount := float32(s.ColorInvert)
		stages = append(stages, stage{"invert", func(r *chainRun) error {
			return r.invert(amount)
		}})
	}
	return stages
}

func matrixStage(name string, m filter.ColorMatrix) stage {
	return stage{name, func(r *chainRun) error {
		return r.colorMatrix(r.buf, m)
	}}
}

// pixelBlock converts a pixelate amount at full resolution to a block size
// at the given tier scale. Zero or one means bypass. At full resolution any
// amount above one pixelates with blocks of at least two pixels.
func pixelBlock(amount, scale float64) int {
	if !(amount > 1) {
		return 0
	}
	block := int(math.Round(amount * scale))
	if scale >= 1 {
		block = max(block, 2)
	}
	return block
}

// chainRun holds the state of one render.
type chainRun struct {
	ctx     context.Context
	rc      *renderContext
	accel   StageAccelerator
	buf     *intImage.Buf
	scratch []*intImage.Buf
}

func (r *chainRun) execute(base *Bitmap, stages []stage) (*Bitmap, error) {
	buf, err := r.rc.buffers.Get(base.width, base.height)
	if err != nil {
		return nil, &RenderStageError{Stage: "load", Err: err}
	}
	r.buf = buf

	order, stride := base.order(), base.Stride()
	r.rc.workers.Rows(base.height, func(y0, y1 int) {
		intImage.LoadRows(buf, base.pix, stride, order, y0, y1)
	})

	for _, st := range stages {
		if err := r.runStage(st); err != nil {
			return nil, err
		}
	}

	out := &Bitmap{
		width:       base.width,
		height:      base.height,
		format:      base.format,
		orientation: OrientationUp,
		pix:         make([]byte, base.width*base.height*4),
	}
	r.rc.workers.Rows(out.height, func(y0, y1 int) {
		intImage.StoreRows(out.pix, stride, order, buf, y0, y1)
	})
	return out, nil
}

func (r *chainRun) runStage(st stage) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &RenderStageError{Stage: st.name, Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	if err := r.ctx.Err(); err != nil {
		return &RenderStageError{Stage: st.name, Err: err}
	}
	start := time.Now()
	if err := st.run(r); err != nil {
		return &RenderStageError{Stage: st.name, Err: err}
	}
	Logger().Debug("adjust: stage", "stage", st.name, "elapsed", time.Since(start))
	return nil
}

// release returns every buffer of the run to the pool.
func (r *chainRun) release() {
	for _, b := range r.scratch {
		r.rc.buffers.Put(b)
	}
	r.rc.buffers.Put(r.buf)
	r.scratch, r.buf = nil, nil
}

func (r *chainRun) newScratch() (*intImage.Buf, error) {
	b, err := r.rc.buffers.Get(r.buf.Width(), r.buf.Height())
	if err != nil {
		return nil, err
	}
	r.scratch = append(r.scratch, b)
	return b, nil
}

func (r *chainRun) cloneOf(src *intImage.Buf) (*intImage.Buf, error) {
	b, err := r.newScratch()
	if err != nil {
		return nil, err
	}
	return b, b.CopyFrom(src)
}

func (r *chainRun) clamp(b *intImage.Buf) {
	r.rc.workers.Rows(b.Height(), b.ClampRows)
}

func stageTarget(b *intImage.Buf) StageTarget {
	return StageTarget{Pix: b.Pix(), Width: b.Width(), Height: b.Height()}
}

// accelerated offers op to the accelerator. It reports whether the
// accelerator handled it; false with a nil error means run the CPU kernel.
func (r *chainRun) accelerated(op AcceleratedOp, call func(StageAccelerator) error) (bool, error) {
	a := r.accel
	if a == nil || !a.CanAccelerate(op) {
		return false, nil
	}
	err := call(a)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrFallbackToCPU):
		Logger().Debug("adjust: accelerator fallback", "accelerator", a.Name(), "op", op)
		return false, nil
	default:
		return false, fmt.Errorf("%s: %w", a.Name(), err)
	}
}

func (r *chainRun) colorMatrix(b *intImage.Buf, m filter.ColorMatrix) error {
	done, err := r.accelerated(AccelColorMatrix, func(a StageAccelerator) error {
		return a.ColorMatrix(r.ctx, stageTarget(b), [20]float32(m))
	})
	if done || err != nil {
		return err
	}
	m.Apply(b, r.rc.workers)
	return nil
}

func (r *chainRun) layer(dst, backdrop, source *intImage.Buf, mode blend.Mode) error {
	done, err := r.accelerated(AccelBlend, func(a StageAccelerator) error {
		return a.Blend(r.ctx, stageTarget(dst), stageTarget(backdrop), stageTarget(source), BlendMode(mode))
	})
	if done || err != nil {
		return err
	}
	return blend.Layer(dst, backdrop, source, mode, r.rc.workers)
}

func (r *chainRun) pixelate(b *intImage.Buf, block int) error {
	done, err := r.accelerated(AccelPixelate, func(a StageAccelerator) error {
		return a.Pixelate(r.ctx, stageTarget(b), block)
	})
	if done || err != nil {
		return err
	}
	filter.Pixelate(b, block, r.rc.workers)
	return nil
}

// tint overlays a solid color and cross-dissolves toward the result.
func (r *chainRun) tint(color [4]float32, weight float32) error {
	layer, err := r.newScratch()
	if err != nil {
		return err
	}
	if err := blend.Solid(layer, r.buf, color, blend.ModeOverlay, r.rc.workers); err != nil {
		return err
	}
	return blend.Mix(r.buf, r.buf, layer, weight, r.rc.workers)
}

// duotone maps the image onto two tones:
//
//	lum    = contrast(luminance(img), 1.2)
//	shadow = invert(colorburn(source shadow color, backdrop invert(lum)))
//	high   = screen(source highlight color, backdrop lum)
//	a      = mix(high, shadow, shadow intensity)
//	b      = mix(shadow, high, highlight intensity)
//	img    = overlay(source b, backdrop a)
func (r *chainRun) duotone(s EditState) error {
	w := r.rc.workers

	lum, err := r.cloneOf(r.buf)
	if err != nil {
		return err
	}
	if err := r.colorMatrix(lum, filter.Luminance().Then(filter.Contrast(duotoneContrast))); err != nil {
		return err
	}
	r.clamp(lum)

	shadow, err := r.cloneOf(lum)
	if err != nil {
		return err
	}
	if err := r.colorMatrix(shadow, filter.Invert()); err != nil {
		return err
	}
	if err := blend.Solid(shadow, shadow, s.DuotoneShadowColor.premultiplied(), blend.ModeColorBurn, w); err != nil {
		return err
	}
	if err := r.colorMatrix(shadow, filter.Invert()); err != nil {
		return err
	}

	high, err := r.newScratch()
	if err != nil {
		return err
	}
	if err := blend.Solid(high, lum, s.DuotoneHighlightColor.premultiplied(), blend.ModeScreen, w); err != nil {
		return err
	}

	// lum is no longer needed and receives a.
	a := lum
	b, err := r.newScratch()
	if err != nil {
		return err
	}
	if err := blend.Mix(a, high, shadow, float32(s.DuotoneShadowIntensity), w); err != nil {
		return err
	}
	if err := blend.Mix(b, shadow, high, float32(s.DuotoneHighlightIntensity), w); err != nil {
		return err
	}
	r.clamp(a)
	r.clamp(b)

	return r.layer(r.buf, a, b, blend.ModeOverlay)
}

// invert applies a full channel invert at 1 and a cross-dissolve toward
// the inverted image below 1.
func (r *chainRun) invert(amount float32) error {
	if amount >= 1 {
		return r.colorMatrix(r.buf, filter.Invert())
	}
	inv, err := r.cloneOf(r.buf)
	if err != nil {
		return err
	}
	if err := r.colorMatrix(inv, filter.Invert()); err != nil {
		return err
	}
	return blend.Mix(r.buf, r.buf, inv, amount, r.rc.workers)
}
