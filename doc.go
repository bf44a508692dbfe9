// Package adjust provides an adaptive image-adjustment pipeline for Go.
//
// # Overview
//
// adjust turns a base photograph and a set of edit parameters into a live
// preview. Every parameter change re-runs a fixed-order chain of color,
// spatial and blend stages. A debouncing scheduler keeps interactive editing
// responsive by rendering a thumbnail tier in the background, and an
// exporter re-runs the chain at full resolution on commit.
//
// # Quick Start
//
//	import "github.com/gogpu/adjust"
//
//	base, err := adjust.NewBaseImage(img, adjust.OrientationRight)
//	if err != nil {
//	    return err
//	}
//
//	ex := adjust.NewExecutor()
//	defer ex.Close()
//
//	sched := adjust.NewScheduler(ex, base)
//	defer sched.Close()
//
//	state := adjust.DefaultEditState()
//	state.Contrast = 1.2
//	sched.Update(state)
//	frame := <-sched.Frames()
//
//	art, err := adjust.NewExporter(ex).Export(ctx, base, state)
//
// # Stage Order
//
// Stages run in this order; identity stages are skipped:
//   - saturation, vibrance
//   - exposure, brightness, contrast, opacity (one folded color matrix)
//   - pixelate
//   - color tint (overlay, then cross-dissolve with a 0.1 visibility floor)
//   - duotone
//   - color invert
//
// Working buffers are premultiplied float32. Values are clamped to [0, 1]
// before the first blend stage and when converted back to bytes.
//
// # Pixel Format
//
// Bitmaps are 32-bit premultiplied RGBA8 or BGRA8, named with
// gputypes.TextureFormat so they can be uploaded to a GPU texture as is.
// EnsureCanonicalFormat converts any image.Image.
//
// # GPU Acceleration
//
// Stage kernels can be offloaded to a registered StageAccelerator:
//
//	import _ "github.com/gogpu/adjust/gpu"
//
// Operations the accelerator declines run on the CPU.
//
// # Logging
//
// adjust is silent by default. Call SetLogger with a *slog.Logger to see
// stage timings, fallbacks and export decisions.
package adjust
