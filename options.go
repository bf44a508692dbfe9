package adjust

import (
	"time"

	"golang.org/x/image/draw"
)

// ExecutorOption configures an Executor during creation.
//
// Example:
//
//	// CPU only, four kernel workers
//	ex := adjust.NewExecutor(adjust.WithWorkers(4), adjust.WithAccelerator(nil))
type ExecutorOption func(*executorOptions)

type executorOptions struct {
	accel      StageAccelerator
	accelSet   bool
	workers    int
	poolBucket int
}

func defaultExecutorOptions() executorOptions {
	return executorOptions{
		workers:    0, // GOMAXPROCS
		poolBucket: 8,
	}
}

// WithAccelerator pins the accelerator used by the executor. Passing nil
// forces the CPU path. Without this option the registered accelerator, if
// any, is looked up on every render.
func WithAccelerator(a StageAccelerator) ExecutorOption {
	return func(o *executorOptions) {
		o.accel = a
		o.accelSet = true
	}
}

// WithWorkers sets the number of goroutines stage kernels split rows over.
// Zero or negative uses GOMAXPROCS; 1 runs kernels on the rendering
// goroutine.
func WithWorkers(n int) ExecutorOption {
	return func(o *executorOptions) {
		o.workers = n
	}
}

// WithBufferPool sets how many scratch buffers of each size the executor
// keeps between renders. Zero keeps all of them.
func WithBufferPool(perSize int) ExecutorOption {
	return func(o *executorOptions) {
		o.poolBucket = perSize
	}
}

// DefaultDebounce is the quiet period before a preview render starts.
const DefaultDebounce = 40 * time.Millisecond

// SchedulerOption configures a Scheduler during creation.
type SchedulerOption func(*schedulerOptions)

type schedulerOptions struct {
	debounce time.Duration
	workers  int
	tier     Tier
}

func defaultSchedulerOptions() schedulerOptions {
	return schedulerOptions{
		debounce: DefaultDebounce,
		workers:  1,
		tier:     TierThumbnail,
	}
}

// WithDebounce sets the quiet period. Zero renders on the next loop turn.
func WithDebounce(d time.Duration) SchedulerOption {
	return func(o *schedulerOptions) {
		o.debounce = max(d, 0)
	}
}

// WithRenderWorkers sets how many renders may be in flight at once.
func WithRenderWorkers(n int) SchedulerOption {
	return func(o *schedulerOptions) {
		o.workers = max(n, 1)
	}
}

// WithTier selects the resolution tier previews render at.
func WithTier(t Tier) SchedulerOption {
	return func(o *schedulerOptions) {
		o.tier = t
	}
}

// ExporterOption configures an Exporter during creation.
type ExporterOption func(*exporterOptions)

type exporterOptions struct {
	encoders    []Encoder
	jpegQuality int
}

func defaultExporterOptions() exporterOptions {
	return exporterOptions{jpegQuality: 100}
}

// WithEncoders replaces the encoder chain. Encoders are tried in order.
// An empty chain makes every export fail with ErrEncode.
func WithEncoders(encoders ...Encoder) ExporterOption {
	return func(o *exporterOptions) {
		o.encoders = append(make([]Encoder, 0, len(encoders)), encoders...)
	}
}

// WithJPEGQuality sets the quality of the default JPEG encoder, 1 to 100.
func WithJPEGQuality(q int) ExporterOption {
	return func(o *exporterOptions) {
		o.jpegQuality = min(max(q, 1), 100)
	}
}

// DefaultThumbnailEdge is the long-edge limit of the thumbnail tier.
const DefaultThumbnailEdge = 1024

// BaseImageOption configures NewBaseImage.
type BaseImageOption func(*baseImageOptions)

type baseImageOptions struct {
	thumbEdge int
	interp    draw.Interpolator
}

func defaultBaseImageOptions() baseImageOptions {
	return baseImageOptions{
		thumbEdge: DefaultThumbnailEdge,
		interp:    draw.CatmullRom,
	}
}

// WithThumbnailEdge sets the long-edge limit of the thumbnail tier.
func WithThumbnailEdge(px int) BaseImageOption {
	return func(o *baseImageOptions) {
		if px > 0 {
			o.thumbEdge = px
		}
	}
}

// WithInterpolator sets the scaler used for the thumbnail tier, for example
// draw.ApproxBiLinear for faster session setup.
func WithInterpolator(i draw.Interpolator) BaseImageOption {
	return func(o *baseImageOptions) {
		if i != nil {
			o.interp = i
		}
	}
}
