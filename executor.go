package adjust

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	intImage "github.com/gogpu/adjust/internal/image"
	"github.com/gogpu/adjust/internal/parallel"
)

// Renderer renders a base bitmap with an EditState. scale is the size of
// base relative to the full-resolution image and keeps spatial parameters
// consistent across tiers.
type Renderer interface {
	Render(ctx context.Context, base *Bitmap, state EditState, scale float64) (*Bitmap, error)
}

// Executor runs the fixed-order filter chain.
//
// An Executor owns a render context (scratch buffer pool, kernel worker
// pool, accelerator handle) that is expensive to build and reused across
// calls. Each Render borrows it exclusively; concurrent calls wait their
// turn. Executor is safe for concurrent use.
type Executor struct {
	sem    *semaphore.Weighted
	rc     *renderContext
	closed atomic.Bool
}

type renderContext struct {
	buffers  *intImage.Pool
	workers  *parallel.WorkerPool
	accel    StageAccelerator
	accelSet bool
}

var _ Renderer = (*Executor)(nil)

// NewExecutor creates an executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	cfg := defaultExecutorOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	rc := &renderContext{
		buffers:  intImage.NewPool(cfg.poolBucket),
		accel:    cfg.accel,
		accelSet: cfg.accelSet,
	}
	if cfg.workers != 1 {
		rc.workers = parallel.NewWorkerPool(cfg.workers)
	}
	return &Executor{sem: semaphore.NewWeighted(1), rc: rc}
}

// Render applies state to base and returns a new bitmap in base's pixel
// format. state is clamped to its documented ranges first.
//
// On failure no bitmap is returned. The error is a FormatError when base is
// not canonical and a RenderStageError when a stage failed or ctx ended.
func (e *Executor) Render(ctx context.Context, base *Bitmap, state EditState, scale float64) (*Bitmap, error) {
	if err := base.Validate(); err != nil {
		return nil, err
	}
	if !(scale > 0) || math.IsInf(scale, 0) {
		scale = 1
	}

	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, &RenderStageError{Stage: "acquire", Err: err}
	}
	defer e.sem.Release(1)
	if e.closed.Load() {
		return nil, ErrClosed
	}

	s := state.Clamped()
	run := &chainRun{ctx: ctx, rc: e.rc, accel: e.accelerator()}
	defer run.release()

	start := time.Now()
	out, err := run.execute(base, buildChain(s, scale))
	if err != nil {
		return nil, err
	}
	Logger().Debug("adjust: render complete",
		"width", out.width, "height", out.height, "elapsed", time.Since(start))
	return out, nil
}

func (e *Executor) accelerator() StageAccelerator {
	if e.rc.accelSet {
		return e.rc.accel
	}
	return Accelerator()
}

// Close waits for the render in progress and releases the worker pool.
// Later calls to Render return ErrClosed.
func (e *Executor) Close() {
	if !e.closed.CompareAndSwap(false, true) {
		return
	}
	_ = e.sem.Acquire(context.Background(), 1)
	defer e.sem.Release(1)
	e.rc.workers.Close()
}
