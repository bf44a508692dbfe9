package adjust

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// SchedulerState is the phase of the preview state machine.
type SchedulerState int32

const (
	// StateIdle means no change is pending and no render is in flight.
	StateIdle SchedulerState = iota
	// StateDebouncing means a change is waiting for the quiet period.
	StateDebouncing
	// StateRendering means at least one render is queued or running.
	StateRendering
)

func (s SchedulerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDebouncing:
		return "debouncing"
	case StateRendering:
		return "rendering"
	default:
		return "unknown"
	}
}

// Frame is a published preview.
type Frame struct {
	Bitmap  *Bitmap
	State   EditState
	Seq     uint64
	Tier    Tier
	Elapsed time.Duration
}

// SchedulerStats counts scheduler outcomes.
type SchedulerStats struct {
	Updates    uint64 // snapshots received
	Duplicates uint64 // snapshots equal to the previous one
	Superseded uint64 // requests replaced before a worker took them
	Rendered   uint64 // renders that finished without error
	Published  uint64 // frames delivered
	Stale      uint64 // finished renders older than the published frame
	Failed     uint64 // renders that returned an error
}

type request struct {
	state EditState
	seq   uint64
}

// Scheduler debounces EditState changes and renders previews in the
// background.
//
// Update feeds snapshots from the UI goroutine into a single loop goroutine
// that owns the debounce timer, duplicate detection and sequence numbers.
// When the timer fires, the latest snapshot goes into a one-slot queue
// (a newer request replaces an unclaimed one) that render workers drain.
// A finished frame is published only if its sequence number is newer than
// the last published one, so the preview never goes back in time.
type Scheduler struct {
	renderer Renderer
	base     *BaseImage
	opts     schedulerOptions

	updates chan EditState
	flush   chan struct{}
	slot    chan request
	frames  chan Frame
	done    chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	loopWG sync.WaitGroup
	workWG sync.WaitGroup
	once   sync.Once

	pending atomic.Bool
	active  atomic.Int32

	mu        sync.Mutex
	latest    Frame
	hasLatest bool

	updatesN, duplicates, superseded atomic.Uint64
	rendered, published, stale       atomic.Uint64
	failed                           atomic.Uint64
}

// NewScheduler starts a scheduler that renders base with r.
func NewScheduler(r Renderer, base *BaseImage, opts ...SchedulerOption) *Scheduler {
	cfg := defaultSchedulerOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		renderer: r,
		base:     base,
		opts:     cfg,
		updates:  make(chan EditState),
		flush:    make(chan struct{}),
		slot:     make(chan request, 1),
		frames:   make(chan Frame, 1),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}

	s.loopWG.Add(1)
	go s.loop()
	s.workWG.Add(cfg.workers)
	for range cfg.workers {
		go s.worker()
	}
	return s
}

// Update reports a new EditState snapshot. It returns ErrClosed after Close.
func (s *Scheduler) Update(state EditState) error {
	select {
	case s.updates <- state:
		return nil
	case <-s.done:
		return ErrClosed
	}
}

// Flush ends a pending debounce immediately.
func (s *Scheduler) Flush() {
	select {
	case s.flush <- struct{}{}:
	case <-s.done:
	}
}

// Frames delivers published frames. The channel holds only the newest
// unread frame and is never closed.
func (s *Scheduler) Frames() <-chan Frame {
	return s.frames
}

// Latest returns the most recently published frame.
func (s *Scheduler) Latest() (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.hasLatest
}

// State reports the current phase.
func (s *Scheduler) State() SchedulerState {
	switch {
	case s.pending.Load():
		return StateDebouncing
	case s.active.Load() > 0:
		return StateRendering
	default:
		return StateIdle
	}
}

// Stats returns a snapshot of the counters.
func (s *Scheduler) Stats() SchedulerStats {
	return SchedulerStats{
		Updates:    s.updatesN.Load(),
		Duplicates: s.duplicates.Load(),
		Superseded: s.superseded.Load(),
		Rendered:   s.rendered.Load(),
		Published:  s.published.Load(),
		Stale:      s.stale.Load(),
		Failed:     s.failed.Load(),
	}
}

// Close stops the scheduler, cancels renders in flight and waits for the
// workers to exit. Pending changes are dropped.
func (s *Scheduler) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.cancel()
		s.loopWG.Wait()
		s.workWG.Wait()
	})
	return nil
}

func (s *Scheduler) loop() {
	defer s.loopWG.Done()
	defer close(s.slot)

	var (
		last    EditState
		lastKey EditState
		hasLast bool
		seq     uint64
		timer   *time.Timer
		timerC  <-chan time.Time
	)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
		}
		timerC = nil
	}
	fire := func() {
		stopTimer()
		seq++
		s.submit(request{state: last, seq: seq})
		s.pending.Store(false)
	}

	for {
		select {
		case st := <-s.updates:
			s.updatesN.Add(1)
			// States are compared in clamped form: NaN never equals itself,
			// and out-of-range values render like their clamped ones.
			key := st.Clamped()
			if hasLast && key == lastKey {
				s.duplicates.Add(1)
				Logger().Debug("adjust: duplicate edit state ignored")
				continue
			}
			if hasLast {
				Logger().Debug("adjust: edit state changed", "fields", st.Changed(last))
			}
			last, lastKey, hasLast = st, key, true
			s.pending.Store(true)
			if timer == nil {
				timer = time.NewTimer(s.opts.debounce)
			} else {
				timer.Reset(s.opts.debounce)
			}
			timerC = timer.C

		case <-timerC:
			fire()

		case <-s.flush:
			if s.pending.Load() {
				fire()
			}

		case <-s.done:
			stopTimer()
			s.pending.Store(false)
			return
		}
	}
}

// submit places req in the slot, replacing a request no worker has taken.
// Only the loop goroutine sends on the slot.
func (s *Scheduler) submit(req request) {
	select {
	case s.slot <- req:
		s.active.Add(1)
		return
	default:
	}

	select {
	case old := <-s.slot:
		s.superseded.Add(1)
		Logger().Debug("adjust: preview request superseded", "seq", old.seq, "by", req.seq)
	default:
		// A worker took it meanwhile; this request is a new one.
		s.active.Add(1)
	}
	s.slot <- req
}

func (s *Scheduler) worker() {
	defer s.workWG.Done()
	for req := range s.slot {
		s.render(req)
		s.active.Add(-1)
	}
}

func (s *Scheduler) render(req request) {
	bitmap := s.base.Bitmap(s.opts.tier)
	start := time.Now()

	out, err := s.renderer.Render(s.ctx, bitmap, req.state, s.base.Scale(s.opts.tier))
	if err != nil {
		s.failed.Add(1)
		if s.ctx.Err() == nil {
			Logger().Warn("adjust: preview render failed", "seq", req.seq, "err", err)
		}
		return
	}
	s.rendered.Add(1)

	s.publish(Frame{
		Bitmap:  out,
		State:   req.state,
		Seq:     req.seq,
		Tier:    s.opts.tier,
		Elapsed: time.Since(start),
	})
}

func (s *Scheduler) publish(f Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasLatest && f.Seq <= s.latest.Seq {
		s.stale.Add(1)
		Logger().Debug("adjust: stale preview discarded", "seq", f.Seq, "published", s.latest.Seq)
		return
	}
	s.latest, s.hasLatest = f, true
	s.published.Add(1)

	// Publishers are serialized by mu, so after draining the send cannot block.
	select {
	case s.frames <- f:
	default:
		select {
		case <-s.frames:
		default:
		}
		s.frames <- f
	}
}
