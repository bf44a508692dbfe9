package adjust

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/gputypes"
)

// patternBitmap returns an opaque w×h bitmap whose pixels differ by
// position.
func patternBitmap(t testing.TB, w, h int, format gputypes.TextureFormat) *Bitmap {
	t.Helper()
	b, err := NewBitmap(w, h, format)
	if err != nil {
		t.Fatalf("NewBitmap(%d, %d): %v", w, h, err)
	}
	for y := range h {
		for x := range w {
			i := (y*w + x) * 4
			b.pix[i+0] = byte((x*37 + y*11) % 256)
			b.pix[i+1] = byte((x*5 + y*53) % 256)
			b.pix[i+2] = byte((x*101 + y*7) % 256)
			b.pix[i+3] = 255
		}
	}
	return b
}

// grayBitmap returns an opaque w×h bitmap with every channel set to v.
func grayBitmap(t testing.TB, w, h int, v byte) *Bitmap {
	t.Helper()
	b, err := NewBitmap(w, h, gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		t.Fatalf("NewBitmap(%d, %d): %v", w, h, err)
	}
	for i := 0; i < len(b.pix); i += 4 {
		b.pix[i+0], b.pix[i+1], b.pix[i+2], b.pix[i+3] = v, v, v, 255
	}
	return b
}

// translucentBitmap returns a bitmap with alpha 128 and valid
// premultiplied colors.
func translucentBitmap(t testing.TB, w, h int) *Bitmap {
	t.Helper()
	b := patternBitmap(t, w, h, gputypes.TextureFormatRGBA8Unorm)
	for i := 0; i < len(b.pix); i += 4 {
		b.pix[i+0] /= 2
		b.pix[i+1] /= 2
		b.pix[i+2] /= 2
		b.pix[i+3] = 128
	}
	return b
}

func newTestBase(t testing.TB, w, h int) *BaseImage {
	t.Helper()
	base, err := NewBaseImage(patternBitmap(t, w, h, gputypes.TextureFormatRGBA8Unorm), OrientationUp)
	if err != nil {
		t.Fatalf("NewBaseImage: %v", err)
	}
	return base
}

func render(t testing.TB, b *Bitmap, s EditState) *Bitmap {
	t.Helper()
	ex := NewExecutor(WithAccelerator(nil))
	defer ex.Close()
	out, err := ex.Render(context.Background(), b, s, 1)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return out
}

// maxByteDiff returns the largest per-byte difference of two equal-sized
// bitmaps.
func maxByteDiff(a, b *Bitmap) int {
	d := 0
	for i := range a.pix {
		v := int(a.pix[i]) - int(b.pix[i])
		if v < 0 {
			v = -v
		}
		d = max(d, v)
	}
	return d
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t testing.TB, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func receiveFrame(t testing.TB, s *Scheduler) Frame {
	t.Helper()
	select {
	case f := <-s.Frames():
		return f
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a frame")
		return Frame{}
	}
}

// fakeRenderer records requested states and returns a copy of base.
type fakeRenderer struct {
	mu     sync.Mutex
	states []EditState
	err    error
}

func (r *fakeRenderer) Render(ctx context.Context, base *Bitmap, state EditState, _ float64) (*Bitmap, error) {
	r.mu.Lock()
	r.states = append(r.states, state)
	err := r.err
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return base.Clone(), nil
}

func (r *fakeRenderer) calls() []EditState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]EditState(nil), r.states...)
}

// gatedRenderer blocks each render until the gate keyed by the state's
// Contrast is closed.
type gatedRenderer struct {
	started chan EditState
	mu      sync.Mutex
	gates   map[float64]chan struct{}
}

func newGatedRenderer() *gatedRenderer {
	return &gatedRenderer{
		started: make(chan EditState, 16),
		gates:   make(map[float64]chan struct{}),
	}
}

func (r *gatedRenderer) gate(contrast float64) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.gates[contrast]
	if !ok {
		g = make(chan struct{})
		r.gates[contrast] = g
	}
	return g
}

func (r *gatedRenderer) Render(ctx context.Context, base *Bitmap, state EditState, _ float64) (*Bitmap, error) {
	g := r.gate(state.Contrast)
	r.started <- state
	select {
	case <-g:
		return base.Clone(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *gatedRenderer) waitStarted(t testing.TB, contrast float64) {
	t.Helper()
	select {
	case s := <-r.started:
		if s.Contrast != contrast {
			t.Fatalf("started contrast %v, want %v", s.Contrast, contrast)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("render with contrast %v never started", contrast)
	}
}

// fakeEncoder writes a fixed payload or fails.
type fakeEncoder struct {
	format EncodeFormat
	err    error
}

func (e fakeEncoder) Format() EncodeFormat { return e.format }

func (e fakeEncoder) Encode(w io.Writer, _ *Bitmap) error {
	if e.err != nil {
		_, _ = w.Write([]byte("partial"))
		return e.err
	}
	_, err := w.Write([]byte(e.format.String()))
	return err
}

var errFake = errors.New("fake failure")
