package blend

import (
	"errors"
	"testing"

	"github.com/gogpu/adjust/internal/image"
	"github.com/gogpu/adjust/internal/parallel"
)

func filled(t *testing.T, w, h int, p Pixel) *image.Buf {
	t.Helper()
	buf, err := image.NewBuf(w, h)
	if err != nil {
		t.Fatal(err)
	}
	for y := range h {
		for x := range w {
			buf.Set(x, y, p)
		}
	}
	return buf
}

func TestLayer(t *testing.T) {
	pool := parallel.NewWorkerPool(3)
	defer pool.Close()

	backdrop := filled(t, 8, 40, gray(0.8))
	source := filled(t, 8, 40, gray(0.3))
	if err := Layer(backdrop, backdrop, source, ModeOverlay, pool); err != nil {
		t.Fatal(err)
	}

	for y := range 40 {
		if got := backdrop.At(7, y); !pixelsClose(got, gray(0.72)) {
			t.Fatalf("row %d = %v, want %v", y, got, gray(0.72))
		}
	}
}

func TestSolid(t *testing.T) {
	backdrop := filled(t, 4, 4, gray(0.5))
	dst, _ := image.NewBuf(4, 4)

	if err := Solid(dst, backdrop, gray(0.5), ModeScreen, nil); err != nil {
		t.Fatal(err)
	}
	if got := dst.At(2, 2); !pixelsClose(got, gray(0.75)) {
		t.Errorf("Solid screen = %v, want %v", got, gray(0.75))
	}
	if got := backdrop.At(2, 2); got != gray(0.5) {
		t.Errorf("backdrop modified: %v", got)
	}
}

func TestMix(t *testing.T) {
	a := filled(t, 2, 2, Pixel{0.2, 0.4, 0.6, 1})
	b := filled(t, 2, 2, Pixel{0.8, 0.6, 0.4, 1})

	tests := []struct {
		t    float32
		want Pixel
	}{
		{0, Pixel{0.2, 0.4, 0.6, 1}},
		{1, Pixel{0.8, 0.6, 0.4, 1}},
		{0.5, Pixel{0.5, 0.5, 0.5, 1}},
		{0.25, Pixel{0.35, 0.45, 0.55, 1}},
	}
	for _, tt := range tests {
		dst, _ := image.NewBuf(2, 2)
		if err := Mix(dst, a, b, tt.t, nil); err != nil {
			t.Fatal(err)
		}
		if got := dst.At(1, 1); !pixelsClose(got, tt.want) {
			t.Errorf("Mix(t=%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestLayer_SizeMismatch(t *testing.T) {
	a, _ := image.NewBuf(2, 2)
	b, _ := image.NewBuf(2, 3)
	if err := Layer(a, a, b, ModeNormal, nil); !errors.Is(err, image.ErrSizeMismatch) {
		t.Errorf("Layer error = %v, want ErrSizeMismatch", err)
	}
	if err := Mix(a, a, b, 0.5, nil); !errors.Is(err, image.ErrSizeMismatch) {
		t.Errorf("Mix error = %v, want ErrSizeMismatch", err)
	}
}
