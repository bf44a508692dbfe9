package filter

import (
	"testing"

	"github.com/gogpu/adjust/internal/image"
)

// Test helper functions shared across filter tests.

// filledBuf creates a buffer filled with one premultiplied pixel.
func filledBuf(t *testing.T, w, h int, p [4]float32) *image.Buf {
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

// approxEqual compares two pixels with tolerance.
func approxEqual(a, b [4]float32, tolerance float32) bool {
	for i := range a {
		if absf32(a[i]-b[i]) > tolerance {
			return false
		}
	}
	return true
}

// absf32 returns the absolute value of a float32.
func absf32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
