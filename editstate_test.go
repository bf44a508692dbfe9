package adjust

import (
	"math"
	"slices"
	"testing"
)

func TestDefaultEditState(t *testing.T) {
	s := DefaultEditState()
	if !s.IsDefault() {
		t.Error("DefaultEditState().IsDefault() = false")
	}
	if s.Clamped() != s {
		t.Error("default state changes when clamped")
	}
	s.Vibrance = 0.1
	if s.IsDefault() {
		t.Error("modified state reports IsDefault")
	}
}

func TestEditStateClamped(t *testing.T) {
	s := EditState{
		Contrast:                  3,
		Brightness:                -2,
		Exposure:                  math.Inf(1),
		Saturation:                math.NaN(),
		Vibrance:                  -4,
		Opacity:                   1.5,
		ColorInvert:               -0.5,
		PixelateAmount:            0,
		ColorTint:                 Color{R: 2, A: 1},
		ColorTintIntensity:        7,
		DuotoneEnabled:            true,
		DuotoneShadowIntensity:    9,
		DuotoneHighlightIntensity: -1,
	}
	got := s.Clamped()

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"contrast", got.Contrast, 1.5},
		{"brightness", got.Brightness, -0.5},
		{"exposure", got.Exposure, 2},
		{"saturation (NaN)", got.Saturation, 1},
		{"vibrance", got.Vibrance, -1},
		{"opacity", got.Opacity, 1},
		{"color invert", got.ColorInvert, 0},
		{"pixelate", got.PixelateAmount, 1},
		{"tint red", got.ColorTint.R, 1},
		{"tint intensity", got.ColorTintIntensity, 1},
		{"duotone shadow", got.DuotoneShadowIntensity, 2},
		{"duotone highlight", got.DuotoneHighlightIntensity, 0},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if !got.DuotoneEnabled {
		t.Error("DuotoneEnabled lost in Clamped")
	}
}

func TestEditStateChanged(t *testing.T) {
	a := DefaultEditState()
	b := a
	if n := a.Changed(b); len(n) != 0 {
		t.Errorf("Changed on equal states = %v", n)
	}
	b.Contrast = 1.2
	b.ColorTint = RGBA(1, 0, 0, 1)
	want := []string{"contrast", "color_tint"}
	if got := a.Changed(b); !slices.Equal(got, want) {
		t.Errorf("Changed = %v, want %v", got, want)
	}
}

func TestTintWeightFloor(t *testing.T) {
	tests := []struct {
		intensity float64
		want      float64
	}{
		{0, 0.1},
		{0.5, 0.55},
		{1, 1},
	}
	for _, tt := range tests {
		s := DefaultEditState()
		s.ColorTintIntensity = tt.intensity
		if got := s.tintWeight(); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("tintWeight(%v) = %v, want %v", tt.intensity, got, tt.want)
		}
	}
}

func TestRangeClamp(t *testing.T) {
	r := Range{Min: -1, Max: 1}
	if got := r.Clamp(0.5, 0); got != 0.5 {
		t.Errorf("in range: %v", got)
	}
	if got := r.Clamp(math.NaN(), 0.25); got != 0.25 {
		t.Errorf("NaN: %v, want default", got)
	}
	if got := r.Clamp(math.Inf(-1), 0); got != -1 {
		t.Errorf("-Inf: %v", got)
	}
}
