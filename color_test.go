package adjust

import (
	"math"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#ff0000", Color{R: 1, A: 1}},
		{"00ff00", Color{G: 1, A: 1}},
		{"#fff", Color{R: 1, G: 1, B: 1, A: 1}},
		{"#0000ff80", Color{B: 1, A: 128.0 / 255}},
		{" #00000000 ", Color{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if err != nil {
				t.Fatalf("ParseColor(%q): %v", tt.in, err)
			}
			if !colorNear(got, tt.want) {
				t.Errorf("ParseColor(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseColorErrors(t *testing.T) {
	for _, in := range []string{"", "#12", "#gggggg", "#ff0000zz", "red"} {
		if _, err := ParseColor(in); err == nil {
			t.Errorf("ParseColor(%q) succeeded, want error", in)
		}
	}
}

func TestColorHexRoundTrip(t *testing.T) {
	for _, hex := range []string{"#ff8800ff", "#1a0d5980", "#00000000"} {
		c, err := ParseColor(hex)
		if err != nil {
			t.Fatalf("ParseColor(%q): %v", hex, err)
		}
		if got := c.Hex(); got != hex {
			t.Errorf("Hex() = %q, want %q", got, hex)
		}
	}
}

func TestColorHasTint(t *testing.T) {
	if (Color{}).HasTint() {
		t.Error("zero color reports a tint")
	}
	if !(Color{}).IsZero() {
		t.Error("zero color is not IsZero")
	}
	tests := []struct {
		name string
		c    Color
		want bool
	}{
		{"faint black", RGBA(0, 0, 0, 0.01), true},
		{"opaque black", RGBA(0, 0, 0, 1), true},
		{"transparent red", RGBA(1, 0, 0, 0), false},
		{"transparent white", RGBA(1, 1, 1, 0), false},
	}
	for _, tt := range tests {
		if got := tt.c.HasTint(); got != tt.want {
			t.Errorf("%s: HasTint() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestColorClamped(t *testing.T) {
	got := Color{R: 2, G: -1, B: math.NaN(), A: 0.5}.Clamped()
	want := Color{R: 1, G: 0, B: 0, A: 0.5}
	if got != want {
		t.Errorf("Clamped() = %+v, want %+v", got, want)
	}
}

func colorNear(a, b Color) bool {
	const eps = 1e-9
	return math.Abs(a.R-b.R) < eps && math.Abs(a.G-b.G) < eps &&
		math.Abs(a.B-b.B) < eps && math.Abs(a.A-b.A) < eps
}
