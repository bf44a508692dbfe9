package adjust

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a straight-alpha RGBA color with channels in [0, 1].
type Color struct {
	R, G, B, A float64
}

// RGBA returns a color from straight-alpha components.
func RGBA(r, g, b, a float64) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// IsZero reports whether every channel is zero.
func (c Color) IsZero() bool {
	return c == Color{}
}

// HasTint reports whether c paints anything. A fully transparent color
// premultiplies to zero and is treated as no tint.
func (c Color) HasTint() bool {
	return c.A > 0
}

// Clamped returns c with every channel clamped to [0, 1].
func (c Color) Clamped() Color {
	return Color{
		R: clampRange(c.R, 0, 1, 0),
		G: clampRange(c.G, 0, 1, 0),
		B: clampRange(c.B, 0, 1, 0),
		A: clampRange(c.A, 0, 1, 0),
	}
}

// premultiplied returns the color as a premultiplied float pixel.
func (c Color) premultiplied() [4]float32 {
	a := float32(c.A)
	return [4]float32{float32(c.R) * a, float32(c.G) * a, float32(c.B) * a, a}
}

// Hex formats c as "#rrggbbaa".
func (c Color) Hex() string {
	cc := c.Clamped()
	rgb := colorful.Color{R: cc.R, G: cc.G, B: cc.B}.Hex()
	return fmt.Sprintf("%s%02x", rgb, uint8(cc.A*255+0.5))
}

func (c Color) String() string {
	return c.Hex()
}

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa". Colors without an
// alpha component are opaque.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}

	alpha := 1.0
	if len(s) == 9 {
		v, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("adjust: parse color %q: %w", s, err)
		}
		alpha = float64(v) / 255
		s = s[:7]
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("adjust: parse color %q: %w", s, err)
	}
	return Color{R: c.R, G: c.G, B: c.B, A: alpha}, nil
}
