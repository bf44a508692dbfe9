// Package blend implements W3C separable blend modes on premultiplied float
// pixels.
//
// Every mode composites a source over a backdrop with
//
//	co = cs*(1 - ab) + cb*(1 - as) + as*ab*B(Cb, Cs)
//	ao = as + ab*(1 - as)
//
// where lower-case values are premultiplied and Cb, Cs are unpremultiplied.
//
// Reference: https://www.w3.org/TR/compositing-1/#blending
package blend

// Mode selects the separable blend function B.
type Mode uint8

const (
	// ModeNormal is plain source-over: B(Cb, Cs) = Cs.
	ModeNormal Mode = iota
	// ModeMultiply: B(Cb, Cs) = Cb * Cs.
	ModeMultiply
	// ModeScreen: B(Cb, Cs) = Cb + Cs - Cb*Cs.
	ModeScreen
	// ModeOverlay is HardLight with the arguments swapped.
	ModeOverlay
	// ModeColorBurn darkens the backdrop toward the source.
	ModeColorBurn
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeMultiply:
		return "multiply"
	case ModeScreen:
		return "screen"
	case ModeOverlay:
		return "overlay"
	case ModeColorBurn:
		return "color-burn"
	default:
		return "unknown"
	}
}

// Valid reports whether m names a known mode.
func (m Mode) Valid() bool {
	return m <= ModeColorBurn
}

// Pixel is a premultiplied RGBA value.
type Pixel = [4]float32

func multiply(cb, cs float32) float32 { return cb * cs }

func screen(cb, cs float32) float32 { return cb + cs - cb*cs }

func overlay(cb, cs float32) float32 {
	if cb <= 0.5 {
		return 2 * cb * cs
	}
	return 1 - 2*(1-cb)*(1-cs)
}

func colorBurn(cb, cs float32) float32 {
	switch {
	case cb >= 1:
		return 1
	case cs <= 0:
		return 0
	default:
		return 1 - min(1, (1-cb)/cs)
	}
}

func (m Mode) fn() func(cb, cs float32) float32 {
	switch m {
	case ModeMultiply:
		return multiply
	case ModeScreen:
		return screen
	case ModeOverlay:
		return overlay
	case ModeColorBurn:
		return colorBurn
	default:
		return nil
	}
}

// Composite blends source s over backdrop b.
func Composite(s, b Pixel, mode Mode) Pixel {
	as, ab := s[3], b[3]
	if mode == ModeNormal {
		inv := 1 - as
		return Pixel{s[0] + b[0]*inv, s[1] + b[1]*inv, s[2] + b[2]*inv, as + ab*inv}
	}
	return separable(s, b, mode.fn())
}

func separable(s, b Pixel, f func(cb, cs float32) float32) Pixel {
	as, ab := s[3], b[3]
	if as <= 0 {
		return b
	}
	if ab <= 0 {
		return s
	}

	invAs, invAb, both := 1-as, 1-ab, as*ab
	var out Pixel
	for i := range 3 {
		cs := s[i] / as
		cb := b[i] / ab
		out[i] = s[i]*invAb + b[i]*invAs + both*f(cb, cs)
	}
	out[3] = as + ab*invAs
	return out
}
