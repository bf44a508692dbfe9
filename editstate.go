package adjust

import "math"

// Range is the inclusive domain of a numeric EditState field.
type Range struct {
	Min, Max float64
}

// Clamp returns v limited to r. NaN maps to def.
func (r Range) Clamp(v, def float64) float64 {
	return clampRange(v, r.Min, r.Max, def)
}

// Ranges of the numeric EditState fields.
var (
	ContrastRange         = Range{0.5, 1.5}
	BrightnessRange       = Range{-0.5, 0.5}
	ExposureRange         = Range{-2, 2}
	SaturationRange       = Range{0, 2}
	VibranceRange         = Range{-1, 1}
	OpacityRange          = Range{0, 1}
	ColorInvertRange      = Range{0, 1}
	PixelateRange         = Range{1, 40}
	TintIntensityRange    = Range{0, 1}
	DuotoneIntensityRange = Range{0, 2}
)

var (
	defaultDuotoneShadow    = Color{R: 0.10, G: 0.05, B: 0.35, A: 1}
	defaultDuotoneHighlight = Color{R: 1.00, G: 0.85, B: 0.30, A: 1}
)

// EditState is the full set of adjustable parameters of one editing
// session. It is a plain value: copies are snapshots and == is equality.
type EditState struct {
	Contrast       float64
	Brightness     float64
	Exposure       float64
	Saturation     float64
	Vibrance       float64
	Opacity        float64
	ColorInvert    float64
	PixelateAmount float64

	ColorTint          Color
	ColorTintIntensity float64

	DuotoneEnabled            bool
	DuotoneShadowColor        Color
	DuotoneHighlightColor     Color
	DuotoneShadowIntensity    float64
	DuotoneHighlightIntensity float64
}

// DefaultEditState returns the state that renders the base image unchanged.
func DefaultEditState() EditState {
	return EditState{
		Contrast:                  1,
		Saturation:                1,
		Opacity:                   1,
		PixelateAmount:            1,
		ColorTintIntensity:        1,
		DuotoneShadowColor:        defaultDuotoneShadow,
		DuotoneHighlightColor:     defaultDuotoneHighlight,
		DuotoneShadowIntensity:    0.5,
		DuotoneHighlightIntensity: 0.5,
	}
}

// IsDefault reports whether s equals DefaultEditState.
func (s EditState) IsDefault() bool {
	return s == DefaultEditState()
}

// Clamped returns a copy with every field inside its documented range.
// NaN fields take their default.
func (s EditState) Clamped() EditState {
	d := DefaultEditState()
	return EditState{
		Contrast:       ContrastRange.Clamp(s.Contrast, d.Contrast),
		Brightness:     BrightnessRange.Clamp(s.Brightness, d.Brightness),
		Exposure:       ExposureRange.Clamp(s.Exposure, d.Exposure),
		Saturation:     SaturationRange.Clamp(s.Saturation, d.Saturation),
		Vibrance:       VibranceRange.Clamp(s.Vibrance, d.Vibrance),
		Opacity:        OpacityRange.Clamp(s.Opacity, d.Opacity),
		ColorInvert:    ColorInvertRange.Clamp(s.ColorInvert, d.ColorInvert),
		PixelateAmount: PixelateRange.Clamp(s.PixelateAmount, d.PixelateAmount),

		ColorTint:          s.ColorTint.Clamped(),
		ColorTintIntensity: TintIntensityRange.Clamp(s.ColorTintIntensity, d.ColorTintIntensity),

		DuotoneEnabled:            s.DuotoneEnabled,
		DuotoneShadowColor:        s.DuotoneShadowColor.Clamped(),
		DuotoneHighlightColor:     s.DuotoneHighlightColor.Clamped(),
		DuotoneShadowIntensity:    DuotoneIntensityRange.Clamp(s.DuotoneShadowIntensity, d.DuotoneShadowIntensity),
		DuotoneHighlightIntensity: DuotoneIntensityRange.Clamp(s.DuotoneHighlightIntensity, d.DuotoneHighlightIntensity),
	}
}

// Changed returns the names of the fields that differ between s and o.
func (s EditState) Changed(o EditState) []string {
	var out []string
	add := func(name string, differ bool) {
		if differ {
			out = append(out, name)
		}
	}
	add("contrast", s.Contrast != o.Contrast)
	add("brightness", s.Brightness != o.Brightness)
	add("exposure", s.Exposure != o.Exposure)
	add("saturation", s.Saturation != o.Saturation)
	add("vibrance", s.Vibrance != o.Vibrance)
	add("opacity", s.Opacity != o.Opacity)
	add("color_invert", s.ColorInvert != o.ColorInvert)
	add("pixelate_amount", s.PixelateAmount != o.PixelateAmount)
	add("color_tint", s.ColorTint != o.ColorTint)
	add("color_tint_intensity", s.ColorTintIntensity != o.ColorTintIntensity)
	add("duotone_enabled", s.DuotoneEnabled != o.DuotoneEnabled)
	add("duotone_shadow_color", s.DuotoneShadowColor != o.DuotoneShadowColor)
	add("duotone_highlight_color", s.DuotoneHighlightColor != o.DuotoneHighlightColor)
	add("duotone_shadow_intensity", s.DuotoneShadowIntensity != o.DuotoneShadowIntensity)
	add("duotone_highlight_intensity", s.DuotoneHighlightIntensity != o.DuotoneHighlightIntensity)
	return out
}

// tintWeight is the cross-dissolve weight of the tint stage. The 0.1 floor
// keeps any non-zero tint visible.
func (s EditState) tintWeight() float64 {
	return 0.1 + s.ColorTintIntensity*0.9
}

func clampRange(v, lo, hi, def float64) float64 {
	if math.IsNaN(v) {
		return def
	}
	return min(max(v, lo), hi)
}
