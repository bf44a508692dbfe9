package adjust

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RecordVersion is the current persisted record layout.
const RecordVersion = 1

// Record is the persisted form of an EditState, stored as a YAML sidecar
// next to the exported image. Absent fields take their defaults on load.
type Record struct {
	Version int `yaml:"version"`

	Contrast       *float64 `yaml:"contrast,omitempty"`
	Brightness     *float64 `yaml:"brightness,omitempty"`
	Exposure       *float64 `yaml:"exposure,omitempty"`
	Saturation     *float64 `yaml:"saturation,omitempty"`
	Vibrance       *float64 `yaml:"vibrance,omitempty"`
	Opacity        *float64 `yaml:"opacity,omitempty"`
	ColorInvert    *float64 `yaml:"color_invert,omitempty"`
	PixelateAmount *float64 `yaml:"pixelate_amount,omitempty"`

	ColorTint          []float64 `yaml:"color_tint,flow,omitempty"`
	ColorTintIntensity *float64  `yaml:"color_tint_intensity,omitempty"`

	DuotoneEnabled            *bool     `yaml:"duotone_enabled,omitempty"`
	DuotoneShadowColor        []float64 `yaml:"duotone_shadow_color,flow,omitempty"`
	DuotoneHighlightColor     []float64 `yaml:"duotone_highlight_color,flow,omitempty"`
	DuotoneShadowIntensity    *float64  `yaml:"duotone_shadow_intensity,omitempty"`
	DuotoneHighlightIntensity *float64  `yaml:"duotone_highlight_intensity,omitempty"`
}

// NewRecord captures every field of s. Values are stored unclamped.
func NewRecord(s EditState) Record {
	return Record{
		Version:        RecordVersion,
		Contrast:       &s.Contrast,
		Brightness:     &s.Brightness,
		Exposure:       &s.Exposure,
		Saturation:     &s.Saturation,
		Vibrance:       &s.Vibrance,
		Opacity:        &s.Opacity,
		ColorInvert:    &s.ColorInvert,
		PixelateAmount: &s.PixelateAmount,

		ColorTint:          colorSlice(s.ColorTint),
		ColorTintIntensity: &s.ColorTintIntensity,

		DuotoneEnabled:            &s.DuotoneEnabled,
		DuotoneShadowColor:        colorSlice(s.DuotoneShadowColor),
		DuotoneHighlightColor:     colorSlice(s.DuotoneHighlightColor),
		DuotoneShadowIntensity:    &s.DuotoneShadowIntensity,
		DuotoneHighlightIntensity: &s.DuotoneHighlightIntensity,
	}
}

// EditState converts the record back, filling absent fields with defaults.
func (r Record) EditState() (EditState, error) {
	if r.Version != RecordVersion {
		return EditState{}, fmt.Errorf("adjust: unsupported record version %d", r.Version)
	}

	s := DefaultEditState()
	setFloat(&s.Contrast, r.Contrast)
	setFloat(&s.Brightness, r.Brightness)
	setFloat(&s.Exposure, r.Exposure)
	setFloat(&s.Saturation, r.Saturation)
	setFloat(&s.Vibrance, r.Vibrance)
	setFloat(&s.Opacity, r.Opacity)
	setFloat(&s.ColorInvert, r.ColorInvert)
	setFloat(&s.PixelateAmount, r.PixelateAmount)
	setFloat(&s.ColorTintIntensity, r.ColorTintIntensity)
	setFloat(&s.DuotoneShadowIntensity, r.DuotoneShadowIntensity)
	setFloat(&s.DuotoneHighlightIntensity, r.DuotoneHighlightIntensity)
	if r.DuotoneEnabled != nil {
		s.DuotoneEnabled = *r.DuotoneEnabled
	}

	colors := []struct {
		name string
		src  []float64
		dst  *Color
	}{
		{"color_tint", r.ColorTint, &s.ColorTint},
		{"duotone_shadow_color", r.DuotoneShadowColor, &s.DuotoneShadowColor},
		{"duotone_highlight_color", r.DuotoneHighlightColor, &s.DuotoneHighlightColor},
	}
	for _, c := range colors {
		if c.src == nil {
			continue
		}
		if len(c.src) != 4 {
			return EditState{}, fmt.Errorf("adjust: record field %s: want 4 components, got %d", c.name, len(c.src))
		}
		*c.dst = Color{R: c.src[0], G: c.src[1], B: c.src[2], A: c.src[3]}
	}
	return s, nil
}

// MarshalRecord encodes s as a YAML record.
func MarshalRecord(s EditState) ([]byte, error) {
	data, err := yaml.Marshal(NewRecord(s))
	if err != nil {
		return nil, fmt.Errorf("adjust: marshal record: %w", err)
	}
	return data, nil
}

// UnmarshalRecord decodes a YAML record produced by MarshalRecord.
func UnmarshalRecord(data []byte) (EditState, error) {
	var r Record
	if err := yaml.Unmarshal(data, &r); err != nil {
		return EditState{}, fmt.Errorf("adjust: unmarshal record: %w", err)
	}
	return r.EditState()
}

// SaveRecord writes the record for s to path.
func SaveRecord(path string, s EditState) error {
	data, err := MarshalRecord(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("adjust: write record: %w", err)
	}
	return nil
}

// LoadRecord reads the record at path.
func LoadRecord(path string) (EditState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EditState{}, fmt.Errorf("adjust: read record: %w", err)
	}
	return UnmarshalRecord(data)
}

func colorSlice(c Color) []float64 {
	return []float64{c.R, c.G, c.B, c.A}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}
