package adjust

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
)

func editedState() EditState {
	s := DefaultEditState()
	s.Contrast = 1.25
	s.Brightness = -0.1
	s.Exposure = 0.5
	s.Saturation = 1.4
	s.Vibrance = 0.3
	s.Opacity = 0.9
	s.ColorInvert = 0.2
	s.PixelateAmount = 3
	s.ColorTint = RGBA(0.9, 0.4, 0.1, 0.8)
	s.ColorTintIntensity = 0.35
	s.DuotoneEnabled = true
	s.DuotoneShadowIntensity = 0.7
	s.DuotoneHighlightIntensity = 1.2
	return s
}

func TestRecordRoundTrip(t *testing.T) {
	s := editedState()
	data, err := MarshalRecord(s)
	if err != nil {
		t.Fatalf("MarshalRecord: %v", err)
	}
	got, err := UnmarshalRecord(data)
	if err != nil {
		t.Fatalf("UnmarshalRecord: %v", err)
	}
	if got != s {
		t.Errorf("round trip changed the state:\n got %+v\nwant %+v\nchanged: %v", got, s, got.Changed(s))
	}

	// The restored state renders the same bytes.
	base := patternBitmap(t, 12, 9, gputypes.TextureFormatBGRA8Unorm)
	if !render(t, base, got).Equal(render(t, base, s)) {
		t.Error("restored state renders differently")
	}
}

func TestRecordMissingFieldsTakeDefaults(t *testing.T) {
	got, err := UnmarshalRecord([]byte("version: 1\ncontrast: 1.1\n"))
	if err != nil {
		t.Fatalf("UnmarshalRecord: %v", err)
	}
	want := DefaultEditState()
	want.Contrast = 1.1
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestRecordErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"version", "version: 2\n", "unsupported record version"},
		{"missing version", "contrast: 1\n", "unsupported record version"},
		{"short color", "version: 1\ncolor_tint: [1, 0, 0]\n", "want 4 components"},
		{"malformed", "version: [\n", "unmarshal record"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalRecord([]byte(tt.data))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestSaveLoadRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.adjust.yaml")
	s := editedState()
	if err := SaveRecord(path, s); err != nil {
		t.Fatalf("SaveRecord: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "color_tint: [") {
		t.Errorf("colors should be written in flow style:\n%s", data)
	}

	got, err := LoadRecord(path)
	if err != nil {
		t.Fatalf("LoadRecord: %v", err)
	}
	if got != s {
		t.Errorf("LoadRecord = %+v, want %+v", got, s)
	}

	if _, err := LoadRecord(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file err = %v", err)
	}
}
