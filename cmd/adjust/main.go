// Command adjust applies an edit state to a photo and writes the result.
//
// Usage:
//
//	adjust -in photo.jpg -out edited -contrast 1.2 -tint "#ff8800ff"
//
// The output extension is chosen from the encoder that succeeded (HEIC,
// then JPEG, then PNG).
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gogpu/adjust"
	_ "github.com/gogpu/adjust/gpu"
)

func main() {
	var (
		in          = flag.String("in", "", "input image (PNG, JPEG, GIF, BMP, TIFF, WebP)")
		out         = flag.String("out", "adjusted", "output path; the extension is added from the chosen format")
		statePath   = flag.String("state", "", "load the edit state from a YAML record")
		saveState   = flag.String("save-state", "", "write the final edit state to a YAML record")
		orientation = flag.Int("orientation", 0, "EXIF orientation 1-8; 0 reads it from the file")
		preview     = flag.String("preview", "", "also write a thumbnail-tier PNG preview to this path")
		thumb       = flag.Int("thumb", adjust.DefaultThumbnailEdge, "long edge of the preview tier in pixels")
		verbose     = flag.Bool("v", false, "log pipeline activity to stderr")
	)
	def := adjust.DefaultEditState()
	defineEditFlags(flag.CommandLine, def)
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *verbose {
		adjust.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	state := def
	if *statePath != "" {
		loaded, err := adjust.LoadRecord(*statePath)
		if err != nil {
			log.Fatalf("Failed to load state: %v", err)
		}
		state = loaded
	}

	state, err := applyEditFlags(flag.CommandLine, state)
	if err != nil {
		log.Fatal(err)
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		log.Fatalf("Failed to decode %s: %v", *in, err)
	}
	o := adjust.Orientation(*orientation)
	if o == 0 {
		o = readOrientation(data)
	}

	base, err := adjust.NewBaseImage(img, o, adjust.WithThumbnailEdge(*thumb))
	if err != nil {
		log.Fatalf("Failed to prepare image: %v", err)
	}
	log.Printf("Loaded %s (%s, %dx%d, orientation %s)", *in, format, base.Full().Width(), base.Full().Height(), o)

	ex := adjust.NewExecutor()
	defer ex.Close()

	if *preview != "" {
		if err := writePreview(ex, base, state, *preview); err != nil {
			log.Fatalf("Failed to write preview: %v", err)
		}
	}

	art, err := adjust.NewExporter(ex).Export(context.Background(), base, state)
	if err != nil {
		log.Fatalf("Failed to export: %v", err)
	}
	dst := strings.TrimSuffix(*out, filepath.Ext(*out)) + art.Format.Extension()
	if err := os.WriteFile(dst, art.Data, 0o644); err != nil { //nolint:gosec // user output
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Saved %s (%s, %dx%d, %d bytes)", dst, art.Format, art.Width, art.Height, len(art.Data))

	if *saveState != "" {
		if err := adjust.SaveRecord(*saveState, state); err != nil {
			log.Fatalf("Failed to save state: %v", err)
		}
	}
}

// defineEditFlags registers one flag per edit parameter on fs, defaulting
// to def.
func defineEditFlags(fs *flag.FlagSet, def adjust.EditState) {
	fs.Float64("contrast", def.Contrast, "contrast 0.5-1.5")
	fs.Float64("brightness", def.Brightness, "brightness -0.5-0.5")
	fs.Float64("exposure", def.Exposure, "exposure in EV -2-2")
	fs.Float64("saturation", def.Saturation, "saturation 0-2")
	fs.Float64("vibrance", def.Vibrance, "vibrance -1-1")
	fs.Float64("opacity", def.Opacity, "opacity 0-1")
	fs.Float64("invert", def.ColorInvert, "color invert 0-1")
	fs.Float64("pixelate", def.PixelateAmount, "pixelate block size at full resolution")
	fs.String("tint", "", "tint color #rrggbb or #rrggbbaa")
	fs.Float64("tint-intensity", def.ColorTintIntensity, "tint intensity 0-1")
	fs.String("duotone", "", "enable duotone with \"shadow,highlight\" colors")
	fs.Float64("duotone-shadow", def.DuotoneShadowIntensity, "duotone shadow intensity 0-2")
	fs.Float64("duotone-highlight", def.DuotoneHighlightIntensity, "duotone highlight intensity 0-2")
}

// applyEditFlags copies the edit flags set on the command line into state.
// Values are kept as given; the executor clamps its own copy when rendering.
func applyEditFlags(fs *flag.FlagSet, state adjust.EditState) (adjust.EditState, error) {
	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		getter, ok := f.Value.(flag.Getter)
		if !ok {
			return
		}
		num, _ := getter.Get().(float64)
		str, _ := getter.Get().(string)
		switch f.Name {
		case "contrast":
			state.Contrast = num
		case "brightness":
			state.Brightness = num
		case "exposure":
			state.Exposure = num
		case "saturation":
			state.Saturation = num
		case "vibrance":
			state.Vibrance = num
		case "opacity":
			state.Opacity = num
		case "invert":
			state.ColorInvert = num
		case "pixelate":
			state.PixelateAmount = num
		case "tint":
			c, perr := adjust.ParseColor(str)
			if perr != nil {
				err = fmt.Errorf("-tint: %w", perr)
				return
			}
			state.ColorTint = c
		case "tint-intensity":
			state.ColorTintIntensity = num
		case "duotone":
			shadow, high, perr := parseDuotone(str)
			if perr != nil {
				err = fmt.Errorf("-duotone: %w", perr)
				return
			}
			state.DuotoneEnabled = true
			state.DuotoneShadowColor, state.DuotoneHighlightColor = shadow, high
		case "duotone-shadow":
			state.DuotoneShadowIntensity = num
		case "duotone-highlight":
			state.DuotoneHighlightIntensity = num
		}
	})
	return state, err
}

// parseDuotone splits "shadow,highlight".
func parseDuotone(s string) (adjust.Color, adjust.Color, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return adjust.Color{}, adjust.Color{}, fmt.Errorf("want \"shadow,highlight\", got %q", s)
	}
	shadow, err := adjust.ParseColor(strings.TrimSpace(parts[0]))
	if err != nil {
		return adjust.Color{}, adjust.Color{}, err
	}
	high, err := adjust.ParseColor(strings.TrimSpace(parts[1]))
	if err != nil {
		return adjust.Color{}, adjust.Color{}, err
	}
	return shadow, high, nil
}

// readOrientation returns the EXIF orientation tag, or Up when the file has
// none.
func readOrientation(data []byte) adjust.Orientation {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return adjust.OrientationUp
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return adjust.OrientationUp
	}
	v, err := tag.Int(0)
	if err != nil || !adjust.Orientation(v).Valid() { //nolint:gosec // validated
		return adjust.OrientationUp
	}
	return adjust.Orientation(v) //nolint:gosec // validated
}

// previewTimeout bounds the wait for a preview frame.
const previewTimeout = 30 * time.Second

var errPreviewFailed = errors.New("preview render failed")

// writePreview renders the thumbnail tier through a scheduler, the way an
// interactive editor would, and saves the first frame as PNG.
func writePreview(r adjust.Renderer, base *adjust.BaseImage, state adjust.EditState, path string) error {
	sched := adjust.NewScheduler(r, base)
	defer func() { _ = sched.Close() }()

	if err := sched.Update(state); err != nil {
		return err
	}
	sched.Flush()

	poll := time.NewTicker(10 * time.Millisecond)
	defer poll.Stop()
	timeout := time.After(previewTimeout)
	for {
		select {
		case f := <-sched.Frames():
			art, err := adjust.NewExporter(r, adjust.WithEncoders(adjust.PNGEncoder{})).Encode(f.Bitmap)
			if err != nil {
				return err
			}
			return os.WriteFile(path, art.Data, 0o644) //nolint:gosec // user output
		case <-poll.C:
			if sched.Stats().Failed > 0 {
				return errPreviewFailed
			}
		case <-timeout:
			return fmt.Errorf("no preview frame after %v", previewTimeout)
		}
	}
}
