package adjust

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"testing"
)

func TestExportFallsThroughToJPEG(t *testing.T) {
	RegisterHEIFCodec(nil)
	ex := NewExecutor(WithAccelerator(nil))
	defer ex.Close()

	base := newTestBase(t, 16, 12)
	art, err := NewExporter(ex).Export(context.Background(), base, contrastState(1.2))
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if art.Format != FormatJPEG {
		t.Fatalf("format = %v, want jpeg", art.Format)
	}
	img, err := jpeg.Decode(bytes.NewReader(art.Data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 16, 12) || art.Width != 16 || art.Height != 12 {
		t.Errorf("bounds %v, artifact %dx%d", img.Bounds(), art.Width, art.Height)
	}
}

func TestExportUsesRegisteredHEIFCodec(t *testing.T) {
	var gotQuality float64
	RegisterHEIFCodec(func(w io.Writer, img image.Image, quality float64) error {
		gotQuality = quality
		_, err := w.Write([]byte("heic"))
		return err
	})
	t.Cleanup(func() { RegisterHEIFCodec(nil) })

	ex := NewExecutor(WithAccelerator(nil))
	defer ex.Close()
	art, err := NewExporter(ex).Export(context.Background(), newTestBase(t, 4, 4), DefaultEditState())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if art.Format != FormatHEIC || string(art.Data) != "heic" {
		t.Errorf("artifact %v %q", art.Format, art.Data)
	}
	if gotQuality != 1 {
		t.Errorf("HEIC quality = %v, want 1", gotQuality)
	}
}

func TestEncodeFallsThroughToPNG(t *testing.T) {
	e := NewExporter(&fakeRenderer{}, WithEncoders(
		HEICEncoder{Quality: 1},
		fakeEncoder{format: FormatJPEG, err: errFake},
		PNGEncoder{},
	))
	RegisterHEIFCodec(nil)

	b := translucentBitmap(t, 5, 5)
	art, err := e.Encode(b)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if art.Format != FormatPNG {
		t.Fatalf("format = %v, want png", art.Format)
	}
	img, err := png.Decode(bytes.NewReader(art.Data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	r, _, _, a := img.At(2, 2).RGBA()
	wr, _, _, wa := b.At(2, 2).RGBA()
	// PNG stores straight alpha, so premultiplied values may move by one.
	if abs(int(r>>8)-int(wr>>8)) > 1 || a>>8 != wa>>8 {
		t.Errorf("decoded pixel r=%d a=%d, want r=%d a=%d", r>>8, a>>8, wr>>8, wa>>8)
	}
}

func TestEncodeAllFail(t *testing.T) {
	RegisterHEIFCodec(nil)
	e := NewExporter(&fakeRenderer{}, WithEncoders(
		HEICEncoder{},
		fakeEncoder{format: FormatJPEG, err: errFake},
		fakeEncoder{format: FormatPNG, err: io.ErrShortWrite},
	))

	art, err := e.Encode(translucentBitmap(t, 2, 2))
	if !errors.Is(err, ErrEncode) {
		t.Fatalf("err = %v, want ErrEncode", err)
	}
	for _, want := range []error{ErrCodecUnavailable, errFake, io.ErrShortWrite} {
		if !errors.Is(err, want) {
			t.Errorf("EncodeError does not wrap %v", want)
		}
	}
	if art.Data != nil {
		t.Error("failed encode returned data")
	}

	var ee *EncodeError
	if !errors.As(err, &ee) {
		t.Errorf("err is %T, want *EncodeError", err)
	}
}

func TestEncodeNoEncoders(t *testing.T) {
	e := NewExporter(&fakeRenderer{}, WithEncoders())
	if _, err := e.Encode(translucentBitmap(t, 2, 2)); !errors.Is(err, ErrEncode) {
		t.Errorf("err = %v, want ErrEncode", err)
	}
}

func TestExportRenderError(t *testing.T) {
	e := NewExporter(&fakeRenderer{err: errFake})
	if _, err := e.Export(context.Background(), newTestBase(t, 4, 4), DefaultEditState()); !errors.Is(err, errFake) {
		t.Errorf("err = %v, want errFake", err)
	}
	if _, err := e.Export(context.Background(), nil, DefaultEditState()); !errors.Is(err, ErrFormat) {
		t.Errorf("nil base: err = %v", err)
	}
}

func TestExportRendersFullTier(t *testing.T) {
	RegisterHEIFCodec(nil)
	base, err := NewBaseImage(translucentBitmap(t, 64, 32), OrientationUp, WithThumbnailEdge(16))
	if err != nil {
		t.Fatal(err)
	}
	r := &fakeRenderer{}
	art, err := NewExporter(r, WithEncoders(PNGEncoder{})).Export(context.Background(), base, DefaultEditState())
	if err != nil {
		t.Fatal(err)
	}
	if art.Width != 64 || art.Height != 32 {
		t.Errorf("export size %dx%d, want full resolution", art.Width, art.Height)
	}
}

func TestEncodeFormatNames(t *testing.T) {
	tests := []struct {
		f              EncodeFormat
		name, ext, mim string
	}{
		{FormatHEIC, "heic", ".heic", "image/heic"},
		{FormatJPEG, "jpeg", ".jpg", "image/jpeg"},
		{FormatPNG, "png", ".png", "image/png"},
	}
	for _, tt := range tests {
		if tt.f.String() != tt.name || tt.f.Extension() != tt.ext || tt.f.MIMEType() != tt.mim {
			t.Errorf("%v: %q %q %q", tt.f, tt.f.String(), tt.f.Extension(), tt.f.MIMEType())
		}
	}
}
