package adjust

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"sync"
)

// EncodeFormat identifies an output container.
type EncodeFormat uint8

const (
	// FormatHEIC is HEIF with HEVC coding.
	FormatHEIC EncodeFormat = iota
	// FormatJPEG is baseline JPEG.
	FormatJPEG
	// FormatPNG is lossless PNG.
	FormatPNG
)

func (f EncodeFormat) String() string {
	switch f {
	case FormatHEIC:
		return "heic"
	case FormatJPEG:
		return "jpeg"
	case FormatPNG:
		return "png"
	default:
		return fmt.Sprintf("EncodeFormat(%d)", uint8(f))
	}
}

// Extension returns the conventional file extension, with the dot.
func (f EncodeFormat) Extension() string {
	switch f {
	case FormatHEIC:
		return ".heic"
	case FormatJPEG:
		return ".jpg"
	default:
		return ".png"
	}
}

// MIMEType returns the media type.
func (f EncodeFormat) MIMEType() string {
	switch f {
	case FormatHEIC:
		return "image/heic"
	case FormatJPEG:
		return "image/jpeg"
	default:
		return "image/png"
	}
}

// Encoder writes a bitmap in one container format.
type Encoder interface {
	Format() EncodeFormat
	Encode(w io.Writer, b *Bitmap) error
}

// HEIFCodec encodes img as HEIC at quality in [0, 1]. Platforms with a
// HEIF encoder install one with RegisterHEIFCodec.
type HEIFCodec func(w io.Writer, img image.Image, quality float64) error

var (
	heifMu    sync.RWMutex
	heifCodec HEIFCodec
)

// RegisterHEIFCodec installs the HEIC codec. Passing nil removes it.
func RegisterHEIFCodec(c HEIFCodec) {
	heifMu.Lock()
	heifCodec = c
	heifMu.Unlock()
}

func registeredHEIFCodec() HEIFCodec {
	heifMu.RLock()
	defer heifMu.RUnlock()
	return heifCodec
}

// HEICEncoder encodes through the registered HEIF codec and fails with
// ErrCodecUnavailable when none is installed.
type HEICEncoder struct {
	Quality float64
}

// Format implements Encoder.
func (HEICEncoder) Format() EncodeFormat { return FormatHEIC }

// Encode implements Encoder.
func (e HEICEncoder) Encode(w io.Writer, b *Bitmap) error {
	codec := registeredHEIFCodec()
	if codec == nil {
		return ErrCodecUnavailable
	}
	return codec(w, b, e.Quality)
}

// JPEGEncoder encodes with image/jpeg. Transparent areas come out black.
type JPEGEncoder struct {
	Quality int
}

// Format implements Encoder.
func (JPEGEncoder) Format() EncodeFormat { return FormatJPEG }

// Encode implements Encoder.
func (e JPEGEncoder) Encode(w io.Writer, b *Bitmap) error {
	return jpeg.Encode(w, b.ToRGBA(), &jpeg.Options{Quality: e.Quality})
}

// PNGEncoder encodes with image/png.
type PNGEncoder struct {
	Compression png.CompressionLevel
}

// Format implements Encoder.
func (PNGEncoder) Format() EncodeFormat { return FormatPNG }

// Encode implements Encoder.
func (e PNGEncoder) Encode(w io.Writer, b *Bitmap) error {
	enc := png.Encoder{CompressionLevel: e.Compression}
	return enc.Encode(w, b.ToRGBA())
}

// DefaultEncoders returns the commit chain: HEIC at full quality, then
// JPEG at jpegQuality, then PNG.
func DefaultEncoders(jpegQuality int) []Encoder {
	return []Encoder{
		HEICEncoder{Quality: 1},
		JPEGEncoder{Quality: jpegQuality},
		PNGEncoder{},
	}
}
