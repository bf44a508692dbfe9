package adjust

import (
	"bytes"
	"image"
	"image/color"

	"github.com/gogpu/gputypes"

	intImage "github.com/gogpu/adjust/internal/image"
)

// Bitmap is a canonical 32-bit premultiplied pixel buffer: RGBA8 or BGRA8,
// tightly packed, with an orientation tag.
//
// Bitmap implements image.Image so previews and exports can be handed to
// any image consumer.
type Bitmap struct {
	width       int
	height      int
	format      gputypes.TextureFormat
	orientation Orientation
	pix         []byte
}

// NewBitmap allocates a zeroed bitmap with orientation Up.
func NewBitmap(width, height int, format gputypes.TextureFormat) (*Bitmap, error) {
	if width <= 0 || height <= 0 {
		return nil, formatErrorf("invalid dimensions %dx%d", width, height)
	}
	if !isCanonicalFormat(format) {
		return nil, formatErrorf("texture format %v", format)
	}
	return &Bitmap{
		width:       width,
		height:      height,
		format:      format,
		orientation: OrientationUp,
		pix:         make([]byte, width*height*4),
	}, nil
}

// NewBitmapFromPix wraps pix without copying. pix must hold width*height
// premultiplied pixels in format.
func NewBitmapFromPix(width, height int, format gputypes.TextureFormat, pix []byte) (*Bitmap, error) {
	b := &Bitmap{
		width:       width,
		height:      height,
		format:      format,
		orientation: OrientationUp,
		pix:         pix,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func isCanonicalFormat(f gputypes.TextureFormat) bool {
	return f == gputypes.TextureFormatRGBA8Unorm || f == gputypes.TextureFormatBGRA8Unorm
}

// Width returns the width in pixels.
func (b *Bitmap) Width() int { return b.width }

// Height returns the height in pixels.
func (b *Bitmap) Height() int { return b.height }

// Stride returns the bytes per row.
func (b *Bitmap) Stride() int { return b.width * 4 }

// Format returns the pixel byte order.
func (b *Bitmap) Format() gputypes.TextureFormat { return b.format }

// Orientation returns how the stored pixels must be transformed for display.
func (b *Bitmap) Orientation() Orientation { return b.orientation }

// SetOrientation tags the bitmap without touching pixels.
func (b *Bitmap) SetOrientation(o Orientation) { b.orientation = o }

// Pix returns the raw premultiplied pixel data.
func (b *Bitmap) Pix() []byte { return b.pix }

// Validate reports a FormatError if b is not a readable canonical bitmap.
func (b *Bitmap) Validate() error {
	switch {
	case b == nil:
		return formatErrorf("nil bitmap")
	case b.width <= 0 || b.height <= 0:
		return formatErrorf("invalid dimensions %dx%d", b.width, b.height)
	case !isCanonicalFormat(b.format):
		return formatErrorf("texture format %v", b.format)
	case len(b.pix) < b.width*b.height*4:
		return formatErrorf("pixel buffer holds %d bytes, need %d", len(b.pix), b.width*b.height*4)
	}
	return nil
}

// Clone returns a deep copy.
func (b *Bitmap) Clone() *Bitmap {
	c := *b
	c.pix = bytes.Clone(b.pix[:b.width*b.height*4])
	return &c
}

// Equal reports whether b and o have identical geometry, format and bytes.
func (b *Bitmap) Equal(o *Bitmap) bool {
	if b == nil || o == nil {
		return b == o
	}
	n := b.width * b.height * 4
	return b.width == o.width && b.height == o.height && b.format == o.format &&
		bytes.Equal(b.pix[:n], o.pix[:n])
}

func (b *Bitmap) order() intImage.Order {
	if b.format == gputypes.TextureFormatBGRA8Unorm {
		return intImage.OrderBGRA
	}
	return intImage.OrderRGBA
}

// ColorModel implements image.Image.
func (b *Bitmap) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements image.Image.
func (b *Bitmap) Bounds() image.Rectangle { return image.Rect(0, 0, b.width, b.height) }

// At implements image.Image.
func (b *Bitmap) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return color.RGBA{}
	}
	i := (y*b.width + x) * 4
	p := b.pix[i : i+4 : i+4]
	if b.format == gputypes.TextureFormatBGRA8Unorm {
		return color.RGBA{R: p[2], G: p[1], B: p[0], A: p[3]}
	}
	return color.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// ToRGBA returns the pixels as an *image.RGBA. RGBA bitmaps share their
// buffer with the result.
func (b *Bitmap) ToRGBA() *image.RGBA {
	img := &image.RGBA{
		Pix:    b.pix[:b.width*b.height*4],
		Stride: b.Stride(),
		Rect:   b.Bounds(),
	}
	if b.format == gputypes.TextureFormatBGRA8Unorm {
		img.Pix = swapRB(bytes.Clone(img.Pix))
	}
	return img
}

// swapRB exchanges the first and third byte of every pixel in place.
func swapRB(pix []byte) []byte {
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
	return pix
}
