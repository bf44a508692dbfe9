package adjust

import (
	"image"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"
)

// EnsureCanonicalFormat redraws img into a freshly allocated premultiplied
// RGBA8 bitmap. A *Bitmap keeps its byte order and orientation tag but is
// still copied, so the caller owns the result.
//
// It returns a FormatError when img has no readable pixel buffer.
func EnsureCanonicalFormat(img image.Image) (out *Bitmap, err error) {
	if img == nil {
		return nil, formatErrorf("nil image")
	}
	if b, ok := img.(*Bitmap); ok {
		if err := b.Validate(); err != nil {
			return nil, err
		}
		c := b.Clone()
		clampPremultiplied(c.pix)
		return c, nil
	}

	r := img.Bounds()
	if r.Empty() {
		return nil, formatErrorf("empty bounds %v", r)
	}
	if src, ok := img.(*image.RGBA); ok && len(src.Pix) < rgbaExtent(src) {
		return nil, formatErrorf("pixel buffer holds %d bytes, need %d", len(src.Pix), rgbaExtent(src))
	}

	defer func() {
		if p := recover(); p != nil {
			out, err = nil, formatErrorf("unreadable source: %v", p)
		}
	}()

	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	clampPremultiplied(dst.Pix)

	return &Bitmap{
		width:       r.Dx(),
		height:      r.Dy(),
		format:      gputypes.TextureFormatRGBA8Unorm,
		orientation: OrientationUp,
		pix:         dst.Pix,
	}, nil
}

// rgbaExtent is the minimum Pix length that covers src's bounds.
func rgbaExtent(src *image.RGBA) int {
	r := src.Rect
	if r.Empty() {
		return 0
	}
	return src.PixOffset(r.Max.X-1, r.Max.Y-1) + 4 - src.PixOffset(r.Min.X, r.Min.Y)
}

// clampPremultiplied caps every color byte at its alpha.
func clampPremultiplied(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		a := pix[i+3]
		pix[i] = min(pix[i], a)
		pix[i+1] = min(pix[i+1], a)
		pix[i+2] = min(pix[i+2], a)
	}
}

// NormalizeOrientation re-renders b so that it displays upright and reports
// OrientationUp. An upright bitmap is returned as is, so applying it twice
// equals applying it once. An unknown tag yields a shallow copy tagged up
// that shares b's pixels; b itself is not modified.
func NormalizeOrientation(b *Bitmap) *Bitmap {
	m := b.orientation.remap()
	if m.IsIdentity() {
		if b.orientation == OrientationUp {
			return b
		}
		Logger().Debug("adjust: unknown orientation treated as up", "orientation", b.orientation)
		up := *b
		up.orientation = OrientationUp
		return &up
	}

	w, h := m.Size(b.width, b.height)
	out := &Bitmap{
		width:       w,
		height:      h,
		format:      b.format,
		orientation: OrientationUp,
		pix:         make([]byte, w*h*4),
	}
	m.Apply(out.pix, out.Stride(), b.pix, b.Stride(), b.width, b.height)
	return out
}

// Normalize canonicalizes the pixel format of img and then its orientation.
// A non-zero o overrides the tag of a *Bitmap source.
func Normalize(img image.Image, o Orientation) (*Bitmap, error) {
	b, err := EnsureCanonicalFormat(img)
	if err != nil {
		return nil, err
	}
	if o != 0 {
		b.orientation = o
	}
	return NormalizeOrientation(b), nil
}
