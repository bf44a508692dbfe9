// Package image provides the floating-point working buffers used by the
// adjustment chain.
//
// A Buf stores premultiplied RGBA with one float32 per channel. Stages read
// and write values nominally in [0, 1]; intermediate results of linear stages
// may leave that range and are clamped explicitly where a blend needs it and
// at the byte boundary.
package image

import "errors"

// Common errors for buffer operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("image: invalid dimensions")

	// ErrSizeMismatch is returned when two buffers that must share geometry do not.
	ErrSizeMismatch = errors.New("image: buffer size mismatch")

	// ErrDataTooSmall is returned when a byte slice is shorter than its geometry.
	ErrDataTooSmall = errors.New("image: data buffer too small")
)

// Channels is the number of float32 values per pixel.
const Channels = 4

// Buf is a premultiplied RGBA float32 buffer.
//
// Thread safety: concurrent writers must touch disjoint rows.
type Buf struct {
	width  int
	height int
	pix    []float32
}

// NewBuf allocates a zeroed buffer.
func NewBuf(width, height int) (*Buf, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	return &Buf{
		width:  width,
		height: height,
		pix:    make([]float32, width*height*Channels),
	}, nil
}

// Width returns the buffer width in pixels.
func (b *Buf) Width() int { return b.width }

// Height returns the buffer height in pixels.
func (b *Buf) Height() int { return b.height }

// Pix returns the raw channel data, row-major, 4 values per pixel.
func (b *Buf) Pix() []float32 { return b.pix }

// Row returns the channel values of row y.
func (b *Buf) Row(y int) []float32 {
	n := b.width * Channels
	return b.pix[y*n : (y+1)*n]
}

// At returns the premultiplied pixel at (x, y).
func (b *Buf) At(x, y int) [4]float32 {
	i := (y*b.width + x) * Channels
	return [4]float32{b.pix[i], b.pix[i+1], b.pix[i+2], b.pix[i+3]}
}

// Set stores a premultiplied pixel at (x, y).
func (b *Buf) Set(x, y int, p [4]float32) {
	i := (y*b.width + x) * Channels
	b.pix[i], b.pix[i+1], b.pix[i+2], b.pix[i+3] = p[0], p[1], p[2], p[3]
}

// SameSize reports whether b and o share dimensions.
func (b *Buf) SameSize(o *Buf) bool {
	return o != nil && b.width == o.width && b.height == o.height
}

// CopyFrom overwrites b with the contents of src.
func (b *Buf) CopyFrom(src *Buf) error {
	if !b.SameSize(src) {
		return ErrSizeMismatch
	}
	copy(b.pix, src.pix)
	return nil
}

// Clone returns a deep copy.
func (b *Buf) Clone() *Buf {
	pix := make([]float32, len(b.pix))
	copy(pix, b.pix)
	return &Buf{width: b.width, height: b.height, pix: pix}
}

// Clear zeroes every channel.
func (b *Buf) Clear() {
	clear(b.pix)
}

// ClampRows clamps rows [y0, y1) so that every channel is in [0, 1] and no
// color channel exceeds alpha.
func (b *Buf) ClampRows(y0, y1 int) {
	n := b.width * Channels
	px := b.pix[y0*n : y1*n]
	for i := 0; i < len(px); i += Channels {
		a := clamp01(px[i+3])
		px[i] = min(clamp01(px[i]), a)
		px[i+1] = min(clamp01(px[i+1]), a)
		px[i+2] = min(clamp01(px[i+2]), a)
		px[i+3] = a
	}
}

// Clamp clamps the whole buffer. See ClampRows.
func (b *Buf) Clamp() {
	b.ClampRows(0, b.height)
}

func clamp01(v float32) float32 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
