package blend

import (
	"github.com/gogpu/adjust/internal/image"
	"github.com/gogpu/adjust/internal/parallel"
)

// Layer composites source over backdrop with mode and writes the result to
// dst. dst may alias backdrop or source.
func Layer(dst, backdrop, source *image.Buf, mode Mode, pool *parallel.WorkerPool) error {
	if !dst.SameSize(backdrop) || !dst.SameSize(source) {
		return image.ErrSizeMismatch
	}
	w := dst.Width()
	pool.Rows(dst.Height(), func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			b, s, d := backdrop.Row(y), source.Row(y), dst.Row(y)
			for x := 0; x < w; x++ {
				i := x * image.Channels
				p := Composite(Pixel(s[i:i+4]), Pixel(b[i:i+4]), mode)
				copy(d[i:i+4], p[:])
			}
		}
	})
	return nil
}

// Solid composites a uniform premultiplied color over backdrop.
func Solid(dst, backdrop *image.Buf, color Pixel, mode Mode, pool *parallel.WorkerPool) error {
	if !dst.SameSize(backdrop) {
		return image.ErrSizeMismatch
	}
	w := dst.Width()
	pool.Rows(dst.Height(), func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			b, d := backdrop.Row(y), dst.Row(y)
			for x := 0; x < w; x++ {
				i := x * image.Channels
				p := Composite(color, Pixel(b[i:i+4]), mode)
				copy(d[i:i+4], p[:])
			}
		}
	})
	return nil
}

// Mix writes a*(1-t) + b*t into dst channel by channel. t outside [0, 1]
// extrapolates.
func Mix(dst, a, b *image.Buf, t float32, pool *parallel.WorkerPool) error {
	if !dst.SameSize(a) || !dst.SameSize(b) {
		return image.ErrSizeMismatch
	}
	u := 1 - t
	pool.Rows(dst.Height(), func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			ra, rb, rd := a.Row(y), b.Row(y), dst.Row(y)
			for i := range rd {
				rd[i] = ra[i]*u + rb[i]*t
			}
		}
	})
	return nil
}
