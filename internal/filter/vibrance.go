package filter

import (
	"github.com/gogpu/adjust/internal/image"
	"github.com/gogpu/adjust/internal/parallel"
)

// Vibrance boosts chroma more for pixels that are less saturated.
//
// Per pixel, with s = max(R,G,B) - min(R,G,B) in straight alpha, chroma is
// scaled around Rec. 709 luminance by 1 + amount*(1 - s). Zero is identity.
func Vibrance(buf *image.Buf, amount float32, pool *parallel.WorkerPool) {
	if amount == 0 {
		return
	}
	w := buf.Width()
	pool.Rows(buf.Height(), func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := buf.Row(y)
			for x := 0; x < w; x++ {
				px := row[x*image.Channels : x*image.Channels+4]
				r, g, b, a := unpremultiply(px)
				if a <= 0 {
					continue
				}
				sat := max(r, g, b) - min(r, g, b)
				k := 1 + amount*(1-sat)
				lum := LumR*r + LumG*g + LumB*b
				px[0] = (lum + (r-lum)*k) * a
				px[1] = (lum + (g-lum)*k) * a
				px[2] = (lum + (b-lum)*k) * a
			}
		}
	})
}
