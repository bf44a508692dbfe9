package filter

import (
	"github.com/gogpu/adjust/internal/image"
	"github.com/gogpu/adjust/internal/parallel"
)

// Pixelate replaces every block×block cell of buf with its mean
// premultiplied color. Cells are aligned to the top-left corner; edge cells
// are clipped to the buffer. block <= 1 leaves buf unchanged.
func Pixelate(buf *image.Buf, block int, pool *parallel.WorkerPool) {
	if block <= 1 {
		return
	}
	w, h := buf.Width(), buf.Height()
	cellRows := (h + block - 1) / block

	pool.Rows(cellRows, func(c0, c1 int) {
		for cy := c0; cy < c1; cy++ {
			y0 := cy * block
			y1 := min(y0+block, h)
			for x0 := 0; x0 < w; x0 += block {
				x1 := min(x0+block, w)
				fillCell(buf, x0, y0, x1, y1)
			}
		}
	})
}

func fillCell(buf *image.Buf, x0, y0, x1, y1 int) {
	var sum [4]float64
	for y := y0; y < y1; y++ {
		row := buf.Row(y)[x0*image.Channels : x1*image.Channels]
		for i := 0; i < len(row); i += image.Channels {
			sum[0] += float64(row[i])
			sum[1] += float64(row[i+1])
			sum[2] += float64(row[i+2])
			sum[3] += float64(row[i+3])
		}
	}

	n := float64((x1 - x0) * (y1 - y0))
	mean := [4]float32{
		float32(sum[0] / n),
		float32(sum[1] / n),
		float32(sum[2] / n),
		float32(sum[3] / n),
	}
	for y := y0; y < y1; y++ {
		row := buf.Row(y)[x0*image.Channels : x1*image.Channels]
		for i := 0; i < len(row); i += image.Channels {
			copy(row[i:i+4], mean[:])
		}
	}
}
