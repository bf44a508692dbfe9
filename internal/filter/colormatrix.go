package filter

import (
	"math"

	"github.com/gogpu/adjust/internal/image"
	"github.com/gogpu/adjust/internal/parallel"
)

// Rec. 709 luminance weights.
const (
	LumR = 0.2126
	LumG = 0.7152
	LumB = 0.0722
)

// ColorMatrix is a 4x5 affine color transform in row-major order:
//
//	[R']   [m0  m1  m2  m3  m4 ]   [R]
//	[G'] = [m5  m6  m7  m8  m9 ] * [G]
//	[B']   [m10 m11 m12 m13 m14]   [B]
//	[A']   [m15 m16 m17 m18 m19]   [A]
//	                               [1]
//
// Channels are straight-alpha values in [0, 1]; the bias column uses the
// same unit.
type ColorMatrix [20]float32

// Identity returns the matrix that leaves every pixel unchanged.
func Identity() ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Saturation scales chroma around Rec. 709 luminance.
// 0 is grayscale, 1 is unchanged.
func Saturation(s float32) ColorMatrix {
	inv := 1 - s
	r, g, b := LumR*inv, LumG*inv, LumB*inv
	return ColorMatrix{
		r + s, g, b, 0, 0,
		r, g + s, b, 0, 0,
		r, g, b + s, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Luminance maps every pixel to its Rec. 709 luminance.
func Luminance() ColorMatrix {
	return Saturation(0)
}

// Exposure multiplies RGB by 2^ev.
func Exposure(ev float32) ColorMatrix {
	return Scale(float32(math.Exp2(float64(ev))))
}

// Scale multiplies RGB by k.
func Scale(k float32) ColorMatrix {
	return ColorMatrix{
		k, 0, 0, 0, 0,
		0, k, 0, 0, 0,
		0, 0, k, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Brightness adds b to RGB.
func Brightness(b float32) ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, b,
		0, 1, 0, 0, b,
		0, 0, 1, 0, b,
		0, 0, 0, 1, 0,
	}
}

// Contrast scales RGB around the 0.5 midpoint: (c - 0.5)*k + 0.5.
func Contrast(k float32) ColorMatrix {
	off := 0.5 * (1 - k)
	return ColorMatrix{
		k, 0, 0, 0, off,
		0, k, 0, 0, off,
		0, 0, k, 0, off,
		0, 0, 0, 1, 0,
	}
}

// Opacity multiplies alpha by o.
func Opacity(o float32) ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, o, 0,
	}
}

// Invert replaces RGB with 1 - RGB and keeps alpha.
func Invert() ColorMatrix {
	return ColorMatrix{
		-1, 0, 0, 0, 1,
		0, -1, 0, 0, 1,
		0, 0, -1, 0, 1,
		0, 0, 0, 1, 0,
	}
}

// Then returns the matrix that applies m first and next second.
func (m ColorMatrix) Then(next ColorMatrix) ColorMatrix {
	var out ColorMatrix
	for i := range 4 {
		for j := range 5 {
			var sum float32
			for k := range 4 {
				sum += next[i*5+k] * m[k*5+j]
			}
			if j == 4 {
				sum += next[i*5+4]
			}
			out[i*5+j] = sum
		}
	}
	return out
}

// IsIdentity reports whether m is exactly the identity.
func (m ColorMatrix) IsIdentity() bool {
	return m == Identity()
}

// Transform applies m to a single straight-alpha color.
func (m *ColorMatrix) Transform(r, g, b, a float32) (float32, float32, float32, float32) {
	return m[0]*r + m[1]*g + m[2]*b + m[3]*a + m[4],
		m[5]*r + m[6]*g + m[7]*b + m[8]*a + m[9],
		m[10]*r + m[11]*g + m[12]*b + m[13]*a + m[14],
		m[15]*r + m[16]*g + m[17]*b + m[18]*a + m[19]
}

// Apply transforms buf in place. Pixels are unpremultiplied, transformed
// and premultiplied again; a non-positive result alpha yields transparent
// black.
func (m ColorMatrix) Apply(buf *image.Buf, pool *parallel.WorkerPool) {
	w := buf.Width()
	pool.Rows(buf.Height(), func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := buf.Row(y)
			for x := 0; x < w; x++ {
				px := row[x*image.Channels : x*image.Channels+4]
				r, g, b, a := unpremultiply(px)
				r, g, b, a = m.Transform(r, g, b, a)
				if a <= 0 {
					px[0], px[1], px[2], px[3] = 0, 0, 0, 0
					continue
				}
				px[0], px[1], px[2], px[3] = r*a, g*a, b*a, a
			}
		}
	})
}

func unpremultiply(px []float32) (r, g, b, a float32) {
	a = px[3]
	if a <= 0 {
		return 0, 0, 0, 0
	}
	inv := 1 / a
	return px[0] * inv, px[1] * inv, px[2] * inv, a
}
