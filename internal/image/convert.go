package image

// Order is the byte order of a 32-bit pixel.
type Order uint8

const (
	// OrderRGBA stores R, G, B, A.
	OrderRGBA Order = iota

	// OrderBGRA stores B, G, R, A.
	OrderBGRA
)

// byteToUnit provides O(1) byte to [0, 1] conversion.
var byteToUnit [256]float32

func init() {
	for i := range byteToUnit {
		byteToUnit[i] = float32(i) / 255
	}
}

// channelIndex returns the byte offsets of R and B for the order.
func (o Order) channelIndex() (r, b int) {
	if o == OrderBGRA {
		return 2, 0
	}
	return 0, 2
}

// LoadRows fills rows [y0, y1) of dst from premultiplied 8-bit pixels.
func LoadRows(dst *Buf, src []byte, stride int, order Order, y0, y1 int) {
	ri, bi := order.channelIndex()
	w := dst.width
	for y := y0; y < y1; y++ {
		s := src[y*stride : y*stride+w*4]
		d := dst.Row(y)
		for x := 0; x < w; x++ {
			j := x * 4
			d[j] = byteToUnit[s[j+ri]]
			d[j+1] = byteToUnit[s[j+1]]
			d[j+2] = byteToUnit[s[j+bi]]
			d[j+3] = byteToUnit[s[j+3]]
		}
	}
}

// StoreRows writes rows [y0, y1) of src as premultiplied 8-bit pixels.
// Values are clamped and rounded to nearest; color never exceeds alpha.
func StoreRows(dst []byte, stride int, order Order, src *Buf, y0, y1 int) {
	ri, bi := order.channelIndex()
	w := src.width
	for y := y0; y < y1; y++ {
		s := src.Row(y)
		d := dst[y*stride : y*stride+w*4]
		for x := 0; x < w; x++ {
			j := x * 4
			a := toByte(s[j+3])
			d[j+ri] = min(toByte(s[j]), a)
			d[j+1] = min(toByte(s[j+1]), a)
			d[j+bi] = min(toByte(s[j+2]), a)
			d[j+3] = a
		}
	}
}

// toByte converts a unit value to a byte with round-to-nearest.
func toByte(v float32) byte {
	if v <= 0 || v != v {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v*255 + 0.5)
}
