package image

// Remap describes a lossless pixel permutation: an optional transpose
// followed by optional mirroring on each source axis. Every EXIF
// orientation is one of the eight combinations.
type Remap struct {
	Transpose bool
	FlipX     bool
	FlipY     bool
}

// IsIdentity reports whether the remap leaves pixels in place.
func (m Remap) IsIdentity() bool {
	return !m.Transpose && !m.FlipX && !m.FlipY
}

// Size returns the destination dimensions for a w×h source.
func (m Remap) Size(w, h int) (int, int) {
	if m.Transpose {
		return h, w
	}
	return w, h
}

// Apply copies 32-bit pixels from src (w×h, srcStride bytes per row) into
// dst according to m. dst must hold the remapped geometry with dstStride
// bytes per row.
//
// For destination (x, y) the source is (u, v) = transpose ? (y, x) : (x, y),
// then u -> w-1-u when FlipX and v -> h-1-v when FlipY.
func (m Remap) Apply(dst []byte, dstStride int, src []byte, srcStride, w, h int) {
	dw, dh := m.Size(w, h)
	for y := 0; y < dh; y++ {
		drow := dst[y*dstStride : y*dstStride+dw*4]
		for x := 0; x < dw; x++ {
			u, v := x, y
			if m.Transpose {
				u, v = y, x
			}
			if m.FlipX {
				u = w - 1 - u
			}
			if m.FlipY {
				v = h - 1 - v
			}
			s := v*srcStride + u*4
			copy(drow[x*4:x*4+4], src[s:s+4])
		}
	}
}
