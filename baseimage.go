package adjust

import (
	"image"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"
)

// Tier is a resolution tier of a BaseImage.
type Tier uint8

const (
	// TierThumbnail is the downscaled tier used for interactive previews.
	TierThumbnail Tier = iota
	// TierFull is the original resolution used for export.
	TierFull
)

func (t Tier) String() string {
	switch t {
	case TierThumbnail:
		return "thumbnail"
	case TierFull:
		return "full"
	default:
		return "unknown"
	}
}

// BaseImage is the normalized source of one editing session and its
// thumbnail tier. It is immutable after construction and safe to share
// between goroutines.
type BaseImage struct {
	full  *Bitmap
	thumb *Bitmap
	scale float64
}

// NewBaseImage normalizes img with orientation o and derives the thumbnail
// tier. Images whose long edge already fits use the full bitmap for both
// tiers.
func NewBaseImage(img image.Image, o Orientation, opts ...BaseImageOption) (*BaseImage, error) {
	cfg := defaultBaseImageOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	full, err := Normalize(img, o)
	if err != nil {
		return nil, err
	}

	b := &BaseImage{full: full, thumb: full, scale: 1}
	long := max(full.width, full.height)
	if long > cfg.thumbEdge {
		b.scale = float64(cfg.thumbEdge) / float64(long)
		w := max(1, int(float64(full.width)*b.scale+0.5))
		h := max(1, int(float64(full.height)*b.scale+0.5))
		b.thumb = scaleBitmap(full, w, h, cfg)
	}

	Logger().Info("adjust: session opened",
		"width", full.width, "height", full.height,
		"thumb_width", b.thumb.width, "thumb_height", b.thumb.height)
	return b, nil
}

func scaleBitmap(src *Bitmap, w, h int, cfg baseImageOptions) *Bitmap {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	in := src.ToRGBA()
	cfg.interp.Scale(dst, dst.Bounds(), in, in.Bounds(), draw.Src, nil)
	clampPremultiplied(dst.Pix)

	out := &Bitmap{
		width:       w,
		height:      h,
		format:      src.format,
		orientation: OrientationUp,
		pix:         dst.Pix,
	}
	if src.format == gputypes.TextureFormatBGRA8Unorm {
		swapRB(out.pix)
	}
	return out
}

// Full returns the full-resolution bitmap.
func (b *BaseImage) Full() *Bitmap { return b.full }

// Thumbnail returns the thumbnail bitmap.
func (b *BaseImage) Thumbnail() *Bitmap { return b.thumb }

// Bitmap returns the bitmap of tier t.
func (b *BaseImage) Bitmap(t Tier) *Bitmap {
	if t == TierFull {
		return b.full
	}
	return b.thumb
}

// Scale returns the size of tier t relative to the full tier.
func (b *BaseImage) Scale(t Tier) float64 {
	if t == TierFull {
		return 1
	}
	return b.scale
}
