package adjust

import (
	"fmt"

	intImage "github.com/gogpu/adjust/internal/image"
)

// Orientation is the EXIF orientation tag of a bitmap: how stored pixels
// must be transformed to display upright. The zero value means unknown.
type Orientation uint8

// EXIF orientations, numbered as in the TIFF/EXIF Orientation tag.
const (
	OrientationUp            Orientation = 1 // no transform
	OrientationUpMirrored    Orientation = 2 // mirror horizontally
	OrientationDown          Orientation = 3 // rotate 180
	OrientationDownMirrored  Orientation = 4 // mirror vertically
	OrientationLeftMirrored  Orientation = 5 // transpose
	OrientationRight         Orientation = 6 // rotate 90 clockwise
	OrientationRightMirrored Orientation = 7 // transverse
	OrientationLeft          Orientation = 8 // rotate 90 counter-clockwise
)

var orientationNames = [...]string{
	OrientationUp:            "up",
	OrientationUpMirrored:    "up-mirrored",
	OrientationDown:          "down",
	OrientationDownMirrored:  "down-mirrored",
	OrientationLeftMirrored:  "left-mirrored",
	OrientationRight:         "right",
	OrientationRightMirrored: "right-mirrored",
	OrientationLeft:          "left",
}

// Valid reports whether o is one of the eight EXIF orientations.
func (o Orientation) Valid() bool {
	return o >= OrientationUp && o <= OrientationLeft
}

func (o Orientation) String() string {
	if o.Valid() {
		return orientationNames[o]
	}
	return fmt.Sprintf("Orientation(%d)", uint8(o))
}

// remap returns the pixel permutation that displays o upright.
func (o Orientation) remap() intImage.Remap {
	switch o {
	case OrientationUpMirrored:
		return intImage.Remap{FlipX: true}
	case OrientationDown:
		return intImage.Remap{FlipX: true, FlipY: true}
	case OrientationDownMirrored:
		return intImage.Remap{FlipY: true}
	case OrientationLeftMirrored:
		return intImage.Remap{Transpose: true}
	case OrientationRight:
		return intImage.Remap{Transpose: true, FlipY: true}
	case OrientationRightMirrored:
		return intImage.Remap{Transpose: true, FlipX: true, FlipY: true}
	case OrientationLeft:
		return intImage.Remap{Transpose: true, FlipX: true}
	default:
		return intImage.Remap{}
	}
}
