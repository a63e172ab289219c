// Package shadow synthesizes soft drop shadows from an image's alpha channel.
package shadow

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// Spec describes a drop shadow. Color alpha is ignored; Opacity scales the
// source alpha instead.
type Spec struct {
	Color      color.RGBA
	Opacity    float32
	BlurRadius float32
	OffsetX    int32
	OffsetY    int32
}

// ImageDefault is the shadow cast by the subject picture.
var ImageDefault = Spec{
	Color:      color.RGBA{A: 255},
	Opacity:    0.4,
	BlurRadius: 3,
	OffsetX:    5,
	OffsetY:    5,
}

// RingDefault is the shadow the ring casts inward onto the picture.
var RingDefault = Spec{
	Color:      color.RGBA{A: 255},
	Opacity:    0.8,
	BlurRadius: 10,
	OffsetX:    7,
	OffsetY:    12,
}

// Validate checks that opacity lies in [0,1] and the blur radius is not
// negative.
func (s Spec) Validate() error {
	if !(s.Opacity >= 0 && s.Opacity <= 1) {
		return fmt.Errorf("shadow opacity %v out of range [0,1]", s.Opacity)
	}
	if !(s.BlurRadius >= 0) || math.IsInf(float64(s.BlurRadius), 0) {
		return fmt.Errorf("shadow blur radius %v must be a finite number >= 0", s.BlurRadius)
	}
	return nil
}

// Synthesize returns a shadow of img with the same size as img.
//
// Output pixel (x, y) takes its alpha from img at (x-OffsetX, y-OffsetY),
// zero when that lies outside img, scaled by Opacity. Every pixel carries
// the shadow color. The colored buffer is then Gaussian blurred.
func Synthesize(img *image.NRGBA, s Spec) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	ox, oy := int(s.OffsetX), int(s.OffsetY)

	for y := 0; y < h; y++ {
		sy := y - oy
		for x := 0; x < w; x++ {
			sx := x - ox

			var a uint8
			if sx >= 0 && sx < w && sy >= 0 && sy < h {
				sa := img.Pix[img.PixOffset(b.Min.X+sx, b.Min.Y+sy)+3]
				a = clampUint8(float32(sa) * s.Opacity)
			}

			di := dst.PixOffset(x, y)
			dst.Pix[di] = s.Color.R
			dst.Pix[di+1] = s.Color.G
			dst.Pix[di+2] = s.Color.B
			dst.Pix[di+3] = a
		}
	}

	return Blur(dst, float64(s.BlurRadius))
}
