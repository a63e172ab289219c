// recolor.go — Ring tinting.
package border

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
)

// ColorParseError reports a tint that is not a hex color.
type ColorParseError struct {
	Value string
	Err   error
}

func (e *ColorParseError) Error() string {
	return fmt.Sprintf("invalid ring color %q: %v", e.Value, e.Err)
}

func (e *ColorParseError) Unwrap() error { return e.Err }

// ParseTint parses "#rrggbb" or "#rgb". The leading '#' is optional.
func ParseTint(s string) (color.RGBA, error) {
	hex := strings.TrimSpace(s)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, &ColorParseError{Value: s, Err: err}
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// AutoTint picks the dominant color of img, for rings that match the
// subject.
func AutoTint(img image.Image) color.RGBA {
	c := dominantcolor.Find(img)
	c.A = 255
	return c
}

// Recolor tints the color band of a ring frame.
//
// A pixel is in the band when its squared distance to the frame center
// (w/2, h/2) lies between the squared start and end radii, inclusive. Radii
// are fractions of the half-width; their squares are truncated to whole
// pixels. In-band pixels take the tint scaled by their red channel as
// albedo and keep their alpha. Everything else is copied unchanged.
func Recolor(img *image.NRGBA, band ColorBand, tint color.RGBA) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	half := float32(w) / 2
	start := band.StartRadius * half
	end := band.EndRadius * half
	lo, hi := int(start*start), int(end*end)
	cx, cy := w/2, h/2

	base := colorful.Color{R: float64(tint.R) / 255, G: float64(tint.G) / 255, B: float64(tint.B) / 255}

	for y := 0; y < h; y++ {
		dy := y - cy
		for x := 0; x < w; x++ {
			dx := x - cx
			si := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			di := dst.PixOffset(x, y)
			copy(dst.Pix[di:di+4], img.Pix[si:si+4])

			d2 := dx*dx + dy*dy
			if d2 < lo || d2 > hi {
				continue
			}
			albedo := float64(img.Pix[si]) / 255
			c := colorful.Color{R: base.R * albedo, G: base.G * albedo, B: base.B * albedo}
			dst.Pix[di], dst.Pix[di+1], dst.Pix[di+2] = c.RGB255()
		}
	}
	return dst
}
