package border

import (
	"image"
	"image/color"

	"github.com/xob0t/GoToken/pkg/canvas"
)

// FallbackColor is the light gray of the procedural ring.
var FallbackColor = color.RGBA{R: 220, G: 220, B: 220, A: 255}

// FallbackRing draws a plain annulus of the given width just outside the
// stencil circle. It is used when no atlas is loaded. The background layer
// is blank.
func FallbackRing(d canvas.Dimensions, width int, c color.RGBA) (bg, fg *image.NRGBA) {
	bg = canvas.NewBlank(d)
	fg = canvas.NewBlank(d)

	size := int(d.Size)
	center := d.Center()
	inner := int(d.StencilRadius)
	outer := inner + max(width, 0)
	inner2, outer2 := inner*inner, outer*outer

	for y := 0; y < size; y++ {
		dy := y - center
		for x := 0; x < size; x++ {
			dx := x - center
			d2 := dx*dx + dy*dy
			if d2 <= inner2 || d2 > outer2 {
				continue
			}
			i := fg.PixOffset(x, y)
			fg.Pix[i], fg.Pix[i+1], fg.Pix[i+2], fg.Pix[i+3] = c.R, c.G, c.B, c.A
		}
	}
	return bg, fg
}
