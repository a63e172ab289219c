// Package stencil derives keep/discard masks from an image's alpha channel
// and applies them to other images.
package stencil

import (
	"fmt"
	"image"

	"github.com/xob0t/GoToken/pkg/canvas"
)

// Mask is a read-only view over a buffer's alpha channel. It owns nothing;
// the buffer must outlive the mask and must not be modified while in use.
type Mask struct {
	Image     *image.NRGBA
	Invert    bool
	Threshold uint8
}

// Derive builds a mask over img. It does not copy or scan the buffer.
func Derive(img *image.NRGBA, invert bool, threshold uint8) Mask {
	return Mask{Image: img, Invert: invert, Threshold: threshold}
}

// Keeps reports whether the mask keeps pixel (x, y). Alpha equal to the
// threshold counts as not covered, whichever way the mask is inverted.
func (m Mask) Keeps(x, y int) bool {
	b := m.Image.Bounds()
	a := m.Image.Pix[m.Image.PixOffset(b.Min.X+x, b.Min.Y+y)+3]
	return (a > m.Threshold) != m.Invert
}

// Apply keeps the pixels of img the mask keeps and clears the rest.
func Apply(img *image.NRGBA, m Mask) *image.NRGBA {
	mustMatch(img, m)
	return filter(img, m.Keeps)
}

// And keeps a pixel only when every mask keeps it. An empty mask list keeps
// nothing.
func And(img *image.NRGBA, masks ...Mask) *image.NRGBA {
	if len(masks) == 0 {
		return blank(img)
	}
	for _, m := range masks {
		mustMatch(img, m)
	}
	return filter(img, func(x, y int) bool {
		for _, m := range masks {
			if !m.Keeps(x, y) {
				return false
			}
		}
		return true
	})
}

// Or keeps a pixel when any mask keeps it. An empty mask list keeps nothing.
func Or(img *image.NRGBA, masks ...Mask) *image.NRGBA {
	if len(masks) == 0 {
		return blank(img)
	}
	for _, m := range masks {
		mustMatch(img, m)
	}
	return filter(img, func(x, y int) bool {
		for _, m := range masks {
			if m.Keeps(x, y) {
				return true
			}
		}
		return false
	})
}

// Circle returns an opaque white disc of the given radius centered on the
// canvas. Pixels with dx²+dy² <= radius² are inside.
func Circle(d canvas.Dimensions, radius int) *image.NRGBA {
	img := canvas.NewBlank(d)
	c := d.Center()
	r2 := radius * radius
	size := int(d.Size)

	for y := 0; y < size; y++ {
		dy := y - c
		for x := 0; x < size; x++ {
			dx := x - c
			if dx*dx+dy*dy <= r2 {
				i := img.PixOffset(x, y)
				img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 255, 255, 255, 255
			}
		}
	}
	return img
}

// InvertedCircle is the complement of Circle: opaque white everywhere except
// the disc, which is transparent.
func InvertedCircle(d canvas.Dimensions, radius int) *image.NRGBA {
	img := Circle(d, radius)
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] == 0 {
			img.Pix[i-3], img.Pix[i-2], img.Pix[i-1], img.Pix[i] = 255, 255, 255, 255
		} else {
			img.Pix[i-3], img.Pix[i-2], img.Pix[i-1], img.Pix[i] = 0, 0, 0, 0
		}
	}
	return img
}

func filter(img *image.NRGBA, keep func(x, y int) bool) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if !keep(x, y) {
				continue
			}
			si := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			di := dst.PixOffset(x, y)
			copy(dst.Pix[di:di+4], img.Pix[si:si+4])
		}
	}
	return dst
}

func blank(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	return image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
}

func mustMatch(img *image.NRGBA, m Mask) {
	if !canvas.SameSize(img, m.Image) {
		panic(fmt.Sprintf("stencil: mask is %v, image is %v", m.Image.Bounds().Size(), img.Bounds().Size()))
	}
}
