// buffer.go — Pixel buffer helpers shared by every stage.
package canvas

import (
	"image"

	"golang.org/x/image/draw"
)

// Clone returns a copy of src rebased to a (0,0) origin.
func Clone(src *image.NRGBA) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	rowLen := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		si := src.PixOffset(b.Min.X, b.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+rowLen], src.Pix[si:si+rowLen])
	}
	return dst
}

// ToNRGBA converts any decoded image into a straight-alpha buffer with a
// (0,0) origin. NRGBA inputs are copied, never aliased.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return Clone(n)
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// FlipH mirrors src horizontally.
func FlipH(src *image.NRGBA) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			si := src.PixOffset(b.Min.X+x, b.Min.Y+y)
			di := dst.PixOffset(w-1-x, y)
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
	return dst
}

// Place draws src onto a transparent w×h canvas with its top-left corner at
// off. Pixels falling outside the canvas are clipped. On an empty canvas
// straight alpha-over reduces to a plain copy.
func Place(src *image.NRGBA, w, h int, off image.Point) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	sb := src.Bounds()

	target := image.Rect(off.X, off.Y, off.X+sb.Dx(), off.Y+sb.Dy()).Intersect(dst.Bounds())
	if target.Empty() {
		return dst
	}

	rowLen := target.Dx() * 4
	for y := target.Min.Y; y < target.Max.Y; y++ {
		si := src.PixOffset(sb.Min.X+target.Min.X-off.X, sb.Min.Y+y-off.Y)
		di := dst.PixOffset(target.Min.X, y)
		copy(dst.Pix[di:di+rowLen], src.Pix[si:si+rowLen])
	}
	return dst
}

// Pixel returns the straight RGBA components at (x, y).
func Pixel(img *image.NRGBA, x, y int) [4]uint8 {
	i := img.PixOffset(x, y)
	return [4]uint8{img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]}
}

// SameSize reports whether a and b have equal width and height.
func SameSize(a, b image.Image) bool {
	return a.Bounds().Size() == b.Bounds().Size()
}
