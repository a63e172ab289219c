package stencil

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xob0t/GoToken/pkg/canvas"
)

func alphaRamp(n int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, n, 1))
	for x := 0; x < n; x++ {
		img.SetNRGBA(x, 0, color.NRGBA{R: 10, G: 20, B: 30, A: uint8(x)})
	}
	return img
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestThresholdBoundary(t *testing.T) {
	src := alphaRamp(256)

	for _, threshold := range []uint8{0, 1, 10, 127, 254, 255} {
		for _, invert := range []bool{false, true} {
			m := Derive(src, invert, threshold)
			at := int(threshold)
			if invert {
				// alpha == threshold is "not covered", so inversion keeps it.
				assert.True(t, m.Keeps(at, 0), "t=%d invert", threshold)
			} else {
				assert.False(t, m.Keeps(at, 0), "t=%d", threshold)
			}
			if at < 255 {
				assert.Equal(t, !invert, m.Keeps(at+1, 0), "t=%d invert=%v above", threshold, invert)
			}
		}
	}
}

func TestThresholdBoundaryApply(t *testing.T) {
	src := alphaRamp(256)
	out := Apply(src, Derive(src, false, 10))

	assert.Equal(t, [4]uint8{0, 0, 0, 0}, canvas.Pixel(out, 10, 0))
	assert.Equal(t, [4]uint8{10, 20, 30, 11}, canvas.Pixel(out, 11, 0))
}

func TestAndSingleEqualsApply(t *testing.T) {
	img := solid(16, 16, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	maskSrc := Circle(canvas.Dimensions{Size: 16}, 5)

	for _, invert := range []bool{false, true} {
		m := Derive(maskSrc, invert, 0)
		assert.Equal(t, Apply(img, m).Pix, And(img, m).Pix)
		assert.Equal(t, Apply(img, m).Pix, Or(img, m).Pix)
	}
}

func TestEmptyMaskListKeepsNothing(t *testing.T) {
	img := solid(4, 4, color.NRGBA{R: 1, G: 2, B: 3, A: 255})

	for _, out := range []*image.NRGBA{And(img), Or(img)} {
		require.Equal(t, img.Bounds(), out.Bounds())
		for _, v := range out.Pix {
			assert.Zero(t, v)
		}
	}
}

func TestAndOrCombine(t *testing.T) {
	d := canvas.Dimensions{Size: 21}
	img := solid(21, 21, color.NRGBA{R: 255, A: 255})
	inner := Derive(Circle(d, 3), false, 0)
	outer := Derive(Circle(d, 8), false, 0)
	ring := Derive(Circle(d, 3), true, 0)

	annulus := And(img, outer, ring)
	assert.Equal(t, uint8(0), canvas.Pixel(annulus, 10, 10)[3])
	assert.Equal(t, uint8(255), canvas.Pixel(annulus, 10+5, 10)[3])
	assert.Equal(t, uint8(0), canvas.Pixel(annulus, 0, 0)[3])

	union := Or(img, inner, ring)
	for y := 0; y < 21; y++ {
		for x := 0; x < 21; x++ {
			assert.Equal(t, uint8(255), canvas.Pixel(union, x, y)[3])
		}
	}
}

func TestCircle(t *testing.T) {
	d := canvas.Dimensions{Size: 256, StencilRadius: 100}
	c := Circle(d, int(d.StencilRadius))

	assert.Equal(t, uint8(255), canvas.Pixel(c, 128, 128)[3])
	assert.Equal(t, uint8(255), canvas.Pixel(c, 228, 128)[3], "edge pixel at exactly r")
	assert.Equal(t, uint8(0), canvas.Pixel(c, 229, 128)[3])
	assert.Equal(t, uint8(0), canvas.Pixel(c, 0, 0)[3])
}

func TestInvertedCircleComplementsCircle(t *testing.T) {
	d := canvas.Dimensions{Size: 33}
	c := Circle(d, 10)
	inv := InvertedCircle(d, 10)

	for y := 0; y < 33; y++ {
		for x := 0; x < 33; x++ {
			assert.NotEqual(t, canvas.Pixel(c, x, y)[3], canvas.Pixel(inv, x, y)[3])
		}
	}
	assert.Equal(t, [4]uint8{255, 255, 255, 255}, canvas.Pixel(inv, 0, 0))
	assert.Equal(t, [4]uint8{0, 0, 0, 0}, canvas.Pixel(inv, 16, 16))
}

func TestApplyDoesNotModifyInput(t *testing.T) {
	img := solid(8, 8, color.NRGBA{R: 9, G: 9, B: 9, A: 255})
	before := append([]uint8(nil), img.Pix...)
	_ = Apply(img, Derive(Circle(canvas.Dimensions{Size: 8}, 2), false, 0))
	assert.Equal(t, before, img.Pix)
}

func TestSizeMismatchPanics(t *testing.T) {
	img := solid(4, 4, color.NRGBA{A: 255})
	m := Derive(solid(5, 5, color.NRGBA{A: 255}), false, 0)
	assert.Panics(t, func() { Apply(img, m) })
	assert.Panics(t, func() { And(img, m) })
}
