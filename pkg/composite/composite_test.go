package composite

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xob0t/GoToken/pkg/canvas"
)

func fill(size int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func noisy(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(i * 3)
		img.Pix[i+1] = uint8(i * 5)
		img.Pix[i+2] = uint8(i * 11)
		img.Pix[i+3] = 255
	}
	return img
}

func TestBlendSingleOpaqueLayerIsIdentity(t *testing.T) {
	d := canvas.Dimensions{Size: 16}
	layer := noisy(16)

	out := Blend(d, layer)
	assert.Equal(t, layer.Pix, out.Pix)
}

func TestBlendEmptyListLeavesCanvas(t *testing.T) {
	base := noisy(8)
	base.Pix[3] = 17

	out := BlendOnto(base)
	assert.Equal(t, base.Pix, out.Pix)

	out.Pix[0]++
	assert.NotEqual(t, base.Pix[0], out.Pix[0], "result must not alias the canvas")

	out = BlendOnto(base, nil, nil)
	assert.Equal(t, base.Pix, out.Pix)
}

func TestBlendOverTransparentKeepsStraightColor(t *testing.T) {
	d := canvas.Dimensions{Size: 4}
	layer := fill(4, color.NRGBA{R: 200, G: 100, B: 50, A: 64})

	out := Blend(d, layer)
	assert.Equal(t, [4]uint8{200, 100, 50, 64}, canvas.Pixel(out, 1, 1))
}

func TestBlendOrderTopWins(t *testing.T) {
	d := canvas.Dimensions{Size: 2}
	red := fill(2, color.NRGBA{R: 255, A: 255})
	blue := fill(2, color.NRGBA{B: 255, A: 255})

	assert.Equal(t, [4]uint8{0, 0, 255, 255}, canvas.Pixel(Blend(d, red, blue), 0, 0))
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, canvas.Pixel(Blend(d, blue, red), 0, 0))
}

func TestBlendHalfAlpha(t *testing.T) {
	d := canvas.Dimensions{Size: 1}
	white := fill(1, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	black := fill(1, color.NRGBA{A: 128})

	p := canvas.Pixel(Blend(d, white, black), 0, 0)
	assert.Equal(t, uint8(255), p[3])
	assert.InDelta(t, 127, int(p[0]), 1)
	assert.Equal(t, p[0], p[1])

	half := fill(1, color.NRGBA{R: 255, A: 128})
	p = canvas.Pixel(Blend(d, half, half), 0, 0)
	// 1 - (1-a)^2 with a = 128/255
	assert.InDelta(t, 191, int(p[3]), 1)
	assert.Equal(t, uint8(255), p[0])
}

func TestBlendSizeMismatchPanics(t *testing.T) {
	d := canvas.Dimensions{Size: 4}
	require.Panics(t, func() { Blend(d, fill(5, color.NRGBA{A: 255})) })
}
