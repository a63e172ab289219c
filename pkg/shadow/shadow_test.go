package shadow

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(size, from, to int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := from; y < to; y++ {
		for x := from; x < to; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	return img
}

func TestGaussianKernel(t *testing.T) {
	assert.Equal(t, []float32{1}, GaussianKernel(0))
	assert.Equal(t, []float32{1}, GaussianKernel(-2))

	k := GaussianKernel(2)
	require.Len(t, k, 13)

	var sum float32
	for _, v := range k {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
	assert.Equal(t, k[0], k[len(k)-1])
	assert.Greater(t, k[6], k[5])
}

func TestSynthesizeTransparentIsTransparent(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	specs := []Spec{
		ImageDefault,
		RingDefault,
		{Color: color.RGBA{R: 255, G: 0, B: 255}, Opacity: 1, BlurRadius: 0, OffsetX: -3, OffsetY: 40},
	}

	for _, s := range specs {
		out := Synthesize(img, s)
		require.Equal(t, img.Bounds(), out.Bounds())
		for i := 3; i < len(out.Pix); i += 4 {
			assert.Zero(t, out.Pix[i])
		}
	}
}

func TestSynthesizeOffsetAndOpacity(t *testing.T) {
	img := square(20, 5, 10)
	s := Spec{Color: color.RGBA{R: 1, G: 2, B: 3}, Opacity: 0.5, OffsetX: 3, OffsetY: -2}

	out := Synthesize(img, s)

	// source (5,5) lands on (8,3)
	i := out.PixOffset(8, 3)
	assert.Equal(t, []uint8{1, 2, 3, 128}, out.Pix[i:i+4])
	assert.Equal(t, uint8(0), out.Pix[out.PixOffset(7, 3)+3])
	assert.Equal(t, uint8(0), out.Pix[out.PixOffset(8, 2)+3])
	assert.Equal(t, uint8(128), out.Pix[out.PixOffset(12, 7)+3])
	assert.Equal(t, uint8(0), out.Pix[out.PixOffset(13, 7)+3])
}

func TestSynthesizeOffsetOutOfBounds(t *testing.T) {
	img := square(10, 0, 10)
	out := Synthesize(img, Spec{Opacity: 1, OffsetX: 10})
	for i := 3; i < len(out.Pix); i += 4 {
		assert.Zero(t, out.Pix[i])
	}
}

func TestBlurSpreadsAndConserves(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 41, 41))
	img.SetNRGBA(20, 20, color.NRGBA{A: 255})

	out := Blur(img, 2)

	assert.Less(t, out.Pix[out.PixOffset(20, 20)+3], uint8(255))
	assert.Greater(t, out.Pix[out.PixOffset(22, 20)+3], uint8(0))
	assert.Equal(t, out.Pix[out.PixOffset(18, 20)+3], out.Pix[out.PixOffset(22, 20)+3])
	assert.Equal(t, uint8(0), out.Pix[out.PixOffset(0, 0)+3])
}

func TestBlurUniformIsStable(t *testing.T) {
	img := square(16, 0, 16)
	out := Blur(img, 3)
	assert.Equal(t, img.Pix, out.Pix)
}

func TestBlurZeroRadiusCopies(t *testing.T) {
	img := square(8, 2, 5)
	out := Blur(img, 0)
	assert.Equal(t, img.Pix, out.Pix)
	out.Pix[0] = 7
	assert.NotEqual(t, img.Pix[0], out.Pix[0])
}

func TestSpecValidate(t *testing.T) {
	assert.NoError(t, ImageDefault.Validate())
	assert.NoError(t, RingDefault.Validate())
	assert.Error(t, Spec{Opacity: 1.5}.Validate())
	assert.Error(t, Spec{Opacity: 0.5, BlurRadius: -1}.Validate())
}
