package shadow

import (
	"image"
	"math"
)

// GaussianKernel returns a normalized 1D Gaussian kernel with sigma equal to
// radius and 2*ceil(3*radius)+1 taps. radius <= 0 yields the identity [1].
func GaussianKernel(radius float64) []float32 {
	if radius <= 0 {
		return []float32{1}
	}

	half := int(math.Ceil(radius * 3))
	kernel := make([]float32, half*2+1)
	twoSigmaSq := 2 * radius * radius

	var sum float64
	for i := range kernel {
		x := float64(i - half)
		v := math.Exp(-(x * x) / twoSigmaSq)
		kernel[i] = float32(v)
		sum += v
	}
	inv := float32(1 / sum)
	for i := range kernel {
		kernel[i] *= inv
	}
	return kernel
}

// Blur applies a separable Gaussian blur to all four channels of src. Samples
// beyond the edge repeat the edge pixel.
func Blur(src *image.NRGBA, radius float64) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst
	}

	kernel := GaussianKernel(radius)
	half := len(kernel) / 2
	tmp := make([]float32, w*h*4)

	// horizontal: src -> tmp
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc [4]float32
			for k, weight := range kernel {
				kx := clampInt(x+k-half, 0, w-1)
				si := src.PixOffset(b.Min.X+kx, b.Min.Y+y)
				acc[0] += float32(src.Pix[si]) * weight
				acc[1] += float32(src.Pix[si+1]) * weight
				acc[2] += float32(src.Pix[si+2]) * weight
				acc[3] += float32(src.Pix[si+3]) * weight
			}
			copy(tmp[(y*w+x)*4:], acc[:])
		}
	}

	// vertical: tmp -> dst
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc [4]float32
			for k, weight := range kernel {
				ky := clampInt(y+k-half, 0, h-1)
				ti := (ky*w + x) * 4
				acc[0] += tmp[ti] * weight
				acc[1] += tmp[ti+1] * weight
				acc[2] += tmp[ti+2] * weight
				acc[3] += tmp[ti+3] * weight
			}
			di := dst.PixOffset(x, y)
			dst.Pix[di] = clampUint8(acc[0])
			dst.Pix[di+1] = clampUint8(acc[1])
			dst.Pix[di+2] = clampUint8(acc[2])
			dst.Pix[di+3] = clampUint8(acc[3])
		}
	}
	return dst
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampUint8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
