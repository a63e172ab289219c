// resample.go — Image resizing filters.
package canvas

import (
	"fmt"
	"image"
	"strings"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// Resampler resizes a buffer to exactly w×h pixels.
type Resampler interface {
	Resize(src *image.NRGBA, w, h int) *image.NRGBA
	Name() string
}

// CatmullRom is the default filter.
var CatmullRom Resampler = kernelResampler{name: "catmullrom", kernel: draw.CatmullRom}

// Bilinear is a cheaper filter for previews.
var Bilinear Resampler = kernelResampler{name: "bilinear", kernel: draw.ApproxBiLinear}

// Lanczos3 trades speed for sharper downscales.
var Lanczos3 Resampler = nfntResampler{name: "lanczos3", interp: resize.Lanczos3}

// ParseResampler looks up a filter by name. The empty string selects CatmullRom.
func ParseResampler(name string) (Resampler, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "catmullrom", "catmull-rom", "bicubic":
		return CatmullRom, nil
	case "bilinear":
		return Bilinear, nil
	case "lanczos", "lanczos3":
		return Lanczos3, nil
	default:
		return nil, fmt.Errorf("unknown resample filter %q: use catmullrom, bilinear or lanczos3", name)
	}
}

// kernelResampler scales through x/image/draw. Scaling runs on premultiplied
// pixels so transparent edges do not bleed dark halos into the result.
type kernelResampler struct {
	name   string
	kernel draw.Interpolator
}

func (k kernelResampler) Name() string { return k.name }

func (k kernelResampler) Resize(src *image.NRGBA, w, h int) *image.NRGBA {
	if w <= 0 || h <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	}
	if src.Bounds().Dx() == w && src.Bounds().Dy() == h {
		return Clone(src)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	k.kernel.Scale(dst, dst.Bounds(), premultiply(src), src.Bounds(), draw.Src, nil)
	return unpremultiply(dst)
}

// nfntResampler scales with github.com/nfnt/resize.
type nfntResampler struct {
	name   string
	interp resize.InterpolationFunction
}

func (n nfntResampler) Name() string { return n.name }

func (n nfntResampler) Resize(src *image.NRGBA, w, h int) *image.NRGBA {
	if w <= 0 || h <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	}
	if src.Bounds().Dx() == w && src.Bounds().Dy() == h {
		return Clone(src)
	}

	out := resize.Resize(uint(w), uint(h), premultiply(src), n.interp)
	if rgba, ok := out.(*image.RGBA); ok {
		return unpremultiply(rgba)
	}
	return ToNRGBA(out)
}

// premultiply converts straight alpha to premultiplied storage.
func premultiply(src *image.NRGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			si := src.PixOffset(x, y)
			di := dst.PixOffset(x, y)
			a := uint32(src.Pix[si+3])
			dst.Pix[di] = uint8((uint32(src.Pix[si])*a + 127) / 255)
			dst.Pix[di+1] = uint8((uint32(src.Pix[si+1])*a + 127) / 255)
			dst.Pix[di+2] = uint8((uint32(src.Pix[si+2])*a + 127) / 255)
			dst.Pix[di+3] = uint8(a)
		}
	}
	return dst
}

// unpremultiply converts premultiplied storage back to straight alpha.
func unpremultiply(src *image.RGBA) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			si := src.PixOffset(b.Min.X+x, b.Min.Y+y)
			di := dst.PixOffset(x, y)
			a := src.Pix[si+3]
			if a > 0 {
				inv := 255.0 / float64(a)
				dst.Pix[di] = clamp8(float64(src.Pix[si]) * inv)
				dst.Pix[di+1] = clamp8(float64(src.Pix[si+1]) * inv)
				dst.Pix[di+2] = clamp8(float64(src.Pix[si+2]) * inv)
			}
			dst.Pix[di+3] = a
		}
	}
	return dst
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
