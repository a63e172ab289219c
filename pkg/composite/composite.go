// Package composite merges an ordered stack of layers with source-over
// alpha compositing.
package composite

import (
	"fmt"
	"image"

	"github.com/xob0t/GoToken/pkg/canvas"
)

// Blend composites layers onto a transparent canvas of size d.Size. Layers
// are drawn bottom to top in slice order. Nil layers are skipped.
func Blend(d canvas.Dimensions, layers ...*image.NRGBA) *image.NRGBA {
	return BlendOnto(canvas.NewBlank(d), layers...)
}

// BlendOnto composites layers over a copy of base. With no layers the copy
// is returned as is.
//
// Accumulation runs in premultiplied float space:
//
//	out.rgb = out.rgb*(1-a) + layer.rgb*a
//	out.a   = out.a + a*(1-out.a)
//
// and is converted back to straight alpha once at the end.
func BlendOnto(base *image.NRGBA, layers ...*image.NRGBA) *image.NRGBA {
	stack := make([]*image.NRGBA, 0, len(layers))
	for _, l := range layers {
		if l == nil {
			continue
		}
		if !canvas.SameSize(base, l) {
			panic(fmt.Sprintf("composite: layer is %v, canvas is %v", l.Bounds().Size(), base.Bounds().Size()))
		}
		stack = append(stack, l)
	}

	out := canvas.Clone(base)
	if len(stack) == 0 {
		return out
	}

	w, h := out.Bounds().Dx(), out.Bounds().Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := out.PixOffset(x, y)
			oa := float64(out.Pix[i+3]) / 255
			or := float64(out.Pix[i]) / 255 * oa
			og := float64(out.Pix[i+1]) / 255 * oa
			ob := float64(out.Pix[i+2]) / 255 * oa

			for _, l := range stack {
				lb := l.Bounds()
				li := l.PixOffset(lb.Min.X+x, lb.Min.Y+y)
				a := float64(l.Pix[li+3]) / 255
				if a == 0 {
					continue
				}
				inv := 1 - a
				or = or*inv + float64(l.Pix[li])/255*a
				og = og*inv + float64(l.Pix[li+1])/255*a
				ob = ob*inv + float64(l.Pix[li+2])/255*a
				oa = oa + a*(1-oa)
			}

			if oa <= 0 {
				out.Pix[i], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3] = 0, 0, 0, 0
				continue
			}
			out.Pix[i] = to8(or / oa)
			out.Pix[i+1] = to8(og / oa)
			out.Pix[i+2] = to8(ob / oa)
			out.Pix[i+3] = to8(oa)
		}
	}
	return out
}

func to8(v float64) uint8 {
	v = v*255 + 0.5
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
