package render

import (
	"image/color"

	"github.com/xob0t/GoToken/pkg/border"
	"github.com/xob0t/GoToken/pkg/canvas"
	"github.com/xob0t/GoToken/pkg/codec"
	"github.com/xob0t/GoToken/pkg/shadow"
)

// Options are the processor-wide render parameters.
type Options struct {
	ImageShadow       shadow.Spec
	RingShadow        shadow.Spec
	FallbackRingWidth int
	FallbackRingColor color.RGBA
	Resampler         canvas.Resampler
	Encode            codec.Options
}

// DefaultOptions returns the stock shadows, a 20 px fallback ring,
// Catmull-Rom resampling and lossy WebP at quality 90.
func DefaultOptions() Options {
	return Options{
		ImageShadow:       shadow.ImageDefault,
		RingShadow:        shadow.RingDefault,
		FallbackRingWidth: 20,
		FallbackRingColor: border.FallbackColor,
		Resampler:         canvas.CatmullRom,
		Encode:            codec.DefaultOptions,
	}
}
