//go:build cgo

package codec

import (
	"image"
	"io"

	"github.com/chai2010/webp"
)

// WebPSupported reports whether this build can encode WebP.
const WebPSupported = true

// Exact keeps RGB under fully transparent pixels in lossless output.
func encodeWebP(w io.Writer, img image.Image, quality float32, lossless bool) error {
	return webp.Encode(w, img, &webp.Options{Lossless: lossless, Quality: quality, Exact: lossless})
}
