//go:build !cgo

package codec

import (
	"errors"
	"image"
	"io"
)

// WebPSupported reports whether this build can encode WebP. libwebp needs
// cgo; js/wasm and CGO_ENABLED=0 builds have no WebP encoder.
const WebPSupported = false

func encodeWebP(io.Writer, image.Image, float32, bool) error {
	return errors.New("WebP encoding needs a cgo build")
}
