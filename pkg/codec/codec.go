// Package codec turns encoded bytes into pixel buffers and back.
//
// Decoding accepts PNG, JPEG, GIF, WebP, BMP and TIFF. Encoding writes lossy
// or lossless WebP, or PNG. Every decoded buffer is an *image.NRGBA with a
// (0,0) origin.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/xob0t/GoToken/pkg/canvas"
)

// DecodeError reports bytes that are not a recognized raster image.
type DecodeError struct {
	What string // "image", "mask", "atlas"
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.What, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// SizeMismatchError reports a raw RGBA buffer whose length does not match
// the canvas.
type SizeMismatchError struct {
	Got  int
	Want int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("raw mask is %d bytes, want %d", e.Got, e.Want)
}

// Decode decodes an encoded image. what names the input in error messages.
// The returned string is the format name reported by the decoder.
func Decode(data []byte, what string) (*image.NRGBA, string, error) {
	if len(data) == 0 {
		return nil, "", &DecodeError{What: what, Err: errors.New("empty input")}
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", &DecodeError{What: what, Err: err}
	}
	return canvas.ToNRGBA(img), format, nil
}

// DecodeRawRGBA wraps size*size*4 bytes of straight RGBA as a buffer. The
// bytes are copied.
func DecodeRawRGBA(raw []byte, size int) (*image.NRGBA, error) {
	want := size * size * 4
	if len(raw) != want {
		return nil, &SizeMismatchError{Got: len(raw), Want: want}
	}
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	copy(img.Pix, raw)
	return img, nil
}

// RawRGBA returns the straight RGBA bytes of img, row by row.
func RawRGBA(img *image.NRGBA) []byte {
	return canvas.Clone(img).Pix
}

// MaskBytes accepts a mask either as raw size*size*4 RGBA or as an encoded
// image of exactly size×size pixels, and returns raw RGBA.
func MaskBytes(data []byte, size int) ([]byte, error) {
	want := size * size * 4
	if len(data) == want {
		return data, nil
	}
	img, _, err := Decode(data, "mask")
	if err != nil {
		if !looksEncoded(data) {
			return nil, &SizeMismatchError{Got: len(data), Want: want}
		}
		return nil, err
	}
	if b := img.Bounds(); b.Dx() != size || b.Dy() != size {
		return nil, &SizeMismatchError{Got: len(img.Pix), Want: want}
	}
	return img.Pix, nil
}

// looksEncoded reports whether data starts like a format image.Decode knows.
func looksEncoded(data []byte) bool {
	for _, magic := range [][]byte{
		[]byte("\x89PNG"), []byte("\xff\xd8"), []byte("GIF8"), []byte("RIFF"),
		[]byte("BM"), []byte("II*\x00"), []byte("MM\x00*"),
	} {
		if bytes.HasPrefix(data, magic) {
			return true
		}
	}
	return false
}
