// encode.go — WebP and PNG writers.
package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format is an output encoding.
type Format int

const (
	FormatWebP Format = iota
	FormatPNG
)

func (f Format) String() string {
	switch f {
	case FormatWebP:
		return "webp"
	case FormatPNG:
		return "png"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/webp"
}

// FormatFromPath infers the format from a file extension:
//   - ".webp" → WebP
//   - ".png"  → PNG
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".webp":
		return FormatWebP, nil
	case ".png":
		return FormatPNG, nil
	default:
		return 0, fmt.Errorf("unsupported format %q: use .webp or .png", ext)
	}
}

// Options controls encoding.
type Options struct {
	Format   Format
	Quality  float32 // WebP quality, 0-100 (default 90)
	Lossless bool    // WebP only
}

// DefaultOptions is lossy WebP at quality 90.
var DefaultOptions = Options{Format: FormatWebP, Quality: 90}

// Encode writes img to w.
func Encode(w io.Writer, img image.Image, opt Options) error {
	switch opt.Format {
	case FormatWebP:
		q := opt.Quality
		if q <= 0 {
			q = DefaultOptions.Quality
		}
		if err := encodeWebP(w, img, min(q, 100), opt.Lossless); err != nil {
			return fmt.Errorf("encode WebP: %w", err)
		}
	case FormatPNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("encode PNG: %w", err)
		}
	default:
		return fmt.Errorf("unsupported output format %v", opt.Format)
	}
	return nil
}

// EncodeBytes encodes img into memory.
func EncodeBytes(img image.Image, opt Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, opt); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile encodes img to path. The extension overrides opt.Format.
func WriteFile(path string, img image.Image, opt Options) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	opt.Format = format

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := Encode(f, img, opt); err != nil {
		return err
	}
	return f.Close()
}
