// Package canvas holds the token geometry: canvas dimensions, size presets,
// and the transform stage that fits a source picture into the canvas.
//
// All buffers handled here are *image.NRGBA with a (0,0) origin. Functions
// never modify their inputs; each stage returns a fresh buffer.
package canvas

import (
	"fmt"
	"image"
)

// MaxSize is the largest canvas edge accepted from callers: an oversized
// gargantuan token.
const MaxSize = 4096

// Dimensions describes the output canvas.
//
// When Oversized is true the drawn token occupies a Size/2 square centered in
// the canvas, leaving room for a caller to crop or zoom later.
type Dimensions struct {
	Size          uint32 `json:"size" yaml:"size"`
	Oversized     bool   `json:"oversized" yaml:"oversized"`
	StencilRadius uint32 `json:"stencilRadius" yaml:"stencil_radius"`
}

// Center returns the canvas center coordinate (same on both axes).
func (d Dimensions) Center() int {
	return int(d.Size / 2)
}

// CenterPoint returns the canvas center as an image.Point.
func (d Dimensions) CenterPoint() image.Point {
	c := d.Center()
	return image.Pt(c, c)
}

// TokenSize is the edge length of the drawn token.
func (d Dimensions) TokenSize() int {
	if d.Oversized {
		return int(d.Size / 2)
	}
	return int(d.Size)
}

// Inset is the offset of the token square inside an oversized canvas.
func (d Dimensions) Inset() int {
	if d.Oversized {
		return int(d.Size / 4)
	}
	return 0
}

// Bounds returns the canvas rectangle.
func (d Dimensions) Bounds() image.Rectangle {
	return image.Rect(0, 0, int(d.Size), int(d.Size))
}

// Validate checks the caller contract. The pixel pipeline itself assumes
// valid dimensions; hosts call this at their boundary.
func (d Dimensions) Validate() error {
	if d.Size == 0 {
		return fmt.Errorf("canvas size must be positive")
	}
	if d.Size > MaxSize {
		return fmt.Errorf("canvas size %d exceeds %d", d.Size, MaxSize)
	}
	if d.StencilRadius > d.Size/2 {
		return fmt.Errorf("stencil radius %d exceeds half the canvas size (%d)", d.StencilRadius, d.Size/2)
	}
	return nil
}

// NewBlank returns a fully transparent canvas of the given dimensions.
func NewBlank(d Dimensions) *image.NRGBA {
	return image.NewNRGBA(d.Bounds())
}
