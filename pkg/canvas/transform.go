// transform.go — Fit a source picture into the token canvas.
package canvas

import (
	"fmt"
	"image"
	"math"
)

// Transform is the user's positioning of the source picture.
type Transform struct {
	PosX    int32   `json:"posX" yaml:"pos_x"`
	PosY    int32   `json:"posY" yaml:"pos_y"`
	Scale   float32 `json:"scale" yaml:"scale"`
	Flipped bool    `json:"flipped" yaml:"flipped"`
}

// Identity is the transform that leaves a canvas-sized picture untouched.
var Identity = Transform{Scale: 1}

// Validate rejects transforms the pipeline cannot apply.
func (t Transform) Validate() error {
	if !(t.Scale > 0) || math.IsInf(float64(t.Scale), 0) {
		return fmt.Errorf("scale must be a positive finite number, got %v", t.Scale)
	}
	return nil
}

// ScaledSize is the edge length of src after scaling, rounded to pixels.
func (t Transform) ScaledSize(src image.Rectangle) (w, h int) {
	w = int(math.Round(float64(src.Dx()) * float64(t.Scale)))
	h = int(math.Round(float64(src.Dy()) * float64(t.Scale)))
	return w, h
}

// ValidateFor bounds the scaled picture for a source of the given size. It
// may grow up to four canvas edges, or MaxSize on small canvases.
func (t Transform) ValidateFor(src image.Rectangle, d Dimensions) error {
	if err := t.Validate(); err != nil {
		return err
	}
	limit := max(4*float64(d.Size), MaxSize)
	w := math.Round(float64(src.Dx()) * float64(t.Scale))
	h := math.Round(float64(src.Dy()) * float64(t.Scale))
	if w > limit || h > limit {
		return fmt.Errorf("scaled picture %vx%v exceeds %v px", w, h, limit)
	}
	return nil
}

// Apply flips, scales, centers and offsets img, then clips it to a
// Size×Size canvas. The steps always run in that order.
func Apply(img *image.NRGBA, d Dimensions, t Transform, r Resampler) *image.NRGBA {
	if r == nil {
		r = CatmullRom
	}

	src := img
	if t.Flipped {
		src = FlipH(src)
	}

	w, h := t.ScaledSize(src.Bounds())
	if w != src.Bounds().Dx() || h != src.Bounds().Dy() {
		src = r.Resize(src, w, h)
	}

	size := int(d.Size)
	off := image.Pt(
		floorDiv(size-w, 2)+int(t.PosX),
		floorDiv(size-h, 2)+int(t.PosY),
	)

	return Place(src, size, size, off)
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
