// Package maskpaint is a brush-driven editor for the render mask. Painted
// pixels are opaque white and keep the subject visible over the ring; erased
// pixels are fully transparent.
package maskpaint

import (
	"image"
	"math"
	"sync"

	"github.com/xob0t/GoToken/pkg/codec"
)

// Canvas is a square RGBA mask. It is safe for concurrent use.
type Canvas struct {
	mu  sync.Mutex
	img *image.NRGBA
}

// New returns a transparent size×size mask.
func New(size int) *Canvas {
	return &Canvas{img: image.NewNRGBA(image.Rect(0, 0, size, size))}
}

// Size is the edge length in pixels.
func (c *Canvas) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.img.Bounds().Dx()
}

// Clear resets the mask to a transparent size×size canvas.
func (c *Canvas) Clear(size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.img = image.NewNRGBA(image.Rect(0, 0, size, size))
}

// Load clears the mask to size×size, then copies raw RGBA into it. raw of
// any other length is ignored and the mask stays clear.
func (c *Canvas) Load(raw []byte, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.img = image.NewNRGBA(image.Rect(0, 0, size, size))
	if img, err := codec.DecodeRawRGBA(raw, size); err == nil {
		c.img = img
	}
}

// Stroke stamps a disc of the given diameter centered at (x, y). add paints
// opaque white; otherwise the disc is erased. A pixel is covered when its
// center lies inside the disc.
func (c *Canvas) Stroke(x, y, diameter float64, add bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := diameter / 2
	if !(r > 0) {
		return
	}
	b := c.img.Bounds()
	x0 := max(int(math.Floor(x-r)), b.Min.X)
	x1 := min(int(math.Ceil(x+r)), b.Max.X)
	y0 := max(int(math.Floor(y-r)), b.Min.Y)
	y1 := min(int(math.Ceil(y+r)), b.Max.Y)

	var v uint8
	if add {
		v = 255
	}
	r2 := r * r
	for py := y0; py < y1; py++ {
		dy := float64(py) + 0.5 - y
		for px := x0; px < x1; px++ {
			dx := float64(px) + 0.5 - x
			if dx*dx+dy*dy > r2 {
				continue
			}
			i := c.img.PixOffset(px, py)
			c.img.Pix[i], c.img.Pix[i+1], c.img.Pix[i+2], c.img.Pix[i+3] = v, v, v, v
		}
	}
}

// Bytes returns a copy of the mask as raw RGBA, ready to pass as a render
// mask.
func (c *Canvas) Bytes() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return codec.RawRGBA(c.img)
}

// Image returns a copy of the mask.
func (c *Canvas) Image() *image.NRGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	img, _ := codec.DecodeRawRGBA(codec.RawRGBA(c.img), c.img.Bounds().Dx())
	return img
}
