package maskpaint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alphaAt(c *Canvas, x, y int) uint8 {
	img := c.Image()
	return img.Pix[img.PixOffset(x, y)+3]
}

func TestStrokeAddAndErase(t *testing.T) {
	c := New(32)
	c.Stroke(16, 16, 10, true)

	assert.Equal(t, uint8(255), alphaAt(c, 16, 16))
	assert.Equal(t, uint8(255), alphaAt(c, 12, 16))
	assert.Equal(t, uint8(0), alphaAt(c, 22, 16))
	assert.Equal(t, uint8(0), alphaAt(c, 0, 0))

	img := c.Image()
	i := img.PixOffset(16, 16)
	assert.Equal(t, []uint8{255, 255, 255, 255}, img.Pix[i:i+4])

	c.Stroke(16, 16, 4, false)
	assert.Equal(t, uint8(0), alphaAt(c, 16, 16))
	assert.Equal(t, uint8(255), alphaAt(c, 12, 16), "erase only touches its own disc")
}

func TestStrokeClipsAtEdges(t *testing.T) {
	c := New(8)
	assert.NotPanics(t, func() {
		c.Stroke(-2, -2, 10, true)
		c.Stroke(100, 100, 10, true)
		c.Stroke(4, 4, 0, true)
		c.Stroke(4, 4, -3, true)
	})
	assert.Equal(t, uint8(255), alphaAt(c, 0, 0))
	assert.Equal(t, uint8(0), alphaAt(c, 7, 7))
}

func TestLoadAndBytes(t *testing.T) {
	c := New(4)
	raw := make([]byte, 4*4*4)
	raw[4*5+3] = 200

	c.Load(raw, 4)
	assert.Equal(t, uint8(200), alphaAt(c, 1, 1))
	assert.Equal(t, raw, c.Bytes())

	raw[4*5+3] = 1
	assert.Equal(t, uint8(200), alphaAt(c, 1, 1), "load copies")

	c.Load([]byte{1, 2, 3}, 6)
	assert.Equal(t, 6, c.Size())
	for _, v := range c.Bytes() {
		require.Zero(t, v)
	}
}

func TestClearResizes(t *testing.T) {
	c := New(4)
	c.Stroke(2, 2, 4, true)
	c.Clear(10)
	assert.Equal(t, 10, c.Size())
	assert.Len(t, c.Bytes(), 10*10*4)
	assert.Equal(t, uint8(0), alphaAt(c, 2, 2))
}
