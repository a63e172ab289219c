package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xob0t/GoToken/pkg/border"
	"github.com/xob0t/GoToken/pkg/canvas"
	"github.com/xob0t/GoToken/pkg/codec"
)

func solidPNG(t *testing.T, size int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

var red = color.NRGBA{R: 255, A: 255}

func redRequest(t *testing.T, ring bool) Request {
	return Request{
		Image: solidPNG(t, 256, red),
		Settings: Settings{
			Transform:  canvas.Identity,
			Dimensions: canvas.Dimensions{Size: 256, StencilRadius: 100},
			Ring:       ring,
		},
	}
}

// testAtlas has one 32 px ring frame, solid white with the whole disc as
// color band, and one 32 px solid blue background frame.
func testAtlas(t *testing.T) *border.Atlas {
	t.Helper()
	sheet := image.NewNRGBA(image.Rect(0, 0, 64, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			sheet.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
			sheet.SetNRGBA(32+x, y, color.NRGBA{B: 255, A: 255})
		}
	}
	md := &border.Metadata{
		Config: border.Config{DefaultRingColor: "#00ff00"},
		Rings: []border.RingFrame{{
			FrameInfo:     border.FrameInfo{Name: "ring", Frame: border.Box{W: 32, H: 32}},
			GridTarget:    32,
			ColorBand:     border.ColorBand{StartRadius: 0, EndRadius: 1},
			RingThickness: 0.2,
		}},
		Bkgs: []border.BkgFrame{{
			FrameInfo: border.FrameInfo{Name: "bkg", Frame: border.Box{X: 32, W: 32, H: 32}},
		}},
	}
	a, err := border.New(sheet, md)
	require.NoError(t, err)
	return a
}

func atlasRequest(t *testing.T, ringColor string) Request {
	return Request{
		Image: solidPNG(t, 32, red),
		Settings: Settings{
			Transform:  canvas.Identity,
			Dimensions: canvas.Dimensions{Size: 32, StencilRadius: 10},
			Ring:       true,
			RingColor:  ringColor,
		},
	}
}

func TestRenderRedSquareWithoutRing(t *testing.T) {
	p := NewProcessor(DefaultOptions())

	out, err := p.RenderImage(redRequest(t, false))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 256, 256), out.Bounds())

	for y := 0; y < 256; y++ {
		for x := 0; x < 256; x++ {
			dx, dy := x-128, y-128
			px := canvas.Pixel(out, x, y)
			if dx*dx+dy*dy <= 100*100 {
				require.Equal(t, [4]uint8{255, 0, 0, 255}, px, "(%d,%d)", x, y)
			} else {
				require.Zero(t, px[3], "(%d,%d)", x, y)
			}
		}
	}
}

func TestRenderFallbackRing(t *testing.T) {
	p := NewProcessor(DefaultOptions())

	out, err := p.RenderImage(redRequest(t, true))
	require.NoError(t, err)

	assert.Equal(t, [4]uint8{220, 220, 220, 255}, canvas.Pixel(out, 128+110, 128))
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, canvas.Pixel(out, 128, 128))
	assert.Zero(t, canvas.Pixel(out, 0, 0)[3])

	// the ring shadow darkens the rim on the side it falls toward
	rim := canvas.Pixel(out, 128-95, 128)
	assert.Equal(t, uint8(255), rim[3])
	assert.Less(t, rim[0], uint8(255))
}

func TestRenderMaskKeepsPaintedRegion(t *testing.T) {
	p := NewProcessor(DefaultOptions())

	mask := image.NewNRGBA(image.Rect(0, 0, 256, 256))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			mask.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	req := redRequest(t, true)
	req.Mask = codec.RawRGBA(mask)

	out, err := p.RenderImage(req)
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, canvas.Pixel(out, 5, 5))
	assert.Zero(t, canvas.Pixel(out, 20, 20)[3])
}

func TestRenderMaskShowsOverRing(t *testing.T) {
	p := NewProcessor(DefaultOptions())

	// a patch across the fallback ring annulus at (238,128)
	mask := image.NewNRGBA(image.Rect(0, 0, 256, 256))
	for y := 120; y < 136; y++ {
		for x := 230; x < 246; x++ {
			mask.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	req := redRequest(t, true)
	req.Mask = codec.RawRGBA(mask)

	out, err := p.RenderImage(req)
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, canvas.Pixel(out, 238, 128))
	assert.Equal(t, [4]uint8{220, 220, 220, 255}, canvas.Pixel(out, 128-110, 128))
}

func TestRenderRejectsHugeRequests(t *testing.T) {
	p := NewProcessor(DefaultOptions())
	var ve *ValidationError

	req := redRequest(t, false)
	req.Dimensions = canvas.Dimensions{Size: 1 << 20, StencilRadius: 10}
	_, err := p.RenderImage(req)
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "dimensions", ve.Field)

	for _, scale := range []float32{17, 1e6} {
		req = redRequest(t, false)
		req.Transform.Scale = scale
		_, err = p.RenderImage(req)
		require.True(t, errors.As(err, &ve), "scale %v", scale)
		assert.Equal(t, "transform", ve.Field)
	}
}

func TestRenderEncodesWebP(t *testing.T) {
	if !codec.WebPSupported {
		t.Skip("no WebP encoder in this build")
	}
	p := NewProcessor(DefaultOptions())

	data, err := p.Render(redRequest(t, true))
	require.NoError(t, err)

	img, format, err := codec.Decode(data, "image")
	require.NoError(t, err)
	assert.Equal(t, "webp", format)
	assert.Equal(t, image.Rect(0, 0, 256, 256), img.Bounds())
}

func TestRenderPreset(t *testing.T) {
	p := NewProcessor(DefaultOptions())
	req := redRequest(t, false)
	req.Preset = "tiny"
	req.Dimensions = canvas.Dimensions{Oversized: true}

	out, err := p.RenderImage(req)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 512, 512), out.Bounds())
}

func TestRenderErrors(t *testing.T) {
	p := NewProcessor(DefaultOptions())

	req := redRequest(t, false)
	req.Image = []byte("nope")
	_, err := p.Render(req)
	var de *DecodeError
	assert.True(t, errors.As(err, &de))

	req = redRequest(t, false)
	req.Mask = make([]byte, 12)
	_, err = p.Render(req)
	var sm *SizeMismatchError
	assert.True(t, errors.As(err, &sm))

	req = redRequest(t, false)
	req.Transform.Scale = 0
	_, err = p.Render(req)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "transform", ve.Field)

	req = redRequest(t, false)
	req.Dimensions.StencilRadius = 200
	_, err = p.Render(req)
	assert.True(t, errors.As(err, &ve))

	req = redRequest(t, false)
	req.Preset = "enormous"
	_, err = p.Render(req)
	assert.True(t, errors.As(err, &ve))

	req = redRequest(t, true)
	req.RingColor = "#zzzzzz"
	_, err = p.Render(req)
	var ce *ColorParseError
	assert.True(t, errors.As(err, &ce))
}

func TestRenderWithAtlas(t *testing.T) {
	p := NewProcessor(DefaultOptions())
	p.SetAtlas(testAtlas(t))

	out, err := p.RenderImage(atlasRequest(t, ""))
	require.NoError(t, err)
	// (29,16) is 13 px from center: outside the stencil, inside the color band
	assert.Equal(t, [4]uint8{0, 255, 0, 255}, canvas.Pixel(out, 29, 16))
	assert.Equal(t, [4]uint8{255, 255, 255, 255}, canvas.Pixel(out, 0, 0))

	out, err = p.RenderImage(atlasRequest(t, "#0000ff"))
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{0, 0, 255, 255}, canvas.Pixel(out, 29, 16))

	out, err = p.RenderImage(atlasRequest(t, "auto"))
	require.NoError(t, err)
	px := canvas.Pixel(out, 29, 16)
	assert.Greater(t, px[0], uint8(180))
	assert.Less(t, px[1], uint8(60))
}

func TestRenderWithAtlasNoSuitableFrame(t *testing.T) {
	p := NewProcessor(DefaultOptions())
	p.SetAtlas(testAtlas(t))

	_, err := p.Render(redRequest(t, true))
	var nf *NoSuitableFrameError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, uint32(256), nf.Size)

	_, err = p.Render(redRequest(t, false))
	assert.NoError(t, err, "frames are only needed when the ring is drawn")
}

func TestFailedLoadKeepsAtlas(t *testing.T) {
	p := NewProcessor(DefaultOptions())
	a := testAtlas(t)
	p.SetAtlas(a)

	err := p.LoadBorder([]byte("bad"), []byte(`{"config": {}, "frames": {}}`))
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Same(t, a, p.Atlas())

	err = p.LoadBorder(solidPNG(t, 4, red), []byte(`{`))
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Same(t, a, p.Atlas())

	assert.Error(t, p.LoadBundle([]byte("not a zip")))
	assert.Same(t, a, p.Atlas())

	p.SetAtlas(nil)
	assert.Nil(t, p.Atlas())
}

func TestConcurrentRendersAndLoads(t *testing.T) {
	p := NewProcessor(DefaultOptions())
	a := testAtlas(t)
	req := atlasRequest(t, "")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				p.SetAtlas(a)
				return
			}
			_, err := p.RenderImage(req)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
}

func TestNewProcessorDefaults(t *testing.T) {
	p := NewProcessor(Options{})
	opts := p.Options()
	assert.Equal(t, canvas.CatmullRom, opts.Resampler)
	assert.Equal(t, 20, opts.FallbackRingWidth)
	assert.Equal(t, border.FallbackColor, opts.FallbackRingColor)
	assert.Equal(t, float32(90), opts.Encode.Quality)
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)

	p := NewProcessor(DefaultOptions())
	p.SetAtlas(testAtlas(t))
	assert.Contains(t, buf.String(), "ring atlas loaded")

	SetLogger(nil)
	require.NotNil(t, Logger())
	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError))
}
