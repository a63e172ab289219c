// Package render builds circular avatar tokens: it fits a picture into the
// canvas, clips it to the stencil circle, adds drop shadows and draws the
// ring around it.
//
// A Processor holds the loaded ring atlas. Render calls never modify shared
// state and may run concurrently with each other and with atlas loads.
package render

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync/atomic"
	"time"

	"github.com/xob0t/GoToken/pkg/border"
	"github.com/xob0t/GoToken/pkg/canvas"
	"github.com/xob0t/GoToken/pkg/codec"
	"github.com/xob0t/GoToken/pkg/composite"
	"github.com/xob0t/GoToken/pkg/shadow"
	"github.com/xob0t/GoToken/pkg/stencil"
)

// Processor renders tokens. The zero value is not usable; call NewProcessor.
type Processor struct {
	opts  Options
	atlas atomic.Pointer[border.Atlas]
}

// NewProcessor returns a processor with no atlas loaded. A nil resampler,
// zero fallback ring width or color, and zero encode quality take their
// defaults. Shadows are used as given.
func NewProcessor(opts Options) *Processor {
	def := DefaultOptions()
	if opts.Resampler == nil {
		opts.Resampler = def.Resampler
	}
	if opts.FallbackRingWidth <= 0 {
		opts.FallbackRingWidth = def.FallbackRingWidth
	}
	if opts.FallbackRingColor == (color.RGBA{}) {
		opts.FallbackRingColor = def.FallbackRingColor
	}
	if opts.Encode.Quality <= 0 {
		opts.Encode.Quality = def.Encode.Quality
	}
	return &Processor{opts: opts}
}

// Options returns the processor's render parameters.
func (p *Processor) Options() Options { return p.opts }

// Atlas returns the loaded atlas, or nil when none is loaded.
func (p *Processor) Atlas() *border.Atlas { return p.atlas.Load() }

// SetAtlas replaces the atlas. Nil unloads it, bringing back the fallback ring.
func (p *Processor) SetAtlas(a *border.Atlas) {
	p.atlas.Store(a)
	if a == nil {
		Logger().Info("ring atlas unloaded")
		return
	}
	Logger().Info("ring atlas loaded", "rings", len(a.RingFrames()), "backgrounds", len(a.BkgFrames()))
}

// LoadBorder loads an atlas from a sprite sheet and its metadata. On error
// the previously loaded atlas stays in place.
func (p *Processor) LoadBorder(sheet, meta []byte) error {
	a, err := border.Load(sheet, meta)
	if err != nil {
		Logger().Warn("ring atlas rejected", "error", err)
		return fmt.Errorf("load border: %w", err)
	}
	p.SetAtlas(a)
	return nil
}

// LoadBundle loads an atlas from a ZIP bundle. On error the previously
// loaded atlas stays in place.
func (p *Processor) LoadBundle(data []byte) error {
	a, err := border.LoadBundle(data)
	if err != nil {
		Logger().Warn("ring atlas bundle rejected", "error", err)
		return fmt.Errorf("load border bundle: %w", err)
	}
	p.SetAtlas(a)
	return nil
}

// Render decodes the request, renders the token and encodes it with the
// processor's encoder (lossy WebP by default).
func (p *Processor) Render(req Request) ([]byte, error) {
	img, err := p.RenderImage(req)
	if err != nil {
		return nil, err
	}
	out, err := codec.EncodeBytes(img, p.opts.Encode)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return out, nil
}

// RenderImage is Render without the final encode.
func (p *Processor) RenderImage(req Request) (*image.NRGBA, error) {
	s, err := req.Settings.Resolved()
	if err != nil {
		return nil, err
	}

	src, _, err := codec.Decode(req.Image, "image")
	if err != nil {
		return nil, err
	}

	var mask *image.NRGBA
	if req.Mask != nil {
		mask, err = codec.DecodeRawRGBA(req.Mask, int(s.Dimensions.Size))
		if err != nil {
			return nil, err
		}
	}

	return p.Compose(src, mask, s)
}

// Compose runs the pipeline on a decoded picture. mask may be nil; when
// present it must be Size×Size. s must already be resolved.
func (p *Processor) Compose(src, mask *image.NRGBA, s Settings) (*image.NRGBA, error) {
	start := time.Now()
	d := s.Dimensions
	radius := int(d.StencilRadius)

	if mask == nil {
		mask = canvas.NewBlank(d)
	} else if mask.Bounds().Dx() != int(d.Size) || mask.Bounds().Dy() != int(d.Size) {
		return nil, &SizeMismatchError{Got: len(mask.Pix), Want: int(d.Size) * int(d.Size) * 4}
	}
	if err := s.Transform.ValidateFor(src.Bounds(), d); err != nil {
		return nil, &ValidationError{Field: "transform", Reason: err.Error()}
	}

	img := canvas.Apply(src, d, s.Transform, p.opts.Resampler)

	circle := stencil.Derive(stencil.Circle(d, radius), false, 0)
	inMask := stencil.Derive(mask, false, 0)
	outMask := stencil.Derive(mask, true, 0)

	ringBg, ringFg, err := p.ringLayers(d, s, img)
	if err != nil {
		return nil, err
	}

	imgShadow := shadow.Synthesize(img, p.opts.ImageShadow)

	// The ring shadow falls inward from the rim, so it only exists with a ring.
	var ringShadow *image.NRGBA
	if s.Ring {
		ringShadow = stencil.Apply(shadow.Synthesize(stencil.InvertedCircle(d, radius), p.opts.RingShadow), circle)
	}

	out := composite.Blend(d,
		ringBg,
		ringFg,
		stencil.And(imgShadow, outMask, circle),
		stencil.And(img, outMask, circle),
		ringShadow,
		stencil.Apply(imgShadow, inMask),
		stencil.Apply(img, inMask),
	)

	Logger().Debug("token rendered",
		"size", d.Size,
		"oversized", d.Oversized,
		"ring", s.Ring,
		"elapsed", time.Since(start))
	return out, nil
}

// ringLayers returns the ring background and foreground, or two nil layers
// when the ring is off.
func (p *Processor) ringLayers(d canvas.Dimensions, s Settings, img *image.NRGBA) (bg, fg *image.NRGBA, err error) {
	if !s.Ring {
		return nil, nil, nil
	}

	a := p.atlas.Load()
	if a == nil {
		Logger().Debug("no ring atlas loaded, drawing fallback ring")
		bg, fg = border.FallbackRing(d, p.opts.FallbackRingWidth, p.opts.FallbackRingColor)
		return bg, fg, nil
	}

	tint := a.DefaultTint()
	switch {
	case s.RingColor == "":
	case strings.EqualFold(s.RingColor, AutoRingColor):
		tint = border.AutoTint(img)
	default:
		if tint, err = border.ParseTint(s.RingColor); err != nil {
			return nil, nil, err
		}
	}

	bg, fg, err = a.Ring(d, tint, p.opts.Resampler)
	if err != nil {
		return nil, nil, fmt.Errorf("ring: %w", err)
	}
	return bg, fg, nil
}
