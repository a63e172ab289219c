// Package border resolves the decorative ring drawn around a token, either
// from a sprite-sheet atlas or procedurally when no atlas is loaded.
package border

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"github.com/xob0t/GoToken/pkg/canvas"
	"github.com/xob0t/GoToken/pkg/codec"
)

// NoSuitableFrameError reports that no frame is wide enough for the
// requested canvas.
type NoSuitableFrameError struct {
	Rings int
	Bkgs  int
	Size  uint32
}

func (e *NoSuitableFrameError) Error() string {
	return fmt.Sprintf("no suitable ring (%d) or background frame (%d) found for size %d", e.Rings, e.Bkgs, e.Size)
}

// Atlas is a loaded sprite sheet and its frames. It is read-only after
// construction and safe for concurrent use.
type Atlas struct {
	sheet *image.NRGBA
	tint  color.RGBA
	band  ColorBand
	rings []RingFrame
	bkgs  []BkgFrame
}

// Load decodes the sprite sheet and parses its metadata.
func Load(sheet []byte, meta []byte) (*Atlas, error) {
	md, err := ParseMetadata(meta)
	if err != nil {
		return nil, err
	}
	img, _, err := codec.Decode(sheet, "atlas")
	if err != nil {
		return nil, err
	}
	return New(img, md)
}

// New builds an atlas from a decoded sheet. Every frame must lie inside the
// sheet and the default ring color must parse.
func New(sheet *image.NRGBA, md *Metadata) (*Atlas, error) {
	tint, err := ParseTint(md.Config.DefaultRingColor)
	if err != nil {
		return nil, err
	}

	bounds := sheet.Bounds()
	check := func(f FrameInfo) error {
		if !f.Frame.Rect().In(bounds) {
			return &ParseError{Err: fmt.Errorf("frame %q %v lies outside the %dx%d sheet", f.Name, f.Frame.Rect(), bounds.Dx(), bounds.Dy())}
		}
		return nil
	}
	for _, f := range md.Rings {
		if err := check(f.FrameInfo); err != nil {
			return nil, err
		}
	}
	for _, f := range md.Bkgs {
		if err := check(f.FrameInfo); err != nil {
			return nil, err
		}
	}

	rings := append([]RingFrame(nil), md.Rings...)
	bkgs := append([]BkgFrame(nil), md.Bkgs...)
	sortFrames(rings)
	sortFrames(bkgs)

	return &Atlas{
		sheet: canvas.Clone(sheet),
		tint:  tint,
		band:  md.Config.DefaultColorBand,
		rings: rings,
		bkgs:  bkgs,
	}, nil
}

// DefaultTint is the ring color configured by the atlas.
func (a *Atlas) DefaultTint() color.RGBA { return a.tint }

// DefaultBand is the sheet-wide color band.
func (a *Atlas) DefaultBand() ColorBand { return a.band }

// RingFrames returns the ring frames, ascending by width.
func (a *Atlas) RingFrames() []RingFrame { return append([]RingFrame(nil), a.rings...) }

// BkgFrames returns the background frames, ascending by width.
func (a *Atlas) BkgFrames() []BkgFrame { return append([]BkgFrame(nil), a.bkgs...) }

// Select returns the narrowest background and ring frames at least size
// pixels wide.
func (a *Atlas) Select(size uint32) (BkgFrame, RingFrame, error) {
	bi := sort.Search(len(a.bkgs), func(i int) bool { return a.bkgs[i].Width() >= size })
	ri := sort.Search(len(a.rings), func(i int) bool { return a.rings[i].Width() >= size })
	if bi == len(a.bkgs) || ri == len(a.rings) {
		return BkgFrame{}, RingFrame{}, &NoSuitableFrameError{Rings: len(a.rings), Bkgs: len(a.bkgs), Size: size}
	}
	return a.bkgs[bi], a.rings[ri], nil
}

// Ring renders the background and foreground layers for d. The ring band is
// tinted with tint; pass DefaultTint for the atlas color.
func (a *Atlas) Ring(d canvas.Dimensions, tint color.RGBA, r canvas.Resampler) (bg, fg *image.NRGBA, err error) {
	bkg, ring, err := a.Select(d.Size)
	if err != nil {
		return nil, nil, err
	}

	bg = scaleToToken(a.crop(bkg.FrameInfo), d, r)
	fg = scaleToToken(Recolor(a.crop(ring.FrameInfo), ring.ColorBand, tint), d, r)
	return bg, fg, nil
}

func (a *Atlas) crop(f FrameInfo) *image.NRGBA {
	return canvas.Clone(a.sheet.SubImage(f.Frame.Rect()).(*image.NRGBA))
}

// scaleToToken resizes a frame to the token size and, on an oversized
// canvas, centers it at the inset.
func scaleToToken(img *image.NRGBA, d canvas.Dimensions, r canvas.Resampler) *image.NRGBA {
	if r == nil {
		r = canvas.CatmullRom
	}
	token := d.TokenSize()
	if img.Bounds().Dx() != token || img.Bounds().Dy() != token {
		img = r.Resize(img, token, token)
	}
	if !d.Oversized {
		return img
	}
	inset := d.Inset()
	return canvas.Place(img, int(d.Size), int(d.Size), image.Pt(inset, inset))
}
