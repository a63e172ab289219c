// metadata.go — Sprite-sheet atlas description.
package border

import (
	"encoding/json"
	"fmt"
	"image"
	"sort"

	"github.com/tidwall/jsonc"
)

// ParseError reports atlas metadata that does not match the expected schema.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse atlas metadata: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ── Geometry ──

// Box is a rectangle on the sprite sheet.
type Box struct {
	X int    `json:"x"`
	Y int    `json:"y"`
	W uint32 `json:"w"`
	H uint32 `json:"h"`
}

// Rect returns the box as an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+int(b.W), b.Y+int(b.H))
}

// Point is an integer pair. Sprite packers write it as {x,y} or {w,h}; both
// are accepted.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var raw struct {
		X, Y, W, H *int
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.X, p.Y = pick(raw.X, raw.W), pick(raw.Y, raw.H)
	return nil
}

// FloatPoint is a fractional pair, accepting the same aliases as Point.
type FloatPoint struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

func (p *FloatPoint) UnmarshalJSON(data []byte) error {
	var raw struct {
		X, Y, W, H *float32
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.X, p.Y = pick(raw.X, raw.W), pick(raw.Y, raw.H)
	return nil
}

func pick[T any](a, b *T) T {
	var zero T
	switch {
	case a != nil:
		return *a
	case b != nil:
		return *b
	default:
		return zero
	}
}

// ColorBand is an annulus given as fractions of a frame's half-width.
type ColorBand struct {
	StartRadius float32 `json:"startRadius"`
	EndRadius   float32 `json:"endRadius"`
}

// ── Frames ──

// Frame is either a RingFrame or a BkgFrame.
type Frame interface {
	Info() FrameInfo
	isFrame()
}

// FrameInfo holds the fields every frame record carries.
type FrameInfo struct {
	Name             string     `json:"-"`
	Frame            Box        `json:"frame"`
	Rotated          bool       `json:"rotated"`
	Trimmed          bool       `json:"trimmed"`
	SpriteSourceSize Box        `json:"spriteSourceSize"`
	SourceSize       Point      `json:"sourceSize"`
	Anchor           FloatPoint `json:"anchor"`
}

// Width is the frame's native pixel width on the sheet.
func (f FrameInfo) Width() uint32 { return f.Frame.W }

// BkgFrame is a background disc drawn behind the ring.
type BkgFrame struct {
	FrameInfo
}

func (f BkgFrame) Info() FrameInfo { return f.FrameInfo }
func (BkgFrame) isFrame()          {}

// RingFrame is a ring sprite with a recolorable band.
type RingFrame struct {
	FrameInfo
	GridTarget    uint32    `json:"gridTarget"`
	ColorBand     ColorBand `json:"colorBand"`
	RingThickness float32   `json:"ringThickness"`
}

func (f RingFrame) Info() FrameInfo { return f.FrameInfo }
func (RingFrame) isFrame()          {}

// frameRecord is the wire form. A record carrying all of gridTarget,
// colorBand and ringThickness is a ring; anything else is a background.
type frameRecord struct {
	FrameInfo
	Frame         *Box       `json:"frame"`
	GridTarget    *uint32    `json:"gridTarget"`
	ColorBand     *ColorBand `json:"colorBand"`
	RingThickness *float32   `json:"ringThickness"`
}

func (r frameRecord) resolve(name string) (Frame, error) {
	if r.Frame == nil {
		return nil, fmt.Errorf("frame %q: missing \"frame\" rectangle", name)
	}
	if r.Frame.W == 0 || r.Frame.H == 0 {
		return nil, fmt.Errorf("frame %q: empty rectangle %dx%d", name, r.Frame.W, r.Frame.H)
	}

	info := r.FrameInfo
	info.Name = name
	info.Frame = *r.Frame

	if r.GridTarget != nil && r.ColorBand != nil && r.RingThickness != nil {
		return RingFrame{
			FrameInfo:     info,
			GridTarget:    *r.GridTarget,
			ColorBand:     *r.ColorBand,
			RingThickness: *r.RingThickness,
		}, nil
	}
	return BkgFrame{FrameInfo: info}, nil
}

// ── Document ──

// Config holds the sheet-wide ring defaults.
type Config struct {
	DefaultColorBand ColorBand `json:"defaultColorBand"`
	DefaultRingColor string    `json:"defaultRingColor"`
}

// SheetMeta carries packer information. Image names the sprite sheet inside
// a bundle.
type SheetMeta struct {
	Image string `json:"image"`
	Size  Point  `json:"size"`
}

// Metadata is a parsed atlas description.
type Metadata struct {
	Config Config
	Meta   SheetMeta
	Rings  []RingFrame // ascending by width
	Bkgs   []BkgFrame  // ascending by width
}

// ParseMetadata decodes an atlas description. Comments and trailing commas
// are tolerated.
func ParseMetadata(data []byte) (*Metadata, error) {
	var doc struct {
		Config *Config                 `json:"config"`
		Meta   SheetMeta               `json:"meta"`
		Frames map[string]*frameRecord `json:"frames"`
	}
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		return nil, &ParseError{Err: err}
	}
	if doc.Config == nil {
		return nil, &ParseError{Err: fmt.Errorf("missing \"config\" section")}
	}

	md := &Metadata{Config: *doc.Config, Meta: doc.Meta}
	for name, rec := range doc.Frames {
		if rec == nil {
			return nil, &ParseError{Err: fmt.Errorf("frame %q: null record", name)}
		}
		f, err := rec.resolve(name)
		if err != nil {
			return nil, &ParseError{Err: err}
		}
		switch f := f.(type) {
		case RingFrame:
			md.Rings = append(md.Rings, f)
		case BkgFrame:
			md.Bkgs = append(md.Bkgs, f)
		}
	}

	sortFrames(md.Rings)
	sortFrames(md.Bkgs)
	return md, nil
}

// sortFrames orders by width; the name breaks ties so map order never leaks.
func sortFrames[F Frame](frames []F) {
	sort.Slice(frames, func(i, j int) bool {
		a, b := frames[i].Info(), frames[j].Info()
		if a.Width() != b.Width() {
			return a.Width() < b.Width()
		}
		return a.Name < b.Name
	})
}

// ExampleMetadata returns a sample atlas description with one background and
// one ring frame at 256 and 1024 pixels, laid out in a single row.
func ExampleMetadata() string {
	return `{
  // Ring sprites are neutral gray; the color band is tinted at render time.
  "config": {
    "defaultColorBand": { "startRadius": 0.85, "endRadius": 1.0 },
    "defaultRingColor": "#c8a24a"
  },
  "meta": { "image": "rings.png", "size": { "w": 2560, "h": 1024 } },
  "frames": {
    "bkg-256":  { "frame": { "x": 0,    "y": 0, "w": 256,  "h": 256 },  "rotated": false, "trimmed": false,
                  "spriteSourceSize": { "x": 0, "y": 0, "w": 256, "h": 256 }, "sourceSize": { "w": 256, "h": 256 },
                  "anchor": { "x": 0.5, "y": 0.5 } },
    "ring-256": { "frame": { "x": 256,  "y": 0, "w": 256,  "h": 256 },  "rotated": false, "trimmed": false,
                  "spriteSourceSize": { "x": 0, "y": 0, "w": 256, "h": 256 }, "sourceSize": { "w": 256, "h": 256 },
                  "anchor": { "x": 0.5, "y": 0.5 },
                  "gridTarget": 256, "colorBand": { "startRadius": 0.85, "endRadius": 1.0 }, "ringThickness": 0.15 },
    "bkg-1024":  { "frame": { "x": 512,  "y": 0, "w": 1024, "h": 1024 }, "rotated": false, "trimmed": false,
                   "spriteSourceSize": { "x": 0, "y": 0, "w": 1024, "h": 1024 }, "sourceSize": { "w": 1024, "h": 1024 },
                   "anchor": { "x": 0.5, "y": 0.5 } },
    "ring-1024": { "frame": { "x": 1536, "y": 0, "w": 1024, "h": 1024 }, "rotated": false, "trimmed": false,
                   "spriteSourceSize": { "x": 0, "y": 0, "w": 1024, "h": 1024 }, "sourceSize": { "w": 1024, "h": 1024 },
                   "anchor": { "x": 0.5, "y": 0.5 },
                   "gridTarget": 1024, "colorBand": { "startRadius": 0.85, "endRadius": 1.0 }, "ringThickness": 0.15 },
  },
}
`
}
