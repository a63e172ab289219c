package render

import (
	"strings"

	"github.com/xob0t/GoToken/pkg/border"
	"github.com/xob0t/GoToken/pkg/canvas"
)

// AutoRingColor selects the subject's dominant color as the ring tint.
const AutoRingColor = "auto"

// Settings is the JSON-facing part of a render request.
type Settings struct {
	Transform  canvas.Transform  `json:"transform"`
	Dimensions canvas.Dimensions `json:"dimensions"`
	Ring       bool              `json:"ring"`

	// Preset, when set, replaces Dimensions.Size and StencilRadius with the
	// named size. Dimensions.Oversized still applies.
	Preset string `json:"preset,omitempty"`

	// RingColor overrides the atlas tint: "#rrggbb", "auto", or empty for
	// the atlas default. The fallback ring ignores it.
	RingColor string `json:"ringColor,omitempty"`
}

// DefaultSettings renders a medium token with the ring on.
func DefaultSettings() Settings {
	d, _ := canvas.FromPreset("medium", false)
	return Settings{Transform: canvas.Identity, Dimensions: d, Ring: true}
}

// Request is one render call.
type Request struct {
	Image []byte // encoded subject image
	Mask  []byte // raw RGBA, Size*Size*4 bytes; nil for no mask
	Settings
}

// Resolved applies Preset and checks the caller contract.
func (s Settings) Resolved() (Settings, error) {
	if s.Preset != "" {
		d, err := canvas.FromPreset(s.Preset, s.Dimensions.Oversized)
		if err != nil {
			return s, &ValidationError{Field: "preset", Reason: err.Error()}
		}
		s.Dimensions = d
		s.Preset = ""
	}
	if err := s.Dimensions.Validate(); err != nil {
		return s, &ValidationError{Field: "dimensions", Reason: err.Error()}
	}
	if err := s.Transform.Validate(); err != nil {
		return s, &ValidationError{Field: "transform", Reason: err.Error()}
	}

	s.RingColor = strings.TrimSpace(s.RingColor)
	if s.RingColor != "" && !strings.EqualFold(s.RingColor, AutoRingColor) {
		if _, err := border.ParseTint(s.RingColor); err != nil {
			return s, err
		}
	}
	return s, nil
}
