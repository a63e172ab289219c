// presets.go — Named token sizes.
package canvas

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Presets maps size names to the base canvas edge in pixels.
var Presets = map[string]uint32{
	"tiny":       256,
	"small":      512,
	"medium":     512,
	"large":      1024,
	"huge":       1024,
	"gargantuan": 2048,
}

// PresetNames returns the preset names ordered by canvas size, then name.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for n := range Presets {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		si, sj := Presets[names[i]], Presets[names[j]]
		if si != sj {
			return si < sj
		}
		return names[i] < names[j]
	})
	return names
}

// FromPreset resolves a named size into Dimensions.
//
// The stencil radius is a third of the base canvas. Oversized doubles the
// canvas but keeps the radius, so the token stays the same pixel size.
func FromPreset(name string, oversized bool) (Dimensions, error) {
	base, ok := Presets[strings.ToLower(name)]
	if !ok {
		return Dimensions{}, fmt.Errorf("unknown size preset %q", name)
	}

	radius := uint32(math.Round(float64(base) / 3))
	size := base
	if oversized {
		size *= 2
	}

	return Dimensions{
		Size:          size,
		Oversized:     oversized,
		StencilRadius: radius,
	}, nil
}
