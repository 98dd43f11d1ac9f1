// Package render turns regional values into a choropleth map descriptor for
// a plotly/mapbox front end. It does not draw anything itself.
package render

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Missing is the color of regions without a value.
const Missing = "rgba(128,128,128,1)"

// fillAlpha is 0.8 opacity on a byte scale.
const fillAlpha = 204

var palettes = map[string][]string{
	"viridis": {"#440154", "#472d7b", "#3b528b", "#2c728e", "#21918c", "#28ae80", "#5ec962", "#addc30", "#fde725"},
	"Blues":   {"#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6", "#4292c6", "#2171b5", "#08519c", "#08306b"},
	"Reds":    {"#fff5f0", "#fee0d2", "#fcbba1", "#fc9272", "#fb6a4a", "#ef3b2c", "#cb181d", "#a50f15", "#67000d"},
	"YlOrRd":  {"#ffffcc", "#ffeda0", "#fed976", "#feb24c", "#fd8d3c", "#fc4e2a", "#e31a1c", "#bd0026", "#800026"},
}

// Colormap is a continuous color scale interpolated between evenly spaced
// stops.
type Colormap struct {
	Name     string
	Reversed bool
	stops    []colorful.Color
}

// Colormaps returns the supported names, without the "_r" variants.
func Colormaps() []string {
	names := make([]string, 0, len(palettes))
	for n := range palettes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LookupColormap returns the colormap called name. A "_r" suffix reverses
// it.
func LookupColormap(name string) (Colormap, error) {
	base, reversed := strings.CutSuffix(name, "_r")
	hexes, ok := palettes[base]
	if !ok {
		return Colormap{}, fmt.Errorf("unknown colormap %q (have %s)", name, strings.Join(Colormaps(), ", "))
	}
	stops := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return Colormap{}, fmt.Errorf("colormap %s: %w", base, err)
		}
		stops[i] = c
	}
	if reversed {
		for i, j := 0, len(stops)-1; i < j; i, j = i+1, j-1 {
			stops[i], stops[j] = stops[j], stops[i]
		}
	}
	return Colormap{Name: base, Reversed: reversed, stops: stops}, nil
}

// At returns the color at t, clamped to [0, 1].
func (c Colormap) At(t float64) colorful.Color {
	t = math.Max(0, math.Min(1, t))
	n := len(c.stops) - 1
	pos := t * float64(n)
	i := int(pos)
	if i >= n {
		return c.stops[n]
	}
	return c.stops[i].BlendRgb(c.stops[i+1], pos-float64(i))
}

// Colors maps values onto the colormap after scaling them to their observed
// minimum and maximum. NaN values get the Missing color.
func Colors(values []float64, cmap Colormap) []string {
	lo, hi, ok := Extent(values)
	out := make([]string, len(values))
	for i, v := range values {
		if math.IsNaN(v) || !ok {
			out[i] = Missing
			continue
		}
		t := 0.0
		if hi > lo {
			t = (v - lo) / (hi - lo)
		}
		r, g, b := cmap.At(t).Clamped().RGB255()
		out[i] = fmt.Sprintf("rgba(%d, %d, %d, %d)", r, g, b, fillAlpha)
	}
	return out
}

// Extent returns the minimum and maximum of the non-NaN values; ok is false
// when there are none.
func Extent(values []float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		ok = true
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}
