package render

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Map defaults: Italy, centered for a portrait figure.
const (
	DefaultWidth  = 700
	DefaultHeight = 800
	CenterLat     = 41.871941
	CenterLon     = 12.567380
	DefaultZoom   = 4.9
	DefaultStyle  = "light"
)

// Region is one area to draw.
type Region struct {
	Name   string
	Lon    float64
	Lat    float64
	Value  float64 // NaN when unknown
	Source json.RawMessage
}

// Options configures a figure.
type Options struct {
	Title       string
	Colormap    string
	Percentage  bool
	AccessToken string
}

// Figure is a plotly figure: one marker trace and a layout whose mapbox
// layers draw the regions.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

type Trace struct {
	Type       string    `json:"type"`
	Lat        []float64 `json:"lat"`
	Lon        []float64 `json:"lon"`
	Mode       string    `json:"mode"`
	Text       []string  `json:"text"`
	Marker     Marker    `json:"marker"`
	ShowLegend bool      `json:"showlegend"`
	HoverInfo  string    `json:"hoverinfo"`
}

type Marker struct {
	Size         int      `json:"size"`
	Color        []string `json:"color"`
	ShowScale    bool     `json:"showscale"`
	CMin         *float64 `json:"cmin,omitempty"`
	CMax         *float64 `json:"cmax,omitempty"`
	Colorscale   string   `json:"colorscale"`
	ReverseScale bool     `json:"reversescale"`
	Colorbar     Colorbar `json:"colorbar"`
}

type Colorbar struct {
	TickFormat string `json:"tickformat"`
}

type Layer struct {
	SourceType string          `json:"sourcetype"`
	Source     json.RawMessage `json:"source"`
	Below      string          `json:"below"`
	Type       string          `json:"type"`
	Line       *Line           `json:"line,omitempty"`
	Color      string          `json:"color"`
	Opacity    float64         `json:"opacity,omitempty"`
}

type Line struct {
	Width float64 `json:"width"`
}

type Layout struct {
	Title         string `json:"title"`
	Autosize      bool   `json:"autosize"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	HoverMode     string `json:"hovermode"`
	HoverDistance int    `json:"hoverdistance"`
	Mapbox        Mapbox `json:"mapbox"`
}

type Mapbox struct {
	AccessToken string  `json:"accesstoken"`
	Layers      []Layer `json:"layers"`
	Bearing     float64 `json:"bearing"`
	Center      LatLon  `json:"center"`
	Pitch       float64 `json:"pitch"`
	Zoom        float64 `json:"zoom"`
	Style       string  `json:"style"`
}

type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewFigure builds the figure for regions. Every region gets an outline
// layer; the fill layers follow, in the same order, colored by value.
func NewFigure(regions []Region, opts Options) (*Figure, error) {
	cmap, err := LookupColormap(opts.Colormap)
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(regions))
	for i, r := range regions {
		values[i] = r.Value
	}
	colors := Colors(values, cmap)

	trace := Trace{
		Type:      "scattermapbox",
		Lat:       make([]float64, len(regions)),
		Lon:       make([]float64, len(regions)),
		Mode:      "markers",
		Text:      make([]string, len(regions)),
		HoverInfo: "text",
		Marker: Marker{
			Size:         1,
			Color:        colors,
			ShowScale:    true,
			Colorscale:   cmap.Name,
			ReverseScale: cmap.Reversed,
		},
	}
	if lo, hi, ok := Extent(values); ok {
		trace.Marker.CMin, trace.Marker.CMax = &lo, &hi
	}
	if opts.Percentage {
		trace.Marker.Colorbar.TickFormat = ".0%"
	}

	lines := make([]Layer, 0, len(regions))
	fills := make([]Layer, 0, len(regions))
	for i, r := range regions {
		if len(r.Source) == 0 {
			return nil, fmt.Errorf("region %q has no source geometry", r.Name)
		}
		trace.Lat[i], trace.Lon[i] = r.Lat, r.Lon
		trace.Text[i] = r.Name + " <br> " + label(r.Value, opts.Percentage)

		lines = append(lines, Layer{
			SourceType: "geojson",
			Source:     r.Source,
			Type:       "line",
			Line:       &Line{Width: 1},
			Color:      "black",
		})
		fills = append(fills, Layer{
			SourceType: "geojson",
			Source:     r.Source,
			Below:      "water",
			Type:       "fill",
			Color:      colors[i],
			Opacity:    0.8,
		})
	}

	return &Figure{
		Data: []Trace{trace},
		Layout: Layout{
			Title:         opts.Title,
			Width:         DefaultWidth,
			Height:        DefaultHeight,
			HoverMode:     "closest",
			HoverDistance: 30,
			Mapbox: Mapbox{
				AccessToken: opts.AccessToken,
				Layers:      append(lines, fills...),
				Center:      LatLon{Lat: CenterLat, Lon: CenterLon},
				Zoom:        DefaultZoom,
				Style:       DefaultStyle,
			},
		},
	}, nil
}

// label formats a hover value; fractions are shown as percentages with two
// decimals.
func label(v float64, percentage bool) string {
	if math.IsNaN(v) {
		return "nan"
	}
	if percentage {
		return strconv.FormatFloat(math.Round(v*100*100)/100, 'f', -1, 64) + "%"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteJSON encodes the figure on w.
func (f *Figure) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode figure: %w", err)
	}
	return nil
}
