// Package geo reconciles region names between the metrics tables and a
// GeoJSON boundary file, and locates a label point for each region.
package geo

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Boundary is one named region of the boundary file.
type Boundary struct {
	Name    string
	Feature *geojson.Feature
}

// LoadBoundaries reads a GeoJSON FeatureCollection. Every feature must carry
// a string properties.name and a Polygon or MultiPolygon geometry.
func LoadBoundaries(path string) ([]Boundary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read boundaries: %w", err)
	}
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse boundaries %s: %w", path, err)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("boundaries %s: no features", path)
	}

	out := make([]Boundary, 0, len(fc.Features))
	for i, f := range fc.Features {
		name, ok := f.Properties["name"].(string)
		if !ok || name == "" {
			return nil, fmt.Errorf("feature %d: missing properties.name", i)
		}
		switch f.Geometry.(type) {
		case *geom.Polygon, *geom.MultiPolygon:
		default:
			return nil, fmt.Errorf("feature %q: unsupported geometry %T", name, f.Geometry)
		}
		out = append(out, Boundary{Name: name, Feature: f})
	}
	return out, nil
}

// Names returns the boundary names in file order.
func Names(bs []Boundary) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.Name
	}
	return out
}

// Center returns the midpoint of the bounding box of the outer ring of the
// first polygon. Islands and holes are ignored.
func Center(g geom.T) (lon, lat float64, err error) {
	var ring *geom.LinearRing
	switch g := g.(type) {
	case *geom.Polygon:
		if g.NumLinearRings() == 0 {
			return 0, 0, fmt.Errorf("empty polygon")
		}
		ring = g.LinearRing(0)
	case *geom.MultiPolygon:
		if g.NumPolygons() == 0 || g.Polygon(0).NumLinearRings() == 0 {
			return 0, 0, fmt.Errorf("empty multipolygon")
		}
		ring = g.Polygon(0).LinearRing(0)
	default:
		return 0, 0, fmt.Errorf("unsupported geometry %T", g)
	}
	if ring.NumCoords() == 0 {
		return 0, 0, fmt.Errorf("empty ring")
	}
	b := ring.Bounds()
	return 0.5 * (b.Min(0) + b.Max(0)), 0.5 * (b.Min(1) + b.Max(1)), nil
}

// Centers returns the longitudes and latitudes of the centers of bs.
func Centers(bs []Boundary) (lons, lats []float64, err error) {
	lons = make([]float64, len(bs))
	lats = make([]float64, len(bs))
	for i, b := range bs {
		lons[i], lats[i], err = Center(b.Feature.Geometry)
		if err != nil {
			return nil, nil, fmt.Errorf("region %q: %w", b.Name, err)
		}
	}
	return lons, lats, nil
}

// Source returns the region as a single-feature GeoJSON FeatureCollection,
// the form map layers take as their source.
func (b Boundary) Source() (json.RawMessage, error) {
	fc := geojson.FeatureCollection{Features: []*geojson.Feature{b.Feature}}
	data, err := json.Marshal(&fc)
	if err != nil {
		return nil, fmt.Errorf("encode region %q: %w", b.Name, err)
	}
	return data, nil
}
