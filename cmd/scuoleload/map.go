package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/scuolestats/internal/builder"
	"github.com/gyeh/scuolestats/internal/exitcode"
	"github.com/gyeh/scuolestats/internal/geo"
	"github.com/gyeh/scuolestats/internal/metrics"
	"github.com/gyeh/scuolestats/internal/render"
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Render a regional choropleth of a student metric as a plotly figure",
	RunE:  runMap,
}

func init() {
	f := mapCmd.Flags()
	f.StringVar(&cfg.GeoJSONPath, "geojson", "", "Region boundaries GeoJSON (required)")
	f.StringVar(&cfg.Metric, "metric", "foreign_percentage", "Regional metric column to plot")
	f.StringVar(&cfg.Colormap, "colormap", "viridis", "Colormap name; append _r to reverse")
	f.StringVar(&cfg.Title, "title", "", "Figure title (default the metric name)")
	f.StringVar(&cfg.OutPath, "out", "-", "Output file for the figure JSON, - for stdout")
	f.BoolVar(&cfg.Percentage, "percent", false, "Format values as percentages")
	f.StringVar(&cfg.MapboxToken, "mapbox-token", os.Getenv("MAPBOX_ACCESS_TOKEN"), "Mapbox access token (or set MAPBOX_ACCESS_TOKEN)")
	_ = mapCmd.MarkFlagRequired("geojson")
	rootCmd.AddCommand(mapCmd)
}

func runMap(cmd *cobra.Command, args []string) error {
	log := setup()
	ctx := context.Background()

	if err := cfg.ValidateMap(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	env := newEnv(log)

	registry, err := builder.Registry(ctx, env)
	if err != nil {
		log.Error().Err(err).Msg("registry build failed")
		os.Exit(exitcode.BuildError)
	}
	_, students, err := builder.Students(ctx, env)
	if err != nil {
		log.Error().Err(err).Msg("students build failed")
		os.Exit(exitcode.BuildError)
	}
	byRegion, err := metrics.StudentsByRegion(registry, students)
	if err != nil {
		log.Error().Err(err).Msg("regional metrics failed")
		os.Exit(exitcode.BuildError)
	}
	names, values, err := metrics.Series(byRegion, cfg.Metric)
	if err != nil {
		log.Error().Err(err).Str("metric", cfg.Metric).Msg("metric not available")
		os.Exit(exitcode.UsageError)
	}

	bounds, err := geo.LoadBoundaries(cfg.GeoJSONPath)
	if err != nil {
		log.Error().Err(err).Msg("boundaries rejected")
		os.Exit(exitcode.ValidationError)
	}
	boundaryNames := geo.Names(bounds)
	cw, matches := geo.MatchRegions(boundaryNames, names, geo.DefaultThreshold)
	for _, m := range matches {
		log.Debug().Str("metric_region", m.Metric).Str("boundary", m.Boundary).Int("score", m.Score).Msg("region matched")
	}
	if len(cw) < len(boundaryNames) {
		log.Warn().Int("matched", len(cw)).Int("boundaries", len(boundaryNames)).Msg("some regions have no value")
	}

	lons, lats, err := geo.Centers(bounds)
	if err != nil {
		log.Error().Err(err).Msg("region centers failed")
		os.Exit(exitcode.ValidationError)
	}
	reindexed := geo.Reindex(names, values, cw, boundaryNames)
	regions := make([]render.Region, len(bounds))
	for i, b := range bounds {
		src, err := b.Source()
		if err != nil {
			log.Error().Err(err).Str("region", b.Name).Msg("region geometry failed")
			os.Exit(exitcode.ValidationError)
		}
		regions[i] = render.Region{Name: b.Name, Lon: lons[i], Lat: lats[i], Value: reindexed[i], Source: src}
	}

	title := cfg.Title
	if title == "" {
		title = cfg.Metric
	}
	fig, err := render.NewFigure(regions, render.Options{
		Title:       title,
		Colormap:    cfg.Colormap,
		Percentage:  cfg.Percentage,
		AccessToken: cfg.MapboxToken,
	})
	if err != nil {
		log.Error().Err(err).Msg("figure failed")
		os.Exit(exitcode.UsageError)
	}

	var w io.Writer = os.Stdout
	if cfg.OutPath != "-" {
		out, err := os.Create(cfg.OutPath)
		if err != nil {
			log.Error().Err(err).Msg("failed to create output")
			os.Exit(exitcode.WriteError)
		}
		defer out.Close()
		w = out
	}
	if err := fig.WriteJSON(w); err != nil {
		log.Error().Err(err).Msg("failed to write figure")
		os.Exit(exitcode.WriteError)
	}
	if cfg.OutPath != "-" {
		fmt.Fprintf(os.Stderr, "Figure written to %s (%d regions, %d matched)\n", cfg.OutPath, len(regions), len(cw))
	}
	return nil
}
