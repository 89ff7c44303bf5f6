package main

import (
	"encoding/json"
	"os"

	"github.com/akosarev/kmlmerge/internal/config"
	"github.com/akosarev/kmlmerge/internal/geo"
	"github.com/akosarev/kmlmerge/internal/kml"
	"github.com/akosarev/kmlmerge/internal/logger"
	"github.com/akosarev/kmlmerge/internal/pipeline"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string  `short:"c" long:"config"  env:"CONFIG_FILE" description:"Path to configuration file"`
	Input      string  `short:"i" long:"input"   env:"INPUT_FILE"  description:"Input KML file with point placemarks" required:"true"`
	Output     string  `short:"o" long:"output"  env:"OUTPUT_FILE" description:"Output file" default:"merged.kml"`
	Radius     float64 `short:"r" long:"radius"  env:"RADIUS"      description:"Buffer radius in meters (10-150)"`
	Color      string  `long:"color"   env:"COLOR"   description:"Polygon color as #RRGGBB hex"`
	Opacity    float64 `long:"opacity" env:"OPACITY" description:"Polygon fill opacity (0-1)" default:"-1"`
	Format     string  `short:"f" long:"format"  env:"FORMAT" description:"Output format" choice:"kml" choice:"geojson" default:"kml"`
	NoPoints   bool    `long:"no-points" description:"Do not copy original point markers into the output"`
	Minify     bool    `short:"m" long:"minify" description:"Minify the output KML"`
	DumpConfig bool    `long:"dump-config" description:"Print the effective configuration as JSON and exit"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg := config.Default()
	if opts.ConfigFile != "" {
		loaded, err := config.Load(opts.ConfigFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}
		cfg = loaded
	}

	// flags beat the config file
	if opts.Radius > 0 {
		cfg.Radius = opts.Radius
	}
	if opts.Color != "" {
		cfg.Color = opts.Color
	}
	if opts.Opacity >= 0 {
		cfg.Opacity = opts.Opacity
	}
	if opts.NoPoints {
		cfg.IncludePoints = false
	}

	if opts.DumpConfig {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to dump configuration")
		}
		return
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	raw, err := os.ReadFile(opts.Input)
	if err != nil {
		log.Fatal().Err(err).Str("path", opts.Input).Msg("Failed to read input file")
	}

	res, err := pipeline.Run(raw, cfg.Radius)
	if err != nil {
		log.Fatal().Err(err).Msg("Processing failed")
	}
	if len(res.Points) == 0 {
		log.Warn().Msg("No point placemarks found, nothing to write")
		return
	}

	points := res.Points
	if !cfg.IncludePoints {
		points = nil
	}

	var out []byte
	switch opts.Format {
	case "geojson":
		out, err = json.Marshal(geo.FeatureCollection(res.Merged, points, res.Areas))
	default:
		style, serr := cfg.Style()
		if serr != nil {
			log.Fatal().Err(serr).Msg("Invalid style")
		}
		if opts.Minify {
			out, err = kml.WriteMinified(res.Merged, points, style)
		} else {
			out, err = kml.Write(res.Merged, points, style)
		}
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to serialize output")
	}

	if err := os.WriteFile(opts.Output, out, 0644); err != nil {
		log.Fatal().Err(err).Str("path", opts.Output).Msg("Failed to write output file")
	}

	log.Info().
		Int("points", len(res.Points)).
		Int("polygons", len(res.Merged)).
		Float64("total_km2", geo.TotalArea(res.Merged, geo.AverageLatitude(res.Points))).
		Bool("merge_fallback", res.MergeFellBack).
		Str("output", opts.Output).
		Msg("Done")
}
