// Package config handles configuration loading and shared defaults.
package config

import (
	"fmt"
	"os"

	"github.com/akosarev/kmlmerge/internal/kml"

	"gopkg.in/yaml.v3"
)

// Bounds for the buffer radius accepted from callers, in meters.
const (
	MinRadius = 10
	MaxRadius = 150
)

// Config represents the processing defaults, overridable per CLI flag or
// per request.
type Config struct {
	Radius        float64 `yaml:"radius" json:"radius"`
	Color         string  `yaml:"color" json:"color"`
	Opacity       float64 `yaml:"opacity" json:"opacity"`
	StrokeWidth   int     `yaml:"stroke_width" json:"stroke_width"`
	IncludePoints bool    `yaml:"include_points" json:"include_points"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Radius:        120,
		Color:         "#FF0000",
		Opacity:       0.3,
		StrokeWidth:   2,
		IncludePoints: true,
	}
}

// Load reads and parses the YAML configuration file from the specified
// path. Values absent from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate enforces the caller-facing bounds before anything reaches the
// geometry core.
func (c Config) Validate() error {
	if c.Radius < MinRadius || c.Radius > MaxRadius {
		return fmt.Errorf("config: radius %v out of range [%d, %d]", c.Radius, MinRadius, MaxRadius)
	}
	if c.Opacity < 0 || c.Opacity > 1 {
		return fmt.Errorf("config: opacity %v out of range [0, 1]", c.Opacity)
	}
	if c.StrokeWidth < 0 {
		return fmt.Errorf("config: stroke width %d must not be negative", c.StrokeWidth)
	}
	if _, err := kml.ParseHexColor(c.Color); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Style builds the writer style from the configured color and opacity.
func (c Config) Style() (kml.Style, error) {
	rgb, err := kml.ParseHexColor(c.Color)
	if err != nil {
		return kml.Style{}, err
	}

	return kml.Style{
		StrokeColor: rgb,
		FillColor:   rgb,
		FillOpacity: c.Opacity,
		StrokeWidth: c.StrokeWidth,
	}, nil
}
