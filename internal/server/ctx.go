// Package server handles HTTP requests and middleware.
package server

import (
	"github.com/akosarev/kmlmerge/internal/config"

	"github.com/rs/zerolog/log"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Defaults config.Config
}

// NewServerContext initializes the handler context with processing
// defaults. Per-request form values may override any of them, but every
// effective configuration is re-validated before processing.
func NewServerContext(cfg config.Config) *ServerContext {
	log.Info().
		Float64("radius", cfg.Radius).
		Str("color", cfg.Color).
		Float64("opacity", cfg.Opacity).
		Bool("include_points", cfg.IncludePoints).
		Msg("Initializing server context")

	return &ServerContext{Defaults: cfg}
}
