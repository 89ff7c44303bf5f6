// Package pipeline wires extraction, buffering, merging and serialization
// into one stateless run. Each run is a pure function of its inputs; no
// state survives between calls.
package pipeline

import (
	"errors"

	"github.com/akosarev/kmlmerge/internal/geo"
	"github.com/akosarev/kmlmerge/internal/kml"
	"github.com/akosarev/kmlmerge/internal/merge"

	"github.com/rs/zerolog/log"
)

// Result is everything one run produces. The caller owns it; the pipeline
// keeps nothing.
type Result struct {
	Points        []geo.Point
	Merged        []geo.Polygon
	Areas         []float64
	MergeFellBack bool
}

// Run executes the full pipeline on a raw KML document. A malformed
// document or an invalid radius aborts the run; a union failure on
// degenerate geometry degrades to the unmerged buffered footprints
// instead. Zero extracted points yield an empty Result and a nil error.
func Run(raw []byte, radiusMeters float64) (Result, error) {
	points, err := kml.Extract(raw)
	if err != nil {
		return Result{}, err
	}
	if len(points) == 0 {
		log.Info().Msg("No point placemarks found in document")
		return Result{}, nil
	}

	buffered := make([]geo.Polygon, 0, len(points))
	for _, p := range points {
		poly, err := geo.Buffer(p, radiusMeters)
		if err != nil {
			return Result{}, err
		}
		buffered = append(buffered, poly)
	}

	res := Result{Points: points}

	u, err := merge.Merge(buffered)
	switch {
	case errors.Is(err, merge.ErrGeometry):
		log.Warn().Err(err).Msg("Merge failed, keeping unmerged footprints")
		res.Merged = buffered
		res.MergeFellBack = true
	case err != nil:
		return Result{}, err
	default:
		res.Merged = u.Polygons
	}

	avgLat := geo.AverageLatitude(points)
	res.Areas = make([]float64, len(res.Merged))
	for i, poly := range res.Merged {
		res.Areas[i] = geo.EstimateArea(poly, avgLat)
	}

	log.Info().
		Int("points", len(points)).
		Int("merged", len(res.Merged)).
		Bool("fallback", res.MergeFellBack).
		Msg("Pipeline run complete")

	return res, nil
}

// ParseDocument exposes point extraction to the UI layer.
func ParseDocument(raw []byte) ([]geo.Point, error) {
	return kml.Extract(raw)
}

// ProcessPoints buffers and merges an already-extracted point list.
func ProcessPoints(points []geo.Point, radiusMeters float64) ([]geo.Polygon, error) {
	buffered := make([]geo.Polygon, 0, len(points))
	for _, p := range points {
		poly, err := geo.Buffer(p, radiusMeters)
		if err != nil {
			return nil, err
		}
		buffered = append(buffered, poly)
	}

	u, err := merge.Merge(buffered)
	if err != nil {
		return nil, err
	}
	return u.Polygons, nil
}

// RenderDocument serializes a processed result back to KML.
func RenderDocument(merged []geo.Polygon, points []geo.Point, style kml.Style) ([]byte, error) {
	return kml.Write(merged, points, style)
}

// EstimateAreas computes approximate km² per merged polygon using the
// average latitude of the original points.
func EstimateAreas(merged []geo.Polygon, points []geo.Point) []float64 {
	avgLat := geo.AverageLatitude(points)
	areas := make([]float64, len(merged))
	for i, p := range merged {
		areas[i] = geo.EstimateArea(p, avgLat)
	}
	return areas
}
