package geo

import (
	"errors"
	"fmt"
	"math"
)

// metersPerDegree approximates one degree of latitude anywhere on the
// globe, and one degree of longitude at the equator.
const metersPerDegree = 111000.0

var (
	// ErrInvalidRadius is returned for non-positive buffer radii.
	ErrInvalidRadius = errors.New("geo: radius must be positive")

	// ErrInvalidLatitude is returned when the longitude scale factor is
	// undefined, at or beyond the poles.
	ErrInvalidLatitude = errors.New("geo: latitude out of range for buffering")
)

// Buffer expands a point into a closed square footprint of the given
// radius in meters. The square is axis-aligned in degree space, with the
// longitude half-width scaled by 1/cos(lat) so both half-widths span
// roughly the same ground distance. Planar approximation, not a geodesic
// buffer.
func Buffer(p Point, radiusMeters float64) (Polygon, error) {
	if radiusMeters <= 0 {
		return Polygon{}, fmt.Errorf("%w: %v", ErrInvalidRadius, radiusMeters)
	}
	if math.Abs(p.Lat) >= 90 {
		return Polygon{}, fmt.Errorf("%w: %v", ErrInvalidLatitude, p.Lat)
	}

	latOff := radiusMeters / metersPerDegree
	lonOff := radiusMeters / (metersPerDegree * math.Cos(p.Lat*math.Pi/180))

	ring := Ring{
		{Lat: p.Lat - latOff, Lon: p.Lon - lonOff},
		{Lat: p.Lat - latOff, Lon: p.Lon + lonOff},
		{Lat: p.Lat + latOff, Lon: p.Lon + lonOff},
		{Lat: p.Lat + latOff, Lon: p.Lon - lonOff},
		{Lat: p.Lat - latOff, Lon: p.Lon - lonOff},
	}

	return Polygon{Ring: ring, Kind: KindBuffered}, nil
}
