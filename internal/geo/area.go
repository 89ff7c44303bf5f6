package geo

import (
	"math"

	"github.com/paulmach/orb/planar"
)

// EstimateArea returns the approximate real-world area of the polygon in
// km². The planar ring area in squared degrees is scaled by the ground
// length of one degree of latitude and one degree of longitude at avgLat.
// First-order approximation: valid for small mid-latitude footprints
// only, not geodesically exact.
func EstimateArea(poly Polygon, avgLat float64) float64 {
	areaDeg := math.Abs(planar.Area(poly.Ring.toOrb()))
	kmPerDegLat := 111.0
	kmPerDegLon := 111.0 * math.Cos(avgLat*math.Pi/180)
	return areaDeg * kmPerDegLat * kmPerDegLon
}

// TotalArea sums EstimateArea over all polygons.
func TotalArea(polys []Polygon, avgLat float64) float64 {
	var total float64
	for _, p := range polys {
		total += EstimateArea(p, avgLat)
	}
	return total
}

// AverageLatitude returns the mean latitude of the points, or 0 for an
// empty slice.
func AverageLatitude(points []Point) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p.Lat
	}
	return sum / float64(len(points))
}
