// Package geo handles geographic data structures and the planar
// metric-to-degree approximations used by the buffer pipeline.
package geo

import "github.com/paulmach/orb"

// Point is a named placemark position in WGS84 degrees.
type Point struct {
	Name        string
	Description string
	Lat         float64
	Lon         float64
}

// Coord is a single ring vertex in WGS84 degrees.
type Coord struct {
	Lat float64
	Lon float64
}

// Ring is an ordered closed polygon boundary: the first coordinate is
// repeated as the last.
type Ring []Coord

// Kind distinguishes freshly buffered footprints from merged regions.
type Kind int

const (
	KindBuffered Kind = iota
	KindMerged
)

// Polygon is a simple polygon described by its exterior ring.
type Polygon struct {
	Ring Ring
	Kind Kind
}

// Closed reports whether the ring has at least 4 coordinates and wraps
// back to its first vertex.
func (r Ring) Closed() bool {
	if len(r) < 4 {
		return false
	}
	return r[0] == r[len(r)-1]
}

// toOrb converts the ring to orb's (lon, lat) axis order.
func (r Ring) toOrb() orb.Ring {
	out := make(orb.Ring, 0, len(r))
	for _, c := range r {
		out = append(out, orb.Point{c.Lon, c.Lat})
	}
	return out
}
