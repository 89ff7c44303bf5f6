package merge

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/akosarev/kmlmerge/internal/geo"

	"github.com/twpayne/go-geos"
)

// ringWKT renders a ring as a WKT POLYGON in (lon lat) axis order.
func ringWKT(r geo.Ring) string {
	var b strings.Builder
	b.WriteString("POLYGON ((")
	for i, c := range r {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatFloat(c.Lon, 'f', -1, 64))
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(c.Lat, 'f', -1, 64))
	}
	b.WriteString("))")
	return b.String()
}

// exteriorRings extracts the exterior ring of every polygon in g. Holes
// are dropped: the emitted format carries exterior boundaries only.
func exteriorRings(g *geos.Geom) ([]geo.Ring, error) {
	switch g.TypeID() {
	case geos.TypeIDPolygon:
		ring, err := parsePolygonWKT(g.String())
		if err != nil {
			return nil, err
		}
		return []geo.Ring{ring}, nil
	case geos.TypeIDMultiPolygon, geos.TypeIDGeometryCollection:
		var rings []geo.Ring
		for i := 0; i < g.NumGeometries(); i++ {
			sub, err := exteriorRings(g.Geometry(i))
			if err != nil {
				return nil, err
			}
			rings = append(rings, sub...)
		}
		return rings, nil
	default:
		return nil, fmt.Errorf("%w: unexpected union result type %d", ErrGeometry, g.TypeID())
	}
}

// parsePolygonWKT reads the exterior ring out of a WKT POLYGON,
// converting (lon lat) tuples back to the internal lat,lon order.
func parsePolygonWKT(s string) (geo.Ring, error) {
	i := strings.Index(s, "((")
	if i < 0 {
		return nil, fmt.Errorf("%w: unparseable polygon %q", ErrGeometry, s)
	}
	body := s[i+2:]
	// first ring ends at the first closing paren
	if j := strings.IndexByte(body, ')'); j >= 0 {
		body = body[:j]
	}

	var ring geo.Ring
	for _, tuple := range strings.Split(body, ",") {
		parts := strings.Fields(strings.TrimSpace(tuple))
		if len(parts) < 2 {
			continue
		}
		lon, err1 := strconv.ParseFloat(parts[0], 64)
		lat, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("%w: unparseable polygon %q", ErrGeometry, s)
		}
		ring = append(ring, geo.Coord{Lat: lat, Lon: lon})
	}
	if len(ring) < 4 {
		return nil, fmt.Errorf("%w: degenerate ring in %q", ErrGeometry, s)
	}

	return ring, nil
}
