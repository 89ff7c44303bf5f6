package geo_test

import (
	"math"
	"testing"

	"github.com/akosarev/kmlmerge/internal/geo"
	"github.com/stretchr/testify/require"
)

// TestBuffer_squareRing verifies the footprint is a closed 5-vertex ring
// whose half-widths match the documented metric-to-degree conversion.
func TestBuffer_squareRing(t *testing.T) {
	p := geo.Point{Name: "mast", Lat: 45.0, Lon: 9.0}

	poly, err := geo.Buffer(p, 40)

	require.NoError(t, err)
	require.Len(t, poly.Ring, 5)
	require.True(t, poly.Ring.Closed())
	require.Equal(t, geo.KindBuffered, poly.Kind)

	wantLatOff := 40.0 / 111000.0
	wantLonOff := 40.0 / (111000.0 * math.Cos(45*math.Pi/180))

	minLat, maxLat := poly.Ring[0].Lat, poly.Ring[0].Lat
	minLon, maxLon := poly.Ring[0].Lon, poly.Ring[0].Lon
	for _, c := range poly.Ring {
		minLat = math.Min(minLat, c.Lat)
		maxLat = math.Max(maxLat, c.Lat)
		minLon = math.Min(minLon, c.Lon)
		maxLon = math.Max(maxLon, c.Lon)
	}

	require.InDelta(t, wantLatOff, (maxLat-minLat)/2, 1e-12)
	require.InDelta(t, wantLonOff, (maxLon-minLon)/2, 1e-12)
	require.InDelta(t, p.Lat, (maxLat+minLat)/2, 1e-12)
	require.InDelta(t, p.Lon, (maxLon+minLon)/2, 1e-12)
}

// TestBuffer_equator verifies that at latitude 0 the longitude half-width
// equals the latitude half-width, since cos(0) == 1.
func TestBuffer_equator(t *testing.T) {
	poly, err := geo.Buffer(geo.Point{Lat: 0, Lon: 0}, 100)

	require.NoError(t, err)
	require.InDelta(t, poly.Ring[2].Lat-poly.Ring[0].Lat, poly.Ring[2].Lon-poly.Ring[0].Lon, 1e-12)
}

// TestBuffer_vertexOrder verifies the documented SW, SE, NE, NW, SW
// vertex order of the ring.
func TestBuffer_vertexOrder(t *testing.T) {
	poly, err := geo.Buffer(geo.Point{Lat: 10, Lon: 20}, 50)

	require.NoError(t, err)
	sw, se, ne, nw := poly.Ring[0], poly.Ring[1], poly.Ring[2], poly.Ring[3]
	require.Less(t, sw.Lat, ne.Lat)
	require.Less(t, sw.Lon, ne.Lon)
	require.Equal(t, sw.Lat, se.Lat)
	require.Equal(t, ne.Lat, nw.Lat)
	require.Equal(t, sw.Lon, nw.Lon)
	require.Equal(t, se.Lon, ne.Lon)
	require.Equal(t, sw, poly.Ring[4])
}

// TestBuffer_invalidRadius verifies that zero and negative radii are
// rejected before any geometry is computed.
func TestBuffer_invalidRadius(t *testing.T) {
	for _, radius := range []float64{0, -5} {
		_, err := geo.Buffer(geo.Point{Lat: 1, Lon: 1}, radius)
		require.ErrorIs(t, err, geo.ErrInvalidRadius)
	}
}

// TestBuffer_poleLatitude verifies that the undefined longitude scale at
// the poles surfaces as an explicit error, not as Inf or NaN.
func TestBuffer_poleLatitude(t *testing.T) {
	for _, lat := range []float64{90, -90, 91} {
		_, err := geo.Buffer(geo.Point{Lat: lat, Lon: 0}, 40)
		require.ErrorIs(t, err, geo.ErrInvalidLatitude)
	}
}
