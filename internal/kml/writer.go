package kml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/akosarev/kmlmerge/internal/geo"
)

const namespace = "http://www.opengis.net/kml/2.2"

// markerColor is opaque blue in aabbggrr order, the fixed icon color of
// the original point markers.
const markerColor = "ffff0000"

const markerScale = 0.5

type kmlRoot struct {
	XMLName  xml.Name    `xml:"kml"`
	Xmlns    string      `xml:"xmlns,attr"`
	Document kmlDocument `xml:"Document"`
}

type kmlDocument struct {
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlPlacemark struct {
	Name        string      `xml:"name"`
	Description string      `xml:"description,omitempty"`
	Style       *kmlStyle   `xml:"Style,omitempty"`
	Point       *kmlPoint   `xml:"Point,omitempty"`
	Polygon     *kmlPolygon `xml:"Polygon,omitempty"`
}

type kmlStyle struct {
	IconStyle *kmlIconStyle `xml:"IconStyle,omitempty"`
	LineStyle *kmlLineStyle `xml:"LineStyle,omitempty"`
	PolyStyle *kmlPolyStyle `xml:"PolyStyle,omitempty"`
}

type kmlIconStyle struct {
	Color string  `xml:"color"`
	Scale float64 `xml:"scale"`
}

type kmlLineStyle struct {
	Color string `xml:"color"`
	Width int    `xml:"width"`
}

type kmlPolyStyle struct {
	Color string `xml:"color"`
}

type kmlPoint struct {
	Coordinates string `xml:"coordinates"`
}

type kmlPolygon struct {
	OuterBoundary kmlBoundary `xml:"outerBoundaryIs"`
}

type kmlBoundary struct {
	LinearRing kmlLinearRing `xml:"LinearRing"`
}

type kmlLinearRing struct {
	Coordinates string `xml:"coordinates"`
}

// Write serializes the merged polygons and the original point markers
// into a KML document. Markers come first, one per point, then one
// polygon placemark per merged region named "Area {n}". Ring vertices are
// written in the format's lon,lat axis order regardless of the internal
// lat,lon representation.
func Write(merged []geo.Polygon, points []geo.Point, style Style) ([]byte, error) {
	doc := kmlRoot{Xmlns: namespace}

	for _, p := range points {
		doc.Document.Placemarks = append(doc.Document.Placemarks, kmlPlacemark{
			Name:        "Original: " + p.Name,
			Description: p.Description,
			Style: &kmlStyle{
				IconStyle: &kmlIconStyle{Color: markerColor, Scale: markerScale},
			},
			Point: &kmlPoint{
				Coordinates: formatCoord(geo.Coord{Lat: p.Lat, Lon: p.Lon}),
			},
		})
	}

	alpha := uint8(math.Round(clamp01(style.FillOpacity) * 255))
	for i, poly := range merged {
		doc.Document.Placemarks = append(doc.Document.Placemarks, kmlPlacemark{
			Name: fmt.Sprintf("Area %d", i+1),
			Style: &kmlStyle{
				LineStyle: &kmlLineStyle{
					Color: abgr(255, style.StrokeColor),
					Width: style.StrokeWidth,
				},
				PolyStyle: &kmlPolyStyle{
					Color: abgr(alpha, style.FillColor),
				},
			},
			Polygon: &kmlPolygon{
				OuterBoundary: kmlBoundary{
					LinearRing: kmlLinearRing{Coordinates: formatRing(poly.Ring)},
				},
			},
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')

	return buf.Bytes(), nil
}

func formatCoord(c geo.Coord) string {
	return strconv.FormatFloat(c.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lat, 'f', -1, 64)
}

func formatRing(r geo.Ring) string {
	tuples := make([]string, 0, len(r))
	for _, c := range r {
		tuples = append(tuples, formatCoord(c))
	}
	return strings.Join(tuples, " ")
}
