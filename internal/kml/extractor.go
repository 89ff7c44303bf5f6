// Package kml reads and writes the KML 2.2 documents the pipeline
// consumes and produces.
package kml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/akosarev/kmlmerge/internal/geo"

	"github.com/rs/zerolog/log"
)

// ErrMalformed is returned when the input cannot be parsed as well-formed
// XML at all. Problems inside individual placemarks never produce it.
var ErrMalformed = errors.New("kml: malformed document")

type pointGeom struct {
	Coordinates string `xml:"coordinates"`
}

type placemark struct {
	Name        string     `xml:"name"`
	Description string     `xml:"description"`
	Point       *pointGeom `xml:"Point"`
}

// Extract returns one Point per placemark that carries a Point geometry.
// Placemarks are matched at any nesting depth (Document, Folder, nested
// Folders). Placemarks without usable coordinates are skipped silently;
// an empty result with a nil error means the document simply had no point
// placemarks.
func Extract(raw []byte) ([]geo.Point, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	points := []geo.Point{}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Placemark" {
			continue
		}

		var pm placemark
		if err := dec.DecodeElement(&pm, &se); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		p, ok := pm.toPoint()
		if !ok {
			log.Debug().Str("name", pm.Name).Msg("Skipping placemark without point coordinates")
			continue
		}
		points = append(points, p)
	}

	return points, nil
}

// toPoint extracts the first "lon,lat[,alt]" tuple; altitude is
// discarded.
func (pm placemark) toPoint() (geo.Point, bool) {
	if pm.Point == nil {
		return geo.Point{}, false
	}

	// coordinates may contain multiple tuples separated by whitespace
	tuples := strings.Fields(pm.Point.Coordinates)
	if len(tuples) == 0 {
		return geo.Point{}, false
	}

	parts := strings.Split(tuples[0], ",")
	if len(parts) < 2 {
		return geo.Point{}, false
	}

	lon, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lat, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return geo.Point{}, false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return geo.Point{}, false
	}

	name := strings.TrimSpace(pm.Name)
	if name == "" {
		name = "Unnamed"
	}

	return geo.Point{
		Name:        name,
		Description: strings.TrimSpace(pm.Description),
		Lat:         lat,
		Lon:         lon,
	}, true
}

type areaPlacemark struct {
	Polygon *struct {
		Coordinates string `xml:"outerBoundaryIs>LinearRing>coordinates"`
	} `xml:"Polygon"`
}

// ExtractRings reads the exterior rings of polygon placemarks, reversing
// the format's lon,lat axis order back to the internal lat,lon
// representation.
func ExtractRings(raw []byte) ([]geo.Ring, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	var rings []geo.Ring

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Placemark" {
			continue
		}

		var pm areaPlacemark
		if err := dec.DecodeElement(&pm, &se); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if pm.Polygon == nil {
			continue
		}

		var ring geo.Ring
		for _, tuple := range strings.Fields(pm.Polygon.Coordinates) {
			parts := strings.Split(tuple, ",")
			if len(parts) < 2 {
				continue
			}
			lon, err1 := strconv.ParseFloat(parts[0], 64)
			lat, err2 := strconv.ParseFloat(parts[1], 64)
			if err1 != nil || err2 != nil {
				continue
			}
			ring = append(ring, geo.Coord{Lat: lat, Lon: lon})
		}
		if len(ring) >= 4 {
			rings = append(rings, ring)
		}
	}

	return rings, nil
}
