package kml

import (
	"github.com/akosarev/kmlmerge/internal/geo"

	"github.com/tdewolff/minify/v2"
	mxml "github.com/tdewolff/minify/v2/xml"
)

// WriteMinified is Write followed by XML minification, for compact
// transfer of large merge results. The minified document parses back to
// the same placemarks.
func WriteMinified(merged []geo.Polygon, points []geo.Point, style Style) ([]byte, error) {
	raw, err := Write(merged, points, style)
	if err != nil {
		return nil, err
	}

	m := minify.New()
	m.AddFunc("text/xml", mxml.Minify)

	return m.Bytes("text/xml", raw)
}
