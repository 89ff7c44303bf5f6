package geo

import "fmt"

// GeoJSONFeatureCollection represents a collection of geographic features.
// It follows the standard GeoJSON structure.
type GeoJSONFeatureCollection struct {
	Type     string           `json:"type"`
	Features []GeoJSONFeature `json:"features"`
}

// GeoJSONFeature represents a single geographic feature with geometry and properties.
type GeoJSONFeature struct {
	Properties map[string]interface{} `json:"properties"`
	Type       string                 `json:"type"`
	Geometry   GeoJSONGeometry        `json:"geometry"`
}

// GeoJSONGeometry represents the geometry of a feature (Point or Polygon).
// Coordinates are in GeoJSON's [Lon, Lat] axis order.
type GeoJSONGeometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

// FeatureCollection converts merged polygons and original points into a
// GeoJSON document. areas may be nil; when present it must be parallel to
// polys and each value is attached as an area_km2 property.
func FeatureCollection(polys []Polygon, points []Point, areas []float64) GeoJSONFeatureCollection {
	fc := GeoJSONFeatureCollection{Type: "FeatureCollection", Features: []GeoJSONFeature{}}

	for _, p := range points {
		fc.Features = append(fc.Features, GeoJSONFeature{
			Type: "Feature",
			Geometry: GeoJSONGeometry{
				Type:        "Point",
				Coordinates: []float64{p.Lon, p.Lat},
			},
			Properties: map[string]interface{}{
				"name":        p.Name,
				"description": p.Description,
			},
		})
	}

	for i, poly := range polys {
		ring := make([][]float64, 0, len(poly.Ring))
		for _, c := range poly.Ring {
			ring = append(ring, []float64{c.Lon, c.Lat})
		}

		props := map[string]interface{}{
			"name": fmt.Sprintf("Area %d", i+1),
		}
		if i < len(areas) {
			props["area_km2"] = areas[i]
		}

		fc.Features = append(fc.Features, GeoJSONFeature{
			Type: "Feature",
			Geometry: GeoJSONGeometry{
				Type:        "Polygon",
				Coordinates: [][][]float64{ring},
			},
			Properties: props,
		})
	}

	return fc
}
