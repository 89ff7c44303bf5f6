package server_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akosarev/kmlmerge/internal/config"
	"github.com/akosarev/kmlmerge/internal/kml"
	"github.com/akosarev/kmlmerge/internal/server"
	"github.com/stretchr/testify/require"
)

const uploadKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2"><Document>
  <Placemark><name>A</name><Point><coordinates>0,0</coordinates></Point></Placemark>
  <Placemark><name>B</name><Point><coordinates>0,0.00009</coordinates></Point></Placemark>
</Document></kml>`

func uploadRequest(t *testing.T, target, body string, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "points.kml")
	require.NoError(t, err)
	_, err = fw.Write([]byte(body))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// TestHandleHealth verifies the liveness endpoint.
func TestHandleHealth(t *testing.T) {
	s := server.NewServerContext(config.Default())
	rec := httptest.NewRecorder()

	s.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

// TestHandleProcess verifies the end-to-end upload path: two overlapping
// points merge into one area placemark and both markers survive.
func TestHandleProcess(t *testing.T) {
	s := server.NewServerContext(config.Default())
	rec := httptest.NewRecorder()

	s.HandleProcess(rec, uploadRequest(t, "/api/process", uploadKML, map[string]string{"radius": "40"}))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/vnd.google-earth.kml+xml", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "merged.kml")

	markers, err := kml.Extract(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, markers, 2)

	rings, err := kml.ExtractRings(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, rings, 1)
}

// TestHandleProcess_geojson verifies the alternate output format.
func TestHandleProcess_geojson(t *testing.T) {
	s := server.NewServerContext(config.Default())
	rec := httptest.NewRecorder()

	s.HandleProcess(rec, uploadRequest(t, "/api/process", uploadKML, map[string]string{
		"radius": "40",
		"format": "geojson",
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	require.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 3) // 2 points + 1 merged polygon
}

// TestHandleProcess_missingFile verifies a request without an upload is a
// client error.
func TestHandleProcess_missingFile(t *testing.T) {
	s := server.NewServerContext(config.Default())
	rec := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodPost, "/api/process", nil)
	s.HandleProcess(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestHandleProcess_radiusOutOfBounds verifies the configuration bound is
// enforced before processing.
func TestHandleProcess_radiusOutOfBounds(t *testing.T) {
	s := server.NewServerContext(config.Default())
	rec := httptest.NewRecorder()

	s.HandleProcess(rec, uploadRequest(t, "/api/process", uploadKML, map[string]string{"radius": "500"}))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "radius")
}

// TestHandleProcess_noPlacemarks verifies an empty document is reported
// as unprocessable, not served.
func TestHandleProcess_noPlacemarks(t *testing.T) {
	s := server.NewServerContext(config.Default())
	rec := httptest.NewRecorder()

	s.HandleProcess(rec, uploadRequest(t, "/api/process", `<kml><Document/></kml>`, nil))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// TestHandleStats verifies the JSON statistics surface.
func TestHandleStats(t *testing.T) {
	s := server.NewServerContext(config.Default())
	rec := httptest.NewRecorder()

	s.HandleStats(rec, uploadRequest(t, "/api/stats", uploadKML, map[string]string{"radius": "40"}))

	require.Equal(t, http.StatusOK, rec.Code)

	var stats struct {
		Points   int       `json:"points"`
		Merged   int       `json:"merged"`
		Fallback bool      `json:"merge_fallback"`
		AreasKm2 []float64 `json:"areas_km2"`
		TotalKm2 float64   `json:"total_km2"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Equal(t, 2, stats.Points)
	require.Equal(t, 1, stats.Merged)
	require.False(t, stats.Fallback)
	require.Len(t, stats.AreasKm2, 1)
	require.Positive(t, stats.TotalKm2)
}

// TestHandleProcess_methodNotAllowed verifies GET is rejected.
func TestHandleProcess_methodNotAllowed(t *testing.T) {
	s := server.NewServerContext(config.Default())
	rec := httptest.NewRecorder()

	s.HandleProcess(rec, httptest.NewRequest(http.MethodGet, "/api/process", nil))

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
