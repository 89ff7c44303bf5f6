package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/akosarev/kmlmerge/internal/config"
	"github.com/akosarev/kmlmerge/internal/geo"
	"github.com/akosarev/kmlmerge/internal/kml"
	"github.com/akosarev/kmlmerge/internal/pipeline"

	"github.com/rs/zerolog/log"
)

const maxUploadBytes = 16 << 20

// HandleHealth reports liveness.
func (s *ServerContext) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
}

// HandleProcess runs the pipeline on an uploaded KML and returns the
// merged document as an attachment. Form values radius, color, opacity,
// points and minify override the server defaults for this request.
func (s *ServerContext) HandleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	raw, err := readUpload(r)
	if err != nil {
		http.Error(w, "missing or unreadable file upload", http.StatusBadRequest)
		return
	}

	cfg, err := s.requestConfig(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := pipeline.Run(raw, cfg.Radius)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	if len(res.Points) == 0 {
		http.Error(w, "no point placemarks found", http.StatusUnprocessableEntity)
		return
	}

	style, err := cfg.Style()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	points := res.Points
	if !cfg.IncludePoints {
		points = nil
	}

	var out []byte
	contentType := "application/vnd.google-earth.kml+xml"
	filename := "merged.kml"

	switch r.FormValue("format") {
	case "", "kml":
		if r.FormValue("minify") == "true" {
			out, err = kml.WriteMinified(res.Merged, points, style)
		} else {
			out, err = kml.Write(res.Merged, points, style)
		}
	case "geojson":
		contentType = "application/geo+json"
		filename = "merged.geojson"
		out, err = json.Marshal(geo.FeatureCollection(res.Merged, points, res.Areas))
	default:
		http.Error(w, fmt.Sprintf("unknown format %q", r.FormValue("format")), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "failed to serialize output", http.StatusInternalServerError)
		return
	}

	s.serveDocument(w, r, out, contentType, filename)
}

// HandleStats runs the pipeline and returns summary statistics instead of
// the document.
func (s *ServerContext) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	raw, err := readUpload(r)
	if err != nil {
		http.Error(w, "missing or unreadable file upload", http.StatusBadRequest)
		return
	}

	cfg, err := s.requestConfig(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := pipeline.Run(raw, cfg.Radius)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	var total float64
	for _, a := range res.Areas {
		total += a
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(statsResponse{
		Points:   len(res.Points),
		Merged:   len(res.Merged),
		Fallback: res.MergeFellBack,
		AreasKm2: res.Areas,
		TotalKm2: total,
	})
}

// statsResponse is the JSON summary for a processed document.
type statsResponse struct {
	Points   int       `json:"points"`
	Merged   int       `json:"merged"`
	Fallback bool      `json:"merge_fallback"`
	AreasKm2 []float64 `json:"areas_km2"`
	TotalKm2 float64   `json:"total_km2"`
}

// readUpload pulls the uploaded KML out of the multipart form. It must
// run before any FormValue lookup so the multipart body is parsed.
func readUpload(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, err
	}

	f, _, err := r.FormFile("file")
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return io.ReadAll(f)
}

// requestConfig merges form overrides into the server defaults and
// validates the result.
func (s *ServerContext) requestConfig(r *http.Request) (config.Config, error) {
	cfg := s.Defaults

	if v := r.FormValue("radius"); v != "" {
		radius, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid radius %q", v)
		}
		cfg.Radius = radius
	}
	if v := r.FormValue("color"); v != "" {
		cfg.Color = v
	}
	if v := r.FormValue("opacity"); v != "" {
		opacity, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid opacity %q", v)
		}
		cfg.Opacity = opacity
	}
	if v := r.FormValue("points"); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid points flag %q", v)
		}
		cfg.IncludePoints = include
	}

	return cfg, cfg.Validate()
}

// serveDocument stages the output in a temp file and streams it back as
// an attachment. The file is removed on every exit path.
func (s *ServerContext) serveDocument(w http.ResponseWriter, r *http.Request, out []byte, contentType, filename string) {
	tmp, err := os.CreateTemp("", "kmlmerge-*.out")
	if err != nil {
		http.Error(w, "failed to stage output", http.StatusInternalServerError)
		return
	}
	path := tmp.Name()
	defer func() {
		if err := os.Remove(path); err != nil {
			log.Error().Err(err).Str("path", path).Msg("Failed to remove staged output")
		}
	}()

	if _, err := tmp.Write(out); err != nil {
		_ = tmp.Close()
		http.Error(w, "failed to stage output", http.StatusInternalServerError)
		return
	}
	if err := tmp.Close(); err != nil {
		http.Error(w, "failed to stage output", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeFile(w, r, path)
}

// statusFor maps pipeline errors to HTTP statuses: client-input problems
// are 400s, everything else is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, kml.ErrMalformed),
		errors.Is(err, geo.ErrInvalidRadius),
		errors.Is(err, geo.ErrInvalidLatitude):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
