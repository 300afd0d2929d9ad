package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"time"

	_ "golang.org/x/image/bmp"

	"github.com/MeKo-Tech/mtm/internal/matching"
)

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// ErrorResponse is the body of any failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding health response: %v\n", err)
	}
}

// matchHandler runs template matching on an uploaded image. The multipart
// form carries one "image" file, one or more "template" files and optional
// "label" values parallel to the templates. Matching parameters come as form
// values and fall back to the server's configured defaults.
func (s *Server) matchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	maxBytes := int64(s.cfg.MaxUploadMB) * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		s.writeError(w, "Failed to parse form data", http.StatusBadRequest)
		return
	}

	img, err := s.formImage(r)
	if err != nil {
		s.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	templates, err := s.formTemplates(r)
	if err != nil {
		s.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	opts, err := s.formOptions(r)
	if err != nil {
		s.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	matchTemplatesPerRequest.Observe(float64(len(templates)))

	start := time.Now()
	dets, err := matching.MatchTemplates(img, templates, opts)
	matchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		matchRequestsTotal.WithLabelValues("error").Inc()
		s.writeError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	matchRequestsTotal.WithLabelValues("success").Inc()
	matchDetections.Observe(float64(len(dets)))

	b := img.Bounds()
	payload, err := matching.DetectionsToJSON(dets, b.Dx(), b.Dy())
	if err != nil {
		s.writeError(w, "Failed to encode result", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(payload); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing match response: %v\n", err)
	}
}

// formImage decodes the uploaded search image.
func (s *Server) formImage(r *http.Request) (image.Image, error) {
	file, _, err := r.FormFile("image")
	if err != nil {
		return nil, errors.New("no image file provided")
	}
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, errors.New("invalid image format")
	}
	return img, nil
}

// formTemplates decodes every uploaded template in form order.
func (s *Server) formTemplates(r *http.Request) ([]image.Image, error) {
	if r.MultipartForm == nil {
		return nil, errors.New("no template files provided")
	}
	files := r.MultipartForm.File["template"]
	if len(files) == 0 {
		return nil, errors.New("no template files provided")
	}

	templates := make([]image.Image, 0, len(files))
	for i, fh := range files {
		tmpl, err := decodeTemplate(fh)
		if err != nil {
			return nil, fmt.Errorf("invalid template at index %d: %w", i, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}

func decodeTemplate(fh *multipart.FileHeader) (image.Image, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	img, _, err := image.Decode(f)
	return img, err
}

// formOptions assembles matching options from form values, falling back to
// the configured defaults.
func (s *Server) formOptions(r *http.Request) (matching.Options, error) {
	opts := matching.Options{
		ScoreThreshold:    s.matching.ScoreThreshold,
		MaxOverlap:        s.matching.MaxOverlap,
		Count:             objectCount(s.matching.Objects),
		DownscalingFactor: s.matching.DownscalingFactor,
	}

	if v := r.FormValue("score_threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, fmt.Errorf("invalid score_threshold: %q", v)
		}
		opts.ScoreThreshold = f
	}
	if v := r.FormValue("max_overlap"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, fmt.Errorf("invalid max_overlap: %q", v)
		}
		opts.MaxOverlap = f
	}
	if v := r.FormValue("objects"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("invalid objects: %q", v)
		}
		opts.Count = objectCount(n)
	}
	if v := r.FormValue("downscaling_factor"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("invalid downscaling_factor: %q", v)
		}
		opts.DownscalingFactor = n
	}
	if v := r.FormValue("search_box"); v != "" {
		region, err := parseSearchBox(v)
		if err != nil {
			return opts, err
		}
		opts.SearchRegion = region
	}
	if labels := r.MultipartForm.Value["label"]; len(labels) > 0 {
		opts.Labels = labels
	}
	return opts, nil
}

// objectCount maps the wire/config representation (0 = unbounded) to the
// matching package's tagged count.
func objectCount(n int) matching.ObjectCount {
	if n == 0 {
		return matching.Unbounded()
	}
	return matching.Exactly(n)
}

// parseSearchBox parses "x,y,width,height".
func parseSearchBox(v string) (*matching.SearchRegion, error) {
	var x, y, width, height int
	if _, err := fmt.Sscanf(v, "%d,%d,%d,%d", &x, &y, &width, &height); err != nil {
		return nil, fmt.Errorf("invalid search_box %q, want x,y,width,height", v)
	}
	return &matching.SearchRegion{X: x, Y: y, Width: width, Height: height}, nil
}

func (s *Server) writeError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding error response: %v\n", err)
	}
}
