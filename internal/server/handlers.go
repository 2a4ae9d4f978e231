package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"mime"
	"net/http"
	"strconv"
	"time"

	qrscan "github.com/ericlevine/qrscan"
	"github.com/ericlevine/qrscan/internal/imageio"
	"github.com/ericlevine/qrscan/internal/scan"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// decodeHandler accepts an image as the raw request body or as the multipart
// field "image" and responds with a scan.Report.
func (s *Server) decodeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	opts, err := s.requestOptions(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	img, err := s.readImage(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "too_large", err.Error())
			return
		}
		s.writeError(w, http.StatusBadRequest, "invalid_image", err.Error())
		return
	}

	ctx := r.Context()
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	result, err := s.scanner.ScanWith(ctx, img, opts)
	if err != nil {
		status, code := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("decode failed", "error", err)
		}
		s.writeError(w, status, code, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, scan.NewReport("", result))
}

// requestOptions applies the try_harder, pure, inverted and mirrored query
// parameters over the scanner defaults.
func (s *Server) requestOptions(r *http.Request) (*qrscan.DecodeOptions, error) {
	opts := s.scanner.Options()
	query := r.URL.Query()
	flags := []struct {
		name string
		dst  *bool
	}{
		{"try_harder", &opts.TryHarder},
		{"pure", &opts.PureBarcode},
		{"inverted", &opts.AlsoInverted},
		{"mirrored", &opts.AlsoMirrored},
	}
	for _, f := range flags {
		value := query.Get(f.name)
		if value == "" {
			continue
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("query parameter %s: %q is not a boolean", f.name, value)
		}
		*f.dst = b
	}
	return &opts, nil
}

func (s *Server) readImage(r *http.Request) (image.Image, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return imageio.Read(r.Body)
	}

	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		return nil, err
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		return nil, fmt.Errorf("multipart field image: %w", err)
	}
	defer func() { _ = file.Close() }()
	return imageio.Read(file)
}

// statusFor maps a scan error to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "canceled"
	case errors.Is(err, qrscan.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, qrscan.ErrChecksum):
		return http.StatusUnprocessableEntity, "checksum"
	case errors.Is(err, qrscan.ErrFormat):
		return http.StatusUnprocessableEntity, "format"
	}
	return http.StatusInternalServerError, "internal"
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}
