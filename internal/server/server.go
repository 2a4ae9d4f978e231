// Package server exposes QR decoding over HTTP.
package server

import (
	"context"
	"image"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	qrscan "github.com/ericlevine/qrscan"
	"github.com/ericlevine/qrscan/internal/metrics"
)

// Scanner decodes a symbol from an image with per-request options.
type Scanner interface {
	Options() qrscan.DecodeOptions
	ScanWith(ctx context.Context, img image.Image, opts *qrscan.DecodeOptions) (*qrscan.Result, error)
}

// Config holds server settings.
type Config struct {
	MaxUploadMB    int
	RequestTimeout time.Duration
}

// Server holds the HTTP handlers' dependencies.
type Server struct {
	scanner        Scanner
	maxUploadBytes int64
	requestTimeout time.Duration
	logger         *slog.Logger
	metrics        *metrics.Metrics
	metricsHandler http.Handler
}

// New creates a Server backed by scanner. Request metrics go to
// metrics.Default and /metrics serves the default Prometheus gatherer.
func New(scanner Scanner, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		scanner:        scanner,
		maxUploadBytes: int64(cfg.MaxUploadMB) << 20,
		requestTimeout: cfg.RequestTimeout,
		logger:         logger,
		metrics:        metrics.Default,
		metricsHandler: promhttp.Handler(),
	}
}

// SetupRoutes registers the API endpoints on mux.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.instrument("/health", s.healthHandler))
	mux.HandleFunc("/v1/decode", s.instrument("/v1/decode", s.decodeHandler))
	mux.Handle("/metrics", s.metricsHandler)
}

// Handler returns a mux with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return mux
}
