// Package scan runs the QR pipeline over decoded images with a size ceiling,
// a deadline, binarizer fallbacks, logging and metrics.
package scan

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"slices"
	"strings"
	"time"

	qrscan "github.com/ericlevine/qrscan"
	"github.com/ericlevine/qrscan/binarizer"
	"github.com/ericlevine/qrscan/internal/config"
	"github.com/ericlevine/qrscan/internal/imageio"
	"github.com/ericlevine/qrscan/internal/metrics"
	_ "github.com/ericlevine/qrscan/qrcode"
)

// Scanner decodes QR codes from images. It is safe for concurrent use.
type Scanner struct {
	opts         qrscan.DecodeOptions
	binarizers   []string
	maxDimension int
	timeout      time.Duration
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

// Option customizes a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) { s.logger = logger }
}

// WithMetrics sets the collectors; the default is metrics.Default. A nil
// value disables metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scanner) { s.metrics = m }
}

// New creates a Scanner from the decode configuration.
func New(cfg config.DecodeConfig, options ...Option) (*Scanner, error) {
	names := cfg.Binarizers
	if len(names) == 0 {
		names = config.DefaultConfig().Decode.Binarizers
	}
	binarizers := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(name)
		if !slices.Contains(binarizer.Names(), name) {
			return nil, fmt.Errorf("unknown binarizer %q (known: %s)", name, strings.Join(binarizer.Names(), ", "))
		}
		binarizers = append(binarizers, name)
	}

	s := &Scanner{
		opts:         *cfg.DecodeOptions(),
		binarizers:   binarizers,
		maxDimension: cfg.MaxDimension,
		timeout:      cfg.Timeout,
		logger:       slog.Default(),
		metrics:      metrics.Default,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Options returns a copy of the scanner's decode options, for callers that
// override some of them per request with ScanWith.
func (s *Scanner) Options() qrscan.DecodeOptions {
	opts := s.opts
	opts.PossibleFormats = slices.Clone(s.opts.PossibleFormats)
	return opts
}

// Scan decodes a QR code in img with the configured options.
func (s *Scanner) Scan(ctx context.Context, img image.Image) (*qrscan.Result, error) {
	opts := s.Options()
	return s.ScanWith(ctx, img, &opts)
}

// ScanWith decodes a QR code in img with opts. Each configured binarizer is
// tried in order; when all fail the error from the most advanced pipeline
// stage is returned. If ctx ends first, an error wrapping ctx.Err() is
// returned and the abandoned attempt finishes in the background.
func (s *Scanner) ScanWith(ctx context.Context, img image.Image, opts *qrscan.DecodeOptions) (*qrscan.Result, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	type outcome struct {
		result *qrscan.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := s.decode(ctx, img, opts)
		done <- outcome{result, err}
	}()

	var result *qrscan.Result
	var err error
	select {
	case o := <-done:
		result, err = o.result, o.err
	case <-ctx.Done():
		err = fmt.Errorf("scan: %w", ctx.Err())
	}
	elapsed := time.Since(start)

	s.metrics.Observe(result, err, elapsed)
	if err != nil {
		s.logger.Debug("no QR code decoded", "error", err, "outcome", metrics.Outcome(err), "elapsed", elapsed)
		return nil, err
	}
	s.logResult(result, elapsed)
	return result, nil
}

func (s *Scanner) decode(ctx context.Context, img image.Image, opts *qrscan.DecodeOptions) (*qrscan.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	bounds := img.Bounds()
	img = imageio.Fit(img, s.maxDimension)
	if fitted := img.Bounds(); fitted != bounds {
		s.logger.Debug("downscaled image", "from", bounds.Size(), "to", fitted.Size())
	}
	source := qrscan.NewImageLuminanceSource(img)

	var last error
	for _, name := range s.binarizers {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		b, err := binarizer.New(name, source)
		if err != nil {
			return nil, err
		}
		result, err := tryDecode(qrscan.NewBinaryBitmap(b), opts)
		if err == nil {
			s.logger.Debug("binarizer succeeded", "binarizer", name)
			return result, nil
		}
		s.logger.Debug("binarizer failed", "binarizer", name, "error", err)
		last = qrscan.MoreSevere(last, err)
	}
	return nil, last
}

// tryDecode calls qrscan.Decode but converts a panic on malformed input into
// an error.
func tryDecode(bitmap *qrscan.BinaryBitmap, opts *qrscan.DecodeOptions) (result *qrscan.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("decoder panic: %v", r)
		}
	}()
	return qrscan.Decode(bitmap, opts)
}

func (s *Scanner) logResult(result *qrscan.Result, elapsed time.Duration) {
	version, _ := result.Metadata[qrscan.MetadataVersion].(int)
	if version > 1 && len(result.Points) == 3 {
		s.logger.Debug("decoded without alignment pattern", "version", version)
	}
	s.logger.Info("decoded QR code",
		"version", version,
		"ec_level", result.Metadata[qrscan.MetadataErrorCorrectionLevel],
		"errors_corrected", result.Metadata[qrscan.MetadataErrorsCorrected],
		"bytes", len(result.RawBytes),
		"elapsed", elapsed,
	)
}
