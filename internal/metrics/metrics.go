// Package metrics exposes Prometheus collectors for decode activity.
package metrics

import (
	"context"
	"errors"
	"strconv"
	"time"

	qrscan "github.com/ericlevine/qrscan"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Decode outcomes used as the outcome label.
const (
	OutcomeSuccess  = "success"
	OutcomeNotFound = "not_found"
	OutcomeFormat   = "format"
	OutcomeChecksum = "checksum"
	OutcomeTimeout  = "timeout"
	OutcomeError    = "error"
)

// Metrics groups the decode collectors registered on one registry.
type Metrics struct {
	decodesTotal   *prometheus.CounterVec
	decodeDuration prometheus.Histogram
	symbolVersion  prometheus.Histogram

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Default is registered on the process-wide Prometheus registry.
var Default = New(prometheus.DefaultRegisterer)

// New creates and registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		decodesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qrscan_decodes_total",
				Help: "Total number of decode attempts by outcome",
			},
			[]string{"outcome"},
		),
		decodeDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "qrscan_decode_duration_seconds",
				Help:    "Decode duration in seconds",
				Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
		),
		symbolVersion: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "qrscan_symbol_version",
				Help:    "Version of successfully decoded symbols",
				Buckets: prometheus.LinearBuckets(1, 3, 14),
			},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qrscan_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "qrscan_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
	}
}

// Observe records one decode attempt that took elapsed and ended with
// result or err.
func (m *Metrics) Observe(result *qrscan.Result, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.decodesTotal.WithLabelValues(Outcome(err)).Inc()
	m.decodeDuration.Observe(elapsed.Seconds())
	if err != nil || result == nil {
		return
	}
	if v, ok := result.Metadata[qrscan.MetadataVersion].(int); ok {
		m.symbolVersion.Observe(float64(v))
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, endpoint string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}

// Outcome maps a decode error to its outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return OutcomeTimeout
	case errors.Is(err, qrscan.ErrChecksum):
		return OutcomeChecksum
	case errors.Is(err, qrscan.ErrFormat):
		return OutcomeFormat
	case errors.Is(err, qrscan.ErrNotFound):
		return OutcomeNotFound
	}
	return OutcomeError
}
