package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	qrscan "github.com/ericlevine/qrscan"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeSuccess},
		{qrscan.ErrNotFound, OutcomeNotFound},
		{fmt.Errorf("finder: %w", qrscan.ErrNotFound), OutcomeNotFound},
		{qrscan.ErrFormat, OutcomeFormat},
		{qrscan.ErrChecksum, OutcomeChecksum},
		{context.DeadlineExceeded, OutcomeTimeout},
		{fmt.Errorf("scan: %w", context.Canceled), OutcomeTimeout},
		{errors.New("boom"), OutcomeError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Outcome(tt.err), "%v", tt.err)
	}
}

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	result := qrscan.NewResult("hi", nil, nil, qrscan.FormatQRCode)
	result.PutMetadata(qrscan.MetadataVersion, 7)
	m.Observe(result, nil, 5*time.Millisecond)
	m.Observe(nil, qrscan.ErrNotFound, time.Millisecond)
	m.Observe(nil, qrscan.ErrNotFound, time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	var durations, versions uint64
	var versionSum float64
	for _, mf := range families {
		switch mf.GetName() {
		case "qrscan_decodes_total":
			for _, metric := range mf.GetMetric() {
				for _, label := range metric.GetLabel() {
					if label.GetName() == "outcome" {
						counts[label.GetValue()] = metric.GetCounter().GetValue()
					}
				}
			}
		case "qrscan_decode_duration_seconds":
			durations = mf.GetMetric()[0].GetHistogram().GetSampleCount()
		case "qrscan_symbol_version":
			versions = mf.GetMetric()[0].GetHistogram().GetSampleCount()
			versionSum = mf.GetMetric()[0].GetHistogram().GetSampleSum()
		}
	}
	assert.Equal(t, map[string]float64{OutcomeSuccess: 1, OutcomeNotFound: 2}, counts)
	assert.Equal(t, uint64(3), durations)
	assert.Equal(t, uint64(1), versions)
	assert.Equal(t, 7.0, versionSum)
}

func TestObserveNil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.Observe(nil, qrscan.ErrFormat, time.Second) })
}

func TestObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveRequest("POST", "/v1/decode", 404, time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)
	var found bool
	for _, mf := range families {
		if mf.GetName() != "qrscan_http_requests_total" {
			continue
		}
		found = true
		labels := map[string]string{}
		for _, label := range mf.GetMetric()[0].GetLabel() {
			labels[label.GetName()] = label.GetValue()
		}
		assert.Equal(t, map[string]string{"method": "POST", "endpoint": "/v1/decode", "status": "404"}, labels)
		assert.Equal(t, 1.0, mf.GetMetric()[0].GetCounter().GetValue())
	}
	assert.True(t, found)
}
