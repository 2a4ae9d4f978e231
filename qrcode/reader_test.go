package qrcode

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qrscan "github.com/ericlevine/qrscan"
	"github.com/ericlevine/qrscan/bitutil"
	"github.com/ericlevine/qrscan/internal/qrtest"
)

func decodeMatrix(t *testing.T, m *bitutil.BitMatrix, opts *qrscan.DecodeOptions) (*qrscan.Result, error) {
	t.Helper()
	return NewReader().Decode(qrscan.NewBinaryBitmapFromMatrix(m), opts)
}

func TestReaderRoundTrip(t *testing.T) {
	tests := []struct {
		content    string
		level      qrtest.Level
		moduleSize int
	}{
		{"1234567890", qrtest.LevelM, 2},
		{"HELLO WORLD", qrtest.LevelL, 3},
		{"Hello, World! This is a test.", qrtest.LevelQ, 4},
		{"TEST123", qrtest.LevelH, 5},
		{"https://example.org/a/rather/long/path/that/pushes/the/symbol/to/a/larger/version?with=query&and=more", qrtest.LevelM, 3},
	}
	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			symbol, version := qrtest.Symbol(t, tt.content, tt.level)
			result, err := decodeMatrix(t, qrtest.Render(symbol, tt.moduleSize, 4), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.content, result.Text)
			assert.Equal(t, qrscan.FormatQRCode, result.Format)
			assert.Equal(t, version, result.Metadata[qrscan.MetadataVersion])
			assert.Equal(t, "]Q1", result.Metadata[qrscan.MetadataSymbologyIdentifier])
			assert.Equal(t, 0, result.Metadata[qrscan.MetadataErrorsCorrected])
			assert.GreaterOrEqual(t, len(result.Points), 3)
		})
	}
}

func TestReaderAllECLevels(t *testing.T) {
	levels := []struct {
		level qrtest.Level
		name  string
	}{
		{qrtest.LevelL, "L"}, {qrtest.LevelM, "M"}, {qrtest.LevelQ, "Q"}, {qrtest.LevelH, "H"},
	}
	for _, l := range levels {
		t.Run(l.name, func(t *testing.T) {
			symbol, _ := qrtest.Symbol(t, "Testing all EC levels", l.level)
			result, err := decodeMatrix(t, qrtest.Render(symbol, 3, 4), nil)
			require.NoError(t, err)
			assert.Equal(t, "Testing all EC levels", result.Text)
			assert.Equal(t, l.name, result.Metadata[qrscan.MetadataErrorCorrectionLevel])
		})
	}
}

func TestReaderRotated(t *testing.T) {
	symbol, _ := qrtest.Symbol(t, "ROTATED SYMBOL", qrtest.LevelM)
	image := qrtest.Render(symbol, 5, 6)
	for _, degrees := range []float64{90, 180, 270, 10, -7} {
		t.Run(fmt.Sprint(degrees), func(t *testing.T) {
			result, err := decodeMatrix(t, qrtest.Rotate(image, degrees), nil)
			require.NoError(t, err)
			assert.Equal(t, "ROTATED SYMBOL", result.Text)
		})
	}
}

func TestReaderPureBarcode(t *testing.T) {
	symbol, version := qrtest.Symbol(t, "PURE", qrtest.LevelQ)
	for _, moduleSize := range []int{1, 3, 4} {
		result, err := decodeMatrix(t, qrtest.Render(symbol, moduleSize, 2), &qrscan.DecodeOptions{PureBarcode: true})
		require.NoError(t, err, "module size %d", moduleSize)
		assert.Equal(t, "PURE", result.Text)
		assert.Equal(t, version, result.Metadata[qrscan.MetadataVersion])
		assert.Empty(t, result.Points)
	}

	_, err := decodeMatrix(t, bitutil.NewBitMatrix(50), &qrscan.DecodeOptions{PureBarcode: true})
	assert.ErrorIs(t, err, qrscan.ErrNotFound)
}

func TestReaderMirrored(t *testing.T) {
	symbol, _ := qrtest.Symbol(t, "MIRRORED", qrtest.LevelL)
	symbol.Transpose()
	image := qrtest.Render(symbol, 4, 4)

	_, err := decodeMatrix(t, image, nil)
	require.Error(t, err)

	result, err := decodeMatrix(t, image, &qrscan.DecodeOptions{AlsoMirrored: true})
	require.NoError(t, err)
	assert.Equal(t, "MIRRORED", result.Text)
	assert.Equal(t, true, result.Metadata[qrscan.MetadataMirrored])
}

func TestReaderStructuredAppendMetadata(t *testing.T) {
	symbol, _ := qrtest.Symbol(t, "NOT PART OF A SEQUENCE", qrtest.LevelM)
	result, err := decodeMatrix(t, qrtest.Render(symbol, 3, 4), nil)
	require.NoError(t, err)
	assert.NotContains(t, result.Metadata, qrscan.MetadataStructuredAppendSequence)
	assert.NotContains(t, result.Metadata, qrscan.MetadataMirrored)
}

func TestReaderBlankImage(t *testing.T) {
	_, err := decodeMatrix(t, bitutil.NewBitMatrix(120), nil)
	assert.ErrorIs(t, err, qrscan.ErrNotFound)
}

func TestDispatcher(t *testing.T) {
	symbol, _ := qrtest.Symbol(t, "DISPATCH", qrtest.LevelM)
	image := qrtest.Render(symbol, 3, 4)

	result, err := qrscan.Decode(qrscan.NewBinaryBitmapFromMatrix(image), nil)
	require.NoError(t, err)
	assert.Equal(t, "DISPATCH", result.Text)

	result, err = qrscan.Decode(qrscan.NewBinaryBitmapFromMatrix(image),
		&qrscan.DecodeOptions{PossibleFormats: []qrscan.Format{qrscan.FormatQRCode}})
	require.NoError(t, err)
	assert.Equal(t, "DISPATCH", result.Text)

	_, err = qrscan.Decode(qrscan.NewBinaryBitmapFromMatrix(image),
		&qrscan.DecodeOptions{PossibleFormats: []qrscan.Format{qrscan.Format(99)}})
	assert.ErrorIs(t, err, qrscan.ErrNotFound)
}

func TestDispatcherInverted(t *testing.T) {
	symbol, _ := qrtest.Symbol(t, "INVERTED", qrtest.LevelM)
	image := qrtest.Render(symbol, 3, 4)
	image.FlipAll()

	_, err := qrscan.Decode(qrscan.NewBinaryBitmapFromMatrix(image), nil)
	require.Error(t, err)

	result, err := qrscan.Decode(qrscan.NewBinaryBitmapFromMatrix(image), &qrscan.DecodeOptions{AlsoInverted: true})
	require.NoError(t, err)
	assert.Equal(t, "INVERTED", result.Text)
}
