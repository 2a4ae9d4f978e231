package qrscan_test

import (
	"image"
	"testing"

	qrscan "github.com/ericlevine/qrscan"
	"github.com/ericlevine/qrscan/binarizer"
	"github.com/ericlevine/qrscan/internal/qrtest"

	// Import the QR package to trigger init() registration.
	_ "github.com/ericlevine/qrscan/qrcode"
)

func renderImage(t testing.TB, content string, level qrtest.Level, moduleSize int) *image.Gray {
	t.Helper()
	symbol, _ := qrtest.Symbol(t, content, level)
	return qrtest.Image(qrtest.Render(symbol, moduleSize, 4))
}

func decodeImage(t *testing.T, img image.Image, opts *qrscan.DecodeOptions) string {
	t.Helper()

	source := qrscan.NewImageLuminanceSource(img)
	bitmap := qrscan.NewBinaryBitmap(binarizer.NewGlobalHistogram(source))
	result, err := qrscan.Decode(bitmap, opts)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if result.Format != qrscan.FormatQRCode {
		t.Errorf("format: got %s, want %s", result.Format, qrscan.FormatQRCode)
	}
	return result.Text
}

func TestRoundTripPure(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"text", "Hello, World!"},
		{"numeric", "1234567890"},
		{"alphanumeric", "HELLO WORLD $%*+-./:"},
		{"utf8", "日本語のテキスト"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			img := renderImage(t, tc.content, qrtest.LevelM, 3)
			opts := &qrscan.DecodeOptions{
				PossibleFormats: []qrscan.Format{qrscan.FormatQRCode},
				PureBarcode:     true,
			}
			if got := decodeImage(t, img, opts); got != tc.content {
				t.Errorf("round-trip: got %q, want %q", got, tc.content)
			}
		})
	}
}

func TestRoundTripDetected(t *testing.T) {
	content := "https://example.com/?q=detected+through+the+finder"
	for _, ms := range []int{2, 4, 7} {
		img := renderImage(t, content, qrtest.LevelQ, ms)
		if got := decodeImage(t, img, &qrscan.DecodeOptions{TryHarder: true}); got != content {
			t.Errorf("module size %d: got %q, want %q", ms, got, content)
		}
	}
}

func TestImageLuminanceSource(t *testing.T) {
	img := renderImage(t, "test", qrtest.LevelL, 2)
	source := qrscan.NewGrayImageLuminanceSource(img)

	if source.Width() != img.Bounds().Dx() {
		t.Errorf("width: got %d, want %d", source.Width(), img.Bounds().Dx())
	}
	if source.Height() != img.Bounds().Dy() {
		t.Errorf("height: got %d, want %d", source.Height(), img.Bounds().Dy())
	}

	lum := source.Matrix()
	if len(lum) != source.Width()*source.Height() {
		t.Errorf("matrix length: got %d, want %d", len(lum), source.Width()*source.Height())
	}

	row := source.Row(0, nil)
	if len(row) != source.Width() {
		t.Errorf("row length: got %d, want %d", len(row), source.Width())
	}
	if row[0] != 0xFF {
		t.Errorf("quiet zone luminance: got %d, want 255", row[0])
	}
}
