// Package qrtest builds QR Code fixtures for tests: module matrices from a
// conforming encoder, rendered and warped images, and hand-assembled bit
// streams.
package qrtest

import (
	"image"
	"image/color"
	"math"
	"testing"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/ericlevine/qrscan/bitutil"
)

// Level names an error correction level in the encoder's terms.
type Level = qrcode.RecoveryLevel

// Encoder levels in L, M, Q, H order.
const (
	LevelL = qrcode.Low
	LevelM = qrcode.Medium
	LevelQ = qrcode.High
	LevelH = qrcode.Highest
)

// Symbol encodes content and returns the module matrix without quiet zone
// along with the chosen version.
func Symbol(t testing.TB, content string, level Level) (*bitutil.BitMatrix, int) {
	t.Helper()
	q, err := qrcode.New(content, level)
	if err != nil {
		t.Fatalf("encode %q: %v", content, err)
	}
	return crop(q), q.VersionNumber
}

// SymbolVersion is Symbol with a forced version.
func SymbolVersion(t testing.TB, content string, version int, level Level) *bitutil.BitMatrix {
	t.Helper()
	q, err := qrcode.NewWithForcedVersion(content, version, level)
	if err != nil {
		t.Fatalf("encode %q at version %d: %v", content, version, err)
	}
	return crop(q)
}

func crop(q *qrcode.QRCode) *bitutil.BitMatrix {
	bitmap := q.Bitmap()
	dimension := 17 + 4*q.VersionNumber
	border := (len(bitmap) - dimension) / 2
	m := bitutil.NewBitMatrix(dimension)
	for y := 0; y < dimension; y++ {
		for x := 0; x < dimension; x++ {
			if bitmap[border+y][border+x] {
				m.Set(x, y)
			}
		}
	}
	return m
}

// Render scales a module matrix to moduleSize pixels per module and
// surrounds it with quiet modules of white.
func Render(symbol *bitutil.BitMatrix, moduleSize, quiet int) *bitutil.BitMatrix {
	size := (symbol.Width() + 2*quiet) * moduleSize
	out := bitutil.NewBitMatrix(size)
	for y := 0; y < symbol.Height(); y++ {
		for x := 0; x < symbol.Width(); x++ {
			if symbol.Get(x, y) {
				out.SetRegion((x+quiet)*moduleSize, (y+quiet)*moduleSize, moduleSize, moduleSize)
			}
		}
	}
	return out
}

// Rotate returns img rotated by degrees about its center onto a canvas of
// the same size. Pixels mapped from outside the source are white.
func Rotate(img *bitutil.BitMatrix, degrees float64) *bitutil.BitMatrix {
	w, h := img.Width(), img.Height()
	out := bitutil.NewBitMatrixWithSize(w, h)
	sin, cos := math.Sincos(degrees * math.Pi / 180)
	cx, cy := float64(w)/2, float64(h)/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
			sx := int(math.Floor(cos*dx + sin*dy + cx))
			sy := int(math.Floor(-sin*dx + cos*dy + cy))
			if sx >= 0 && sy >= 0 && sx < w && sy < h && img.Get(sx, sy) {
				out.Set(x, y)
			}
		}
	}
	return out
}

// Image converts a bit matrix to greyscale, dark modules black.
func Image(m *bitutil.BitMatrix) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width(), m.Height()))
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			c := color.Gray{Y: 0xFF}
			if m.Get(x, y) {
				c.Y = 0
			}
			img.SetGray(x, y, c)
		}
	}
	return img
}

// BitWriter assembles an MSB-first bit stream.
type BitWriter struct {
	bits []bool
}

// Write appends the low n bits of v.
func (w *BitWriter) Write(v, n int) *BitWriter {
	for i := n - 1; i >= 0; i-- {
		w.bits = append(w.bits, (v>>uint(i))&1 == 1)
	}
	return w
}

// Len returns the number of bits written.
func (w *BitWriter) Len() int { return len(w.bits) }

// Bytes returns the stream padded with zero bits to a whole byte count.
func (w *BitWriter) Bytes() []byte {
	out := make([]byte, (len(w.bits)+7)/8)
	for i, b := range w.bits {
		if b {
			out[i/8] |= 0x80 >> uint(i%8)
		}
	}
	return out
}
