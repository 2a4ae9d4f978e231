// Package qrscan locates and decodes QR Code symbols in binary images.
package qrscan

import (
	"math"
	"time"

	"github.com/ericlevine/qrscan/bitutil"
)

// Format represents a symbology.
type Format int

const (
	FormatQRCode Format = iota
)

// String returns the name of the format.
func (f Format) String() string {
	switch f {
	case FormatQRCode:
		return "QR_CODE"
	default:
		return "UNKNOWN"
	}
}

// ResultMetadataKey identifies a type of metadata about a decode result.
type ResultMetadataKey int

const (
	MetadataOther ResultMetadataKey = iota
	MetadataByteSegments
	MetadataErrorCorrectionLevel
	MetadataErrorsCorrected
	MetadataStructuredAppendSequence
	MetadataStructuredAppendParity
	MetadataSymbologyIdentifier
	MetadataVersion
	MetadataMirrored
)

// String returns a stable snake_case name for the key.
func (k ResultMetadataKey) String() string {
	switch k {
	case MetadataByteSegments:
		return "byte_segments"
	case MetadataErrorCorrectionLevel:
		return "error_correction_level"
	case MetadataErrorsCorrected:
		return "errors_corrected"
	case MetadataStructuredAppendSequence:
		return "structured_append_sequence"
	case MetadataStructuredAppendParity:
		return "structured_append_parity"
	case MetadataSymbologyIdentifier:
		return "symbology_identifier"
	case MetadataVersion:
		return "version"
	case MetadataMirrored:
		return "mirrored"
	default:
		return "other"
	}
}

// ResultPoint represents a point of interest in an image.
type ResultPoint struct {
	X, Y float64
}

// Distance returns the distance between two points.
func Distance(a, b ResultPoint) float64 {
	return math.Sqrt((a.X-b.X)*(a.X-b.X) + (a.Y-b.Y)*(a.Y-b.Y))
}

// CrossProductZ computes the z component of the cross product between vectors
// (bX-aX, bY-aY) and (cX-aX, cY-aY).
func CrossProductZ(a, b, c ResultPoint) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// OrderBestPatterns orders three finder centers as bottom-left, top-left,
// top-right. Top-left is the point opposite the longest side; the sign of the
// cross product decides which of the other two is bottom-left.
func OrderBestPatterns(patterns [3]ResultPoint) [3]ResultPoint {
	d01 := Distance(patterns[0], patterns[1])
	d12 := Distance(patterns[1], patterns[2])
	d02 := Distance(patterns[0], patterns[2])

	var topLeft, a, b ResultPoint
	switch {
	case d12 >= d01 && d12 >= d02:
		topLeft, a, b = patterns[0], patterns[1], patterns[2]
	case d02 >= d01 && d02 >= d12:
		topLeft, a, b = patterns[1], patterns[0], patterns[2]
	default:
		topLeft, a, b = patterns[2], patterns[0], patterns[1]
	}

	// With the y axis pointing down, (TR-TL) x (BL-TL) is positive.
	bottomLeft, topRight := a, b
	if CrossProductZ(topLeft, a, b) > 0 {
		bottomLeft, topRight = b, a
	}
	return [3]ResultPoint{bottomLeft, topLeft, topRight}
}

// Result encapsulates the result of decoding a symbol.
type Result struct {
	Text      string
	RawBytes  []byte
	NumBits   int
	Points    []ResultPoint
	Format    Format
	Metadata  map[ResultMetadataKey]any
	Timestamp time.Time
}

// NewResult creates a new Result with the given text, format, and points.
func NewResult(text string, rawBytes []byte, points []ResultPoint, format Format) *Result {
	return &Result{
		Text:      text,
		RawBytes:  rawBytes,
		NumBits:   8 * len(rawBytes),
		Points:    points,
		Format:    format,
		Metadata:  make(map[ResultMetadataKey]any),
		Timestamp: time.Now(),
	}
}

// PutMetadata adds a metadata key/value pair.
func (r *Result) PutMetadata(key ResultMetadataKey, value any) {
	r.Metadata[key] = value
}

// BinaryBitmap pairs a Binarizer with its lazily computed black matrix.
type BinaryBitmap struct {
	binarizer Binarizer
	matrix    *bitutil.BitMatrix
}

// NewBinaryBitmap creates a new BinaryBitmap from the given Binarizer.
func NewBinaryBitmap(binarizer Binarizer) *BinaryBitmap {
	return &BinaryBitmap{binarizer: binarizer}
}

// NewBinaryBitmapFromMatrix wraps an already thresholded matrix.
func NewBinaryBitmapFromMatrix(matrix *bitutil.BitMatrix) *BinaryBitmap {
	return &BinaryBitmap{matrix: matrix}
}

// Width returns the width of the bitmap.
func (b *BinaryBitmap) Width() int {
	if b.binarizer == nil {
		return b.matrix.Width()
	}
	return b.binarizer.Width()
}

// Height returns the height of the bitmap.
func (b *BinaryBitmap) Height() int {
	if b.binarizer == nil {
		return b.matrix.Height()
	}
	return b.binarizer.Height()
}

// BlackMatrix returns the 2D matrix of black/white values. The matrix is
// computed once and shared; callers must not modify it.
func (b *BinaryBitmap) BlackMatrix() (*bitutil.BitMatrix, error) {
	if b.matrix != nil {
		return b.matrix, nil
	}
	m, err := b.binarizer.BlackMatrix()
	if err != nil {
		return nil, err
	}
	b.matrix = m
	return m, nil
}

// Inverted returns a bitmap over an inverted copy of the black matrix.
func (b *BinaryBitmap) Inverted() (*BinaryBitmap, error) {
	m, err := b.BlackMatrix()
	if err != nil {
		return nil, err
	}
	inv := m.Clone()
	inv.FlipAll()
	return NewBinaryBitmapFromMatrix(inv), nil
}
