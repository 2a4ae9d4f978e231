package qrscan

import "github.com/ericlevine/qrscan/bitutil"

// LuminanceSource exposes an image as 8-bit luminance, 0 darkest.
type LuminanceSource interface {
	// Row copies row y into row, allocating when row is too short.
	Row(y int, row []byte) []byte

	// Matrix returns all rows concatenated, top to bottom.
	Matrix() []byte

	Width() int
	Height() int
}

// Binarizer thresholds a LuminanceSource into dark and light modules.
type Binarizer interface {
	// BlackMatrix returns the thresholded image; set bits are dark.
	BlackMatrix() (*bitutil.BitMatrix, error)

	LuminanceSource() LuminanceSource
	Width() int
	Height() int
}
