package internal

import (
	qrscan "github.com/ericlevine/qrscan"
	"github.com/ericlevine/qrscan/bitutil"
)

// DetectorResult is a sampled symbol together with the image points it was
// located from.
type DetectorResult struct {
	Bits   *bitutil.BitMatrix
	Points []qrscan.ResultPoint
}
