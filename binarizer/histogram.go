// Package binarizer thresholds luminance data into the dark/light matrix
// the detector scans.
package binarizer

import (
	"fmt"

	qrscan "github.com/ericlevine/qrscan"
	"github.com/ericlevine/qrscan/bitutil"
)

const (
	luminanceBits    = 5
	luminanceShift   = 8 - luminanceBits
	luminanceBuckets = 1 << luminanceBits
)

// GlobalHistogram picks one black point for the whole image from a
// histogram of its central area. It is fast but fails on uneven lighting;
// Hybrid handles that better.
type GlobalHistogram struct {
	source qrscan.LuminanceSource
}

// NewGlobalHistogram creates a new GlobalHistogram binarizer.
func NewGlobalHistogram(source qrscan.LuminanceSource) *GlobalHistogram {
	return &GlobalHistogram{source: source}
}

// LuminanceSource returns the underlying source.
func (g *GlobalHistogram) LuminanceSource() qrscan.LuminanceSource {
	return g.source
}

// Width returns the image width.
func (g *GlobalHistogram) Width() int { return g.source.Width() }

// Height returns the image height.
func (g *GlobalHistogram) Height() int { return g.source.Height() }

// BlackMatrix samples four rows across the middle three fifths of the image
// and marks every pixel darker than the estimated black point.
func (g *GlobalHistogram) BlackMatrix() (*bitutil.BitMatrix, error) {
	width, height := g.source.Width(), g.source.Height()

	var buckets [luminanceBuckets]int
	row := make([]byte, width)
	for y := 1; y < 5; y++ {
		row = g.source.Row(height*y/5, row)
		for x := width / 5; x < (width*4)/5; x++ {
			buckets[row[x]>>luminanceShift]++
		}
	}
	blackPoint, err := estimateBlackPoint(buckets[:])
	if err != nil {
		return nil, err
	}

	matrix := bitutil.NewBitMatrixWithSize(width, height)
	luminances := g.source.Matrix()
	for y := 0; y < height; y++ {
		offset := y * width
		for x := 0; x < width; x++ {
			if int(luminances[offset+x]) < blackPoint {
				matrix.Set(x, y)
			}
		}
	}
	return matrix, nil
}

// estimateBlackPoint finds the two histogram peaks and returns the
// luminance of the deepest valley between them, favoring valleys nearer the
// light peak.
func estimateBlackPoint(buckets []int) (int, error) {
	numBuckets := len(buckets)
	maxBucketCount, firstPeak, firstPeakSize := 0, 0, 0
	for x, count := range buckets {
		if count > firstPeakSize {
			firstPeak = x
			firstPeakSize = count
		}
		if count > maxBucketCount {
			maxBucketCount = count
		}
	}

	// The second peak is scored by height and distance from the first.
	secondPeak, secondPeakScore := 0, 0
	for x, count := range buckets {
		dist := x - firstPeak
		if score := count * dist * dist; score > secondPeakScore {
			secondPeak = x
			secondPeakScore = score
		}
	}
	if firstPeak > secondPeak {
		firstPeak, secondPeak = secondPeak, firstPeak
	}

	if secondPeak-firstPeak <= numBuckets/16 {
		return 0, fmt.Errorf("%w: luminance histogram has a single peak", qrscan.ErrNotFound)
	}

	bestValley := secondPeak - 1
	bestValleyScore := -1
	for x := secondPeak - 1; x > firstPeak; x-- {
		fromFirst := x - firstPeak
		score := fromFirst * fromFirst * (secondPeak - x) * (maxBucketCount - buckets[x])
		if score > bestValleyScore {
			bestValley = x
			bestValleyScore = score
		}
	}
	return bestValley << luminanceShift, nil
}
