package detector

import (
	"fmt"
	"math"

	qrscan "github.com/ericlevine/qrscan"
	"github.com/ericlevine/qrscan/bitutil"
)

// alignmentScan searches one rectangular region for an alignment pattern:
// a light 1:1:1 ring around a dark center module, seen along rows and
// confirmed along the column.
type alignmentScan struct {
	image           *bitutil.BitMatrix
	opts            *qrscan.DecodeOptions
	startX, startY  int
	width, height   int
	moduleSize      float64
	possibleCenters []*AlignmentPattern
}

// findAlignmentPattern scans the region row by row from its middle
// outwards. A center seen twice is returned at once; otherwise the first
// candidate seen, if any.
func findAlignmentPattern(image *bitutil.BitMatrix, startX, startY, width, height int, moduleSize float64, opts *qrscan.DecodeOptions) (*AlignmentPattern, error) {
	s := &alignmentScan{
		image:      image,
		opts:       opts,
		startX:     startX,
		startY:     startY,
		width:      width,
		height:     height,
		moduleSize: moduleSize,
	}
	return s.find()
}

func (s *alignmentScan) find() (*AlignmentPattern, error) {
	maxJ := s.startX + s.width
	middleI := s.startY + s.height/2
	for iGen := 0; iGen < s.height; iGen++ {
		i := middleI + (iGen+1)/2
		if iGen&1 == 1 {
			i = middleI - (iGen+1)/2
		}

		var stateCount [3]int
		j := s.startX
		// A run of light pixels at the region edge has no meaningful length.
		for j < maxJ && !s.image.Get(j, i) {
			j++
		}
		currentState := 0
		for ; j < maxJ; j++ {
			if !s.image.Get(j, i) {
				if currentState == 1 {
					currentState++
				}
				stateCount[currentState]++
				continue
			}
			if currentState == 1 {
				stateCount[1]++
				continue
			}
			if currentState != 2 {
				currentState++
				stateCount[currentState]++
				continue
			}
			if s.foundPatternCross(stateCount) {
				if confirmed := s.handlePossibleCenter(stateCount, i, j); confirmed != nil {
					return confirmed, nil
				}
			}
			stateCount[0] = stateCount[2]
			stateCount[1] = 1
			stateCount[2] = 0
			currentState = 1
		}
		if s.foundPatternCross(stateCount) {
			if confirmed := s.handlePossibleCenter(stateCount, i, maxJ); confirmed != nil {
				return confirmed, nil
			}
		}
	}

	if len(s.possibleCenters) > 0 {
		return s.possibleCenters[0], nil
	}
	return nil, fmt.Errorf("%w: no alignment pattern in %dx%d region at (%d,%d)",
		qrscan.ErrNotFound, s.width, s.height, s.startX, s.startY)
}

func alignmentCenterFromEnd(stateCount [3]int, end int) float64 {
	return float64(end-stateCount[2]) - float64(stateCount[1])/2.0
}

// foundPatternCross reports whether every run is within half a module of
// the expected module size.
func (s *alignmentScan) foundPatternCross(stateCount [3]int) bool {
	maxVariance := s.moduleSize / 2.0
	for _, count := range stateCount {
		if math.Abs(s.moduleSize-float64(count)) >= maxVariance {
			return false
		}
	}
	return true
}

// crossCheckVertical returns the vertical center of the pattern in column
// centerJ, or NaN.
func (s *alignmentScan) crossCheckVertical(startI, centerJ, maxCount, originalTotal int) float64 {
	maxI := s.image.Height()
	var sc [3]int

	i := startI
	for i >= 0 && s.image.Get(centerJ, i) && sc[1] <= maxCount {
		sc[1]++
		i--
	}
	if i < 0 || sc[1] > maxCount {
		return math.NaN()
	}
	for i >= 0 && !s.image.Get(centerJ, i) && sc[0] <= maxCount {
		sc[0]++
		i--
	}
	if sc[0] > maxCount {
		return math.NaN()
	}

	i = startI + 1
	for i < maxI && s.image.Get(centerJ, i) && sc[1] <= maxCount {
		sc[1]++
		i++
	}
	if i == maxI || sc[1] > maxCount {
		return math.NaN()
	}
	for i < maxI && !s.image.Get(centerJ, i) && sc[2] <= maxCount {
		sc[2]++
		i++
	}
	if sc[2] > maxCount {
		return math.NaN()
	}

	total := sc[0] + sc[1] + sc[2]
	if 5*abs(total-originalTotal) >= 2*originalTotal || !s.foundPatternCross(sc) {
		return math.NaN()
	}
	return alignmentCenterFromEnd(sc, i)
}

// handlePossibleCenter returns a pattern once the same center has been
// seen twice; a first sighting is recorded and nil returned.
func (s *alignmentScan) handlePossibleCenter(stateCount [3]int, i, j int) *AlignmentPattern {
	total := stateCount[0] + stateCount[1] + stateCount[2]
	centerJ := alignmentCenterFromEnd(stateCount, j)
	centerI := s.crossCheckVertical(i, int(centerJ), 2*stateCount[1], total)
	if math.IsNaN(centerI) {
		return nil
	}
	moduleSize := float64(total) / 3.0
	for _, center := range s.possibleCenters {
		if center.aboutEquals(moduleSize, centerI, centerJ) {
			return center.combineEstimate(centerI, centerJ, moduleSize)
		}
	}
	point := &AlignmentPattern{X: centerJ, Y: centerI, EstimatedModuleSize: moduleSize}
	s.possibleCenters = append(s.possibleCenters, point)
	s.opts.NotifyPoint(point.Point())
	return nil
}
