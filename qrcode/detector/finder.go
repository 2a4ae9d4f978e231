package detector

import (
	"fmt"
	"math"
	"sort"

	qrscan "github.com/ericlevine/qrscan"
	"github.com/ericlevine/qrscan/bitutil"
)

const (
	centerQuorum = 2
	minSkip      = 3
	// maxModules is the dimension of a version 40 symbol plus quiet zone.
	maxModules = 97
)

// finderScan is the state of one FindFinderPatterns call.
type finderScan struct {
	image           *bitutil.BitMatrix
	opts            *qrscan.DecodeOptions
	possibleCenters []*FinderPattern
	hasSkipped      bool
	crossCheck      [5]int
}

// FindFinderPatterns locates the three finder patterns of a symbol in
// image. Rows are scanned for a 1:1:3:1:1 dark/light run pattern; each hit is
// confirmed by vertical, horizontal and diagonal cross checks, and the three
// confirmed centers forming the best isosceles right triangle are returned.
func FindFinderPatterns(image *bitutil.BitMatrix, opts *qrscan.DecodeOptions) (*FinderPatternInfo, error) {
	s := &finderScan{image: image, opts: opts}
	return s.find()
}

func (s *finderScan) find() (*FinderPatternInfo, error) {
	maxI := s.image.Height()
	maxJ := s.image.Width()

	// Assume the symbol covers at least 3/4 of the image height, which at
	// version 40 gives about 3/4 * height / maxModules pixels per module.
	iSkip := (3 * maxI) / (4 * maxModules)
	if iSkip < minSkip || (s.opts != nil && s.opts.TryHarder) {
		iSkip = minSkip
	}

	done := false
	var stateCount [5]int
	for i := iSkip - 1; i < maxI && !done; i += iSkip {
		stateCount = [5]int{}
		currentState := 0
		for j := 0; j < maxJ; j++ {
			if s.image.Get(j, i) {
				if currentState&1 == 1 {
					currentState++
				}
				stateCount[currentState]++
				continue
			}
			if currentState&1 == 1 {
				stateCount[currentState]++
				continue
			}
			if currentState != 4 {
				currentState++
				stateCount[currentState]++
				continue
			}
			if !foundPatternCross(stateCount) {
				shiftCounts2(&stateCount)
				currentState = 3
				continue
			}
			if !s.handlePossibleCenter(stateCount, i, j) {
				shiftCounts2(&stateCount)
				currentState = 3
				continue
			}
			// Found a finder pattern; scan more finely from here on.
			iSkip = 2
			if s.hasSkipped {
				done = s.haveMultiplyConfirmedCenters()
			} else if rowSkip := s.findRowSkip(); rowSkip > stateCount[2] {
				// Jump to the likely row of the third pattern and end
				// this row.
				i += rowSkip - stateCount[2] - iSkip
				j = maxJ - 1
			}
			stateCount = [5]int{}
			currentState = 0
		}
		if foundPatternCross(stateCount) && s.handlePossibleCenter(stateCount, i, maxJ) {
			iSkip = stateCount[0]
			if s.hasSkipped {
				done = s.haveMultiplyConfirmedCenters()
			}
		}
	}

	best, err := s.selectBestPatterns()
	if err != nil {
		return nil, err
	}
	return newFinderPatternInfo(best), nil
}

func shiftCounts2(stateCount *[5]int) {
	stateCount[0] = stateCount[2]
	stateCount[1] = stateCount[3]
	stateCount[2] = stateCount[4]
	stateCount[3] = 1
	stateCount[4] = 0
}

// centerFromEnd returns the center of the middle run given the position
// just past the last run.
func centerFromEnd(stateCount [5]int, end int) float64 {
	return float64(end-stateCount[4]-stateCount[3]) - float64(stateCount[2])/2.0
}

// foundPatternCross reports whether run lengths match 1:1:3:1:1 within
// half a module per run.
func foundPatternCross(stateCount [5]int) bool {
	return matchesFinderRatios(stateCount, 2.0)
}

// foundPatternDiagonal is foundPatternCross with 75% variance.
func foundPatternDiagonal(stateCount [5]int) bool {
	return matchesFinderRatios(stateCount, 1.333)
}

func matchesFinderRatios(stateCount [5]int, varianceDivisor float64) bool {
	total := 0
	for _, count := range stateCount {
		if count == 0 {
			return false
		}
		total += count
	}
	if total < 7 {
		return false
	}
	moduleSize := float64(total) / 7.0
	maxVariance := moduleSize / varianceDivisor
	return math.Abs(moduleSize-float64(stateCount[0])) < maxVariance &&
		math.Abs(moduleSize-float64(stateCount[1])) < maxVariance &&
		math.Abs(3*moduleSize-float64(stateCount[2])) < 3*maxVariance &&
		math.Abs(moduleSize-float64(stateCount[3])) < maxVariance &&
		math.Abs(moduleSize-float64(stateCount[4])) < maxVariance
}

func (s *finderScan) clearCrossCheck() *[5]int {
	s.crossCheck = [5]int{}
	return &s.crossCheck
}

// crossCheckDiagonal walks the up-left and down-right diagonals through a
// candidate center and checks for the finder ratios.
func (s *finderScan) crossCheckDiagonal(centerI, centerJ int) bool {
	sc := s.clearCrossCheck()

	i := 0
	for centerI >= i && centerJ >= i && s.image.Get(centerJ-i, centerI-i) {
		sc[2]++
		i++
	}
	if sc[2] == 0 {
		return false
	}
	for centerI >= i && centerJ >= i && !s.image.Get(centerJ-i, centerI-i) {
		sc[1]++
		i++
	}
	if sc[1] == 0 {
		return false
	}
	for centerI >= i && centerJ >= i && s.image.Get(centerJ-i, centerI-i) {
		sc[0]++
		i++
	}
	if sc[0] == 0 {
		return false
	}

	maxI, maxJ := s.image.Height(), s.image.Width()
	i = 1
	for centerI+i < maxI && centerJ+i < maxJ && s.image.Get(centerJ+i, centerI+i) {
		sc[2]++
		i++
	}
	for centerI+i < maxI && centerJ+i < maxJ && !s.image.Get(centerJ+i, centerI+i) {
		sc[3]++
		i++
	}
	if sc[3] == 0 {
		return false
	}
	for centerI+i < maxI && centerJ+i < maxJ && s.image.Get(centerJ+i, centerI+i) {
		sc[4]++
		i++
	}
	if sc[4] == 0 {
		return false
	}
	return foundPatternDiagonal(*sc)
}

// crossCheckVertical scans the column through centerJ around startI and
// returns the vertical center, or NaN if the column does not show a finder
// pattern whose size is within 40% of originalTotal.
func (s *finderScan) crossCheckVertical(startI, centerJ, maxCount, originalTotal int) float64 {
	maxI := s.image.Height()
	sc := s.clearCrossCheck()

	i := startI
	for i >= 0 && s.image.Get(centerJ, i) {
		sc[2]++
		i--
	}
	if i < 0 {
		return math.NaN()
	}
	for i >= 0 && !s.image.Get(centerJ, i) && sc[1] <= maxCount {
		sc[1]++
		i--
	}
	if i < 0 || sc[1] > maxCount {
		return math.NaN()
	}
	for i >= 0 && s.image.Get(centerJ, i) && sc[0] <= maxCount {
		sc[0]++
		i--
	}
	if sc[0] > maxCount {
		return math.NaN()
	}

	i = startI + 1
	for i < maxI && s.image.Get(centerJ, i) {
		sc[2]++
		i++
	}
	if i == maxI {
		return math.NaN()
	}
	for i < maxI && !s.image.Get(centerJ, i) && sc[3] < maxCount {
		sc[3]++
		i++
	}
	if i == maxI || sc[3] >= maxCount {
		return math.NaN()
	}
	for i < maxI && s.image.Get(centerJ, i) && sc[4] < maxCount {
		sc[4]++
		i++
	}
	if sc[4] >= maxCount {
		return math.NaN()
	}

	total := sc[0] + sc[1] + sc[2] + sc[3] + sc[4]
	if 5*abs(total-originalTotal) >= 2*originalTotal {
		return math.NaN()
	}
	if !foundPatternCross(*sc) {
		return math.NaN()
	}
	return centerFromEnd(*sc, i)
}

// crossCheckHorizontal is crossCheckVertical along the row through centerI,
// with a tighter 20% size tolerance.
func (s *finderScan) crossCheckHorizontal(startJ, centerI, maxCount, originalTotal int) float64 {
	maxJ := s.image.Width()
	sc := s.clearCrossCheck()

	j := startJ
	for j >= 0 && s.image.Get(j, centerI) {
		sc[2]++
		j--
	}
	if j < 0 {
		return math.NaN()
	}
	for j >= 0 && !s.image.Get(j, centerI) && sc[1] <= maxCount {
		sc[1]++
		j--
	}
	if j < 0 || sc[1] > maxCount {
		return math.NaN()
	}
	for j >= 0 && s.image.Get(j, centerI) && sc[0] <= maxCount {
		sc[0]++
		j--
	}
	if sc[0] > maxCount {
		return math.NaN()
	}

	j = startJ + 1
	for j < maxJ && s.image.Get(j, centerI) {
		sc[2]++
		j++
	}
	if j == maxJ {
		return math.NaN()
	}
	for j < maxJ && !s.image.Get(j, centerI) && sc[3] < maxCount {
		sc[3]++
		j++
	}
	if j == maxJ || sc[3] >= maxCount {
		return math.NaN()
	}
	for j < maxJ && s.image.Get(j, centerI) && sc[4] < maxCount {
		sc[4]++
		j++
	}
	if sc[4] >= maxCount {
		return math.NaN()
	}

	total := sc[0] + sc[1] + sc[2] + sc[3] + sc[4]
	if 5*abs(total-originalTotal) >= originalTotal {
		return math.NaN()
	}
	if !foundPatternCross(*sc) {
		return math.NaN()
	}
	return centerFromEnd(*sc, j)
}

// handlePossibleCenter cross checks a row hit ending at column j of row i.
// A confirmed center is merged into a matching candidate or added as a new
// one; the return value reports whether it was confirmed.
func (s *finderScan) handlePossibleCenter(stateCount [5]int, i, j int) bool {
	total := stateCount[0] + stateCount[1] + stateCount[2] + stateCount[3] + stateCount[4]
	centerJ := centerFromEnd(stateCount, j)
	centerI := s.crossCheckVertical(i, int(centerJ), stateCount[2], total)
	if math.IsNaN(centerI) {
		return false
	}
	centerJ = s.crossCheckHorizontal(int(centerJ), int(centerI), stateCount[2], total)
	if math.IsNaN(centerJ) || !s.crossCheckDiagonal(int(centerI), int(centerJ)) {
		return false
	}

	moduleSize := float64(total) / 7.0
	for index, center := range s.possibleCenters {
		if center.aboutEquals(moduleSize, centerI, centerJ) {
			s.possibleCenters[index] = center.combineEstimate(centerI, centerJ, moduleSize)
			return true
		}
	}
	point := &FinderPattern{X: centerJ, Y: centerI, EstimatedModuleSize: moduleSize, Count: 1}
	s.possibleCenters = append(s.possibleCenters, point)
	s.opts.NotifyPoint(point.Point())
	return true
}

// findRowSkip estimates how many rows can be skipped once two patterns are
// confirmed: the third lies at least that far below.
func (s *finderScan) findRowSkip() int {
	if len(s.possibleCenters) <= 1 {
		return 0
	}
	var first *FinderPattern
	for _, center := range s.possibleCenters {
		if center.Count < centerQuorum {
			continue
		}
		if first == nil {
			first = center
			continue
		}
		// Half the difference of the x and y offsets between the two
		// confirmed centers is a safe lower bound on the distance to the
		// third.
		s.hasSkipped = true
		return int((math.Abs(first.X-center.X) - math.Abs(first.Y-center.Y)) / 2)
	}
	return 0
}

// haveMultiplyConfirmedCenters reports whether at least three candidates
// reached the quorum and all module size estimates lie within 5% in total
// of each other.
func (s *finderScan) haveMultiplyConfirmedCenters() bool {
	confirmed := 0
	totalModuleSize := 0.0
	for _, p := range s.possibleCenters {
		if p.Count >= centerQuorum {
			confirmed++
			totalModuleSize += p.EstimatedModuleSize
		}
	}
	if confirmed < 3 {
		return false
	}
	average := totalModuleSize / float64(len(s.possibleCenters))
	totalDeviation := 0.0
	for _, p := range s.possibleCenters {
		totalDeviation += math.Abs(p.EstimatedModuleSize - average)
	}
	return totalDeviation <= 0.05*totalModuleSize
}

func squaredDistance(a, b *FinderPattern) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

// selectBestPatterns picks the three candidates of similar module size that
// come closest to an isosceles right triangle.
func (s *finderScan) selectBestPatterns() ([3]*FinderPattern, error) {
	var best [3]*FinderPattern
	candidates := s.possibleCenters
	if len(candidates) < 3 {
		return best, fmt.Errorf("%w: %d finder pattern candidates", qrscan.ErrNotFound, len(candidates))
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].EstimatedModuleSize < candidates[b].EstimatedModuleSize
	})

	distortion := math.MaxFloat64
	for i := 0; i < len(candidates)-2; i++ {
		fpi := candidates[i]
		minModuleSize := fpi.EstimatedModuleSize
		for j := i + 1; j < len(candidates)-1; j++ {
			fpj := candidates[j]
			squares0 := squaredDistance(fpi, fpj)
			for k := j + 1; k < len(candidates); k++ {
				fpk := candidates[k]
				if fpk.EstimatedModuleSize > minModuleSize*1.4 {
					continue
				}
				sides := []float64{squares0, squaredDistance(fpj, fpk), squaredDistance(fpi, fpk)}
				sort.Float64s(sides)
				a, b, c := sides[0], sides[1], sides[2]
				// a^2 + b^2 = c^2 and a = b for a square's corners.
				d := math.Abs(c-2*b) + math.Abs(c-2*a)
				if d < distortion {
					distortion = d
					best = [3]*FinderPattern{fpi, fpj, fpk}
				}
			}
		}
	}
	if distortion == math.MaxFloat64 {
		return best, fmt.Errorf("%w: no finder pattern triple of similar size", qrscan.ErrNotFound)
	}
	return best, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
