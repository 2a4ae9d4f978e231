package detector

import (
	"math"

	qrscan "github.com/ericlevine/qrscan"
)

// FinderPattern is one of the three 7x7 corner marks of a QR Code, seen
// Count times by the row scan.
type FinderPattern struct {
	X, Y                float64
	EstimatedModuleSize float64
	Count               int
}

// Point returns the pattern center.
func (p *FinderPattern) Point() qrscan.ResultPoint {
	return qrscan.ResultPoint{X: p.X, Y: p.Y}
}

// aboutEquals reports whether a center at row i, column j with the given
// module size is the same pattern.
func (p *FinderPattern) aboutEquals(moduleSize, i, j float64) bool {
	return aboutEquals(p.X, p.Y, p.EstimatedModuleSize, moduleSize, i, j)
}

// combineEstimate averages a new sighting into the pattern, weighting the
// existing estimate by its count.
func (p *FinderPattern) combineEstimate(i, j, newModuleSize float64) *FinderPattern {
	n := float64(p.Count)
	combined := n + 1
	return &FinderPattern{
		X:                   (n*p.X + j) / combined,
		Y:                   (n*p.Y + i) / combined,
		EstimatedModuleSize: (n*p.EstimatedModuleSize + newModuleSize) / combined,
		Count:               p.Count + 1,
	}
}

// FinderPatternInfo holds the three finder patterns of a symbol.
type FinderPatternInfo struct {
	BottomLeft, TopLeft, TopRight *FinderPattern
}

// newFinderPatternInfo labels three patterns by their geometry.
func newFinderPatternInfo(patterns [3]*FinderPattern) *FinderPatternInfo {
	ordered := qrscan.OrderBestPatterns([3]qrscan.ResultPoint{
		patterns[0].Point(), patterns[1].Point(), patterns[2].Point(),
	})
	find := func(pt qrscan.ResultPoint) *FinderPattern {
		for _, p := range patterns {
			if p.X == pt.X && p.Y == pt.Y {
				return p
			}
		}
		return nil
	}
	return &FinderPatternInfo{
		BottomLeft: find(ordered[0]),
		TopLeft:    find(ordered[1]),
		TopRight:   find(ordered[2]),
	}
}

// AlignmentPattern is the 5x5 mark near the bottom-right corner of
// version 2 and larger symbols.
type AlignmentPattern struct {
	X, Y                float64
	EstimatedModuleSize float64
}

// Point returns the pattern center.
func (p *AlignmentPattern) Point() qrscan.ResultPoint {
	return qrscan.ResultPoint{X: p.X, Y: p.Y}
}

func (p *AlignmentPattern) aboutEquals(moduleSize, i, j float64) bool {
	return aboutEquals(p.X, p.Y, p.EstimatedModuleSize, moduleSize, i, j)
}

// combineEstimate averages two sightings.
func (p *AlignmentPattern) combineEstimate(i, j, newModuleSize float64) *AlignmentPattern {
	return &AlignmentPattern{
		X:                   (p.X + j) / 2,
		Y:                   (p.Y + i) / 2,
		EstimatedModuleSize: (p.EstimatedModuleSize + newModuleSize) / 2,
	}
}

func aboutEquals(x, y, estimated, moduleSize, i, j float64) bool {
	if math.Abs(i-y) > moduleSize || math.Abs(j-x) > moduleSize {
		return false
	}
	diff := math.Abs(moduleSize - estimated)
	return diff <= 1.0 || diff <= estimated
}
