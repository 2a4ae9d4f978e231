// Package detector locates a QR Code in a binary image and samples its
// module grid.
package detector

import (
	"errors"
	"fmt"
	"math"

	qrscan "github.com/ericlevine/qrscan"
	"github.com/ericlevine/qrscan/bitutil"
	"github.com/ericlevine/qrscan/internal"
	"github.com/ericlevine/qrscan/qrcode/decoder"
	"github.com/ericlevine/qrscan/transform"
)

// Detector finds a QR Code in an image. It only reads the image and keeps
// no per-call state, so one Detector may serve concurrent calls.
type Detector struct {
	image *bitutil.BitMatrix
}

// NewDetector creates a new Detector for the given image.
func NewDetector(image *bitutil.BitMatrix) *Detector {
	return &Detector{image: image}
}

// Image returns the image being searched.
func (d *Detector) Image() *bitutil.BitMatrix {
	return d.image
}

// Detect locates the finder patterns and samples the symbol.
func (d *Detector) Detect(opts *qrscan.DecodeOptions) (*internal.DetectorResult, error) {
	info, err := FindFinderPatterns(d.image, opts)
	if err != nil {
		return nil, err
	}
	return d.ProcessFinderPatternInfo(info, opts)
}

// ProcessFinderPatternInfo estimates module size and dimension from the
// finder patterns, looks for the bottom-right alignment pattern and samples
// the grid. Result points are bottom-left, top-left, top-right and, when
// found, the alignment pattern.
func (d *Detector) ProcessFinderPatternInfo(info *FinderPatternInfo, opts *qrscan.DecodeOptions) (*internal.DetectorResult, error) {
	topLeft, topRight, bottomLeft := info.TopLeft, info.TopRight, info.BottomLeft

	moduleSize := d.calculateModuleSize(topLeft, topRight, bottomLeft)
	if !(moduleSize >= 1.0) {
		return nil, fmt.Errorf("%w: module size %.2f below one pixel", qrscan.ErrNotFound, moduleSize)
	}
	dimension, err := computeDimension(topLeft, topRight, bottomLeft, moduleSize)
	if err != nil {
		return nil, err
	}
	provisionalVersion, err := decoder.ProvisionalVersionForDimension(dimension)
	if err != nil {
		return nil, err
	}

	var alignment *AlignmentPattern
	if len(provisionalVersion.AlignmentPatternCenters) > 0 {
		// The bottom-right alignment pattern sits 3 modules in from where
		// the fourth finder pattern would be.
		bottomRightX := topRight.X - topLeft.X + bottomLeft.X
		bottomRightY := topRight.Y - topLeft.Y + bottomLeft.Y
		correctionToTopLeft := 1.0 - 3.0/float64(provisionalVersion.Dimension()-7)
		estX := int(topLeft.X + correctionToTopLeft*(bottomRightX-topLeft.X))
		estY := int(topLeft.Y + correctionToTopLeft*(bottomRightY-topLeft.Y))

		for factor := 4; factor <= 16; factor <<= 1 {
			alignment, err = d.findAlignmentInRegion(moduleSize, estX, estY, float64(factor), opts)
			if err == nil {
				break
			}
			if !errors.Is(err, qrscan.ErrNotFound) {
				return nil, err
			}
		}
		// Not finding it is not an error. The fourth corner is then
		// extrapolated from the finders, which samples skewed symbols less
		// accurately; callers see this as a result with three points.
	}

	t := createTransform(topLeft, topRight, bottomLeft, alignment, dimension)
	bits, err := transform.SampleGrid(d.image, dimension, t)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", qrscan.ErrNotFound, err)
	}

	points := []qrscan.ResultPoint{bottomLeft.Point(), topLeft.Point(), topRight.Point()}
	if alignment != nil {
		points = append(points, alignment.Point())
	}
	return &internal.DetectorResult{Bits: bits, Points: points}, nil
}

// createTransform maps symbol space onto the image through the three finder
// centers and either the alignment center or the extrapolated fourth corner.
func createTransform(topLeft, topRight, bottomLeft *FinderPattern, alignment *AlignmentPattern, dimension int) *transform.Perspective {
	dimMinusThree := float64(dimension) - 3.5
	var bottomRight transform.Point
	var sourceBottomRight float64
	if alignment != nil {
		bottomRight = transform.Point{X: alignment.X, Y: alignment.Y}
		sourceBottomRight = dimMinusThree - 3.0
	} else {
		bottomRight = transform.Point{
			X: topRight.X - topLeft.X + bottomLeft.X,
			Y: topRight.Y - topLeft.Y + bottomLeft.Y,
		}
		sourceBottomRight = dimMinusThree
	}

	return transform.QuadToQuad(
		transform.Quad{
			{X: 3.5, Y: 3.5},
			{X: dimMinusThree, Y: 3.5},
			{X: sourceBottomRight, Y: sourceBottomRight},
			{X: 3.5, Y: dimMinusThree},
		},
		transform.Quad{
			{X: topLeft.X, Y: topLeft.Y},
			{X: topRight.X, Y: topRight.Y},
			bottomRight,
			{X: bottomLeft.X, Y: bottomLeft.Y},
		},
	)
}

// computeDimension derives the symbol size from finder center spacing,
// snapped to the nearest size of the form 4k+1.
func computeDimension(topLeft, topRight, bottomLeft *FinderPattern, moduleSize float64) (int, error) {
	tltr := int(math.Round(distance(topLeft, topRight) / moduleSize))
	tlbl := int(math.Round(distance(topLeft, bottomLeft) / moduleSize))
	dimension := (tltr+tlbl)/2 + 7
	switch dimension & 0x03 {
	case 0:
		dimension++
	case 2:
		dimension--
	case 3:
		return 0, fmt.Errorf("%w: estimated dimension %d", qrscan.ErrNotFound, dimension)
	}
	return dimension, nil
}

func distance(a, b *FinderPattern) float64 {
	return qrscan.Distance(a.Point(), b.Point())
}

// calculateModuleSize averages the module size measured along the top and
// left edges of the symbol.
func (d *Detector) calculateModuleSize(topLeft, topRight, bottomLeft *FinderPattern) float64 {
	return (d.calculateModuleSizeOneWay(topLeft, topRight) +
		d.calculateModuleSizeOneWay(topLeft, bottomLeft)) / 2.0
}

// calculateModuleSizeOneWay measures both finder patterns along the line
// joining them. Each measurement spans the 7 modules of a pattern.
func (d *Detector) calculateModuleSizeOneWay(pattern, otherPattern *FinderPattern) float64 {
	est1 := d.sizeOfBlackWhiteBlackRunBothWays(int(pattern.X), int(pattern.Y), int(otherPattern.X), int(otherPattern.Y))
	est2 := d.sizeOfBlackWhiteBlackRunBothWays(int(otherPattern.X), int(otherPattern.Y), int(pattern.X), int(pattern.Y))
	switch {
	case math.IsNaN(est1):
		return est2 / 7.0
	case math.IsNaN(est2):
		return est1 / 7.0
	}
	return (est1 + est2) / 14.0
}

// sizeOfBlackWhiteBlackRunBothWays measures the finder pattern at (fromX,
// fromY) towards (toX, toY) and in the opposite direction, clamping the
// opposite end point to the image.
func (d *Detector) sizeOfBlackWhiteBlackRunBothWays(fromX, fromY, toX, toY int) float64 {
	result := d.sizeOfBlackWhiteBlackRun(fromX, fromY, toX, toY)
	width, height := d.image.Width(), d.image.Height()

	scale := 1.0
	otherToX := fromX - (toX - fromX)
	if otherToX < 0 {
		scale = float64(fromX) / float64(fromX-otherToX)
		otherToX = 0
	} else if otherToX >= width {
		scale = float64(width-1-fromX) / float64(otherToX-fromX)
		otherToX = width - 1
	}
	otherToY := int(float64(fromY) - float64(toY-fromY)*scale)

	scale = 1.0
	if otherToY < 0 {
		scale = float64(fromY) / float64(fromY-otherToY)
		otherToY = 0
	} else if otherToY >= height {
		scale = float64(height-1-fromY) / float64(otherToY-fromY)
		otherToY = height - 1
	}
	otherToX = int(float64(fromX) + float64(otherToX-fromX)*scale)

	result += d.sizeOfBlackWhiteBlackRun(fromX, fromY, otherToX, otherToY)
	// The center pixel was counted twice.
	return result - 1.0
}

// sizeOfBlackWhiteBlackRun walks a Bresenham line from the center of a
// finder pattern outwards and returns the distance to the start of the
// light run that follows the outer dark ring, or NaN if the walk leaves the
// image or reaches the end point first without seeing it.
func (d *Detector) sizeOfBlackWhiteBlackRun(fromX, fromY, toX, toY int) float64 {
	steep := abs(toY-fromY) > abs(toX-fromX)
	if steep {
		fromX, fromY = fromY, fromX
		toX, toY = toY, toX
	}

	dx := abs(toX - fromX)
	dy := abs(toY - fromY)
	e := -dx / 2
	xstep, ystep := 1, 1
	if fromX > toX {
		xstep = -1
	}
	if fromY > toY {
		ystep = -1
	}

	// In state 0 and 2 we look for light pixels, in state 1 for dark.
	state := 0
	xLimit := toX + xstep
	for x, y := fromX, fromY; x != xLimit; x += xstep {
		realX, realY := x, y
		if steep {
			realX, realY = y, x
		}
		if realX < 0 || realY < 0 || realX >= d.image.Width() || realY >= d.image.Height() {
			break
		}
		if (state == 1) == d.image.Get(realX, realY) {
			if state == 2 {
				return distanceInts(x, y, fromX, fromY)
			}
			state++
		}
		e += dy
		if e > 0 {
			if y == toY {
				break
			}
			y += ystep
			e -= dx
		}
	}
	// Reaching the end point in state 2 means the light run ran to it.
	if state == 2 {
		return distanceInts(toX+xstep, toY, fromX, fromY)
	}
	return math.NaN()
}

func distanceInts(aX, aY, bX, bY int) float64 {
	dx, dy := float64(aX-bX), float64(aY-bY)
	return math.Sqrt(dx*dx + dy*dy)
}

// findAlignmentInRegion searches a square of half-width allowanceFactor
// modules around the estimated alignment center.
func (d *Detector) findAlignmentInRegion(moduleSize float64, estX, estY int, allowanceFactor float64, opts *qrscan.DecodeOptions) (*AlignmentPattern, error) {
	allowance := int(allowanceFactor * moduleSize)
	left := max(0, estX-allowance)
	right := min(d.image.Width()-1, estX+allowance)
	if float64(right-left) < moduleSize*3 {
		return nil, fmt.Errorf("%w: alignment search region %d pixels wide", qrscan.ErrNotFound, right-left)
	}
	top := max(0, estY-allowance)
	bottom := min(d.image.Height()-1, estY+allowance)
	if float64(bottom-top) < moduleSize*3 {
		return nil, fmt.Errorf("%w: alignment search region %d pixels tall", qrscan.ErrNotFound, bottom-top)
	}
	return findAlignmentPattern(d.image, left, top, right-left, bottom-top, moduleSize, opts)
}
