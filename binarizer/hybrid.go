package binarizer

import (
	qrscan "github.com/ericlevine/qrscan"
	"github.com/ericlevine/qrscan/bitutil"
)

const (
	blockSizePower   = 3
	blockSize        = 1 << blockSizePower
	blockSizeMask    = blockSize - 1
	minimumDimension = blockSize * 5
	minDynamicRange  = 24
)

// Hybrid thresholds each 8x8 block against the average black point of the
// surrounding 5x5 blocks, which copes with shadows and gradients. Images
// smaller than 40 pixels on a side fall back to GlobalHistogram.
type Hybrid struct {
	GlobalHistogram
}

// NewHybrid creates a new Hybrid binarizer.
func NewHybrid(source qrscan.LuminanceSource) *Hybrid {
	return &Hybrid{GlobalHistogram: GlobalHistogram{source: source}}
}

// BlackMatrix returns the locally thresholded matrix.
func (h *Hybrid) BlackMatrix() (*bitutil.BitMatrix, error) {
	width, height := h.source.Width(), h.source.Height()
	if width < minimumDimension || height < minimumDimension {
		return h.GlobalHistogram.BlackMatrix()
	}

	luminances := h.source.Matrix()
	subWidth := width >> blockSizePower
	if width&blockSizeMask != 0 {
		subWidth++
	}
	subHeight := height >> blockSizePower
	if height&blockSizeMask != 0 {
		subHeight++
	}
	g := grid{luminances: luminances, width: width, height: height, subWidth: subWidth, subHeight: subHeight}
	blackPoints := g.blackPoints()

	matrix := bitutil.NewBitMatrixWithSize(width, height)
	g.threshold(blackPoints, matrix)
	return matrix, nil
}

// grid is the block layout of one image.
type grid struct {
	luminances          []byte
	width, height       int
	subWidth, subHeight int
}

// blockOffset returns the pixel offset of block index i, clamped so the
// last block ends at the image edge.
func blockOffset(i, size int) int {
	return min(i<<blockSizePower, size-blockSize)
}

func (g *grid) threshold(blackPoints [][]int, matrix *bitutil.BitMatrix) {
	for y := 0; y < g.subHeight; y++ {
		yoffset := blockOffset(y, g.height)
		top := clampCenter(y, g.subHeight-3)
		for x := 0; x < g.subWidth; x++ {
			xoffset := blockOffset(x, g.width)
			left := clampCenter(x, g.subWidth-3)
			sum := 0
			for z := -2; z <= 2; z++ {
				row := blackPoints[top+z]
				sum += row[left-2] + row[left-1] + row[left] + row[left+1] + row[left+2]
			}
			g.thresholdBlock(xoffset, yoffset, sum/25, matrix)
		}
	}
}

// clampCenter keeps a 5x5 neighborhood centered at value inside the grid.
func clampCenter(value, limit int) int {
	if value < 2 {
		return 2
	}
	if value > limit {
		return limit
	}
	return value
}

func (g *grid) thresholdBlock(xoffset, yoffset, threshold int, matrix *bitutil.BitMatrix) {
	for y, offset := 0, yoffset*g.width+xoffset; y < blockSize; y, offset = y+1, offset+g.width {
		for x := 0; x < blockSize; x++ {
			if int(g.luminances[offset+x]) <= threshold {
				matrix.Set(xoffset+x, yoffset+y)
			}
		}
	}
}

// blackPoints computes one black point per block: the block mean, or for
// low-contrast blocks half the block minimum, raised to the neighbors'
// black point when the block looks like part of a light area.
func (g *grid) blackPoints() [][]int {
	blackPoints := make([][]int, g.subHeight)
	for i := range blackPoints {
		blackPoints[i] = make([]int, g.subWidth)
	}

	for y := 0; y < g.subHeight; y++ {
		yoffset := blockOffset(y, g.height)
		for x := 0; x < g.subWidth; x++ {
			xoffset := blockOffset(x, g.width)
			sum, lo, hi := 0, 0xFF, 0
			for yy, offset := 0, yoffset*g.width+xoffset; yy < blockSize; yy, offset = yy+1, offset+g.width {
				for xx := 0; xx < blockSize; xx++ {
					pixel := int(g.luminances[offset+xx])
					sum += pixel
					lo = min(lo, pixel)
					hi = max(hi, pixel)
				}
				// Once the range is known to be wide, only the sum matters.
				if hi-lo > minDynamicRange {
					for yy, offset = yy+1, offset+g.width; yy < blockSize; yy, offset = yy+1, offset+g.width {
						for xx := 0; xx < blockSize; xx++ {
							sum += int(g.luminances[offset+xx])
						}
					}
				}
			}

			average := sum >> (blockSizePower * 2)
			if hi-lo <= minDynamicRange {
				average = lo / 2
				if y > 0 && x > 0 {
					neighbors := (blackPoints[y-1][x] + 2*blackPoints[y][x-1] + blackPoints[y-1][x-1]) / 4
					if lo < neighbors {
						average = neighbors
					}
				}
			}
			blackPoints[y][x] = average
		}
	}
	return blackPoints
}
