package transform

import (
	"errors"
	"fmt"

	"github.com/ericlevine/qrscan/bitutil"
)

// ErrOutOfImage is returned when a sampled module center falls more than
// one pixel outside the image.
var ErrOutOfImage = errors.New("transform: sample point outside image")

// SampleGrid builds a dimension x dimension matrix whose module (x, y) is
// the image pixel under t applied to the module center (x+0.5, y+0.5).
func SampleGrid(image *bitutil.BitMatrix, dimension int, t *Perspective) (*bitutil.BitMatrix, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension %d", ErrOutOfImage, dimension)
	}
	bits := bitutil.NewBitMatrix(dimension)
	row := make([]float64, 2*dimension)
	for y := 0; y < dimension; y++ {
		for x := 0; x < dimension; x++ {
			row[2*x] = float64(x) + 0.5
			row[2*x+1] = float64(y) + 0.5
		}
		t.ApplyAll(row)
		if err := CheckAndNudgePoints(image, row); err != nil {
			return nil, err
		}
		for x := 0; x < dimension; x++ {
			ix, iy := int(row[2*x]), int(row[2*x+1])
			if ix < 0 || iy < 0 || ix >= image.Width() || iy >= image.Height() {
				return nil, fmt.Errorf("%w: (%d,%d)", ErrOutOfImage, ix, iy)
			}
			if image.Get(ix, iy) {
				bits.Set(x, y)
			}
		}
	}
	return bits, nil
}

// CheckAndNudgePoints walks inward from both ends of the interleaved x, y
// list, pulling points that sit exactly one pixel outside the image back onto
// its edge. It stops from each end at the first point that needed no nudge.
// Points further out fail with ErrOutOfImage.
func CheckAndNudgePoints(image *bitutil.BitMatrix, xy []float64) error {
	width, height := image.Width(), image.Height()
	for offset := 0; offset+1 < len(xy); offset += 2 {
		nudged, err := nudge(xy, offset, width, height)
		if err != nil {
			return err
		}
		if !nudged {
			break
		}
	}
	for offset := len(xy) - 2; offset >= 0; offset -= 2 {
		nudged, err := nudge(xy, offset, width, height)
		if err != nil {
			return err
		}
		if !nudged {
			break
		}
	}
	return nil
}

func nudge(xy []float64, offset, width, height int) (bool, error) {
	x, y := int(xy[offset]), int(xy[offset+1])
	if x < -1 || x > width || y < -1 || y > height {
		return false, fmt.Errorf("%w: (%d,%d)", ErrOutOfImage, x, y)
	}
	nudged := false
	switch x {
	case -1:
		xy[offset], nudged = 0, true
	case width:
		xy[offset], nudged = float64(width-1), true
	}
	switch y {
	case -1:
		xy[offset+1], nudged = 0, true
	case height:
		xy[offset+1], nudged = float64(height-1), true
	}
	return nudged, nil
}
