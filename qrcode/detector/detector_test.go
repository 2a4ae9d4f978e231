package detector

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qrscan "github.com/ericlevine/qrscan"
	"github.com/ericlevine/qrscan/bitutil"
	"github.com/ericlevine/qrscan/internal/qrtest"
)

func TestComputeDimension(t *testing.T) {
	tests := []struct {
		modules int
		want    int
	}{
		{14, 21},
		{15, 21},
		{17, 25},
		{18, 25},
		{170, 177},
	}
	for _, tt := range tests {
		side := float64(tt.modules) * 4
		got, err := computeDimension(
			&FinderPattern{X: 10, Y: 10},
			&FinderPattern{X: 10 + side, Y: 10},
			&FinderPattern{X: 10, Y: 10 + side},
			4,
		)
		require.NoError(t, err, "%d modules apart", tt.modules)
		assert.Equal(t, tt.want, got, "%d modules apart", tt.modules)
	}

	_, err := computeDimension(&FinderPattern{}, &FinderPattern{X: 64}, &FinderPattern{Y: 64}, 4)
	assert.ErrorIs(t, err, qrscan.ErrNotFound)
}

func TestFinderPatternMerging(t *testing.T) {
	p := &FinderPattern{X: 100, Y: 50, EstimatedModuleSize: 4, Count: 1}
	assert.True(t, p.aboutEquals(4.5, 52, 103))
	assert.False(t, p.aboutEquals(4, 55, 100), "too far down")
	assert.False(t, p.aboutEquals(9.5, 50, 100), "module size too different")

	merged := p.combineEstimate(53, 103, 5)
	assert.Equal(t, 2, merged.Count)
	assert.InDelta(t, 101.5, merged.X, 1e-9)
	assert.InDelta(t, 51.5, merged.Y, 1e-9)
	assert.InDelta(t, 4.5, merged.EstimatedModuleSize, 1e-9)

	merged = merged.combineEstimate(50, 100, 4.5)
	assert.Equal(t, 3, merged.Count)
	assert.InDelta(t, 101, merged.X, 1e-9)
	assert.InDelta(t, 51, merged.Y, 1e-9)
}

func TestHandlePossibleCenterMergesRepeatedSightings(t *testing.T) {
	// One finder pattern at 4 pixels per module, spanning pixels 20..47.
	image := bitutil.NewBitMatrix(80)
	image.SetRegion(20, 20, 28, 28)
	for y := 24; y < 44; y++ {
		for x := 24; x < 44; x++ {
			image.Unset(x, y)
		}
	}
	image.SetRegion(28, 28, 12, 12)

	var notified []qrscan.ResultPoint
	opts := &qrscan.DecodeOptions{ResultPointCallback: func(p qrscan.ResultPoint) {
		notified = append(notified, p)
	}}
	s := &finderScan{image: image, opts: opts}
	runs := [5]int{4, 4, 12, 4, 4}

	require.True(t, s.handlePossibleCenter(runs, 32, 48))
	require.True(t, s.handlePossibleCenter(runs, 36, 48))

	require.Len(t, s.possibleCenters, 1)
	center := s.possibleCenters[0]
	assert.Equal(t, 2, center.Count)
	assert.InDelta(t, 34, center.X, 1e-9)
	assert.InDelta(t, 34, center.Y, 1e-9)
	assert.InDelta(t, 4, center.EstimatedModuleSize, 1e-9)
	assert.Len(t, notified, 1, "only new candidates are reported")

	assert.False(t, s.handlePossibleCenter(runs, 10, 48), "row above the pattern")
	assert.Len(t, s.possibleCenters, 1)
}

func TestSelectBestPatterns(t *testing.T) {
	tl := &FinderPattern{X: 30, Y: 30, EstimatedModuleSize: 4, Count: 3}
	tr := &FinderPattern{X: 100, Y: 30, EstimatedModuleSize: 4.1, Count: 3}
	bl := &FinderPattern{X: 30, Y: 100, EstimatedModuleSize: 3.9, Count: 3}
	// A decoy that would make a worse triangle.
	decoy := &FinderPattern{X: 120, Y: 140, EstimatedModuleSize: 4, Count: 2}
	// Too large to pair with the others.
	big := &FinderPattern{X: 100, Y: 100, EstimatedModuleSize: 9, Count: 2}

	s := &finderScan{possibleCenters: []*FinderPattern{decoy, tr, big, bl, tl}}
	best, err := s.selectBestPatterns()
	require.NoError(t, err)
	info := newFinderPatternInfo(best)
	assert.Same(t, tl, info.TopLeft)
	assert.Same(t, tr, info.TopRight)
	assert.Same(t, bl, info.BottomLeft)

	s = &finderScan{possibleCenters: []*FinderPattern{tl, tr}}
	_, err = s.selectBestPatterns()
	assert.ErrorIs(t, err, qrscan.ErrNotFound)
}

func TestFoundPatternCross(t *testing.T) {
	assert.True(t, foundPatternCross([5]int{4, 4, 12, 4, 4}))
	assert.True(t, foundPatternCross([5]int{3, 5, 13, 4, 3}))
	assert.False(t, foundPatternCross([5]int{4, 4, 4, 4, 4}))
	assert.False(t, foundPatternCross([5]int{4, 0, 12, 4, 4}))
	assert.False(t, foundPatternCross([5]int{1, 1, 2, 1, 1}))
}

func TestFindFinderPatterns(t *testing.T) {
	const moduleSize, quiet = 4, 4
	symbol, _ := qrtest.Symbol(t, "FINDER", qrtest.LevelM)
	image := qrtest.Render(symbol, moduleSize, quiet)
	dimension := float64(symbol.Width())

	var seen []qrscan.ResultPoint
	opts := &qrscan.DecodeOptions{ResultPointCallback: func(p qrscan.ResultPoint) { seen = append(seen, p) }}
	info, err := FindFinderPatterns(image, opts)
	require.NoError(t, err)

	near := (quiet + 3.5) * moduleSize
	far := (quiet + dimension - 3.5) * moduleSize
	assert.InDelta(t, near, info.TopLeft.X, 1)
	assert.InDelta(t, near, info.TopLeft.Y, 1)
	assert.InDelta(t, far, info.TopRight.X, 1)
	assert.InDelta(t, near, info.TopRight.Y, 1)
	assert.InDelta(t, near, info.BottomLeft.X, 1)
	assert.InDelta(t, far, info.BottomLeft.Y, 1)
	assert.InDelta(t, moduleSize, info.TopLeft.EstimatedModuleSize, 0.5)
	assert.GreaterOrEqual(t, len(seen), 3)
}

func TestFindFinderPatternsBlankImage(t *testing.T) {
	_, err := FindFinderPatterns(bitutil.NewBitMatrix(200), nil)
	assert.ErrorIs(t, err, qrscan.ErrNotFound)

	_, err = NewDetector(bitutil.NewBitMatrix(200)).Detect(&qrscan.DecodeOptions{TryHarder: true})
	assert.True(t, errors.Is(err, qrscan.ErrNotFound))
}

func TestDetectSamplesSymbol(t *testing.T) {
	tests := []struct {
		name       string
		version    int
		moduleSize int
		alignment  bool
	}{
		{"version 1", 1, 4, false},
		{"version 2", 2, 3, true},
		{"version 7", 7, 5, true},
		{"version 10 try harder", 10, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			symbol := qrtest.SymbolVersion(t, "DETECT ME", tt.version, qrtest.LevelL)
			image := qrtest.Render(symbol, tt.moduleSize, 4)

			result, err := NewDetector(image).Detect(&qrscan.DecodeOptions{TryHarder: tt.version == 10})
			require.NoError(t, err)
			assert.True(t, symbol.Equals(result.Bits), "sampled grid differs:\n%s", result.Bits)
			if tt.alignment {
				require.Len(t, result.Points, 4)
				want := (4 + float64(symbol.Width()) - 6.5) * float64(tt.moduleSize)
				assert.InDelta(t, want, result.Points[3].X, 1.5)
				assert.InDelta(t, want, result.Points[3].Y, 1.5)
			} else {
				assert.Len(t, result.Points, 3)
			}
		})
	}
}

func TestDetectModuleSize(t *testing.T) {
	symbol := qrtest.SymbolVersion(t, "SIZE", 3, qrtest.LevelQ)
	image := qrtest.Render(symbol, 6, 4)
	info, err := FindFinderPatterns(image, nil)
	require.NoError(t, err)

	d := NewDetector(image)
	assert.InDelta(t, 6, d.calculateModuleSize(info.TopLeft, info.TopRight, info.BottomLeft), 0.5)
}
