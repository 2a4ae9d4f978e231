// Package qrcode reads QR Code symbols from binary images.
package qrcode

import (
	"fmt"
	"math"

	qrscan "github.com/ericlevine/qrscan"
	"github.com/ericlevine/qrscan/bitutil"
	"github.com/ericlevine/qrscan/internal"
	"github.com/ericlevine/qrscan/qrcode/decoder"
	"github.com/ericlevine/qrscan/qrcode/detector"
)

// Reader decodes QR Codes from binary images. It is safe for concurrent use.
type Reader struct {
	dec *decoder.Decoder
}

// NewReader creates a new QR Code Reader.
func NewReader() *Reader {
	return &Reader{
		dec: decoder.NewDecoder(),
	}
}

// Decode locates and decodes a QR Code in the given image.
func (r *Reader) Decode(image *qrscan.BinaryBitmap, opts *qrscan.DecodeOptions) (*qrscan.Result, error) {
	matrix, err := image.BlackMatrix()
	if err != nil {
		return nil, err
	}

	var dr *internal.DecoderResult
	var points []qrscan.ResultPoint
	if opts != nil && opts.PureBarcode {
		bits, err := extractPureBits(matrix)
		if err != nil {
			return nil, err
		}
		if dr, err = r.dec.Decode(bits, opts); err != nil {
			return nil, err
		}
	} else {
		detected, err := detector.NewDetector(matrix).Detect(opts)
		if err != nil {
			return nil, err
		}
		if dr, err = r.dec.Decode(detected.Bits, opts); err != nil {
			return nil, err
		}
		points = detected.Points
	}

	// A mirrored symbol has its bottom-left and top-right finders swapped.
	if dr.Mirrored && len(points) >= 3 {
		points[0], points[2] = points[2], points[0]
	}

	result := qrscan.NewResult(dr.Text, dr.RawBytes, points, qrscan.FormatQRCode)
	populateMetadata(result, dr)
	return result, nil
}

func populateMetadata(result *qrscan.Result, dr *internal.DecoderResult) {
	if dr.ByteSegments != nil {
		result.PutMetadata(qrscan.MetadataByteSegments, dr.ByteSegments)
	}
	if dr.ECLevel != "" {
		result.PutMetadata(qrscan.MetadataErrorCorrectionLevel, dr.ECLevel)
	}
	if dr.HasStructuredAppend() {
		result.PutMetadata(qrscan.MetadataStructuredAppendSequence, dr.StructuredAppendSequence)
		result.PutMetadata(qrscan.MetadataStructuredAppendParity, dr.StructuredAppendParity)
	}
	result.PutMetadata(qrscan.MetadataErrorsCorrected, dr.ErrorsCorrected)
	result.PutMetadata(qrscan.MetadataSymbologyIdentifier, fmt.Sprintf("]Q%d", dr.SymbologyModifier))
	result.PutMetadata(qrscan.MetadataVersion, dr.Version)
	if dr.Mirrored {
		result.PutMetadata(qrscan.MetadataMirrored, true)
	}
}

// extractPureBits reads the symbol straight off an image that holds only
// an unrotated, unskewed symbol surrounded by light pixels.
func extractPureBits(image *bitutil.BitMatrix) (*bitutil.BitMatrix, error) {
	leftTopBlack := image.TopLeftOnBit()
	rightBottomBlack := image.BottomRightOnBit()
	if leftTopBlack == nil || rightBottomBlack == nil {
		return nil, fmt.Errorf("%w: image has no dark pixels", qrscan.ErrNotFound)
	}

	moduleSize, err := pureModuleSize(leftTopBlack, image)
	if err != nil {
		return nil, err
	}

	top, bottom := leftTopBlack[1], rightBottomBlack[1]
	left, right := leftTopBlack[0], rightBottomBlack[0]
	if left >= right || top >= bottom {
		return nil, fmt.Errorf("%w: degenerate symbol bounds", qrscan.ErrNotFound)
	}

	if bottom-top != right-left {
		// The bottom-right module is light, so the last dark pixel found
		// is elsewhere in the last row. Assume a square.
		right = left + (bottom - top)
		if right >= image.Width() {
			return nil, fmt.Errorf("%w: symbol runs off the right edge", qrscan.ErrNotFound)
		}
	}

	matrixWidth := int(math.Round(float64(right-left+1) / moduleSize))
	matrixHeight := int(math.Round(float64(bottom-top+1) / moduleSize))
	if matrixWidth <= 0 || matrixHeight <= 0 || matrixWidth != matrixHeight {
		return nil, fmt.Errorf("%w: %dx%d modules", qrscan.ErrNotFound, matrixWidth, matrixHeight)
	}

	// Sample module centers, pulled back in where rounding overshoots.
	nudge := int(moduleSize / 2.0)
	top += nudge
	left += nudge

	if over := left + int(float64(matrixWidth-1)*moduleSize) - right; over > 0 {
		if over > nudge {
			return nil, fmt.Errorf("%w: module grid overshoots right edge", qrscan.ErrNotFound)
		}
		left -= over
	}
	if over := top + int(float64(matrixHeight-1)*moduleSize) - bottom; over > 0 {
		if over > nudge {
			return nil, fmt.Errorf("%w: module grid overshoots bottom edge", qrscan.ErrNotFound)
		}
		top -= over
	}

	bits := bitutil.NewBitMatrixWithSize(matrixWidth, matrixHeight)
	for y := 0; y < matrixHeight; y++ {
		iOffset := top + int(float64(y)*moduleSize)
		for x := 0; x < matrixWidth; x++ {
			if image.Get(left+int(float64(x)*moduleSize), iOffset) {
				bits.Set(x, y)
			}
		}
	}
	return bits, nil
}

// pureModuleSize walks the diagonal of the top-left finder pattern: five
// color changes span its 7 modules.
func pureModuleSize(leftTopBlack []int, image *bitutil.BitMatrix) (float64, error) {
	height, width := image.Height(), image.Width()
	x, y := leftTopBlack[0], leftTopBlack[1]
	inBlack := true
	transitions := 0
	for x < width && y < height {
		if inBlack != image.Get(x, y) {
			transitions++
			if transitions == 5 {
				break
			}
			inBlack = !inBlack
		}
		x++
		y++
	}
	if x == width || y == height {
		return 0, fmt.Errorf("%w: no finder pattern at the top-left corner", qrscan.ErrNotFound)
	}
	return float64(x-leftTopBlack[0]) / 7.0, nil
}
