package qrscan

// DecodeOptions configures decoding behavior. A nil *DecodeOptions is valid
// and means all defaults.
type DecodeOptions struct {
	// PureBarcode hints that the image contains only an unrotated symbol
	// surrounded by a quiet zone, so detection can be skipped.
	PureBarcode bool

	// TryHarder scans every third row for finder patterns instead of
	// deriving the stride from the image height.
	TryHarder bool

	// PossibleFormats limits which formats to look for.
	PossibleFormats []Format

	// CharacterSet names the encoding for byte segments without an ECI.
	CharacterSet string

	// ResultPointCallback is invoked for every new finder or alignment
	// pattern candidate.
	ResultPointCallback func(ResultPoint)

	// AlsoInverted retries on the inverted image (light modules on dark).
	AlsoInverted bool

	// AlsoMirrored retries a failed decode on the transposed symbol.
	AlsoMirrored bool
}

// NotifyPoint forwards p to the ResultPointCallback, if one is set.
func (o *DecodeOptions) NotifyPoint(p ResultPoint) {
	if o != nil && o.ResultPointCallback != nil {
		o.ResultPointCallback(p)
	}
}

// Reader decodes symbols from a BinaryBitmap.
type Reader interface {
	// Decode attempts to decode a symbol from the image.
	Decode(image *BinaryBitmap, opts *DecodeOptions) (*Result, error)
}
