// Package internal holds the result types passed between the detector,
// the decoder and the reader.
package internal

// DecoderResult is the outcome of decoding a sampled symbol.
type DecoderResult struct {
	RawBytes        []byte
	Text            string
	ByteSegments    [][]byte
	ECLevel         string
	Version         int
	ErrorsCorrected int

	// StructuredAppendSequence packs the symbol index (high nibble) and
	// total count minus one (low nibble). -1 when absent.
	StructuredAppendSequence int
	StructuredAppendParity   int

	// SymbologyModifier is the digit of the ]Q symbology identifier.
	SymbologyModifier int

	// Mirrored is set when the symbol only decoded after transposition.
	Mirrored bool
}

// NewDecoderResult creates a DecoderResult without structured append data.
func NewDecoderResult(rawBytes []byte, text string, byteSegments [][]byte, ecLevel string) *DecoderResult {
	return &DecoderResult{
		RawBytes:                 rawBytes,
		Text:                     text,
		ByteSegments:             byteSegments,
		ECLevel:                  ecLevel,
		StructuredAppendSequence: -1,
		StructuredAppendParity:   -1,
	}
}

// HasStructuredAppend reports whether the symbol is part of a sequence.
func (d *DecoderResult) HasStructuredAppend() bool {
	return d.StructuredAppendParity >= 0 && d.StructuredAppendSequence >= 0
}
