package decoder

import (
	"fmt"

	"golang.org/x/text/encoding"

	qrscan "github.com/ericlevine/qrscan"
	"github.com/ericlevine/qrscan/bitutil"
	"github.com/ericlevine/qrscan/charset"
	"github.com/ericlevine/qrscan/internal"
	"github.com/ericlevine/qrscan/reedsolomon"
)

// Decoder decodes sampled QR Code symbols. It holds no per-call state and is
// safe for concurrent use.
type Decoder struct {
	rsDecoder *reedsolomon.Decoder
}

// NewDecoder creates a new QR Code Decoder.
func NewDecoder() *Decoder {
	return &Decoder{
		rsDecoder: reedsolomon.NewDecoder(reedsolomon.QRCodeField256),
	}
}

// Decode decodes a sampled symbol. bits is unmasked in place. With
// opts.AlsoMirrored set, a failed decode is retried on the transposed
// symbol; if that fails too the first error is returned.
func (d *Decoder) Decode(bits *bitutil.BitMatrix, opts *qrscan.DecodeOptions) (*internal.DecoderResult, error) {
	parser, err := NewBitMatrixParser(bits)
	if err != nil {
		return nil, err
	}
	hint := characterSetHint(opts)

	result, err := d.decodeParser(parser, hint)
	if err == nil || opts == nil || !opts.AlsoMirrored {
		return result, err
	}

	parser.Remask()
	parser.SetMirror(true)
	if _, verr := parser.ReadVersion(); verr != nil {
		return nil, err
	}
	if _, ferr := parser.ReadFormatInformation(); ferr != nil {
		return nil, err
	}
	parser.Mirror()
	result, merr := d.decodeParser(parser, hint)
	if merr != nil {
		return nil, err
	}
	result.Mirrored = true
	return result, nil
}

// characterSetHint resolves opts.CharacterSet. Names that do not resolve are
// ignored and byte segments fall back to guessing.
func characterSetHint(opts *qrscan.DecodeOptions) encoding.Encoding {
	if opts == nil || opts.CharacterSet == "" {
		return nil
	}
	enc, err := charset.Lookup(opts.CharacterSet)
	if err != nil {
		return nil
	}
	return enc
}

func (d *Decoder) decodeParser(parser *BitMatrixParser, hint encoding.Encoding) (*internal.DecoderResult, error) {
	version, err := parser.ReadVersion()
	if err != nil {
		return nil, err
	}
	formatInfo, err := parser.ReadFormatInformation()
	if err != nil {
		return nil, err
	}
	codewords, err := parser.ReadCodewords()
	if err != nil {
		return nil, err
	}
	blocks, err := GetDataBlocks(codewords, version, formatInfo.ECLevel)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, block := range blocks {
		total += block.NumDataCodewords
	}
	data := make([]byte, 0, total)
	errorsCorrected := 0
	for i, block := range blocks {
		corrected, err := d.correctErrors(block.Codewords, block.NumDataCodewords)
		if err != nil {
			return nil, fmt.Errorf("block %d of %d: %w", i+1, len(blocks), err)
		}
		errorsCorrected += corrected
		data = append(data, block.Codewords[:block.NumDataCodewords]...)
	}

	result, err := DecodeBitStream(data, version, formatInfo.ECLevel, hint)
	if err != nil {
		return nil, err
	}
	result.ErrorsCorrected = errorsCorrected
	return result, nil
}

// correctErrors runs Reed-Solomon correction over one block and writes the
// corrected data codewords back.
func (d *Decoder) correctErrors(codewords []byte, numDataCodewords int) (int, error) {
	ints := make([]int, len(codewords))
	for i, c := range codewords {
		ints[i] = int(c)
	}
	corrected, err := d.rsDecoder.Decode(ints, len(codewords)-numDataCodewords)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", qrscan.ErrChecksum, err)
	}
	for i := 0; i < numDataCodewords; i++ {
		codewords[i] = byte(ints[i])
	}
	return corrected, nil
}
