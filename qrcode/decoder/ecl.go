// Package decoder turns a sampled QR Code module grid into text: it reads
// format and version information, unmasks and extracts codewords, corrects
// errors block by block and parses the resulting bit stream.
package decoder

import (
	"fmt"

	qrscan "github.com/ericlevine/qrscan"
)

// ECLevel is one of the four QR Code error correction levels.
type ECLevel int

const (
	ECLevelL ECLevel = iota
	ECLevelM
	ECLevelQ
	ECLevelH
)

// ecLevelForBits is indexed by the two level bits of the format information.
var ecLevelForBits = [4]ECLevel{ECLevelM, ECLevelL, ECLevelH, ECLevelQ}

// ECLevelForBits returns the level encoded by the two format information bits.
func ECLevelForBits(bits int) (ECLevel, error) {
	if bits < 0 || bits >= len(ecLevelForBits) {
		return 0, fmt.Errorf("%w: error correction bits %d", qrscan.ErrFormat, bits)
	}
	return ecLevelForBits[bits], nil
}

// Bits returns the 2-bit encoding of this level.
func (l ECLevel) Bits() int {
	switch l {
	case ECLevelL:
		return 0x01
	case ECLevelM:
		return 0x00
	case ECLevelQ:
		return 0x03
	case ECLevelH:
		return 0x02
	}
	panic(fmt.Sprintf("decoder: invalid EC level %d", int(l)))
}

// CorrectionPercent returns the approximate share of codewords that can be
// restored at this level.
func (l ECLevel) CorrectionPercent() int {
	switch l {
	case ECLevelL:
		return 7
	case ECLevelM:
		return 15
	case ECLevelQ:
		return 25
	case ECLevelH:
		return 30
	}
	panic(fmt.Sprintf("decoder: invalid EC level %d", int(l)))
}

func (l ECLevel) String() string {
	switch l {
	case ECLevelL:
		return "L"
	case ECLevelM:
		return "M"
	case ECLevelQ:
		return "Q"
	case ECLevelH:
		return "H"
	}
	return "?"
}
