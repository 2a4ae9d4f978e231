package decoder

import (
	"fmt"

	qrscan "github.com/ericlevine/qrscan"
)

// Mode is a segment mode indicator.
type Mode int

const (
	ModeTerminator         Mode = 0x00
	ModeNumeric            Mode = 0x01
	ModeAlphanumeric       Mode = 0x02
	ModeStructuredAppend   Mode = 0x03
	ModeByte               Mode = 0x04
	ModeFNC1FirstPosition  Mode = 0x05
	ModeECI                Mode = 0x07
	ModeKanji              Mode = 0x08
	ModeFNC1SecondPosition Mode = 0x09
	// ModeHanzi is the GB/T 18284-2000 extension for GB2312 text.
	ModeHanzi Mode = 0x0D
)

// ModeForBits returns the Mode for the given 4-bit value.
func ModeForBits(bits int) (Mode, error) {
	switch m := Mode(bits); m {
	case ModeTerminator, ModeNumeric, ModeAlphanumeric, ModeStructuredAppend,
		ModeByte, ModeFNC1FirstPosition, ModeECI, ModeKanji,
		ModeFNC1SecondPosition, ModeHanzi:
		return m, nil
	}
	return 0, fmt.Errorf("%w: mode bits 0x%x", qrscan.ErrFormat, bits)
}

// CharacterCountBits returns the width of the character count field that
// follows this mode indicator in a symbol of the given version. Modes
// without a count return 0.
func (m Mode) CharacterCountBits(version *Version) int {
	var band int
	switch {
	case version.Number <= 9:
		band = 0
	case version.Number <= 26:
		band = 1
	default:
		band = 2
	}
	switch m {
	case ModeNumeric:
		return [3]int{10, 12, 14}[band]
	case ModeAlphanumeric:
		return [3]int{9, 11, 13}[band]
	case ModeByte:
		return [3]int{8, 16, 16}[band]
	case ModeKanji, ModeHanzi:
		return [3]int{8, 10, 12}[band]
	case ModeTerminator, ModeStructuredAppend, ModeFNC1FirstPosition,
		ModeECI, ModeFNC1SecondPosition:
		return 0
	}
	return 0
}

// Bits returns the 4-bit encoding of this mode.
func (m Mode) Bits() int {
	return int(m)
}

func (m Mode) String() string {
	switch m {
	case ModeTerminator:
		return "TERMINATOR"
	case ModeNumeric:
		return "NUMERIC"
	case ModeAlphanumeric:
		return "ALPHANUMERIC"
	case ModeStructuredAppend:
		return "STRUCTURED_APPEND"
	case ModeByte:
		return "BYTE"
	case ModeFNC1FirstPosition:
		return "FNC1_FIRST_POSITION"
	case ModeECI:
		return "ECI"
	case ModeKanji:
		return "KANJI"
	case ModeFNC1SecondPosition:
		return "FNC1_SECOND_POSITION"
	case ModeHanzi:
		return "HANZI"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}
