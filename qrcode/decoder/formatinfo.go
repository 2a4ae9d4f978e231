package decoder

import "math/bits"

// formatInfoMask is XORed onto the 15-bit format information word.
const formatInfoMask = 0x5412

// FormatInformation is the error correction level and data mask of a symbol.
type FormatInformation struct {
	ECLevel  ECLevel
	DataMask DataMask
}

// formatInfoDecodeLookup pairs each masked 15-bit word with its 5 data bits.
var formatInfoDecodeLookup = [32][2]int{
	{0x5412, 0x00}, {0x5125, 0x01}, {0x5E7C, 0x02}, {0x5B4B, 0x03},
	{0x45F9, 0x04}, {0x40CE, 0x05}, {0x4F97, 0x06}, {0x4AA0, 0x07},
	{0x77C4, 0x08}, {0x72F3, 0x09}, {0x7DAA, 0x0A}, {0x789D, 0x0B},
	{0x662F, 0x0C}, {0x6318, 0x0D}, {0x6C41, 0x0E}, {0x6976, 0x0F},
	{0x1689, 0x10}, {0x13BE, 0x11}, {0x1CE7, 0x12}, {0x19D0, 0x13},
	{0x0762, 0x14}, {0x0255, 0x15}, {0x0D0C, 0x16}, {0x083B, 0x17},
	{0x355F, 0x18}, {0x3068, 0x19}, {0x3F31, 0x1A}, {0x3A06, 0x1B},
	{0x24B4, 0x1C}, {0x2183, 0x1D}, {0x2EDA, 0x1E}, {0x2BED, 0x1F},
}

func newFormatInformation(data int) FormatInformation {
	return FormatInformation{
		ECLevel:  ecLevelForBits[(data>>3)&0x03],
		DataMask: DataMask(data & 0x07),
	}
}

// DecodeFormatInformation decodes the two copies of the format information
// read from a symbol. Symbols whose writer left out the format mask are
// accepted too.
func DecodeFormatInformation(masked1, masked2 int) (FormatInformation, bool) {
	if fi, ok := decodeFormatInformation(masked1, masked2); ok {
		return fi, true
	}
	return decodeFormatInformation(masked1^formatInfoMask, masked2^formatInfoMask)
}

func decodeFormatInformation(masked1, masked2 int) (FormatInformation, bool) {
	bestDifference := 32
	best := 0
	for _, entry := range formatInfoDecodeLookup {
		target := entry[0]
		if target == masked1 || target == masked2 {
			return newFormatInformation(entry[1]), true
		}
		if d := bits.OnesCount(uint(masked1 ^ target)); d < bestDifference {
			best, bestDifference = entry[1], d
		}
		if masked1 != masked2 {
			if d := bits.OnesCount(uint(masked2 ^ target)); d < bestDifference {
				best, bestDifference = entry[1], d
			}
		}
	}
	// Codewords are at least 7 bits apart, so up to 3 flipped bits are
	// unambiguous.
	if bestDifference <= 3 {
		return newFormatInformation(best), true
	}
	return FormatInformation{}, false
}
