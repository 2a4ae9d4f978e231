package decoder

import (
	"fmt"

	"github.com/ericlevine/qrscan/bitutil"
)

// DataMask is one of the eight data mask patterns. Module (j, i) is masked,
// meaning it was inverted by the writer, when the pattern's predicate holds
// for row i and column j.
type DataMask uint8

// IsMasked reports whether the module at row i, column j is inverted.
func (m DataMask) IsMasked(i, j int) bool {
	switch m {
	case 0:
		return (i+j)&0x01 == 0
	case 1:
		return i&0x01 == 0
	case 2:
		return j%3 == 0
	case 3:
		return (i+j)%3 == 0
	case 4:
		return (i/2+j/3)&0x01 == 0
	case 5:
		return (i*j)%6 == 0
	case 6:
		return (i*j)%6 < 3
	case 7:
		return (i+j+(i*j)%3)&0x01 == 0
	}
	panic(fmt.Sprintf("decoder: invalid data mask %d", uint8(m)))
}

// Unmask flips every masked module of the top-left dimension x dimension
// square of bits. Applying it twice restores the original.
func (m DataMask) Unmask(bits *bitutil.BitMatrix, dimension int) {
	for i := 0; i < dimension; i++ {
		for j := 0; j < dimension; j++ {
			if m.IsMasked(i, j) {
				bits.Flip(j, i)
			}
		}
	}
}
