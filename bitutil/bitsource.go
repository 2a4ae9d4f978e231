package bitutil

import (
	"errors"
	"fmt"
)

// ErrNotEnoughBits is returned when a read asks for more bits than remain.
var ErrNotEnoughBits = errors.New("bitsource: not enough bits")

// BitSource reads MSB-first bit fields of arbitrary width from a byte slice.
type BitSource struct {
	bytes      []byte
	byteOffset int
	bitOffset  int
}

// NewBitSource creates a new BitSource from a byte slice.
func NewBitSource(bytes []byte) *BitSource {
	return &BitSource{bytes: bytes}
}

// BitOffset returns the index of the next bit within the current byte.
func (bs *BitSource) BitOffset() int { return bs.bitOffset }

// ByteOffset returns the index of the next byte to be read.
func (bs *BitSource) ByteOffset() int { return bs.byteOffset }

// ReadBits reads numBits (1..32) bits and returns them as the low bits of an
// int.
func (bs *BitSource) ReadBits(numBits int) (int, error) {
	if numBits < 1 || numBits > 32 {
		return 0, fmt.Errorf("bitsource: cannot read %d bits", numBits)
	}
	if numBits > bs.Available() {
		return 0, fmt.Errorf("%w: want %d, have %d", ErrNotEnoughBits, numBits, bs.Available())
	}
	result := 0
	for numBits > 0 {
		bitsLeft := 8 - bs.bitOffset
		toRead := min(numBits, bitsLeft)
		shift := bitsLeft - toRead
		mask := (1 << uint(toRead)) - 1
		result = (result << uint(toRead)) | ((int(bs.bytes[bs.byteOffset]) >> uint(shift)) & mask)
		numBits -= toRead
		bs.bitOffset += toRead
		if bs.bitOffset == 8 {
			bs.bitOffset = 0
			bs.byteOffset++
		}
	}
	return result, nil
}

// Available returns the number of bits that can still be read.
func (bs *BitSource) Available() int {
	return 8*(len(bs.bytes)-bs.byteOffset) - bs.bitOffset
}
