// Package bitutil provides packed bit containers shared by the detector and
// decoder.
package bitutil

import (
	"fmt"
	"math/bits"
	"strings"
)

// BitMatrix is a 2D grid of bits packed into uint32 rows. x is the column,
// y is the row, and the origin is top-left. A set bit is a dark module.
// Accessing a coordinate outside the matrix panics.
type BitMatrix struct {
	width   int
	height  int
	rowSize int
	data    []uint32
}

// NewBitMatrix creates a new square BitMatrix with the given dimension.
func NewBitMatrix(dimension int) *BitMatrix {
	return NewBitMatrixWithSize(dimension, dimension)
}

// NewBitMatrixWithSize creates a new BitMatrix with the given width and height.
func NewBitMatrixWithSize(width, height int) *BitMatrix {
	if width < 1 || height < 1 {
		panic("bitmatrix: dimensions must be greater than 0")
	}
	rowSize := (width + 31) / 32
	return &BitMatrix{
		width:   width,
		height:  height,
		rowSize: rowSize,
		data:    make([]uint32, rowSize*height),
	}
}

// ParseBoolMatrix creates a BitMatrix from rows of booleans.
func ParseBoolMatrix(image [][]bool) *BitMatrix {
	bm := NewBitMatrixWithSize(len(image[0]), len(image))
	for y, row := range image {
		for x, dark := range row {
			if dark {
				bm.Set(x, y)
			}
		}
	}
	return bm
}

// ParseStringMatrix parses the output of StringWithChars back into a matrix.
// Line breaks end rows; any other text must be setStr or unsetStr.
func ParseStringMatrix(repr, setStr, unsetStr string) (*BitMatrix, error) {
	var rows [][]bool
	for _, line := range strings.FieldsFunc(repr, func(r rune) bool { return r == '\n' || r == '\r' }) {
		var row []bool
		for len(line) > 0 {
			switch {
			case strings.HasPrefix(line, setStr):
				row = append(row, true)
				line = line[len(setStr):]
			case strings.HasPrefix(line, unsetStr):
				row = append(row, false)
				line = line[len(unsetStr):]
			default:
				return nil, fmt.Errorf("bitmatrix: illegal character in %q", line)
			}
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, fmt.Errorf("bitmatrix: row %d has %d bits, want %d", len(rows), len(row), len(rows[0]))
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("bitmatrix: empty matrix")
	}
	return ParseBoolMatrix(rows), nil
}

func (bm *BitMatrix) offset(x, y int) int {
	if x < 0 || y < 0 || x >= bm.width || y >= bm.height {
		panic(fmt.Sprintf("bitmatrix: (%d,%d) outside %dx%d", x, y, bm.width, bm.height))
	}
	return y*bm.rowSize + x/32
}

// Get returns true if the bit at (x, y) is set.
func (bm *BitMatrix) Get(x, y int) bool {
	return (bm.data[bm.offset(x, y)]>>uint(x&0x1f))&1 != 0
}

// Set sets the bit at (x, y).
func (bm *BitMatrix) Set(x, y int) {
	bm.data[bm.offset(x, y)] |= 1 << uint(x&0x1f)
}

// Unset clears the bit at (x, y).
func (bm *BitMatrix) Unset(x, y int) {
	bm.data[bm.offset(x, y)] &^= 1 << uint(x&0x1f)
}

// Flip flips the bit at (x, y).
func (bm *BitMatrix) Flip(x, y int) {
	bm.data[bm.offset(x, y)] ^= 1 << uint(x&0x1f)
}

// FlipAll inverts every bit in the matrix.
func (bm *BitMatrix) FlipAll() {
	for i := range bm.data {
		bm.data[i] = ^bm.data[i]
	}
	if tail := bm.width & 0x1f; tail != 0 {
		mask := uint32(1)<<uint(tail) - 1
		for y := 0; y < bm.height; y++ {
			bm.data[(y+1)*bm.rowSize-1] &= mask
		}
	}
}

// SetRegion sets a rectangular region of bits.
func (bm *BitMatrix) SetRegion(left, top, width, height int) {
	if top < 0 || left < 0 {
		panic("bitmatrix: left and top must be nonnegative")
	}
	if height < 1 || width < 1 {
		panic("bitmatrix: height and width must be at least 1")
	}
	right := left + width
	bottom := top + height
	if bottom > bm.height || right > bm.width {
		panic("bitmatrix: region must fit inside the matrix")
	}
	for y := top; y < bottom; y++ {
		offset := y * bm.rowSize
		for x := left; x < right; x++ {
			bm.data[offset+x/32] |= 1 << uint(x&0x1f)
		}
	}
}

// Transpose mirrors a square matrix about its main diagonal in place.
func (bm *BitMatrix) Transpose() {
	if bm.width != bm.height {
		panic("bitmatrix: transpose requires a square matrix")
	}
	for x := 0; x < bm.width; x++ {
		for y := x + 1; y < bm.height; y++ {
			if bm.Get(x, y) != bm.Get(y, x) {
				bm.Flip(x, y)
				bm.Flip(y, x)
			}
		}
	}
}

// TopLeftOnBit returns the [x, y] of the first set bit in row-major order,
// or nil if none are set.
func (bm *BitMatrix) TopLeftOnBit() []int {
	i := 0
	for i < len(bm.data) && bm.data[i] == 0 {
		i++
	}
	if i == len(bm.data) {
		return nil
	}
	x := (i%bm.rowSize)*32 + bits.TrailingZeros32(bm.data[i])
	return []int{x, i / bm.rowSize}
}

// BottomRightOnBit returns the [x, y] of the last set bit in row-major
// order, or nil if none are set.
func (bm *BitMatrix) BottomRightOnBit() []int {
	i := len(bm.data) - 1
	for i >= 0 && bm.data[i] == 0 {
		i--
	}
	if i < 0 {
		return nil
	}
	x := (i%bm.rowSize)*32 + 31 - bits.LeadingZeros32(bm.data[i])
	return []int{x, i / bm.rowSize}
}

// Width returns the width.
func (bm *BitMatrix) Width() int { return bm.width }

// Height returns the height.
func (bm *BitMatrix) Height() int { return bm.height }

// Clone returns a deep copy of the BitMatrix.
func (bm *BitMatrix) Clone() *BitMatrix {
	d := make([]uint32, len(bm.data))
	copy(d, bm.data)
	return &BitMatrix{width: bm.width, height: bm.height, rowSize: bm.rowSize, data: d}
}

// String returns a string representation using "X " for set and "  " for unset.
func (bm *BitMatrix) String() string {
	return bm.StringWithChars("X ", "  ")
}

// StringWithChars returns a string representation using the given set/unset strings.
func (bm *BitMatrix) StringWithChars(setString, unsetString string) string {
	var sb strings.Builder
	sb.Grow(bm.height * (bm.width*len(setString) + 1))
	for y := 0; y < bm.height; y++ {
		for x := 0; x < bm.width; x++ {
			if bm.Get(x, y) {
				sb.WriteString(setString)
			} else {
				sb.WriteString(unsetString)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Equals reports whether both matrices have the same size and bits.
func (bm *BitMatrix) Equals(other *BitMatrix) bool {
	if bm.width != other.width || bm.height != other.height {
		return false
	}
	for y := 0; y < bm.height; y++ {
		for x := 0; x < bm.width; x++ {
			if bm.Get(x, y) != other.Get(x, y) {
				return false
			}
		}
	}
	return true
}
