package decoder

import (
	"fmt"

	qrscan "github.com/ericlevine/qrscan"
	"github.com/ericlevine/qrscan/bitutil"
)

// BitMatrixParser reads format information, version information and
// codewords from a sampled symbol. It unmasks the matrix in place.
type BitMatrixParser struct {
	bits       *bitutil.BitMatrix
	version    *Version
	formatInfo *FormatInformation
	mirror     bool
}

// NewBitMatrixParser checks that bits has a legal QR Code size.
func NewBitMatrixParser(bits *bitutil.BitMatrix) (*BitMatrixParser, error) {
	dimension := bits.Height()
	if dimension < 21 || dimension&0x03 != 1 || bits.Width() != dimension {
		return nil, fmt.Errorf("%w: %dx%d is not a symbol size", qrscan.ErrFormat, bits.Width(), dimension)
	}
	return &BitMatrixParser{bits: bits}, nil
}

// ReadFormatInformation decodes the format information from its two copies
// around the finder patterns.
func (p *BitMatrixParser) ReadFormatInformation() (*FormatInformation, error) {
	if p.formatInfo != nil {
		return p.formatInfo, nil
	}

	// Around the top-left finder pattern, skipping the timing pattern
	first := 0
	for x := 0; x < 6; x++ {
		first = p.copyBit(x, 8, first)
	}
	first = p.copyBit(7, 8, first)
	first = p.copyBit(8, 8, first)
	first = p.copyBit(8, 7, first)
	for y := 5; y >= 0; y-- {
		first = p.copyBit(8, y, first)
	}

	// Split between the bottom-left and top-right finder patterns
	dimension := p.bits.Height()
	second := 0
	for y := dimension - 1; y >= dimension-7; y-- {
		second = p.copyBit(8, y, second)
	}
	for x := dimension - 8; x < dimension; x++ {
		second = p.copyBit(x, 8, second)
	}

	fi, ok := DecodeFormatInformation(first, second)
	if !ok {
		return nil, fmt.Errorf("%w: unreadable format information 0x%04x/0x%04x", qrscan.ErrFormat, first, second)
	}
	p.formatInfo = &fi
	return p.formatInfo, nil
}

// ReadVersion returns the symbol version. Versions up to 6 follow from the
// dimension; larger ones are read from the top-right block and, failing
// that, the bottom-left block. A decoded version must match the dimension.
func (p *BitMatrixParser) ReadVersion() (*Version, error) {
	if p.version != nil {
		return p.version, nil
	}
	dimension := p.bits.Height()
	if provisional := (dimension - 17) / 4; provisional <= 6 {
		return VersionForNumber(provisional)
	}

	// Top-right: 3 wide by 6 tall
	versionBits := 0
	for y := 5; y >= 0; y-- {
		for x := dimension - 9; x >= dimension-11; x-- {
			versionBits = p.copyBit(x, y, versionBits)
		}
	}
	if v, ok := DecodeVersionInformation(versionBits); ok && v.Dimension() == dimension {
		p.version = v
		return v, nil
	}

	// Bottom-left: 6 wide by 3 tall
	versionBits = 0
	for x := 5; x >= 0; x-- {
		for y := dimension - 9; y >= dimension-11; y-- {
			versionBits = p.copyBit(x, y, versionBits)
		}
	}
	if v, ok := DecodeVersionInformation(versionBits); ok && v.Dimension() == dimension {
		p.version = v
		return v, nil
	}
	return nil, fmt.Errorf("%w: unreadable version information in %d-module symbol", qrscan.ErrFormat, dimension)
}

// copyBit appends module (x, y), or (y, x) when mirrored, to acc.
func (p *BitMatrixParser) copyBit(x, y, acc int) int {
	if p.mirror {
		x, y = y, x
	}
	if p.bits.Get(x, y) {
		return acc<<1 | 1
	}
	return acc << 1
}

// ReadCodewords unmasks the matrix and reads the data and error correction
// codewords in placement order: column pairs from the right edge, alternating
// upward and downward, stepping over the vertical timing column and every
// function module.
func (p *BitMatrixParser) ReadCodewords() ([]byte, error) {
	formatInfo, err := p.ReadFormatInformation()
	if err != nil {
		return nil, err
	}
	version, err := p.ReadVersion()
	if err != nil {
		return nil, err
	}

	dimension := p.bits.Height()
	formatInfo.DataMask.Unmask(p.bits, dimension)
	functionPattern := version.FunctionPattern()

	result := make([]byte, 0, version.TotalCodewords)
	current, bitsRead := 0, 0
	readingUp := true
	for x := dimension - 1; x > 0; x -= 2 {
		if x == 6 {
			x--
		}
		for count := 0; count < dimension; count++ {
			y := count
			if readingUp {
				y = dimension - 1 - count
			}
			for col := 0; col < 2; col++ {
				if functionPattern.Get(x-col, y) {
					continue
				}
				current <<= 1
				if p.bits.Get(x-col, y) {
					current |= 1
				}
				if bitsRead++; bitsRead == 8 {
					if len(result) == version.TotalCodewords {
						return nil, fmt.Errorf("%w: more than %d codewords", qrscan.ErrFormat, version.TotalCodewords)
					}
					result = append(result, byte(current))
					current, bitsRead = 0, 0
				}
			}
		}
		readingUp = !readingUp
	}
	if len(result) != version.TotalCodewords {
		return nil, fmt.Errorf("%w: read %d codewords, want %d", qrscan.ErrFormat, len(result), version.TotalCodewords)
	}
	return result, nil
}

// Remask undoes ReadCodewords' unmasking.
func (p *BitMatrixParser) Remask() {
	if p.formatInfo == nil {
		return
	}
	p.formatInfo.DataMask.Unmask(p.bits, p.bits.Height())
}

// SetMirror forgets the parsed format and version and switches to reading
// them with transposed coordinates.
func (p *BitMatrixParser) SetMirror(mirror bool) {
	p.version = nil
	p.formatInfo = nil
	p.mirror = mirror
}

// Mirror transposes the matrix.
func (p *BitMatrixParser) Mirror() {
	p.bits.Transpose()
}
