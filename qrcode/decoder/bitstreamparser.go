package decoder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/simplifiedchinese"

	qrscan "github.com/ericlevine/qrscan"
	"github.com/ericlevine/qrscan/bitutil"
	"github.com/ericlevine/qrscan/charset"
	"github.com/ericlevine/qrscan/internal"
)

const alphanumericChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"

// gb2312Subset is the only Hanzi subset indicator with a defined mapping.
const gb2312Subset = 1

// streamParser holds the state carried from segment to segment.
type streamParser struct {
	bits         *bitutil.BitSource
	version      *Version
	text         strings.Builder
	byteSegments [][]byte
	hint         encoding.Encoding
	eci          *charset.ECI
	fnc1First    bool
	fnc1Second   bool
	saSequence   int
	saParity     int
}

// DecodeBitStream parses the corrected data codewords of a symbol into text.
// hint, when not nil, decodes byte segments that carry no ECI designator;
// otherwise their encoding is guessed. Any malformed segment yields ErrFormat.
func DecodeBitStream(data []byte, version *Version, ecLevel ECLevel, hint encoding.Encoding) (*internal.DecoderResult, error) {
	p := &streamParser{
		bits:       bitutil.NewBitSource(data),
		version:    version,
		hint:       hint,
		saSequence: -1,
		saParity:   -1,
	}
	p.text.Grow(50)
	if err := p.parse(); err != nil {
		if errors.Is(err, bitutil.ErrNotEnoughBits) {
			return nil, fmt.Errorf("%w: truncated bit stream: %v", qrscan.ErrFormat, err)
		}
		return nil, err
	}

	result := internal.NewDecoderResult(data, p.text.String(), p.byteSegments, ecLevel.String())
	result.Version = version.Number
	result.StructuredAppendSequence = p.saSequence
	result.StructuredAppendParity = p.saParity
	result.SymbologyModifier = p.symbologyModifier()
	return result, nil
}

func (p *streamParser) parse() error {
	for {
		mode := ModeTerminator
		if p.bits.Available() >= 4 {
			modeBits, err := p.bits.ReadBits(4)
			if err != nil {
				return err
			}
			if mode, err = ModeForBits(modeBits); err != nil {
				return err
			}
		}
		switch mode {
		case ModeTerminator:
			return nil
		case ModeFNC1FirstPosition:
			p.fnc1First = true
		case ModeFNC1SecondPosition:
			p.fnc1Second = true
		case ModeStructuredAppend:
			if p.bits.Available() < 16 {
				return fmt.Errorf("%w: structured append header needs 16 bits, have %d", qrscan.ErrFormat, p.bits.Available())
			}
			p.saSequence, _ = p.bits.ReadBits(8)
			p.saParity, _ = p.bits.ReadBits(8)
		case ModeECI:
			value, err := p.eciValue()
			if err != nil {
				return err
			}
			eci, err := charset.ECIByValue(value)
			if err != nil {
				return fmt.Errorf("%w: %v", qrscan.ErrFormat, err)
			}
			p.eci = eci
		case ModeHanzi:
			subset, err := p.bits.ReadBits(4)
			if err != nil {
				return err
			}
			count, err := p.bits.ReadBits(mode.CharacterCountBits(p.version))
			if err != nil {
				return err
			}
			if subset == gb2312Subset {
				if err := p.doubleByteSegment(count, 0x060, 0x00A00, 0x0A1A1, 0x0A6A1, simplifiedchinese.GB18030); err != nil {
					return err
				}
			}
		case ModeNumeric, ModeAlphanumeric, ModeByte, ModeKanji:
			count, err := p.bits.ReadBits(mode.CharacterCountBits(p.version))
			if err != nil {
				return err
			}
			if err := p.segment(mode, count); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unexpected mode %v", qrscan.ErrFormat, mode)
		}
	}
}

func (p *streamParser) segment(mode Mode, count int) error {
	switch mode {
	case ModeNumeric:
		return p.numericSegment(count)
	case ModeAlphanumeric:
		return p.alphanumericSegment(count)
	case ModeByte:
		return p.byteSegment(count)
	case ModeKanji:
		return p.doubleByteSegment(count, 0x0C0, 0x01F00, 0x08140, 0x0C140, japanese.ShiftJIS)
	}
	return fmt.Errorf("%w: mode %v has no segment data", qrscan.ErrFormat, mode)
}

func (p *streamParser) fnc1InEffect() bool {
	return p.fnc1First || p.fnc1Second
}

// symbologyModifier is the digit of the ]Qn symbology identifier.
func (p *streamParser) symbologyModifier() int {
	m := 1
	switch {
	case p.fnc1First:
		m = 3
	case p.fnc1Second:
		m = 5
	}
	if p.eci != nil {
		m++
	}
	return m
}

// doubleByteSegment decodes 13-bit Kanji or Hanzi values. Each value is
// split by divisor into high and low bytes, then shifted into the double-byte
// range of enc by lowOffset or, from threshold on, highOffset.
func (p *streamParser) doubleByteSegment(count, divisor, threshold, lowOffset, highOffset int, enc encoding.Encoding) error {
	if count*13 > p.bits.Available() {
		return fmt.Errorf("%w: %d double-byte characters need %d bits, have %d",
			qrscan.ErrFormat, count, count*13, p.bits.Available())
	}
	buf := make([]byte, 0, 2*count)
	for ; count > 0; count-- {
		v, _ := p.bits.ReadBits(13)
		assembled := (v/divisor)<<8 | v%divisor
		if assembled < threshold {
			assembled += lowOffset
		} else {
			assembled += highOffset
		}
		buf = append(buf, byte(assembled>>8), byte(assembled))
	}
	s, err := charset.Decode(buf, enc)
	if err != nil {
		return fmt.Errorf("%w: %v", qrscan.ErrFormat, err)
	}
	p.text.WriteString(s)
	return nil
}

func (p *streamParser) byteSegment(count int) error {
	if 8*count > p.bits.Available() {
		return fmt.Errorf("%w: %d bytes need %d bits, have %d", qrscan.ErrFormat, count, 8*count, p.bits.Available())
	}
	raw := make([]byte, count)
	for i := range raw {
		v, _ := p.bits.ReadBits(8)
		raw[i] = byte(v)
	}
	var enc encoding.Encoding
	switch {
	case p.eci != nil:
		enc = p.eci.Encoding
	case p.hint != nil:
		enc = p.hint
	default:
		enc = charset.Guess(raw)
	}
	s, err := charset.Decode(raw, enc)
	if err != nil {
		return fmt.Errorf("%w: %v", qrscan.ErrFormat, err)
	}
	p.text.WriteString(s)
	p.byteSegments = append(p.byteSegments, raw)
	return nil
}

func alphanumericChar(value int) (byte, error) {
	if value >= len(alphanumericChars) {
		return 0, fmt.Errorf("%w: alphanumeric value %d", qrscan.ErrFormat, value)
	}
	return alphanumericChars[value], nil
}

func (p *streamParser) alphanumericSegment(count int) error {
	var seg []byte
	for ; count > 1; count -= 2 {
		if p.bits.Available() < 11 {
			return fmt.Errorf("%w: alphanumeric pair needs 11 bits", qrscan.ErrFormat)
		}
		v, _ := p.bits.ReadBits(11)
		c1, err := alphanumericChar(v / 45)
		if err != nil {
			return err
		}
		c2, err := alphanumericChar(v % 45)
		if err != nil {
			return err
		}
		seg = append(seg, c1, c2)
	}
	if count == 1 {
		if p.bits.Available() < 6 {
			return fmt.Errorf("%w: alphanumeric character needs 6 bits", qrscan.ErrFormat)
		}
		v, _ := p.bits.ReadBits(6)
		c, err := alphanumericChar(v)
		if err != nil {
			return err
		}
		seg = append(seg, c)
	}
	if p.fnc1InEffect() {
		// "%%" is a literal percent sign, a lone "%" is FNC1 (GS).
		out := seg[:0]
		for i := 0; i < len(seg); i++ {
			switch {
			case seg[i] != '%':
				out = append(out, seg[i])
			case i+1 < len(seg) && seg[i+1] == '%':
				out = append(out, '%')
				i++
			default:
				out = append(out, 0x1D)
			}
		}
		seg = out
	}
	p.text.Write(seg)
	return nil
}

func (p *streamParser) numericSegment(count int) error {
	for ; count >= 3; count -= 3 {
		if err := p.digits(10, 1000, 3); err != nil {
			return err
		}
	}
	switch count {
	case 2:
		return p.digits(7, 100, 2)
	case 1:
		return p.digits(4, 10, 1)
	}
	return nil
}

// digits reads a width-bit group that must be below limit and writes it
// zero-padded to n digits.
func (p *streamParser) digits(width, limit, n int) error {
	if p.bits.Available() < width {
		return fmt.Errorf("%w: %d digits need %d bits, have %d", qrscan.ErrFormat, n, width, p.bits.Available())
	}
	v, _ := p.bits.ReadBits(width)
	if v >= limit {
		return fmt.Errorf("%w: numeric group %d out of range", qrscan.ErrFormat, v)
	}
	s := strconv.Itoa(v)
	p.text.WriteString(strings.Repeat("0", n-len(s)))
	p.text.WriteString(s)
	return nil
}

// eciValue reads a one, two or three byte ECI designator.
func (p *streamParser) eciValue() (int, error) {
	first, err := p.bits.ReadBits(8)
	if err != nil {
		return 0, err
	}
	switch {
	case first&0x80 == 0:
		return first & 0x7F, nil
	case first&0xC0 == 0x80:
		second, err := p.bits.ReadBits(8)
		if err != nil {
			return 0, err
		}
		return (first&0x3F)<<8 | second, nil
	case first&0xE0 == 0xC0:
		rest, err := p.bits.ReadBits(16)
		if err != nil {
			return 0, err
		}
		return (first&0x1F)<<16 | rest, nil
	}
	return 0, fmt.Errorf("%w: bad ECI designator 0x%02x", qrscan.ErrFormat, first)
}
