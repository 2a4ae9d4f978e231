// Package charset maps QR Code ECI designators and character set names to
// text decoders, and guesses the encoding of untagged byte segments.
package charset

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

var (
	// ErrUnknownECI is returned for ECI values with no character set.
	ErrUnknownECI = errors.New("charset: unknown ECI value")

	// ErrUnknownCharset is returned for names no decoder is known for.
	ErrUnknownCharset = errors.New("charset: unknown character set")
)

// ECI is a Character Set Extended Channel Interpretation designator.
type ECI struct {
	// Values lists every ECI number that selects this character set.
	Values   []int
	Name     string
	Aliases  []string
	Encoding encoding.Encoding
}

// Value returns the canonical ECI number.
func (e *ECI) Value() int { return e.Values[0] }

func (e *ECI) String() string { return e.Name }

var (
	ECICp437      = &ECI{[]int{0, 2}, "Cp437", []string{"IBM437"}, charmap.CodePage437}
	ECIISO8859_1  = &ECI{[]int{1, 3}, "ISO8859_1", []string{"ISO-8859-1"}, charmap.ISO8859_1}
	ECIISO8859_2  = &ECI{[]int{4}, "ISO8859_2", []string{"ISO-8859-2"}, charmap.ISO8859_2}
	ECIISO8859_3  = &ECI{[]int{5}, "ISO8859_3", []string{"ISO-8859-3"}, charmap.ISO8859_3}
	ECIISO8859_4  = &ECI{[]int{6}, "ISO8859_4", []string{"ISO-8859-4"}, charmap.ISO8859_4}
	ECIISO8859_5  = &ECI{[]int{7}, "ISO8859_5", []string{"ISO-8859-5"}, charmap.ISO8859_5}
	ECIISO8859_6  = &ECI{[]int{8}, "ISO8859_6", []string{"ISO-8859-6"}, charmap.ISO8859_6}
	ECIISO8859_7  = &ECI{[]int{9}, "ISO8859_7", []string{"ISO-8859-7"}, charmap.ISO8859_7}
	ECIISO8859_8  = &ECI{[]int{10}, "ISO8859_8", []string{"ISO-8859-8"}, charmap.ISO8859_8}
	ECIISO8859_9  = &ECI{[]int{11}, "ISO8859_9", []string{"ISO-8859-9"}, charmap.ISO8859_9}
	ECIISO8859_10 = &ECI{[]int{12}, "ISO8859_10", []string{"ISO-8859-10"}, charmap.ISO8859_10}
	// ISO-8859-11 is TIS-620 plus NBSP; Windows-874 covers it.
	ECIISO8859_11 = &ECI{[]int{13}, "ISO8859_11", []string{"ISO-8859-11"}, charmap.Windows874}
	ECIISO8859_13 = &ECI{[]int{15}, "ISO8859_13", []string{"ISO-8859-13"}, charmap.ISO8859_13}
	ECIISO8859_14 = &ECI{[]int{16}, "ISO8859_14", []string{"ISO-8859-14"}, charmap.ISO8859_14}
	ECIISO8859_15 = &ECI{[]int{17}, "ISO8859_15", []string{"ISO-8859-15"}, charmap.ISO8859_15}
	ECIISO8859_16 = &ECI{[]int{18}, "ISO8859_16", []string{"ISO-8859-16"}, charmap.ISO8859_16}
	ECISJIS       = &ECI{[]int{20}, "SJIS", []string{"Shift_JIS"}, japanese.ShiftJIS}
	ECICp1250     = &ECI{[]int{21}, "Cp1250", []string{"windows-1250"}, charmap.Windows1250}
	ECICp1251     = &ECI{[]int{22}, "Cp1251", []string{"windows-1251"}, charmap.Windows1251}
	ECICp1252     = &ECI{[]int{23}, "Cp1252", []string{"windows-1252"}, charmap.Windows1252}
	ECICp1256     = &ECI{[]int{24}, "Cp1256", []string{"windows-1256"}, charmap.Windows1256}
	ECIUTF16BE    = &ECI{[]int{25}, "UnicodeBigUnmarked", []string{"UTF-16BE", "UnicodeBig"}, unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)}
	ECIUTF8       = &ECI{[]int{26}, "UTF8", []string{"UTF-8"}, unicode.UTF8}
	ECIASCII      = &ECI{[]int{27, 170}, "ASCII", []string{"US-ASCII"}, charmap.ISO8859_1}
	ECIBig5       = &ECI{[]int{28}, "Big5", nil, traditionalchinese.Big5}
	ECIGB18030    = &ECI{[]int{29}, "GB18030", []string{"GB2312", "EUC_CN", "GBK"}, simplifiedchinese.GB18030}
	ECIEUCKR      = &ECI{[]int{30}, "EUC_KR", []string{"EUC-KR"}, korean.EUCKR}
)

var (
	byValue = map[int]*ECI{}
	byName  = map[string]*ECI{}
)

func init() {
	for _, eci := range []*ECI{
		ECICp437, ECIISO8859_1, ECIISO8859_2, ECIISO8859_3, ECIISO8859_4,
		ECIISO8859_5, ECIISO8859_6, ECIISO8859_7, ECIISO8859_8, ECIISO8859_9,
		ECIISO8859_10, ECIISO8859_11, ECIISO8859_13, ECIISO8859_14,
		ECIISO8859_15, ECIISO8859_16, ECISJIS, ECICp1250, ECICp1251,
		ECICp1252, ECICp1256, ECIUTF16BE, ECIUTF8, ECIASCII, ECIBig5,
		ECIGB18030, ECIEUCKR,
	} {
		for _, v := range eci.Values {
			byValue[v] = eci
		}
		byName[strings.ToUpper(eci.Name)] = eci
		for _, alias := range eci.Aliases {
			byName[strings.ToUpper(alias)] = eci
		}
	}
}

// ECIByValue returns the character set designated by an ECI number.
func ECIByValue(value int) (*ECI, error) {
	if eci, ok := byValue[value]; ok {
		return eci, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownECI, value)
}

// ECIByName returns the ECI whose name or alias matches, ignoring case, or
// nil.
func ECIByName(name string) *ECI {
	return byName[strings.ToUpper(name)]
}

// Lookup resolves a character set name through the ECI table first and the
// IANA registry second.
func Lookup(name string) (encoding.Encoding, error) {
	if eci := ECIByName(name); eci != nil {
		return eci.Encoding, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
	}
	return enc, nil
}
