package charset

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

// utf8Scan tracks whether bytes form valid UTF-8 with at least one
// multi-byte sequence.
type utf8Scan struct {
	ok        bool
	left      int
	multiByte int
}

func (s *utf8Scan) feed(v byte) {
	switch {
	case s.left > 0:
		if v&0x80 == 0 {
			s.ok = false
		} else {
			s.left--
		}
	case v&0x80 == 0:
	case v&0x40 == 0:
		s.ok = false
	case v&0x20 == 0:
		s.left, s.multiByte = 1, s.multiByte+1
	case v&0x10 == 0:
		s.left, s.multiByte = 2, s.multiByte+1
	case v&0x08 == 0:
		s.left, s.multiByte = 3, s.multiByte+1
	default:
		s.ok = false
	}
}

// sjisScan tracks Shift_JIS validity plus the longest runs of half-width
// katakana and double-byte characters.
type sjisScan struct {
	ok          bool
	left        int
	katakana    int
	curKatakana int
	maxKatakana int
	curDouble   int
	maxDouble   int
}

func (s *sjisScan) feed(v byte) {
	switch {
	case s.left > 0:
		if v < 0x40 || v == 0x7F || v > 0xFC {
			s.ok = false
		} else {
			s.left--
		}
	case v == 0x80 || v == 0xA0 || v > 0xEF:
		s.ok = false
	case v > 0xA0 && v < 0xE0:
		s.katakana++
		s.curDouble = 0
		s.curKatakana++
		s.maxKatakana = max(s.maxKatakana, s.curKatakana)
	case v > 0x7F:
		s.left++
		s.curKatakana = 0
		s.curDouble++
		s.maxDouble = max(s.maxDouble, s.curDouble)
	default:
		s.curKatakana, s.curDouble = 0, 0
	}
}

// Guess picks the most plausible encoding for an untagged byte segment:
// UTF-16 when a byte order mark is present, otherwise UTF-8, Shift_JIS or
// ISO-8859-1 by how well the bytes fit each.
func Guess(data []byte) encoding.Encoding {
	if len(data) > 2 && ((data[0] == 0xFE && data[1] == 0xFF) || (data[0] == 0xFF && data[1] == 0xFE)) {
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	}
	u := utf8Scan{ok: true}
	s := sjisScan{ok: true}
	iso, isoHighOther := true, 0
	bom := len(data) > 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF

	for _, v := range data {
		if !u.ok && !s.ok && !iso {
			break
		}
		if u.ok {
			u.feed(v)
		}
		if iso {
			if v > 0x7F && v < 0xA0 {
				iso = false
			} else if v > 0x9F && (v < 0xC0 || v == 0xD7 || v == 0xF7) {
				isoHighOther++
			}
		}
		if s.ok {
			s.feed(v)
		}
	}
	u.ok = u.ok && u.left == 0
	s.ok = s.ok && s.left == 0

	switch {
	case u.ok && (bom || u.multiByte > 0):
		return unicode.UTF8
	case s.ok && (s.maxKatakana >= 3 || s.maxDouble >= 3):
		return japanese.ShiftJIS
	case iso && s.ok:
		if (s.maxKatakana == 2 && s.katakana == 2) || isoHighOther*10 >= len(data) {
			return japanese.ShiftJIS
		}
		return charmap.ISO8859_1
	case iso:
		return charmap.ISO8859_1
	case s.ok:
		return japanese.ShiftJIS
	}
	return unicode.UTF8
}
