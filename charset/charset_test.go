package charset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

func TestECIByValue(t *testing.T) {
	for value, want := range map[int]*ECI{
		0: ECICp437, 2: ECICp437, 1: ECIISO8859_1, 3: ECIISO8859_1,
		20: ECISJIS, 26: ECIUTF8, 27: ECIASCII, 170: ECIASCII, 30: ECIEUCKR,
	} {
		got, err := ECIByValue(value)
		require.NoError(t, err, "value %d", value)
		assert.Same(t, want, got, "value %d", value)
	}
	for _, value := range []int{14, 19, 31, 899, 900, -1} {
		_, err := ECIByValue(value)
		assert.ErrorIs(t, err, ErrUnknownECI, "value %d", value)
	}
}

func TestLookup(t *testing.T) {
	enc, err := Lookup("shift_jis")
	require.NoError(t, err)
	assert.Equal(t, japanese.ShiftJIS, enc)

	enc, err = Lookup("ISO-8859-15")
	require.NoError(t, err)
	assert.Equal(t, charmap.ISO8859_15, enc)

	enc, err = Lookup("KOI8-R")
	require.NoError(t, err)
	s, err := Decode([]byte{0xf0, 0xd2, 0xc9}, enc)
	require.NoError(t, err)
	assert.Equal(t, "При", s)

	_, err = Lookup("no-such-charset")
	assert.ErrorIs(t, err, ErrUnknownCharset)
}

func TestDecode(t *testing.T) {
	s, err := Decode([]byte{0x93, 0xfa, 0x96, 0x7b}, japanese.ShiftJIS)
	require.NoError(t, err)
	assert.Equal(t, "日本", s)

	s, err = Decode([]byte{0xe9, 0x74, 0xe9}, ECIISO8859_1.Encoding)
	require.NoError(t, err)
	assert.Equal(t, "été", s)
}

func TestGuess(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want any
	}{
		{"ascii", []byte("hello"), charmap.ISO8859_1},
		{"utf8", []byte("héllo wörld"), unicode.UTF8},
		{"latin1", []byte{'c', 'a', 'f', 0xe9}, charmap.ISO8859_1},
		{"sjis", []byte{0x93, 0xfa, 0x96, 0x7b, 0x8c, 0xea}, japanese.ShiftJIS},
		{"c1 control only fits sjis", []byte{0x81, 0x40}, japanese.ShiftJIS},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Guess(tt.data))
		})
	}
}
