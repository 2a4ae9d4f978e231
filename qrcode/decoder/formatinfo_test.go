package decoder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qrscan "github.com/ericlevine/qrscan"
	"github.com/ericlevine/qrscan/bitutil"
)

func TestDecodeFormatInformation(t *testing.T) {
	for _, entry := range formatInfoDecodeLookup {
		masked, data := entry[0], entry[1]
		want := FormatInformation{ECLevel: ecLevelForBits[data>>3], DataMask: DataMask(data & 7)}

		fi, ok := DecodeFormatInformation(masked, masked)
		require.True(t, ok, "exact 0x%04x", masked)
		assert.Equal(t, want, fi)

		// Three errors in the first copy, the second copy unreadable.
		fi, ok = DecodeFormatInformation(masked^0x4102, 0x000F)
		require.True(t, ok, "three flipped bits in 0x%04x", masked)
		assert.Equal(t, want, fi)

		// Writers that forget the mask.
		fi, ok = DecodeFormatInformation(masked^formatInfoMask, masked^formatInfoMask)
		require.True(t, ok, "unmasked 0x%04x", masked)
		assert.Equal(t, want, fi)
	}
}

func TestDecodeFormatInformationRejectsDistantWords(t *testing.T) {
	_, ok := DecodeFormatInformation(0x000F, 0x2AAA)
	assert.False(t, ok)
}

func TestECLevel(t *testing.T) {
	for bits, want := range map[int]ECLevel{0: ECLevelM, 1: ECLevelL, 2: ECLevelH, 3: ECLevelQ} {
		got, err := ECLevelForBits(bits)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, bits, got.Bits())
	}
	_, err := ECLevelForBits(4)
	assert.ErrorIs(t, err, qrscan.ErrFormat)
	assert.Equal(t, []int{7, 15, 25, 30},
		[]int{ECLevelL.CorrectionPercent(), ECLevelM.CorrectionPercent(), ECLevelQ.CorrectionPercent(), ECLevelH.CorrectionPercent()})
	assert.Equal(t, "Q", ECLevelQ.String())
}

func TestDataMasks(t *testing.T) {
	predicates := [8]func(i, j int) bool{
		func(i, j int) bool { return (i+j)%2 == 0 },
		func(i, j int) bool { return i%2 == 0 },
		func(i, j int) bool { return j%3 == 0 },
		func(i, j int) bool { return (i+j)%3 == 0 },
		func(i, j int) bool { return (i/2+j/3)%2 == 0 },
		func(i, j int) bool { return (i*j)%2+(i*j)%3 == 0 },
		func(i, j int) bool { return ((i*j)%2+(i*j)%3)%2 == 0 },
		func(i, j int) bool { return ((i+j)%2+(i*j)%3)%2 == 0 },
	}
	for m := DataMask(0); m < 8; m++ {
		for i := 0; i < 30; i++ {
			for j := 0; j < 30; j++ {
				if m.IsMasked(i, j) != predicates[m](i, j) {
					t.Fatalf("mask %d at (%d,%d) = %v", m, i, j, m.IsMasked(i, j))
				}
			}
		}

		bits := bitutil.NewBitMatrix(21)
		bits.Set(3, 4)
		orig := bits.Clone()
		m.Unmask(bits, 21)
		if bits.Equals(orig) {
			t.Errorf("mask %d changed nothing", m)
		}
		m.Unmask(bits, 21)
		if !bits.Equals(orig) {
			t.Errorf("mask %d is not an involution", m)
		}
	}
}

func TestModes(t *testing.T) {
	v1, _ := VersionForNumber(1)
	v10, _ := VersionForNumber(10)
	v27, _ := VersionForNumber(27)
	tests := []struct {
		mode Mode
		want [3]int
	}{
		{ModeNumeric, [3]int{10, 12, 14}},
		{ModeAlphanumeric, [3]int{9, 11, 13}},
		{ModeByte, [3]int{8, 16, 16}},
		{ModeKanji, [3]int{8, 10, 12}},
		{ModeHanzi, [3]int{8, 10, 12}},
		{ModeECI, [3]int{0, 0, 0}},
	}
	for _, tt := range tests {
		got := [3]int{tt.mode.CharacterCountBits(v1), tt.mode.CharacterCountBits(v10), tt.mode.CharacterCountBits(v27)}
		assert.Equal(t, tt.want, got, tt.mode.String())
	}
	for _, bits := range []int{0x6, 0xA, 0xB, 0xC, 0xE, 0xF} {
		_, err := ModeForBits(bits)
		assert.True(t, errors.Is(err, qrscan.ErrFormat), "mode bits 0x%x", bits)
	}
	m, err := ModeForBits(0xD)
	require.NoError(t, err)
	assert.Equal(t, ModeHanzi, m)
}
