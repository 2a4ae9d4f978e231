package decoder

import (
	"bytes"
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	qrscan "github.com/ericlevine/qrscan"
)

// interleave lays blocks out the way an encoder does: data codewords column
// by column across blocks, then error correction codewords likewise.
func interleave(blocks [][]byte, numData []int, ecPerBlock int) []byte {
	var out []byte
	maxData := numData[len(numData)-1]
	for i := 0; i < maxData; i++ {
		for j, block := range blocks {
			if i < numData[j] {
				out = append(out, block[i])
			}
		}
	}
	for i := 0; i < ecPerBlock; i++ {
		for j, block := range blocks {
			out = append(out, block[numData[j]+i])
		}
	}
	return out
}

func TestGetDataBlocksInvertsInterleaving(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("de-interleaving restores every block", prop.ForAll(
		func(number, level int, seed byte) bool {
			version, err := VersionForNumber(number)
			if err != nil {
				return false
			}
			ecBlocks := version.ECBlocksForLevel(ECLevel(level))

			var blocks [][]byte
			var numData []int
			for _, b := range ecBlocks.Blocks {
				for i := 0; i < b.Count; i++ {
					block := make([]byte, b.DataCodewords+ecBlocks.ECCodewordsPerBlock)
					for k := range block {
						block[k] = seed + byte(len(blocks)*37+k*11)
					}
					blocks = append(blocks, block)
					numData = append(numData, b.DataCodewords)
				}
			}

			raw := interleave(blocks, numData, ecBlocks.ECCodewordsPerBlock)
			got, err := GetDataBlocks(raw, version, ECLevel(level))
			if err != nil || len(got) != len(blocks) {
				return false
			}
			for i := range got {
				if got[i].NumDataCodewords != numData[i] || !bytes.Equal(got[i].Codewords, blocks[i]) {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 40),
		gen.IntRange(0, 3),
		gen.UInt8(),
	))

	properties.TestingRun(t)
}

func TestGetDataBlocksShape(t *testing.T) {
	// Version 5-Q: two blocks of 15 data codewords and two of 16, 18 EC each.
	version, _ := VersionForNumber(5)
	raw := make([]byte, version.TotalCodewords)
	for i := range raw {
		raw[i] = byte(i)
	}
	blocks, err := GetDataBlocks(raw, version, ECLevelQ)
	if err != nil {
		t.Fatal(err)
	}
	wantData := []int{15, 15, 16, 16}
	if len(blocks) != len(wantData) {
		t.Fatalf("got %d blocks, want %d", len(blocks), len(wantData))
	}
	for i, block := range blocks {
		if block.NumDataCodewords != wantData[i] || len(block.Codewords) != wantData[i]+18 {
			t.Errorf("block %d: %d data of %d codewords", i, block.NumDataCodewords, len(block.Codewords))
		}
		if block.Codewords[0] != byte(i) {
			t.Errorf("block %d starts with %d", i, block.Codewords[0])
		}
	}
	// The 16th data codeword exists only in the longer blocks.
	if blocks[2].Codewords[15] != 60 || blocks[3].Codewords[15] != 61 {
		t.Errorf("longer blocks end with %d, %d", blocks[2].Codewords[15], blocks[3].Codewords[15])
	}
	if blocks[0].Codewords[15] != 62 {
		t.Errorf("first EC codeword of block 0 is %d, want 62", blocks[0].Codewords[15])
	}
}

func TestGetDataBlocksLengthMismatch(t *testing.T) {
	version, _ := VersionForNumber(1)
	if _, err := GetDataBlocks(make([]byte, 25), version, ECLevelL); !errors.Is(err, qrscan.ErrFormat) {
		t.Errorf("err = %v, want ErrFormat", err)
	}
}
