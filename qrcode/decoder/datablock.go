package decoder

import (
	"fmt"

	qrscan "github.com/ericlevine/qrscan"
)

// DataBlock holds one block's data codewords followed by its error
// correction codewords.
type DataBlock struct {
	NumDataCodewords int
	Codewords        []byte
}

// GetDataBlocks undoes the block interleaving of rawCodewords. Data
// codewords are dealt round-robin to every block up to the shorter length,
// then the longer blocks take one more; error correction codewords follow in
// the same round-robin order.
func GetDataBlocks(rawCodewords []byte, version *Version, ecLevel ECLevel) ([]DataBlock, error) {
	if len(rawCodewords) != version.TotalCodewords {
		return nil, fmt.Errorf("%w: %d codewords for version %d, want %d",
			qrscan.ErrFormat, len(rawCodewords), version.Number, version.TotalCodewords)
	}
	ecBlocks := version.ECBlocksForLevel(ecLevel)

	result := make([]DataBlock, 0, ecBlocks.NumBlocks())
	for _, block := range ecBlocks.Blocks {
		for i := 0; i < block.Count; i++ {
			result = append(result, DataBlock{
				NumDataCodewords: block.DataCodewords,
				Codewords:        make([]byte, block.DataCodewords+ecBlocks.ECCodewordsPerBlock),
			})
		}
	}

	// Block groups are listed shortest first.
	shorterTotal := len(result[0].Codewords)
	longerStart := len(result)
	for longerStart > 0 && len(result[longerStart-1].Codewords) != shorterTotal {
		longerStart--
	}
	shorterData := shorterTotal - ecBlocks.ECCodewordsPerBlock

	offset := 0
	for i := 0; i < shorterData; i++ {
		for j := range result {
			result[j].Codewords[i] = rawCodewords[offset]
			offset++
		}
	}
	for j := longerStart; j < len(result); j++ {
		result[j].Codewords[shorterData] = rawCodewords[offset]
		offset++
	}
	for i := shorterData; i < shorterTotal; i++ {
		for j := range result {
			k := i
			if j >= longerStart {
				k++
			}
			result[j].Codewords[k] = rawCodewords[offset]
			offset++
		}
	}
	return result, nil
}
