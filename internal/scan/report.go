package scan

import (
	"encoding/hex"

	qrscan "github.com/ericlevine/qrscan"
)

// Report is the serializable view of a decoded symbol, shared by the CLI
// output and the HTTP API.
type Report struct {
	Source           string            `json:"source,omitempty" yaml:"source,omitempty"`
	Text             string            `json:"text" yaml:"text"`
	RawBytes         string            `json:"raw_bytes" yaml:"raw_bytes"`
	Version          int               `json:"version" yaml:"version"`
	ECLevel          string            `json:"ec_level" yaml:"ec_level"`
	ErrorsCorrected  int               `json:"errors_corrected" yaml:"errors_corrected"`
	Symbology        string            `json:"symbology" yaml:"symbology"`
	Mirrored         bool              `json:"mirrored,omitempty" yaml:"mirrored,omitempty"`
	StructuredAppend *StructuredAppend `json:"structured_append,omitempty" yaml:"structured_append,omitempty"`
	Points           []Point           `json:"points" yaml:"points"`
}

// StructuredAppend identifies a symbol's place in a sequence.
type StructuredAppend struct {
	Index  int `json:"index" yaml:"index"`
	Total  int `json:"total" yaml:"total"`
	Parity int `json:"parity" yaml:"parity"`
}

// Point is an image coordinate.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NewReport builds a Report for result read from source.
func NewReport(source string, result *qrscan.Result) Report {
	r := Report{
		Source:   source,
		Text:     result.Text,
		RawBytes: hex.EncodeToString(result.RawBytes),
		Points:   make([]Point, 0, len(result.Points)),
	}
	r.Version, _ = result.Metadata[qrscan.MetadataVersion].(int)
	r.ECLevel, _ = result.Metadata[qrscan.MetadataErrorCorrectionLevel].(string)
	r.ErrorsCorrected, _ = result.Metadata[qrscan.MetadataErrorsCorrected].(int)
	r.Symbology, _ = result.Metadata[qrscan.MetadataSymbologyIdentifier].(string)
	r.Mirrored, _ = result.Metadata[qrscan.MetadataMirrored].(bool)

	seq, hasSeq := result.Metadata[qrscan.MetadataStructuredAppendSequence].(int)
	parity, hasParity := result.Metadata[qrscan.MetadataStructuredAppendParity].(int)
	if hasSeq && hasParity {
		r.StructuredAppend = &StructuredAppend{
			Index:  seq >> 4,
			Total:  seq&0x0F + 1,
			Parity: parity,
		}
	}

	for _, p := range result.Points {
		r.Points = append(r.Points, Point{X: p.X, Y: p.Y})
	}
	return r
}
