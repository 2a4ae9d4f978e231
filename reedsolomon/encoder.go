package reedsolomon

// Encoder computes error-correction codewords. It is used to build test
// fixtures for the decoder.
type Encoder struct {
	field      *Field
	generators []*poly
}

// NewEncoder creates a new Encoder for the given field.
func NewEncoder(field *Field) *Encoder {
	return &Encoder{field: field, generators: []*poly{field.one}}
}

func (e *Encoder) generator(degree int) *poly {
	for d := len(e.generators); d <= degree; d++ {
		next := e.generators[d-1].multiply(newPoly(e.field, []int{1, e.field.Exp(d - 1 + e.field.generatorBase)}))
		e.generators = append(e.generators, next)
	}
	return e.generators[degree]
}

// Encode overwrites the last ecBytes entries of toEncode with the
// error-correction codewords for the data before them.
func (e *Encoder) Encode(toEncode []int, ecBytes int) {
	dataBytes := len(toEncode) - ecBytes
	if ecBytes <= 0 || dataBytes <= 0 {
		panic("reedsolomon: need both data and error correction bytes")
	}
	info := make([]int, dataBytes)
	copy(info, toEncode[:dataBytes])
	_, remainder := newPoly(e.field, info).multiplyByMonomial(ecBytes, 1).divide(e.generator(ecBytes))
	coefficients := remainder.coefficients
	numZero := ecBytes - len(coefficients)
	for i := 0; i < numZero; i++ {
		toEncode[dataBytes+i] = 0
	}
	copy(toEncode[dataBytes+numZero:], coefficients)
}
