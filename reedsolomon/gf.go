// Package reedsolomon implements Reed-Solomon coding over GF(256) as used
// by QR Code.
package reedsolomon

import "fmt"

// Field is a Galois field GF(size) defined by a primitive polynomial.
type Field struct {
	expTable      []int
	logTable      []int
	zero          *poly
	one           *poly
	size          int
	primitive     int
	generatorBase int
}

// QRCodeField256 is x^8 + x^4 + x^3 + x^2 + 1 with generator base 0.
var QRCodeField256 = NewField(0x011D, 256, 0)

// NewField creates GF(size) from the given primitive polynomial.
func NewField(primitive, size, generatorBase int) *Field {
	f := &Field{
		primitive:     primitive,
		size:          size,
		generatorBase: generatorBase,
		expTable:      make([]int, size),
		logTable:      make([]int, size),
	}
	x := 1
	for i := 0; i < size; i++ {
		f.expTable[i] = x
		x <<= 1
		if x >= size {
			x = (x ^ primitive) & (size - 1)
		}
	}
	for i := 0; i < size-1; i++ {
		f.logTable[f.expTable[i]] = i
	}
	f.zero = newPoly(f, []int{0})
	f.one = newPoly(f, []int{1})
	return f
}

func (f *Field) monomial(degree, coefficient int) *poly {
	if coefficient == 0 {
		return f.zero
	}
	c := make([]int, degree+1)
	c[0] = coefficient
	return newPoly(f, c)
}

// Exp returns 2^a in this field.
func (f *Field) Exp(a int) int { return f.expTable[a] }

// Log returns log2(a). a must be non-zero.
func (f *Field) Log(a int) int {
	if a == 0 {
		panic("reedsolomon: log(0)")
	}
	return f.logTable[a]
}

// Inverse returns the multiplicative inverse of a. a must be non-zero.
func (f *Field) Inverse(a int) int {
	if a == 0 {
		panic("reedsolomon: inverse(0)")
	}
	return f.expTable[f.size-f.logTable[a]-1]
}

// Multiply returns a * b in this field.
func (f *Field) Multiply(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return f.expTable[(f.logTable[a]+f.logTable[b])%(f.size-1)]
}

// Size returns the number of field elements.
func (f *Field) Size() int { return f.size }

// GeneratorBase returns the exponent of the first root of the generator.
func (f *Field) GeneratorBase() int { return f.generatorBase }

func (f *Field) String() string {
	return fmt.Sprintf("GF(0x%x,%d)", f.primitive, f.size)
}
