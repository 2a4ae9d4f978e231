package reedsolomon

import (
	"errors"
	"fmt"
)

// ErrReedSolomon indicates the received word has more errors than the code
// can correct.
var ErrReedSolomon = errors.New("reedsolomon: decoding error")

// Decoder corrects errors using the Euclidean algorithm and a Chien search.
type Decoder struct {
	field *Field
}

// NewDecoder creates a new Decoder for the given field.
func NewDecoder(field *Field) *Decoder {
	return &Decoder{field: field}
}

// Decode corrects received in place. twoS is the number of error-correction
// codewords at its end. It returns the number of corrected codewords.
func (d *Decoder) Decode(received []int, twoS int) (int, error) {
	p := newPoly(d.field, received)
	syndromes := make([]int, twoS)
	clean := true
	for i := 0; i < twoS; i++ {
		eval := p.evaluateAt(d.field.Exp(i + d.field.generatorBase))
		syndromes[twoS-1-i] = eval
		if eval != 0 {
			clean = false
		}
	}
	if clean {
		return 0, nil
	}
	sigma, omega, err := d.euclidean(d.field.monomial(twoS, 1), newPoly(d.field, syndromes), twoS)
	if err != nil {
		return 0, err
	}
	locations, err := d.errorLocations(sigma)
	if err != nil {
		return 0, err
	}
	magnitudes := d.errorMagnitudes(omega, locations)
	for i, loc := range locations {
		position := len(received) - 1 - d.field.Log(loc)
		if position < 0 {
			return 0, fmt.Errorf("%w: bad error location", ErrReedSolomon)
		}
		received[position] ^= magnitudes[i]
	}
	return len(locations), nil
}

func (d *Decoder) euclidean(a, b *poly, R int) (sigma, omega *poly, err error) {
	if a.degree() < b.degree() {
		a, b = b, a
	}
	rLast, r := a, b
	tLast, t := d.field.zero, d.field.one

	for 2*r.degree() >= R {
		rLastLast, tLastLast := rLast, tLast
		rLast, tLast = r, t
		if rLast.isZero() {
			return nil, nil, fmt.Errorf("%w: r_{i-1} was zero", ErrReedSolomon)
		}
		r = rLastLast
		q := d.field.zero
		inverseLead := d.field.Inverse(rLast.coefficient(rLast.degree()))
		for r.degree() >= rLast.degree() && !r.isZero() {
			diff := r.degree() - rLast.degree()
			s := d.field.Multiply(r.coefficient(r.degree()), inverseLead)
			q = q.add(d.field.monomial(diff, s))
			r = r.add(rLast.multiplyByMonomial(diff, s))
		}
		t = q.multiply(tLast).add(tLastLast)
		if r.degree() >= rLast.degree() {
			return nil, nil, fmt.Errorf("%w: division algorithm failed", ErrReedSolomon)
		}
	}

	sigmaAtZero := t.coefficient(0)
	if sigmaAtZero == 0 {
		return nil, nil, fmt.Errorf("%w: sigma(0) was zero", ErrReedSolomon)
	}
	inverse := d.field.Inverse(sigmaAtZero)
	return t.scale(inverse), r.scale(inverse), nil
}

func (d *Decoder) errorLocations(locator *poly) ([]int, error) {
	n := locator.degree()
	if n == 1 {
		return []int{locator.coefficient(1)}, nil
	}
	result := make([]int, 0, n)
	for i := 1; i < d.field.size && len(result) < n; i++ {
		if locator.evaluateAt(i) == 0 {
			result = append(result, d.field.Inverse(i))
		}
	}
	if len(result) != n {
		return nil, fmt.Errorf("%w: locator degree does not match number of roots", ErrReedSolomon)
	}
	return result, nil
}

func (d *Decoder) errorMagnitudes(evaluator *poly, locations []int) []int {
	result := make([]int, len(locations))
	for i, loc := range locations {
		xiInverse := d.field.Inverse(loc)
		denominator := 1
		for j, other := range locations {
			if i != j {
				// 1 + term in GF(2^n)
				denominator = d.field.Multiply(denominator, d.field.Multiply(other, xiInverse)^1)
			}
		}
		result[i] = d.field.Multiply(evaluator.evaluateAt(xiInverse), d.field.Inverse(denominator))
		if d.field.generatorBase != 0 {
			result[i] = d.field.Multiply(result[i], xiInverse)
		}
	}
	return result
}
