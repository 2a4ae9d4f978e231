package reedsolomon

import (
	"errors"
	"testing"
)

func encoded(dataSize, ecSize int) []int {
	toEncode := make([]int, dataSize+ecSize)
	for i := 0; i < dataSize; i++ {
		toEncode[i] = (i*37 + 11) & 0xFF
	}
	NewEncoder(QRCodeField256).Encode(toEncode, ecSize)
	return toEncode
}

func TestDecodeCorrectsUpToHalfTheECCodewords(t *testing.T) {
	for _, ecSize := range []int{7, 10, 18, 30} {
		want := encoded(20, ecSize)
		received := append([]int(nil), want...)
		for i := 0; i < ecSize/2; i++ {
			received[i*3%len(received)] ^= 0x5A + i
		}
		corrected, err := NewDecoder(QRCodeField256).Decode(received, ecSize)
		if err != nil {
			t.Fatalf("ec=%d: Decode failed: %v", ecSize, err)
		}
		if corrected != ecSize/2 {
			t.Errorf("ec=%d: corrected = %d, want %d", ecSize, corrected, ecSize/2)
		}
		for i := range want {
			if received[i] != want[i] {
				t.Fatalf("ec=%d: codeword %d = %d, want %d", ecSize, i, received[i], want[i])
			}
		}
	}
}

func TestDecodeNoErrors(t *testing.T) {
	received := encoded(5, 4)
	corrected, err := NewDecoder(QRCodeField256).Decode(received, 4)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if corrected != 0 {
		t.Errorf("corrected = %d, want 0", corrected)
	}
}

func TestDecodeTooManyErrors(t *testing.T) {
	received := encoded(5, 4)
	received[0] ^= 1
	received[1] ^= 2
	received[2] ^= 4
	if _, err := NewDecoder(QRCodeField256).Decode(received, 4); !errors.Is(err, ErrReedSolomon) {
		t.Errorf("err = %v, want ErrReedSolomon", err)
	}
}

func TestFieldBasics(t *testing.T) {
	f := QRCodeField256
	if f.Size() != 256 || f.GeneratorBase() != 0 {
		t.Fatalf("field = %v base %d", f, f.GeneratorBase())
	}
	for a := 1; a < 256; a++ {
		if p := f.Multiply(a, f.Inverse(a)); p != 1 {
			t.Errorf("a=%d: a*inv(a) = %d, want 1", a, p)
		}
		if f.Exp(f.Log(a)) != a {
			t.Errorf("exp(log(%d)) != %d", a, a)
		}
	}
	if f.Multiply(0, 100) != 0 || f.Multiply(100, 0) != 0 {
		t.Error("multiply by 0 should be 0")
	}
}

func TestPoly(t *testing.T) {
	f := QRCodeField256
	if !f.zero.isZero() || f.one.isZero() || f.one.degree() != 0 {
		t.Fatal("bad zero/one polynomials")
	}
	p := newPoly(f, []int{0, 0, 2, 3})
	if p.degree() != 1 {
		t.Errorf("degree = %d, want 1", p.degree())
	}
	if p.evaluateAt(0) != 3 || p.evaluateAt(1) != 1 {
		t.Errorf("p(0)=%d p(1)=%d", p.evaluateAt(0), p.evaluateAt(1))
	}
	if p.scale(1) != p {
		t.Error("scale by 1 should return the same polynomial")
	}
	q, r := p.multiply(f.monomial(3, 7)).add(f.one).divide(p)
	if !r.add(f.one).isZero() || q.degree() != 3 {
		t.Errorf("divide: q degree %d, r %v", q.degree(), r.coefficients)
	}
}
