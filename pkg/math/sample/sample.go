package sample

import (
	"fmt"
	"io"
	"math/big"
)

const maxIterations = 255

// ErrMaxIterations is the panic value used when the randomness source keeps failing.
var ErrMaxIterations = fmt.Errorf("sample: failed to generate after %d iterations", maxIterations)

var one = big.NewInt(1)

func mustReadBits(rand io.Reader, buf []byte) {
	for i := 0; i < maxIterations; i++ {
		if _, err := io.ReadFull(rand, buf); err == nil {
			return
		}
	}
	panic(ErrMaxIterations)
}

// Bits returns an integer sampled uniformly from [0, 2ᵇⁱᵗˢ).
func Bits(rand io.Reader, bits int) *big.Int {
	if bits <= 0 {
		return new(big.Int)
	}
	buf := make([]byte, (bits+7)/8)
	mustReadBits(rand, buf)
	// drop the excess high bits of the first byte
	if extra := len(buf)*8 - bits; extra > 0 {
		buf[0] &= byte(0xFF >> extra)
	}
	return new(big.Int).SetBytes(buf)
}

// ModN returns an integer sampled uniformly from [0, n).
func ModN(rand io.Reader, n *big.Int) *big.Int {
	if n.Sign() <= 0 {
		panic("sample: ModN called with a non positive modulus")
	}
	bits := n.BitLen()
	for {
		x := Bits(rand, bits)
		if x.Cmp(n) < 0 {
			return x
		}
	}
}

// Range returns an integer sampled uniformly from [lo, hi], both bounds included.
func Range(rand io.Reader, lo, hi *big.Int) *big.Int {
	span := new(big.Int).Sub(hi, lo)
	if span.Sign() < 0 {
		panic("sample: Range called with hi < lo")
	}
	span.Add(span, one)
	x := ModN(rand, span)
	return x.Add(x, lo)
}
