package pre

import (
	"fmt"
	"math/big"
)

// ReencryptionKey lets a proxy turn ciphertexts of a delegator x into
// ciphertexts for a delegatee y.
//
// It is bound to the ordered pair (x, y): applied to ciphertexts of any other
// user, it yields ciphertexts that fail to decrypt or decrypt to garbage.
type ReencryptionKey struct {
	// a = g₀ʸʳ (mod N_y²)
	a *big.Int
	// b = (1 + σN_y)⋅g₂ʸʳ (mod N_y²)
	b *big.Int
	// c = H(σ, k₁) ⊕ β
	c *big.Int
	// r = aₓ - β (mod rModₓ)
	r *big.Int
}

// NewReencryptionKey returns the key (A, B, C, R), checking only that all
// components are present and non negative.
func NewReencryptionKey(a, b, c, r *big.Int) (*ReencryptionKey, error) {
	if a == nil || b == nil || c == nil || r == nil {
		return nil, ErrNilKey
	}
	for _, x := range []*big.Int{a, b, c, r} {
		if x.Sign() < 0 {
			return nil, fmt.Errorf("%w: negative component", ErrInvalidReKey)
		}
	}
	return &ReencryptionKey{
		a: new(big.Int).Set(a),
		b: new(big.Int).Set(b),
		c: new(big.Int).Set(c),
		r: new(big.Int).Set(r),
	}, nil
}

// Validate checks that all components are present and non negative.
func (rk *ReencryptionKey) Validate() error {
	if rk == nil {
		return ErrNilKey
	}
	for _, x := range []*big.Int{rk.a, rk.b, rk.c, rk.r} {
		if x == nil {
			return fmt.Errorf("%w: missing component", ErrInvalidReKey)
		}
		if x.Sign() < 0 {
			return fmt.Errorf("%w: negative component", ErrInvalidReKey)
		}
	}
	return nil
}

// A returns g₀ʸʳ (mod N_y²).
// WARNING: Do not modify the returned value.
func (rk *ReencryptionKey) A() *big.Int {
	return rk.a
}

// B returns (1 + σN_y)⋅g₂ʸʳ (mod N_y²).
// WARNING: Do not modify the returned value.
func (rk *ReencryptionKey) B() *big.Int {
	return rk.b
}

// C returns H(σ, k₁) ⊕ β.
// WARNING: Do not modify the returned value.
func (rk *ReencryptionKey) C() *big.Int {
	return rk.c
}

// R returns aₓ - β (mod rModₓ).
// WARNING: Do not modify the returned value.
func (rk *ReencryptionKey) R() *big.Int {
	return rk.r
}
