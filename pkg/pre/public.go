package pre

import (
	"fmt"
	"math/big"

	"github.com/babeanu-dorian/MUSE/pkg/math/arith"
)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// PublicKey is a user's public key (N, g₀, g₁, g₂), where N is the product of
// two safe primes and g₁ = g₀ᵃ, g₂ = g₀ᵇ (mod N²).
//
// N² is derived from N and cached, it can never be set independently.
type PublicKey struct {
	n, nSquared *big.Int
	g0, g1, g2  *big.Int
	// nSquaredMod is N² without knowledge of the factorization.
	nSquaredMod *arith.Modulus
}

func newPublicKey(n, g0, g1, g2 *big.Int) *PublicKey {
	nCopy := new(big.Int).Set(n)
	nSquared := new(big.Int).Mul(nCopy, nCopy)
	return &PublicKey{
		n:           nCopy,
		nSquared:    nSquared,
		g0:          new(big.Int).Set(g0),
		g1:          new(big.Int).Set(g1),
		g2:          new(big.Int).Set(g2),
		nSquaredMod: arith.ModulusFromN(nSquared),
	}
}

// NewPublicKey returns the public key (N, g₀, g₁, g₂) after checking its structure.
//
// N must be odd and greater than 1, and each gᵢ must be a unit in [1, N²).
func NewPublicKey(n, g0, g1, g2 *big.Int) (*PublicKey, error) {
	if n == nil || g0 == nil || g1 == nil || g2 == nil {
		return nil, ErrNilKey
	}
	if n.Cmp(two) <= 0 || n.Bit(0) == 0 {
		return nil, fmt.Errorf("%w: N must be odd and greater than 2", ErrInvalidPublicKey)
	}
	pk := newPublicKey(n, g0, g1, g2)
	if err := pk.Validate(); err != nil {
		return nil, err
	}
	return pk, nil
}

// complete returns false for a nil or zero PublicKey.
func (pk *PublicKey) complete() bool {
	return pk != nil && pk.n != nil && pk.nSquared != nil && pk.nSquaredMod != nil &&
		pk.g0 != nil && pk.g1 != nil && pk.g2 != nil
}

// Validate checks that the generators are units in [1, N²).
func (pk *PublicKey) Validate() error {
	if !pk.complete() {
		return ErrNilKey
	}
	for i, g := range []*big.Int{pk.g0, pk.g1, pk.g2} {
		if !arith.IsInRange(g, one, pk.nSquared) {
			return fmt.Errorf("%w: g%d is not in [1, N²)", ErrInvalidPublicKey, i)
		}
		if !arith.IsCoprime(g, pk.n) {
			return fmt.Errorf("%w: g%d is not a unit", ErrInvalidPublicKey, i)
		}
	}
	return nil
}

// N returns the modulus N.
// WARNING: Do not modify the returned value.
func (pk *PublicKey) N() *big.Int {
	return pk.n
}

// NSquared returns N².
// WARNING: Do not modify the returned value.
func (pk *PublicKey) NSquared() *big.Int {
	return pk.nSquared
}

// G0 returns g₀, a random quadratic residue mod N².
// WARNING: Do not modify the returned value.
func (pk *PublicKey) G0() *big.Int {
	return pk.g0
}

// G1 returns g₁ = g₀ᵃ (mod N²).
// WARNING: Do not modify the returned value.
func (pk *PublicKey) G1() *big.Int {
	return pk.g1
}

// G2 returns g₂ = g₀ᵇ (mod N²).
// WARNING: Do not modify the returned value.
func (pk *PublicKey) G2() *big.Int {
	return pk.g2
}

// Modulus returns N² as an arith.Modulus.
func (pk *PublicKey) Modulus() *arith.Modulus {
	return pk.nSquaredMod
}

// Equal returns true if pk and other hold the same values.
func (pk *PublicKey) Equal(other *PublicKey) bool {
	if pk == other {
		return true
	}
	if !pk.complete() || !other.complete() {
		return false
	}
	return pk.n.Cmp(other.n) == 0 &&
		pk.g0.Cmp(other.g0) == 0 &&
		pk.g1.Cmp(other.g1) == 0 &&
		pk.g2.Cmp(other.g2) == 0
}
