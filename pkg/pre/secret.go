package pre

import (
	"fmt"
	"math/big"

	"github.com/babeanu-dorian/MUSE/pkg/math/arith"
)

// the number of iterations to use when checking primality of decoded keys
const primalityIterations = 20

// SecretKey is (p, q, a, b) with p, q the safe primes composing N, and a, b the
// secret exponents in [1, rMod].
//
// rMod = p(p-1)q(q-1)/4 is the order of the quadratic residues mod N², it is
// always derived from p and q.
type SecretKey struct {
	p, q, a, b *big.Int
	rMod       *big.Int
	n          *big.Int
	// nSquared is N² = p²⋅q², with CRT acceleration.
	nSquared *arith.Modulus
}

// reductionModulus returns p(p-1)q(q-1)/4.
func reductionModulus(p, q *big.Int) *big.Int {
	pMinus1 := new(big.Int).Sub(p, one)
	qMinus1 := new(big.Int).Sub(q, one)
	rMod := new(big.Int).Mul(p, pMinus1)
	rMod.Mul(rMod, q)
	rMod.Mul(rMod, qMinus1)
	return rMod.Rsh(rMod, 2)
}

func newSecretKey(p, q, a, b *big.Int) *SecretKey {
	pSquared := new(big.Int).Mul(p, p)
	qSquared := new(big.Int).Mul(q, q)
	return &SecretKey{
		p:        new(big.Int).Set(p),
		q:        new(big.Int).Set(q),
		a:        new(big.Int).Set(a),
		b:        new(big.Int).Set(b),
		rMod:     reductionModulus(p, q),
		n:        new(big.Int).Mul(p, q),
		nSquared: arith.ModulusFromFactors(pSquared, qSquared),
	}
}

// NewSecretKey returns the secret key (p, q, a, b) after checking that p, q are
// distinct safe primes and that a, b lie in [1, rMod].
func NewSecretKey(p, q, a, b *big.Int) (*SecretKey, error) {
	if err := validateSecret(p, q, a, b); err != nil {
		return nil, err
	}
	return newSecretKey(p, q, a, b), nil
}

func validateSecret(p, q, a, b *big.Int) error {
	if p == nil || q == nil || a == nil || b == nil {
		return ErrNilKey
	}
	if err := ValidatePrime(p); err != nil {
		return fmt.Errorf("%w: prime p: %w", ErrInvalidSecretKey, err)
	}
	if err := ValidatePrime(q); err != nil {
		return fmt.Errorf("%w: prime q: %w", ErrInvalidSecretKey, err)
	}
	if p.Cmp(q) == 0 {
		return fmt.Errorf("%w: p = q", ErrInvalidSecretKey)
	}
	upper := reductionModulus(p, q)
	upper.Add(upper, one)
	if !arith.IsInRange(a, one, upper) || !arith.IsInRange(b, one, upper) {
		return fmt.Errorf("%w: exponents must lie in [1, rMod]", ErrInvalidSecretKey)
	}
	return nil
}

// Validate checks that p, q are distinct safe primes and that a, b lie in [1, rMod].
func (sk *SecretKey) Validate() error {
	if sk == nil {
		return ErrNilKey
	}
	return validateSecret(sk.p, sk.q, sk.a, sk.b)
}

// ValidatePrime checks that p is an odd prime such that (p-1)/2 is also prime.
func ValidatePrime(p *big.Int) error {
	if p == nil {
		return ErrNilKey
	}
	if p.Cmp(big.NewInt(5)) < 0 || p.Bit(0) == 0 {
		return fmt.Errorf("prime factor is too small or even")
	}
	if !p.ProbablyPrime(primalityIterations) {
		return fmt.Errorf("prime factor is not prime")
	}
	if !new(big.Int).Rsh(p, 1).ProbablyPrime(primalityIterations) {
		return fmt.Errorf("prime factor is not a safe prime")
	}
	return nil
}

// P returns the first of the two factors composing N.
// WARNING: Do not modify the returned value.
func (sk *SecretKey) P() *big.Int {
	return sk.p
}

// Q returns the second of the two factors composing N.
// WARNING: Do not modify the returned value.
func (sk *SecretKey) Q() *big.Int {
	return sk.q
}

// A returns the secret exponent a, with g₁ = g₀ᵃ.
// WARNING: Do not modify the returned value.
func (sk *SecretKey) A() *big.Int {
	return sk.a
}

// B returns the secret exponent b, with g₂ = g₀ᵇ.
// WARNING: Do not modify the returned value.
func (sk *SecretKey) B() *big.Int {
	return sk.b
}

// RMod returns p(p-1)q(q-1)/4.
// WARNING: Do not modify the returned value.
func (sk *SecretKey) RMod() *big.Int {
	return sk.rMod
}

// N returns p⋅q.
// WARNING: Do not modify the returned value.
func (sk *SecretKey) N() *big.Int {
	return sk.n
}

// complete returns false for a nil or zero SecretKey.
func (sk *SecretKey) complete() bool {
	return sk != nil && sk.p != nil && sk.q != nil && sk.a != nil && sk.b != nil &&
		sk.rMod != nil && sk.n != nil && sk.nSquared != nil
}

// modulusFor returns N² with CRT acceleration when sk factors pk's modulus,
// and pk's plain modulus otherwise.
func (sk *SecretKey) modulusFor(pk *PublicKey) *arith.Modulus {
	if sk.n.Cmp(pk.n) == 0 {
		return sk.nSquared
	}
	return pk.nSquaredMod
}
