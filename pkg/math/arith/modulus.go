package arith

import (
	"errors"
	"math/big"

	"github.com/cronokirby/saferith"
)

// ErrNoInverse is returned when an element has no inverse modulo n.
var ErrNoInverse = errors.New("arith: element is not invertible")

// Modulus wraps a saferith.Modulus and enables faster modular exponentiation when
// the factorization is known.
// When n = p⋅q, xᵉ (mod n) can be computed with only two exponentiations
// with p and q respectively.
//
// Inputs and outputs are *big.Int, and are reduced modulo n before use.
// The modulus must be odd for inversion.
type Modulus struct {
	n   *big.Int
	mod *saferith.Modulus
	// n = p⋅q
	p, q *saferith.Modulus
	// pInv = p⁻¹ (mod q)
	pNat, pInv *saferith.Nat
}

// ModulusFromN creates a Modulus for n without any acceleration.
// n is copied.
func ModulusFromN(n *big.Int) *Modulus {
	nCopy := new(big.Int).Set(n)
	return &Modulus{
		n:   nCopy,
		mod: saferith.ModulusFromNat(new(saferith.Nat).SetBig(nCopy, nCopy.BitLen())),
	}
}

// ModulusFromFactors creates the necessary cached values to accelerate
// exponentiation mod n = p⋅q. The factors must be coprime.
func ModulusFromFactors(p, q *big.Int) *Modulus {
	pNat := new(saferith.Nat).SetBig(p, p.BitLen())
	qNat := new(saferith.Nat).SetBig(q, q.BitLen())
	n := new(big.Int).Mul(p, q)
	pMod := saferith.ModulusFromNat(pNat)
	qMod := saferith.ModulusFromNat(qNat)
	return &Modulus{
		n:    n,
		mod:  saferith.ModulusFromNat(new(saferith.Nat).SetBig(n, n.BitLen())),
		p:    pMod,
		q:    qMod,
		pNat: pNat,
		pInv: new(saferith.Nat).ModInverse(pNat, qMod),
	}
}

// Big returns n.
// WARNING: Do not modify the returned value.
func (n *Modulus) Big() *big.Int {
	return n.n
}

// BitLen returns the number of bits of n.
func (n *Modulus) BitLen() int {
	return n.mod.BitLen()
}

// Reduce returns x (mod n), as a value in [0, n).
func (n *Modulus) Reduce(x *big.Int) *big.Int {
	return new(big.Int).Mod(x, n.n)
}

// nat returns x (mod n) with the capacity of n.
func (n *Modulus) nat(x *big.Int) *saferith.Nat {
	r := x
	if x.Sign() < 0 || x.Cmp(n.n) >= 0 {
		r = new(big.Int).Mod(x, n.n)
	}
	return new(saferith.Nat).SetBig(r, n.mod.BitLen())
}

func (n *Modulus) exp(x *saferith.Nat, e *big.Int) *saferith.Nat {
	eNat := new(saferith.Nat).SetBig(e, e.BitLen())
	if n.hasFactorization() {
		var xp, xq saferith.Nat
		xp.Exp(x, eNat, n.p) // x₁ = xᵉ (mod p₁)
		xq.Exp(x, eNat, n.q) // x₂ = xᵉ (mod p₂)
		// r = x₁ + p₁ ⋅ [p₁⁻¹ (mod p₂)] ⋅ [x₂ - x₁] (mod n)
		r := xq.ModSub(&xq, &xp, n.mod)
		r.ModMul(r, n.pInv, n.mod)
		r.ModMul(r, n.pNat, n.mod)
		r.ModAdd(r, &xp, n.mod)
		return r
	}
	return new(saferith.Nat).Exp(x, eNat, n.mod)
}

// Exp returns xᵉ (mod n), for e ⩾ 0.
// The exponentiation runs in constant time with respect to e, so e may be secret.
func (n *Modulus) Exp(x, e *big.Int) *big.Int {
	if e.Sign() < 0 {
		panic("arith: Exp called with a negative exponent")
	}
	return n.exp(n.nat(x), e).Big()
}

// ExpI returns xᵉ (mod n) for any sign of e.
// When e < 0, this is (x⁻¹)^|e| (mod n), and ErrNoInverse is returned if
// gcd(x, n) ≠ 1.
func (n *Modulus) ExpI(x, e *big.Int) (*big.Int, error) {
	if e.Sign() >= 0 {
		return n.Exp(x, e), nil
	}
	xNat := n.nat(x)
	if xNat.IsUnit(n.mod) != 1 {
		return nil, ErrNoInverse
	}
	xInv := new(saferith.Nat).ModInverse(xNat, n.mod)
	return n.exp(xInv, new(big.Int).Neg(e)).Big(), nil
}

// Mul returns x⋅y (mod n).
func (n *Modulus) Mul(x, y *big.Int) *big.Int {
	return new(saferith.Nat).ModMul(n.nat(x), n.nat(y), n.mod).Big()
}

// Inverse returns x⁻¹ (mod n), or ErrNoInverse if gcd(x, n) ≠ 1.
func (n *Modulus) Inverse(x *big.Int) (*big.Int, error) {
	xNat := n.nat(x)
	if xNat.IsUnit(n.mod) != 1 {
		return nil, ErrNoInverse
	}
	return new(saferith.Nat).ModInverse(xNat, n.mod).Big(), nil
}

// IsUnit returns true if gcd(x, n) = 1.
func (n *Modulus) IsUnit(x *big.Int) bool {
	return n.nat(x).IsUnit(n.mod) == 1
}

func (n Modulus) hasFactorization() bool {
	return n.p != nil && n.q != nil && n.pNat != nil && n.pInv != nil
}
