package pre

import (
	"math/big"

	"github.com/babeanu-dorian/MUSE/pkg/hash"
	"github.com/babeanu-dorian/MUSE/pkg/math/arith"
)

// blind returns (1 + σN)⋅gʳ (mod N²), the commitment to σ under g.
func blind(m *arith.Modulus, n, sigma, g, r *big.Int) *big.Int {
	x := new(big.Int).Mul(sigma, n)
	x.Add(x, one)
	return m.Mul(x, m.Exp(g, r))
}

// unblind recovers σ from B and the mask gʳ: σ = (B⋅mask⁻¹ (mod N²) - 1) / N.
func unblind(m *arith.Modulus, n, b, mask *big.Int) (*big.Int, error) {
	maskInv, err := m.Inverse(mask)
	if err != nil {
		return nil, err
	}
	sigma := m.Mul(b, maskInv)
	sigma.Sub(sigma, one)
	return sigma.Quo(sigma, n), nil
}

// xor returns H(σ, bits) ⊕ x.
func xor(sigma *big.Int, bits int, x *big.Int) *big.Int {
	h := hash.IntHash(sigma, bits)
	return h.Xor(h, x)
}

// open unmasks one layer: given σ, recovers the value hidden in c, then
// recomputes B = (1 + σN)⋅g^H(σ‖value, N²) and compares it with b.
func open(m *arith.Modulus, pk *PublicKey, g, sigma, b, c *big.Int, bits int) (*big.Int, error) {
	value := xor(sigma, bits, c)
	r := hash.IntHashMod(hash.Concat(sigma, value), pk.nSquared)
	if blind(m, pk.n, sigma, g, r).Cmp(b) != 0 {
		return nil, ErrInvalidCiphertext
	}
	return value, nil
}

func (ct *PrimaryCiphertext) decrypt(params Params, sk *SecretKey) (*big.Int, error) {
	if err := ct.Validate(params); err != nil {
		return nil, err
	}
	pk := ct.pk
	m := sk.modulusFor(pk)

	// σ = (B / Aᵃ - 1) / N
	sigma, err := unblind(m, pk.n, ct.b, m.Exp(ct.a, sk.a))
	if err != nil {
		return nil, invalid(err)
	}
	return open(m, pk, pk.g1, sigma, ct.b, ct.c, ct.ptxtBits)
}

// checkEncoding rejects components that are missing or out of range. Only the
// inner layer can be checked against a known modulus.
func (ct *ReencryptedCiphertext) checkEncoding() error {
	if ct == nil || !ct.pk.complete() {
		return ErrInvalidCiphertext
	}
	for _, x := range []*big.Int{ct.a1, ct.a2, ct.a3, ct.b1, ct.b2, ct.c1, ct.c2} {
		if x == nil {
			return ErrInvalidCiphertext
		}
	}
	for _, x := range []*big.Int{ct.a1, ct.a3, ct.b1} {
		if !arith.IsInRange(x, one, ct.pk.nSquared) {
			return ErrInvalidCiphertext
		}
	}
	if ct.a2.Sign() <= 0 || ct.b2.Sign() <= 0 {
		return ErrInvalidCiphertext
	}
	if ct.ptxtBits < 0 || ct.ptxtBits >= ct.pk.n.BitLen() {
		return ErrInvalidCiphertext
	}
	if ct.c1.Sign() < 0 || ct.c1.BitLen() > ct.ptxtBits {
		return ErrInvalidCiphertext
	}
	if ct.c2.Sign() < 0 {
		return ErrInvalidCiphertext
	}
	return nil
}

// checkStructure extends checkEncoding with the bounds of the outer layer,
// given the delegatee's public key.
func (ct *ReencryptedCiphertext) checkStructure(params Params, outer *PublicKey) error {
	if err := ct.checkEncoding(); err != nil {
		return err
	}
	if !outer.complete() {
		return ErrInvalidCiphertext
	}
	if !arith.IsInRange(ct.a2, one, outer.nSquared) || !arith.IsInRange(ct.b2, one, outer.nSquared) {
		return ErrInvalidCiphertext
	}
	if ct.c2.BitLen() > params.K1 {
		return ErrInvalidCiphertext
	}
	return nil
}

// decrypt opens the outer layer with the delegatee's (pk, sk), recovering β,
// then the inner layer with the delegator's public key anchored in ct.
func (ct *ReencryptedCiphertext) decrypt(params Params, pk *PublicKey, sk *SecretKey) (*big.Int, error) {
	if err := ct.checkStructure(params, pk); err != nil {
		return nil, err
	}

	// σ₂ = (B₂ / A₂ᵇ - 1) / N
	outer := sk.modulusFor(pk)
	sigma2, err := unblind(outer, pk.n, ct.b2, outer.Exp(ct.a2, sk.b))
	if err != nil {
		return nil, invalid(err)
	}
	beta, err := open(outer, pk, pk.g2, sigma2, ct.b2, ct.c2, params.K1)
	if err != nil {
		return nil, err
	}

	// σ₁ = (B₁ / (A₃⋅A₁ᵝ) - 1) / N
	innerPk := ct.pk
	inner := innerPk.nSquaredMod
	mask := inner.Mul(ct.a3, inner.Exp(ct.a1, beta))
	sigma1, err := unblind(inner, innerPk.n, ct.b1, mask)
	if err != nil {
		return nil, invalid(err)
	}
	return open(inner, innerPk, innerPk.g1, sigma1, ct.b1, ct.c1, ct.ptxtBits)
}
