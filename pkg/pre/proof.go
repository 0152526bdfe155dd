package pre

import (
	"math/big"

	"github.com/babeanu-dorian/MUSE/pkg/hash"
	"github.com/babeanu-dorian/MUSE/pkg/math/arith"
)

// challenge computes e = H(A ‖ D ‖ g₀ ‖ g₂ ‖ u₀ ‖ u₁ ‖ B ‖ C, k₂).
func challenge(params Params, pk *PublicKey, a, d, u0, u1, b, c *big.Int) *big.Int {
	return hash.IntHash(hash.Concat(a, d, pk.g0, pk.g2, u0, u1, b, c), params.K2)
}

// checkEncoding rejects components that are missing or out of range for ct's
// public key. It does not depend on the scheme's parameters.
func (ct *PrimaryCiphertext) checkEncoding() error {
	if ct == nil || !ct.pk.complete() {
		return ErrInvalidCiphertext
	}
	for _, x := range []*big.Int{ct.a, ct.b, ct.c, ct.d, ct.e, ct.s} {
		if x == nil {
			return ErrInvalidCiphertext
		}
	}
	for _, x := range []*big.Int{ct.a, ct.b, ct.d} {
		if !arith.IsInRange(x, one, ct.pk.nSquared) {
			return ErrInvalidCiphertext
		}
	}
	if ct.ptxtBits < 0 || ct.ptxtBits >= ct.pk.n.BitLen() {
		return ErrInvalidCiphertext
	}
	if ct.c.Sign() < 0 || ct.c.BitLen() > ct.ptxtBits {
		return ErrInvalidCiphertext
	}
	if ct.e.Sign() < 0 {
		return ErrInvalidCiphertext
	}
	return nil
}

// checkStructure extends checkEncoding with the bounds on the proof, before
// any group operation runs on it.
func (ct *PrimaryCiphertext) checkStructure(params Params) error {
	if err := ct.checkEncoding(); err != nil {
		return err
	}
	if ct.e.BitLen() > params.K2 {
		return ErrInvalidCiphertext
	}
	// |s| < 2^(|N²| + k₂) for every honestly generated proof
	if ct.s.BitLen() > ct.pk.nSquared.BitLen()+params.K2 {
		return ErrInvalidCiphertext
	}
	return nil
}

// commitments recomputes the prover's commitments from the response s:
//
//	u₀ = g₀ˢ⋅Aᵉ (mod N²)
//	u₁ = g₂ˢ⋅Dᵉ (mod N²)
//
// When s < 0, g₀ˢ is computed as (g₀⁻¹)^|s|.
func (ct *PrimaryCiphertext) commitments(s *big.Int) (u0, u1 *big.Int, err error) {
	m := ct.pk.nSquaredMod
	g0s, err := m.ExpI(ct.pk.g0, s)
	if err != nil {
		return nil, nil, err
	}
	g2s, err := m.ExpI(ct.pk.g2, s)
	if err != nil {
		return nil, nil, err
	}
	u0 = m.Mul(g0s, m.Exp(ct.a, ct.e))
	u1 = m.Mul(g2s, m.Exp(ct.d, ct.e))
	return u0, u1, nil
}

// Validate verifies the proof embedded in ct, and returns ErrInvalidCiphertext
// if it does not hold.
//
// It runs before every decryption and reencryption of ct.
func (ct *PrimaryCiphertext) Validate(params Params) error {
	if err := ct.checkStructure(params); err != nil {
		return err
	}
	u0, u1, err := ct.commitments(ct.s)
	if err != nil {
		return invalid(err)
	}
	if challenge(params, ct.pk, ct.a, ct.d, u0, u1, ct.b, ct.c).Cmp(ct.e) != 0 {
		return ErrInvalidCiphertext
	}
	return nil
}
