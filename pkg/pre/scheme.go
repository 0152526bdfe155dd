package pre

import (
	"io"
	"math/big"

	"github.com/babeanu-dorian/MUSE/pkg/hash"
	"github.com/babeanu-dorian/MUSE/pkg/math/sample"
	"github.com/babeanu-dorian/MUSE/pkg/pool"
)

// Scheme is the proxy re-encryption scheme instantiated with fixed Params.
//
// Scheme holds no randomness of its own. Every operation that samples takes an
// io.Reader, which must not be shared between goroutines unless it is safe for
// concurrent use (see pool.LockedReader).
type Scheme struct {
	params Params
	pool   *pool.Pool
}

// New returns a Scheme for params. If pl is not nil, KeyGen searches safe
// primes on it. The pool may be shared with other schemes and callers.
func New(params Params, pl *pool.Pool) (*Scheme, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Scheme{params: params, pool: pl}, nil
}

// Params returns the parameters the scheme was created with.
func (s *Scheme) Params() Params {
	return s.params
}

// KeyGen generates a new key pair from two safe primes of PrimeBits bits.
//
//   - a, b ∈ [1, rMod]
//   - g₀ = α² (mod N²) for a random unit α
//   - g₁ = g₀ᵃ, g₂ = g₀ᵇ (mod N²)
func (s *Scheme) KeyGen(rand io.Reader) *KeyPair {
	primes := sample.SafePrimes(rand, s.params.PrimeBits, 2, s.pool)
	p, q := primes[0], primes[1]

	rMod := reductionModulus(p, q)
	a := sample.Range(rand, one, rMod)
	b := sample.Range(rand, one, rMod)
	sk := newSecretKey(p, q, a, b)

	nSquared := sk.nSquared
	top := new(big.Int).Sub(nSquared.Big(), one)
	var alpha *big.Int
	for {
		alpha = sample.Range(rand, one, top)
		if nSquared.IsUnit(alpha) {
			break
		}
	}
	g0 := nSquared.Mul(alpha, alpha)
	g1 := nSquared.Exp(g0, a)
	g2 := nSquared.Exp(g0, b)

	return &KeyPair{
		pk: newPublicKey(sk.n, g0, g1, g2),
		sk: sk,
	}
}

// ReKeyGen creates the key letting a proxy transform ciphertexts of the owner of
// skx into ciphertexts for the owner of pky.
func (s *Scheme) ReKeyGen(rand io.Reader, skx *SecretKey, pky *PublicKey) (*ReencryptionKey, error) {
	if !skx.complete() || !pky.complete() {
		return nil, ErrNilKey
	}
	sigma := sample.ModN(rand, pky.n)
	beta := sample.Bits(rand, s.params.K1)
	r := hash.IntHashMod(hash.Concat(sigma, beta), pky.nSquared)

	m := pky.nSquaredMod
	// R = aₓ - β (mod rModₓ), in [0, rModₓ)
	rx := new(big.Int).Sub(skx.a, beta)
	rx.Mod(rx, skx.rMod)

	return &ReencryptionKey{
		a: m.Exp(pky.g0, r),
		b: blind(m, pky.n, sigma, pky.g2, r),
		c: xor(sigma, s.params.K1, beta),
		r: rx,
	}, nil
}

// Encrypt encrypts m ⩾ 0 under pk, where m must have fewer bits than N.
//
// The result embeds a proof that log_g₀(A) = log_g₂(D), checked by Validate.
func (s *Scheme) Encrypt(rand io.Reader, m *big.Int, pk *PublicKey) (*PrimaryCiphertext, error) {
	if !pk.complete() || m == nil {
		return nil, ErrNilKey
	}
	if m.Sign() < 0 {
		return nil, ErrNegativeMessage
	}
	if m.BitLen() >= pk.n.BitLen() {
		return nil, ErrMessageTooLarge
	}
	ptxtBits := m.BitLen()
	mod := pk.nSquaredMod

	sigma := sample.ModN(rand, pk.n)
	r := hash.IntHashMod(hash.Concat(sigma, m), pk.nSquared)

	ct := &PrimaryCiphertext{
		header: header{ptxtBits: ptxtBits, pk: pk},
		a:      mod.Exp(pk.g0, r),
		b:      blind(mod, pk.n, sigma, pk.g1, r),
		c:      xor(sigma, ptxtBits, m),
		d:      mod.Exp(pk.g2, r),
	}

	// t is large enough to statistically hide e⋅r
	t := sample.Bits(rand, pk.nSquared.BitLen()+s.params.K2)
	u0 := mod.Exp(pk.g0, t)
	u1 := mod.Exp(pk.g2, t)
	ct.e = challenge(s.params, pk, ct.a, ct.d, u0, u1, ct.b, ct.c)

	// s = t - e⋅r over ℤ
	ct.s = new(big.Int).Mul(ct.e, r)
	ct.s.Sub(t, ct.s)
	return ct, nil
}

// Validate verifies the proof embedded in ct under the scheme's parameters.
func (s *Scheme) Validate(ct *PrimaryCiphertext) error {
	return ct.Validate(s.params)
}

// Reencrypt transforms ct with rk, after verifying ct's proof.
//
// The result stays anchored to ct's public key: the delegatee's material is
// carried in (A2, B2, C2).
func (s *Scheme) Reencrypt(ct *PrimaryCiphertext, rk *ReencryptionKey) (*ReencryptedCiphertext, error) {
	if err := rk.Validate(); err != nil {
		return nil, err
	}
	if err := ct.Validate(s.params); err != nil {
		return nil, err
	}
	return &ReencryptedCiphertext{
		header: ct.header,
		a1:     ct.a,
		a2:     rk.a,
		a3:     ct.pk.nSquaredMod.Exp(ct.a, rk.r),
		b1:     ct.b,
		b2:     rk.b,
		c1:     ct.c,
		c2:     rk.c,
	}, nil
}

// Decrypt recovers the message of ct with the caller's key pair (pk, sk).
//
// For a *PrimaryCiphertext, (pk, sk) must be the owner's keys. For a
// *ReencryptedCiphertext, they must be the delegatee's keys. Any mismatch
// yields ErrInvalidCiphertext.
func (s *Scheme) Decrypt(ct Ciphertext, pk *PublicKey, sk *SecretKey) (*big.Int, error) {
	if !pk.complete() || !sk.complete() {
		return nil, ErrNilKey
	}
	switch ct := ct.(type) {
	case *PrimaryCiphertext:
		return ct.decrypt(s.params, sk)
	case *ReencryptedCiphertext:
		return ct.decrypt(s.params, pk, sk)
	default:
		return nil, ErrUnknownCiphertext
	}
}
