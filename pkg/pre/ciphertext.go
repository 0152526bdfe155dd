package pre

import (
	"io"
	"math/big"

	"github.com/babeanu-dorian/MUSE/pkg/hash"
)

// Kind distinguishes the two ciphertext shapes.
type Kind uint8

const (
	// KindPrimary is a freshly encrypted ciphertext.
	KindPrimary Kind = iota + 1
	// KindReencrypted is a ciphertext transformed once by a proxy.
	KindReencrypted
)

func (k Kind) String() string {
	switch k {
	case KindPrimary:
		return "primary"
	case KindReencrypted:
		return "reencrypted"
	default:
		return "unknown"
	}
}

// Ciphertext is implemented by *PrimaryCiphertext and *ReencryptedCiphertext only.
//
// Scheme.Decrypt matches on the concrete type to pick the decryption algorithm.
type Ciphertext interface {
	hash.WriterToWithDomain

	// Kind returns the shape of the ciphertext.
	Kind() Kind
	// PlaintextBits returns the bit length of the encrypted message.
	PlaintextBits() int
	// PublicKey returns the key the ciphertext was originally encrypted under.
	PublicKey() *PublicKey

	sealed()
}

// header holds what both ciphertext shapes carry.
type header struct {
	ptxtBits int
	pk       *PublicKey
}

func (h header) PlaintextBits() int {
	return h.ptxtBits
}

func (h header) PublicKey() *PublicKey {
	return h.pk
}

func (header) sealed() {}

// PrimaryCiphertext is the output of Scheme.Encrypt.
//
// (E, S) is a non-interactive proof that log_g₀(A) = log_g₂(D).
type PrimaryCiphertext struct {
	header
	// a = g₀ʳ (mod N²)
	a *big.Int
	// b = (1 + σN)⋅g₁ʳ (mod N²)
	b *big.Int
	// c = H(σ, |m|) ⊕ m
	c *big.Int
	// d = g₂ʳ (mod N²)
	d *big.Int
	// e is the Fiat–Shamir challenge
	e *big.Int
	// s = t - e⋅r, possibly negative
	s *big.Int
}

// Kind implements Ciphertext.
func (*PrimaryCiphertext) Kind() Kind {
	return KindPrimary
}

// A returns g₀ʳ (mod N²).
// WARNING: Do not modify the returned value.
func (ct *PrimaryCiphertext) A() *big.Int { return ct.a }

// B returns (1 + σN)⋅g₁ʳ (mod N²).
// WARNING: Do not modify the returned value.
func (ct *PrimaryCiphertext) B() *big.Int { return ct.b }

// C returns the masked message H(σ, |m|) ⊕ m.
// WARNING: Do not modify the returned value.
func (ct *PrimaryCiphertext) C() *big.Int { return ct.c }

// D returns g₂ʳ (mod N²).
// WARNING: Do not modify the returned value.
func (ct *PrimaryCiphertext) D() *big.Int { return ct.d }

// Challenge returns the proof challenge.
// WARNING: Do not modify the returned value.
func (ct *PrimaryCiphertext) Challenge() *big.Int { return ct.e }

// Response returns the signed proof response.
// WARNING: Do not modify the returned value.
func (ct *PrimaryCiphertext) Response() *big.Int { return ct.s }

// WriteTo implements io.WriterTo, writing the binary encoding of ct.
func (ct *PrimaryCiphertext) WriteTo(w io.Writer) (int64, error) {
	return writeBinary(w, ct.MarshalBinary)
}

// Domain implements hash.WriterToWithDomain.
func (*PrimaryCiphertext) Domain() string {
	return "PRE Primary Ciphertext"
}

// ReencryptedCiphertext is the output of Scheme.Reencrypt.
//
// (A2, B2, C2) is the outer layer, opened with the delegatee's secret b.
// (A1, A3, B1, C1) is the inner layer, anchored to the delegator's public key.
type ReencryptedCiphertext struct {
	header
	a1, a2, a3 *big.Int
	b1, b2     *big.Int
	c1, c2     *big.Int
}

// Kind implements Ciphertext.
func (*ReencryptedCiphertext) Kind() Kind {
	return KindReencrypted
}

// A1 returns the A component of the original ciphertext.
// WARNING: Do not modify the returned value.
func (ct *ReencryptedCiphertext) A1() *big.Int { return ct.a1 }

// A2 returns the A component of the reencryption key.
// WARNING: Do not modify the returned value.
func (ct *ReencryptedCiphertext) A2() *big.Int { return ct.a2 }

// A3 returns A1ᴿ (mod N²).
// WARNING: Do not modify the returned value.
func (ct *ReencryptedCiphertext) A3() *big.Int { return ct.a3 }

// B1 returns the B component of the original ciphertext.
// WARNING: Do not modify the returned value.
func (ct *ReencryptedCiphertext) B1() *big.Int { return ct.b1 }

// B2 returns the B component of the reencryption key.
// WARNING: Do not modify the returned value.
func (ct *ReencryptedCiphertext) B2() *big.Int { return ct.b2 }

// C1 returns the masked message of the original ciphertext.
// WARNING: Do not modify the returned value.
func (ct *ReencryptedCiphertext) C1() *big.Int { return ct.c1 }

// C2 returns the masked blinding value of the reencryption key.
// WARNING: Do not modify the returned value.
func (ct *ReencryptedCiphertext) C2() *big.Int { return ct.c2 }

// WriteTo implements io.WriterTo, writing the binary encoding of ct.
func (ct *ReencryptedCiphertext) WriteTo(w io.Writer) (int64, error) {
	return writeBinary(w, ct.MarshalBinary)
}

// Domain implements hash.WriterToWithDomain.
func (*ReencryptedCiphertext) Domain() string {
	return "PRE Reencrypted Ciphertext"
}

func writeBinary(w io.Writer, marshal func() ([]byte, error)) (int64, error) {
	data, err := marshal()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}
