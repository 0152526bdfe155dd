package pre

import "fmt"

// KeyPair binds a PublicKey to the SecretKey it was generated with.
type KeyPair struct {
	pk *PublicKey
	sk *SecretKey
}

// NewKeyPair returns the pair (pk, sk) after checking that they match.
func NewKeyPair(pk *PublicKey, sk *SecretKey) (*KeyPair, error) {
	kp := &KeyPair{pk: pk, sk: sk}
	if err := kp.Validate(); err != nil {
		return nil, err
	}
	return kp, nil
}

// PublicKey returns the public half of the pair.
func (kp *KeyPair) PublicKey() *PublicKey {
	return kp.pk
}

// SecretKey returns the secret half of the pair.
func (kp *KeyPair) SecretKey() *SecretKey {
	return kp.sk
}

// Validate checks that N = p⋅q, g₁ = g₀ᵃ and g₂ = g₀ᵇ (mod N²).
func (kp *KeyPair) Validate() error {
	if kp == nil || !kp.pk.complete() || !kp.sk.complete() {
		return ErrNilKey
	}
	pk, sk := kp.pk, kp.sk
	if err := pk.Validate(); err != nil {
		return err
	}
	if pk.n.Cmp(sk.n) != 0 {
		return fmt.Errorf("%w: N ≠ p⋅q", ErrInvalidSecretKey)
	}
	if sk.nSquared.Exp(pk.g0, sk.a).Cmp(pk.g1) != 0 {
		return fmt.Errorf("%w: g1 ≠ g0ᵃ", ErrInvalidSecretKey)
	}
	if sk.nSquared.Exp(pk.g0, sk.b).Cmp(pk.g2) != 0 {
		return fmt.Errorf("%w: g2 ≠ g0ᵇ", ErrInvalidSecretKey)
	}
	return nil
}
