package pre

import (
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
)

type publicKeyMarshal struct {
	N, G0, G1, G2 *big.Int
}

type secretKeyMarshal struct {
	P, Q, A, B *big.Int
}

type keyPairMarshal struct {
	Public publicKeyMarshal
	Secret secretKeyMarshal
}

type reencryptionKeyMarshal struct {
	A, B, C, R *big.Int
}

type primaryMarshal struct {
	Bits             int
	Public           publicKeyMarshal
	A, B, C, D, E, S *big.Int
}

type reencryptedMarshal struct {
	Bits       int
	Public     publicKeyMarshal
	A1, A2, A3 *big.Int
	B1, B2     *big.Int
	C1, C2     *big.Int
}

// envelope tags an encoded ciphertext with its Kind.
type envelope struct {
	Kind Kind
	Body cbor.RawMessage
}

func (pk *PublicKey) marshal() publicKeyMarshal {
	return publicKeyMarshal{N: pk.n, G0: pk.g0, G1: pk.g1, G2: pk.g2}
}

func (pm publicKeyMarshal) decode() (*PublicKey, error) {
	return NewPublicKey(pm.N, pm.G0, pm.G1, pm.G2)
}

func (sk *SecretKey) marshal() secretKeyMarshal {
	return secretKeyMarshal{P: sk.p, Q: sk.q, A: sk.a, B: sk.b}
}

func (sm secretKeyMarshal) decode() (*SecretKey, error) {
	return NewSecretKey(sm.P, sm.Q, sm.A, sm.B)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (pk *PublicKey) MarshalBinary() ([]byte, error) {
	if pk == nil {
		return nil, ErrNilKey
	}
	return cbor.Marshal(pk.marshal())
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
// The decoded key is checked with Validate.
func (pk *PublicKey) UnmarshalBinary(data []byte) error {
	var pm publicKeyMarshal
	if err := cbor.Unmarshal(data, &pm); err != nil {
		return fmt.Errorf("public key: %w", err)
	}
	decoded, err := pm.decode()
	if err != nil {
		return fmt.Errorf("public key: %w", err)
	}
	*pk = *decoded
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (sk *SecretKey) MarshalBinary() ([]byte, error) {
	if sk == nil {
		return nil, ErrNilKey
	}
	return cbor.Marshal(sk.marshal())
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
// The primes are checked to be distinct safe primes.
func (sk *SecretKey) UnmarshalBinary(data []byte) error {
	var sm secretKeyMarshal
	if err := cbor.Unmarshal(data, &sm); err != nil {
		return fmt.Errorf("secret key: %w", err)
	}
	decoded, err := sm.decode()
	if err != nil {
		return fmt.Errorf("secret key: %w", err)
	}
	*sk = *decoded
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (kp *KeyPair) MarshalBinary() ([]byte, error) {
	if kp == nil || kp.pk == nil || kp.sk == nil {
		return nil, ErrNilKey
	}
	return cbor.Marshal(keyPairMarshal{
		Public: kp.pk.marshal(),
		Secret: kp.sk.marshal(),
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
// Both halves are checked to match.
func (kp *KeyPair) UnmarshalBinary(data []byte) error {
	var km keyPairMarshal
	if err := cbor.Unmarshal(data, &km); err != nil {
		return fmt.Errorf("key pair: %w", err)
	}
	pk, err := km.Public.decode()
	if err != nil {
		return fmt.Errorf("key pair: %w", err)
	}
	sk, err := km.Secret.decode()
	if err != nil {
		return fmt.Errorf("key pair: %w", err)
	}
	decoded, err := NewKeyPair(pk, sk)
	if err != nil {
		return fmt.Errorf("key pair: %w", err)
	}
	*kp = *decoded
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (rk *ReencryptionKey) MarshalBinary() ([]byte, error) {
	if rk == nil {
		return nil, ErrNilKey
	}
	return cbor.Marshal(reencryptionKeyMarshal{A: rk.a, B: rk.b, C: rk.c, R: rk.r})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (rk *ReencryptionKey) UnmarshalBinary(data []byte) error {
	var rm reencryptionKeyMarshal
	if err := cbor.Unmarshal(data, &rm); err != nil {
		return fmt.Errorf("reencryption key: %w", err)
	}
	decoded, err := NewReencryptionKey(rm.A, rm.B, rm.C, rm.R)
	if err != nil {
		return fmt.Errorf("reencryption key: %w", err)
	}
	*rk = *decoded
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (ct *PrimaryCiphertext) MarshalBinary() ([]byte, error) {
	if ct == nil || ct.pk == nil {
		return nil, ErrInvalidCiphertext
	}
	return cbor.Marshal(primaryMarshal{
		Bits:   ct.ptxtBits,
		Public: ct.pk.marshal(),
		A:      ct.a,
		B:      ct.b,
		C:      ct.c,
		D:      ct.d,
		E:      ct.e,
		S:      ct.s,
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
//
// Only the structure of the ciphertext is checked, its proof is verified
// by Validate.
func (ct *PrimaryCiphertext) UnmarshalBinary(data []byte) error {
	var cm primaryMarshal
	if err := cbor.Unmarshal(data, &cm); err != nil {
		return fmt.Errorf("primary ciphertext: %w", err)
	}
	pk, err := cm.Public.decode()
	if err != nil {
		return fmt.Errorf("primary ciphertext: %w", err)
	}
	decoded := &PrimaryCiphertext{
		header: header{ptxtBits: cm.Bits, pk: pk},
		a:      cm.A,
		b:      cm.B,
		c:      cm.C,
		d:      cm.D,
		e:      cm.E,
		s:      cm.S,
	}
	if err = decoded.checkEncoding(); err != nil {
		return fmt.Errorf("primary ciphertext: %w", err)
	}
	*ct = *decoded
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (ct *ReencryptedCiphertext) MarshalBinary() ([]byte, error) {
	if ct == nil || ct.pk == nil {
		return nil, ErrInvalidCiphertext
	}
	return cbor.Marshal(reencryptedMarshal{
		Bits:   ct.ptxtBits,
		Public: ct.pk.marshal(),
		A1:     ct.a1,
		A2:     ct.a2,
		A3:     ct.a3,
		B1:     ct.b1,
		B2:     ct.b2,
		C1:     ct.c1,
		C2:     ct.c2,
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
//
// The outer layer can only be range checked once the delegatee's key is known,
// which happens during decryption.
func (ct *ReencryptedCiphertext) UnmarshalBinary(data []byte) error {
	var cm reencryptedMarshal
	if err := cbor.Unmarshal(data, &cm); err != nil {
		return fmt.Errorf("reencrypted ciphertext: %w", err)
	}
	pk, err := cm.Public.decode()
	if err != nil {
		return fmt.Errorf("reencrypted ciphertext: %w", err)
	}
	decoded := &ReencryptedCiphertext{
		header: header{ptxtBits: cm.Bits, pk: pk},
		a1:     cm.A1,
		a2:     cm.A2,
		a3:     cm.A3,
		b1:     cm.B1,
		b2:     cm.B2,
		c1:     cm.C1,
		c2:     cm.C2,
	}
	if err = decoded.checkEncoding(); err != nil {
		return fmt.Errorf("reencrypted ciphertext: %w", err)
	}
	*ct = *decoded
	return nil
}

// MarshalCiphertext encodes ct together with its Kind, so that it can be
// decoded by UnmarshalCiphertext without knowing its shape in advance.
func MarshalCiphertext(ct Ciphertext) ([]byte, error) {
	if ct == nil {
		return nil, ErrUnknownCiphertext
	}
	body, err := marshalBody(ct)
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(envelope{Kind: ct.Kind(), Body: body})
}

func marshalBody(ct Ciphertext) ([]byte, error) {
	switch ct := ct.(type) {
	case *PrimaryCiphertext:
		return ct.MarshalBinary()
	case *ReencryptedCiphertext:
		return ct.MarshalBinary()
	default:
		return nil, ErrUnknownCiphertext
	}
}

// UnmarshalCiphertext decodes a ciphertext produced by MarshalCiphertext.
func UnmarshalCiphertext(data []byte) (Ciphertext, error) {
	var env envelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("ciphertext: %w", err)
	}
	switch env.Kind {
	case KindPrimary:
		ct := new(PrimaryCiphertext)
		if err := ct.UnmarshalBinary(env.Body); err != nil {
			return nil, err
		}
		return ct, nil
	case KindReencrypted:
		ct := new(ReencryptedCiphertext)
		if err := ct.UnmarshalBinary(env.Body); err != nil {
			return nil, err
		}
		return ct, nil
	default:
		return nil, fmt.Errorf("ciphertext: kind %d: %w", env.Kind, ErrUnknownCiphertext)
	}
}
