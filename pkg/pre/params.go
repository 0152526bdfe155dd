package pre

import (
	"fmt"

	"github.com/babeanu-dorian/MUSE/internal/params"
	"github.com/fxamacker/cbor/v2"
)

// Params are the security parameters of a Scheme.
//
// They must stay fixed for the lifetime of the keys generated under them:
// ciphertexts produced with one K1/K2 do not verify under another.
type Params struct {
	// K1 is the bit length of the blinding value β of reencryption keys.
	K1 int
	// K2 is the bit length of the Fiat–Shamir challenge.
	K2 int
	// PrimeBits is the bit length of each safe prime p, q.
	PrimeBits int
}

// DefaultParams returns K1 = 80, K2 = 80 and 1024 bit safe primes.
func DefaultParams() Params {
	return Params{
		K1:        params.K1,
		K2:        params.K2,
		PrimeBits: params.BitsSafePrime,
	}
}

// Validate checks that the parameters can instantiate the scheme.
func (p Params) Validate() error {
	if p.K1 < 1 {
		return fmt.Errorf("%w: K1 = %d", ErrInvalidParams, p.K1)
	}
	if p.K2 < 1 {
		return fmt.Errorf("%w: K2 = %d", ErrInvalidParams, p.K2)
	}
	if p.PrimeBits < params.MinBitsSafePrime {
		return fmt.Errorf("%w: prime size %d is below %d bits", ErrInvalidParams, p.PrimeBits, params.MinBitsSafePrime)
	}
	return nil
}

type paramsMarshal Params

// MarshalBinary implements encoding.BinaryMarshaler.
func (p Params) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(paramsMarshal(p))
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *Params) UnmarshalBinary(data []byte) error {
	var pm paramsMarshal
	if err := cbor.Unmarshal(data, &pm); err != nil {
		return fmt.Errorf("params: %w", err)
	}
	if err := Params(pm).Validate(); err != nil {
		return err
	}
	*p = Params(pm)
	return nil
}
