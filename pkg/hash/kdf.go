package hash

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"math/big"
)

// zeroIV is the fixed counter block the keystream starts from.
var zeroIV = make([]byte, aes.BlockSize)

// encode returns the minimal big-endian encoding of |x|, using a single zero
// byte for 0.
func encode(x *big.Int) []byte {
	if x.Sign() == 0 {
		return []byte{0}
	}
	return x.Bytes()
}

// IntHash deterministically maps x to an integer of at most bits bits.
//
// The SHA-256 digest of x keys AES-256 in CTR mode with a zero IV. The first
// ⌈bits/8⌉ bytes of the keystream are read as a big-endian integer, and the
// excess low-order bits are shifted out so that exactly bits bits remain.
func IntHash(x *big.Int, bits int) *big.Int {
	if bits <= 0 {
		return new(big.Int)
	}
	digest := sha256.Sum256(encode(x))
	block, err := aes.NewCipher(digest[:])
	if err != nil {
		// unreachable, the key is always 32 bytes long
		panic(err)
	}
	byteSize := (bits + 7) / 8
	out := make([]byte, byteSize)
	cipher.NewCTR(block, zeroIV).XORKeyStream(out, out)

	result := new(big.Int).SetBytes(out)
	return result.Rsh(result, uint(byteSize*8-bits))
}

// IntHashMod maps x to [0, top), as IntHash(x, bitlen(top)) mod top.
func IntHashMod(x, top *big.Int) *big.Int {
	h := IntHash(x, top.BitLen())
	return h.Mod(h, top)
}

// Concat packs xs into a single integer, in order.
//
// For each x, the accumulator is shifted left by bitlen(x) bits, or by 1 bit
// when x = 0, and x is added. This is the encoding of Fiat–Shamir transcripts
// and must not change.
func Concat(xs ...*big.Int) *big.Int {
	result := new(big.Int)
	for _, x := range xs {
		shift := x.BitLen()
		if shift == 0 {
			shift = 1
		}
		result.Lsh(result, uint(shift))
		result.Add(result, x)
	}
	return result
}
