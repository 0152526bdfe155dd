// Package kmac implements KMAC256, the keyed hash of NIST SP 800-185, on top
// of cSHAKE256.
package kmac

import (
	"encoding/binary"
	"hash"

	"github.com/babeanu-dorian/MUSE/internal/params"
	"golang.org/x/crypto/sha3"
)

// functionName is the cSHAKE function name reserved for KMAC.
var functionName = []byte("KMAC")

// KMAC is a KMAC256 instance with a fixed key, customization string and
// output length. It implements hash.Hash.
type KMAC struct {
	h sha3.ShakeHash
	// initial is the state right after the key was absorbed
	initial  sha3.ShakeHash
	outBytes int
}

var _ hash.Hash = (*KMAC)(nil)

// New returns KMAC256 keyed with key, producing outBytes bytes.
func New(key, customization []byte, outBytes int) *KMAC {
	h := sha3.NewCShake256(functionName, customization)
	_, _ = h.Write(bytepad(encodeString(key), params.KMACRate))
	return &KMAC{
		h:        h,
		initial:  h.Clone(),
		outBytes: outBytes,
	}
}

// Write absorbs more data. It never returns an error.
func (k *KMAC) Write(p []byte) (int, error) {
	return k.h.Write(p)
}

// Sum appends the MAC of the data written so far to b.
// It does not change the underlying state.
func (k *KMAC) Sum(b []byte) []byte {
	h := k.h.Clone()
	_, _ = h.Write(rightEncode(uint64(k.outBytes) * 8))
	out := make([]byte, k.outBytes)
	_, _ = h.Read(out)
	return append(b, out...)
}

// Reset restores the state right after the key was absorbed.
func (k *KMAC) Reset() {
	k.h = k.initial.Clone()
}

// Size returns the output length in bytes.
func (k *KMAC) Size() int {
	return k.outBytes
}

// BlockSize returns the rate of cSHAKE256.
func (k *KMAC) BlockSize() int {
	return params.KMACRate
}

// Sum returns KMAC256(key, data, 8⋅outBytes, customization).
func Sum(key, data, customization []byte, outBytes int) []byte {
	k := New(key, customization, outBytes)
	_, _ = k.Write(data)
	return k.Sum(nil)
}

// encode returns the big-endian encoding of x without leading zeros, or a
// single zero byte if x = 0.
func encode(x uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], x)
	i := 0
	for i < 7 && buf[i] == 0 {
		i++
	}
	return buf[i:]
}

func leftEncode(x uint64) []byte {
	e := encode(x)
	return append([]byte{byte(len(e))}, e...)
}

func rightEncode(x uint64) []byte {
	e := encode(x)
	return append(e, byte(len(e)))
}

func encodeString(s []byte) []byte {
	return append(leftEncode(uint64(len(s))*8), s...)
}

// bytepad prepends the encoding of w to x, and pads the result with zeros to a
// multiple of w bytes.
func bytepad(x []byte, w int) []byte {
	out := append(leftEncode(uint64(w)), x...)
	if rem := len(out) % w; rem != 0 {
		out = append(out, make([]byte, w-rem)...)
	}
	return out
}
