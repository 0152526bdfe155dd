package hash

import (
	"fmt"
	"io"
	"math/big"

	"github.com/babeanu-dorian/MUSE/internal/params"
	"github.com/zeebo/blake3"
)

// DigestLengthBytes is the size of Sum's output.
const DigestLengthBytes = params.DigestLengthBytes

// Hash is the domain separated hash used to derive content identifiers.
//
// Internally, this is a wrapper around blake3, whose extendable output lets
// Digest act as a stream of pseudo-random bytes.
type Hash struct {
	h *blake3.Hasher
}

// New creates a Hash whose state is initialized with the given domain strings.
func New(init ...string) *Hash {
	hash := &Hash{h: blake3.New()}
	for _, d := range init {
		_ = hash.WriteAny(&BytesWithDomain{TheDomain: "init", Bytes: []byte(d)})
	}
	return hash
}

// Digest returns a reader for the current output of the function.
//
// This finalizes the current state of the hash, and returns what's
// essentially a stream of random bytes.
func (hash *Hash) Digest() io.Reader {
	return hash.h.Digest()
}

// Sum returns a slice of length DigestLengthBytes resulting from the current hash state.
// If a different length is required, use io.ReadFull(hash.Digest(), out) instead.
func (hash *Hash) Sum() []byte {
	out := make([]byte, DigestLengthBytes)
	if _, err := io.ReadFull(hash.Digest(), out); err != nil {
		panic(fmt.Sprintf("hash.Sum: internal hash failure: %v", err))
	}
	return out
}

// WriteAny takes many different data types and writes them to the hash state.
//
// Currently supported types:
//
//   - []byte
//   - string
//   - *big.Int (the sign is part of the encoding)
//   - hash.WriterToWithDomain
func (hash *Hash) WriteAny(data ...interface{}) error {
	for _, d := range data {
		var err error
		switch t := d.(type) {
		case []byte:
			err = writeWithDomain(hash.h, &BytesWithDomain{TheDomain: "[]byte", Bytes: t})
		case string:
			err = writeWithDomain(hash.h, &BytesWithDomain{TheDomain: "string", Bytes: []byte(t)})
		case *big.Int:
			if t == nil {
				return fmt.Errorf("hash.Hash: write *big.Int: nil")
			}
			domain := "big.Int"
			if t.Sign() < 0 {
				domain = "-big.Int"
			}
			err = writeWithDomain(hash.h, &BytesWithDomain{TheDomain: domain, Bytes: t.Bytes()})
		case WriterToWithDomain:
			err = writeWithDomain(hash.h, t)
		default:
			return fmt.Errorf("hash.Hash: unsupported type %T", d)
		}
		if err != nil {
			return fmt.Errorf("hash.Hash: write %T: %w", d, err)
		}
	}
	return nil
}

// Clone returns a copy of the Hash in its current state.
func (hash *Hash) Clone() *Hash {
	return &Hash{h: hash.h.Clone()}
}
