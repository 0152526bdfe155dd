package store

import (
	"github.com/babeanu-dorian/MUSE/internal/params"
	"github.com/babeanu-dorian/MUSE/pkg/kmac"
)

// SearchKeyHasher maps a search key to the label it is indexed under.
//
// The storage never sees search keys in the clear when the hasher is backed
// by an external privacy service evaluating the keyed hash homomorphically.
type SearchKeyHasher interface {
	HashSearchKey(key []byte) ([]byte, error)
}

var searchKeyCustomization = []byte("MUSE search key")

type kmacHasher struct {
	key []byte
}

// NewKMACHasher returns a SearchKeyHasher computing KMAC256 under key in the
// clear.
func NewKMACHasher(key []byte) SearchKeyHasher {
	return kmacHasher{key: append([]byte(nil), key...)}
}

func (h kmacHasher) HashSearchKey(key []byte) ([]byte, error) {
	return kmac.Sum(h.key, key, searchKeyCustomization, params.SearchKeyHashBytes), nil
}
