package test

import (
	"crypto/rand"
	"sync"

	"github.com/babeanu-dorian/MUSE/pkg/pool"
	"github.com/babeanu-dorian/MUSE/pkg/pre"
)

// Params keep key generation fast in tests, while leaving room for 80 bit masks.
var Params = pre.Params{K1: 80, K2: 80, PrimeBits: 256}

var (
	keysMtx sync.Mutex
	keys    []*pre.KeyPair
)

// Scheme returns a scheme instantiated with Params.
func Scheme() *pre.Scheme {
	s, err := pre.New(Params, nil)
	if err != nil {
		panic(err)
	}
	return s
}

// KeyPairs returns count distinct key pairs generated under Params.
//
// Key pairs are cached for the lifetime of the test binary, so that
// consecutive calls return the same pairs in the same order.
func KeyPairs(count int) []*pre.KeyPair {
	keysMtx.Lock()
	defer keysMtx.Unlock()
	if missing := count - len(keys); missing > 0 {
		pl := pool.NewPool(0)
		defer pl.TearDown()
		gen, err := pre.New(Params, pl)
		if err != nil {
			panic(err)
		}
		for i := 0; i < missing; i++ {
			keys = append(keys, gen.KeyGen(rand.Reader))
		}
	}
	return keys[:count]
}
