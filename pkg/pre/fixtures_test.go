package pre

import (
	"crypto/rand"
	"sync"
	"testing"

	"github.com/babeanu-dorian/MUSE/pkg/pool"
	"github.com/stretchr/testify/require"
)

// testParams keep key generation fast, while leaving room for 80 bit masks.
var testParams = Params{K1: 80, K2: 80, PrimeBits: 256}

var (
	fixturesOnce     sync.Once
	testScheme       *Scheme
	keyX, keyY, keyZ *KeyPair
)

// fixtures returns a scheme and three independent key pairs, generated once
// for the whole package.
func fixtures(t testing.TB) (*Scheme, *KeyPair, *KeyPair, *KeyPair) {
	t.Helper()
	fixturesOnce.Do(func() {
		pl := pool.NewPool(0)
		defer pl.TearDown()
		gen, err := New(testParams, pl)
		if err != nil {
			panic(err)
		}
		keyX = gen.KeyGen(rand.Reader)
		keyY = gen.KeyGen(rand.Reader)
		keyZ = gen.KeyGen(rand.Reader)

		testScheme, err = New(testParams, nil)
		if err != nil {
			panic(err)
		}
	})
	require.NotNil(t, testScheme)
	return testScheme, keyX, keyY, keyZ
}
