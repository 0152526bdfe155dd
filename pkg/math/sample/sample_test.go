package sample

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand"
	"testing"

	"github.com/babeanu-dorian/MUSE/pkg/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModN(t *testing.T) {
	n := big.NewInt(3 * 11 * 65519)
	for i := 0; i < 100; i++ {
		x := ModN(rand.Reader, n)
		assert.True(t, x.Sign() >= 0 && x.Cmp(n) < 0, "ModN generated a number outside of [0, %v): %v", n, x)
	}
}

func TestRange(t *testing.T) {
	r := mrand.New(mrand.NewSource(0))
	lo, hi := big.NewInt(5), big.NewInt(8)
	seen := map[int64]bool{}
	for i := 0; i < 500; i++ {
		x := Range(r, lo, hi)
		require.True(t, x.Cmp(lo) >= 0 && x.Cmp(hi) <= 0, "Range generated %v", x)
		seen[x.Int64()] = true
	}
	// both bounds are included
	assert.Len(t, seen, 4)

	single := Range(r, hi, hi)
	assert.Equal(t, 0, single.Cmp(hi))
}

func TestBits(t *testing.T) {
	r := mrand.New(mrand.NewSource(1))
	for _, bits := range []int{1, 7, 8, 9, 80, 1023} {
		for i := 0; i < 20; i++ {
			assert.LessOrEqual(t, Bits(r, bits).BitLen(), bits)
		}
	}
	assert.Equal(t, 0, Bits(r, 0).Sign())
}

const safePrimeProbabilityIterations = 20

func checkSafePrime(t *testing.T, p *big.Int, bits int) {
	t.Helper()
	assert.Equal(t, bits, p.BitLen(), "safe prime has the wrong size")
	assert.True(t, p.ProbablyPrime(safePrimeProbabilityIterations), "SafePrime generated a non prime number: %v", p)
	q := new(big.Int).Rsh(p, 1)
	assert.True(t, q.ProbablyPrime(safePrimeProbabilityIterations), "p isn't safe because (p - 1) / 2 isn't prime: %v", q)
}

func TestSafePrime(t *testing.T) {
	for _, bits := range []int{MinSafePrimeBits, 16, 33, 128, 256} {
		checkSafePrime(t, SafePrime(rand.Reader, bits), bits)
	}
	assert.Panics(t, func() { SafePrime(rand.Reader, MinSafePrimeBits-1) })
}

func TestSafePrimes(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	for _, p := range []*pool.Pool{nil, pl} {
		primes := SafePrimes(rand.Reader, 128, 2, p)
		require.Len(t, primes, 2)
		assert.NotEqual(t, 0, primes[0].Cmp(primes[1]))
		for _, prime := range primes {
			checkSafePrime(t, prime, 128)
		}
	}
}

var resultInt *big.Int

func BenchmarkSafePrime(b *testing.B) {
	for i := 0; i < b.N; i++ {
		resultInt = SafePrime(rand.Reader, 512)
	}
}
