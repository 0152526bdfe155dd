package sample

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/babeanu-dorian/MUSE/pkg/pool"
)

// trialPrimes contains the first 128 odd prime numbers
//
// Candidates are sieved against these before running any Miller-Rabin round.
var trialPrimes = []uint64{
	3, 5, 7, 11, 13, 17, 19, 23,
	29, 31, 37, 41, 43, 47, 53, 59,
	61, 67, 71, 73, 79, 83, 89, 97,
	101, 103, 107, 109, 113, 127, 131, 137,
	139, 149, 151, 157, 163, 167, 173, 179,
	181, 191, 193, 197, 199, 211, 223, 227,
	229, 233, 239, 241, 251, 257, 263, 269,
	271, 277, 281, 283, 293, 307, 311, 313,
	317, 331, 337, 347, 349, 353, 359, 367,
	373, 379, 383, 389, 397, 401, 409, 419,
	421, 431, 433, 439, 443, 449, 457, 461,
	463, 467, 479, 487, 491, 499, 503, 509,
	521, 523, 541, 547, 557, 563, 569, 571,
	577, 587, 593, 599, 601, 607, 613, 617,
	619, 631, 641, 643, 647, 653, 659, 661,
	673, 677, 683, 691, 701, 709, 719, 727,
	733, 739, 743, 751, 757, 761, 769, 773,
}

// MinSafePrimeBits is the smallest size accepted by SafePrime.
// Below it, candidates could coincide with the trial primes themselves.
const MinSafePrimeBits = 12

// the number of iterations to use when checking primality
//
// 20 is the same number that Go uses internally.
const safePrimalityIterations = 20

// maxDelta bounds the walk from a random starting point before resampling.
const maxDelta = 1 << 16

// maxPrimeIterations is the number of times to try generating a new prime.
//
// This is substantially larger than the other max iterations we have for generation,
// because of the sparsity of safe primes.
const maxPrimeIterations = 100_000

// ErrMaxPrimeIterations is the panic value used when no safe prime could be found.
var ErrMaxPrimeIterations = fmt.Errorf("sample: failed to generate prime after %d iterations", maxPrimeIterations)

// potentialSafePrime generates a candidate safe prime of exactly bits bits.
//
// The candidate has passed trial division, for both p and (p-1)/2, but not the
// heavier Miller-Rabin tests.
func potentialSafePrime(rand io.Reader, bits int) (*big.Int, error) {
	if bits < MinSafePrimeBits {
		return nil, errors.New("sample: safe prime size is too small")
	}

	// The number of significant bits in the first byte of our number
	lastBits := uint(bits % 8)
	if lastBits == 0 {
		lastBits = 8
	}

	bytes := make([]byte, (bits+7)/8)
	mods := make([]uint64, len(trialPrimes))
	base := new(big.Int)
	scratch := new(big.Int)

	for {
		if _, err := io.ReadFull(rand, bytes); err != nil {
			return nil, err
		}

		bytes[0] &= uint8(int(1<<lastBits) - 1)
		// Setting the top two bits makes the product of two such primes exactly 2⋅bits long.
		if lastBits >= 2 {
			bytes[0] |= 0b11 << (lastBits - 2)
		} else {
			bytes[0] |= 1
			bytes[1] |= 0b1000_0000
		}
		// Safe primes are 3 mod 4.
		bytes[len(bytes)-1] |= 3

		base.SetBytes(bytes)
		for i, prime := range trialPrimes {
			scratch.SetUint64(prime)
			mods[i] = scratch.Mod(base, scratch).Uint64()
		}

	NextDelta:
		// Adding 4 each time keeps the candidate 3 mod 4.
		for delta := uint64(0); delta < maxDelta; delta += 4 {
			for i, prime := range trialPrimes {
				// x = 0 mod r means x is composite, x = 1 mod r means (x-1)/2 is.
				if (mods[i]+delta)%prime <= 1 {
					continue NextDelta
				}
			}
			p := new(big.Int).Add(base, scratch.SetUint64(delta))
			if p.BitLen() != bits {
				break
			}
			return p, nil
		}
	}
}

// trySafePrime runs a single candidate through the full primality tests.
func trySafePrime(rand io.Reader, bits int) (*big.Int, bool) {
	p, err := potentialSafePrime(rand, bits)
	if err != nil {
		return nil, false
	}
	// x = (p - 1) / 2, which has bits - 1 bits
	x := new(big.Int).Rsh(p, 1)
	// x is the more likely to fail, so check it first.
	if !x.ProbablyPrime(safePrimalityIterations) {
		return nil, false
	}
	if !p.ProbablyPrime(safePrimalityIterations) {
		return nil, false
	}
	return p, true
}

// SafePrime returns a prime p of exactly bits bits, such that (p - 1) / 2 is also prime.
//
// Candidates have their top two bits set and are 3 mod 4, and each one is found
// by walking upwards from a random start. The output is therefore not uniform
// over all safe primes of that size.
func SafePrime(rand io.Reader, bits int) *big.Int {
	if bits < MinSafePrimeBits {
		panic(fmt.Sprintf("sample: safe primes need at least %d bits, got %d", MinSafePrimeBits, bits))
	}
	for i := 0; i < maxPrimeIterations; i++ {
		if p, ok := trySafePrime(rand, bits); ok {
			return p
		}
	}
	panic(ErrMaxPrimeIterations)
}

// SafePrimes returns count safe primes of bits bits, pairwise distinct,
// searching in parallel on pl. A nil pool searches on the calling goroutine.
func SafePrimes(rand io.Reader, bits, count int, pl *pool.Pool) []*big.Int {
	if bits < MinSafePrimeBits {
		panic(fmt.Sprintf("sample: safe primes need at least %d bits, got %d", MinSafePrimeBits, bits))
	}
	reader := pool.NewLockedReader(rand)
	for {
		primes := pool.Search(pl, count, func() (*big.Int, bool) {
			return trySafePrime(reader, bits)
		})
		if distinct(primes) {
			return primes
		}
	}
}

func distinct(xs []*big.Int) bool {
	for i := range xs {
		for j := i + 1; j < len(xs); j++ {
			if xs[i].Cmp(xs[j]) == 0 {
				return false
			}
		}
	}
	return true
}
