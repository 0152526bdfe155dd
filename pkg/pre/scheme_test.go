package pre

import (
	"crypto/rand"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/babeanu-dorian/MUSE/pkg/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMessages(t *testing.T, pk *PublicKey) []*big.Int {
	t.Helper()
	// the largest message has one bit less than N
	largest := new(big.Int).Lsh(one, uint(pk.N().BitLen()-1))
	largest.Sub(largest, one)
	random, err := rand.Int(rand.Reader, largest)
	require.NoError(t, err)
	return []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		big.NewInt(255),
		big.NewInt(1234567890),
		random,
		largest,
	}
}

func TestNew(t *testing.T) {
	_, err := New(Params{K1: 0, K2: 80, PrimeBits: 256}, nil)
	assert.ErrorIs(t, err, ErrInvalidParams)

	s, err := New(testParams, nil)
	require.NoError(t, err)
	assert.Equal(t, testParams, s.Params())
}

func TestKeyGen(t *testing.T) {
	_, x, y, _ := fixtures(t)
	for _, kp := range []*KeyPair{x, y} {
		require.NoError(t, kp.Validate())
		pk, sk := kp.PublicKey(), kp.SecretKey()
		assert.Equal(t, testParams.PrimeBits, sk.P().BitLen())
		assert.Equal(t, testParams.PrimeBits, sk.Q().BitLen())
		assert.Equal(t, 2*testParams.PrimeBits, pk.N().BitLen())
		assert.Equal(t, 0, new(big.Int).Mul(pk.N(), pk.N()).Cmp(pk.NSquared()))
		assert.Equal(t, 0, reductionModulus(sk.P(), sk.Q()).Cmp(sk.RMod()))

		// g₀ is a square, so its order divides rMod
		assert.Equal(t, 0, pk.Modulus().Exp(pk.G0(), sk.RMod()).Cmp(one))
	}
	assert.False(t, x.PublicKey().Equal(y.PublicKey()))
}

func TestScheme_RoundTrip(t *testing.T) {
	s, x, _, _ := fixtures(t)
	pk, sk := x.PublicKey(), x.SecretKey()
	for _, m := range testMessages(t, pk) {
		ct, err := s.Encrypt(rand.Reader, m, pk)
		require.NoError(t, err)
		assert.Equal(t, m.BitLen(), ct.PlaintextBits())
		assert.True(t, ct.PublicKey().Equal(pk))
		require.NoError(t, ct.Validate(s.Params()))

		got, err := s.Decrypt(ct, pk, sk)
		require.NoError(t, err)
		assert.Equal(t, 0, m.Cmp(got), "decrypted %v, want %v", got, m)
	}
}

func TestScheme_Encrypt_Randomized(t *testing.T) {
	s, x, _, _ := fixtures(t)
	m := big.NewInt(42)
	ct1, err := s.Encrypt(rand.Reader, m, x.PublicKey())
	require.NoError(t, err)
	ct2, err := s.Encrypt(rand.Reader, m, x.PublicKey())
	require.NoError(t, err)
	assert.NotEqual(t, 0, ct1.A().Cmp(ct2.A()))
}

func TestScheme_Encrypt_Errors(t *testing.T) {
	s, x, _, _ := fixtures(t)
	pk := x.PublicKey()

	_, err := s.Encrypt(rand.Reader, big.NewInt(-1), pk)
	assert.ErrorIs(t, err, ErrNegativeMessage)

	_, err = s.Encrypt(rand.Reader, pk.N(), pk)
	assert.ErrorIs(t, err, ErrMessageTooLarge)

	_, err = s.Encrypt(rand.Reader, big.NewInt(1), nil)
	assert.ErrorIs(t, err, ErrNilKey)
}

func TestScheme_Reencrypt_RoundTrip(t *testing.T) {
	s, x, y, _ := fixtures(t)
	rk, err := s.ReKeyGen(rand.Reader, x.SecretKey(), y.PublicKey())
	require.NoError(t, err)

	for _, m := range testMessages(t, x.PublicKey()) {
		ct, err := s.Encrypt(rand.Reader, m, x.PublicKey())
		require.NoError(t, err)

		rct, err := s.Reencrypt(ct, rk)
		require.NoError(t, err)
		assert.True(t, rct.PublicKey().Equal(x.PublicKey()), "reencryption must keep the original key")
		assert.Equal(t, ct.PlaintextBits(), rct.PlaintextBits())

		got, err := s.Decrypt(rct, y.PublicKey(), y.SecretKey())
		require.NoError(t, err)
		assert.Equal(t, 0, m.Cmp(got), "decrypted %v, want %v", got, m)
	}
}

func TestScheme_ReKeyGen(t *testing.T) {
	s, x, y, _ := fixtures(t)
	rk, err := s.ReKeyGen(rand.Reader, x.SecretKey(), y.PublicKey())
	require.NoError(t, err)

	assert.True(t, rk.R().Sign() >= 0 && rk.R().Cmp(x.SecretKey().RMod()) < 0)
	assert.LessOrEqual(t, rk.C().BitLen(), s.Params().K1)
	for _, v := range []*big.Int{rk.A(), rk.B()} {
		assert.True(t, v.Sign() > 0 && v.Cmp(y.PublicKey().NSquared()) < 0)
	}

	_, err = s.ReKeyGen(rand.Reader, nil, y.PublicKey())
	assert.ErrorIs(t, err, ErrNilKey)
	_, err = s.ReKeyGen(rand.Reader, x.SecretKey(), nil)
	assert.ErrorIs(t, err, ErrNilKey)
}

func TestScheme_Decrypt_WrongKey(t *testing.T) {
	s, x, y, z := fixtures(t)
	m := big.NewInt(987654321)
	ct, err := s.Encrypt(rand.Reader, m, x.PublicKey())
	require.NoError(t, err)

	_, err = s.Decrypt(ct, y.PublicKey(), y.SecretKey())
	assert.ErrorIs(t, err, ErrInvalidCiphertext)

	rk, err := s.ReKeyGen(rand.Reader, x.SecretKey(), y.PublicKey())
	require.NoError(t, err)
	rct, err := s.Reencrypt(ct, rk)
	require.NoError(t, err)

	_, err = s.Decrypt(rct, z.PublicKey(), z.SecretKey())
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
	_, err = s.Decrypt(rct, x.PublicKey(), x.SecretKey())
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestScheme_Decrypt_Errors(t *testing.T) {
	s, x, _, _ := fixtures(t)
	_, err := s.Decrypt(nil, x.PublicKey(), x.SecretKey())
	assert.ErrorIs(t, err, ErrUnknownCiphertext)

	_, err = s.Decrypt(&PrimaryCiphertext{}, nil, x.SecretKey())
	assert.ErrorIs(t, err, ErrNilKey)

	_, err = s.Decrypt((*PrimaryCiphertext)(nil), x.PublicKey(), x.SecretKey())
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
	_, err = s.Decrypt((*ReencryptedCiphertext)(nil), x.PublicKey(), x.SecretKey())
	assert.ErrorIs(t, err, ErrInvalidCiphertext)

	rk, err := s.ReKeyGen(rand.Reader, x.SecretKey(), x.PublicKey())
	require.NoError(t, err)
	_, err = s.Reencrypt(nil, rk)
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestScheme_ZeroValues(t *testing.T) {
	s, x, y, _ := fixtures(t)
	pk, sk := x.PublicKey(), x.SecretKey()
	ct, err := s.Encrypt(rand.Reader, big.NewInt(12), pk)
	require.NoError(t, err)
	rk, err := s.ReKeyGen(rand.Reader, sk, y.PublicKey())
	require.NoError(t, err)
	rct, err := s.Reencrypt(ct, rk)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		_, err = s.Reencrypt(ct, &ReencryptionKey{})
		assert.ErrorIs(t, err, ErrInvalidReKey)
		_, err = s.Reencrypt(ct, nil)
		assert.ErrorIs(t, err, ErrNilKey)

		for _, c := range []Ciphertext{ct, rct} {
			_, err = s.Decrypt(c, pk, &SecretKey{})
			assert.ErrorIs(t, err, ErrNilKey)
			_, err = s.Decrypt(c, &PublicKey{}, sk)
			assert.ErrorIs(t, err, ErrNilKey)
		}

		_, err = s.Encrypt(rand.Reader, big.NewInt(1), &PublicKey{})
		assert.ErrorIs(t, err, ErrNilKey)
		_, err = s.ReKeyGen(rand.Reader, &SecretKey{}, y.PublicKey())
		assert.ErrorIs(t, err, ErrNilKey)
		_, err = s.ReKeyGen(rand.Reader, sk, &PublicKey{})
		assert.ErrorIs(t, err, ErrNilKey)

		forged := *ct
		forged.pk = &PublicKey{}
		assert.ErrorIs(t, forged.Validate(s.Params()), ErrInvalidCiphertext)

		assert.ErrorIs(t, (&KeyPair{pk: pk, sk: &SecretKey{}}).Validate(), ErrNilKey)
		assert.ErrorIs(t, (&PublicKey{}).Validate(), ErrNilKey)
		assert.False(t, pk.Equal(&PublicKey{}))
	})
	assert.ErrorIs(t, (&ReencryptionKey{}).Validate(), ErrInvalidReKey)
	assert.NoError(t, rk.Validate())
}

func TestScheme_ConcurrentKeyGen(t *testing.T) {
	pl := pool.NewPool(4)
	defer pl.TearDown()
	s, err := New(Params{K1: 16, K2: 16, PrimeBits: 64}, pl)
	require.NoError(t, err)

	const callers = 8
	keys := make([]*KeyPair, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 3; j++ {
				keys[i] = s.KeyGen(rand.Reader)
			}
		}(i)
	}
	wg.Wait()
	for _, kp := range keys {
		assert.NoError(t, kp.Validate())
	}
}

// A key for x → y applied to a ciphertext of z is not bound to it. The result
// is only required not to decrypt silently to the original message.
func TestScheme_Reencrypt_WrongDelegator(t *testing.T) {
	s, x, y, z := fixtures(t)
	rk, err := s.ReKeyGen(rand.Reader, x.SecretKey(), y.PublicKey())
	require.NoError(t, err)

	m := big.NewInt(1234567890)
	ct, err := s.Encrypt(rand.Reader, m, z.PublicKey())
	require.NoError(t, err)

	rct, err := s.Reencrypt(ct, rk)
	require.NoError(t, err, "the proof of ct is valid, the key is not checked")

	got, err := s.Decrypt(rct, y.PublicKey(), y.SecretKey())
	if err != nil {
		assert.ErrorIs(t, err, ErrInvalidCiphertext)
		return
	}
	assert.NotEqual(t, 0, m.Cmp(got))
}

func TestScheme_ConcreteScenario(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 512 bit key generation in short mode")
	}
	pl := pool.NewPool(0)
	defer pl.TearDown()

	s, err := New(Params{K1: 80, K2: 80, PrimeBits: 512}, pl)
	require.NoError(t, err)
	x := s.KeyGen(rand.Reader)
	y := s.KeyGen(rand.Reader)

	m := big.NewInt(1234567890)
	ct, err := s.Encrypt(rand.Reader, m, x.PublicKey())
	require.NoError(t, err)

	got, err := s.Decrypt(ct, x.PublicKey(), x.SecretKey())
	require.NoError(t, err)
	assert.Equal(t, "1234567890", got.String())

	rk, err := s.ReKeyGen(rand.Reader, x.SecretKey(), y.PublicKey())
	require.NoError(t, err)
	rct, err := s.Reencrypt(ct, rk)
	require.NoError(t, err)

	got, err = s.Decrypt(rct, y.PublicKey(), y.SecretKey())
	require.NoError(t, err)
	assert.Equal(t, "1234567890", got.String())
}

func TestScheme_LockedReader(t *testing.T) {
	s, x, _, _ := fixtures(t)
	reader := pool.NewLockedReader(rand.Reader)
	pl := pool.NewPool(4)
	defer pl.TearDown()

	m := big.NewInt(77)
	results := pool.Parallelize(pl, 8, func(int) error {
		ct, err := s.Encrypt(reader, m, x.PublicKey())
		if err != nil {
			return err
		}
		got, err := s.Decrypt(ct, x.PublicKey(), x.SecretKey())
		if err != nil {
			return err
		}
		if got.Cmp(m) != 0 {
			return errors.New("wrong plaintext")
		}
		return nil
	})
	for _, err := range results {
		assert.NoError(t, err)
	}
}
