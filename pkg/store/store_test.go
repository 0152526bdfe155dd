package store

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"testing"

	"github.com/babeanu-dorian/MUSE/internal/test"
	"github.com/babeanu-dorian/MUSE/pkg/pool"
	"github.com/babeanu-dorian/MUSE/pkg/pre"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

var hashKey = []byte("0123456789abcdef0123456789abcdef")

// setup returns a storage and three clients with cached key pairs.
func setup(t *testing.T) (*Storage, *Client, *Client, *Client) {
	t.Helper()
	scheme := test.Scheme()
	storage := NewStorage(scheme, NewKMACHasher(hashKey))
	keys := test.KeyPairs(3)
	reader := pool.NewLockedReader(rand.Reader)
	alice := NewClientWithKeys("alice", scheme, storage, reader, keys[0])
	bob := NewClientWithKeys("bob", scheme, storage, reader, keys[1])
	carol := NewClientWithKeys("carol", scheme, storage, reader, keys[2])
	return storage, alice, bob, carol
}

func values(xs ...int64) []*big.Int {
	out := make([]*big.Int, 0, len(xs))
	for _, x := range xs {
		out = append(out, big.NewInt(x))
	}
	return out
}

func TestStorage_OwnDocuments(t *testing.T) {
	storage, alice, _, _ := setup(t)
	ctx := context.Background()

	_, err := alice.Store([]string{"blood", "2023"}, big.NewInt(120))
	require.NoError(t, err)
	_, err = alice.Store([]string{"blood"}, big.NewInt(80))
	require.NoError(t, err)
	assert.Equal(t, 2, storage.Len())

	got, err := alice.Search(ctx, "blood")
	require.NoError(t, err)
	assert.Equal(t, values(120, 80), got)

	got, err = alice.Search(ctx, "2023")
	require.NoError(t, err)
	assert.Equal(t, values(120), got)

	got, err = alice.Search(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, got)

	cts, err := storage.Search(ctx, alice.ID(), []byte("blood"))
	require.NoError(t, err)
	for _, ct := range cts {
		assert.Equal(t, pre.KindPrimary, ct.Kind())
	}
}

func TestStorage_GrantRevoke(t *testing.T) {
	storage, alice, bob, carol := setup(t)
	ctx := context.Background()

	_, err := alice.Store([]string{"x-ray"}, big.NewInt(7))
	require.NoError(t, err)
	_, err = bob.Store([]string{"x-ray"}, big.NewInt(8))
	require.NoError(t, err)

	// without a grant, only own documents are visible
	got, err := bob.Search(ctx, "x-ray")
	require.NoError(t, err)
	assert.Equal(t, values(8), got)

	require.NoError(t, alice.GrantAccess(bob.ID(), bob.PublicKey()))
	got, err = bob.Search(ctx, "x-ray")
	require.NoError(t, err)
	assert.Equal(t, values(7, 8), got)

	cts, err := storage.Search(ctx, bob.ID(), []byte("x-ray"))
	require.NoError(t, err)
	require.Len(t, cts, 2)
	assert.Equal(t, pre.KindReencrypted, cts[0].Kind())
	assert.Equal(t, pre.KindPrimary, cts[1].Kind())

	// grants are directed
	got, err = alice.Search(ctx, "x-ray")
	require.NoError(t, err)
	assert.Equal(t, values(7), got)

	got, err = carol.Search(ctx, "x-ray")
	require.NoError(t, err)
	assert.Empty(t, got)

	alice.RevokeAccess(bob.ID())
	got, err = bob.Search(ctx, "x-ray")
	require.NoError(t, err)
	assert.Equal(t, values(8), got)

	// revoking twice is a no-op
	alice.RevokeAccess(bob.ID())
	storage.RevokeAccess("nobody", "bob")
}

func TestStorage_GrantOverwrite(t *testing.T) {
	storage, alice, bob, carol := setup(t)
	ctx := context.Background()
	_, err := alice.Store([]string{"mri"}, big.NewInt(3))
	require.NoError(t, err)

	// a key meant for carol, registered for bob, does not decrypt for bob
	scheme := storage.Scheme()
	keys := test.KeyPairs(3)
	wrong, err := scheme.ReKeyGen(rand.Reader, keys[0].SecretKey(), carol.PublicKey())
	require.NoError(t, err)
	require.NoError(t, storage.GrantAccess(alice.ID(), bob.ID(), wrong))
	_, err = bob.Search(ctx, "mri")
	assert.ErrorIs(t, err, pre.ErrInvalidCiphertext)

	require.NoError(t, alice.GrantAccess(bob.ID(), bob.PublicKey()))
	got, err := bob.Search(ctx, "mri")
	require.NoError(t, err)
	assert.Equal(t, values(3), got)
}

func TestStorage_Store_Errors(t *testing.T) {
	storage, alice, bob, _ := setup(t)

	_, err := alice.Store(nil, big.NewInt(1))
	assert.ErrorIs(t, err, ErrNoSearchKeys)

	_, err = alice.Store([]string{"k"}, big.NewInt(-1))
	assert.ErrorIs(t, err, pre.ErrNegativeMessage)

	_, err = storage.Store(alice.ID(), [][]byte{[]byte("k")}, nil)
	assert.ErrorIs(t, err, pre.ErrInvalidCiphertext)

	assert.ErrorIs(t, storage.GrantAccess(alice.ID(), alice.ID(), &pre.ReencryptionKey{}), ErrSelfGrant)
	assert.ErrorIs(t, storage.GrantAccess(alice.ID(), bob.ID(), nil), pre.ErrNilKey)
	assert.ErrorIs(t, storage.GrantAccess(alice.ID(), bob.ID(), &pre.ReencryptionKey{}), pre.ErrInvalidReKey)
}

func TestStorage_Store_Dedup(t *testing.T) {
	storage, alice, _, _ := setup(t)
	scheme := storage.Scheme()
	ctx := context.Background()

	ct, err := scheme.Encrypt(rand.Reader, big.NewInt(5), alice.PublicKey())
	require.NoError(t, err)
	id1, err := storage.Store(alice.ID(), [][]byte{[]byte("a")}, ct)
	require.NoError(t, err)
	id2, err := storage.Store(alice.ID(), [][]byte{[]byte("a"), []byte("b")}, ct)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
	assert.Len(t, id1.String(), 64)
	assert.Equal(t, 1, storage.Len())

	for _, key := range []string{"a", "b"} {
		got, err := alice.Search(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, values(5), got)
	}
}

func TestStorage_Search_Canceled(t *testing.T) {
	storage, alice, bob, _ := setup(t)
	_, err := alice.Store([]string{"k"}, big.NewInt(1))
	require.NoError(t, err)
	require.NoError(t, alice.GrantAccess(bob.ID(), bob.PublicKey()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = storage.Search(ctx, bob.ID(), []byte("k"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStorage_Concurrent(t *testing.T) {
	storage, alice, bob, carol := setup(t)
	require.NoError(t, alice.GrantAccess(carol.ID(), carol.PublicKey()))
	require.NoError(t, bob.GrantAccess(carol.ID(), carol.PublicKey()))

	var g errgroup.Group
	for i := 0; i < 4; i++ {
		i := int64(i)
		g.Go(func() error {
			if _, err := alice.Store([]string{"shared"}, big.NewInt(i)); err != nil {
				return err
			}
			_, err := bob.Store([]string{"shared"}, big.NewInt(100+i))
			return err
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 8, storage.Len())

	got, err := carol.Search(context.Background(), "shared")
	require.NoError(t, err)
	assert.Len(t, got, 8)
}

type failingHasher struct{}

var errHasher = errors.New("privacy service unavailable")

func (failingHasher) HashSearchKey([]byte) ([]byte, error) {
	return nil, errHasher
}

func TestStorage_HasherError(t *testing.T) {
	storage := NewStorage(test.Scheme(), failingHasher{})
	keys := test.KeyPairs(1)
	alice := NewClientWithKeys("alice", storage.Scheme(), storage, rand.Reader, keys[0])

	_, err := alice.Store([]string{"k"}, big.NewInt(1))
	assert.ErrorIs(t, err, errHasher)
	_, err = alice.Search(context.Background(), "k")
	assert.ErrorIs(t, err, errHasher)
}

func TestKMACHasher(t *testing.T) {
	h := NewKMACHasher(hashKey)
	a1, err := h.HashSearchKey([]byte("a"))
	require.NoError(t, err)
	a2, err := h.HashSearchKey([]byte("a"))
	require.NoError(t, err)
	b, err := h.HashSearchKey([]byte("b"))
	require.NoError(t, err)
	assert.Len(t, a1, 32)
	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, b)

	other, err := NewKMACHasher([]byte("another key")).HashSearchKey([]byte("a"))
	require.NoError(t, err)
	assert.NotEqual(t, a1, other)
}
