package store

import (
	"context"
	"fmt"
	"io"
	"math/big"

	"github.com/babeanu-dorian/MUSE/pkg/pre"
)

// Client stores documents encrypted under its own key pair, and decrypts the
// results of its searches.
//
// The client owns rand; a Client must not be used concurrently unless rand is
// safe for concurrent use, such as a pool.LockedReader.
type Client struct {
	id      ClientID
	scheme  *pre.Scheme
	storage *Storage
	rand    io.Reader
	keys    *pre.KeyPair
}

// NewClient generates a key pair for a new client.
func NewClient(id ClientID, scheme *pre.Scheme, storage *Storage, rand io.Reader) *Client {
	return NewClientWithKeys(id, scheme, storage, rand, scheme.KeyGen(rand))
}

// NewClientWithKeys returns a client using an existing key pair.
func NewClientWithKeys(id ClientID, scheme *pre.Scheme, storage *Storage, rand io.Reader, keys *pre.KeyPair) *Client {
	return &Client{
		id:      id,
		scheme:  scheme,
		storage: storage,
		rand:    rand,
		keys:    keys,
	}
}

// ID returns the client's identifier.
func (c *Client) ID() ClientID {
	return c.id
}

// PublicKey returns the key other clients grant access to.
func (c *Client) PublicKey() *pre.PublicKey {
	return c.keys.PublicKey()
}

// GrantAccess lets the client to, with public key pk, search c's documents.
func (c *Client) GrantAccess(to ClientID, pk *pre.PublicKey) error {
	rk, err := c.scheme.ReKeyGen(c.rand, c.keys.SecretKey(), pk)
	if err != nil {
		return err
	}
	return c.storage.GrantAccess(c.id, to, rk)
}

// RevokeAccess removes a previous grant to the client to.
func (c *Client) RevokeAccess(to ClientID) {
	c.storage.RevokeAccess(c.id, to)
}

// Store encrypts data and stores it under every search key.
func (c *Client) Store(searchKeys []string, data *big.Int) (DocumentID, error) {
	ct, err := c.scheme.Encrypt(c.rand, data, c.keys.PublicKey())
	if err != nil {
		return DocumentID{}, err
	}
	keys := make([][]byte, 0, len(searchKeys))
	for _, k := range searchKeys {
		keys = append(keys, []byte(k))
	}
	return c.storage.Store(c.id, keys, ct)
}

// Search returns the plaintexts of every document indexed under searchKey that
// the client may read.
func (c *Client) Search(ctx context.Context, searchKey string) ([]*big.Int, error) {
	cts, err := c.storage.Search(ctx, c.id, []byte(searchKey))
	if err != nil {
		return nil, err
	}
	out := make([]*big.Int, 0, len(cts))
	for _, ct := range cts {
		m, err := c.scheme.Decrypt(ct, c.keys.PublicKey(), c.keys.SecretKey())
		if err != nil {
			return nil, fmt.Errorf("store: decrypt %s result: %w", ct.Kind(), err)
		}
		out = append(out, m)
	}
	return out, nil
}
