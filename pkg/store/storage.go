// Package store implements a searchable encrypted document store, where
// owners delegate search results to other clients through proxy
// re-encryption.
package store

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/babeanu-dorian/MUSE/internal/params"
	"github.com/babeanu-dorian/MUSE/pkg/hash"
	"github.com/babeanu-dorian/MUSE/pkg/pre"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoSearchKeys = errors.New("store: document has no search keys")
	ErrSelfGrant    = errors.New("store: cannot grant access to oneself")
)

// ClientID identifies a client of the storage.
type ClientID string

// DocumentID is the content identifier of a stored ciphertext.
type DocumentID [params.DigestLengthBytes]byte

func (id DocumentID) String() string {
	return hex.EncodeToString(id[:])
}

type document struct {
	id    DocumentID
	owner ClientID
	// data is the cbor encoding of the primary ciphertext
	data []byte
}

// Storage holds primary ciphertexts indexed by hashed search keys, together
// with the reencryption keys owners have granted to other clients.
//
// It is safe for concurrent use.
type Storage struct {
	scheme *pre.Scheme
	hasher SearchKeyHasher

	mtx       sync.RWMutex
	documents []document
	byID      map[DocumentID]int
	// index maps a hashed search key to positions in documents, in insertion order.
	index map[string][]int
	// grants[from][to] lets to search the documents of from.
	grants map[ClientID]map[ClientID]*pre.ReencryptionKey
}

// NewStorage returns an empty storage using scheme to verify and reencrypt
// documents.
func NewStorage(scheme *pre.Scheme, hasher SearchKeyHasher) *Storage {
	return &Storage{
		scheme: scheme,
		hasher: hasher,
		byID:   make(map[DocumentID]int),
		index:  make(map[string][]int),
		grants: make(map[ClientID]map[ClientID]*pre.ReencryptionKey),
	}
}

// Scheme returns the scheme the storage was created with.
func (s *Storage) Scheme() *pre.Scheme {
	return s.scheme
}

// GrantAccess lets to search the documents of from, replacing any previous key.
func (s *Storage) GrantAccess(from, to ClientID, rk *pre.ReencryptionKey) error {
	if from == to {
		return ErrSelfGrant
	}
	if err := rk.Validate(); err != nil {
		return err
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.grants[from] == nil {
		s.grants[from] = make(map[ClientID]*pre.ReencryptionKey)
	}
	s.grants[from][to] = rk
	return nil
}

// RevokeAccess removes the grant from → to, if any.
func (s *Storage) RevokeAccess(from, to ClientID) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	delete(s.grants[from], to)
}

// Store verifies ct and indexes it under every search key.
//
// Storing the same ciphertext twice only adds the new search keys.
func (s *Storage) Store(owner ClientID, searchKeys [][]byte, ct *pre.PrimaryCiphertext) (DocumentID, error) {
	var id DocumentID
	if len(searchKeys) == 0 {
		return id, ErrNoSearchKeys
	}
	if err := s.scheme.Validate(ct); err != nil {
		return id, err
	}
	data, err := ct.MarshalBinary()
	if err != nil {
		return id, err
	}
	h := hash.New("MUSE Document")
	if err = h.WriteAny(ct); err != nil {
		return id, err
	}
	copy(id[:], h.Sum())

	labels := make([]string, 0, len(searchKeys))
	for _, key := range searchKeys {
		label, err := s.hasher.HashSearchKey(key)
		if err != nil {
			return id, fmt.Errorf("store: hash search key: %w", err)
		}
		labels = append(labels, string(label))
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()
	pos, ok := s.byID[id]
	if !ok {
		pos = len(s.documents)
		s.documents = append(s.documents, document{id: id, owner: owner, data: data})
		s.byID[id] = pos
	}
	for _, label := range labels {
		if !contains(s.index[label], pos) {
			s.index[label] = append(s.index[label], pos)
		}
	}
	return id, nil
}

func contains(xs []int, x int) bool {
	for _, y := range xs {
		if y == x {
			return true
		}
	}
	return false
}

// Len returns the number of stored documents.
func (s *Storage) Len() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return len(s.documents)
}

// match is a document selected by a search, with the key to reencrypt it
// under if the requester is not its owner.
type match struct {
	doc document
	rk  *pre.ReencryptionKey
}

// Search returns the documents indexed under searchKey that requester may read.
//
// The requester's own documents are returned as *pre.PrimaryCiphertext.
// Documents of owners who granted access to requester are reencrypted in
// parallel and returned as *pre.ReencryptedCiphertext. All other documents
// are skipped. Results are in insertion order.
func (s *Storage) Search(ctx context.Context, requester ClientID, searchKey []byte) ([]pre.Ciphertext, error) {
	label, err := s.hasher.HashSearchKey(searchKey)
	if err != nil {
		return nil, fmt.Errorf("store: hash search key: %w", err)
	}

	s.mtx.RLock()
	positions := s.index[string(label)]
	matches := make([]match, 0, len(positions))
	for _, pos := range positions {
		doc := s.documents[pos]
		if doc.owner == requester {
			matches = append(matches, match{doc: doc})
			continue
		}
		if rk, ok := s.grants[doc.owner][requester]; ok {
			matches = append(matches, match{doc: doc, rk: rk})
		}
	}
	s.mtx.RUnlock()

	results := make([]pre.Ciphertext, len(matches))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, m := range matches {
		i, m := i, m
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ct := new(pre.PrimaryCiphertext)
			if err := ct.UnmarshalBinary(m.doc.data); err != nil {
				return fmt.Errorf("store: document %s: %w", m.doc.id, err)
			}
			if m.rk == nil {
				results[i] = ct
				return nil
			}
			rct, err := s.scheme.Reencrypt(ct, m.rk)
			if err != nil {
				return fmt.Errorf("store: document %s: %w", m.doc.id, err)
			}
			results[i] = rct
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
