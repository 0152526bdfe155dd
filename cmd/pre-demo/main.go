// Command pre-demo runs the proxy re-encryption scheme end to end: direct
// decryption, delegated decryption, and the searchable storage flow.
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/babeanu-dorian/MUSE/internal/params"
	"github.com/babeanu-dorian/MUSE/pkg/pool"
	"github.com/babeanu-dorian/MUSE/pkg/pre"
	"github.com/babeanu-dorian/MUSE/pkg/store"
)

var errMismatch = errors.New("decrypted value does not match")

func check(step string, got, want *big.Int) error {
	if got.Cmp(want) != 0 {
		return fmt.Errorf("%s: %w: got %v, want %v", step, errMismatch, got, want)
	}
	fmt.Printf("%-24s %v\n", step, got)
	return nil
}

func checkAll(step string, got []*big.Int, want ...int64) error {
	if len(got) != len(want) {
		return fmt.Errorf("%s: %w: got %d results, want %d", step, errMismatch, len(got), len(want))
	}
	for i := range want {
		if got[i].Cmp(big.NewInt(want[i])) != 0 {
			return fmt.Errorf("%s: %w: result %d is %v, want %d", step, errMismatch, i, got[i], want[i])
		}
	}
	fmt.Printf("%-24s %v\n", step, got)
	return nil
}

func scenario(s *pre.Scheme, m *big.Int) error {
	start := time.Now()
	x := s.KeyGen(rand.Reader)
	y := s.KeyGen(rand.Reader)
	fmt.Printf("%-24s %v\n", "keygen", time.Since(start).Round(time.Millisecond))

	ct, err := s.Encrypt(rand.Reader, m, x.PublicKey())
	if err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}
	got, err := s.Decrypt(ct, x.PublicKey(), x.SecretKey())
	if err != nil {
		return fmt.Errorf("decrypt: %w", err)
	}
	if err = check("decrypt", got, m); err != nil {
		return err
	}

	rk, err := s.ReKeyGen(rand.Reader, x.SecretKey(), y.PublicKey())
	if err != nil {
		return fmt.Errorf("rekeygen: %w", err)
	}
	rct, err := s.Reencrypt(ct, rk)
	if err != nil {
		return fmt.Errorf("reencrypt: %w", err)
	}
	got, err = s.Decrypt(rct, y.PublicKey(), y.SecretKey())
	if err != nil {
		return fmt.Errorf("delegated decrypt: %w", err)
	}
	return check("delegated decrypt", got, m)
}

func storage(ctx context.Context, s *pre.Scheme) error {
	hashKey := make([]byte, params.SecBytes)
	if _, err := rand.Read(hashKey); err != nil {
		return err
	}
	st := store.NewStorage(s, store.NewKMACHasher(hashKey))
	reader := pool.NewLockedReader(rand.Reader)
	alice := store.NewClient("alice", s, st, reader)
	bob := store.NewClient("bob", s, st, reader)

	if _, err := alice.Store([]string{"blood", "2023"}, big.NewInt(120)); err != nil {
		return err
	}
	if _, err := alice.Store([]string{"blood"}, big.NewInt(80)); err != nil {
		return err
	}
	if _, err := bob.Store([]string{"blood"}, big.NewInt(95)); err != nil {
		return err
	}

	got, err := alice.Search(ctx, "blood")
	if err != nil {
		return err
	}
	if err = checkAll("owner search", got, 120, 80); err != nil {
		return err
	}

	if err = alice.GrantAccess(bob.ID(), bob.PublicKey()); err != nil {
		return err
	}
	if got, err = bob.Search(ctx, "blood"); err != nil {
		return err
	}
	if err = checkAll("grantee search", got, 120, 80, 95); err != nil {
		return err
	}

	alice.RevokeAccess(bob.ID())
	if got, err = bob.Search(ctx, "blood"); err != nil {
		return err
	}
	return checkAll("search after revoke", got, 95)
}

func run() error {
	k1 := flag.Int("k1", params.K1, "bit length of the reencryption blinding value")
	k2 := flag.Int("k2", params.K2, "bit length of the proof challenge")
	kp := flag.Int("kp", 512, "bit length of each safe prime")
	message := flag.String("m", "1234567890", "message to encrypt, in base 10")
	workers := flag.Int("workers", 0, "workers searching safe primes, 0 for one per CPU")
	flag.Parse()

	m, ok := new(big.Int).SetString(*message, 10)
	if !ok {
		return fmt.Errorf("invalid message %q", *message)
	}

	pl := pool.NewPool(*workers)
	defer pl.TearDown()

	s, err := pre.New(pre.Params{K1: *k1, K2: *k2, PrimeBits: *kp}, pl)
	if err != nil {
		return err
	}
	if err = scenario(s, m); err != nil {
		return err
	}
	return storage(context.Background(), s)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "pre-demo:", err)
		os.Exit(1)
	}
}
