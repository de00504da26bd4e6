package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/mrz1836/signet/internal/constants"
	"github.com/mrz1836/signet/internal/crypto"
	"github.com/mrz1836/signet/internal/crypto/native"
)

// RSA key generation dominates test time, so a small pool is generated once
// per test binary and handed out in order.
const keyPoolSize = 3

var (
	keyPoolOnce sync.Once
	keyPool     []crypto.KeyPair
	errKeyPool  error
)

// KeyPairs returns n distinct RSA key pairs (n <= 3), shared across tests.
func KeyPairs(t testing.TB, n int) []crypto.KeyPair {
	t.Helper()
	if n > keyPoolSize {
		t.Fatalf("testutil.KeyPairs: at most %d pairs available, asked for %d", keyPoolSize, n)
	}

	keyPoolOnce.Do(func() {
		km, err := native.NewKeyManager(constants.DefaultRSAKeyBits)
		if err != nil {
			errKeyPool = err
			return
		}
		for range keyPoolSize {
			pair, err := km.GenerateKeyPair(context.Background())
			if err != nil {
				errKeyPool = err
				return
			}
			keyPool = append(keyPool, pair)
		}
	})
	if errKeyPool != nil {
		t.Fatalf("testutil.KeyPairs: %v", errKeyPool)
	}
	return keyPool[:n]
}

// StaticKeys is an identity.KeyGenerator that hands out pool keys in turn.
type StaticKeys struct {
	mu    sync.Mutex
	pairs []crypto.KeyPair
	next  int
	Err   error
}

// NewStaticKeys returns a generator cycling through the shared pool.
func NewStaticKeys(t testing.TB) *StaticKeys {
	t.Helper()
	return &StaticKeys{pairs: KeyPairs(t, keyPoolSize)}
}

// GenerateKeyPair returns the next pool key, or Err when set.
func (s *StaticKeys) GenerateKeyPair(ctx context.Context) (crypto.KeyPair, error) {
	if err := ctx.Err(); err != nil {
		return crypto.KeyPair{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return crypto.KeyPair{}, s.Err
	}
	pair := s.pairs[s.next%len(s.pairs)]
	s.next++
	return pair, nil
}
