package native

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/signet/internal/crypto"
	signeterrors "github.com/mrz1836/signet/internal/errors"
)

// RSA key generation is slow; tests share two pairs.
var (
	testKeysOnce sync.Once
	testKeyA     crypto.KeyPair
	testKeyB     crypto.KeyPair
	errTestKeys  error
)

func testKeys(t *testing.T) (crypto.KeyPair, crypto.KeyPair) {
	t.Helper()
	testKeysOnce.Do(func() {
		km, err := NewKeyManager(2048)
		if err != nil {
			errTestKeys = err
			return
		}
		if testKeyA, errTestKeys = km.GenerateKeyPair(context.Background()); errTestKeys != nil {
			return
		}
		testKeyB, errTestKeys = km.GenerateKeyPair(context.Background())
	})
	require.NoError(t, errTestKeys)
	return testKeyA, testKeyB
}

var errEntropy = errors.New("entropy source exhausted")

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errEntropy
}

func TestNewKeyManager(t *testing.T) {
	t.Run("zero selects default size", func(t *testing.T) {
		km, err := NewKeyManager(0)
		require.NoError(t, err)
		assert.Equal(t, 2048, km.Bits())
	})

	t.Run("accepts larger sizes", func(t *testing.T) {
		km, err := NewKeyManager(3072)
		require.NoError(t, err)
		assert.Equal(t, 3072, km.Bits())
	})

	t.Run("rejects sizes below minimum", func(t *testing.T) {
		_, err := NewKeyManager(1024)
		require.ErrorIs(t, err, signeterrors.ErrKeyGeneration)
	})

	t.Run("rejects sizes above maximum", func(t *testing.T) {
		_, err := NewKeyManager(16384)
		require.ErrorIs(t, err, signeterrors.ErrKeyGeneration)
	})
}

func TestKeyManager_GenerateKeyPair(t *testing.T) {
	t.Run("encodes SPKI and PKCS#8 DER as base64", func(t *testing.T) {
		pair, _ := testKeys(t)

		pubDER, err := base64.StdEncoding.DecodeString(string(pair.Public))
		require.NoError(t, err)
		pub, err := x509.ParsePKIXPublicKey(pubDER)
		require.NoError(t, err)
		rsaPub, ok := pub.(*rsa.PublicKey)
		require.True(t, ok)
		assert.Equal(t, 2048, rsaPub.N.BitLen())

		privDER, err := base64.StdEncoding.DecodeString(pair.Private.Encoded())
		require.NoError(t, err)
		_, err = x509.ParsePKCS8PrivateKey(privDER)
		require.NoError(t, err)

		assert.True(t, MatchesPublicKey(pair.Private, pair.Public))
	})

	t.Run("each call yields a fresh key", func(t *testing.T) {
		a, b := testKeys(t)
		assert.NotEqual(t, a.Public, b.Public)
		assert.False(t, MatchesPublicKey(a.Private, b.Public))
	})

	t.Run("entropy failure wraps ErrKeyGeneration", func(t *testing.T) {
		km, err := NewKeyManager(2048, WithRandom(failingReader{}))
		require.NoError(t, err)

		_, err = km.GenerateKeyPair(context.Background())
		require.ErrorIs(t, err, signeterrors.ErrKeyGeneration)
	})

	t.Run("canceled context wraps ErrKeyGeneration", func(t *testing.T) {
		km, err := NewKeyManager(2048)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = km.GenerateKeyPair(ctx)
		require.ErrorIs(t, err, signeterrors.ErrKeyGeneration)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestParseKeys(t *testing.T) {
	pair, _ := testKeys(t)

	t.Run("valid keys parse", func(t *testing.T) {
		_, err := ParsePublicKey(pair.Public)
		require.NoError(t, err)
		_, err = ParsePrivateKey(pair.Private)
		require.NoError(t, err)
	})

	tests := []struct {
		name string
		pub  crypto.PublicKey
		priv crypto.PrivateKey
	}{
		{name: "not base64", pub: "!!!", priv: crypto.NewPrivateKey("!!!")},
		{name: "base64 but not DER", pub: "aGVsbG8=", priv: crypto.NewPrivateKey("aGVsbG8=")},
		{name: "empty", pub: "", priv: crypto.PrivateKey{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePublicKey(tt.pub)
			require.ErrorIs(t, err, signeterrors.ErrInvalidKey)
			_, err = ParsePrivateKey(tt.priv)
			require.ErrorIs(t, err, signeterrors.ErrInvalidKey)
			assert.False(t, MatchesPublicKey(tt.priv, tt.pub))
		})
	}
}
