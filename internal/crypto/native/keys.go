// Package native provides RSA key generation and SHA-256 with RSA signing
// using the standard crypto libraries.
package native

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/mrz1836/signet/internal/constants"
	"github.com/mrz1836/signet/internal/crypto"
	signeterrors "github.com/mrz1836/signet/internal/errors"
)

// KeyManager generates RSA key pairs for new identities.
// It holds no key material and is safe for concurrent use.
type KeyManager struct {
	bits   int
	random io.Reader
}

// KeyManagerOption configures a KeyManager.
type KeyManagerOption func(*KeyManager)

// WithRandom replaces the entropy source. Nil is ignored.
func WithRandom(r io.Reader) KeyManagerOption {
	return func(km *KeyManager) {
		if r != nil {
			km.random = r
		}
	}
}

// NewKeyManager creates a KeyManager producing keys of the given size.
// Zero selects constants.DefaultRSAKeyBits; sizes outside
// [MinRSAKeyBits, MaxRSAKeyBits] are rejected.
func NewKeyManager(bits int, opts ...KeyManagerOption) (*KeyManager, error) {
	if bits == 0 {
		bits = constants.DefaultRSAKeyBits
	}
	if bits < constants.MinRSAKeyBits || bits > constants.MaxRSAKeyBits {
		return nil, fmt.Errorf("%w: key size %d outside [%d, %d]",
			signeterrors.ErrKeyGeneration, bits, constants.MinRSAKeyBits, constants.MaxRSAKeyBits)
	}

	km := &KeyManager{
		bits:   bits,
		random: rand.Reader,
	}
	for _, opt := range opts {
		opt(km)
	}
	return km, nil
}

// Bits returns the modulus size of generated keys.
func (km *KeyManager) Bits() int {
	return km.bits
}

// GenerateKeyPair creates a fresh RSA key pair. The public half is encoded as
// base64 X.509 SubjectPublicKeyInfo DER and the private half as base64 PKCS#8
// DER. Any failure wraps errors.ErrKeyGeneration.
func (km *KeyManager) GenerateKeyPair(ctx context.Context) (crypto.KeyPair, error) {
	if err := ctx.Err(); err != nil {
		return crypto.KeyPair{}, signeterrors.Mark(signeterrors.ErrKeyGeneration, err)
	}

	priv, err := rsa.GenerateKey(km.random, km.bits)
	if err != nil {
		return crypto.KeyPair{}, signeterrors.Mark(signeterrors.ErrKeyGeneration, err)
	}

	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return crypto.KeyPair{}, signeterrors.Mark(signeterrors.ErrKeyGeneration, err)
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return crypto.KeyPair{}, signeterrors.Mark(signeterrors.ErrKeyGeneration, err)
	}

	return crypto.KeyPair{
		Public:  crypto.PublicKey(base64.StdEncoding.EncodeToString(pubDER)),
		Private: crypto.NewPrivateKey(base64.StdEncoding.EncodeToString(privDER)),
	}, nil
}

// ParsePublicKey decodes a base64 SubjectPublicKeyInfo into an RSA key.
func ParsePublicKey(key crypto.PublicKey) (*rsa.PublicKey, error) {
	der, err := base64.StdEncoding.DecodeString(string(key))
	if err != nil {
		return nil, signeterrors.Mark(signeterrors.ErrInvalidKey, err)
	}
	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, signeterrors.Mark(signeterrors.ErrInvalidKey, err)
	}
	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: expected RSA public key, got %T", signeterrors.ErrInvalidKey, parsed)
	}
	return pub, nil
}

// ParsePrivateKey decodes a base64 PKCS#8 DER into an RSA key.
func ParsePrivateKey(key crypto.PrivateKey) (*rsa.PrivateKey, error) {
	der, err := base64.StdEncoding.DecodeString(key.Encoded())
	if err != nil {
		return nil, signeterrors.Mark(signeterrors.ErrInvalidKey, err)
	}
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, signeterrors.Mark(signeterrors.ErrInvalidKey, err)
	}
	priv, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: expected RSA private key, got %T", signeterrors.ErrInvalidKey, parsed)
	}
	return priv, nil
}

// MatchesPublicKey reports whether priv is the private half of pub.
func MatchesPublicKey(priv crypto.PrivateKey, pub crypto.PublicKey) bool {
	sk, err := ParsePrivateKey(priv)
	if err != nil {
		return false
	}
	pk, err := ParsePublicKey(pub)
	if err != nil {
		return false
	}
	return sk.PublicKey.Equal(pk)
}
