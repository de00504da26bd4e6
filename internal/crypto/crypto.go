// Package crypto defines the signature algorithm variants, key encodings, and
// the signing interfaces implemented by crypto backends.
package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mrz1836/signet/internal/constants"
	signeterrors "github.com/mrz1836/signet/internal/errors"
)

// Algorithm identifies a hash-then-sign scheme.
type Algorithm int

const (
	// AlgorithmUnknown is the zero value and is never accepted for signing.
	AlgorithmUnknown Algorithm = iota

	// AlgorithmSHA256WithRSA hashes text with SHA-256 and signs the hex digest
	// with RSA PKCS#1 v1.5 over SHA-256.
	AlgorithmSHA256WithRSA
)

// String returns the stable label stored on records.
func (a Algorithm) String() string {
	switch a {
	case AlgorithmSHA256WithRSA:
		return constants.AlgorithmLabel
	case AlgorithmUnknown:
		return "unknown"
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// ParseAlgorithm maps a stored label back to its Algorithm.
func ParseAlgorithm(label string) (Algorithm, error) {
	if label == constants.AlgorithmLabel {
		return AlgorithmSHA256WithRSA, nil
	}
	return AlgorithmUnknown, fmt.Errorf("%w: %q", signeterrors.ErrUnsupportedAlgorithm, label)
}

// MarshalText encodes the algorithm as its label.
func (a Algorithm) MarshalText() ([]byte, error) {
	if a == AlgorithmUnknown {
		return nil, fmt.Errorf("%w: %s", signeterrors.ErrUnsupportedAlgorithm, a)
	}
	return []byte(a.String()), nil
}

// UnmarshalText decodes a label written by MarshalText.
func (a *Algorithm) UnmarshalText(text []byte) error {
	parsed, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Digest returns the lowercase hex digest of text under the algorithm's hash.
func (a Algorithm) Digest(text []byte) (string, error) {
	switch a {
	case AlgorithmSHA256WithRSA:
		return SHA256Hex(text), nil
	case AlgorithmUnknown:
	}
	return "", fmt.Errorf("%w: %s", signeterrors.ErrUnsupportedAlgorithm, a)
}

// SHA256Hex returns the 64-character lowercase hex SHA-256 of b.
func SHA256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// PublicKey is the base64 (std encoding) of an X.509 SubjectPublicKeyInfo DER.
type PublicKey string

// redacted replaces private key material wherever it would be rendered.
const redacted = "[REDACTED]"

// PrivateKey holds the base64 (std encoding) of a PKCS#8 DER private key.
// Every rendering path (fmt, JSON, zerolog) prints a placeholder; use
// Encoded to obtain the key for persistence.
type PrivateKey struct {
	encoded string
}

// NewPrivateKey wraps an already encoded PKCS#8 key.
func NewPrivateKey(encoded string) PrivateKey {
	return PrivateKey{encoded: encoded}
}

// Encoded returns the base64 PKCS#8 DER.
func (k PrivateKey) Encoded() string {
	return k.encoded
}

// IsZero reports whether the key is empty.
func (k PrivateKey) IsZero() bool {
	return k.encoded == ""
}

// String implements fmt.Stringer.
func (k PrivateKey) String() string {
	return redacted
}

// GoString implements fmt.GoStringer so %#v is redacted too.
func (k PrivateKey) GoString() string {
	return "crypto.PrivateKey{" + redacted + "}"
}

// MarshalJSON always emits the placeholder.
func (k PrivateKey) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (k PrivateKey) MarshalZerologObject(e *zerolog.Event) {
	e.Str("private_key", redacted)
}

// KeyPair is a freshly generated public/private pair.
type KeyPair struct {
	Public  PublicKey
	Private PrivateKey
}

// SignedText is the output of signing a piece of text.
type SignedText struct {
	Hash      string
	Signature []byte
	Algorithm Algorithm
}

// Signer produces signatures. Implementations must be deterministic for a
// given key and input.
type Signer interface {
	// SignHash signs the UTF-8 bytes of a hex digest.
	SignHash(hash string, key PrivateKey) ([]byte, error)

	// SignText digests text and signs the digest.
	SignText(text string, key PrivateKey) (SignedText, error)
}

// Verifier checks signatures. Verification is total: any failure is false.
type Verifier interface {
	// VerifySignature checks sig over the UTF-8 bytes of hash.
	VerifySignature(hash string, sig []byte, key PublicKey) bool

	// VerifyText recomputes the digest of text, compares it with
	// expectedHash, then checks sig.
	VerifyText(text string, sig []byte, key PublicKey, expectedHash string) bool
}

// Engine signs and verifies under a single algorithm.
type Engine interface {
	Signer
	Verifier

	// Algorithm returns the variant the engine implements.
	Algorithm() Algorithm
}
