package native

import (
	stdcrypto "crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"github.com/mrz1836/signet/internal/crypto"
	signeterrors "github.com/mrz1836/signet/internal/errors"
)

// Engine signs and verifies hex digests for one crypto.Algorithm.
// It is stateless and safe for concurrent use.
type Engine struct {
	algorithm crypto.Algorithm
}

// NewEngine returns an Engine for alg.
func NewEngine(alg crypto.Algorithm) *Engine {
	return &Engine{algorithm: alg}
}

// Algorithm returns the variant this engine implements.
func (e *Engine) Algorithm() crypto.Algorithm {
	return e.algorithm
}

// SignHash signs the UTF-8 bytes of hash (the hex string, not the raw
// digest) with the private key.
func (e *Engine) SignHash(hash string, key crypto.PrivateKey) ([]byte, error) {
	switch e.algorithm {
	case crypto.AlgorithmSHA256WithRSA:
		return signSHA256WithRSA(hash, key)
	case crypto.AlgorithmUnknown:
	}
	return nil, fmt.Errorf("%w: %s", signeterrors.ErrUnsupportedAlgorithm, e.algorithm)
}

// SignText digests text and signs the resulting hex digest.
func (e *Engine) SignText(text string, key crypto.PrivateKey) (crypto.SignedText, error) {
	hash, err := e.algorithm.Digest([]byte(text))
	if err != nil {
		return crypto.SignedText{}, err
	}

	sig, err := e.SignHash(hash, key)
	if err != nil {
		return crypto.SignedText{}, err
	}

	return crypto.SignedText{
		Hash:      hash,
		Signature: sig,
		Algorithm: e.algorithm,
	}, nil
}

// VerifySignature reports whether sig is a valid signature of hash under key.
// It never panics and never returns an error: malformed input is false.
func (e *Engine) VerifySignature(hash string, sig []byte, key crypto.PublicKey) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	switch e.algorithm {
	case crypto.AlgorithmSHA256WithRSA:
		return verifySHA256WithRSA(hash, sig, key)
	case crypto.AlgorithmUnknown:
	}
	return false
}

// VerifyText recomputes the digest of text and reports false when it differs
// from expectedHash; otherwise it checks sig against the digest.
func (e *Engine) VerifyText(text string, sig []byte, key crypto.PublicKey, expectedHash string) bool {
	hash, err := e.algorithm.Digest([]byte(text))
	if err != nil {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(hash), []byte(expectedHash)) != 1 {
		return false
	}
	return e.VerifySignature(hash, sig, key)
}

func signSHA256WithRSA(hash string, key crypto.PrivateKey) ([]byte, error) {
	priv, err := ParsePrivateKey(key)
	if err != nil {
		return nil, signeterrors.Mark(signeterrors.ErrSigning, err)
	}

	digest := sha256.Sum256([]byte(hash))
	sig, err := rsa.SignPKCS1v15(nil, priv, stdcrypto.SHA256, digest[:])
	if err != nil {
		return nil, signeterrors.Mark(signeterrors.ErrSigning, err)
	}
	return sig, nil
}

func verifySHA256WithRSA(hash string, sig []byte, key crypto.PublicKey) bool {
	if len(sig) == 0 {
		return false
	}
	pub, err := ParsePublicKey(key)
	if err != nil {
		return false
	}

	digest := sha256.Sum256([]byte(hash))
	return rsa.VerifyPKCS1v15(pub, stdcrypto.SHA256, digest[:], sig) == nil
}

var _ crypto.Engine = (*Engine)(nil)
