// Package domain provides shared domain types for the signet signature
// engine. These types are used across all internal packages to ensure
// consistent data structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/crypto, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case. No type in this package ever holds
// private key material.
package domain

import (
	"encoding/base64"
	"time"

	"github.com/mrz1836/signet/internal/crypto"
)

// SignatureRecord is a persisted, immutable signature over a piece of text.
//
// Example JSON representation:
//
//	{
//	    "id": "0b5c7a1e-8f9d-4c43-9a1b-2d6e5f708192",
//	    "identity_id": "id-550e8400-e29b-41d4-a716-446655440000",
//	    "text": "Hello, World!",
//	    "hash": "dffd6021bb2bd5b0af676290809ec3a53191dd81c7f70a4b28688a362182986f",
//	    "signature": "Qm9i...==",
//	    "algorithm": "SHA-256 with RSA",
//	    "created_at": "2025-12-27T10:00:00Z"
//	}
type SignatureRecord struct {
	// ID is a random UUIDv4 assigned at creation.
	ID string `json:"id"`

	// IdentityID links the record to the identity that signed it.
	IdentityID string `json:"identity_id"`

	// Text is the original text exactly as signed.
	Text string `json:"text"`

	// Hash is the lowercase hex SHA-256 of Text, fixed at creation.
	Hash string `json:"hash"`

	// Signature is the std base64 encoding of the raw signature bytes.
	Signature string `json:"signature"`

	// Algorithm is the scheme that produced Signature.
	Algorithm crypto.Algorithm `json:"algorithm"`

	// CreatedAt is the UTC creation time. Within a ledger it strictly
	// increases with insertion order.
	CreatedAt time.Time `json:"created_at"`
}

// SignatureBytes decodes Signature. A malformed value yields an error, which
// verification treats as an invalid signature.
func (r *SignatureRecord) SignatureBytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(r.Signature)
}

// EncodeSignature renders raw signature bytes the way records store them.
func EncodeSignature(sig []byte) string {
	return base64.StdEncoding.EncodeToString(sig)
}
