package domain

import (
	"time"

	"github.com/mrz1836/signet/internal/crypto"
)

// Identity is the public view of a registered signer.
//
// Example JSON representation:
//
//	{
//	    "id": "id-550e8400-e29b-41d4-a716-446655440000",
//	    "name": "alice",
//	    "public_key": "MIIBIjANBgkqhkiG9w0BAQEFAAOCAQ8AMIIBCgKCAQEA...",
//	    "algorithm": "SHA-256 with RSA",
//	    "created_at": "2025-12-27T10:00:00Z"
//	}
type Identity struct {
	// ID is the stable identifier. Format: id-<uuid>
	ID string `json:"id"`

	// Name is the unique display name shown as the signatory.
	Name string `json:"name"`

	// PublicKey is the base64 X.509 SubjectPublicKeyInfo DER.
	PublicKey crypto.PublicKey `json:"public_key"`

	// Algorithm is the scheme the identity's key pair was created for.
	Algorithm crypto.Algorithm `json:"algorithm"`

	// CreatedAt is when the identity was registered.
	CreatedAt time.Time `json:"created_at"`
}
