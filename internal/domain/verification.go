package domain

import "time"

// Verification status strings.
const (
	StatusValid   = "valid"
	StatusInvalid = "invalid"
)

// Origin carries best-effort metadata about who asked for a verification.
// Both fields may be empty.
type Origin struct {
	// Address is the caller's network address or host name.
	Address string `json:"address,omitempty"`

	// Agent identifies the calling client, e.g. "signet/1.2.0".
	Agent string `json:"agent,omitempty"`
}

// VerificationAttempt is one append-only audit row.
//
// Example JSON representation:
//
//	{
//	    "id": "att-7d444840-9dc0-11d1-b245-5ffdce74fad2",
//	    "record_id": "0b5c7a1e-8f9d-4c43-9a1b-2d6e5f708192",
//	    "origin": "10.0.0.7",
//	    "agent": "signet/1.0.0",
//	    "valid": true,
//	    "verified_at": "2025-12-27T10:05:00Z"
//	}
type VerificationAttempt struct {
	ID         string    `json:"id"`
	RecordID   string    `json:"record_id"`
	Origin     string    `json:"origin,omitempty"`
	Agent      string    `json:"agent,omitempty"`
	Valid      bool      `json:"valid"`
	VerifiedAt time.Time `json:"verified_at"`
}

// Verification is the outcome of verifying a signature record.
// A found-but-invalid record is a Verification with Valid false, never an error.
type Verification struct {
	// Record is the record that was checked.
	Record *SignatureRecord `json:"record"`

	// Signatory is the display name of the record's owner.
	Signatory string `json:"signatory"`

	// Valid reports whether the signature checked out.
	Valid bool `json:"valid"`

	// Count is the number of attempts logged for the record, this one included.
	Count int `json:"count"`

	// AttemptID is the audit row written for this verification.
	AttemptID string `json:"attempt_id"`
}

// Status returns StatusValid or StatusInvalid.
func (v *Verification) Status() string {
	if v.Valid {
		return StatusValid
	}
	return StatusInvalid
}
