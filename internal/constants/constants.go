// Package constants provides centralized constant values used throughout signet.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Signature algorithm parameters.
const (
	// AlgorithmLabel is the persisted label for SHA-256 digests signed with RSA.
	// Consumers treat it as an opaque compatibility tag.
	AlgorithmLabel = "SHA-256 with RSA"

	// DefaultRSAKeyBits is the default modulus size for generated identity keys.
	DefaultRSAKeyBits = 2048

	// MinRSAKeyBits is the smallest modulus accepted for new identity keys.
	MinRSAKeyBits = 2048

	// MaxRSAKeyBits is the largest modulus accepted for new identity keys.
	MaxRSAKeyBits = 8192

	// HashHexLength is the length of a SHA-256 digest in lowercase hex.
	HashHexLength = 64
)

// Identifier prefixes.
const (
	// IdentityIDPrefix prefixes identity identifiers (id-{uuid}).
	IdentityIDPrefix = "id-"

	// AttemptIDPrefix prefixes verification attempt identifiers (att-{uuid}).
	AttemptIDPrefix = "att-"
)

// Limits and timeouts.
const (
	// DefaultMaxTextBytes caps the size of a text accepted for signing (1 MiB).
	DefaultMaxTextBytes = 1 << 20

	// DefaultLockTimeout bounds how long the file store waits for a lock.
	DefaultLockTimeout = 5 * time.Second

	// LockRetryInterval is the delay between lock acquisition attempts.
	LockRetryInterval = 50 * time.Millisecond

	// DefaultVerifyParallelism is how many ids VerifyMany checks at once.
	DefaultVerifyParallelism = 4

	// MaxVerifyParallelism is the upper bound for verify.parallelism.
	MaxVerifyParallelism = 64
)

// Log rotation settings for the CLI log file.
const (
	// LogMaxSizeMB is the size at which the CLI log rotates.
	LogMaxSizeMB = 10

	// LogMaxBackups is how many rotated CLI logs are kept.
	LogMaxBackups = 5

	// LogMaxAgeDays is how long rotated CLI logs are kept.
	LogMaxAgeDays = 30

	// LogCompress enables gzip compression of rotated CLI logs.
	LogCompress = true
)

// Schema version constants for data migration support.
const (
	// StoreSchemaVersion is the current version of the on-disk JSON schema.
	StoreSchemaVersion = "1.0"
)
