// Package errors provides centralized error handling for signet.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for the signing core.
var (
	// ErrKeyGeneration indicates the cryptographic provider could not produce
	// a key pair. Identity creation cannot proceed without keys.
	ErrKeyGeneration = errors.New("key generation failed")

	// ErrSigning indicates a single sign request failed because the private key
	// was malformed or the provider rejected the operation.
	ErrSigning = errors.New("signing failed")

	// ErrRecordNotFound indicates no signature record matches the given id or
	// (hash, signature) pair. It is distinct from a verification that ran and
	// came out invalid.
	ErrRecordNotFound = errors.New("signature record not found")

	// ErrRecordExists indicates an insert collided with an existing record id
	// or an existing (hash, signature) composite key.
	ErrRecordExists = errors.New("signature record already exists")

	// ErrIdentityNotFound indicates the requested identity does not exist.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrIdentityExists indicates an identity with the same name already exists.
	ErrIdentityExists = errors.New("identity already exists")

	// ErrIdentityUnresolved indicates a caller credential did not resolve to
	// exactly one identity.
	ErrIdentityUnresolved = errors.New("identity could not be resolved")

	// ErrEmptyText indicates an attempt to sign empty text.
	ErrEmptyText = errors.New("text to sign is empty")

	// ErrTextTooLarge indicates the text exceeds the configured size cap.
	ErrTextTooLarge = errors.New("text exceeds maximum size")

	// ErrUnsupportedAlgorithm indicates an algorithm tag with no digest/signature pair.
	ErrUnsupportedAlgorithm = errors.New("unsupported signature algorithm")

	// ErrInvalidKey indicates stored key material could not be decoded.
	ErrInvalidKey = errors.New("invalid key material")

	// ErrStoreCorrupted indicates a persisted file could not be parsed.
	ErrStoreCorrupted = errors.New("store data corrupted")

	// ErrLockTimedOut indicates a file lock could not be acquired within the timeout period.
	ErrLockTimedOut = errors.New("lock acquisition timed out")
)

// Sentinel errors for configuration and the CLI surface.
var (
	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidKeys indicates an invalid keys configuration value.
	ErrConfigInvalidKeys = errors.New("invalid keys configuration")

	// ErrConfigInvalidStorage indicates an invalid storage configuration value.
	ErrConfigInvalidStorage = errors.New("invalid storage configuration")

	// ErrConfigInvalidSigning indicates an invalid signing configuration value.
	ErrConfigInvalidSigning = errors.New("invalid signing configuration")

	// ErrConfigInvalidVerify indicates an invalid verify configuration value.
	ErrConfigInvalidVerify = errors.New("invalid verify configuration")

	// ErrConfigExists indicates the config file already exists and --force was not given.
	ErrConfigExists = errors.New("config file already exists")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrInvalidArgument indicates that an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConflictingFlags indicates that mutually exclusive flags were specified.
	ErrConflictingFlags = errors.New("conflicting flags specified")

	// ErrUserInputRequired indicates user input is required but not provided.
	// Commands should exit with code 2 when this error is returned.
	ErrUserInputRequired = errors.New("user input required")

	// ErrOperationCanceled indicates the user canceled an operation.
	ErrOperationCanceled = errors.New("operation canceled by user")

	// ErrNonInteractiveMode indicates that an operation requiring confirmation
	// was attempted in non-interactive mode without the force flag.
	ErrNonInteractiveMode = errors.New("use --force in non-interactive mode")

	// ErrSignatureInvalid is returned by the CLI after rendering a verification
	// that found its record but failed the cryptographic check. It only drives
	// the exit code; the core reports validity as data.
	ErrSignatureInvalid = errors.New("signature is invalid")

	// ErrJSONErrorOutput indicates that an error has already been output as JSON.
	// This ensures a non-zero exit code while preventing duplicate error messages.
	ErrJSONErrorOutput = errors.New("error output as JSON")
)

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}
