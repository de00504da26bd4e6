// Package testutil provides testing utilities for signet.
//
// This package contains mock errors and test helpers used across test files.
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
// These errors are used to simulate various failure scenarios in tests.
var (
	// ErrMockStoreUnavailable indicates a mock store is unavailable (used in tests).
	ErrMockStoreUnavailable = errors.New("store unavailable")

	// ErrMockKeyGeneration indicates a mock key generator failed (used in tests).
	ErrMockKeyGeneration = errors.New("key generation failed")

	// ErrMockSigning indicates a mock signer failed (used in tests).
	ErrMockSigning = errors.New("signing failed")

	// ErrMockDiskFull indicates a mock write failed for lack of space (used in tests).
	ErrMockDiskFull = errors.New("no space left on device")
)
