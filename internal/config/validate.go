package config

import (
	"github.com/mrz1836/signet/internal/constants"
	"github.com/mrz1836/signet/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - keys.bits must be between 2048 and 8192
//   - storage.backend must be "file" or "memory"
//   - storage.lock_timeout must be positive
//   - signing.max_text_bytes must be positive
//   - verify.parallelism must be between 1 and 64
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateKeysConfig(&cfg.Keys); err != nil {
		return err
	}

	if err := validateStorageConfig(&cfg.Storage); err != nil {
		return err
	}

	if cfg.Signing.MaxTextBytes <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidSigning,
			"signing.max_text_bytes must be positive, got %d", cfg.Signing.MaxTextBytes)
	}

	if cfg.Verify.Parallelism < 1 || cfg.Verify.Parallelism > constants.MaxVerifyParallelism {
		return errors.Wrapf(errors.ErrConfigInvalidVerify,
			"verify.parallelism must be between 1 and %d, got %d",
			constants.MaxVerifyParallelism, cfg.Verify.Parallelism)
	}

	return nil
}

// validateKeysConfig checks key generation settings.
func validateKeysConfig(cfg *KeysConfig) error {
	if cfg.Bits < constants.MinRSAKeyBits || cfg.Bits > constants.MaxRSAKeyBits {
		return errors.Wrapf(errors.ErrConfigInvalidKeys,
			"keys.bits must be between %d and %d, got %d",
			constants.MinRSAKeyBits, constants.MaxRSAKeyBits, cfg.Bits)
	}
	return nil
}

// validateStorageConfig checks backend selection and lock settings.
func validateStorageConfig(cfg *StorageConfig) error {
	switch cfg.Backend {
	case "file", "memory":
	default:
		return errors.Wrapf(errors.ErrConfigInvalidStorage,
			"storage.backend must be 'file' or 'memory', got %q", cfg.Backend)
	}

	if cfg.LockTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidStorage,
			"storage.lock_timeout must be positive, got %s", cfg.LockTimeout)
	}

	return nil
}
