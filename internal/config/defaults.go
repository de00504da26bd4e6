package config

import (
	"github.com/mrz1836/signet/internal/constants"
)

// DefaultConfig returns a new Config with default values.
// These defaults are the base layer that config files, environment
// variables, and CLI flags override.
func DefaultConfig() *Config {
	return &Config{
		Keys: KeysConfig{
			Bits: constants.DefaultRSAKeyBits,
		},
		Storage: StorageConfig{
			// Backend: file keeps identities and records across runs.
			Backend: "file",

			// Dir: empty resolves to <signet home>/data.
			Dir: "",

			LockTimeout: constants.DefaultLockTimeout,
		},
		Signing: SigningConfig{
			MaxTextBytes: constants.DefaultMaxTextBytes,
		},
		Verify: VerifyConfig{
			Parallelism: constants.DefaultVerifyParallelism,
		},
	}
}
