// Package config provides configuration management for signet with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (SIGNET_* prefix)
//  3. Project config (.signet/config.yaml)
//  4. Global config (~/.signet/config.yaml, or $SIGNET_HOME/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import "time"

// Config is the root configuration structure for signet.
type Config struct {
	// Keys contains settings for identity key generation.
	Keys KeysConfig `yaml:"keys" mapstructure:"keys" json:"keys"`

	// Storage selects and tunes the persistence backend.
	Storage StorageConfig `yaml:"storage" mapstructure:"storage" json:"storage"`

	// Signing contains limits applied when signing text.
	Signing SigningConfig `yaml:"signing" mapstructure:"signing" json:"signing"`

	// Verify contains settings for verification requests.
	Verify VerifyConfig `yaml:"verify" mapstructure:"verify" json:"verify"`
}

// KeysConfig contains settings for identity key generation.
type KeysConfig struct {
	// Bits is the RSA modulus size for new identities.
	// Default: 2048, Valid range: 2048-8192
	Bits int `yaml:"bits" mapstructure:"bits" json:"bits"`
}

// StorageConfig selects and tunes the persistence backend.
type StorageConfig struct {
	// Backend is "file" or "memory". The memory backend forgets everything
	// when the process exits and is mostly useful for trying things out.
	// Default: "file"
	Backend string `yaml:"backend" mapstructure:"backend" json:"backend"`

	// Dir is where the file backend keeps its data. A leading "~/" expands
	// to the user's home directory. Empty means <signet home>/data.
	Dir string `yaml:"dir" mapstructure:"dir" json:"dir"`

	// LockTimeout bounds how long a file store operation waits for a lock.
	// Default: 5s
	LockTimeout time.Duration `yaml:"lock_timeout" mapstructure:"lock_timeout" json:"lock_timeout"`
}

// SigningConfig contains limits applied when signing text.
type SigningConfig struct {
	// MaxTextBytes caps the size of a text accepted for signing.
	// Default: 1 MiB
	MaxTextBytes int `yaml:"max_text_bytes" mapstructure:"max_text_bytes" json:"max_text_bytes"`
}

// VerifyConfig contains settings for verification requests.
type VerifyConfig struct {
	// Parallelism is how many records a batch verify checks at once.
	// Default: 4, Valid range: 1-64
	Parallelism int `yaml:"parallelism" mapstructure:"parallelism" json:"parallelism"`
}
