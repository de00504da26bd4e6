package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/signet/internal/errors"
)

// newViperInstance creates a Viper instance with the SIGNET_ env prefix,
// key replacer, and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("SIGNET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config struct and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper precedence.
// Configuration is loaded in the following order (highest precedence first):
//  1. Environment variables (SIGNET_* prefix)
//  2. Project config (.signet/config.yaml)
//  3. Global config (~/.signet/config.yaml)
//  4. Built-in defaults
//
// For CLI flag overrides, use LoadWithOverrides instead. Missing config
// files are not an error.
func Load(ctx context.Context) (*Config, error) {
	globalConfigPath, err := GlobalConfigPath()
	if err != nil {
		// No resolvable home directory; skip the global level.
		globalConfigPath = ""
	}
	return LoadFromPaths(ctx, ProjectConfigPath(), globalConfigPath)
}

// fileExists returns true if the file at path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadWithOverrides loads configuration and applies CLI flag overrides.
// Only non-zero values in overrides are applied.
func LoadWithOverrides(ctx context.Context, overrides *Config) (*Config, error) {
	cfg, err := Load(ctx)
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}

	return cfg, nil
}

// LoadFromPaths loads configuration from specific file paths.
// projectConfigPath has higher priority than globalConfigPath. Either path
// may be empty or name a missing file to skip that level. Environment
// variables still apply.
func LoadFromPaths(ctx context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" && fileExists(globalConfigPath) {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, errors.Wrapf(err, "failed to read global config file %s", globalConfigPath)
		}
	}

	if projectConfigPath != "" && fileExists(projectConfigPath) {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, errors.Wrapf(err, "failed to read project config file %s", projectConfigPath)
		}
	}

	cfg, err := unmarshalAndValidate(v)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Str("storage.backend", cfg.Storage.Backend).
		Dur("storage.lock_timeout", cfg.Storage.LockTimeout).
		Int("keys.bits", cfg.Keys.Bits).
		Int("verify.parallelism", cfg.Verify.Parallelism).
		Msg("configuration loaded")

	return cfg, nil
}

// setDefaults configures all default values on the Viper instance.
// Keys must match the mapstructure tag names exactly.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("keys.bits", d.Keys.Bits)

	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.dir", d.Storage.Dir)
	v.SetDefault("storage.lock_timeout", d.Storage.LockTimeout.String())

	v.SetDefault("signing.max_text_bytes", d.Signing.MaxTextBytes)

	v.SetDefault("verify.parallelism", d.Verify.Parallelism)
}

// applyOverrides merges non-zero override values into the config.
func applyOverrides(cfg, overrides *Config) {
	if overrides.Keys.Bits != 0 {
		cfg.Keys.Bits = overrides.Keys.Bits
	}

	if overrides.Storage.Backend != "" {
		cfg.Storage.Backend = overrides.Storage.Backend
	}
	if overrides.Storage.Dir != "" {
		cfg.Storage.Dir = overrides.Storage.Dir
	}
	if overrides.Storage.LockTimeout != 0 {
		cfg.Storage.LockTimeout = overrides.Storage.LockTimeout
	}

	if overrides.Signing.MaxTextBytes != 0 {
		cfg.Signing.MaxTextBytes = overrides.Signing.MaxTextBytes
	}

	if overrides.Verify.Parallelism != 0 {
		cfg.Verify.Parallelism = overrides.Verify.Parallelism
	}
}

// viperDecoderOption configures mapstructure to decode durations from strings.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}
