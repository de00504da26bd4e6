package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrz1836/signet/internal/constants"
	"github.com/mrz1836/signet/internal/errors"
)

// GlobalConfigDir returns the signet home directory. SIGNET_HOME overrides
// the default of ~/.signet.
//
// Returns an error if the home directory cannot be determined.
func GlobalConfigDir() (string, error) {
	if dir := os.Getenv(constants.HomeEnvVar); dir != "" {
		return filepath.Clean(dir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.SignetHome), nil
}

// ProjectConfigDir returns the relative path to the project configuration directory.
func ProjectConfigDir() string {
	return constants.SignetHome
}

// GlobalConfigPath returns the full path to the global configuration file.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", fmt.Errorf("get global config path: %w", err)
	}
	return filepath.Join(dir, constants.GlobalConfigName), nil
}

// ProjectConfigPath returns the relative path to the project configuration file.
func ProjectConfigPath() string {
	return filepath.Join(ProjectConfigDir(), constants.GlobalConfigName)
}

// LogsDir returns the directory holding the CLI log file.
func LogsDir() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.LogsDir), nil
}

// DataDir resolves storage.dir to an absolute directory for the file backend.
// An empty value means <signet home>/data and a leading "~/" expands to the
// user's home directory.
func DataDir(cfg *Config) (string, error) {
	if cfg == nil {
		return "", errors.ErrConfigNil
	}

	dir := strings.TrimSpace(cfg.Storage.Dir)
	switch {
	case dir == "":
		home, err := GlobalConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, constants.DataDir), nil
	case dir == "~" || strings.HasPrefix(dir, "~/"):
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "failed to get home directory")
		}
		return filepath.Join(home, strings.TrimPrefix(dir[1:], "/")), nil
	default:
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", errors.Wrapf(err, "failed to resolve storage.dir %q", dir)
		}
		return abs, nil
	}
}
