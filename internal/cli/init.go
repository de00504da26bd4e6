package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/signet/internal/config"
	"github.com/mrz1836/signet/internal/errors"
	"github.com/mrz1836/signet/internal/store"
)

// InitFlags holds flags specific to the init command.
type InitFlags struct {
	// Force overwrites an existing config without asking.
	Force bool
	// Backend selects the storage backend.
	Backend string
	// Dir sets the file backend data directory.
	Dir string
	// KeyBits sets the RSA modulus size for new identities.
	KeyBits int
}

// configFile is the document written to config.yaml. Durations are kept as
// strings so the file stays readable.
type configFile struct {
	Keys struct {
		Bits int `yaml:"bits"`
	} `yaml:"keys"`
	Storage struct {
		Backend     string `yaml:"backend"`
		Dir         string `yaml:"dir"`
		LockTimeout string `yaml:"lock_timeout"`
	} `yaml:"storage"`
	Signing struct {
		MaxTextBytes int `yaml:"max_text_bytes"`
	} `yaml:"signing"`
	Verify struct {
		Parallelism int `yaml:"parallelism"`
	} `yaml:"verify"`
}

func newConfigFile(cfg *config.Config) configFile {
	var f configFile
	f.Keys.Bits = cfg.Keys.Bits
	f.Storage.Backend = cfg.Storage.Backend
	f.Storage.Dir = cfg.Storage.Dir
	f.Storage.LockTimeout = cfg.Storage.LockTimeout.String()
	f.Signing.MaxTextBytes = cfg.Signing.MaxTextBytes
	f.Verify.Parallelism = cfg.Verify.Parallelism
	return f
}

// initResult is the JSON output of init.
type initResult struct {
	ConfigPath string `json:"config_path"`
	BackupPath string `json:"backup_path,omitempty"`
	DataDir    string `json:"data_dir,omitempty"`
	Backend    string `json:"backend"`
	KeyBits    int    `json:"key_bits"`
}

// AddInitCommand adds the init command to the root command.
func AddInitCommand(root *cobra.Command, flags *GlobalFlags) {
	initFlags := &InitFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the global configuration and create the data directory",
		Long: `Write $SIGNET_HOME/config.yaml (default ~/.signet/config.yaml) and create
the data directory for the file backend.

An existing config is backed up to config.yaml.backup before it is replaced.
In a terminal you are asked before overwriting; otherwise pass --force.`,
		Example: `  signet init
  signet init --backend file --dir ~/signatures --key-bits 3072
  signet init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags, initFlags)
		},
	}

	d := config.DefaultConfig()
	cmd.Flags().BoolVar(&initFlags.Force, "force", false, "overwrite an existing config without asking")
	cmd.Flags().StringVar(&initFlags.Backend, "backend", d.Storage.Backend, "storage backend (file|memory)")
	cmd.Flags().StringVar(&initFlags.Dir, "dir", d.Storage.Dir, "data directory for the file backend")
	cmd.Flags().IntVar(&initFlags.KeyBits, "key-bits", d.Keys.Bits, "RSA key size for new identities")

	root.AddCommand(cmd)
}

func runInit(cmd *cobra.Command, flags *GlobalFlags, initFlags *InitFlags) error {
	logger := GetLogger()

	cfg := config.DefaultConfig()
	cfg.Storage.Backend = initFlags.Backend
	cfg.Storage.Dir = initFlags.Dir
	cfg.Keys.Bits = initFlags.KeyBits
	if err := config.Validate(cfg); err != nil {
		return errors.NewExitCode2Error(err)
	}

	configPath, err := config.GlobalConfigPath()
	if err != nil {
		return err
	}

	exists := false
	if _, statErr := os.Stat(configPath); statErr == nil {
		exists = true
	}
	if exists && !initFlags.Force {
		if !terminalCheck() {
			return fmt.Errorf("%w: %s (use --force to overwrite)", errors.ErrConfigExists, configPath)
		}
		ok, promptErr := promptConfirm("Overwrite existing config?", configPath+" will be backed up first.")
		if promptErr != nil {
			return promptErr
		}
		if !ok {
			return errors.ErrOperationCanceled
		}
	}

	res := initResult{ConfigPath: configPath, Backend: cfg.Storage.Backend, KeyBits: cfg.Keys.Bits}

	if exists {
		res.BackupPath = configPath + ".backup"
		if copyErr := copyFile(configPath, res.BackupPath); copyErr != nil {
			logger.Warn().
				Err(copyErr).
				Str("backup_path", res.BackupPath).
				Msg("failed to create config backup")
			res.BackupPath = ""
		}
	}

	if err := saveConfig(configPath, cfg); err != nil {
		return err
	}

	if cfg.Storage.Backend == store.BackendFile {
		dir, dirErr := config.DataDir(cfg)
		if dirErr != nil {
			return dirErr
		}
		if err := store.NewFileStore(dir).Init(); err != nil {
			return err
		}
		res.DataDir = dir
	}

	logger.Info().
		Str("config_path", configPath).
		Str("backend", cfg.Storage.Backend).
		Msg("configuration written")

	out := newOutput(cmd, flags)
	if flags.Output == OutputJSON {
		return out.JSON(res)
	}

	out.Success("Configuration written to " + configPath)
	if res.BackupPath != "" {
		out.Info("Previous config saved as " + res.BackupPath)
	}
	out.Field("Backend", res.Backend)
	if res.DataDir != "" {
		out.Field("Data dir", res.DataDir)
	}
	out.Field("Key bits", fmt.Sprint(res.KeyBits))
	out.Info("Next: signet identity create <name>")
	return nil
}

// saveConfig writes cfg to path with a generated header.
func saveConfig(path string, cfg *config.Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(newConfigFile(cfg))
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := fmt.Sprintf("# signet configuration\n# Generated by signet init on %s\n\n",
		time.Now().Format(time.RFC3339))

	if err := os.WriteFile(path, []byte(header+string(data)), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src) //nolint:gosec // Source is the config file
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o600)
}
