package cli

import (
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mrz1836/signet/internal/config"
	"github.com/mrz1836/signet/internal/crypto"
)

// infoView is the JSON shape of the info command.
type infoView struct {
	Version    string `json:"version"`
	Commit     string `json:"commit"`
	BuildDate  string `json:"build_date"`
	GoVersion  string `json:"go_version"`
	Hostname   string `json:"hostname"`
	Home       string `json:"home"`
	ConfigPath string `json:"config_path"`
	LogFile    string `json:"log_file"`
	Backend    string `json:"backend"`
	DataDir    string `json:"data_dir,omitempty"`
	Algorithm  string `json:"algorithm"`
	KeyBits    int    `json:"key_bits"`
	Healthy    bool   `json:"healthy"`
	HealthErr  string `json:"health_error,omitempty"`
}

// AddInfoCommand adds the info command to the root command.
func AddInfoCommand(root *cobra.Command, flags *GlobalFlags, info BuildInfo) {
	root.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Show build, host, and storage details",
		Long: `Show the build, the host, where configuration and data live, and
whether the storage backend is healthy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInfo(cmd, flags, withBuildDefaults(info))
		},
	})
}

func runInfo(cmd *cobra.Command, flags *GlobalFlags, info BuildInfo) error {
	ctx := cmd.Context()

	svc, err := openServices(ctx)
	if err != nil {
		return err
	}

	view := infoView{
		Version:   info.Version,
		Commit:    info.Commit,
		BuildDate: info.Date,
		GoVersion: runtime.Version(),
		Hostname:  defaultOrigin(),
		Backend:   svc.backend.Name(),
		DataDir:   svc.dataDir,
		Algorithm: crypto.AlgorithmSHA256WithRSA.String(),
		KeyBits:   svc.cfg.Keys.Bits,
		Healthy:   true,
	}
	if view.Home, err = config.GlobalConfigDir(); err != nil {
		return err
	}
	if view.ConfigPath, err = config.GlobalConfigPath(); err != nil {
		return err
	}
	if logFile, logErr := LogFilePath(); logErr == nil {
		view.LogFile = logFile
	}

	if healthErr := svc.backend.Health(ctx); healthErr != nil {
		view.Healthy = false
		view.HealthErr = healthErr.Error()
		svc.logger.Warn().Err(healthErr).Str("backend", view.Backend).Msg("storage backend unhealthy")
	}

	out := newOutput(cmd, flags)
	if flags.Output == OutputJSON {
		return out.JSON(view)
	}

	out.Field("Version", view.Version+" ("+view.Commit+", "+view.BuildDate+")")
	out.Field("Go", view.GoVersion)
	out.Field("Host", dash(view.Hostname))
	out.Field("Home", view.Home)
	out.Field("Config", configPathLabel(view.ConfigPath))
	out.Field("Log file", dash(view.LogFile))
	out.Field("Backend", view.Backend)
	if view.DataDir != "" {
		out.Field("Data dir", view.DataDir)
	}
	out.Field("Algorithm", view.Algorithm)
	out.Field("Key bits", pluralize(view.KeyBits, "bit", "bits"))
	if view.Healthy {
		out.Success("Storage is healthy")
	} else {
		out.Warning("Storage is unhealthy: " + view.HealthErr)
	}
	return nil
}

func configPathLabel(path string) string {
	if _, err := os.Stat(path); err != nil {
		return path + " (not created, run 'signet init')"
	}
	return path
}
