package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/signet/internal/config"
	"github.com/mrz1836/signet/internal/tui"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	// SourceDefault indicates the value is a built-in default.
	SourceDefault ConfigSource = "default"
	// SourceGlobal indicates the value came from the global config.
	SourceGlobal ConfigSource = "global"
	// SourceProject indicates the value came from the project config.
	SourceProject ConfigSource = "project"
	// SourceEnv indicates the value came from a SIGNET_* environment variable.
	SourceEnv ConfigSource = "env"
)

// ConfigValueWithSource is one effective value and where it came from.
type ConfigValueWithSource struct {
	Key    string       `json:"key"`
	Value  any          `json:"value"`
	Source ConfigSource `json:"source"`
}

// AddConfigCommand adds the config command group to the root command.
func AddConfigCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Long: `Display the effective configuration and where each value comes from:
  - default: built-in default
  - global:  $SIGNET_HOME/config.yaml
  - project: .signet/config.yaml in the current directory
  - env:     a SIGNET_* environment variable`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, flags)
		},
	})

	root.AddCommand(cmd)
}

func runConfigShow(cmd *cobra.Command, flags *GlobalFlags) error {
	ctx := cmd.Context()
	if err := ctx.Err(); err != nil {
		return err
	}

	logger := GetLogger()
	cfg, err := config.Load(logger.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	values := annotateConfig(cfg)

	out := newOutput(cmd, flags)
	if flags.Output == OutputJSON {
		return out.JSON(values)
	}
	renderConfig(cmd.OutOrStdout(), values)
	return nil
}

// annotateConfig lists every effective value in file order with its source.
func annotateConfig(cfg *config.Config) []ConfigValueWithSource {
	global := map[string]bool{}
	if path, err := config.GlobalConfigPath(); err == nil {
		global = configKeys(path)
	}
	project := configKeys(config.ProjectConfigPath())

	entries := []struct {
		key   string
		value any
	}{
		{"keys.bits", cfg.Keys.Bits},
		{"storage.backend", cfg.Storage.Backend},
		{"storage.dir", cfg.Storage.Dir},
		{"storage.lock_timeout", cfg.Storage.LockTimeout.String()},
		{"signing.max_text_bytes", cfg.Signing.MaxTextBytes},
		{"verify.parallelism", cfg.Verify.Parallelism},
	}

	values := make([]ConfigValueWithSource, 0, len(entries))
	for _, e := range entries {
		values = append(values, ConfigValueWithSource{
			Key:    e.key,
			Value:  e.value,
			Source: determineSource(e.key, global, project),
		})
	}
	return values
}

// configKeys returns the dotted keys set in a YAML config file. A missing
// or unreadable file has no keys.
func configKeys(path string) map[string]bool {
	keys := map[string]bool{}

	data, err := os.ReadFile(path) //nolint:gosec // Config file path
	if err != nil {
		return keys
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return keys
	}
	flattenKeys("", doc, keys)
	return keys
}

func flattenKeys(prefix string, m map[string]any, keys map[string]bool) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flattenKeys(key, nested, keys)
			continue
		}
		keys[key] = true
	}
}

// determineSource applies the same precedence as config.Load.
func determineSource(key string, global, project map[string]bool) ConfigSource {
	envKey := "SIGNET_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	if _, ok := os.LookupEnv(envKey); ok {
		return SourceEnv
	}
	if project[key] {
		return SourceProject
	}
	if global[key] {
		return SourceGlobal
	}
	return SourceDefault
}

func renderConfig(w io.Writer, values []ConfigValueWithSource) {
	styles := tui.NewOutputStyles()

	_, _ = fmt.Fprintln(w, tui.StyleBold.Render("Effective configuration"))
	_, _ = fmt.Fprintln(w, styles.Dim.Render("Sources: env > project > global > default"))
	_, _ = fmt.Fprintln(w)

	section := ""
	for _, v := range values {
		head, name, _ := strings.Cut(v.Key, ".")
		if head != section {
			if section != "" {
				_, _ = fmt.Fprintln(w)
			}
			section = head
			_, _ = fmt.Fprintln(w, styles.Key.Render(head+":"))
		}

		value := fmt.Sprint(v.Value)
		if value == "" {
			value = `""`
		}
		_, _ = fmt.Fprintf(w, "  %s: %s  %s\n", name, value, styles.Dim.Render("# "+string(v.Source)))
	}
}
