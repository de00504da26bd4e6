package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	signeterrors "github.com/mrz1836/signet/internal/errors"
)

func TestInit_WritesConfigAndDataDir(t *testing.T) {
	home := setupCLI(t)
	dataDir := filepath.Join(t.TempDir(), "sigs")

	var res initResult
	decodeJSON(t, runCLI(t, "init", "--dir", dataDir, "--key-bits", "3072", "--output", "json"), &res)

	configPath := filepath.Join(home, "config.yaml")
	assert.Equal(t, configPath, res.ConfigPath)
	assert.Equal(t, dataDir, res.DataDir)
	assert.Empty(t, res.BackupPath)
	assert.DirExists(t, filepath.Join(dataDir, "signatures"))
	assert.DirExists(t, filepath.Join(dataDir, "attempts"))

	data, err := os.ReadFile(configPath) //nolint:gosec // test path
	require.NoError(t, err)
	assert.Contains(t, string(data), "# signet configuration")

	var written configFile
	require.NoError(t, yaml.Unmarshal(data, &written))
	assert.Equal(t, 3072, written.Keys.Bits)
	assert.Equal(t, "file", written.Storage.Backend)
	assert.Equal(t, dataDir, written.Storage.Dir)
	assert.Equal(t, "5s", written.Storage.LockTimeout)

	var view infoView
	decodeJSON(t, runCLI(t, "info", "--output", "json"), &view)
	assert.Equal(t, 3072, view.KeyBits)
	assert.Equal(t, dataDir, view.DataDir)
}

func TestInit_ExistingConfig(t *testing.T) {
	home := setupCLI(t)
	configPath := filepath.Join(home, "config.yaml")
	require.NoError(t, runCLI(t, "init").err)

	t.Run("refuses without force when not interactive", func(t *testing.T) {
		res := runCLI(t, "init")
		require.ErrorIs(t, res.err, signeterrors.ErrConfigExists)
	})

	t.Run("force backs up the old file", func(t *testing.T) {
		require.NoError(t, writeFile(configPath, "keys:\n  bits: 4096\n"))

		var res initResult
		decodeJSON(t, runCLI(t, "init", "--force", "--output", "json"), &res)
		assert.Equal(t, configPath+".backup", res.BackupPath)

		backup, err := os.ReadFile(res.BackupPath)
		require.NoError(t, err)
		assert.Equal(t, "keys:\n  bits: 4096\n", string(backup))
	})

	t.Run("interactive decline cancels", func(t *testing.T) {
		defer mockTerminalCheckFunc(true)()
		original := createConfirmForm
		defer func() { createConfirmForm = original }()
		createConfirmForm = func(_, _ string, confirm *bool) formRunner {
			return &mockFormRunner{onRun: func() { *confirm = false }}
		}

		res := runCLI(t, "init")
		require.ErrorIs(t, res.err, signeterrors.ErrOperationCanceled)
	})

	t.Run("interactive accept overwrites", func(t *testing.T) {
		defer mockTerminalCheckFunc(true)()
		original := createConfirmForm
		defer func() { createConfirmForm = original }()
		createConfirmForm = func(_, _ string, confirm *bool) formRunner {
			return &mockFormRunner{onRun: func() { *confirm = true }}
		}

		res := runCLI(t, "init", "--key-bits", "2048")
		require.NoError(t, res.err, res.stderr)
		assert.Contains(t, res.stdout, "Configuration written")
	})
}

func TestInit_InvalidValues(t *testing.T) {
	setupCLI(t)

	res := runCLI(t, "init", "--key-bits", "1024")
	require.ErrorIs(t, res.err, signeterrors.ErrConfigInvalidKeys)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(res.err))

	res = runCLI(t, "init", "--backend", "redis")
	require.ErrorIs(t, res.err, signeterrors.ErrConfigInvalidStorage)
}

func TestInit_MemoryBackendSkipsDataDir(t *testing.T) {
	home := setupCLI(t)

	var res initResult
	decodeJSON(t, runCLI(t, "init", "--backend", "memory", "--output", "json"), &res)
	assert.Empty(t, res.DataDir)
	assert.NoDirExists(t, filepath.Join(home, "data"))
}
