package cli

// This file contains test utilities and mocks for testing CLI functions.
// These helpers are only available in test files (*_test.go).

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// mockFormRunner implements formRunner. Use it to stand in for Charm Huh
// forms in tests.
type mockFormRunner struct {
	// runErr is the error to return from Run()
	runErr error

	// onRun is an optional callback executed when Run() is called.
	// Use it to simulate user input by modifying form values.
	onRun func()
}

// Run executes the mock form, optionally calling the onRun callback.
func (m *mockFormRunner) Run() error {
	if m.onRun != nil {
		m.onRun()
	}
	return m.runErr
}

// mockTerminalCheckFunc returns a function that can replace terminalCheck in tests.
// The returned cleanup function should be deferred to restore the original.
//
// Example:
//
//	cleanup := mockTerminalCheckFunc(true)
//	defer cleanup()
func mockTerminalCheckFunc(isTerminal bool) func() {
	original := terminalCheck
	terminalCheck = func() bool { return isTerminal }
	return func() { terminalCheck = original }
}

// setupCLI points SIGNET_HOME and the working directory at fresh temp
// directories and disables prompts. It returns the signet home.
func setupCLI(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("SIGNET_HOME", home)
	t.Setenv("NO_COLOR", "1")
	t.Chdir(t.TempDir())

	t.Cleanup(mockTerminalCheckFunc(false))
	t.Cleanup(CloseLogFile)
	return home
}

// cliResult captures one command invocation.
type cliResult struct {
	stdout string
	stderr string
	err    error
}

// runCLI executes the root command with args, the way Execute does.
func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()
	return runCLIWithInput(t, "", args...)
}

func runCLIWithInput(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()

	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{Version: "1.2.3", Commit: "abc1234", Date: "2026-01-01"})

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(bytes.NewBufferString(stdin))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	if err != nil {
		printError(&stderr, flags, err)
	}
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// decodeJSON unmarshals a command's stdout into v.
func decodeJSON(t *testing.T, res cliResult, v any) {
	t.Helper()
	require.NoError(t, res.err, "stderr: %s", res.stderr)
	require.NoError(t, json.Unmarshal([]byte(res.stdout), v), "stdout: %s", res.stdout)
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o600)
}

// indexOf is strings.Index, failing loudly when substr is absent.
func indexOf(s, substr string) int {
	i := strings.Index(s, substr)
	if i < 0 {
		panic("substring not found: " + substr)
	}
	return i
}
