package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/orbharness/internal/port"
	"github.com/roach88/orbharness/internal/runner"
	"github.com/roach88/orbharness/internal/testutil"
)

const smokeBattery = `
name: smoke
scenarios:
  - label: read
    verb: get
  - label: waas
    verb: set
    satellite: waas
    sis_mode: operational
    nav_mode: precapp
    do229: do229c
  - label: reject
    verb: set
    satellite: galileo
    expect: failure
  - label: readback
    verb: get
`

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// isolateConfig points the port store at an empty temp file location and
// clears ORBFIX_PORT. It returns the config file path.
func isolateConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orbfix", "config.toml")
	t.Setenv(port.EnvConfigFile, path)
	t.Setenv(port.EnvPort, "")
	return path
}

// fakeSerialPort returns a path that passes port.AssertExists.
func fakeSerialPort(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ttyFAKE0")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	return path
}

// useFakeDevice routes every run through a FakeDevice.
func useFakeDevice(t *testing.T) *testutil.FakeDevice {
	t.Helper()
	dev := testutil.NewFakeDevice("")
	prev := newInvoker
	newInvoker = func(string) (runner.Invoker, error) { return dev, nil }
	t.Cleanup(func() { newInvoker = prev })
	return dev
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
