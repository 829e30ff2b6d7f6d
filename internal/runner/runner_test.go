package runner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/orbharness/internal/testutil"
)

var epoch = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func TestRun_PassMarkers(t *testing.T) {
	dev := testutil.NewFakeDevice("COM5")
	clock := testutil.NewStepClock(epoch, 412*time.Millisecond)
	var out bytes.Buffer

	r := New(dev, &out, WithClock(clock))
	res := r.Run(context.Background(), "get: baseline", []string{"cmd", "sbas-corrections", "get", "--port", "COM5"})

	require.True(t, res.Passed())
	assert.Equal(t, 0, res.Status)
	assert.Equal(t, epoch, res.Start)
	assert.Equal(t, 412*time.Millisecond, res.Elapsed)
	assert.Contains(t, string(res.Output), "SBAS Corrections:")

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.Equal(t, "=== RUN   get: baseline", lines[0])
	assert.Equal(t, "    $ cmd sbas-corrections get --port COM5", lines[1])
	assert.Equal(t, "--- PASS: get: baseline (0.412s, exit 0)", lines[len(lines)-1])
}

func TestRun_NonZeroStatusIsNotAnError(t *testing.T) {
	dev := testutil.NewFakeDevice("")
	var out bytes.Buffer

	r := New(dev, &out, WithClock(testutil.NewStepClock(epoch, time.Second)))
	res := r.Run(context.Background(), "set: bad satellite", []string{
		"cmd", "sbas-corrections", "set", "-s", "galileo", "--sis-mode", "test", "-n", "enroute", "-d", "auto", "--port", "p",
	})

	assert.NoError(t, res.Err)
	assert.False(t, res.Passed())
	assert.Equal(t, testutil.DeviceFailure, res.Status)
	assert.Contains(t, out.String(), "--- FAIL: set: bad satellite (1.000s, exit 1)")
}

func TestRun_InvokeErrorReported(t *testing.T) {
	var out bytes.Buffer
	r := New(failingInvoker{err: ErrToolNotFound}, &out)

	res := r.Run(context.Background(), "get", []string{"cmd"})

	assert.ErrorIs(t, res.Err, ErrToolNotFound)
	assert.False(t, res.Passed())
	assert.Contains(t, out.String(), "    error: device tool not found")
	assert.Contains(t, out.String(), "--- FAIL: get (")
}

func TestRun_OutputWithoutTrailingNewline(t *testing.T) {
	var out bytes.Buffer
	r := New(staticInvoker{output: []byte("no newline")}, &out, WithClock(testutil.NewStepClock(epoch, 0)))

	r.Run(context.Background(), "x", nil)

	assert.Contains(t, out.String(), "no newline\n--- PASS: x (0.000s, exit 0)\n")
}

func TestRun_OneInvocationPerRun(t *testing.T) {
	dev := testutil.NewFakeDevice("")
	r := New(dev, &bytes.Buffer{})

	for i := 0; i < 3; i++ {
		r.Run(context.Background(), "get", []string{"cmd", "sbas-corrections", "get", "--port", "p"})
	}
	assert.Len(t, dev.Calls(), 3)
}

func TestNewExecInvoker_Missing(t *testing.T) {
	_, err := NewExecInvoker("orbfix-does-not-exist-7c1e")
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestExecInvoker_ExitStatus(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script")
	}
	tool := writeScript(t, "#!/bin/sh\necho \"args: $*\"\necho oops >&2\nexit 3\n")

	inv, err := NewExecInvoker(tool)
	require.NoError(t, err)
	assert.Equal(t, tool, inv.Path())

	status, out, err := inv.Invoke(context.Background(), []string{"cmd", "sbas-corrections", "get"})
	require.NoError(t, err)
	assert.Equal(t, 3, status)
	assert.Contains(t, string(out), "args: cmd sbas-corrections get")
	assert.Contains(t, string(out), "oops")
}

func TestExecInvoker_ToolRemovedAfterLookup(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script")
	}
	tool := writeScript(t, "#!/bin/sh\nexit 0\n")
	inv, err := NewExecInvoker(tool)
	require.NoError(t, err)
	require.NoError(t, os.Remove(tool))

	status, _, err := inv.Invoke(context.Background(), nil)
	assert.ErrorIs(t, err, ErrToolNotFound)
	assert.Equal(t, StatusToolMissing, status)
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orbfix")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
	return path
}

type failingInvoker struct{ err error }

func (f failingInvoker) Invoke(context.Context, []string) (int, []byte, error) {
	return StatusToolMissing, nil, f.err
}

type staticInvoker struct{ output []byte }

func (s staticInvoker) Invoke(context.Context, []string) (int, []byte, error) {
	return 0, s.output, nil
}
