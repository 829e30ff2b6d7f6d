package port

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return NewStore(path)
}

func TestResolve_OverrideWinsVerbatim(t *testing.T) {
	store := writeConfig(t, "[serial]\nport = \"/dev/ttyUSB9\"\n")
	r := &Resolver{Override: "/dev/does-not-exist", Store: store}

	target, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, Target("/dev/does-not-exist"), target, "override is not checked at resolve time")
}

func TestResolve_FromStore(t *testing.T) {
	store := writeConfig(t, "[serial]\nport = \"/dev/ttyUSB0\"\n")
	r := &Resolver{Store: store}

	target, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, Target("/dev/ttyUSB0"), target)
}

func TestResolve_ConfigurationMissing(t *testing.T) {
	r := &Resolver{Store: NewStore(filepath.Join(t.TempDir(), "absent.toml"))}

	_, err := r.Resolve()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigurationMissing))
	assert.Contains(t, err.Error(), "orbharness config set-port")

	_, err = (&Resolver{}).Resolve()
	assert.True(t, errors.Is(err, ErrConfigurationMissing))
}

func TestResolve_ConfigurationIncomplete(t *testing.T) {
	tests := map[string]string{
		"no serial section": "[other]\nkey = 1\n",
		"no port key":       "[serial]\nbaud = 115200\n",
		"empty port":        "[serial]\nport = \"\"\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			r := &Resolver{Store: writeConfig(t, content)}
			_, err := r.Resolve()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfigurationIncomplete))
			assert.Contains(t, err.Error(), EnvPort)
		})
	}
}

func TestNewResolver_ReadsEnv(t *testing.T) {
	t.Setenv(EnvPort, "/dev/ttyACM0")
	r := NewResolver(nil)

	target, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, Target("/dev/ttyACM0"), target)
}

func TestAssertExists(t *testing.T) {
	existing := filepath.Join(t.TempDir(), "ttyFAKE0")
	require.NoError(t, os.WriteFile(existing, nil, 0644))
	assert.NoError(t, AssertExists(Target(existing)))

	err := AssertExists(Target(filepath.Join(t.TempDir(), "ttyMISSING")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTargetNotFound))
	assert.Contains(t, err.Error(), "ttyMISSING")
	assert.Contains(t, err.Error(), Remediation)

	assert.True(t, errors.Is(AssertExists(""), ErrTargetNotFound))
}

func TestStore_SetShowClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	store := NewStore(path)

	_, err := store.Port()
	require.True(t, errors.Is(err, ErrConfigurationMissing))

	require.NoError(t, store.SetPort("/dev/ttyUSB1"))
	port, err := store.Port()
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB1", port)

	require.NoError(t, store.SetPort("COM5"))
	port, err = store.Port()
	require.NoError(t, err)
	assert.Equal(t, "COM5", port)

	cleared, err := store.ClearPort()
	require.NoError(t, err)
	assert.True(t, cleared)

	_, err = store.Port()
	assert.True(t, errors.Is(err, ErrConfigurationIncomplete))

	cleared, err = store.ClearPort()
	require.NoError(t, err)
	assert.False(t, cleared)
}

func TestStore_PreservesOtherSections(t *testing.T) {
	store := writeConfig(t, "[monitor]\nrefresh = 5\n\n[serial]\nport = \"/dev/ttyUSB0\"\nbaud = 115200\n")

	require.NoError(t, store.SetPort("/dev/ttyUSB3"))

	doc, err := store.Load()
	require.NoError(t, err)
	monitor, ok := doc["monitor"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 5, monitor["refresh"])

	serial := doc["serial"].(map[string]any)
	assert.Equal(t, "/dev/ttyUSB3", serial["port"])
	assert.EqualValues(t, 115200, serial["baud"])
}

func TestStore_MalformedFile(t *testing.T) {
	store := writeConfig(t, "[serial\nport = ")
	_, err := store.Port()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestDefaultStore_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	t.Setenv(EnvConfigFile, path)

	store, err := DefaultStore()
	require.NoError(t, err)
	assert.Equal(t, path, store.Path())
}
