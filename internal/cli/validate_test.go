package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Structured(t *testing.T) {
	stdout, _, err := execute(t, "validate", "-s", "WAAS", "--sis-mode", "Operational", "-n", "precapp", "-d", "do229c")
	require.NoError(t, err)

	assert.Contains(t, stdout, "config:    waas/operational/precapp/do229c")
	assert.Contains(t, stdout, "payload:   02010101")
	assert.Contains(t, stdout,
		"command:   cmd sbas-corrections set --satellite waas --sis-mode operational --nav-mode precapp --do229 do229c")
}

func TestValidate_ShortFlags(t *testing.T) {
	stdout, _, err := execute(t, "validate", "--short", "-s", "gagan", "--sis-mode", "test", "-n", "enroute", "-d", "auto")
	require.NoError(t, err)
	assert.Contains(t, stdout, "set -s gagan --sis-mode test -n enroute -d auto")
}

func TestValidate_Payload(t *testing.T) {
	stdout, _, err := execute(t, "validate", "--payload", "0x02 01 01 01")
	require.NoError(t, err)
	assert.Contains(t, stdout, "payload:   02010101")
	assert.Contains(t, stdout, "config:    waas/operational/precapp/do229c")
	assert.Contains(t, stdout, "--payload 02010101")
}

func TestValidate_PayloadLengthWarning(t *testing.T) {
	stdout, _, err := execute(t, "validate", "--payload", "0102")
	require.NoError(t, err, "a width mismatch is only a warning")
	assert.Contains(t, stdout, "warning:   PayloadLengthMismatch")
	assert.NotContains(t, stdout, "config:")
}

func TestValidate_Get(t *testing.T) {
	stdout, _, err := execute(t, "validate", "--get")
	require.NoError(t, err)
	assert.Contains(t, stdout, "verb:      get")
	assert.Contains(t, stdout, "command:   cmd sbas-corrections get\n")
	assert.NotContains(t, stdout, "warning:")
}

func TestValidate_GetIgnoresConfiguration(t *testing.T) {
	stdout, _, err := execute(t, "validate", "--get", "-s", "waas")
	require.NoError(t, err)
	assert.Contains(t, stdout, "warning:   IgnoredConfiguration")
	assert.Contains(t, stdout, "command:   cmd sbas-corrections get\n")
}

func TestValidate_MissingFields(t *testing.T) {
	_, stderr, err := execute(t, "validate", "-s", "waas")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, stderr, "Error [E002]: invalid request")
	assert.Contains(t, stderr, "MissingField(sis-mode)")
	assert.Contains(t, stderr, "MissingField(nav-mode)")
	assert.Contains(t, stderr, "MissingField(do229)")
}

func TestValidate_Conflicting(t *testing.T) {
	_, stderr, err := execute(t, "validate", "-s", "waas", "--payload", "02010101")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "ConflictingModes")
}

func TestValidate_NothingToSet(t *testing.T) {
	_, stderr, err := execute(t, "validate")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "MissingConfiguration")
}

func TestValidate_InvalidJSON(t *testing.T) {
	stdout, _, err := execute(t, "--format", "json", "validate", "-s", "galileo", "--sis-mode", "live", "-n", "enroute", "-d", "auto")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string    `json:"code"`
			Details []Problem `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeInvalidInput, resp.Error.Code)
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "satellite", string(resp.Error.Details[0].Field))
	assert.Equal(t, "galileo", resp.Error.Details[0].Value)
	assert.Contains(t, resp.Error.Details[0].Allowed, "waas")
	assert.Equal(t, "sis-mode", string(resp.Error.Details[1].Field))
}

func TestValidate_JSON(t *testing.T) {
	stdout, _, err := execute(t, "--format", "json", "validate", "--payload", "2D000200")
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   ValidateResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "2D000200", resp.Data.Payload)
	assert.Equal(t, "s158/test/mixedsystems/auto", resp.Data.Canonical)
	assert.Equal(t, []string{"cmd", "sbas-corrections", "set", "--payload", "2D000200"}, resp.Data.Args)
}
