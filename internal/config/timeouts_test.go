package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var timeoutEnvVars = []string{
	"CLOUDWEAVE_TIMEOUT_SERVER_CREATE",
	"CLOUDWEAVE_TIMEOUT_SERVER_IP",
	"CLOUDWEAVE_TIMEOUT_DELETE",
	"CLOUDWEAVE_TIMEOUT_POWER",
	"CLOUDWEAVE_RETRY_MAX_ATTEMPTS",
	"CLOUDWEAVE_RETRY_INITIAL_DELAY",
}

func clearTimeoutEnvVars(t *testing.T) {
	t.Helper()
	for _, name := range timeoutEnvVars {
		t.Setenv(name, "")
	}
}

func TestLoadTimeouts_Defaults(t *testing.T) {
	clearTimeoutEnvVars(t)

	timeouts := LoadTimeouts()

	assert.Equal(t, 10*time.Minute, timeouts.ServerCreate)
	assert.Equal(t, 60*time.Second, timeouts.ServerIP)
	assert.Equal(t, 5*time.Minute, timeouts.Delete)
	assert.Equal(t, 3*time.Minute, timeouts.PowerAction)
	assert.Equal(t, 5, timeouts.RetryMaxAttempts)
	assert.Equal(t, 1*time.Second, timeouts.RetryInitialDelay)
}

func TestLoadTimeouts_EnvVars(t *testing.T) {
	t.Setenv("CLOUDWEAVE_TIMEOUT_SERVER_CREATE", "15m")
	t.Setenv("CLOUDWEAVE_TIMEOUT_SERVER_IP", "90s")
	t.Setenv("CLOUDWEAVE_TIMEOUT_DELETE", "3m")
	t.Setenv("CLOUDWEAVE_TIMEOUT_POWER", "1m")
	t.Setenv("CLOUDWEAVE_RETRY_MAX_ATTEMPTS", "10")
	t.Setenv("CLOUDWEAVE_RETRY_INITIAL_DELAY", "2s")

	timeouts := LoadTimeouts()

	assert.Equal(t, 15*time.Minute, timeouts.ServerCreate)
	assert.Equal(t, 90*time.Second, timeouts.ServerIP)
	assert.Equal(t, 3*time.Minute, timeouts.Delete)
	assert.Equal(t, 1*time.Minute, timeouts.PowerAction)
	assert.Equal(t, 10, timeouts.RetryMaxAttempts)
	assert.Equal(t, 2*time.Second, timeouts.RetryInitialDelay)
}

func TestLoadTimeouts_InvalidEnvVars(t *testing.T) {
	t.Setenv("CLOUDWEAVE_TIMEOUT_SERVER_CREATE", "invalid")
	t.Setenv("CLOUDWEAVE_TIMEOUT_DELETE", "not-a-duration")
	t.Setenv("CLOUDWEAVE_RETRY_MAX_ATTEMPTS", "many")

	timeouts := LoadTimeouts()

	assert.Equal(t, 10*time.Minute, timeouts.ServerCreate)
	assert.Equal(t, 5*time.Minute, timeouts.Delete)
	assert.Equal(t, 5, timeouts.RetryMaxAttempts)
}
