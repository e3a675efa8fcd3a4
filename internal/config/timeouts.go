package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable provider API timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	ServerCreate      time.Duration // Timeout for a single instance creation including the running wait
	ServerIP          time.Duration // Timeout for waiting for public IP assignment
	Delete            time.Duration // Timeout for all delete operations
	PowerAction       time.Duration // Timeout for start and stop operations
	RetryMaxAttempts  int           // Maximum number of retry attempts
	RetryInitialDelay time.Duration // Initial delay between retries
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - CLOUDWEAVE_TIMEOUT_SERVER_CREATE (default: 10m)
//   - CLOUDWEAVE_TIMEOUT_SERVER_IP (default: 60s)
//   - CLOUDWEAVE_TIMEOUT_DELETE (default: 5m)
//   - CLOUDWEAVE_TIMEOUT_POWER (default: 3m)
//   - CLOUDWEAVE_RETRY_MAX_ATTEMPTS (default: 5)
//   - CLOUDWEAVE_RETRY_INITIAL_DELAY (default: 1s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		ServerCreate:      parseDuration("CLOUDWEAVE_TIMEOUT_SERVER_CREATE", 10*time.Minute),
		ServerIP:          parseDuration("CLOUDWEAVE_TIMEOUT_SERVER_IP", 60*time.Second),
		Delete:            parseDuration("CLOUDWEAVE_TIMEOUT_DELETE", 5*time.Minute),
		PowerAction:       parseDuration("CLOUDWEAVE_TIMEOUT_POWER", 3*time.Minute),
		RetryMaxAttempts:  parseInt("CLOUDWEAVE_RETRY_MAX_ATTEMPTS", 5),
		RetryInitialDelay: parseDuration("CLOUDWEAVE_RETRY_INITIAL_DELAY", 1*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}
