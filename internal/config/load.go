package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads and parses the configuration from a YAML file.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, applies defaults and environment
// overrides and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// applyEnv overrides settings from the environment. Invalid values keep the
// file value, as LoadTimeouts does.
func (c *Config) applyEnv() {
	c.Handshake.MaxAttempts = parseInt("CLOUDWEAVE_HANDSHAKE_MAX_ATTEMPTS", c.Handshake.MaxAttempts)
	c.Handshake.AttemptDelay = parseDuration("CLOUDWEAVE_HANDSHAKE_ATTEMPT_DELAY", c.Handshake.AttemptDelay)
	c.Provisioning.CreateTimeout = parseDuration("CLOUDWEAVE_CREATE_TIMEOUT", c.Provisioning.CreateTimeout)

	c.Notify.TelegramBotToken = envOr("TELEGRAM_BOT_TOKEN", c.Notify.TelegramBotToken)
	c.Notify.TelegramChatID = envOr("TELEGRAM_CHAT_ID", c.Notify.TelegramChatID)
	c.Credentials.S3.AccessKey = envOr("CLOUDWEAVE_S3_ACCESS_KEY", c.Credentials.S3.AccessKey)
	c.Credentials.S3.SecretKey = envOr("CLOUDWEAVE_S3_SECRET_KEY", c.Credentials.S3.SecretKey)

	token := os.Getenv("HCLOUD_TOKEN")
	for i := range c.Backends {
		if c.Backends[i].HCloud != nil && token != "" {
			c.Backends[i].HCloud.Token = token
		}
	}
}

func envOr(envVar, fallback string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return fallback
}
