package config

import (
	"fmt"
	"time"
)

// Validate checks the configuration for common errors and returns a detailed error if validation fails.
func (c *Config) Validate() error {
	if len(c.Backends) == 0 {
		return fmt.Errorf("at least one backend is required")
	}

	seen := make(map[string]bool, len(c.Backends))
	for i, b := range c.Backends {
		if b.Name == "" {
			return fmt.Errorf("backends[%d]: name is required", i)
		}
		if seen[b.Name] {
			return fmt.Errorf("backends[%d]: duplicate backend name %q", i, b.Name)
		}
		seen[b.Name] = true

		if err := b.validate(); err != nil {
			return fmt.Errorf("backend %q: %w", b.Name, err)
		}
	}

	if err := c.Handshake.validate(); err != nil {
		return fmt.Errorf("handshake validation failed: %w", err)
	}
	if c.Provisioning.CreateTimeout < 0 {
		return fmt.Errorf("provisioning.create_timeout must not be negative, got %s", c.Provisioning.CreateTimeout)
	}

	s3 := c.Credentials.S3
	if s3.Enabled() && s3.Region == "" {
		return fmt.Errorf("credentials.s3.region is required when a bucket is set")
	}

	return nil
}

func (b BackendConfig) validate() error {
	switch b.Kind {
	case KindHCloud:
		if b.HCloud == nil || b.HCloud.ServerType == "" {
			return fmt.Errorf("hcloud.server_type is required")
		}
	case KindEC2:
		if b.EC2 == nil || b.EC2.Region == "" {
			return fmt.Errorf("ec2.region is required")
		}
		if b.EC2.AMI == "" {
			return fmt.Errorf("ec2.ami is required")
		}
	case KindMemory:
	case "":
		return fmt.Errorf("kind is required")
	default:
		return fmt.Errorf("unknown kind %q: must be one of %s, %s, %s", b.Kind, KindHCloud, KindEC2, KindMemory)
	}
	return nil
}

func (h HandshakeConfig) validate() error {
	if h.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", h.MaxAttempts)
	}
	if h.AttemptDelay < 0 {
		return fmt.Errorf("attempt_delay must not be negative, got %s", h.AttemptDelay)
	}
	if h.Port < 1 || h.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", h.Port)
	}
	if h.DialTimeout < time.Second {
		return fmt.Errorf("dial_timeout must be at least 1s, got %s", h.DialTimeout)
	}
	return nil
}
