package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
backends:
  - name: hetzner
    kind: hcloud
    hcloud:
      location: nbg1
      ssh_keys: [ops]
  - name: aws
    kind: ec2
    ec2:
      region: us-west-2
      ami: ami-0123456789
      security_group_ids: [sg-1]
handshake:
  max_attempts: 10
  attempt_delay: 5s
notify:
  telegram_chat_id: "42"
credentials:
  s3:
    region: fsn1
    bucket: secrets
`

var configEnvVars = []string{
	"CLOUDWEAVE_HANDSHAKE_MAX_ATTEMPTS",
	"CLOUDWEAVE_HANDSHAKE_ATTEMPT_DELAY",
	"CLOUDWEAVE_CREATE_TIMEOUT",
	"TELEGRAM_BOT_TOKEN",
	"TELEGRAM_CHAT_ID",
	"CLOUDWEAVE_S3_ACCESS_KEY",
	"CLOUDWEAVE_S3_SECRET_KEY",
	"HCLOUD_TOKEN",
}

func clearConfigEnvVars(t *testing.T) {
	t.Helper()
	for _, name := range configEnvVars {
		t.Setenv(name, "")
	}
}

func TestParse_DefaultsAndOrder(t *testing.T) {
	clearConfigEnvVars(t)

	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	require.Len(t, cfg.Backends, 2)
	assert.Equal(t, "hetzner", cfg.Backends[0].Name)
	assert.Equal(t, "aws", cfg.Backends[1].Name)

	hc := cfg.Backends[0].HCloud
	assert.Equal(t, "nbg1", hc.Location)
	assert.Equal(t, DefaultHCloudServerType, hc.ServerType)
	assert.Equal(t, DefaultHCloudImage, hc.Image)
	assert.Equal(t, []string{"ops"}, hc.SSHKeys)
	assert.Equal(t, DefaultEC2InstanceType, cfg.Backends[1].EC2.InstanceType)

	assert.Equal(t, 10, cfg.Handshake.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.Handshake.AttemptDelay)
	assert.Equal(t, "/var/lib/cloudweave/join.json", cfg.Handshake.ArtifactPath)
	assert.Equal(t, 22, cfg.Handshake.Port)
	assert.Equal(t, DefaultHandshakeDialTimeout, cfg.Handshake.DialTimeout)
	assert.Equal(t, DefaultCreateTimeout, cfg.Provisioning.CreateTimeout)
	assert.Equal(t, DefaultCredentialsFile, cfg.Credentials.File)
	assert.True(t, cfg.Credentials.S3.Enabled())
	assert.Equal(t, "42", cfg.Notify.TelegramChatID)
}

func TestParse_EnvOverrides(t *testing.T) {
	clearConfigEnvVars(t)
	t.Setenv("CLOUDWEAVE_HANDSHAKE_MAX_ATTEMPTS", "3")
	t.Setenv("CLOUDWEAVE_HANDSHAKE_ATTEMPT_DELAY", "500ms")
	t.Setenv("CLOUDWEAVE_CREATE_TIMEOUT", "2m")
	t.Setenv("HCLOUD_TOKEN", "secret-token")
	t.Setenv("TELEGRAM_BOT_TOKEN", "bot")
	t.Setenv("CLOUDWEAVE_S3_ACCESS_KEY", "ak")
	t.Setenv("CLOUDWEAVE_S3_SECRET_KEY", "sk")

	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Handshake.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Handshake.AttemptDelay)
	assert.Equal(t, 2*time.Minute, cfg.Provisioning.CreateTimeout)
	assert.Equal(t, "secret-token", cfg.Backends[0].HCloud.Token)
	assert.Equal(t, "bot", cfg.Notify.TelegramBotToken)
	assert.Equal(t, "42", cfg.Notify.TelegramChatID, "file value kept when env is empty")
	assert.Equal(t, "ak", cfg.Credentials.S3.AccessKey)
	assert.Equal(t, "sk", cfg.Credentials.S3.SecretKey)
}

func TestParse_InvalidEnvKeepsFileValue(t *testing.T) {
	clearConfigEnvVars(t)
	t.Setenv("CLOUDWEAVE_HANDSHAKE_MAX_ATTEMPTS", "lots")

	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Handshake.MaxAttempts)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:    "no backends",
			modify:  func(c *Config) { c.Backends = nil },
			wantErr: "at least one backend",
		},
		{
			name:    "missing name",
			modify:  func(c *Config) { c.Backends[0].Name = "" },
			wantErr: "name is required",
		},
		{
			name:    "duplicate name",
			modify:  func(c *Config) { c.Backends[1].Name = "hetzner" },
			wantErr: "duplicate backend name",
		},
		{
			name:    "unknown kind",
			modify:  func(c *Config) { c.Backends[0].Kind = "gcp" },
			wantErr: `unknown kind "gcp"`,
		},
		{
			name:    "missing kind",
			modify:  func(c *Config) { c.Backends[0].Kind = "" },
			wantErr: "kind is required",
		},
		{
			name:    "ec2 without region",
			modify:  func(c *Config) { c.Backends[1].EC2.Region = "" },
			wantErr: "ec2.region is required",
		},
		{
			name:    "ec2 without ami",
			modify:  func(c *Config) { c.Backends[1].EC2.AMI = "" },
			wantErr: "ec2.ami is required",
		},
		{
			name:    "zero attempts",
			modify:  func(c *Config) { c.Handshake.MaxAttempts = 0 },
			wantErr: "max_attempts must be at least 1",
		},
		{
			name:    "negative delay",
			modify:  func(c *Config) { c.Handshake.AttemptDelay = -time.Second },
			wantErr: "attempt_delay must not be negative",
		},
		{
			name:    "bad port",
			modify:  func(c *Config) { c.Handshake.Port = 70000 },
			wantErr: "port must be between",
		},
		{
			name:    "negative create timeout",
			modify:  func(c *Config) { c.Provisioning.CreateTimeout = -time.Minute },
			wantErr: "create_timeout must not be negative",
		},
		{
			name:    "bucket without region",
			modify:  func(c *Config) { c.Credentials.S3 = S3Config{Bucket: "b"} },
			wantErr: "credentials.s3.region is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := &Config{
				Backends: []BackendConfig{
					{Name: "hetzner", Kind: KindHCloud},
					{Name: "aws", Kind: KindEC2, EC2: &EC2Config{Region: "us-west-2", AMI: "ami-1"}},
				},
			}
			cfg.applyDefaults()
			require.NoError(t, cfg.Validate())

			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefault(t *testing.T) {
	t.Parallel()
	cfg := Default()
	require.NoError(t, cfg.Validate())

	b, ok := cfg.Backend("aws")
	require.True(t, ok)
	assert.Equal(t, KindMemory, b.Kind)

	_, ok = cfg.Backend("gcp")
	assert.False(t, ok)
}

func TestLoadFile(t *testing.T) {
	clearConfigEnvVars(t)
	path := filepath.Join(t.TempDir(), "cloudweave.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Backends, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("backends: [\n"), 0o600))
	_, err = LoadFile(bad)
	assert.ErrorContains(t, err, "failed to unmarshal yaml")
}
