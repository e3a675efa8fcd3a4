package config

import (
	"time"

	"github.com/imamik/cloudweave/internal/handshake"
)

// Backend kinds.
const (
	KindHCloud = "hcloud"
	KindEC2    = "ec2"
	KindMemory = "memory"
)

// Defaults applied by LoadFile and Default.
const (
	DefaultHandshakePort        = 22
	DefaultHandshakeDialTimeout = 10 * time.Second
	DefaultCreateTimeout        = 15 * time.Minute
	DefaultCredentialsFile      = "credentials.yaml"
	DefaultHCloudLocation       = "fsn1"
	DefaultHCloudServerType     = "cx22"
	DefaultHCloudImage          = "ubuntu-24.04"
	DefaultEC2InstanceType      = "t3.micro"
)

// Config is the root configuration of the cloudweave CLI.
type Config struct {
	// Backends are kept in file order; node distribution follows it.
	Backends     []BackendConfig    `yaml:"backends"`
	Handshake    HandshakeConfig    `yaml:"handshake"`
	Provisioning ProvisioningConfig `yaml:"provisioning"`
	Notify       NotifyConfig       `yaml:"notify"`
	Credentials  CredentialsConfig  `yaml:"credentials"`
}

// BackendConfig configures one named compute backend.
type BackendConfig struct {
	Name   string        `yaml:"name"`
	Kind   string        `yaml:"kind"`
	HCloud *HCloudConfig `yaml:"hcloud,omitempty"`
	EC2    *EC2Config    `yaml:"ec2,omitempty"`
}

// HCloudConfig holds Hetzner Cloud defaults. The API token is read from
// HCLOUD_TOKEN and never from the file.
type HCloudConfig struct {
	Location   string   `yaml:"location"`
	ServerType string   `yaml:"server_type"`
	Image      string   `yaml:"image"`
	SSHKeys    []string `yaml:"ssh_keys"`
	Token      string   `yaml:"-"`
}

// EC2Config holds AWS EC2 defaults. Credentials come from the default AWS chain.
type EC2Config struct {
	Region           string   `yaml:"region"`
	AMI              string   `yaml:"ami"`
	InstanceType     string   `yaml:"instance_type"`
	KeyName          string   `yaml:"key_name"`
	SubnetID         string   `yaml:"subnet_id"`
	SecurityGroupIDs []string `yaml:"security_group_ids"`
}

// HandshakeConfig bounds the join secret retrieval.
type HandshakeConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	AttemptDelay time.Duration `yaml:"attempt_delay"`
	ArtifactPath string        `yaml:"artifact_path"`
	Port         int           `yaml:"port"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	// PrivateKeyFile is used when a manager has no password.
	PrivateKeyFile string `yaml:"private_key_file"`
}

// ProvisioningConfig bounds backend calls. A zero CreateTimeout disables the deadline.
type ProvisioningConfig struct {
	CreateTimeout time.Duration `yaml:"create_timeout"`
}

// NotifyConfig is passed to bootstrap scripts as notification hook parameters.
type NotifyConfig struct {
	TelegramBotToken string `yaml:"telegram_bot_token"`
	TelegramChatID   string `yaml:"telegram_chat_id"`
}

// CredentialsConfig says where credential snapshots are kept.
type CredentialsConfig struct {
	File string   `yaml:"file"`
	S3   S3Config `yaml:"s3"`
}

// S3Config addresses the bucket used by credential export. Keys are read
// from CLOUDWEAVE_S3_ACCESS_KEY and CLOUDWEAVE_S3_SECRET_KEY.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	Key       string `yaml:"key"`
	AccessKey string `yaml:"-"`
	SecretKey string `yaml:"-"`
}

// Enabled reports whether export to object storage is configured.
func (s S3Config) Enabled() bool {
	return s.Bucket != ""
}

// Default returns a configuration with two memory backends, used for dry runs
// when no file is given.
func Default() *Config {
	cfg := &Config{
		Backends: []BackendConfig{
			{Name: "hetzner", Kind: KindMemory},
			{Name: "aws", Kind: KindMemory},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// Backend returns the backend configuration with the given name.
func (c *Config) Backend(name string) (BackendConfig, bool) {
	for _, b := range c.Backends {
		if b.Name == name {
			return b, true
		}
	}
	return BackendConfig{}, false
}

func (c *Config) applyDefaults() {
	if c.Handshake.MaxAttempts == 0 {
		c.Handshake.MaxAttempts = handshake.DefaultMaxAttempts
	}
	if c.Handshake.AttemptDelay == 0 {
		c.Handshake.AttemptDelay = handshake.DefaultAttemptDelay
	}
	if c.Handshake.ArtifactPath == "" {
		c.Handshake.ArtifactPath = handshake.DefaultArtifactPath
	}
	if c.Handshake.Port == 0 {
		c.Handshake.Port = DefaultHandshakePort
	}
	if c.Handshake.DialTimeout == 0 {
		c.Handshake.DialTimeout = DefaultHandshakeDialTimeout
	}
	if c.Provisioning.CreateTimeout == 0 {
		c.Provisioning.CreateTimeout = DefaultCreateTimeout
	}
	if c.Credentials.File == "" {
		c.Credentials.File = DefaultCredentialsFile
	}
	if c.Credentials.S3.Key == "" {
		c.Credentials.S3.Key = "cloudweave/credentials.yaml"
	}

	for i := range c.Backends {
		b := &c.Backends[i]
		switch b.Kind {
		case KindHCloud:
			if b.HCloud == nil {
				b.HCloud = &HCloudConfig{}
			}
			if b.HCloud.Location == "" {
				b.HCloud.Location = DefaultHCloudLocation
			}
			if b.HCloud.ServerType == "" {
				b.HCloud.ServerType = DefaultHCloudServerType
			}
			if b.HCloud.Image == "" {
				b.HCloud.Image = DefaultHCloudImage
			}
		case KindEC2:
			if b.EC2 == nil {
				b.EC2 = &EC2Config{}
			}
			if b.EC2.InstanceType == "" {
				b.EC2.InstanceType = DefaultEC2InstanceType
			}
		}
	}
}
