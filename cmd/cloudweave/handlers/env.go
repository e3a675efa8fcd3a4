// Package handlers implements the business logic for CLI commands.
//
// Each exported function corresponds to one cobra command. Collaborators
// that touch the outside world (config files, cloud clients, the terminal)
// are package-level variables so tests can replace them.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/imamik/cloudweave/internal/backend"
	"github.com/imamik/cloudweave/internal/config"
	"github.com/imamik/cloudweave/internal/config/wizard"
	"github.com/imamik/cloudweave/internal/credentials"
	"github.com/imamik/cloudweave/internal/handshake"
	"github.com/imamik/cloudweave/internal/orchestration"
	"github.com/imamik/cloudweave/internal/platform/ec2"
	"github.com/imamik/cloudweave/internal/platform/hcloud"
	"github.com/imamik/cloudweave/internal/platform/memory"
	"github.com/imamik/cloudweave/internal/platform/s3"
	"github.com/imamik/cloudweave/internal/provisioning"
)

// DefaultConfigPath is read when no --config flag is given.
const DefaultConfigPath = "cloudweave.yaml"

// Factory function variables - can be replaced in tests.
var (
	loadConfigFile  = config.LoadFile
	loadRequestFile = config.LoadRequest
	loadTimeouts    = config.LoadTimeouts
	readFile        = os.ReadFile

	loadCredentials = credentials.LoadFile
	saveCredentials = func(store *credentials.Store, path string) error {
		return store.SaveFile(path)
	}

	newHCloudClient = func(token string, timeouts *config.Timeouts) *hcloud.RealClient {
		return hcloud.NewRealClient(token, hcloud.WithTimeouts(timeouts))
	}
	newEC2API = func(ctx context.Context, opts ec2.ClientOptions) (ec2.API, error) {
		return ec2.NewClient(ctx, opts)
	}
	newObjectStore = func(ctx context.Context, opts s3.Options) (credentials.ObjectStore, error) {
		return s3.NewClient(ctx, opts)
	}

	newLogger = newZapLogger

	stdout      io.Writer = os.Stdout
	colorOutput           = isInteractiveTTY
	interactive           = canPrompt

	// confirm asks a yes/no question on the terminal.
	confirm = wizard.Confirm
)

// loadConfig reads the configuration at path. A missing default file falls
// back to the built-in configuration so dry runs work out of the box.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	cfg, err := loadConfigFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultConfigPath {
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// environment is everything a command needs to drive the orchestrator.
type environment struct {
	cfg          *config.Config
	registry     *backend.Registry
	dialer       handshake.Dialer
	store        *credentials.Store
	storePath    string
	logger       logr.Logger
	syncLogger   func()
	orchestrator *orchestration.Orchestrator
}

type envOptions struct {
	configPath      string
	credentialsFile string
	dryRun          bool
	verbose         bool
}

func newEnvironment(ctx context.Context, opts envOptions) (*environment, error) {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	logger, sync, err := newLogger(opts.verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	registry, memBackends, err := buildRegistry(ctx, cfg, opts.dryRun)
	if err != nil {
		sync()
		return nil, err
	}

	storePath := opts.credentialsFile
	if storePath == "" {
		storePath = cfg.Credentials.File
	}
	store, err := loadCredentials(storePath)
	if err != nil {
		sync()
		return nil, err
	}

	var privateKey []byte
	if cfg.Handshake.PrivateKeyFile != "" && !opts.dryRun {
		privateKey, err = readFile(cfg.Handshake.PrivateKeyFile)
		if err != nil {
			sync()
			return nil, fmt.Errorf("failed to read private key: %w", err)
		}
	}

	var dialer handshake.Dialer
	if len(memBackends) == registry.Len() {
		dialer = memory.NewDialer(memBackends...)
	} else {
		dialer = handshake.NewSSHDialer(cfg.Handshake.Port, cfg.Handshake.DialTimeout)
	}

	orch := orchestration.New(registry, store, dialer, orchestration.Config{
		HandshakeAttempts: cfg.Handshake.MaxAttempts,
		HandshakeDelay:    cfg.Handshake.AttemptDelay,
		ArtifactPath:      cfg.Handshake.ArtifactPath,
		CreateTimeout:     cfg.Provisioning.CreateTimeout,
		NotifyBotToken:    cfg.Notify.TelegramBotToken,
		NotifyChatID:      cfg.Notify.TelegramChatID,
		SSHPrivateKey:     privateKey,
		Observer:          provisioning.NewLogrObserver(logger),
	})

	return &environment{
		cfg:          cfg,
		registry:     registry,
		dialer:       dialer,
		store:        store,
		storePath:    storePath,
		logger:       logger,
		syncLogger:   sync,
		orchestrator: orch,
	}, nil
}

func (e *environment) close() {
	e.syncLogger()
}

// buildRegistry registers one backend per configured entry, in order. Dry
// runs replace every backend with an in-memory one of the same name.
func buildRegistry(ctx context.Context, cfg *config.Config, dryRun bool) (*backend.Registry, []*memory.Backend, error) {
	registry, err := backend.NewRegistry()
	if err != nil {
		return nil, nil, err
	}

	timeouts := loadTimeouts()
	var memBackends []*memory.Backend
	for _, bc := range cfg.Backends {
		var b backend.Backend
		switch {
		case dryRun || bc.Kind == config.KindMemory:
			mb := memory.New(bc.Name)
			memBackends = append(memBackends, mb)
			b = mb
		case bc.Kind == config.KindHCloud:
			if bc.HCloud.Token == "" {
				return nil, nil, fmt.Errorf("backend %q: HCLOUD_TOKEN is required", bc.Name)
			}
			b = hcloud.NewBackend(bc.Name, newHCloudClient(bc.HCloud.Token, timeouts), hcloud.Defaults{
				Location:   bc.HCloud.Location,
				ServerType: bc.HCloud.ServerType,
				Image:      bc.HCloud.Image,
				SSHKeys:    bc.HCloud.SSHKeys,
			})
		case bc.Kind == config.KindEC2:
			api, err := newEC2API(ctx, ec2.ClientOptions{Region: bc.EC2.Region})
			if err != nil {
				return nil, nil, fmt.Errorf("backend %q: %w", bc.Name, err)
			}
			b = ec2.NewBackend(bc.Name, api, ec2.Defaults{
				AMI:              bc.EC2.AMI,
				InstanceType:     bc.EC2.InstanceType,
				KeyName:          bc.EC2.KeyName,
				SubnetID:         bc.EC2.SubnetID,
				SecurityGroupIDs: bc.EC2.SecurityGroupIDs,
			}, ec2.WithTimeouts(timeouts))
		default:
			return nil, nil, fmt.Errorf("backend %q: unknown kind %q", bc.Name, bc.Kind)
		}
		if err := registry.Register(b); err != nil {
			return nil, nil, err
		}
	}
	return registry, memBackends, nil
}

// newZapLogger builds a console zap logger wrapped as a logr.Logger.
// Verbose raises the level to debug.
func newZapLogger(verbose bool) (logr.Logger, func(), error) {
	zc := zap.NewDevelopmentConfig()
	zc.DisableStacktrace = true
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if colorOutput() {
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if !verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	zl, err := zc.Build()
	if err != nil {
		return logr.Discard(), func() {}, err
	}
	return zapr.NewLogger(zl), func() { _ = zl.Sync() }, nil
}

// exportCredentials uploads the store to the configured bucket.
func exportCredentials(ctx context.Context, cfg config.CredentialsConfig, store *credentials.Store) error {
	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return err
	}
	return exporter.Export(ctx, store)
}

// importCredentials merges the remote snapshot into store.
func importCredentials(ctx context.Context, cfg config.CredentialsConfig, store *credentials.Store) error {
	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return err
	}
	return exporter.Import(ctx, store)
}

func newExporter(ctx context.Context, cfg config.CredentialsConfig) (*credentials.S3Exporter, error) {
	if !cfg.S3.Enabled() {
		return nil, fmt.Errorf("credentials.s3.bucket is not configured")
	}
	objects, err := newObjectStore(ctx, s3.Options{
		Endpoint:  cfg.S3.Endpoint,
		Region:    cfg.S3.Region,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		PathStyle: cfg.S3.Endpoint != "",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	return credentials.NewS3Exporter(objects, cfg.S3.Bucket, cfg.S3.Key)
}

func isInteractiveTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// canPrompt reports whether both ends are a terminal, so a form can be shown.
func canPrompt() bool {
	in := os.Stdin.Fd()
	return isInteractiveTTY() && (isatty.IsTerminal(in) || isatty.IsCygwinTerminal(in))
}
