package wizard

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/imamik/cloudweave/internal/config"
)

// Result holds all the answers from the init wizard.
type Result struct {
	// Backends in the order they were chosen. Node distribution follows it.
	Backends []BackendAnswer

	HandshakeAttempts int
	HandshakeDelay    time.Duration
	PrivateKeyFile    string

	NotifyBotToken string
	NotifyChatID   string

	CredentialsFile string
	S3Bucket        string
	S3Region        string
	S3Endpoint      string
}

// BackendAnswer describes one backend. Only the fields of its kind are set.
type BackendAnswer struct {
	Name string
	Kind string

	Location   string
	ServerType string

	Region       string
	AMI          string
	InstanceType string
}

// Options route the forms. A nil Output renders on the terminal.
type Options struct {
	Output     io.Writer
	Accessible bool
}

func (o Options) form(groups ...*huh.Group) *huh.Form {
	f := huh.NewForm(groups...).WithAccessible(o.Accessible)
	if o.Output != nil {
		f = f.WithProgramOptions(tea.WithOutput(o.Output))
	}
	return f
}

// Run asks every question group in order. The context cancels the form
// (e.g. on Ctrl+C).
func Run(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{}

	if err := runBackendsGroup(ctx, opts, result); err != nil {
		return nil, fmt.Errorf("backends: %w", err)
	}
	if err := runHandshakeGroup(ctx, opts, result); err != nil {
		return nil, fmt.Errorf("handshake: %w", err)
	}
	if err := runNotifyGroup(ctx, opts, result); err != nil {
		return nil, fmt.Errorf("notifications: %w", err)
	}
	if err := runCredentialsGroup(ctx, opts, result); err != nil {
		return nil, fmt.Errorf("credentials: %w", err)
	}

	return result, nil
}

// Confirm asks a yes/no question that defaults to no.
func Confirm(ctx context.Context, opts Options, title, description string) (bool, error) {
	var ok bool
	err := opts.form(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).RunWithContext(ctx)
	return ok, err
}

// ToConfig converts the answers into a configuration. Defaults the answers
// leave open are applied when the file is loaded.
func (r *Result) ToConfig() *config.Config {
	cfg := &config.Config{
		Handshake: config.HandshakeConfig{
			MaxAttempts:    r.HandshakeAttempts,
			AttemptDelay:   r.HandshakeDelay,
			PrivateKeyFile: r.PrivateKeyFile,
		},
		Notify: config.NotifyConfig{
			TelegramBotToken: r.NotifyBotToken,
			TelegramChatID:   r.NotifyChatID,
		},
		Credentials: config.CredentialsConfig{
			File: r.CredentialsFile,
			S3: config.S3Config{
				Endpoint: r.S3Endpoint,
				Region:   r.S3Region,
				Bucket:   r.S3Bucket,
			},
		},
	}

	for _, b := range r.Backends {
		bc := config.BackendConfig{Name: b.Name, Kind: b.Kind}
		switch b.Kind {
		case config.KindHCloud:
			bc.HCloud = &config.HCloudConfig{
				Location:   b.Location,
				ServerType: b.ServerType,
				Image:      config.DefaultHCloudImage,
			}
		case config.KindEC2:
			bc.EC2 = &config.EC2Config{
				Region:       b.Region,
				AMI:          b.AMI,
				InstanceType: b.InstanceType,
			}
		}
		cfg.Backends = append(cfg.Backends, bc)
	}
	return cfg
}
