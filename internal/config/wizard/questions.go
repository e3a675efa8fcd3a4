package wizard

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/imamik/cloudweave/internal/config"
	"github.com/imamik/cloudweave/internal/handshake"
	"github.com/imamik/cloudweave/internal/util/naming"
)

var (
	amiPattern    = regexp.MustCompile(`^ami-[0-9a-f]{8,17}$`)
	chatIDPattern = regexp.MustCompile(`^-?[0-9]+$`)
)

// kindOptions lists the backend kinds in the order they are offered.
var kindOptions = []huh.Option[string]{
	huh.NewOption("Hetzner Cloud (hcloud)", config.KindHCloud),
	huh.NewOption("AWS EC2 (ec2)", config.KindEC2),
	huh.NewOption("In-memory, for dry runs (memory)", config.KindMemory),
}

// defaultNames are suggested backend names per kind.
var defaultNames = map[string]string{
	config.KindHCloud: "hetzner",
	config.KindEC2:    "aws",
	config.KindMemory: "local",
}

var hcloudLocations = []huh.Option[string]{
	huh.NewOption("fsn1 - Falkenstein, Germany", "fsn1"),
	huh.NewOption("nbg1 - Nuremberg, Germany", "nbg1"),
	huh.NewOption("hel1 - Helsinki, Finland", "hel1"),
	huh.NewOption("ash - Ashburn, USA", "ash"),
	huh.NewOption("hil - Hillsboro, USA", "hil"),
	huh.NewOption("sin - Singapore", "sin"),
}

var hcloudServerTypes = []huh.Option[string]{
	huh.NewOption("cx22 - 2 vCPU, 4GB RAM", "cx22"),
	huh.NewOption("cx32 - 4 vCPU, 8GB RAM", "cx32"),
	huh.NewOption("cpx21 - 3 vCPU, 4GB RAM (AMD)", "cpx21"),
	huh.NewOption("cax11 - 2 vCPU, 4GB RAM (ARM)", "cax11"),
}

var ec2InstanceTypes = []huh.Option[string]{
	huh.NewOption("t3.micro - 2 vCPU, 1GB RAM", "t3.micro"),
	huh.NewOption("t3.small - 2 vCPU, 2GB RAM", "t3.small"),
	huh.NewOption("t3.medium - 2 vCPU, 4GB RAM", "t3.medium"),
	huh.NewOption("t4g.small - 2 vCPU, 2GB RAM (ARM)", "t4g.small"),
}

var attemptOptions = []huh.Option[int]{
	huh.NewOption("10 attempts", 10),
	huh.NewOption("20 attempts (default)", handshake.DefaultMaxAttempts),
	huh.NewOption("40 attempts", 40),
	huh.NewOption("60 attempts", 60),
}

var delayOptions = []huh.Option[time.Duration]{
	huh.NewOption("3s (default)", handshake.DefaultAttemptDelay),
	huh.NewOption("5s", 5*time.Second),
	huh.NewOption("10s", 10*time.Second),
}

// runBackendsGroup prompts for the backend kinds, then for each kind's settings.
func runBackendsGroup(ctx context.Context, opts Options, result *Result) error {
	var kinds []string

	err := opts.form(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Backends").
				Description("Where managers and workers may run").
				Options(kindOptions...).
				Value(&kinds).
				Validate(validateKinds),
		).Title("Compute Backends"),
	).RunWithContext(ctx)
	if err != nil {
		return err
	}

	for _, kind := range kinds {
		answer := BackendAnswer{Name: defaultNames[kind], Kind: kind}
		if err := runBackendGroup(ctx, opts, result.Backends, &answer); err != nil {
			return fmt.Errorf("%s: %w", kind, err)
		}
		result.Backends = append(result.Backends, answer)
	}
	return nil
}

func runBackendGroup(ctx context.Context, opts Options, taken []BackendAnswer, answer *BackendAnswer) error {
	fields := []huh.Field{
		huh.NewInput().
			Title("Backend name").
			Description("Referenced by requests; lowercase letters, digits and dashes").
			Value(&answer.Name).
			Validate(validateBackendName(taken)),
	}

	switch answer.Kind {
	case config.KindHCloud:
		answer.Location = config.DefaultHCloudLocation
		answer.ServerType = config.DefaultHCloudServerType
		fields = append(fields,
			huh.NewSelect[string]().
				Title("Location").
				Options(hcloudLocations...).
				Value(&answer.Location),
			huh.NewSelect[string]().
				Title("Server type").
				Description("Default shape when a request sets none").
				Options(hcloudServerTypes...).
				Value(&answer.ServerType),
		)
	case config.KindEC2:
		answer.Region = "eu-central-1"
		answer.InstanceType = config.DefaultEC2InstanceType
		fields = append(fields,
			huh.NewInput().
				Title("Region").
				Value(&answer.Region).
				Validate(validateRequired("region")),
			huh.NewInput().
				Title("AMI").
				Description("Image used when a request sets none").
				Placeholder("ami-0123456789abcdef0").
				Value(&answer.AMI).
				Validate(validateAMI),
			huh.NewSelect[string]().
				Title("Instance type").
				Options(ec2InstanceTypes...).
				Value(&answer.InstanceType),
		)
	}

	return opts.form(huh.NewGroup(fields...).Title(answer.Kind)).RunWithContext(ctx)
}

// runHandshakeGroup prompts for the join secret retrieval budget.
func runHandshakeGroup(ctx context.Context, opts Options, result *Result) error {
	result.HandshakeAttempts = handshake.DefaultMaxAttempts
	result.HandshakeDelay = handshake.DefaultAttemptDelay

	return opts.form(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Attempts").
				Description("How often the manager is polled for the join secret").
				Options(attemptOptions...).
				Value(&result.HandshakeAttempts),
			huh.NewSelect[time.Duration]().
				Title("Delay between attempts").
				Options(delayOptions...).
				Value(&result.HandshakeDelay),
			huh.NewInput().
				Title("SSH private key file (optional)").
				Description("Used for managers created without a password").
				Placeholder("~/.ssh/id_ed25519").
				Value(&result.PrivateKeyFile),
		).Title("Handshake"),
	).RunWithContext(ctx)
}

// runNotifyGroup prompts for the Telegram hook passed to bootstrap scripts.
func runNotifyGroup(ctx context.Context, opts Options, result *Result) error {
	return opts.form(
		huh.NewGroup(
			huh.NewInput().
				Title("Telegram bot token (optional)").
				Description("Leave empty to disable notifications. TELEGRAM_BOT_TOKEN overrides it.").
				EchoMode(huh.EchoModePassword).
				Value(&result.NotifyBotToken),
			huh.NewInput().
				Title("Telegram chat ID").
				Value(&result.NotifyChatID).
				Validate(validateChatID),
		).Title("Notifications"),
	).RunWithContext(ctx)
}

// runCredentialsGroup prompts for where credentials are kept. The S3
// settings are only asked for when a bucket is given.
func runCredentialsGroup(ctx context.Context, opts Options, result *Result) error {
	result.CredentialsFile = config.DefaultCredentialsFile

	err := opts.form(
		huh.NewGroup(
			huh.NewInput().
				Title("Credentials file").
				Value(&result.CredentialsFile).
				Validate(validateRequired("credentials file")),
			huh.NewInput().
				Title("S3 bucket for snapshots (optional)").
				Description("Access keys are read from CLOUDWEAVE_S3_ACCESS_KEY and CLOUDWEAVE_S3_SECRET_KEY").
				Value(&result.S3Bucket),
		).Title("Credentials"),
	).RunWithContext(ctx)
	if err != nil || strings.TrimSpace(result.S3Bucket) == "" {
		return err
	}

	return opts.form(
		huh.NewGroup(
			huh.NewInput().
				Title("S3 region").
				Value(&result.S3Region).
				Validate(validateRequired("region")),
			huh.NewInput().
				Title("S3 endpoint (optional)").
				Description("Leave empty for AWS; set for S3-compatible storage").
				Placeholder("https://fsn1.your-objectstorage.com").
				Value(&result.S3Endpoint),
		).Title("Snapshot Bucket"),
	).RunWithContext(ctx)
}

func validateKinds(kinds []string) error {
	if len(kinds) == 0 {
		return fmt.Errorf("select at least one backend")
	}
	return nil
}

// validateBackendName rejects names that would produce the same instance
// names as a backend chosen earlier.
func validateBackendName(taken []BackendAnswer) func(string) error {
	return func(name string) error {
		if name == "" {
			return fmt.Errorf("backend name is required")
		}
		if naming.Sanitize(name) != name {
			return fmt.Errorf("backend name can only contain lowercase letters, digits and dashes")
		}
		for _, b := range taken {
			if b.Name == name {
				return fmt.Errorf("backend %q is already configured", name)
			}
		}
		return nil
	}
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateAMI(s string) error {
	if !amiPattern.MatchString(s) {
		return fmt.Errorf("AMI must look like ami-0123456789abcdef0")
	}
	return nil
}

func validateChatID(s string) error {
	if s == "" {
		return nil
	}
	if !chatIDPattern.MatchString(s) {
		return fmt.Errorf("chat ID must be numeric")
	}
	return nil
}
