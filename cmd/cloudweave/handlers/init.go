package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/imamik/cloudweave/internal/config"
	"github.com/imamik/cloudweave/internal/config/wizard"
)

// Factory function variables for init - can be replaced in tests.
var (
	fileExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}
	runWizard   = wizard.Run
	writeConfig = wizard.WriteConfig
)

// InitOptions are the inputs of the init command.
type InitOptions struct {
	OutputPath string
	Force      bool
	Accessible bool
}

// Init runs the configuration wizard and writes the result. An existing file
// is only replaced after confirmation or with Force.
func Init(ctx context.Context, opts InitOptions) error {
	path := opts.OutputPath
	if path == "" {
		path = DefaultConfigPath
	}
	wopts := wizard.Options{Output: os.Stderr, Accessible: opts.Accessible}

	if fileExists(path) && !opts.Force {
		ok, err := confirm(ctx, wopts, fmt.Sprintf("%s already exists. Overwrite it?", path), "")
		if err != nil {
			return fmt.Errorf("confirmation canceled: %w", err)
		}
		if !ok {
			_, _ = fmt.Fprintf(stdout, "Kept %s\n", path)
			return nil
		}
	}

	result, err := runWizard(ctx, wopts)
	if err != nil {
		return fmt.Errorf("wizard canceled: %w", err)
	}

	cfg := result.ToConfig()
	if err := writeConfig(cfg, path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	_, _ = fmt.Fprint(stdout, renderInitSummary(path, cfg, colorOutput()))
	return nil
}

func renderInitSummary(path string, cfg *config.Config, color bool) string {
	p := painter{color: color}
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n\n", p.paint(titleStyle, "Configuration saved:"), path)
	b.WriteString(p.paint(sectionStyle, "Backends") + "\n")
	for _, bc := range cfg.Backends {
		detail := ""
		switch {
		case bc.HCloud != nil:
			detail = bc.HCloud.Location + " " + bc.HCloud.ServerType
		case bc.EC2 != nil:
			detail = bc.EC2.Region + " " + bc.EC2.InstanceType
		}
		fmt.Fprintf(&b, "  %-10s %-7s %s\n", bc.Name, bc.Kind, p.paint(dimStyle, detail))
	}

	b.WriteString("\n" + p.paint(sectionStyle, "Next steps") + "\n")
	for _, bc := range cfg.Backends {
		if bc.Kind == config.KindHCloud {
			b.WriteString("  export HCLOUD_TOKEN=<your-token>\n")
			break
		}
	}
	fmt.Fprintf(&b, "  cloudweave --config %s cluster create -f request.yaml --dry-run\n", path)
	return b.String()
}
