package wizard

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/imamik/cloudweave/internal/config"
)

// now is replaced in tests.
var now = time.Now

// WriteConfig validates cfg the way the CLI loads it and writes it to path
// with a descriptive header. The file may carry a bot token, so it is
// written with 0600.
func WriteConfig(cfg *config.Config, path string) error {
	body, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if _, err := config.Parse(body); err != nil {
		return fmt.Errorf("generated configuration is invalid: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(generateHeader(path))
	sb.WriteString("\n")
	sb.Write(body)

	if err := os.WriteFile(path, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func generateHeader(path string) string {
	var sb strings.Builder
	sb.WriteString("# cloudweave configuration\n")
	fmt.Fprintf(&sb, "# Generated by cloudweave init on %s\n", now().UTC().Format(time.RFC3339))
	sb.WriteString("#\n")
	sb.WriteString("# Cloud secrets are read from the environment:\n")
	sb.WriteString("#   HCLOUD_TOKEN for hcloud backends\n")
	sb.WriteString("#   the default AWS credential chain for ec2 backends\n")
	sb.WriteString("#   CLOUDWEAVE_S3_ACCESS_KEY / CLOUDWEAVE_S3_SECRET_KEY for snapshots\n")
	sb.WriteString("#\n")
	fmt.Fprintf(&sb, "# Usage: cloudweave --config %s cluster create -f request.yaml\n", path)
	return sb.String()
}
