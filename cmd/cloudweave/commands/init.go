package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/cloudweave/cmd/cloudweave/handlers"
)

// Init returns the init command.
func Init(flags *globalFlags) *cobra.Command {
	var opts handlers.InitOptions

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file interactively",
		Long: `Init asks for the backends to register and the handshake, notification
and credential settings, then writes a validated configuration file.

Cloud secrets are never asked for. Hetzner reads HCLOUD_TOKEN and AWS uses
its default credential chain.

Example:
  cloudweave init
  cloudweave init -o prod.yaml --force
  cloudweave init --accessible`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.OutputPath == "" {
				opts.OutputPath = flags.configPath
			}
			return handlers.Init(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.OutputPath, "output", "o", "", "Output file (default: --config or ./cloudweave.yaml)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite an existing file without asking")
	cmd.Flags().BoolVar(&opts.Accessible, "accessible", false, "Plain prompts for screen readers")

	return cmd
}
