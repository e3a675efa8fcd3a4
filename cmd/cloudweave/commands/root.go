// Package commands defines the CLI command structure and flag bindings.
//
// Command execution is delegated to handler functions in the handlers
// package.
package commands

import "github.com/spf13/cobra"

// globalFlags are bound on the root command and shared by every subcommand.
type globalFlags struct {
	configPath string
	verbose    bool
}

// Root returns the root command for the cloudweave CLI.
func Root() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "cloudweave",
		Short:         "Provision clusters across Hetzner Cloud and AWS",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to cloudweave.yaml (default: ./cloudweave.yaml)")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(Cluster(flags))
	cmd.AddCommand(Credentials(flags))
	cmd.AddCommand(Init(flags))
	cmd.AddCommand(Instance(flags))
	cmd.AddCommand(Version())

	return cmd
}
