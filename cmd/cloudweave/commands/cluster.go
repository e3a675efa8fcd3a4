package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/cloudweave/cmd/cloudweave/handlers"
)

// Cluster returns the cluster command group.
func Cluster(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Manage clusters",
	}
	cmd.AddCommand(ClusterCreate(flags))
	return cmd
}

// ClusterCreate returns the cluster create command.
func ClusterCreate(flags *globalFlags) *cobra.Command {
	var opts handlers.ClusterCreateOptions

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a cluster from a request file",
		Long: `Create provisions the cluster described by a request file.

The manager is created first. Once it publishes its join secret, every
worker group is created in parallel on its backend. Credentials of every
created instance are written to the credentials file.

A run where some worker groups failed ends PARTIAL: the per-backend table
is printed and the command exits 0. A run that could not create the
manager or read its join secret ends FAILED and exits 1.

Example:
  cloudweave cluster create -f demo.yaml
  cloudweave cluster create -f demo.yaml --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.ConfigPath = flags.configPath
			opts.Verbose = flags.verbose
			return handlers.ClusterCreate(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.RequestFile, "file", "f", "", "Path to the cluster request (YAML or JSON, required)")
	cmd.Flags().StringVar(&opts.CredentialsFile, "credentials-file", "", "Override credentials.file from the configuration")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Run against in-memory backends instead of real providers")
	cmd.Flags().StringVar(&opts.MetricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this file after the run")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
