package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/imamik/cloudweave/cmd/cloudweave/handlers"
)

// Instance returns the instance command group.
func Instance(flags *globalFlags) *cobra.Command {
	var opts handlers.InstanceOptions

	cmd := &cobra.Command{
		Use:   "instance",
		Short: "List and control instances on one backend",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			opts.ConfigPath = flags.configPath
			opts.Verbose = flags.verbose
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.Backend, "backend", "b", "", "Backend name from the configuration (required)")
	cmd.PersistentFlags().StringVar(&opts.CredentialsFile, "credentials-file", "", "Override credentials.file from the configuration")
	_ = cmd.MarkPersistentFlagRequired("backend")

	cmd.AddCommand(instanceList(&opts))
	deleteCmd := instanceAction(&opts, "delete", "Delete an instance and forget its credentials", handlers.InstanceDelete)
	deleteCmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Do not ask for confirmation")
	cmd.AddCommand(deleteCmd)
	cmd.AddCommand(instanceAction(&opts, "start", "Power an instance on", handlers.InstanceStart))
	cmd.AddCommand(instanceAction(&opts, "stop", "Power an instance off", handlers.InstanceStop))
	cmd.AddCommand(instanceAction(&opts, "restart", "Power an instance off and on again", handlers.InstanceRestart))

	return cmd
}

func instanceList(opts *handlers.InstanceOptions) *cobra.Command {
	var listOpts handlers.InstanceListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List managed instances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			listOpts.InstanceOptions = *opts
			return handlers.InstanceList(cmd.Context(), listOpts)
		},
	}

	cmd.Flags().StringVar(&listOpts.Cluster, "cluster", "", "Only instances of this cluster")
	cmd.Flags().StringVar(&listOpts.Role, "role", "", "Only instances with this role (manager or worker)")

	return cmd
}

type instanceHandler func(ctx context.Context, opts handlers.InstanceOptions, ref string) error

func instanceAction(opts *handlers.InstanceOptions, use, short string, handler instanceHandler) *cobra.Command {
	return &cobra.Command{
		Use:   use + " REF",
		Short: short,
		Long:  short + ". REF is an instance ID or name.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handler(cmd.Context(), *opts, args[0])
		},
	}
}
