package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/cloudweave/cmd/cloudweave/handlers"
)

// Credentials returns the credentials command.
func Credentials(flags *globalFlags) *cobra.Command {
	var opts handlers.CredentialsOptions

	cmd := &cobra.Command{
		Use:   "credentials [NAME]",
		Short: "Show access data of created instances",
		Long: `Credentials prints the username, password and address recorded for
created instances. With NAME only that instance is shown. --import-s3 first
merges the snapshot from the configured bucket into the local file.

Example:
  cloudweave credentials
  cloudweave credentials demo-manager
  cloudweave credentials --export-s3
  cloudweave credentials --import-s3`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ConfigPath = flags.configPath
			if len(args) == 1 {
				opts.Name = args[0]
			}
			return handlers.Credentials(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "Credentials file (default: credentials.file from the configuration)")
	cmd.Flags().BoolVar(&opts.ExportS3, "export-s3", false, "Upload the credentials snapshot to the configured S3 bucket")
	cmd.Flags().BoolVar(&opts.ImportS3, "import-s3", false, "Merge the snapshot from the configured S3 bucket into the local file")

	return cmd
}
