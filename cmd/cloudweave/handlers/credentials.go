package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/cloudweave/internal/credentials"
)

// CredentialsOptions are the inputs of the credentials command.
type CredentialsOptions struct {
	ConfigPath string
	File       string
	Name       string
	ExportS3   bool
	ImportS3   bool
}

// Credentials prints the recorded access data. With a name it prints that
// single record and fails when it is unknown. ImportS3 first merges the
// remote snapshot into the local file, e.g. on a machine that never ran
// cluster create.
func Credentials(ctx context.Context, opts CredentialsOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	path := opts.File
	if path == "" {
		path = cfg.Credentials.File
	}
	store, err := loadCredentials(path)
	if err != nil {
		return err
	}

	if opts.ImportS3 {
		before := store.Len()
		if err := importCredentials(ctx, cfg.Credentials, store); err != nil {
			return fmt.Errorf("credential import failed: %w", err)
		}
		if err := saveCredentials(store, path); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(stdout, "Imported s3://%s/%s into %s (%d new record(s))\n\n",
			cfg.Credentials.S3.Bucket, cfg.Credentials.S3.Key, path, store.Len()-before)
	}

	records := store.GetAll()
	if opts.Name != "" {
		rec, ok := store.Get(opts.Name)
		if !ok {
			return fmt.Errorf("no credentials recorded for %q", opts.Name)
		}
		records = map[string]credentials.Record{opts.Name: rec}
	}

	_, _ = fmt.Fprint(stdout, renderCredentials(records, colorOutput()))

	if opts.ExportS3 {
		if err := exportCredentials(ctx, cfg.Credentials, store); err != nil {
			return fmt.Errorf("credential export failed: %w", err)
		}
		_, _ = fmt.Fprintf(stdout, "\nExported %d record(s) to s3://%s/%s\n", store.Len(), cfg.Credentials.S3.Bucket, cfg.Credentials.S3.Key)
	}
	return nil
}
