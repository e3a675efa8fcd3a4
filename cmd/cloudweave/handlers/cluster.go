package handlers

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/imamik/cloudweave/internal/orchestration"
)

// writeMetricsTextfile writes the orchestration metrics in the node
// exporter textfile format.
var writeMetricsTextfile = func(path string) error {
	return prometheus.WriteToTextfile(path, orchestration.Registry)
}

// ClusterCreateOptions are the inputs of the cluster create command.
type ClusterCreateOptions struct {
	RequestFile     string
	ConfigPath      string
	CredentialsFile string
	MetricsTextfile string
	DryRun          bool
	Verbose         bool
}

// ClusterCreate provisions the cluster described by the request file.
//
// A PARTIAL result prints the per-backend table and returns nil; only a
// FAILED run returns an error. Credentials of every created instance are
// persisted before returning, whatever the outcome.
func ClusterCreate(ctx context.Context, opts ClusterCreateOptions) error {
	req, err := loadRequestFile(opts.RequestFile)
	if err != nil {
		return err
	}

	env, err := newEnvironment(ctx, envOptions{
		configPath:      opts.ConfigPath,
		credentialsFile: opts.CredentialsFile,
		dryRun:          opts.DryRun,
		verbose:         opts.Verbose,
	})
	if err != nil {
		return err
	}
	defer env.close()

	if opts.DryRun {
		env.logger.Info("dry run: using in-memory backends", "backends", env.registry.Names())
	}

	result, createErr := env.orchestrator.CreateCluster(ctx, req)
	if result != nil {
		_, _ = fmt.Fprint(stdout, renderResult(result, colorOutput()))
	}

	if !opts.DryRun && env.store.Len() > 0 {
		if err := saveCredentials(env.store, env.storePath); err != nil {
			env.logger.Error(err, "failed to persist credentials", "file", env.storePath)
		} else {
			env.logger.V(1).Info("credentials persisted", "file", env.storePath, "records", env.store.Len())
		}
		if env.cfg.Credentials.S3.Enabled() {
			if err := exportCredentials(ctx, env.cfg.Credentials, env.store); err != nil {
				env.logger.Error(err, "credential export failed", "bucket", env.cfg.Credentials.S3.Bucket)
			}
		}
	}

	if opts.MetricsTextfile != "" {
		if err := writeMetricsTextfile(opts.MetricsTextfile); err != nil {
			env.logger.Error(err, "failed to write metrics", "file", opts.MetricsTextfile)
		}
	}

	if createErr != nil {
		return fmt.Errorf("cluster creation failed: %w", createErr)
	}
	if result.Status == orchestration.StatePartial {
		env.logger.Info("cluster created with failed worker groups", "cluster", result.Cluster, "failed", len(result.Errors()))
	}
	return nil
}
