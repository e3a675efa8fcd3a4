package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/imamik/cloudweave/internal/backend"
	"github.com/imamik/cloudweave/internal/config/wizard"
)

// InstanceOptions select the backend and configuration of an instance command.
type InstanceOptions struct {
	ConfigPath      string
	CredentialsFile string
	Backend         string
	Verbose         bool
	// Yes skips the delete confirmation.
	Yes bool
}

// InstanceListOptions narrow the listed instances.
type InstanceListOptions struct {
	InstanceOptions
	Cluster string
	Role    string
}

// InstanceList prints the managed instances of one backend.
func InstanceList(ctx context.Context, opts InstanceListOptions) error {
	filter := backend.Filter{Cluster: opts.Cluster, Role: backend.Role(opts.Role)}
	if filter.Role != "" && !filter.Role.Valid() {
		return fmt.Errorf("invalid role %q", opts.Role)
	}

	env, err := newEnvironment(ctx, envOptions{
		configPath:      opts.ConfigPath,
		credentialsFile: opts.CredentialsFile,
		verbose:         opts.Verbose,
	})
	if err != nil {
		return err
	}
	defer env.close()

	instances, err := env.orchestrator.ListInstances(ctx, opts.Backend, filter)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprint(stdout, renderInstances(opts.Backend, instances, colorOutput()))
	return nil
}

// InstanceDelete deletes ref and drops its credentials. On a terminal it
// asks first unless opts.Yes is set.
func InstanceDelete(ctx context.Context, opts InstanceOptions, ref string) error {
	if ref != "" && !opts.Yes && interactive() {
		ok, err := confirm(ctx, wizard.Options{Output: os.Stderr},
			fmt.Sprintf("Delete %s on %s?", ref, opts.Backend),
			"The instance is destroyed and its credentials are forgotten.")
		if err != nil {
			return fmt.Errorf("confirmation canceled: %w", err)
		}
		if !ok {
			_, _ = fmt.Fprintf(stdout, "Kept %s on %s\n", ref, opts.Backend)
			return nil
		}
	}
	return instanceAction(ctx, opts, ref, "Deleted", true, func(env *environment) error {
		return env.orchestrator.DeleteInstance(ctx, opts.Backend, ref)
	})
}

// InstanceStart powers ref on.
func InstanceStart(ctx context.Context, opts InstanceOptions, ref string) error {
	return instanceAction(ctx, opts, ref, "Started", false, func(env *environment) error {
		return env.orchestrator.StartInstance(ctx, opts.Backend, ref)
	})
}

// InstanceStop powers ref off.
func InstanceStop(ctx context.Context, opts InstanceOptions, ref string) error {
	return instanceAction(ctx, opts, ref, "Stopped", false, func(env *environment) error {
		return env.orchestrator.StopInstance(ctx, opts.Backend, ref)
	})
}

// InstanceRestart stops ref and starts it again.
func InstanceRestart(ctx context.Context, opts InstanceOptions, ref string) error {
	return instanceAction(ctx, opts, ref, "Restarted", false, func(env *environment) error {
		return env.orchestrator.RestartInstance(ctx, opts.Backend, ref)
	})
}

func instanceAction(ctx context.Context, opts InstanceOptions, ref, verb string, persist bool, action func(*environment) error) error {
	if ref == "" {
		return fmt.Errorf("instance reference is required")
	}

	env, err := newEnvironment(ctx, envOptions{
		configPath:      opts.ConfigPath,
		credentialsFile: opts.CredentialsFile,
		verbose:         opts.Verbose,
	})
	if err != nil {
		return err
	}
	defer env.close()

	if err := action(env); err != nil {
		return fmt.Errorf("%s on %s: %w", ref, opts.Backend, err)
	}

	if persist {
		if err := saveCredentials(env.store, env.storePath); err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintf(stdout, "%s %s on %s\n", verb, ref, opts.Backend)
	return nil
}
