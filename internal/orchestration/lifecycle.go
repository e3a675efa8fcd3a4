package orchestration

import (
	"context"
	"errors"
	"fmt"

	"github.com/imamik/cloudweave/internal/backend"
	"github.com/imamik/cloudweave/internal/credentials"
	"github.com/imamik/cloudweave/internal/provisioning"
)

// ListInstances lists the instances of one backend.
func (o *Orchestrator) ListInstances(ctx context.Context, backendName string, filter backend.Filter) ([]backend.InstanceInfo, error) {
	b, err := o.backends.Get(backendName)
	if err != nil {
		return nil, err
	}
	instances, err := b.ListInstances(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list instances on %s: %w", backendName, err)
	}
	return instances, nil
}

// DeleteInstance deletes an instance by ID or name and removes its
// credential record. Deleting an instance that no longer exists is not an
// error.
func (o *Orchestrator) DeleteInstance(ctx context.Context, backendName, ref string) error {
	b, err := o.backends.Get(backendName)
	if err != nil {
		return err
	}

	provisioning.LogResourceDeleting(o.cfg.Observer, "lifecycle", "instance", ref)
	name := o.resolveName(ctx, b, backendName, ref)
	if err := b.DeleteInstance(ctx, ref); err != nil && !errors.Is(err, backend.ErrNotFound) {
		return fmt.Errorf("failed to delete instance %s on %s: %w", ref, backendName, err)
	}

	o.store.Delete(name)
	if name != ref {
		o.store.Delete(ref)
	}
	provisioning.LogResourceDeleted(o.cfg.Observer, "lifecycle", "instance", ref)
	return nil
}

// StartInstance powers an instance on.
func (o *Orchestrator) StartInstance(ctx context.Context, backendName, ref string) error {
	b, err := o.backends.Get(backendName)
	if err != nil {
		return err
	}
	if err := b.StartInstance(ctx, ref); err != nil {
		return fmt.Errorf("failed to start instance %s on %s: %w", ref, backendName, err)
	}
	o.cfg.Observer.Printf("[lifecycle] Started %s on %s", ref, backendName)
	return nil
}

// StopInstance powers an instance off.
func (o *Orchestrator) StopInstance(ctx context.Context, backendName, ref string) error {
	b, err := o.backends.Get(backendName)
	if err != nil {
		return err
	}
	if err := b.StopInstance(ctx, ref); err != nil {
		return fmt.Errorf("failed to stop instance %s on %s: %w", ref, backendName, err)
	}
	o.cfg.Observer.Printf("[lifecycle] Stopped %s on %s", ref, backendName)
	return nil
}

// RestartInstance stops an instance and starts it again. A stop failure
// leaves the instance untouched.
func (o *Orchestrator) RestartInstance(ctx context.Context, backendName, ref string) error {
	if err := o.StopInstance(ctx, backendName, ref); err != nil {
		return err
	}
	return o.StartInstance(ctx, backendName, ref)
}

// Credentials returns the stored record for an instance name.
func (o *Orchestrator) Credentials(name string) (credentials.Record, bool) {
	return o.store.Get(name)
}

// AllCredentials returns a copy of every stored record.
func (o *Orchestrator) AllCredentials() map[string]credentials.Record {
	return o.store.GetAll()
}

// resolveName maps an instance ID to its name so the credential record can
// be removed. Records are keyed by name. The store is consulted before the
// backend since the instance may already be gone. ref is returned when
// nothing matches.
func (o *Orchestrator) resolveName(ctx context.Context, b backend.Backend, backendName, ref string) string {
	if _, ok := o.store.Get(ref); ok {
		return ref
	}
	for name, rec := range o.store.GetAll() {
		if rec.InstanceID == ref && rec.Backend == backendName {
			return name
		}
	}
	instances, err := b.ListInstances(ctx, backend.Filter{})
	if err != nil {
		return ref
	}
	for _, inst := range instances {
		if inst.ID == ref {
			return inst.Name
		}
	}
	return ref
}
