package hcloud

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/cloudweave/internal/util/retry"
)

// DeleteOperation encapsulates deletion logic for any hcloud resource.
// It provides consistent retry, timeout, and error handling across resource types.
//
// Usage example:
//
//	return (&DeleteOperation[*hcloud.SSHKey]{
//	    Name:         name,
//	    ResourceType: "ssh key",
//	    Get:          c.client.SSHKey.Get,
//	    Delete:       c.client.SSHKey.Delete,
//	}).Execute(ctx, c)
type DeleteOperation[T any] struct {
	Name         string
	ResourceType string

	// Get retrieves the resource by id or name
	Get func(ctx context.Context, idOrName string) (T, *hcloud.Response, error)

	// Delete removes the resource and returns the actions to await, if any
	Delete func(ctx context.Context, resource T) ([]*hcloud.Action, *hcloud.Response, error)
}

// Execute performs the delete operation with retry logic and timeout handling.
// The operation is idempotent - it succeeds if the resource doesn't exist.
// Locked resources are retried with exponential backoff.
func (op *DeleteOperation[T]) Execute(ctx context.Context, client *RealClient) error {
	ctx, cancel := context.WithTimeout(ctx, client.timeouts.Delete)
	defer cancel()

	return retry.WithExponentialBackoff(ctx, func() error {
		resource, _, err := op.Get(ctx, op.Name)
		if err != nil {
			if isResourceLocked(err) {
				return err
			}
			return retry.Fatal(fmt.Errorf("failed to get %s: %w", op.ResourceType, err))
		}

		// Check if resource is nil (already deleted)
		if reflect.ValueOf(resource).IsNil() {
			return nil
		}

		actions, _, err := op.Delete(ctx, resource)
		if err != nil {
			if isNotFound(err) {
				return nil
			}
			if isResourceLocked(err) {
				return err // Retryable
			}
			return retry.Fatal(err)
		}
		return waitForActions(ctx, client.client, actions...)
	}, client.retryOptions()...)
}

// EnsureOperation encapsulates get-or-create logic for any hcloud resource.
//
// Usage example:
//
//	key, err := (&EnsureOperation[*hcloud.SSHKey, hcloud.SSHKeyCreateOpts]{
//	    Name:         name,
//	    ResourceType: "ssh key",
//	    Get:          c.client.SSHKey.Get,
//	    Create:       c.client.SSHKey.Create,
//	    CreateOpts:   func() hcloud.SSHKeyCreateOpts { return hcloud.SSHKeyCreateOpts{Name: name, PublicKey: pub} },
//	}).Execute(ctx)
type EnsureOperation[T any, CreateOpts any] struct {
	Name         string
	ResourceType string

	// Get retrieves the resource by name
	Get func(ctx context.Context, name string) (T, *hcloud.Response, error)

	// Create creates the resource with the given options
	Create func(ctx context.Context, opts CreateOpts) (T, *hcloud.Response, error)

	// Validate checks if an existing resource matches the desired state (optional)
	Validate func(resource T) error

	// CreateOpts maps input parameters to create options
	CreateOpts func() CreateOpts
}

// Execute returns the existing resource, validated if a validator is set, or
// creates it.
func (op *EnsureOperation[T, CreateOpts]) Execute(ctx context.Context) (T, error) {
	var zero T

	resource, _, err := op.Get(ctx, op.Name)
	if err != nil {
		return zero, fmt.Errorf("failed to get %s: %w", op.ResourceType, err)
	}

	if !reflect.ValueOf(resource).IsNil() {
		if op.Validate != nil {
			if err := op.Validate(resource); err != nil {
				return zero, err
			}
		}
		return resource, nil
	}

	created, _, err := op.Create(ctx, op.CreateOpts())
	if err != nil {
		return zero, fmt.Errorf("failed to create %s: %w", op.ResourceType, err)
	}
	return created, nil
}

// waitForActions waits for one or more actions to complete.
func waitForActions(ctx context.Context, client *hcloud.Client, actions ...*hcloud.Action) error {
	pending := make([]*hcloud.Action, 0, len(actions))
	for _, a := range actions {
		if a != nil {
			pending = append(pending, a)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	return client.Action.WaitFor(ctx, pending...)
}
