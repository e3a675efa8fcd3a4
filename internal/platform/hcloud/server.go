package hcloud

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/cloudweave/internal/util/retry"
)

// errNoIPv4 is returned while a server has no public IPv4 yet.
var errNoIPv4 = errors.New("server has no public IPv4")

// CreateServer creates a server, waits for the create action and any
// follow-up actions, and returns the server together with the root password
// issued by the API (empty when SSH keys were attached).
func (c *RealClient) CreateServer(ctx context.Context, opts hcloud.ServerCreateOpts) (*hcloud.Server, string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.ServerCreate)
	defer cancel()

	var result hcloud.ServerCreateResult
	err := retry.WithExponentialBackoff(ctx, func() error {
		res, _, err := c.client.Server.Create(ctx, opts)
		if err != nil {
			if isInvalidParameter(err) {
				return retry.Fatal(err)
			}
			return err
		}
		result = res
		return nil
	}, c.retryOptions()...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create server %s: %w", opts.Name, err)
	}

	actions := append([]*hcloud.Action{result.Action}, result.NextActions...)
	if err := waitForActions(ctx, c.client, actions...); err != nil {
		return result.Server, result.RootPassword, fmt.Errorf("failed to wait for server %s creation: %w", opts.Name, err)
	}

	return result.Server, result.RootPassword, nil
}

// WaitForIPv4 returns the public IPv4 of the server, polling until one is
// assigned or the ServerIP timeout expires.
func (c *RealClient) WaitForIPv4(ctx context.Context, server *hcloud.Server) (*hcloud.Server, error) {
	if hasIPv4(server) {
		return server, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeouts.ServerIP)
	defer cancel()

	current := server
	err := retry.WithExponentialBackoff(ctx, func() error {
		s, _, err := c.client.Server.GetByID(ctx, server.ID)
		if err != nil {
			return err
		}
		if s == nil {
			return retry.Fatal(fmt.Errorf("server %d disappeared", server.ID))
		}
		current = s
		if !hasIPv4(s) {
			return errNoIPv4
		}
		return nil
	}, c.retryOptions()...)
	if err != nil {
		return current, fmt.Errorf("failed to resolve IPv4 of server %s: %w", server.Name, err)
	}
	return current, nil
}

func hasIPv4(server *hcloud.Server) bool {
	return server != nil && server.PublicNet.IPv4.IP != nil && !server.PublicNet.IPv4.IP.IsUnspecified()
}

// GetServer returns the server with the given id or name, or nil.
func (c *RealClient) GetServer(ctx context.Context, idOrName string) (*hcloud.Server, error) {
	server, _, err := c.client.Server.Get(ctx, idOrName)
	if err != nil {
		return nil, fmt.Errorf("failed to get server: %w", err)
	}
	return server, nil
}

// DeleteServer deletes the server with the given id or name.
func (c *RealClient) DeleteServer(ctx context.Context, idOrName string) error {
	return (&DeleteOperation[*hcloud.Server]{
		Name:         idOrName,
		ResourceType: "server",
		Get:          c.client.Server.Get,
		Delete: func(ctx context.Context, server *hcloud.Server) ([]*hcloud.Action, *hcloud.Response, error) {
			res, resp, err := c.client.Server.DeleteWithResult(ctx, server)
			if err != nil {
				return nil, resp, err
			}
			return []*hcloud.Action{res.Action}, resp, nil
		},
	}).Execute(ctx, c)
}

// PoweronServer starts the server.
func (c *RealClient) PoweronServer(ctx context.Context, server *hcloud.Server) error {
	return c.powerAction(ctx, "poweron", server, c.client.Server.Poweron)
}

// PoweroffServer shuts down the server.
func (c *RealClient) PoweroffServer(ctx context.Context, server *hcloud.Server) error {
	return c.powerAction(ctx, "poweroff", server, c.client.Server.Poweroff)
}

func (c *RealClient) powerAction(
	ctx context.Context,
	name string,
	server *hcloud.Server,
	fn func(context.Context, *hcloud.Server) (*hcloud.Action, *hcloud.Response, error),
) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.PowerAction)
	defer cancel()

	var action *hcloud.Action
	err := retry.WithExponentialBackoff(ctx, func() error {
		a, _, err := fn(ctx, server)
		if err != nil {
			if isResourceLocked(err) {
				return err
			}
			return retry.Fatal(err)
		}
		action = a
		return nil
	}, c.retryOptions()...)
	if err != nil {
		return fmt.Errorf("failed to %s server %s: %w", name, strconv.FormatInt(server.ID, 10), err)
	}

	if err := waitForActions(ctx, c.client, action); err != nil {
		return fmt.Errorf("failed to wait for %s: %w", name, err)
	}
	return nil
}

// GetServersBySelector returns all servers matching the label selector.
func (c *RealClient) GetServersBySelector(ctx context.Context, selector string) ([]*hcloud.Server, error) {
	servers, err := c.client.Server.AllWithOpts(ctx, hcloud.ServerListOpts{
		ListOpts: hcloud.ListOpts{LabelSelector: selector},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}
	return servers, nil
}
