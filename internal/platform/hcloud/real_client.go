package hcloud

import (
	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/cloudweave/internal/config"
	"github.com/imamik/cloudweave/internal/util/retry"
)

// RealClient wraps the Hetzner Cloud API client.
type RealClient struct {
	client   *hcloud.Client
	timeouts *config.Timeouts
	clock    retry.Clock
}

// ClientOption configures a RealClient.
type ClientOption func(*RealClient)

// WithTimeouts sets custom timeouts for the client.
func WithTimeouts(t *config.Timeouts) ClientOption {
	return func(c *RealClient) {
		c.timeouts = t
	}
}

// WithHCloudClient sets a custom hcloud client (useful for testing).
func WithHCloudClient(hc *hcloud.Client) ClientOption {
	return func(c *RealClient) {
		c.client = hc
	}
}

// WithClock replaces the clock used between retries.
func WithClock(clock retry.Clock) ClientOption {
	return func(c *RealClient) {
		c.clock = clock
	}
}

// NewRealClient creates a new RealClient with optional configuration.
func NewRealClient(token string, opts ...ClientOption) *RealClient {
	c := &RealClient{
		client:   hcloud.NewClient(hcloud.WithToken(token), hcloud.WithApplication("cloudweave", "")),
		timeouts: config.LoadTimeouts(),
		clock:    retry.RealClock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HCloudClient returns the underlying hcloud.Client for advanced operations.
func (c *RealClient) HCloudClient() *hcloud.Client {
	return c.client
}

func (c *RealClient) retryOptions() []retry.Option {
	return []retry.Option{
		retry.WithMaxRetries(c.timeouts.RetryMaxAttempts),
		retry.WithInitialDelay(c.timeouts.RetryInitialDelay),
		retry.WithClock(c.clock),
	}
}
