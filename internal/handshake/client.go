package handshake

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/imamik/cloudweave/internal/provisioning"
	"github.com/imamik/cloudweave/internal/util/retry"
)

const (
	// DefaultMaxAttempts and DefaultAttemptDelay give a worst case of about a minute.
	DefaultMaxAttempts  = 20
	DefaultAttemptDelay = 3 * time.Second
)

// State is a step of one handshake attempt sequence.
type State string

const (
	StateConnecting State = "CONNECTING"
	StatePolling    State = "POLLING"
	StateExtracted  State = "EXTRACTED"
	StateRetryWait  State = "RETRY_WAIT"
	StateTimeout    State = "TIMEOUT"
)

// Credentials authenticate the remote session. Password and PrivateKey are
// alternatives; at least one is required.
type Credentials struct {
	Username   string
	Password   string
	PrivateKey []byte
}

// Session reads files on a remote host.
type Session interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	Close() error
}

// Dialer opens sessions. address is host or host:port.
type Dialer interface {
	Dial(ctx context.Context, address string, creds Credentials) (Session, error)
}

// AttemptFunc is called after every attempt with its 1-based number and
// outcome (nil on success).
type AttemptFunc func(attempt int, err error)

// Client fetches join secrets.
type Client struct {
	dialer       Dialer
	artifactPath string
	clock        retry.Clock
	observer     provisioning.Observer
	onAttempt    AttemptFunc
}

// Option configures a Client.
type Option func(*Client)

// WithArtifactPath overrides DefaultArtifactPath.
func WithArtifactPath(path string) Option {
	return func(c *Client) { c.artifactPath = path }
}

// WithClock sets the clock used between attempts.
func WithClock(clock retry.Clock) Option {
	return func(c *Client) { c.clock = clock }
}

// WithObserver sets the observer that receives state changes.
func WithObserver(observer provisioning.Observer) Option {
	return func(c *Client) { c.observer = observer }
}

// WithAttemptHook registers fn to be called after each attempt.
func WithAttemptHook(fn AttemptFunc) Option {
	return func(c *Client) { c.onAttempt = fn }
}

// NewClient creates a handshake client.
func NewClient(dialer Dialer, opts ...Option) *Client {
	c := &Client{
		dialer:       dialer,
		artifactPath: DefaultArtifactPath,
		clock:        retry.RealClock{},
		observer:     provisioning.NopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchJoinSecret polls address until the join artifact can be read and
// parsed, making at most maxAttempts attempts and sleeping attemptDelay
// between them. maxAttempts of zero selects DefaultMaxAttempts.
//
// Every error is a *TimeoutError.
func (c *Client) FetchJoinSecret(ctx context.Context, address string, creds Credentials, maxAttempts int, attemptDelay time.Duration) (JoinSecret, error) {
	if maxAttempts == 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if err := c.validate(address, creds, maxAttempts, attemptDelay); err != nil {
		return JoinSecret{}, &TimeoutError{Address: address, Attempts: 0, Last: err}
	}

	observer := c.observer.WithFields(map[string]string{"address": address})
	policy := retry.Policy{MaxAttempts: maxAttempts, Delay: attemptDelay, Clock: c.clock}

	var secret JoinSecret
	attempts, err := policy.Do(ctx, func(ctx context.Context, attempt int) error {
		s, err := c.attempt(ctx, observer, address, creds, attempt)
		if c.onAttempt != nil {
			c.onAttempt(attempt, err)
		}
		if err != nil {
			if attempt < maxAttempts {
				c.state(observer, StateRetryWait, attempt, err)
			}
			return err
		}
		secret = s
		return nil
	})
	if err != nil {
		var exhausted *retry.ExhaustedError
		last := err
		if errors.As(err, &exhausted) {
			last = exhausted.Last
		}
		c.state(observer, StateTimeout, attempts, last)
		return JoinSecret{}, &TimeoutError{Address: address, Attempts: attempts, Last: last}
	}

	c.state(observer, StateExtracted, attempts, nil)
	return secret, nil
}

func (c *Client) attempt(ctx context.Context, observer provisioning.Observer, address string, creds Credentials, attempt int) (JoinSecret, error) {
	c.state(observer, StateConnecting, attempt, nil)
	session, err := c.dialer.Dial(ctx, address, creds)
	if err != nil {
		return JoinSecret{}, fmt.Errorf("connect: %w", err)
	}
	defer func() { _ = session.Close() }()

	c.state(observer, StatePolling, attempt, nil)
	data, err := session.ReadFile(ctx, c.artifactPath)
	if err != nil {
		return JoinSecret{}, fmt.Errorf("read artifact: %w", err)
	}
	return ParseArtifact(data)
}

func (c *Client) validate(address string, creds Credentials, maxAttempts int, attemptDelay time.Duration) error {
	if c.dialer == nil {
		return fmt.Errorf("no dialer configured")
	}
	if address == "" {
		return fmt.Errorf("manager address is empty")
	}
	if creds.Username == "" {
		return fmt.Errorf("username is empty")
	}
	if creds.Password == "" && len(creds.PrivateKey) == 0 {
		return fmt.Errorf("credentials need a password or a private key")
	}
	if maxAttempts < 0 {
		return fmt.Errorf("max attempts must not be negative, got %d", maxAttempts)
	}
	if attemptDelay < 0 {
		return fmt.Errorf("attempt delay must not be negative, got %v", attemptDelay)
	}
	return nil
}

func (c *Client) state(observer provisioning.Observer, state State, attempt int, err error) {
	fields := map[string]string{
		"state":   string(state),
		"attempt": strconv.Itoa(attempt),
	}
	msg := string(state)
	if err != nil {
		fields["error"] = err.Error()
		msg = fmt.Sprintf("%s: %v", state, err)
	}
	observer.Event(provisioning.Event{
		Type:    provisioning.EventHandshakeAttempt,
		Phase:   "handshake",
		Message: msg,
		Fields:  fields,
	})
}
