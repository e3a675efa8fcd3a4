package ssh

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
)

const (
	defaultPort        = 22
	defaultDialTimeout = 10 * time.Second
)

// Config holds SSH client configuration.
type Config struct {
	Host string
	Port int
	User string

	// PrivateKey and Password are alternatives. When both are set the key is
	// offered first.
	PrivateKey []byte
	Password   string

	// DialTimeout bounds the TCP connect and the SSH handshake.
	// If zero, defaultDialTimeout is used.
	DialTimeout time.Duration

	// HostKeyCallback handles host key verification.
	// If nil, ssh.InsecureIgnoreHostKey() is used; instances are brand new and
	// their host keys cannot be known in advance.
	HostKeyCallback ssh.HostKeyCallback
}

// Client opens SSH connections to one host.
type Client struct {
	config *Config
	auth   []ssh.AuthMethod
}

// NewClient validates cfg and prepares authentication.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if cfg.Host == "" {
		return nil, fmt.Errorf("config host cannot be empty")
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("config user cannot be empty")
	}
	if len(cfg.PrivateKey) == 0 && cfg.Password == "" {
		return nil, fmt.Errorf("config requires a private key or a password")
	}

	// Copy config to avoid mutating caller's struct
	configCopy := *cfg

	if configCopy.Port == 0 {
		configCopy.Port = defaultPort
	}
	if configCopy.DialTimeout == 0 {
		configCopy.DialTimeout = defaultDialTimeout
	}
	if configCopy.HostKeyCallback == nil {
		configCopy.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // hosts are freshly created
	}

	var auth []ssh.AuthMethod
	if len(configCopy.PrivateKey) > 0 {
		signer, err := ssh.ParsePrivateKey(configCopy.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if configCopy.Password != "" {
		auth = append(auth, ssh.Password(configCopy.Password))
	}

	return &Client{
		config: &configCopy,
		auth:   auth,
	}, nil
}

// Address returns host:port.
func (c *Client) Address() string {
	return net.JoinHostPort(c.config.Host, strconv.Itoa(c.config.Port))
}

// Connect makes a single connection attempt. Callers own the retry budget.
func (c *Client) Connect(ctx context.Context) (*Conn, error) {
	client, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	return &Conn{host: c.config.Host, client: client}, nil
}

func (c *Client) dial(ctx context.Context) (*ssh.Client, error) {
	addr := c.Address()
	dialer := net.Dialer{Timeout: c.config.DialTimeout}
	netConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}

	_ = netConn.SetDeadline(time.Now().Add(c.config.DialTimeout))
	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, addr, &ssh.ClientConfig{
		User:            c.config.User,
		Auth:            c.auth,
		HostKeyCallback: c.config.HostKeyCallback,
		Timeout:         c.config.DialTimeout,
	})
	if err != nil {
		_ = netConn.Close()
		return nil, fmt.Errorf("SSH handshake with %s failed: %w", addr, err)
	}
	_ = netConn.SetDeadline(time.Time{})

	return ssh.NewClient(sshConn, chans, reqs), nil
}

// Conn is an established connection. It is not safe for concurrent use.
type Conn struct {
	host   string
	client *ssh.Client
}

// ReadFile returns the contents of path on the remote host. It only runs cat.
func (c *Conn) ReadFile(ctx context.Context, path string) ([]byte, error) {
	session, err := c.client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH session on %s: %w", c.host, err)
	}
	defer func() { _ = session.Close() }()

	stop := c.closeOnCancel(ctx)
	defer stop()

	var stderr bytes.Buffer
	session.Stderr = &stderr
	out, err := session.Output("cat -- " + quote(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s on %s: %w: %s", path, c.host, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.client.Close()
}

func (c *Conn) closeOnCancel(ctx context.Context) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = c.client.Close()
		case <-done:
		}
	}()
	return func() { close(done) }
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
