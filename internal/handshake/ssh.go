package handshake

import (
	"context"
	"net"
	"strconv"
	"time"

	gossh "golang.org/x/crypto/ssh"

	"github.com/imamik/cloudweave/internal/platform/ssh"
)

// SSHDialer opens sessions over SSH.
type SSHDialer struct {
	Port            int
	DialTimeout     time.Duration
	HostKeyCallback gossh.HostKeyCallback
}

// NewSSHDialer creates a dialer using port for addresses that carry none.
func NewSSHDialer(port int, dialTimeout time.Duration) *SSHDialer {
	return &SSHDialer{Port: port, DialTimeout: dialTimeout}
}

// Dial implements Dialer. Each call makes a single connection attempt; the
// handshake client owns the retry budget.
func (d *SSHDialer) Dial(ctx context.Context, address string, creds Credentials) (Session, error) {
	host, port := splitAddress(address, d.Port)
	client, err := ssh.NewClient(&ssh.Config{
		Host:            host,
		Port:            port,
		User:            creds.Username,
		Password:        creds.Password,
		PrivateKey:      creds.PrivateKey,
		DialTimeout:     d.DialTimeout,
		HostKeyCallback: d.HostKeyCallback,
	})
	if err != nil {
		return nil, err
	}
	conn, err := client.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func splitAddress(address string, defaultPort int) (string, int) {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return address, defaultPort
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, defaultPort
	}
	return host, port
}
