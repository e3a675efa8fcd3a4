package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/imamik/cloudweave/internal/backend"
	"github.com/imamik/cloudweave/internal/handshake"
)

var (
	// ErrConnectionRefused is returned when no running instance has the address.
	ErrConnectionRefused = errors.New("connection refused")
	// ErrAuthFailed is returned when the password does not match.
	ErrAuthFailed = errors.New("authentication failed")
	// ErrNoSuchFile is returned while the join artifact is not yet written.
	ErrNoSuchFile = errors.New("no such file or directory")
)

// Dialer serves the join artifact of manager instances created by any of its
// backends. Managers publish their own address as the leader address and a
// token derived from their ID.
type Dialer struct {
	mu       sync.Mutex
	backends []*Backend
	dials    int
}

var _ handshake.Dialer = (*Dialer)(nil)

// NewDialer creates a Dialer over backends.
func NewDialer(backends ...*Backend) *Dialer {
	return &Dialer{backends: backends}
}

// Dials returns how many sessions were requested.
func (d *Dialer) Dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

// Dial opens a session to the instance with address.
func (d *Dialer) Dial(ctx context.Context, address string, creds handshake.Credentials) (handshake.Session, error) {
	d.mu.Lock()
	d.dials++
	d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, b := range d.backends {
		b.mu.Lock()
		inst := b.byAddress(address)
		if inst == nil || inst.info.Status != backend.StatusRunning {
			b.mu.Unlock()
			continue
		}
		password := inst.info.Password
		b.mu.Unlock()

		if creds.Password != "" && creds.Password != password {
			return nil, fmt.Errorf("dial %s: %w", address, ErrAuthFailed)
		}
		if creds.Password == "" && len(creds.PrivateKey) == 0 {
			return nil, fmt.Errorf("dial %s: %w", address, ErrAuthFailed)
		}
		return &session{backend: b, address: address}, nil
	}
	return nil, fmt.Errorf("dial %s: %w", address, ErrConnectionRefused)
}

type session struct {
	backend *Backend
	address string
}

// WorkerToken returns the token a manager with id publishes.
func WorkerToken(id string) string {
	return "worker-token-" + id
}

// ManagerToken returns the manager join token a manager with id publishes.
func ManagerToken(id string) string {
	return "manager-token-" + id
}

func (s *session) ReadFile(ctx context.Context, path string) ([]byte, error) {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()

	inst := b.byAddress(s.address)
	if inst == nil {
		return nil, fmt.Errorf("read %s: %w", path, ErrConnectionRefused)
	}
	inst.reads++
	if inst.info.Role != backend.RoleManager || b.artifactDelay < 0 || inst.reads <= b.artifactDelay {
		return nil, fmt.Errorf("cat: %s: %w", path, ErrNoSuchFile)
	}

	return handshake.MarshalArtifact(handshake.JoinSecret{
		LeaderAddress: inst.info.Address,
		WorkerToken:   WorkerToken(inst.info.ID),
		ManagerToken:  ManagerToken(inst.info.ID),
		IssuedAt:      b.now().UTC(),
	})
}

func (s *session) Close() error {
	return nil
}
