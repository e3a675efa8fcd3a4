package testing

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/imamik/cloudweave/internal/backend"
	"github.com/imamik/cloudweave/internal/handshake"
)

// MockBackend is a mock implementation of the backend.Backend interface.
// It can be used across all tests that need to assert backend calls.
type MockBackend struct {
	mock.Mock
	BackendName string
}

var _ backend.Backend = (*MockBackend)(nil)

// NewMockBackend creates a MockBackend reporting name.
func NewMockBackend(name string) *MockBackend {
	return &MockBackend{BackendName: name}
}

// Name returns the backend name.
func (m *MockBackend) Name() string {
	return m.BackendName
}

// CreateInstances records the call and returns the configured instances.
func (m *MockBackend) CreateInstances(ctx context.Context, spec backend.InstanceSpec) ([]backend.InstanceInfo, error) {
	args := m.Called(ctx, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]backend.InstanceInfo), args.Error(1)
}

// ListInstances records the call and returns the configured instances.
func (m *MockBackend) ListInstances(ctx context.Context, filter backend.Filter) ([]backend.InstanceInfo, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]backend.InstanceInfo), args.Error(1)
}

// DeleteInstance records the call.
func (m *MockBackend) DeleteInstance(ctx context.Context, ref string) error {
	return m.Called(ctx, ref).Error(0)
}

// StartInstance records the call.
func (m *MockBackend) StartInstance(ctx context.Context, ref string) error {
	return m.Called(ctx, ref).Error(0)
}

// StopInstance records the call.
func (m *MockBackend) StopInstance(ctx context.Context, ref string) error {
	return m.Called(ctx, ref).Error(0)
}

// WithInstances configures CreateInstances for role to return instances.
func (m *MockBackend) WithInstances(role backend.Role, instances []backend.InstanceInfo, err error) *MockBackend {
	m.On("CreateInstances", mock.Anything, mock.MatchedBy(func(spec backend.InstanceSpec) bool {
		return spec.Role == role
	})).Return(instances, err)
	return m
}

// MockDialer is a handshake.Dialer whose behaviour is set with function fields.
type MockDialer struct {
	DialFunc     func(ctx context.Context, address string, creds handshake.Credentials) (handshake.Session, error)
	ReadFileFunc func(ctx context.Context, attempt int, path string) ([]byte, error)

	mu    sync.Mutex
	dials int
	reads int
	creds []handshake.Credentials
}

var _ handshake.Dialer = (*MockDialer)(nil)

// Dial calls DialFunc when set. Otherwise it returns a session backed by
// ReadFileFunc.
func (m *MockDialer) Dial(ctx context.Context, address string, creds handshake.Credentials) (handshake.Session, error) {
	m.mu.Lock()
	m.dials++
	m.creds = append(m.creds, creds)
	m.mu.Unlock()

	if m.DialFunc != nil {
		return m.DialFunc(ctx, address, creds)
	}
	return &mockSession{dialer: m}, nil
}

// Dials returns the number of Dial calls.
func (m *MockDialer) Dials() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dials
}

// Credentials returns the credentials of every Dial call.
func (m *MockDialer) Credentials() []handshake.Credentials {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]handshake.Credentials, len(m.creds))
	copy(out, m.creds)
	return out
}

type mockSession struct {
	dialer *MockDialer
}

func (s *mockSession) ReadFile(ctx context.Context, path string) ([]byte, error) {
	s.dialer.mu.Lock()
	s.dialer.reads++
	attempt := s.dialer.reads
	s.dialer.mu.Unlock()

	if s.dialer.ReadFileFunc == nil {
		return nil, context.DeadlineExceeded
	}
	return s.dialer.ReadFileFunc(ctx, attempt, path)
}

func (s *mockSession) Close() error { return nil }
