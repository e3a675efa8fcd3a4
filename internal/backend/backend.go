package backend

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNotFound is returned when an instance reference matches nothing.
	ErrNotFound = errors.New("instance not found")
	// ErrUnknownBackend is returned by Registry.Get for unregistered names.
	ErrUnknownBackend = errors.New("unknown backend")
	// ErrUnsupported is returned by adapters for operations the provider lacks.
	ErrUnsupported = errors.New("operation not supported by backend")
)

// Backend is the capability set of one compute provider.
type Backend interface {
	// Name returns the configured backend name.
	Name() string

	// CreateInstances creates spec.EffectiveCount() instances and blocks until
	// each is running or has failed. It may return the instances it managed
	// to create together with an error.
	CreateInstances(ctx context.Context, spec InstanceSpec) ([]InstanceInfo, error)

	ListInstances(ctx context.Context, filter Filter) ([]InstanceInfo, error)

	// DeleteInstance removes an instance by id or name.
	DeleteInstance(ctx context.Context, ref string) error
	StartInstance(ctx context.Context, ref string) error
	StopInstance(ctx context.Context, ref string) error
}

// Registry holds backends in registration order.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	backends map[string]Backend
}

// NewRegistry creates a registry pre-filled with backends, in order.
func NewRegistry(backends ...Backend) (*Registry, error) {
	r := &Registry{backends: make(map[string]Backend)}
	for _, b := range backends {
		if err := r.Register(b); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends a backend. Names must be unique.
func (r *Registry) Register(b Backend) error {
	if b == nil {
		return fmt.Errorf("backend cannot be nil")
	}
	name := b.Name()
	if name == "" {
		return fmt.Errorf("backend name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.backends[name]; exists {
		return fmt.Errorf("backend %q already registered", name)
	}
	r.backends[name] = b
	r.order = append(r.order, name)
	return nil
}

// Get returns the backend registered under name.
func (r *Registry) Get(name string) (Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}
	return b, nil
}

// Names returns backend names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered backends.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Index returns the registration position of name, or -1.
func (r *Registry) Index(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i, n := range r.order {
		if n == name {
			return i
		}
	}
	return -1
}
