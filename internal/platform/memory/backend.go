package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/imamik/cloudweave/internal/backend"
	"github.com/imamik/cloudweave/internal/util/keygen"
	"github.com/imamik/cloudweave/internal/util/labels"
	"github.com/imamik/cloudweave/internal/util/naming"
)

// DefaultUsername is reported for every instance.
const DefaultUsername = "root"

// addresses are unique across every Backend in the process so a Dialer can
// find an instance by address alone.
var addressCounter atomic.Uint32

func nextAddress() string {
	n := addressCounter.Add(1)
	return fmt.Sprintf("10.%d.%d.%d", (n>>16)&0xff, (n>>8)&0xff, n&0xff)
}

// CreateHook is called for every CreateInstances call before anything is
// created. A non-nil error fails the call without creating instances.
type CreateHook func(spec backend.InstanceSpec) error

// Option configures a Backend.
type Option func(*Backend)

// WithCreateError fails every CreateInstances call with err.
func WithCreateError(err error) Option {
	return func(b *Backend) {
		b.hook = func(backend.InstanceSpec) error { return err }
	}
}

// WithCreateHook installs a hook that can fail selected calls.
func WithCreateHook(hook CreateHook) Option {
	return func(b *Backend) { b.hook = hook }
}

// WithFailedInstances makes the last n instances of every call come back
// with StatusFailed, and the call return err alongside them.
func WithFailedInstances(n int, err error) Option {
	return func(b *Backend) {
		b.failLast = n
		b.failErr = err
	}
}

// WithArtifactDelay makes the join artifact of a manager readable only from
// the (reads+1)-th read on.
func WithArtifactDelay(reads int) Option {
	return func(b *Backend) { b.artifactDelay = reads }
}

// WithoutArtifact makes manager instances never publish the join artifact.
func WithoutArtifact() Option {
	return func(b *Backend) { b.artifactDelay = -1 }
}

// WithoutAddress makes created instances report no address.
func WithoutAddress() Option {
	return func(b *Backend) { b.noAddress = true }
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

type instance struct {
	info   backend.InstanceInfo
	labels map[string]string
	reads  int
}

// Backend is an in-memory backend.Backend.
type Backend struct {
	name string

	hook          CreateHook
	failLast      int
	failErr       error
	artifactDelay int
	noAddress     bool
	now           func() time.Time

	mu        sync.Mutex
	nextID    int
	instances map[string]*instance // by ID
	specs     []backend.InstanceSpec
}

var _ backend.Backend = (*Backend)(nil)

// New creates an empty backend named name.
func New(name string, opts ...Option) *Backend {
	b := &Backend{
		name:      name,
		now:       time.Now,
		instances: make(map[string]*instance),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the configured backend name.
func (b *Backend) Name() string {
	return b.name
}

// CreateInstances creates spec.Count instances named by naming.Instance.
func (b *Backend) CreateInstances(ctx context.Context, spec backend.InstanceSpec) ([]backend.InstanceInfo, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid instance spec: %w", err)
	}

	b.mu.Lock()
	b.specs = append(b.specs, spec)
	hook := b.hook
	b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if hook != nil {
		if err := hook(spec); err != nil {
			return nil, err
		}
	}

	count := spec.EffectiveCount()
	password := spec.Password
	if password == "" {
		generated, err := keygen.Password(keygen.DefaultPasswordLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate password: %w", err)
		}
		password = generated
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]backend.InstanceInfo, 0, count)
	for i := 1; i <= count; i++ {
		b.nextID++
		info := backend.InstanceInfo{
			Backend:   b.name,
			ID:        b.name + "-" + strconv.Itoa(b.nextID),
			Name:      naming.Instance(spec.Name, i, count),
			Role:      spec.Role,
			Username:  DefaultUsername,
			Password:  password,
			Status:    backend.StatusRunning,
			CreatedAt: b.now().UTC(),
		}
		if !b.noAddress {
			info.Address = nextAddress()
			info.PrivateAddress = info.Address
		}
		if i > count-b.failLast {
			info.Status = backend.StatusFailed
		}

		b.instances[info.ID] = &instance{info: info, labels: copyLabels(spec.Labels)}
		out = append(out, info)
	}

	if b.failLast > 0 {
		return out, b.failErr
	}
	return out, nil
}

// ListInstances returns matching instances ordered by ID.
func (b *Backend) ListInstances(ctx context.Context, filter backend.Filter) ([]backend.InstanceInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []backend.InstanceInfo
	for _, inst := range b.instances {
		if filter.Cluster != "" && inst.labels[labels.KeyCluster] != filter.Cluster {
			continue
		}
		if !filter.Matches(inst.info) {
			continue
		}
		out = append(out, inst.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteInstance removes an instance by ID or name.
func (b *Backend) DeleteInstance(ctx context.Context, ref string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	inst, err := b.lookup(ref)
	if err != nil {
		return err
	}
	delete(b.instances, inst.info.ID)
	return nil
}

// StartInstance marks an instance running.
func (b *Backend) StartInstance(ctx context.Context, ref string) error {
	return b.setStatus(ref, backend.StatusRunning)
}

// StopInstance marks an instance stopped.
func (b *Backend) StopInstance(ctx context.Context, ref string) error {
	return b.setStatus(ref, backend.StatusStopped)
}

// Specs returns every spec received by CreateInstances, in call order.
func (b *Backend) Specs() []backend.InstanceSpec {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]backend.InstanceSpec, len(b.specs))
	copy(out, b.specs)
	return out
}

// Labels returns the labels an instance was created with.
func (b *Backend) Labels(ref string) (map[string]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	inst, err := b.lookup(ref)
	if err != nil {
		return nil, err
	}
	return copyLabels(inst.labels), nil
}

func (b *Backend) setStatus(ref string, status backend.Status) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	inst, err := b.lookup(ref)
	if err != nil {
		return err
	}
	if inst.info.Status == backend.StatusFailed {
		return fmt.Errorf("instance %s is failed: %w", ref, backend.ErrUnsupported)
	}
	inst.info.Status = status
	return nil
}

// lookup must be called with b.mu held.
func (b *Backend) lookup(ref string) (*instance, error) {
	if inst, ok := b.instances[ref]; ok {
		return inst, nil
	}
	for _, inst := range b.instances {
		if inst.info.Name == ref {
			return inst, nil
		}
	}
	return nil, fmt.Errorf("instance %s on %s: %w", ref, b.name, backend.ErrNotFound)
}

// byAddress must be called with b.mu held.
func (b *Backend) byAddress(address string) *instance {
	for _, inst := range b.instances {
		if inst.info.Address == address {
			return inst
		}
	}
	return nil
}

func copyLabels(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
