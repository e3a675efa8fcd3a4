package orchestration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/imamik/cloudweave/internal/backend"
	"github.com/imamik/cloudweave/internal/credentials"
	"github.com/imamik/cloudweave/internal/handshake"
	"github.com/imamik/cloudweave/internal/provisioning"
	"github.com/imamik/cloudweave/internal/util/retry"
)

// Config tunes an Orchestrator. Zero values select the defaults.
type Config struct {
	HandshakeAttempts int
	HandshakeDelay    time.Duration
	ArtifactPath      string

	// CreateTimeout bounds every CreateInstances call. Zero disables it.
	CreateTimeout time.Duration

	NotifyBotToken string
	NotifyChatID   string

	// SSHPrivateKey authenticates the handshake when the manager instance
	// reports no password.
	SSHPrivateKey []byte

	Clock    retry.Clock
	Observer provisioning.Observer
}

func (c Config) withDefaults() Config {
	if c.HandshakeAttempts == 0 {
		c.HandshakeAttempts = handshake.DefaultMaxAttempts
	}
	if c.HandshakeDelay == 0 {
		c.HandshakeDelay = handshake.DefaultAttemptDelay
	}
	if c.ArtifactPath == "" {
		c.ArtifactPath = handshake.DefaultArtifactPath
	}
	if c.Clock == nil {
		c.Clock = retry.RealClock{}
	}
	if c.Observer == nil {
		c.Observer = provisioning.NopObserver{}
	}
	return c
}

// Orchestrator creates clusters across the backends of a registry and
// records every created instance in a credential store.
type Orchestrator struct {
	backends *backend.Registry
	store    *credentials.Store
	dialer   handshake.Dialer
	cfg      Config
}

// New creates an Orchestrator. dialer opens the sessions used to read the
// join secret from the manager.
func New(backends *backend.Registry, store *credentials.Store, dialer handshake.Dialer, cfg Config) *Orchestrator {
	return &Orchestrator{
		backends: backends,
		store:    store,
		dialer:   dialer,
		cfg:      cfg.withDefaults(),
	}
}

// Backends returns the registry the orchestrator provisions on.
func (o *Orchestrator) Backends() *backend.Registry {
	return o.backends
}

// Store returns the credential store the orchestrator writes to.
func (o *Orchestrator) Store() *credentials.Store {
	return o.store
}

// CreateCluster provisions the manager, fetches the join secret and then
// provisions every worker group. The result is never nil. The error is
// non-nil only when the run ends FAILED; worker group failures are reported
// per backend in the result and through result.Err().
func (o *Orchestrator) CreateCluster(ctx context.Context, req ClusterRequest) (*ClusterResult, error) {
	result := &ClusterResult{
		RequestID: uuid.NewString(),
		Cluster:   req.Name,
		Status:    StateInit,
		Workers:   make(map[string]*BackendOutcome),
		StartedAt: o.cfg.Clock.Now(),
	}
	observer := o.cfg.Observer.WithFields(map[string]string{
		"cluster":    req.Name,
		"request_id": result.RequestID,
	})
	r := &run{
		orch:     o,
		observer: observer,
		result:   result,
		machine:  newMachine(),
		stored:   make(map[string]string),
	}

	p, err := req.resolve(o.backends)
	if err != nil {
		observer.Printf("[orchestration] Rejected cluster request %q: %v", req.Name, err)
		r.fail(err)
		return r.finish(), err
	}
	r.plan = p

	observer.Printf("[orchestration] Creating cluster %s: manager on %s, %d worker group(s)",
		p.cluster, p.mspec.Backend, len(p.workers))

	pctx := provisioning.NewContext(ctx, observer)
	if err := provisioning.RunPhases(pctx, []provisioning.Phase{
		&managerPhase{run: r},
		&handshakePhase{run: r},
		&workersPhase{run: r},
	}); err != nil {
		var phaseErr *provisioning.PhaseError
		if errors.As(err, &phaseErr) {
			err = phaseErr.Err
		}
		r.fail(err)
		return r.finish(), err
	}

	return r.finish(), nil
}

// run is the mutable state of one CreateCluster call.
type run struct {
	orch     *Orchestrator
	observer provisioning.Observer
	plan     *plan
	result   *ClusterResult
	machine  *machine
	secret   handshake.JoinSecret

	mu     sync.Mutex
	stored map[string]string // instance name -> backend
}

func (r *run) transition(to State) error {
	from := r.machine.current
	if err := r.machine.transition(to); err != nil {
		return err
	}
	r.result.Status = to
	provisioning.LogStateTransition(r.observer, string(from), string(to))
	return nil
}

func (r *run) fail(err error) {
	if !r.machine.current.Terminal() {
		_ = r.transition(StateFailed)
	}
	r.result.ManagerErr = err
	r.result.Failure = err.Error()
}

func (r *run) finish() *ClusterResult {
	r.result.Transitions = r.machine.path()
	r.result.FinishedAt = r.orch.cfg.Clock.Now()
	RecordClusterCreate(r.result.Status)
	r.observer.Printf("[orchestration] Cluster %s finished with status %s in %s",
		r.result.Cluster, r.result.Status, r.result.Duration())
	return r.result
}

// createInstances calls the backend with the configured outer deadline and
// records metrics for the call.
func (r *run) createInstances(ctx context.Context, b backend.Backend, spec backend.InstanceSpec) ([]backend.InstanceInfo, error) {
	if r.orch.cfg.CreateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.orch.cfg.CreateTimeout)
		defer cancel()
	}

	start := r.orch.cfg.Clock.Now()
	instances, err := b.CreateInstances(ctx, spec)
	RecordBackendCreate(b.Name(), string(spec.Role), err, r.orch.cfg.Clock.Now().Sub(start))
	return instances, err
}

// storeInstance writes one instance's credentials. A name already written by
// this run is overwritten and reported as a warning.
func (r *run) storeInstance(info backend.InstanceInfo) error {
	r.mu.Lock()
	previous, collided := r.stored[info.Name]
	r.stored[info.Name] = info.Backend
	r.mu.Unlock()

	if collided {
		r.observer.Event(provisioning.Event{
			Type:     provisioning.EventValidationWarning,
			Phase:    "credentials",
			Resource: info.Name,
			Message:  fmt.Sprintf("instance name %s from %s overwrites the record from %s", info.Name, info.Backend, previous),
		})
	}

	if err := r.orch.store.Put(info.Name, credentials.RecordFromInstance(info)); err != nil {
		return &CredentialStoreError{Instance: info.Name, Err: err}
	}
	return nil
}
