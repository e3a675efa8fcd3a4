package testing

import (
	"time"

	"github.com/imamik/cloudweave/internal/backend"
	"github.com/imamik/cloudweave/internal/credentials"
	"github.com/imamik/cloudweave/internal/orchestration"
	"github.com/imamik/cloudweave/internal/platform/memory"
	"github.com/imamik/cloudweave/internal/provisioning"
	"github.com/imamik/cloudweave/internal/util/retry"
)

// ClusterFixture wires in-memory backends, a dialer that serves their join
// artifacts, an empty credential store and a fake clock.
type ClusterFixture struct {
	Backends map[string]*memory.Backend
	Registry *backend.Registry
	Dialer   *memory.Dialer
	Store    *credentials.Store
	Clock    *retry.FakeClock
	Recorder *provisioning.Recorder
}

// NewClusterFixture creates one memory backend per name, registered in the
// given order.
func NewClusterFixture(names ...string) *ClusterFixture {
	return NewClusterFixtureWithOptions(names, nil)
}

// NewClusterFixtureWithOptions is NewClusterFixture with options applied to
// the backend of the same name.
func NewClusterFixtureWithOptions(names []string, opts map[string][]memory.Option) *ClusterFixture {
	clock := retry.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	f := &ClusterFixture{
		Backends: make(map[string]*memory.Backend, len(names)),
		Store:    credentials.NewStore(),
		Clock:    clock,
		Recorder: provisioning.NewRecorder(),
	}

	ordered := make([]*memory.Backend, 0, len(names))
	list := make([]backend.Backend, 0, len(names))
	for _, name := range names {
		bopts := append([]memory.Option{memory.WithClock(clock.Now)}, opts[name]...)
		b := memory.New(name, bopts...)
		f.Backends[name] = b
		ordered = append(ordered, b)
		list = append(list, b)
	}

	registry, err := backend.NewRegistry(list...)
	if err != nil {
		panic(err)
	}
	f.Registry = registry
	f.Dialer = memory.NewDialer(ordered...)
	return f
}

// Orchestrator returns an orchestrator over the fixture. The fixture's clock
// and recorder are used unless cfg sets its own.
func (f *ClusterFixture) Orchestrator(cfg orchestration.Config) *orchestration.Orchestrator {
	if cfg.Clock == nil {
		cfg.Clock = f.Clock
	}
	if cfg.Observer == nil {
		cfg.Observer = f.Recorder
	}
	if cfg.HandshakeDelay == 0 {
		cfg.HandshakeDelay = time.Second
	}
	return orchestration.New(f.Registry, f.Store, f.Dialer, cfg)
}
