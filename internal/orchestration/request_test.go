package orchestration

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/cloudweave/internal/backend"
)

type stubBackend struct{ name string }

func (s stubBackend) Name() string { return s.name }
func (s stubBackend) CreateInstances(context.Context, backend.InstanceSpec) ([]backend.InstanceInfo, error) {
	return nil, errors.New("not implemented")
}
func (s stubBackend) ListInstances(context.Context, backend.Filter) ([]backend.InstanceInfo, error) {
	return nil, nil
}
func (s stubBackend) DeleteInstance(context.Context, string) error { return nil }
func (s stubBackend) StartInstance(context.Context, string) error  { return nil }
func (s stubBackend) StopInstance(context.Context, string) error   { return nil }

func newTestRegistry(t *testing.T, names ...string) *backend.Registry {
	t.Helper()
	backends := make([]backend.Backend, len(names))
	for i, n := range names {
		backends[i] = stubBackend{name: n}
	}
	r, err := backend.NewRegistry(backends...)
	require.NoError(t, err)
	return r
}

func intPtr(n int) *int { return &n }

func TestResolve_InvalidRequests(t *testing.T) {
	t.Parallel()
	registry := newTestRegistry(t, "hetzner", "aws")

	tests := []struct {
		name    string
		req     ClusterRequest
		problem string
	}{
		{
			name:    "empty name",
			req:     ClusterRequest{Manager: backend.InstanceSpec{Backend: "hetzner"}},
			problem: "cluster name is required",
		},
		{
			name:    "name not label safe",
			req:     ClusterRequest{Name: "Demo Cluster", Manager: backend.InstanceSpec{Backend: "hetzner"}},
			problem: "lowercase letters",
		},
		{
			name:    "manager backend missing",
			req:     ClusterRequest{Name: "demo"},
			problem: "manager backend is required",
		},
		{
			name:    "unknown manager backend",
			req:     ClusterRequest{Name: "demo", Manager: backend.InstanceSpec{Backend: "gcp"}},
			problem: `manager backend "gcp" is not configured`,
		},
		{
			name:    "two managers",
			req:     ClusterRequest{Name: "demo", Manager: backend.InstanceSpec{Backend: "hetzner", Count: 2}},
			problem: "manager count must be 1",
		},
		{
			name: "duplicate worker backend",
			req: ClusterRequest{Name: "demo", Manager: backend.InstanceSpec{Backend: "hetzner"},
				Workers: []backend.InstanceSpec{{Backend: "aws"}, {Backend: "aws"}}},
			problem: "duplicate worker group",
		},
		{
			name: "unknown worker backend",
			req: ClusterRequest{Name: "demo", Manager: backend.InstanceSpec{Backend: "hetzner"},
				Workers: []backend.InstanceSpec{{Backend: "gcp"}}},
			problem: `backend "gcp" is not configured`,
		},
		{
			name: "negative worker count",
			req: ClusterRequest{Name: "demo", Manager: backend.InstanceSpec{Backend: "hetzner"},
				Workers: []backend.InstanceSpec{{Backend: "aws", Count: -1}}},
			problem: "count must not be negative",
		},
		{
			name:    "negative total",
			req:     ClusterRequest{Name: "demo", Manager: backend.InstanceSpec{Backend: "hetzner"}, TotalNodes: intPtr(-2)},
			problem: "total_nodes must not be negative",
		},
		{
			name:    "unknown template",
			req:     ClusterRequest{Name: "demo", Template: "nomad", Manager: backend.InstanceSpec{Backend: "hetzner"}},
			problem: "unknown template selector",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.req.resolve(registry)
			var invalid *InvalidRequestError
			require.ErrorAs(t, err, &invalid)
			assert.Contains(t, invalid.Error(), tt.problem)
		})
	}
}

func TestResolve_NoBackends(t *testing.T) {
	t.Parallel()
	req := ClusterRequest{Name: "demo", Manager: backend.InstanceSpec{Backend: "hetzner"}}

	_, err := req.resolve(newTestRegistry(t))
	var invalid *InvalidRequestError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Error(), "no backends are configured")
}

func TestResolve_InstanceNameCollisions(t *testing.T) {
	t.Parallel()
	registry := newTestRegistry(t, "hetzner", "aws", "AWS", "aws_1", "aws-1")

	tests := []struct {
		name    string
		req     ClusterRequest
		problem string
	}{
		{
			name: "backends differing in case",
			req: ClusterRequest{Name: "demo", Manager: backend.InstanceSpec{Backend: "hetzner"},
				Workers: []backend.InstanceSpec{{Backend: "aws", Count: 1}, {Backend: "AWS", Count: 1}}},
			problem: `instance name "demo-worker-aws" of backend "AWS" collides with backend "aws"`,
		},
		{
			name: "backends differing in punctuation",
			req: ClusterRequest{Name: "demo", Manager: backend.InstanceSpec{Backend: "hetzner"},
				Workers: []backend.InstanceSpec{{Backend: "aws_1", Count: 2}, {Backend: "aws-1", Count: 2}}},
			problem: `instance name "demo-worker-aws-1-1" of backend "aws-1" collides with backend "aws_1"`,
		},
		{
			name: "group index suffix against another backend",
			req: ClusterRequest{Name: "demo", Manager: backend.InstanceSpec{Backend: "hetzner"},
				Workers: []backend.InstanceSpec{{Backend: "aws", Count: 2}, {Backend: "aws-1", Count: 1}}},
			problem: `instance name "demo-worker-aws-1" of backend "aws-1" collides with backend "aws"`,
		},
		{
			name: "worker named like the manager",
			req: ClusterRequest{Name: "demo", Manager: backend.InstanceSpec{Backend: "hetzner", Name: "edge-aws"},
				Workers: []backend.InstanceSpec{{Backend: "aws", Name: "edge", Count: 1}}},
			problem: `instance name "edge-aws" of backend "aws" collides with manager`,
		},
		{
			name: "total nodes across case variants",
			req: ClusterRequest{Name: "demo", Manager: backend.InstanceSpec{Backend: "hetzner"},
				TotalNodes: intPtr(10)},
			problem: `of backend "AWS" collides with backend "aws"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := tt.req.resolve(registry)
			assert.Nil(t, p)
			var invalid *InvalidRequestError
			require.ErrorAs(t, err, &invalid)
			assert.Contains(t, invalid.Error(), tt.problem)
		})
	}
}

func TestResolve_DistinctSanitizedNamesAccepted(t *testing.T) {
	t.Parallel()
	registry := newTestRegistry(t, "hetzner", "AWS", "aws_2")

	req := ClusterRequest{Name: "demo", Manager: backend.InstanceSpec{Backend: "hetzner"},
		Workers: []backend.InstanceSpec{{Backend: "AWS", Count: 2}, {Backend: "aws_2", Count: 2}}}
	p, err := req.resolve(registry)
	require.NoError(t, err)
	require.Len(t, p.workers, 2)
	assert.Equal(t, "demo-worker-aws", p.workers[0].spec.Name)
	assert.Equal(t, "demo-worker-aws-2", p.workers[1].spec.Name)
}

func TestResolve_ExplicitGroups(t *testing.T) {
	t.Parallel()
	registry := newTestRegistry(t, "hetzner", "aws")

	req := ClusterRequest{
		Name:    "demo",
		Manager: backend.InstanceSpec{Backend: "hetzner", Image: "ubuntu-24.04"},
		Workers: []backend.InstanceSpec{
			{Backend: "aws", Count: 2},
			{Backend: "hetzner", Name: "edge"},
		},
	}
	p, err := req.resolve(registry)
	require.NoError(t, err)

	assert.Equal(t, "demo-manager", p.mspec.Name)
	assert.Equal(t, backend.RoleManager, p.mspec.Role)
	assert.Equal(t, 1, p.mspec.Count)
	assert.Equal(t, "docker-swarm", p.templates.Selector)

	require.Len(t, p.workers, 2)
	assert.Equal(t, "aws", p.workers[0].spec.Backend)
	assert.Equal(t, "demo-worker-aws", p.workers[0].spec.Name)
	assert.Equal(t, 2, p.workers[0].spec.Count)
	assert.Equal(t, "edge-hetzner", p.workers[1].spec.Name)
	assert.Equal(t, 1, p.workers[1].spec.Count)
	assert.Equal(t, backend.RoleWorker, p.workers[1].spec.Role)
}

func TestResolve_ZeroCount(t *testing.T) {
	t.Parallel()
	registry := newTestRegistry(t, "hetzner", "aws")

	t.Run("explicit group means one instance", func(t *testing.T) {
		t.Parallel()
		req := ClusterRequest{Name: "demo", Manager: backend.InstanceSpec{Backend: "hetzner"},
			Workers: []backend.InstanceSpec{{Backend: "aws", Count: 0}}}
		p, err := req.resolve(registry)
		require.NoError(t, err)
		require.Len(t, p.workers, 1)
		assert.Equal(t, 1, p.workers[0].spec.Count)
	})

	t.Run("explicit count replaced by zero share", func(t *testing.T) {
		t.Parallel()
		req := ClusterRequest{Name: "demo", Manager: backend.InstanceSpec{Backend: "hetzner"},
			Workers:    []backend.InstanceSpec{{Backend: "aws", Count: 0}},
			TotalNodes: intPtr(1)}
		p, err := req.resolve(registry)
		require.NoError(t, err)
		require.Len(t, p.workers, 1)
		assert.Equal(t, "hetzner", p.workers[0].spec.Backend)
	})
}

func TestResolve_TotalNodes(t *testing.T) {
	t.Parallel()
	registry := newTestRegistry(t, "hetzner", "aws")

	t.Run("manager spec re-roled", func(t *testing.T) {
		t.Parallel()
		req := ClusterRequest{
			Name:       "demo",
			Manager:    backend.InstanceSpec{Backend: "hetzner", Image: "ubuntu-24.04", InstanceType: "cx22"},
			TotalNodes: intPtr(3),
		}
		p, err := req.resolve(registry)
		require.NoError(t, err)

		require.Len(t, p.workers, 2)
		assert.Equal(t, "hetzner", p.workers[0].spec.Backend)
		assert.Equal(t, 2, p.workers[0].spec.Count)
		assert.Equal(t, "ubuntu-24.04", p.workers[0].spec.Image)
		assert.Equal(t, "aws", p.workers[1].spec.Backend)
		assert.Equal(t, 1, p.workers[1].spec.Count)
		assert.Empty(t, p.workers[1].spec.Image)
		assert.Empty(t, p.workers[1].spec.InstanceType)
	})

	t.Run("explicit group overridden and ordered by configuration", func(t *testing.T) {
		t.Parallel()
		req := ClusterRequest{
			Name:           "demo",
			Manager:        backend.InstanceSpec{Backend: "hetzner"},
			Workers:        []backend.InstanceSpec{{Backend: "aws", Count: 10, InstanceType: "t3.small"}},
			TotalNodes:     intPtr(5),
			WorkerTemplate: &backend.InstanceSpec{Backend: "ignored", Image: "debian-12"},
		}
		p, err := req.resolve(registry)
		require.NoError(t, err)

		require.Len(t, p.workers, 2)
		assert.Equal(t, "hetzner", p.workers[0].spec.Backend)
		assert.Equal(t, "debian-12", p.workers[0].spec.Image)
		assert.Equal(t, 3, p.workers[0].spec.Count)
		assert.Equal(t, "aws", p.workers[1].spec.Backend)
		assert.Equal(t, "t3.small", p.workers[1].spec.InstanceType)
		assert.Equal(t, 2, p.workers[1].spec.Count)
	})

	t.Run("zero count groups skipped", func(t *testing.T) {
		t.Parallel()
		req := ClusterRequest{Name: "demo", Manager: backend.InstanceSpec{Backend: "hetzner"}, TotalNodes: intPtr(1)}
		p, err := req.resolve(registry)
		require.NoError(t, err)
		require.Len(t, p.workers, 1)
		assert.Equal(t, "hetzner", p.workers[0].spec.Backend)
	})

	t.Run("zero total", func(t *testing.T) {
		t.Parallel()
		req := ClusterRequest{Name: "demo", Manager: backend.InstanceSpec{Backend: "hetzner"}, TotalNodes: intPtr(0)}
		p, err := req.resolve(registry)
		require.NoError(t, err)
		assert.Empty(t, p.workers)
	})
}
