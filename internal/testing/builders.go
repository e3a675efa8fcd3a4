package testing

import (
	"maps"

	"github.com/imamik/cloudweave/internal/backend"
	"github.com/imamik/cloudweave/internal/orchestration"
)

// RequestBuilder provides a fluent interface for constructing cluster requests.
// Each method returns a new builder (immutable) for chaining.
type RequestBuilder struct {
	req orchestration.ClusterRequest
}

// NewRequestBuilder creates a new RequestBuilder with sensible defaults: a
// cluster named "test-cluster" with its manager on "hetzner".
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{
		req: orchestration.ClusterRequest{
			Name: "test-cluster",
			Manager: backend.InstanceSpec{
				Backend:   "hetzner",
				Resources: backend.Resources{Cores: 2, MemoryMB: 4096, DiskGB: 40},
			},
		},
	}
}

// WithName sets the cluster name.
func (b *RequestBuilder) WithName(name string) *RequestBuilder {
	nb := b.clone()
	nb.req.Name = name
	return nb
}

// WithTemplate sets the role-template selector.
func (b *RequestBuilder) WithTemplate(selector string) *RequestBuilder {
	nb := b.clone()
	nb.req.Template = selector
	return nb
}

// WithManager places the manager on backendName.
func (b *RequestBuilder) WithManager(backendName string) *RequestBuilder {
	nb := b.clone()
	nb.req.Manager.Backend = backendName
	return nb
}

// WithManagerSpec replaces the manager spec.
func (b *RequestBuilder) WithManagerSpec(spec backend.InstanceSpec) *RequestBuilder {
	nb := b.clone()
	nb.req.Manager = cloneSpec(spec)
	return nb
}

// WithWorkers adds a worker group of count instances on backendName.
func (b *RequestBuilder) WithWorkers(backendName string, count int) *RequestBuilder {
	nb := b.clone()
	nb.req.Workers = append(nb.req.Workers, backend.InstanceSpec{
		Backend: backendName,
		Count:   count,
	})
	return nb
}

// WithWorkerSpec adds a worker group.
func (b *RequestBuilder) WithWorkerSpec(spec backend.InstanceSpec) *RequestBuilder {
	nb := b.clone()
	nb.req.Workers = append(nb.req.Workers, cloneSpec(spec))
	return nb
}

// WithTotalNodes sets total_nodes.
func (b *RequestBuilder) WithTotalNodes(total int) *RequestBuilder {
	nb := b.clone()
	nb.req.TotalNodes = &total
	return nb
}

// WithWorkerTemplate sets the spec used for backends without a group.
func (b *RequestBuilder) WithWorkerTemplate(spec backend.InstanceSpec) *RequestBuilder {
	nb := b.clone()
	s := cloneSpec(spec)
	nb.req.WorkerTemplate = &s
	return nb
}

// Build returns the request.
func (b *RequestBuilder) Build() orchestration.ClusterRequest {
	return b.clone().req
}

func (b *RequestBuilder) clone() *RequestBuilder {
	req := b.req
	req.Manager = cloneSpec(b.req.Manager)
	if b.req.Workers != nil {
		req.Workers = make([]backend.InstanceSpec, len(b.req.Workers))
		for i, w := range b.req.Workers {
			req.Workers[i] = cloneSpec(w)
		}
	}
	if b.req.TotalNodes != nil {
		total := *b.req.TotalNodes
		req.TotalNodes = &total
	}
	if b.req.WorkerTemplate != nil {
		tmpl := cloneSpec(*b.req.WorkerTemplate)
		req.WorkerTemplate = &tmpl
	}
	return &RequestBuilder{req: req}
}

func cloneSpec(spec backend.InstanceSpec) backend.InstanceSpec {
	if spec.Labels != nil {
		spec.Labels = maps.Clone(spec.Labels)
	}
	if spec.Network.SecurityGroups != nil {
		spec.Network.SecurityGroups = append([]string(nil), spec.Network.SecurityGroups...)
	}
	return spec
}
