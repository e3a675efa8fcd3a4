package orchestration

import (
	"fmt"

	"github.com/imamik/cloudweave/internal/backend"
	"github.com/imamik/cloudweave/internal/bootstrap"
	"github.com/imamik/cloudweave/internal/util/naming"
)

// ClusterRequest describes one cluster: a single manager and zero or more
// worker groups, at most one per backend.
type ClusterRequest struct {
	Name     string               `json:"name"`
	Template string               `json:"template,omitempty"`
	Manager  backend.InstanceSpec `json:"manager"`
	// Workers are explicit groups. An omitted or zero count means one
	// instance.
	Workers []backend.InstanceSpec `json:"workers,omitempty"`

	// TotalNodes, when set, overrides the worker counts and splits the
	// nodes across the worker backends in configuration order. Backends whose
	// share is zero get no group.
	TotalNodes *int `json:"total_nodes,omitempty"`

	// WorkerTemplate is used for backends that have no explicit group when
	// TotalNodes is set. Its Backend field is ignored.
	WorkerTemplate *backend.InstanceSpec `json:"worker_template,omitempty"`
}

// workerGroup is a worker spec ready to be submitted to its backend.
type workerGroup struct {
	backend backend.Backend
	spec    backend.InstanceSpec
}

// plan is a validated request resolved against a registry.
type plan struct {
	cluster   string
	templates bootstrap.Set
	manager   backend.Backend
	mspec     backend.InstanceSpec
	workers   []workerGroup
}

func (r *ClusterRequest) validate(registry *backend.Registry) []string {
	var problems []string

	if r.Name == "" {
		problems = append(problems, "cluster name is required")
	} else if naming.Sanitize(r.Name) != r.Name {
		problems = append(problems, fmt.Sprintf("cluster name %q must contain only lowercase letters, digits and dashes", r.Name))
	}
	if registry == nil || registry.Len() == 0 {
		return append(problems, "no backends are configured")
	}
	if _, err := bootstrap.Templates(r.Template); err != nil {
		problems = append(problems, err.Error())
	}

	switch {
	case r.Manager.Backend == "":
		problems = append(problems, "manager backend is required")
	case registry.Index(r.Manager.Backend) < 0:
		problems = append(problems, fmt.Sprintf("manager backend %q is not configured", r.Manager.Backend))
	}
	if r.Manager.Count != 0 && r.Manager.Count != 1 {
		problems = append(problems, fmt.Sprintf("manager count must be 1, got %d", r.Manager.Count))
	}
	if r.Manager.Role != "" && r.Manager.Role != backend.RoleManager {
		problems = append(problems, fmt.Sprintf("manager role must be %q, got %q", backend.RoleManager, r.Manager.Role))
	}

	seen := make(map[string]bool)
	for i, w := range r.Workers {
		switch {
		case w.Backend == "":
			problems = append(problems, fmt.Sprintf("workers[%d]: backend is required", i))
		case registry.Index(w.Backend) < 0:
			problems = append(problems, fmt.Sprintf("workers[%d]: backend %q is not configured", i, w.Backend))
		case seen[w.Backend]:
			problems = append(problems, fmt.Sprintf("workers[%d]: duplicate worker group for backend %q", i, w.Backend))
		}
		seen[w.Backend] = true
		if w.Count < 0 {
			problems = append(problems, fmt.Sprintf("workers[%d]: count must not be negative, got %d", i, w.Count))
		}
		if w.Role != "" && w.Role != backend.RoleWorker {
			problems = append(problems, fmt.Sprintf("workers[%d]: role must be %q, got %q", i, backend.RoleWorker, w.Role))
		}
	}

	if r.TotalNodes != nil && *r.TotalNodes < 0 {
		problems = append(problems, fmt.Sprintf("total_nodes must not be negative, got %d", *r.TotalNodes))
	}
	if r.WorkerTemplate != nil && r.WorkerTemplate.Count < 0 {
		problems = append(problems, "worker_template: count must not be negative")
	}

	return problems
}

// resolve validates the request and expands it into the specs that will be
// submitted. It has no side effects.
func (r *ClusterRequest) resolve(registry *backend.Registry) (*plan, error) {
	if problems := r.validate(registry); len(problems) > 0 {
		return nil, &InvalidRequestError{Problems: problems}
	}

	templates, err := bootstrap.Templates(r.Template)
	if err != nil {
		return nil, &InvalidRequestError{Problems: []string{err.Error()}}
	}
	manager, err := registry.Get(r.Manager.Backend)
	if err != nil {
		return nil, &InvalidRequestError{Problems: []string{err.Error()}}
	}

	p := &plan{cluster: r.Name, templates: templates, manager: manager}

	p.mspec = r.Manager
	p.mspec.Role = backend.RoleManager
	p.mspec.Count = 1
	if p.mspec.Name == "" {
		p.mspec.Name = naming.Manager(r.Name)
	}

	for _, spec := range r.workerSpecs(registry) {
		if spec.Count == 0 && r.TotalNodes != nil {
			continue
		}
		b, err := registry.Get(spec.Backend)
		if err != nil {
			return nil, &InvalidRequestError{Problems: []string{err.Error()}}
		}
		spec.Role = backend.RoleWorker
		spec.Count = spec.EffectiveCount()
		base := spec.Name
		if base == "" {
			base = naming.Worker(r.Name)
		}
		spec.Name = naming.WorkerGroup(base, spec.Backend)
		p.workers = append(p.workers, workerGroup{backend: b, spec: spec})
	}

	if problems := p.nameCollisions(); len(problems) > 0 {
		return nil, &InvalidRequestError{Problems: problems}
	}
	return p, nil
}

// nameCollisions expands every instance name the plan will submit and reports
// names claimed twice. Backend names differing only in case or punctuation
// sanitize to the same group name, and the credential store is keyed by name.
func (p *plan) nameCollisions() []string {
	owner := map[string]string{p.mspec.Name: "manager"}
	var problems []string
	for _, g := range p.workers {
		for i := 1; i <= g.spec.Count; i++ {
			name := naming.Instance(g.spec.Name, i, g.spec.Count)
			if prev, ok := owner[name]; ok {
				problems = append(problems, fmt.Sprintf("instance name %q of backend %q collides with %s", name, g.spec.Backend, prev))
				break
			}
			owner[name] = fmt.Sprintf("backend %q", g.spec.Backend)
		}
	}
	return problems
}

// workerSpecs returns the worker groups in submission order. Without
// TotalNodes the explicit groups are used as written. With TotalNodes every
// configured backend gets a group ordered by configuration, and counts come
// from SplitNodes.
func (r *ClusterRequest) workerSpecs(registry *backend.Registry) []backend.InstanceSpec {
	if r.TotalNodes == nil {
		out := make([]backend.InstanceSpec, len(r.Workers))
		copy(out, r.Workers)
		return out
	}

	explicit := make(map[string]backend.InstanceSpec, len(r.Workers))
	for _, w := range r.Workers {
		explicit[w.Backend] = w
	}

	var specs []backend.InstanceSpec
	for _, name := range registry.Names() {
		if w, ok := explicit[name]; ok {
			specs = append(specs, w)
			continue
		}
		specs = append(specs, r.templateFor(name))
	}

	counts := SplitNodes(*r.TotalNodes, len(specs))
	for i := range specs {
		specs[i].Count = counts[i]
	}
	return specs
}

// templateFor builds a worker spec for a backend that has no explicit group.
func (r *ClusterRequest) templateFor(backendName string) backend.InstanceSpec {
	if r.WorkerTemplate != nil {
		spec := *r.WorkerTemplate
		spec.Backend = backendName
		return spec
	}

	spec := r.Manager
	spec.Name = ""
	spec.StartupScript = ""
	spec.Role = backend.RoleWorker
	if spec.Backend != backendName {
		// Images, shapes and networks are provider specific.
		spec.Image = ""
		spec.InstanceType = ""
		spec.Network = backend.Network{}
	}
	spec.Backend = backendName
	return spec
}
