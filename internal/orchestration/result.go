package orchestration

import (
	"sort"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/imamik/cloudweave/internal/backend"
)

// BackendOutcome is what one backend's worker group produced. Instances may
// be non-empty even when Err is set.
type BackendOutcome struct {
	Backend   string                 `json:"backend"`
	Requested int                    `json:"requested"`
	Instances []backend.InstanceInfo `json:"instances,omitempty"`
	Err       error                  `json:"-"`
	Error     string                 `json:"error,omitempty"`
}

// Succeeded reports whether the group finished without error.
func (o *BackendOutcome) Succeeded() bool {
	return o.Err == nil
}

// ClusterResult is the outcome of CreateCluster. It always describes every
// instance that was created, whatever the final status.
type ClusterResult struct {
	RequestID string `json:"request_id"`
	Cluster   string `json:"cluster"`
	Status    State  `json:"status"`

	ManagerSucceeded bool                  `json:"manager_succeeded"`
	Manager          *backend.InstanceInfo `json:"manager,omitempty"`
	// LeaderAddress is the address workers were told to join.
	LeaderAddress string `json:"leader_address,omitempty"`
	// ManagerErr is set when the run ended FAILED.
	ManagerErr error  `json:"-"`
	Failure    string `json:"failure,omitempty"`

	Workers     map[string]*BackendOutcome `json:"workers,omitempty"`
	Transitions []State                    `json:"transitions"`
	StartedAt   time.Time                  `json:"started_at"`
	FinishedAt  time.Time                  `json:"finished_at"`
}

// Errors returns the worker group errors keyed by backend name.
func (r *ClusterResult) Errors() map[string]error {
	out := make(map[string]error)
	for name, outcome := range r.Workers {
		if outcome.Err != nil {
			out[name] = outcome.Err
		}
	}
	return out
}

// Err aggregates the manager failure and every worker group error, ordered
// by backend name. It is nil for a DONE result.
func (r *ClusterResult) Err() error {
	var result *multierror.Error
	if r.ManagerErr != nil {
		result = multierror.Append(result, r.ManagerErr)
	}

	errs := r.Errors()
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		result = multierror.Append(result, errs[name])
	}
	return result.ErrorOrNil()
}

// Instances returns every instance the run created, manager first, then
// workers by backend name.
func (r *ClusterResult) Instances() []backend.InstanceInfo {
	var out []backend.InstanceInfo
	if r.Manager != nil {
		out = append(out, *r.Manager)
	}
	names := make([]string, 0, len(r.Workers))
	for name := range r.Workers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, r.Workers[name].Instances...)
	}
	return out
}

// Duration is how long the run took.
func (r *ClusterResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
