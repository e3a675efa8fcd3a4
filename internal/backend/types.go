package backend

import (
	"fmt"
	"time"
)

// Role is the cluster role of an instance.
type Role string

const (
	// RoleManager is the leader instance that originates the join secret.
	RoleManager Role = "manager"
	// RoleWorker is a follower that joins the manager's cluster.
	RoleWorker Role = "worker"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleManager || r == RoleWorker
}

// Status is the provisioning status of an instance.
type Status string

const (
	StatusPending     Status = "pending"
	StatusRunning     Status = "running"
	StatusStopped     Status = "stopped"
	StatusUnreachable Status = "unreachable"
	StatusFailed      Status = "failed"
)

// Resources is the requested machine shape. Backends with fixed instance
// types use it only when InstanceSpec.InstanceType is empty.
type Resources struct {
	Cores    int `json:"cores,omitempty" yaml:"cores,omitempty"`
	MemoryMB int `json:"memory_mb,omitempty" yaml:"memory_mb,omitempty"`
	DiskGB   int `json:"disk_gb,omitempty" yaml:"disk_gb,omitempty"`
}

// Network holds placement and network parameters. Each backend reads the
// fields that make sense for it and ignores the rest.
type Network struct {
	Location       string   `json:"location,omitempty" yaml:"location,omitempty"`
	Zone           string   `json:"zone,omitempty" yaml:"zone,omitempty"`
	Subnet         string   `json:"subnet,omitempty" yaml:"subnet,omitempty"`
	SecurityGroups []string `json:"security_groups,omitempty" yaml:"security_groups,omitempty"`
	Bridge         string   `json:"bridge,omitempty" yaml:"bridge,omitempty"`
}

// InstanceSpec describes instances to create on one backend.
type InstanceSpec struct {
	// Backend is the configured backend name, not the provider kind.
	Backend string `json:"backend" yaml:"backend"`
	Role    Role   `json:"role,omitempty" yaml:"role,omitempty"`
	// Name is the base name; see naming.Instance for how it is expanded.
	Name         string    `json:"name" yaml:"name"`
	Resources    Resources `json:"resources,omitempty" yaml:"resources,omitempty"`
	Image        string    `json:"image,omitempty" yaml:"image,omitempty"`
	InstanceType string    `json:"instance_type,omitempty" yaml:"instance_type,omitempty"`
	Network      Network   `json:"network,omitempty" yaml:"network,omitempty"`
	Password     string    `json:"password,omitempty" yaml:"password,omitempty"`
	SSHKey       string    `json:"ssh_key,omitempty" yaml:"ssh_key,omitempty"`
	// StartupScript is run on first boot. The orchestrator fills it in from
	// the bootstrap composer; a caller-supplied value is used as the template.
	StartupScript string            `json:"startup_script,omitempty" yaml:"startup_script,omitempty"`
	Count         int               `json:"count,omitempty" yaml:"count,omitempty"`
	Labels        map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// EffectiveCount returns Count, treating zero as one.
func (s InstanceSpec) EffectiveCount() int {
	if s.Count == 0 {
		return 1
	}
	return s.Count
}

// Validate checks the fields every backend relies on.
func (s InstanceSpec) Validate() error {
	if s.Backend == "" {
		return fmt.Errorf("backend is required")
	}
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Role != "" && !s.Role.Valid() {
		return fmt.Errorf("invalid role %q", s.Role)
	}
	if s.Count < 0 {
		return fmt.Errorf("count must not be negative, got %d", s.Count)
	}
	return nil
}

// InstanceInfo describes an instance created or found by a backend.
type InstanceInfo struct {
	Backend string `json:"backend" yaml:"backend"`
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Role    Role   `json:"role,omitempty" yaml:"role,omitempty"`
	// Address may be empty while the provider is still assigning one.
	Address        string    `json:"address,omitempty" yaml:"address,omitempty"`
	PrivateAddress string    `json:"private_address,omitempty" yaml:"private_address,omitempty"`
	Username       string    `json:"username,omitempty" yaml:"username,omitempty"`
	Password       string    `json:"-" yaml:"-"`
	Status         Status    `json:"status" yaml:"status"`
	CreatedAt      time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// Succeeded reports whether the instance exists in a usable or soon-usable state.
func (i InstanceInfo) Succeeded() bool {
	return i.Status != StatusFailed
}

// Filter narrows ListInstances results. Empty fields match everything.
type Filter struct {
	Cluster string
	Role    Role
	Status  Status
	Name    string
}

// Matches reports whether info satisfies the filter fields that can be
// checked without provider labels.
func (f Filter) Matches(info InstanceInfo) bool {
	if f.Role != "" && info.Role != f.Role {
		return false
	}
	if f.Status != "" && info.Status != f.Status {
		return false
	}
	if f.Name != "" && info.Name != f.Name {
		return false
	}
	return true
}
