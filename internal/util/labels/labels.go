package labels

import (
	"sort"
	"strings"
)

// Standard label keys, namespaced under cloudweave.io.
const (
	// KeyCluster identifies which cluster an instance belongs to
	KeyCluster = "cloudweave.io/cluster"

	// KeyRole identifies the role of an instance (manager, worker)
	KeyRole = "cloudweave.io/role"

	// KeyBackend identifies the configured backend that created the instance
	KeyBackend = "cloudweave.io/backend"

	// KeyManagedBy identifies the management system
	KeyManagedBy = "cloudweave.io/managed-by"
)

// ManagedByCloudweave is the value of KeyManagedBy for every instance we create.
const ManagedByCloudweave = "cloudweave"

// LabelBuilder provides a fluent interface for building instance labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a new label builder with the managed-by label pre-set.
func NewLabelBuilder() *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyManagedBy: ManagedByCloudweave,
		},
	}
}

// WithCluster adds the cluster label when cluster is non-empty.
func (lb *LabelBuilder) WithCluster(cluster string) *LabelBuilder {
	if cluster != "" {
		lb.labels[KeyCluster] = cluster
	}
	return lb
}

// WithRole adds a role label (manager, worker).
func (lb *LabelBuilder) WithRole(role string) *LabelBuilder {
	if role != "" {
		lb.labels[KeyRole] = role
	}
	return lb
}

// WithBackend adds the backend label.
func (lb *LabelBuilder) WithBackend(backend string) *LabelBuilder {
	if backend != "" {
		lb.labels[KeyBackend] = backend
	}
	return lb
}

// Merge adds all labels from the provided map. Existing keys are overwritten.
func (lb *LabelBuilder) Merge(extra map[string]string) *LabelBuilder {
	for k, v := range extra {
		lb.labels[k] = v
	}
	return lb
}

// Build returns a copy of the labels map.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}

// Selector renders labels as a comma separated k=v selector with sorted keys.
func Selector(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+labels[k])
	}
	return strings.Join(parts, ",")
}

// SelectorForCluster returns a label selector string for all instances in a cluster.
func SelectorForCluster(clusterName string) string {
	return KeyCluster + "=" + clusterName
}
