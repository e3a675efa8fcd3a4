package naming

import (
	"fmt"
	"regexp"
	"strings"
)

var invalidChars = regexp.MustCompile(`[^a-z0-9-]+`)

// Instance returns the name of the index-th (1-based) instance of a spec
// requesting count instances.
func Instance(base string, index, count int) string {
	if count <= 1 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, index)
}

// WorkerGroup returns the base name used for a worker group on a backend.
func WorkerGroup(base, backend string) string {
	return fmt.Sprintf("%s-%s", base, Sanitize(backend))
}

// Manager returns the default manager name for a cluster.
func Manager(cluster string) string {
	return fmt.Sprintf("%s-manager", cluster)
}

// Worker returns the default worker base name for a cluster.
func Worker(cluster string) string {
	return fmt.Sprintf("%s-worker", cluster)
}

// Sanitize lowercases s and replaces anything that is not a DNS label
// character with a hyphen.
func Sanitize(s string) string {
	s = invalidChars.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}
