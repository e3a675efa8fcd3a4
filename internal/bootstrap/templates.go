package bootstrap

import (
	"embed"
	"fmt"
	"sort"
)

//go:embed templates/*.sh
var templateFS embed.FS

// Set is the manager and worker template pair of one cluster flavour.
type Set struct {
	Selector string
	Manager  string
	Worker   string
	// Ports the cluster needs reachable between instances.
	Ports []int
}

var sets = map[string]struct {
	manager, worker string
	ports           []int
}{
	"docker-swarm": {"templates/swarm-manager.sh", "templates/swarm-worker.sh", []int{2377, 7946, 4789, 8000, 9443}},
	"k3s":          {"templates/k3s-server.sh", "templates/k3s-agent.sh", []int{6443, 8472, 10250}},
}

// DefaultSelector is used when a cluster request names no template.
const DefaultSelector = "docker-swarm"

// Templates returns the embedded template set for selector.
func Templates(selector string) (Set, error) {
	if selector == "" {
		selector = DefaultSelector
	}
	entry, ok := sets[selector]
	if !ok {
		return Set{}, fmt.Errorf("unknown template selector %q (available: %v)", selector, Selectors())
	}

	manager, err := templateFS.ReadFile(entry.manager)
	if err != nil {
		return Set{}, fmt.Errorf("failed to read manager template: %w", err)
	}
	worker, err := templateFS.ReadFile(entry.worker)
	if err != nil {
		return Set{}, fmt.Errorf("failed to read worker template: %w", err)
	}

	ports := make([]int, len(entry.ports))
	copy(ports, entry.ports)
	return Set{Selector: selector, Manager: string(manager), Worker: string(worker), Ports: ports}, nil
}

// Selectors lists the available template selectors, sorted.
func Selectors() []string {
	out := make([]string, 0, len(sets))
	for name := range sets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
