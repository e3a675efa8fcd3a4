package hcloud

import "github.com/imamik/cloudweave/internal/backend"

type serverShape struct {
	name     string
	cores    int
	memoryMB int
	diskGB   int
}

// sharedShapes lists the shared vCPU server types from smallest to largest.
var sharedShapes = []serverShape{
	{"cx22", 2, 4096, 40},
	{"cx32", 4, 8192, 80},
	{"cx42", 8, 16384, 160},
	{"cx52", 16, 32768, 320},
}

// ServerTypeFor returns the smallest server type that satisfies resources,
// or fallback when resources are empty or exceed every known type.
func ServerTypeFor(resources backend.Resources, fallback string) string {
	if resources == (backend.Resources{}) {
		return fallback
	}
	for _, s := range sharedShapes {
		if s.cores >= resources.Cores && s.memoryMB >= resources.MemoryMB && s.diskGB >= resources.DiskGB {
			return s.name
		}
	}
	return fallback
}
