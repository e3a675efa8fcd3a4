package ec2

import "github.com/imamik/cloudweave/internal/backend"

type instanceShape struct {
	name     string
	cores    int
	memoryMB int
}

// burstableShapes lists t3 instance types from smallest to largest.
var burstableShapes = []instanceShape{
	{"t3.micro", 2, 1024},
	{"t3.small", 2, 2048},
	{"t3.medium", 2, 4096},
	{"t3.large", 2, 8192},
	{"t3.xlarge", 4, 16384},
	{"t3.2xlarge", 8, 32768},
}

// InstanceTypeFor returns the smallest t3 type with enough cores and memory,
// or fallback when no resources are requested or none fits. Disk size is
// applied to the root volume instead.
func InstanceTypeFor(resources backend.Resources, fallback string) string {
	if resources.Cores == 0 && resources.MemoryMB == 0 {
		return fallback
	}
	for _, s := range burstableShapes {
		if s.cores >= resources.Cores && s.memoryMB >= resources.MemoryMB {
			return s.name
		}
	}
	return fallback
}
