package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamingFunctions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"single instance keeps base", Instance("swarm", 1, 1), "swarm"},
		{"zero count keeps base", Instance("swarm", 1, 0), "swarm"},
		{"indexed instance", Instance("swarm", 2, 3), "swarm-2"},
		{"worker group", WorkerGroup("swarm-worker", "hetzner"), "swarm-worker-hetzner"},
		{"worker group sanitizes backend", WorkerGroup("w", "AWS_West.2"), "w-aws-west-2"},
		{"manager", Manager("demo"), "demo-manager"},
		{"worker", Worker("demo"), "demo-worker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}

func TestSanitize(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "eu-central", Sanitize("EU Central"))
	assert.Equal(t, "a-b", Sanitize("--a__b--"))
	assert.Equal(t, "", Sanitize("***"))
}
