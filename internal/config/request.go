package config

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/imamik/cloudweave/internal/orchestration"
)

// LoadRequest reads a cluster request from a YAML or JSON file.
func LoadRequest(path string) (orchestration.ClusterRequest, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return orchestration.ClusterRequest{}, fmt.Errorf("failed to read request file: %w", err)
	}
	return ParseRequest(data)
}

// ParseRequest decodes a cluster request. Unknown fields are rejected so
// that typos do not silently fall back to defaults.
func ParseRequest(data []byte) (orchestration.ClusterRequest, error) {
	var req orchestration.ClusterRequest
	if err := yaml.UnmarshalStrict(data, &req); err != nil {
		return orchestration.ClusterRequest{}, fmt.Errorf("failed to decode cluster request: %w", err)
	}
	return req, nil
}
