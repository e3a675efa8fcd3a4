package handshake

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DefaultArtifactPath is where the manager templates write the join artifact.
const DefaultArtifactPath = "/var/lib/cloudweave/join.json"

// JoinSecret is what a worker needs to join the manager's cluster.
// It lives only as long as one cluster-create request.
type JoinSecret struct {
	LeaderAddress string
	WorkerToken   string
	ManagerToken  string
	IssuedAt      time.Time
}

// String redacts the tokens.
func (s JoinSecret) String() string {
	return fmt.Sprintf("JoinSecret{leader=%s issued=%s}", s.LeaderAddress, s.IssuedAt.Format(time.RFC3339))
}

type artifact struct {
	LeaderAddress string `json:"leader_address"`
	WorkerToken   string `json:"worker_token"`
	ManagerToken  string `json:"manager_token,omitempty"`
	IssuedAt      string `json:"issued_at"`
}

// ParseArtifact decodes and validates a join artifact.
func ParseArtifact(data []byte) (JoinSecret, error) {
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return JoinSecret{}, fmt.Errorf("malformed join artifact: %w", err)
	}

	a.LeaderAddress = strings.TrimSpace(a.LeaderAddress)
	a.WorkerToken = strings.TrimSpace(a.WorkerToken)
	if a.LeaderAddress == "" {
		return JoinSecret{}, fmt.Errorf("join artifact has no leader_address")
	}
	if a.WorkerToken == "" {
		return JoinSecret{}, fmt.Errorf("join artifact has no worker_token")
	}
	if a.IssuedAt == "" {
		return JoinSecret{}, fmt.Errorf("join artifact has no issued_at")
	}
	issued, err := time.Parse(time.RFC3339, strings.TrimSpace(a.IssuedAt))
	if err != nil {
		return JoinSecret{}, fmt.Errorf("join artifact has invalid issued_at: %w", err)
	}

	return JoinSecret{
		LeaderAddress: a.LeaderAddress,
		WorkerToken:   a.WorkerToken,
		ManagerToken:  strings.TrimSpace(a.ManagerToken),
		IssuedAt:      issued.UTC(),
	}, nil
}

// MarshalArtifact renders secret in the artifact format. The in-memory backend
// uses it to serve the same document a real manager writes.
func MarshalArtifact(secret JoinSecret) ([]byte, error) {
	return json.Marshal(artifact{
		LeaderAddress: secret.LeaderAddress,
		WorkerToken:   secret.WorkerToken,
		ManagerToken:  secret.ManagerToken,
		IssuedAt:      secret.IssuedAt.UTC().Format(time.RFC3339),
	})
}
