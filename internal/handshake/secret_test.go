package handshake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArtifact(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"valid", validArtifact, ""},
		{"without manager token", `{"leader_address":"1.2.3.4","worker_token":"w","issued_at":"2026-10-19T08:00:00Z"}`, ""},
		{"not json", `leader=1.2.3.4`, "malformed join artifact"},
		{"truncated", `{"leader_address":"1.2.3.4"`, "malformed join artifact"},
		{"no leader", `{"worker_token":"w","issued_at":"2026-10-19T08:00:00Z"}`, "no leader_address"},
		{"blank token", `{"leader_address":"1.2.3.4","worker_token":"  ","issued_at":"2026-10-19T08:00:00Z"}`, "no worker_token"},
		{"no timestamp", `{"leader_address":"1.2.3.4","worker_token":"w"}`, "no issued_at"},
		{"bad timestamp", `{"leader_address":"1.2.3.4","worker_token":"w","issued_at":"yesterday"}`, "invalid issued_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			secret, err := ParseArtifact([]byte(tt.data))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, secret.LeaderAddress)
			assert.NotEmpty(t, secret.WorkerToken)
			assert.False(t, secret.IssuedAt.IsZero())
		})
	}
}

func TestMarshalArtifact_ParsesBack(t *testing.T) {
	t.Parallel()

	in := JoinSecret{
		LeaderAddress: "10.0.0.5",
		WorkerToken:   "worker",
		ManagerToken:  "manager",
		IssuedAt:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	data, err := MarshalArtifact(in)
	require.NoError(t, err)

	out, err := ParseArtifact(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestJoinSecret_StringRedactsTokens(t *testing.T) {
	t.Parallel()

	s := JoinSecret{LeaderAddress: "10.0.0.5", WorkerToken: "very-secret", IssuedAt: time.Unix(0, 0).UTC()}
	assert.NotContains(t, s.String(), "very-secret")
	assert.Contains(t, s.String(), "10.0.0.5")
}

func TestSplitAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       string
		wantHost string
		wantPort int
	}{
		{"10.0.0.1", "10.0.0.1", 22},
		{"10.0.0.1:2222", "10.0.0.1", 2222},
		{"[2001:db8::1]:22", "2001:db8::1", 22},
		{"host.example:bad", "host.example", 22},
	}
	for _, tt := range tests {
		host, port := splitAddress(tt.in, 22)
		assert.Equal(t, tt.wantHost, host, tt.in)
		assert.Equal(t, tt.wantPort, port, tt.in)
	}
}
