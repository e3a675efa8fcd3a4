package orchestration

import (
	"fmt"
	"strings"

	"github.com/imamik/cloudweave/internal/handshake"
)

// InvalidRequestError is returned before any side effect when a cluster
// request cannot be satisfied as written.
type InvalidRequestError struct {
	Problems []string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid cluster request: %s", strings.Join(e.Problems, "; "))
}

// ManagerProvisioningError means the manager instance could not be created.
// No worker was requested.
type ManagerProvisioningError struct {
	Backend string
	Err     error
}

func (e *ManagerProvisioningError) Error() string {
	return fmt.Sprintf("manager provisioning on %s failed: %v", e.Backend, e.Err)
}

func (e *ManagerProvisioningError) Unwrap() error { return e.Err }

// HandshakeTimeoutError means the manager was created but never produced a
// join secret. The manager is left running and is recorded in the result.
type HandshakeTimeoutError struct {
	Manager string
	Err     *handshake.TimeoutError
}

func (e *HandshakeTimeoutError) Error() string {
	return fmt.Sprintf("manager %s did not publish a join secret: %v", e.Manager, e.Err)
}

func (e *HandshakeTimeoutError) Unwrap() error { return e.Err }

// WorkerProvisioningError is the failure of one backend's worker group.
type WorkerProvisioningError struct {
	Backend string
	Err     error
}

func (e *WorkerProvisioningError) Error() string {
	return fmt.Sprintf("worker provisioning on %s failed: %v", e.Backend, e.Err)
}

func (e *WorkerProvisioningError) Unwrap() error { return e.Err }

// CredentialStoreError means an instance was created but its credentials
// could not be recorded.
type CredentialStoreError struct {
	Instance string
	Err      error
}

func (e *CredentialStoreError) Error() string {
	return fmt.Sprintf("failed to store credentials for %s: %v", e.Instance, e.Err)
}

func (e *CredentialStoreError) Unwrap() error { return e.Err }
