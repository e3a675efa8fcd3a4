// Package hcloud implements the compute backend for Hetzner Cloud on top of
// hcloud-go.
//
// [RealClient] wraps the API client with retry logic, timeout management and
// error classification. [Backend] adapts it to backend.Backend: servers of a
// spec are created in parallel, each create action is awaited and the public
// IPv4 is resolved before the instance is reported.
//
// # Generic Operations
//
// DeleteOperation provides idempotent deletion with automatic retry logic:
//   - Handles resource locking with exponential backoff
//   - Returns success if the resource doesn't exist
//
// EnsureOperation provides get-or-create semantics with optional validation.
// It is used to upload the public key of an InstanceSpec as an SSH key.
//
// # Retry and Timeout Configuration
//
// Timeouts and retry parameters come from config.LoadTimeouts and are
// configurable via CLOUDWEAVE_TIMEOUT_* and CLOUDWEAVE_RETRY_* variables.
//
// # Credentials
//
// A password supplied in the InstanceSpec is set through cloud-init. Without one,
// the root password issued by the API is reported; Hetzner only issues it
// when no SSH key is attached.
package hcloud
