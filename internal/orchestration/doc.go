// Package orchestration provides high-level workflow coordination for cluster provisioning.
//
// This package sequences cluster creation across compute backends. It delegates the
// actual work to the backend adapters, the bootstrap composer and the handshake client,
// and records who ended up where in the credential store.
//
// # Workflow
//
// CreateCluster executes the following phases in order:
//  1. Manager - Create exactly one manager instance with the composed manager script
//  2. Handshake - Poll the manager for the join secret over SSH
//  3. Workers - Create every worker group concurrently, one group per backend
//
// A failed manager or handshake ends the run as FAILED before any worker is requested.
// Worker group failures are independent of each other and end the run as PARTIAL.
//
// # Usage
//
//	orch := orchestration.New(registry, store, dialer, orchestration.Config{})
//	result, err := orch.CreateCluster(ctx, req)
//
// The result is returned even when err is non-nil so callers can see and clean up
// every instance that was created.
package orchestration
