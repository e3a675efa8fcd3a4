// Package testing provides test utilities, builders, and fixtures for unit and integration tests.
//
// This package centralizes common testing patterns to avoid duplication across test files:
//   - RequestBuilder: Fluent builder for creating cluster requests
//   - ClusterFixture: In-memory backends, registry, dialer and store wired together
//   - MockBackend: testify mock of backend.Backend
//   - MockDialer: function-field fake of handshake.Dialer
//
// Usage:
//
//	req := testing.NewRequestBuilder().
//	    WithName("demo").
//	    WithManager("hetzner").
//	    WithWorkers("aws", 2).
//	    Build()
//
//	fixture := testing.NewClusterFixture("hetzner", "aws")
//	orch := fixture.Orchestrator(orchestration.Config{})
package testing
