// Package backend defines the compute backend capability consumed by the
// cluster orchestrator.
//
// A Backend creates, lists, deletes, starts and stops virtual compute
// instances on one infrastructure provider. Every provider (Hetzner Cloud,
// AWS EC2, the in-memory backend) is an adapter behind this one interface;
// callers never switch on the concrete provider type.
//
// # Core Types
//
// InstanceSpec describes what to create and is passed by value.
// InstanceInfo describes what a backend created.
// Registry keeps configured backends in configuration order, which is the
// order used for even node distribution.
package backend
