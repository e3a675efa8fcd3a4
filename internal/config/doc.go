// Package config defines the configuration model of the cloudweave CLI.
//
// The [Config] struct lists the configured compute backends in the order
// used for node distribution, the handshake budget, provisioning timeouts,
// notification settings and where credentials are persisted. It is loaded
// from a YAML file, completed with defaults, overridden from the
// environment and validated before any backend is constructed.
//
// [Timeouts] holds the provider API timeouts shared by the backend
// adapters, loaded from environment variables only.
package config
