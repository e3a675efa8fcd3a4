// Package provisioning provides the observability and phase plumbing shared by
// cluster provisioning code.
//
// # Core Types
//
// Context carries the request context and the Observer for one provisioning run.
// Phase defines a provisioning step with Name() and Provision() methods; RunPhases
// runs phases in order and stops at the first failure.
// Observer receives structured events and per-phase progress. LogrObserver
// forwards them to a logr.Logger and Recorder keeps them in memory for
// assertions.
package provisioning
